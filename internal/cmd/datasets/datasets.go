// Package datasets runs the angle and threat jobs side by side.
//
// The two jobs share no state: a failed angle acquisition does not stop or
// undo the threat table, and the threat job never waits on the entropy
// service.
package datasets

import (
	"context"
	"flag"
	"io"
	"log"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/louisbranch/qdatasets/internal/cmd/angles"
	"github.com/louisbranch/qdatasets/internal/cmd/threats"
	entrypoint "github.com/louisbranch/qdatasets/internal/platform/cmd"
	"github.com/louisbranch/qdatasets/internal/platform/config"
	"github.com/louisbranch/qdatasets/internal/platform/telemetry/metrics"
)

// Config holds datasets command configuration.
type Config struct {
	Angles          angles.Config
	Threats         threats.Config
	MetricsTextfile string `env:"QDATASETS_METRICS_TEXTFILE"`
}

// ParseConfig parses environment and flags into a Config. Party and sample
// counts apply to both jobs.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	angles.BindFlags(fs, &cfg.Angles)
	fs.StringVar(&cfg.Angles.OutputPath, "angles-output", cfg.Angles.OutputPath, "Angle dataset CSV path")
	fs.StringVar(&cfg.Threats.OutputPath, "threats-output", cfg.Threats.OutputPath, "Threat dataset CSV path")
	fs.Uint64Var(&cfg.Threats.Seed, "seed", cfg.Threats.Seed, "Threat random seed (0 = random)")
	fs.StringVar(&cfg.MetricsTextfile, "metrics-textfile", cfg.MetricsTextfile, "Prometheus textfile to write after the run")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	cfg.Threats.Parties = cfg.Angles.Parties
	cfg.Threats.Samples = cfg.Angles.Samples
	if err := config.Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run executes both jobs and returns the first failure, after both finished.
func Run(ctx context.Context, cfg Config, out io.Writer) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceDatasets, func(ctx context.Context) error {
		reg := metrics.NewRegistry()
		jobs, err := metrics.NewJobs(reg)
		if err != nil {
			return err
		}
		shared := &lockedWriter{w: out}

		var g errgroup.Group
		g.Go(func() error {
			return angles.Job(ctx, cfg.Angles, shared, reg, jobs)
		})
		g.Go(func() error {
			return threats.Job(cfg.Threats, shared, jobs)
		})
		runErr := g.Wait()

		if err := metrics.Flush(cfg.MetricsTextfile, reg); err != nil {
			log.Printf("datasets: %v", err)
		}
		return runErr
	})
}

// lockedWriter serializes progress lines from the concurrent jobs.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.w == nil {
		return len(p), nil
	}
	return l.w.Write(p)
}
