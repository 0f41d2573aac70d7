// Package angles parses angle command flags and runs the QRNG angle job.
package angles

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/louisbranch/qdatasets/internal/assembler"
	"github.com/louisbranch/qdatasets/internal/entropy"
	entrypoint "github.com/louisbranch/qdatasets/internal/platform/cmd"
	"github.com/louisbranch/qdatasets/internal/platform/config"
	"github.com/louisbranch/qdatasets/internal/platform/telemetry/metrics"
)

// Config holds angle command configuration.
type Config struct {
	Parties         int           `env:"QDATASETS_PARTIES" envDefault:"4" validate:"min=1,max=26"`
	Samples         int           `env:"QDATASETS_SAMPLES" envDefault:"1000" validate:"min=1,max=1024"`
	Retries         int           `env:"QDATASETS_QRNG_RETRIES" envDefault:"3" validate:"min=0"`
	RetryDelay      time.Duration `env:"QDATASETS_QRNG_RETRY_DELAY" envDefault:"65s" validate:"min=0s"`
	MinInterval     time.Duration `env:"QDATASETS_QRNG_MIN_INTERVAL" envDefault:"60s" validate:"min=0s"`
	ServiceURL      string        `env:"QDATASETS_QRNG_URL" validate:"omitempty,url"`
	OutputPath      string        `env:"QDATASETS_ANGLES_OUTPUT" envDefault:"data/qrng_angles.csv" validate:"required"`
	MetricsTextfile string        `env:"QDATASETS_METRICS_TEXTFILE"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	err := entrypoint.Load(&cfg, fs, args, func(fs *flag.FlagSet, cfg *Config) {
		BindFlags(fs, cfg)
		fs.StringVar(&cfg.OutputPath, "output", cfg.OutputPath, "Angle dataset CSV path (.gz to compress)")
		fs.StringVar(&cfg.MetricsTextfile, "metrics-textfile", cfg.MetricsTextfile, "Prometheus textfile to write after the run")
	})
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// BindFlags registers the acquisition flags shared with the datasets command.
func BindFlags(fs *flag.FlagSet, cfg *Config) {
	fs.IntVar(&cfg.Parties, "parties", cfg.Parties, "Number of parties (1-26)")
	fs.IntVar(&cfg.Samples, "samples", cfg.Samples, "Angles per party")
	fs.IntVar(&cfg.Retries, "retries", cfg.Retries, "QRNG attempts per party, first one included")
	fs.DurationVar(&cfg.RetryDelay, "retry-delay", cfg.RetryDelay, "Pause between failed QRNG attempts")
	fs.DurationVar(&cfg.MinInterval, "min-interval", cfg.MinInterval, "Minimum spacing between any two QRNG requests, so each party after the first also waits (0 disables)")
	fs.StringVar(&cfg.ServiceURL, "qrng-url", cfg.ServiceURL, "QRNG JSON endpoint (empty uses "+entropy.DefaultServiceURL+")")
}

// Run executes the angle job inside the command telemetry wrapper.
func Run(ctx context.Context, cfg Config, out io.Writer) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceAngles, func(ctx context.Context) error {
		reg := metrics.NewRegistry()
		jobs, err := metrics.NewJobs(reg)
		if err != nil {
			return err
		}
		runErr := Job(ctx, cfg, out, reg, jobs)
		if err := metrics.Flush(cfg.MetricsTextfile, reg); err != nil {
			log.Printf("angles: %v", err)
		}
		return runErr
	})
}

// Job fetches entropy for every party and writes the angle table. Metrics
// are registered on reg; jobs may be nil.
func Job(ctx context.Context, cfg Config, out io.Writer, reg prometheus.Registerer, jobs *metrics.Jobs) error {
	if err := config.Validate(cfg); err != nil {
		return err
	}
	if out == nil {
		out = io.Discard
	}
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	service, err := entropy.NewHTTPService(cfg.ServiceURL, nil)
	if err != nil {
		return err
	}
	entropyMetrics, err := entropy.NewMetrics(reg)
	if err != nil {
		return err
	}
	source := entropy.NewSource(service,
		entropy.WithMinInterval(cfg.MinInterval),
		entropy.WithMetrics(entropyMetrics),
	)
	policy := entropy.RetryPolicy{MaxAttempts: cfg.Retries, Delay: cfg.RetryDelay}

	table, err := assembler.New(source, policy, out).Run(ctx, cfg.Parties, cfg.Samples, cfg.OutputPath)
	if err != nil {
		return fmt.Errorf("angles: %w", err)
	}
	jobs.MarkSuccess(entrypoint.ServiceAngles, table.Rows(), time.Now())
	return nil
}
