// Package threats parses threat command flags and runs the threat-bit job.
package threats

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"time"

	entrypoint "github.com/louisbranch/qdatasets/internal/platform/cmd"
	"github.com/louisbranch/qdatasets/internal/platform/config"
	"github.com/louisbranch/qdatasets/internal/platform/telemetry/metrics"
	"github.com/louisbranch/qdatasets/internal/random"
	"github.com/louisbranch/qdatasets/internal/threatbits"
)

// Config holds threat command configuration.
type Config struct {
	Parties         int    `env:"QDATASETS_PARTIES" envDefault:"4" validate:"min=1,max=26"`
	Samples         int    `env:"QDATASETS_SAMPLES" envDefault:"1000" validate:"min=1"`
	Seed            uint64 `env:"QDATASETS_THREATS_SEED"`
	OutputPath      string `env:"QDATASETS_THREATS_OUTPUT" envDefault:"data/threat_bits.csv" validate:"required"`
	MetricsTextfile string `env:"QDATASETS_METRICS_TEXTFILE"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.Load(&cfg, fs, args, bindFlags); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func bindFlags(fs *flag.FlagSet, cfg *Config) {
	fs.IntVar(&cfg.Parties, "parties", cfg.Parties, "Number of parties (1-26)")
	fs.IntVar(&cfg.Samples, "samples", cfg.Samples, "Threat bits per party")
	fs.Uint64Var(&cfg.Seed, "seed", cfg.Seed, "Random seed for reproducibility (0 = random)")
	fs.StringVar(&cfg.OutputPath, "output", cfg.OutputPath, "Threat dataset CSV path (.gz to compress)")
	fs.StringVar(&cfg.MetricsTextfile, "metrics-textfile", cfg.MetricsTextfile, "Prometheus textfile to write after the run")
}

// Run executes the threat job inside the command telemetry wrapper.
func Run(ctx context.Context, cfg Config, out io.Writer) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceThreats, func(context.Context) error {
		reg := metrics.NewRegistry()
		jobs, err := metrics.NewJobs(reg)
		if err != nil {
			return err
		}
		runErr := Job(cfg, out, jobs)
		if err := metrics.Flush(cfg.MetricsTextfile, reg); err != nil {
			log.Printf("threats: %v", err)
		}
		return runErr
	})
}

// Job generates and writes the threat table. jobs may be nil.
func Job(cfg Config, out io.Writer, jobs *metrics.Jobs) error {
	if err := config.Validate(cfg); err != nil {
		return err
	}
	if out == nil {
		out = io.Discard
	}

	seed := cfg.Seed
	if seed == 0 {
		var err error
		if seed, err = random.NewSeed(); err != nil {
			return fmt.Errorf("threats: %w", err)
		}
	}
	fmt.Fprintf(out, "Using seed: %d\n", seed)

	table, err := threatbits.Run(cfg.Parties, cfg.Samples, random.NewSource(seed), cfg.OutputPath)
	if err != nil {
		return fmt.Errorf("threats: %w", err)
	}
	jobs.MarkSuccess(entrypoint.ServiceThreats, table.Rows(), time.Now())
	fmt.Fprintf(out, "Threat bits saved to %s\n", cfg.OutputPath)
	return nil
}
