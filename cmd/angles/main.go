// Package main starts the QRNG angle dataset job.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	anglescmd "github.com/louisbranch/qdatasets/internal/cmd/angles"
	"github.com/louisbranch/qdatasets/internal/platform/config"
)

func main() {
	cfg, err := anglescmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("angles: parse flags: %v", err)
	}
	log.SetPrefix("[ANGLES] ")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := anglescmd.Run(ctx, cfg, os.Stdout); err != nil {
		stop()
		config.Exit("angles", err)
	}
}
