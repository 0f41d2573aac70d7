// Package main runs the angle and threat jobs together.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	datasetscmd "github.com/louisbranch/qdatasets/internal/cmd/datasets"
	"github.com/louisbranch/qdatasets/internal/platform/config"
)

func main() {
	cfg, err := datasetscmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("datasets: parse flags: %v", err)
	}
	log.SetPrefix("[DATASETS] ")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := datasetscmd.Run(ctx, cfg, os.Stdout); err != nil {
		stop()
		config.Exit("datasets", err)
	}
}
