// Package main starts the threat-bit dataset job.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	threatscmd "github.com/louisbranch/qdatasets/internal/cmd/threats"
	"github.com/louisbranch/qdatasets/internal/platform/config"
)

func main() {
	cfg, err := threatscmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("threats: parse flags: %v", err)
	}
	log.SetPrefix("[THREATS] ")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := threatscmd.Run(ctx, cfg, os.Stdout); err != nil {
		stop()
		config.Exit("threats", err)
	}
}
