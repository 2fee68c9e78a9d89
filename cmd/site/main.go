// Package main starts the content site process lifecycle.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	sitecmd "github.com/louisbranch/pageloader/internal/cmd/site"
	"github.com/louisbranch/pageloader/internal/platform/config"
)

func main() {
	cfg, err := sitecmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("parse flags: %v", err)
	}
	logger, err := sitecmd.NewLogger(cfg)
	if err != nil {
		config.Exitf("init logger: %v", err)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := sitecmd.Run(ctx, cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("failed to serve")
	}
}
