package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/marketmemphis/mdash/internal/buildinfo"
	"github.com/marketmemphis/mdash/internal/client/cli"
	"github.com/marketmemphis/mdash/internal/client/config"
	"github.com/marketmemphis/mdash/internal/logging"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("%v", err)
	}

	logger, err := logging.New(cfg.LogFormat, cfg.LogLevel, os.Stderr)
	if err != nil {
		log.Fatalf("%v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := cli.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
	}

	app.Run(ctx)

}
