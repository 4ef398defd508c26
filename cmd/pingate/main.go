package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/pingate/internal/buildinfo"
	"github.com/dmitrijs2005/pingate/internal/cli"
	"github.com/dmitrijs2005/pingate/internal/config"
	"github.com/dmitrijs2005/pingate/internal/logging"
	"github.com/dmitrijs2005/pingate/internal/observability"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	cfg, err := config.LoadConfig(os.Args[1:])
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}

	if err := observability.InitSentry(cfg.SentryDSN, cfg.Environment, buildinfo.Version()); err != nil {
		log.Printf("sentry disabled: %v", err)
	}
	defer observability.FlushSentry()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := cli.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Printf("%v", err)
		return
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		app.Run(ctx)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		// the REPL is blocked on stdin; release the store and leave
		_ = app.Close()
	}
}
