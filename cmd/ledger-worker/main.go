package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"ledger/internal/amqp"
	"ledger/internal/backend"
	"ledger/internal/cli"
	"ledger/internal/config"
	"ledger/internal/log"
	"ledger/internal/worker"
)

const shutdownTimeout = 30 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "ledger-worker:", err)
		os.Exit(1)
	}
}

func run() error {
	// Load .env file for local development; real environment wins.
	if err := cli.LoadEnvFile(); err != nil {
		return err
	}

	cfg, err := config.Load(nil)
	if err != nil {
		return err
	}
	if err := errors.Join(cfg.Validate(), cfg.ValidateMirror()); err != nil {
		return err
	}

	logger, err := cli.SetupLogger(cfg, os.Stdout)
	if err != nil {
		return err
	}
	logger.Info("Starting ledger-worker",
		log.FieldBackend, cfg.DataBackend,
		"mirror_backend", cfg.MirrorBackend,
		"sync_interval", cfg.SyncInterval.String())

	startCtx, cancelStart := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelStart()

	factory := backend.NewFactory(logger)
	primaryCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return err
	}
	primary, err := factory.Create(startCtx, primaryCfg)
	if err != nil {
		return fmt.Errorf("open primary store: %w", err)
	}
	defer primary.Close()

	mirrorCfg, err := backend.MirrorFromAppConfig(cfg)
	if err != nil {
		return err
	}
	mirror, err := factory.Create(startCtx, mirrorCfg)
	if err != nil {
		return fmt.Errorf("open mirror store: %w", err)
	}
	defer mirror.Close()

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger.WithComponent(log.ComponentAMQP))
	if err != nil {
		return fmt.Errorf("initialize AMQP client: %w", err)
	}
	defer client.Close()

	mw := worker.NewMirrorWorker(primary.Store, mirror.Store, logger)

	ctx, done := cli.GracefulShutdown(logger, shutdownTimeout, nil)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return client.Consume(gctx, mw.HandleSnapshotSaved)
	})
	g.Go(func() error {
		// Catches snapshots whose message was lost while the broker was down.
		return mw.Run(gctx, cfg.SyncInterval)
	})

	err = g.Wait()
	if ctx.Err() != nil {
		<-done
		logger.Info("Worker stopped", log.FieldCount, mw.Copies())
		return nil
	}
	return err
}
