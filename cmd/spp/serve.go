package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/oarkflow/log"
	"github.com/urfave/cli/v2"

	"github.com/oarkflow/spp/pkg/cache"
	"github.com/oarkflow/spp/pkg/history"
	"github.com/oarkflow/spp/pkg/scheduler"
	"github.com/oarkflow/spp/pkg/server"
)

func startServer(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	logger := &log.DefaultLogger

	programs, err := cache.New(cfg.Cache.MaxPrograms)
	if err != nil {
		return err
	}
	defer programs.Close()

	srvConfig := server.Config{
		Version:    cfg.Server.Version,
		ImportRoot: cfg.Runtime.ImportRoot,
		Runtime:    cfg.RuntimeConfig(),
		Logger:     logger,
		Cache:      programs,
		AccessLog:  c.Bool("access-log"),
	}
	if cfg.History.Enabled {
		rec, err := history.Open(cfg.History.File)
		if err != nil {
			return fmt.Errorf("open history: %w", err)
		}
		defer rec.Close()
		srvConfig.History = rec
	}

	srv := server.NewServer(srvConfig)
	addr := cfg.Server.Addr
	if a := c.String("addr"); a != "" {
		addr = a
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.Start(addr)
	}()

	select {
	case err := <-serverErr:
		return err
	case sig := <-sigChan:
		logger.Info().Str("signal", sig.String()).Msg("shutting down server")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.ShutdownWithContext(ctx); err != nil {
			return err
		}
		return <-serverErr
	}
}

func runSchedules(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	if len(cfg.Schedules) == 0 {
		return cli.Exit("no schedules configured", 1)
	}
	logger := &log.DefaultLogger

	baseDir := "."
	if path := c.String("config"); path != "" {
		baseDir = filepath.Dir(path)
	}
	sched, err := scheduler.New(cfg.Schedules, scheduler.Options{
		Logger:  logger,
		Runtime: cfg.RuntimeConfig(),
		BaseDir: baseDir,
	})
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sched.Start()
	for id, next := range sched.Next() {
		logger.Info().Str("schedule", id).Str("next", next.Format(time.RFC3339)).Msg("scheduled")
	}
	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return sched.Stop(stopCtx)
}
