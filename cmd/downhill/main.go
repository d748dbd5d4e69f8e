package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/zeusync/downhill/internal/config"
	"github.com/zeusync/downhill/internal/core/events/bus"
	"github.com/zeusync/downhill/internal/core/observability/log"
	"github.com/zeusync/downhill/internal/core/system"
	"github.com/zeusync/downhill/internal/injector"
	"github.com/zeusync/downhill/pkg/concurrent"
)

func main() {
	configPath := flag.String("config", "", "path to a .yaml or .toml config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintln(os.Stderr, "downhill:", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, cleanup, err := injector.InitializeApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	if err = watch(app); err != nil {
		return err
	}

	app.Logger.Info("downhill starting",
		log.String("listen_addr", cfg.Server.ListenAddr),
		log.Uint64("seed", cfg.Simulation.ResolveSeed()),
	)
	return concurrent.Run(ctx, app.Simulation.Run, app.Server.Run)
}

// watch logs rider contact changes.
func watch(app *injector.App) error {
	if _, err := bus.On(app.Bus, system.EventRiderLanded, func(c system.RiderContact) error {
		app.Logger.Info("rider landed", log.Uint64("tick", c.Tick), log.Float64("x", c.X), log.Float64("y", c.Y))
		return nil
	}); err != nil {
		return err
	}
	_, err := bus.On(app.Bus, system.EventRiderAirborne, func(c system.RiderContact) error {
		app.Logger.Debug("rider airborne", log.Uint64("tick", c.Tick), log.Float64("x", c.X))
		return nil
	})
	return err
}
