package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/raoulx24/irotate/internal/address"
	"github.com/raoulx24/irotate/internal/config"
	"github.com/raoulx24/irotate/internal/logging"
	"github.com/raoulx24/irotate/internal/rotation"
	"github.com/raoulx24/irotate/internal/schedule"
	"github.com/raoulx24/irotate/internal/settings"
	"github.com/raoulx24/irotate/internal/watcher"
	"github.com/raoulx24/irotate/internal/worker"
)

type loader func(cmd *cobra.Command) (*config.Config, error)

func newRunCmd(load loader) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Watch the log file and rotate it until stopped",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load(cmd)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}
}

func run(parent context.Context, cfg *config.Config) error {
	logg, err := logging.New(cfg.Logging.Options())
	if err != nil {
		return err
	}
	defer logg.Close()

	store, err := settings.NewStore(cfg.Target.SettingsFile)
	if err != nil {
		return err
	}
	addr, err := address.Derive(cfg.Target.LogFile)
	if err != nil {
		return err
	}

	eng := rotation.New(addr, cfg.Watch.ProbeLimit, logg.Named("rotation"), nil)
	queue := worker.NewQueue(cfg.Watch.QueueSize)
	disp := worker.New(eng, queue, logg.Named("dispatcher"))

	watch := watcher.New(watcher.Config{
		Target:       addr,
		SettingsPath: cfg.Target.SettingsFile,
		Mode:         cfg.Watch.Mode,
		PollInterval: cfg.Watch.PollInterval,
	}, eng, store, queue, disp.Results(), logg.Named("watcher"))

	sched, err := schedule.New(cfg.Watch.Schedule, watch.RequestRotation, logg.Named("schedule"))
	if err != nil {
		return err
	}

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Settings reload on SIGHUP
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-hup:
				logg.Info("reload requested", "signal", "SIGHUP")
				watch.RequestReload()
			}
		}
	})
	g.Go(func() error { return disp.Run(gctx) })
	g.Go(func() error { return sched.Run(gctx) })
	g.Go(func() error {
		// the watcher returning ends the group, including a fatal start error
		defer stop()
		return watch.Start(gctx)
	})

	err = g.Wait()
	logg.Info("exit complete")
	return err
}
