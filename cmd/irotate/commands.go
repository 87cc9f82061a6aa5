package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/raoulx24/irotate/internal/address"
	"github.com/raoulx24/irotate/internal/fs"
	"github.com/raoulx24/irotate/internal/logging"
	"github.com/raoulx24/irotate/internal/rotation"
	"github.com/raoulx24/irotate/internal/settings"
)

func newRotateCmd(load loader) *cobra.Command {
	return &cobra.Command{
		Use:   "rotate",
		Short: "Rotate the log file once, now",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load(cmd)
			if err != nil {
				return err
			}
			logg, err := logging.New(cfg.Logging.Options())
			if err != nil {
				return err
			}
			defer logg.Close()

			addr, err := address.Derive(cfg.Target.LogFile)
			if err != nil {
				return err
			}
			idx, err := rotation.New(addr, cfg.Watch.ProbeLimit, logg.Named("rotation"), nil).RotateNow(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "rotated %s, newest backup %s\n", addr, addr.BackupPath(1))
			fmt.Fprintf(cmd.OutOrStdout(), "highest backup index: %d\n", idx)
			return nil
		},
	}
}

func newStatusCmd(load loader) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show size, threshold and backups of the log file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load(cmd)
			if err != nil {
				return err
			}
			s, err := settings.Load(cfg.Target.SettingsFile)
			if err != nil {
				return err
			}
			addr, err := address.Derive(cfg.Target.LogFile)
			if err != nil {
				return err
			}

			info, err := fs.New().Stat(addr.Path())
			if err != nil {
				return err
			}
			idx, err := rotation.New(addr, cfg.Watch.ProbeLimit, logging.Nop(), nil).HighestBackupIndex()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "file:      %s\n", addr)
			fmt.Fprintf(out, "size:      %d bytes\n", info.Size)
			fmt.Fprintf(out, "threshold: %d bytes (%s)\n", s.Threshold(), s.Size)
			fmt.Fprintf(out, "sleep:     %s\n", s.SleepInterval)
			fmt.Fprintf(out, "backups:   %d\n", idx)
			if cfg.Watch.Schedule != "" {
				fmt.Fprintf(out, "schedule:  %s\n", cfg.Watch.Schedule)
			}
			return nil
		},
	}
}
