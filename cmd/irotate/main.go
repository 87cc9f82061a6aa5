package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/raoulx24/irotate/internal/config"
)

var version = "0.1.0"

// viper keys, one per overridable flag
const (
	keyLogFile      = "log-file"
	keySettingsFile = "settings-file"
	keyMode         = "mode"
	keySchedule     = "schedule"
	keyLogLevel     = "log-level"
	keyLogFormat    = "log-format"
)

func newRootCmd() *cobra.Command {
	v := viper.New()
	var cfgFile string

	root := &cobra.Command{
		Use:           "irotate",
		Short:         "Rotate a log file by size or on a timer",
		Long:          "irotate watches a log file and rotates it into numbered backups once it reaches the size set in a hot-reloadable settings file, or when the sleep timer expires.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (yaml, optional)")
	pf.String(keyLogFile, "", "log file to rotate (env LOG_FILE)")
	pf.String(keySettingsFile, "", "settings file with sleep_counter and size (env SETTINGS_FILE)")
	pf.String(keyMode, "", "watch mode: auto, fsnotify or poll")
	pf.String(keySchedule, "", "cron expression forcing a rotation")
	pf.String(keyLogLevel, "", "diagnostic log level")
	pf.String(keyLogFormat, "", "diagnostic log format: console or json")

	load := func(cmd *cobra.Command) (*config.Config, error) {
		if err := bindOverrides(v, cmd); err != nil {
			return nil, err
		}
		return resolveConfig(v, cfgFile)
	}

	root.AddCommand(
		newRunCmd(load),
		newRotateCmd(load),
		newStatusCmd(load),
		&cobra.Command{
			Use:   "version",
			Short: "Print the version number",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "irotate v%s\n", version)
			},
		},
	)
	return root
}

// bindOverrides wires flags and environment into v. Flags win over env.
func bindOverrides(v *viper.Viper, cmd *cobra.Command) error {
	v.SetEnvPrefix("IROTATE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	for _, key := range []string{keyLogFile, keySettingsFile, keyMode, keySchedule, keyLogLevel, keyLogFormat} {
		if err := v.BindPFlag(key, cmd.Flags().Lookup(key)); err != nil {
			return err
		}
	}
	// legacy names used by existing deployments
	if err := v.BindEnv(keyLogFile, "IROTATE_LOG_FILE", "LOG_FILE"); err != nil {
		return err
	}
	return v.BindEnv(keySettingsFile, "IROTATE_SETTINGS_FILE", "SETTINGS_FILE")
}

// resolveConfig layers env and flags from v over the config file.
func resolveConfig(v *viper.Viper, cfgFile string) (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	for key, dst := range map[string]*string{
		keyLogFile:      &cfg.Target.LogFile,
		keySettingsFile: &cfg.Target.SettingsFile,
		keyMode:         &cfg.Watch.Mode,
		keySchedule:     &cfg.Watch.Schedule,
		keyLogLevel:     &cfg.Logging.Level,
		keyLogFormat:    &cfg.Logging.Format,
	} {
		if v.IsSet(key) {
			if s := v.GetString(key); s != "" {
				*dst = s
			}
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "irotate:", err)
		os.Exit(1)
	}
}
