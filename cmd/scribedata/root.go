package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/Noofbiz/scribeData/config"
	"github.com/Noofbiz/scribeData/logging"
	"github.com/spf13/cobra"
)

var (
	cfgFile   string
	activeCfg config.Config
	logCloser io.Closer
)

func NewRootCmd() *cobra.Command {
	defaults := config.DefaultConfig()

	cmd := &cobra.Command{
		Use:          "scribedata",
		Short:        "Handwriting stroke dataset tools",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			loaded, err := config.Load(config.LoadOptions{
				Cmd:        cmd,
				ConfigFile: cfgFile,
				Defaults:   defaults,
			})
			if err != nil {
				return err
			}
			if err := loaded.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			closer, err := setupLogger(loaded.Log, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			activeCfg = loaded
			logCloser = closer
			return nil
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			if logCloser == nil {
				return nil
			}
			err := logCloser.Close()
			logCloser = nil
			return err
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Optional config file (yaml|toml|json)")
	config.RegisterFlags(cmd.PersistentFlags(), defaults)

	cmd.AddCommand(newBuildCmd())
	cmd.AddCommand(newValidateCmd())
	cmd.AddCommand(newStatsCmd())
	cmd.AddCommand(newBatchCmd())
	cmd.AddCommand(newAnalyzeCmd())
	cmd.AddCommand(newResetCmd())

	return cmd
}

// setupLogger installs the process-wide slog default logger. Echoed records
// go to stdout.
func setupLogger(lc config.LogConfig, stdout io.Writer) (io.Closer, error) {
	logger, closer, err := logging.New(logging.Options{
		File:   lc.File,
		Echo:   lc.Echo,
		Level:  lc.Level,
		Stdout: stdout,
	})
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)
	return closer, nil
}

func requireConfig() (config.Config, error) {
	if activeCfg.Data.Dir == "" {
		return config.Config{}, fmt.Errorf("configuration not loaded")
	}
	return activeCfg, nil
}
