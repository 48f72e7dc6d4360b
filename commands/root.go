// Package commands implements the speech-command-detection CLI.
package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"speech-command-detection/config"
	"speech-command-detection/observe"
)

var (
	// Global flags
	configPath string

	// Loaded in PersistentPreRunE; every subcommand reads it.
	cfg *config.Config

	// fileSys backs references, recordings and the template cache.
	fileSys afero.Fs = afero.NewOsFs()

	shutdownMetrics func(context.Context) error
)

var rootCmd = &cobra.Command{
	Use:   "speech-command-detection",
	Short: "Recognize short spoken commands and run an action for each",
	Long: `speech-command-detection listens to a microphone, cuts the stream into
utterances and matches each one against reference recordings you made
yourself. When the nearest references agree on a label, the action for that
label is run.

Typical workflow:
  # pick the microphone and speaker
  speech-command-detection devices --select-input 2 --select-output 4

  # check levels, then record a few samples per command
  speech-command-detection sound-check
  speech-command-detection record lights_on

  # recognize until Ctrl+C
  speech-command-detection recognize`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return teardown()
	},
}

// Execute runs the root command. ctx is cancelled on SIGINT/SIGTERM.
func Execute(ctx context.Context) error {
	defer teardown()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "path to the YAML configuration file")

	rootCmd.AddCommand(
		recognizeCmd,
		recordCmd,
		soundCheckCmd,
		devicesCmd,
		templatesCmd,
	)
}

func setup(cmd *cobra.Command, args []string) error {
	loaded, err := config.Load(configPath)
	if err != nil {
		return err
	}
	cfg = loaded

	logger := observe.NewLogger(os.Stderr, string(cfg.LogLevel))
	slog.SetDefault(logger)

	shutdown, err := observe.InitProvider(cmd.Context(), cfg.Metrics.ListenAddr)
	if err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}
	shutdownMetrics = shutdown

	slog.Debug("configuration loaded", "path", configPath, "log_level", cfg.LogLevel)

	return nil
}

func teardown() error {
	if shutdownMetrics == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := shutdownMetrics(ctx)
	shutdownMetrics = nil
	return err
}
