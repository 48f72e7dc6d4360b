package commands

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"speech-command-detection/classifier"
	"speech-command-detection/observe"
	"speech-command-detection/recognizer"
	"speech-command-detection/template_store"
)

var recognizeRebuild bool

var recognizeCmd = &cobra.Command{
	Use:   "recognize",
	Short: "Listen and run the action for every recognized command",
	Long: `Loads the template library (rebuilding the cache when any reference
recording was added, removed or modified), then listens until Ctrl+C.

Each utterance is compared with every reference. If the three nearest
references carry at most two distinct labels, the nearest label wins and its
action runs; otherwise the utterance is reported as unsure.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		extractor, err := newExtractor(cfg)
		if err != nil {
			return err
		}

		store, err := newStore(cfg, extractor)
		if err != nil {
			return err
		}

		var (
			lib     *template_store.Library
			rebuilt = true
		)
		if recognizeRebuild {
			lib, err = store.Build(ctx)
		} else {
			lib, rebuilt, err = store.Load(ctx)
		}
		if err != nil {
			return fmt.Errorf("load templates: %w", err)
		}

		if lib.Len() == 0 {
			return fmt.Errorf("no reference recordings in %s; create some with the record command", cfg.Templates.Dir)
		}

		slog.Info("templates ready",
			"templates", lib.Len(),
			"labels", lib.Labels,
			"rebuilt", rebuilt,
		)

		dispatcher, err := newDispatcher(cfg)
		if err != nil {
			return err
		}

		rec, err := recognizer.New(&recognizer.Config{
			Extractor:  extractor,
			Classifier: classifier.New(),
			Library:    lib,
			Dispatcher: dispatcher,
			SampleRate: cfg.Audio.SampleRate,
			Logger:     slog.Default(),
			Metrics:    observe.DefaultMetrics(),
		})
		if err != nil {
			return err
		}

		return listen(ctx, cfg, rec.Handle)
	},
}

func init() {
	recognizeCmd.Flags().BoolVar(&recognizeRebuild, "rebuild", false, "ignore the template cache and rebuild it")
}
