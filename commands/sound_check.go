package commands

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"speech-command-detection/template_store"
	"speech-command-detection/voice_activity_detection"
)

var soundCheckCmd = &cobra.Command{
	Use:   "sound-check",
	Short: "Replay what you say and compare its level with the references",
	Long: `Speak after "started listening" is logged. Each utterance is replayed so
you can check that nothing is clipped at the beginning, middle or end, and its
RMS level is printed next to the mean level of the existing references.
Exit with Ctrl+C.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		out := cmd.OutOrStdout()

		mean, count, err := referenceLevel(fileSys, cfg.Templates.Dir)
		if err != nil {
			return err
		}
		if count > 0 {
			fmt.Fprintf(out, "Mean RMS of %d reference recordings: %.4f\n", count, mean)
		}
		fmt.Fprintf(out, "Detection threshold: %.4f\n", cfg.VAD.RMSThreshold)

		player, err := newPlayer(cfg)
		if err != nil {
			return err
		}
		defer player.Close()

		for ctx.Err() == nil {
			samples, err := captureOne(ctx, cfg)
			if err != nil {
				return err
			}
			if samples == nil {
				break
			}

			if err := player.Play(ctx, samples); err != nil && ctx.Err() == nil {
				return fmt.Errorf("replay: %w", err)
			}

			printLevel(out, voice_activity_detection.RMS(samples), mean, count)
		}

		return nil
	},
}

// referenceLevel is the mean RMS over every readable reference in dir.
func referenceLevel(fs afero.Fs, dir string) (float64, int, error) {
	paths, err := afero.Glob(fs, filepath.Join(dir, template_store.ReferencePattern))
	if err != nil {
		return 0, 0, err
	}

	var sum float64
	count := 0

	for _, path := range paths {
		buf, err := template_store.ReadWAV(fs, path)
		if err != nil {
			slog.Warn("skipping unreadable reference", "path", path, "err", err)
			continue
		}
		sum += voice_activity_detection.RMSFloat(template_store.MonoSamples(buf))
		count++
	}

	if count == 0 {
		return 0, 0, nil
	}

	return sum / float64(count), count, nil
}

func printLevel(out io.Writer, rms, mean float64, count int) {
	level := labelStyle.Render(fmt.Sprintf("%.4f", rms))
	if count == 0 {
		fmt.Fprintf(out, "RMS of this recording: %s\n", level)
		return
	}
	fmt.Fprintf(out, "RMS of this recording: %s (references: %.4f) %s\n", level, mean,
		hintStyle.Render("adjust the microphone volume if these are far apart"))
}
