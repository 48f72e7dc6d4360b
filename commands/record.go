package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"speech-command-detection/recorder"
)

var recordCmd = &cobra.Command{
	Use:   "record [label]",
	Short: "Record reference samples for a command",
	Long: `Records reference samples. Each sample is replayed before it is kept and
saved as <label>_<n>.wav in the templates directory, where n continues after
the highest number already used for that label.

Without a label argument you are prompted for one, and may record several
commands in a row.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		out := cmd.OutOrStdout()
		p := newPrompter(cmd.InOrStdin(), out)

		rec, err := recorder.New(&recorder.Config{
			FileSys:    fileSys,
			Dir:        cfg.Templates.Dir,
			SampleRate: cfg.Audio.SampleRate,
			Logger:     slog.Default(),
		})
		if err != nil {
			return err
		}

		for {
			label := ""
			if len(args) == 1 {
				label = args[0]
			} else {
				label, err = p.line("Enter a name for the command")
				if err != nil {
					return ignoreEOF(err)
				}
			}

			if err := recorder.ValidateLabel(label); err != nil {
				if len(args) == 1 {
					return err
				}
				fmt.Fprintln(out, err)
				continue
			}

			if err := recordLabel(ctx, p, out, rec, label); err != nil {
				return ignoreEOF(err)
			}

			if len(args) == 1 || ctx.Err() != nil {
				return nil
			}

			another, err := p.confirm("Add another command?", true)
			if err != nil || !another {
				return ignoreEOF(err)
			}
		}
	},
}

func recordLabel(ctx context.Context, p *prompter, out io.Writer, rec recorder.Interface, label string) error {
	player, err := newPlayer(cfg)
	if err != nil {
		return err
	}
	defer player.Close()

	for {
		n, err := rec.NextIndex(label)
		if err != nil {
			return err
		}

		fmt.Fprintf(out, "%d. Say the command %q after it starts listening..\n", n, label)

		samples, err := captureOne(ctx, cfg)
		if err != nil {
			return err
		}
		if samples == nil {
			return nil
		}

		if err := player.Play(ctx, samples); err != nil {
			return fmt.Errorf("replay: %w", err)
		}

		keep, err := p.confirm("Replayed what you said, does it sound ok?", true)
		if err != nil {
			return err
		}

		if keep {
			path, err := rec.Save(label, samples)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Saved %s\n", path)
		}

		another, err := p.confirm("Add another audio to command?", true)
		if err != nil || !another {
			return err
		}
	}
}

// ignoreEOF treats a closed stdin as the user being done.
func ignoreEOF(err error) error {
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
