package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"speech-command-detection/template_store"
)

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "Inspect or rebuild the template library",
}

var templatesListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show the labels and how many references each has",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		lib, rebuilt, err := loadLibrary(cmd, false)
		if err != nil {
			return err
		}
		printLibrary(cmd.OutOrStdout(), lib, rebuilt)
		return nil
	},
}

var templatesRebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Recompute every template and rewrite the cache",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		lib, _, err := loadLibrary(cmd, true)
		if err != nil {
			return err
		}
		printLibrary(cmd.OutOrStdout(), lib, true)
		return nil
	},
}

func init() {
	templatesCmd.AddCommand(templatesListCmd, templatesRebuildCmd)
}

func loadLibrary(cmd *cobra.Command, force bool) (*template_store.Library, bool, error) {
	extractor, err := newExtractor(cfg)
	if err != nil {
		return nil, false, err
	}

	store, err := newStore(cfg, extractor)
	if err != nil {
		return nil, false, err
	}

	if force {
		lib, err := store.Build(cmd.Context())
		return lib, true, err
	}

	return store.Load(cmd.Context())
}

func printLibrary(out io.Writer, lib *template_store.Library, rebuilt bool) {
	source := "from cache"
	if rebuilt {
		source = "rebuilt"
	}

	fmt.Fprintln(out, titleStyle.Render(fmt.Sprintf("%d templates, %d labels", lib.Len(), len(lib.Labels))), hintStyle.Render("("+source+")"))
	for _, label := range lib.Labels {
		fmt.Fprintf(out, "  %s %d\n", labelStyle.Render(fmt.Sprintf("%-20s", label)), len(lib.Templates[label]))
	}
}
