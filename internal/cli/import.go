package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Flyrell/shopweek/internal/store"
)

var importCmd = LeafCommand{
	Use:   "import <file>",
	Short: "Replace the board with an exported JSON or YAML file",
	Args:  cobra.ExactArgs(1),
	StrFlags: []StringFlag{
		{Name: "format", Short: "f", Usage: "json or yaml (default: from the file extension)"},
	},
	BoolFlags: []BoolFlag{
		{Name: "yes", Short: "y", Usage: "skip confirmation"},
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		yes, _ := cmd.Flags().GetBool("yes")
		return withApp(cmd, func(a *app) error {
			return runImport(cmd, a, args[0], format, confirmFor(yes))
		})
	},
}.Build()

func runImport(cmd *cobra.Command, a *app, path, format string, confirm ConfirmFunc) error {
	if format == "" {
		format = store.FormatFromPath(path)
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	state, err := store.DecodeState(f, format)
	_ = f.Close()
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	ok, err := confirm(fmt.Sprintf("Replace the board with %d jobs from %s?", len(state.Jobs), path))
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	if !ok {
		_, _ = fmt.Fprintln(w, Silent("cancelled"))
		return nil
	}

	summary, err := a.svc.Import(cmd.Context(), state)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(w, "%s\n", Text(fmt.Sprintf("imported %d jobs and %d day settings", summary.Jobs, summary.DaySettings)))
	return nil
}
