package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Flyrell/shopweek/internal/store"
)

var exportCmd = LeafCommand{
	Use:   "export [file]",
	Short: "Write the whole board to a JSON or YAML file",
	Example: `  shopweek export > backup.json
  shopweek export board.yaml`,
	Args: cobra.MaximumNArgs(1),
	StrFlags: []StringFlag{
		{Name: "format", Short: "f", Usage: "json or yaml (default: from the file extension)"},
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		path := ""
		if len(args) == 1 {
			path = args[0]
		}
		format, _ := cmd.Flags().GetString("format")
		return withApp(cmd, func(a *app) error {
			return runExport(cmd, a, path, format)
		})
	},
}.Build()

func runExport(cmd *cobra.Command, a *app, path, format string) error {
	if format == "" {
		format = store.FormatFromPath(path)
	}
	state, err := a.svc.Export(cmd.Context())
	if err != nil {
		return err
	}

	if path == "" {
		return store.EncodeState(cmd.OutOrStdout(), state, format)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := store.EncodeState(f, state, format); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\n", Text(fmt.Sprintf("exported %d jobs and %d day settings to %s",
		len(state.Jobs), len(state.DaySettings()), Primary(path))))
	return nil
}
