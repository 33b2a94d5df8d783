package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var jobRemoveCmd = LeafCommand{
	Use:     "remove <job>",
	Aliases: []string{"rm"},
	Short:   "Remove a job",
	Args:    cobra.ExactArgs(1),
	BoolFlags: []BoolFlag{
		{Name: "yes", Short: "y", Usage: "skip confirmation prompt"},
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")
		return withApp(cmd, func(a *app) error {
			return runJobRemove(cmd, a, args[0], confirmFor(yes))
		})
	},
}.Build()

func runJobRemove(cmd *cobra.Command, a *app, query string, confirm ConfirmFunc) error {
	j, err := a.svc.ResolveJob(cmd.Context(), query)
	if err != nil {
		return err
	}

	confirmed, err := confirm(fmt.Sprintf("Remove job '%s'?", j.Title))
	if err != nil {
		return err
	}
	if !confirmed {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), Text("cancelled"))
		return nil
	}

	if err := a.svc.RemoveJob(cmd.Context(), j.ID); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\n", Text(fmt.Sprintf("job %s removed", jobLabel(j))))
	return nil
}
