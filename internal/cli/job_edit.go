package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Flyrell/shopweek/internal/job"
)

var jobEditCmd = LeafCommand{
	Use:      "edit <job>",
	Short:    "Edit a job's details and hours",
	Example:  "  shopweek job edit smith --fab 14 --type screens",
	Args:     cobra.ExactArgs(1),
	StrFlags: append([]StringFlag{{Name: "title", Usage: "new title"}}, jobFieldFlags...),
	RunE: func(cmd *cobra.Command, args []string) error {
		title, _ := cmd.Flags().GetString("title")
		titleChanged := cmd.Flags().Changed("title")
		return withApp(cmd, func(a *app) error {
			return runJobEdit(cmd, a, args[0], title, titleChanged, readJobFlags(cmd))
		})
	},
}.Build()

func runJobEdit(cmd *cobra.Command, a *app, query, title string, titleChanged bool, flags jobFlags) error {
	if !titleChanged && !flags.any() {
		return fmt.Errorf("nothing to change (pass at least one flag, see --help)")
	}

	current, err := a.svc.ResolveJob(cmd.Context(), query)
	if err != nil {
		return err
	}

	edit := current
	if titleChanged {
		edit.Title = title
	}
	edit, err = flags.apply(edit)
	if err != nil {
		return err
	}

	updated, err := a.svc.UpdateJob(cmd.Context(), current.ID, edit)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\n", Text(fmt.Sprintf("job %s updated (fab %s, cut %s)",
		jobLabel(updated), job.FormatHours(updated.Hours(job.Fab)), job.FormatHours(updated.Hours(job.Cut)))))
	return nil
}
