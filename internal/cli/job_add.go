package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Flyrell/shopweek/internal/job"
)

var jobAddCmd = LeafCommand{
	Use:      "add [title]",
	Short:    "Add a job to the backlog",
	Example:  "  shopweek job add Smith --ref V-1042 --fab 12 --cut 3h30m",
	StrFlags: jobFieldFlags,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app) error {
			return runJobAdd(cmd, a, joinArgs(args), readJobFlags(cmd), NewJobFormFunc())
		})
	},
}.Build()

func runJobAdd(cmd *cobra.Command, a *app, title string, flags jobFlags, form JobFormFunc) error {
	draft := job.Job{Title: title}

	if title == "" {
		in, err := form(jobFormInput{
			Ref:      flags.values["ref"],
			Category: flags.values["type"],
			Color:    flags.values["color"],
			FabHours: flags.values["fab"],
			CutHours: flags.values["cut"],
			Note:     flags.values["note"],
		})
		if err != nil {
			return err
		}
		draft.Title = in.Title
		flags = mergeFormInput(flags, in)
	}

	draft, err := flags.apply(draft)
	if err != nil {
		return err
	}

	created, err := a.svc.AddJob(cmd.Context(), draft)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\n", Text(fmt.Sprintf("job %s added to the backlog (%s)", jobLabel(created), Silent(created.ID))))
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\n", Silent(fmt.Sprintf("fab %s, cut %s",
		job.FormatHours(created.Hours(job.Fab)), job.FormatHours(created.Hours(job.Cut)))))
	return nil
}

// mergeFormInput turns form answers into flag values so both paths share apply.
func mergeFormInput(flags jobFlags, in jobFormInput) jobFlags {
	set := func(name, v string) {
		if v != "" {
			flags.values[name] = v
			flags.changed[name] = true
		}
	}
	set("ref", in.Ref)
	set("type", in.Category)
	set("color", in.Color)
	set("fab", in.FabHours)
	set("cut", in.CutHours)
	set("note", in.Note)
	return flags
}
