package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Flyrell/shopweek/internal/job"
)

var backlogCmd = LeafCommand{
	Use:   "backlog",
	Short: "List unscheduled jobs in priority order",
	StrFlags: []StringFlag{
		{Name: "view", Short: "v", Usage: "dimension: fab or cut", Default: "fab"},
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		view, _ := cmd.Flags().GetString("view")
		return withApp(cmd, func(a *app) error {
			return runBacklog(cmd, a, view)
		})
	},
}.Build()

func runBacklog(cmd *cobra.Command, a *app, view string) error {
	dim, err := job.ParseDimension(view)
	if err != nil {
		return err
	}
	snap, err := a.svc.Snapshot(cmd.Context(), a.now(), dim)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	_, _ = fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("Backlog (%s)", dim)))
	if len(snap.Backlog) == 0 {
		_, _ = fmt.Fprintln(w, Silent("nothing waiting"))
		return nil
	}
	var total float64
	for i, j := range snap.Backlog {
		total += j.Hours(dim)
		_, _ = fmt.Fprintf(w, "%3d. %s  %7s  %s\n",
			i+1,
			Swatch(j.Color, padRight(job.FormatTitle(j.Title), 24)),
			job.FormatHours(j.Hours(dim)),
			Silent(j.Ref))
	}
	_, _ = fmt.Fprintf(w, "%s\n", Silent(fmt.Sprintf("%d jobs, %s", len(snap.Backlog), job.FormatHours(total))))
	return nil
}
