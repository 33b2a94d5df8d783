package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Flyrell/shopweek/internal/job"
)

var jobListCmd = LeafCommand{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List every job",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app) error {
			return runJobList(cmd, a)
		})
	},
}.Build()

func runJobList(cmd *cobra.Command, a *app) error {
	jobs, err := a.svc.ListJobs(cmd.Context())
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	if len(jobs) == 0 {
		_, _ = fmt.Fprintln(w, Silent("no jobs yet (add one with 'shopweek job add')"))
		return nil
	}
	printJobTable(w, jobs)
	return nil
}

// printJobTable prints one row per job in input order.
func printJobTable(w io.Writer, jobs []job.Job) {
	_, _ = fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("%-8s  %-24s  %-10s  %-8s  %7s  %7s  %-10s  %-10s",
		"ID", "TITLE", "REF", "TYPE", "FAB", "CUT", "FAB START", "CUT START")))
	for _, j := range jobs {
		_, _ = fmt.Fprintf(w, "%s  %s  %-10s  %-8s  %7s  %7s  %-10s  %-10s\n",
			Silent(padRight(shortID(j.ID), 8)),
			Swatch(j.Color, padRight(job.FormatTitle(j.Title), 24)),
			truncate(j.Ref, 10),
			j.Category,
			job.FormatHours(j.Hours(job.Fab)),
			job.FormatHours(j.Hours(job.Cut)),
			startOrDash(j.Fab.Placement.StartDay),
			startOrDash(j.Cut.Placement.StartDay),
		)
	}
}

func startOrDash(day string) string {
	if day == "" {
		return "-"
	}
	return day
}

func truncate(s string, width int) string {
	if len([]rune(s)) <= width {
		return s
	}
	return string([]rune(s)[:width-1]) + "…"
}

// padRight pads or truncates s to exactly width runes.
func padRight(s string, width int) string {
	r := []rune(s)
	if len(r) >= width {
		return string(r[:width])
	}
	return s + strings.Repeat(" ", width-len(r))
}

// padCenter centers s within width runes, truncating when too long.
func padCenter(s string, width int) string {
	r := []rune(s)
	if len(r) >= width {
		return string(r[:width])
	}
	total := width - len(r)
	left := total / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", total-left)
}
