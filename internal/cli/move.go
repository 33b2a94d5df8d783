package cli

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Flyrell/shopweek/internal/calendar"
	"github.com/Flyrell/shopweek/internal/job"
)

var moveCmd = LeafCommand{
	Use:   "move <job> <day|backlog>",
	Short: "Schedule a job to start on a day, or send it back to the backlog",
	Example: `  shopweek move smith monday
  shopweek move V-1042 "next friday" --view cut --position 1
  shopweek move smith backlog`,
	Args: cobra.ExactArgs(2),
	StrFlags: []StringFlag{
		{Name: "view", Short: "v", Usage: "dimension to schedule: fab or cut", Default: "fab"},
		{Name: "position", Short: "p", Usage: "stack position on the day, 1 = top (default: bottom)"},
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		view, _ := cmd.Flags().GetString("view")
		position, _ := cmd.Flags().GetString("position")
		return withApp(cmd, func(a *app) error {
			return runMove(cmd, a, args[0], args[1], view, position)
		})
	},
}.Build()

func runMove(cmd *cobra.Command, a *app, query, target, view, position string) error {
	j, err := a.svc.ResolveJob(cmd.Context(), query)
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()

	if strings.EqualFold(strings.TrimSpace(target), "backlog") {
		if _, err := a.svc.MoveToBacklog(cmd.Context(), j.ID); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(w, "%s\n", Text(fmt.Sprintf("job %s moved to the backlog (fab and cut)", jobLabel(j))))
		return nil
	}

	dim, err := job.ParseDimension(view)
	if err != nil {
		return err
	}
	index, err := parsePosition(position)
	if err != nil {
		return err
	}
	t, err := calendar.ParseDate(target, a.now())
	if err != nil {
		return err
	}
	day := calendar.NewDay(t)
	if err := checkSchedulable(cmd, a, day); err != nil {
		return err
	}

	moved, err := a.svc.DropOnDay(cmd.Context(), j.ID, day.ID, index, dim)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(w, "%s\n", Text(fmt.Sprintf("job %s starts %s in %s (priority %s)",
		jobLabel(moved), Info(day.Label), dim, strconv.FormatFloat(moved.Placement(dim).Order, 'f', -1, 64))))
	return nil
}

// parsePosition converts a 1-based stack position to an insert index.
// Empty means the bottom of the day.
func parsePosition(position string) (int, error) {
	if position == "" {
		return math.MaxInt, nil
	}
	n, err := strconv.Atoi(position)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid --position %q (expected 1 or more)", position)
	}
	return n - 1, nil
}

func checkSchedulable(cmd *cobra.Command, a *app, day calendar.Day) error {
	if day.Date.Weekday() == time.Sunday {
		return fmt.Errorf("%s is a Sunday, which is never scheduled", day.ID)
	}
	if day.IsExtra() {
		settings, err := a.svc.Settings(cmd.Context())
		if err != nil {
			return err
		}
		if !settings.IncludeSaturday {
			return fmt.Errorf("%s is a Saturday, enable them with 'shopweek settings set include_saturday true'", day.ID)
		}
	}
	return nil
}
