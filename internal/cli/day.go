package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Flyrell/shopweek/internal/calendar"
	"github.com/Flyrell/shopweek/internal/job"
)

var dayCmd = GroupCommand{
	Use:   "day",
	Short: "Override capacity, lock Fridays and write notes for single days",
	Subcommands: []*cobra.Command{
		daySetCmd,
		dayClearCmd,
		dayLockCmd,
		dayListCmd,
	},
}.Build()

var daySetCmd = LeafCommand{
	Use:   "set <day>",
	Short: "Set capacity overrides or the note of a day",
	Example: `  shopweek day set friday --fab 8
  shopweek day set 2026-10-21 --cut 0 --note "saw service"
  shopweek day set monday --fab clear`,
	Args: cobra.MinimumNArgs(1),
	StrFlags: []StringFlag{
		{Name: "fab", Usage: "fab hours for the day, or 'clear' to use the default"},
		{Name: "cut", Usage: "cut hours for the day, or 'clear' to use the default"},
		{Name: "note", Short: "n", Usage: "note for the day (empty clears it)"},
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		values := map[string]*string{}
		for _, name := range []string{"fab", "cut", "note"} {
			if cmd.Flags().Changed(name) {
				v, _ := cmd.Flags().GetString(name)
				values[name] = &v
			}
		}
		return withApp(cmd, func(a *app) error {
			return runDaySet(cmd, a, joinArgs(args), values["fab"], values["cut"], values["note"])
		})
	},
}.Build()

var dayClearCmd = LeafCommand{
	Use:   "clear <day>",
	Short: "Remove every override, lock and note of a day",
	Args:  cobra.MinimumNArgs(1),
	BoolFlags: []BoolFlag{
		{Name: "yes", Short: "y", Usage: "skip confirmation"},
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")
		return withApp(cmd, func(a *app) error {
			return runDayClear(cmd, a, joinArgs(args), confirmFor(yes))
		})
	},
}.Build()

var dayLockCmd = LeafCommand{
	Use:   "lock <friday>",
	Short: "Toggle the lock of a Friday",
	Example: `  shopweek day lock friday
  shopweek day lock "next friday"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app) error {
			return runDayLock(cmd, a, joinArgs(args))
		})
	},
}.Build()

var dayListCmd = LeafCommand{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List days with overrides, locks or notes",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app) error {
			return runDayList(cmd, a)
		})
	},
}.Build()

// resolveDay turns a date expression into a working day.
func resolveDay(expr string, now time.Time) (calendar.Day, error) {
	t, err := calendar.ParseDate(expr, now)
	if err != nil {
		return calendar.Day{}, err
	}
	day := calendar.NewDay(t)
	if day.Date.Weekday() == time.Sunday {
		return calendar.Day{}, fmt.Errorf("%s is a Sunday, which is never scheduled", day.ID)
	}
	return day, nil
}

// parseOverride reads an override flag; "clear" yields nil.
func parseOverride(flag, value string) (*float64, error) {
	if strings.EqualFold(strings.TrimSpace(value), "clear") {
		return nil, nil
	}
	h, err := job.ParseHours(value)
	if err != nil {
		return nil, fmt.Errorf("--%s: %w", flag, err)
	}
	return &h, nil
}

func runDaySet(cmd *cobra.Command, a *app, expr string, fab, cut, note *string) error {
	if fab == nil && cut == nil && note == nil {
		return fmt.Errorf("nothing to set (use --fab, --cut or --note)")
	}
	day, err := resolveDay(expr, a.now())
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	ctx := cmd.Context()

	overrides := []struct {
		dim   job.Dimension
		value *string
	}{
		{job.Fab, fab},
		{job.Cut, cut},
	}
	for _, o := range overrides {
		if o.value == nil {
			continue
		}
		hours, err := parseOverride(string(o.dim), *o.value)
		if err != nil {
			return err
		}
		if err := a.svc.SetDayOverride(ctx, day.ID, o.dim, hours); err != nil {
			return err
		}
		if hours == nil {
			_, _ = fmt.Fprintf(w, "%s\n", Text(fmt.Sprintf("%s %s capacity back to default", Info(day.Label), o.dim)))
		} else {
			_, _ = fmt.Fprintf(w, "%s\n", Text(fmt.Sprintf("%s %s capacity set to %s", Info(day.Label), o.dim, job.FormatHours(*hours))))
		}
	}
	if note != nil {
		if err := a.svc.SetDayNote(ctx, day.ID, strings.TrimSpace(*note)); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(w, "%s\n", Text(fmt.Sprintf("%s note updated", Info(day.Label))))
	}
	return nil
}

func runDayClear(cmd *cobra.Command, a *app, expr string, confirm ConfirmFunc) error {
	day, err := resolveDay(expr, a.now())
	if err != nil {
		return err
	}
	ok, err := confirm(fmt.Sprintf("Clear every setting of %s?", day.Label))
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	if !ok {
		_, _ = fmt.Fprintln(w, Silent("cancelled"))
		return nil
	}
	if err := a.svc.ClearDay(cmd.Context(), day.ID); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(w, "%s\n", Text(fmt.Sprintf("%s reset to defaults", Info(day.Label))))
	return nil
}

func runDayLock(cmd *cobra.Command, a *app, expr string) error {
	day, err := resolveDay(expr, a.now())
	if err != nil {
		return err
	}
	locked, err := a.svc.ToggleFridayLock(cmd.Context(), day.ID)
	if err != nil {
		return err
	}
	state := Warning("locked")
	if !locked {
		state = Primary("open")
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\n", Text(fmt.Sprintf("%s is now %s", Info(day.Label), state)))
	return nil
}

func runDayList(cmd *cobra.Command, a *app) error {
	days, err := a.svc.DaySettings(cmd.Context())
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	if len(days) == 0 {
		_, _ = fmt.Fprintln(w, Silent("no day settings, every day uses the defaults"))
		return nil
	}
	_, _ = fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("%-14s  %-8s  %-8s  %-8s  %s", "DAY", "FAB", "CUT", "LOCK", "NOTE")))
	for _, ds := range days {
		label := ds.DayID
		if t, err := calendar.ParseDayID(ds.DayID); err == nil {
			label = calendar.NewDay(t).Label
		}
		lock := "-"
		if ds.FridayLocked != nil {
			lock = "open"
			if *ds.FridayLocked {
				lock = "locked"
			}
		}
		_, _ = fmt.Fprintf(w, "%-14s  %-8s  %-8s  %-8s  %s\n",
			label, overrideText(ds.FabOverride), overrideText(ds.CutOverride), lock, ds.Note)
	}
	return nil
}

func overrideText(v *float64) string {
	if v == nil {
		return "-"
	}
	return job.FormatHours(*v)
}
