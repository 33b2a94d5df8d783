package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/Flyrell/shopweek/internal/board"
	"github.com/Flyrell/shopweek/internal/job"
	"github.com/Flyrell/shopweek/internal/stringutil"
)

var scheduleCmd = LeafCommand{
	Use:     "schedule",
	Aliases: []string{"board"},
	Short:   "Show the weekly board",
	Example: `  shopweek schedule
  shopweek schedule --view cut --week "next monday"
  shopweek schedule --export pdf --weeks 4 -o plan.pdf`,
	StrFlags: []StringFlag{
		{Name: "view", Short: "v", Usage: "dimension: fab or cut", Default: "fab"},
		{Name: "week", Short: "w", Usage: "any date in the week to show (default: this week)"},
		{Name: "export", Usage: "export format (pdf)"},
		{Name: "output", Short: "o", Usage: "export file (default: <board>-<view>-<date>.pdf)"},
		{Name: "weeks", Usage: "weeks to include in an export", Default: "1"},
	},
	BoolFlags: []BoolFlag{
		{Name: "static", Usage: "print the board once instead of opening the interactive view"},
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := scheduleOptions{}
		opts.view, _ = cmd.Flags().GetString("view")
		opts.week, _ = cmd.Flags().GetString("week")
		opts.export, _ = cmd.Flags().GetString("export")
		opts.output, _ = cmd.Flags().GetString("output")
		opts.weeks, _ = cmd.Flags().GetString("weeks")
		opts.static, _ = cmd.Flags().GetBool("static")
		return withApp(cmd, func(a *app) error {
			return runSchedule(cmd, a, opts)
		})
	},
}.Build()

type scheduleOptions struct {
	view   string
	week   string
	export string
	output string
	weeks  string
	static bool
}

func runSchedule(cmd *cobra.Command, a *app, opts scheduleOptions) error {
	dim, err := job.ParseDimension(opts.view)
	if err != nil {
		return err
	}
	now := a.now()
	monday, err := weekStart(opts.week, now)
	if err != nil {
		return err
	}
	title := a.cfg.Board.Name
	load := func(anchor time.Time, d job.Dimension) (board.View, error) {
		return a.svc.Snapshot(cmd.Context(), anchor, d)
	}

	out := cmd.OutOrStdout()

	if opts.export != "" {
		if !strings.EqualFold(opts.export, "pdf") {
			return fmt.Errorf("unsupported export format %q (supported: pdf)", opts.export)
		}
		weeks, err := strconv.Atoi(opts.weeks)
		if err != nil || weeks < 1 {
			return fmt.Errorf("invalid --weeks value %q (expected a positive number)", opts.weeks)
		}
		v, err := load(now, dim)
		if err != nil {
			return err
		}
		outputPath := opts.output
		if outputPath == "" {
			outputPath = stringutil.FileName(title, "pdf", string(dim), monday.Format("2006-01-02"))
		}
		if err := renderSchedulePDF(v, monday, weeks, title, outputPath); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(out, "%s\n", Text(fmt.Sprintf("exported %s plan to %s", dim, Primary(outputPath))))
		return nil
	}

	// Non-TTY fallback: print the week once
	if f, ok := out.(*os.File); opts.static || !ok || !isatty.IsTerminal(f.Fd()) {
		v, err := load(now, dim)
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(out, renderWeek(v, monday, title))
		return err
	}

	m := newScheduleModel(load, title, now, monday, dim)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithOutput(out))
	_, err = p.Run()
	return err
}
