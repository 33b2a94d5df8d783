package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/Flyrell/shopweek/internal/board"
	"github.com/Flyrell/shopweek/internal/calendar"
	"github.com/Flyrell/shopweek/internal/job"
)

const (
	rowLabelWidth = 10
	dayColWidth   = 18
)

var (
	headerStyle   = lipgloss.NewStyle().Bold(true)
	footerStyle   = lipgloss.NewStyle().Faint(true)
	fridayStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFA500"))
	overflowStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000")).Bold(true)
)

// weekTotals sums capacity and allocated hours over a week.
func weekTotals(days []board.DayView) (capacity, used float64) {
	for _, d := range days {
		capacity += d.Capacity
		used += d.Used
	}
	return capacity, used
}

// renderWeek draws the board for the week starting at monday.
func renderWeek(v board.View, monday time.Time, title string) string {
	days := v.Week(monday)
	var b strings.Builder

	heading := fmt.Sprintf("--- %s · %s · week of %s ---", title, v.Dimension, monday.Format("02/01/2006"))
	b.WriteString(headerStyle.Render(heading))
	b.WriteString("\n")

	if len(days) == 0 {
		b.WriteString(Silent("this week is outside the planning window"))
		b.WriteString("\n")
		return b.String()
	}

	sep := func() {
		b.WriteString(strings.Repeat("-", rowLabelWidth))
		for range days {
			b.WriteString("-+-")
			b.WriteString(strings.Repeat("-", dayColWidth))
		}
		b.WriteString("\n")
	}
	row := func(label string, cell func(d board.DayView) (string, lipgloss.Style)) {
		b.WriteString(Silent(padRight(label, rowLabelWidth)))
		for _, d := range days {
			b.WriteString(" | ")
			text, style := cell(d)
			b.WriteString(style.Render(padRight(text, dayColWidth)))
		}
		b.WriteString("\n")
	}

	row("", func(d board.DayView) (string, lipgloss.Style) {
		if d.IsConstrained() {
			return d.Label, fridayStyle.Bold(true)
		}
		return d.Label, headerStyle
	})
	row("capacity", func(d board.DayView) (string, lipgloss.Style) {
		text := job.FormatHours(d.Capacity)
		if d.Override != nil {
			text += " (set)"
		}
		if d.IsConstrained() && v.Dimension == job.Fab {
			if d.Locked {
				text += " locked"
			} else {
				text += " open"
			}
		}
		return text, textStyle
	})
	row("used", func(d board.DayView) (string, lipgloss.Style) {
		text := fmt.Sprintf("%s / %s free", job.FormatHours(d.Used), job.FormatHours(d.Free))
		if d.Used > d.Capacity+1e-9 {
			return text, overflowStyle
		}
		return text, textStyle
	})
	sep()

	depth := 0
	for _, d := range days {
		depth = max(depth, len(d.Jobs))
	}
	for i := 0; i < depth; i++ {
		label := ""
		if i == 0 {
			label = "jobs"
		}
		b.WriteString(Silent(padRight(label, rowLabelWidth)))
		for _, d := range days {
			b.WriteString(" | ")
			if i >= len(d.Jobs) {
				b.WriteString(strings.Repeat(" ", dayColWidth))
				continue
			}
			jh := d.Jobs[i]
			hours := job.FormatHours(jh.Hours)
			name := padRight(job.FormatTitle(jh.Job.Title), dayColWidth-len(hours)-1)
			b.WriteString(Swatch(jh.Job.Color, name))
			b.WriteString(" " + hours)
		}
		b.WriteString("\n")
	}
	if depth == 0 {
		b.WriteString(Silent(padRight("jobs", rowLabelWidth)))
		b.WriteString(" | ")
		b.WriteString(Silent("nothing scheduled"))
		b.WriteString("\n")
	}
	sep()

	capTotal, usedTotal := weekTotals(days)
	b.WriteString(Text(fmt.Sprintf("week: %s of %s allocated", job.FormatHours(usedTotal), job.FormatHours(capTotal))))
	b.WriteString("   ")
	b.WriteString(Silent(fmt.Sprintf("backlog: %d jobs", len(v.Backlog))))
	b.WriteString("   ")
	b.WriteString(Silent(fmt.Sprintf("window load: %.0f%% avg", v.Load.Mean*100)))
	b.WriteString("\n")

	notes := weekNotes(v, days)
	if len(notes) > 0 {
		b.WriteString("\n")
		b.WriteString(headerStyle.Render("Notes"))
		b.WriteString("\n")
		for _, n := range notes {
			b.WriteString("  " + n + "\n")
		}
	}
	return b.String()
}

// weekNotes lists day notes and pinned job notes that fall on days.
func weekNotes(v board.View, days []board.DayView) []string {
	labels := make(map[string]string, len(days))
	var out []string
	for _, d := range days {
		labels[d.ID] = d.Label
		if d.Note != "" {
			out = append(out, fmt.Sprintf("%s  %s", Info(d.Label), d.Note))
		}
	}
	for _, n := range v.Notes {
		if label, ok := labels[n.DayID]; ok {
			out = append(out, fmt.Sprintf("%s  %s: %s", Info(label), Primary(job.FormatTitle(n.Title)), n.Text))
		}
	}
	return out
}

// weekStart resolves a --week expression to its Monday.
func weekStart(expr string, now time.Time) (time.Time, error) {
	if expr == "" {
		return calendar.StartOfWeek(now), nil
	}
	t, err := calendar.ParseDate(expr, now)
	if err != nil {
		return time.Time{}, err
	}
	return calendar.StartOfWeek(t), nil
}
