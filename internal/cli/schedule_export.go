package cli

import (
	"fmt"
	"time"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/orientation"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/Flyrell/shopweek/internal/board"
	"github.com/Flyrell/shopweek/internal/job"
)

var (
	pdfHeaderColor = props.Color{Red: 50, Green: 50, Blue: 50}
	pdfMutedColor  = props.Color{Red: 120, Green: 120, Blue: 120}
	pdfLineColor   = props.Color{Red: 200, Green: 200, Blue: 200}
	pdfAlertColor  = props.Color{Red: 200, Green: 30, Blue: 30}
)

// renderSchedulePDF writes a printable plan of weeks weeks starting at
// monday to outputPath.
func renderSchedulePDF(v board.View, monday time.Time, weeks int, title, outputPath string) error {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithOrientation(orientation.Horizontal).
		WithLeftMargin(12).
		WithTopMargin(12).
		WithRightMargin(12).
		Build()

	m := maroto.New(cfg)

	m.AddRow(12,
		text.NewCol(8, title, props.Text{
			Style: fontstyle.Bold,
			Size:  16,
			Color: &pdfHeaderColor,
		}),
		text.NewCol(4, fmt.Sprintf("%s plan", v.Dimension), props.Text{
			Size:  12,
			Align: align.Right,
			Color: &pdfMutedColor,
		}),
	)
	m.AddRow(4, line.NewCol(12, props.Line{Color: &pdfLineColor}))

	for w := 0; w < weeks; w++ {
		start := monday.AddDate(0, 0, 7*w)
		days := v.Week(start)
		capTotal, usedTotal := weekTotals(days)

		m.AddRow(10,
			text.NewCol(9, "Week of "+start.Format("Mon 2 Jan 2006"), props.Text{
				Style: fontstyle.Bold,
				Size:  12,
				Top:   2,
				Color: &pdfHeaderColor,
			}),
			text.NewCol(3, fmt.Sprintf("%s / %s", job.FormatHours(usedTotal), job.FormatHours(capTotal)), props.Text{
				Style: fontstyle.Bold,
				Size:  10,
				Top:   2,
				Align: align.Right,
				Color: &pdfHeaderColor,
			}),
		)

		for _, d := range days {
			label := d.Label
			if d.IsConstrained() && v.Dimension == job.Fab {
				if d.Locked {
					label += " (locked)"
				} else {
					label += " (open)"
				}
			}
			usage := fmt.Sprintf("%s of %s", job.FormatHours(d.Used), job.FormatHours(d.Capacity))
			m.AddRow(7,
				text.NewCol(9, label, props.Text{Style: fontstyle.Bold, Size: 10}),
				text.NewCol(3, usage, props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Right}),
			)
			if d.Note != "" {
				m.AddRow(5, text.NewCol(12, "  "+d.Note, props.Text{
					Size:  8,
					Style: fontstyle.Italic,
					Color: &pdfAlertColor,
				}))
			}
			for _, jh := range d.Jobs {
				name := job.FormatTitle(jh.Job.Title)
				if jh.Job.Ref != "" {
					name += "  " + jh.Job.Ref
				}
				m.AddRow(5,
					text.NewCol(9, "    "+name, props.Text{Size: 9}),
					text.NewCol(3, job.FormatHours(jh.Hours), props.Text{Size: 9, Align: align.Right}),
				)
			}
		}
		m.AddRow(3, line.NewCol(12, props.Line{Color: &pdfLineColor}))
	}

	if len(v.Notes) > 0 {
		m.AddRow(9, text.NewCol(12, "Job notes", props.Text{
			Style: fontstyle.Bold,
			Size:  11,
			Top:   2,
			Color: &pdfHeaderColor,
		}))
		for _, n := range v.Notes {
			m.AddRow(5,
				text.NewCol(3, n.DayLabel, props.Text{Size: 8, Color: &pdfMutedColor}),
				text.NewCol(9, job.FormatTitle(n.Title)+": "+n.Text, props.Text{Size: 8}),
			)
		}
	}

	m.AddRow(8, text.NewCol(12, fmt.Sprintf("%d jobs waiting in the backlog", len(v.Backlog)), props.Text{
		Size:  9,
		Top:   3,
		Color: &pdfMutedColor,
	}))

	doc, err := m.Generate()
	if err != nil {
		return fmt.Errorf("generating PDF: %w", err)
	}
	return doc.Save(outputPath)
}
