package plan

import (
	"cmp"
	"slices"
	"strings"

	"github.com/Flyrell/shopweek/internal/calendar"
	"github.com/Flyrell/shopweek/internal/job"
)

// Backlog returns the jobs with no start day and positive hours in dim, by
// order key; ties go to the most recently updated job.
func Backlog(jobs []job.Job, dim job.Dimension) []job.Job {
	out := make([]job.Job, 0, len(jobs))
	for _, j := range jobs {
		if !j.Placement(dim).Scheduled() && j.Hours(dim) > 0 {
			out = append(out, j)
		}
	}
	slices.SortStableFunc(out, func(a, b job.Job) int {
		if c := cmp.Compare(a.Placement(dim).Order, b.Placement(dim).Order); c != 0 {
			return c
		}
		return b.UpdatedAt.Compare(a.UpdatedAt)
	})
	return out
}

// Note is a job note pinned to the first visible day the job is worked on.
type Note struct {
	JobID    string  `json:"job_id"`
	DayID    string  `json:"day_id"`
	DayLabel string  `json:"day_label"`
	Title    string  `json:"title"`
	Ref      string  `json:"ref"`
	Color    string  `json:"color"`
	Text     string  `json:"text"`
	Order    float64 `json:"order"`
	dayIndex int
}

// Notes collects the notes of jobs that have segments in r, ordered by the day
// they first appear on, then by order key in dim.
func Notes(jobs []job.Job, days []calendar.Day, r Result, dim job.Dimension) []Note {
	byID := make(map[string]job.Job, len(jobs))
	for _, j := range jobs {
		byID[j.ID] = j
	}

	seen := make(map[string]bool)
	var notes []Note
	for i, d := range days {
		for _, s := range r.ByDay[d.ID] {
			j, ok := byID[s.JobID]
			if !ok || seen[j.ID] {
				continue
			}
			text := strings.TrimSpace(j.Note)
			if text == "" {
				continue
			}
			seen[j.ID] = true
			notes = append(notes, Note{
				JobID:    j.ID,
				DayID:    d.ID,
				DayLabel: d.Label,
				Title:    j.Title,
				Ref:      j.Ref,
				Color:    j.Color,
				Text:     text,
				Order:    j.Placement(dim).Order,
				dayIndex: i,
			})
		}
	}

	slices.SortStableFunc(notes, func(a, b Note) int {
		if c := cmp.Compare(a.dayIndex, b.dayIndex); c != 0 {
			return c
		}
		return cmp.Compare(a.Order, b.Order)
	})
	return notes
}
