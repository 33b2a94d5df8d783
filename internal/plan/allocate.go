package plan

import (
	"cmp"
	"slices"

	"github.com/Flyrell/shopweek/internal/calendar"
	"github.com/Flyrell/shopweek/internal/capacity"
	"github.com/Flyrell/shopweek/internal/job"
)

// Segment is a block of hours allocated to one job on one day.
type Segment = capacity.Segment

// epsilon absorbs float residue so a job never produces a sliver segment.
const epsilon = 1e-9

// Result is the outcome of one allocation pass.
type Result struct {
	// ByDay holds an entry for every day passed to Allocate, in stacking order.
	ByDay map[string][]Segment `json:"by_day"`
	Total float64              `json:"total"`
}

// OnDay returns the segments on dayID.
func (r Result) OnDay(dayID string) []Segment {
	return r.ByDay[dayID]
}

// JobTotal returns the hours allocated to jobID across all days.
func (r Result) JobTotal(jobID string) float64 {
	total := 0.0
	for _, segs := range r.ByDay {
		for _, s := range segs {
			if s.JobID == jobID {
				total += s.Hours
			}
		}
	}
	return total
}

// Allocate splits every scheduled job's hours in dim across days.
//
// Jobs are processed by start day, then order key, so earlier starts get first
// claim on shared days. Each job walks forward from its start day taking
// whatever free capacity is left; locked Fridays are skipped in the fab view
// unless the job's category is exempt. Hours that run past the last day are
// dropped. The result depends only on the inputs.
func Allocate(jobs []job.Job, days []calendar.Day, p capacity.Params, dim job.Dimension) Result {
	byDay := make(map[string][]Segment, len(days))
	index := make(map[string]int, len(days))
	for i, d := range days {
		byDay[d.ID] = []Segment{}
		index[d.ID] = i
	}

	for _, j := range scheduled(jobs, dim) {
		start, ok := startIndex(j.Placement(dim).StartDay, days, index)
		if !ok {
			continue
		}

		remaining := j.Hours(dim)
		for di := start; di < len(days) && remaining > epsilon; di++ {
			day := days[di]

			if dim == job.Fab && capacity.IsLocked(day, p.Locks) && !j.Category.LockExempt() {
				continue
			}

			free := capacity.DayFree(day, byDay, p, dim)
			if free <= epsilon {
				continue
			}

			alloc := min(free, remaining)
			byDay[day.ID] = append(byDay[day.ID], Segment{JobID: j.ID, Hours: alloc})
			remaining -= alloc
		}
	}

	total := 0.0
	for _, d := range days {
		for _, s := range byDay[d.ID] {
			total += s.Hours
		}
	}

	return Result{ByDay: byDay, Total: total}
}

// scheduled returns the jobs with a start day and positive hours in dim,
// sorted by start day then order key.
func scheduled(jobs []job.Job, dim job.Dimension) []job.Job {
	out := make([]job.Job, 0, len(jobs))
	for _, j := range jobs {
		if j.Placement(dim).Scheduled() && j.Hours(dim) > 0 {
			out = append(out, j)
		}
	}
	slices.SortStableFunc(out, func(a, b job.Job) int {
		pa, pb := a.Placement(dim), b.Placement(dim)
		if c := cmp.Compare(pa.StartDay, pb.StartDay); c != 0 {
			return c
		}
		return cmp.Compare(pa.Order, pb.Order)
	})
	return out
}

// startIndex locates the first day a job may use. A start day outside the
// window resolves to the first visible day on or after it.
func startIndex(startDay string, days []calendar.Day, index map[string]int) (int, bool) {
	if i, ok := index[startDay]; ok {
		return i, true
	}
	start, err := calendar.ParseDayID(startDay)
	if err != nil {
		return 0, false
	}
	i := slices.IndexFunc(days, func(d calendar.Day) bool {
		return !d.Date.Before(start)
	})
	return i, i >= 0
}

// JobHours pairs a job with the hours it holds on one day.
type JobHours struct {
	Job   job.Job `json:"job"`
	Hours float64 `json:"hours"`
}

// JobsOnDay resolves the segments of dayID to their jobs, in stacking order.
// Segments whose job is unknown are skipped.
func JobsOnDay(dayID string, r Result, jobs []job.Job) []JobHours {
	byID := make(map[string]job.Job, len(jobs))
	for _, j := range jobs {
		byID[j.ID] = j
	}
	var out []JobHours
	for _, s := range r.ByDay[dayID] {
		if j, ok := byID[s.JobID]; ok {
			out = append(out, JobHours{Job: j, Hours: s.Hours})
		}
	}
	return out
}
