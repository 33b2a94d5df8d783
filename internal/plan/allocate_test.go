package plan

import (
	"testing"
	"time"

	"github.com/Flyrell/shopweek/internal/calendar"
	"github.com/Flyrell/shopweek/internal/capacity"
	"github.com/Flyrell/shopweek/internal/job"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Week of Monday 2026-10-19.
const (
	mon     = "2026-10-19"
	tue     = "2026-10-20"
	wed     = "2026-10-21"
	thu     = "2026-10-22"
	fri     = "2026-10-23"
	sat     = "2026-10-24"
	nextMon = "2026-10-26"
)

var anchor = time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)

func twoWeeks(includeSaturday bool) []calendar.Day {
	return calendar.Window{WeeksAhead: 2}.Generate(anchor, includeSaturday)
}

func fabJob(id string, hours float64, start string, key float64) job.Job {
	return job.Job{
		ID:       id,
		Title:    id,
		Category: job.Windows,
		Fab: job.Track{
			Work:      job.Work{Base: hours},
			Placement: job.Placement{StartDay: start, Order: key},
		},
	}
}

func TestAllocateSharedMonday(t *testing.T) {
	jobs := []job.Job{
		fabJob("B", 6, mon, 2),
		fabJob("A", 10, mon, 1),
	}
	p := capacity.NewParams(capacity.DefaultSettings(), nil)

	r := Allocate(jobs, twoWeeks(false), p, job.Fab)

	assert.Equal(t, []Segment{{JobID: "A", Hours: 10}, {JobID: "B", Hours: 3}}, r.OnDay(mon))
	assert.Equal(t, []Segment{{JobID: "B", Hours: 3}}, r.OnDay(tue))
	assert.Equal(t, 16.0, r.Total)
}

func TestAllocateEarlierStartWinsOverKey(t *testing.T) {
	jobs := []job.Job{
		fabJob("late", 5, tue, 1),
		fabJob("early", 20, mon, 99),
	}
	p := capacity.NewParams(capacity.DefaultSettings(), nil)

	r := Allocate(jobs, twoWeeks(false), p, job.Fab)

	assert.Equal(t, []Segment{{JobID: "early", Hours: 13}}, r.OnDay(mon))
	assert.Equal(t, []Segment{{JobID: "early", Hours: 7}, {JobID: "late", Hours: 5}}, r.OnDay(tue))
}

func TestAllocateZeroOverrideSkipsDay(t *testing.T) {
	p := capacity.NewParams(capacity.DefaultSettings(), []capacity.DaySettings{
		{DayID: wed, FabOverride: capacity.Hours(0)},
	})
	jobs := []job.Job{fabJob("A", 30, mon, 1)}

	r := Allocate(jobs, twoWeeks(false), p, job.Fab)

	assert.Empty(t, r.OnDay(wed))
	assert.Equal(t, []Segment{{JobID: "A", Hours: 4}}, r.OnDay(thu))
	assert.Equal(t, 30.0, r.JobTotal("A"))
}

func TestAllocateLockedFridaySkippedForOrdinaryJobs(t *testing.T) {
	p := capacity.NewParams(capacity.DefaultSettings(), nil)
	jobs := []job.Job{fabJob("A", 10, fri, 1)}

	r := Allocate(jobs, twoWeeks(false), p, job.Fab)

	assert.Empty(t, r.OnDay(fri))
	assert.Equal(t, []Segment{{JobID: "A", Hours: 10}}, r.OnDay(nextMon))
}

func TestAllocateLockedFridayAcceptsExemptJobs(t *testing.T) {
	p := capacity.NewParams(capacity.DefaultSettings(), nil)
	screens := fabJob("S", 10, fri, 1)
	screens.Category = job.Screens

	r := Allocate([]job.Job{screens}, twoWeeks(false), p, job.Fab)

	assert.Equal(t, []Segment{{JobID: "S", Hours: 4}}, r.OnDay(fri))
	assert.Equal(t, []Segment{{JobID: "S", Hours: 6}}, r.OnDay(nextMon))
}

func TestAllocateUnlockedFriday(t *testing.T) {
	p := capacity.NewParams(capacity.DefaultSettings(), []capacity.DaySettings{
		{DayID: fri, FridayLocked: capacity.Locked(false)},
	})
	jobs := []job.Job{fabJob("A", 10, fri, 1)}

	r := Allocate(jobs, twoWeeks(false), p, job.Fab)

	assert.Equal(t, []Segment{{JobID: "A", Hours: 10}}, r.OnDay(fri))
}

func TestAllocateSaturday(t *testing.T) {
	settings := capacity.DefaultSettings()
	settings.IncludeSaturday = true
	p := capacity.NewParams(settings, []capacity.DaySettings{
		{DayID: fri, FridayLocked: capacity.Locked(false)},
	})
	jobs := []job.Job{fabJob("A", 20, fri, 1)}

	r := Allocate(jobs, twoWeeks(true), p, job.Fab)

	assert.Equal(t, []Segment{{JobID: "A", Hours: 13}}, r.OnDay(fri))
	assert.Equal(t, []Segment{{JobID: "A", Hours: 7}}, r.OnDay(sat))
}

func TestAllocateCutIgnoresLockAndUsesCutCapacity(t *testing.T) {
	p := capacity.NewParams(capacity.DefaultSettings(), nil)
	j := job.Job{
		ID:       "A",
		Title:    "A",
		Category: job.Windows,
		Fab:      job.Track{Work: job.Work{Base: 50}},
		Cut: job.Track{
			Work:      job.Work{Base: 12, Extra: 3},
			Placement: job.Placement{StartDay: thu, Order: 1},
		},
	}

	r := Allocate([]job.Job{j}, twoWeeks(false), p, job.Cut)

	assert.Equal(t, []Segment{{JobID: "A", Hours: 10}}, r.OnDay(thu))
	// cut Friday default is zero
	assert.Empty(t, r.OnDay(fri))
	assert.Equal(t, []Segment{{JobID: "A", Hours: 5}}, r.OnDay(nextMon))
	assert.Equal(t, 15.0, r.Total)

	// the fab track is in the backlog and allocates nothing
	fab := Allocate([]job.Job{j}, twoWeeks(false), p, job.Fab)
	assert.Zero(t, fab.Total)
}

func TestAllocateStartBeforeWindow(t *testing.T) {
	p := capacity.NewParams(capacity.DefaultSettings(), nil)
	jobs := []job.Job{fabJob("old", 5, "2026-10-14", 1)}

	r := Allocate(jobs, twoWeeks(false), p, job.Fab)

	assert.Equal(t, []Segment{{JobID: "old", Hours: 5}}, r.OnDay(mon))
}

func TestAllocateStartAfterWindow(t *testing.T) {
	p := capacity.NewParams(capacity.DefaultSettings(), nil)
	jobs := []job.Job{fabJob("future", 5, "2027-01-04", 1)}

	r := Allocate(jobs, twoWeeks(false), p, job.Fab)

	assert.Zero(t, r.Total)
}

func TestAllocateStartOnHiddenSaturday(t *testing.T) {
	p := capacity.NewParams(capacity.DefaultSettings(), nil)
	jobs := []job.Job{fabJob("A", 5, sat, 1)}

	r := Allocate(jobs, twoWeeks(false), p, job.Fab)

	assert.Equal(t, []Segment{{JobID: "A", Hours: 5}}, r.OnDay(nextMon))
}

func TestAllocateTailOutsideWindowIsDropped(t *testing.T) {
	p := capacity.NewParams(capacity.DefaultSettings(), nil)
	jobs := []job.Job{fabJob("huge", 1000, mon, 1)}
	days := twoWeeks(false)

	r := Allocate(jobs, days, p, job.Fab)

	want := capacity.WeekCapacity(days, p, job.Fab) - 2*4 // locked Fridays skipped
	assert.Equal(t, want, r.Total)
}

func TestAllocateSkipsZeroHourAndUnscheduledJobs(t *testing.T) {
	p := capacity.NewParams(capacity.DefaultSettings(), nil)
	jobs := []job.Job{
		fabJob("zero", 0, mon, 1),
		fabJob("backlog", 5, "", 2),
		fabJob("bad", 5, "not-a-date", 3),
	}

	r := Allocate(jobs, twoWeeks(false), p, job.Fab)

	assert.Zero(t, r.Total)
	for _, segs := range r.ByDay {
		assert.Empty(t, segs)
	}
}

func TestAllocateEveryDayHasEntry(t *testing.T) {
	days := twoWeeks(false)
	r := Allocate(nil, days, capacity.NewParams(capacity.DefaultSettings(), nil), job.Fab)

	require.Len(t, r.ByDay, len(days))
	for _, d := range days {
		segs, ok := r.ByDay[d.ID]
		assert.True(t, ok)
		assert.NotNil(t, segs)
	}
}

func TestAllocateRespectsCapacityAndConservesHours(t *testing.T) {
	settings := capacity.DefaultSettings()
	settings.IncludeSaturday = true
	days := twoWeeks(true)
	p := capacity.NewParams(settings, []capacity.DaySettings{
		{DayID: tue, FabOverride: capacity.Hours(2.5)},
		{DayID: fri, FridayLocked: capacity.Locked(false)},
	})
	jobs := []job.Job{
		fabJob("a", 7.3, mon, 3),
		fabJob("b", 11.1, mon, 1),
		fabJob("c", 4.4, tue, 1),
		fabJob("d", 19.75, wed, 2),
		fabJob("e", 0.6, wed, 1),
	}
	jobs[2].Fab.Work.Extra = 1.2

	r := Allocate(jobs, days, p, job.Fab)

	for _, d := range days {
		assert.LessOrEqual(t, capacity.DayUsed(d.ID, r.ByDay), capacity.DayCapacity(d, p, job.Fab)+1e-9, d.ID)
	}
	sum := 0.0
	for _, j := range jobs {
		assert.InDelta(t, j.Hours(job.Fab), r.JobTotal(j.ID), 1e-9, j.ID)
		sum += j.Hours(job.Fab)
	}
	assert.InDelta(t, sum, r.Total, 1e-9)
}

func TestAllocateIsDeterministic(t *testing.T) {
	days := twoWeeks(false)
	p := capacity.NewParams(capacity.DefaultSettings(), nil)
	jobs := []job.Job{
		fabJob("x", 9, mon, 2),
		fabJob("y", 9, mon, 2),
		fabJob("z", 30, tue, 1),
	}

	first := Allocate(jobs, days, p, job.Fab)
	second := Allocate(jobs, days, p, job.Fab)

	assert.Equal(t, first, second)
	// equal keys keep input order
	assert.Equal(t, "x", first.OnDay(mon)[0].JobID)
}

func TestJobsOnDay(t *testing.T) {
	jobs := []job.Job{fabJob("A", 10, mon, 1), fabJob("B", 6, mon, 2)}
	r := Allocate(jobs, twoWeeks(false), capacity.NewParams(capacity.DefaultSettings(), nil), job.Fab)
	r.ByDay[mon] = append(r.ByDay[mon], Segment{JobID: "ghost", Hours: 1})

	on := JobsOnDay(mon, r, jobs)

	require.Len(t, on, 2)
	assert.Equal(t, "A", on[0].Job.ID)
	assert.Equal(t, 10.0, on[0].Hours)
	assert.Equal(t, "B", on[1].Job.ID)
	assert.Equal(t, 3.0, on[1].Hours)
}
