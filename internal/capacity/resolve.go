package capacity

import (
	"github.com/Flyrell/shopweek/internal/calendar"
	"github.com/Flyrell/shopweek/internal/job"
)

// Segment is a block of hours allocated to one job on one day.
type Segment struct {
	JobID string  `json:"job_id"`
	Hours float64 `json:"hours"`
}

// IsLocked reports whether day is a Friday under the lock. Fridays without an
// explicit lock state are locked.
func IsLocked(day calendar.Day, locks map[string]bool) bool {
	if !day.IsConstrained() {
		return false
	}
	v, ok := locks[day.ID]
	return !ok || v
}

// DayCapacity resolves how many hours day can absorb in dim.
// Precedence: explicit override, then the Friday lock (fab only), then the
// Saturday default, then the weekday default for the dimension.
func DayCapacity(day calendar.Day, p Params, dim job.Dimension) float64 {
	if v, ok := p.override(day.ID, dim); ok {
		return v
	}

	if dim == job.Cut {
		switch {
		case day.IsConstrained():
			return p.CutFri
		case day.IsExtra():
			return 0
		}
		return p.CutMonThu
	}

	switch {
	case day.IsConstrained():
		if IsLocked(day, p.Locks) {
			return p.FriLocked
		}
		return p.FriUnlocked
	case day.IsExtra():
		return p.Saturday
	}
	return p.MonThu
}

// WeekCapacity sums DayCapacity over days.
func WeekCapacity(days []calendar.Day, p Params, dim job.Dimension) float64 {
	total := 0.0
	for _, d := range days {
		total += DayCapacity(d, p, dim)
	}
	return total
}

// DayUsed sums the hours already allocated on dayID.
func DayUsed(dayID string, byDay map[string][]Segment) float64 {
	used := 0.0
	for _, seg := range byDay[dayID] {
		used += seg.Hours
	}
	return used
}

// DayFree returns the unallocated capacity of day, never below zero.
func DayFree(day calendar.Day, byDay map[string][]Segment, p Params, dim job.Dimension) float64 {
	return max(DayCapacity(day, p, dim)-DayUsed(day.ID, byDay), 0)
}
