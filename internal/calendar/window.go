package calendar

import (
	"time"

	"github.com/teambition/rrule-go"
)

// Window is how far the calendar reaches around the anchor week.
type Window struct {
	WeeksBack  int
	WeeksAhead int
}

// DefaultWindow shows four weeks of history and twelve weeks ahead.
var DefaultWindow = Window{WeeksBack: 4, WeeksAhead: 12}

// Generate returns the schedulable days around anchor using DefaultWindow.
func Generate(anchor time.Time, includeExtra bool) []Day {
	return DefaultWindow.Generate(anchor, includeExtra)
}

// Generate returns the schedulable days from WeeksBack weeks before the Monday
// of anchor's week up to (not including) WeeksAhead weeks after it. Sundays are
// never included; Saturdays only when includeExtra is set. Days are ascending.
func (w Window) Generate(anchor time.Time, includeExtra bool) []Day {
	monday := StartOfWeek(anchor)
	from := monday.AddDate(0, 0, -7*w.WeeksBack)
	until := monday.AddDate(0, 0, 7*w.WeeksAhead-1)
	if until.Before(from) {
		return nil
	}

	dates := workingDayRule(from, until, includeExtra).Between(from, until, true)
	days := make([]Day, 0, len(dates))
	for _, d := range dates {
		days = append(days, NewDay(d))
	}
	return days
}

// workingDayRule expands to every working weekday between from and until.
func workingDayRule(from, until time.Time, includeExtra bool) *rrule.RRule {
	weekdays := []rrule.Weekday{rrule.MO, rrule.TU, rrule.WE, rrule.TH, rrule.FR}
	if includeExtra {
		weekdays = append(weekdays, rrule.SA)
	}
	r, err := rrule.NewRRule(rrule.ROption{
		Freq:      rrule.DAILY,
		Dtstart:   from,
		Until:     until,
		Byweekday: weekdays,
	})
	if err != nil {
		// the options above are constant apart from the dates
		panic("calendar: building working day rule: " + err.Error())
	}
	return r
}

// StartOfWeek returns the Monday (UTC midnight) of the week containing t.
func StartOfWeek(t time.Time) time.Time {
	d := truncateToDay(t)
	diff := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -diff)
}

// PreviousFriday returns the last Friday strictly before t.
func PreviousFriday(t time.Time) time.Time {
	d := truncateToDay(t).AddDate(0, 0, -1)
	for d.Weekday() != time.Friday {
		d = d.AddDate(0, 0, -1)
	}
	return d
}
