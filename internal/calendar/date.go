package calendar

import (
	"fmt"
	"strings"
	"time"
)

// ParseDate parses a date expression relative to now.
// Supports: "today", "tomorrow", "yesterday", "monday", "next tuesday",
// "last friday", "on Monday", "2024-01-15", "Jan 2", "Jan 2 2006",
// "January 2", "January 2 2006", "2 Jan", "2 Jan 2006", "2 January",
// "2 January 2006". The result is midnight UTC of the resolved date.
func ParseDate(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	s = strings.TrimSpace(strings.TrimPrefix(s, "on "))

	switch s {
	case "today":
		return truncateToDay(now), nil
	case "tomorrow":
		return truncateToDay(now).AddDate(0, 0, 1), nil
	case "yesterday":
		return truncateToDay(now).AddDate(0, 0, -1), nil
	}

	if rest, ok := strings.CutPrefix(s, "last "); ok {
		if wd, ok := weekdays[rest]; ok {
			return previousWeekday(now, wd), nil
		}
	}

	cleaned := strings.TrimPrefix(s, "next ")
	if wd, ok := weekdays[cleaned]; ok {
		return nextWeekday(now, wd), nil
	}

	layouts := []string{
		IDLayout,
		"Jan 2",
		"Jan 2 2006",
		"January 2",
		"January 2 2006",
		"2 Jan",
		"2 Jan 2006",
		"2 January",
		"2 January 2006",
	}

	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			if !strings.Contains(layout, "2006") {
				t = time.Date(now.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			}
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
	"sun":       time.Sunday,
	"mon":       time.Monday,
	"tue":       time.Tuesday,
	"wed":       time.Wednesday,
	"thu":       time.Thursday,
	"fri":       time.Friday,
	"sat":       time.Saturday,
}

// nextWeekday returns the next occurrence of wd after now.
// If now is that weekday, it returns the following week.
func nextWeekday(now time.Time, wd time.Weekday) time.Time {
	today := truncateToDay(now)
	daysAhead := int(wd) - int(today.Weekday())
	if daysAhead <= 0 {
		daysAhead += 7
	}
	return today.AddDate(0, 0, daysAhead)
}

func previousWeekday(now time.Time, wd time.Weekday) time.Time {
	today := truncateToDay(now)
	daysBack := int(today.Weekday()) - int(wd)
	if daysBack <= 0 {
		daysBack += 7
	}
	return today.AddDate(0, 0, -daysBack)
}
