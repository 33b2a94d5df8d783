package calendar

import (
	"fmt"
	"time"
)

// IDLayout is the canonical day key format.
const IDLayout = "2006-01-02"

// Kind tags what sort of working day a Day is.
type Kind int

const (
	// Ordinary is Monday through Thursday.
	Ordinary Kind = iota
	// Constrained is Friday; its capacity depends on the Friday lock.
	Constrained
	// Extra is Saturday, shown only when enabled.
	Extra
)

func (k Kind) String() string {
	switch k {
	case Constrained:
		return "constrained"
	case Extra:
		return "extra"
	default:
		return "ordinary"
	}
}

// MarshalText renders the kind by name.
func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// UnmarshalText parses a kind name.
func (k *Kind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "ordinary":
		*k = Ordinary
	case "constrained":
		*k = Constrained
	case "extra":
		*k = Extra
	default:
		return fmt.Errorf("unknown day kind %q", text)
	}
	return nil
}

// Day is one schedulable calendar slot.
type Day struct {
	ID    string    `json:"id"`
	Date  time.Time `json:"date"`
	Label string    `json:"label"`
	Kind  Kind      `json:"kind"`
}

// IsConstrained reports whether the day is a Friday.
func (d Day) IsConstrained() bool { return d.Kind == Constrained }

// IsExtra reports whether the day is a Saturday.
func (d Day) IsExtra() bool { return d.Kind == Extra }

// NewDay builds a Day for the calendar date of t.
func NewDay(t time.Time) Day {
	date := truncateToDay(t)
	kind := Ordinary
	switch date.Weekday() {
	case time.Friday:
		kind = Constrained
	case time.Saturday:
		kind = Extra
	}
	return Day{
		ID:    date.Format(IDLayout),
		Date:  date,
		Label: formatLabel(date),
		Kind:  kind,
	}
}

// ParseDayID parses a canonical day key.
func ParseDayID(id string) (time.Time, error) {
	t, err := time.Parse(IDLayout, id)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid day id %q", id)
	}
	return t, nil
}

// IsFridayID reports whether id names a Friday. Invalid ids are not Fridays.
func IsFridayID(id string) bool {
	t, err := ParseDayID(id)
	return err == nil && t.Weekday() == time.Friday
}

// formatLabel renders "Mon ~ 19/10".
func formatLabel(d time.Time) string {
	return fmt.Sprintf("%s ~ %02d/%02d", d.Weekday().String()[:3], d.Day(), int(d.Month()))
}

// truncateToDay returns midnight UTC of the calendar date of t in its own location.
func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
