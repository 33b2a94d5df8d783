package job

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"
)

// Dimension is one of the two independent scheduling tracks a job takes part in.
type Dimension string

const (
	Fab Dimension = "fab"
	Cut Dimension = "cut"
)

// Dimensions returns every dimension in a fixed order (fab first).
func Dimensions() []Dimension {
	return []Dimension{Fab, Cut}
}

// ParseDimension resolves a user-supplied view name. Empty input means fab.
func ParseDimension(s string) (Dimension, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "fab":
		return Fab, nil
	case "cut":
		return Cut, nil
	}
	return "", fmt.Errorf("unknown view %q (expected fab or cut)", s)
}

func (d Dimension) String() string { return string(d) }

// Category tags a job. Screens jobs may run on locked Fridays.
type Category string

const (
	Windows Category = "windows"
	Screens Category = "screens"
)

// ParseCategory resolves a category name. Empty input means windows.
func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "windows":
		return Windows, nil
	case "screens":
		return Screens, nil
	}
	return "", fmt.Errorf("%w %q (expected windows or screens)", ErrUnknownCategory, s)
}

// LockExempt reports whether jobs of this category ignore the Friday lock.
func (c Category) LockExempt() bool {
	return c == Screens
}

// Colors is the palette offered for job cards.
var Colors = []string{
	"#ff6fae",
	"#2b9df4",
	"#95e062",
	"#ffd166",
	"#ff1744",
	"#a78bfa",
	"#4fd1c5",
	"#ff922b",
	"#2ec27e",
	"#000000",
}

// DefaultColor is used when a job is created without one.
var DefaultColor = Colors[0]

// Work is the duration a job needs in one dimension. Extra tracks rework or
// overflow separately but is allocated together with Base.
type Work struct {
	Base  float64 `json:"base" yaml:"base"`
	Extra float64 `json:"extra" yaml:"extra"`
}

// Total returns the allocatable hours.
func (w Work) Total() float64 {
	return w.Base + w.Extra
}

// Placement is where a job sits in one dimension. An empty StartDay means the
// job is in that dimension's backlog.
type Placement struct {
	StartDay string  `json:"start_day,omitempty" yaml:"start_day,omitempty"`
	Order    float64 `json:"order" yaml:"order"`
}

// Scheduled reports whether a start day is assigned.
func (p Placement) Scheduled() bool {
	return p.StartDay != ""
}

// Track bundles the work and placement of a job in a single dimension.
type Track struct {
	Work      Work      `json:"work" yaml:"work"`
	Placement Placement `json:"placement" yaml:"placement"`
}

// Job is one unit of schedulable work.
type Job struct {
	ID        string    `json:"id" yaml:"id"`
	Title     string    `json:"title" yaml:"title"`
	Ref       string    `json:"ref" yaml:"ref"`
	Category  Category  `json:"category" yaml:"category"`
	Color     string    `json:"color" yaml:"color"`
	Note      string    `json:"note,omitempty" yaml:"note,omitempty"`
	Fab       Track     `json:"fab" yaml:"fab"`
	Cut       Track     `json:"cut" yaml:"cut"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`
}

// Track returns the job's track for dim.
func (j Job) Track(dim Dimension) Track {
	if dim == Cut {
		return j.Cut
	}
	return j.Fab
}

// Hours returns the total allocatable hours in dim.
func (j Job) Hours(dim Dimension) float64 {
	return j.Track(dim).Work.Total()
}

// Placement returns the placement in dim.
func (j Job) Placement(dim Dimension) Placement {
	return j.Track(dim).Placement
}

// WithPlacement returns a copy of j with the placement in dim replaced.
// The other dimension is left untouched.
func (j Job) WithPlacement(dim Dimension, p Placement) Job {
	if dim == Cut {
		j.Cut.Placement = p
	} else {
		j.Fab.Placement = p
	}
	return j
}

// WithWork returns a copy of j with the work in dim replaced.
func (j Job) WithWork(dim Dimension, w Work) Job {
	if dim == Cut {
		j.Cut.Work = w
	} else {
		j.Fab.Work = w
	}
	return j
}

var (
	ErrEmptyTitle      = errors.New("job title is required")
	ErrInvalidHours    = errors.New("hours must be finite and not negative")
	ErrUnknownCategory = errors.New("unknown job type")
)

// Validate checks the invariants the scheduler relies on.
func (j Job) Validate() error {
	if strings.TrimSpace(j.Title) == "" {
		return ErrEmptyTitle
	}
	if _, err := ParseCategory(string(j.Category)); err != nil {
		return err
	}
	for _, dim := range Dimensions() {
		w := j.Track(dim).Work
		for _, h := range []float64{w.Base, w.Extra} {
			if h < 0 || math.IsNaN(h) || math.IsInf(h, 0) {
				return fmt.Errorf("%s: %w", dim, ErrInvalidHours)
			}
		}
	}
	return nil
}

var mcPrefix = regexp.MustCompile(`(?i)^mc`)

// FormatTitle upper-cases a customer title while keeping "Mc" prefixes readable,
// e.g. "mccourt" becomes "McCOURT".
func FormatTitle(title string) string {
	upper := strings.ToUpper(title)
	if mcPrefix.MatchString(title) {
		return "Mc" + upper[2:]
	}
	return upper
}
