package capacity

import "github.com/Flyrell/shopweek/internal/job"

// Settings are the global capacity defaults, in hours per day.
type Settings struct {
	MonThu          float64 `json:"mon_thu" yaml:"mon_thu" koanf:"mon_thu"`
	FriUnlocked     float64 `json:"fri_unlocked" yaml:"fri_unlocked" koanf:"fri_unlocked"`
	FriLocked       float64 `json:"fri_locked" yaml:"fri_locked" koanf:"fri_locked"`
	IncludeSaturday bool    `json:"include_saturday" yaml:"include_saturday" koanf:"include_saturday"`
	Saturday        float64 `json:"saturday" yaml:"saturday" koanf:"saturday"`
	CutMonThu       float64 `json:"cut_mon_thu" yaml:"cut_mon_thu" koanf:"cut_mon_thu"`
	CutFri          float64 `json:"cut_fri" yaml:"cut_fri" koanf:"cut_fri"`
}

// DefaultSettings mirrors the shop's standard week.
func DefaultSettings() Settings {
	return Settings{
		MonThu:      13,
		FriUnlocked: 13,
		FriLocked:   4,
		Saturday:    8,
		CutMonThu:   10,
		CutFri:      0,
	}
}

// DaySettings are the sparse per-day settings. Nil pointers mean "not set",
// which is different from an explicit zero override.
type DaySettings struct {
	DayID        string   `json:"day_id" yaml:"day_id"`
	FabOverride  *float64 `json:"fab_override,omitempty" yaml:"fab_override,omitempty"`
	CutOverride  *float64 `json:"cut_override,omitempty" yaml:"cut_override,omitempty"`
	FridayLocked *bool    `json:"friday_locked,omitempty" yaml:"friday_locked,omitempty"`
	Note         string   `json:"note,omitempty" yaml:"note,omitempty"`
}

// Empty reports whether the entry carries no information and can be dropped.
func (ds DaySettings) Empty() bool {
	return ds.FabOverride == nil && ds.CutOverride == nil && ds.FridayLocked == nil && ds.Note == ""
}

// Override holds the per-dimension capacity overrides for one day.
type Override struct {
	Fab *float64 `json:"fab,omitempty" yaml:"fab,omitempty"`
	Cut *float64 `json:"cut,omitempty" yaml:"cut,omitempty"`
}

// Params is the immutable snapshot the resolver and allocator work from.
type Params struct {
	Settings
	Overrides map[string]Override
	Locks     map[string]bool
}

// NewParams folds sparse day settings into a Params snapshot.
func NewParams(settings Settings, days []DaySettings) Params {
	p := Params{
		Settings:  settings,
		Overrides: make(map[string]Override),
		Locks:     make(map[string]bool),
	}
	for _, ds := range days {
		if ds.FabOverride != nil || ds.CutOverride != nil {
			p.Overrides[ds.DayID] = Override{
				Fab: copyFloat(ds.FabOverride),
				Cut: copyFloat(ds.CutOverride),
			}
		}
		if ds.FridayLocked != nil {
			p.Locks[ds.DayID] = *ds.FridayLocked
		}
	}
	return p
}

// override returns the explicit override for dim on dayID, if any.
func (p Params) override(dayID string, dim job.Dimension) (float64, bool) {
	o, ok := p.Overrides[dayID]
	if !ok {
		return 0, false
	}
	v := o.Fab
	if dim == job.Cut {
		v = o.Cut
	}
	if v == nil {
		return 0, false
	}
	return *v, true
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

// Hours is a helper for building overrides inline.
func Hours(v float64) *float64 { return &v }

// Locked is a helper for building lock states inline.
func Locked(v bool) *bool { return &v }
