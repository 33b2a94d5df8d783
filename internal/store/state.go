package store

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Flyrell/shopweek/internal/capacity"
	"github.com/Flyrell/shopweek/internal/job"
)

// Supported state file formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// DayOverride is a per-day capacity override as it appears in state files.
// Older files store a bare number, which is read as the fab override.
type DayOverride struct {
	Fab *float64 `json:"fab,omitempty" yaml:"fab,omitempty"`
	Cut *float64 `json:"cut,omitempty" yaml:"cut,omitempty"`
}

// UnmarshalJSON accepts either {"fab":n,"cut":n} or a bare number.
func (o *DayOverride) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*o = DayOverride{Fab: &n}
		return nil
	}
	type plain DayOverride
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("day override: %w", err)
	}
	*o = DayOverride(p)
	return nil
}

// UnmarshalYAML accepts either a mapping or a bare number.
func (o *DayOverride) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		var n float64
		if err := node.Decode(&n); err != nil {
			return fmt.Errorf("day override: %w", err)
		}
		*o = DayOverride{Fab: &n}
		return nil
	}
	type plain DayOverride
	var p plain
	if err := node.Decode(&p); err != nil {
		return fmt.Errorf("day override: %w", err)
	}
	*o = DayOverride(p)
	return nil
}

// State is a full board snapshot used for export and import.
type State struct {
	Jobs       []job.Job              `json:"jobs" yaml:"jobs"`
	Overrides  map[string]DayOverride `json:"day_capacity_overrides,omitempty" yaml:"day_capacity_overrides,omitempty"`
	Locks      map[string]bool        `json:"friday_locks,omitempty" yaml:"friday_locks,omitempty"`
	Notes      map[string]string      `json:"day_notes,omitempty" yaml:"day_notes,omitempty"`
	Settings   *capacity.Settings     `json:"settings,omitempty" yaml:"settings,omitempty"`
	ExportedAt time.Time              `json:"exported_at" yaml:"exported_at"`
}

// NewState builds a State from stored rows.
func NewState(jobs []job.Job, days []capacity.DaySettings, settings *capacity.Settings, at time.Time) State {
	s := State{
		Jobs:       jobs,
		Overrides:  make(map[string]DayOverride),
		Locks:      make(map[string]bool),
		Notes:      make(map[string]string),
		Settings:   settings,
		ExportedAt: at,
	}
	if s.Jobs == nil {
		s.Jobs = []job.Job{}
	}
	for _, ds := range days {
		if ds.FabOverride != nil || ds.CutOverride != nil {
			s.Overrides[ds.DayID] = DayOverride{Fab: ds.FabOverride, Cut: ds.CutOverride}
		}
		if ds.FridayLocked != nil {
			s.Locks[ds.DayID] = *ds.FridayLocked
		}
		if ds.Note != "" {
			s.Notes[ds.DayID] = ds.Note
		}
	}
	return s
}

// DaySettings folds the override, lock and note maps back into one entry per
// day, ordered by day id.
func (s State) DaySettings() []capacity.DaySettings {
	byDay := make(map[string]*capacity.DaySettings)
	get := func(id string) *capacity.DaySettings {
		ds, ok := byDay[id]
		if !ok {
			ds = &capacity.DaySettings{DayID: id}
			byDay[id] = ds
		}
		return ds
	}
	for id, o := range s.Overrides {
		ds := get(id)
		ds.FabOverride = o.Fab
		ds.CutOverride = o.Cut
	}
	for id, locked := range s.Locks {
		get(id).FridayLocked = capacity.Locked(locked)
	}
	for id, note := range s.Notes {
		get(id).Note = note
	}

	out := make([]capacity.DaySettings, 0, len(byDay))
	for _, ds := range byDay {
		if !ds.Empty() {
			out = append(out, *ds)
		}
	}
	slices.SortFunc(out, func(a, b capacity.DaySettings) int {
		return strings.Compare(a.DayID, b.DayID)
	})
	return out
}

// Validate checks every job in the state.
func (s State) Validate() error {
	seen := make(map[string]bool, len(s.Jobs))
	for i, j := range s.Jobs {
		if j.ID == "" {
			return fmt.Errorf("job %d: missing id", i+1)
		}
		if seen[j.ID] {
			return fmt.Errorf("job '%s': duplicate id", j.ID)
		}
		seen[j.ID] = true
		if err := j.Validate(); err != nil {
			return fmt.Errorf("job '%s': %w", j.ID, err)
		}
	}
	return nil
}

// EncodeState writes s to w in the given format.
func EncodeState(w io.Writer, s State, format string) error {
	switch strings.ToLower(format) {
	case FormatJSON, "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	case FormatYAML, "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(s); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported state format %q (expected json or yaml)", format)
	}
}

// DecodeState reads a State from r in the given format.
func DecodeState(r io.Reader, format string) (State, error) {
	var s State
	switch strings.ToLower(format) {
	case FormatJSON, "":
		if err := json.NewDecoder(r).Decode(&s); err != nil {
			return State{}, fmt.Errorf("decoding state: %w", err)
		}
	case FormatYAML, "yml":
		if err := yaml.NewDecoder(r).Decode(&s); err != nil {
			return State{}, fmt.Errorf("decoding state: %w", err)
		}
	default:
		return State{}, fmt.Errorf("unsupported state format %q (expected json or yaml)", format)
	}
	if err := s.Validate(); err != nil {
		return State{}, err
	}
	return s, nil
}

// FormatFromPath picks a state format from a file extension.
func FormatFromPath(path string) string {
	lower := strings.ToLower(path)
	if strings.HasSuffix(lower, ".yaml") || strings.HasSuffix(lower, ".yml") {
		return FormatYAML
	}
	return FormatJSON
}
