package board

import (
	"context"
	"fmt"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/Flyrell/shopweek/internal/calendar"
	"github.com/Flyrell/shopweek/internal/capacity"
	"github.com/Flyrell/shopweek/internal/job"
	"github.com/Flyrell/shopweek/internal/plan"
	"github.com/Flyrell/shopweek/internal/store"
)

// DayView is one column of the board.
type DayView struct {
	calendar.Day
	Capacity float64         `json:"capacity"`
	Used     float64         `json:"used"`
	Free     float64         `json:"free"`
	Locked   bool            `json:"locked"`
	Override *float64        `json:"override,omitempty"`
	Note     string          `json:"note,omitempty"`
	Jobs     []plan.JobHours `json:"jobs"`
}

// View is a fully computed board for one dimension.
type View struct {
	Dimension job.Dimension     `json:"view"`
	Anchor    time.Time         `json:"anchor"`
	Settings  capacity.Settings `json:"settings"`
	Days      []DayView         `json:"days"`
	Backlog   []job.Job         `json:"backlog"`
	Notes     []plan.Note       `json:"notes"`
	Total     float64           `json:"total"`
	Load      Load              `json:"load"`
	Jobs      []job.Job         `json:"-"`
	Schedule  plan.Result       `json:"-"`
}

// Load summarises how evenly the allocated hours spread over the days that
// have capacity. Utilization is used/capacity per day.
type Load struct {
	Mean    float64 `json:"mean"`
	StdDev  float64 `json:"std_dev"`
	Peak    float64 `json:"peak"`
	PeakDay string  `json:"peak_day,omitempty"`
}

func loadStats(days []DayView) Load {
	var l Load
	util := make([]float64, 0, len(days))
	for _, d := range days {
		if d.Capacity <= 0 {
			continue
		}
		u := d.Used / d.Capacity
		util = append(util, u)
		if u > l.Peak {
			l.Peak, l.PeakDay = u, d.ID
		}
	}
	switch len(util) {
	case 0:
		return l
	case 1:
		l.Mean = util[0]
		return l
	}
	l.Mean, l.StdDev = stat.MeanStdDev(util, nil)
	return l
}

// Week returns the days of the week starting at monday.
func (v View) Week(monday time.Time) []DayView {
	start := monday.Format(calendar.IDLayout)
	end := monday.AddDate(0, 0, 7).Format(calendar.IDLayout)
	var out []DayView
	for _, d := range v.Days {
		if d.ID >= start && d.ID < end {
			out = append(out, d)
		}
	}
	return out
}

// planning is the calendar and capacity input shared by every allocation.
type planning struct {
	settings    capacity.Settings
	daySettings []capacity.DaySettings
	days        []calendar.Day
	params      capacity.Params
}

// planningInput builds the visible days and capacity params around anchor.
func (s *Service) planningInput(ctx context.Context, anchor time.Time) (planning, error) {
	settings, err := s.Settings(ctx)
	if err != nil {
		return planning{}, err
	}
	daySettings, err := s.repo.ListDaySettings(ctx)
	if err != nil {
		return planning{}, fmt.Errorf("loading day settings: %w", err)
	}
	return planning{
		settings:    settings,
		daySettings: daySettings,
		days:        s.window.Generate(anchor, settings.IncludeSaturday),
		params:      capacity.NewParams(settings, daySettings),
	}, nil
}

// Snapshot computes the board around anchor for dim.
func (s *Service) Snapshot(ctx context.Context, anchor time.Time, dim job.Dimension) (View, error) {
	jobs, err := s.ListJobs(ctx)
	if err != nil {
		return View{}, err
	}
	in, err := s.planningInput(ctx, anchor)
	if err != nil {
		return View{}, err
	}

	started := time.Now()
	result := plan.Allocate(jobs, in.days, in.params, dim)
	backlog := plan.Backlog(jobs, dim)
	notes := plan.Notes(jobs, in.days, result, dim)
	s.metrics.RecordAllocation(dim.String(), result.Total, len(backlog), time.Since(started))

	dayNotes := make(map[string]string)
	for _, ds := range in.daySettings {
		if ds.Note != "" {
			dayNotes[ds.DayID] = ds.Note
		}
	}

	view := View{
		Dimension: dim,
		Anchor:    calendar.StartOfWeek(anchor),
		Settings:  in.settings,
		Backlog:   backlog,
		Notes:     notes,
		Total:     result.Total,
		Jobs:      jobs,
		Schedule:  result,
		Days:      make([]DayView, 0, len(in.days)),
	}
	for _, d := range in.days {
		dv := DayView{
			Day:      d,
			Capacity: capacity.DayCapacity(d, in.params, dim),
			Used:     capacity.DayUsed(d.ID, result.ByDay),
			Free:     capacity.DayFree(d, result.ByDay, in.params, dim),
			Note:     dayNotes[d.ID],
			Jobs:     plan.JobsOnDay(d.ID, result, jobs),
		}
		if d.IsConstrained() {
			dv.Locked = capacity.IsLocked(d, in.params.Locks)
		}
		if o, ok := in.params.Overrides[d.ID]; ok {
			if dim == job.Cut {
				dv.Override = o.Cut
			} else {
				dv.Override = o.Fab
			}
		}
		if dv.Jobs == nil {
			dv.Jobs = []plan.JobHours{}
		}
		view.Days = append(view.Days, dv)
	}

	view.Load = loadStats(view.Days)

	s.log.Debugw("snapshot computed", map[string]any{
		"view":    dim.String(),
		"days":    len(in.days),
		"jobs":    len(jobs),
		"total":   result.Total,
		"backlog": len(backlog),
	})
	return view, nil
}

// DaySettings returns every stored per-day entry.
func (s *Service) DaySettings(ctx context.Context) ([]capacity.DaySettings, error) {
	days, err := s.repo.ListDaySettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading day settings: %w", err)
	}
	return days, nil
}

func (s *Service) daySettings(ctx context.Context, dayID string) (capacity.DaySettings, error) {
	days, err := s.DaySettings(ctx)
	if err != nil {
		return capacity.DaySettings{}, err
	}
	for _, ds := range days {
		if ds.DayID == dayID {
			return ds, nil
		}
	}
	return capacity.DaySettings{DayID: dayID}, nil
}

// SaveDaySettings replaces the entry for one day.
func (s *Service) SaveDaySettings(ctx context.Context, ds capacity.DaySettings) error {
	if _, err := dayFromID(ds.DayID); err != nil {
		return err
	}
	for _, v := range []*float64{ds.FabOverride, ds.CutOverride} {
		if v != nil {
			if err := checkHours(*v); err != nil {
				return err
			}
		}
	}
	if ds.FridayLocked != nil && !calendar.IsFridayID(ds.DayID) {
		return fmt.Errorf("%w: %s", ErrNotFriday, ds.DayID)
	}
	if err := s.repo.SaveDaySettings(ctx, ds); err != nil {
		return fmt.Errorf("saving day settings: %w", err)
	}
	return nil
}

// SetDayOverride sets or, with a nil hours, clears the capacity override of
// dayID in dim.
func (s *Service) SetDayOverride(ctx context.Context, dayID string, dim job.Dimension, hours *float64) error {
	if _, err := dayFromID(dayID); err != nil {
		return err
	}
	ds, err := s.daySettings(ctx, dayID)
	if err != nil {
		return err
	}
	if dim == job.Cut {
		ds.CutOverride = hours
	} else {
		ds.FabOverride = hours
	}
	if err := s.SaveDaySettings(ctx, ds); err != nil {
		return err
	}
	if hours == nil {
		s.log.Infof("cleared %s override on %s", dim, dayID)
	} else {
		s.log.Infof("set %s override on %s to %g", dim, dayID, *hours)
	}
	return nil
}

// ToggleFridayLock flips the lock of a Friday and returns the new state.
// Fridays without an entry count as locked.
func (s *Service) ToggleFridayLock(ctx context.Context, dayID string) (bool, error) {
	day, err := dayFromID(dayID)
	if err != nil {
		return false, err
	}
	if !day.IsConstrained() {
		return false, fmt.Errorf("%w: %s", ErrNotFriday, dayID)
	}
	ds, err := s.daySettings(ctx, dayID)
	if err != nil {
		return false, err
	}
	current := true
	if ds.FridayLocked != nil {
		current = *ds.FridayLocked
	}
	ds.FridayLocked = capacity.Locked(!current)
	if err := s.SaveDaySettings(ctx, ds); err != nil {
		return false, err
	}
	s.log.Infof("friday %s locked=%t", dayID, !current)
	return !current, nil
}

// SetDayNote sets the free-text note of a day. An empty note clears it.
func (s *Service) SetDayNote(ctx context.Context, dayID, note string) error {
	if _, err := dayFromID(dayID); err != nil {
		return err
	}
	ds, err := s.daySettings(ctx, dayID)
	if err != nil {
		return err
	}
	ds.Note = note
	return s.SaveDaySettings(ctx, ds)
}

// ClearDay removes every setting of a day.
func (s *Service) ClearDay(ctx context.Context, dayID string) error {
	if _, err := dayFromID(dayID); err != nil {
		return err
	}
	if err := s.repo.SaveDaySettings(ctx, capacity.DaySettings{DayID: dayID}); err != nil {
		return fmt.Errorf("clearing day settings: %w", err)
	}
	return nil
}

// Export captures the whole board.
func (s *Service) Export(ctx context.Context) (store.State, error) {
	jobs, err := s.ListJobs(ctx)
	if err != nil {
		return store.State{}, err
	}
	days, err := s.DaySettings(ctx)
	if err != nil {
		return store.State{}, err
	}
	settings, ok, err := s.repo.GetSettings(ctx)
	if err != nil {
		return store.State{}, fmt.Errorf("loading settings: %w", err)
	}
	var sp *capacity.Settings
	if ok {
		sp = &settings
	}
	return store.NewState(jobs, days, sp, s.now().UTC()), nil
}

// ImportSummary reports what an import wrote.
type ImportSummary struct {
	Jobs        int `json:"jobs"`
	DaySettings int `json:"day_settings"`
}

// Import replaces the board with state.
func (s *Service) Import(ctx context.Context, state store.State) (ImportSummary, error) {
	if err := state.Validate(); err != nil {
		return ImportSummary{}, err
	}
	if state.Settings != nil {
		if err := validateSettings(*state.Settings); err != nil {
			return ImportSummary{}, err
		}
	}
	now := s.now()
	for i := range state.Jobs {
		if state.Jobs[i].Color == "" {
			state.Jobs[i].Color = job.DefaultColor
		}
		category, err := job.ParseCategory(string(state.Jobs[i].Category))
		if err != nil {
			return ImportSummary{}, err
		}
		state.Jobs[i].Category = category
		if state.Jobs[i].CreatedAt.IsZero() {
			state.Jobs[i].CreatedAt = now
		}
		if state.Jobs[i].UpdatedAt.IsZero() {
			state.Jobs[i].UpdatedAt = now
		}
	}
	if err := s.repo.ReplaceState(ctx, state); err != nil {
		return ImportSummary{}, fmt.Errorf("importing state: %w", err)
	}
	summary := ImportSummary{Jobs: len(state.Jobs), DaySettings: len(state.DaySettings())}
	s.log.Infof("imported %d jobs and %d day settings", summary.Jobs, summary.DaySettings)
	return summary, nil
}
