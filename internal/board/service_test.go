package board

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Flyrell/shopweek/internal/calendar"
	"github.com/Flyrell/shopweek/internal/capacity"
	"github.com/Flyrell/shopweek/internal/job"
	"github.com/Flyrell/shopweek/internal/store"
)

type memRepo struct {
	jobs     map[string]job.Job
	days     map[string]capacity.DaySettings
	settings *capacity.Settings
}

func newMemRepo() *memRepo {
	return &memRepo{jobs: map[string]job.Job{}, days: map[string]capacity.DaySettings{}}
}

func (m *memRepo) ListJobs(context.Context) ([]job.Job, error) {
	out := make([]job.Job, 0, len(m.jobs))
	for _, j := range m.jobs {
		out = append(out, j)
	}
	slices.SortFunc(out, func(a, b job.Job) int {
		if c := cmp.Compare(a.Fab.Placement.Order, b.Fab.Placement.Order); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out, nil
}

func (m *memRepo) GetJob(_ context.Context, id string) (job.Job, error) {
	j, ok := m.jobs[id]
	if !ok {
		return job.Job{}, fmt.Errorf("job '%s': %w", id, store.ErrNotFound)
	}
	return j, nil
}

func (m *memRepo) SaveJob(_ context.Context, j job.Job) error {
	m.jobs[j.ID] = j
	return nil
}

func (m *memRepo) SaveJobs(ctx context.Context, jobs []job.Job) error {
	for _, j := range jobs {
		m.jobs[j.ID] = j
	}
	return nil
}

func (m *memRepo) DeleteJob(_ context.Context, id string) error {
	if _, ok := m.jobs[id]; !ok {
		return fmt.Errorf("job '%s': %w", id, store.ErrNotFound)
	}
	delete(m.jobs, id)
	return nil
}

func (m *memRepo) ListDaySettings(context.Context) ([]capacity.DaySettings, error) {
	out := make([]capacity.DaySettings, 0, len(m.days))
	for _, ds := range m.days {
		out = append(out, ds)
	}
	slices.SortFunc(out, func(a, b capacity.DaySettings) int { return cmp.Compare(a.DayID, b.DayID) })
	return out, nil
}

func (m *memRepo) SaveDaySettings(_ context.Context, ds capacity.DaySettings) error {
	if ds.Empty() {
		delete(m.days, ds.DayID)
		return nil
	}
	m.days[ds.DayID] = ds
	return nil
}

func (m *memRepo) GetSettings(context.Context) (capacity.Settings, bool, error) {
	if m.settings == nil {
		return capacity.Settings{}, false, nil
	}
	return *m.settings, true, nil
}

func (m *memRepo) SaveSettings(_ context.Context, s capacity.Settings) error {
	m.settings = &s
	return nil
}

func (m *memRepo) ReplaceState(_ context.Context, s store.State) error {
	m.jobs = map[string]job.Job{}
	m.days = map[string]capacity.DaySettings{}
	for _, j := range s.Jobs {
		m.jobs[j.ID] = j
	}
	for _, ds := range s.DaySettings() {
		m.days[ds.DayID] = ds
	}
	if s.Settings != nil {
		settings := *s.Settings
		m.settings = &settings
	}
	return nil
}

type recorded struct {
	view    string
	total   float64
	backlog int
}

type fakeRecorder struct{ calls []recorded }

func (f *fakeRecorder) RecordAllocation(view string, total float64, backlog int, _ time.Duration) {
	f.calls = append(f.calls, recorded{view, total, backlog})
}

var (
	monday = time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)
	friday = "2026-10-23"
	fixed  = time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)
)

func newTestService(t *testing.T) (*Service, *memRepo, *fakeRecorder) {
	t.Helper()
	repo := newMemRepo()
	rec := &fakeRecorder{}
	n := 0
	svc := NewService(repo, Options{
		Metrics: rec,
		Window:  calendar.Window{WeeksBack: 1, WeeksAhead: 2},
		Now:     func() time.Time { return fixed },
		NewID: func() string {
			n++
			return fmt.Sprintf("job-%d", n)
		},
	})
	return svc, repo, rec
}

func seed(repo *memRepo, id string, fab float64, start string, order float64) job.Job {
	j := job.Job{
		ID:        id,
		Title:     "Job " + id,
		Category:  job.Windows,
		Color:     job.DefaultColor,
		Fab:       job.Track{Work: job.Work{Base: fab}, Placement: job.Placement{StartDay: start, Order: order}},
		Cut:       job.Track{Work: job.Work{Base: 1}, Placement: job.Placement{Order: order}},
		CreatedAt: fixed,
		UpdatedAt: fixed,
	}
	repo.jobs[id] = j
	return j
}

func TestAddJob(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()
	seed(repo, "x", 4, "", 7)

	j, err := svc.AddJob(ctx, job.Job{
		Title: "  McCourt  ",
		Fab:   job.Track{Work: job.Work{Base: 6}},
	})
	require.NoError(t, err)

	assert.Equal(t, "job-1", j.ID)
	assert.Equal(t, "McCourt", j.Title)
	assert.Equal(t, job.Windows, j.Category)
	assert.Equal(t, job.DefaultColor, j.Color)
	assert.Equal(t, 8.0, j.Fab.Placement.Order)
	assert.Equal(t, 8.0, j.Cut.Placement.Order)
	assert.False(t, j.Fab.Placement.Scheduled())
	assert.Equal(t, fixed, j.CreatedAt)
	assert.Contains(t, repo.jobs, "job-1")
}

func TestAddJobRejectsInvalid(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.AddJob(ctx, job.Job{Title: "No hours"})
	assert.ErrorIs(t, err, ErrNoHours)

	_, err = svc.AddJob(ctx, job.Job{Title: " ", Fab: job.Track{Work: job.Work{Base: 1}}})
	assert.ErrorIs(t, err, job.ErrEmptyTitle)

	_, err = svc.AddJob(ctx, job.Job{Title: "Neg", Fab: job.Track{Work: job.Work{Base: -1}}})
	assert.ErrorIs(t, err, job.ErrInvalidHours)
}

func TestUpdateJobKeepsPlacement(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()
	seed(repo, "a", 10, "2026-10-19", 1)

	j, err := svc.UpdateJob(ctx, "a", job.Job{
		Title:    "Bigger",
		Category: job.Screens,
		Fab:      job.Track{Work: job.Work{Base: 12, Extra: 2}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Bigger", j.Title)
	assert.Equal(t, 14.0, j.Hours(job.Fab))
	assert.Equal(t, "2026-10-19", j.Fab.Placement.StartDay)
	assert.Equal(t, 1.0, j.Fab.Placement.Order)

	_, err = svc.UpdateJob(ctx, "missing", job.Job{Title: "x"})
	assert.ErrorIs(t, err, ErrJobNotFound)
}

func TestRemoveJobRenormalizes(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()
	seed(repo, "a", 1, "", 1)
	seed(repo, "b", 1, "", 2)
	seed(repo, "c", 1, "", 3)

	require.NoError(t, svc.RemoveJob(ctx, "b"))
	assert.Equal(t, 2.0, repo.jobs["c"].Fab.Placement.Order)
	assert.Equal(t, 2.0, repo.jobs["c"].Cut.Placement.Order)
	assert.ErrorIs(t, svc.RemoveJob(ctx, "b"), ErrJobNotFound)
}

func TestDropOnDayBetweenNeighbours(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()
	seed(repo, "a", 10, "2026-10-19", 1)
	seed(repo, "b", 2, "2026-10-19", 2)
	seed(repo, "c", 1, "", 3)

	j, err := svc.DropOnDay(ctx, "c", "2026-10-19", 1, job.Fab)
	require.NoError(t, err)
	assert.Equal(t, "2026-10-19", j.Fab.Placement.StartDay)
	assert.Equal(t, "", j.Cut.Placement.StartDay)

	assert.Equal(t, 1.0, repo.jobs["a"].Fab.Placement.Order)
	assert.Equal(t, 2.0, repo.jobs["c"].Fab.Placement.Order)
	assert.Equal(t, 3.0, repo.jobs["b"].Fab.Placement.Order)
}

func TestDropAtPosition(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()
	seed(repo, "a", 10, "2026-10-19", 1)
	seed(repo, "b", 2, "2026-10-19", 2)
	seed(repo, "c", 1, "", 3)

	_, err := svc.DropAtPosition(ctx, "c", "2026-10-19", 10, 90, job.Fab)
	require.NoError(t, err)
	assert.Equal(t, 1.0, repo.jobs["c"].Fab.Placement.Order)
	assert.Equal(t, 2.0, repo.jobs["a"].Fab.Placement.Order)
	assert.Equal(t, 3.0, repo.jobs["b"].Fab.Placement.Order)

	// c is now an occupant itself and is not counted among the slots
	_, err = svc.DropAtPosition(ctx, "c", "2026-10-19", 89, 90, job.Fab)
	require.NoError(t, err)
	assert.Equal(t, 3.0, repo.jobs["c"].Fab.Placement.Order)
}

func TestDropOnDayUsesBoardAsShownToday(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()
	seed(repo, "old", 300, "2026-08-03", 1)
	seed(repo, "x", 1, "", 2)

	// Outside today's window the target day has no occupants on the board.
	view, err := svc.Snapshot(ctx, fixed, job.Fab)
	require.NoError(t, err)
	for _, d := range view.Days {
		require.NotEqual(t, "2026-11-09", d.ID)
	}

	j, err := svc.DropOnDay(ctx, "x", "2026-11-09", 0, job.Fab)
	require.NoError(t, err)
	assert.Equal(t, "2026-11-09", j.Fab.Placement.StartDay)
	assert.Equal(t, 1.0, repo.jobs["old"].Fab.Placement.Order)
	assert.Equal(t, 2.0, repo.jobs["x"].Fab.Placement.Order)
}

func TestDropOnDayErrors(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()
	seed(repo, "a", 10, "", 1)

	_, err := svc.DropOnDay(ctx, "missing", "2026-10-19", 0, job.Fab)
	assert.ErrorIs(t, err, ErrJobNotFound)

	_, err = svc.DropOnDay(ctx, "a", "19/10", 0, job.Fab)
	assert.ErrorIs(t, err, ErrInvalidDay)
}

func TestMoveToBacklogClearsBothDimensions(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()
	j := seed(repo, "a", 10, "2026-10-19", 1)
	j.Cut.Placement.StartDay = "2026-10-20"
	repo.jobs["a"] = j
	seed(repo, "b", 4, "", 2)

	moved, err := svc.MoveToBacklog(ctx, "a")
	require.NoError(t, err)
	assert.False(t, moved.Fab.Placement.Scheduled())
	assert.False(t, moved.Cut.Placement.Scheduled())

	view, err := svc.Snapshot(ctx, monday, job.Fab)
	require.NoError(t, err)
	require.Len(t, view.Backlog, 2)
	assert.Equal(t, "a", view.Backlog[0].ID)
}

func TestSnapshot(t *testing.T) {
	svc, repo, rec := newTestService(t)
	ctx := context.Background()
	seed(repo, "a", 10, "2026-10-19", 1)
	seed(repo, "b", 6, "2026-10-19", 2)
	seed(repo, "c", 3, "", 3)
	require.NoError(t, svc.SetDayNote(ctx, "2026-10-20", "delivery"))

	view, err := svc.Snapshot(ctx, monday.AddDate(0, 0, 2), job.Fab)
	require.NoError(t, err)

	assert.Equal(t, monday, view.Anchor)
	assert.Len(t, view.Days, 15)
	assert.Equal(t, 16.0, view.Total)
	require.Len(t, view.Backlog, 1)
	assert.Equal(t, "c", view.Backlog[0].ID)

	week := view.Week(monday)
	require.Len(t, week, 5)
	assert.Equal(t, 13.0, week[0].Used)
	assert.Equal(t, 0.0, week[0].Free)
	require.Len(t, week[0].Jobs, 2)
	assert.Equal(t, "a", week[0].Jobs[0].Job.ID)
	assert.Equal(t, 3.0, week[1].Used)
	assert.Equal(t, "delivery", week[1].Note)
	assert.True(t, week[4].Locked)
	assert.Equal(t, 4.0, week[4].Capacity)

	assert.InDelta(t, 16.0/13/15, view.Load.Mean, 1e-9)
	assert.Equal(t, 1.0, view.Load.Peak)
	assert.Equal(t, "2026-10-19", view.Load.PeakDay)
	assert.Greater(t, view.Load.StdDev, 0.0)

	require.Len(t, rec.calls, 1)
	assert.Equal(t, recorded{"fab", 16, 1}, rec.calls[0])
}

func TestLoadStats(t *testing.T) {
	assert.Equal(t, Load{}, loadStats(nil))

	one := loadStats([]DayView{{Capacity: 10, Used: 5}})
	assert.Equal(t, 0.5, one.Mean)
	assert.Equal(t, 0.0, one.StdDev)

	closed := loadStats([]DayView{{Capacity: 0, Used: 0}, {Capacity: 4, Used: 4}, {Capacity: 4, Used: 0}})
	assert.Equal(t, 0.5, closed.Mean)
	assert.InDelta(t, 0.7071, closed.StdDev, 1e-4)
	assert.Equal(t, 1.0, closed.Peak)
}

func TestSetDayOverrideZero(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()
	seed(repo, "a", 20, "2026-10-19", 1)

	require.NoError(t, svc.SetDayOverride(ctx, "2026-10-20", job.Fab, capacity.Hours(0)))

	view, err := svc.Snapshot(ctx, monday, job.Fab)
	require.NoError(t, err)
	week := view.Week(monday)
	assert.Equal(t, 13.0, week[0].Used)
	assert.Equal(t, 0.0, week[1].Capacity)
	require.NotNil(t, week[1].Override)
	assert.Equal(t, 7.0, week[2].Used)

	require.NoError(t, svc.SetDayOverride(ctx, "2026-10-20", job.Fab, nil))
	assert.Empty(t, repo.days)
}

func TestToggleFridayLock(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	locked, err := svc.ToggleFridayLock(ctx, friday)
	require.NoError(t, err)
	assert.False(t, locked)

	locked, err = svc.ToggleFridayLock(ctx, friday)
	require.NoError(t, err)
	assert.True(t, locked)

	_, err = svc.ToggleFridayLock(ctx, "2026-10-19")
	assert.ErrorIs(t, err, ErrNotFriday)
}

func TestSaveDaySettingsRejectsLockOnWeekday(t *testing.T) {
	svc, _, _ := newTestService(t)

	err := svc.SaveDaySettings(context.Background(), capacity.DaySettings{
		DayID:        "2026-10-21",
		FridayLocked: capacity.Locked(false),
	})
	assert.ErrorIs(t, err, ErrNotFriday)
}

func TestUpdateSettings(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	settings, err := svc.Settings(ctx)
	require.NoError(t, err)
	assert.Equal(t, capacity.DefaultSettings(), settings)

	settings.IncludeSaturday = true
	require.NoError(t, svc.UpdateSettings(ctx, settings))

	view, err := svc.Snapshot(ctx, monday, job.Fab)
	require.NoError(t, err)
	assert.Len(t, view.Days, 18)

	settings.MonThu = -1
	assert.ErrorIs(t, svc.UpdateSettings(ctx, settings), job.ErrInvalidHours)
}

func TestExportImport(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()
	seed(repo, "a", 10, "2026-10-19", 1)
	require.NoError(t, svc.SetDayOverride(ctx, "2026-10-21", job.Cut, capacity.Hours(2)))

	state, err := svc.Export(ctx)
	require.NoError(t, err)
	assert.Len(t, state.Jobs, 1)
	assert.Nil(t, state.Settings)
	assert.Equal(t, fixed, state.ExportedAt)

	other, otherRepo, _ := newTestService(t)
	summary, err := other.Import(ctx, state)
	require.NoError(t, err)
	assert.Equal(t, ImportSummary{Jobs: 1, DaySettings: 1}, summary)
	assert.Equal(t, repo.jobs["a"], otherRepo.jobs["a"])
	assert.Equal(t, 2.0, *otherRepo.days["2026-10-21"].CutOverride)
}

func TestImportNormalizesCategory(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()
	input := `{"jobs":[{"id":"s","title":"Screens","category":"Screens",` +
		`"fab":{"work":{"base":4},"placement":{"start_day":"2026-10-23","order":1}}}]}`
	state, err := store.DecodeState(strings.NewReader(input), store.FormatJSON)
	require.NoError(t, err)

	_, err = svc.Import(ctx, state)
	require.NoError(t, err)
	assert.Equal(t, job.Screens, repo.jobs["s"].Category)

	view, err := svc.Snapshot(ctx, monday, job.Fab)
	require.NoError(t, err)
	week := view.Week(monday)
	require.True(t, week[4].Locked)
	require.Len(t, week[4].Jobs, 1)
	assert.Equal(t, "s", week[4].Jobs[0].Job.ID)
}

func TestImportRejectsUnknownCategory(t *testing.T) {
	svc, _, _ := newTestService(t)
	state := store.State{Jobs: []job.Job{{
		ID:       "x",
		Title:    "X",
		Category: "doors",
		Fab:      job.Track{Work: job.Work{Base: 1}},
	}}}

	_, err := svc.Import(context.Background(), state)
	assert.ErrorIs(t, err, job.ErrUnknownCategory)
}

func TestResolveJob(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()
	a := seed(repo, "abc123", 1, "", 1)
	a.Ref = "V-77"
	repo.jobs["abc123"] = a
	seed(repo, "abd456", 1, "", 2)

	j, err := svc.ResolveJob(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, "abc123", j.ID)

	j, err = svc.ResolveJob(ctx, "v-77")
	require.NoError(t, err)
	assert.Equal(t, "abc123", j.ID)

	_, err = svc.ResolveJob(ctx, "ab")
	assert.ErrorContains(t, err, "matches 2 jobs")

	_, err = svc.ResolveJob(ctx, "zzz")
	assert.ErrorIs(t, err, ErrJobNotFound)
}
