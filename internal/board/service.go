// Package board wires the pure scheduling packages to persistence. Every
// mutation loads the current jobs, applies the change, renormalizes the
// affected dimensions and writes the placements back in one batch.
package board

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Flyrell/shopweek/internal/calendar"
	"github.com/Flyrell/shopweek/internal/capacity"
	"github.com/Flyrell/shopweek/internal/job"
	"github.com/Flyrell/shopweek/internal/logging"
	"github.com/Flyrell/shopweek/internal/metrics"
	"github.com/Flyrell/shopweek/internal/order"
	"github.com/Flyrell/shopweek/internal/plan"
	"github.com/Flyrell/shopweek/internal/store"
)

var (
	ErrJobNotFound = errors.New("job not found")
	ErrNotFriday   = errors.New("day is not a Friday")
	ErrNoHours     = errors.New("at least one of fab or cut hours must be greater than zero")
	ErrInvalidDay  = errors.New("invalid day id")
)

// Repository is the persistence the service needs. store.SQLiteStore
// satisfies it.
type Repository interface {
	ListJobs(ctx context.Context) ([]job.Job, error)
	GetJob(ctx context.Context, id string) (job.Job, error)
	SaveJob(ctx context.Context, j job.Job) error
	SaveJobs(ctx context.Context, jobs []job.Job) error
	DeleteJob(ctx context.Context, id string) error
	ListDaySettings(ctx context.Context) ([]capacity.DaySettings, error)
	SaveDaySettings(ctx context.Context, ds capacity.DaySettings) error
	GetSettings(ctx context.Context) (capacity.Settings, bool, error)
	SaveSettings(ctx context.Context, s capacity.Settings) error
	ReplaceState(ctx context.Context, s store.State) error
}

// Options configures a Service. Zero values get sensible defaults.
type Options struct {
	Logger   logging.Logger
	Metrics  metrics.Recorder
	Window   calendar.Window
	Defaults capacity.Settings
	Now      func() time.Time
	NewID    func() string
}

// Service is the board's application layer.
type Service struct {
	repo     Repository
	log      logging.Logger
	metrics  metrics.Recorder
	window   calendar.Window
	defaults capacity.Settings
	now      func() time.Time
	newID    func() string
}

// NewService creates a Service over repo.
func NewService(repo Repository, opts Options) *Service {
	s := &Service{
		repo:     repo,
		log:      opts.Logger,
		metrics:  opts.Metrics,
		window:   opts.Window,
		defaults: opts.Defaults,
		now:      opts.Now,
		newID:    opts.NewID,
	}
	if s.log == nil {
		s.log = logging.Nop{}
	}
	if s.metrics == nil {
		s.metrics = metrics.Nop{}
	}
	if s.window.WeeksBack == 0 && s.window.WeeksAhead == 0 {
		s.window = calendar.DefaultWindow
	}
	if s.defaults == (capacity.Settings{}) {
		s.defaults = capacity.DefaultSettings()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = func() string { return uuid.NewString() }
	}
	return s
}

// Now returns the service clock.
func (s *Service) Now() time.Time { return s.now() }

// Settings returns the stored capacity settings, or the configured defaults
// when none have been saved.
func (s *Service) Settings(ctx context.Context) (capacity.Settings, error) {
	settings, ok, err := s.repo.GetSettings(ctx)
	if err != nil {
		return capacity.Settings{}, fmt.Errorf("loading settings: %w", err)
	}
	if !ok {
		return s.defaults, nil
	}
	return settings, nil
}

// UpdateSettings validates and stores new capacity settings.
func (s *Service) UpdateSettings(ctx context.Context, settings capacity.Settings) error {
	if err := validateSettings(settings); err != nil {
		return err
	}
	if err := s.repo.SaveSettings(ctx, settings); err != nil {
		return fmt.Errorf("saving settings: %w", err)
	}
	s.log.Infof("capacity settings updated")
	return nil
}

func validateSettings(st capacity.Settings) error {
	named := map[string]float64{
		"mon_thu":      st.MonThu,
		"fri_unlocked": st.FriUnlocked,
		"fri_locked":   st.FriLocked,
		"saturday":     st.Saturday,
		"cut_mon_thu":  st.CutMonThu,
		"cut_fri":      st.CutFri,
	}
	for name, v := range named {
		if err := checkHours(v); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

func checkHours(v float64) error {
	if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return job.ErrInvalidHours
	}
	return nil
}

// ListJobs returns every job.
func (s *Service) ListJobs(ctx context.Context) ([]job.Job, error) {
	jobs, err := s.repo.ListJobs(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading jobs: %w", err)
	}
	return jobs, nil
}

// GetJob returns one job by id.
func (s *Service) GetJob(ctx context.Context, id string) (job.Job, error) {
	j, err := s.repo.GetJob(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return job.Job{}, fmt.Errorf("%w: %s", ErrJobNotFound, id)
	}
	if err != nil {
		return job.Job{}, fmt.Errorf("loading job: %w", err)
	}
	return j, nil
}

// ResolveJob finds a job by exact id, then by unique id prefix, then by
// case-insensitive title or reference.
func (s *Service) ResolveJob(ctx context.Context, query string) (job.Job, error) {
	jobs, err := s.ListJobs(ctx)
	if err != nil {
		return job.Job{}, err
	}
	q := strings.TrimSpace(query)
	if q == "" {
		return job.Job{}, fmt.Errorf("%w: empty query", ErrJobNotFound)
	}
	for _, j := range jobs {
		if j.ID == q {
			return j, nil
		}
	}
	var matches []job.Job
	for _, j := range jobs {
		if strings.HasPrefix(j.ID, q) ||
			strings.EqualFold(j.Title, q) ||
			(j.Ref != "" && strings.EqualFold(j.Ref, q)) {
			matches = append(matches, j)
		}
	}
	switch len(matches) {
	case 0:
		return job.Job{}, fmt.Errorf("%w: %s", ErrJobNotFound, q)
	case 1:
		return matches[0], nil
	default:
		return job.Job{}, fmt.Errorf("'%s' matches %d jobs, use the id", q, len(matches))
	}
}

// AddJob creates a job in the backlog of both dimensions, after every
// existing key.
func (s *Service) AddJob(ctx context.Context, draft job.Job) (job.Job, error) {
	jobs, err := s.ListJobs(ctx)
	if err != nil {
		return job.Job{}, err
	}

	j, err := s.prepare(draft)
	if err != nil {
		return job.Job{}, err
	}
	if j.Fab.Work.Total() <= 0 && j.Cut.Work.Total() <= 0 {
		return job.Job{}, ErrNoHours
	}

	now := s.now()
	j.ID = s.newID()
	j.CreatedAt = now
	j.UpdatedAt = now
	for _, dim := range job.Dimensions() {
		keys := make([]float64, 0, len(jobs))
		for _, other := range jobs {
			keys = append(keys, other.Placement(dim).Order)
		}
		j = j.WithPlacement(dim, job.Placement{Order: order.InsertBetween(nil, nil, keys)})
	}

	if err := s.repo.SaveJob(ctx, j); err != nil {
		return job.Job{}, fmt.Errorf("saving job: %w", err)
	}
	s.log.Infof("added job %s (%s)", j.ID, j.Title)
	return j, nil
}

// UpdateJob replaces the editable fields of a job. Placements are kept.
func (s *Service) UpdateJob(ctx context.Context, id string, edit job.Job) (job.Job, error) {
	current, err := s.GetJob(ctx, id)
	if err != nil {
		return job.Job{}, err
	}

	edit.Fab.Placement = current.Fab.Placement
	edit.Cut.Placement = current.Cut.Placement
	j, err := s.prepare(edit)
	if err != nil {
		return job.Job{}, err
	}
	j.ID = current.ID
	j.CreatedAt = current.CreatedAt
	j.UpdatedAt = s.now()

	if err := s.repo.SaveJob(ctx, j); err != nil {
		return job.Job{}, fmt.Errorf("saving job: %w", err)
	}
	s.log.Infof("updated job %s", j.ID)
	return j, nil
}

func (s *Service) prepare(j job.Job) (job.Job, error) {
	j.Title = strings.TrimSpace(j.Title)
	j.Ref = strings.TrimSpace(j.Ref)
	j.Note = strings.TrimSpace(j.Note)
	category, err := job.ParseCategory(string(j.Category))
	if err != nil {
		return job.Job{}, err
	}
	j.Category = category
	if j.Color == "" {
		j.Color = job.DefaultColor
	}
	if err := j.Validate(); err != nil {
		return job.Job{}, err
	}
	return j, nil
}

// RemoveJob deletes a job and renormalizes both dimensions.
func (s *Service) RemoveJob(ctx context.Context, id string) error {
	if err := s.repo.DeleteJob(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrJobNotFound, id)
		}
		return fmt.Errorf("deleting job: %w", err)
	}
	jobs, err := s.ListJobs(ctx)
	if err != nil {
		return err
	}
	if err := s.persistOrder(ctx, jobs, job.Dimensions()...); err != nil {
		return err
	}
	s.log.Infof("removed job %s", id)
	return nil
}

// DropOnDay schedules jobID to start on dayID in dim, stacked at insertIndex
// among the jobs already holding hours on that day.
func (s *Service) DropOnDay(ctx context.Context, jobID, dayID string, insertIndex int, dim job.Dimension) (job.Job, error) {
	if _, err := calendar.ParseDayID(dayID); err != nil {
		return job.Job{}, fmt.Errorf("%w: %s", ErrInvalidDay, dayID)
	}
	jobs, err := s.ListJobs(ctx)
	if err != nil {
		return job.Job{}, err
	}
	idx := slices.IndexFunc(jobs, func(j job.Job) bool { return j.ID == jobID })
	if idx < 0 {
		return job.Job{}, fmt.Errorf("%w: %s", ErrJobNotFound, jobID)
	}

	// Occupants come from the board as it is shown today, before the move.
	in, err := s.planningInput(ctx, s.now())
	if err != nil {
		return job.Job{}, err
	}
	result := plan.Allocate(jobs, in.days, in.params, dim)
	var onDay []job.Job
	for _, jh := range plan.JobsOnDay(dayID, result, jobs) {
		onDay = append(onDay, jh.Job)
	}

	key := order.KeyForDrop(jobs, onDay, insertIndex, dim, jobID)
	jobs[idx] = jobs[idx].WithPlacement(dim, job.Placement{StartDay: dayID, Order: key})
	jobs[idx].UpdatedAt = s.now()

	if err := s.persistOrder(ctx, jobs, dim); err != nil {
		return job.Job{}, err
	}
	s.log.Debugw("job dropped", map[string]any{"job": jobID, "day": dayID, "index": insertIndex, "view": dim.String()})
	return s.GetJob(ctx, jobID)
}

// DropAtPosition is DropOnDay for a pointer drop: dropY is measured from the
// top of a day column of the given height, and the job lands in the slot of
// the other occupants nearest to it.
func (s *Service) DropAtPosition(ctx context.Context, jobID, dayID string, dropY, height float64, dim job.Dimension) (job.Job, error) {
	if _, err := dayFromID(dayID); err != nil {
		return job.Job{}, err
	}
	jobs, err := s.ListJobs(ctx)
	if err != nil {
		return job.Job{}, err
	}
	in, err := s.planningInput(ctx, s.now())
	if err != nil {
		return job.Job{}, err
	}
	others := 0
	for _, jh := range plan.JobsOnDay(dayID, plan.Allocate(jobs, in.days, in.params, dim), jobs) {
		if jh.Job.ID != jobID {
			others++
		}
	}
	return s.DropOnDay(ctx, jobID, dayID, order.DropIndex(dropY, height, others), dim)
}

// MoveToBacklog unschedules a job in both dimensions.
func (s *Service) MoveToBacklog(ctx context.Context, jobID string) (job.Job, error) {
	jobs, err := s.ListJobs(ctx)
	if err != nil {
		return job.Job{}, err
	}
	idx := slices.IndexFunc(jobs, func(j job.Job) bool { return j.ID == jobID })
	if idx < 0 {
		return job.Job{}, fmt.Errorf("%w: %s", ErrJobNotFound, jobID)
	}
	for _, dim := range job.Dimensions() {
		p := jobs[idx].Placement(dim)
		p.StartDay = ""
		jobs[idx] = jobs[idx].WithPlacement(dim, p)
	}
	jobs[idx].UpdatedAt = s.now()

	if err := s.persistOrder(ctx, jobs, job.Dimensions()...); err != nil {
		return job.Job{}, err
	}
	s.log.Infof("moved job %s to backlog", jobID)
	return s.GetJob(ctx, jobID)
}

// persistOrder renormalizes dims and saves every job. Equal keys fall back to
// the most recently updated job first.
func (s *Service) persistOrder(ctx context.Context, jobs []job.Job, dims ...job.Dimension) error {
	out := jobs
	for _, dim := range dims {
		out = order.Renormalize(out, dim)
	}
	if err := s.repo.SaveJobs(ctx, out); err != nil {
		return fmt.Errorf("saving placements: %w", err)
	}
	return nil
}

func dayFromID(dayID string) (calendar.Day, error) {
	t, err := calendar.ParseDayID(dayID)
	if err != nil {
		return calendar.Day{}, fmt.Errorf("%w: %s", ErrInvalidDay, dayID)
	}
	return calendar.NewDay(t), nil
}
