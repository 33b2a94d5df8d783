package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/Flyrell/shopweek/internal/capacity"
	"github.com/Flyrell/shopweek/internal/job"
)

// ErrNotFound is returned when a job id does not exist.
var ErrNotFound = errors.New("not found")

const settingsKey = "app_settings"

const schema = `
CREATE TABLE IF NOT EXISTS jobs (
	id            TEXT PRIMARY KEY,
	title         TEXT NOT NULL,
	ref           TEXT NOT NULL DEFAULT '',
	category      TEXT NOT NULL DEFAULT 'windows',
	color         TEXT NOT NULL DEFAULT '#ff6fae',
	note          TEXT NOT NULL DEFAULT '',
	fab_base      REAL NOT NULL DEFAULT 0,
	fab_extra     REAL NOT NULL DEFAULT 0,
	fab_start_day TEXT,
	fab_order     REAL NOT NULL DEFAULT 0,
	cut_base      REAL NOT NULL DEFAULT 0,
	cut_extra     REAL NOT NULL DEFAULT 0,
	cut_start_day TEXT,
	cut_order     REAL NOT NULL DEFAULT 0,
	created_at    INTEGER NOT NULL,
	updated_at    INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS day_settings (
	day_id        TEXT PRIMARY KEY,
	fab_override  REAL,
	cut_override  REAL,
	friday_locked INTEGER,
	note          TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS app_settings (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at INTEGER NOT NULL
);`

const jobColumns = `id, title, ref, category, color, note,
	fab_base, fab_extra, fab_start_day, fab_order,
	cut_base, cut_extra, cut_start_day, cut_order,
	created_at, updated_at`

// SQLiteStore persists jobs, day settings and capacity settings.
type SQLiteStore struct {
	db *sql.DB
}

// Open opens or creates the database at path and ensures the schema.
func Open(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// a single connection keeps transactions and plain statements serialised
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		if cerr := db.Close(); cerr != nil {
			return nil, fmt.Errorf("close db: %v (schema err: %w)", cerr, err)
		}
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error { return s.db.Close() }

type scanner interface {
	Scan(dest ...any) error
}

func scanJob(row scanner) (job.Job, error) {
	var (
		j                  job.Job
		category           string
		fabStart, cutStart sql.NullString
		created, updated   int64
	)
	err := row.Scan(&j.ID, &j.Title, &j.Ref, &category, &j.Color, &j.Note,
		&j.Fab.Work.Base, &j.Fab.Work.Extra, &fabStart, &j.Fab.Placement.Order,
		&j.Cut.Work.Base, &j.Cut.Work.Extra, &cutStart, &j.Cut.Placement.Order,
		&created, &updated)
	if err != nil {
		return job.Job{}, err
	}
	j.Category = job.Category(category)
	j.Fab.Placement.StartDay = fabStart.String
	j.Cut.Placement.StartDay = cutStart.String
	j.CreatedAt = time.UnixMilli(created).UTC()
	j.UpdatedAt = time.UnixMilli(updated).UTC()
	return j, nil
}

// ListJobs returns every job ordered by fab key.
func (s *SQLiteStore) ListJobs(ctx context.Context) ([]job.Job, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+jobColumns+` FROM jobs ORDER BY fab_order, created_at, id`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var jobs []job.Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, j)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return jobs, nil
}

// GetJob returns a single job.
func (s *SQLiteStore) GetJob(ctx context.Context, id string) (job.Job, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = ?`, id)
	j, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return job.Job{}, fmt.Errorf("job '%s': %w", id, ErrNotFound)
	}
	return j, err
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func upsertJob(ctx context.Context, db execer, j job.Job) error {
	_, err := db.ExecContext(ctx, `INSERT INTO jobs (`+jobColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title, ref = excluded.ref, category = excluded.category,
			color = excluded.color, note = excluded.note,
			fab_base = excluded.fab_base, fab_extra = excluded.fab_extra,
			fab_start_day = excluded.fab_start_day, fab_order = excluded.fab_order,
			cut_base = excluded.cut_base, cut_extra = excluded.cut_extra,
			cut_start_day = excluded.cut_start_day, cut_order = excluded.cut_order,
			updated_at = excluded.updated_at`,
		j.ID, j.Title, j.Ref, string(j.Category), j.Color, j.Note,
		j.Fab.Work.Base, j.Fab.Work.Extra, nullString(j.Fab.Placement.StartDay), j.Fab.Placement.Order,
		j.Cut.Work.Base, j.Cut.Work.Extra, nullString(j.Cut.Placement.StartDay), j.Cut.Placement.Order,
		j.CreatedAt.UnixMilli(), j.UpdatedAt.UnixMilli())
	return err
}

// SaveJob inserts or updates a job.
func (s *SQLiteStore) SaveJob(ctx context.Context, j job.Job) error {
	return upsertJob(ctx, s.db, j)
}

// SaveJobs writes many jobs in one transaction.
func (s *SQLiteStore) SaveJobs(ctx context.Context, jobs []job.Job) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		for _, j := range jobs {
			if err := upsertJob(ctx, tx, j); err != nil {
				return fmt.Errorf("saving job '%s': %w", j.ID, err)
			}
		}
		return nil
	})
}

// DeleteJob removes a job.
func (s *SQLiteStore) DeleteJob(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM jobs WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("job '%s': %w", id, ErrNotFound)
	}
	return nil
}

// ListDaySettings returns every stored day entry ordered by day.
func (s *SQLiteStore) ListDaySettings(ctx context.Context) ([]capacity.DaySettings, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT day_id, fab_override, cut_override, friday_locked, note FROM day_settings ORDER BY day_id`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []capacity.DaySettings
	for rows.Next() {
		var (
			ds       capacity.DaySettings
			fab, cut sql.NullFloat64
			locked   sql.NullBool
		)
		if err := rows.Scan(&ds.DayID, &fab, &cut, &locked, &ds.Note); err != nil {
			return nil, err
		}
		if fab.Valid {
			ds.FabOverride = capacity.Hours(fab.Float64)
		}
		if cut.Valid {
			ds.CutOverride = capacity.Hours(cut.Float64)
		}
		if locked.Valid {
			ds.FridayLocked = capacity.Locked(locked.Bool)
		}
		out = append(out, ds)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func upsertDaySettings(ctx context.Context, db execer, ds capacity.DaySettings) error {
	if ds.Empty() {
		_, err := db.ExecContext(ctx, `DELETE FROM day_settings WHERE day_id = ?`, ds.DayID)
		return err
	}
	_, err := db.ExecContext(ctx, `INSERT INTO day_settings (day_id, fab_override, cut_override, friday_locked, note)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(day_id) DO UPDATE SET
			fab_override = excluded.fab_override, cut_override = excluded.cut_override,
			friday_locked = excluded.friday_locked, note = excluded.note`,
		ds.DayID, nullFloat(ds.FabOverride), nullFloat(ds.CutOverride), nullBool(ds.FridayLocked), ds.Note)
	return err
}

// SaveDaySettings upserts one day entry. An entry without any setting is deleted.
func (s *SQLiteStore) SaveDaySettings(ctx context.Context, ds capacity.DaySettings) error {
	return upsertDaySettings(ctx, s.db, ds)
}

// GetSettings returns the stored capacity settings. ok is false when nothing
// has been saved yet.
func (s *SQLiteStore) GetSettings(ctx context.Context) (capacity.Settings, bool, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM app_settings WHERE key = ?`, settingsKey).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return capacity.Settings{}, false, nil
	}
	if err != nil {
		return capacity.Settings{}, false, err
	}
	var settings capacity.Settings
	if err := json.Unmarshal([]byte(raw), &settings); err != nil {
		return capacity.Settings{}, false, fmt.Errorf("decoding settings: %w", err)
	}
	return settings, true, nil
}

func upsertSettings(ctx context.Context, db execer, settings capacity.Settings) error {
	b, err := json.Marshal(settings)
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, `INSERT INTO app_settings (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		settingsKey, string(b), time.Now().UnixMilli())
	return err
}

// SaveSettings stores the capacity settings.
func (s *SQLiteStore) SaveSettings(ctx context.Context, settings capacity.Settings) error {
	return upsertSettings(ctx, s.db, settings)
}

// ReplaceState wipes jobs and day settings and writes state in their place.
// Capacity settings are only replaced when state carries them.
func (s *SQLiteStore) ReplaceState(ctx context.Context, state State) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM jobs`); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM day_settings`); err != nil {
			return err
		}
		for _, j := range state.Jobs {
			if err := upsertJob(ctx, tx, j); err != nil {
				return fmt.Errorf("importing job '%s': %w", j.ID, err)
			}
		}
		for _, ds := range state.DaySettings() {
			if err := upsertDaySettings(ctx, tx, ds); err != nil {
				return fmt.Errorf("importing day '%s': %w", ds.DayID, err)
			}
		}
		if state.Settings != nil {
			return upsertSettings(ctx, tx, *state.Settings)
		}
		return nil
	})
}

func (s *SQLiteStore) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		if rerr := tx.Rollback(); rerr != nil {
			return fmt.Errorf("rollback: %v (cause: %w)", rerr, err)
		}
		return err
	}
	return tx.Commit()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func nullBool(v *bool) sql.NullBool {
	if v == nil {
		return sql.NullBool{}
	}
	return sql.NullBool{Bool: *v, Valid: true}
}
