package cli

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Flyrell/shopweek/internal/job"
)

func fixedNow() time.Time {
	return time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
}

// setupApp opens a board in a fresh home directory.
func setupApp(t *testing.T) *app {
	t.Helper()
	a, err := openApp(t.TempDir(), "", appOptions{now: fixedNow})
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a
}

// newTestCmd returns a command writing to a buffer.
func newTestCmd() (*cobra.Command, *bytes.Buffer) {
	stdout := new(bytes.Buffer)
	cmd := &cobra.Command{}
	cmd.SetOut(stdout)
	cmd.SetErr(stdout)
	cmd.SetContext(context.Background())
	return cmd, stdout
}

// testJobFlags builds job field flags from name/value pairs.
func testJobFlags(pairs ...string) jobFlags {
	f := jobFlags{values: map[string]string{}, changed: map[string]bool{}}
	for i := 0; i+1 < len(pairs); i += 2 {
		f.values[pairs[i]] = pairs[i+1]
		f.changed[pairs[i]] = true
	}
	return f
}

// addJob creates a job through the service and fails the test on error.
func addJob(t *testing.T, a *app, title string, fab, cut float64) job.Job {
	t.Helper()
	draft := job.Job{Title: title}
	draft.Fab.Work.Base = fab
	draft.Cut.Work.Base = cut
	j, err := a.svc.AddJob(context.Background(), draft)
	require.NoError(t, err)
	return j
}

func TestOpenAppUsesDefaults(t *testing.T) {
	a := setupApp(t)

	assert.Equal(t, "Shop Week", a.cfg.Board.Name)
	assert.Equal(t, fixedNow(), a.now())

	settings, err := a.svc.Settings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 13.0, settings.MonThu)
}

func TestOpenAppReadsConfigFile(t *testing.T) {
	home := t.TempDir()
	cmd, _ := newTestCmd()
	require.NoError(t, runInit(cmd, home, "", "Unit 4", false, AlwaysYes()))

	a, err := openApp(home, "", appOptions{now: fixedNow})
	require.NoError(t, err)
	defer func() { _ = a.Close() }()

	assert.Equal(t, "Unit 4", a.cfg.Board.Name)
}
