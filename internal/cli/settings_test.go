package cli

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingsGetAll(t *testing.T) {
	a := setupApp(t)
	cmd, stdout := newTestCmd()

	require.NoError(t, runSettingsGet(cmd, a, ""))

	out := stdout.String()
	for _, key := range settingKeys() {
		assert.Contains(t, out, key)
	}
	assert.Contains(t, out, "13h")
}

func TestSettingsGetOne(t *testing.T) {
	a := setupApp(t)
	cmd, stdout := newTestCmd()

	require.NoError(t, runSettingsGet(cmd, a, "fri_locked"))
	assert.Equal(t, "4h\n", stdout.String())

	err := runSettingsGet(cmd, a, "sunday")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown setting")
}

func TestSettingsSet(t *testing.T) {
	a := setupApp(t)
	cmd, stdout := newTestCmd()

	require.NoError(t, runSettingsSet(cmd, a, "mon_thu", "12"))
	require.NoError(t, runSettingsSet(cmd, a, "include_saturday", "true"))
	require.NoError(t, runSettingsSet(cmd, a, "CUT_FRI", "2h30m"))

	assert.Contains(t, stdout.String(), "mon_thu set to 12h")

	settings, err := a.svc.Settings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 12.0, settings.MonThu)
	assert.True(t, settings.IncludeSaturday)
	assert.Equal(t, 2.5, settings.CutFri)
}

func TestSettingsSetSaturdayAllowsMove(t *testing.T) {
	a := setupApp(t)
	addJob(t, a, "smith", 4, 0)
	cmd, _ := newTestCmd()

	require.Error(t, runMove(cmd, a, "smith", "2026-10-24", "fab", ""))
	require.NoError(t, runSettingsSet(cmd, a, "include_saturday", "yes"))
	assert.NoError(t, runMove(cmd, a, "smith", "2026-10-24", "fab", ""))
}

func TestSettingsSetInvalid(t *testing.T) {
	tests := []struct {
		key, value, msg string
	}{
		{"mon_thu", "lots", "mon_thu"},
		{"include_saturday", "maybe", "invalid boolean"},
		{"weekend", "1", "unknown setting"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			a := setupApp(t)
			cmd, _ := newTestCmd()

			err := runSettingsSet(cmd, a, tt.key, tt.value)

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}
