package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Flyrell/shopweek/internal/config"
)

func TestInitWritesConfigAndStore(t *testing.T) {
	home := t.TempDir()
	cmd, stdout := newTestCmd()

	err := runInit(cmd, home, "", "", false, AlwaysYes())

	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "wrote")
	assert.FileExists(t, config.Path(home))
	assert.FileExists(t, filepath.Join(config.Dir(home), "shopweek.db"))
}

func TestInitRefusesExistingConfig(t *testing.T) {
	home := t.TempDir()
	cmd, _ := newTestCmd()
	require.NoError(t, runInit(cmd, home, "", "", false, AlwaysYes()))

	err := runInit(cmd, home, "", "", false, AlwaysYes())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestInitForce(t *testing.T) {
	home := t.TempDir()
	cmd, stdout := newTestCmd()
	require.NoError(t, runInit(cmd, home, "", "Old Name", false, AlwaysYes()))

	require.NoError(t, runInit(cmd, home, "", "New Name", true, mockConfirm(false)))
	assert.Contains(t, stdout.String(), "cancelled")
	cfg, err := config.Load(home, config.Path(home))
	require.NoError(t, err)
	assert.Equal(t, "Old Name", cfg.Board.Name)

	require.NoError(t, runInit(cmd, home, "", "New Name", true, mockConfirm(true)))
	cfg, err = config.Load(home, config.Path(home))
	require.NoError(t, err)
	assert.Equal(t, "New Name", cfg.Board.Name)
}

func TestInitCustomConfigPath(t *testing.T) {
	home := t.TempDir()
	path := filepath.Join(t.TempDir(), "board.yaml")
	cmd, _ := newTestCmd()

	require.NoError(t, runInit(cmd, home, path, "", false, AlwaysYes()))

	_, err := os.Stat(path)
	assert.NoError(t, err)
	_, err = os.Stat(config.Path(home))
	assert.True(t, os.IsNotExist(err))
}
