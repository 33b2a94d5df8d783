package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Flyrell/shopweek/internal/board"
	"github.com/Flyrell/shopweek/internal/config"
	"github.com/Flyrell/shopweek/internal/logging"
	"github.com/Flyrell/shopweek/internal/metrics"
	"github.com/Flyrell/shopweek/internal/store"
)

// app bundles what a command needs to work on the board.
type app struct {
	cfg   *config.Config
	store *store.SQLiteStore
	svc   *board.Service
	log   logging.Logger
	now   func() time.Time
}

// appOptions customise openApp. Zero values use the real clock and no metrics.
type appOptions struct {
	now     func() time.Time
	metrics metrics.Recorder
}

// openApp loads configuration for homeDir and opens the store it points at.
func openApp(homeDir, configPath string, opts appOptions) (*app, error) {
	if configPath == "" {
		configPath = config.Path(homeDir)
	}
	cfg, err := config.Load(homeDir, configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	log := logging.New("cli", logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})

	st, err := store.Open(cfg.Store.Path)
	if err != nil {
		return nil, fmt.Errorf("opening store %s: %w", cfg.Store.Path, err)
	}

	now := opts.now
	if now == nil {
		now = time.Now
	}
	svc := board.NewService(st, board.Options{
		Logger:   log.With("board"),
		Metrics:  opts.metrics,
		Window:   cfg.Window.Calendar(),
		Defaults: cfg.Capacity,
		Now:      now,
	})
	log.Debugf("opened store %s", cfg.Store.Path)

	return &app{cfg: cfg, store: st, svc: svc, log: log, now: now}, nil
}

// Close releases the store.
func (a *app) Close() error {
	return a.store.Close()
}

// getContextPaths returns the home directory and the --config flag value.
func getContextPaths(cmd *cobra.Command) (homeDir, configPath string, err error) {
	homeDir, err = os.UserHomeDir()
	if err != nil {
		return "", "", err
	}
	configPath, _ = cmd.Flags().GetString("config")
	return homeDir, configPath, nil
}

// withApp opens the app for cmd, runs fn and closes the store.
func withApp(cmd *cobra.Command, fn func(a *app) error) error {
	homeDir, configPath, err := getContextPaths(cmd)
	if err != nil {
		return err
	}
	a, err := openApp(homeDir, configPath, appOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()
	return fn(a)
}
