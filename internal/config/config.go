package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"

	"github.com/Flyrell/shopweek/internal/calendar"
	"github.com/Flyrell/shopweek/internal/capacity"
)

// EnvPrefix prefixes environment overrides, e.g. SHOPWEEK_STORE__PATH.
const EnvPrefix = "SHOPWEEK_"

type Config struct {
	Board    BoardConfig       `koanf:"board" yaml:"board"`
	Store    StoreConfig       `koanf:"store" yaml:"store"`
	Window   WindowConfig      `koanf:"window" yaml:"window"`
	Log      LogConfig         `koanf:"log" yaml:"log"`
	Server   ServerConfig      `koanf:"server" yaml:"server"`
	Capacity capacity.Settings `koanf:"capacity" yaml:"capacity"`
}

type BoardConfig struct {
	// Name is printed on exports.
	Name string `koanf:"name" yaml:"name"`
}

type StoreConfig struct {
	Path string `koanf:"path" yaml:"path"`
}

type WindowConfig struct {
	WeeksBack  int `koanf:"weeks_back" yaml:"weeks_back"`
	WeeksAhead int `koanf:"weeks_ahead" yaml:"weeks_ahead"`
}

// Calendar converts the window settings for the calendar package.
func (w WindowConfig) Calendar() calendar.Window {
	return calendar.Window{WeeksBack: w.WeeksBack, WeeksAhead: w.WeeksAhead}
}

type LogConfig struct {
	Level  string `koanf:"level" yaml:"level"`
	Format string `koanf:"format" yaml:"format"`
}

type ServerConfig struct {
	Addr string `koanf:"addr" yaml:"addr"`
}

// Dir returns the shopweek data directory.
func Dir(homeDir string) string {
	return filepath.Join(homeDir, ".shopweek")
}

// Path returns the default config file location.
func Path(homeDir string) string {
	return filepath.Join(Dir(homeDir), "config.yaml")
}

// Default returns the built-in configuration.
func Default(homeDir string) Config {
	return Config{
		Board:    BoardConfig{Name: "Shop Week"},
		Store:    StoreConfig{Path: filepath.Join(Dir(homeDir), "shopweek.db")},
		Window:   WindowConfig{WeeksBack: calendar.DefaultWindow.WeeksBack, WeeksAhead: calendar.DefaultWindow.WeeksAhead},
		Log:      LogConfig{Level: "warn", Format: "console"},
		Server:   ServerConfig{Addr: "127.0.0.1:8080"},
		Capacity: capacity.DefaultSettings(),
	}
}

// Load layers the defaults, the YAML or JSON file at path (skipped when missing) and
// SHOPWEEK_ environment variables, then validates the result.
func Load(homeDir, path string) (*Config, error) {
	k := koanf.New(".")

	def := Default(homeDir)
	if err := k.Load(confmap.Provider(defaultsMap(def), "."), nil); err != nil {
		return nil, err
	}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), parserFor(path)); err != nil {
				return nil, fmt.Errorf("reading %s: %w", path, err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// parserFor picks the koanf parser from the file extension; YAML unless .json.
func parserFor(path string) koanf.Parser {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return json.Parser()
	}
	return yaml.Parser()
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if c.Store.Path == "" {
		return fmt.Errorf("store.path is required")
	}
	if c.Window.WeeksBack < 0 || c.Window.WeeksAhead <= 0 {
		return fmt.Errorf("window must cover at least one week ahead (got back=%d ahead=%d)", c.Window.WeeksBack, c.Window.WeeksAhead)
	}
	s := c.Capacity
	for name, v := range map[string]float64{
		"mon_thu":      s.MonThu,
		"fri_unlocked": s.FriUnlocked,
		"fri_locked":   s.FriLocked,
		"saturday":     s.Saturday,
		"cut_mon_thu":  s.CutMonThu,
		"cut_fri":      s.CutFri,
	} {
		if v < 0 {
			return fmt.Errorf("capacity.%s must not be negative", name)
		}
	}
	return nil
}

// Save writes cfg as YAML, creating the directory if needed.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := yamlv3.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func defaultsMap(c Config) map[string]any {
	return map[string]any{
		"board.name":                c.Board.Name,
		"store.path":                c.Store.Path,
		"window.weeks_back":         c.Window.WeeksBack,
		"window.weeks_ahead":        c.Window.WeeksAhead,
		"log.level":                 c.Log.Level,
		"log.format":                c.Log.Format,
		"server.addr":               c.Server.Addr,
		"capacity.mon_thu":          c.Capacity.MonThu,
		"capacity.fri_unlocked":     c.Capacity.FriUnlocked,
		"capacity.fri_locked":       c.Capacity.FriLocked,
		"capacity.include_saturday": c.Capacity.IncludeSaturday,
		"capacity.saturday":         c.Capacity.Saturday,
		"capacity.cut_mon_thu":      c.Capacity.CutMonThu,
		"capacity.cut_fri":          c.Capacity.CutFri,
	}
}
