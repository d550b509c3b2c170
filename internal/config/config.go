// Package config loads ganttloom settings from a TOML file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/sulaimanalsheibani1-lgtm/gantt-chart-app/internal/model"
)

// Config is the on-disk configuration.
type Config struct {
	Calendar CalendarConfig `toml:"calendar"`
	Server   ServerConfig   `toml:"server"`
	Store    StoreConfig    `toml:"store"`
	Claude   ClaudeConfig   `toml:"claude"`
	Watch    WatchConfig    `toml:"watch"`
}

// CalendarConfig is the calendar used for project files that do not carry their own.
type CalendarConfig struct {
	WorkingWeekdays []int    `toml:"working_weekdays"` // 0 = Sunday
	HoursPerDay     float64  `toml:"hours_per_day"`
	Holidays        []string `toml:"holidays"`
}

type ServerConfig struct {
	Host           string `toml:"host"`
	Port           int    `toml:"port"`
	MetricsEnabled bool   `toml:"metrics_enabled"`
}

type StoreConfig struct {
	Dir string `toml:"dir"`
}

type ClaudeConfig struct {
	Model     string `toml:"model"`
	MaxTokens int    `toml:"max_tokens"`
}

type WatchConfig struct {
	Debounce string `toml:"debounce"`
}

// DefaultConfig returns the settings used when no config file exists.
func DefaultConfig() Config {
	return Config{
		Calendar: CalendarConfig{
			WorkingWeekdays: []int{1, 2, 3, 4, 5},
			HoursPerDay:     8,
		},
		Server: ServerConfig{
			Host:           "127.0.0.1",
			Port:           7171,
			MetricsEnabled: true,
		},
		Store: StoreConfig{
			Dir: Home(),
		},
		Claude: ClaudeConfig{
			Model:     "claude-sonnet-4-5",
			MaxTokens: 4096,
		},
		Watch: WatchConfig{
			Debounce: "300ms",
		},
	}
}

// Load reads config from path, or from Home()/config.toml when path is
// empty, falling back to defaults when the file does not exist.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		path = filepath.Join(Home(), "config.toml")
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the config to path, creating its directory.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

// Validate checks the values a project run depends on.
func (c Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server port %d out of range", c.Server.Port)
	}
	if _, err := c.Watch.DebounceDuration(); err != nil {
		return err
	}
	for _, d := range c.Calendar.WorkingWeekdays {
		if d < 0 || d > 6 {
			return fmt.Errorf("working weekday %d out of range 0-6", d)
		}
	}
	return nil
}

// Settings converts the calendar section into engine settings.
func (c CalendarConfig) Settings() model.CalendarSettings {
	s := model.CalendarSettings{
		HoursPerDay: c.HoursPerDay,
		Holidays:    append([]string(nil), c.Holidays...),
	}
	for _, d := range c.WorkingWeekdays {
		s.WorkingWeekdays = append(s.WorkingWeekdays, time.Weekday(d))
	}
	return s
}

// DebounceDuration parses the watch debounce, defaulting to 300ms.
func (w WatchConfig) DebounceDuration() (time.Duration, error) {
	if w.Debounce == "" {
		return 300 * time.Millisecond, nil
	}
	d, err := time.ParseDuration(w.Debounce)
	if err != nil {
		return 0, fmt.Errorf("watch debounce: %w", err)
	}
	return d, nil
}

// Addr returns host:port for the HTTP server.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Home returns the ganttloom data directory.
func Home() string {
	if env := os.Getenv("GANTTLOOM_HOME"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".ganttloom")
}
