package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	ServerURL      string        `yaml:"server_url"`
	RequestTimeout time.Duration `yaml:"-"`
	RawTimeout     string        `yaml:"request_timeout"`
	LogFile        string        `yaml:"log_file"`
	Log            LogConfig     `yaml:"log"`
	Polling        PollingConfig `yaml:"polling"`
	Monitor        MonitorConfig `yaml:"monitor"`
	Feed           FeedConfig    `yaml:"feed"`
	UI             UIConfig      `yaml:"ui"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// PollingConfig holds the cadences of the three polling tasks.
type PollingConfig struct {
	Status     time.Duration `yaml:"-"`
	History    time.Duration `yaml:"-"`
	Logs       time.Duration `yaml:"-"`
	RawStatus  string        `yaml:"status"`
	RawHistory string        `yaml:"history"`
	RawLogs    string        `yaml:"logs"`
}

type MonitorConfig struct {
	MinInterval     int `yaml:"min_interval"`
	DefaultInterval int `yaml:"default_interval"`
}

type FeedConfig struct {
	LocalCap  int `yaml:"local_cap"`
	MergedCap int `yaml:"merged_cap"`
}

type UIConfig struct {
	ToastDuration       time.Duration `yaml:"-"`
	CheckNowCooldown    time.Duration `yaml:"-"`
	CaptchaFade         time.Duration `yaml:"-"`
	CaptchaPulse        time.Duration `yaml:"-"`
	RefreshInterval     time.Duration `yaml:"-"`
	RawToastDuration    string        `yaml:"toast_duration"`
	RawCheckNowCooldown string        `yaml:"check_now_cooldown"`
	RawCaptchaFade      string        `yaml:"captcha_fade"`
	RawCaptchaPulse     string        `yaml:"captcha_pulse"`
	RawRefreshInterval  string        `yaml:"refresh_interval"`
	HistoryRows         int           `yaml:"history_rows"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	var cfg Config
	// Defaults are all valid literals.
	_ = cfg.setDefaults()
	return &cfg
}

// Load reads the YAML config at path. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.setDefaults(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) setDefaults() error {
	if c.ServerURL == "" {
		c.ServerURL = "http://localhost:5000"
	}
	if c.LogFile == "" {
		c.LogFile = filepath.Join(os.TempDir(), "appwatch", "appwatch.log")
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Monitor.MinInterval == 0 {
		c.Monitor.MinInterval = 30
	}
	if c.Monitor.DefaultInterval == 0 {
		c.Monitor.DefaultInterval = 60
	}
	if c.Feed.LocalCap == 0 {
		c.Feed.LocalCap = 50
	}
	if c.Feed.MergedCap == 0 {
		c.Feed.MergedCap = 100
	}
	if c.UI.HistoryRows == 0 {
		c.UI.HistoryRows = 10
	}

	durations := []struct {
		name string
		raw  *string
		def  string
		dst  *time.Duration
	}{
		{"request_timeout", &c.RawTimeout, "10s", &c.RequestTimeout},
		{"polling.status", &c.Polling.RawStatus, "1s", &c.Polling.Status},
		{"polling.history", &c.Polling.RawHistory, "5s", &c.Polling.History},
		{"polling.logs", &c.Polling.RawLogs, "500ms", &c.Polling.Logs},
		{"ui.toast_duration", &c.UI.RawToastDuration, "3s", &c.UI.ToastDuration},
		{"ui.check_now_cooldown", &c.UI.RawCheckNowCooldown, "2s", &c.UI.CheckNowCooldown},
		{"ui.captcha_fade", &c.UI.RawCaptchaFade, "300ms", &c.UI.CaptchaFade},
		{"ui.captcha_pulse", &c.UI.RawCaptchaPulse, "600ms", &c.UI.CaptchaPulse},
		{"ui.refresh_interval", &c.UI.RawRefreshInterval, "100ms", &c.UI.RefreshInterval},
	}
	for _, d := range durations {
		if *d.raw == "" {
			*d.raw = d.def
		}
		v, err := time.ParseDuration(*d.raw)
		if err != nil {
			return fmt.Errorf("parse %s %q: %w", d.name, *d.raw, err)
		}
		*d.dst = v
	}

	return nil
}

// Validate checks the config after defaults are applied. It is exported so
// CLI overrides can be validated again.
func (c *Config) Validate() error {
	u, err := url.Parse(c.ServerURL)
	if err != nil {
		return fmt.Errorf("server_url %q: %w", c.ServerURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("server_url %q: scheme must be http or https", c.ServerURL)
	}
	if u.Host == "" {
		return fmt.Errorf("server_url %q: host required", c.ServerURL)
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log.level %q (debug|info|warn|error)", c.Log.Level)
	}

	positive := map[string]time.Duration{
		"request_timeout":       c.RequestTimeout,
		"polling.status":        c.Polling.Status,
		"polling.history":       c.Polling.History,
		"polling.logs":          c.Polling.Logs,
		"ui.toast_duration":     c.UI.ToastDuration,
		"ui.refresh_interval":   c.UI.RefreshInterval,
		"ui.check_now_cooldown": c.UI.CheckNowCooldown,
	}
	for name, d := range positive {
		if d <= 0 {
			return fmt.Errorf("%s must be positive, got %s", name, d)
		}
	}
	if c.UI.CaptchaFade < 0 || c.UI.CaptchaPulse < 0 {
		return fmt.Errorf("ui.captcha_fade and ui.captcha_pulse must not be negative")
	}

	if c.Monitor.MinInterval < 1 {
		return fmt.Errorf("monitor.min_interval must be at least 1, got %d", c.Monitor.MinInterval)
	}
	if c.Monitor.DefaultInterval < c.Monitor.MinInterval {
		return fmt.Errorf("monitor.default_interval %d below monitor.min_interval %d",
			c.Monitor.DefaultInterval, c.Monitor.MinInterval)
	}
	if c.Feed.LocalCap < 1 || c.Feed.MergedCap < c.Feed.LocalCap {
		return fmt.Errorf("feed caps must satisfy 1 <= local_cap <= merged_cap, got %d/%d",
			c.Feed.LocalCap, c.Feed.MergedCap)
	}
	if c.UI.HistoryRows < 1 {
		return fmt.Errorf("ui.history_rows must be at least 1, got %d", c.UI.HistoryRows)
	}
	return nil
}
