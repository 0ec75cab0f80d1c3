// Package config loads the server configuration from a YAML file, an optional
// .env file and PLANNER_* environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/weekly-planner/backend/internal/calendar"
	"github.com/weekly-planner/backend/internal/strategy"
)

const envPrefix = "PLANNER_"

// StrategyConfig selects the default slot strategy.
type StrategyConfig struct {
	// Name is "any-time" or "work-hours".
	Name string `yaml:"name" json:"name"`
	// WorkDays, WorkStart and WorkEnd configure the work-hours strategy.
	// Clocks are "HHMM".
	WorkDays  []string `yaml:"work_days" json:"work_days"`
	WorkStart string   `yaml:"work_start" json:"work_start"`
	WorkEnd   string   `yaml:"work_end" json:"work_end"`
}

// ExportConfig controls the periodic schedule export.
type ExportConfig struct {
	Enabled bool `yaml:"enabled" json:"enabled"`
	// Cron is a robfig/cron spec with an optional seconds field, or a descriptor like "@hourly".
	Cron string `yaml:"cron" json:"cron"`
	// Dir defaults to <data_dir>/exports.
	Dir string `yaml:"dir" json:"dir"`
	// Anchor is the Sunday (YYYY-MM-DD) the week is pinned to in .ics files.
	Anchor string `yaml:"anchor" json:"anchor"`
}

// Config is the top-level server configuration.
type Config struct {
	Listen    string         `yaml:"listen" json:"listen"`
	DataDir   string         `yaml:"data_dir" json:"data_dir"`
	StaticDir string         `yaml:"static_dir" json:"static_dir"`
	LogLevel  string         `yaml:"log_level" json:"log_level"`
	Host      string         `yaml:"host" json:"host"`
	Strategy  StrategyConfig `yaml:"strategy" json:"strategy"`
	Export    ExportConfig   `yaml:"export" json:"export"`
}

func DefaultConfig() *Config {
	return &Config{
		Listen:    ":8099",
		DataDir:   "/data",
		StaticDir: "./static",
		LogLevel:  "info",
		Strategy: StrategyConfig{
			Name:      strategy.NameAnyTime,
			WorkDays:  []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"},
			WorkStart: "0900",
			WorkEnd:   "1700",
		},
		Export: ExportConfig{
			Enabled: false,
			Cron:    calendar.DefaultExportSpec,
			Anchor:  calendar.DefaultAnchor,
		},
	}
}

// Normalize fills zero values with defaults.
func (c *Config) Normalize() {
	d := DefaultConfig()
	if c.Listen == "" {
		c.Listen = d.Listen
	}
	if c.DataDir == "" {
		c.DataDir = d.DataDir
	}
	if c.StaticDir == "" {
		c.StaticDir = d.StaticDir
	}
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
	if c.Strategy.Name == "" {
		c.Strategy.Name = d.Strategy.Name
	}
	if len(c.Strategy.WorkDays) == 0 {
		c.Strategy.WorkDays = d.Strategy.WorkDays
	}
	if c.Strategy.WorkStart == "" {
		c.Strategy.WorkStart = d.Strategy.WorkStart
	}
	if c.Strategy.WorkEnd == "" {
		c.Strategy.WorkEnd = d.Strategy.WorkEnd
	}
	if c.Export.Cron == "" {
		c.Export.Cron = d.Export.Cron
	}
	if c.Export.Anchor == "" {
		c.Export.Anchor = d.Export.Anchor
	}
	if c.Export.Dir == "" {
		c.Export.Dir = filepath.Join(c.DataDir, "exports")
	}
}

// Validate checks the values the server cannot start without.
func (c *Config) Validate() error {
	if _, err := c.Hours(); err != nil {
		return fmt.Errorf("invalid strategy settings: %w", err)
	}
	if _, err := strategy.New(c.Strategy.Name, strategy.Hours{}); err != nil {
		return fmt.Errorf("invalid strategy settings: %w", err)
	}
	if _, err := calendar.NewICSCodec(c.Export.Anchor); err != nil {
		return fmt.Errorf("invalid export settings: %w", err)
	}
	return nil
}

// Hours returns the configured working window.
func (c *Config) Hours() (strategy.Hours, error) {
	return strategy.ParseHours(c.Strategy.WorkDays, c.Strategy.WorkStart, c.Strategy.WorkEnd)
}

// Load reads path. A missing file is created with defaults (0600) on first run.
// Environment overrides are applied after the file and before normalization.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if err := Save(path, cfg); err != nil {
			return nil, fmt.Errorf("writing default config: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("reading config: %w", err)
	default:
		cfg = &Config{}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	cfg.Normalize()
	return cfg, nil
}

// LoadDotEnv loads KEY=VALUE pairs from path into the environment without
// overriding variables already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides fields from PLANNER_* variables.
func (c *Config) ApplyEnv() error {
	c.Listen = getEnvOrDefault(envPrefix+"LISTEN", c.Listen)
	c.DataDir = getEnvOrDefault(envPrefix+"DATA_DIR", c.DataDir)
	c.StaticDir = getEnvOrDefault(envPrefix+"STATIC_DIR", c.StaticDir)
	c.LogLevel = getEnvOrDefault(envPrefix+"LOG_LEVEL", c.LogLevel)
	c.Host = getEnvOrDefault(envPrefix+"HOST", c.Host)
	c.Strategy.Name = getEnvOrDefault(envPrefix+"STRATEGY", c.Strategy.Name)
	c.Strategy.WorkStart = getEnvOrDefault(envPrefix+"WORK_START", c.Strategy.WorkStart)
	c.Strategy.WorkEnd = getEnvOrDefault(envPrefix+"WORK_END", c.Strategy.WorkEnd)
	if days := getEnvOrDefault(envPrefix+"WORK_DAYS", ""); days != "" {
		c.Strategy.WorkDays = splitList(days)
	}
	c.Export.Cron = getEnvOrDefault(envPrefix+"EXPORT_CRON", c.Export.Cron)
	c.Export.Dir = getEnvOrDefault(envPrefix+"EXPORT_DIR", c.Export.Dir)
	c.Export.Anchor = getEnvOrDefault(envPrefix+"EXPORT_ANCHOR", c.Export.Anchor)
	if v := getEnvOrDefault(envPrefix+"EXPORT_ENABLED", ""); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sEXPORT_ENABLED: %w", envPrefix, err)
		}
		c.Export.Enabled = enabled
	}
	return nil
}

// Save writes cfg to path atomically with 0600 permissions.
func Save(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".planner-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
