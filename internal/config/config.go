package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"campus-energy/internal/analytics/domain/statistic"
	ingest "campus-energy/internal/ingest/domain"
)

// Exports toggles the optional report artifacts.
type Exports struct {
	Workbook  bool `yaml:"workbook"`
	Dashboard bool `yaml:"dashboard"`
	Archive   bool `yaml:"archive"`
}

// Database configures the optional Postgres sink.
type Database struct {
	URL         string `yaml:"url"`
	TablePrefix string `yaml:"table_prefix"`
}

// Config is the explicit configuration passed to the pipeline.
type Config struct {
	InputDir          string             `yaml:"input_dir"`
	OutputDir         string             `yaml:"output_dir"`
	Pattern           string             `yaml:"pattern"`
	Columns           ingest.ColumnRules `yaml:"columns"`
	TimestampLayouts  []string           `yaml:"timestamp_layouts"`
	Delimiter         string             `yaml:"delimiter"`
	Workers           int                `yaml:"workers"`
	WeekStartsOn      string             `yaml:"week_starts_on"`
	RejectNegativeKWh bool               `yaml:"reject_negative_kwh"`
	Exports           Exports            `yaml:"exports"`
	Database          Database           `yaml:"database"`
	MetricsTextfile   string             `yaml:"metrics_textfile"`
	ReportTitle       string             `yaml:"report_title"`
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		InputDir:     "data",
		OutputDir:    "output",
		Pattern:      "*.csv",
		Columns:      ingest.DefaultColumnRules(),
		Workers:      4,
		WeekStartsOn: "monday",
		Exports: Exports{
			Workbook:  true,
			Dashboard: true,
			Archive:   true,
		},
		ReportTitle: "Campus Energy Dashboard",
	}
}

// Load reads an optional YAML file, then applies environment overrides.
// An empty path falls back to ENERGY_CONFIG. Callers validate after applying
// their own overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("ENERGY_CONFIG")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("config: parse %s: %w", filepath.Base(path), err)
		}
	}

	cfg.InputDir = getenvDefault("ENERGY_INPUT_DIR", cfg.InputDir)
	cfg.OutputDir = getenvDefault("ENERGY_OUTPUT_DIR", cfg.OutputDir)
	cfg.Pattern = getenvDefault("ENERGY_PATTERN", cfg.Pattern)
	cfg.Workers = getenvIntDefault("ENERGY_WORKERS", cfg.Workers)
	cfg.WeekStartsOn = getenvDefault("ENERGY_WEEK_STARTS_ON", cfg.WeekStartsOn)
	cfg.MetricsTextfile = getenvDefault("ENERGY_METRICS_TEXTFILE", cfg.MetricsTextfile)
	if cfg.Database.URL == "" {
		cfg.Database.URL = getenvDefault("DATABASE_URL", os.Getenv("PG_DSN"))
	}
	if names := splitCSV(os.Getenv("ENERGY_BUILDING_COLUMNS")); len(names) > 0 {
		cfg.Columns.Building = names
	}
	if names := splitCSV(os.Getenv("ENERGY_TIMESTAMP_COLUMNS")); len(names) > 0 {
		cfg.Columns.Timestamp = names
	}
	if names := splitCSV(os.Getenv("ENERGY_KWH_COLUMNS")); len(names) > 0 {
		cfg.Columns.KWh = names
	}

	return cfg, nil
}

// Validate checks configuration invariants.
func (c Config) Validate() error {
	if c.InputDir == "" {
		return errors.New("config: input_dir required")
	}
	if c.OutputDir == "" {
		return errors.New("config: output_dir required")
	}
	if err := c.Columns.Validate(); err != nil {
		return err
	}
	if _, err := c.DelimiterRune(); err != nil {
		return err
	}
	if _, err := c.WeekStart(); err != nil {
		return err
	}
	return nil
}

// WeekStart returns the weekday weekly buckets begin on.
func (c Config) WeekStart() (time.Weekday, error) {
	return statistic.ParseWeekday(c.WeekStartsOn)
}

// DelimiterRune returns the forced delimiter, or 0 to sniff it.
func (c Config) DelimiterRune() (rune, error) {
	switch c.Delimiter {
	case "":
		return 0, nil
	case `\t`, "tab":
		return '\t', nil
	}
	if utf8.RuneCountInString(c.Delimiter) != 1 {
		return 0, fmt.Errorf("config: delimiter must be a single character, got %q", c.Delimiter)
	}
	r, _ := utf8.DecodeRuneInString(c.Delimiter)
	return r, nil
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvIntDefault(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func splitCSV(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	var result []string
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			result = append(result, part)
		}
	}
	return result
}
