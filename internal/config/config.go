package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/pfrederiksen/legislator-ages/internal/logger"
)

//go:embed sources.yaml
var defaultYAML []byte

// EnvPrefix prefixes every environment override.
const EnvPrefix = "LEGISLATOR_AGES_"

// Strategy names how ages are found for a source.
type Strategy string

const (
	// StrategyBornColumn reads the table's Born cell.
	StrategyBornColumn Strategy = "born-column"
	// StrategyRetirementColumn derives the age from a mandatory retirement date.
	StrategyRetirementColumn Strategy = "retirement-column"
	// StrategyPageSummary reads "(born ...)" from each legislator's article.
	StrategyPageSummary Strategy = "page-summary"
	// StrategyInfobox reads the article infobox, falling back to the summary.
	StrategyInfobox Strategy = "infobox"
)

// Valid reports whether s is a known strategy.
func (s Strategy) Valid() bool {
	switch s {
	case StrategyBornColumn, StrategyRetirementColumn, StrategyPageSummary, StrategyInfobox:
		return true
	}
	return false
}

// NeedsPages reports whether the strategy fetches one article per legislator.
func (s Strategy) NeedsPages() bool {
	return s == StrategyPageSummary || s == StrategyInfobox
}

// Source describes one legislature table.
type Source struct {
	Key              string   `yaml:"key" json:"key"`
	Name             string   `yaml:"name" json:"name"`
	URL              string   `yaml:"url" json:"url"`
	TableID          string   `yaml:"table_id" json:"table_id,omitempty"`
	WithLinks        bool     `yaml:"with_links" json:"with_links"`
	Dir              string   `yaml:"dir" json:"dir"`
	File             string   `yaml:"file" json:"file"`
	NameColumn       string   `yaml:"name_column" json:"name_column,omitempty"`
	AgeStrategy      Strategy `yaml:"age_strategy" json:"age_strategy"`
	BornColumn       string   `yaml:"born_column" json:"born_column,omitempty"`
	LinkColumn       string   `yaml:"link_column" json:"link_column,omitempty"`
	RetirementColumn string   `yaml:"retirement_column" json:"retirement_column,omitempty"`
}

// Settings are the runtime knobs shared by every command.
type Settings struct {
	DataDir       string        `yaml:"data_dir"`
	UserAgent     string        `yaml:"user_agent"`
	LogLevel      string        `yaml:"log_level"`
	RetirementAge int           `yaml:"retirement_age"`
	Workers       int           `yaml:"workers"`
	HTTPTimeout   time.Duration `yaml:"http_timeout"`
	Retries       int           `yaml:"retries"`
}

// Config is the parsed catalog plus settings.
type Config struct {
	Settings Settings `yaml:"settings"`
	Sources  []Source `yaml:"sources"`
}

// Default returns the embedded configuration.
func Default() (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(defaultYAML, &cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded config: %w", err)
	}
	return &cfg, nil
}

// Load reads the embedded defaults, overlays path (if not empty) and applies
// environment overrides. The result is validated.
func Load(path string) (*Config, error) {
	cfg, err := Default()
	if err != nil {
		return nil, err
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDotEnv loads environment variables from path without overriding ones
// that are already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("loading %s: %w", path, err)
	}
	logger.Debug("Loaded environment file", logger.Fields{"path": path})
	return nil
}

// ApplyEnv overrides settings from LEGISLATOR_AGES_* variables read through getenv.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := getenv(EnvPrefix + "DATA_DIR"); v != "" {
		c.Settings.DataDir = v
	}
	if v := getenv(EnvPrefix + "USER_AGENT"); v != "" {
		c.Settings.UserAgent = v
	}
	if v := getenv(EnvPrefix + "LOG_LEVEL"); v != "" {
		c.Settings.LogLevel = v
	}

	ints := []struct {
		name string
		dst  *int
	}{
		{"WORKERS", &c.Settings.Workers},
		{"RETIREMENT_AGE", &c.Settings.RetirementAge},
		{"RETRIES", &c.Settings.Retries},
	}
	for _, iv := range ints {
		v := getenv(EnvPrefix + iv.name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parsing %s%s: %w", EnvPrefix, iv.name, err)
		}
		*iv.dst = n
	}

	if v := getenv(EnvPrefix + "HTTP_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parsing %sHTTP_TIMEOUT: %w", EnvPrefix, err)
		}
		c.Settings.HTTPTimeout = d
	}
	return nil
}

// Validate checks the catalog for mistakes that would only surface mid-run.
func (c *Config) Validate() error {
	if _, err := logger.ParseLevel(c.Settings.LogLevel); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.Settings.Workers < 1 {
		return fmt.Errorf("invalid config: workers must be at least 1, got %d", c.Settings.Workers)
	}
	if c.Settings.RetirementAge < 1 {
		return fmt.Errorf("invalid config: retirement_age must be positive, got %d", c.Settings.RetirementAge)
	}
	if c.Settings.Retries < 0 {
		return fmt.Errorf("invalid config: retries must not be negative, got %d", c.Settings.Retries)
	}

	seen := make(map[string]bool, len(c.Sources))
	for i, s := range c.Sources {
		if s.Key == "" {
			return fmt.Errorf("invalid config: source #%d has no key", i+1)
		}
		if seen[s.Key] {
			return fmt.Errorf("invalid config: duplicate source key %q", s.Key)
		}
		seen[s.Key] = true

		if s.URL == "" {
			return fmt.Errorf("invalid config: source %q has no url", s.Key)
		}
		if s.File == "" {
			return fmt.Errorf("invalid config: source %q has no file", s.Key)
		}
		if !s.AgeStrategy.Valid() {
			return fmt.Errorf("invalid config: source %q has unknown age_strategy %q", s.Key, s.AgeStrategy)
		}
		switch s.AgeStrategy {
		case StrategyBornColumn:
			if s.BornColumn == "" {
				return fmt.Errorf("invalid config: source %q needs born_column", s.Key)
			}
		case StrategyRetirementColumn:
			if s.RetirementColumn == "" {
				return fmt.Errorf("invalid config: source %q needs retirement_column", s.Key)
			}
		case StrategyPageSummary, StrategyInfobox:
			if s.LinkColumn == "" || !s.WithLinks {
				return fmt.Errorf("invalid config: source %q needs with_links and link_column", s.Key)
			}
		}
	}
	return nil
}

// Source returns the source with the given key.
func (c *Config) Source(key string) (Source, error) {
	for _, s := range c.Sources {
		if s.Key == key {
			return s, nil
		}
	}
	return Source{}, fmt.Errorf("unknown source %q (known: %v)", key, c.Keys())
}

// Keys returns the configured source keys, sorted.
func (c *Config) Keys() []string {
	keys := make([]string, 0, len(c.Sources))
	for _, s := range c.Sources {
		keys = append(keys, s.Key)
	}
	sort.Strings(keys)
	return keys
}
