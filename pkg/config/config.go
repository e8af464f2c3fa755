// Package config loads the recorder configuration. A Config is built once at
// startup and passed explicitly to every component.
//
// Files may be YAML, TOML or JSON, chosen by extension. Keys missing from the
// file keep their defaults, and a few OMNIJOURNAL_* environment variables
// override the file.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"omnijournal/pkg/classify"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Text providers.
const (
	ProviderOllama = "ollama"
	ProviderClaude = "claude"
)

// Config is the full recorder configuration. Durations are whole seconds.
type Config struct {
	MonitorPath string `yaml:"monitor_path" toml:"monitor_path" json:"monitor_path"`
	LogRoot     string `yaml:"log_root" toml:"log_root" json:"log_root"`

	TickInterval         int  `yaml:"tick_interval" toml:"tick_interval" json:"tick_interval"`
	IdleThreshold        int  `yaml:"idle_threshold" toml:"idle_threshold" json:"idle_threshold"`
	MediaHarvestInterval int  `yaml:"media_harvest_interval" toml:"media_harvest_interval" json:"media_harvest_interval"`
	WorkProgressInterval int  `yaml:"work_progress_interval" toml:"work_progress_interval" json:"work_progress_interval"`
	SplitHarvestThrottle bool `yaml:"split_harvest_throttle" toml:"split_harvest_throttle" json:"split_harvest_throttle"`

	VisionModel  string `yaml:"vision_model" toml:"vision_model" json:"vision_model"`
	TextModel    string `yaml:"text_model" toml:"text_model" json:"text_model"`
	TextProvider string `yaml:"text_provider" toml:"text_provider" json:"text_provider"`
	OllamaURL    string `yaml:"ollama_url" toml:"ollama_url" json:"ollama_url"`
	ClaudePath   string `yaml:"claude_path" toml:"claude_path" json:"claude_path"`

	HarvestTimeout     int `yaml:"harvest_timeout" toml:"harvest_timeout" json:"harvest_timeout"`
	HarvestMaxInflight int `yaml:"harvest_max_inflight" toml:"harvest_max_inflight" json:"harvest_max_inflight"`
	ShutdownGrace      int `yaml:"shutdown_grace" toml:"shutdown_grace" json:"shutdown_grace"`
	SensorTimeout      int `yaml:"sensor_timeout" toml:"sensor_timeout" json:"sensor_timeout"`

	SummaryBudget  int `yaml:"summary_budget" toml:"summary_budget" json:"summary_budget"`
	SummaryTimeout int `yaml:"summary_timeout" toml:"summary_timeout" json:"summary_timeout"`

	JournalFsync   bool     `yaml:"journal_fsync" toml:"journal_fsync" json:"journal_fsync"`
	IndexEnabled   bool     `yaml:"index_enabled" toml:"index_enabled" json:"index_enabled"`
	IgnoreSuffixes []string `yaml:"ignore_suffixes" toml:"ignore_suffixes" json:"ignore_suffixes"`

	LogLevel  string `yaml:"log_level" toml:"log_level" json:"log_level"`
	LogFormat string `yaml:"log_format" toml:"log_format" json:"log_format"`

	// Rules replaces the built-in classification rules when non-empty. List
	// order is priority order.
	Rules []classify.Rule `yaml:"rules,omitempty" toml:"rules,omitempty" json:"rules,omitempty"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		MonitorPath:          "~/Documents/Research",
		LogRoot:              "~/Downloads/OmniJournal_Data",
		TickInterval:         2,
		IdleThreshold:        60,
		MediaHarvestInterval: 30,
		WorkProgressInterval: 30,
		VisionModel:          "llava",
		TextModel:            "llama3",
		TextProvider:         ProviderOllama,
		OllamaURL:            "http://localhost:11434",
		ClaudePath:           "claude",
		HarvestTimeout:       120,
		HarvestMaxInflight:   1,
		ShutdownGrace:        5,
		SensorTimeout:        3,
		SummaryBudget:        6000,
		SummaryTimeout:       300,
		JournalFsync:         true,
		IndexEnabled:         true,
		IgnoreSuffixes:       []string{".DS_Store", ".json", ".tmp", ".log"},
		LogLevel:             "info",
		LogFormat:            "text",
	}
}

// Load reads the file at path over the defaults, applies environment
// overrides, expands "~" and validates. A missing file or empty path yields
// the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path) //nolint:gosec // user-supplied config path
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := decode(path, data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	cfg.applyEnv()
	if err := cfg.expandPaths(); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// decode picks the codec from the file extension. Unknown extensions try
// YAML, which also accepts JSON.
func decode(path string, data []byte, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return toml.Unmarshal(data, cfg)
	case ".json":
		return json.Unmarshal(data, cfg)
	default:
		return yaml.Unmarshal(data, cfg)
	}
}

func (c *Config) applyEnv() {
	overrides := []struct {
		env string
		dst *string
	}{
		{"OMNIJOURNAL_LOG_ROOT", &c.LogRoot},
		{"OMNIJOURNAL_MONITOR_PATH", &c.MonitorPath},
		{"OMNIJOURNAL_OLLAMA_URL", &c.OllamaURL},
		{"OMNIJOURNAL_LOG_LEVEL", &c.LogLevel},
	}
	for _, o := range overrides {
		if v := os.Getenv(o.env); v != "" {
			*o.dst = v
		}
	}
}

func (c *Config) expandPaths() error {
	var err error
	if c.LogRoot, err = ExpandHome(c.LogRoot); err != nil {
		return err
	}
	if c.MonitorPath, err = ExpandHome(c.MonitorPath); err != nil {
		return err
	}
	return nil
}

// ExpandHome replaces a leading "~" with the user's home directory.
func ExpandHome(p string) (string, error) {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("expand %s: %w", p, err)
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~")), nil
}

// Validate checks value ranges and cross-field constraints.
func (c Config) Validate() error {
	var errs []error
	positive := []struct {
		name string
		v    int
	}{
		{"tick_interval", c.TickInterval},
		{"idle_threshold", c.IdleThreshold},
		{"media_harvest_interval", c.MediaHarvestInterval},
		{"work_progress_interval", c.WorkProgressInterval},
		{"harvest_timeout", c.HarvestTimeout},
		{"harvest_max_inflight", c.HarvestMaxInflight},
		{"summary_budget", c.SummaryBudget},
		{"summary_timeout", c.SummaryTimeout},
		{"sensor_timeout", c.SensorTimeout},
	}
	for _, p := range positive {
		if p.v <= 0 {
			errs = append(errs, fmt.Errorf("%w: %s must be positive, got %d", ErrInvalid, p.name, p.v))
		}
	}
	if c.ShutdownGrace < 0 {
		errs = append(errs, fmt.Errorf("%w: shutdown_grace must not be negative", ErrInvalid))
	}
	if strings.TrimSpace(c.LogRoot) == "" {
		errs = append(errs, fmt.Errorf("%w: log_root is required", ErrInvalid))
	}
	switch c.TextProvider {
	case ProviderOllama, ProviderClaude:
	default:
		errs = append(errs, fmt.Errorf("%w: text_provider must be %q or %q, got %q", ErrInvalid, ProviderOllama, ProviderClaude, c.TextProvider))
	}
	for i, r := range c.Rules {
		if strings.TrimSpace(string(r.Category)) == "" {
			errs = append(errs, fmt.Errorf("%w: rules[%d] has no category", ErrInvalid, i))
		}
		if len(r.Keywords) == 0 {
			errs = append(errs, fmt.Errorf("%w: rules[%d] (%s) has no keywords", ErrInvalid, i, r.Category))
		}
	}
	return errors.Join(errs...)
}

// Marshal encodes c in the given format ("yaml", "toml" or "json").
func (c Config) Marshal(format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case "yaml", "yml", "":
		return yaml.Marshal(c)
	case "toml":
		return toml.Marshal(c)
	case "json":
		data, err := json.MarshalIndent(c, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	default:
		return nil, fmt.Errorf("unknown config format %q", format)
	}
}

// --- Derived values ---

func seconds(n int) time.Duration { return time.Duration(n) * time.Second }

// Tick returns the sampling period.
func (c Config) Tick() time.Duration { return seconds(c.TickInterval) }

// Idle returns the idle threshold.
func (c Config) Idle() time.Duration { return seconds(c.IdleThreshold) }

// MediaInterval returns the minimum gap between media harvests.
func (c Config) MediaInterval() time.Duration { return seconds(c.MediaHarvestInterval) }

// WorkInterval returns the minimum gap between work-progress harvests.
func (c Config) WorkInterval() time.Duration { return seconds(c.WorkProgressInterval) }

// HarvestDeadline returns the per-harvest timeout.
func (c Config) HarvestDeadline() time.Duration { return seconds(c.HarvestTimeout) }

// Grace returns how long shutdown waits for running harvests.
func (c Config) Grace() time.Duration { return seconds(c.ShutdownGrace) }

// SensorDeadline returns the per-query sensor timeout.
func (c Config) SensorDeadline() time.Duration { return seconds(c.SensorTimeout) }

// SummaryDeadline returns the summary generation timeout.
func (c Config) SummaryDeadline() time.Duration { return seconds(c.SummaryTimeout) }

// IndexPath returns the SQLite index location.
func (c Config) IndexPath() string { return filepath.Join(c.LogRoot, "index.db") }

// ClassifierRules returns the configured rules, or the built-in ones.
func (c Config) ClassifierRules() []classify.Rule {
	if len(c.Rules) == 0 {
		return classify.DefaultRules()
	}
	return c.Rules
}
