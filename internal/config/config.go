package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/1broseidon/tilevim/internal/tiling"
)

const (
	DefaultPrefixKey       = "Mod4-semicolon"
	DefaultRefreshInterval = 2 * time.Second
	DefaultMFact           = 0.5
	DefaultNMaster         = 1
)

// KeyBinding binds one or more key chords to a named action.
type KeyBinding struct {
	Keys   []string `yaml:"keys"`
	Action string   `yaml:"action"`
	Args   []string `yaml:"args,omitempty"`
}

// PipesConfig controls the layout FIFOs read by status bars.
type PipesConfig struct {
	Enabled bool   `yaml:"enabled"`
	Dir     string `yaml:"dir,omitempty"` // empty = runtime dir
}

// LoggingConfig configures the daemon log.
type LoggingConfig struct {
	// Level controls verbosity: debug, info, warn, error
	Level string `yaml:"level,omitempty"`
	// File is the log file path (default: ~/.local/state/tilevim/tilevim.log)
	File      string `yaml:"file,omitempty"`
	MaxSizeMB int    `yaml:"max_size_mb,omitempty"`
	MaxFiles  int    `yaml:"max_files,omitempty"`
}

// Config is the effective configuration.
type Config struct {
	Include IncludeList `yaml:"include,omitempty"`

	// PrefixKey opens the prompt from anywhere.
	PrefixKey string `yaml:"prefix_key"`
	// Keys replaces the built-in bindings when set.
	Keys []KeyBinding `yaml:"keys,omitempty"`

	InnerGap          int  `yaml:"inner_gap"`
	OuterGap          int  `yaml:"outer_gap"`
	RemoveDecorations bool `yaml:"remove_decorations"`
	AutoHint          bool `yaml:"auto_hint"`

	// DefaultLayout is T (tile), M (monocle) or none.
	DefaultLayout  string  `yaml:"default_layout"`
	DefaultNMaster int     `yaml:"default_nmaster"`
	DefaultMFact   float64 `yaml:"default_mfact"`

	// RefreshInterval is how often the daemon re-reads the window list to
	// tile windows opened outside the prompt. Zero disables polling.
	RefreshInterval time.Duration `yaml:"refresh_interval"`

	Pipes   PipesConfig   `yaml:"pipes"`
	Logging LoggingConfig `yaml:"logging,omitempty"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		PrefixKey:       DefaultPrefixKey,
		AutoHint:        true,
		DefaultLayout:   "T",
		DefaultNMaster:  DefaultNMaster,
		DefaultMFact:    DefaultMFact,
		RefreshInterval: DefaultRefreshInterval,
		Logging:         LoggingConfig{Level: "info"},
	}
}

// LayoutKey returns the parsed default layout.
func (c *Config) LayoutKey() tiling.LayoutKey {
	key, err := tiling.ParseLayoutKey(c.DefaultLayout)
	if err != nil {
		return tiling.Tile
	}
	return key
}

// Save writes the configuration to path, or to the standard location when
// path is empty.
//
// Note: this marshals the effective config and will not preserve comments or
// include structure from the original YAML.
func (c *Config) Save(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}

	if path == "" {
		p, err := DefaultConfigPath()
		if err != nil {
			return err
		}
		path = p
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	save := *c
	save.Include = nil
	data, err := yaml.Marshal(&save)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate performs strict validation of the effective configuration.
// Action names are checked by the daemon when it builds the key table.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.PrefixKey) == "" {
		return &ValidationError{Path: "prefix_key", Err: fmt.Errorf("prefix_key is required")}
	}
	for i, kb := range c.Keys {
		path := fmt.Sprintf("keys.%d", i)
		if strings.TrimSpace(kb.Action) == "" {
			return &ValidationError{Path: path + ".action", Err: fmt.Errorf("action is required")}
		}
		if len(kb.Keys) == 0 {
			return &ValidationError{Path: path + ".keys", Err: fmt.Errorf("at least one key chord is required")}
		}
		for _, k := range kb.Keys {
			if strings.TrimSpace(k) == "" {
				return &ValidationError{Path: path + ".keys", Err: fmt.Errorf("key chords must not be empty")}
			}
		}
	}
	if c.InnerGap < 0 {
		return &ValidationError{Path: "inner_gap", Err: fmt.Errorf("inner_gap must be >= 0")}
	}
	if c.OuterGap < 0 {
		return &ValidationError{Path: "outer_gap", Err: fmt.Errorf("outer_gap must be >= 0")}
	}
	if _, err := tiling.ParseLayoutKey(c.DefaultLayout); err != nil {
		return &ValidationError{Path: "default_layout", Err: err}
	}
	if c.DefaultNMaster < 0 {
		return &ValidationError{Path: "default_nmaster", Err: fmt.Errorf("default_nmaster must be >= 0")}
	}
	if c.DefaultMFact < 0.1 || c.DefaultMFact > 0.9 {
		return &ValidationError{Path: "default_mfact", Err: fmt.Errorf("default_mfact must be between 0.1 and 0.9")}
	}
	if c.RefreshInterval < 0 {
		return &ValidationError{Path: "refresh_interval", Err: fmt.Errorf("refresh_interval must be >= 0")}
	}
	switch strings.ToLower(c.Logging.Level) {
	case "", "trace", "debug", "info", "warn", "warning", "error", "off", "disabled":
	default:
		return &ValidationError{Path: "logging.level", Err: fmt.Errorf("logging.level must be one of: debug, info, warn, error, off")}
	}
	if c.Logging.MaxSizeMB < 0 || c.Logging.MaxFiles < 0 {
		return &ValidationError{Path: "logging", Err: fmt.Errorf("logging rotation values must be >= 0")}
	}
	return nil
}
