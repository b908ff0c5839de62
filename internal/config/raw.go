package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// IncludeList supports either:
//
//	include: "/path/to/file.yaml"
//
// or:
//
//	include:
//	  - "/path/to/file.yaml"
//	  - "/path/to/dir"
type IncludeList []string

func (l *IncludeList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case 0:
		*l = nil
		return nil
	case yaml.ScalarNode:
		if value.Tag != "!!str" {
			return fmt.Errorf("include must be a string or list of strings")
		}
		*l = []string{value.Value}
		return nil
	case yaml.SequenceNode:
		out := make([]string, 0, len(value.Content))
		for _, item := range value.Content {
			if item.Kind != yaml.ScalarNode || item.Tag != "!!str" {
				return fmt.Errorf("include entries must be strings")
			}
			out = append(out, item.Value)
		}
		*l = out
		return nil
	default:
		return fmt.Errorf("include must be a string or list of strings")
	}
}

type RawPipes struct {
	Enabled *bool   `yaml:"enabled"`
	Dir     *string `yaml:"dir"`
}

type RawLogging struct {
	Level     *string `yaml:"level"`
	File      *string `yaml:"file"`
	MaxSizeMB *int    `yaml:"max_size_mb"`
	MaxFiles  *int    `yaml:"max_files"`
}

// RawConfig is one file's view of the configuration. Nil fields were not
// set by that file.
type RawConfig struct {
	Include IncludeList `yaml:"include"`

	PrefixKey *string       `yaml:"prefix_key"`
	Keys      *[]KeyBinding `yaml:"keys"`

	InnerGap          *int  `yaml:"inner_gap"`
	OuterGap          *int  `yaml:"outer_gap"`
	RemoveDecorations *bool `yaml:"remove_decorations"`
	AutoHint          *bool `yaml:"auto_hint"`

	DefaultLayout  *string  `yaml:"default_layout"`
	DefaultNMaster *int     `yaml:"default_nmaster"`
	DefaultMFact   *float64 `yaml:"default_mfact"`

	RefreshInterval *time.Duration `yaml:"refresh_interval"`

	Pipes   *RawPipes   `yaml:"pipes"`
	Logging *RawLogging `yaml:"logging"`
}

// merge overlays non-nil fields of overlay onto c. Lists are replaced, not
// appended.
func (c RawConfig) merge(overlay RawConfig) RawConfig {
	out := c
	out.Include = nil

	if overlay.PrefixKey != nil {
		out.PrefixKey = overlay.PrefixKey
	}
	if overlay.Keys != nil {
		keys := append([]KeyBinding(nil), (*overlay.Keys)...)
		out.Keys = &keys
	}
	if overlay.InnerGap != nil {
		out.InnerGap = overlay.InnerGap
	}
	if overlay.OuterGap != nil {
		out.OuterGap = overlay.OuterGap
	}
	if overlay.RemoveDecorations != nil {
		out.RemoveDecorations = overlay.RemoveDecorations
	}
	if overlay.AutoHint != nil {
		out.AutoHint = overlay.AutoHint
	}
	if overlay.DefaultLayout != nil {
		out.DefaultLayout = overlay.DefaultLayout
	}
	if overlay.DefaultNMaster != nil {
		out.DefaultNMaster = overlay.DefaultNMaster
	}
	if overlay.DefaultMFact != nil {
		out.DefaultMFact = overlay.DefaultMFact
	}
	if overlay.RefreshInterval != nil {
		out.RefreshInterval = overlay.RefreshInterval
	}
	if overlay.Pipes != nil {
		merged := mergeRawPipes(out.Pipes, *overlay.Pipes)
		out.Pipes = &merged
	}
	if overlay.Logging != nil {
		merged := mergeRawLogging(out.Logging, *overlay.Logging)
		out.Logging = &merged
	}
	return out
}

func mergeRawPipes(base *RawPipes, overlay RawPipes) RawPipes {
	var out RawPipes
	if base != nil {
		out = *base
	}
	if overlay.Enabled != nil {
		out.Enabled = overlay.Enabled
	}
	if overlay.Dir != nil {
		out.Dir = overlay.Dir
	}
	return out
}

func mergeRawLogging(base *RawLogging, overlay RawLogging) RawLogging {
	var out RawLogging
	if base != nil {
		out = *base
	}
	if overlay.Level != nil {
		out.Level = overlay.Level
	}
	if overlay.File != nil {
		out.File = overlay.File
	}
	if overlay.MaxSizeMB != nil {
		out.MaxSizeMB = overlay.MaxSizeMB
	}
	if overlay.MaxFiles != nil {
		out.MaxFiles = overlay.MaxFiles
	}
	return out
}
