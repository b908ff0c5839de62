package config

import "fmt"

type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// BuildEffectiveConfig applies raw on top of DefaultConfig.
func BuildEffectiveConfig(raw RawConfig) *Config {
	cfg := DefaultConfig()

	if raw.PrefixKey != nil {
		cfg.PrefixKey = *raw.PrefixKey
	}
	if raw.Keys != nil {
		cfg.Keys = cloneBindings(*raw.Keys)
	}
	if raw.InnerGap != nil {
		cfg.InnerGap = *raw.InnerGap
	}
	if raw.OuterGap != nil {
		cfg.OuterGap = *raw.OuterGap
	}
	if raw.RemoveDecorations != nil {
		cfg.RemoveDecorations = *raw.RemoveDecorations
	}
	if raw.AutoHint != nil {
		cfg.AutoHint = *raw.AutoHint
	}
	if raw.DefaultLayout != nil {
		cfg.DefaultLayout = *raw.DefaultLayout
	}
	if raw.DefaultNMaster != nil {
		cfg.DefaultNMaster = *raw.DefaultNMaster
	}
	if raw.DefaultMFact != nil {
		cfg.DefaultMFact = *raw.DefaultMFact
	}
	if raw.RefreshInterval != nil {
		cfg.RefreshInterval = *raw.RefreshInterval
	}
	if raw.Pipes != nil {
		if raw.Pipes.Enabled != nil {
			cfg.Pipes.Enabled = *raw.Pipes.Enabled
		}
		if raw.Pipes.Dir != nil {
			cfg.Pipes.Dir = *raw.Pipes.Dir
		}
	}
	if raw.Logging != nil {
		if raw.Logging.Level != nil {
			cfg.Logging.Level = *raw.Logging.Level
		}
		if raw.Logging.File != nil {
			cfg.Logging.File = *raw.Logging.File
		}
		cfg.Logging.MaxSizeMB = derefInt(raw.Logging.MaxSizeMB, cfg.Logging.MaxSizeMB)
		cfg.Logging.MaxFiles = derefInt(raw.Logging.MaxFiles, cfg.Logging.MaxFiles)
	}
	return cfg
}

func cloneBindings(in []KeyBinding) []KeyBinding {
	out := make([]KeyBinding, len(in))
	for i, kb := range in {
		out[i] = KeyBinding{
			Keys:   append([]string(nil), kb.Keys...),
			Action: kb.Action,
			Args:   append([]string(nil), kb.Args...),
		}
	}
	return out
}

func derefInt(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}
