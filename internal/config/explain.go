package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Explain returns the effective value at the given YAML-like path and its source.
//
// Supported paths include:
//
//	prefix_key
//	keys
//	keys.<n>.action
//	inner_gap
//	outer_gap
//	remove_decorations
//	auto_hint
//	default_layout
//	default_nmaster
//	default_mfact
//	refresh_interval
//	pipes.enabled
//	pipes.dir
//	logging.level
//	logging.file
func Explain(res *LoadResult, path string) (any, Source, error) {
	if res == nil || res.Config == nil {
		return nil, Source{}, fmt.Errorf("no config loaded")
	}
	if path == "" {
		return nil, Source{}, fmt.Errorf("path is empty")
	}

	value, err := lookupValue(res.Config, path)
	if err != nil {
		return nil, Source{}, err
	}

	if src, ok := res.Sources[path]; ok {
		return value, src, nil
	}
	return value, Source{Kind: SourceDefault, Name: "defaults"}, nil
}

func lookupValue(cfg *Config, path string) (any, error) {
	parts := strings.Split(path, ".")
	scalar := func(v any) (any, error) {
		if len(parts) != 1 {
			return nil, fmt.Errorf("unknown path: %s", path)
		}
		return v, nil
	}

	switch parts[0] {
	case "prefix_key":
		return scalar(cfg.PrefixKey)
	case "keys":
		return lookupBinding(cfg.Keys, parts[1:], path)
	case "inner_gap":
		return scalar(cfg.InnerGap)
	case "outer_gap":
		return scalar(cfg.OuterGap)
	case "remove_decorations":
		return scalar(cfg.RemoveDecorations)
	case "auto_hint":
		return scalar(cfg.AutoHint)
	case "default_layout":
		return scalar(cfg.DefaultLayout)
	case "default_nmaster":
		return scalar(cfg.DefaultNMaster)
	case "default_mfact":
		return scalar(cfg.DefaultMFact)
	case "refresh_interval":
		return scalar(cfg.RefreshInterval.String())
	case "pipes":
		if len(parts) != 2 {
			return nil, fmt.Errorf("unknown path: %s", path)
		}
		switch parts[1] {
		case "enabled":
			return cfg.Pipes.Enabled, nil
		case "dir":
			return cfg.Pipes.Dir, nil
		}
	case "logging":
		if len(parts) != 2 {
			return nil, fmt.Errorf("unknown path: %s", path)
		}
		switch parts[1] {
		case "level":
			return cfg.Logging.Level, nil
		case "file":
			return cfg.Logging.File, nil
		case "max_size_mb":
			return cfg.Logging.MaxSizeMB, nil
		case "max_files":
			return cfg.Logging.MaxFiles, nil
		}
	}
	return nil, fmt.Errorf("unknown path: %s", path)
}

func lookupBinding(keys []KeyBinding, rest []string, path string) (any, error) {
	if len(rest) == 0 {
		return keys, nil
	}
	idx, err := strconv.Atoi(rest[0])
	if err != nil || idx < 0 || idx >= len(keys) {
		return nil, fmt.Errorf("unknown path: %s", path)
	}
	kb := keys[idx]
	if len(rest) == 1 {
		return kb, nil
	}
	if len(rest) == 2 {
		switch rest[1] {
		case "keys":
			return kb.Keys, nil
		case "action":
			return kb.Action, nil
		case "args":
			return kb.Args, nil
		}
	}
	return nil, fmt.Errorf("unknown path: %s", path)
}
