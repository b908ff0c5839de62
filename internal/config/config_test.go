package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"

	"github.com/1broseidon/tilevim/internal/tiling"
)

func writeFile(t *testing.T, path, data string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
	if cfg.LayoutKey() != tiling.Tile {
		t.Fatalf("expected tile default layout, got %q", cfg.LayoutKey())
	}
	if cfg.Keys != nil {
		t.Fatalf("expected nil keys to select built-in bindings, got %v", cfg.Keys)
	}
}

func TestLoadFromPath_MissingFileUsesDefaults(t *testing.T) {
	res, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff(DefaultConfig(), res.Config); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
	if len(res.Files) != 0 {
		t.Fatalf("expected no files loaded, got %v", res.Files)
	}
}

func TestLoadFromPath_EmptyFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "# empty\n")

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.PrefixKey != DefaultPrefixKey {
		t.Fatalf("expected prefix_key %q, got %q", DefaultPrefixKey, res.Config.PrefixKey)
	}
}

func TestLoadFromPath_AllFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, `
prefix_key: Mod1-space
keys:
  - keys: [Mod4-Return]
    action: zoom
  - keys: [Mod4-h, Mod4-Left]
    action: setmfact
    args: ["-0.05"]
inner_gap: 4
outer_gap: 8
remove_decorations: true
auto_hint: false
default_layout: monocle
default_nmaster: 2
default_mfact: 0.6
refresh_interval: 500ms
pipes:
  enabled: true
  dir: /tmp/bar
logging:
  level: debug
  file: /tmp/tilevim.log
`)

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	want := &Config{
		PrefixKey: "Mod1-space",
		Keys: []KeyBinding{
			{Keys: []string{"Mod4-Return"}, Action: "zoom"},
			{Keys: []string{"Mod4-h", "Mod4-Left"}, Action: "setmfact", Args: []string{"-0.05"}},
		},
		InnerGap:          4,
		OuterGap:          8,
		RemoveDecorations: true,
		AutoHint:          false,
		DefaultLayout:     "monocle",
		DefaultNMaster:    2,
		DefaultMFact:      0.6,
		RefreshInterval:   500 * time.Millisecond,
		Pipes:             PipesConfig{Enabled: true, Dir: "/tmp/bar"},
		Logging:           LoggingConfig{Level: "debug", File: "/tmp/tilevim.log"},
	}
	if diff := cmp.Diff(want, res.Config); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
	if res.Config.LayoutKey() != tiling.Monocle {
		t.Fatalf("expected monocle layout key, got %q", res.Config.LayoutKey())
	}
}

func TestLoadFromPath_StrictUnknownKeyErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "unknown_key: 1\n")

	_, err := LoadFromPath(path)
	if err == nil {
		t.Fatalf("expected error for unknown key")
	}
	if !strings.Contains(err.Error(), "unknown_key") && !strings.Contains(err.Error(), "field") {
		t.Fatalf("expected unknown field error, got %v", err)
	}
	if !strings.Contains(err.Error(), path) {
		t.Fatalf("expected error to include file path, got %v", err)
	}
}

func TestLoadFromPath_ValidationErrorHasSourceContext(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "inner_gap: 2\ndefault_mfact: 0.95\n")

	_, err := LoadFromPath(path)
	if err == nil {
		t.Fatalf("expected validation error")
	}
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	if verr.Path != "default_mfact" {
		t.Fatalf("expected path default_mfact, got %q", verr.Path)
	}
	if verr.Source.Line != 2 {
		t.Fatalf("expected line 2, got %d", verr.Source.Line)
	}
	if !strings.HasPrefix(err.Error(), verr.Source.File+":2:") {
		t.Fatalf("expected file:line:col prefix, got %v", err)
	}
}

func TestLoadFromPath_BindingErrorsPointAtItem(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, `
keys:
  - keys: [Mod4-j]
    action: focusstack
    args: ["1"]
  - keys: []
    action: zoom
`)

	_, err := LoadFromPath(path)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Path != "keys.1.keys" {
		t.Fatalf("expected path keys.1.keys, got %q", verr.Path)
	}
	if verr.Source.Line != 6 {
		t.Fatalf("expected line 6, got %d (%v)", verr.Source.Line, err)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		path   string
	}{
		{"prefix", func(c *Config) { c.PrefixKey = " " }, "prefix_key"},
		{"action", func(c *Config) { c.Keys = []KeyBinding{{Keys: []string{"a"}}} }, "keys.0.action"},
		{"empty chord", func(c *Config) { c.Keys = []KeyBinding{{Keys: []string{""}, Action: "zoom"}} }, "keys.0.keys"},
		{"inner gap", func(c *Config) { c.InnerGap = -1 }, "inner_gap"},
		{"outer gap", func(c *Config) { c.OuterGap = -1 }, "outer_gap"},
		{"layout", func(c *Config) { c.DefaultLayout = "spiral" }, "default_layout"},
		{"nmaster", func(c *Config) { c.DefaultNMaster = -1 }, "default_nmaster"},
		{"mfact low", func(c *Config) { c.DefaultMFact = 0.05 }, "default_mfact"},
		{"refresh", func(c *Config) { c.RefreshInterval = -time.Second }, "refresh_interval"},
		{"log level", func(c *Config) { c.Logging.Level = "loud" }, "logging.level"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Path != tc.path {
				t.Fatalf("expected path %q, got %q", tc.path, verr.Path)
			}
		})
	}
}

func TestLoadFromPath_IncludeDirectoryOrderAndMainOverrides(t *testing.T) {
	dir := t.TempDir()

	// config.d loaded first, in sorted order.
	configD := filepath.Join(dir, "config.d")
	writeFile(t, filepath.Join(configD, "10-base.yaml"), "inner_gap: 5\npipes:\n  enabled: true\n")
	writeFile(t, filepath.Join(configD, "20-override.yaml"), "inner_gap: 6\npipes:\n  dir: /run/bar\n")

	// Main file overrides includes.
	path := filepath.Join(dir, "config.yaml")
	writeFile(t, path, "include:\n  - config.d\ninner_gap: 7\n")

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.InnerGap != 7 {
		t.Fatalf("expected inner_gap to be 7, got %d", res.Config.InnerGap)
	}
	if !res.Config.Pipes.Enabled || res.Config.Pipes.Dir != "/run/bar" {
		t.Fatalf("expected pipes merged across includes, got %+v", res.Config.Pipes)
	}
	if len(res.Files) != 3 || filepath.Base(res.Files[2]) != "config.yaml" {
		t.Fatalf("expected includes before main file, got %v", res.Files)
	}
}

func TestLoadFromPath_IncludedKeysReplaceList(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "keys.yaml"), "keys:\n  - keys: [Mod4-a]\n    action: zoom\n  - keys: [Mod4-b]\n    action: only\n")
	path := filepath.Join(dir, "config.yaml")
	writeFile(t, path, "include: keys.yaml\nkeys:\n  - keys: [Mod4-c]\n    action: centralize\n")

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := []KeyBinding{{Keys: []string{"Mod4-c"}, Action: "centralize"}}
	if diff := cmp.Diff(want, res.Config.Keys); diff != "" {
		t.Fatalf("keys mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadFromPath_IncludeMissingPathHasContext(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "include:\n  - missing.yaml\n")

	_, err := LoadFromPath(path)
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "include") || !strings.Contains(err.Error(), "missing.yaml") {
		t.Fatalf("expected include error, got %v", err)
	}
	if !strings.Contains(err.Error(), ":2:") {
		t.Fatalf("expected error to include file:line:col prefix, got %v", err)
	}
}

func TestLoadFromPath_IncludeCycleDetection(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.yaml")
	writeFile(t, a, "include: b.yaml\n")
	writeFile(t, filepath.Join(dir, "b.yaml"), "include: a.yaml\n")

	_, err := LoadFromPath(a)
	if err == nil {
		t.Fatalf("expected cycle error")
	}
	if !strings.Contains(err.Error(), "include cycle") {
		t.Fatalf("expected cycle error, got %v", err)
	}
}

func TestExplain(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "outer_gap: 12\nkeys:\n  - keys: [Mod4-o]\n    action: only\n")

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	val, src, err := Explain(res, "outer_gap")
	if err != nil {
		t.Fatalf("explain: %v", err)
	}
	if val != 12 || src.Kind != SourceFile || src.Line != 1 {
		t.Fatalf("expected 12 from file line 1, got %#v %#v", val, src)
	}

	val, src, err = Explain(res, "keys.0.action")
	if err != nil {
		t.Fatalf("explain: %v", err)
	}
	if val != "only" || src.Line != 4 {
		t.Fatalf("expected only at line 4, got %#v %#v", val, src)
	}

	val, src, err = Explain(res, "refresh_interval")
	if err != nil {
		t.Fatalf("explain: %v", err)
	}
	if val != "2s" || src.Kind != SourceDefault {
		t.Fatalf("expected default 2s, got %#v %#v", val, src)
	}

	if _, _, err := Explain(res, "keys.3.action"); err == nil {
		t.Fatalf("expected error for out of range binding")
	}
	if _, _, err := Explain(res, "inner_gap.x"); err == nil {
		t.Fatalf("expected error for unknown path")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := DefaultConfig()
	cfg.InnerGap = 3
	cfg.Keys = []KeyBinding{{Keys: []string{"Mod4-x"}, Action: "killclient"}}
	cfg.Include = IncludeList{"dropped.yaml"}

	if err := cfg.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	cfg.Include = nil
	if diff := cmp.Diff(cfg, res.Config); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestSaveRejectsInvalid(t *testing.T) {
	cfg := DefaultConfig()
	cfg.OuterGap = -4
	if err := cfg.Save(filepath.Join(t.TempDir(), "config.yaml")); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestDefaultConfigPath_UsesXDGConfigHome(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/cfg")
	got, err := DefaultConfigPath()
	if err != nil {
		t.Fatalf("DefaultConfigPath: %v", err)
	}
	if got != "/cfg/tilevim/config.yaml" {
		t.Fatalf("expected /cfg/tilevim/config.yaml, got %q", got)
	}
}

func TestWatch_DebouncesWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "inner_gap: 1\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reload := make(chan string, 4)
	done := make(chan error, 1)
	go func() { done <- Watch(ctx, path, zerolog.Nop(), reload) }()

	// Give the watcher time to register.
	time.Sleep(100 * time.Millisecond)
	for i := 0; i < 3; i++ {
		writeFile(t, path, "inner_gap: 2\n")
	}

	select {
	case reason := <-reload:
		if reason != "config file updated" {
			t.Fatalf("unexpected reason %q", reason)
		}
	case <-time.After(3 * time.Second):
		t.Fatalf("expected reload after write")
	}

	select {
	case <-reload:
		t.Fatalf("expected writes to be coalesced")
	case <-time.After(2 * debounceWindow):
	}

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("watch: %v", err)
	}
}
