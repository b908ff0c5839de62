package workspace

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/1broseidon/tilevim/internal/geometry"
	"github.com/1broseidon/tilevim/internal/monitor"
	"github.com/1broseidon/tilevim/internal/platform"
	"github.com/1broseidon/tilevim/internal/service"
)

var _ service.Store = (*Store)(nil)

func TestLoadMonitors_MissingFile(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "state"))
	data, err := s.LoadMonitors()
	if err != nil {
		t.Fatalf("LoadMonitors: %v", err)
	}
	if data != nil {
		t.Fatalf("expected nil data, got %q", data)
	}
}

func TestSaveAndLoadMonitors(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "state"))
	tile := "T"
	blob := monitor.Blob{Workspaces: []monitor.WorkspaceJSON{{
		Monitors: []monitor.MonitorJSON{{
			NMaster:  2,
			MFact:    0.6,
			Function: &tile,
			Clients:  []monitor.ClientJSON{{XID: 0x1a00003, Name: "term", Index: 0}},
		}},
	}}}

	if err := s.SaveMonitors(blob); err != nil {
		t.Fatalf("SaveMonitors: %v", err)
	}
	data, err := s.LoadMonitors()
	if err != nil {
		t.Fatalf("LoadMonitors: %v", err)
	}

	var got monitor.Blob
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if diff := cmp.Diff(blob, got); diff != "" {
		t.Fatalf("blob mismatch (-want +got):\n%s", diff)
	}

	entries, err := os.ReadDir(filepath.Dir(s.MonitorsPath()))
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected only workspace.json, got %d entries", len(entries))
	}
}

func TestLoadMonitors_ToleratesCommentsAndTrailingCommas(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)
	src := `{
  // edited by hand
  "workspaces": [
    {"monitors": [{"nmaster": 3, "mfact": 0.7,},],},
  ],
}`
	if err := os.WriteFile(s.MonitorsPath(), []byte(src), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	data, err := s.LoadMonitors()
	if err != nil {
		t.Fatalf("LoadMonitors: %v", err)
	}
	var got monitor.Blob
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("expected valid JSON after normalization, got %v: %s", err, data)
	}
	if len(got.Workspaces) != 1 || got.Workspaces[0].Monitors[0].NMaster != 3 {
		t.Fatalf("unexpected blob %+v", got)
	}
}

func TestDecorationsRoundTrip(t *testing.T) {
	s := NewStore(t.TempDir())
	want := map[platform.WindowID]geometry.Flag{
		0x1a00003: geometry.FlagAll,
		0x2c00010: geometry.FlagBorder | geometry.FlagTitle,
	}
	if err := s.SaveDecorations(want); err != nil {
		t.Fatalf("SaveDecorations: %v", err)
	}

	got, err := s.LoadDecorations()
	if err != nil {
		t.Fatalf("LoadDecorations: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("decorations mismatch (-want +got):\n%s", diff)
	}

	raw, err := os.ReadFile(s.DecorationsPath())
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var onDisk map[string]string
	if err := json.Unmarshal(raw, &onDisk); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if onDisk["0x2c00010"] != "BORDER|TITLE" {
		t.Fatalf("expected readable flags, got %v", onDisk)
	}
}

func TestSaveDecorations_EmptyRemovesFile(t *testing.T) {
	s := NewStore(t.TempDir())
	if err := s.SaveDecorations(map[platform.WindowID]geometry.Flag{1: geometry.FlagAll}); err != nil {
		t.Fatalf("SaveDecorations: %v", err)
	}
	if err := s.SaveDecorations(nil); err != nil {
		t.Fatalf("SaveDecorations(nil): %v", err)
	}
	if _, err := os.Stat(s.DecorationsPath()); !os.IsNotExist(err) {
		t.Fatalf("expected decorations file removed, got %v", err)
	}
	// Removing twice is fine.
	if err := s.SaveDecorations(nil); err != nil {
		t.Fatalf("SaveDecorations(nil) again: %v", err)
	}
}

func TestLoadDecorations_SkipsBadEntries(t *testing.T) {
	s := NewStore(t.TempDir())
	src := `{"0x10": "TITLE", "bogus": "ALL", "0x20": "SPARKLES"}`
	if err := os.WriteFile(s.DecorationsPath(), []byte(src), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, err := s.LoadDecorations()
	if err == nil {
		t.Fatalf("expected error for bad entries")
	}
	want := map[platform.WindowID]geometry.Flag{0x10: geometry.FlagTitle}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("decorations mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadDecorations_Malformed(t *testing.T) {
	s := NewStore(t.TempDir())
	if err := os.WriteFile(s.DecorationsPath(), []byte("[1,2"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := s.LoadDecorations(); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestDefaultDir(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/cfg")
	dir, err := DefaultDir()
	if err != nil {
		t.Fatalf("DefaultDir: %v", err)
	}
	if got := NewStore(dir).MonitorsPath(); got != "/cfg/tilevim/workspace.json" {
		t.Fatalf("expected /cfg/tilevim/workspace.json, got %q", got)
	}
}
