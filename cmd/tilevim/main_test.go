package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/google/go-cmp/cmp"

	"github.com/1broseidon/tilevim/internal/command"
	"github.com/1broseidon/tilevim/internal/config"
	"github.com/1broseidon/tilevim/internal/ipc"
	"github.com/1broseidon/tilevim/internal/monitor"
	"github.com/1broseidon/tilevim/internal/service"
)

func init() {
	color.NoColor = true
}

type recordingExecutor struct {
	lines   []string
	replies map[string][]command.Message
	err     error
}

func (e *recordingExecutor) Execute(text string) ([]command.Message, error) {
	e.lines = append(e.lines, text)
	if e.err != nil {
		return nil, e.err
	}
	return e.replies[text], nil
}

func TestExecLinesSkipsBlankAndComments(t *testing.T) {
	e := &recordingExecutor{replies: map[string][]command.Message{
		"buffers": {command.Infof("1 xterm")},
	}}
	in := strings.NewReader("layout M\n\n# a comment\n  buffers  \n")
	var out, errOut bytes.Buffer

	failed, err := execLines(e, in, &out, &errOut)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if failed {
		t.Fatalf("expected success")
	}
	if diff := cmp.Diff([]string{"layout M", "buffers"}, e.lines); diff != "" {
		t.Fatalf("executed lines mismatch (-want +got):\n%s", diff)
	}
	if out.String() != "1 xterm\n" {
		t.Fatalf("expected buffer output, got %q", out.String())
	}
}

func TestExecLinesReportsFailures(t *testing.T) {
	e := &recordingExecutor{replies: map[string][]command.Message{
		"bogus": {command.Errorf("E492: Not an editor command: bogus")},
	}}
	var out, errOut bytes.Buffer

	failed, err := execLines(e, strings.NewReader("bogus\nlayout T\n"), &out, &errOut)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !failed {
		t.Fatalf("expected failure to be reported")
	}
	if len(e.lines) != 2 {
		t.Fatalf("expected later lines to still run, got %v", e.lines)
	}
	if !strings.Contains(errOut.String(), "E492") {
		t.Fatalf("expected error on stderr, got %q", errOut.String())
	}
}

func TestExecLinesStopsOnTransportError(t *testing.T) {
	e := &recordingExecutor{err: errors.New("daemon not running")}
	_, err := execLines(e, strings.NewReader("layout T\nlayout M\n"), &bytes.Buffer{}, &bytes.Buffer{})
	if err == nil {
		t.Fatalf("expected error")
	}
	if len(e.lines) != 1 {
		t.Fatalf("expected one attempt, got %d", len(e.lines))
	}
}

func TestPrintMessagesSplitsStreams(t *testing.T) {
	var out, errOut bytes.Buffer
	failed := printMessages(&out, &errOut, []command.Message{
		command.Infof("gaps 4 8"),
		command.Errorf("bad"),
	})
	if !failed {
		t.Fatalf("expected failed=true")
	}
	if out.String() != "gaps 4 8\n" {
		t.Fatalf("unexpected stdout %q", out.String())
	}
	if errOut.String() != "bad\n" {
		t.Fatalf("unexpected stderr %q", errOut.String())
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"much longer title", 8, "much lo…"},
		{"ünïcödé", 4, "ünï…"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.n); got != tt.want {
			t.Fatalf("truncate(%q, %d): expected %q, got %q", tt.in, tt.n, tt.want, got)
		}
	}
}

func TestRenderBuffers(t *testing.T) {
	var buf bytes.Buffer
	renderBuffers(&buf, []service.Buffer{
		{Number: 1, Title: "vim main.go", AppID: "kitty", Workspace: 0, Active: true},
		{Number: 2, Title: "panel", AppID: "polybar", Workspace: -1},
	})
	out := buf.String()
	for _, want := range []string{"vim main.go", "kitty", "polybar", "all", "✓"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestRenderStatus(t *testing.T) {
	var buf bytes.Buffer
	secondary := service.MonitorState{Workspace: 1, Layout: "M", Function: "monocle", NMaster: 1, MFact: 0.5, Clients: 2}
	renderStatus(&buf, &ipc.StatusData{
		Snapshot: service.Snapshot{
			Primary:   service.MonitorState{Workspace: 0, Layout: "T", Function: "tile", NMaster: 1, MFact: 0.55, Clients: 3},
			Secondary: &secondary,
			Gaps:      monitor.Gaps{Inner: 4, Outer: 8},
			Monitors:  2,
		},
		UptimeSeconds: 90,
		DaemonRunning: true,
		PID:           4242,
	})
	out := buf.String()
	for _, want := range []string{"4242", "1m30s", "inner 4, outer 8", "tile", "monocle", "secondary", "0.55"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestFormatSource(t *testing.T) {
	tests := []struct {
		src  config.Source
		want string
	}{
		{config.Source{Kind: config.SourceDefault}, "default"},
		{config.Source{Kind: config.SourceDefault, Name: "inner_gap"}, "default:inner_gap"},
		{config.Source{Kind: config.SourceFile}, "file"},
		{config.Source{Kind: config.SourceFile, File: "/tmp/c.yaml"}, "file:/tmp/c.yaml"},
		{config.Source{Kind: config.SourceFile, File: "/tmp/c.yaml", Line: 3, Column: 1}, "file:/tmp/c.yaml:3:1"},
	}
	for _, tt := range tests {
		if got := formatSource(tt.src); got != tt.want {
			t.Fatalf("expected %q, got %q", tt.want, got)
		}
	}
}

func TestExplainDefaultValue(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	res, err := config.LoadWithSources("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	var buf bytes.Buffer
	if err := explain(&buf, res, "prefix_key"); err != nil {
		t.Fatalf("explain: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "path: prefix_key") || !strings.Contains(out, config.DefaultPrefixKey) {
		t.Fatalf("unexpected explain output:\n%s", out)
	}
	if !strings.Contains(out, "source: default") {
		t.Fatalf("expected default source, got:\n%s", out)
	}
}
