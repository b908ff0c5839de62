package launcher

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"

	"github.com/1broseidon/tilevim/internal/service"
)

var _ service.Launcher = (*Launcher)(nil)

func writeEntry(t *testing.T, dir, file, body string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, file), []byte(body), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestParseDesktopEntry(t *testing.T) {
	src := `# comment
[Desktop Entry]
Type=Application
Name=Firefox
Exec=firefox %u

[Desktop Action new-window]
Name=New Window
Exec=firefox --new-window %u
`
	app, ok := parseDesktopEntry(strings.NewReader(src))
	if !ok {
		t.Fatalf("expected entry to parse")
	}
	if app.Name != "Firefox" || app.Exec != "firefox %u" {
		t.Fatalf("expected main group only, got %+v", app)
	}

	for _, src := range []string{
		"[Desktop Entry]\nName=Hidden\nExec=x\nNoDisplay=true\n",
		"[Desktop Entry]\nName=Link\nExec=x\nType=Link\n",
		"[Desktop Entry]\nName=NoExec\n",
	} {
		if _, ok := parseDesktopEntry(strings.NewReader(src)); ok {
			t.Fatalf("expected entry to be rejected: %q", src)
		}
	}
}

func TestExecArgs(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"gimp %U", []string{"gimp"}},
		{`sh -c "echo \"hi\" there"`, []string{"sh", "-c", `echo "hi" there`}},
		{"app --rate=50%% %f", []string{"app", "--rate=50%"}},
		{`  spaced   out  `, []string{"spaced", "out"}},
		{`empty ""`, []string{"empty", ""}},
	}
	for _, tc := range cases {
		if diff := cmp.Diff(tc.want, execArgs(tc.in)); diff != "" {
			t.Fatalf("execArgs(%q) mismatch (-want +got):\n%s", tc.in, diff)
		}
	}
}

func TestScanAndApplications(t *testing.T) {
	root := t.TempDir()
	user := filepath.Join(root, "user")
	system := filepath.Join(root, "system")
	writeEntry(t, user, "editor.desktop", "[Desktop Entry]\nName=Gedit Custom\nExec=gedit --new\n")
	writeEntry(t, system, "editor.desktop", "[Desktop Entry]\nName=Gedit\nExec=gedit\n")
	writeEntry(t, system, "term.desktop", "[Desktop Entry]\nName=gnome-terminal\nExec=gnome-terminal\n")
	writeEntry(t, system, "files.desktop", "[Desktop Entry]\nName=Files\nExec=nautilus\n")
	writeEntry(t, system, "notes.txt", "[Desktop Entry]\nName=Notes\nExec=notes\n")

	l := NewWithDirs(zerolog.Nop(), []string{user, filepath.Join(root, "missing"), system})
	if err := l.Scan(); err != nil {
		t.Fatalf("Scan: %v", err)
	}

	if diff := cmp.Diff([]string{"Files", "Gedit Custom", "gnome-terminal"}, l.Applications("")); diff != "" {
		t.Fatalf("applications mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Gedit Custom", "gnome-terminal"}, l.Applications(" g")); diff != "" {
		t.Fatalf("prefix mismatch (-want +got):\n%s", diff)
	}
	if got := l.Applications("x"); len(got) != 0 {
		t.Fatalf("expected no matches, got %v", got)
	}
}

func TestExecutables(t *testing.T) {
	a := t.TempDir()
	b := t.TempDir()
	for _, f := range []struct {
		dir, name string
		mode      os.FileMode
	}{
		{a, "tilevim", 0755},
		{a, "tiled", 0644},
		{b, "tilevim", 0755},
		{b, "tiler", 0700},
		{b, "other", 0755},
	} {
		if err := os.WriteFile(filepath.Join(f.dir, f.name), []byte("#!/bin/sh\n"), f.mode); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	t.Setenv("PATH", a+string(os.PathListSeparator)+b)

	l := NewWithDirs(zerolog.Nop(), nil)
	if diff := cmp.Diff([]string{"tiler", "tilevim"}, l.Executables("til")); diff != "" {
		t.Fatalf("executables mismatch (-want +got):\n%s", diff)
	}
	if got := l.Executables("til foo"); got != nil {
		t.Fatalf("expected no completion past the first word, got %v", got)
	}
}

func TestLaunchUnknown(t *testing.T) {
	t.Setenv("PATH", t.TempDir())
	l := NewWithDirs(zerolog.Nop(), nil)
	err := l.Launch("definitely-not-installed")
	if err == nil || !strings.Contains(err.Error(), "no application named") {
		t.Fatalf("expected unknown application error, got %v", err)
	}
}

func TestLaunchEmptyExec(t *testing.T) {
	dir := t.TempDir()
	writeEntry(t, dir, "x.desktop", "[Desktop Entry]\nName=Broken\nExec=%U\n")
	l := NewWithDirs(zerolog.Nop(), []string{dir})
	if err := l.Scan(); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if err := l.Launch("broken"); err == nil {
		t.Fatalf("expected error for empty Exec")
	}
}

func TestShellStartsProcess(t *testing.T) {
	l := NewWithDirs(zerolog.Nop(), nil)
	l.shell = "/bin/sh"
	if err := l.Shell("true"); err != nil {
		t.Fatalf("Shell: %v", err)
	}
	l.shell = filepath.Join(t.TempDir(), "no-such-shell")
	if err := l.Shell("true"); err == nil {
		t.Fatalf("expected error for missing shell")
	}
}
