package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/1broseidon/tilevim/internal/command"
	"github.com/1broseidon/tilevim/internal/ipc"
	"github.com/1broseidon/tilevim/internal/prompt"
	"github.com/1broseidon/tilevim/internal/service"
)

var errCommandFailed = errors.New("command failed")

type executor interface {
	Execute(text string) ([]command.Message, error)
}

var execCmd = &cobra.Command{
	Use:   "exec [command line]",
	Short: "Run a command line in the daemon",
	Long: `Runs a command line as if typed in the prompt, e.g. 'tilevim exec layout M'.

Without arguments, one command line is read per line from stdin.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newClient()
		var failed bool
		if len(args) > 0 {
			msgs, err := client.Execute(strings.Join(args, " "))
			if err != nil {
				return err
			}
			failed = printMessages(cmd.OutOrStdout(), cmd.ErrOrStderr(), msgs)
		} else {
			if term.IsTerminal(int(os.Stdin.Fd())) {
				return fmt.Errorf("exec requires a command line or piped input")
			}
			var err error
			failed, err = execLines(client, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
		}
		if failed {
			return errCommandFailed
		}
		return nil
	},
}

// execLines runs every non-empty line of r. Lines starting with # are
// skipped.
func execLines(e executor, r io.Reader, out, errOut io.Writer) (bool, error) {
	failed := false
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		msgs, err := e.Execute(line)
		if err != nil {
			return failed, err
		}
		if printMessages(out, errOut, msgs) {
			failed = true
		}
	}
	return failed, scanner.Err()
}

var keyCmd = &cobra.Command{
	Use:   "key <chord>",
	Short: "Run the action bound to a key chord",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		msgs, err := newClient().Key(args[0])
		if err != nil {
			return err
		}
		if printMessages(cmd.OutOrStdout(), cmd.ErrOrStderr(), msgs) {
			return errCommandFailed
		}
		return nil
	},
}

var promptCmd = &cobra.Command{
	Use:   "prompt",
	Short: "Open the interactive command line",
	Long: `Opens the command line. Tab and Shift-Tab cycle completions, Up and Down
walk the history, Enter runs the line and Esc closes the prompt.

The daemon opens it in a terminal window when the prefix key is pressed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newClient()
		if err := client.Ping(); err != nil {
			return err
		}
		return prompt.Run(client)
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show daemon status and the active layouts",
	RunE: func(cmd *cobra.Command, args []string) error {
		status, err := newClient().GetStatus()
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(status)
		}
		renderStatus(cmd.OutOrStdout(), status)
		return nil
	},
}

func renderStatus(w io.Writer, status *ipc.StatusData) {
	successColor.Fprintln(w, "✓ tilevim daemon running")
	keyColor.Fprint(w, "PID: ")
	fmt.Fprintln(w, status.PID)
	keyColor.Fprint(w, "Uptime: ")
	fmt.Fprintln(w, (time.Duration(status.UptimeSeconds) * time.Second).String())
	keyColor.Fprint(w, "Gaps: ")
	fmt.Fprintf(w, "inner %d, outer %d\n", status.Gaps.Inner, status.Gaps.Outer)
	keyColor.Fprint(w, "Buffers: ")
	fmt.Fprintln(w, len(status.Buffers))
	fmt.Fprintln(w)

	table := tablewriter.NewWriter(w)
	table.Header("Monitor", "Workspace", "Layout", "NMaster", "MFact", "Clients")
	appendMonitor(table, "primary", status.Primary)
	if status.Secondary != nil {
		appendMonitor(table, "secondary", *status.Secondary)
	}
	table.Render()
}

func appendMonitor(table *tablewriter.Table, name string, m service.MonitorState) {
	table.Append(
		name,
		strconv.Itoa(m.Workspace+1),
		m.Function,
		strconv.Itoa(m.NMaster),
		strconv.FormatFloat(m.MFact, 'f', 2, 64),
		strconv.Itoa(m.Clients),
	)
}

var buffersCmd = &cobra.Command{
	Use:     "buffers",
	Aliases: []string{"ls"},
	Short:   "List managed windows",
	RunE: func(cmd *cobra.Command, args []string) error {
		buffers, err := newClient().Buffers()
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(buffers)
		}
		renderBuffers(cmd.OutOrStdout(), buffers)
		return nil
	},
}

func renderBuffers(w io.Writer, buffers []service.Buffer) {
	table := tablewriter.NewWriter(w)
	table.Header("#", "Title", "App", "Workspace", "Active", "Minimized")
	for _, b := range buffers {
		active := ""
		if b.Active {
			active = "✓"
		}
		minimized := ""
		if b.Minimized {
			minimized = "✓"
		}
		workspace := "all"
		if b.Workspace >= 0 {
			workspace = strconv.Itoa(b.Workspace + 1)
		}
		table.Append(
			strconv.Itoa(b.Number),
			truncate(b.Title, 40),
			truncate(b.AppID, 20),
			workspace,
			active,
			minimized,
		)
	}
	table.Render()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

var reloadCmd = &cobra.Command{
	Use:   "reload",
	Short: "Reload the configuration and re-apply layouts",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := newClient().Reload(); err != nil {
			return err
		}
		successColor.Fprintln(cmd.OutOrStdout(), "✓ Config reloaded")
		return nil
	},
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print the diagnostic report",
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := newClient().Report()
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(ipc.ReportData{Text: text})
		}
		fmt.Fprint(cmd.OutOrStdout(), text)
		if !strings.HasSuffix(text, "\n") {
			fmt.Fprintln(cmd.OutOrStdout())
		}
		return nil
	},
}
