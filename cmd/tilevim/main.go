package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/1broseidon/tilevim/internal/command"
	"github.com/1broseidon/tilevim/internal/ipc"
)

var (
	socketPath string
	jsonOutput bool
	noColor    bool

	successColor = color.New(color.FgGreen, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
	keyColor     = color.New(color.FgYellow)
)

var rootCmd = &cobra.Command{
	Use:   "tilevim",
	Short: "Keyboard-driven tiling for X11 window managers",
	Long: `tilevim tiles the windows of an EWMH window manager in dwm-like layouts
and drives them from global key chords and a vim-like command line.

Run 'tilevim daemon' once per session, then bind your keys in
~/.config/tilevim/config.yaml.`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if noColor {
			color.NoColor = true
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&socketPath, "socket", "", "IPC socket path (default: $XDG_RUNTIME_DIR/tilevim.sock)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(daemonCmd)
	rootCmd.AddCommand(execCmd)
	rootCmd.AddCommand(keyCmd)
	rootCmd.AddCommand(promptCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(buffersCmd)
	rootCmd.AddCommand(reloadCmd)
	rootCmd.AddCommand(reportCmd)

	rootCmd.AddCommand(mcpCmd)
	mcpCmd.AddCommand(mcpServeCmd)

	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configValidateCmd)
	configCmd.AddCommand(configPrintCmd)
	configCmd.AddCommand(configExplainCmd)
	configCmd.AddCommand(configPathCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		// Failed commands already printed their messages.
		if !errors.Is(err, errCommandFailed) {
			printError(err.Error())
		}
		os.Exit(1)
	}
}

func newClient() *ipc.Client {
	if socketPath != "" {
		return ipc.NewClientAt(socketPath)
	}
	return ipc.NewClient()
}

func printJSON(data interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

func printError(msg string) {
	if noColor {
		fmt.Fprintln(os.Stderr, "Error:", msg)
	} else {
		errorColor.Fprint(os.Stderr, "✗ Error: ")
		fmt.Fprintln(os.Stderr, msg)
	}
}

// printMessages writes info messages to out and error messages to errOut.
// It reports whether any error was printed.
func printMessages(out, errOut io.Writer, msgs []command.Message) bool {
	failed := false
	for _, m := range msgs {
		if m.Level == command.LevelError {
			failed = true
			errorColor.Fprintln(errOut, m.Text)
			continue
		}
		fmt.Fprintln(out, m.Text)
	}
	return failed
}
