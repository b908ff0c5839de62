package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/1broseidon/tilevim/internal/config"
	"github.com/1broseidon/tilevim/internal/daemon"
	"github.com/1broseidon/tilevim/internal/hotkeys"
	"github.com/1broseidon/tilevim/internal/ipc"
	"github.com/1broseidon/tilevim/internal/launcher"
	"github.com/1broseidon/tilevim/internal/logging"
	"github.com/1broseidon/tilevim/internal/pipes"
	"github.com/1broseidon/tilevim/internal/platform"
	"github.com/1broseidon/tilevim/internal/service"
	"github.com/1broseidon/tilevim/internal/workspace"
)

var (
	daemonConfigPath string
	daemonDisplay    string
	daemonVerbose    bool
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run the tiling daemon",
	Long: `Connects to the X display, grabs the configured key chords and serves
the command line over a unix socket until interrupted.

SIGHUP, 'tilevim reload' and saving the config file reload the configuration.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDaemon()
	},
}

func init() {
	daemonCmd.Flags().StringVar(&daemonConfigPath, "config", "", "Config file path (default: ~/.config/tilevim/config.yaml)")
	daemonCmd.Flags().StringVar(&daemonDisplay, "display", "", "X display (default: $DISPLAY)")
	daemonCmd.Flags().BoolVarP(&daemonVerbose, "verbose", "v", false, "Mirror the log to stderr")
}

func runDaemon() error {
	res, err := config.LoadWithSources(daemonConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	cfg := res.Config

	logger, logCloser, err := logging.New(logging.Options{
		Level:     cfg.Logging.Level,
		File:      cfg.Logging.File,
		MaxSizeMB: cfg.Logging.MaxSizeMB,
		MaxFiles:  cfg.Logging.MaxFiles,
		Console:   daemonVerbose || term.IsTerminal(int(os.Stderr.Fd())),
	})
	if err != nil {
		return fmt.Errorf("failed to open log: %w", err)
	}
	defer logCloser.Close()
	logger.Info().
		Str("config", res.Path).
		Str("prefix_key", cfg.PrefixKey).
		Int("inner_gap", cfg.InnerGap).
		Int("outer_gap", cfg.OuterGap).
		Msg("configuration loaded")

	backend, err := platform.NewLinuxBackendFromDisplay(daemonDisplay)
	if err != nil {
		return fmt.Errorf("failed to connect to display: %w", err)
	}
	defer backend.Disconnect()

	storeDir, err := workspace.DefaultDir()
	if err != nil {
		return err
	}
	apps := launcher.New(logger)
	if err := apps.Scan(); err != nil {
		logger.Warn().Err(err).Msg("some desktop entries could not be read")
	}

	var writer *pipes.Writer
	publish := func(service.Snapshot) {}
	if cfg.Pipes.Enabled {
		writer = pipes.NewWriter(cfg.Pipes.Dir, logger)
		publish = writer.Publish
	}

	d, err := daemon.New(daemon.Options{
		ConfigPath: res.Path,
		Config:     cfg,
		Backend:    backend,
		Store:      workspace.NewStore(storeDir),
		Launcher:   apps,
		Keys:       hotkeys.NewHandler(backend, logger),
		Logger:     logger,
		SelfPID:    os.Getpid(),
		Publish:    publish,
		OpenPrompt: func() error { return openPrompt(apps) },
	})
	if err != nil {
		return err
	}

	var server *ipc.Server
	if socketPath != "" {
		server = ipc.NewServerAt(socketPath, d, logger)
	} else if server, err = ipc.NewServer(d, logger); err != nil {
		return err
	}
	if err := server.Start(); err != nil {
		return fmt.Errorf("failed to start IPC server: %w", err)
	}
	defer server.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if writer != nil {
		go func() {
			if err := writer.Run(ctx); err != nil {
				logger.Error().Err(err).Msg("layout pipes disabled")
			}
		}()
	}

	reloadCh := make(chan string, 1)
	go func() {
		if err := config.Watch(ctx, res.Path, logger, reloadCh); err != nil {
			logger.Warn().Err(err).Msg("config watcher disabled")
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigCh)
	go handleSignals(ctx, cancel, backend, d, sigCh, reloadCh, logger)

	daemonDone := make(chan error, 1)
	go func() { daemonDone <- d.Run(ctx) }()

	logger.Info().Int("pid", os.Getpid()).Str("socket", server.SocketPath()).Msg("tilevim daemon started")
	backend.EventLoop()

	cancel()
	if err := <-daemonDone; err != nil {
		logger.Warn().Err(err).Msg("event loop ended early")
	}
	logger.Info().Msg("tilevim daemon stopped")
	return nil
}

func handleSignals(ctx context.Context, cancel context.CancelFunc, backend *platform.LinuxBackend, d *daemon.Daemon, sigCh <-chan os.Signal, reloadCh chan string, logger zerolog.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case sig := <-sigCh:
			if sig == syscall.SIGHUP {
				reload(d, "SIGHUP", logger)
				continue
			}
			logger.Info().Str("signal", sig.String()).Msg("shutting down")
			cancel()
			backend.StopEventLoop()
			return
		case reason := <-reloadCh:
			reload(d, reason, logger)
		}
	}
}

func reload(d *daemon.Daemon, reason string, logger zerolog.Logger) {
	logger.Info().Str("reason", reason).Msg("reloading config")
	if err := d.Reload(); err != nil {
		logger.Error().Err(err).Msg("config reload failed")
	}
}

// openPrompt shows 'tilevim prompt' in a new terminal window.
func openPrompt(apps *launcher.Launcher) error {
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to find executable: %w", err)
	}
	argv := []string{exe}
	if socketPath != "" {
		argv = append(argv, "--socket", socketPath)
	}
	return apps.Terminal(append(argv, "prompt")...)
}
