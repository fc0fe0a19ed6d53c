package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/marcus/modeldeck/internal/adapter"
	_ "github.com/marcus/modeldeck/internal/adapter/caption"
	_ "github.com/marcus/modeldeck/internal/adapter/imageclass"
	_ "github.com/marcus/modeldeck/internal/adapter/sentiment"
	_ "github.com/marcus/modeldeck/internal/adapter/textimage"
	_ "github.com/marcus/modeldeck/internal/adapter/textvideo"
	"github.com/marcus/modeldeck/internal/app"
	"github.com/marcus/modeldeck/internal/config"
	"github.com/marcus/modeldeck/internal/coordinator"
	"github.com/marcus/modeldeck/internal/history"
	"github.com/marcus/modeldeck/internal/keymap"
	"github.com/marcus/modeldeck/internal/metrics"
	"github.com/marcus/modeldeck/internal/state"
	"github.com/marcus/modeldeck/internal/styles"
	"github.com/marcus/modeldeck/internal/version"
)

// Version is set at build time via ldflags
var Version = ""

// options holds the persistent flags.
type options struct {
	configPath  string
	debug       bool
	metricsAddr string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "modeldeck: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "modeldeck",
		Short:         "Load, run and compare local model adapters from the terminal",
		Version:       version.Effective(Version),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(opts)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "", "path to config file (.json, .yaml or .toml)")
	pf.BoolVar(&opts.debug, "debug", false, "enable debug logging")
	pf.StringVar(&opts.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address (overrides config)")

	root.AddCommand(
		&cobra.Command{
			Use:   "tui",
			Short: "Start the interactive client (default)",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runTUI(opts)
			},
		},
		newListCmd(opts),
		newRunCmd(opts),
		newHistoryCmd(opts),
	)
	return root
}

// env is everything a command needs, built from config and flags.
type env struct {
	cfg      *config.Config
	log      *slog.Logger
	registry *adapter.Registry
	recorder *metrics.Recorder
	metrics  *metrics.Server
	history  *history.Store
	closers  []io.Closer
}

// setup loads config and builds the adapters, metrics and history store.
// Logs go to logOut.
func setup(opts *options, logOut io.Writer) (*env, error) {
	logLevel := slog.LevelInfo
	if opts.debug {
		logLevel = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(logOut, &slog.HandlerOptions{
		Level: logLevel,
	}))

	cfg, err := config.LoadFrom(opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	reg, err := adapter.NewRegistryFromFactories(adapter.Options{
		ArtifactDir: cfg.Adapters.ArtifactDir,
		LexiconPath: cfg.Adapters.LexiconPath,
		Logger:      log,
	}, cfg.Adapters.Enabled)
	if err != nil {
		return nil, fmt.Errorf("build adapters: %w", err)
	}
	e := &env{cfg: cfg, log: log, registry: reg}

	addr := opts.metricsAddr
	if addr == "" {
		addr = cfg.Metrics.Addr
	}
	if addr != "" {
		promReg := prometheus.NewRegistry()
		rec, err := metrics.NewRecorder(promReg)
		if err != nil {
			return nil, err
		}
		srv, err := metrics.Start(addr, promReg, log)
		if err != nil {
			return nil, err
		}
		e.recorder, e.metrics = rec, srv
	}

	if cfg.History.Enabled {
		store, err := history.Open(cfg.History.DBPath)
		if err != nil {
			// history is optional; keep going without it
			log.Warn("history disabled", "path", cfg.History.DBPath, "err", err)
		} else {
			e.history = store
			e.closers = append(e.closers, store)
		}
	}
	return e, nil
}

// coordinatorOptions returns the options shared by the TUI and headless runs.
func (e *env) coordinatorOptions() []coordinator.Option {
	opts := []coordinator.Option{
		coordinator.WithPollInterval(e.cfg.Coordinator.PollInterval),
		coordinator.WithLogger(e.log),
	}
	if e.recorder != nil {
		opts = append(opts, coordinator.WithRecorder(e.recorder))
	}
	return opts
}

// Close releases the history store and stops the metrics server.
func (e *env) Close() {
	if e.metrics != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := e.metrics.Shutdown(ctx); err != nil {
			e.log.Warn("metrics shutdown", "err", err)
		}
	}
	for _, c := range e.closers {
		if err := c.Close(); err != nil {
			e.log.Warn("close", "err", err)
		}
	}
}

// openLogFile opens ~/.config/modeldeck/modeldeck.log for appending. The
// TUI owns the terminal, so it cannot log to stderr.
func openLogFile() (*os.File, error) {
	dir := config.Dir()
	if dir == "" {
		return nil, fmt.Errorf("no config directory")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return os.OpenFile(filepath.Join(dir, "modeldeck.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
}

func runTUI(opts *options) error {
	var logOut io.Writer = io.Discard
	if f, err := openLogFile(); err == nil {
		defer func() { _ = f.Close() }()
		logOut = f
	}

	e, err := setup(opts, logOut)
	if err != nil {
		return err
	}
	defer e.Close()

	if err := styles.ApplyThemeWithOverrides(e.cfg.UI.Theme.Name, e.cfg.UI.Theme.Overrides); err != nil {
		e.log.Warn("theme overrides", "err", err)
	}

	// Load persistent state (ignore errors - state is optional)
	if err := state.Init(); err != nil {
		e.log.Warn("load state", "err", err)
	}

	km := keymap.NewRegistry()
	keymap.RegisterDefaults(km)
	for key, cmdID := range e.cfg.Keymap.Overrides {
		km.SetUserOverride(key, cmdID)
	}

	configPath := opts.configPath
	if configPath == "" {
		configPath = config.ConfigPath()
	}
	watcher, err := config.Watch(configPath, 200*time.Millisecond)
	if err != nil {
		e.log.Warn("config watch disabled", "path", configPath, "err", err)
		watcher = nil
	} else {
		defer func() { _ = watcher.Close() }()
	}

	model := app.New(app.Options{
		Config:     e.cfg,
		ConfigPath: configPath,
		Registry:   e.registry,
		Keymap:     km,
		History:    e.history,
		Watcher:    watcher,
		Recorder:   e.recorder,
		Logger:     e.log,
		Version:    version.Effective(Version),
	})
	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run application: %w", err)
	}
	return nil
}
