package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"slices"
	"sync"

	"github.com/spf13/cobra"

	"github.com/hookkit/probe"
	"github.com/hookkit/probe/internal/config"
	"github.com/hookkit/probe/journal"
	"github.com/hookkit/probe/otelrecorder"
)

// app is the state shared by every command of one invocation.
type app struct {
	cfg     config.Config
	logger  *slog.Logger
	prober  *probe.Prober
	history *probe.History
	out     *output

	mu       sync.Mutex
	journal  *journal.Journal
	shutdown func(context.Context) error
}

var session *app

func setup(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()
	configFlag, _ := flags.GetString("config")
	colorFlag, _ := flags.GetString("color")
	verbose, _ := flags.GetBool("verbose")
	journalFlag, _ := flags.GetString("journal")

	cfg, err := config.Load(config.Path(configFlag), configFlag != "")
	if err != nil {
		return err
	}
	if colorFlag != "" {
		cfg.Color = colorFlag
	}
	if journalFlag != "" {
		cfg.Journal = journalFlag
	}
	cfg.Verbose = cfg.Verbose || verbose

	level, err := config.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	if cfg.Verbose {
		level = slog.LevelDebug
	}

	ctx := cmd.Context()
	tel, err := setupTelemetry(ctx)
	if err != nil {
		return err
	}

	var handler slog.Handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	if tel.logs != nil {
		handler = teeHandler{handler, tel.logs}
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)

	a := &app{
		cfg:      cfg,
		logger:   logger,
		history:  probe.NewHistory(cfg.HistorySize),
		out:      newOutput(cmd.OutOrStdout(), cfg.Color),
		shutdown: tel.shutdown,
	}
	// the CLI always keeps successes so commands can print every probe
	a.history.SetVerbose(true)

	dir := probe.NewDirectory()
	if err := dir.Provide(probe.RecorderKey, a.buildRecorder(tel.enabled)); err != nil {
		return err
	}

	a.prober = probe.New(
		probe.WithLogger(logger),
		probe.WithDirectory(dir),
		probe.WithPackages(&probe.BuildInfoPackages{}),
		probe.WithSettings(settingsChain{
			probe.EnvSettings{Prefix: cfg.SettingsPrefix},
			probe.MapSettings(cfg.Settings),
		}),
		probe.WithFeatureDefault(cfg.FeatureDefault),
		probe.WithDebugFlags(slices.Sorted(maps.Keys(cfg.Settings))...),
	)

	session = a
	return nil
}

// buildRecorder returns the provider of the prober's recorder. The journal is
// opened on the first probe; when it cannot be opened the provider fails and
// is retried on the next probe.
func (a *app) buildRecorder(telemetry bool) func() (any, error) {
	return func() (any, error) {
		recorders := []probe.Recorder{a.history}
		if a.cfg.Verbose {
			recorders = append(recorders, probe.NewLogRecorder(a.logger))
		}

		if telemetry {
			r, err := otelrecorder.New()
			if err != nil {
				return nil, fmt.Errorf("otel recorder: %w", err)
			}
			recorders = append(recorders, r)
		}

		if a.cfg.Journal != "" {
			j, err := journal.Open(a.cfg.Journal)
			if err != nil {
				return nil, fmt.Errorf("open journal: %w", err)
			}
			a.mu.Lock()
			a.journal = j
			a.mu.Unlock()
			recorders = append(recorders, j)
		}

		return probe.Multi(recorders...), nil
	}
}

func teardown(ctx context.Context) error {
	a := session
	if a == nil {
		return nil
	}
	session = nil

	var errs []error
	a.mu.Lock()
	if a.journal != nil {
		errs = append(errs, a.journal.Close())
	}
	a.mu.Unlock()
	if a.shutdown != nil {
		errs = append(errs, a.shutdown(ctx))
	}
	return errors.Join(errs...)
}

// settingsChain reads a setting from the first reader that has it.
type settingsChain []probe.SettingsReader

func (c settingsChain) Int(name string) (int64, error) {
	for _, r := range c {
		v, err := r.Int(name)
		if errors.Is(err, probe.ErrSettingNotFound) {
			continue
		}
		return v, err
	}
	return 0, probe.ErrSettingNotFound
}
