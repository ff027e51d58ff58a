package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/abelbrown/outfitter/internal/catalog"
	"github.com/abelbrown/outfitter/internal/logging"
	"github.com/abelbrown/outfitter/internal/otel"
	"github.com/abelbrown/outfitter/internal/session"
	"github.com/abelbrown/outfitter/internal/ui"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

var errNoTerminal = errors.New("the interactive UI needs a terminal; use 'outfitter search' for scripted use")

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func runTUI(cmd *cobra.Command, e *env) error {
	if !isTerminal(os.Stdin) || !isTerminal(os.Stdout) {
		return errNoTerminal
	}

	cfg := e.cfg
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}
	if err := logging.Init(cfg.DataDir, cfg.Logging.Level); err != nil {
		return err
	}
	defer logging.Close()

	obs, err := openEventLog(cfg.EventLogPath(), cfg.Logging.Disabled, cfg.Logging.RingSize)
	if err != nil {
		return err
	}
	defer closeEventLog(obs.Logger)

	client, err := e.client()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	obs.Logger.Emit(otel.Event{
		Level: otel.LevelInfo,
		Kind:  otel.KindStartup,
		Comp:  "main",
		Msg:   client.BaseURL(),
		Extra: map[string]any{"ordering": e.ordering.String(), "breaker": client.BreakerState()},
	})
	logging.Info("catalog client ready", "base_url", client.BaseURL(), "ordering", e.ordering)

	app := ui.NewApp(appConfig(ctx, client, e.ordering, cfg.UI.FallbackImage, cfg.UI.ProbeImages, obs))
	program := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))

	_, err = program.Run()
	obs.Logger.Info(otel.KindShutdown, "main", "")
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		obs.Logger.Error(otel.KindError, "main", err)
		logging.Error("program exited", "err", err)
		return err
	}
	return nil
}

// openEventLog opens the JSONL event log with a ring buffer for the debug
// overlay. When disabled, events only reach the ring.
func openEventLog(path string, disabled bool, ringSize int) (ui.ObsConfig, error) {
	ring := otel.NewRingBuffer(ringSize)
	opts := otel.Options{Ring: ring}

	if disabled {
		return ui.ObsConfig{Logger: otel.Discard(opts), Ring: ring}, nil
	}
	l, err := otel.Open(path, opts)
	if err != nil {
		return ui.ObsConfig{}, err
	}
	return ui.ObsConfig{Logger: l, Ring: ring}, nil
}

func closeEventLog(l *otel.Logger) {
	if err := l.Close(); err != nil {
		logging.Error("close event log", "err", err)
	}
	if n := l.Dropped(); n > 0 {
		logging.Warn("events dropped", "count", n, "session", l.SessionID())
	}
}

// appConfig binds the UI's command constructors to the catalog client.
func appConfig(ctx context.Context, client *catalog.Client, ordering session.Ordering, fallback string, probe bool, obs ui.ObsConfig) ui.AppConfig {
	cfg := ui.AppConfig{
		Search: func(query string, t session.Ticket) tea.Cmd {
			return func() tea.Msg {
				start := time.Now()
				products, err := client.Search(ctx, query)
				if err != nil {
					logging.Warn("search failed", "seq", t.Seq, "err", err)
				}
				return ui.SearchDone{Ticket: t, Products: products, Dur: time.Since(start), Err: err}
			}
		},
		Recommend: func(id catalog.ProductID, t session.Ticket) tea.Cmd {
			return func() tea.Msg {
				start := time.Now()
				products, err := client.Recommend(ctx, id)
				if err != nil {
					logging.Warn("recommend failed", "seq", t.Seq, "id", id, "err", err)
				}
				return ui.RecommendDone{Ticket: t, Products: products, Dur: time.Since(start), Err: err}
			}
		},
		Ordering:      ordering,
		FallbackImage: fallback,
		Obs:           obs,
	}
	if probe {
		cfg.ProbeImage = func(locator string) tea.Cmd {
			return func() tea.Msg {
				err := client.ProbeImage(ctx, locator)
				if err != nil {
					logging.Debug("image unavailable", "locator", locator, "err", err)
				}
				return ui.ImageProbed{Locator: locator, Err: err}
			}
		}
	}
	return cfg
}
