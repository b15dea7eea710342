package main

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/abelbrown/cinescope/internal/logging"
	"github.com/abelbrown/cinescope/internal/otel"
	"github.com/abelbrown/cinescope/internal/tmdb"
	"github.com/abelbrown/cinescope/internal/ui"
)

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.RequireTMDB(); err != nil {
		return err
	}

	svc, err := openServices(cfg)
	if err != nil {
		return err
	}
	defer svc.Close()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	app := ui.NewApp(ui.AppConfig{
		FetchMovies: func(seq uint64, term string) tea.Cmd {
			return func() tea.Msg {
				return ui.MoviesFetched{Result: svc.controller.Fetch(ctx, seq, term)}
			}
		},
		// Fire and forget: the tracker logs failures and the UI ignores them.
		RecordSearch: func(term string, exemplar tmdb.Movie) tea.Cmd {
			return func() tea.Msg {
				e, err := svc.tracker.RecordSearch(ctx, term, exemplar)
				return ui.SearchRecorded{Entry: e, Err: err}
			}
		},
		LoadTrending: func() tea.Cmd {
			return func() tea.Msg {
				entries, err := svc.tracker.ListTop(ctx, cfg.Search.TrendingLimit)
				return ui.TrendingLoaded{Entries: entries, Err: err}
			}
		},
		Debounce: cfg.Search.Debounce,
		Ring:     svc.ring,
		Events:   svc.events,
	})

	program := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil {
		logging.Error("program exited with error", "err", err)
		svc.events.Error(otel.KindError, "main", err)
		return err
	}
	return nil
}
