package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/abelbrown/cinescope/internal/config"
	"github.com/abelbrown/cinescope/internal/logging"
	"github.com/abelbrown/cinescope/internal/otel"
	"github.com/abelbrown/cinescope/internal/query"
	"github.com/abelbrown/cinescope/internal/tmdb"
	"github.com/abelbrown/cinescope/internal/trending"
)

// services holds everything a command needs, built from one Config.
type services struct {
	cfg        *config.Config
	events     *otel.Logger
	ring       *otel.RingBuffer
	eventsFile *os.File
	controller *query.Controller
	tracker    *trending.Tracker
}

// loadConfig loads configuration and applies command-line overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return cfg, nil
}

// openServices wires logging, events, the TMDB client and the trending
// tracker. Close must be called when done.
func openServices(cfg *config.Config) (*services, error) {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = log.InfoLevel
	}
	if err := logging.Init(cfg.DataDir, level); err != nil {
		return nil, err
	}

	svc := &services{cfg: cfg, ring: otel.NewRingBuffer(otel.DefaultRingSize)}

	f, err := os.OpenFile(cfg.EventsPath(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		logging.Warn("event log unavailable", "path", cfg.EventsPath(), "err", err)
		svc.events = otel.NewNullLogger()
	} else {
		svc.eventsFile = f
		svc.events = otel.NewLogger(f)
	}
	svc.events.SetRingBuffer(svc.ring)
	svc.events.Info(otel.KindStartup, "main", "cinescope starting")

	client := tmdb.NewClient(cfg.TMDB.APIKey, cfg.TMDB.Timeout, tmdb.WithBaseURL(cfg.TMDB.BaseURL))
	svc.controller = query.NewController(client,
		query.WithRequirePoster(cfg.Search.RequirePoster),
		query.WithEvents(svc.events),
	)

	store, err := openStore(cfg)
	if err != nil {
		svc.Close()
		return nil, err
	}
	svc.tracker = trending.NewTracker(store, svc.events)

	logging.Info("services ready", "store", cfg.Store.Kind, "debounce", cfg.Search.Debounce, "session", svc.events.SessionID())
	return svc, nil
}

func openStore(cfg *config.Config) (trending.Store, error) {
	switch cfg.Store.Kind {
	case config.StoreAppwrite:
		st, err := trending.NewAppwriteStore(trending.AppwriteConfig{
			Endpoint:     cfg.Appwrite.Endpoint,
			ProjectID:    cfg.Appwrite.ProjectID,
			APIKey:       cfg.Appwrite.APIKey,
			DatabaseID:   cfg.Appwrite.DatabaseID,
			CollectionID: cfg.Appwrite.CollectionID,
		})
		if err != nil {
			return nil, fmt.Errorf("open appwrite store: %w", err)
		}
		return st, nil
	default:
		if err := os.MkdirAll(filepath.Dir(cfg.Store.Path), 0755); err != nil {
			return nil, fmt.Errorf("create store directory: %w", err)
		}
		st, err := trending.OpenSQLite(cfg.Store.Path)
		if err != nil {
			return nil, fmt.Errorf("open trending database %s: %w", cfg.Store.Path, err)
		}
		return st, nil
	}
}

// Close flushes events and closes the store and log files.
func (s *services) Close() {
	if s.tracker != nil {
		if err := s.tracker.Close(); err != nil {
			logging.Warn("close trending store", "err", err)
		}
	}
	s.events.Info(otel.KindShutdown, "main", "cinescope exiting")
	s.events.Close()
	if s.eventsFile != nil {
		s.eventsFile.Close()
	}
	logging.Close()
}
