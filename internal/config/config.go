// Package config loads CineScope settings from defaults, an optional YAML
// file and the environment, in that order of precedence (env wins).
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// ConfigPathEnvVar overrides the config file search.
const ConfigPathEnvVar = "CINESCOPE_CONFIG"

// Store kinds.
const (
	StoreSQLite   = "sqlite"
	StoreAppwrite = "appwrite"
)

// Config is the full application configuration.
type Config struct {
	TMDB     TMDBConfig     `koanf:"tmdb"`
	Store    StoreConfig    `koanf:"store"`
	Appwrite AppwriteConfig `koanf:"appwrite"`
	Search   SearchConfig   `koanf:"search"`
	DataDir  string         `koanf:"data_dir"`  // logs, events and the sqlite file live here
	LogLevel string         `koanf:"log_level"` // debug, info, warn, error
}

// TMDBConfig configures the movie metadata API.
type TMDBConfig struct {
	APIKey  string        `koanf:"api_key"`
	BaseURL string        `koanf:"base_url"`
	Timeout time.Duration `koanf:"timeout"`
}

// StoreConfig selects the trending store.
type StoreConfig struct {
	Kind string `koanf:"kind"`
	Path string `koanf:"path"` // sqlite file; defaults to <data_dir>/cinescope.db
}

// AppwriteConfig locates the hosted trending collection.
type AppwriteConfig struct {
	Endpoint     string `koanf:"endpoint"`
	ProjectID    string `koanf:"project_id"`
	APIKey       string `koanf:"api_key"`
	DatabaseID   string `koanf:"database_id"`
	CollectionID string `koanf:"collection_id"`
}

// SearchConfig tunes the query loop.
type SearchConfig struct {
	Debounce      time.Duration `koanf:"debounce"`
	TrendingLimit int           `koanf:"trending_limit"`
	RequirePoster bool          `koanf:"require_poster"`
}

func defaultConfig() *Config {
	return &Config{
		TMDB: TMDBConfig{
			BaseURL: "https://api.themoviedb.org/3",
			Timeout: 15 * time.Second,
		},
		Store: StoreConfig{
			Kind: StoreSQLite,
		},
		Appwrite: AppwriteConfig{
			Endpoint: "https://cloud.appwrite.io/v1",
		},
		Search: SearchConfig{
			Debounce:      500 * time.Millisecond,
			TrendingLimit: 8,
			RequirePoster: true,
		},
		DataDir:  DefaultDataDir(),
		LogLevel: "info",
	}
}

// DefaultDataDir is ~/.cinescope, or ./.cinescope without a home directory.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".cinescope"
	}
	return filepath.Join(home, ".cinescope")
}

// configPaths lists config files in search order. The first that exists wins.
func configPaths() []string {
	return []string{
		"cinescope.yaml",
		"cinescope.yml",
		filepath.Join(DefaultDataDir(), "config.yaml"),
	}
}

// Load layers defaults, the config file and environment variables, then
// validates the result. path overrides the file search when non-empty.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path == "" {
		path = findConfigFile()
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	cfg.TMDB.APIKey = strings.TrimSpace(cfg.TMDB.APIKey)
	cfg.Store.Kind = strings.ToLower(strings.TrimSpace(cfg.Store.Kind))
	if cfg.Store.Path == "" {
		cfg.Store.Path = filepath.Join(cfg.DataDir, "cinescope.db")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range configPaths() {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// envMappings maps lowercased environment variable names to config paths.
// Variables not listed are ignored.
var envMappings = map[string]string{
	"tmdb_api_key":  "tmdb.api_key",
	"tmdb_base_url": "tmdb.base_url",
	"tmdb_timeout":  "tmdb.timeout",

	"appwrite_endpoint":      "appwrite.endpoint",
	"appwrite_project_id":    "appwrite.project_id",
	"appwrite_api_key":       "appwrite.api_key",
	"appwrite_database_id":   "appwrite.database_id",
	"appwrite_collection_id": "appwrite.collection_id",

	"cinescope_store":          "store.kind",
	"cinescope_db_path":        "store.path",
	"cinescope_debounce":       "search.debounce",
	"cinescope_trending_limit": "search.trending_limit",
	"cinescope_require_poster": "search.require_poster",
	"cinescope_data_dir":       "data_dir",
	"cinescope_log_level":      "log_level",
}

func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}

// Validate checks settings every command needs. The TMDB key is checked
// separately by RequireTMDB since not every command calls TMDB.
func (c *Config) Validate() error {
	var errs []error

	switch c.Store.Kind {
	case StoreSQLite:
		if c.Store.Path == "" {
			errs = append(errs, errors.New("store.path is required for the sqlite store"))
		}
	case StoreAppwrite:
		if c.Appwrite.Endpoint == "" {
			errs = append(errs, errors.New("APPWRITE_ENDPOINT is required for the appwrite store"))
		}
		if c.Appwrite.ProjectID == "" {
			errs = append(errs, errors.New("APPWRITE_PROJECT_ID is required for the appwrite store"))
		}
		if c.Appwrite.DatabaseID == "" || c.Appwrite.CollectionID == "" {
			errs = append(errs, errors.New("APPWRITE_DATABASE_ID and APPWRITE_COLLECTION_ID are required for the appwrite store"))
		}
	default:
		errs = append(errs, fmt.Errorf("store.kind must be %q or %q, got %q", StoreSQLite, StoreAppwrite, c.Store.Kind))
	}

	if c.Search.Debounce <= 0 {
		errs = append(errs, fmt.Errorf("search.debounce must be positive, got %s", c.Search.Debounce))
	}
	if c.Search.TrendingLimit < 1 || c.Search.TrendingLimit > 100 {
		errs = append(errs, fmt.Errorf("search.trending_limit must be between 1 and 100, got %d", c.Search.TrendingLimit))
	}
	if c.TMDB.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("tmdb.timeout must be positive, got %s", c.TMDB.Timeout))
	}
	if c.DataDir == "" {
		errs = append(errs, errors.New("data_dir is required"))
	}

	return errors.Join(errs...)
}

// RequireTMDB reports a missing API key.
func (c *Config) RequireTMDB() error {
	if c.TMDB.APIKey == "" {
		return errors.New("TMDB_API_KEY is not set (export it or add tmdb.api_key to the config file)")
	}
	return nil
}

// EventsPath is the JSONL event log.
func (c *Config) EventsPath() string {
	return filepath.Join(c.DataDir, "cinescope.events.jsonl")
}
