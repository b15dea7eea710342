package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points HOME and the working directory at empty temp dirs so no
// real config file is picked up.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv(ConfigPathEnvVar, "")
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(wd) })
	return dir
}

func TestLoadDefaults(t *testing.T) {
	home := isolate(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "https://api.themoviedb.org/3", cfg.TMDB.BaseURL)
	assert.Equal(t, 15*time.Second, cfg.TMDB.Timeout)
	assert.Equal(t, StoreSQLite, cfg.Store.Kind)
	assert.Equal(t, 500*time.Millisecond, cfg.Search.Debounce)
	assert.Equal(t, 8, cfg.Search.TrendingLimit)
	assert.True(t, cfg.Search.RequirePoster)
	assert.Equal(t, filepath.Join(home, ".cinescope"), cfg.DataDir)
	assert.Equal(t, filepath.Join(home, ".cinescope", "cinescope.db"), cfg.Store.Path)
	assert.Equal(t, filepath.Join(home, ".cinescope", "cinescope.events.jsonl"), cfg.EventsPath())
	assert.Error(t, cfg.RequireTMDB())
}

func TestLoadEnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("TMDB_API_KEY", "  tok  ")
	t.Setenv("CINESCOPE_DEBOUNCE", "250ms")
	t.Setenv("CINESCOPE_TRENDING_LIMIT", "5")
	t.Setenv("CINESCOPE_REQUIRE_POSTER", "false")
	t.Setenv("CINESCOPE_DB_PATH", "/tmp/x.db")
	t.Setenv("UNRELATED_VAR", "ignored")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "tok", cfg.TMDB.APIKey)
	assert.NoError(t, cfg.RequireTMDB())
	assert.Equal(t, 250*time.Millisecond, cfg.Search.Debounce)
	assert.Equal(t, 5, cfg.Search.TrendingLimit)
	assert.False(t, cfg.Search.RequirePoster)
	assert.Equal(t, "/tmp/x.db", cfg.Store.Path)
}

func TestLoadFileThenEnv(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
tmdb:
  api_key: from-file
store:
  kind: appwrite
appwrite:
  project_id: proj
  database_id: db
  collection_id: trending
search:
  trending_limit: 10
`), 0o600))
	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("TMDB_API_KEY", "from-env")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.TMDB.APIKey, "env wins over file")
	assert.Equal(t, StoreAppwrite, cfg.Store.Kind)
	assert.Equal(t, "proj", cfg.Appwrite.ProjectID)
	assert.Equal(t, "https://cloud.appwrite.io/v1", cfg.Appwrite.Endpoint, "defaults survive partial files")
	assert.Equal(t, 10, cfg.Search.TrendingLimit)
}

func TestLoadExplicitPathMissing(t *testing.T) {
	isolate(t)
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(c *Config) { c.Store.Path = "x.db" }, ""},
		{"unknown store", func(c *Config) { c.Store.Kind = "redis" }, "store.kind"},
		{"appwrite without project", func(c *Config) {
			c.Store.Kind = StoreAppwrite
			c.Appwrite.DatabaseID, c.Appwrite.CollectionID = "db", "col"
		}, "APPWRITE_PROJECT_ID"},
		{"zero debounce", func(c *Config) { c.Store.Path = "x.db"; c.Search.Debounce = 0 }, "search.debounce"},
		{"limit too large", func(c *Config) { c.Store.Path = "x.db"; c.Search.TrendingLimit = 500 }, "trending_limit"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
