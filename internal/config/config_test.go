package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/fable-exporter/internal/fable"
)

func setCredentials(t *testing.T) {
	t.Helper()
	t.Setenv("FABLE_USER_ID", "user-1")
	t.Setenv("FABLE_AUTH_TOKEN", "secret")
}

func TestNewConfigDefaults(t *testing.T) {
	setCredentials(t)

	cfg, err := NewConfig("", "")
	require.NoError(t, err)

	assert.Equal(t, "user-1", cfg.UserID)
	assert.Equal(t, "secret", cfg.AuthToken)
	assert.Equal(t, DefaultBaseURL, cfg.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 5.0, cfg.RequestsPerSecond)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, time.Second, cfg.RetryDelay)
	assert.Equal(t, 30*time.Second, cfg.MaxRetryDelay)
	assert.Equal(t, 200, cfg.MaxPages)
	assert.Equal(t, 100, cfg.BooksPageSize)
	assert.Equal(t, 20, cfg.ReviewsPageSize)
	assert.Equal(t, 1, cfg.ListConcurrency)
	assert.False(t, cfg.IncludeOwned)
	assert.Empty(t, cfg.Lists)
	assert.Equal(t, DefaultOutputDir, cfg.OutputDir)
	assert.Equal(t, "csv", cfg.Formats)
	assert.False(t, cfg.SeparateLists)
	assert.Empty(t, cfg.AuditDir)
	assert.Equal(t, DefaultSchedule, cfg.Schedule)
	assert.NoError(t, cfg.Validate())
}

func TestNewConfigFromEnvironment(t *testing.T) {
	setCredentials(t)
	t.Setenv("FABLE_AUTH_TOKEN", "Bearer abc.def")
	t.Setenv("FABLE_REQUEST_TIMEOUT", "2s")
	t.Setenv("FABLE_LIST_CONCURRENCY", "4")
	t.Setenv("FABLE_INCLUDE_OWNED", "true")
	t.Setenv("FABLE_LISTS", "Finished, Want to Read,,")
	t.Setenv("EXPORT_FORMATS", "csv,json")
	t.Setenv("EXPORT_SEPARATE_LISTS", "1")

	cfg, err := NewConfig("", "")
	require.NoError(t, err)

	assert.Equal(t, "abc.def", cfg.AuthToken, "token prefix is stripped")
	assert.Equal(t, 2*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 4, cfg.ListConcurrency)
	assert.True(t, cfg.IncludeOwned)
	assert.Equal(t, []string{"Finished", "Want to Read"}, cfg.Lists)
	assert.Equal(t, "csv,json", cfg.Formats)
	assert.True(t, cfg.SeparateLists)
}

func TestNewConfigEnvFile(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("FABLE_USER_ID=from-file\nFABLE_AUTH_TOKEN=JWT file-token\n"), 0600))

	// godotenv sets real process variables; register them for cleanup first.
	t.Setenv("FABLE_USER_ID", "")
	t.Setenv("FABLE_AUTH_TOKEN", "")
	os.Unsetenv("FABLE_USER_ID")
	os.Unsetenv("FABLE_AUTH_TOKEN")

	cfg, err := NewConfig(envFile, "")
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.UserID)
	assert.Equal(t, "file-token", cfg.AuthToken)

	t.Run("missing env file is ignored", func(t *testing.T) {
		_, err := NewConfig(filepath.Join(dir, "absent.env"), "")
		assert.NoError(t, err)
	})
}

func TestNewConfigFile(t *testing.T) {
	setCredentials(t)
	configFile := filepath.Join(t.TempDir(), "fable.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte("export_output_dir: /tmp/fable\nfable_max_pages: 7\n"), 0644))

	cfg, err := NewConfig("", configFile)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/fable", cfg.OutputDir)
	assert.Equal(t, 7, cfg.MaxPages)

	_, err = NewConfig("", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestNewConfigFileEndpoints(t *testing.T) {
	setCredentials(t)
	dir := t.TempDir()

	t.Run("overrides built-in descriptors", func(t *testing.T) {
		configFile := filepath.Join(dir, "endpoints.yaml")
		require.NoError(t, os.WriteFile(configFile, []byte(`
endpoints:
  books:
    path: /api/v3/lists/{list_id}/books
    style: page
    page_param: p
    first_page: 2
  owned:
    results_key: items
    next_key: ""
    query:
      include: owned
`), 0644))

		cfg, err := NewConfig("", configFile)
		require.NoError(t, err)
		require.NoError(t, cfg.Validate())

		endpoints := cfg.Endpoints()
		defaults := fable.DefaultEndpoints()

		assert.Equal(t, "/api/v3/lists/{list_id}/books", endpoints.Books.Path)
		assert.Equal(t, fable.PaginationPage, endpoints.Books.Style)
		assert.Equal(t, "p", endpoints.Books.PageParam)
		assert.Equal(t, 2, endpoints.Books.FirstPage)
		assert.Equal(t, cfg.BooksPageSize, endpoints.Books.PageSize)
		assert.Equal(t, defaults.Books.ResultsKey, endpoints.Books.ResultsKey)

		assert.Equal(t, "items", endpoints.Owned.ResultsKey)
		assert.Empty(t, endpoints.Owned.NextKey)
		assert.Equal(t, "owned", endpoints.Owned.Query.Get("include"))
		assert.Equal(t, defaults.Owned.Path, endpoints.Owned.Path)

		assert.Equal(t, defaults.Lists, endpoints.Lists)
	})

	t.Run("rejects unknown endpoints", func(t *testing.T) {
		configFile := filepath.Join(dir, "unknown.yaml")
		require.NoError(t, os.WriteFile(configFile, []byte("endpoints:\n  shelves:\n    path: /x\n"), 0644))

		_, err := NewConfig("", configFile)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown endpoints in config file: shelves")
	})

	t.Run("rejects unknown pagination style", func(t *testing.T) {
		configFile := filepath.Join(dir, "style.yaml")
		require.NoError(t, os.WriteFile(configFile, []byte("endpoints:\n  books:\n    style: scroll\n"), 0644))

		cfg, err := NewConfig("", configFile)
		require.NoError(t, err)
		err = cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "endpoints[books].style must be one of offset page cursor")
	})
}

func TestValidate(t *testing.T) {
	valid := func(t *testing.T) *Config {
		setCredentials(t)
		cfg, err := NewConfig("", "")
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		message string
	}{
		{"missing user", func(c *Config) { c.UserID = "" }, "FABLE_USER_ID is required"},
		{"missing token", func(c *Config) { c.AuthToken = "" }, "FABLE_AUTH_TOKEN is required"},
		{"bad base url", func(c *Config) { c.BaseURL = "not a url" }, "FABLE_BASE_URL must be an absolute URL"},
		{"zero timeout", func(c *Config) { c.RequestTimeout = 0 }, "FABLE_REQUEST_TIMEOUT must be greater than"},
		{"zero concurrency", func(c *Config) { c.ListConcurrency = 0 }, "FABLE_LIST_CONCURRENCY must be at least 1"},
		{"zero page cap", func(c *Config) { c.MaxPages = 0 }, "FABLE_MAX_PAGES must be greater than 0"},
		{"inverted delays", func(c *Config) { c.MaxRetryDelay = time.Millisecond }, "FABLE_MAX_RETRY_DELAY must not be smaller"},
		{"bad schedule", func(c *Config) { c.Schedule = "every day" }, "EXPORT_SCHEDULE must be a standard 5-field cron expression"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid(t)
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.message)
		})
	}

	t.Run("reports every problem", func(t *testing.T) {
		cfg := valid(t)
		cfg.UserID = ""
		cfg.AuthToken = ""

		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "FABLE_USER_ID")
		assert.Contains(t, err.Error(), "FABLE_AUTH_TOKEN")
	})
}

func TestDerivedSettings(t *testing.T) {
	setCredentials(t)
	t.Setenv("FABLE_BOOKS_PAGE_SIZE", "50")
	t.Setenv("FABLE_REVIEWS_PAGE_SIZE", "10")

	cfg, err := NewConfig("", "")
	require.NoError(t, err)

	endpoints := cfg.Endpoints()
	assert.Equal(t, 50, endpoints.Books.PageSize)
	assert.Equal(t, 10, endpoints.Reviews.PageSize)
	assert.Equal(t, 10, endpoints.LegacyReviews.PageSize)

	policy := cfg.RetryPolicy()
	assert.Equal(t, 3, policy.MaxRetries)
	assert.Equal(t, time.Second, policy.BaseDelay)
	assert.Equal(t, 30*time.Second, policy.MaxDelay)

	opts := cfg.ClientOptions()
	assert.Equal(t, DefaultBaseURL, opts.BaseURL)
	assert.Equal(t, 10*time.Second, opts.Timeout)
}

func TestSplitList(t *testing.T) {
	assert.Nil(t, SplitList(""))
	assert.Equal(t, []string{"a", "b c"}, SplitList(" a ,b c, "))
}
