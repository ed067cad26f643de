package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSettings() RuntimeSettings {
	return RuntimeSettings{
		CronExpr:   "*/5 * * * *",
		Queries:    []string{"software engineer", "SWE"},
		Pages:      2,
		Country:    "us",
		DatePosted: "week",
	}
}

func TestRuntimeSettings_Validate(t *testing.T) {
	require.NoError(t, validSettings().Validate())

	disabled := validSettings()
	disabled.CronExpr = ""
	require.NoError(t, disabled.Validate())

	tests := []struct {
		name   string
		mutate func(*RuntimeSettings)
	}{
		{name: "bad cron", mutate: func(s *RuntimeSettings) { s.CronExpr = "bad cron" }},
		{name: "seconds field rejected", mutate: func(s *RuntimeSettings) { s.CronExpr = "0 */5 * * * *" }},
		{name: "no queries", mutate: func(s *RuntimeSettings) { s.Queries = nil }},
		{name: "blank query", mutate: func(s *RuntimeSettings) { s.Queries = []string{"go", " "} }},
		{name: "zero pages", mutate: func(s *RuntimeSettings) { s.Pages = 0 }},
		{name: "unknown country", mutate: func(s *RuntimeSettings) { s.Country = "zz" }},
		{name: "long country", mutate: func(s *RuntimeSettings) { s.Country = "usa" }},
		{name: "bad window", mutate: func(s *RuntimeSettings) { s.DatePosted = "year" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validSettings()
			tt.mutate(&s)
			require.Error(t, s.Validate())
		})
	}
}

func TestValidateCountry(t *testing.T) {
	require.NoError(t, ValidateCountry("us"))
	require.NoError(t, ValidateCountry("GB"))
	require.Error(t, ValidateCountry(""))
	require.Error(t, ValidateCountry("u1"))
}

func TestRuntimeSettingsFile_RoundTrip(t *testing.T) {
	tmp := t.TempDir()
	filePath := filepath.Join(tmp, "settings", "runtime.json")
	input := validSettings()

	require.NoError(t, WriteRuntimeSettingsFile(filePath, input))

	got, err := LoadRuntimeSettingsFile(filePath)
	require.NoError(t, err)
	assert.Equal(t, input, got)

	info, err := os.Stat(filePath)
	require.NoError(t, err)
	assert.False(t, info.IsDir())

	_, err = os.Stat(filePath + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestWriteRuntimeSettingsFile_RejectsInvalid(t *testing.T) {
	filePath := filepath.Join(t.TempDir(), "runtime.json")
	bad := validSettings()
	bad.Pages = -1

	require.Error(t, WriteRuntimeSettingsFile(filePath, bad))
	_, err := os.Stat(filePath)
	assert.True(t, os.IsNotExist(err))
}

func TestWithRuntimeSettings_OverridesConfig(t *testing.T) {
	t.Setenv("INGEST_CRON_EXPR", "0 1 * * *")
	t.Setenv("INGEST_QUERIES", "golang")
	t.Setenv("INGEST_PAGES", "5")

	override := RuntimeSettings{
		CronExpr:   "*/30 * * * *",
		Queries:    []string{"rust", "zig"},
		Pages:      1,
		Country:    "de",
		DatePosted: "today",
	}

	cfg, err := NewFromEnv(WithRuntimeSettings(override))
	require.NoError(t, err)
	assert.Equal(t, override.CronExpr, cfg.Ingest.CronExpr)
	assert.Equal(t, override.Queries, cfg.Ingest.Queries)
	assert.Equal(t, 1, cfg.Ingest.Pages)
	assert.Equal(t, "de", cfg.Ingest.Country)
	assert.Equal(t, "today", cfg.Ingest.DatePosted)
	assert.Equal(t, override, cfg.RuntimeSettings())
}

func TestRuntimeSettingsStore_UpdatePersistsFile(t *testing.T) {
	tmp := t.TempDir()
	filePath := filepath.Join(tmp, "runtime-settings.json")

	store, err := NewRuntimeSettingsStore(filePath, validSettings())
	require.NoError(t, err)

	next := validSettings()
	next.CronExpr = "  0 */6 * * *  "
	next.Queries = []string{"platform engineer"}
	got, err := store.UpdateRuntimeSettings(next)
	require.NoError(t, err)
	assert.Equal(t, "0 */6 * * *", got.CronExpr)

	loaded, err := LoadRuntimeSettingsFile(filePath)
	require.NoError(t, err)
	assert.Equal(t, got, loaded)

	current, err := store.GetRuntimeSettings()
	require.NoError(t, err)
	assert.Equal(t, got, current)

	// the returned copy does not alias the stored queries
	current.Queries[0] = "mutated"
	again, _ := store.GetRuntimeSettings()
	assert.Equal(t, "platform engineer", again.Queries[0])
}

func TestRuntimeSettingsStore_RejectsInvalidUpdate(t *testing.T) {
	filePath := filepath.Join(t.TempDir(), "runtime-settings.json")
	store, err := NewRuntimeSettingsStore(filePath, validSettings())
	require.NoError(t, err)

	bad := validSettings()
	bad.DatePosted = "forever"
	_, err = store.UpdateRuntimeSettings(bad)
	require.Error(t, err)

	current, _ := store.GetRuntimeSettings()
	assert.Equal(t, validSettings(), current)
}
