// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points the config dir at a temp home and clears env overrides.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	for _, k := range []string{
		"QUERYCHAT_BACKEND_URL", "QUERYCHAT_TIMEOUT", "QUERYCHAT_LOG",
		"QUERYCHAT_THEME", "QUERYCHAT_LOCALE", "QUERYCHAT_DEBUG",
	} {
		t.Setenv(k, "")
	}
	return home
}

func TestDefault_Validates(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "http://127.0.0.1:8000", cfg.Backend.URL)
	assert.Equal(t, "chart.png", cfg.Chart.Filename)
	assert.Equal(t, time.Duration(0), cfg.Backend.Timeout(), "questions wait for the backend by default")
	assert.Equal(t, int64(10<<20), cfg.Backend.MaxResponseBytes())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"empty url", func(c *Config) { c.Backend.URL = "" }, "backend.url"},
		{"bad scheme", func(c *Config) { c.Backend.URL = "ftp://host" }, "backend.url"},
		{"no host", func(c *Config) { c.Backend.URL = "http://" }, "backend.url"},
		{"not a url", func(c *Config) { c.Backend.URL = "127.0.0.1:8000" }, "backend.url"},
		{"negative timeout", func(c *Config) { c.Backend.TimeoutSecs = -1 }, "backend.timeout_secs"},
		{"huge body cap", func(c *Config) { c.Backend.MaxResponseMB = 4096 }, "backend.max_response_mb"},
		{"negative rate", func(c *Config) { c.Backend.RatePerSec = -2 }, "backend.rate_per_sec"},
		{"theme", func(c *Config) { c.UI.Theme = "neon" }, "ui.theme"},
		{"locale", func(c *Config) { c.UI.Locale = "not a locale!" }, "ui.locale"},
		{"chart height", func(c *Config) { c.Chart.Height = 2 }, "chart.height"},
		{"export width", func(c *Config) { c.Chart.ExportWidth = 50 }, "chart.export_width"},
		{"filename with dir", func(c *Config) { c.Chart.Filename = "../x.png" }, "chart.filename"},
		{"filename not png", func(c *Config) { c.Chart.Filename = "chart.jpg" }, "chart.filename"},
		{"export format", func(c *Config) { c.Export.Format = "pdf" }, "export.format"},
		{"export theme", func(c *Config) { c.Export.Theme = "blue" }, "export.theme"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)

			var verrs ValidateErrors
			require.True(t, errors.As(err, &verrs))
			require.Len(t, verrs, 1)
			assert.Equal(t, tt.field, verrs[0].Field)
		})
	}
}

func TestSetDefaults(t *testing.T) {
	cfg := &Config{Backend: BackendConfig{URL: "http://example.com:9000/"}}
	cfg.SetDefaults()

	assert.Equal(t, "http://example.com:9000", cfg.Backend.URL, "trailing slash trimmed")
	assert.Equal(t, 5, cfg.Backend.HealthTimeoutSecs)
	assert.Equal(t, "auto", cfg.UI.Theme)
	assert.Equal(t, "en", cfg.UI.Locale)
	assert.Equal(t, 12, cfg.Chart.Height)
	assert.Equal(t, "html", cfg.Export.Format)
	require.NoError(t, cfg.Validate())
}

func TestApplyEnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("QUERYCHAT_BACKEND_URL", "http://10.1.2.3:8000")
	t.Setenv("QUERYCHAT_TIMEOUT", "30")
	t.Setenv("QUERYCHAT_LOG", "/tmp/qc.log")
	t.Setenv("QUERYCHAT_THEME", "light")
	t.Setenv("QUERYCHAT_DEBUG", "true")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	assert.Equal(t, "http://10.1.2.3:8000", cfg.Backend.URL)
	assert.Equal(t, 30, cfg.Backend.TimeoutSecs)
	assert.Equal(t, "/tmp/qc.log", cfg.Logging.Path)
	assert.Equal(t, "/tmp/qc.log", cfg.Logging.LogPath())
	assert.Equal(t, "light", cfg.UI.Theme)
	assert.True(t, cfg.Logging.Debug)
}

func TestApplyEnvOverrides_BadTimeoutIgnored(t *testing.T) {
	isolate(t)
	t.Setenv("QUERYCHAT_TIMEOUT", "soon")

	cfg := Default()
	cfg.ApplyEnvOverrides()
	assert.Equal(t, Default().Backend.TimeoutSecs, cfg.Backend.TimeoutSecs)
}

func TestLoad_NoFilesGivesDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default().Backend.URL, cfg.Backend.URL)
}

func TestLoad_TOMLThenEnv(t *testing.T) {
	home := isolate(t)
	dir := filepath.Join(home, ".querychat")
	require.NoError(t, os.MkdirAll(dir, 0700))
	body := "[backend]\nurl = \"http://db-assistant:8000\"\n\n[ui]\nsql_expanded = true\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(body), 0644))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "http://db-assistant:8000", cfg.Backend.URL)
	assert.True(t, cfg.UI.SQLExpanded)
	assert.Equal(t, 12, cfg.Chart.Height, "untouched keys keep defaults")

	info, err := os.Stat(filepath.Join(dir, "config.toml"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm(), "permissions tightened")

	t.Setenv("QUERYCHAT_BACKEND_URL", "http://override:1")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, "http://override:1", cfg.Backend.URL)
}

func TestLoad_JSONFallback(t *testing.T) {
	home := isolate(t)
	dir := filepath.Join(home, ".querychat")
	require.NoError(t, os.MkdirAll(dir, 0700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"),
		[]byte(`{"chart":{"height":20}}`), 0600))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 20, cfg.Chart.Height)

	path, err := ActivePath()
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, "config.json"))
}

func TestLoad_BrokenFileFallsBackToDefaults(t *testing.T) {
	home := isolate(t)
	dir := filepath.Join(home, ".querychat")
	require.NoError(t, os.MkdirAll(dir, 0700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte("[backend\nurl="), 0600))

	cfg, err := Load()
	require.Error(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, Default().Backend.URL, cfg.Backend.URL)
}

func TestLoadFromPath_InvalidURLRejected(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[backend]\nurl = \"localhost\"\n"), 0600))

	_, err := LoadFromPath(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "backend.url")
}

func TestSaveTOML_RoundTrip(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg := Default()
	cfg.Backend.URL = "https://analytics.internal"
	cfg.UI.BlockWhilePending = true
	require.NoError(t, SaveTOML(cfg, path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	got, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Backend.URL, got.Backend.URL)
	assert.True(t, got.UI.BlockWhilePending)

	jsonPath := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, SaveJSON(cfg, jsonPath))
	got, err = LoadFromPath(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, cfg.Backend.URL, got.Backend.URL)
}

func TestGetSet(t *testing.T) {
	cfg := Default()

	v, err := cfg.Get("backend.url")
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:8000", v)

	require.NoError(t, cfg.Set("ui.sql_expanded", "true"))
	assert.True(t, cfg.UI.SQLExpanded)

	require.NoError(t, cfg.Set("chart.height", "18"))
	assert.Equal(t, 18, cfg.Chart.Height)

	require.NoError(t, cfg.Set("backend.rate_per_sec", "2.5"))
	assert.Equal(t, 2.5, cfg.Backend.RatePerSec)

	require.NoError(t, cfg.Set("backend.max_response_mb", 20))
	assert.Equal(t, 20, cfg.Backend.MaxResponseMB)

	_, err = cfg.Get("backend.nope")
	assert.Error(t, err)
	_, err = cfg.Get("backend")
	assert.Error(t, err)
	assert.Error(t, cfg.Set("chart.height", "tall"))
	assert.Error(t, cfg.Set("", "x"))
}

func TestGetAllKeys(t *testing.T) {
	keys := GetAllKeys()
	assert.Contains(t, keys, "backend.url")
	assert.Contains(t, keys, "ui.block_while_pending")
	assert.Contains(t, keys, "chart.filename")
	assert.Contains(t, keys, "logging.debug")

	cfg := Default()
	for _, k := range keys {
		_, err := cfg.Get(k)
		assert.NoError(t, err, k)
	}
}

func TestClone(t *testing.T) {
	cfg := Default()
	clone := cfg.Clone()
	clone.Backend.URL = "http://other:1"
	assert.Equal(t, "http://127.0.0.1:8000", cfg.Backend.URL)
	assert.Contains(t, cfg.String(), "\"url\": \"http://127.0.0.1:8000\"")
}

func TestWatch_ReloadsOnWrite(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, SaveTOML(Default(), path))

	reloaded := make(chan *Config, 4)
	w, err := WatchWithDebounce(path, 20*time.Millisecond, func(cfg *Config, err error) {
		if err == nil {
			reloaded <- cfg
		}
	})
	require.NoError(t, err)
	defer w.Close()

	cfg := Default()
	cfg.Backend.URL = "http://hot-swapped:8000"
	require.NoError(t, SaveTOML(cfg, path))

	select {
	case got := <-reloaded:
		assert.Equal(t, "http://hot-swapped:8000", got.Backend.URL)
	case <-time.After(3 * time.Second):
		t.Fatal("no reload after write")
	}
}

func TestWatch_IgnoresSiblings(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, SaveTOML(Default(), path))

	calls := make(chan struct{}, 4)
	w, err := WatchWithDebounce(path, 10*time.Millisecond, func(*Config, error) {
		calls <- struct{}{}
	})
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0600))

	select {
	case <-calls:
		t.Fatal("reload fired for an unrelated file")
	case <-time.After(200 * time.Millisecond):
	}
}
