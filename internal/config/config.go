// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"golang.org/x/text/language"

	"github.com/jeranaias/querychat/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete querychat configuration.
type Config struct {
	Backend BackendConfig `toml:"backend" json:"backend"`
	UI      UIConfig      `toml:"ui" json:"ui"`
	Chart   ChartConfig   `toml:"chart" json:"chart"`
	Export  ExportConfig  `toml:"export" json:"export"`
	Logging LoggingConfig `toml:"logging" json:"logging"`
}

// BackendConfig describes the chat backend.
type BackendConfig struct {
	// URL is the backend base address. /chat and /health hang off it.
	URL string `toml:"url" json:"url"`
	// TimeoutSecs bounds one question. 0 waits forever.
	TimeoutSecs int `toml:"timeout_secs" json:"timeout_secs"`
	// HealthTimeoutSecs bounds the startup probe.
	HealthTimeoutSecs int `toml:"health_timeout_secs" json:"health_timeout_secs"`
	// MaxResponseMB caps the reply body.
	MaxResponseMB int `toml:"max_response_mb" json:"max_response_mb"`
	// RatePerSec spaces out requests (0 = unlimited)
	RatePerSec float64 `toml:"rate_per_sec" json:"rate_per_sec"`
}

// UIConfig contains UI configuration.
type UIConfig struct {
	// Theme is "auto", "dark" or "light".
	Theme string `toml:"theme" json:"theme"`
	// Locale drives number grouping, e.g. "en" or "de".
	Locale         string `toml:"locale" json:"locale"`
	ShowTimestamps bool   `toml:"show_timestamps" json:"show_timestamps"`
	// SQLExpanded opens SQL panels by default.
	SQLExpanded bool `toml:"sql_expanded" json:"sql_expanded"`
	// BlockWhilePending refuses a new question until the last one is answered.
	BlockWhilePending bool `toml:"block_while_pending" json:"block_while_pending"`
}

// ChartConfig contains chart sizing and download settings.
type ChartConfig struct {
	// Height is the terminal chart height in rows.
	Height       int    `toml:"height" json:"height"`
	ExportWidth  int    `toml:"export_width" json:"export_width"`
	ExportHeight int    `toml:"export_height" json:"export_height"`
	Filename     string `toml:"filename" json:"filename"`
}

// ExportConfig contains conversation export settings.
type ExportConfig struct {
	Dir string `toml:"dir" json:"dir"`
	// Format is "html", "markdown" or "json".
	Format string `toml:"format" json:"format"`
	// Theme is the HTML palette, "light" or "dark".
	Theme string `toml:"theme" json:"theme"`
}

// LoggingConfig controls the log file.
type LoggingConfig struct {
	// Path is the TUI log file (empty = ~/.querychat/querychat.log)
	Path  string `toml:"path" json:"path"`
	Debug bool   `toml:"debug" json:"debug"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Backend: BackendConfig{
			URL:               "http://127.0.0.1:8000",
			TimeoutSecs:       0,
			HealthTimeoutSecs: 5,
			MaxResponseMB:     10,
			RatePerSec:        0,
		},
		UI: UIConfig{
			Theme:  "auto",
			Locale: "en",
		},
		Chart: ChartConfig{
			Height:       12,
			ExportWidth:  800,
			ExportHeight: 400,
			Filename:     "chart.png",
		},
		Export: ExportConfig{
			Dir:    ".",
			Format: "html",
			Theme:  "light",
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the querychat configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".querychat"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// ActivePath returns the file Load would read: the TOML file if it exists,
// else the JSON file if it exists, else the TOML path.
func ActivePath() (string, error) {
	tomlPath, err := ConfigPathTOML()
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(tomlPath); err == nil {
		return tomlPath, nil
	}
	jsonPath, err := ConfigPathJSON()
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(jsonPath); err == nil {
		return jsonPath, nil
	}
	return tomlPath, nil
}

// ensureSecurePermissions tightens a config file to 0600.
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	mode := info.Mode().Perm()
	if mode != 0600 {
		if err := os.Chmod(path, 0600); err != nil {
			return fmt.Errorf("failed to fix permissions (was %o): %w", mode, err)
		}
	}
	return nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the config file(s).
// Tries TOML first, then JSON, and falls back to defaults. A file that fails
// to load is skipped and its error returned alongside the usable config.
func Load() (*Config, error) {
	cfg := Default()
	var loadErr error

	if tomlPath, err := ConfigPathTOML(); err == nil {
		if _, statErr := os.Stat(tomlPath); statErr == nil {
			if err := LoadTOML(cfg, tomlPath); err != nil {
				loadErr = fmt.Errorf("failed to load TOML config: %w", err)
				cfg = Default()
			} else {
				return finish(cfg)
			}
		}
	}

	if jsonPath, err := ConfigPathJSON(); err == nil {
		if _, statErr := os.Stat(jsonPath); statErr == nil {
			if err := LoadJSON(cfg, jsonPath); err != nil {
				loadErr = errors.Join(loadErr, fmt.Errorf("failed to load JSON config: %w", err))
				cfg = Default()
			} else {
				return finish(cfg)
			}
		}
	}

	out, err := finish(cfg)
	if err != nil {
		return nil, err
	}
	return out, loadErr
}

// LoadFromPath loads configuration from a specific file path with full validation.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if strings.HasSuffix(path, ".json") {
		if err := LoadJSON(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load JSON config from %s: %w", path, err)
		}
	} else {
		if err := LoadTOML(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load TOML config from %s: %w", path, err)
		}
	}
	return finish(cfg)
}

// finish applies env overrides, defaults and validation in that order.
func finish(cfg *Config) (*Config, error) {
	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML decodes a TOML file over cfg.
func LoadTOML(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		log.Printf("WARNING: could not ensure secure permissions on %s: %v", path, err)
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return nil
}

// LoadJSON decodes a JSON file over cfg.
func LoadJSON(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		log.Printf("WARNING: could not ensure secure permissions on %s: %v", path, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	return nil
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML writes cfg to path with 0600 permissions.
func SaveTOML(cfg *Config, path string) error {
	var buf bytes.Buffer
	buf.WriteString("# querychat configuration file\n")
	buf.WriteString("# Generated by querychat - edit with care\n\n")

	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFileWithDir(path, buf.Bytes(), 0600, 0700); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// SaveJSON writes cfg as indented JSON with 0600 permissions.
func SaveJSON(cfg *Config, path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFileWithDir(path, data, 0600, 0700); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

var (
	validThemes       = map[string]bool{"auto": true, "dark": true, "light": true}
	validExportFormat = map[string]bool{"html": true, "markdown": true, "md": true, "json": true}
	validExportTheme  = map[string]bool{"light": true, "dark": true}
)

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	// Backend
	if err := validateURL(c.Backend.URL); err != nil {
		errs = append(errs, ValidationError{Field: "backend.url", Message: err.Error()})
	}
	if c.Backend.TimeoutSecs < 0 || c.Backend.TimeoutSecs > 3600 {
		errs = append(errs, ValidationError{
			Field:   "backend.timeout_secs",
			Message: fmt.Sprintf("must be between 0 and 3600, got %d", c.Backend.TimeoutSecs),
		})
	}
	if c.Backend.HealthTimeoutSecs < 1 || c.Backend.HealthTimeoutSecs > 300 {
		errs = append(errs, ValidationError{
			Field:   "backend.health_timeout_secs",
			Message: fmt.Sprintf("must be between 1 and 300, got %d", c.Backend.HealthTimeoutSecs),
		})
	}
	if c.Backend.MaxResponseMB < 1 || c.Backend.MaxResponseMB > 512 {
		errs = append(errs, ValidationError{
			Field:   "backend.max_response_mb",
			Message: fmt.Sprintf("must be between 1 and 512, got %d", c.Backend.MaxResponseMB),
		})
	}
	if c.Backend.RatePerSec < 0 {
		errs = append(errs, ValidationError{Field: "backend.rate_per_sec", Message: "must not be negative"})
	}

	// UI
	if !validThemes[strings.ToLower(c.UI.Theme)] {
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("invalid theme '%s', must be one of: auto, dark, light", c.UI.Theme),
		})
	}
	if _, err := language.Parse(c.UI.Locale); err != nil {
		errs = append(errs, ValidationError{
			Field:   "ui.locale",
			Message: fmt.Sprintf("invalid locale '%s'", c.UI.Locale),
		})
	}

	// Chart
	if c.Chart.Height < 4 || c.Chart.Height > 60 {
		errs = append(errs, ValidationError{
			Field:   "chart.height",
			Message: fmt.Sprintf("must be between 4 and 60, got %d", c.Chart.Height),
		})
	}
	if c.Chart.ExportWidth < 100 || c.Chart.ExportWidth > 4096 {
		errs = append(errs, ValidationError{
			Field:   "chart.export_width",
			Message: fmt.Sprintf("must be between 100 and 4096, got %d", c.Chart.ExportWidth),
		})
	}
	if c.Chart.ExportHeight < 100 || c.Chart.ExportHeight > 4096 {
		errs = append(errs, ValidationError{
			Field:   "chart.export_height",
			Message: fmt.Sprintf("must be between 100 and 4096, got %d", c.Chart.ExportHeight),
		})
	}
	if c.Chart.Filename != filepath.Base(c.Chart.Filename) || !strings.HasSuffix(strings.ToLower(c.Chart.Filename), ".png") {
		errs = append(errs, ValidationError{
			Field:   "chart.filename",
			Message: fmt.Sprintf("must be a bare .png file name, got '%s'", c.Chart.Filename),
		})
	}

	// Export
	if !validExportFormat[strings.ToLower(c.Export.Format)] {
		errs = append(errs, ValidationError{
			Field:   "export.format",
			Message: fmt.Sprintf("invalid format '%s', must be one of: html, markdown, json", c.Export.Format),
		})
	}
	if !validExportTheme[strings.ToLower(c.Export.Theme)] {
		errs = append(errs, ValidationError{
			Field:   "export.theme",
			Message: fmt.Sprintf("invalid theme '%s', must be one of: light, dark", c.Export.Theme),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func validateURL(raw string) error {
	if raw == "" {
		return errors.New("must not be empty")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid URL: %v", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https, got '%s'", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("missing host")
	}
	return nil
}

// SetDefaults fills zero-value fields from Default.
func (c *Config) SetDefaults() {
	d := Default()

	if c.Backend.URL == "" {
		c.Backend.URL = d.Backend.URL
	}
	c.Backend.URL = strings.TrimRight(c.Backend.URL, "/")
	if c.Backend.HealthTimeoutSecs == 0 {
		c.Backend.HealthTimeoutSecs = d.Backend.HealthTimeoutSecs
	}
	if c.Backend.MaxResponseMB == 0 {
		c.Backend.MaxResponseMB = d.Backend.MaxResponseMB
	}

	if c.UI.Theme == "" {
		c.UI.Theme = d.UI.Theme
	}
	if c.UI.Locale == "" {
		c.UI.Locale = d.UI.Locale
	}

	if c.Chart.Height == 0 {
		c.Chart.Height = d.Chart.Height
	}
	if c.Chart.ExportWidth == 0 {
		c.Chart.ExportWidth = d.Chart.ExportWidth
	}
	if c.Chart.ExportHeight == 0 {
		c.Chart.ExportHeight = d.Chart.ExportHeight
	}
	if c.Chart.Filename == "" {
		c.Chart.Filename = d.Chart.Filename
	}

	if c.Export.Dir == "" {
		c.Export.Dir = d.Export.Dir
	}
	if c.Export.Format == "" {
		c.Export.Format = d.Export.Format
	}
	if c.Export.Theme == "" {
		c.Export.Theme = d.Export.Theme
	}
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - QUERYCHAT_BACKEND_URL: overrides backend.url
//   - QUERYCHAT_TIMEOUT: overrides backend.timeout_secs
//   - QUERYCHAT_LOG: overrides logging.path
//   - QUERYCHAT_THEME: overrides ui.theme
//   - QUERYCHAT_LOCALE: overrides ui.locale
//   - QUERYCHAT_DEBUG: set to "1" or "true" to enable debug logging
func (c *Config) ApplyEnvOverrides() {
	if u := os.Getenv("QUERYCHAT_BACKEND_URL"); u != "" {
		c.Backend.URL = u
	}

	if t := os.Getenv("QUERYCHAT_TIMEOUT"); t != "" {
		if secs, err := strconv.Atoi(t); err == nil {
			c.Backend.TimeoutSecs = secs
		} else {
			log.Printf("WARNING: ignoring QUERYCHAT_TIMEOUT=%q: %v", t, err)
		}
	}

	if p := os.Getenv("QUERYCHAT_LOG"); p != "" {
		c.Logging.Path = p
	}

	if theme := os.Getenv("QUERYCHAT_THEME"); theme != "" {
		c.UI.Theme = theme
	}

	if loc := os.Getenv("QUERYCHAT_LOCALE"); loc != "" {
		c.UI.Locale = loc
	}

	if debug := os.Getenv("QUERYCHAT_DEBUG"); debug != "" {
		c.Logging.Debug = debug == "1" || strings.ToLower(debug) == "true"
	}
}

// =============================================================================
// DERIVED VALUES
// =============================================================================

// Timeout returns the per-question timeout.
func (b BackendConfig) Timeout() time.Duration {
	return time.Duration(b.TimeoutSecs) * time.Second
}

// HealthTimeout returns the probe timeout.
func (b BackendConfig) HealthTimeout() time.Duration {
	return time.Duration(b.HealthTimeoutSecs) * time.Second
}

// MaxResponseBytes returns the body cap in bytes.
func (b BackendConfig) MaxResponseBytes() int64 {
	return int64(b.MaxResponseMB) << 20
}

// LogPath returns the configured log file, or querychat.log in the config dir.
func (l LoggingConfig) LogPath() string {
	if l.Path != "" {
		return l.Path
	}
	dir, err := ConfigDir()
	if err != nil {
		return "querychat.log"
	}
	return filepath.Join(dir, "querychat.log")
}

// =============================================================================
// GET/SET HELPERS (DOT NOTATION)
// =============================================================================

// Get retrieves a configuration value using dot notation (e.g., "backend.url").
func (c *Config) Get(key string) (interface{}, error) {
	field, err := c.lookup(key)
	if err != nil {
		return nil, err
	}
	return field.Interface(), nil
}

// Set sets a configuration value using dot notation (e.g., "ui.theme").
func (c *Config) Set(key string, value interface{}) error {
	field, err := c.lookup(key)
	if err != nil {
		return err
	}
	if !field.CanSet() {
		return fmt.Errorf("cannot set field: %s", key)
	}
	return setFieldValue(field, value)
}

func (c *Config) lookup(key string) (reflect.Value, error) {
	if key == "" {
		return reflect.Value{}, errors.New("empty key")
	}
	parts := strings.Split(key, ".")

	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		fieldName := normalizeFieldName(part)
		field := v.FieldByNameFunc(func(name string) bool {
			return strings.EqualFold(name, fieldName)
		})
		if !field.IsValid() {
			return reflect.Value{}, fmt.Errorf("unknown field: %s", strings.Join(parts[:i+1], "."))
		}
		if i == len(parts)-1 {
			if field.Kind() == reflect.Struct {
				return reflect.Value{}, fmt.Errorf("'%s' is a section, not a key", key)
			}
			return field, nil
		}
		if field.Kind() != reflect.Struct {
			return reflect.Value{}, fmt.Errorf("field '%s' is not a struct", strings.Join(parts[:i+1], "."))
		}
		v = field
	}
	return reflect.Value{}, fmt.Errorf("invalid key: %s", key)
}

// normalizeFieldName converts a snake_case or kebab-case name to its Go field equivalent.
// Acronyms are matched case-insensitively, so "url" finds URL and "sql_expanded" finds SQLExpanded.
func normalizeFieldName(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-'
	})

	var result strings.Builder
	for _, part := range parts {
		if len(part) > 0 {
			result.WriteString(strings.ToUpper(part[:1]))
			result.WriteString(strings.ToLower(part[1:]))
		}
	}
	return result.String()
}

// setFieldValue sets a reflect.Value from an interface{} value with type conversion.
func setFieldValue(field reflect.Value, value interface{}) error {
	if strVal, ok := value.(string); ok {
		switch field.Kind() {
		case reflect.String:
			field.SetString(strVal)
			return nil
		case reflect.Int, reflect.Int64:
			intVal, err := strconv.ParseInt(strVal, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer value: %v", err)
			}
			field.SetInt(intVal)
			return nil
		case reflect.Float64:
			floatVal, err := strconv.ParseFloat(strVal, 64)
			if err != nil {
				return fmt.Errorf("invalid float value: %v", err)
			}
			field.SetFloat(floatVal)
			return nil
		case reflect.Bool:
			lower := strings.ToLower(strVal)
			field.SetBool(lower == "1" || lower == "true" || lower == "yes")
			return nil
		}
	}

	val := reflect.ValueOf(value)
	if !val.IsValid() {
		return fmt.Errorf("cannot assign nil to %s", field.Type())
	}
	if val.Type().AssignableTo(field.Type()) {
		field.Set(val)
		return nil
	}
	if val.Type().ConvertibleTo(field.Type()) && val.Kind() != reflect.String {
		field.Set(val.Convert(field.Type()))
		return nil
	}
	return fmt.Errorf("cannot assign %T to %s", value, field.Type())
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// GetAllKeys returns all configuration keys in dot notation.
func GetAllKeys() []string {
	var keys []string
	t := reflect.TypeOf(Config{})
	for i := 0; i < t.NumField(); i++ {
		section := t.Field(i)
		prefix := tagName(section)
		for j := 0; j < section.Type.NumField(); j++ {
			keys = append(keys, prefix+"."+tagName(section.Type.Field(j)))
		}
	}
	return keys
}

func tagName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("toml"), ",")
	if name == "" {
		return strings.ToLower(f.Name)
	}
	return name
}

// Clone returns a copy of the configuration. Config holds only value types.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// String returns the config as indented JSON for debugging.
func (c *Config) String() string {
	data, _ := json.MarshalIndent(c, "", "  ")
	return string(data)
}
