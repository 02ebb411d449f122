/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package config loads the user configuration: a YAML file in the user scope with
// environment variables as read-only overrides and the API secret in the OS keyring.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// AppConfig is the user-editable configuration persisted to a YAML file in the user scope.
// Environment variables are treated as read-only overrides at runtime.
//
// config_version: bump when the structure changes in a backward-incompatible way.
// Unknown fields are ignored on unmarshal.

type DesignerConfig struct {
	MobileBreakpoint float64 `yaml:"mobile_breakpoint"`
	MinWidth         float64 `yaml:"min_width"`
	MinHeight        float64 `yaml:"min_height"`
	DuplicateOffset  float64 `yaml:"duplicate_offset"`
	IDStrategy       string  `yaml:"id_strategy"` // "counter" | "uuid"
	FoundersWindow   int     `yaml:"founders_window"`
}

type StorageConfig struct {
	LayoutPath  string `yaml:"layout_path"`
	HistoryKeep int    `yaml:"history_keep"`
}

type ServerConfig struct {
	Addr        string `yaml:"addr"`
	DatabaseURL string `yaml:"database_url"`
	// The API signing secret is not stored on disk; it lives in the OS keychain.
}

type BackendConfig struct {
	BaseURL     string `yaml:"base_url"`
	TimeoutMs   int    `yaml:"timeout_ms"`
	TLSInsecure bool   `yaml:"tls_insecure"`
}

type GeneralConfig struct {
	TelemetryOptIn bool `yaml:"telemetry_opt_in"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

type AppConfig struct {
	ConfigVersion int            `yaml:"config_version"`
	Designer      DesignerConfig `yaml:"designer"`
	Storage       StorageConfig  `yaml:"storage"`
	Server        ServerConfig   `yaml:"server"`
	Backend       BackendConfig  `yaml:"backend"`
	General       GeneralConfig  `yaml:"general"`
	Logging       LoggingConfig  `yaml:"logging"`
}

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		Designer: DesignerConfig{
			MobileBreakpoint: 1024,
			MinWidth:         100,
			MinHeight:        50,
			DuplicateOffset:  40,
			IDStrategy:       "counter",
			FoundersWindow:   5,
		},
		Storage: StorageConfig{LayoutPath: "layout.json", HistoryKeep: 50},
		Server:  ServerConfig{Addr: ":8080"},
		Backend: BackendConfig{BaseURL: "http://localhost:8080", TimeoutMs: 15000},
		General: GeneralConfig{TelemetryOptIn: false},
		Logging: LoggingConfig{Level: "info", Format: "console"},
	}
}

// Env var names used as overrides.
const (
	EnvMobileBreakpoint = "LBD_MOBILE_BREAKPOINT"
	EnvIDStrategy       = "LBD_ID_STRATEGY"
	EnvLayoutPath       = "LBD_LAYOUT_PATH"
	EnvAddr             = "LBD_ADDR"
	EnvDatabaseURL      = "LBD_DATABASE_URL"
	EnvBackendURL       = "LBD_BACKEND_URL"
	EnvBackendTimeoutMs = "LBD_BACKEND_TIMEOUT_MS"
	EnvTelemetryOptIn   = "LBD_TELEMETRY_OPT_IN"
	// EnvLogLevel Logging envs
	EnvLogLevel  = "LBD_LOG_LEVEL"
	EnvLogFormat = "LBD_LOG_FORMAT"
	EnvLogSource = "LBD_LOG_SOURCE"
	EnvLogFile   = "LBD_LOG_FILE"
)

// ConfigPath returns the per-user config file path.
func ConfigPath() (string, error) {
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" { // fallback
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "LabDesigner")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "LabDesigner")
	default: // linux and others
		base = filepath.Join(os.Getenv("HOME"), ".config", "labdesigner")
	}
	if base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return filepath.Join(base, "config.yaml"), nil
}

// Load reads user config file (if present), applies defaults, and merges environment overrides.
// It also loads the API secret from the keyring (returned separately, never kept in the struct).
func Load() (AppConfig, string, error) {
	cfg := Defaults()
	path, err := ConfigPath()
	if err != nil {
		return cfg, "", err
	}
	if data, err := os.ReadFile(path); err == nil {
		var fileCfg AppConfig
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			return cfg, "", fmt.Errorf("parse %s: %w", path, err)
		}
		mergeInto(&cfg, &fileCfg)
	}
	applyEnvOverrides(&cfg)
	secret, _ := tokenStore.Get(keyringService, keyringSecret)
	return cfg, secret, nil
}

// Save writes the user config YAML and persists the secret into the OS keyring (if non-empty).
func Save(cfg AppConfig, secret string) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return err
	}
	if secret != "" {
		if err := tokenStore.Set(keyringService, keyringSecret, secret); err != nil {
			return err
		}
	}
	return nil
}

func mergeInto(dst *AppConfig, src *AppConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	// designer: zero means "not set in file"
	if src.Designer.MobileBreakpoint > 0 {
		dst.Designer.MobileBreakpoint = src.Designer.MobileBreakpoint
	}
	if src.Designer.MinWidth > 0 {
		dst.Designer.MinWidth = src.Designer.MinWidth
	}
	if src.Designer.MinHeight > 0 {
		dst.Designer.MinHeight = src.Designer.MinHeight
	}
	if src.Designer.DuplicateOffset > 0 {
		dst.Designer.DuplicateOffset = src.Designer.DuplicateOffset
	}
	if s := strings.ToLower(strings.TrimSpace(src.Designer.IDStrategy)); s != "" {
		dst.Designer.IDStrategy = s
	}
	if src.Designer.FoundersWindow > 0 {
		dst.Designer.FoundersWindow = src.Designer.FoundersWindow
	}
	if s := strings.TrimSpace(src.Storage.LayoutPath); s != "" {
		dst.Storage.LayoutPath = s
	}
	if src.Storage.HistoryKeep > 0 {
		dst.Storage.HistoryKeep = src.Storage.HistoryKeep
	}
	if s := strings.TrimSpace(src.Server.Addr); s != "" {
		dst.Server.Addr = s
	}
	if s := strings.TrimSpace(src.Server.DatabaseURL); s != "" {
		dst.Server.DatabaseURL = s
	}
	if src.Backend.BaseURL != "" {
		dst.Backend.BaseURL = src.Backend.BaseURL
	}
	if src.Backend.TimeoutMs != 0 {
		dst.Backend.TimeoutMs = src.Backend.TimeoutMs
	}
	dst.Backend.TLSInsecure = src.Backend.TLSInsecure
	// booleans: copy directly from src (file) so user preferences persist
	dst.General.TelemetryOptIn = src.General.TelemetryOptIn
	// logging
	if strings.TrimSpace(src.Logging.Level) != "" {
		dst.Logging.Level = strings.ToLower(strings.TrimSpace(src.Logging.Level))
	}
	if strings.TrimSpace(src.Logging.Format) != "" {
		dst.Logging.Format = strings.ToLower(strings.TrimSpace(src.Logging.Format))
	}
	dst.Logging.Source = src.Logging.Source
	if strings.TrimSpace(src.Logging.File) != "" {
		dst.Logging.File = strings.TrimSpace(src.Logging.File)
	}
}

func parseBool(v string) bool {
	lv := strings.ToLower(strings.TrimSpace(v))
	return lv == "1" || lv == "true" || lv == "on" || lv == "yes"
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := strings.TrimSpace(os.Getenv(EnvMobileBreakpoint)); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			cfg.Designer.MobileBreakpoint = f
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvIDStrategy)); v != "" {
		cfg.Designer.IDStrategy = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLayoutPath)); v != "" {
		cfg.Storage.LayoutPath = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvAddr)); v != "" {
		cfg.Server.Addr = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvDatabaseURL)); v != "" {
		cfg.Server.DatabaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvBackendURL)); v != "" {
		cfg.Backend.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvBackendTimeoutMs)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Backend.TimeoutMs = n
		}
	}
	if v := os.Getenv(EnvTelemetryOptIn); strings.TrimSpace(v) != "" {
		cfg.General.TelemetryOptIn = parseBool(v)
	}
	// logging overrides
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := os.Getenv(EnvLogSource); strings.TrimSpace(v) != "" {
		cfg.Logging.Source = parseBool(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
}

// EnvOverrideFor returns the env var name if the field is overridden by environment variables.
func EnvOverrideFor(key string) (string, bool) {
	names := map[string]string{
		"designer.mobile_breakpoint": EnvMobileBreakpoint,
		"designer.id_strategy":       EnvIDStrategy,
		"storage.layout_path":        EnvLayoutPath,
		"server.addr":                EnvAddr,
		"server.database_url":        EnvDatabaseURL,
		"backend.base_url":           EnvBackendURL,
		"backend.timeout_ms":         EnvBackendTimeoutMs,
		"general.telemetry_opt_in":   EnvTelemetryOptIn,
		"logging.level":              EnvLogLevel,
		"logging.format":             EnvLogFormat,
		"logging.source":             EnvLogSource,
		"logging.file":               EnvLogFile,
	}
	if env, ok := names[key]; ok && os.Getenv(env) != "" {
		return env, true
	}
	return "", false
}

// Timeout returns the backend client timeout, falling back to the default.
func (b BackendConfig) Timeout() time.Duration {
	if b.TimeoutMs <= 0 {
		return time.Duration(Defaults().Backend.TimeoutMs) * time.Millisecond
	}
	return time.Duration(b.TimeoutMs) * time.Millisecond
}
