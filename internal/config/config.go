/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

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

	"gocomicbox/internal/textbox"
	"gocomicbox/internal/textlayout"
)

// AppConfig is the user-editable configuration persisted to a YAML file in the user scope.
// Environment variables are treated as read-only overrides at runtime.
//
// config_version: bump when the structure changes in a backward-incompatible way.

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

type FontsConfig struct {
	Default   string `yaml:"default"`
	CacheDir  string `yaml:"cache_dir"`
	TimeoutMs int    `yaml:"timeout_ms"`
}

type RenderConfig struct {
	Style  string `yaml:"style"`
	Breaks string `yaml:"breaks"` // "uax14" | "whitespace"
	Anchor string `yaml:"anchor"` // empty: explicit default position
}

type AppConfig struct {
	ConfigVersion int                      `yaml:"config_version"`
	Logging       LoggingConfig            `yaml:"logging"`
	Fonts         FontsConfig              `yaml:"fonts"`
	Render        RenderConfig             `yaml:"render"`
	Styles        map[string]textbox.Style `yaml:"styles,omitempty"`
}

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		Logging:       LoggingConfig{Level: "info", Format: "console", Source: false, File: ""},
		Fonts:         FontsConfig{Default: textlayout.DefaultFont, CacheDir: "", TimeoutMs: 15000},
		Render:        RenderConfig{Style: textbox.DefaultStyle, Breaks: string(textlayout.BreakUAX14)},
	}
}

// Env var names used as overrides.
const (
	EnvConfigFile = "GCB_CONFIG"
	// EnvLogLevel Logging envs
	EnvLogLevel  = "GCB_LOG_LEVEL"
	EnvLogFormat = "GCB_LOG_FORMAT"
	EnvLogSource = "GCB_LOG_SOURCE"
	EnvLogFile   = "GCB_LOG_FILE"
	// EnvFont Fonts envs
	EnvFont          = "GCB_FONT"
	EnvFontCacheDir  = "GCB_FONT_CACHE_DIR"
	EnvFontTimeoutMs = "GCB_FONT_TIMEOUT_MS"
	// EnvStyle Render envs
	EnvStyle  = "GCB_STYLE"
	EnvBreaks = "GCB_BREAKS"
	EnvAnchor = "GCB_ANCHOR"
)

// configDir returns the per-user application directory.
func configDir() (string, error) {
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" { // fallback
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "GoComicBox")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "GoComicBox")
	default: // linux and others
		if x := os.Getenv("XDG_CONFIG_HOME"); x != "" {
			base = filepath.Join(x, "gocomicbox")
		} else {
			base = filepath.Join(os.Getenv("HOME"), ".config", "gocomicbox")
		}
	}
	if base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return base, nil
}

// ConfigPath returns the config file path: GCB_CONFIG if set, else the per-user file.
func ConfigPath() (string, error) {
	if p := strings.TrimSpace(os.Getenv(EnvConfigFile)); p != "" {
		return p, nil
	}
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// StylesDir is the directory whose <name>.yaml files add user style presets.
// It sits next to the config file.
func StylesDir() (string, error) {
	path, err := ConfigPath()
	if err != nil {
		return "", err
	}
	return filepath.Join(filepath.Dir(path), "styles"), nil
}

// Load reads the user config file (if present), applies defaults, and merges environment overrides.
func Load() (AppConfig, error) {
	path, err := ConfigPath()
	if err != nil {
		cfg := Defaults()
		applyEnvOverrides(&cfg)
		return cfg, err
	}
	return LoadFrom(path)
}

// LoadFrom is Load for an explicit file. A missing file yields the defaults;
// a file that does not parse is a configuration error.
func LoadFrom(path string) (AppConfig, error) {
	cfg := Defaults()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		var fileCfg AppConfig
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			return cfg, textlayout.ConfigErrorf("config %s: %v", path, err)
		}
		mergeInto(&cfg, &fileCfg)
	case !errors.Is(err, os.ErrNotExist):
		return cfg, fmt.Errorf("read config: %w", err)
	}
	applyEnvOverrides(&cfg)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Save writes the config YAML to the user config path.
func Save(cfg AppConfig) error {
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
	return os.WriteFile(path, data, 0o600)
}

// Validate checks the enumerated settings.
func (c AppConfig) Validate() error {
	if _, err := textlayout.ParseBreakMode(c.Render.Breaks); err != nil {
		return err
	}
	if c.Render.Anchor != "" {
		if _, err := textbox.ParseAnchor(c.Render.Anchor); err != nil {
			return err
		}
	}
	return nil
}

func mergeInto(dst *AppConfig, src *AppConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
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
	// fonts
	if strings.TrimSpace(src.Fonts.Default) != "" {
		dst.Fonts.Default = strings.TrimSpace(src.Fonts.Default)
	}
	if strings.TrimSpace(src.Fonts.CacheDir) != "" {
		dst.Fonts.CacheDir = strings.TrimSpace(src.Fonts.CacheDir)
	}
	if src.Fonts.TimeoutMs != 0 {
		dst.Fonts.TimeoutMs = src.Fonts.TimeoutMs
	}
	// render
	if strings.TrimSpace(src.Render.Style) != "" {
		dst.Render.Style = strings.TrimSpace(src.Render.Style)
	}
	if strings.TrimSpace(src.Render.Breaks) != "" {
		dst.Render.Breaks = strings.ToLower(strings.TrimSpace(src.Render.Breaks))
	}
	if strings.TrimSpace(src.Render.Anchor) != "" {
		dst.Render.Anchor = strings.TrimSpace(src.Render.Anchor)
	}
	if len(src.Styles) > 0 {
		if dst.Styles == nil {
			dst.Styles = make(map[string]textbox.Style, len(src.Styles))
		}
		for k, v := range src.Styles {
			dst.Styles[k] = v
		}
	}
}

func applyEnvOverrides(cfg *AppConfig) {
	// logging overrides
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogSource)); v != "" {
		cfg.Logging.Source = truthy(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
	// fonts
	if v := strings.TrimSpace(os.Getenv(EnvFont)); v != "" {
		cfg.Fonts.Default = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvFontCacheDir)); v != "" {
		cfg.Fonts.CacheDir = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvFontTimeoutMs)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Fonts.TimeoutMs = n
		}
	}
	// render
	if v := strings.TrimSpace(os.Getenv(EnvStyle)); v != "" {
		cfg.Render.Style = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvBreaks)); v != "" {
		cfg.Render.Breaks = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvAnchor)); v != "" {
		cfg.Render.Anchor = v
	}
}

func truthy(v string) bool {
	lv := strings.ToLower(v)
	return lv == "1" || lv == "true" || lv == "on" || lv == "yes"
}

var envKeys = map[string]string{
	"logging.level":    EnvLogLevel,
	"logging.format":   EnvLogFormat,
	"logging.source":   EnvLogSource,
	"logging.file":     EnvLogFile,
	"fonts.default":    EnvFont,
	"fonts.cache_dir":  EnvFontCacheDir,
	"fonts.timeout_ms": EnvFontTimeoutMs,
	"render.style":     EnvStyle,
	"render.breaks":    EnvBreaks,
	"render.anchor":    EnvAnchor,
}

// EnvOverrideFor returns the env var name if the field is overridden by environment variables.
func EnvOverrideFor(key string) (string, bool) {
	name, ok := envKeys[key]
	if !ok || os.Getenv(name) == "" {
		return "", false
	}
	return name, true
}

// Timeout returns the font fetch timeout, falling back to the default for non-positive values.
func (f FontsConfig) Timeout() time.Duration {
	if f.TimeoutMs <= 0 {
		return time.Duration(Defaults().Fonts.TimeoutMs) * time.Millisecond
	}
	return time.Duration(f.TimeoutMs) * time.Millisecond
}

// ResolveCacheDir returns CacheDir or the per-user cache directory.
func (f FontsConfig) ResolveCacheDir() (string, error) {
	if f.CacheDir != "" {
		return f.CacheDir, nil
	}
	base, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("resolve cache dir: %w", err)
	}
	return filepath.Join(base, "gocomicbox"), nil
}
