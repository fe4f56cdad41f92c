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
	"os"
	"path/filepath"
	"testing"
	"time"

	"gocomicbox/internal/textlayout"
)

// isolate points the config path at a file inside a temp dir.
func isolate(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if content != "" {
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	t.Setenv(EnvConfigFile, path)
	return path
}

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	isolate(t, "")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	d := Defaults()
	if cfg.Fonts != d.Fonts || cfg.Render != d.Render || cfg.Logging != d.Logging {
		t.Fatalf("got %+v, want defaults %+v", cfg, d)
	}
}

func TestLoadFromMergesFile(t *testing.T) {
	path := isolate(t, `
logging:
  level: DEBUG
fonts:
  default: builtin:go-mono
  timeout_ms: 500
render:
  breaks: Whitespace
  anchor: se
styles:
  Mine:
    box:
      fill: "#102030"
`)
	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "console" {
		t.Fatalf("logging: %+v", cfg.Logging)
	}
	if cfg.Fonts.Default != "builtin:go-mono" || cfg.Fonts.Timeout() != 500*time.Millisecond {
		t.Fatalf("fonts: %+v", cfg.Fonts)
	}
	if cfg.Render.Breaks != "whitespace" || cfg.Render.Anchor != "se" || cfg.Render.Style != "Caption" {
		t.Fatalf("render: %+v", cfg.Render)
	}
	if st, ok := cfg.Styles["Mine"]; !ok || st.Box.Fill.Hex() != "#102030" {
		t.Fatalf("styles: %+v", cfg.Styles)
	}
}

func TestLoadFromRejectsBadValues(t *testing.T) {
	for name, content := range map[string]string{
		"yaml":   "logging: [",
		"breaks": "render: {breaks: hyphenate}",
		"anchor": "render: {anchor: middle}",
	} {
		path := isolate(t, content)
		if _, err := LoadFrom(path); !errors.Is(err, textlayout.ErrConfiguration) {
			t.Fatalf("%s: want configuration error, got %v", name, err)
		}
	}
}

func TestMergeIncludesLogging(t *testing.T) {
	dst := Defaults()
	src := Defaults()
	src.Logging.Level = "debug"
	src.Logging.Format = "json"
	src.Logging.Source = true
	src.Logging.File = "C:/tmp/gcb.log"
	mergeInto(&dst, &src)
	if dst.Logging.Level != "debug" || dst.Logging.Format != "json" || !dst.Logging.Source || dst.Logging.File != "C:/tmp/gcb.log" {
		t.Fatalf("logging fields not merged correctly: %#v", dst.Logging)
	}
}

func TestEnvOverridesLogging(t *testing.T) {
	isolate(t, "")
	t.Setenv(EnvLogLevel, "error")
	t.Setenv(EnvLogFormat, "json")
	t.Setenv(EnvLogSource, "1")
	t.Setenv(EnvLogFile, "X:/gcb.log")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Logging.Level != "error" || cfg.Logging.Format != "json" || !cfg.Logging.Source || cfg.Logging.File != "X:/gcb.log" {
		t.Fatalf("env overrides not applied to logging: %#v", cfg.Logging)
	}
}

func TestEnvOverridesFontsAndRender(t *testing.T) {
	isolate(t, "fonts: {default: builtin:go-bold}\n")
	t.Setenv(EnvFont, "https://fonts.example/a.ttf")
	t.Setenv(EnvFontCacheDir, "/var/cache/gcb")
	t.Setenv(EnvFontTimeoutMs, "250")
	t.Setenv(EnvAnchor, "NW")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Fonts.Default != "https://fonts.example/a.ttf" || cfg.Fonts.CacheDir != "/var/cache/gcb" || cfg.Fonts.TimeoutMs != 250 {
		t.Fatalf("fonts: %+v", cfg.Fonts)
	}
	if cfg.Render.Anchor != "NW" {
		t.Fatalf("anchor: %q", cfg.Render.Anchor)
	}
	if dir, err := cfg.Fonts.ResolveCacheDir(); err != nil || dir != "/var/cache/gcb" {
		t.Fatalf("cache dir: %q %v", dir, err)
	}
	if name, ok := EnvOverrideFor("fonts.default"); !ok || name != EnvFont {
		t.Fatalf("EnvOverrideFor(fonts.default) = %q, %v", name, ok)
	}
	if _, ok := EnvOverrideFor("render.style"); ok {
		t.Fatalf("render.style is not overridden")
	}
	if _, ok := EnvOverrideFor("nope"); ok {
		t.Fatalf("unknown key")
	}
}

func TestTimeoutFallback(t *testing.T) {
	if got := (FontsConfig{}).Timeout(); got != 15*time.Second {
		t.Fatalf("Timeout() = %v", got)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := isolate(t, "")
	cfg := Defaults()
	cfg.Render.Style = "Speech"
	if err := Save(cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if got.Render.Style != "Speech" {
		t.Fatalf("style not persisted: %+v", got.Render)
	}
}

func TestStylesDirNextToConfig(t *testing.T) {
	path := isolate(t, "")
	dir, err := StylesDir()
	if err != nil {
		t.Fatal(err)
	}
	if dir != filepath.Join(filepath.Dir(path), "styles") {
		t.Fatalf("StylesDir() = %q", dir)
	}
}
