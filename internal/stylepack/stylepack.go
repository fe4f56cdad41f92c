/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * Licensed under the Apache License, Version 2.0.
 */

// Package stylepack shares box styles as zip archives of YAML files.
package stylepack

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	applog "gocomicbox/internal/log"
	"gocomicbox/internal/textbox"
	"gocomicbox/internal/textlayout"
)

const (
	manifestName = "stylepack.manifest.txt"
	stylesPrefix = "styles/"
	// maxStyleBytes bounds a single style file inside a pack.
	maxStyleBytes = 1 << 20
)

// Export writes styles into a zip at destZipPath, one styles/<name>.yaml per
// preset, plus a manifest at the root.
func Export(styles map[string]textbox.Style, destZipPath string) error {
	l := applog.WithOperation(applog.WithComponent("stylepack"), "export")
	if strings.TrimSpace(destZipPath) == "" {
		return errors.New("destZipPath is required")
	}
	if err := os.MkdirAll(filepath.Dir(destZipPath), 0o755); err != nil {
		return fmt.Errorf("ensure zip dir: %w", err)
	}
	// On Windows, remove destination if present before create
	_ = os.Remove(destZipPath)

	zf, err := os.Create(destZipPath)
	if err != nil {
		return fmt.Errorf("create zip: %w", err)
	}
	defer func() { _ = zf.Close() }()
	zw := zip.NewWriter(zf)

	names := make([]string, 0, len(styles))
	for n := range styles {
		names = append(names, n)
	}
	sort.Strings(names)

	manifest := fmt.Sprintf("gocomicbox style pack\nCreated: %s\nStyles: %s\n",
		time.Now().Format(time.RFC3339), strings.Join(names, ", "))
	w, err := zw.Create(manifestName)
	if err != nil {
		return fmt.Errorf("add manifest: %w", err)
	}
	if _, err := w.Write([]byte(manifest)); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}

	for _, n := range names {
		if !validName(n) {
			return textlayout.ConfigErrorf("style name %q cannot be used as a file name", n)
		}
		st := styles[n]
		st.Name = n
		data, err := yaml.Marshal(st)
		if err != nil {
			return fmt.Errorf("encode style %s: %w", n, err)
		}
		fw, err := zw.Create(stylesPrefix + n + ".yaml")
		if err != nil {
			return fmt.Errorf("add style %s: %w", n, err)
		}
		if _, err := fw.Write(data); err != nil {
			return fmt.Errorf("write style %s: %w", n, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("finish zip: %w", err)
	}
	l.Info("style pack exported", slog.Int("styles", len(names)), slog.String("zip", destZipPath))
	return nil
}

// Install extracts the styles of a pack into dir. Existing files are not
// overwritten; they are skipped and not counted. Every style is decoded
// before anything is written, so a broken pack installs nothing.
func Install(packZipPath, dir string) (int, error) {
	l := applog.WithOperation(applog.WithComponent("stylepack"), "install").With(slog.String("dir", dir))
	if strings.TrimSpace(dir) == "" {
		return 0, errors.New("dir is required")
	}
	if strings.TrimSpace(packZipPath) == "" {
		return 0, errors.New("packZipPath is required")
	}

	r, err := zip.OpenReader(packZipPath)
	if err != nil {
		return 0, fmt.Errorf("open pack: %w", err)
	}
	defer func() { _ = r.Close() }()

	type entry struct {
		name string
		data []byte
	}
	var entries []entry
	for _, f := range r.File {
		if f.Name == manifestName || f.FileInfo().IsDir() {
			continue
		}
		// Only flat styles/<name>.yaml entries are styles; anything else is ignored.
		rel := strings.TrimPrefix(f.Name, stylesPrefix)
		if rel == f.Name || path.Ext(rel) != ".yaml" || strings.Contains(rel, "/") {
			l.Debug("skip non-style entry", slog.String("entry", f.Name))
			continue
		}
		name := strings.TrimSuffix(rel, ".yaml")
		if !validName(name) {
			return 0, textlayout.ConfigErrorf("pack entry %q has an invalid name", f.Name)
		}
		data, err := readEntry(f)
		if err != nil {
			return 0, err
		}
		var st textbox.Style
		if err := yaml.Unmarshal(data, &st); err != nil {
			return 0, textlayout.ConfigErrorf("pack entry %s: %v", f.Name, err)
		}
		entries = append(entries, entry{name: name, data: data})
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("ensure styles dir: %w", err)
	}
	installed := 0
	for _, e := range entries {
		target := filepath.Join(dir, e.name+".yaml")
		if _, err := os.Stat(target); err == nil {
			l.Warn("skip existing file", slog.String("path", target))
			continue
		}
		if err := os.WriteFile(target, e.data, 0o644); err != nil {
			return installed, fmt.Errorf("write style: %w", err)
		}
		installed++
	}
	l.Info("style pack installed", slog.Int("files", installed))
	return installed, nil
}

// LoadDir reads every <name>.yaml in dir as a style named <name>. A missing
// dir yields no styles.
func LoadDir(dir string) (map[string]textbox.Style, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, err
	}
	out := make(map[string]textbox.Style, len(matches))
	for _, m := range matches {
		data, err := os.ReadFile(m)
		if err != nil {
			return nil, fmt.Errorf("read style: %w", err)
		}
		var st textbox.Style
		if err := yaml.Unmarshal(data, &st); err != nil {
			return nil, textlayout.ConfigErrorf("style %s: %v", m, err)
		}
		name := strings.TrimSuffix(filepath.Base(m), ".yaml")
		st.Name = name
		out[name] = st
	}
	return out, nil
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open entry %s: %w", f.Name, err)
	}
	defer func() { _ = rc.Close() }()
	data, err := io.ReadAll(io.LimitReader(rc, maxStyleBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read entry %s: %w", f.Name, err)
	}
	if len(data) > maxStyleBytes {
		return nil, textlayout.ConfigErrorf("pack entry %s is too large", f.Name)
	}
	return data, nil
}

// validName rejects names that would escape the target directory.
func validName(n string) bool {
	return n != "" && n != "." && n != ".." && !strings.ContainsAny(n, `/\:`)
}
