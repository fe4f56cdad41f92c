/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"gocomicbox/internal/config"
	"gocomicbox/internal/crash"
	"gocomicbox/internal/job"
	applog "gocomicbox/internal/log"
	"gocomicbox/internal/render"
	"gocomicbox/internal/script"
	"gocomicbox/internal/storage"
	"gocomicbox/internal/stylepack"
	"gocomicbox/internal/textbox"
	"gocomicbox/internal/textlayout"
	"gocomicbox/internal/version"
)

func usage() {
	fmt.Println("Go Comic Box — text box layout for comic panels")
	fmt.Printf("Version: %s\n", version.String())
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  gocomicbox version|-v|--version        Show version")
	fmt.Println("  gocomicbox render <job.yaml>...         Render jobs to their outputs")
	fmt.Println("  gocomicbox layout <job.yaml>            Print the box layout as JSON")
	fmt.Println("  gocomicbox letter <script> <tmpl.yaml> [<outdir>]")
	fmt.Println("                                          Render every dialogue and caption of a script")
	fmt.Println("  gocomicbox styles                       List style presets")
	fmt.Println("  gocomicbox styles export <pack.zip>     Write all presets into a style pack")
	fmt.Println("  gocomicbox styles install <pack.zip>    Install a style pack for this user")
	fmt.Println("  gocomicbox config                       Show the effective configuration")
	fmt.Println("  gocomicbox fonts list                   List cached remote fonts")
	fmt.Println("  gocomicbox fonts fetch <url>            Download a font into the cache")
	fmt.Println("  gocomicbox fonts evict [<url>]          Drop one or all cached fonts")
}

func main() {
	cfg, cfgErr := config.Load()
	applog.Init(applog.Options{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		AddSource: cfg.Logging.Source,
		File:      cfg.Logging.File,
	})
	l := applog.WithComponent("cli")
	if cfgErr != nil {
		l.Warn("config not loaded, using defaults", slog.Any("err", cfgErr))
	}
	stylesDir, _ := config.StylesDir()
	if stylesDir != "" {
		cfg.Styles = withPackStyles(l, cfg.Styles, stylesDir)
	}

	args := os.Args
	cacheDir, _ := cfg.Fonts.ResolveCacheDir()
	rc := crash.Context{Dir: cacheDir, Args: args[1:]}
	if len(args) > 2 && (args[1] == "render" || args[1] == "layout") {
		rc.Job = args[2]
	}
	defer crash.Recover(rc)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	l.Debug("start", slog.Int("args", len(args)))
	if len(args) < 2 {
		usage()
		return
	}
	switch args[1] {
	case "version", "--version", "-v":
		fmt.Println("Go Comic Box")
		fmt.Println(version.String())
		return
	case "render":
		if len(args) < 3 {
			fmt.Println("render requires <job.yaml>")
			usage()
			os.Exit(2)
		}
		fonts, closeFonts := openFonts(cfg, cacheDir)
		defer closeFonts()
		r := render.New(cfg, fonts)
		if err := r.RenderFiles(ctx, args[2:], runtime.NumCPU()); err != nil {
			fail(l, "render failed", err)
		}
		return
	case "layout":
		if len(args) < 3 {
			fmt.Println("layout requires <job.yaml>")
			usage()
			os.Exit(2)
		}
		fonts, closeFonts := openFonts(cfg, cacheDir)
		defer closeFonts()
		j, err := job.Load(args[2])
		if err != nil {
			fail(l, "load job failed", err)
		}
		p, err := render.New(cfg, fonts).Prepare(applog.ContextWithJob(ctx, args[2]), j)
		if err != nil {
			fail(l, "layout failed", err)
		}
		if err := p.Summary().WriteJSON(os.Stdout); err != nil {
			fail(l, "write summary failed", err)
		}
		return
	case "letter":
		if len(args) < 4 {
			fmt.Println("letter requires <script> and <template.yaml>")
			usage()
			os.Exit(2)
		}
		fonts, closeFonts := openFonts(cfg, cacheDir)
		defer closeFonts()
		letter(ctx, l, render.New(cfg, fonts), cfg, args[2], args[3], args[4:])
		return
	case "styles":
		if len(args) > 2 {
			stylesCmd(l, cfg, stylesDir, args[2:])
			return
		}
		sheet := textbox.NewStyleSheet().WithUser(cfg.Styles)
		for _, name := range sheet.Names() {
			src := "builtin"
			if _, ok := cfg.Styles[name]; ok {
				src = "user"
			}
			marker := " "
			if name == cfg.Render.Style {
				marker = "*"
			}
			fmt.Printf("%s %-16s %s\n", marker, name, src)
		}
		return
	case "config":
		path, _ := config.ConfigPath()
		fmt.Println("Config file:", path)
		for _, kv := range [][2]string{
			{"logging.level", cfg.Logging.Level},
			{"logging.format", cfg.Logging.Format},
			{"logging.file", cfg.Logging.File},
			{"fonts.default", cfg.Fonts.Default},
			{"fonts.cache_dir", cacheDir},
			{"fonts.timeout_ms", fmt.Sprint(cfg.Fonts.TimeoutMs)},
			{"render.style", cfg.Render.Style},
			{"render.breaks", cfg.Render.Breaks},
			{"render.anchor", cfg.Render.Anchor},
		} {
			if env, ok := config.EnvOverrideFor(kv[0]); ok {
				fmt.Printf("  %-18s %s (from %s)\n", kv[0], kv[1], env)
			} else {
				fmt.Printf("  %-18s %s\n", kv[0], kv[1])
			}
		}
		return
	case "fonts":
		fontsCmd(ctx, l, cfg, cacheDir, args[2:])
		return
	}

	usage()
}

func letter(ctx context.Context, l *slog.Logger, r *render.Renderer, cfg config.AppConfig, scriptPath, tmplPath string, rest []string) {
	data, err := os.ReadFile(scriptPath)
	if err != nil {
		fail(l, "read script failed", err)
	}
	s, errs := script.Parse(string(data))
	for _, e := range errs {
		l.Warn("script line skipped", slog.String("script", scriptPath), slog.Int("line", e.Line), slog.String("err", e.Message))
	}
	tmpl, err := job.Load(tmplPath)
	if err != nil {
		fail(l, "load template failed", err)
	}
	outDir := filepath.Join(tmpl.Dir, "lettering")
	if len(rest) > 0 {
		outDir = rest[0]
	}
	var formats []string
	for _, o := range tmpl.Outputs {
		formats = append(formats, filepath.Ext(o))
	}
	sheet := textbox.NewStyleSheet().WithUser(cfg.Styles).WithJob(tmpl.Styles)
	jobs := script.Lettering{
		Template: *tmpl,
		OutDir:   outDir,
		Formats:  formats,
		Styles:   sheet.Names(),
	}.Jobs(s)
	name := func(i int) string { return fmt.Sprintf("%s:%d", scriptPath, s.Blocks[i].Line) }
	if err := r.RenderJobs(ctx, jobs, name, runtime.NumCPU()); err != nil {
		fail(l, "lettering failed", err)
	}
	fmt.Printf("Lettered %d boxes into %s\n", len(jobs), outDir)
}

func stylesCmd(l *slog.Logger, cfg config.AppConfig, stylesDir string, args []string) {
	if len(args) < 2 {
		usage()
		os.Exit(2)
	}
	switch args[0] {
	case "export":
		sheet := textbox.NewStyleSheet().WithUser(cfg.Styles)
		all := make(map[string]textbox.Style)
		for _, name := range sheet.Names() {
			if st, ok := sheet.Resolve(name); ok {
				all[name] = st
			}
		}
		if err := stylepack.Export(all, args[1]); err != nil {
			fail(l, "export failed", err)
		}
		fmt.Printf("Exported %d styles to %s\n", len(all), args[1])
	case "install":
		n, err := stylepack.Install(args[1], stylesDir)
		if err != nil {
			fail(l, "install failed", err)
		}
		fmt.Printf("Installed %d styles into %s\n", n, stylesDir)
	default:
		usage()
		os.Exit(2)
	}
}

// withPackStyles adds installed pack styles; presets from config.yaml win.
func withPackStyles(l *slog.Logger, styles map[string]textbox.Style, dir string) map[string]textbox.Style {
	pack, err := stylepack.LoadDir(dir)
	if err != nil {
		l.Warn("style packs not loaded", slog.String("dir", dir), slog.Any("err", err))
		return styles
	}
	for name, st := range styles {
		pack[name] = st
	}
	return pack
}

func fontsCmd(ctx context.Context, l *slog.Logger, cfg config.AppConfig, cacheDir string, args []string) {
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}
	store, err := storage.OpenFontStore(cacheDir)
	if err != nil {
		fail(l, "open font cache failed", err)
	}
	defer func() { _ = store.Close() }()

	switch args[0] {
	case "list":
		entries, err := store.List(ctx)
		if err != nil {
			fail(l, "list failed", err)
		}
		for _, e := range entries {
			fmt.Printf("%10d  %s  %s\n", e.Size, e.LastAccess.Format("2006-01-02 15:04"), e.URL)
		}
		total, _ := store.TotalBytes(ctx)
		fmt.Printf("%d fonts, %d bytes in %s\n", len(entries), total, storage.CachePath(cacheDir))
	case "fetch":
		if len(args) < 2 {
			fmt.Println("fonts fetch requires <url>")
			os.Exit(2)
		}
		b, err := storage.NewFetcher(store, cfg.Fonts.Timeout()).Fetch(ctx, args[1])
		if err != nil {
			fail(l, "fetch failed", err)
		}
		f, err := textlayout.ParseSFNT(args[1], b)
		if err != nil {
			fail(l, "not a usable font", err)
		}
		fmt.Printf("Cached %s (%d bytes)\n", f.Name(), len(b))
	case "evict":
		url := ""
		if len(args) > 1 {
			url = args[1]
		}
		n, err := store.Evict(ctx, url)
		if err != nil {
			fail(l, "evict failed", err)
		}
		fmt.Printf("Evicted %d fonts\n", n)
	default:
		usage()
		os.Exit(2)
	}
}

// openFonts builds the font cache; remote fonts go through the SQLite store
// when it can be opened and are downloaded uncached otherwise.
func openFonts(cfg config.AppConfig, cacheDir string) (*textlayout.FontCache, func()) {
	var store *storage.FontStore
	if cacheDir != "" {
		s, err := storage.OpenFontStore(cacheDir)
		if err != nil {
			applog.WithComponent("cli").Warn("font cache unavailable", slog.String("dir", filepath.Clean(cacheDir)), slog.Any("err", err))
		} else {
			store = s
		}
	}
	fetcher := storage.NewFetcher(store, cfg.Fonts.Timeout())
	closeFn := func() {
		if store != nil {
			_ = store.Close()
		}
	}
	return textlayout.NewFontCache(textlayout.NewLoader(fetcher)), closeFn
}

// fail reports err and exits: 2 for configuration errors, 1 otherwise.
func fail(l *slog.Logger, msg string, err error) {
	l.Error(msg, slog.Any("err", err))
	fmt.Println("Error:", err)
	if errors.Is(err, textlayout.ErrConfiguration) {
		os.Exit(2)
	}
	os.Exit(1)
}
