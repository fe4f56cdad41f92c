/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package render runs jobs: it resolves fonts, styles and defaults from the
// user config, composes the box and writes the outputs.
package render

import (
	"context"
	"fmt"
	"image"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"gocomicbox/internal/config"
	"gocomicbox/internal/export"
	"gocomicbox/internal/job"
	applog "gocomicbox/internal/log"
	"gocomicbox/internal/textbox"
	"gocomicbox/internal/textlayout"
)

// Renderer is safe for concurrent use; jobs share the font cache.
type Renderer struct {
	cfg    config.AppConfig
	fonts  *textlayout.FontCache
	sheet  *textbox.StyleSheet
	decode func(path string) (image.Image, string, error)
}

// New returns a renderer using cfg for defaults and user styles. fonts may
// be nil, which loads builtin and file fonts only.
func New(cfg config.AppConfig, fonts *textlayout.FontCache) *Renderer {
	if fonts == nil {
		fonts = textlayout.NewFontCache(nil)
	}
	return &Renderer{
		cfg:    cfg,
		fonts:  fonts,
		sheet:  textbox.NewStyleSheet().WithUser(cfg.Styles),
		decode: export.DecodeImage,
	}
}

// Prepared is a composed job, not yet written.
type Prepared struct {
	Job         *job.Job
	Font        string
	Breaks      textlayout.BreakMode
	Style       textbox.Style
	Placement   textbox.Placement
	Composition *textbox.Composition
	Host        image.Image
}

// Prepare resolves the job against the config and lays out the box. The host
// image, if any, is decoded so the final position can be reported.
func (r *Renderer) Prepare(ctx context.Context, j *job.Job) (*Prepared, error) {
	lg := applog.WithOperation(applog.WithComponent("render"), "prepare")

	p := &Prepared{Job: j, Font: j.Font}
	if p.Font == "" {
		p.Font = r.cfg.Fonts.Default
	}
	mode := j.Breaks
	if mode == "" {
		mode = r.cfg.Render.Breaks
	}
	var err error
	if p.Breaks, err = textlayout.ParseBreakMode(mode); err != nil {
		return nil, err
	}

	name := j.Style
	if name == "" {
		name = r.cfg.Render.Style
	}
	st, ok := r.sheet.WithJob(j.Styles).Resolve(name)
	if !ok {
		return nil, textlayout.ConfigErrorf("unknown style %q", name)
	}
	p.Style = st

	if p.Placement, err = r.placement(j); err != nil {
		return nil, err
	}

	font, err := r.fonts.Get(ctx, p.Font)
	if err != nil {
		return nil, fmt.Errorf("load font %s: %w", p.Font, err)
	}
	if p.Composition, err = textbox.Compose(j.Text, j.Box, font, p.Breaks.Source()); err != nil {
		return nil, err
	}

	if j.Host != "" {
		img, format, err := r.decode(j.Host)
		if err != nil {
			return nil, err
		}
		p.Host = img
		lg.DebugContext(ctx, "host decoded", slog.String("format", format), slog.Int("w", img.Bounds().Dx()), slog.Int("h", img.Bounds().Dy()))
	}
	lg.DebugContext(ctx, "job prepared", slog.String("font", p.Font), slog.String("style", st.Name), slog.String("breaks", string(p.Breaks)))
	return p, nil
}

// placement: job setting, then the configured anchor, then the default.
func (r *Renderer) placement(j *job.Job) (textbox.Placement, error) {
	p, err := j.BoxPlacement()
	if err != nil || j.HasPlacement() || r.cfg.Render.Anchor == "" {
		return p, err
	}
	a, err := textbox.ParseAnchor(r.cfg.Render.Anchor)
	if err != nil {
		return textbox.Placement{}, err
	}
	return textbox.Placement{Anchor: a, OffsetX: p.OffsetX, OffsetY: p.OffsetY}, nil
}

// Render prepares j and writes every output.
func (r *Renderer) Render(ctx context.Context, j *job.Job) (*Prepared, error) {
	if len(j.Outputs) == 0 {
		return nil, textlayout.ConfigErrorf("job has no outputs")
	}
	p, err := r.Prepare(ctx, j)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := export.WriteAll(j.Outputs, p.Composition, p.Style, export.Options{Host: p.Host, Placement: p.Placement}); err != nil {
		return nil, err
	}
	applog.WithComponent("render").InfoContext(ctx, "job rendered", slog.Int("outputs", len(j.Outputs)), slog.Int("lines", len(p.Composition.Lines)))
	return p, nil
}

// RenderFiles loads and renders job files with at most workers in flight.
// The first failure cancels the jobs that have not started.
func (r *Renderer) RenderFiles(ctx context.Context, paths []string, workers int) error {
	return r.each(ctx, len(paths), workers, func(ctx context.Context, i int) error {
		path := paths[i]
		j, err := job.Load(path)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		if _, err := r.Render(applog.ContextWithJob(ctx, path), j); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		return nil
	})
}

// RenderJobs is RenderFiles for jobs already in memory, such as those built
// from a script. name labels each job in logs and errors.
func (r *Renderer) RenderJobs(ctx context.Context, jobs []*job.Job, name func(i int) string, workers int) error {
	return r.each(ctx, len(jobs), workers, func(ctx context.Context, i int) error {
		label := name(i)
		if _, err := r.Render(applog.ContextWithJob(ctx, label), jobs[i]); err != nil {
			return fmt.Errorf("%s: %w", label, err)
		}
		return nil
	})
}

func (r *Renderer) each(ctx context.Context, n, workers int, fn func(ctx context.Context, i int) error) error {
	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i := 0; i < n; i++ {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return fn(ctx, i)
		})
	}
	return g.Wait()
}
