/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textbox

import (
	"log/slog"

	applog "gocomicbox/internal/log"
	"gocomicbox/internal/textlayout"
	"gocomicbox/internal/vector"
)

// LinePath is one placed line with its glyph outlines in box coordinates.
type LinePath struct {
	Text      string
	X         float64
	BaselineY float64
	Width     float64
	Forced    bool
	Path      vector.Path
}

// Composition is a fully laid out box, ready for rendering.
type Composition struct {
	Options  Options
	Geometry Geometry
	Layout   textlayout.Result
	Lines    []LinePath
	// Overflow is set when a forced line is wider than the text area. The
	// box keeps its configured width; the line extends past the padding.
	Overflow bool
}

// Compose lays out text inside the box described by o. The box width is fixed,
// so a single layout pass is enough: the box height follows from the text.
func Compose(text string, o Options, font textlayout.FontHandle, src textlayout.BreakSource) (*Composition, error) {
	geo, err := Reserve(o)
	if err != nil {
		return nil, err
	}
	res, err := textlayout.Layout(textlayout.Request{
		Text:           text,
		FontSize:       o.FontSize,
		LineHeight:     o.LineHeight,
		AvailableWidth: geo.TextWidth,
		Left:           geo.TextLeft,
		Top:            geo.TextTop,
	}, src, font)
	if err != nil {
		return nil, err
	}
	geo = geo.Finish(res.TotalHeight)

	c := &Composition{Options: o, Geometry: geo, Layout: res, Lines: make([]LinePath, len(res.Lines))}
	for i, l := range res.Lines {
		c.Lines[i] = LinePath{
			Text:      l.Text,
			X:         res.Left,
			BaselineY: l.BaselineY,
			Width:     l.Width,
			Forced:    l.Forced,
			Path:      font.GlyphPath(l.Text, res.Left, l.BaselineY, o.FontSize),
		}
		if l.Forced {
			c.Overflow = true
		}
	}

	lg := applog.WithOperation(applog.WithComponent("textbox"), "compose")
	lg.Debug("box composed",
		slog.Int("lines", len(c.Lines)),
		slog.Float64("text_width", geo.TextWidth),
		slog.Float64("box_height", geo.BoxHeight),
		slog.Int("svg_w", geo.SVGWidth),
		slog.Int("svg_h", geo.SVGHeight),
	)
	if c.Overflow {
		lg.Warn("unbreakable text wider than box", slog.Float64("max_line_width", res.MaxWidth()), slog.Float64("text_width", geo.TextWidth))
	}
	return c, nil
}

// TextPath returns the outlines of all lines as one path.
func (c *Composition) TextPath() vector.Path {
	var p vector.Path
	for _, l := range c.Lines {
		p.Append(l.Path)
	}
	return p
}
