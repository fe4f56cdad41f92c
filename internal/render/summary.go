/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package render

import (
	"encoding/json"
	"io"

	"gocomicbox/internal/textbox"
	"gocomicbox/internal/vector"
)

// Summary is the machine-readable layout of a prepared job.
type Summary struct {
	Font     string          `json:"font"`
	Style    string          `json:"style"`
	Breaks   string          `json:"breaks"`
	Options  textbox.Options `json:"options"`
	Box      Rect            `json:"box"`
	Text     Rect            `json:"text"`
	Width    int             `json:"svg_width"`
	Height   int             `json:"svg_height"`
	Overflow bool            `json:"overflow"`
	Lines    []LineSummary   `json:"lines"`
	Position *Position       `json:"position,omitempty"`
}

type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

type LineSummary struct {
	Text      string  `json:"text"`
	X         float64 `json:"x"`
	BaselineY float64 `json:"baseline_y"`
	Width     float64 `json:"width"`
	Forced    bool    `json:"forced,omitempty"`
}

// Position is where the box lands on the host image.
type Position struct {
	Anchor string `json:"anchor,omitempty"`
	Top    int    `json:"top"`
	Left   int    `json:"left"`
	HostW  int    `json:"host_w"`
	HostH  int    `json:"host_h"`
}

// Summary reports the geometry of p. Coordinates are rounded to 2 decimals.
func (p *Prepared) Summary() Summary {
	c := p.Composition
	g := c.Geometry
	s := Summary{
		Font:     p.Font,
		Style:    p.Style.Name,
		Breaks:   string(p.Breaks),
		Options:  c.Options,
		Box:      rect(g.BoxLeft, g.BoxTop, g.BoxWidth, g.BoxHeight),
		Text:     rect(g.TextLeft, g.TextTop, g.TextWidth, g.TextHeight),
		Width:    g.SVGWidth,
		Height:   g.SVGHeight,
		Overflow: c.Overflow,
		Lines:    make([]LineSummary, len(c.Lines)),
	}
	for i, l := range c.Lines {
		s.Lines[i] = LineSummary{
			Text:      l.Text,
			X:         vector.FloatRound(l.X, 2),
			BaselineY: vector.FloatRound(l.BaselineY, 2),
			Width:     vector.FloatRound(l.Width, 2),
			Forced:    l.Forced,
		}
	}
	if p.Host != nil {
		hb := p.Host.Bounds()
		top, left := p.Placement.Resolve(hb.Dx(), hb.Dy(), g.SVGWidth, g.SVGHeight)
		pos := &Position{Top: top, Left: left, HostW: hb.Dx(), HostH: hb.Dy()}
		if !p.Placement.Explicit {
			pos.Anchor = p.Placement.Anchor.String()
		}
		s.Position = pos
	}
	return s
}

// WriteJSON writes the summary as indented JSON.
func (s Summary) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}

func rect(x, y, w, h float64) Rect {
	return Rect{X: vector.FloatRound(x, 2), Y: vector.FloatRound(y, 2), W: vector.FloatRound(w, 2), H: vector.FloatRound(h, 2)}
}
