/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package textlayout breaks a paragraph into lines that fit a pixel width and
// places each line on a baseline.
//
// Text measurement, break opportunities and glyph outlines are consumed through
// small capability interfaces so the engine stays deterministic and can be
// driven by real fonts or by fixed-advance fakes in tests. All offsets are
// UTF-8 byte offsets into the input string.
package textlayout

import (
	"iter"

	"gocomicbox/internal/vector"
)

// Measurer returns the advance width of s at the given font size, in the
// same unit system as the layout box.
type Measurer interface {
	MeasureWidth(s string, fontSize float64) float64
}

// Candidate is a legal place to end a line: the line may cover text[start:Offset].
// Mandatory marks a hard break (e.g. after a newline).
type Candidate struct {
	Offset    int
	Mandatory bool
}

// BreakSource produces the break candidates of a text in strictly increasing
// order. The last candidate should equal len(text).
type BreakSource interface {
	Candidates(text string) iter.Seq[Candidate]
}

// VerticalMetrics are unitless ratios relative to the em size. Descender is
// negative for fonts that extend below the baseline.
type VerticalMetrics struct {
	Ascender  float64
	Descender float64
}

// FontHandle is a loaded font: it measures, reports vertical metrics and
// produces glyph outlines for a line positioned at (x, baseline y).
type FontHandle interface {
	Measurer
	VerticalMetrics() VerticalMetrics
	GlyphPath(s string, x, y, fontSize float64) vector.Path
}

// Request is the immutable input of one layout call.
type Request struct {
	Text           string
	FontSize       float64
	LineHeight     float64
	AvailableWidth float64
	Left, Top      float64
}

// Validate rejects non-positive sizes before any layout work is done.
func (r Request) Validate() error {
	if r.FontSize <= 0 {
		return ConfigErrorf("font size must be positive, got %g", r.FontSize)
	}
	if r.LineHeight <= 0 {
		return ConfigErrorf("line height must be positive, got %g", r.LineHeight)
	}
	if r.AvailableWidth <= 0 {
		return ConfigErrorf("available width must be positive, got %g", r.AvailableWidth)
	}
	return nil
}

// Layout breaks req.Text into lines and places them. Either a complete
// Result or an error is returned.
func Layout(req Request, src BreakSource, font FontHandle) (Result, error) {
	if err := req.Validate(); err != nil {
		return Result{}, err
	}
	if font == nil {
		return Result{}, ConfigErrorf("no font")
	}
	lines, err := BreakLines(req.Text, req.FontSize, req.AvailableWidth, src, font)
	if err != nil {
		return Result{}, err
	}
	return PlaceLines(lines, Placement{
		FontSize:   req.FontSize,
		LineHeight: req.LineHeight,
		Left:       req.Left,
		Top:        req.Top,
	}, font.VerticalMetrics())
}
