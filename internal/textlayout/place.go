/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textlayout

// Placement holds the parameters of PlaceLines. Left/Top is the top-left
// corner of the text area.
type Placement struct {
	FontSize   float64
	LineHeight float64
	Left, Top  float64
}

// PlacedLine is a line with its baseline.
type PlacedLine struct {
	Line
	BaselineY float64
	Index     int
}

// Result is the outcome of a layout call. All lines share Left as x origin.
type Result struct {
	Lines       []PlacedLine
	Left        float64
	TotalHeight float64
}

// MaxWidth returns the widest measured line.
func (r Result) MaxWidth() float64 {
	var w float64
	for _, l := range r.Lines {
		w = max(w, l.Width)
	}
	return w
}

// Forced reports whether any line is an oversized forced break.
func (r Result) Forced() bool {
	for _, l := range r.Lines {
		if l.Forced {
			return true
		}
	}
	return false
}

// PlaceLines assigns baselines: the first sits at Top + FontSize*Ascender,
// every following one exactly LineHeight below. TotalHeight is
// FontSize*(Ascender-Descender) + (n-1)*LineHeight, with n counted as at
// least one line.
func PlaceLines(lines []Line, p Placement, vm VerticalMetrics) (Result, error) {
	if p.FontSize <= 0 {
		return Result{}, ConfigErrorf("font size must be positive, got %g", p.FontSize)
	}
	if p.LineHeight <= 0 {
		return Result{}, ConfigErrorf("line height must be positive, got %g", p.LineHeight)
	}
	startY := p.Top + p.FontSize*vm.Ascender
	placed := make([]PlacedLine, len(lines))
	for i, l := range lines {
		placed[i] = PlacedLine{Line: l, BaselineY: startY + float64(i)*p.LineHeight, Index: i}
	}
	n := max(len(lines), 1)
	return Result{
		Lines:       placed,
		Left:        p.Left,
		TotalHeight: p.FontSize*(vm.Ascender-vm.Descender) + float64(n-1)*p.LineHeight,
	}, nil
}
