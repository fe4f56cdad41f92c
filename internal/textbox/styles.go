/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textbox

import "gocomicbox/internal/vector"

// GradientStop is one stop of the radial box fill; Offset runs from 0
// (center) to 1 (edge).
type GradientStop struct {
	Offset float64      `yaml:"offset" json:"offset"`
	Color  vector.Color `yaml:"color" json:"color"`
}

// Shadow is a drop shadow offset by DX/DY and blurred by Blur pixels.
type Shadow struct {
	DX      float64      `yaml:"dx" json:"dx"`
	DY      float64      `yaml:"dy" json:"dy"`
	Blur    float64      `yaml:"blur" json:"blur"`
	Color   vector.Color `yaml:"color" json:"color"`
	Enabled bool         `yaml:"enabled" json:"enabled"`
}

// BoxStyle paints the box rectangle. A non-empty Gradient replaces Fill.
type BoxStyle struct {
	Fill     vector.Color   `yaml:"fill" json:"fill"`
	Gradient []GradientStop `yaml:"gradient,omitempty" json:"gradient,omitempty"`
	Stroke   vector.Stroke  `yaml:"stroke" json:"stroke"`
	Radius   float64        `yaml:"radius" json:"radius"`
	Shadow   Shadow         `yaml:"shadow" json:"shadow"`
}

// TextStyle paints the glyph outlines.
type TextStyle struct {
	Fill    vector.Color  `yaml:"fill" json:"fill"`
	Outline vector.Stroke `yaml:"outline" json:"outline"`
}

// Style is a named box + text preset used in lettering.
type Style struct {
	Name string    `yaml:"name" json:"name"`
	Box  BoxStyle  `yaml:"box" json:"box"`
	Text TextStyle `yaml:"text" json:"text"`
}

var builtinStyles = map[string]Style{
	// Yellow radial gradient with a rounded outline and a soft shadow.
	"Caption": {
		Name: "Caption",
		Box: BoxStyle{
			Fill: vector.Color{R: 255, G: 233, B: 90, A: 255},
			Gradient: []GradientStop{
				{Offset: 0, Color: vector.Color{R: 245, G: 230, B: 147, A: 255}},
				{Offset: 0.4, Color: vector.Color{R: 255, G: 233, B: 90, A: 255}},
				{Offset: 0.8, Color: vector.Color{R: 227, G: 204, B: 92, A: 255}},
			},
			Stroke: vector.Stroke{Color: vector.Black, Width: 1, Enabled: true},
			Radius: 10,
			Shadow: Shadow{DX: 10, DY: 10, Blur: 8, Color: vector.Color{A: 128}, Enabled: true},
		},
		Text: TextStyle{Fill: vector.Black},
	},
	"Speech": {
		Name: "Speech",
		Box: BoxStyle{
			Fill:   vector.White,
			Stroke: vector.Stroke{Color: vector.Black, Width: 2, Enabled: true},
			Radius: 24,
		},
		Text: TextStyle{Fill: vector.Black},
	},
	"Narration": {
		Name: "Narration",
		Box: BoxStyle{
			Fill:   vector.Color{R: 245, G: 240, B: 220, A: 255},
			Stroke: vector.Stroke{Color: vector.Black, Width: 1, Enabled: true},
			Shadow: Shadow{DX: 3, DY: 3, Blur: 2, Color: vector.Color{A: 128}, Enabled: true},
		},
		Text: TextStyle{Fill: vector.Black},
	},
}

// DefaultStyle is used when a job names none.
const DefaultStyle = "Caption"

// GetStyle returns a builtin preset by name.
func GetStyle(name string) (Style, bool) { s, ok := builtinStyles[name]; return s, ok }

// ListStyles lists the builtin preset names in stable order.
func ListStyles() []string { return []string{"Caption", "Speech", "Narration"} }
