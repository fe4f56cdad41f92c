/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package textbox wraps a text layout into a padded, margined box and
// positions the box on a host image.
package textbox

import (
	"math"

	"gocomicbox/internal/textlayout"
)

// Options configures one box. Width, FontSize and LineHeight are required;
// padding and margin default to 0.
type Options struct {
	Width      float64 `yaml:"width" json:"width"`
	FontSize   float64 `yaml:"font_size" json:"font_size"`
	LineHeight float64 `yaml:"line_height" json:"line_height"`
	PaddingX   float64 `yaml:"padding_x" json:"padding_x"`
	PaddingY   float64 `yaml:"padding_y" json:"padding_y"`
	MarginX    float64 `yaml:"margin_x" json:"margin_x"`
	MarginY    float64 `yaml:"margin_y" json:"margin_y"`
}

// Validate reports the first invalid option as a configuration error.
func (o Options) Validate() error {
	switch {
	case o.Width <= 0:
		return textlayout.ConfigErrorf("width must be positive, got %g", o.Width)
	case o.FontSize <= 0:
		return textlayout.ConfigErrorf("font size must be positive, got %g", o.FontSize)
	case o.LineHeight <= 0:
		return textlayout.ConfigErrorf("line height must be positive, got %g", o.LineHeight)
	case o.PaddingX < 0 || o.PaddingY < 0:
		return textlayout.ConfigErrorf("padding must not be negative")
	case o.MarginX < 0 || o.MarginY < 0:
		return textlayout.ConfigErrorf("margin must not be negative")
	}
	if tw := o.Width - 2*o.MarginX - 2*o.PaddingX; tw <= 0 {
		return textlayout.ConfigErrorf("padding and margin leave no room for text (width %g, text width %g)", o.Width, tw)
	}
	return nil
}

// Geometry is the box frame derived from Options. The text-dependent fields
// (BoxHeight, TextHeight, SVGHeight) are zero until Finish.
type Geometry struct {
	BoxLeft, BoxTop     float64
	BoxWidth, BoxHeight float64

	TextLeft, TextTop     float64
	TextWidth, TextHeight float64

	// Integer canvas size of the rendered box including margins.
	SVGWidth, SVGHeight int

	paddingY, marginY float64
}

// Reserve computes everything that does not depend on the text.
func Reserve(o Options) (Geometry, error) {
	if err := o.Validate(); err != nil {
		return Geometry{}, err
	}
	boxWidth := o.Width - 2*o.MarginX
	return Geometry{
		BoxLeft:   o.MarginX,
		BoxTop:    o.MarginY,
		BoxWidth:  boxWidth,
		TextLeft:  o.MarginX + o.PaddingX,
		TextTop:   o.MarginY + o.PaddingY,
		TextWidth: boxWidth - 2*o.PaddingX,
		SVGWidth:  int(math.Ceil(o.Width)),
		paddingY:  o.PaddingY,
		marginY:   o.MarginY,
	}, nil
}

// Finish completes the geometry once the text height is known.
func (g Geometry) Finish(totalTextHeight float64) Geometry {
	g.TextHeight = totalTextHeight
	g.BoxHeight = totalTextHeight + 2*g.paddingY
	g.SVGHeight = int(math.Ceil(g.BoxHeight + 2*g.marginY))
	return g
}
