/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textlayout

import (
	"fmt"
	"sync"
	"unicode"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"

	"gocomicbox/internal/vector"
)

// SFNTFont is a TrueType/OpenType font usable as FontHandle. It is safe for
// concurrent use.
//
// All metrics are queried at ppem == unitsPerEm, which makes the sfnt package
// report raw font units (in 26.6 fixed point); scaling to the requested font
// size happens in float64 so long lines do not accumulate rounding.
type SFNTFont struct {
	id   string
	f    *sfnt.Font
	upem float64
	ppem fixed.Int26_6
	vm   VerticalMetrics
	bufs sync.Pool
}

// ParseSFNT parses font data. id is only used for logging and cache keys.
func ParseSFNT(id string, data []byte) (*SFNTFont, error) {
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse font %s: %w", id, err)
	}
	upem := f.UnitsPerEm()
	if upem == 0 {
		return nil, fmt.Errorf("parse font %s: zero units per em", id)
	}
	sf := &SFNTFont{
		id:   id,
		f:    f,
		upem: float64(upem),
		ppem: fixed.I(int(upem)),
	}
	sf.bufs.New = func() any { return new(sfnt.Buffer) }

	buf := sf.buffer()
	defer sf.bufs.Put(buf)
	m, err := f.Metrics(buf, sf.ppem, font.HintingNone)
	if err != nil {
		return nil, fmt.Errorf("font metrics %s: %w", id, err)
	}
	// sfnt reports the descent as a positive distance below the baseline.
	sf.vm = VerticalMetrics{
		Ascender:  units(m.Ascent) / sf.upem,
		Descender: -units(m.Descent) / sf.upem,
	}
	return sf, nil
}

// ID returns the source the font was loaded from.
func (sf *SFNTFont) ID() string { return sf.id }

// Name returns the full font name, or the id when the name table has none.
func (sf *SFNTFont) Name() string {
	buf := sf.buffer()
	defer sf.bufs.Put(buf)
	if n, err := sf.f.Name(buf, sfnt.NameIDFull); err == nil && n != "" {
		return n
	}
	return sf.id
}

func (sf *SFNTFont) VerticalMetrics() VerticalMetrics { return sf.vm }

// MeasureWidth sums glyph advances and pair kerning. Control characters have
// no advance.
func (sf *SFNTFont) MeasureWidth(s string, fontSize float64) float64 {
	buf := sf.buffer()
	defer sf.bufs.Put(buf)
	var end float64
	sf.walk(buf, s, func(_ sfnt.GlyphIndex, pen, adv float64) { end = pen + adv })
	return end * fontSize / sf.upem
}

// GlyphPath returns the outlines of s with the pen starting at (x, y), y
// being the baseline. Y grows downwards.
func (sf *SFNTFont) GlyphPath(s string, x, y, fontSize float64) vector.Path {
	buf := sf.buffer()
	defer sf.bufs.Put(buf)
	scale := fontSize / sf.upem
	var p vector.Path
	sf.walk(buf, s, func(g sfnt.GlyphIndex, pen, _ float64) {
		segs, err := sf.f.LoadGlyph(buf, g, sf.ppem, nil)
		if err != nil {
			return
		}
		ox := x + pen*scale
		pt := func(q fixed.Point26_6) (float64, float64) {
			return ox + units(q.X)*scale, y + units(q.Y)*scale
		}
		open := false
		for _, seg := range segs {
			switch seg.Op {
			case sfnt.SegmentOpMoveTo:
				if open {
					p.Close()
				}
				p.MoveTo(pt(seg.Args[0]))
				open = true
			case sfnt.SegmentOpLineTo:
				p.LineTo(pt(seg.Args[0]))
			case sfnt.SegmentOpQuadTo:
				x1, y1 := pt(seg.Args[0])
				x2, y2 := pt(seg.Args[1])
				p.QuadTo(x1, y1, x2, y2)
			case sfnt.SegmentOpCubeTo:
				x1, y1 := pt(seg.Args[0])
				x2, y2 := pt(seg.Args[1])
				x3, y3 := pt(seg.Args[2])
				p.CubicTo(x1, y1, x2, y2, x3, y3)
			}
		}
		if open {
			p.Close()
		}
	})
	return p
}

// walk calls fn for each drawable glyph of s with its pen position and
// advance in font units. Measuring and drawing share it so they agree.
func (sf *SFNTFont) walk(buf *sfnt.Buffer, s string, fn func(g sfnt.GlyphIndex, pen, adv float64)) {
	var pen float64
	var prev sfnt.GlyphIndex
	hasPrev := false
	for _, r := range s {
		if unicode.IsControl(r) {
			hasPrev = false
			continue
		}
		g, err := sf.f.GlyphIndex(buf, r)
		if err != nil {
			g = 0
		}
		if hasPrev {
			// Fonts without a kern table return an error; treat it as zero.
			if k, err := sf.f.Kern(buf, prev, g, sf.ppem, font.HintingNone); err == nil {
				pen += units(k)
			}
		}
		a, err := sf.f.GlyphAdvance(buf, g, sf.ppem, font.HintingNone)
		if err != nil {
			a = 0
		}
		adv := units(a)
		fn(g, pen, adv)
		pen += adv
		prev, hasPrev = g, true
	}
}

func (sf *SFNTFont) buffer() *sfnt.Buffer { return sf.bufs.Get().(*sfnt.Buffer) }

func units(v fixed.Int26_6) float64 { return float64(v) / 64 }
