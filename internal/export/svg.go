/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"bytes"
	"fmt"
	"strconv"

	"gocomicbox/internal/textbox"
	"gocomicbox/internal/vector"
)

// SVG path data and geometry are written with two decimals.
const svgDecimals = 2

// SVG renders the box alone: one rect styled by the .box class and one
// path per line styled by the .text class. Glyphs are emitted as outlines
// so the document does not depend on installed fonts.
func SVG(c *textbox.Composition, st textbox.Style) []byte {
	g := c.Geometry
	var buf bytes.Buffer
	wf := func(format string, args ...any) { fmt.Fprintf(&buf, format, args...) }

	wf("<svg width=\"%d\" height=\"%d\" xmlns=\"http://www.w3.org/2000/svg\">\n", g.SVGWidth, g.SVGHeight)
	wf("  <defs>\n")
	if len(st.Box.Gradient) > 0 {
		wf("  <radialGradient id=\"box-fill\" cx=\"50%%\" cy=\"50%%\" r=\"50%%\">\n")
		for _, s := range st.Box.Gradient {
			wf("    <stop offset=\"%s%%\" style=\"stop-color:rgb(%d,%d,%d);stop-opacity:%.2f\" />\n",
				num(s.Offset*100), s.Color.R, s.Color.G, s.Color.B, s.Color.Opacity())
		}
		wf("  </radialGradient>\n")
	}
	if sh := st.Box.Shadow; sh.Enabled {
		wf("  <filter id=\"box-shadow\" x=\"-20%%\" y=\"-20%%\" width=\"140%%\" height=\"140%%\">\n")
		wf("    <feDropShadow dx=\"%s\" dy=\"%s\" stdDeviation=\"%s\" flood-color=\"%s\" flood-opacity=\"%.2f\" />\n",
			num(sh.DX), num(sh.DY), num(sh.Blur/2), sh.Color.Hex(), sh.Color.Opacity())
		wf("  </filter>\n")
	}
	wf("  </defs>\n")
	wf("  <style>\n")
	wf("      .text { %s }\n", escText(textCSS(st.Text)))
	wf("      .box { %s }\n", escText(boxCSS(st.Box)))
	wf("  </style>\n")

	rx := ""
	if st.Box.Radius > 0 {
		rx = fmt.Sprintf(" rx=\"%s\" ry=\"%s\"", num(st.Box.Radius), num(st.Box.Radius))
	}
	wf("  <rect x=\"%s\" y=\"%s\" width=\"%s\" height=\"%s\"%s class=\"box\"/>\n",
		num(g.BoxLeft), num(g.BoxTop), num(g.BoxWidth), num(g.BoxHeight), rx)
	for _, l := range c.Lines {
		if l.Path.Empty() {
			continue
		}
		wf("  <path class=\"text\" d=\"%s\"/>\n", escAttr(l.Path.SVGData(svgDecimals)))
	}
	wf("</svg>\n")
	return buf.Bytes()
}

func boxCSS(b textbox.BoxStyle) string {
	var buf bytes.Buffer
	if len(b.Gradient) > 0 {
		buf.WriteString("fill: url(#box-fill);")
	} else {
		fmt.Fprintf(&buf, "fill: %s; fill-opacity: %.2f;", b.Fill.Hex(), b.Fill.Opacity())
	}
	buf.WriteString(strokeCSS(b.Stroke))
	if b.Shadow.Enabled {
		buf.WriteString(" filter: url(#box-shadow);")
	}
	return buf.String()
}

func textCSS(t textbox.TextStyle) string {
	fill := t.Fill
	if fill.IsZero() {
		fill = vector.Black
	}
	return fmt.Sprintf("fill: %s; fill-opacity: %.2f;", fill.Hex(), fill.Opacity()) + strokeCSS(t.Outline)
}

func strokeCSS(s vector.Stroke) string {
	if !s.Enabled || s.Width <= 0 {
		return " stroke: none;"
	}
	return fmt.Sprintf(" stroke: %s; stroke-width: %s; stroke-opacity: %.2f;", s.Color.Hex(), num(s.Width), s.Color.Opacity())
}

func num(v float64) string {
	s := strconv.FormatFloat(vector.FloatRound(v, svgDecimals), 'f', -1, 64)
	if s == "-0" {
		return "0"
	}
	return s
}

func escAttr(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch ch {
		case '"':
			out = append(out, '&', 'q', 'u', 'o', 't', ';')
		case '&':
			out = append(out, '&', 'a', 'm', 'p', ';')
		case '<':
			out = append(out, '&', 'l', 't', ';')
		case '\n':
			out = append(out, ' ')
		case '\r':
			// skip
		default:
			out = append(out, ch)
		}
	}
	return string(out)
}

func escText(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch ch {
		case '&':
			out = append(out, '&', 'a', 'm', 'p', ';')
		case '<':
			out = append(out, '&', 'l', 't', ';')
		case '>':
			out = append(out, '&', 'g', 't', ';')
		default:
			out = append(out, ch)
		}
	}
	return string(out)
}
