/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"fmt"
	"io"
	"os"

	"github.com/jung-kurt/gofpdf"

	"gocomicbox/internal/textbox"
	"gocomicbox/internal/vector"
)

// PDF writes the box as a single-page vector PDF. One layout unit maps to
// one point; the page has the box canvas size.
//
// Coordinates:
// - Page origin is top-left, as in the layout.
// - Glyphs are drawn as filled outlines, no fonts are embedded.
// - Shadows are drawn unblurred at the shadow's opacity.
// - A radial gradient is reduced to its first and last stop.
func PDF(w io.Writer, c *textbox.Composition, st textbox.Style) error {
	pdf := newBoxPDF(c, st)
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

// WritePDF is PDF to a file.
func WritePDF(path string, c *textbox.Composition, st textbox.Style) error {
	if err := ensureDir(path); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := PDF(f, c, st); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func newBoxPDF(c *textbox.Composition, st textbox.Style) *gofpdf.Fpdf {
	g := c.Geometry
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: float64(max(g.SVGWidth, 1)), Ht: float64(max(g.SVGHeight, 1))},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCreator("gocomicbox", true)
	pdf.AddPage()

	box := st.Box
	r := min(box.Radius, g.BoxWidth/2, g.BoxHeight/2)

	if sh := box.Shadow; sh.Enabled {
		pdf.SetAlpha(sh.Color.Opacity(), "Normal")
		setFillColor(pdf, sh.Color)
		roundedRect(pdf, g.BoxLeft+sh.DX, g.BoxTop+sh.DY, g.BoxWidth, g.BoxHeight, r, "F")
		pdf.SetAlpha(1, "Normal")
	}

	if len(box.Gradient) > 1 {
		first, last := box.Gradient[0].Color, box.Gradient[len(box.Gradient)-1].Color
		pdf.ClipRoundedRect(g.BoxLeft, g.BoxTop, g.BoxWidth, g.BoxHeight, r, false)
		pdf.RadialGradient(g.BoxLeft, g.BoxTop, g.BoxWidth, g.BoxHeight,
			int(first.R), int(first.G), int(first.B), int(last.R), int(last.G), int(last.B),
			0.5, 0.5, 0.5, 0.5, 0.5)
		pdf.ClipEnd()
	} else {
		fill := box.Fill
		if len(box.Gradient) == 1 {
			fill = box.Gradient[0].Color
		}
		if fill.A > 0 {
			pdf.SetAlpha(fill.Opacity(), "Normal")
			setFillColor(pdf, fill)
			roundedRect(pdf, g.BoxLeft, g.BoxTop, g.BoxWidth, g.BoxHeight, r, "F")
			pdf.SetAlpha(1, "Normal")
		}
	}
	if s := box.Stroke; s.Enabled && s.Width > 0 {
		setDrawColor(pdf, s.Color)
		pdf.SetLineWidth(s.Width)
		roundedRect(pdf, g.BoxLeft, g.BoxTop, g.BoxWidth, g.BoxHeight, r, "D")
	}

	fill := st.Text.Fill
	if fill.IsZero() {
		fill = vector.Black
	}
	setFillColor(pdf, fill)
	style := "F"
	if o := st.Text.Outline; o.Enabled && o.Width > 0 {
		setDrawColor(pdf, o.Color)
		pdf.SetLineWidth(o.Width)
		style = "FD"
	}
	for _, l := range c.Lines {
		if !l.Path.Empty() {
			drawPath(pdf, l.Path, style)
		}
	}
	return pdf
}

func drawPath(pdf *gofpdf.Fpdf, p vector.Path, style string) {
	for _, c := range p.Cmds {
		d := c.Data
		switch c.Op {
		case vector.MoveTo:
			pdf.MoveTo(d[0], d[1])
		case vector.LineTo:
			pdf.LineTo(d[0], d[1])
		case vector.QuadTo:
			pdf.CurveTo(d[0], d[1], d[2], d[3])
		case vector.CubicTo:
			pdf.CurveBezierCubicTo(d[0], d[1], d[2], d[3], d[4], d[5])
		case vector.Close:
			pdf.ClosePath()
		}
	}
	pdf.DrawPath(style)
}

func setDrawColor(pdf *gofpdf.Fpdf, c vector.Color) {
	pdf.SetDrawColor(int(c.R), int(c.G), int(c.B))
}

func setFillColor(pdf *gofpdf.Fpdf, c vector.Color) {
	pdf.SetFillColor(int(c.R), int(c.G), int(c.B))
}

// roundedRect draws a rectangle with all four corners rounded. r <= 0 gives
// a plain rectangle.
func roundedRect(pdf *gofpdf.Fpdf, x, y, w, h, r float64, style string) {
	if r <= 0 {
		pdf.Rect(x, y, w, h, style)
		return
	}
	pdf.RoundedRect(x, y, w, h, r, "1234", style)
}
