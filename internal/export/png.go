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
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"math"
	"os"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/rasterizer"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"gocomicbox/internal/textbox"
	"gocomicbox/internal/vector"
)

// Raster renders the box at one pixel per layout unit. The image has the
// box canvas size (Geometry.SVGWidth x SVGHeight) and a transparent
// background.
func Raster(c *textbox.Composition, st textbox.Style) *image.RGBA {
	g := c.Geometry
	w, h := max(g.SVGWidth, 1), max(g.SVGHeight, 1)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	box := boxShape(g, st.Box.Radius)

	if sh := st.Box.Shadow; sh.Enabled {
		shadow := rasterize(w, h, func(ctx *canvas.Context) {
			ctx.SetFillColor(nrgba(sh.Color))
			ctx.SetStrokeColor(canvas.Transparent)
			ctx.DrawPath(g.BoxLeft+sh.DX, g.BoxTop+sh.DY, box)
		})
		draw.Draw(dst, dst.Bounds(), blur(shadow, sh.Blur), image.Point{}, draw.Over)
	}

	// The fill goes through a mask so a gradient can follow the rounded shape.
	mask := rasterize(w, h, func(ctx *canvas.Context) {
		ctx.SetFillColor(color.White)
		ctx.SetStrokeColor(canvas.Transparent)
		ctx.DrawPath(g.BoxLeft, g.BoxTop, box)
	})
	var fill image.Image = image.NewUniform(nrgba(st.Box.Fill))
	if len(st.Box.Gradient) > 0 {
		fill = radialGradient{
			stops: st.Box.Gradient,
			cx:    g.BoxLeft + g.BoxWidth/2,
			cy:    g.BoxTop + g.BoxHeight/2,
			rx:    g.BoxWidth / 2,
			ry:    g.BoxHeight / 2,
		}
	}
	draw.DrawMask(dst, dst.Bounds(), fill, image.Point{}, mask, image.Point{}, draw.Over)

	top := rasterize(w, h, func(ctx *canvas.Context) {
		if s := st.Box.Stroke; s.Enabled && s.Width > 0 {
			ctx.SetFillColor(canvas.Transparent)
			ctx.SetStrokeColor(nrgba(s.Color))
			ctx.SetStrokeWidth(s.Width)
			ctx.DrawPath(g.BoxLeft, g.BoxTop, box)
		}
		text := c.TextPath()
		if text.Empty() {
			return
		}
		fillCol := st.Text.Fill
		if fillCol.IsZero() {
			fillCol = vector.Black
		}
		ctx.SetFillColor(nrgba(fillCol))
		if o := st.Text.Outline; o.Enabled && o.Width > 0 {
			ctx.SetStrokeColor(nrgba(o.Color))
			ctx.SetStrokeWidth(o.Width)
		} else {
			ctx.SetStrokeColor(canvas.Transparent)
		}
		ctx.DrawPath(0, 0, canvasPath(text))
	})
	draw.Draw(dst, dst.Bounds(), top, image.Point{}, draw.Over)
	return dst
}

// Composite draws box onto a copy of host with its top-left corner at
// (left, top) relative to the host origin. Parts outside the host are clipped.
func Composite(host, box image.Image, top, left int) *image.RGBA {
	hb := host.Bounds()
	dst := image.NewRGBA(hb)
	draw.Draw(dst, hb, host, hb.Min, draw.Src)
	bb := box.Bounds()
	r := image.Rectangle{Min: hb.Min.Add(image.Pt(left, top)), Max: hb.Min.Add(image.Pt(left+bb.Dx(), top+bb.Dy()))}
	draw.Draw(dst, r, box, bb.Min, draw.Over)
	return dst
}

// DecodeImage reads a PNG, JPEG, GIF, BMP or WebP file.
func DecodeImage(path string) (image.Image, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("open image: %w", err)
	}
	defer func() { _ = f.Close() }()
	img, format, err := image.Decode(f)
	if err != nil {
		return nil, "", fmt.Errorf("decode image %s: %w", path, err)
	}
	return img, format, nil
}

// WritePNG encodes img to path.
func WritePNG(path string, img image.Image) error {
	if err := ensureDir(path); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create png: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode png: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close png: %w", err)
	}
	return nil
}

func rasterize(w, h int, paint func(ctx *canvas.Context)) *image.RGBA {
	cv := canvas.New(float64(w), float64(h))
	ctx := canvas.NewContext(cv)
	ctx.SetCoordSystem(canvas.CartesianIV)
	paint(ctx)
	return rasterizer.Draw(cv, canvas.DPMM(1), canvas.DefaultColorSpace)
}

func boxShape(g textbox.Geometry, radius float64) *canvas.Path {
	r := min(radius, g.BoxWidth/2, g.BoxHeight/2)
	if r <= 0 {
		return canvas.Rectangle(g.BoxWidth, g.BoxHeight)
	}
	return canvas.RoundedRectangle(g.BoxWidth, g.BoxHeight, r)
}

func canvasPath(p vector.Path) *canvas.Path {
	out := &canvas.Path{}
	for _, c := range p.Cmds {
		d := c.Data
		switch c.Op {
		case vector.MoveTo:
			out.MoveTo(d[0], d[1])
		case vector.LineTo:
			out.LineTo(d[0], d[1])
		case vector.QuadTo:
			out.QuadTo(d[0], d[1], d[2], d[3])
		case vector.CubicTo:
			out.CubeTo(d[0], d[1], d[2], d[3], d[4], d[5])
		case vector.Close:
			out.Close()
		}
	}
	return out
}

// blur approximates a blur of the given radius by scaling down and back up
// with bilinear filtering.
func blur(img *image.RGBA, radius float64) *image.RGBA {
	k := int(math.Round(radius / 2))
	if k < 2 {
		return img
	}
	b := img.Bounds()
	small := image.NewRGBA(image.Rect(0, 0, max(b.Dx()/k, 1), max(b.Dy()/k, 1)))
	draw.BiLinear.Scale(small, small.Bounds(), img, b, draw.Src, nil)
	out := image.NewRGBA(b)
	draw.BiLinear.Scale(out, b, small, small.Bounds(), draw.Src, nil)
	return out
}

func nrgba(c vector.Color) color.NRGBA { return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A} }

// radialGradient is an unbounded image following an elliptic radial
// gradient; positions past the last stop take its color.
type radialGradient struct {
	stops          []textbox.GradientStop
	cx, cy, rx, ry float64
}

func (radialGradient) ColorModel() color.Model { return color.NRGBAModel }

func (radialGradient) Bounds() image.Rectangle {
	return image.Rectangle{Min: image.Point{X: -1e9, Y: -1e9}, Max: image.Point{X: 1e9, Y: 1e9}}
}

func (r radialGradient) At(x, y int) color.Color {
	dx := (float64(x) + 0.5 - r.cx) / math.Max(r.rx, 1)
	dy := (float64(y) + 0.5 - r.cy) / math.Max(r.ry, 1)
	return gradientAt(r.stops, math.Hypot(dx, dy))
}

func gradientAt(stops []textbox.GradientStop, t float64) color.NRGBA {
	if t <= stops[0].Offset {
		return nrgba(stops[0].Color)
	}
	for i := 1; i < len(stops); i++ {
		a, b := stops[i-1], stops[i]
		if t <= b.Offset {
			f := 0.0
			if span := b.Offset - a.Offset; span > 0 {
				f = (t - a.Offset) / span
			}
			mix := func(u, v uint8) uint8 { return uint8(math.Round(float64(u) + (float64(v)-float64(u))*f)) }
			return color.NRGBA{
				R: mix(a.Color.R, b.Color.R),
				G: mix(a.Color.G, b.Color.G),
				B: mix(a.Color.B, b.Color.B),
				A: mix(a.Color.A, b.Color.A),
			}
		}
	}
	return nrgba(stops[len(stops)-1].Color)
}
