/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

import (
	"math"
	"strconv"
	"strings"
)

// Path commands and shapes.

type PathOp uint8

const (
	MoveTo PathOp = iota
	LineTo
	QuadTo  // quadratic bezier (cx, cy, x, y)
	CubicTo // cubic bezier (cx1, cy1, cx2, cy2, x, y)
	Close
)

type PathCmd struct {
	Op   PathOp
	Data [6]float64 // enough for cubic; unused slots are zero
}

type Path struct{ Cmds []PathCmd }

func (p *Path) MoveTo(x, y float64) {
	p.Cmds = append(p.Cmds, PathCmd{Op: MoveTo, Data: [6]float64{x, y}})
}
func (p *Path) LineTo(x, y float64) {
	p.Cmds = append(p.Cmds, PathCmd{Op: LineTo, Data: [6]float64{x, y}})
}
func (p *Path) QuadTo(cx, cy, x, y float64) {
	p.Cmds = append(p.Cmds, PathCmd{Op: QuadTo, Data: [6]float64{cx, cy, x, y}})
}
func (p *Path) CubicTo(cx1, cy1, cx2, cy2, x, y float64) {
	p.Cmds = append(p.Cmds, PathCmd{Op: CubicTo, Data: [6]float64{cx1, cy1, cx2, cy2, x, y}})
}
func (p *Path) Close() { p.Cmds = append(p.Cmds, PathCmd{Op: Close}) }

// Empty reports whether the path has no drawing commands.
func (p Path) Empty() bool { return len(p.Cmds) == 0 }

// Append adds all commands of o to p.
func (p *Path) Append(o Path) { p.Cmds = append(p.Cmds, o.Cmds...) }

// argCount returns how many coordinate pairs a command carries.
func argCount(op PathOp) int {
	switch op {
	case MoveTo, LineTo:
		return 1
	case QuadTo:
		return 2
	case CubicTo:
		return 3
	default:
		return 0
	}
}

// Transform returns a copy of the path with m applied to every point.
func (p Path) Transform(m Affine2D) Path {
	out := Path{Cmds: make([]PathCmd, len(p.Cmds))}
	for i, c := range p.Cmds {
		nc := PathCmd{Op: c.Op}
		for k := 0; k < argCount(c.Op); k++ {
			q := m.Apply(Pt{c.Data[2*k], c.Data[2*k+1]})
			nc.Data[2*k], nc.Data[2*k+1] = q.X, q.Y
		}
		out.Cmds[i] = nc
	}
	return out
}

// Bounds returns an axis-aligned bounding box of the path using a simple
// approximation by considering control points.
func (p Path) Bounds() Rect {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, c := range p.Cmds {
		for k := 0; k < argCount(c.Op); k++ {
			x, y := c.Data[2*k], c.Data[2*k+1]
			minX = math.Min(minX, x)
			minY = math.Min(minY, y)
			maxX = math.Max(maxX, x)
			maxY = math.Max(maxY, y)
		}
	}
	if minX > maxX || minY > maxY {
		return Rect{}
	}
	return Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}

// SVGData renders the path as SVG path data ("d" attribute) with coordinates
// rounded to the given number of decimals.
func (p Path) SVGData(decimals int) string {
	var b strings.Builder
	num := func(v float64) {
		s := strconv.FormatFloat(FloatRound(v, decimals), 'f', -1, 64)
		if s == "-0" {
			s = "0"
		}
		b.WriteString(s)
	}
	for _, c := range p.Cmds {
		switch c.Op {
		case MoveTo:
			b.WriteByte('M')
		case LineTo:
			b.WriteByte('L')
		case QuadTo:
			b.WriteByte('Q')
		case CubicTo:
			b.WriteByte('C')
		case Close:
			b.WriteByte('Z')
			continue
		}
		for k := 0; k < argCount(c.Op); k++ {
			if k > 0 {
				b.WriteByte(' ')
			}
			num(c.Data[2*k])
			b.WriteByte(' ')
			num(c.Data[2*k+1])
		}
	}
	return b.String()
}
