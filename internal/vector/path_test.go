/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

import "testing"

func TestPathBoundsAndTransform(t *testing.T) {
	var p Path
	p.MoveTo(0, 0)
	p.LineTo(10, 0)
	p.QuadTo(10, 10, 0, 10)
	p.Close()

	b := p.Bounds()
	if b.X != 0 || b.Y != 0 || b.W != 10 || b.H != 10 {
		t.Fatalf("unexpected bounds: %+v", b)
	}

	moved := p.Transform(Translate(5, 5))
	bb := moved.Bounds()
	if bb.X != 5 || bb.Y != 5 || bb.W != 10 || bb.H != 10 {
		t.Fatalf("unexpected transformed bounds: %+v", bb)
	}
	// original untouched
	if p.Cmds[1].Data[0] != 10 {
		t.Fatalf("transform mutated the source path")
	}
}

func TestEmptyPathBounds(t *testing.T) {
	var p Path
	if !p.Empty() {
		t.Fatalf("expected empty path")
	}
	if b := p.Bounds(); b != (Rect{}) {
		t.Fatalf("expected zero rect, got %+v", b)
	}
}

func TestPathSVGData(t *testing.T) {
	var p Path
	p.MoveTo(1.005, 2)
	p.LineTo(3.14159, -0.001)
	p.CubicTo(1, 2, 3, 4, 5, 6)
	p.Close()
	got := p.SVGData(2)
	want := "M1 2L3.14 0C1 2 3 4 5 6Z"
	if got != want {
		t.Fatalf("SVGData = %q, want %q", got, want)
	}
}

func TestParseColor(t *testing.T) {
	cases := map[string]Color{
		"#fff":     {255, 255, 255, 255},
		"#f5e693":  {245, 230, 147, 255},
		"00000080": {0, 0, 0, 128},
	}
	for in, want := range cases {
		got, err := ParseColor(in)
		if err != nil {
			t.Fatalf("ParseColor(%q): %v", in, err)
		}
		if got != want {
			t.Fatalf("ParseColor(%q) = %+v, want %+v", in, got, want)
		}
	}
	if _, err := ParseColor("#12"); err == nil {
		t.Fatalf("expected error for short color")
	}
	if White.Hex() != "#ffffff" {
		t.Fatalf("unexpected hex: %s", White.Hex())
	}
}
