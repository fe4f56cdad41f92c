/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textbox

import (
	"strings"

	"gocomicbox/internal/textlayout"
)

// Anchor is one of six positions of a box on its host image.
type Anchor uint8

const (
	NW Anchor = iota
	N
	NE
	SW
	S
	SE
)

var anchorNames = [...]string{NW: "NW", N: "N", NE: "NE", SW: "SW", S: "S", SE: "SE"}

func (a Anchor) String() string {
	if int(a) < len(anchorNames) {
		return anchorNames[a]
	}
	return "Anchor(?)"
}

// ParseAnchor is case-insensitive. Anything but the six names is a
// configuration error.
func ParseAnchor(s string) (Anchor, error) {
	u := strings.ToUpper(strings.TrimSpace(s))
	for i, n := range anchorNames {
		if n == u {
			return Anchor(i), nil
		}
	}
	return 0, textlayout.ConfigErrorf("unknown anchor %q (want NW, N, NE, SW, S or SE)", s)
}

func (a Anchor) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

func (a *Anchor) UnmarshalText(b []byte) error {
	v, err := ParseAnchor(string(b))
	if err != nil {
		return err
	}
	*a = v
	return nil
}

// ResolvePosition returns the top-left pixel of a box anchored on a host.
// Centering truncates toward zero; negative values (box larger than host)
// are returned as is.
func ResolvePosition(a Anchor, hostW, hostH, boxW, boxH int) (top, left int) {
	switch a {
	case N, S:
		left = (hostW - boxW) / 2
	case NE, SE:
		left = hostW - boxW
	}
	switch a {
	case SW, S, SE:
		top = hostH - boxH
	}
	return top, left
}

// Placement positions a box either by anchor or at an explicit top/left.
// The offset is added afterwards in both cases.
type Placement struct {
	Anchor   Anchor
	Explicit bool
	Top      int
	Left     int
	OffsetX  int
	OffsetY  int
}

// DefaultPlacement puts the box 20px from the top-left corner of the host.
var DefaultPlacement = Placement{Explicit: true, Top: 20, Left: 20}

// Resolve returns the final top/left for a box on a host.
func (p Placement) Resolve(hostW, hostH, boxW, boxH int) (top, left int) {
	if p.Explicit {
		top, left = p.Top, p.Left
	} else {
		top, left = ResolvePosition(p.Anchor, hostW, hostH, boxW, boxH)
	}
	return top + p.OffsetY, left + p.OffsetX
}
