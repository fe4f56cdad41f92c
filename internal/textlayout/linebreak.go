/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textlayout

import "unicode/utf8"

// Line is the span text[Start:End]. Break characters (trailing spaces, the
// newline of a hard break) stay inside the line they terminate, so the Text
// of all lines concatenated is the original input.
type Line struct {
	Start, End int
	Text       string
	Width      float64 // measured width of Text
	Forced     bool    // an unbreakable run wider than the available width
}

// breakState is the state of the greedy line breaker.
type breakState uint8

const (
	// stateForcedBreak: no candidate fit since the line start. A candidate
	// that overflows here closes the line on itself.
	stateForcedBreak breakState = iota
	// stateExtending: the line can end at lastValid. A candidate that
	// overflows here closes the line at lastValid and is evaluated again.
	stateExtending
)

type breakAction uint8

const (
	actAccept     breakAction = iota // extend the line up to the candidate
	actEmitForced                    // emit [start, c) although it overflows
	actEmitRetry                     // emit [start, lastValid), re-evaluate c
)

// transition is the breaker's table, keyed on (state, fits).
//
//	state        fits  action         next
//	forcedBreak  yes   accept         extending
//	forcedBreak  no    emitForced     forcedBreak
//	extending    yes   accept         extending
//	extending    no    emitRetry      forcedBreak
func transition(s breakState, fits bool) (breakAction, breakState) {
	switch {
	case fits:
		return actAccept, stateExtending
	case s == stateForcedBreak:
		return actEmitForced, stateForcedBreak
	default:
		return actEmitRetry, stateForcedBreak
	}
}

type breaker struct {
	text     string
	fontSize float64
	width    float64
	m        Measurer

	state     breakState
	start     int
	lastValid int
	lastWidth float64
	lines     []Line
}

// BreakLines partitions text into lines whose measured width does not exceed
// availableWidth, ending lines only on candidates of src. A run without any
// fitting candidate is emitted as a single forced line. Widths are measured on
// the raw span text[start:end], trailing break characters included.
//
// Empty text yields one empty line. A first candidate at offset 0 is ignored.
// Other candidates that are not strictly
// increasing, exceed len(text) or split a UTF-8 sequence make BreakLines fail
// with a *ContractViolationError.
func BreakLines(text string, fontSize, availableWidth float64, src BreakSource, m Measurer) ([]Line, error) {
	if fontSize <= 0 {
		return nil, ConfigErrorf("font size must be positive, got %g", fontSize)
	}
	if availableWidth <= 0 {
		return nil, ConfigErrorf("available width must be positive, got %g", availableWidth)
	}
	if src == nil || m == nil {
		return nil, ConfigErrorf("break source and measurer are required")
	}
	if text == "" {
		return []Line{{}}, nil
	}

	b := &breaker{text: text, fontSize: fontSize, width: availableWidth, m: m}
	prev, first := 0, true
	for c := range src.Candidates(text) {
		if first && c.Offset == 0 {
			// An empty span before the text carries nothing to break.
			first = false
			continue
		}
		first = false
		if err := checkCandidate(text, c.Offset, prev); err != nil {
			return nil, err
		}
		prev = c.Offset
		b.feed(c)
	}
	b.finish()
	return b.lines, nil
}

func checkCandidate(text string, off, prev int) error {
	switch {
	case off <= prev:
		return &ContractViolationError{Offset: off, Previous: prev, Length: len(text), Reason: "offsets not strictly increasing"}
	case off > len(text):
		return &ContractViolationError{Offset: off, Previous: prev, Length: len(text), Reason: "offset beyond end of text"}
	case off < len(text) && !utf8.RuneStart(text[off]):
		return &ContractViolationError{Offset: off, Previous: prev, Length: len(text), Reason: "offset inside a UTF-8 sequence"}
	}
	return nil
}

// feed runs the state machine for one candidate until it is consumed.
// Every actEmitRetry moves start forward, so the loop terminates.
func (b *breaker) feed(c Candidate) {
	for {
		w := b.m.MeasureWidth(b.text[b.start:c.Offset], b.fontSize)
		act, next := transition(b.state, w <= b.width)
		b.state = next
		switch act {
		case actAccept:
			b.lastValid, b.lastWidth = c.Offset, w
			if c.Mandatory {
				b.emit(c.Offset, w, false)
			}
			return
		case actEmitForced:
			b.emit(c.Offset, w, true)
			return
		case actEmitRetry:
			b.emit(b.lastValid, b.lastWidth, false)
		}
	}
}

// finish emits the tail after the last candidate, if any.
func (b *breaker) finish() {
	if b.start >= len(b.text) {
		return
	}
	w := b.m.MeasureWidth(b.text[b.start:], b.fontSize)
	b.emit(len(b.text), w, w > b.width)
}

func (b *breaker) emit(end int, width float64, forced bool) {
	b.lines = append(b.lines, Line{
		Start:  b.start,
		End:    end,
		Text:   b.text[b.start:end],
		Width:  width,
		Forced: forced,
	})
	b.start, b.lastValid, b.lastWidth = end, end, 0
	b.state = stateForcedBreak
}
