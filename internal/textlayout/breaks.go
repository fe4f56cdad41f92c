/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textlayout

import (
	"iter"
	"strings"

	"github.com/go-text/typesetting/segmenter"
)

// BreakMode selects one of the shipped break sources.
type BreakMode string

const (
	BreakUAX14      BreakMode = "uax14"
	BreakWhitespace BreakMode = "whitespace"
)

// ParseBreakMode maps a config value to a mode. Empty means uax14.
func ParseBreakMode(s string) (BreakMode, error) {
	switch BreakMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", BreakUAX14:
		return BreakUAX14, nil
	case BreakWhitespace:
		return BreakWhitespace, nil
	}
	return "", ConfigErrorf("unknown break mode %q", s)
}

// Source returns the break source of the mode.
func (m BreakMode) Source() BreakSource {
	if m == BreakWhitespace {
		return WhitespaceBreaks{}
	}
	return UAX14Breaks{}
}

// UAX14Breaks yields the line break opportunities of Unicode Standard Annex
// #14. The segmenter works on runes; offsets are converted back to bytes.
type UAX14Breaks struct{}

func (UAX14Breaks) Candidates(text string) iter.Seq[Candidate] {
	return func(yield func(Candidate) bool) {
		if text == "" {
			return
		}
		runes := []rune(text)
		// byteAt[i] is the byte offset of runes[i]; byteAt[len] == len(text).
		byteAt := make([]int, len(runes)+1)
		i := 0
		for off := range text {
			byteAt[i] = off
			i++
		}
		byteAt[len(runes)] = len(text)

		var seg segmenter.Segmenter
		seg.Init(runes)
		it := seg.LineIterator()
		for it.Next() {
			l := it.Line()
			end := l.Offset + len(l.Text)
			if !yield(Candidate{Offset: byteAt[end], Mandatory: l.IsMandatoryBreak && end < len(runes)}) {
				return
			}
		}
	}
}

// WhitespaceBreaks allows a break after every run of spaces and tabs, forces
// one after each newline and always offers the end of the text.
type WhitespaceBreaks struct{}

func (WhitespaceBreaks) Candidates(text string) iter.Seq[Candidate] {
	return func(yield func(Candidate) bool) {
		inSpace, seenText := false, false
		for i, r := range text {
			switch {
			case r == '\n':
				inSpace, seenText = false, false
				end := i + 1
				if end < len(text) {
					if !yield(Candidate{Offset: end, Mandatory: true}) {
						return
					}
				}
			case r == ' ' || r == '\t':
				inSpace = true
			default:
				if inSpace && seenText {
					if !yield(Candidate{Offset: i}) {
						return
					}
				}
				inSpace, seenText = false, true
			}
		}
		if text != "" {
			yield(Candidate{Offset: len(text)})
		}
	}
}
