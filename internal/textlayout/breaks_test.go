/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textlayout

import (
	"errors"
	"slices"
	"testing"
	"unicode/utf8"
)

func collect(src BreakSource, text string) []Candidate {
	return slices.Collect(src.Candidates(text))
}

func TestWhitespaceBreaks(t *testing.T) {
	got := collect(WhitespaceBreaks{}, "ab  cd\nef g")
	want := []Candidate{{Offset: 4}, {Offset: 7, Mandatory: true}, {Offset: 10}, {Offset: 11}}
	if !slices.Equal(got, want) {
		t.Fatalf("got %+v want %+v", got, want)
	}
	if c := collect(WhitespaceBreaks{}, ""); len(c) != 0 {
		t.Fatalf("empty text: %+v", c)
	}
	// Leading spaces do not create an empty first line.
	if c := collect(WhitespaceBreaks{}, "  x"); !slices.Equal(c, []Candidate{{Offset: 3}}) {
		t.Fatalf("leading spaces: %+v", c)
	}
}

func TestUAX14Breaks_ByteOffsets(t *testing.T) {
	text := "Größe über alles"
	got := collect(UAX14Breaks{}, text)
	if len(got) == 0 || got[len(got)-1].Offset != len(text) {
		t.Fatalf("last candidate must be the text end: %+v", got)
	}
	prev := 0
	for _, c := range got {
		if c.Offset <= prev || (c.Offset < len(text) && !utf8.RuneStart(text[c.Offset])) {
			t.Fatalf("bad candidate %+v", c)
		}
		prev = c.Offset
	}
	// "Größe " is 8 bytes but 6 runes.
	if got[0].Offset != 8 {
		t.Fatalf("first break: want byte 8, got %d", got[0].Offset)
	}
}

func TestUAX14Breaks_MandatoryAtNewline(t *testing.T) {
	got := collect(UAX14Breaks{}, "a\nb")
	want := []Candidate{{Offset: 2, Mandatory: true}, {Offset: 3}}
	if !slices.Equal(got, want) {
		t.Fatalf("got %+v want %+v", got, want)
	}
}

func TestBreakSource_StopsEarly(t *testing.T) {
	for _, src := range []BreakSource{UAX14Breaks{}, WhitespaceBreaks{}} {
		n := 0
		for range src.Candidates("a b c d e") {
			n++
			if n == 2 {
				break
			}
		}
		if n != 2 {
			t.Fatalf("%T: iteration did not stop", src)
		}
	}
}

func TestParseBreakMode(t *testing.T) {
	for in, want := range map[string]BreakMode{"": BreakUAX14, "UAX14": BreakUAX14, " whitespace ": BreakWhitespace} {
		got, err := ParseBreakMode(in)
		if err != nil || got != want {
			t.Fatalf("%q: got %q, %v", in, got, err)
		}
	}
	if _, err := ParseBreakMode("hyphen"); !errors.Is(err, ErrConfiguration) {
		t.Fatalf("want configuration error, got %v", err)
	}
	if _, ok := BreakWhitespace.Source().(WhitespaceBreaks); !ok {
		t.Fatalf("whitespace source")
	}
	if _, ok := BreakUAX14.Source().(UAX14Breaks); !ok {
		t.Fatalf("uax14 source")
	}
}
