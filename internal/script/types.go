/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package script reads comic scripts and turns their dialogue and captions
// into text box jobs, one box per lettered line.
//
// Syntax:
//
//	# Scene title            (or "Scene: title")
//	Panel 1                  panel marker; "Beat" is accepted as well
//	ALICE: spoken text       dialogue
//	CAPTION: text            caption, also NARRATION:
//	  continued              indented lines continue the previous block
//	; note                   ignored
//
// "@tag" words are removed from the text and kept as tags; a tag naming an
// anchor (@se) or a style (@shout) applies to that box.
package script

import "fmt"

// Kind is the kind of a lettered block.
type Kind int

const (
	Dialogue Kind = iota + 1
	Caption
)

func (k Kind) String() string {
	switch k {
	case Dialogue:
		return "dialogue"
	case Caption:
		return "caption"
	}
	return "unknown"
}

// Block is one text box worth of script.
type Block struct {
	Kind    Kind
	Speaker string // upper-cased; "CAPTION" or "NARRATION" for captions
	Text    string // continuation lines are joined with "\n"
	Tags    []string
	Scene   int // 1-based
	Panel   int // 0 before the first panel marker of a scene
	Line    int // 1-based source line of the block start
}

// Script is the lettering content of a script file.
type Script struct {
	Scenes []string // titles, index = Block.Scene-1
	Blocks []Block
}

// Error represents a parse error with position context.
type Error struct {
	Line    int
	Message string
}

func (e Error) Error() string { return fmt.Sprintf("line %d: %s", e.Line, e.Message) }
