/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package script

import (
	"path/filepath"
	"slices"
	"testing"

	"gocomicbox/internal/job"
	"gocomicbox/internal/textbox"
)

const sample = `# Opening Scene
Panel 1
ALICE: Hello, world! @ne
  And a continuation line.

; a note that is not lettered
Panel 2
BEATRICE: Hi. @shout

# Second Scene
CAPTION: Meanwhile, elsewhere...
BOB: Hi, Alice.`

func TestParseScenesPanelsAndBlocks(t *testing.T) {
	s, errs := Parse(sample)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %+v", errs)
	}
	if !slices.Equal(s.Scenes, []string{"Opening Scene", "Second Scene"}) {
		t.Fatalf("scenes: %q", s.Scenes)
	}
	if len(s.Blocks) != 4 {
		t.Fatalf("expected 4 blocks, got %d", len(s.Blocks))
	}
	b0 := s.Blocks[0]
	if b0.Kind != Dialogue || b0.Speaker != "ALICE" || b0.Scene != 1 || b0.Panel != 1 || b0.Line != 3 {
		t.Fatalf("first block: %+v", b0)
	}
	if b0.Text != "Hello, world!\nAnd a continuation line." || !slices.Equal(b0.Tags, []string{"ne"}) {
		t.Fatalf("text/tags: %q %q", b0.Text, b0.Tags)
	}
	if b1 := s.Blocks[1]; b1.Speaker != "BEATRICE" || b1.Panel != 2 || b1.Text != "Hi." {
		t.Fatalf("BEATRICE must be dialogue, not a beat: %+v", b1)
	}
	if b2 := s.Blocks[2]; b2.Kind != Caption || b2.Scene != 2 || b2.Panel != 0 {
		t.Fatalf("caption: %+v", b2)
	}
}

func TestParseImplicitSceneAndErrors(t *testing.T) {
	s, errs := Parse("CAPTION: A caption.\nSome freeform line\n  stray continuation")
	if len(s.Scenes) != 1 || s.Scenes[0] != "Untitled" {
		t.Fatalf("implicit scene: %q", s.Scenes)
	}
	if len(s.Blocks) != 1 || s.Blocks[0].Text != "A caption." {
		t.Fatalf("blocks: %+v", s.Blocks)
	}
	if len(errs) != 2 || errs[0].Line != 2 || errs[1].Line != 3 {
		t.Fatalf("errors: %+v", errs)
	}
	if errs[0].Error() == "" {
		t.Fatalf("empty error text")
	}
}

func TestParseTagsAcrossContinuation(t *testing.T) {
	s, _ := Parse("ALICE: Hello @prop\n  cont @extra @PROP")
	if got := s.Blocks[0].Tags; !slices.Equal(got, []string{"prop", "extra"}) {
		t.Fatalf("tags: %q", got)
	}
	if s.Blocks[0].Text != "Hello\ncont" {
		t.Fatalf("text: %q", s.Blocks[0].Text)
	}
}

func TestLetteringJobs(t *testing.T) {
	s, _ := Parse(sample)
	tmpl := job.Job{
		Font: "builtin:go-bold",
		Box:  textbox.Options{Width: 300, FontSize: 24, LineHeight: 28},
		Host: "/art/page1.png",
	}
	jobs := Lettering{
		Template: tmpl,
		OutDir:   "/out",
		Formats:  []string{"png", ".SVG"},
		Styles:   []string{"Caption", "Speech", "Shout"},
	}.Jobs(s)
	if len(jobs) != 4 {
		t.Fatalf("jobs: %d", len(jobs))
	}
	j0 := jobs[0]
	if j0.Text != s.Blocks[0].Text || j0.Style != "Speech" || j0.Placement.Anchor != "NE" || j0.Font != "builtin:go-bold" || j0.Host != "/art/page1.png" {
		t.Fatalf("first job: %+v", j0)
	}
	if want := []string{filepath.Join("/out", "01-01-001-alice.png"), filepath.Join("/out", "01-01-001-alice.svg")}; !slices.Equal(j0.Outputs, want) {
		t.Fatalf("outputs: %q", j0.Outputs)
	}
	if jobs[1].Style != "Shout" {
		t.Fatalf("tag style: %q", jobs[1].Style)
	}
	if jobs[2].Style != "Caption" || jobs[2].Placement.Anchor != "" {
		t.Fatalf("caption job: %+v", jobs[2])
	}
	if jobs[3].Outputs[0] != filepath.Join("/out", "02-00-004-bob.png") {
		t.Fatalf("bob output: %q", jobs[3].Outputs)
	}
	if p, err := jobs[0].BoxPlacement(); err != nil || p.Anchor != textbox.NE {
		t.Fatalf("placement: %+v %v", p, err)
	}
}

func TestLetteringAnchorTagKeepsTemplateOffset(t *testing.T) {
	s, _ := Parse(sample)
	left := 40
	tmpl := job.Job{
		Box:       textbox.Options{Width: 300, FontSize: 24, LineHeight: 28},
		Placement: job.Placement{Left: &left, OffsetX: -12, OffsetY: 8},
	}
	jobs := Lettering{Template: tmpl, OutDir: "/out"}.Jobs(s)
	tagged := jobs[0].Placement
	if tagged.Anchor != "NE" || tagged.Left != nil || tagged.OffsetX != -12 || tagged.OffsetY != 8 {
		t.Fatalf("tagged placement: %+v", tagged)
	}
	p, err := jobs[0].BoxPlacement()
	if err != nil || p.Anchor != textbox.NE || p.OffsetX != -12 || p.OffsetY != 8 {
		t.Fatalf("box placement: %+v %v", p, err)
	}
	// Untagged blocks keep the template placement as is.
	if jobs[2].Placement.Left == nil || *jobs[2].Placement.Left != 40 {
		t.Fatalf("untagged placement: %+v", jobs[2].Placement)
	}
}
