/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package script

import (
	"bufio"
	"regexp"
	"strings"
)

var (
	reScene    = regexp.MustCompile(`^#+\s*(.*)$`)
	reSceneAlt = regexp.MustCompile(`^(?i)scene:\s*(.+)$`)
	rePanel    = regexp.MustCompile(`^(?i)(panel\s*\d*|beat)\b`)
	reName     = regexp.MustCompile(`^([A-Za-z0-9_\- ]{1,64})\s*:\s*(.*)$`)
	reTag      = regexp.MustCompile(`(?i)\s*@([a-z0-9_\-]+)`)
)

// maxLine bounds a single script line.
const maxLine = 1 << 20

// Parse reads the lettering blocks of a script. Unrecognised lines are
// reported as errors but do not stop parsing.
func Parse(input string) (Script, []Error) {
	p := parser{}
	sc := bufio.NewScanner(strings.NewReader(input))
	sc.Buffer(make([]byte, 0, 64*1024), maxLine)
	n := 0
	for sc.Scan() {
		n++
		p.line(n, strings.TrimRight(sc.Text(), "\r"))
	}
	if err := sc.Err(); err != nil {
		p.errs = append(p.errs, Error{Line: n + 1, Message: err.Error()})
	}
	return p.s, p.errs
}

type parser struct {
	s     Script
	errs  []Error
	panel int
	open  *Block // block that may still receive continuation lines
}

func (p *parser) line(n int, raw string) {
	if strings.HasPrefix(raw, "  ") || strings.HasPrefix(raw, "\t") {
		if p.open != nil {
			if text, tags := splitTags(strings.TrimSpace(raw)); text != "" || len(tags) > 0 {
				if text != "" {
					p.open.Text += "\n" + text
				}
				p.open.Tags = mergeTags(p.open.Tags, tags)
			}
			return
		}
	}
	trim := strings.TrimSpace(raw)
	switch {
	case trim == "":
		p.open = nil
	case strings.HasPrefix(trim, ";"):
		p.open = nil
	case reScene.MatchString(trim):
		p.scene(reScene.FindStringSubmatch(trim)[1])
	case reSceneAlt.MatchString(trim):
		p.scene(reSceneAlt.FindStringSubmatch(trim)[1])
	case rePanel.MatchString(trim):
		p.panel++
		p.open = nil
	case reName.MatchString(trim):
		m := reName.FindStringSubmatch(trim)
		speaker := strings.ToUpper(strings.TrimSpace(m[1]))
		kind := Dialogue
		if speaker == "CAPTION" || speaker == "NARRATION" {
			kind = Caption
		}
		text, tags := splitTags(strings.TrimSpace(m[2]))
		if len(p.s.Scenes) == 0 {
			p.scene("Untitled")
		}
		p.s.Blocks = append(p.s.Blocks, Block{
			Kind: kind, Speaker: speaker, Text: text, Tags: tags,
			Scene: len(p.s.Scenes), Panel: p.panel, Line: n,
		})
		p.open = &p.s.Blocks[len(p.s.Blocks)-1]
	default:
		p.errs = append(p.errs, Error{Line: n, Message: "not a scene, panel, dialogue or caption: " + trim})
		p.open = nil
	}
}

func (p *parser) scene(title string) {
	p.s.Scenes = append(p.s.Scenes, strings.TrimSpace(title))
	p.panel = 0
	p.open = nil
}

// splitTags removes "@tag" words from s and returns them lower-cased.
func splitTags(s string) (string, []string) {
	var tags []string
	for _, m := range reTag.FindAllStringSubmatch(s, -1) {
		tags = mergeTags(tags, []string{strings.ToLower(m[1])})
	}
	return strings.TrimSpace(reTag.ReplaceAllString(s, "")), tags
}

func mergeTags(dst, src []string) []string {
	for _, t := range src {
		dup := false
		for _, d := range dst {
			if d == t {
				dup = true
				break
			}
		}
		if !dup {
			dst = append(dst, t)
		}
	}
	return dst
}
