/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package script

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"gocomicbox/internal/job"
	"gocomicbox/internal/textbox"
)

// Lettering controls how blocks become jobs.
type Lettering struct {
	// Template supplies box options, font, host, breaks and inline styles.
	// Its text, placement and outputs are replaced per block.
	Template job.Job
	// OutDir receives the outputs; names are <scene>-<panel>-<n>-<speaker>.<ext>.
	OutDir string
	// Formats lists output extensions; empty means svg.
	Formats []string
	// Styles are the preset names tags may select, matched case-insensitively.
	Styles []string
	// DialogueStyle and CaptionStyle default to Speech and Caption.
	DialogueStyle string
	CaptionStyle  string
}

var reUnsafe = regexp.MustCompile(`[^a-z0-9]+`)

// Jobs builds one job per block.
func (l Lettering) Jobs(s Script) []*job.Job {
	formats := l.Formats
	if len(formats) == 0 {
		formats = []string{"svg"}
	}
	dialogue, caption := or(l.DialogueStyle, "Speech"), or(l.CaptionStyle, "Caption")

	out := make([]*job.Job, 0, len(s.Blocks))
	for i, b := range s.Blocks {
		j := l.Template
		j.Text = b.Text
		// An anchor tag replaces the template position but keeps its offset.
		j.Placement = job.Placement{OffsetX: l.Template.Placement.OffsetX, OffsetY: l.Template.Placement.OffsetY}
		j.Style = dialogue
		if b.Kind == Caption {
			j.Style = caption
		}
		for _, t := range b.Tags {
			if a, err := textbox.ParseAnchor(t); err == nil {
				j.Placement.Anchor = a.String()
				continue
			}
			for _, name := range l.Styles {
				if strings.EqualFold(name, t) {
					j.Style = name
				}
			}
		}
		if j.Placement.Anchor == "" {
			j.Placement = l.Template.Placement
		}
		base := fmt.Sprintf("%02d-%02d-%03d-%s", b.Scene, b.Panel, i+1, strings.Trim(reUnsafe.ReplaceAllString(strings.ToLower(b.Speaker), "-"), "-"))
		j.Outputs = make([]string, len(formats))
		for k, f := range formats {
			j.Outputs[k] = filepath.Join(l.OutDir, base+"."+strings.TrimPrefix(strings.ToLower(f), "."))
		}
		out = append(out, &j)
	}
	return out
}

func or(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
