/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package job reads text box job files: one YAML document describing the
// text, the box options, styling, the host image and the outputs.
package job

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	gojsonschema "github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	"gocomicbox/internal/textbox"
	"gocomicbox/internal/textlayout"
)

//go:embed schema.json
var schemaJSON []byte

// Schema returns the JSON schema job documents are validated against.
func Schema() []byte { return schemaJSON }

// Placement positions the box. Either Anchor or Top/Left may be set; with
// neither, the box goes to the default placement.
type Placement struct {
	Anchor  string `yaml:"anchor"`
	Top     *int   `yaml:"top"`
	Left    *int   `yaml:"left"`
	OffsetX int    `yaml:"offset_x"`
	OffsetY int    `yaml:"offset_y"`
}

// Job is one text box to render.
type Job struct {
	Text      string                   `yaml:"text"`
	Font      string                   `yaml:"font"`
	Box       textbox.Options          `yaml:"box"`
	Style     string                   `yaml:"style"`
	Styles    map[string]textbox.Style `yaml:"styles"`
	Breaks    string                   `yaml:"breaks"`
	Host      string                   `yaml:"host"`
	Placement Placement                `yaml:"placement"`
	Outputs   []string                 `yaml:"outputs"`

	// Dir is the directory relative paths were resolved against.
	Dir string `yaml:"-"`
}

// Load reads and validates a job file. Relative paths inside it are
// resolved against the file's directory.
func Load(path string) (*Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read job: %w", err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve job path: %w", err)
	}
	return Parse(data, filepath.Dir(abs))
}

// Parse validates data against the job schema and decodes it. Schema
// violations are configuration errors listing every failed rule.
func Parse(data []byte, dir string) (*Job, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, textlayout.ConfigErrorf("parse job: %v", err)
	}
	if doc == nil {
		return nil, textlayout.ConfigErrorf("empty job document")
	}
	res, err := gojsonschema.Validate(gojsonschema.NewBytesLoader(schemaJSON), gojsonschema.NewGoLoader(doc))
	if err != nil {
		return nil, fmt.Errorf("schema validate: %w", err)
	}
	if !res.Valid() {
		msgs := make([]string, 0, len(res.Errors()))
		for _, e := range res.Errors() {
			msgs = append(msgs, e.String())
		}
		return nil, textlayout.ConfigErrorf("invalid job: %s", strings.Join(msgs, "; "))
	}

	var j Job
	if err := yaml.Unmarshal(data, &j); err != nil {
		return nil, textlayout.ConfigErrorf("decode job: %v", err)
	}
	j.Dir = dir
	j.Host = j.resolve(j.Host)
	for i, o := range j.Outputs {
		j.Outputs[i] = j.resolve(o)
	}
	if j.Font != "" && !strings.Contains(j.Font, ":") {
		j.Font = j.resolve(j.Font)
	}
	if _, err := j.BoxPlacement(); err != nil {
		return nil, err
	}
	return &j, nil
}

// BoxPlacement converts the placement section.
func (j *Job) BoxPlacement() (textbox.Placement, error) {
	p := j.Placement
	if p.Anchor != "" && (p.Top != nil || p.Left != nil) {
		return textbox.Placement{}, textlayout.ConfigErrorf("placement: anchor and top/left are exclusive")
	}
	var out textbox.Placement
	switch {
	case p.Anchor != "":
		a, err := textbox.ParseAnchor(p.Anchor)
		if err != nil {
			return textbox.Placement{}, err
		}
		out = textbox.Placement{Anchor: a}
	case p.Top != nil || p.Left != nil:
		out = textbox.Placement{Explicit: true}
		if p.Top != nil {
			out.Top = *p.Top
		}
		if p.Left != nil {
			out.Left = *p.Left
		}
	default:
		out = textbox.DefaultPlacement
	}
	out.OffsetX, out.OffsetY = p.OffsetX, p.OffsetY
	return out, nil
}

// HasPlacement reports whether the job sets an anchor or explicit position.
func (j *Job) HasPlacement() bool {
	return j.Placement.Anchor != "" || j.Placement.Top != nil || j.Placement.Left != nil
}

func (j *Job) resolve(p string) string {
	if p == "" || filepath.IsAbs(p) || j.Dir == "" {
		return p
	}
	return filepath.Join(j.Dir, p)
}
