/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textbox

import "sort"

// StyleSheet resolves Style presets over three scopes:
//   - User: presets from the user config
//   - Job: presets defined inline in a job file
//   - Builtin: the table in styles.go
//
// Resolution precedence is Job > User > Builtin.
type StyleSheet struct {
	User map[string]Style
	Job  map[string]Style
}

func NewStyleSheet() *StyleSheet {
	return &StyleSheet{User: map[string]Style{}, Job: map[string]Style{}}
}

// WithUser returns a copy with the given user-level presets merged.
func (s *StyleSheet) WithUser(over map[string]Style) *StyleSheet {
	cp := s.clone()
	for k, v := range over {
		cp.User[k] = named(k, v)
	}
	return cp
}

// WithJob returns a copy with the given job-level presets merged.
func (s *StyleSheet) WithJob(over map[string]Style) *StyleSheet {
	cp := s.clone()
	for k, v := range over {
		cp.Job[k] = named(k, v)
	}
	return cp
}

// Resolve returns the effective preset. An empty name means DefaultStyle.
func (s *StyleSheet) Resolve(name string) (Style, bool) {
	if name == "" {
		name = DefaultStyle
	}
	if s != nil {
		if st, ok := s.Job[name]; ok {
			return st, true
		}
		if st, ok := s.User[name]; ok {
			return st, true
		}
	}
	return GetStyle(name)
}

// Names returns the builtin names first, then any others sorted.
func (s *StyleSheet) Names() []string {
	out := ListStyles()
	seen := map[string]bool{}
	for _, n := range out {
		seen[n] = true
	}
	var extra []string
	for _, m := range []map[string]Style{s.User, s.Job} {
		for k := range m {
			if !seen[k] {
				seen[k] = true
				extra = append(extra, k)
			}
		}
	}
	sort.Strings(extra)
	return append(out, extra...)
}

func (s *StyleSheet) clone() *StyleSheet {
	cp := NewStyleSheet()
	if s == nil {
		return cp
	}
	for k, v := range s.User {
		cp.User[k] = v
	}
	for k, v := range s.Job {
		cp.Job[k] = v
	}
	return cp
}

func named(name string, st Style) Style {
	if st.Name == "" {
		st.Name = name
	}
	return st
}
