/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textbox

import (
	"slices"
	"testing"

	"gocomicbox/internal/vector"
)

func TestStyleSheet_Precedence(t *testing.T) {
	base := NewStyleSheet()
	user := Style{Box: BoxStyle{Radius: 3}}
	job := Style{Box: BoxStyle{Radius: 7}}
	ss := base.WithUser(map[string]Style{"Caption": user, "Mine": user}).WithJob(map[string]Style{"Caption": job})

	if st, _ := ss.Resolve("Caption"); st.Box.Radius != 7 || st.Name != "Caption" {
		t.Fatalf("job scope must win: %+v", st)
	}
	if st, _ := ss.Resolve("Mine"); st.Box.Radius != 3 {
		t.Fatalf("user scope: %+v", st)
	}
	if st, ok := ss.Resolve("Speech"); !ok || st.Box.Fill != vector.White {
		t.Fatalf("builtin fallback: %+v", st)
	}
	if _, ok := ss.Resolve("Nope"); ok {
		t.Fatalf("unknown style resolved")
	}
	if st, ok := ss.Resolve(""); !ok || st.Box.Radius != 7 {
		t.Fatalf("empty name should resolve the default style")
	}
	// WithUser/WithJob copy.
	if len(base.User) != 0 || len(base.Job) != 0 {
		t.Fatalf("base sheet modified")
	}
}

func TestStyleSheet_Names(t *testing.T) {
	ss := NewStyleSheet().WithUser(map[string]Style{"zeta": {}, "alpha": {}}).WithJob(map[string]Style{"Caption": {}})
	want := []string{"Caption", "Speech", "Narration", "alpha", "zeta"}
	if got := ss.Names(); !slices.Equal(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestBuiltinCaption(t *testing.T) {
	st, ok := GetStyle("Caption")
	if !ok || len(st.Box.Gradient) != 3 || !st.Box.Shadow.Enabled || st.Box.Radius != 10 {
		t.Fatalf("caption preset %+v", st)
	}
	for _, n := range ListStyles() {
		if _, ok := GetStyle(n); !ok {
			t.Fatalf("listed style %q missing", n)
		}
	}
}
