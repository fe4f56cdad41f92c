/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package log

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func lastJSON(t *testing.T, data []byte) map[string]any {
	t.Helper()
	var last string
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		if s := strings.TrimSpace(sc.Text()); s != "" {
			last = s
		}
	}
	if last == "" {
		t.Fatalf("no log lines")
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(last), &m); err != nil {
		t.Fatalf("unmarshal %q: %v", last, err)
	}
	return m
}

// The rotating file gets JSON with static, logger and context attributes
// while the console gets the line format.
func TestInit_FileAndConsole(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "gocomicbox.json")
	var console bytes.Buffer
	Init(Options{Level: "debug", File: path, Console: &console})
	t.Cleanup(func() { Init(Options{Console: &bytes.Buffer{}}) })

	ctx := ContextWithJob(context.Background(), "jobs/box.yaml")
	WithOperation(WithComponent("render"), "prepare").InfoContext(ctx, "job prepared", slog.String("font", "builtin:go-bold"))

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	m := lastJSON(t, b)
	for k, want := range map[string]string{
		"app":       "gocomicbox",
		"component": "render",
		"op":        "prepare",
		"job":       "jobs/box.yaml",
		"font":      "builtin:go-bold",
		"msg":       "job prepared",
	} {
		if m[k] != want {
			t.Fatalf("%s: want %q, got %v", k, want, m[k])
		}
	}
	if v, ok := m["ver"].(string); !ok || v == "" {
		t.Fatalf("missing ver: %v", m["ver"])
	}

	line := console.String()
	if !strings.Contains(line, " INF [jobs/box.yaml] job prepared ") {
		t.Fatalf("console line: %q", line)
	}
	if strings.Contains(line, "app=") || strings.Contains(line, "job=") {
		t.Fatalf("console repeats static or job attrs: %q", line)
	}
	if !strings.Contains(line, "component=render op=prepare font=builtin:go-bold") {
		t.Fatalf("console attrs: %q", line)
	}
}

func TestInit_JSONConsoleCarriesJob(t *testing.T) {
	var buf bytes.Buffer
	Init(Options{Level: "info", Format: "JSON", Console: &buf})
	t.Cleanup(func() { Init(Options{Console: &bytes.Buffer{}}) })

	WithComponent("render").InfoContext(ContextWithJob(context.Background(), "letter.txt:12"), "job rendered")
	if m := lastJSON(t, buf.Bytes()); m["job"] != "letter.txt:12" || m["app"] != "gocomicbox" {
		t.Fatalf("json console: %v", m)
	}
	buf.Reset()
	WithComponent("render").Info("no job")
	if m := lastJSON(t, buf.Bytes()); m["job"] != nil {
		t.Fatalf("unexpected job attr: %v", m)
	}
	if _, ok := JobFromContext(context.Background()); ok {
		t.Fatalf("empty context has no job")
	}
	if _, ok := JobFromContext(ContextWithJob(context.Background(), "")); ok {
		t.Fatalf("empty job must not count")
	}
}
