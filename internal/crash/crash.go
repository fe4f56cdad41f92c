/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package crash turns a panic in the CLI into a logged error and a report file.
package crash

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"time"

	applog "gocomicbox/internal/log"
	"gocomicbox/internal/storage"
	"gocomicbox/internal/version"
)

// Swapped in tests.
var (
	exitFn           = os.Exit
	stderr io.Writer = os.Stderr
)

// Context describes what the process was doing when it panicked.
type Context struct {
	// Dir receives the report under Dir/backups. Empty means os.TempDir().
	Dir  string
	Job  string
	Args []string
}

// Recover handles a panic of the calling goroutine: the panic is logged with
// its stack (tagged with the job, if any), a report is written and the
// process exits with code 2. It must be deferred directly.
//
//	defer crash.Recover(crash.Context{Dir: cacheDir, Job: path})
func Recover(c Context) {
	r := recover()
	if r == nil {
		return
	}
	stack := debug.Stack()
	ctx := context.Background()
	if c.Job != "" {
		ctx = applog.ContextWithJob(ctx, c.Job)
	}
	l := applog.WithComponent("crash")
	l.ErrorContext(ctx, "panic recovered", slog.Any("panic", r), slog.String("stack", string(stack)))

	path, err := writeReport(c, r, stack)
	if err != nil {
		l.ErrorContext(ctx, "crash report failed", slog.Any("err", err), slog.String("path", path))
		fmt.Fprintf(stderr, "gocomicbox crashed: %v (no report written)\n", r)
	} else {
		fmt.Fprintf(stderr, "gocomicbox crashed: %v\nReport: %s\n", r, path)
	}
	exitFn(2)
}

func writeReport(c Context, panicVal any, stack []byte) (string, error) {
	dir := os.TempDir()
	if c.Dir != "" {
		dir = filepath.Join(c.Dir, storage.BackupsDirName)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return dir, err
		}
	}
	now := time.Now()
	path := filepath.Join(dir, "crash-"+now.Format("20060102-150405.000")+".log")

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "gocomicbox crash report\n")
	fmt.Fprintf(&buf, "Timestamp: %s\n", now.Format(time.RFC3339))
	fmt.Fprintf(&buf, "Version: %s\n", version.String())
	fmt.Fprintf(&buf, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	if c.Job != "" {
		fmt.Fprintf(&buf, "Job: %s\n", c.Job)
	}
	if len(c.Args) > 0 {
		fmt.Fprintf(&buf, "Args: %q\n", c.Args)
	}
	fmt.Fprintf(&buf, "\nPanic: %v\n\nStack:\n%s\n", panicVal, stack)

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return path, fmt.Errorf("write crash report: %w", err)
	}
	return path, nil
}
