/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package log sets up the process-wide slog logger for gocomicbox.
//
// Records go to the console (a compact line format or JSON) and, when a file
// is configured, to a rotating JSON log. Every record carries app and ver;
// records logged with a context from ContextWithJob also carry the job.
package log

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	lj "gopkg.in/natefinch/lumberjack.v2"

	"gocomicbox/internal/version"
)

// Options controls Init. FromEnv fills it from GCB_LOG_LEVEL, GCB_LOG_FORMAT,
// GCB_LOG_SOURCE and GCB_LOG_FILE.
type Options struct {
	Level     string // debug, info, warn or error; anything else is info
	Format    string // "console" or "json"
	AddSource bool
	File      string // rotated JSON log; empty disables it

	// Console receives console output; nil means os.Stderr.
	Console io.Writer
}

var current atomic.Pointer[slog.Logger]

// L returns the process logger, initialising it from the environment on
// first use.
func L() *slog.Logger {
	if l := current.Load(); l != nil {
		return l
	}
	Init(FromEnv())
	return current.Load()
}

// Init replaces the process logger and slog.Default.
func Init(opts Options) {
	lvl := ParseLevel(opts.Level)
	hopts := &slog.HandlerOptions{Level: lvl, AddSource: opts.AddSource}

	console := opts.Console
	if console == nil {
		console = os.Stderr
	}
	var hs []slog.Handler
	if strings.EqualFold(strings.TrimSpace(opts.Format), "json") {
		hs = append(hs, slog.NewJSONHandler(console, hopts))
	} else {
		hs = append(hs, &lineHandler{level: lvl, source: opts.AddSource, out: &lockedWriter{w: console}})
	}
	if f := strings.TrimSpace(opts.File); f != "" {
		rot := &lj.Logger{Filename: f, MaxSize: 10, MaxBackups: 3, MaxAge: 28, Compress: true}
		hs = append(hs, slog.NewJSONHandler(rot, hopts))
	}

	h := hs[0]
	if len(hs) > 1 {
		h = fanout(hs)
	}
	l := slog.New(jobHandler{next: h}).With(
		slog.String("app", "gocomicbox"),
		slog.String("ver", version.String()),
	)
	current.Store(l)
	slog.SetDefault(l)
}

// FromEnv builds Options from the GCB_LOG_* variables.
func FromEnv() Options {
	o := Options{
		Level:     "info",
		Format:    "console",
		AddSource: strings.EqualFold(os.Getenv("GCB_LOG_SOURCE"), "true"),
		File:      os.Getenv("GCB_LOG_FILE"),
	}
	if v := os.Getenv("GCB_LOG_LEVEL"); v != "" {
		o.Level = v
	}
	if v := os.Getenv("GCB_LOG_FORMAT"); v != "" {
		o.Format = v
	}
	return o
}

// ParseLevel accepts slog level names in any case ("warning" too) and falls
// back to info.
func ParseLevel(s string) slog.Level {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "warning") {
		return slog.LevelWarn
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return l
}

// WithComponent returns a logger with the component attribute pre-set.
func WithComponent(name string) *slog.Logger { return L().With(slog.String("component", name)) }

// WithOperation annotates the logger with an operation name.
func WithOperation(l *slog.Logger, op string) *slog.Logger { return l.With(slog.String("op", op)) }

type jobKey struct{}

// ContextWithJob tags ctx with the job being processed, a file path or a
// script location.
func ContextWithJob(ctx context.Context, job string) context.Context {
	return context.WithValue(ctx, jobKey{}, job)
}

// JobFromContext returns the job set by ContextWithJob.
func JobFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	p, ok := ctx.Value(jobKey{}).(string)
	return p, ok && p != ""
}

// jobHandler adds the context's job to each record.
type jobHandler struct{ next slog.Handler }

func (h jobHandler) Enabled(ctx context.Context, l slog.Level) bool { return h.next.Enabled(ctx, l) }

func (h jobHandler) Handle(ctx context.Context, r slog.Record) error {
	if job, ok := JobFromContext(ctx); ok {
		r = r.Clone()
		r.AddAttrs(slog.String("job", job))
	}
	return h.next.Handle(ctx, r)
}

func (h jobHandler) WithAttrs(as []slog.Attr) slog.Handler {
	return jobHandler{next: h.next.WithAttrs(as)}
}

func (h jobHandler) WithGroup(name string) slog.Handler {
	return jobHandler{next: h.next.WithGroup(name)}
}

// fanout sends each record to every handler; the first error wins.
type fanout []slog.Handler

func (f fanout) Enabled(ctx context.Context, l slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, l) {
			return true
		}
	}
	return false
}

func (f fanout) Handle(ctx context.Context, r slog.Record) error {
	var first error
	for _, h := range f {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (f fanout) WithAttrs(as []slog.Attr) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithAttrs(as)
	}
	return out
}

func (f fanout) WithGroup(name string) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithGroup(name)
	}
	return out
}

// lockedWriter keeps lines from parallel renders whole.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) WriteString(s string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, err := io.WriteString(l.w, s)
	return err
}

// lineHandler prints one line per record:
//
//	15:04:05.000 INF [job] message key=value ...
//
// The job attribute becomes the bracketed prefix; app and ver are left to
// the JSON outputs.
type lineHandler struct {
	level  slog.Leveler
	source bool
	out    *lockedWriter
	attrs  []slog.Attr
	prefix string // group path, "a.b."
}

func (h *lineHandler) Enabled(_ context.Context, l slog.Level) bool {
	return l >= h.level.Level()
}

func (h *lineHandler) Handle(_ context.Context, r slog.Record) error {
	var job string
	var kv strings.Builder
	add := func(prefix string, a slog.Attr) {
		switch {
		case a.Key == "job" && prefix == "":
			job = a.Value.String()
		case prefix == "" && (a.Key == "app" || a.Key == "ver"):
		default:
			kv.WriteByte(' ')
			kv.WriteString(prefix)
			kv.WriteString(a.Key)
			kv.WriteByte('=')
			kv.WriteString(valueString(a.Value.Resolve()))
		}
	}
	for _, a := range h.attrs {
		add("", a)
	}
	r.Attrs(func(a slog.Attr) bool {
		add(h.prefix, a)
		return true
	})

	var b strings.Builder
	ts := r.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	b.WriteString(ts.Format("15:04:05.000"))
	b.WriteByte(' ')
	b.WriteString(levelTag(r.Level))
	if job != "" {
		b.WriteString(" [")
		b.WriteString(job)
		b.WriteByte(']')
	}
	b.WriteByte(' ')
	b.WriteString(r.Message)
	b.WriteString(kv.String())
	if h.source {
		if src := r.Source(); src != nil && src.File != "" {
			b.WriteString(" src=")
			b.WriteString(src.File)
			b.WriteByte(':')
			b.WriteString(strconv.Itoa(src.Line))
		}
	}
	b.WriteByte('\n')
	return h.out.WriteString(b.String())
}

// WithAttrs records attrs with the group path already applied.
func (h *lineHandler) WithAttrs(as []slog.Attr) slog.Handler {
	cp := *h
	cp.attrs = append([]slog.Attr(nil), h.attrs...)
	for _, a := range as {
		a.Key = h.prefix + a.Key
		cp.attrs = append(cp.attrs, a)
	}
	return &cp
}

func (h *lineHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	cp := *h
	cp.prefix = h.prefix + name + "."
	return &cp
}

func levelTag(l slog.Level) string {
	switch {
	case l < slog.LevelInfo:
		return "DBG"
	case l < slog.LevelWarn:
		return "INF"
	case l < slog.LevelError:
		return "WRN"
	default:
		return "ERR"
	}
}

func valueString(v slog.Value) string {
	switch v.Kind() {
	case slog.KindString:
		s := v.String()
		if s == "" || strings.ContainsAny(s, " \t\n\"=") {
			return strconv.Quote(s)
		}
		return s
	case slog.KindFloat64:
		return strconv.FormatFloat(v.Float64(), 'g', -1, 64)
	case slog.KindDuration:
		return v.Duration().String()
	case slog.KindTime:
		return v.Time().Format(time.RFC3339)
	case slog.KindGroup:
		parts := make([]string, 0, len(v.Group()))
		for _, a := range v.Group() {
			parts = append(parts, a.Key+"="+valueString(a.Value.Resolve()))
		}
		return "{" + strings.Join(parts, " ") + "}"
	default:
		return v.String()
	}
}
