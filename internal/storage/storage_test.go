/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func openStore(t *testing.T, dir string) *FontStore {
	t.Helper()
	s, err := OpenFontStore(dir)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestOpenCache_SchemaVersion(t *testing.T) {
	dir := t.TempDir()
	db, err := OpenCache(dir)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()
	var v int
	if err := db.QueryRow(`SELECT schema FROM version WHERE id=1`).Scan(&v); err != nil || v != schemaVersion {
		t.Fatalf("schema %d, %v", v, err)
	}
	var mode string
	if err := db.QueryRow(`PRAGMA journal_mode;`).Scan(&mode); err != nil || mode != "wal" {
		t.Fatalf("journal mode %q, %v", mode, err)
	}
	if _, err := os.Stat(CachePath(dir)); err != nil {
		t.Fatalf("cache file: %v", err)
	}
}

func TestOpenCache_RecreatesCorruptFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(CachePath(dir), []byte("THIS IS NOT SQLITE"), 0o644); err != nil {
		t.Fatal(err)
	}
	db, err := OpenCache(dir)
	if err != nil {
		t.Fatalf("open after corruption: %v", err)
	}
	_ = db.Close()
	baks, _ := filepath.Glob(filepath.Join(dir, "backups", "*.bak"))
	if len(baks) != 1 {
		t.Fatalf("expected one backup, got %v", baks)
	}
}

func TestOpenCache_RequiresDir(t *testing.T) {
	if _, err := OpenCache("  "); err == nil {
		t.Fatalf("expected error")
	}
}

func TestFontStore_PutGetEvict(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, t.TempDir())
	if b, err := s.Get(ctx, "https://x/a.ttf"); err != nil || b != nil {
		t.Fatalf("miss: %v %v", b, err)
	}
	if err := s.Put(ctx, "https://x/a.ttf", []byte("font-a")); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := s.Put(ctx, "https://x/b.ttf", []byte("font-bb")); err != nil {
		t.Fatalf("put: %v", err)
	}
	b, err := s.Get(ctx, "https://x/a.ttf")
	if err != nil || string(b) != "font-a" {
		t.Fatalf("get: %q %v", b, err)
	}
	if total, _ := s.TotalBytes(ctx); total != 13 {
		t.Fatalf("total %d", total)
	}
	list, err := s.List(ctx)
	if err != nil || len(list) != 2 || list[0].SHA256 == "" {
		t.Fatalf("list %+v %v", list, err)
	}
	if n, err := s.Evict(ctx, "https://x/a.ttf"); err != nil || n != 1 {
		t.Fatalf("evict one: %d %v", n, err)
	}
	if n, err := s.Evict(ctx, ""); err != nil || n != 1 {
		t.Fatalf("evict all: %d %v", n, err)
	}
	if err := s.Put(ctx, "", []byte("x")); err == nil {
		t.Fatalf("empty url accepted")
	}
}

func TestFontStore_LRUCap(t *testing.T) {
	t.Setenv("GCB_FONT_CACHE_MAX_BYTES", "64")
	ctx := context.Background()
	s := openStore(t, t.TempDir())
	for _, u := range []string{"a", "b", "c"} {
		if err := s.Put(ctx, u, make([]byte, 40)); err != nil {
			t.Fatalf("put %s: %v", u, err)
		}
		time.Sleep(5 * time.Millisecond)
	}
	total, err := s.TotalBytes(ctx)
	if err != nil || total > 64 {
		t.Fatalf("expected eviction to <=64 bytes, got %d (%v)", total, err)
	}
	if b, _ := s.Get(ctx, "c"); b == nil {
		t.Fatalf("latest entry evicted")
	}
}

func TestFontStore_EvictsByAccessTime(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, t.TempDir())
	s.maxBytes = 0
	for _, u := range []string{"old", "new"} {
		if err := s.Put(ctx, u, make([]byte, 10)); err != nil {
			t.Fatalf("put %s: %v", u, err)
		}
	}
	// Sub-second stamps that differ only in their trailing digits.
	base := time.Date(2025, 3, 1, 12, 0, 5, 0, time.UTC)
	for u, at := range map[string]time.Time{"old": base.Add(100 * time.Millisecond), "new": base.Add(120 * time.Millisecond)} {
		if _, err := s.db.ExecContext(ctx, `UPDATE fonts SET last_access=? WHERE url=?`, stamp(at), u); err != nil {
			t.Fatal(err)
		}
	}
	s.maxBytes = 25
	if err := s.Put(ctx, "third", make([]byte, 10)); err != nil {
		t.Fatalf("put third: %v", err)
	}
	entries, err := s.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	got := map[string]bool{}
	for _, e := range entries {
		got[e.URL] = true
	}
	if len(got) != 2 || !got["third"] || !got["new"] {
		t.Fatalf("want third and new kept, got %v", got)
	}
	if !entries[len(entries)-1].LastAccess.Equal(base.Add(120 * time.Millisecond)) {
		t.Fatalf("access time not parsed back: %v", entries[len(entries)-1].LastAccess)
	}
}

func TestFetcher_CachesDownloads(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.ttf" {
			http.NotFound(w, r)
			return
		}
		hits.Add(1)
		_, _ = w.Write([]byte("fake font bytes"))
	}))
	defer srv.Close()

	ctx := context.Background()
	f := NewFetcher(openStore(t, t.TempDir()), time.Second)
	for i := 0; i < 3; i++ {
		b, err := f.Fetch(ctx, srv.URL+"/font.ttf")
		if err != nil || !bytes.Equal(b, []byte("fake font bytes")) {
			t.Fatalf("fetch %d: %q %v", i, b, err)
		}
	}
	if hits.Load() != 1 {
		t.Fatalf("want one download, got %d", hits.Load())
	}
	if _, err := f.Fetch(ctx, srv.URL+"/missing.ttf"); err == nil {
		t.Fatalf("404 must fail")
	}
}

func TestFetcher_WithoutStore(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("x"))
	}))
	defer srv.Close()
	f := NewFetcher(nil, 0)
	if b, err := f.Fetch(context.Background(), srv.URL); err != nil || string(b) != "x" {
		t.Fatalf("fetch: %q %v", b, err)
	}
}
