/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textlayout

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"golang.org/x/image/font/gofont/goregular"
)

func regular(t *testing.T) *SFNTFont {
	t.Helper()
	f, err := ParseSFNT("builtin:go-regular", goregular.TTF)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return f
}

func TestSFNTFont_Metrics(t *testing.T) {
	f := regular(t)
	vm := f.VerticalMetrics()
	if vm.Ascender <= 0 || vm.Descender >= 0 {
		t.Fatalf("unexpected metrics %+v", vm)
	}
	if f.Name() == "" || f.ID() != "builtin:go-regular" {
		t.Fatalf("name/id")
	}
}

func TestSFNTFont_MeasureScalesLinearly(t *testing.T) {
	f := regular(t)
	w10 := f.MeasureWidth("Hello World", 10)
	w80 := f.MeasureWidth("Hello World", 80)
	if w10 <= 0 || math.Abs(w80-8*w10) > 1e-9 {
		t.Fatalf("widths %v %v", w10, w80)
	}
	if f.MeasureWidth("", 80) != 0 {
		t.Fatalf("empty width")
	}
	// Control characters have no advance.
	if a, b := f.MeasureWidth("ab", 40), f.MeasureWidth("ab\n", 40); math.Abs(a-b) > 1e-9 {
		t.Fatalf("newline changed width: %v vs %v", a, b)
	}
	if f.MeasureWidth("Hello ", 40) <= f.MeasureWidth("Hello", 40) {
		t.Fatalf("trailing space must be measured")
	}
}

func TestSFNTFont_GlyphPath(t *testing.T) {
	f := regular(t)
	p := f.GlyphPath("Hi", 10, 100, 80)
	if p.Empty() {
		t.Fatalf("no outline")
	}
	b := p.Bounds()
	w := f.MeasureWidth("Hi", 80)
	if b.Min().X < 10 || b.Max().X > 10+w+1 {
		t.Fatalf("bounds %+v outside advance %v", b, w)
	}
	// Glyphs sit on the baseline and extend upwards (y down).
	if b.Max().Y > 100.5 || b.Min().Y > 100-80*0.5 {
		t.Fatalf("unexpected vertical extent %+v", b)
	}
	if !f.GlyphPath(" \n", 0, 0, 80).Empty() {
		t.Fatalf("space and newline must not draw")
	}
}

func TestSFNTFont_ParseError(t *testing.T) {
	if _, err := ParseSFNT("junk", []byte("not a font")); err == nil {
		t.Fatalf("expected error")
	}
}

func TestFontCache_LoadsOncePerKey(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	c := NewFontCache(func(ctx context.Context, src string) (FontHandle, error) {
		calls.Add(1)
		<-release
		return testFont, nil
	})
	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.Get(context.Background(), "x")
			errs <- err
		}()
	}
	close(release)
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("get: %v", err)
		}
	}
	// Late callers hit the map instead of the loader.
	if _, err := c.Get(context.Background(), "x"); err != nil {
		t.Fatal(err)
	}
	if n := calls.Load(); n < 1 || n > 16 {
		t.Fatalf("loader calls: %d", n)
	}
	before := calls.Load()
	_, _ = c.Get(context.Background(), "x")
	if calls.Load() != before || c.Len() != 1 {
		t.Fatalf("cached font loaded again")
	}
}

func TestFontCache_ErrorsAreNotCached(t *testing.T) {
	fail := true
	c := NewFontCache(func(ctx context.Context, src string) (FontHandle, error) {
		if fail {
			return nil, errors.New("boom")
		}
		return testFont, nil
	})
	if _, err := c.Get(context.Background(), "x"); err == nil {
		t.Fatalf("want error")
	}
	fail = false
	if _, err := c.Get(context.Background(), "x"); err != nil {
		t.Fatalf("retry: %v", err)
	}
}

func TestFontCache_CancelledCallerDoesNotFailOthers(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	c := NewFontCache(func(ctx context.Context, src string) (FontHandle, error) {
		close(started)
		<-release
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return testFont, nil
	})
	first, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := c.Get(first, "x")
		firstErr <- err
	}()
	<-started
	secondErr := make(chan error, 1)
	go func() {
		_, err := c.Get(context.Background(), "x")
		secondErr <- err
	}()
	cancel()
	if err := <-firstErr; !errors.Is(err, context.Canceled) {
		t.Fatalf("cancelled caller: %v", err)
	}
	close(release)
	if err := <-secondErr; err != nil {
		t.Fatalf("waiting caller failed with the first caller's context: %v", err)
	}
	if c.Len() != 1 {
		t.Fatalf("font not cached")
	}
}

func TestLoader_Sources(t *testing.T) {
	load := NewLoader(nil)
	ctx := context.Background()
	for _, src := range BuiltinFonts() {
		if _, err := load(ctx, src); err != nil {
			t.Fatalf("%s: %v", src, err)
		}
	}
	if _, err := load(ctx, "builtin:comic-sans"); !errors.Is(err, ErrConfiguration) {
		t.Fatalf("unknown builtin: %v", err)
	}
	if _, err := load(ctx, "https://example.com/x.ttf"); !errors.Is(err, ErrConfiguration) {
		t.Fatalf("remote without fetcher: %v", err)
	}
	path := filepath.Join(t.TempDir(), "f.ttf")
	if err := os.WriteFile(path, goregular.TTF, 0o644); err != nil {
		t.Fatal(err)
	}
	h, err := load(ctx, path)
	if err != nil {
		t.Fatalf("file: %v", err)
	}
	if h.MeasureWidth("a", 10) <= 0 {
		t.Fatalf("file font does not measure")
	}
}

type stubFetcher struct{ data []byte }

func (s stubFetcher) Fetch(context.Context, string) ([]byte, error) { return s.data, nil }

func TestLoader_Remote(t *testing.T) {
	load := NewLoader(stubFetcher{data: goregular.TTF})
	if _, err := load(context.Background(), "https://fonts.example/regular.ttf"); err != nil {
		t.Fatalf("remote: %v", err)
	}
	c := NewFontCache(nil)
	if h, err := c.Get(context.Background(), ""); err != nil || h == nil {
		t.Fatalf("default font: %v", err)
	}
}
