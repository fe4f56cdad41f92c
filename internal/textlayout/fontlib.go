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
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/sync/singleflight"

	applog "gocomicbox/internal/log"
)

// DefaultFont is used when neither the job nor the config names a font.
const DefaultFont = "builtin:go-regular"

const builtinPrefix = "builtin:"

var builtinFonts = map[string][]byte{
	"go-regular": goregular.TTF,
	"go-bold":    gobold.TTF,
	"go-italic":  goitalic.TTF,
	"go-mono":    gomono.TTF,
}

// BuiltinFonts lists the embedded font sources.
func BuiltinFonts() []string {
	out := make([]string, 0, len(builtinFonts))
	for name := range builtinFonts {
		out = append(out, builtinPrefix+name)
	}
	sort.Strings(out)
	return out
}

// LoaderFunc turns a font source into a handle.
type LoaderFunc func(ctx context.Context, src string) (FontHandle, error)

// Fetcher downloads remote font data, typically through a local cache.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// NewLoader resolves "builtin:<name>", http(s) URLs via remote and
// everything else as a file path. remote may be nil, which disables URLs.
func NewLoader(remote Fetcher) LoaderFunc {
	return func(ctx context.Context, src string) (FontHandle, error) {
		var data []byte
		switch {
		case strings.HasPrefix(src, builtinPrefix):
			b, ok := builtinFonts[strings.TrimPrefix(src, builtinPrefix)]
			if !ok {
				return nil, ConfigErrorf("unknown builtin font %q", src)
			}
			data = b
		case strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://"):
			if remote == nil {
				return nil, ConfigErrorf("remote fonts are not enabled: %s", src)
			}
			b, err := remote.Fetch(ctx, src)
			if err != nil {
				return nil, fmt.Errorf("fetch font: %w", err)
			}
			data = b
		default:
			b, err := os.ReadFile(src)
			if err != nil {
				return nil, fmt.Errorf("read font %s: %w", src, err)
			}
			data = b
		}
		return ParseSFNT(src, data)
	}
}

// FontCache maps font sources to loaded handles. A source is loaded at most
// once, even when many goroutines ask for it at the same time; entries live
// for the lifetime of the cache. Failed loads are not cached.
type FontCache struct {
	load  LoaderFunc
	mu    sync.RWMutex
	fonts map[string]FontHandle
	group singleflight.Group
}

func NewFontCache(load LoaderFunc) *FontCache {
	if load == nil {
		load = NewLoader(nil)
	}
	return &FontCache{load: load, fonts: make(map[string]FontHandle)}
}

// Get returns the handle for src, loading it on first use. An empty src
// means DefaultFont.
func (c *FontCache) Get(ctx context.Context, src string) (FontHandle, error) {
	if src == "" {
		src = DefaultFont
	}
	c.mu.RLock()
	h, ok := c.fonts[src]
	c.mu.RUnlock()
	if ok {
		return h, nil
	}

	// The load outlives any single caller; each caller still stops waiting
	// when its own ctx ends.
	loadCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(src, func() (any, error) {
		c.mu.RLock()
		h, ok := c.fonts[src]
		c.mu.RUnlock()
		if ok {
			return h, nil
		}
		h, err := c.load(loadCtx, src)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.fonts[src] = h
		c.mu.Unlock()
		applog.WithComponent("fontcache").Debug("font loaded", "src", src)
		return h, nil
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			applog.WithComponent("fontcache").Debug("font load shared", "src", src)
		}
		return res.Val.(FontHandle), nil
	}
}

// Put registers a handle under src, replacing any previous one.
func (c *FontCache) Put(src string, h FontHandle) {
	c.mu.Lock()
	c.fonts[src] = h
	c.mu.Unlock()
}

// Len returns the number of loaded fonts.
func (c *FontCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.fonts)
}
