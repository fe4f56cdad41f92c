/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	applog "gocomicbox/internal/log"
)

// maxFontBytes bounds a single download.
const maxFontBytes = 32 << 20

// Fetcher downloads fonts over HTTP and keeps them in a FontStore.
type Fetcher struct {
	Store   *FontStore
	Client  *http.Client
	Timeout time.Duration
}

// NewFetcher returns a fetcher with its own client. timeout <= 0 means 15s.
func NewFetcher(store *FontStore, timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Fetcher{Store: store, Client: &http.Client{}, Timeout: timeout}
}

// Fetch returns the cached copy of url, downloading it on a miss.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	l := applog.WithOperation(applog.WithComponent("storage"), "font_fetch").With(slog.String("url", url))
	if f.Store != nil {
		b, err := f.Store.Get(ctx, url)
		if err != nil {
			l.Warn("font cache read failed", slog.Any("err", err))
		} else if b != nil {
			l.Debug("font cache hit", slog.Int("bytes", len(b)))
			return b, nil
		}
	}
	b, err := f.download(ctx, url)
	if err != nil {
		return nil, err
	}
	if f.Store != nil {
		if err := f.Store.Put(ctx, url, b); err != nil {
			l.Warn("font cache write failed", slog.Any("err", err))
		}
	}
	l.Info("font downloaded", slog.Int("bytes", len(b)))
	return b, nil
}

func (f *Fetcher) download(ctx context.Context, url string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, f.Timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download %s: status %s", url, resp.Status)
	}
	b, err := io.ReadAll(io.LimitReader(resp.Body, maxFontBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", url, err)
	}
	if len(b) > maxFontBytes {
		return nil, fmt.Errorf("download %s: larger than %d bytes", url, maxFontBytes)
	}
	if len(b) == 0 {
		return nil, fmt.Errorf("download %s: empty body", url)
	}
	return b, nil
}
