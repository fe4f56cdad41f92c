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
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// stampLayout is fixed width so stored stamps sort in time order.
const stampLayout = "2006-01-02T15:04:05.000000000Z07:00"

func stamp(t time.Time) string { return t.UTC().Format(stampLayout) }

// FontStore keeps downloaded font files. It is safe for concurrent use.
type FontStore struct {
	db       *sql.DB
	maxBytes int64
}

// FontEntry describes one cached font.
type FontEntry struct {
	URL        string
	Size       int64
	SHA256     string
	FetchedAt  time.Time
	LastAccess time.Time
}

// OpenFontStore opens the cache under dir. The size cap comes from
// GCB_FONT_CACHE_MAX_BYTES.
func OpenFontStore(dir string) (*FontStore, error) {
	db, err := OpenCache(dir)
	if err != nil {
		return nil, err
	}
	return &FontStore{db: db, maxBytes: MaxFontCacheBytesFromEnv()}, nil
}

func (s *FontStore) Close() error { return s.db.Close() }

// Get returns the blob for url and updates its access time. A miss returns
// (nil, nil). A blob whose hash no longer matches is dropped and reported
// as a miss.
func (s *FontStore) Get(ctx context.Context, url string) ([]byte, error) {
	var blob []byte
	var sum string
	err := s.db.QueryRowContext(ctx, `SELECT blob, sha256 FROM fonts WHERE url=?`, url).Scan(&blob, &sum)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query font: %w", err)
	}
	if sum != "" && sum != hashOf(blob) {
		_, _ = s.db.ExecContext(ctx, `DELETE FROM fonts WHERE url=?`, url)
		return nil, nil
	}
	// touch
	now := stamp(time.Now())
	_, _ = s.db.ExecContext(ctx, `UPDATE fonts SET last_access=? WHERE url=?`, now, url)
	return blob, nil
}

// Put upserts a blob and enforces the cache size cap via LRU eviction. The
// entry just written is never evicted.
func (s *FontStore) Put(ctx context.Context, url string, blob []byte) error {
	if url == "" || len(blob) == 0 {
		return fmt.Errorf("font url and data are required")
	}
	now := stamp(time.Now())
	_, err := s.db.ExecContext(ctx, `INSERT INTO fonts(url,blob,size,sha256,fetched_at,last_access)
		VALUES(?,?,?,?,?,?)
		ON CONFLICT(url) DO UPDATE SET blob=excluded.blob, size=excluded.size, sha256=excluded.sha256, fetched_at=excluded.fetched_at, last_access=excluded.last_access`,
		url, blob, len(blob), hashOf(blob), now, now)
	if err != nil {
		return fmt.Errorf("upsert font: %w", err)
	}
	if s.maxBytes > 0 {
		return s.evictToFit(ctx, s.maxBytes, url)
	}
	return nil
}

// Evict removes url, or every entry when url is empty. It returns the
// number of removed entries.
func (s *FontStore) Evict(ctx context.Context, url string) (int64, error) {
	var res sql.Result
	var err error
	if url == "" {
		res, err = s.db.ExecContext(ctx, `DELETE FROM fonts`)
	} else {
		res, err = s.db.ExecContext(ctx, `DELETE FROM fonts WHERE url=?`, url)
	}
	if err != nil {
		return 0, fmt.Errorf("evict font: %w", err)
	}
	return res.RowsAffected()
}

// List returns all entries, most recently used first.
func (s *FontStore) List(ctx context.Context) ([]FontEntry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT url, size, sha256, fetched_at, COALESCE(last_access, '') FROM fonts
		ORDER BY COALESCE(last_access, '') DESC, url ASC`)
	if err != nil {
		return nil, fmt.Errorf("list fonts: %w", err)
	}
	defer rows.Close()
	var out []FontEntry
	for rows.Next() {
		var e FontEntry
		var fetched, access string
		if err := rows.Scan(&e.URL, &e.Size, &e.SHA256, &fetched, &access); err != nil {
			return nil, err
		}
		e.FetchedAt, _ = time.Parse(stampLayout, fetched)
		e.LastAccess, _ = time.Parse(stampLayout, access)
		out = append(out, e)
	}
	return out, rows.Err()
}

// TotalBytes returns the bytes tracked by fonts.size.
func (s *FontStore) TotalBytes(ctx context.Context) (int64, error) {
	var total int64
	if err := s.db.QueryRowContext(ctx, `SELECT COALESCE(SUM(size),0) FROM fonts`).Scan(&total); err != nil {
		return 0, fmt.Errorf("sum fonts size: %w", err)
	}
	return total, nil
}

// evictToFit deletes least-recently-used rows except keep until the total
// size is <= capBytes.
func (s *FontStore) evictToFit(ctx context.Context, capBytes int64, keep string) error {
	total, err := s.TotalBytes(ctx)
	if err != nil {
		return err
	}
	if total <= capBytes {
		return nil
	}
	rows, err := s.db.QueryContext(ctx, `SELECT url, size FROM fonts WHERE url<>? ORDER BY
		CASE WHEN last_access IS NULL THEN 0 ELSE 1 END ASC, last_access ASC`, keep)
	if err != nil {
		return fmt.Errorf("select victims: %w", err)
	}
	victims := make([]any, 0, 8)
	cur := total
	for rows.Next() {
		var url string
		var sz int64
		if err := rows.Scan(&url, &sz); err != nil {
			_ = rows.Close()
			return err
		}
		victims = append(victims, url)
		cur -= sz
		if cur <= capBytes {
			break
		}
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return err
	}
	// Close the cursor before writing.
	if err := rows.Close(); err != nil {
		return err
	}
	if len(victims) == 0 {
		return nil
	}
	q := `DELETE FROM fonts WHERE url IN (` + strings.TrimSuffix(strings.Repeat("?,", len(victims)), ",") + `)`
	if _, err := s.db.ExecContext(ctx, q, victims...); err != nil {
		return fmt.Errorf("evict delete: %w", err)
	}
	return nil
}

func hashOf(b []byte) string {
	h := sha256.Sum256(b)
	return hex.EncodeToString(h[:])
}

// MaxFontCacheBytesFromEnv reads GCB_FONT_CACHE_MAX_BYTES, defaulting to 64MB if unset.
func MaxFontCacheBytesFromEnv() int64 {
	v := os.Getenv("GCB_FONT_CACHE_MAX_BYTES")
	if v == "" {
		return 64 * 1024 * 1024
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		return 64 * 1024 * 1024
	}
	return n
}
