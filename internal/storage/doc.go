/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package storage implements the per-user font cache.
// Downloaded font files are kept as blobs in an embedded SQLite database at <cache dir>/fonts.sqlite,
// keyed by their source URL, with size and access tracking for LRU eviction.
// The cache is disposable: a corrupt database is backed up and recreated.
package storage
