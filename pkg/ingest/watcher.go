/*
 * Copyright 2025 Candor Operations Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package ingest

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/candorops/netsentry/pkg/logger"
	"github.com/candorops/netsentry/pkg/models"
)

const defaultSettleDelay = 500 * time.Millisecond

// FileWatcher feeds scans from a drop directory. Collectors write one JSON
// file per scan; the watcher waits a settle delay after the last write so a
// partially-written file is never parsed, and remembers processed files so
// duplicate events deliver a scan only once.
type FileWatcher struct {
	dir     string
	settle  time.Duration
	handler Handler
	logger  zerolog.Logger

	mu        sync.Mutex
	processed map[string]time.Time
}

// NewFileWatcher creates a watcher over cfg.WatchDir.
func NewFileWatcher(cfg models.IngestConfig, handler Handler, log logger.Logger) *FileWatcher {
	settle := cfg.SettleDelay.Std()
	if settle <= 0 {
		settle = defaultSettleDelay
	}

	return &FileWatcher{
		dir:       cfg.WatchDir,
		settle:    settle,
		handler:   handler,
		logger:    log.WithComponent("ingest.watch"),
		processed: make(map[string]time.Time),
	}
}

// Run watches the directory until ctx is canceled. Existing files are swept
// first so scans dropped while the service was down are not lost.
func (w *FileWatcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(w.dir); err != nil {
		return err
	}

	w.logger.Info().Str("dir", w.dir).Msg("Watching for scan files")

	w.sweepExisting(ctx)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			if !isScanFile(event.Name) {
				continue
			}

			w.settleAndProcess(ctx, event.Name)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}

			w.logger.Error().Err(err).Msg("Watcher error")
		}
	}
}

func (w *FileWatcher) sweepExisting(ctx context.Context) {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		w.logger.Error().Err(err).Msg("Initial directory sweep failed")
		return
	}

	for _, entry := range entries {
		if entry.IsDir() || !isScanFile(entry.Name()) {
			continue
		}

		w.process(ctx, filepath.Join(w.dir, entry.Name()))
	}
}

// settleAndProcess waits for the file to stop changing before parsing it.
func (w *FileWatcher) settleAndProcess(ctx context.Context, path string) {
	timer := time.NewTimer(w.settle)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return
	case <-timer.C:
	}

	w.process(ctx, path)
}

func (w *FileWatcher) process(ctx context.Context, path string) {
	info, err := os.Stat(path)
	if err != nil {
		return
	}

	w.mu.Lock()
	if seen, ok := w.processed[path]; ok && !info.ModTime().After(seen) {
		w.mu.Unlock()
		return
	}
	w.processed[path] = info.ModTime()
	w.mu.Unlock()

	data, err := os.ReadFile(path)
	if err != nil {
		w.logger.Error().Err(err).Str("file", path).Msg("Scan file read failed")
		return
	}

	scan, err := decodeScan(data)
	if err != nil {
		w.logger.Error().Err(err).Str("file", path).Msg("Scan file is not valid JSON")
		return
	}

	if err := w.handler(ctx, scan); err != nil {
		w.logger.Error().Err(err).Str("file", path).Str("scan_id", scan.ScanID).Msg("Scan rejected")
		return
	}

	w.logger.Info().Str("file", path).Str("scan_id", scan.ScanID).Msg("Scan file processed")
}

func isScanFile(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}
