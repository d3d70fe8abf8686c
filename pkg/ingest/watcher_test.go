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
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/candorops/netsentry/pkg/logger"
	"github.com/candorops/netsentry/pkg/models"
)

const scanJSON = `{
	"scan_id": "scan-001",
	"subnet": "192.168.1.0/24",
	"devices": [{"ip": "192.168.1.10", "status": "online", "open_ports": [22]}]
}`

func TestDecodeScan(t *testing.T) {
	scan, err := decodeScan([]byte(scanJSON))
	require.NoError(t, err)

	assert.Equal(t, "scan-001", scan.ScanID)
	assert.Equal(t, "192.168.1.0/24", scan.Subnet)
	require.Len(t, scan.Devices, 1)
	assert.Equal(t, models.StatusOnline, scan.Devices[0].Status)
	assert.Equal(t, []int{22}, scan.Devices[0].OpenPorts)
}

func TestDecodeScanGeneratesMissingID(t *testing.T) {
	scan, err := decodeScan([]byte(`{"subnet": "10.0.0.0/24", "devices": []}`))
	require.NoError(t, err)

	assert.NotEmpty(t, scan.ScanID)
}

func TestDecodeScanRejectsGarbage(t *testing.T) {
	_, err := decodeScan([]byte("{not json"))
	require.Error(t, err)
}

func TestFileWatcherSweepsExistingFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "scan1.json"), []byte(scanJSON), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o600))

	var handled atomic.Int32

	w := NewFileWatcher(models.IngestConfig{
		WatchDir:    dir,
		SettleDelay: models.Duration(10 * time.Millisecond),
	}, func(_ context.Context, scan *models.Scan) error {
		assert.Equal(t, "scan-001", scan.ScanID)
		handled.Add(1)

		return nil
	}, logger.NewTestLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() { done <- w.Run(ctx) }()

	require.Eventually(t, func() bool { return handled.Load() == 1 },
		2*time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}

func TestFileWatcherPicksUpNewFiles(t *testing.T) {
	dir := t.TempDir()

	var handled atomic.Int32

	w := NewFileWatcher(models.IngestConfig{
		WatchDir:    dir,
		SettleDelay: models.Duration(10 * time.Millisecond),
	}, func(_ context.Context, _ *models.Scan) error {
		handled.Add(1)
		return nil
	}, logger.NewTestLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() { _ = w.Run(ctx) }()

	// Give the watcher time to register before dropping the file.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "scan2.json"), []byte(scanJSON), 0o600))

	require.Eventually(t, func() bool { return handled.Load() >= 1 },
		2*time.Second, 10*time.Millisecond)
}

func TestFileWatcherDeduplicatesUnchangedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scan.json")
	require.NoError(t, os.WriteFile(path, []byte(scanJSON), 0o600))

	var handled atomic.Int32

	w := NewFileWatcher(models.IngestConfig{WatchDir: dir}, func(_ context.Context, _ *models.Scan) error {
		handled.Add(1)
		return nil
	}, logger.NewTestLogger())

	ctx := context.Background()
	w.process(ctx, path)
	w.process(ctx, path)

	assert.Equal(t, int32(1), handled.Load())
}
