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

// Package ingest delivers scan snapshots to the pipeline, either from a
// watched directory of JSON files or from a JetStream subject.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/candorops/netsentry/pkg/models"
)

// Handler consumes one decoded scan. A returned error marks the delivery as
// failed; redelivery policy belongs to the source.
type Handler func(ctx context.Context, scan *models.Scan) error

// decodeScan parses a scan snapshot from raw JSON.
func decodeScan(data []byte) (*models.Scan, error) {
	var scan models.Scan

	if err := json.Unmarshal(data, &scan); err != nil {
		return nil, fmt.Errorf("decoding scan: %w", err)
	}

	// Scanners that do not tag their output get a generated ID so the
	// snapshot is still traceable through status history.
	if scan.ScanID == "" {
		scan.ScanID = uuid.New().String()
	}

	return &scan, nil
}
