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

package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/candorops/netsentry/pkg/models"
)

const upsertAnomalySQL = `
INSERT INTO anomalies (device_ip, device_name, anomaly_type, severity, confidence, payload, detected_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (device_ip, anomaly_type, detected_at) DO UPDATE SET
	severity = EXCLUDED.severity,
	confidence = EXCLUDED.confidence,
	payload = EXCLUDED.payload
RETURNING anomaly_id`

// UpsertAnomaly stores one anomaly occurrence. The typed payload is
// serialized to JSON.
func (db *DB) UpsertAnomaly(ctx context.Context, anomaly *models.Anomaly) (int64, error) {
	payload, err := json.Marshal(anomaly)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal anomaly payload: %w", err)
	}

	var anomalyID int64

	err = db.pool.QueryRow(ctx, upsertAnomalySQL,
		anomaly.DeviceIP,
		anomaly.DeviceName,
		string(anomaly.Type),
		string(anomaly.Severity),
		anomaly.Confidence,
		payload,
		anomaly.DetectedAt,
	).Scan(&anomalyID)
	if err != nil {
		return 0, fmt.Errorf("failed to upsert anomaly %s/%s: %w", anomaly.DeviceIP, anomaly.Type, err)
	}

	return anomalyID, nil
}

const pendingAnomaliesSQL = `
SELECT a.anomaly_id, a.payload
FROM anomalies a
WHERE a.detected_at >= $1
  AND NOT EXISTS (SELECT 1 FROM alerts WHERE alerts.anomaly_id = a.anomaly_id)
ORDER BY a.detected_at DESC
LIMIT $2`

// GetPendingAnomalies returns recent anomalies that have no alert row yet,
// consumed by the standalone alerter loop.
func (db *DB) GetPendingAnomalies(ctx context.Context, since time.Time, limit int) ([]*models.Anomaly, error) {
	rows, err := db.pool.Query(ctx, pendingAnomaliesSQL, since, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending anomalies: %w", err)
	}
	defer rows.Close()

	var anomalies []*models.Anomaly

	for rows.Next() {
		var (
			anomalyID int64
			payload   []byte
		)

		if err := rows.Scan(&anomalyID, &payload); err != nil {
			return nil, fmt.Errorf("failed to scan anomaly row: %w", err)
		}

		var anomaly models.Anomaly

		if err := json.Unmarshal(payload, &anomaly); err != nil {
			db.logger.Warn().Err(err).Int64("anomaly_id", anomalyID).Msg("Skipping undecodable anomaly payload")
			continue
		}

		anomaly.AnomalyID = anomalyID
		anomalies = append(anomalies, &anomaly)
	}

	return anomalies, rows.Err()
}
