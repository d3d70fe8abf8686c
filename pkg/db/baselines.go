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
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/candorops/netsentry/pkg/models"
)

// LoadBaseline returns the stored baseline snapshot for an (entity, metric)
// pair, or (nil, nil) when none exists.
func (db *DB) LoadBaseline(ctx context.Context, entity string, metric models.MetricType) (*models.BaselineSnapshot, error) {
	var data []byte

	err := db.pool.QueryRow(ctx,
		`SELECT baseline_data FROM device_baselines
		 WHERE device_ip = $1 AND metric_type = $2
		 ORDER BY updated_at DESC LIMIT 1`,
		entity, string(metric)).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to load baseline %s/%s: %w", entity, metric, err)
	}

	var snapshot models.BaselineSnapshot

	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to decode baseline %s/%s: %w", entity, metric, err)
	}

	return &snapshot, nil
}

const saveBaselineSQL = `
INSERT INTO device_baselines (device_ip, metric_type, baseline_data, updated_at)
VALUES ($1, $2, $3, NOW())
ON CONFLICT (device_ip, metric_type)
DO UPDATE SET
	baseline_data = EXCLUDED.baseline_data,
	updated_at = EXCLUDED.updated_at`

// SaveBaseline upserts the baseline snapshot keyed by (entity, metric).
func (db *DB) SaveBaseline(ctx context.Context, entity string, metric models.MetricType, snapshot *models.BaselineSnapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal baseline: %w", err)
	}

	_, err = db.pool.Exec(ctx, saveBaselineSQL, entity, string(metric), data)
	if err != nil {
		return fmt.Errorf("failed to save baseline %s/%s: %w", entity, metric, err)
	}

	return nil
}

// LogRecalibration appends one recalibration audit record.
func (db *DB) LogRecalibration(ctx context.Context, record *models.RecalibrationRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal recalibration record: %w", err)
	}

	_, err = db.pool.Exec(ctx,
		`INSERT INTO baseline_recalibration_logs (device_ip, metric_type, recalibration_data, created_at)
		 VALUES ($1, $2, $3, NOW())`,
		record.Entity, string(record.Metric), data)
	if err != nil {
		return fmt.Errorf("failed to log recalibration: %w", err)
	}

	return nil
}

const listBaselineEntitiesSQL = `
SELECT DISTINCT d.ip_address, 'response_time'
FROM devices d
JOIN device_status_history h ON h.device_id = d.device_id
WHERE h.response_time_ms > 0
UNION
SELECT DISTINCT device_ip, metric_type FROM device_baselines`

// ListBaselineEntities returns every candidate (entity, metric) pair for the
// recalibration loop: devices with latency samples on record, union already-
// tracked baselines. Candidates must come from the sample data so a first
// baseline can be built before any baseline row exists.
func (db *DB) ListBaselineEntities(ctx context.Context) ([]BaselineEntity, error) {
	rows, err := db.pool.Query(ctx, listBaselineEntitiesSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to list baseline entities: %w", err)
	}
	defer rows.Close()

	var entities []BaselineEntity

	for rows.Next() {
		var (
			entity BaselineEntity
			metric string
		)

		if err := rows.Scan(&entity.Entity, &metric); err != nil {
			return nil, fmt.Errorf("failed to scan baseline entity row: %w", err)
		}

		entity.Metric = models.MetricType(metric)
		entities = append(entities, entity)
	}

	return entities, rows.Err()
}

// GetMetricSamples returns recent samples for an (entity, metric) pair from
// the status history, oldest first.
func (db *DB) GetMetricSamples(ctx context.Context, entity string, metric models.MetricType, since time.Time) ([]models.MetricSample, error) {
	if metric != models.MetricResponseTime {
		return nil, nil
	}

	rows, err := db.pool.Query(ctx,
		`SELECT h.response_time_ms, h.recorded_at
		 FROM device_status_history h
		 JOIN devices d ON d.device_id = h.device_id
		 WHERE d.ip_address = $1 AND h.recorded_at >= $2 AND h.response_time_ms > 0
		 ORDER BY h.recorded_at ASC`,
		entity, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query metric samples for %s: %w", entity, err)
	}
	defer rows.Close()

	var samples []models.MetricSample

	for rows.Next() {
		var s models.MetricSample

		if err := rows.Scan(&s.Value, &s.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan sample row: %w", err)
		}

		samples = append(samples, s)
	}

	return samples, rows.Err()
}
