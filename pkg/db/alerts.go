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
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/candorops/netsentry/pkg/models"
)

const insertAlertSQL = `
INSERT INTO alerts (anomaly_id, device_id, alert_type, severity, channel, message, sent_at, delivered)
VALUES ($1, $2, $3, $4, $5, $6, NOW(), FALSE)
RETURNING alert_id`

// InsertAlert persists an alert row before delivery is attempted, so the
// alert has an identity even if every channel send fails.
func (db *DB) InsertAlert(ctx context.Context, alert *models.Alert) (int64, error) {
	var alertID int64

	err := db.pool.QueryRow(ctx, insertAlertSQL,
		alert.AnomalyID,
		alert.DeviceID,
		string(alert.AlertType),
		string(alert.Severity),
		alert.Channel,
		alert.Message,
	).Scan(&alertID)
	if err != nil {
		return 0, fmt.Errorf("failed to insert alert: %w", err)
	}

	return alertID, nil
}

// UpdateAlertDelivery records the delivery outcome for one alert.
func (db *DB) UpdateAlertDelivery(ctx context.Context, alertID int64, delivered bool, deliveryError string) error {
	var errText *string
	if deliveryError != "" {
		errText = &deliveryError
	}

	_, err := db.pool.Exec(ctx,
		`UPDATE alerts SET delivered = $1, delivery_error = $2 WHERE alert_id = $3`,
		delivered, errText, alertID)
	if err != nil {
		return fmt.Errorf("failed to update alert delivery: %w", err)
	}

	return nil
}

// AcknowledgeAlert records actor and timestamp. Idempotent: last writer wins.
func (db *DB) AcknowledgeAlert(ctx context.Context, alertID int64, actor string) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE alerts SET acknowledged_at = NOW(), acknowledged_by = $1 WHERE alert_id = $2`,
		actor, alertID)
	if err != nil {
		return fmt.Errorf("failed to acknowledge alert %d: %w", alertID, err)
	}

	return nil
}

const unresolvedTrackingSQL = `
SELECT alert_key, first_occurrence, last_occurrence, occurrence_count, last_alert_sent, throttle_until, resolved
FROM alert_tracking
WHERE alert_key = $1 AND resolved = FALSE`

// GetUnresolvedTracking returns the unresolved tracking record for a dedup
// key, or (nil, nil) when none exists.
func (db *DB) GetUnresolvedTracking(ctx context.Context, alertKey string) (*models.AlertTracking, error) {
	var (
		t             models.AlertTracking
		lastAlertSent *time.Time
	)

	err := db.pool.QueryRow(ctx, unresolvedTrackingSQL, alertKey).Scan(
		&t.AlertKey, &t.FirstOccurrence, &t.LastOccurrence, &t.OccurrenceCount,
		&lastAlertSent, &t.ThrottleUntil, &t.Resolved)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to query alert tracking for %s: %w", alertKey, err)
	}

	if lastAlertSent != nil {
		t.LastAlertSent = *lastAlertSent
	}

	return &t, nil
}

// IncrementTrackingOccurrence bumps the occurrence counter for a suppressed
// repeat without touching throttle state.
func (db *DB) IncrementTrackingOccurrence(ctx context.Context, alertKey string) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE alert_tracking
		 SET occurrence_count = occurrence_count + 1, last_occurrence = NOW()
		 WHERE alert_key = $1 AND resolved = FALSE`,
		alertKey)
	if err != nil {
		return fmt.Errorf("failed to increment tracking occurrence for %s: %w", alertKey, err)
	}

	return nil
}

const upsertTrackingSQL = `
INSERT INTO alert_tracking (alert_key, first_occurrence, last_occurrence, occurrence_count, last_alert_sent, throttle_until, resolved)
VALUES ($1, NOW(), NOW(), 1, NOW(), $2, FALSE)
ON CONFLICT (alert_key)
DO UPDATE SET
	last_occurrence = NOW(),
	occurrence_count = alert_tracking.occurrence_count + 1,
	last_alert_sent = NOW(),
	throttle_until = $2,
	resolved = FALSE`

// UpsertAlertTracking creates or extends the tracking record after a
// dispatch, with atomic increment-or-insert semantics.
func (db *DB) UpsertAlertTracking(ctx context.Context, alertKey string, throttleUntil *time.Time) error {
	_, err := db.pool.Exec(ctx, upsertTrackingSQL, alertKey, throttleUntil)
	if err != nil {
		return fmt.Errorf("failed to upsert alert tracking for %s: %w", alertKey, err)
	}

	return nil
}

// ResolveTracking marks the incident resolved, clearing suppression for the
// dedup key.
func (db *DB) ResolveTracking(ctx context.Context, alertKey string) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE alert_tracking SET resolved = TRUE WHERE alert_key = $1`, alertKey)
	if err != nil {
		return fmt.Errorf("failed to resolve tracking for %s: %w", alertKey, err)
	}

	return nil
}

const listUnresolvedTrackingSQL = `
SELECT alert_key, first_occurrence, last_occurrence, occurrence_count, last_alert_sent, throttle_until, resolved
FROM alert_tracking
WHERE resolved = FALSE`

// ListUnresolvedTracking returns every open incident, consumed by the
// escalation sweep.
func (db *DB) ListUnresolvedTracking(ctx context.Context) ([]*models.AlertTracking, error) {
	rows, err := db.pool.Query(ctx, listUnresolvedTrackingSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to list unresolved tracking: %w", err)
	}
	defer rows.Close()

	var tracking []*models.AlertTracking

	for rows.Next() {
		var (
			t             models.AlertTracking
			lastAlertSent *time.Time
		)

		if err := rows.Scan(&t.AlertKey, &t.FirstOccurrence, &t.LastOccurrence,
			&t.OccurrenceCount, &lastAlertSent, &t.ThrottleUntil, &t.Resolved); err != nil {
			return nil, fmt.Errorf("failed to scan tracking row: %w", err)
		}

		if lastAlertSent != nil {
			t.LastAlertSent = *lastAlertSent
		}

		tracking = append(tracking, &t)
	}

	return tracking, rows.Err()
}
