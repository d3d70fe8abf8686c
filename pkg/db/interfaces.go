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

// Package db provides the persistence boundary for devices, anomalies,
// alerts, alert tracking, and baselines.
package db

import (
	"context"
	"time"

	"github.com/candorops/netsentry/pkg/models"
)

//go:generate mockgen -destination=mock_db.go -package=db github.com/candorops/netsentry/pkg/db Service

// BaselineEntity identifies one tracked (entity, metric) baseline.
type BaselineEntity struct {
	Entity string
	Metric models.MetricType
}

// Service represents all database operations. Every write is an idempotent
// upsert keyed by natural identity, safe to retry. Lookups return (nil, nil)
// when no row exists.
type Service interface {
	Close()

	// Device operations.

	UpsertDevice(ctx context.Context, device *models.Device) (int64, error)
	LoadKnownDevices(ctx context.Context) ([]*models.Device, error)
	GetDeviceIDByIP(ctx context.Context, ip string) (*int64, error)
	AppendStatusHistory(ctx context.Context, deviceID int64, status models.DeviceStatus, latencyMS float64, scanID string) error

	// Anomaly operations.

	UpsertAnomaly(ctx context.Context, anomaly *models.Anomaly) (int64, error)
	GetPendingAnomalies(ctx context.Context, since time.Time, limit int) ([]*models.Anomaly, error)

	// Alert operations.

	InsertAlert(ctx context.Context, alert *models.Alert) (int64, error)
	UpdateAlertDelivery(ctx context.Context, alertID int64, delivered bool, deliveryError string) error
	AcknowledgeAlert(ctx context.Context, alertID int64, actor string) error

	// Alert tracking operations.

	GetUnresolvedTracking(ctx context.Context, alertKey string) (*models.AlertTracking, error)
	IncrementTrackingOccurrence(ctx context.Context, alertKey string) error
	UpsertAlertTracking(ctx context.Context, alertKey string, throttleUntil *time.Time) error
	ResolveTracking(ctx context.Context, alertKey string) error
	ListUnresolvedTracking(ctx context.Context) ([]*models.AlertTracking, error)

	// Baseline operations.

	LoadBaseline(ctx context.Context, entity string, metric models.MetricType) (*models.BaselineSnapshot, error)
	SaveBaseline(ctx context.Context, entity string, metric models.MetricType, snapshot *models.BaselineSnapshot) error
	LogRecalibration(ctx context.Context, record *models.RecalibrationRecord) error
	ListBaselineEntities(ctx context.Context) ([]BaselineEntity, error)
	GetMetricSamples(ctx context.Context, entity string, metric models.MetricType, since time.Time) ([]models.MetricSample, error)
}
