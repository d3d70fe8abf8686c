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

const upsertDeviceSQL = `
INSERT INTO devices (ip_address, mac_address, vendor, hostname, device_type, open_ports, risk_score, first_seen, last_seen)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (ip_address)
DO UPDATE SET
	mac_address = COALESCE(NULLIF(EXCLUDED.mac_address, ''), devices.mac_address),
	vendor = COALESCE(NULLIF(EXCLUDED.vendor, ''), devices.vendor),
	hostname = COALESCE(NULLIF(EXCLUDED.hostname, ''), devices.hostname),
	device_type = EXCLUDED.device_type,
	open_ports = EXCLUDED.open_ports,
	risk_score = EXCLUDED.risk_score,
	last_seen = EXCLUDED.last_seen
RETURNING device_id`

// UpsertDevice inserts or refreshes a device row keyed by IP address.
func (db *DB) UpsertDevice(ctx context.Context, device *models.Device) (int64, error) {
	firstSeen := device.FirstSeen
	if firstSeen.IsZero() {
		firstSeen = time.Now().UTC()
	}

	lastSeen := device.LastSeen
	if lastSeen.IsZero() {
		lastSeen = time.Now().UTC()
	}

	var deviceID int64

	err := db.pool.QueryRow(ctx, upsertDeviceSQL,
		device.IP,
		device.MAC,
		device.Vendor,
		device.Hostname,
		string(device.DeviceType),
		device.OpenPorts,
		device.RiskScore,
		firstSeen,
		lastSeen,
	).Scan(&deviceID)
	if err != nil {
		return 0, fmt.Errorf("failed to upsert device %s: %w", device.IP, err)
	}

	return deviceID, nil
}

const loadKnownDevicesSQL = `
SELECT ip_address, mac_address, vendor, hostname, device_type, open_ports, risk_score, first_seen, last_seen
FROM devices`

// LoadKnownDevices returns every persisted device, used to seed the
// pipeline's known-device memory at startup.
func (db *DB) LoadKnownDevices(ctx context.Context) ([]*models.Device, error) {
	rows, err := db.pool.Query(ctx, loadKnownDevicesSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to load known devices: %w", err)
	}
	defer rows.Close()

	var devices []*models.Device

	for rows.Next() {
		var (
			d          models.Device
			deviceType string
		)

		if err := rows.Scan(&d.IP, &d.MAC, &d.Vendor, &d.Hostname, &deviceType,
			&d.OpenPorts, &d.RiskScore, &d.FirstSeen, &d.LastSeen); err != nil {
			return nil, fmt.Errorf("failed to scan device row: %w", err)
		}

		d.DeviceType = models.DeviceType(deviceType)
		devices = append(devices, &d)
	}

	return devices, rows.Err()
}

// GetDeviceIDByIP resolves a device's persisted identity. Returns (nil, nil)
// when the device is unknown.
func (db *DB) GetDeviceIDByIP(ctx context.Context, ip string) (*int64, error) {
	var deviceID int64

	err := db.pool.QueryRow(ctx,
		`SELECT device_id FROM devices WHERE ip_address = $1`, ip).Scan(&deviceID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to look up device %s: %w", ip, err)
	}

	return &deviceID, nil
}

const appendStatusHistorySQL = `
INSERT INTO device_status_history (device_id, status, response_time_ms, scan_id, recorded_at)
VALUES ($1, $2, $3, $4, NOW())
ON CONFLICT (device_id, scan_id) DO NOTHING`

// AppendStatusHistory records one scan observation for a device. Keyed by
// (device, scan) so replaying a scan is a no-op.
func (db *DB) AppendStatusHistory(ctx context.Context, deviceID int64, status models.DeviceStatus, latencyMS float64, scanID string) error {
	_, err := db.pool.Exec(ctx, appendStatusHistorySQL, deviceID, string(status), latencyMS, scanID)
	if err != nil {
		return fmt.Errorf("failed to append status history: %w", err)
	}

	return nil
}
