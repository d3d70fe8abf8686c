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

package models

import "time"

// AnomalyType enumerates the five anomaly kinds emitted by analysis.
type AnomalyType string

const (
	AnomalySuddenDowntime AnomalyType = "sudden_downtime"
	AnomalyNewPortsOpened AnomalyType = "new_ports_opened"
	AnomalyPortsClosed    AnomalyType = "ports_closed"
	AnomalyLatencySpike   AnomalyType = "latency_spike"
	AnomalyNewDevice      AnomalyType = "new_device"
)

// Severity levels for anomalies and alerts.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Anomaly is one detection emitted by the pipeline. Never mutated after
// creation: a repeat of the same (device, type) key is a new occurrence,
// tracked through AlertTracking.
//
// Exactly one payload pointer is set, matching Type.
type Anomaly struct {
	AnomalyID  int64       `json:"anomaly_id,omitempty"`
	Type       AnomalyType `json:"type"`
	DeviceIP   string      `json:"device"`
	DeviceName string      `json:"device_name,omitempty"`
	Severity   Severity    `json:"severity"`
	Confidence float64     `json:"confidence"`
	DetectedAt time.Time   `json:"timestamp"`

	Downtime   *DowntimePayload   `json:"downtime,omitempty"`
	PortChange *PortChangePayload `json:"port_change,omitempty"`
	Latency    *LatencyPayload    `json:"latency,omitempty"`
	NewDevice  *NewDevicePayload  `json:"new_device,omitempty"`
}

// DowntimePayload accompanies sudden_downtime anomalies.
type DowntimePayload struct {
	PreviousUptime float64 `json:"previous_uptime"`
}

// PortChangePayload accompanies new_ports_opened and ports_closed anomalies.
// For new_ports_opened, Ports holds the non-whitelisted subset and AllNewPorts
// the full newly-opened set. For ports_closed, only Ports is populated.
type PortChangePayload struct {
	Ports       []int `json:"ports"`
	AllNewPorts []int `json:"all_new_ports,omitempty"`
}

// LatencyPayload accompanies latency_spike anomalies.
type LatencyPayload struct {
	CurrentMS       float64 `json:"current"`
	BaselineMS      float64 `json:"baseline"`
	IncreasePercent float64 `json:"increase_percent"`
}

// NewDevicePayload accompanies new_device anomalies.
type NewDevicePayload struct {
	MAC    string `json:"mac,omitempty"`
	Vendor string `json:"vendor,omitempty"`
}

// Key returns the deduplication key: device identity plus anomaly type.
func (a *Anomaly) Key() string {
	return a.DeviceIP + ":" + string(a.Type)
}
