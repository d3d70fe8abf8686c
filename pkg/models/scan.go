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

// Package models provides data models for the netsentry services.
package models

import "time"

// Scan is one network-scan snapshot delivered by a collector. Immutable once
// received; consumed exactly once by the pipeline.
type Scan struct {
	ScanID    string       `json:"scan_id"`
	Subnet    string       `json:"subnet"`
	Devices   []Device     `json:"devices"`
	Metadata  ScanMetadata `json:"metadata,omitempty"`
	Timestamp time.Time    `json:"timestamp,omitempty"`
}

// ScanMetadata carries free-form collector measurements.
type ScanMetadata struct {
	DurationMS        float64 `json:"duration_ms,omitempty"`
	PacketLossPercent float64 `json:"packet_loss_percent,omitempty"`
}

// ScanStats summarizes one processed scan.
type ScanStats struct {
	TotalDevices        int     `json:"total_devices"`
	OnlineCount         int     `json:"online_count"`
	OfflineCount        int     `json:"offline_count"`
	AvailabilityPercent float64 `json:"availability_percent"`
	AvgResponseTimeMS   float64 `json:"avg_response_time_ms,omitempty"`
	MinResponseTimeMS   float64 `json:"min_response_time_ms,omitempty"`
	MaxResponseTimeMS   float64 `json:"max_response_time_ms,omitempty"`
	StdDevResponseMS    float64 `json:"std_dev_response_time_ms,omitempty"`
}
