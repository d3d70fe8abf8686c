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

// Alert is one notification created per (anomaly, channel) pair at dispatch
// time. Mutated once to record delivery outcome and at most once for
// acknowledgment.
type Alert struct {
	AlertID        int64       `json:"alert_id,omitempty"`
	AnomalyID      *int64      `json:"anomaly_id,omitempty"`
	DeviceID       *int64      `json:"device_id,omitempty"`
	DeviceIP       string      `json:"device_ip,omitempty"`
	AlertType      AnomalyType `json:"alert_type"`
	Severity       Severity    `json:"severity"`
	Channel        string      `json:"channel"`
	Message        string      `json:"message"`
	SentAt         time.Time   `json:"sent_at,omitempty"`
	Delivered      bool        `json:"delivered"`
	DeliveryError  string      `json:"delivery_error,omitempty"`
	AcknowledgedAt *time.Time  `json:"acknowledged_at,omitempty"`
	AcknowledgedBy string      `json:"acknowledged_by,omitempty"`
}

// AlertTracking collapses repeated anomaly occurrences into one tracked
// incident, keyed by the dedup key. While unresolved and inside the throttle
// window, no new alert is dispatched for the key.
type AlertTracking struct {
	AlertKey        string     `json:"alert_key"`
	FirstOccurrence time.Time  `json:"first_occurrence"`
	LastOccurrence  time.Time  `json:"last_occurrence"`
	OccurrenceCount int        `json:"occurrence_count"`
	LastAlertSent   time.Time  `json:"last_alert_sent,omitempty"`
	ThrottleUntil   *time.Time `json:"throttle_until,omitempty"`
	Resolved        bool       `json:"resolved"`
}

// Throttled reports whether the tracking record is still inside its throttle
// window at the given instant.
func (t *AlertTracking) Throttled(now time.Time) bool {
	return t.ThrottleUntil != nil && now.Before(*t.ThrottleUntil)
}
