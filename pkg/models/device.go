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

import (
	"time"
)

// DeviceStatus is the reachability state reported by a scan.
type DeviceStatus string

const (
	StatusOnline   DeviceStatus = "online"
	StatusOffline  DeviceStatus = "offline"
	StatusDegraded DeviceStatus = "degraded"
)

// DeviceType is assigned during enrichment.
type DeviceType string

const (
	TypeRouter  DeviceType = "router"
	TypeServer  DeviceType = "server"
	TypePrinter DeviceType = "printer"
	TypeIoT     DeviceType = "iot_device"
	TypeUnknown DeviceType = "unknown"
)

// Device represents a network device observed by a scan. Identity is the IP
// address (plus optional MAC). Devices are rebuilt on every scan; absence from
// a scan is a signal, not a deletion.
type Device struct {
	IP             string       `json:"ip"`
	MAC            string       `json:"mac,omitempty"`
	Vendor         string       `json:"vendor,omitempty"`
	Hostname       string       `json:"hostname,omitempty"`
	DeviceType     DeviceType   `json:"device_type,omitempty"`
	OpenPorts      []int        `json:"open_ports,omitempty"`
	ResponseTimeMS float64      `json:"response_time_ms,omitempty"`
	Status         DeviceStatus `json:"status"`
	RiskScore      float64      `json:"risk_score"`
	FirstSeen      time.Time    `json:"first_seen,omitempty"`
	LastSeen       time.Time    `json:"last_seen,omitempty"`
}

// Name returns the hostname when set, falling back to the IP.
func (d *Device) Name() string {
	if d.Hostname != "" {
		return d.Hostname
	}

	return d.IP
}

// HasPort reports whether port is in the device's open-port set.
func (d *Device) HasPort(port int) bool {
	for _, p := range d.OpenPorts {
		if p == port {
			return true
		}
	}

	return false
}
