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

package pipeline

import (
	"sync"

	"github.com/candorops/netsentry/pkg/models"
)

const defaultUptimeRatio = 0.95

// DeviceMemory is the pipeline's remembered state across scans: known
// devices, last online open-port set, and historical uptime ratio per
// device. One instance is owned by one Pipeline; all access goes through a
// single-writer lock so concurrent scans over overlapping subnets stay
// consistent.
type DeviceMemory struct {
	mu      sync.RWMutex
	known   map[string]*models.Device
	ports   map[string]map[int]struct{}
	uptimes map[string]float64
}

// NewDeviceMemory creates empty known-device memory.
func NewDeviceMemory() *DeviceMemory {
	return &DeviceMemory{
		known:   make(map[string]*models.Device),
		ports:   make(map[string]map[int]struct{}),
		uptimes: make(map[string]float64),
	}
}

// Seed loads previously persisted devices, typically at startup.
func (m *DeviceMemory) Seed(devices []*models.Device) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, d := range devices {
		if d == nil || d.IP == "" {
			continue
		}

		dc := *d
		m.known[d.IP] = &dc

		if len(d.OpenPorts) > 0 {
			set := make(map[int]struct{}, len(d.OpenPorts))
			for _, p := range d.OpenPorts {
				set[p] = struct{}{}
			}

			m.ports[d.IP] = set
		}
	}
}

// Known returns a copy of the remembered device for ip, if any.
func (m *DeviceMemory) Known(ip string) (models.Device, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	d, ok := m.known[ip]
	if !ok {
		return models.Device{}, false
	}

	return *d, true
}

// IsKnown reports whether ip has been seen before.
func (m *DeviceMemory) IsKnown(ip string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.known[ip]

	return ok
}

// Remember stores enriched devices as the new known state.
func (m *DeviceMemory) Remember(devices []models.Device) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range devices {
		d := devices[i]
		m.known[d.IP] = &d
	}
}

// PreviousPorts returns the last open-port set recorded while the device was
// online. The returned set must not be mutated by the caller.
func (m *DeviceMemory) PreviousPorts(ip string) map[int]struct{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.ports[ip]
}

// SetPorts records the current open-port set for ip. Called only for online
// devices: an offline scan must not erase the last known set.
func (m *DeviceMemory) SetPorts(ip string, ports []int) {
	set := make(map[int]struct{}, len(ports))
	for _, p := range ports {
		set[p] = struct{}{}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.ports[ip] = set
}

// Uptime returns the historical uptime ratio for ip, defaulting to 0.95 when
// no history exists.
func (m *DeviceMemory) Uptime(ip string) float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if u, ok := m.uptimes[ip]; ok {
		return u
	}

	return defaultUptimeRatio
}

// SetUptime records the historical uptime ratio for ip.
func (m *DeviceMemory) SetUptime(ip string, uptime float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.uptimes[ip] = uptime
}

// Len returns the number of known devices.
func (m *DeviceMemory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.known)
}
