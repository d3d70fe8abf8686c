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

package alerts

import (
	"fmt"
	"strings"
	"time"

	"github.com/candorops/netsentry/pkg/models"
)

// renderMessage builds the human-readable alert text for one anomaly, with
// the detection timestamp appended.
func renderMessage(a *models.Anomaly) string {
	name := a.DeviceName
	if name == "" {
		name = a.DeviceIP
	}

	var body string

	switch a.Type {
	case models.AnomalySuddenDowntime:
		uptime := 0.0
		if a.Downtime != nil {
			uptime = a.Downtime.PreviousUptime
		}

		body = fmt.Sprintf("Device %s (%s) went offline unexpectedly after %.1f%% uptime",
			name, a.DeviceIP, uptime*100)

	case models.AnomalyNewPortsOpened:
		body = fmt.Sprintf("New ports opened on %s (%s): %s",
			name, a.DeviceIP, portList(a.PortChange))

	case models.AnomalyPortsClosed:
		body = fmt.Sprintf("Previously open ports closed on %s (%s): %s",
			name, a.DeviceIP, portList(a.PortChange))

	case models.AnomalyLatencySpike:
		if a.Latency != nil {
			body = fmt.Sprintf("Latency spike on %s (%s): %.1fms against a %.1fms baseline (+%.2f%%)",
				name, a.DeviceIP, a.Latency.CurrentMS, a.Latency.BaselineMS, a.Latency.IncreasePercent)
		} else {
			body = fmt.Sprintf("Latency spike on %s (%s)", name, a.DeviceIP)
		}

	case models.AnomalyNewDevice:
		mac, vendor := "unknown", "unknown"
		if a.NewDevice != nil {
			if a.NewDevice.MAC != "" {
				mac = a.NewDevice.MAC
			}

			if a.NewDevice.Vendor != "" {
				vendor = a.NewDevice.Vendor
			}
		}

		body = fmt.Sprintf("New device on network: %s (MAC %s, vendor %s)", a.DeviceIP, mac, vendor)

	default:
		body = fmt.Sprintf("Anomaly %s on %s (%s)", a.Type, name, a.DeviceIP)
	}

	return body + " at " + a.DetectedAt.UTC().Format(time.RFC3339)
}

func portList(pc *models.PortChangePayload) string {
	if pc == nil || len(pc.Ports) == 0 {
		return "none"
	}

	parts := make([]string, len(pc.Ports))
	for i, p := range pc.Ports {
		parts[i] = fmt.Sprintf("%d", p)
	}

	return strings.Join(parts, ", ")
}
