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
	"sort"
	"time"

	"github.com/candorops/netsentry/pkg/models"
)

const (
	confidenceDowntime   = 0.89
	confidenceNewPorts   = 0.95
	confidencePortsClose = 0.85
	confidenceLatency    = 0.75
	confidenceNewDevice  = 1.0

	percentFactor = 100

	// uptimeAlpha weighs the newest observation when updating the
	// per-device uptime ratio.
	uptimeAlpha = 0.1
)

// analyze is stage 3: run the anomaly checks against remembered state and
// summarize the scan. Port memory and uptime history are updated after all
// checks so that a single scan compares against the state before it.
func (p *Pipeline) analyze(devices []models.Device) Analysis {
	now := p.now().UTC()
	anomalies := make([]models.Anomaly, 0)

	for i := range devices {
		d := &devices[i]

		if !p.memory.IsKnown(d.IP) {
			if d.Status == models.StatusOnline {
				anomalies = append(anomalies, models.Anomaly{
					Type:       models.AnomalyNewDevice,
					DeviceIP:   d.IP,
					DeviceName: d.Name(),
					Severity:   models.SeverityMedium,
					Confidence: confidenceNewDevice,
					DetectedAt: now,
					NewDevice:  &models.NewDevicePayload{MAC: d.MAC, Vendor: d.Vendor},
				})
			}
		} else if a := p.checkDowntime(d, now); a != nil {
			anomalies = append(anomalies, *a)
		}

		anomalies = append(anomalies, p.checkPortChanges(d, now)...)

		if a := p.checkLatency(d, now); a != nil {
			anomalies = append(anomalies, *a)
		}
	}

	p.updateHistory(devices)

	return Analysis{
		Timestamp:         now,
		AnomaliesDetected: len(anomalies),
		Anomalies:         anomalies,
		Stats:             summarize(devices),
	}
}

// checkDowntime flags devices that went offline despite a reliable history.
func (p *Pipeline) checkDowntime(d *models.Device, now time.Time) *models.Anomaly {
	if d.Status != models.StatusOffline {
		return nil
	}

	uptime := p.memory.Uptime(d.IP)
	if uptime <= p.config.UptimeThreshold {
		return nil
	}

	return &models.Anomaly{
		Type:       models.AnomalySuddenDowntime,
		DeviceIP:   d.IP,
		DeviceName: d.Name(),
		Severity:   models.SeverityHigh,
		Confidence: confidenceDowntime,
		DetectedAt: now,
		Downtime:   &models.DowntimePayload{PreviousUptime: uptime},
	}
}

// checkPortChanges compares the current open-port set against the last set
// recorded while online. Newly opened ports are checked regardless of
// status; a closure only counts when the device is reachable, since an
// offline scan reports no ports at all.
func (p *Pipeline) checkPortChanges(d *models.Device, now time.Time) []models.Anomaly {
	// A device with no recorded ports compares against the empty set, so a
	// first sighting flags every non-whitelisted open port.
	previous := p.memory.PreviousPorts(d.IP)

	current := make(map[int]struct{}, len(d.OpenPorts))
	for _, port := range d.OpenPorts {
		current[port] = struct{}{}
	}

	whitelist := make(map[int]struct{}, len(p.config.PortWhitelist))
	for _, port := range p.config.PortWhitelist {
		whitelist[port] = struct{}{}
	}

	var opened, suspicious, closed []int

	for port := range current {
		if _, ok := previous[port]; !ok {
			opened = append(opened, port)

			if _, ok := whitelist[port]; !ok {
				suspicious = append(suspicious, port)
			}
		}
	}

	if d.Status == models.StatusOnline {
		for port := range previous {
			if _, ok := current[port]; !ok {
				closed = append(closed, port)
			}
		}
	}

	sort.Ints(opened)
	sort.Ints(suspicious)
	sort.Ints(closed)

	var anomalies []models.Anomaly

	if len(suspicious) > 0 {
		anomalies = append(anomalies, models.Anomaly{
			Type:       models.AnomalyNewPortsOpened,
			DeviceIP:   d.IP,
			DeviceName: d.Name(),
			Severity:   models.SeverityMedium,
			Confidence: confidenceNewPorts,
			DetectedAt: now,
			PortChange: &models.PortChangePayload{Ports: suspicious, AllNewPorts: opened},
		})
	}

	if len(closed) > 0 {
		anomalies = append(anomalies, models.Anomaly{
			Type:       models.AnomalyPortsClosed,
			DeviceIP:   d.IP,
			DeviceName: d.Name(),
			Severity:   models.SeverityLow,
			Confidence: confidencePortsClose,
			DetectedAt: now,
			PortChange: &models.PortChangePayload{Ports: closed},
		})
	}

	return anomalies
}

// checkLatency flags online devices whose response time exceeds the learned
// baseline mean by the configured multiple. No baseline, no check.
func (p *Pipeline) checkLatency(d *models.Device, now time.Time) *models.Anomaly {
	if p.baselines == nil || d.Status != models.StatusOnline || d.ResponseTimeMS <= 0 {
		return nil
	}

	baseline, ok := p.baselines.BaselineFor(d.IP, models.MetricResponseTime)
	if !ok || baseline == nil || baseline.Mean <= 0 {
		return nil
	}

	threshold := baseline.Mean * p.config.LatencySpikeMultiplier
	if d.ResponseTimeMS <= threshold {
		return nil
	}

	increase := (d.ResponseTimeMS - baseline.Mean) / baseline.Mean * percentFactor

	return &models.Anomaly{
		Type:       models.AnomalyLatencySpike,
		DeviceIP:   d.IP,
		DeviceName: d.Name(),
		Severity:   models.SeverityLow,
		Confidence: confidenceLatency,
		DetectedAt: now,
		Latency: &models.LatencyPayload{
			CurrentMS:       d.ResponseTimeMS,
			BaselineMS:      baseline.Mean,
			IncreasePercent: round2(increase),
		},
	}
}

// updateHistory folds the scan into remembered port sets and uptime ratios.
func (p *Pipeline) updateHistory(devices []models.Device) {
	for i := range devices {
		d := &devices[i]
		online := d.Status == models.StatusOnline

		if online {
			p.memory.SetPorts(d.IP, d.OpenPorts)
		}

		observed := 0.0
		if online {
			observed = 1.0
		}

		uptime := p.memory.Uptime(d.IP)
		p.memory.SetUptime(d.IP, (1-uptimeAlpha)*uptime+uptimeAlpha*observed)
	}
}
