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
	"context"
	"errors"
	"strings"

	"github.com/candorops/netsentry/pkg/models"
)

const (
	riskPerOpenPort   = 2
	riskHighRiskPort  = 10
	riskUnknownDevice = 5
	riskMissingVendor = 3
	maxRiskScore      = 100
	sshPort           = 22
	httpPort          = 80
	httpsPort         = 443
	printerRawPort    = 9100
	iotMaxOpenPorts   = 1
)

var routerVendorKeywords = []string{"cisco", "juniper", "arista", "router"}

var highRiskPorts = map[int]struct{}{
	21:   {},
	23:   {},
	135:  {},
	139:  {},
	445:  {},
	1433: {},
	3306: {},
	5432: {},
	3389: {},
}

// enrich is stage 2: classify each device, score its risk, stamp
// first-seen for new devices, and fill missing vendor data from SNMP.
// Input devices are copied; the scan payload is never mutated.
func (p *Pipeline) enrich(ctx context.Context, devices []models.Device) []models.Device {
	enriched := make([]models.Device, len(devices))
	now := p.now().UTC()

	for i := range devices {
		d := devices[i]

		if d.Vendor == "" && d.Status == models.StatusOnline {
			p.lookupVendor(ctx, &d)
		}

		known, isKnown := p.memory.Known(d.IP)

		d.DeviceType = classifyDevice(&d)
		d.RiskScore = float64(riskScore(&d, isKnown))
		d.LastSeen = now

		if isKnown && !known.FirstSeen.IsZero() {
			d.FirstSeen = known.FirstSeen
		} else {
			d.FirstSeen = now
		}

		enriched[i] = d
	}

	return enriched
}

// classifyDevice applies heuristics in priority order; the first match wins.
func classifyDevice(d *models.Device) models.DeviceType {
	vendor := strings.ToLower(d.Vendor)

	switch {
	case vendorMatchesAny(vendor, routerVendorKeywords):
		return models.TypeRouter
	case d.HasPort(sshPort) && (d.HasPort(httpPort) || d.HasPort(httpsPort)):
		return models.TypeServer
	case d.HasPort(printerRawPort) || strings.Contains(vendor, "printer"):
		return models.TypePrinter
	case len(d.OpenPorts) <= iotMaxOpenPorts:
		return models.TypeIoT
	default:
		return models.TypeUnknown
	}
}

func vendorMatchesAny(vendor string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(vendor, keyword) {
			return true
		}
	}

	return false
}

// riskScore computes the additive 0-100 risk score for a device. known
// reports whether the address was in device memory before this scan.
func riskScore(d *models.Device, known bool) int {
	score := len(d.OpenPorts) * riskPerOpenPort

	for _, port := range d.OpenPorts {
		if _, risky := highRiskPorts[port]; risky {
			score += riskHighRiskPort
		}
	}

	if !known {
		score += riskUnknownDevice
	}

	if d.Vendor == "" {
		score += riskMissingVendor
	}

	if score > maxRiskScore {
		score = maxRiskScore
	}

	if score < 0 {
		score = 0
	}

	return score
}

// lookupVendor queries SNMP through the circuit breaker. Failures only
// count against the breaker; the device keeps its empty vendor.
func (p *Pipeline) lookupVendor(ctx context.Context, d *models.Device) {
	if p.lookup == nil {
		return
	}

	err := p.breaker.Execute(ctx, func() error {
		vendor, hostname, err := p.lookup.Lookup(ctx, d.IP)
		if err != nil {
			return err
		}

		d.Vendor = vendor
		if d.Hostname == "" {
			d.Hostname = hostname
		}

		return nil
	})

	if err != nil {
		if errors.Is(err, ErrCircuitOpen) {
			p.logger.Debug().Str("ip", d.IP).Msg("Vendor lookup skipped; circuit open")
			return
		}

		p.logger.Debug().Err(err).Str("ip", d.IP).Msg("Vendor lookup failed")
	}
}
