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

// Package pipeline implements the three-stage scan processing pipeline:
// validation, enrichment, and analysis.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/candorops/netsentry/pkg/db"
	"github.com/candorops/netsentry/pkg/logger"
	"github.com/candorops/netsentry/pkg/models"
)

// ErrInvalidScan is the only error surfaced by Process. Everything else
// degrades to best-effort behavior.
var ErrInvalidScan = errors.New("scan data failed validation")

const (
	defaultUptimeThreshold = 0.95
	defaultLatencyMultiple = 2.5
	maxOctetValue          = 255
	dottedQuadParts        = 4
)

var defaultPortWhitelist = []int{80, 443, 22}

// Analysis is the detection outcome for one scan.
type Analysis struct {
	Timestamp         time.Time        `json:"timestamp"`
	AnomaliesDetected int              `json:"anomalies_detected"`
	Anomalies         []models.Anomaly `json:"anomalies"`
	Stats             models.ScanStats `json:"summary_stats"`
}

// Result is the outcome of processing one scan.
type Result struct {
	EnrichedDevices []models.Device `json:"enriched_devices"`
	Analysis        Analysis        `json:"analysis"`
	Timestamp       time.Time       `json:"timestamp"`
}

// Pipeline processes scan snapshots. One instance owns its device memory and
// circuit breaker; Process may be called from concurrent scans.
type Pipeline struct {
	config    models.PipelineConfig
	memory    *DeviceMemory
	breaker   *CircuitBreaker
	baselines BaselineProvider
	lookup    VendorLookup
	store     db.Service
	logger    logger.Logger
	degraded  atomic.Bool
	now       func() time.Time
}

// NewPipeline creates a scan pipeline. store, baselines, and lookup may be
// nil: the pipeline then runs memory-only, without latency baselines, or
// without external enrichment respectively.
func NewPipeline(cfg models.PipelineConfig, store db.Service, baselines BaselineProvider, lookup VendorLookup, log logger.Logger) *Pipeline {
	if cfg.UptimeThreshold == 0 {
		cfg.UptimeThreshold = defaultUptimeThreshold
	}

	if cfg.LatencySpikeMultiplier == 0 {
		cfg.LatencySpikeMultiplier = defaultLatencyMultiple
	}

	if cfg.PortWhitelist == nil {
		cfg.PortWhitelist = defaultPortWhitelist
	}

	return &Pipeline{
		config:    cfg,
		memory:    NewDeviceMemory(),
		breaker:   NewCircuitBreaker(cfg.BreakerFailureThreshold, cfg.BreakerTimeout.Std()),
		baselines: baselines,
		lookup:    lookup,
		store:     store,
		logger:    log,
		now:       time.Now,
	}
}

// SeedFromStore loads persisted devices into known-device memory.
// Best-effort: a store failure leaves the pipeline in memory-only mode.
func (p *Pipeline) SeedFromStore(ctx context.Context) {
	if p.store == nil {
		return
	}

	devices, err := p.store.LoadKnownDevices(ctx)
	if err != nil {
		p.degraded.Store(true)
		p.logger.Warn().Err(err).Msg("Could not seed known devices; continuing memory-only")

		return
	}

	p.memory.Seed(devices)
	p.logger.Info().Int("devices", len(devices)).Msg("Seeded known-device memory")
}

// Memory exposes the pipeline's device memory for collaborators that track
// uptime history.
func (p *Pipeline) Memory() *DeviceMemory { return p.memory }

// Degraded reports whether any persistence operation has failed since
// startup, leaving the pipeline in memory-only mode.
func (p *Pipeline) Degraded() bool { return p.degraded.Load() }

// Process runs the full pipeline on one scan: validation, enrichment,
// analysis, then best-effort persistence. Only validation failures are
// returned as errors.
func (p *Pipeline) Process(ctx context.Context, scan *models.Scan) (*Result, error) {
	if err := p.validate(scan); err != nil {
		return nil, err
	}

	enriched := p.enrich(ctx, scan.Devices)
	analysis := p.analyze(enriched)

	p.memory.Remember(enriched)
	p.persist(ctx, scan, enriched, analysis)

	p.logger.Info().
		Str("scan_id", scan.ScanID).
		Int("devices", len(enriched)).
		Int("anomalies", analysis.AnomaliesDetected).
		Msg("Processed scan")

	return &Result{
		EnrichedDevices: enriched,
		Analysis:        analysis,
		Timestamp:       p.now().UTC(),
	}, nil
}

// validate is stage 1. A violation fails the whole scan atomically: no
// device or anomaly state has been touched yet.
func (p *Pipeline) validate(scan *models.Scan) error {
	if scan == nil {
		return fmt.Errorf("%w: scan is nil", ErrInvalidScan)
	}

	if scan.ScanID == "" {
		return fmt.Errorf("%w: missing scan_id", ErrInvalidScan)
	}

	if scan.Subnet == "" {
		return fmt.Errorf("%w: missing subnet", ErrInvalidScan)
	}

	if scan.Devices == nil {
		return fmt.Errorf("%w: missing devices array", ErrInvalidScan)
	}

	for i := range scan.Devices {
		ip := scan.Devices[i].IP
		if ip == "" {
			return fmt.Errorf("%w: device missing IP address", ErrInvalidScan)
		}

		if !validDottedQuad(ip) {
			return fmt.Errorf("%w: invalid IP format: %s", ErrInvalidScan, ip)
		}
	}

	return nil
}

func validDottedQuad(ip string) bool {
	parts := strings.Split(ip, ".")
	if len(parts) != dottedQuadParts {
		return false
	}

	for _, part := range parts {
		if part == "" {
			return false
		}

		// Atoi alone would admit signs ("+2").
		for _, c := range part {
			if c < '0' || c > '9' {
				return false
			}
		}

		n, err := strconv.Atoi(part)
		if err != nil || n > maxOctetValue {
			return false
		}
	}

	return true
}

// persist is stage 4: update the durable store with enriched devices,
// status history, and anomalies. Every failure is logged and flips the
// degraded flag; none fails the scan.
func (p *Pipeline) persist(ctx context.Context, scan *models.Scan, devices []models.Device, analysis Analysis) {
	if p.store == nil {
		return
	}

	for i := range devices {
		d := &devices[i]

		deviceID, err := p.store.UpsertDevice(ctx, d)
		if err != nil {
			p.markDegraded(err, "device upsert failed")
			continue
		}

		if err := p.store.AppendStatusHistory(ctx, deviceID, d.Status, d.ResponseTimeMS, scan.ScanID); err != nil {
			p.markDegraded(err, "status history append failed")
		}
	}

	for i := range analysis.Anomalies {
		if _, err := p.store.UpsertAnomaly(ctx, &analysis.Anomalies[i]); err != nil {
			p.markDegraded(err, "anomaly upsert failed")
		}
	}
}

func (p *Pipeline) markDegraded(err error, msg string) {
	p.degraded.Store(true)
	p.logger.Error().Err(err).Msg(msg)
}
