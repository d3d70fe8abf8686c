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

// Package alerts turns anomalies into deduplicated, throttled, multi-channel
// notifications with escalation and acknowledgment.
package alerts

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/candorops/netsentry/pkg/db"
	"github.com/candorops/netsentry/pkg/logger"
	"github.com/candorops/netsentry/pkg/models"
)

const (
	defaultDispatchWorkers = 4
	defaultSendTimeout     = 10 * time.Second
)

// Engine is the alert decision and dispatch engine. The dedup/throttle fast
// path runs synchronously in ProcessAnomalies; channel dispatch runs on a
// bounded worker pool so a hung transport never blocks suppression decisions
// for subsequent anomalies.
type Engine struct {
	config   models.AlertingConfig
	rules    map[models.AnomalyType]models.AlertRule
	channels map[string]Channel
	store    db.Service
	logger   zerolog.Logger

	mu       sync.Mutex
	tracking map[string]*models.AlertTracking
	// escalated counts applied ladder steps per alert key.
	escalated map[string]int

	workers chan struct{}
	wg      sync.WaitGroup

	now func() time.Time
}

// NewEngine creates an alert engine. store may be nil: the engine then runs
// memory-only, with dedup state lost on restart.
func NewEngine(cfg models.AlertingConfig, store db.Service, channels map[string]Channel, log logger.Logger) *Engine {
	workers := cfg.DispatchWorkers
	if workers <= 0 {
		workers = defaultDispatchWorkers
	}

	if channels == nil {
		channels = map[string]Channel{}
	}

	return &Engine{
		config:    cfg,
		rules:     buildRules(cfg.Rules),
		channels:  channels,
		store:     store,
		logger:    log.WithComponent("alerts"),
		tracking:  make(map[string]*models.AlertTracking),
		escalated: make(map[string]int),
		workers:   make(chan struct{}, workers),
		now:       time.Now,
	}
}

// Enabled reports whether alerting is globally on. Defaults to on.
func (e *Engine) Enabled() bool {
	return e.config.Enabled == nil || *e.config.Enabled
}

// ProcessAnomalies runs the suppression decisions for each anomaly and
// queues dispatch for the survivors. Per-anomaly failures never surface to
// the caller; outcomes live in stored delivery status and logs.
func (e *Engine) ProcessAnomalies(ctx context.Context, anomalies []models.Anomaly) {
	if !e.Enabled() {
		return
	}

	for i := range anomalies {
		e.processOne(ctx, anomalies[i])
	}
}

// Wait blocks until all queued dispatch tasks have finished. Intended for
// shutdown and tests.
func (e *Engine) Wait() {
	e.wg.Wait()
}

// Acknowledge records actor and timestamp against an alert. Idempotent; the
// last writer wins. Does not resolve the underlying tracking record.
func (e *Engine) Acknowledge(ctx context.Context, alertID int64, actor string) bool {
	if e.store == nil {
		return false
	}

	if err := e.store.AcknowledgeAlert(ctx, alertID, actor); err != nil {
		e.logger.Error().Err(err).Int64("alert_id", alertID).Msg("Acknowledgment failed")
		return false
	}

	return true
}

// Resolve closes the tracked incident for a dedup key. The next anomaly with
// the same key starts a fresh incident (subject to any remaining throttle).
func (e *Engine) Resolve(ctx context.Context, alertKey string) error {
	e.mu.Lock()
	if t, ok := e.tracking[alertKey]; ok {
		t.Resolved = true
	}
	delete(e.escalated, alertKey)
	e.mu.Unlock()

	if e.store == nil {
		return nil
	}

	return e.store.ResolveTracking(ctx, alertKey)
}

// processOne runs the suppression ladder for a single anomaly:
// rule lookup, whitelist, dedup, throttle. Survivors are queued to dispatch.
func (e *Engine) processOne(ctx context.Context, anomaly models.Anomaly) {
	rule, ok := e.rules[anomaly.Type]
	if !ok {
		e.logger.Debug().Str("type", string(anomaly.Type)).Msg("No rule for anomaly type; skipping")
		return
	}

	if suppressedByWhitelist(&anomaly, rule.WhitelistPorts) {
		e.logger.Debug().Str("device", anomaly.DeviceIP).Msg("All offending ports whitelisted; skipping")
		return
	}

	key := anomaly.Key()
	now := e.now().UTC()

	tracked := e.lookupTracking(ctx, key)

	if tracked != nil && !tracked.Resolved {
		// Duplicate of an open incident: count it, do not dispatch.
		e.recordOccurrence(ctx, key, tracked, now)
		return
	}

	if tracked != nil && e.throttleWindow(rule) > 0 && tracked.Throttled(now) {
		return
	}

	e.startIncident(ctx, key, tracked, rule, now)

	severity := anomaly.Severity
	if severity == "" {
		severity = rule.Severity
	}

	e.dispatchAsync(ctx, &anomaly, rule.Channels, severity)
}

// lookupTracking checks memory first, then the durable store, which remains
// authoritative for unresolved incidents across restarts.
func (e *Engine) lookupTracking(ctx context.Context, key string) *models.AlertTracking {
	e.mu.Lock()
	if t, ok := e.tracking[key]; ok {
		e.mu.Unlock()
		return t
	}
	e.mu.Unlock()

	if e.store == nil {
		return nil
	}

	t, err := e.store.GetUnresolvedTracking(ctx, key)
	if err != nil {
		e.logger.Error().Err(err).Str("key", key).Msg("Tracking lookup failed")
		return nil
	}

	if t == nil {
		return nil
	}

	e.mu.Lock()
	e.tracking[key] = t
	e.mu.Unlock()

	return t
}

func (e *Engine) recordOccurrence(ctx context.Context, key string, tracked *models.AlertTracking, now time.Time) {
	e.mu.Lock()
	tracked.OccurrenceCount++
	tracked.LastOccurrence = now
	e.mu.Unlock()

	if e.store == nil {
		return
	}

	if err := e.store.IncrementTrackingOccurrence(ctx, key); err != nil {
		e.logger.Error().Err(err).Str("key", key).Msg("Occurrence increment failed")
	}
}

// startIncident creates or reopens the in-memory tracking record before
// dispatch is queued, so later anomalies in the same batch deduplicate
// against it immediately.
func (e *Engine) startIncident(ctx context.Context, key string, previous *models.AlertTracking, rule models.AlertRule, now time.Time) {
	var throttleUntil *time.Time

	if window := e.throttleWindow(rule); window > 0 {
		until := now.Add(window)
		throttleUntil = &until
	}

	e.mu.Lock()

	first := now
	count := 1

	if previous != nil {
		count = previous.OccurrenceCount + 1
	}

	e.tracking[key] = &models.AlertTracking{
		AlertKey:        key,
		FirstOccurrence: first,
		LastOccurrence:  now,
		OccurrenceCount: count,
		LastAlertSent:   now,
		ThrottleUntil:   throttleUntil,
	}
	delete(e.escalated, key)

	e.mu.Unlock()

	if e.store == nil {
		return
	}

	if err := e.store.UpsertAlertTracking(ctx, key, throttleUntil); err != nil {
		e.logger.Error().Err(err).Str("key", key).Msg("Tracking upsert failed")
	}
}

// throttleWindow returns the effective suppression window for a rule: the
// explicit throttle, or the aggregation window for aggregating rules.
func (e *Engine) throttleWindow(rule models.AlertRule) time.Duration {
	if rule.ThrottleMinutes > 0 {
		return time.Duration(rule.ThrottleMinutes) * time.Minute
	}

	if rule.Aggregate && rule.AggregateWindowMinutes > 0 {
		return time.Duration(rule.AggregateWindowMinutes) * time.Minute
	}

	return 0
}

// dispatchAsync queues channel delivery on the worker pool.
func (e *Engine) dispatchAsync(ctx context.Context, anomaly *models.Anomaly, channelNames []string, severity models.Severity) {
	e.wg.Add(1)

	go func() {
		defer e.wg.Done()

		e.workers <- struct{}{}
		defer func() { <-e.workers }()

		e.dispatch(ctx, anomaly, channelNames, severity)
	}()
}

// dispatch delivers one anomaly to its channels sequentially: the alert row
// is persisted before the send so the outcome always has an identity, and a
// failed channel never blocks the next one.
func (e *Engine) dispatch(ctx context.Context, anomaly *models.Anomaly, channelNames []string, severity models.Severity) {
	message := renderMessage(anomaly)
	deviceID := e.resolveDevice(ctx, anomaly.DeviceIP)

	var anomalyID *int64
	if anomaly.AnomalyID != 0 {
		anomalyID = &anomaly.AnomalyID
	}

	for _, name := range channelNames {
		channel, ok := e.channels[name]
		if !ok {
			e.logger.Warn().Str("channel", name).Msg("Unknown channel in rule")
			continue
		}

		alert := &models.Alert{
			AnomalyID: anomalyID,
			DeviceID:  deviceID,
			DeviceIP:  anomaly.DeviceIP,
			AlertType: anomaly.Type,
			Severity:  severity,
			Channel:   name,
			Message:   message,
			SentAt:    e.now().UTC(),
		}

		if e.store != nil {
			id, err := e.store.InsertAlert(ctx, alert)
			if err != nil {
				e.logger.Error().Err(err).Str("channel", name).Msg("Alert insert failed")
			} else {
				alert.AlertID = id
			}
		}

		delivered := e.send(ctx, channel, alert)

		if e.store != nil && alert.AlertID != 0 {
			if err := e.store.UpdateAlertDelivery(ctx, alert.AlertID, delivered, alert.DeliveryError); err != nil {
				e.logger.Error().Err(err).Int64("alert_id", alert.AlertID).Msg("Delivery status update failed")
			}
		}
	}
}

// send invokes the channel under the configured timeout.
func (e *Engine) send(ctx context.Context, channel Channel, alert *models.Alert) bool {
	timeout := e.config.SendTimeout.Std()
	if timeout <= 0 {
		timeout = defaultSendTimeout
	}

	sendCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	delivered := channel.Send(sendCtx, alert)
	alert.Delivered = delivered

	if !delivered && alert.DeliveryError == "" {
		alert.DeliveryError = "send failed"
	}

	if delivered {
		alert.DeliveryError = ""
	}

	return delivered
}

func (e *Engine) resolveDevice(ctx context.Context, ip string) *int64 {
	if e.store == nil || ip == "" {
		return nil
	}

	id, err := e.store.GetDeviceIDByIP(ctx, ip)
	if err != nil {
		e.logger.Debug().Err(err).Str("ip", ip).Msg("Device resolution failed")
		return nil
	}

	return id
}

// suppressedByWhitelist reports whether a port-change anomaly only touches
// whitelisted ports.
func suppressedByWhitelist(anomaly *models.Anomaly, whitelist []int) bool {
	if len(whitelist) == 0 || anomaly.PortChange == nil {
		return false
	}

	allowed := make(map[int]struct{}, len(whitelist))
	for _, p := range whitelist {
		allowed[p] = struct{}{}
	}

	for _, p := range anomaly.PortChange.Ports {
		if _, ok := allowed[p]; !ok {
			return false
		}
	}

	return true
}
