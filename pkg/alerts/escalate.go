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
	"context"
	"strings"
	"time"

	"github.com/candorops/netsentry/pkg/models"
)

const defaultEscalationSweep = time.Minute

// RunEscalations periodically walks unresolved incidents and applies each
// rule's escalation ladder: after the configured minutes unresolved, add a
// channel or raise severity for subsequent notifications.
func (e *Engine) RunEscalations(ctx context.Context) {
	interval := e.config.EscalationSweep.Std()
	if interval <= 0 {
		interval = defaultEscalationSweep
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	e.logger.Info().Dur("interval", interval).Msg("Starting escalation sweep")

	for {
		select {
		case <-ctx.Done():
			e.logger.Info().Msg("Stopping escalation sweep")
			return
		case <-ticker.C:
			e.SweepEscalations(ctx)
		}
	}
}

// SweepEscalations runs one escalation pass. Exported so tests and shutdown
// paths can drive it directly.
func (e *Engine) SweepEscalations(ctx context.Context) {
	incidents := e.unresolvedIncidents(ctx)
	now := e.now().UTC()

	for _, incident := range incidents {
		deviceIP, anomalyType, ok := splitAlertKey(incident.AlertKey)
		if !ok {
			continue
		}

		rule, found := e.rules[anomalyType]
		if !found || len(rule.Escalation) == 0 {
			continue
		}

		e.applyLadder(ctx, incident, deviceIP, anomalyType, rule, now)
	}
}

func (e *Engine) applyLadder(ctx context.Context, incident *models.AlertTracking, deviceIP string, anomalyType models.AnomalyType, rule models.AlertRule, now time.Time) {
	elapsed := now.Sub(incident.FirstOccurrence)

	e.mu.Lock()
	applied := e.escalated[incident.AlertKey]
	e.mu.Unlock()

	severity := rule.Severity
	if severity == "" {
		severity = models.SeverityHigh
	}

	for step := applied; step < len(rule.Escalation); step++ {
		ladder := rule.Escalation[step]
		if elapsed < time.Duration(ladder.AfterMinutes)*time.Minute {
			break
		}

		if ladder.Severity != "" {
			severity = ladder.Severity
		}

		// A step targets its added channel; a severity-only step
		// re-notifies the rule's channels at the raised severity.
		channels := []string{}
		if ladder.AddChannel != "" {
			channels = append(channels, ladder.AddChannel)
		} else if ladder.Severity != "" {
			channels = rule.Channels
		}

		e.logger.Warn().
			Str("key", incident.AlertKey).
			Int("step", step+1).
			Str("severity", string(severity)).
			Msg("Escalating unresolved incident")

		anomaly := models.Anomaly{
			Type:       anomalyType,
			DeviceIP:   deviceIP,
			Severity:   severity,
			DetectedAt: incident.FirstOccurrence,
		}

		if len(channels) > 0 {
			e.dispatchAsync(ctx, &anomaly, channels, severity)
		}

		e.mu.Lock()
		e.escalated[incident.AlertKey] = step + 1
		e.mu.Unlock()
	}
}

// unresolvedIncidents pulls open incidents from the durable store, falling
// back to memory when no store is configured.
func (e *Engine) unresolvedIncidents(ctx context.Context) []*models.AlertTracking {
	if e.store != nil {
		incidents, err := e.store.ListUnresolvedTracking(ctx)
		if err == nil {
			return incidents
		}

		e.logger.Error().Err(err).Msg("Unresolved incident listing failed")
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	var incidents []*models.AlertTracking

	for _, t := range e.tracking {
		if !t.Resolved {
			incidents = append(incidents, t)
		}
	}

	return incidents
}

// splitAlertKey reverses the dedup key layout (device identity, colon,
// anomaly type).
func splitAlertKey(key string) (deviceIP string, anomalyType models.AnomalyType, ok bool) {
	idx := strings.LastIndex(key, ":")
	if idx <= 0 || idx == len(key)-1 {
		return "", "", false
	}

	return key[:idx], models.AnomalyType(key[idx+1:]), true
}
