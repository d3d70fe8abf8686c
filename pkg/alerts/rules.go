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

import "github.com/candorops/netsentry/pkg/models"

// Channel names recognized by the default rule set.
const (
	ChannelDashboard = "dashboard"
	ChannelEmail     = "email"
	ChannelTelegram  = "telegram"
	ChannelSMS       = "sms"
)

// defaultRules is the built-in routing policy, applied for any anomaly type
// not overridden in config.
func defaultRules() map[models.AnomalyType]models.AlertRule {
	return map[models.AnomalyType]models.AlertRule{
		models.AnomalySuddenDowntime: {
			Channels:        []string{ChannelEmail, ChannelTelegram},
			ThrottleMinutes: 5,
			Escalation: []models.EscalationStep{
				{AfterMinutes: 15, AddChannel: ChannelSMS},
				{AfterMinutes: 60, Severity: models.SeverityCritical},
			},
		},
		models.AnomalyNewPortsOpened: {
			Channels:              []string{ChannelEmail, ChannelDashboard},
			RequireAcknowledgment: true,
			WhitelistPorts:        []int{80, 443, 22},
		},
		models.AnomalyLatencySpike: {
			Channels:               []string{ChannelDashboard},
			Aggregate:              true,
			AggregateWindowMinutes: 30,
		},
		models.AnomalyNewDevice: {
			Channels:        []string{ChannelDashboard, ChannelEmail},
			ThrottleMinutes: 60,
		},
		models.AnomalyPortsClosed: {
			Channels: []string{ChannelDashboard},
			Severity: models.SeverityLow,
		},
	}
}

// buildRules overlays configured rules on the defaults. A configured rule
// replaces the default for its type wholesale.
func buildRules(configured map[string]models.AlertRule) map[models.AnomalyType]models.AlertRule {
	rules := defaultRules()

	for name, rule := range configured {
		rules[models.AnomalyType(name)] = rule
	}

	return rules
}
