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
	"encoding/json"
	"errors"
	"time"

	"github.com/candorops/netsentry/pkg/logger"
)

// Duration unmarshals from JSON duration strings ("30s", "5m").
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string

	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}

	if s == "" {
		*d = Duration(0)
		return nil
	}

	dur, err := time.ParseDuration(s)
	if err != nil {
		return err
	}

	*d = Duration(dur)

	return nil
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// Std converts to a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Database holds Postgres connection settings.
type Database struct {
	Host            string            `json:"host"`
	Port            int               `json:"port"`
	Database        string            `json:"database"`
	Username        string            `json:"username"`
	Password        string            `json:"password,omitempty"`
	SSLMode         string            `json:"ssl_mode,omitempty"`
	ApplicationName string            `json:"application_name,omitempty"`
	MaxConnections  int32             `json:"max_connections,omitempty"`
	ExtraParams     map[string]string `json:"extra_params,omitempty"`
}

// PipelineConfig controls scan processing.
type PipelineConfig struct {
	UptimeThreshold         float64  `json:"uptime_threshold_for_downtime_alert,omitempty"`
	LatencySpikeMultiplier  float64  `json:"latency_spike_threshold_multiplier,omitempty"`
	PortWhitelist           []int    `json:"port_whitelist,omitempty"`
	BreakerFailureThreshold int      `json:"breaker_failure_threshold,omitempty"`
	BreakerTimeout          Duration `json:"breaker_timeout,omitempty"`
	SNMPLookup              bool     `json:"snmp_lookup,omitempty"`
	SNMPCommunity           string   `json:"snmp_community,omitempty"`
	SNMPPort                uint16   `json:"snmp_port,omitempty"`
	SNMPTimeout             Duration `json:"snmp_timeout,omitempty"`
}

// BaselineConfig controls the adaptive baseline engine.
type BaselineConfig struct {
	MinLearningSamples int      `json:"min_learning_samples,omitempty"`
	SmoothingAlpha     float64  `json:"smoothing_alpha,omitempty"`
	CheckInterval      Duration `json:"check_interval,omitempty"`
	SampleWindow       Duration `json:"sample_window,omitempty"`
	DegradedAfterFails int      `json:"degraded_after_failures,omitempty"`
}

// AlertingConfig controls the alert engine.
type AlertingConfig struct {
	Enabled         *bool                    `json:"enabled,omitempty"`
	Rules           map[string]AlertRule     `json:"rules,omitempty"`
	Channels        map[string]ChannelConfig `json:"channels,omitempty"`
	DispatchWorkers int                      `json:"dispatch_workers,omitempty"`
	SendTimeout     Duration                 `json:"send_timeout,omitempty"`
	EscalationSweep Duration                 `json:"escalation_sweep_interval,omitempty"`
}

// AlertRule declares routing and suppression policy for one anomaly type.
type AlertRule struct {
	Channels               []string         `json:"channels,omitempty"`
	Severity               Severity         `json:"severity,omitempty"`
	ThrottleMinutes        int              `json:"throttle_minutes,omitempty"`
	Escalation             []EscalationStep `json:"escalation,omitempty"`
	RequireAcknowledgment  bool             `json:"require_acknowledgment,omitempty"`
	WhitelistPorts         []int            `json:"whitelist_ports,omitempty"`
	AggregateWindowMinutes int              `json:"aggregate_window_minutes,omitempty"`
	Aggregate              bool             `json:"aggregate,omitempty"`
}

// EscalationStep raises severity or adds a channel after the incident has
// been unresolved for AfterMinutes.
type EscalationStep struct {
	AfterMinutes int      `json:"after_minutes"`
	AddChannel   string   `json:"add_channel,omitempty"`
	Severity     Severity `json:"severity,omitempty"`
}

// ChannelConfig holds per-channel transport settings.
type ChannelConfig struct {
	Enabled       bool     `json:"enabled"`
	SMTPHost      string   `json:"smtp_host,omitempty"`
	SMTPPort      int      `json:"smtp_port,omitempty"`
	SMTPUser      string   `json:"smtp_user,omitempty"`
	SMTPPassword  string   `json:"smtp_password,omitempty"`
	FromAddress   string   `json:"from_address,omitempty"`
	ToAddresses   []string `json:"to_addresses,omitempty"`
	BotToken      string   `json:"bot_token,omitempty"`
	ChatID        string   `json:"chat_id,omitempty"`
	APIBaseURL    string   `json:"api_base_url,omitempty"`
}

// IngestConfig controls scan ingestion.
type IngestConfig struct {
	WatchDir     string   `json:"watch_dir,omitempty"`
	NATSURL      string   `json:"nats_url,omitempty"`
	StreamName   string   `json:"stream_name,omitempty"`
	ConsumerName string   `json:"consumer_name,omitempty"`
	Subject      string   `json:"subject,omitempty"`
	SettleDelay  Duration `json:"settle_delay,omitempty"`
}

// HasSource reports whether at least one ingestion source is configured.
func (c *IngestConfig) HasSource() bool {
	return c.WatchDir != "" || c.NATSURL != ""
}

// ProcessorConfig is the scan-processor service configuration.
type ProcessorConfig struct {
	Database *Database      `json:"database,omitempty"`
	Pipeline PipelineConfig `json:"pipeline,omitempty"`
	Baseline BaselineConfig `json:"baseline,omitempty"`
	Ingest   IngestConfig   `json:"ingest"`
	Logging  *logger.Config `json:"logging,omitempty"`
}

func (c *ProcessorConfig) Validate() error {
	if !c.Ingest.HasSource() {
		return errNoIngestSource
	}

	return nil
}

// AlerterConfig is the alerter service configuration.
type AlerterConfig struct {
	Database     *Database      `json:"database,omitempty"`
	Alerting     AlertingConfig `json:"alerting,omitempty"`
	PollInterval Duration       `json:"poll_interval,omitempty"`
	PollLimit    int            `json:"poll_limit,omitempty"`
	Logging      *logger.Config `json:"logging,omitempty"`
}

var errNoIngestSource = errors.New("ingest requires watch_dir or nats_url")
