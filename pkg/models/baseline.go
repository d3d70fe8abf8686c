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

import "time"

// MetricType identifies the metric a baseline tracks for an entity.
type MetricType string

const (
	MetricResponseTime MetricType = "response_time"
	MetricPacketLoss   MetricType = "packet_loss"
	MetricThroughput   MetricType = "throughput"
)

// BaselineState is the lifecycle stage of a baseline model.
type BaselineState string

const (
	BaselineLearning      BaselineState = "learning"
	BaselineStable        BaselineState = "stable"
	BaselineDriftDetected BaselineState = "drift_detected"
	BaselineRecalibrating BaselineState = "recalibrating"
	BaselineDegraded      BaselineState = "degraded"
)

// BaselineSnapshot is an immutable statistical summary of a metric's normal
// range for one entity. Readers always see a complete snapshot, never a
// partially-written one.
type BaselineSnapshot struct {
	Mean            float64   `json:"mean"`
	StdDev          float64   `json:"std"`
	Min             float64   `json:"min"`
	Max             float64   `json:"max"`
	P25             float64   `json:"p25"`
	P50             float64   `json:"p50"`
	P75             float64   `json:"p75"`
	P95             float64   `json:"p95"`
	P99             float64   `json:"p99"`
	SeasonalFactors []float64 `json:"seasonal_factors,omitempty"` // 24 hourly factors
	SampleCount     int       `json:"sample_count"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// MetricSample is one observation consumed by the baseline engine.
type MetricSample struct {
	Value     float64   `json:"value"`
	Timestamp time.Time `json:"timestamp"`
}

// RecalibrationDecision is the outcome of the baseline decision engine.
type RecalibrationDecision struct {
	Recalibrate       bool    `json:"recalibrate"`
	Reason            string  `json:"reason,omitempty"`
	Confidence        float64 `json:"confidence"`
	RecommendedAction string  `json:"recommended_action"`
}

// BaselineValidation reports how well a freshly recalibrated baseline fits a
// held-out sample tail. Observational only: it feeds the lifecycle state but
// never blocks the baseline from being stored.
type BaselineValidation struct {
	Valid             bool    `json:"valid"`
	Within3SigmaPct   float64 `json:"within_3sigma_percent"`
	MeanAbsoluteError float64 `json:"mean_error"`
}

// RecalibrationRecord is the audit entry written after each recalibration.
type RecalibrationRecord struct {
	Timestamp        time.Time          `json:"timestamp"`
	Entity           string             `json:"entity"`
	Metric           MetricType         `json:"metric"`
	Method           string             `json:"method"`
	SamplesUsed      int                `json:"samples_used"`
	PreviousBaseline *BaselineSnapshot  `json:"previous_baseline,omitempty"`
	NewBaseline      *BaselineSnapshot  `json:"new_baseline"`
	Validation       BaselineValidation `json:"validation_result"`
	ExecutionTimeMS  float64            `json:"execution_time_ms"`
}
