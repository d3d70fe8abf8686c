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

// Package baseline maintains adaptive per-entity statistical baselines with
// concept-drift detection and recalibration.
package baseline

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/stat"

	"github.com/candorops/netsentry/pkg/db"
	"github.com/candorops/netsentry/pkg/logger"
	"github.com/candorops/netsentry/pkg/models"
)

// ErrNoSamples is returned when a recalibration is requested with an empty
// sample set.
var ErrNoSamples = errors.New("no samples for recalibration")

const (
	defaultMinLearningSamples = 100
	defaultSmoothingAlpha     = 0.1
	defaultDegradedAfterFails = 3

	driftSignificance      = 0.01
	seasonalCorrelationMin = 0.7
	mapeThresholdPercent   = 15.0
	mapeConfidenceDivisor  = 50.0
	volatilityThreshold    = 0.5
	adaptiveGradualAlpha   = 0.05

	validationTailLen     = 20
	validationWithinSigma = 3.0
	validationMinFraction = 0.95

	seasonalMinHours = 24
)

// Recalibration methods.
const (
	MethodFull     = "full"
	MethodGradual  = "gradual"
	MethodSeasonal = "seasonal"
	MethodAdaptive = "adaptive"
)

// Recommended actions reported by decisions.
const (
	ActionContinueLearning = "continue_learning"
	ActionFull             = "full_recalibration"
	ActionSeasonal         = "seasonal_recalibration"
	ActionAdaptive         = "adaptive_recalibration"
	ActionNone             = "none"
)

// Decision reasons.
const (
	ReasonInsufficientData = "insufficient_data"
	ReasonNoBaseline       = "no_baseline"
	ReasonStatisticalDrift = "statistical_drift"
	ReasonSeasonalChange   = "seasonal_pattern_change"
	ReasonModelDegraded    = "model_performance_degradation"
	ReasonHealthy          = "baseline_healthy"
)

type entityKey struct {
	entity string
	metric models.MetricType
}

type baselineModel struct {
	snapshot        *models.BaselineSnapshot
	state           models.BaselineState
	validationFails int
}

// Engine owns all baseline models. Snapshot reads and recalibration writes
// may run concurrently; a published snapshot is always complete.
type Engine struct {
	mu     sync.RWMutex
	models map[entityKey]*baselineModel

	store  db.Service
	config models.BaselineConfig
	logger zerolog.Logger
	now    func() time.Time
}

// NewEngine creates a baseline engine. store may be nil for a memory-only
// engine (snapshots are lost on restart).
func NewEngine(cfg models.BaselineConfig, store db.Service, log logger.Logger) *Engine {
	if cfg.MinLearningSamples <= 0 {
		cfg.MinLearningSamples = defaultMinLearningSamples
	}

	if cfg.SmoothingAlpha <= 0 {
		cfg.SmoothingAlpha = defaultSmoothingAlpha
	}

	if cfg.DegradedAfterFails <= 0 {
		cfg.DegradedAfterFails = defaultDegradedAfterFails
	}

	return &Engine{
		models: make(map[entityKey]*baselineModel),
		store:  store,
		config: cfg,
		logger: log.WithComponent("baseline"),
		now:    time.Now,
	}
}

// Warm loads persisted baselines into memory. A load failure leaves the
// affected entity in learning state.
func (e *Engine) Warm(ctx context.Context) error {
	if e.store == nil {
		return nil
	}

	entities, err := e.store.ListBaselineEntities(ctx)
	if err != nil {
		return fmt.Errorf("listing baseline entities: %w", err)
	}

	loaded := 0

	for _, be := range entities {
		snapshot, err := e.store.LoadBaseline(ctx, be.Entity, be.Metric)
		if err != nil {
			e.logger.Warn().Err(err).
				Str("entity", be.Entity).
				Str("metric", string(be.Metric)).
				Msg("Baseline load failed")

			continue
		}

		if snapshot == nil {
			continue
		}

		e.publish(be.Entity, be.Metric, snapshot, models.BaselineStable)
		loaded++
	}

	e.logger.Info().Int("baselines", loaded).Msg("Warmed baseline cache")

	return nil
}

// BaselineFor returns the current snapshot for an entity's metric. Entities
// still learning, or degraded past usefulness, report no baseline.
func (e *Engine) BaselineFor(entity string, metric models.MetricType) (*models.BaselineSnapshot, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	m, ok := e.models[entityKey{entity, metric}]
	if !ok || m.snapshot == nil {
		return nil, false
	}

	if m.state == models.BaselineLearning || m.state == models.BaselineDegraded {
		return nil, false
	}

	return m.snapshot, true
}

// State returns the lifecycle state for an entity's metric, defaulting to
// learning for unknown entities.
func (e *Engine) State(entity string, metric models.MetricType) models.BaselineState {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if m, ok := e.models[entityKey{entity, metric}]; ok {
		return m.state
	}

	return models.BaselineLearning
}

// ShouldRecalibrate runs the drift decision checks against recent samples.
// The first triggered check supplies the reason and recommended action; the
// confidence is the maximum across all triggered checks.
func (e *Engine) ShouldRecalibrate(entity string, metric models.MetricType, samples []models.MetricSample) models.RecalibrationDecision {
	if len(samples) < e.config.MinLearningSamples {
		return models.RecalibrationDecision{
			Recalibrate:       false,
			Reason:            ReasonInsufficientData,
			Confidence:        0,
			RecommendedAction: ActionContinueLearning,
		}
	}

	current, ok := e.currentSnapshot(entity, metric)
	if !ok {
		return models.RecalibrationDecision{
			Recalibrate:       true,
			Reason:            ReasonNoBaseline,
			Confidence:        1.0,
			RecommendedAction: ActionFull,
		}
	}

	values := sampleValues(samples)

	type trigger struct {
		reason     string
		confidence float64
		action     string
	}

	var triggered []trigger

	if conf, drifted := e.checkStatisticalDrift(values, current); drifted {
		triggered = append(triggered, trigger{ReasonStatisticalDrift, conf, ActionFull})
	}

	if conf, changed := e.checkSeasonalChange(samples, current); changed {
		triggered = append(triggered, trigger{ReasonSeasonalChange, conf, ActionSeasonal})
	}

	if errPct := mape(values, current.Mean); errPct > mapeThresholdPercent {
		conf := math.Min(1, errPct/mapeConfidenceDivisor)
		triggered = append(triggered, trigger{ReasonModelDegraded, conf, ActionAdaptive})
	}

	if len(triggered) == 0 {
		return models.RecalibrationDecision{
			Recalibrate:       false,
			Reason:            ReasonHealthy,
			Confidence:        0,
			RecommendedAction: ActionNone,
		}
	}

	decision := models.RecalibrationDecision{
		Recalibrate:       true,
		Reason:            triggered[0].reason,
		Confidence:        triggered[0].confidence,
		RecommendedAction: triggered[0].action,
	}

	for _, t := range triggered[1:] {
		if t.confidence > decision.Confidence {
			decision.Confidence = t.confidence
		}
	}

	e.setState(entity, metric, models.BaselineDriftDetected)

	return decision
}

// checkStatisticalDrift compares the recent sample distribution against a
// reference sample reconstructed from the stored summary, using three
// complementary two-sample tests at the 0.01 level.
func (e *Engine) checkStatisticalDrift(values []float64, current *models.BaselineSnapshot) (confidence float64, drifted bool) {
	reference := syntheticSample(current.Mean, current.StdDev)

	pValues := []float64{
		ksTestPValue(values, reference),
		mannWhitneyPValue(values, reference),
		levenePValue(values, reference),
	}

	var rejected []float64

	for _, p := range pValues {
		if p < driftSignificance {
			rejected = append(rejected, p)
		}
	}

	if len(rejected) == 0 {
		return 0, false
	}

	avgP := stat.Mean(rejected, nil)
	fraction := float64(len(rejected)) / float64(len(pValues))

	return (1 - avgP) * fraction, true
}

// checkSeasonalChange correlates recent hourly means against the stored
// seasonal factors.
func (e *Engine) checkSeasonalChange(samples []models.MetricSample, current *models.BaselineSnapshot) (confidence float64, changed bool) {
	if len(current.SeasonalFactors) != seasonalMinHours {
		return 0, false
	}

	hoursSeen := make(map[int]struct{})
	at := make([]sampleAt, len(samples))

	for i, s := range samples {
		h := s.Timestamp.Hour()
		hoursSeen[h] = struct{}{}
		at[i] = sampleAt{value: s.Value, hour: h}
	}

	if len(hoursSeen) < seasonalMinHours {
		return 0, false
	}

	corr := stat.Correlation(hourlyMeans(at), current.SeasonalFactors, nil)
	if math.IsNaN(corr) || corr >= seasonalCorrelationMin {
		return 0, false
	}

	return 1 - corr, true
}

// Recalibrate rebuilds the baseline from samples using the given method and
// publishes the result. Validation is observational: an invalid baseline is
// still stored, but repeated failures degrade the entity.
func (e *Engine) Recalibrate(ctx context.Context, entity string, metric models.MetricType, samples []models.MetricSample, method string) (*models.BaselineSnapshot, error) {
	if len(samples) == 0 {
		return nil, ErrNoSamples
	}

	started := e.now()
	e.setState(entity, metric, models.BaselineRecalibrating)

	previous, _ := e.currentSnapshot(entity, metric)
	values := sampleValues(samples)

	snapshot, applied, err := e.buildSnapshot(values, samples, previous, method)
	if err != nil {
		// Baseline left unchanged; lifecycle returns to its prior stage.
		e.setState(entity, metric, models.BaselineDriftDetected)
		return nil, err
	}

	validation := validate(values, snapshot)

	state := models.BaselineStable
	fails := 0

	if !validation.Valid {
		fails = e.bumpValidationFails(entity, metric)

		state = models.BaselineDriftDetected
		if fails >= e.config.DegradedAfterFails {
			state = models.BaselineDegraded
		}
	}

	e.publishWithFails(entity, metric, snapshot, state, fails)
	e.persist(ctx, entity, metric, snapshot, &models.RecalibrationRecord{
		Timestamp:        started.UTC(),
		Entity:           entity,
		Metric:           metric,
		Method:           applied,
		SamplesUsed:      len(samples),
		PreviousBaseline: previous,
		NewBaseline:      snapshot,
		Validation:       validation,
		ExecutionTimeMS:  float64(e.now().Sub(started).Microseconds()) / 1000,
	})

	e.logger.Info().
		Str("entity", entity).
		Str("metric", string(metric)).
		Str("method", applied).
		Bool("valid", validation.Valid).
		Int("samples", len(samples)).
		Msg("Recalibrated baseline")

	return snapshot, nil
}

// buildSnapshot dispatches on method, returning the snapshot and the method
// actually applied (adaptive records its chosen sub-method).
func (e *Engine) buildSnapshot(values []float64, samples []models.MetricSample, previous *models.BaselineSnapshot, method string) (*models.BaselineSnapshot, string, error) {
	now := e.now().UTC()

	switch method {
	case MethodFull, "":
		return computeSnapshot(values, now, previous), MethodFull, nil

	case MethodGradual:
		return e.gradualSnapshot(values, previous, e.config.SmoothingAlpha, now), MethodGradual, nil

	case MethodSeasonal:
		snapshot := computeSnapshot(values, now, previous)
		snapshot.SeasonalFactors = seasonalFactors(samples, snapshot.Mean)

		return snapshot, MethodSeasonal, nil

	case MethodAdaptive:
		mean := stat.Mean(values, nil)
		sd := stat.StdDev(values, nil)

		if mean != 0 && sd/math.Abs(mean) > volatilityThreshold {
			return e.gradualSnapshot(values, previous, adaptiveGradualAlpha, now), MethodAdaptive + "(" + MethodGradual + ")", nil
		}

		return computeSnapshot(values, now, previous), MethodAdaptive + "(" + MethodFull + ")", nil

	default:
		return nil, "", fmt.Errorf("unknown recalibration method %q", method)
	}
}

// gradualSnapshot blends mean and standard deviation with the previous
// baseline; percentiles come from the new sample outright.
func (e *Engine) gradualSnapshot(values []float64, previous *models.BaselineSnapshot, alpha float64, now time.Time) *models.BaselineSnapshot {
	snapshot := computeSnapshot(values, now, previous)

	if previous != nil {
		snapshot.Mean = alpha*snapshot.Mean + (1-alpha)*previous.Mean
		snapshot.StdDev = alpha*snapshot.StdDev + (1-alpha)*previous.StdDev
		snapshot.SeasonalFactors = previous.SeasonalFactors
	}

	return snapshot
}

// computeSnapshot runs a full statistical summary over values.
func computeSnapshot(values []float64, now time.Time, previous *models.BaselineSnapshot) *models.BaselineSnapshot {
	sorted := sortedCopy(values)

	snapshot := &models.BaselineSnapshot{
		Mean:        stat.Mean(sorted, nil),
		Min:         sorted[0],
		Max:         sorted[len(sorted)-1],
		P25:         stat.Quantile(0.25, stat.Empirical, sorted, nil),
		P50:         stat.Quantile(0.50, stat.Empirical, sorted, nil),
		P75:         stat.Quantile(0.75, stat.Empirical, sorted, nil),
		P95:         stat.Quantile(0.95, stat.Empirical, sorted, nil),
		P99:         stat.Quantile(0.99, stat.Empirical, sorted, nil),
		SampleCount: len(sorted),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if len(sorted) > 1 {
		snapshot.StdDev = stat.StdDev(sorted, nil)
	}

	if previous != nil && !previous.CreatedAt.IsZero() {
		snapshot.CreatedAt = previous.CreatedAt
	}

	return snapshot
}

// seasonalFactors computes 24 hourly factors as hourly mean over overall
// mean. A zero overall mean yields flat factors.
func seasonalFactors(samples []models.MetricSample, overallMean float64) []float64 {
	factors := make([]float64, seasonalMinHours)

	if overallMean == 0 {
		for i := range factors {
			factors[i] = 1
		}

		return factors
	}

	at := make([]sampleAt, len(samples))
	for i, s := range samples {
		at[i] = sampleAt{value: s.Value, hour: s.Timestamp.Hour()}
	}

	for h, m := range hourlyMeans(at) {
		factors[h] = m / overallMean
	}

	return factors
}

// validate checks a held-out tail of the sample set against the new
// baseline: at least 95% of the tail must fall within three standard
// deviations of the mean.
func validate(values []float64, snapshot *models.BaselineSnapshot) models.BaselineValidation {
	tail := values
	if len(tail) > validationTailLen {
		tail = tail[len(tail)-validationTailLen:]
	}

	within := 0
	absErr := 0.0

	for _, v := range tail {
		dev := math.Abs(v - snapshot.Mean)
		absErr += dev

		if dev <= validationWithinSigma*snapshot.StdDev {
			within++
		}
	}

	fraction := float64(within) / float64(len(tail))

	return models.BaselineValidation{
		Valid:             fraction >= validationMinFraction,
		Within3SigmaPct:   fraction * 100,
		MeanAbsoluteError: absErr / float64(len(tail)),
	}
}

func (e *Engine) currentSnapshot(entity string, metric models.MetricType) (*models.BaselineSnapshot, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	m, ok := e.models[entityKey{entity, metric}]
	if !ok || m.snapshot == nil {
		return nil, false
	}

	return m.snapshot, true
}

func (e *Engine) publish(entity string, metric models.MetricType, snapshot *models.BaselineSnapshot, state models.BaselineState) {
	e.publishWithFails(entity, metric, snapshot, state, 0)
}

func (e *Engine) publishWithFails(entity string, metric models.MetricType, snapshot *models.BaselineSnapshot, state models.BaselineState, fails int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.models[entityKey{entity, metric}] = &baselineModel{
		snapshot:        snapshot,
		state:           state,
		validationFails: fails,
	}
}

func (e *Engine) setState(entity string, metric models.MetricType, state models.BaselineState) {
	e.mu.Lock()
	defer e.mu.Unlock()

	key := entityKey{entity, metric}

	if m, ok := e.models[key]; ok {
		m.state = state
		return
	}

	e.models[key] = &baselineModel{state: state}
}

func (e *Engine) bumpValidationFails(entity string, metric models.MetricType) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	key := entityKey{entity, metric}

	m, ok := e.models[key]
	if !ok {
		m = &baselineModel{state: models.BaselineLearning}
		e.models[key] = m
	}

	m.validationFails++

	return m.validationFails
}

func (e *Engine) persist(ctx context.Context, entity string, metric models.MetricType, snapshot *models.BaselineSnapshot, record *models.RecalibrationRecord) {
	if e.store == nil {
		return
	}

	if err := e.store.SaveBaseline(ctx, entity, metric, snapshot); err != nil {
		e.logger.Error().Err(err).Str("entity", entity).Msg("Baseline save failed")
	}

	if err := e.store.LogRecalibration(ctx, record); err != nil {
		e.logger.Error().Err(err).Str("entity", entity).Msg("Recalibration audit write failed")
	}
}

func sampleValues(samples []models.MetricSample) []float64 {
	values := make([]float64, len(samples))
	for i, s := range samples {
		values[i] = s.Value
	}

	return values
}
