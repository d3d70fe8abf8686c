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

package baseline

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/candorops/netsentry/pkg/logger"
	"github.com/candorops/netsentry/pkg/models"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()

	return NewEngine(models.BaselineConfig{}, nil, logger.NewTestLogger())
}

func constantSamples(value float64, n int) []models.MetricSample {
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	samples := make([]models.MetricSample, n)

	for i := range samples {
		samples[i] = models.MetricSample{
			Value:     value,
			Timestamp: base.Add(time.Duration(i) * time.Minute),
		}
	}

	return samples
}

func TestShouldRecalibrateInsufficientData(t *testing.T) {
	e := newTestEngine(t)

	decision := e.ShouldRecalibrate("192.168.1.1", models.MetricResponseTime, constantSamples(10, 99))
	assert.False(t, decision.Recalibrate)
	assert.Equal(t, ReasonInsufficientData, decision.Reason)
	assert.Equal(t, ActionContinueLearning, decision.RecommendedAction)
	assert.Zero(t, decision.Confidence)
}

func TestShouldRecalibrateNoBaseline(t *testing.T) {
	e := newTestEngine(t)

	decision := e.ShouldRecalibrate("192.168.1.1", models.MetricResponseTime, constantSamples(10, 100))
	assert.True(t, decision.Recalibrate)
	assert.Equal(t, ReasonNoBaseline, decision.Reason)
	assert.Equal(t, ActionFull, decision.RecommendedAction)
	assert.InDelta(t, 1.0, decision.Confidence, 1e-9)
}

func TestShouldRecalibrateHealthyBaseline(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	samples := noisySamples(10, 1, 200)
	_, err := e.Recalibrate(ctx, "192.168.1.1", models.MetricResponseTime, samples, MethodFull)
	require.NoError(t, err)

	decision := e.ShouldRecalibrate("192.168.1.1", models.MetricResponseTime, samples)
	assert.False(t, decision.Recalibrate)
	assert.Equal(t, ReasonHealthy, decision.Reason)
}

func TestShouldRecalibrateMeanShiftDegradesModel(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	_, err := e.Recalibrate(ctx, "192.168.1.1", models.MetricResponseTime, noisySamples(10, 1, 200), MethodFull)
	require.NoError(t, err)

	// Recent samples 20% above the stored mean.
	decision := e.ShouldRecalibrate("192.168.1.1", models.MetricResponseTime, noisySamples(12, 1, 200))
	assert.True(t, decision.Recalibrate)
	assert.Contains(t, []string{ReasonStatisticalDrift, ReasonModelDegraded}, decision.Reason)
	assert.Positive(t, decision.Confidence)
	assert.Equal(t, models.BaselineDriftDetected, e.State("192.168.1.1", models.MetricResponseTime))
}

func TestRecalibrateFullConstantSamples(t *testing.T) {
	e := newTestEngine(t)

	snapshot, err := e.Recalibrate(context.Background(), "192.168.1.1", models.MetricResponseTime,
		constantSamples(10, 100), MethodFull)
	require.NoError(t, err)

	assert.InDelta(t, 10, snapshot.Mean, 1e-12)
	assert.Zero(t, snapshot.StdDev)
	assert.InDelta(t, 10, snapshot.Min, 1e-12)
	assert.InDelta(t, 10, snapshot.Max, 1e-12)
	assert.InDelta(t, 10, snapshot.P50, 1e-12)
	assert.InDelta(t, 10, snapshot.P99, 1e-12)
	assert.Equal(t, 100, snapshot.SampleCount)
	assert.Equal(t, models.BaselineStable, e.State("192.168.1.1", models.MetricResponseTime))
}

func TestRecalibrateGradualBlendsMeanAndStd(t *testing.T) {
	e := NewEngine(models.BaselineConfig{SmoothingAlpha: 0.1}, nil, logger.NewTestLogger())
	ctx := context.Background()

	_, err := e.Recalibrate(ctx, "h", models.MetricResponseTime, constantSamples(10, 100), MethodFull)
	require.NoError(t, err)

	snapshot, err := e.Recalibrate(ctx, "h", models.MetricResponseTime, constantSamples(20, 100), MethodGradual)
	require.NoError(t, err)

	// 0.1*20 + 0.9*10
	assert.InDelta(t, 11, snapshot.Mean, 1e-9)
	// Percentiles replaced outright from the new sample.
	assert.InDelta(t, 20, snapshot.P95, 1e-9)
	assert.InDelta(t, 20, snapshot.P99, 1e-9)
}

func TestRecalibrateSeasonalFactors(t *testing.T) {
	e := newTestEngine(t)

	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	samples := make([]models.MetricSample, 0, 240)

	// Ten observations per hour; hour 12 runs twice as hot.
	for h := 0; h < 24; h++ {
		value := 10.0
		if h == 12 {
			value = 20.0
		}

		for i := 0; i < 10; i++ {
			samples = append(samples, models.MetricSample{
				Value:     value,
				Timestamp: base.Add(time.Duration(h)*time.Hour + time.Duration(i)*time.Minute),
			})
		}
	}

	snapshot, err := e.Recalibrate(context.Background(), "h", models.MetricResponseTime, samples, MethodSeasonal)
	require.NoError(t, err)
	require.Len(t, snapshot.SeasonalFactors, 24)

	overall := snapshot.Mean
	assert.InDelta(t, 20/overall, snapshot.SeasonalFactors[12], 1e-9)
	assert.InDelta(t, 10/overall, snapshot.SeasonalFactors[3], 1e-9)
}

func TestRecalibrateAdaptiveSelectsByVolatility(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	// Low volatility: behaves like a full recalibration.
	snapshot, err := e.Recalibrate(ctx, "calm", models.MetricResponseTime, noisySamples(10, 0.5, 100), MethodAdaptive)
	require.NoError(t, err)
	assert.InDelta(t, 10, snapshot.Mean, 1)

	// High volatility with an existing baseline: gradual update dominates
	// the previous mean.
	_, err = e.Recalibrate(ctx, "wild", models.MetricResponseTime, constantSamples(10, 100), MethodFull)
	require.NoError(t, err)

	snapshot, err = e.Recalibrate(ctx, "wild", models.MetricResponseTime, volatileSamples(100, 100), MethodAdaptive)
	require.NoError(t, err)
	assert.Less(t, snapshot.Mean, 20.0, "gradual blend keeps the old mean dominant")
}

func TestRecalibrateUnknownMethod(t *testing.T) {
	e := newTestEngine(t)

	_, err := e.Recalibrate(context.Background(), "h", models.MetricResponseTime, constantSamples(10, 100), "quadratic")
	require.Error(t, err)
}

func TestRecalibrateEmptySamples(t *testing.T) {
	e := newTestEngine(t)

	_, err := e.Recalibrate(context.Background(), "h", models.MetricResponseTime, nil, MethodFull)
	require.ErrorIs(t, err, ErrNoSamples)
}

func TestRepeatedValidationFailuresDegrade(t *testing.T) {
	e := NewEngine(models.BaselineConfig{DegradedAfterFails: 3}, nil, logger.NewTestLogger())
	ctx := context.Background()

	// Two extreme outliers in the held-out tail put more than 5% of it
	// beyond three standard deviations, failing validation every time.
	samples := constantSamples(10, 100)
	samples[90].Value = 1000
	samples[95].Value = 1000

	for i := 0; i < 3; i++ {
		_, err := e.Recalibrate(ctx, "h", models.MetricResponseTime, samples, MethodFull)
		require.NoError(t, err)
	}

	assert.Equal(t, models.BaselineDegraded, e.State("h", models.MetricResponseTime))

	_, ok := e.BaselineFor("h", models.MetricResponseTime)
	assert.False(t, ok, "degraded baselines are not served")
}

func TestBaselineForUnknownEntity(t *testing.T) {
	e := newTestEngine(t)

	_, ok := e.BaselineFor("10.0.0.1", models.MetricResponseTime)
	assert.False(t, ok)
	assert.Equal(t, models.BaselineLearning, e.State("10.0.0.1", models.MetricResponseTime))
}

// noisySamples produces a deterministic pseudo-random series around mean
// with roughly the given spread.
func noisySamples(mean, spread float64, n int) []models.MetricSample {
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	samples := make([]models.MetricSample, n)

	seed := uint64(42)
	for i := range samples {
		seed = seed*6364136223846793005 + 1442695040888963407
		u := float64(seed>>11) / float64(1<<53)

		samples[i] = models.MetricSample{
			Value:     mean + (u-0.5)*2*spread,
			Timestamp: base.Add(time.Duration(i) * time.Minute),
		}
	}

	return samples
}

// volatileSamples alternates between extremes so std/mean stays above 0.5.
func volatileSamples(peak float64, n int) []models.MetricSample {
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	samples := make([]models.MetricSample, n)

	for i := range samples {
		value := peak
		if i%2 == 0 {
			value = 1
		}

		samples[i] = models.MetricSample{
			Value:     value,
			Timestamp: base.Add(time.Duration(i) * time.Minute),
		}
	}

	return samples
}
