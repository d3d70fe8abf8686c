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
	"time"

	"github.com/candorops/netsentry/pkg/models"
)

const (
	defaultCheckInterval = 15 * time.Minute
	defaultSampleWindow  = 24 * time.Hour
)

// Run drives the periodic recalibration decision loop until ctx is
// canceled. Each pass sweeps every tracked (entity, metric) pair, decides
// whether its baseline has drifted, and recalibrates when needed.
func (e *Engine) Run(ctx context.Context) {
	if e.store == nil {
		e.logger.Warn().Msg("No store configured; recalibration loop disabled")
		return
	}

	interval := e.config.CheckInterval.Std()
	if interval <= 0 {
		interval = defaultCheckInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	e.logger.Info().Dur("interval", interval).Msg("Starting recalibration loop")

	for {
		select {
		case <-ctx.Done():
			e.logger.Info().Msg("Stopping recalibration loop")
			return
		case <-ticker.C:
			e.sweep(ctx)
		}
	}
}

// sweep runs one decision pass over all tracked entities.
func (e *Engine) sweep(ctx context.Context) {
	entities, err := e.store.ListBaselineEntities(ctx)
	if err != nil {
		e.logger.Error().Err(err).Msg("Baseline entity listing failed")
		return
	}

	window := e.config.SampleWindow.Std()
	if window <= 0 {
		window = defaultSampleWindow
	}

	since := e.now().Add(-window)

	for _, be := range entities {
		if ctx.Err() != nil {
			return
		}

		e.evaluate(ctx, be.Entity, be.Metric, since)
	}
}

func (e *Engine) evaluate(ctx context.Context, entity string, metric models.MetricType, since time.Time) {
	samples, err := e.store.GetMetricSamples(ctx, entity, metric, since)
	if err != nil {
		e.logger.Error().Err(err).
			Str("entity", entity).
			Str("metric", string(metric)).
			Msg("Sample fetch failed")

		return
	}

	decision := e.ShouldRecalibrate(entity, metric, samples)
	if !decision.Recalibrate {
		if decision.Reason == ReasonInsufficientData {
			if _, ok := e.currentSnapshot(entity, metric); !ok {
				e.setState(entity, metric, models.BaselineLearning)
			}
		}

		return
	}

	e.logger.Info().
		Str("entity", entity).
		Str("metric", string(metric)).
		Str("reason", decision.Reason).
		Float64("confidence", decision.Confidence).
		Msg("Drift detected")

	if _, err := e.Recalibrate(ctx, entity, metric, samples, methodForAction(decision.RecommendedAction)); err != nil {
		e.logger.Error().Err(err).Str("entity", entity).Msg("Recalibration failed")
	}
}

func methodForAction(action string) string {
	switch action {
	case ActionFull:
		return MethodFull
	case ActionSeasonal:
		return MethodSeasonal
	default:
		return MethodAdaptive
	}
}
