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

// The alerter polls persisted anomalies, routes them through the alert
// rule table, and delivers notifications over the configured channels.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/candorops/netsentry/pkg/alerts"
	"github.com/candorops/netsentry/pkg/config"
	"github.com/candorops/netsentry/pkg/db"
	"github.com/candorops/netsentry/pkg/logger"
	"github.com/candorops/netsentry/pkg/models"
)

const (
	defaultPollInterval = 30 * time.Second
	defaultPollLimit    = 200
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	configPath := flag.String("config", "/etc/netsentry/alerter.json", "Path to alerter config file")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var cfg models.AlerterConfig

	cfgLoader := config.NewConfig(nil)
	if err := cfgLoader.LoadAndValidate(ctx, *configPath, &cfg); err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if cfg.Database == nil {
		return errors.New("alerter requires a database configuration")
	}

	logConfig := cfg.Logging
	if logConfig == nil {
		logConfig = &logger.Config{
			Level:  "info",
			Output: "stdout",
		}
	}

	mainLogger, err := logger.New(logConfig)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	store, err := db.New(ctx, cfg.Database, mainLogger)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer store.Close()

	channels := alerts.NewChannels(cfg.Alerting, mainLogger)
	engine := alerts.NewEngine(cfg.Alerting, store, channels, mainLogger)

	go engine.RunEscalations(ctx)

	interval := cfg.PollInterval.Std()
	if interval <= 0 {
		interval = defaultPollInterval
	}

	limit := cfg.PollLimit
	if limit <= 0 {
		limit = defaultPollLimit
	}

	mainLogger.Info().
		Dur("poll_interval", interval).
		Msg("Alerter started")

	pollAnomalies(ctx, store, engine, interval, limit, mainLogger)

	mainLogger.Info().Msg("Alerter shutting down")
	engine.Wait()

	return nil
}

// pollAnomalies feeds newly persisted anomalies into the alert engine until
// ctx is canceled. The since watermark advances to the latest detection seen;
// replays across restarts are absorbed by alert deduplication.
func pollAnomalies(ctx context.Context, store db.Service, engine *alerts.Engine, interval time.Duration, limit int, log logger.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	since := time.Now().Add(-interval)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		pending, err := store.GetPendingAnomalies(ctx, since, limit)
		if err != nil {
			log.Error().Err(err).Msg("Failed to fetch pending anomalies")
			continue
		}

		if len(pending) == 0 {
			continue
		}

		batch := make([]models.Anomaly, 0, len(pending))

		for _, anomaly := range pending {
			batch = append(batch, *anomaly)

			if anomaly.DetectedAt.After(since) {
				since = anomaly.DetectedAt
			}
		}

		log.Debug().Int("count", len(batch)).Msg("Dispatching anomaly batch")
		engine.ProcessAnomalies(ctx, batch)
	}
}
