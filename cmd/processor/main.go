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

// The processor ingests network scan snapshots from a watch directory or a
// JetStream subject, runs them through the detection pipeline, and persists
// devices, status history, and anomalies.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"github.com/candorops/netsentry/pkg/baseline"
	"github.com/candorops/netsentry/pkg/config"
	"github.com/candorops/netsentry/pkg/db"
	"github.com/candorops/netsentry/pkg/ingest"
	"github.com/candorops/netsentry/pkg/logger"
	"github.com/candorops/netsentry/pkg/models"
	"github.com/candorops/netsentry/pkg/pipeline"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	configPath := flag.String("config", "/etc/netsentry/processor.json", "Path to processor config file")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var cfg models.ProcessorConfig

	cfgLoader := config.NewConfig(nil)
	if err := cfgLoader.LoadAndValidate(ctx, *configPath, &cfg); err != nil {
		return fmt.Errorf("failed to load config: %w", err)
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

	var store db.Service

	if cfg.Database != nil {
		database, err := db.New(ctx, cfg.Database, mainLogger)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer database.Close()

		store = database
	} else {
		mainLogger.Warn().Msg("No database configured, running memory-only")
	}

	baselines := baseline.NewEngine(cfg.Baseline, store, mainLogger)
	if err := baselines.Warm(ctx); err != nil {
		mainLogger.Warn().Err(err).Msg("Failed to warm baselines")
	}

	go baselines.Run(ctx)

	var lookup pipeline.VendorLookup
	if snmp := pipeline.NewSNMPLookup(&cfg.Pipeline); snmp != nil {
		lookup = snmp
	}

	pl := pipeline.NewPipeline(cfg.Pipeline, store, baselines, lookup, mainLogger)
	pl.SeedFromStore(ctx)

	handler := func(ctx context.Context, scan *models.Scan) error {
		result, err := pl.Process(ctx, scan)
		if err != nil {
			return err
		}

		mainLogger.Info().
			Str("scan_id", scan.ScanID).
			Int("devices", len(result.EnrichedDevices)).
			Int("anomalies", result.Analysis.AnomaliesDetected).
			Msg("Scan processed")

		return nil
	}

	errCh := make(chan error, 1)

	if cfg.Ingest.WatchDir != "" {
		watcher := ingest.NewFileWatcher(cfg.Ingest, handler, mainLogger)

		go func() {
			if err := watcher.Run(ctx); err != nil {
				errCh <- fmt.Errorf("file watcher: %w", err)
			}
		}()
	}

	if cfg.Ingest.NATSURL != "" {
		consumer, err := ingest.NewConsumer(ctx, cfg.Ingest, handler, mainLogger)
		if err != nil {
			return fmt.Errorf("failed to create scan consumer: %w", err)
		}
		defer consumer.Close()

		go consumer.Run(ctx)
	}

	mainLogger.Info().Msg("Processor started")

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return err
	}

	mainLogger.Info().Msg("Processor shutting down")

	return nil
}
