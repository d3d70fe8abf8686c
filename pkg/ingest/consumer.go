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

package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog"

	"github.com/candorops/netsentry/pkg/logger"
	"github.com/candorops/netsentry/pkg/models"
)

const (
	maxPullMessages = 50
	pullExpiry      = 30 * time.Second
	maxDeliveries   = 3
	consumerAckWait = 30 * time.Second
)

// Consumer pulls scan snapshots from a JetStream stream. Scans that fail
// decoding or validation are negatively acknowledged and retried up to the
// delivery limit, then dropped.
type Consumer struct {
	nc       *nats.Conn
	consumer jetstream.Consumer
	handler  Handler
	logger   zerolog.Logger
}

// NewConsumer connects to NATS and creates or retrieves the durable pull
// consumer named in cfg.
func NewConsumer(ctx context.Context, cfg models.IngestConfig, handler Handler, log logger.Logger) (*Consumer, error) {
	nc, err := nats.Connect(cfg.NATSURL, nats.Name(cfg.ConsumerName))
	if err != nil {
		return nil, fmt.Errorf("connecting to nats: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("creating jetstream context: %w", err)
	}

	consumer, err := js.Consumer(ctx, cfg.StreamName, cfg.ConsumerName)
	if err != nil {
		consumer, err = js.CreateConsumer(ctx, cfg.StreamName, jetstream.ConsumerConfig{
			Durable:       cfg.ConsumerName,
			AckPolicy:     jetstream.AckExplicitPolicy,
			AckWait:       consumerAckWait,
			MaxDeliver:    maxDeliveries,
			FilterSubject: cfg.Subject,
		})
		if err != nil {
			nc.Close()
			return nil, fmt.Errorf("creating consumer: %w", err)
		}
	}

	return &Consumer{
		nc:       nc,
		consumer: consumer,
		handler:  handler,
		logger:   log.WithComponent("ingest.nats"),
	}, nil
}

// Close drains the NATS connection.
func (c *Consumer) Close() {
	if c.nc != nil {
		c.nc.Close()
	}
}

// Run fetches and processes messages until ctx is canceled.
func (c *Consumer) Run(ctx context.Context) {
	c.logger.Info().Msg("Starting scan consumer")

	for {
		select {
		case <-ctx.Done():
			c.logger.Info().Msg("Stopping scan consumer")
			return
		default:
			batch, err := c.consumer.Fetch(maxPullMessages, jetstream.FetchMaxWait(pullExpiry))
			if err != nil {
				c.logger.Error().Err(err).Msg("Message fetch failed")
				time.Sleep(time.Second)

				continue
			}

			for msg := range batch.Messages() {
				c.handleMsg(ctx, msg)
			}

			if err := batch.Error(); err != nil {
				c.logger.Error().Err(err).Msg("Fetch error")
			}
		}
	}
}

func (c *Consumer) handleMsg(ctx context.Context, msg jetstream.Msg) {
	scan, err := decodeScan(msg.Data())
	if err != nil {
		// Malformed payloads never become valid; drop without retry.
		c.logger.Error().Err(err).Str("subject", msg.Subject()).Msg("Dropping undecodable scan")
		_ = msg.Term()

		return
	}

	if err := c.handler(ctx, scan); err != nil {
		meta, metaErr := msg.Metadata()
		if metaErr == nil && meta.NumDelivered >= maxDeliveries {
			c.logger.Error().Err(err).Str("scan_id", scan.ScanID).Msg("Dropping scan after max deliveries")
			_ = msg.Ack()

			return
		}

		c.logger.Warn().Err(err).Str("scan_id", scan.ScanID).Msg("Scan processing failed; will retry")
		_ = msg.Nak()

		return
	}

	_ = msg.Ack()
}
