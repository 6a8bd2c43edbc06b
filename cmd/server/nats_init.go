// CloudCart Analytics - Order Event Analytics and Product Recommendations
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cloudcart/analytics

package main

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"

	"github.com/cloudcart/analytics/internal/config"
	"github.com/cloudcart/analytics/internal/database"
	"github.com/cloudcart/analytics/internal/eventprocessor"
	"github.com/cloudcart/analytics/internal/logging"
)

// ingestComponents bundles the NATS subscriber and consumer so shutdown
// can stop them in order.
type ingestComponents struct {
	subscriber *eventprocessor.Subscriber
	consumer   *eventprocessor.Consumer
}

// Close stops the consumer first so in-flight messages drain, then
// closes the subscription.
func (c *ingestComponents) Close() {
	if c.consumer != nil {
		c.consumer.Stop()
	}
	if c.subscriber != nil {
		if err := c.subscriber.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing NATS subscriber")
		}
	}
	logging.Info().Msg("Event ingest stopped")
}

// initIngest wires the JetStream subscriber to the store consumer.
// Returns nil components when NATS is disabled.
func initIngest(ctx context.Context, cfg *config.Config, db *database.DB) (*ingestComponents, error) {
	if !cfg.NATS.Enabled {
		logging.Info().Msg("NATS ingest disabled (NATS_ENABLED=false)")
		return nil, nil
	}

	subCfg := eventprocessor.SubscriberConfigFromApp(&cfg.NATS)
	subscriber, err := eventprocessor.NewSubscriber(&subCfg, watermill.NewStdLogger(false, false))
	if err != nil {
		return nil, fmt.Errorf("create subscriber: %w", err)
	}

	consumerCfg := eventprocessor.DefaultConsumerConfig()
	if cfg.NATS.Subject != "" {
		consumerCfg.Topic = cfg.NATS.Subject
	}
	if cfg.NATS.DedupWindow > 0 {
		consumerCfg.DedupWindow = cfg.NATS.DedupWindow
	}

	consumer, err := eventprocessor.NewConsumer(subscriber, db, &consumerCfg)
	if err != nil {
		if closeErr := subscriber.Close(); closeErr != nil {
			logging.Error().Err(closeErr).Msg("Error closing NATS subscriber")
		}
		return nil, fmt.Errorf("create consumer: %w", err)
	}

	if err := consumer.Start(ctx); err != nil {
		if closeErr := subscriber.Close(); closeErr != nil {
			logging.Error().Err(closeErr).Msg("Error closing NATS subscriber")
		}
		return nil, fmt.Errorf("start consumer: %w", err)
	}

	logging.Info().
		Str("url", cfg.NATS.URL).
		Str("stream", cfg.NATS.StreamName).
		Str("subject", consumerCfg.Topic).
		Msg("NATS ingest started")

	return &ingestComponents{subscriber: subscriber, consumer: consumer}, nil
}
