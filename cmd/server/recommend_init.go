// CloudCart Analytics - Order Event Analytics and Product Recommendations
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cloudcart/analytics

package main

import (
	"context"
	"time"

	"github.com/cloudcart/analytics/internal/config"
	"github.com/cloudcart/analytics/internal/logging"
	"github.com/cloudcart/analytics/internal/metrics"
	"github.com/cloudcart/analytics/internal/recommend"
)

// startTraining trains the model on startup when configured and retrains
// it periodically. The returned function stops the retraining loop.
func startTraining(ctx context.Context, engine *recommend.Engine, cfg *config.RecommendConfig) func() {
	train := func(reason string) {
		start := time.Now()
		trained := engine.Train(ctx)
		metrics.RecordTraining(trained, time.Since(start))
		if trained {
			logging.Info().
				Str("reason", reason).
				Dur("duration", time.Since(start)).
				Msg("Recommendation model trained")
		}
	}

	if cfg.TrainOnStartup {
		go train("startup")
	}

	if cfg.TrainInterval <= 0 {
		return func() {}
	}

	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(cfg.TrainInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-done:
				return
			case <-ticker.C:
				train("interval")
			}
		}
	}()

	logging.Info().Dur("interval", cfg.TrainInterval).Msg("Periodic model retraining scheduled")
	return func() { close(done) }
}
