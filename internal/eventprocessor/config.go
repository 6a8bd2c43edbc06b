// CloudCart Analytics - Order Event Analytics and Product Recommendations
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cloudcart/analytics

package eventprocessor

import (
	"time"

	"github.com/cloudcart/analytics/internal/config"
)

// SubscriberConfig holds JetStream subscriber configuration.
type SubscriberConfig struct {
	URL              string
	StreamName       string
	DurableName      string
	QueueGroup       string
	SubscribersCount int
	AckWaitTimeout   time.Duration
	MaxDeliver       int
	MaxAckPending    int
	CloseTimeout     time.Duration
	MaxReconnects    int
	ReconnectWait    time.Duration
}

// DefaultSubscriberConfig returns production defaults for the subscriber.
func DefaultSubscriberConfig(url string) SubscriberConfig {
	return SubscriberConfig{
		URL:              url,
		StreamName:       "ORDERS",
		DurableName:      "analytics-processor",
		QueueGroup:       "analytics",
		SubscribersCount: 4,
		AckWaitTimeout:   30 * time.Second,
		MaxDeliver:       5,    // Max redelivery attempts
		MaxAckPending:    1000, // Flow control
		CloseTimeout:     30 * time.Second,
		MaxReconnects:    -1,
		ReconnectWait:    2 * time.Second,
	}
}

// SubscriberConfigFromApp derives subscriber settings from the
// application configuration.
func SubscriberConfigFromApp(cfg *config.NATSConfig) SubscriberConfig {
	sub := DefaultSubscriberConfig(cfg.URL)
	if cfg.StreamName != "" {
		sub.StreamName = cfg.StreamName
	}
	if cfg.DurableName != "" {
		sub.DurableName = cfg.DurableName
	}
	if cfg.QueueGroup != "" {
		sub.QueueGroup = cfg.QueueGroup
	}
	if cfg.SubscribersCount > 0 {
		sub.SubscribersCount = cfg.SubscribersCount
	}
	if cfg.AckWait > 0 {
		sub.AckWaitTimeout = cfg.AckWait
	}
	return sub
}

// ConsumerConfig holds configuration for the store consumer.
type ConsumerConfig struct {
	// Topic is the NATS subject pattern to subscribe to.
	Topic string

	// DedupWindow is the maximum number of recently seen event IDs kept
	// for deduplication. 0 disables deduplication.
	DedupWindow int
}

// DefaultConsumerConfig returns a ConsumerConfig with sensible defaults.
func DefaultConsumerConfig() ConsumerConfig {
	return ConsumerConfig{
		Topic:       SubjectPrefix + ".>",
		DedupWindow: 8192,
	}
}

// CircuitBreakerConfig holds circuit breaker settings for store writes.
type CircuitBreakerConfig struct {
	Name             string
	MaxRequests      uint32        // Allowed in half-open state
	Interval         time.Duration // Reset interval for counts
	Timeout          time.Duration // Time to stay open
	FailureThreshold uint32        // Consecutive failures before opening
}

// DefaultCircuitBreakerConfig returns production defaults.
func DefaultCircuitBreakerConfig(name string) CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Name:             name,
		MaxRequests:      3,
		Interval:         30 * time.Second,
		Timeout:          10 * time.Second,
		FailureThreshold: 5,
	}
}
