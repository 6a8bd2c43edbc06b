// CloudCart Analytics - Order Event Analytics and Product Recommendations
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cloudcart/analytics

package eventprocessor

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/cloudcart/analytics/internal/logging"
	"github.com/cloudcart/analytics/internal/metrics"
	"github.com/cloudcart/analytics/internal/models"
)

// MessageSource defines the interface for receiving messages.
// This abstraction allows the consumer to work with different message
// sources in tests.
type MessageSource interface {
	// Subscribe subscribes to a topic and returns a channel of messages.
	Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error)
	// Close closes the message source.
	Close() error
}

// EventStore persists order events. Implemented by database.DB.
type EventStore interface {
	// InsertOrderEvent writes an event and its items transactionally,
	// returning true if the event was newly inserted.
	InsertOrderEvent(ctx context.Context, event *models.OrderEvent, items []models.OrderItem) (bool, error)
}

// ConsumerStats holds runtime statistics for monitoring.
type ConsumerStats struct {
	MessagesReceived  int64     // Total messages received
	MessagesProcessed int64     // Successfully persisted events
	ParseErrors       int64     // JSON parse failures
	InvalidEvents     int64     // Events failing validation
	DuplicatesSkipped int64     // Messages skipped by deduplication
	StoreFailures     int64     // Insert failures (nacked for redelivery)
	LastMessageTime   time.Time // Time of last received message
}

// Consumer consumes order events from JetStream and writes them to the
// store. It handles deserialization, validation, deduplication and
// circuit-broken inserts.
type Consumer struct {
	source     MessageSource
	store      EventStore
	config     ConsumerConfig
	serializer *Serializer
	breaker    *gobreaker.CircuitBreaker[bool]
	dedup      *dedupSet

	// State
	running atomic.Bool
	stopCh  chan struct{}
	doneCh  chan struct{}

	// Counters
	messagesReceived  atomic.Int64
	messagesProcessed atomic.Int64
	parseErrors       atomic.Int64
	invalidEvents     atomic.Int64
	duplicatesSkipped atomic.Int64
	storeFailures     atomic.Int64
	lastMessageTime   atomic.Value // stores time.Time
}

// NewConsumer creates a consumer reading from source and writing to store.
func NewConsumer(source MessageSource, store EventStore, cfg *ConsumerConfig) (*Consumer, error) {
	if source == nil {
		return nil, fmt.Errorf("message source required")
	}
	if store == nil {
		return nil, fmt.Errorf("event store required")
	}
	if cfg == nil {
		return nil, fmt.Errorf("consumer config required")
	}

	c := &Consumer{
		source:     source,
		store:      store,
		config:     *cfg,
		serializer: NewSerializer(),
		breaker:    NewCircuitBreaker(DefaultCircuitBreakerConfig("order-store")),
		dedup:      newDedupSet(cfg.DedupWindow),
		stopCh:     make(chan struct{}),
		doneCh:     make(chan struct{}),
	}
	c.lastMessageTime.Store(time.Time{})
	return c, nil
}

// Start begins consuming messages from the source.
// Returns immediately; consumption happens in a goroutine.
func (c *Consumer) Start(ctx context.Context) error {
	if c.running.Swap(true) {
		return nil // Already running
	}

	messages, err := c.source.Subscribe(ctx, c.config.Topic)
	if err != nil {
		c.running.Store(false)
		return fmt.Errorf("subscribe to %s: %w", c.config.Topic, err)
	}

	go c.consumeLoop(ctx, messages)

	logging.Info().
		Str("topic", c.config.Topic).
		Int("dedup_window", c.config.DedupWindow).
		Msg("Order event consumer started")
	return nil
}

// Stop gracefully stops the consumer and waits for the loop to drain.
func (c *Consumer) Stop() {
	if !c.running.Swap(false) {
		return // Already stopped
	}

	close(c.stopCh)
	<-c.doneCh

	logging.Info().Msg("Order event consumer stopped")
}

// IsRunning returns whether the consumer is currently running.
func (c *Consumer) IsRunning() bool {
	return c.running.Load()
}

// Stats returns current runtime statistics.
func (c *Consumer) Stats() ConsumerStats {
	var lastTime time.Time
	if t, ok := c.lastMessageTime.Load().(time.Time); ok {
		lastTime = t
	}
	return ConsumerStats{
		MessagesReceived:  c.messagesReceived.Load(),
		MessagesProcessed: c.messagesProcessed.Load(),
		ParseErrors:       c.parseErrors.Load(),
		InvalidEvents:     c.invalidEvents.Load(),
		DuplicatesSkipped: c.duplicatesSkipped.Load(),
		StoreFailures:     c.storeFailures.Load(),
		LastMessageTime:   lastTime,
	}
}

// consumeLoop processes messages until shutdown, draining buffered
// messages before returning so nothing received is lost.
func (c *Consumer) consumeLoop(ctx context.Context, messages <-chan *message.Message) {
	defer func() {
		c.running.Store(false)
		close(c.doneCh)
	}()

	for {
		select {
		case <-ctx.Done():
			c.drainMessages(messages)
			return
		case <-c.stopCh:
			c.drainMessages(messages)
			return
		case msg, ok := <-messages:
			if !ok {
				return
			}
			c.processMessage(ctx, msg)
		}
	}
}

// drainMessages processes buffered messages during shutdown. A short
// timeout prevents blocking if the channel keeps receiving.
func (c *Consumer) drainMessages(messages <-chan *message.Message) {
	drainTimeout := time.After(100 * time.Millisecond)
	drained := 0

	for {
		select {
		case <-drainTimeout:
			if drained > 0 {
				logging.Info().Int("count", drained).Msg("Consumer drained messages during shutdown")
			}
			return
		case msg, ok := <-messages:
			if !ok {
				if drained > 0 {
					logging.Info().Int("count", drained).Msg("Consumer drained messages during shutdown")
				}
				return
			}
			// The original context is canceled at this point.
			c.processMessage(context.Background(), msg)
			drained++
		default:
			if drained > 0 {
				logging.Info().Int("count", drained).Msg("Consumer drained messages during shutdown")
			}
			return
		}
	}
}

// processMessage handles a single message. Malformed or duplicate
// messages are acked so they are never redelivered; store failures are
// nacked so JetStream retries them.
func (c *Consumer) processMessage(ctx context.Context, msg *message.Message) {
	start := time.Now()
	c.messagesReceived.Add(1)
	c.lastMessageTime.Store(start)
	metrics.RecordEventConsumed()

	event, err := c.serializer.Unmarshal(msg.Payload)
	if err != nil {
		c.parseErrors.Add(1)
		metrics.RecordEventParseFailed()
		logging.Warn().
			Str("message_uuid", msg.UUID).
			Err(err).
			Msg("Failed to parse order event")
		msg.Ack() // Ack to prevent redelivery of malformed messages
		return
	}

	event.Normalize()
	if err := event.Validate(); err != nil {
		c.invalidEvents.Add(1)
		metrics.RecordEventInvalid()
		logging.Warn().
			Str("message_uuid", msg.UUID).
			Str("event_id", event.EventID).
			Err(err).
			Msg("Invalid order event")
		msg.Ack()
		return
	}

	if c.dedup.Contains(event.EventID) {
		c.duplicatesSkipped.Add(1)
		metrics.RecordEventDeduplicated()
		msg.Ack()
		return
	}

	storeEvent, items := event.ToModels()
	inserted, err := c.breaker.Execute(func() (bool, error) {
		return c.store.InsertOrderEvent(ctx, storeEvent, items)
	})
	if err != nil {
		c.storeFailures.Add(1)
		metrics.RecordEventStoreFailed()
		logging.Warn().
			Str("event_id", event.EventID).
			Err(err).
			Msg("Failed to store order event")
		msg.Nack() // Nack for JetStream redelivery
		return
	}

	c.dedup.Record(event.EventID)
	if !inserted {
		// Already persisted before the in-memory window saw it,
		// typically a redelivery across a restart.
		c.duplicatesSkipped.Add(1)
		metrics.RecordEventDeduplicated()
		msg.Ack()
		return
	}
	c.messagesProcessed.Add(1)
	metrics.RecordEventProcessed()
	metrics.RecordEventProcessingDuration(time.Since(start))
	msg.Ack()
}
