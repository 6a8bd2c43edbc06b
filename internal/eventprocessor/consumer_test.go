// CloudCart Analytics - Order Event Analytics and Product Recommendations
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cloudcart/analytics

package eventprocessor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"

	"github.com/cloudcart/analytics/internal/models"
)

// mockMessageSource feeds messages to the consumer through a channel.
type mockMessageSource struct {
	messages chan *message.Message
	closed   bool
	mu       sync.Mutex
}

func newMockMessageSource() *mockMessageSource {
	return &mockMessageSource{
		messages: make(chan *message.Message, 100),
	}
}

func (m *mockMessageSource) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	return m.messages, nil
}

func (m *mockMessageSource) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.closed {
		m.closed = true
		close(m.messages)
	}
	return nil
}

func (m *mockMessageSource) send(payload []byte) *message.Message {
	msg := message.NewMessage(fmt.Sprintf("msg-%d", time.Now().UnixNano()), payload)
	m.messages <- msg
	return msg
}

func (m *mockMessageSource) sendEvent(t *testing.T, event *OrderEvent) *message.Message {
	t.Helper()
	data, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("marshal event: %v", err)
	}
	return m.send(data)
}

// mockEventStore records inserted events and can be made to fail.
type mockEventStore struct {
	mu      sync.Mutex
	events  []*models.OrderEvent
	items   map[string][]models.OrderItem
	failErr error
}

func newMockEventStore() *mockEventStore {
	return &mockEventStore{
		items: make(map[string][]models.OrderItem),
	}
}

func (s *mockEventStore) InsertOrderEvent(ctx context.Context, event *models.OrderEvent, items []models.OrderItem) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failErr != nil {
		return false, s.failErr
	}
	if _, ok := s.items[event.EventID]; ok {
		return false, nil
	}
	s.events = append(s.events, event)
	s.items[event.EventID] = items
	return true, nil
}

func (s *mockEventStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

func (s *mockEventStore) setFail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failErr = err
}

func validWireEvent(eventID string) *OrderEvent {
	return &OrderEvent{
		EventID:   eventID,
		OrderID:   "ord-1",
		UserID:    "user-1",
		EventType: models.EventOrderCreated,
		Timestamp: time.Now().UTC(),
		Items: []OrderItem{
			{ProductID: "prod-1", ProductName: "Widget", Quantity: 1, Price: 9.99, Subtotal: 9.99},
		},
	}
}

// waitForAck blocks until the message is acked or nacked, returning
// true for ack.
func waitForAck(t *testing.T, msg *message.Message) bool {
	t.Helper()
	select {
	case <-msg.Acked():
		return true
	case <-msg.Nacked():
		return false
	case <-time.After(2 * time.Second):
		t.Fatal("Timed out waiting for ack/nack")
		return false
	}
}

func TestNewConsumer(t *testing.T) {
	t.Parallel()

	source := newMockMessageSource()
	store := newMockEventStore()
	cfg := DefaultConsumerConfig()

	consumer, err := NewConsumer(source, store, &cfg)
	if err != nil {
		t.Fatalf("NewConsumer() error = %v", err)
	}
	if consumer.IsRunning() {
		t.Error("Consumer should not be running before Start()")
	}
}

func TestNewConsumer_InvalidArgs(t *testing.T) {
	t.Parallel()

	source := newMockMessageSource()
	store := newMockEventStore()
	cfg := DefaultConsumerConfig()

	tests := []struct {
		name   string
		source MessageSource
		store  EventStore
		cfg    *ConsumerConfig
	}{
		{name: "nil source", source: nil, store: store, cfg: &cfg},
		{name: "nil store", source: source, store: nil, cfg: &cfg},
		{name: "nil config", source: source, store: store, cfg: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewConsumer(tt.source, tt.store, tt.cfg); err == nil {
				t.Error("Expected error but got nil")
			}
		})
	}
}

func TestConsumer_ProcessMessages(t *testing.T) {
	t.Parallel()

	source := newMockMessageSource()
	store := newMockEventStore()
	cfg := DefaultConsumerConfig()

	consumer, err := NewConsumer(source, store, &cfg)
	if err != nil {
		t.Fatalf("NewConsumer() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := consumer.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer consumer.Stop()

	msg1 := source.sendEvent(t, validWireEvent("evt-1"))
	msg2 := source.sendEvent(t, validWireEvent("evt-2"))

	if !waitForAck(t, msg1) {
		t.Error("Expected first message to be acked")
	}
	if !waitForAck(t, msg2) {
		t.Error("Expected second message to be acked")
	}

	if got := store.count(); got != 2 {
		t.Errorf("Expected 2 stored events, got %d", got)
	}

	stats := consumer.Stats()
	if stats.MessagesReceived != 2 {
		t.Errorf("Expected MessagesReceived=2, got %d", stats.MessagesReceived)
	}
	if stats.MessagesProcessed != 2 {
		t.Errorf("Expected MessagesProcessed=2, got %d", stats.MessagesProcessed)
	}
	if stats.LastMessageTime.IsZero() {
		t.Error("Expected LastMessageTime to be set")
	}
}

func TestConsumer_ParseFailureAcked(t *testing.T) {
	t.Parallel()

	source := newMockMessageSource()
	store := newMockEventStore()
	cfg := DefaultConsumerConfig()

	consumer, _ := NewConsumer(source, store, &cfg)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := consumer.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer consumer.Stop()

	msg := source.send([]byte(`{not json`))
	if !waitForAck(t, msg) {
		t.Error("Expected malformed message to be acked, not nacked")
	}

	if got := store.count(); got != 0 {
		t.Errorf("Expected no stored events, got %d", got)
	}
	if stats := consumer.Stats(); stats.ParseErrors != 1 {
		t.Errorf("Expected ParseErrors=1, got %d", stats.ParseErrors)
	}
}

func TestConsumer_InvalidEventAcked(t *testing.T) {
	t.Parallel()

	source := newMockMessageSource()
	store := newMockEventStore()
	cfg := DefaultConsumerConfig()

	consumer, _ := NewConsumer(source, store, &cfg)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := consumer.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer consumer.Stop()

	event := validWireEvent("evt-1")
	event.UserID = ""
	msg := source.sendEvent(t, event)

	if !waitForAck(t, msg) {
		t.Error("Expected invalid event to be acked, not nacked")
	}
	if got := store.count(); got != 0 {
		t.Errorf("Expected no stored events, got %d", got)
	}
	if stats := consumer.Stats(); stats.InvalidEvents != 1 {
		t.Errorf("Expected InvalidEvents=1, got %d", stats.InvalidEvents)
	}
}

func TestConsumer_DuplicateSkipped(t *testing.T) {
	t.Parallel()

	source := newMockMessageSource()
	store := newMockEventStore()
	cfg := DefaultConsumerConfig()

	consumer, _ := NewConsumer(source, store, &cfg)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := consumer.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer consumer.Stop()

	msg1 := source.sendEvent(t, validWireEvent("evt-1"))
	if !waitForAck(t, msg1) {
		t.Error("Expected first delivery to be acked")
	}

	msg2 := source.sendEvent(t, validWireEvent("evt-1"))
	if !waitForAck(t, msg2) {
		t.Error("Expected duplicate delivery to be acked")
	}

	if got := store.count(); got != 1 {
		t.Errorf("Expected 1 stored event, got %d", got)
	}
	if stats := consumer.Stats(); stats.DuplicatesSkipped != 1 {
		t.Errorf("Expected DuplicatesSkipped=1, got %d", stats.DuplicatesSkipped)
	}
}

func TestConsumer_ColdWindowDuplicateAcked(t *testing.T) {
	t.Parallel()

	store := newMockEventStore()
	cfg := DefaultConsumerConfig()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	source1 := newMockMessageSource()
	consumer1, _ := NewConsumer(source1, store, &cfg)
	if err := consumer1.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	msg := source1.sendEvent(t, validWireEvent("evt-1"))
	if !waitForAck(t, msg) {
		t.Error("Expected first delivery to be acked")
	}
	consumer1.Stop()

	// A restarted consumer has an empty in-memory window, so the store
	// is the only thing that can recognize the redelivery.
	source2 := newMockMessageSource()
	consumer2, _ := NewConsumer(source2, store, &cfg)
	if err := consumer2.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer consumer2.Stop()

	msg2 := source2.sendEvent(t, validWireEvent("evt-1"))
	if !waitForAck(t, msg2) {
		t.Error("Expected redelivery to be acked")
	}

	if got := store.count(); got != 1 {
		t.Errorf("Expected 1 stored event, got %d", got)
	}
	stats := consumer2.Stats()
	if stats.DuplicatesSkipped != 1 {
		t.Errorf("Expected DuplicatesSkipped=1, got %d", stats.DuplicatesSkipped)
	}
	if stats.MessagesProcessed != 0 {
		t.Errorf("Expected MessagesProcessed=0, got %d", stats.MessagesProcessed)
	}
}

func TestConsumer_StoreFailureNacked(t *testing.T) {
	t.Parallel()

	source := newMockMessageSource()
	store := newMockEventStore()
	store.setFail(errors.New("disk full"))
	cfg := DefaultConsumerConfig()

	consumer, _ := NewConsumer(source, store, &cfg)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := consumer.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer consumer.Stop()

	msg := source.sendEvent(t, validWireEvent("evt-1"))
	if waitForAck(t, msg) {
		t.Error("Expected store failure to be nacked for redelivery")
	}
	if stats := consumer.Stats(); stats.StoreFailures != 1 {
		t.Errorf("Expected StoreFailures=1, got %d", stats.StoreFailures)
	}

	// A failed insert must not poison the dedup set: the redelivered
	// event is stored once the store recovers.
	store.setFail(nil)
	msg2 := source.sendEvent(t, validWireEvent("evt-1"))
	if !waitForAck(t, msg2) {
		t.Error("Expected redelivery to be acked after store recovery")
	}
	if got := store.count(); got != 1 {
		t.Errorf("Expected 1 stored event, got %d", got)
	}
	if stats := consumer.Stats(); stats.DuplicatesSkipped != 0 {
		t.Errorf("Expected no duplicates counted for retried event, got %d", stats.DuplicatesSkipped)
	}
}

func TestConsumer_StartStop(t *testing.T) {
	t.Parallel()

	source := newMockMessageSource()
	store := newMockEventStore()
	cfg := DefaultConsumerConfig()

	consumer, _ := NewConsumer(source, store, &cfg)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := consumer.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if !consumer.IsRunning() {
		t.Error("Expected consumer to be running after Start()")
	}

	// Second Start is a no-op.
	if err := consumer.Start(ctx); err != nil {
		t.Errorf("Second Start() error = %v", err)
	}

	consumer.Stop()
	if consumer.IsRunning() {
		t.Error("Expected consumer to be stopped after Stop()")
	}

	// Second Stop is a no-op.
	consumer.Stop()
}
