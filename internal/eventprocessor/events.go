// CloudCart Analytics - Order Event Analytics and Product Recommendations
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cloudcart/analytics

package eventprocessor

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cloudcart/analytics/internal/models"
)

// SubjectPrefix is the NATS subject namespace for order events.
// Subjects map to event types: orders.created -> order.created.
const SubjectPrefix = "orders"

// OrderEvent is the canonical wire format for order lifecycle events.
// TotalAmount and Status are optional; Items is populated only on
// order.created events.
type OrderEvent struct {
	EventID     string      `json:"event_id"`
	OrderID     string      `json:"order_id"`
	UserID      string      `json:"user_id"`
	EventType   string      `json:"event_type"`
	Timestamp   time.Time   `json:"timestamp"`
	TotalAmount float64     `json:"total_amount,omitempty"`
	Status      string      `json:"status,omitempty"`
	Items       []OrderItem `json:"items,omitempty"`
}

// OrderItem is one purchased line item carried on an order.created event.
type OrderItem struct {
	ProductID   string  `json:"product_id"`
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
	Subtotal    float64 `json:"subtotal"`
}

// NewOrderEvent creates an event with a unique ID and current timestamp.
func NewOrderEvent(eventType string) *OrderEvent {
	return &OrderEvent{
		EventID:   uuid.New().String(),
		EventType: eventType,
		Timestamp: time.Now().UTC(),
	}
}

// knownEventTypes lists the accepted order lifecycle event types.
var knownEventTypes = map[string]bool{
	models.EventOrderCreated:   true,
	models.EventOrderConfirmed: true,
	models.EventOrderShipped:   true,
	models.EventOrderDelivered: true,
	models.EventOrderCancelled: true,
}

// Normalize fills derivable fields: a missing timestamp becomes now.
func (e *OrderEvent) Normalize() {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
}

// Validate checks required fields and returns an error if validation fails.
func (e *OrderEvent) Validate() error {
	if e.EventID == "" {
		return &ValidationError{Field: "event_id", Message: "required"}
	}
	if e.OrderID == "" {
		return &ValidationError{Field: "order_id", Message: "required"}
	}
	if e.UserID == "" {
		return &ValidationError{Field: "user_id", Message: "required"}
	}
	if !knownEventTypes[e.EventType] {
		return &ValidationError{Field: "event_type", Message: "unknown type " + e.EventType}
	}
	for i := range e.Items {
		item := &e.Items[i]
		if item.ProductID == "" {
			return &ValidationError{Field: "items.product_id", Message: "required"}
		}
		if item.Quantity <= 0 {
			return &ValidationError{Field: "items.quantity", Message: "must be positive"}
		}
	}
	return nil
}

// Topic returns the NATS subject for this event.
// Format: orders.<suffix>, e.g. orders.created for order.created.
func (e *OrderEvent) Topic() string {
	suffix := e.EventType
	if i := strings.LastIndex(suffix, "."); i >= 0 {
		suffix = suffix[i+1:]
	}
	return SubjectPrefix + "." + suffix
}

// EventTypeForSubject maps a NATS subject back to its event type.
// orders.created -> order.created. Returns empty string for subjects
// outside the orders namespace.
func EventTypeForSubject(subject string) string {
	if !strings.HasPrefix(subject, SubjectPrefix+".") {
		return ""
	}
	return "order." + strings.TrimPrefix(subject, SubjectPrefix+".")
}

// ToModels converts the wire event to its storage representation.
func (e *OrderEvent) ToModels() (*models.OrderEvent, []models.OrderItem) {
	event := &models.OrderEvent{
		EventID:     e.EventID,
		OrderID:     e.OrderID,
		UserID:      e.UserID,
		EventType:   e.EventType,
		EventTime:   e.Timestamp,
		TotalAmount: e.TotalAmount,
		Status:      e.Status,
	}

	items := make([]models.OrderItem, 0, len(e.Items))
	for i := range e.Items {
		item := &e.Items[i]
		items = append(items, models.OrderItem{
			OrderID:     e.OrderID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			Price:       item.Price,
			Subtotal:    item.Subtotal,
			EventTime:   e.Timestamp,
		})
	}
	return event, items
}

// ValidationError represents a field validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}
