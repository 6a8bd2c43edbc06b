// CloudCart Analytics - Order Event Analytics and Product Recommendations
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cloudcart/analytics

// Package eventprocessor ingests order lifecycle events from NATS
// JetStream and persists them into the analytics store.
//
// The pipeline is Subscriber -> Consumer -> store. The subscriber is a
// durable Watermill/NATS JetStream consumer with queue-group load
// balancing; the consumer deserializes, validates and deduplicates
// events, then writes them behind a circuit breaker. Malformed events
// are acked so poison messages cannot wedge the stream; store failures
// are nacked for JetStream redelivery.
package eventprocessor
