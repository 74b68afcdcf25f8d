// Package events publishes domain events about cars and bookings.
// Publishing happens after the owning unit of work commits; a failed publish
// never undoes a committed write.
package events

import (
	"context"
	"sync"
	"time"
)

// Routing keys on the topic exchange.
const (
	BookingCreated       = "booking.created"
	BookingStatusChanged = "booking.status_changed"
	CarStatusChanged     = "car.status_changed"
)

// Publisher sends a JSON-encoded payload under a routing key.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

// BookingCreatedEvent is published when a booking is stored.
type BookingCreatedEvent struct {
	BookingID  string    `json:"bookingId"`
	CarID      string    `json:"carId"`
	StartDate  string    `json:"startDate"`
	EndDate    string    `json:"endDate"`
	TotalPrice int64     `json:"totalPrice"`
	OccurredAt time.Time `json:"occurredAt"`
}

// BookingStatusChangedEvent is published when a booking's status is written.
type BookingStatusChangedEvent struct {
	BookingID  string    `json:"bookingId"`
	CarID      string    `json:"carId"`
	From       string    `json:"from"`
	To         string    `json:"to"`
	OccurredAt time.Time `json:"occurredAt"`
}

// CarStatusChangedEvent is published when a car's status changes, either by
// an administrator or as a booking cascade. BookingID is empty for the former.
type CarStatusChangedEvent struct {
	CarID      string    `json:"carId"`
	From       string    `json:"from"`
	To         string    `json:"to"`
	BookingID  string    `json:"bookingId,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

// Nop discards every event. It is used when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, string, any) error { return nil }

// Message is one event captured by a Recorder.
type Message struct {
	RoutingKey string
	Payload    any
}

// Recorder keeps published events in memory. Tests use it to assert on the
// events a service emitted.
type Recorder struct {
	mu       sync.Mutex
	messages []Message
	// Err, when set, is returned from every Publish call.
	Err error
}

func (r *Recorder) Publish(_ context.Context, routingKey string, payload any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.messages = append(r.messages, Message{RoutingKey: routingKey, Payload: payload})
	return nil
}

// Messages returns a copy of everything published so far.
func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Message(nil), r.messages...)
}

// Keys returns the routing keys published so far, in order.
func (r *Recorder) Keys() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	keys := make([]string, 0, len(r.messages))
	for _, m := range r.messages {
		keys = append(keys, m.RoutingKey)
	}
	return keys
}
