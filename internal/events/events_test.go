package events_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pkordes/car-rental/internal/events"
)

// Compile-time checks.
var (
	_ events.Publisher = events.Nop{}
	_ events.Publisher = (*events.Recorder)(nil)
	_ events.Publisher = (*events.RabbitPublisher)(nil)
)

func TestRecorder_KeepsOrder(t *testing.T) {
	r := &events.Recorder{}
	ctx := context.Background()

	_ = r.Publish(ctx, events.BookingCreated, events.BookingCreatedEvent{BookingID: "booking-1"})
	_ = r.Publish(ctx, events.CarStatusChanged, events.CarStatusChangedEvent{CarID: "car-1"})

	assert.Equal(t, []string{events.BookingCreated, events.CarStatusChanged}, r.Keys())
	msgs := r.Messages()
	assert.Equal(t, "booking-1", msgs[0].Payload.(events.BookingCreatedEvent).BookingID)
}

func TestRecorder_Err(t *testing.T) {
	boom := errors.New("broker down")
	r := &events.Recorder{Err: boom}

	err := r.Publish(context.Background(), events.BookingCreated, nil)

	assert.ErrorIs(t, err, boom)
	assert.Empty(t, r.Keys())
}

func TestNop(t *testing.T) {
	assert.NoError(t, events.Nop{}.Publish(context.Background(), events.BookingCreated, struct{}{}))
}
