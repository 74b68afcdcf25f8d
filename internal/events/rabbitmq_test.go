package events

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeChannel records publishes. publishErr, when set, is returned once.
type fakeChannel struct {
	closed     bool
	publishErr error
	keys       []string
}

func (c *fakeChannel) PublishWithContext(_ context.Context, _, key string, _, _ bool, _ amqp.Publishing) error {
	if err := c.publishErr; err != nil {
		c.publishErr = nil
		c.closed = true
		return err
	}
	c.keys = append(c.keys, key)
	return nil
}

func (c *fakeChannel) IsClosed() bool { return c.closed }
func (c *fakeChannel) Close() error   { c.closed = true; return nil }

var _ rabbitChannel = (*fakeChannel)(nil)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// dialer hands out the queued channels in order and counts dials.
type dialer struct {
	channels []*fakeChannel
	errs     []error
	calls    int
}

func (d *dialer) dial() (rabbitSession, error) {
	i := d.calls
	d.calls++
	if i < len(d.errs) && d.errs[i] != nil {
		return rabbitSession{}, d.errs[i]
	}
	return rabbitSession{conn: nopCloser{}, ch: d.channels[i]}, nil
}

func testPublisher(d *dialer) *RabbitPublisher {
	return newRabbitPublisher("car-rental", slog.New(slog.NewTextHandler(io.Discard, nil)), d.dial)
}

func TestRabbitPublisher_RedialsClosedChannel(t *testing.T) {
	first, second := &fakeChannel{}, &fakeChannel{}
	d := &dialer{channels: []*fakeChannel{first, second}}
	p := testPublisher(d)
	ctx := context.Background()

	require.NoError(t, p.Publish(ctx, BookingCreated, BookingCreatedEvent{BookingID: "booking-1"}))
	first.closed = true
	require.NoError(t, p.Publish(ctx, CarStatusChanged, CarStatusChangedEvent{CarID: "car-1"}))

	assert.Equal(t, 2, d.calls)
	assert.Equal(t, []string{BookingCreated}, first.keys)
	assert.Equal(t, []string{CarStatusChanged}, second.keys)
}

func TestRabbitPublisher_RetriesOnceAfterClosedError(t *testing.T) {
	first := &fakeChannel{publishErr: amqp.ErrClosed}
	second := &fakeChannel{}
	d := &dialer{channels: []*fakeChannel{first, second}}
	p := testPublisher(d)

	require.NoError(t, p.Publish(context.Background(), BookingCreated, BookingCreatedEvent{}))

	assert.Empty(t, first.keys)
	assert.Equal(t, []string{BookingCreated}, second.keys)
}

func TestRabbitPublisher_FailedRedialIsRetriedLater(t *testing.T) {
	down := errors.New("connection refused")
	first, recovered := &fakeChannel{closed: true}, &fakeChannel{}
	d := &dialer{
		channels: []*fakeChannel{first, nil, recovered},
		errs:     []error{nil, down},
	}
	p := testPublisher(d)
	ctx := context.Background()
	require.NoError(t, p.ensureSession())

	err := p.Publish(ctx, BookingCreated, BookingCreatedEvent{})
	assert.ErrorIs(t, err, down)

	require.NoError(t, p.Publish(ctx, BookingCreated, BookingCreatedEvent{}))
	assert.Equal(t, []string{BookingCreated}, recovered.keys)
}

func TestRabbitPublisher_OtherErrorsAreNotRetried(t *testing.T) {
	boom := errors.New("nack")
	only := &fakeChannel{publishErr: boom}
	d := &dialer{channels: []*fakeChannel{only}}
	p := testPublisher(d)

	err := p.Publish(context.Background(), BookingCreated, BookingCreatedEvent{})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, d.calls)
}

func TestRabbitPublisher_PublishAfterClose(t *testing.T) {
	d := &dialer{channels: []*fakeChannel{{}}}
	p := testPublisher(d)
	require.NoError(t, p.Publish(context.Background(), BookingCreated, BookingCreatedEvent{}))

	require.NoError(t, p.Close())

	assert.ErrorIs(t, p.Publish(context.Background(), BookingCreated, BookingCreatedEvent{}), amqp.ErrClosed)
	assert.Equal(t, 1, d.calls)
}
