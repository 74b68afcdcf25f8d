package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
)

const exchangeKind = "topic"

// rabbitChannel is the part of *amqp.Channel the publisher uses.
type rabbitChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	IsClosed() bool
	Close() error
}

// rabbitSession is one dialed connection and its publishing channel.
type rabbitSession struct {
	conn io.Closer
	ch   rabbitChannel
}

func (s rabbitSession) close() error {
	if s.ch == nil {
		return nil
	}
	if err := s.ch.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
		s.conn.Close()
		return err
	}
	if err := s.conn.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
		return err
	}
	return nil
}

// RabbitPublisher publishes events to a durable topic exchange. A closed
// connection is re-dialed on the next Publish.
type RabbitPublisher struct {
	exchange string
	log      *slog.Logger
	dial     func() (rabbitSession, error)

	mu     sync.Mutex
	sess   rabbitSession
	closed bool
}

// NewRabbitPublisher dials url and declares the exchange.
func NewRabbitPublisher(url, exchange string, log *slog.Logger) (*RabbitPublisher, error) {
	p := newRabbitPublisher(exchange, log, func() (rabbitSession, error) {
		return dialRabbit(url, exchange, log)
	})
	sess, err := p.dial()
	if err != nil {
		return nil, fmt.Errorf("events.NewRabbitPublisher: %w", err)
	}
	p.sess = sess
	return p, nil
}

func newRabbitPublisher(exchange string, log *slog.Logger, dial func() (rabbitSession, error)) *RabbitPublisher {
	return &RabbitPublisher{exchange: exchange, log: log, dial: dial}
}

// dialRabbit opens a connection and channel and declares the exchange. An
// unexpected connection close is logged at error level.
func dialRabbit(url, exchange string, log *slog.Logger) (rabbitSession, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return rabbitSession{}, fmt.Errorf("dial: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return rabbitSession{}, fmt.Errorf("channel: %w", err)
	}

	if err := ch.ExchangeDeclare(exchange, exchangeKind, true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return rabbitSession{}, fmt.Errorf("declare exchange %q: %w", exchange, err)
	}

	lost := conn.NotifyClose(make(chan *amqp.Error, 1))
	go func() {
		// A graceful Close closes lost without sending.
		if amqpErr, ok := <-lost; ok && amqpErr != nil {
			log.Error("rabbitmq connection lost; will reconnect on next publish",
				"exchange", exchange, "error", amqpErr)
		}
	}()

	return rabbitSession{conn: conn, ch: ch}, nil
}

// Publish implements Publisher. When the channel is closed it re-dials once
// and retries.
func (p *RabbitPublisher) Publish(ctx context.Context, routingKey string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("events.Publish: marshal: %w", err)
	}
	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return fmt.Errorf("events.Publish %s: %w", routingKey, amqp.ErrClosed)
	}

	for attempt := 0; ; attempt++ {
		if err := p.ensureSession(); err != nil {
			return fmt.Errorf("events.Publish %s: reconnect: %w", routingKey, err)
		}
		err = p.sess.ch.PublishWithContext(ctx, p.exchange, routingKey, false, false, msg)
		if err == nil {
			break
		}
		if !errors.Is(err, amqp.ErrClosed) || attempt > 0 {
			return fmt.Errorf("events.Publish %s: %w", routingKey, err)
		}
	}

	p.log.Debug("event published", "exchange", p.exchange, "routing_key", routingKey)
	return nil
}

// ensureSession re-dials when there is no usable channel. Callers hold p.mu.
func (p *RabbitPublisher) ensureSession() error {
	if p.sess.ch != nil && !p.sess.ch.IsClosed() {
		return nil
	}
	if err := p.sess.close(); err != nil {
		p.log.Warn("closing stale rabbitmq session", "error", err)
	}
	p.sess = rabbitSession{}

	sess, err := p.dial()
	if err != nil {
		return err
	}
	p.sess = sess
	p.log.Info("rabbitmq reconnected", "exchange", p.exchange)
	return nil
}

// Close releases the channel and connection. Later Publish calls fail.
func (p *RabbitPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	err := p.sess.close()
	p.sess = rabbitSession{}
	return err
}
