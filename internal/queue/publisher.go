package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Publisher delivers listing events.  Callers treat failures as
// non-fatal: the stored mutation stands whether or not the event went out.
type Publisher interface {
	Publish(ctx context.Context, ev ListingEvent) error
	Close() error
}

// NopPublisher drops every event.  It is used when RABBITMQ_URL is unset.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, ListingEvent) error { return nil }
func (NopPublisher) Close() error                               { return nil }

var (
	// ErrBufferFull is returned when the outgoing buffer has no room; the
	// event is dropped.
	ErrBufferFull = errors.New("listing event buffer full")
	// ErrPublisherClosed is returned by Publish after Close.
	ErrPublisherClosed = errors.New("listing event publisher closed")

	errDialBackoff = errors.New("rabbitmq unreachable, waiting before redial")
)

const (
	defaultBufferSize  = 256
	defaultDialTimeout = 3 * time.Second
	defaultRetryAfter  = 5 * time.Second
	sendTimeout        = 5 * time.Second
)

// PublisherOption tunes an AMQPPublisher.
type PublisherOption func(*AMQPPublisher)

// WithBufferSize sets how many events may wait for the broker.
func WithBufferSize(n int) PublisherOption {
	return func(p *AMQPPublisher) {
		if n > 0 {
			p.bufferSize = n
		}
	}
}

// WithDialTimeout bounds the TCP connect and AMQP handshake.
func WithDialTimeout(d time.Duration) PublisherOption {
	return func(p *AMQPPublisher) {
		if d > 0 {
			p.dialTimeout = d
		}
	}
}

// WithRetryAfter sets how long a failed dial blocks the next attempt.
func WithRetryAfter(d time.Duration) PublisherOption {
	return func(p *AMQPPublisher) {
		if d > 0 {
			p.retryAfter = d
		}
	}
}

// AMQPPublisher publishes events as persistent JSON messages to a durable
// topic exchange, routed by event type.  Publish only enqueues; a single
// worker goroutine owns the connection, dials lazily and re-dials after the
// broker drops it.  While the broker is unreachable events are dropped.
type AMQPPublisher struct {
	url         string
	exchange    string
	log         *zap.Logger
	bufferSize  int
	dialTimeout time.Duration
	retryAfter  time.Duration
	now         func() time.Time

	mu     sync.RWMutex // guards closed against sends on events
	closed bool
	events chan ListingEvent
	done   chan struct{}

	// owned by the worker
	conn     *amqp.Connection
	ch       *amqp.Channel
	nextDial time.Time
}

// NewAMQPPublisher starts the publishing worker.  No connection is made
// until the first event arrives.
func NewAMQPPublisher(url, exchange string, log *zap.Logger, opts ...PublisherOption) *AMQPPublisher {
	p := &AMQPPublisher{
		url:         url,
		exchange:    exchange,
		log:         log,
		bufferSize:  defaultBufferSize,
		dialTimeout: defaultDialTimeout,
		retryAfter:  defaultRetryAfter,
		now:         time.Now,
		done:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.events = make(chan ListingEvent, p.bufferSize)
	go p.run()
	return p
}

// Publish hands ev to the worker without waiting for the broker.
func (p *AMQPPublisher) Publish(ctx context.Context, ev ListingEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPublisherClosed
	}
	select {
	case p.events <- ev:
		return nil
	default:
		return ErrBufferFull
	}
}

// Close stops accepting events, lets the worker drain what is buffered and
// closes the connection.
func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.events)
	}
	p.mu.Unlock()
	<-p.done
	return nil
}

func (p *AMQPPublisher) run() {
	defer close(p.done)
	defer p.reset()
	for ev := range p.events {
		err := p.send(ev)
		switch {
		case err == nil:
			p.log.Debug("listing event published", zap.String("type", ev.Type), zap.String("car_id", ev.CarID))
		case errors.Is(err, errDialBackoff):
			p.log.Debug("listing event dropped", zap.String("type", ev.Type), zap.String("car_id", ev.CarID), zap.Error(err))
		default:
			p.log.Warn("listing event dropped", zap.String("type", ev.Type), zap.String("car_id", ev.CarID), zap.Error(err))
		}
	}
}

func (p *AMQPPublisher) send(ev ListingEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", ev.Type, err)
	}
	ch, err := p.channel()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()
	err = ch.PublishWithContext(ctx,
		p.exchange, // exchange
		ev.Type,    // routing key
		false,      // mandatory
		false,      // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    ev.OccurredAt,
			Type:         ev.Type,
			Body:         body,
		})
	if err != nil {
		p.reset()
		return fmt.Errorf("rabbitmq publish: %w", err)
	}
	return nil
}

// channel returns an open channel, dialling and declaring the exchange if
// needed.  After a failed dial it refuses to redial until retryAfter has
// passed.
func (p *AMQPPublisher) channel() (*amqp.Channel, error) {
	if p.ch != nil && !p.ch.IsClosed() && p.conn != nil && !p.conn.IsClosed() {
		return p.ch, nil
	}
	p.reset()
	if p.now().Before(p.nextDial) {
		return nil, errDialBackoff
	}

	conn, err := amqp.DialConfig(p.url, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial:      amqp.DefaultDial(p.dialTimeout),
	})
	if err != nil {
		p.nextDial = p.now().Add(p.retryAfter)
		return nil, fmt.Errorf("rabbitmq dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		p.nextDial = p.now().Add(p.retryAfter)
		return nil, fmt.Errorf("rabbitmq channel: %w", err)
	}
	// Durable so the exchange survives broker restarts.
	if err := ch.ExchangeDeclare(
		p.exchange, // name
		"topic",    // kind
		true,       // durable
		false,      // autoDelete
		false,      // internal
		false,      // noWait
		nil,        // args
	); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		p.nextDial = p.now().Add(p.retryAfter)
		return nil, fmt.Errorf("rabbitmq exchange declare: %w", err)
	}
	p.conn, p.ch = conn, ch
	return ch, nil
}

func (p *AMQPPublisher) reset() {
	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
}
