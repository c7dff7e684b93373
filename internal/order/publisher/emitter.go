// Package publisher delivers committed order events to the message broker.
package publisher

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/fekuna/omnipos-order-service/internal/metrics"
	"github.com/fekuna/omnipos-order-service/internal/order"
	"github.com/fekuna/omnipos-order-service/pkg/logger"
	"go.uber.org/zap"
)

// Sink is the transport an Emitter writes to. *broker.KafkaProducer implements it.
type Sink interface {
	Publish(ctx context.Context, key, value []byte, headers map[string]string) error
}

var _ order.Publisher = (*Emitter)(nil)

// Emitter queues events in a bounded buffer drained by one goroutine. Publish never
// blocks: when the buffer is full the event is dropped and logged.
type Emitter struct {
	sink        Sink
	queue       chan order.Event
	sendTimeout time.Duration
	metrics     *metrics.Metrics
	logger      logger.ZapLogger

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

func NewEmitter(sink Sink, size int, sendTimeout time.Duration, m *metrics.Metrics, log logger.ZapLogger) *Emitter {
	if size <= 0 {
		size = 1
	}
	if sendTimeout <= 0 {
		sendTimeout = 5 * time.Second
	}
	e := &Emitter{
		sink:        sink,
		queue:       make(chan order.Event, size),
		sendTimeout: sendTimeout,
		metrics:     m,
		logger:      log,
		done:        make(chan struct{}),
	}
	go e.run()
	return e
}

func (e *Emitter) Publish(_ context.Context, event order.Event) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.closed {
		e.drop(event, "emitter closed")
		return
	}
	select {
	case e.queue <- event:
	default:
		e.drop(event, "queue full")
	}
}

// Close stops accepting events and waits until the queue is drained or ctx ends.
func (e *Emitter) Close(ctx context.Context) error {
	e.mu.Lock()
	if !e.closed {
		e.closed = true
		close(e.queue)
	}
	e.mu.Unlock()

	select {
	case <-e.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (e *Emitter) run() {
	defer close(e.done)
	for event := range e.queue {
		e.send(event)
	}
}

func (e *Emitter) send(event order.Event) {
	value, err := json.Marshal(event)
	if err != nil {
		e.logger.Error("failed to encode order event", zap.String("event_id", event.ID), zap.Error(err))
		e.metrics.ObservePublish(string(event.Type), err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), e.sendTimeout)
	defer cancel()

	err = e.sink.Publish(ctx, []byte(event.OrderID), value, map[string]string{
		"event_type": string(event.Type),
		"event_id":   event.ID,
	})
	e.metrics.ObservePublish(string(event.Type), err)
	if err != nil {
		e.logger.Error("failed to publish order event",
			zap.String("event_id", event.ID),
			zap.String("event_type", string(event.Type)),
			zap.String("order_id", event.OrderID),
			zap.Error(err),
		)
		return
	}
	e.logger.Debug("order event published", zap.String("event_type", string(event.Type)), zap.String("order_id", event.OrderID))
}

func (e *Emitter) drop(event order.Event, reason string) {
	e.metrics.ObserveDrop()
	e.logger.Warn("order event dropped",
		zap.String("reason", reason),
		zap.String("event_type", string(event.Type)),
		zap.String("order_id", event.OrderID),
	)
}
