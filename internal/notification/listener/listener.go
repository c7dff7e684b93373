package listener

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/fekuna/omnipos-order-service/internal/apperror"
	"github.com/fekuna/omnipos-order-service/internal/customer"
	"github.com/fekuna/omnipos-order-service/internal/notification"
	"github.com/fekuna/omnipos-order-service/internal/order"
	"github.com/fekuna/omnipos-order-service/internal/order/publisher"
	"github.com/fekuna/omnipos-order-service/pkg/logger"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageReader is satisfied by *broker.KafkaConsumer.
type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

// Notifier is satisfied by *notification.Dispatcher.
type Notifier interface {
	Notify(ctx context.Context, r notification.Recipient, template notification.Template, data notification.Data)
}

var templates = map[order.EventType]notification.Template{
	order.EventOrderPlaced:    notification.TemplateOrderPlaced,
	order.EventOrderApproved:  notification.TemplateOrderApproved,
	order.EventOrderCancelled: notification.TemplateOrderCancelled,
}

type NotificationListener struct {
	consumer  MessageReader
	customers customer.UseCase
	notifier  Notifier
	logger    logger.ZapLogger
}

func NewNotificationListener(consumer MessageReader, customers customer.UseCase, notifier Notifier, logger logger.ZapLogger) *NotificationListener {
	return &NotificationListener{
		consumer:  consumer,
		customers: customers,
		notifier:  notifier,
		logger:    logger,
	}
}

// Start consumes order events until ctx is done.
func (l *NotificationListener) Start(ctx context.Context) {
	l.logger.Info("Starting notification listener")
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("Stopping notification listener")
			return
		default:
			msg, err := l.consumer.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				l.logger.Error("Failed to read kafka message", zap.Error(err))
				select {
				case <-ctx.Done():
					return
				case <-time.After(time.Second):
				}
				continue
			}
			l.HandleMessage(ctx, msg.Value)
		}
	}
}

// HandleMessage notifies the customer of one encoded order event. Malformed or
// unrecognised messages are logged and skipped.
func (l *NotificationListener) HandleMessage(ctx context.Context, value []byte) {
	var event order.Event
	if err := json.Unmarshal(value, &event); err != nil {
		l.logger.Error("Failed to unmarshal order event", zap.Error(err))
		return
	}

	template, ok := templates[event.Type]
	if !ok {
		l.logger.Debug("Ignoring event", zap.String("event_type", string(event.Type)))
		return
	}
	if event.CustomerID == "" {
		l.logger.Warn("Order event without customer", zap.String("event_id", event.ID), zap.String("order_id", event.OrderID))
		return
	}

	recipient := notification.Recipient{UserID: event.CustomerID}
	data := notification.Data{OrderID: event.OrderID}

	c, err := l.customers.GetProfile(ctx, event.CustomerID)
	switch {
	case err == nil:
		data.CustomerName = c.DisplayName()
		if c.PhoneNumber != nil {
			recipient.PhoneNumber = *c.PhoneNumber
		}
		if c.Email != "" {
			recipient.Emails = []string{c.Email}
		}
	case errors.Is(err, apperror.ErrNotFound):
		l.logger.Warn("Customer not found for order event", zap.String("customer_id", event.CustomerID))
	default:
		l.logger.Error("Failed to resolve customer", zap.String("customer_id", event.CustomerID), zap.Error(err))
		return
	}

	l.logger.Info("Processing order event",
		zap.String("event_type", string(event.Type)),
		zap.String("order_id", event.OrderID),
	)
	l.notifier.Notify(ctx, recipient, template, data)
}

var _ publisher.Sink = DirectSink{}

// DirectSink hands emitted events straight to a listener, for deployments without a
// broker.
type DirectSink struct {
	Listener *NotificationListener
}

func (s DirectSink) Publish(ctx context.Context, _, value []byte, _ map[string]string) error {
	s.Listener.HandleMessage(ctx, value)
	return nil
}
