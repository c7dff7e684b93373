// Package notification delivers best-effort order messages to customers. Delivery never
// fails the caller: transport errors are logged and the message is lost.
package notification

import (
	"context"
	"errors"
	"time"

	"github.com/fekuna/omnipos-order-service/internal/metrics"
	"github.com/fekuna/omnipos-order-service/internal/model"
	"github.com/fekuna/omnipos-order-service/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var errNoContact = errors.New("recipient has neither a phone number nor an email address")

// Recipient is either a customer reached by SMS or a group reached by email.
type Recipient struct {
	UserID      string
	PhoneNumber string
	Emails      []string
}

type Dispatcher struct {
	templates *Registry
	sms       SMSSender
	email     EmailSender
	repo      Repository
	metrics   *metrics.Metrics
	logger    logger.ZapLogger
}

func NewDispatcher(templates *Registry, sms SMSSender, email EmailSender, repo Repository, m *metrics.Metrics, log logger.ZapLogger) *Dispatcher {
	return &Dispatcher{
		templates: templates,
		sms:       sms,
		email:     email,
		repo:      repo,
		metrics:   m,
		logger:    log,
	}
}

// Notify renders template and sends it by SMS when the recipient has a phone number,
// otherwise by email. A Notification is recorded only after a successful send.
func (d *Dispatcher) Notify(ctx context.Context, r Recipient, template Template, data Data) {
	body := d.templates.Render(template, data)

	channel := model.ChannelEmail
	var err error
	switch {
	case r.PhoneNumber != "":
		channel = model.ChannelSMS
		err = d.sms.SendSMS(ctx, r.PhoneNumber, body)
	case len(r.Emails) > 0:
		err = d.email.SendEmail(ctx, r.Emails, d.templates.Subject(data), body)
	default:
		err = errNoContact
	}
	d.metrics.ObserveNotification(string(channel), err)

	log := d.logger.With(
		zap.String("user_id", r.UserID),
		zap.String("template", string(template)),
		zap.String("channel", string(channel)),
	)
	if err != nil {
		log.Error("failed to deliver notification", zap.Error(err))
		return
	}

	n := &model.Notification{
		ID:        uuid.New().String(),
		UserID:    r.UserID,
		Channel:   channel,
		Message:   body,
		CreatedAt: time.Now().UTC(),
	}
	if err := d.repo.Create(ctx, n); err != nil {
		log.Error("failed to record notification", zap.Error(err))
		return
	}
	log.Info("notification delivered", zap.String("notification_id", n.ID))
}
