package notification

import (
	"context"

	"github.com/fekuna/omnipos-order-service/pkg/logger"
	"go.uber.org/zap"
)

type SMSSender interface {
	SendSMS(ctx context.Context, to, body string) error
}

type EmailSender interface {
	SendEmail(ctx context.Context, to []string, subject, body string) error
}

// LogSender delivers by writing to the log. It satisfies both sender interfaces.
type LogSender struct {
	logger logger.ZapLogger
}

func NewLogSender(log logger.ZapLogger) *LogSender {
	return &LogSender{logger: log}
}

func (s *LogSender) SendSMS(_ context.Context, to, body string) error {
	s.logger.Info("sms sent", zap.String("to", to), zap.String("body", body))
	return nil
}

func (s *LogSender) SendEmail(_ context.Context, to []string, subject, body string) error {
	s.logger.Info("email sent", zap.Strings("to", to), zap.String("subject", subject), zap.String("body", body))
	return nil
}
