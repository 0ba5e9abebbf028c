// Package sms defines the outbound SMS collaborator. The gradebook echoes
// verification codes back in the API response for now, so the sender is a
// side channel: a real provider can be plugged in without touching the auth
// flow.
package sms

import (
	"context"

	"go.uber.org/zap"
)

// Message is a single outbound SMS.
type Message struct {
	Phone string
	Text  string
}

// Sender delivers messages through some SMS provider.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// LogSender is the development stand-in: it logs instead of sending.
type LogSender struct {
	logger *zap.Logger
}

// NewLogSender builds a LogSender.
func NewLogSender(logger *zap.Logger) *LogSender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSender{logger: logger}
}

// Send logs the message and reports success.
func (s *LogSender) Send(_ context.Context, msg Message) error {
	s.logger.Info("sms dispatched",
		zap.String("phone", msg.Phone),
		zap.Int("text_len", len(msg.Text)),
	)
	return nil
}
