package sms

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
)

// ErrDeliveryFailed wraps provider failures.
var ErrDeliveryFailed = errors.New("sms delivery failed")

// Sender delivers one-time passwords to a phone number.
type Sender interface {
	// SendSMS delivers the message as a text.
	SendSMS(ctx context.Context, phone, message string) error

	// Call delivers the message as a voice call.
	Call(ctx context.Context, phone, message string) error
}

// DevSender logs outbound messages instead of delivering them.
type DevSender struct {
	log *slog.Logger
}

// NewDevSender creates a development sender. A nil logger discards output.
func NewDevSender(log *slog.Logger) *DevSender {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &DevSender{log: log}
}

func (d *DevSender) SendSMS(ctx context.Context, phone, message string) error {
	d.log.InfoContext(ctx, "sms (dev)", slog.String("phone", phone), slog.String("message", message))
	return nil
}

func (d *DevSender) Call(ctx context.Context, phone, message string) error {
	d.log.InfoContext(ctx, "call (dev)", slog.String("phone", phone), slog.String("message", message))
	return nil
}

// OTPMessage formats the standard one-time password message body.
func OTPMessage(code string) string {
	return fmt.Sprintf("Your verification code is %s. It expires in a few minutes.", code)
}
