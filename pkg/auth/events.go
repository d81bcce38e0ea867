package auth

import (
	"context"
	"log/slog"
	"time"
)

// RegistrationMethod records how an account came to exist.
type RegistrationMethod string

const (
	RegistrationInternal RegistrationMethod = "internal"
	RegistrationSocial   RegistrationMethod = "social"
)

// RegistrationEvent is emitted fire-and-forget after an account is
// created. Listeners typically dispatch verification mail or provision
// downstream resources; this core never waits on them.
type RegistrationEvent struct {
	Method  RegistrationMethod
	Account *Account
}

// RegistrationListener consumes registration events.
type RegistrationListener func(ctx context.Context, event RegistrationEvent) error

// emitRegistration runs the listener in a goroutine with its own
// timeout, recovering panics so a broken listener cannot take down the
// request path.
func emitRegistration(log *slog.Logger, listener RegistrationListener, event RegistrationEvent) {
	if listener == nil {
		return
	}
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Error("registration listener panicked",
					slog.Int64("account_id", event.Account.ID),
					slog.Any("panic", r),
				)
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := listener(ctx, event); err != nil {
			log.Error("registration listener failed",
				slog.Int64("account_id", event.Account.ID),
				slog.String("method", string(event.Method)),
				slog.String("error", err.Error()),
			)
		}
	}()
}
