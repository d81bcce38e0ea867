package throttle

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Config defines the failed-attempt limits. The zero-valued Enabled flag
// produces a no-op throttle.
type Config struct {
	Enabled       bool          `env:"LOGIN_THROTTLE_ENABLED" envDefault:"true"`
	MaxAttempts   int           `env:"LOGIN_THROTTLE_MAX_ATTEMPTS" envDefault:"5"`
	Window        time.Duration `env:"LOGIN_THROTTLE_WINDOW" envDefault:"2m"`
	BlockDuration time.Duration `env:"LOGIN_THROTTLE_BLOCK_DURATION" envDefault:"1h"`
	KeyTemplate   string        `env:"LOGIN_THROTTLE_KEY_TEMPLATE" envDefault:"login__{identifier}_{origin}"`
}

func (c Config) validate() error {
	if !c.Enabled {
		return nil
	}
	if c.MaxAttempts <= 0 {
		return fmt.Errorf("%w: max attempts must be positive, got %d", ErrInvalidConfig, c.MaxAttempts)
	}
	if c.Window <= 0 {
		return fmt.Errorf("%w: window must be positive, got %v", ErrInvalidConfig, c.Window)
	}
	if c.BlockDuration <= 0 {
		return fmt.Errorf("%w: block duration must be positive, got %v", ErrInvalidConfig, c.BlockDuration)
	}
	if !strings.Contains(c.KeyTemplate, "{identifier}") {
		return fmt.Errorf("%w: key template must contain {identifier}", ErrInvalidConfig)
	}
	return nil
}

// Store is the counter backend. Increment must be atomic: concurrent
// failed attempts may not lose updates.
type Store interface {
	// Increment bumps the failure counter for the key, starting a new
	// window if none is active, and returns the new count.
	Increment(ctx context.Context, key string, window time.Duration) (int, error)

	// Block marks the key blocked for the given duration.
	Block(ctx context.Context, key string, duration time.Duration) error

	// IsBlocked reports whether the key is currently blocked.
	IsBlocked(ctx context.Context, key string) (bool, error)

	// Reset clears the counter and any block for the key.
	Reset(ctx context.Context, key string) error
}

// Throttle applies the failed-login policy on top of a Store.
type Throttle struct {
	cfg   Config
	store Store
}

// New creates a throttle. A disabled config yields a throttle whose
// methods are all no-ops; the store may be nil in that case.
func New(store Store, cfg Config) (*Throttle, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.Enabled && store == nil {
		return nil, fmt.Errorf("%w: store is required when throttling is enabled", ErrInvalidConfig)
	}
	return &Throttle{cfg: cfg, store: store}, nil
}

// Enabled reports whether throttling is active for this deployment.
func (t *Throttle) Enabled() bool {
	return t.cfg.Enabled
}

// Key derives the throttle key from the configured template.
func (t *Throttle) Key(identifier, origin string) string {
	key := strings.ReplaceAll(t.cfg.KeyTemplate, "{identifier}", identifier)
	return strings.ReplaceAll(key, "{origin}", origin)
}

// IsBlocked reports whether the key is in its cool-down period.
func (t *Throttle) IsBlocked(ctx context.Context, key string) (bool, error) {
	if !t.cfg.Enabled {
		return false, nil
	}
	return t.store.IsBlocked(ctx, key)
}

// Increment records a failed attempt and applies the block once the
// threshold is reached.
func (t *Throttle) Increment(ctx context.Context, key string) error {
	if !t.cfg.Enabled {
		return nil
	}
	count, err := t.store.Increment(ctx, key, t.cfg.Window)
	if err != nil {
		return err
	}
	if count >= t.cfg.MaxAttempts {
		return t.store.Block(ctx, key, t.cfg.BlockDuration)
	}
	return nil
}

// Reset clears the counter after a successful login.
func (t *Throttle) Reset(ctx context.Context, key string) error {
	if !t.cfg.Enabled {
		return nil
	}
	return t.store.Reset(ctx, key)
}
