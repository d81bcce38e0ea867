package throttle

import "errors"

var (
	// ErrInvalidConfig indicates the throttle configuration is unusable.
	ErrInvalidConfig = errors.New("invalid throttle configuration")

	// ErrStoreUnavailable indicates the counter backend failed.
	ErrStoreUnavailable = errors.New("throttle store unavailable")
)
