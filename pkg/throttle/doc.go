// Package throttle rate-limits failed login attempts per identity and
// origin. It counts failures inside a rolling window and, once the
// configured threshold is reached, blocks the key for a cool-down period
// so further attempts fail fast without touching the password hasher.
//
// The throttle key is derived from a template substituting the login
// identifier and the request origin, e.g.
//
//	login__{identifier}_{origin}  ->  login__u@x.com_198.51.100.7
//
// A successful login resets the counter to zero.
//
// Throttling is optional per deployment: a Throttle built from a disabled
// Config turns every check into a no-op and callers may pass an empty
// origin.
//
// Stores implement the atomic counter contract: MemoryStore for tests and
// single-process deployments, RedisStore for shared deployments.
package throttle
