// Package totp implements RFC 6238 time-based one-time passwords and the
// single-use recovery codes that back up two-factor authentication.
//
// Secrets are Base32-encoded 160-bit values compatible with standard
// authenticator apps. Validation accepts the previous, current, and next
// 30-second window to tolerate clock drift.
//
// Recovery codes are generated as 16-character hexadecimal strings and
// stored as an ordered set encoded with EncodeCodes. ConsumeCode removes
// exactly one matching code, which is how single-use semantics are
// enforced by callers holding the decoded set.
//
// The package deliberately keeps no state: encryption of secrets at rest
// belongs to pkg/secrets, persistence to the caller.
package totp
