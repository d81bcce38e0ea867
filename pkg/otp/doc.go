// Package otp issues time-boxed numeric one-time passwords delivered to
// phone numbers over SMS or voice. Codes live in a short-lived store
// keyed by phone number (default TTL 5 minutes); issuing a new code
// replaces any outstanding one for the same number.
//
// Verification consumes the code on success. Mismatches are counted and
// the code is discarded once the attempt budget is spent, so a code
// cannot be brute-forced within its lifetime.
//
// TOTP codes for authenticator apps are a different mechanism entirely
// and live in pkg/totp; nothing there is persisted.
package otp
