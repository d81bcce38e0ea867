package auth

import (
	"strconv"
	"time"
)

// Method identifies how a two-factor code reaches the user.
type Method string

const (
	// MethodApp derives codes from a shared TOTP secret; nothing is
	// dispatched, the authenticator app is the source of truth.
	MethodApp Method = "app"
	// MethodSMS delivers a numeric code as a text message.
	MethodSMS Method = "sms"
	// MethodCall delivers a numeric code as a voice call.
	MethodCall Method = "call"
)

// PhoneDelivered reports whether the method sends codes over the phone
// network.
func (m Method) PhoneDelivered() bool {
	return m == MethodSMS || m == MethodCall
}

// Valid reports whether the method is one of the known values.
func (m Method) Valid() bool {
	return m == MethodApp || m == MethodSMS || m == MethodCall
}

// Account is a user identity with authentication credentials and
// profile fields. A password hash and a social-provider pair may
// coexist (hybrid account); at least one of the two exists once
// registration completes.
//
// Username, once successfully set, is never altered by this core.
// TwoFactorSecret and RecoveryCodes are encrypted at rest and present
// only while two-factor is enabled.
type Account struct {
	ID          int64
	Name        string
	Username    string
	Email       string
	PhoneNumber string

	PasswordHash []byte
	Verified     bool

	TwoFactorEnabled bool
	TwoFactorMethod  Method
	TwoFactorSecret  string // encrypted
	RecoveryCodes    string // encrypted blob of remaining one-time codes

	Provider   string
	ProviderID string
	AvatarURL  string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasPassword reports whether password login is possible for the account.
func (a *Account) HasPassword() bool {
	return len(a.PasswordHash) > 0
}

// TokenKey is the opaque key binding single-use tokens to the account.
func (a *Account) TokenKey() string {
	return strconv.FormatInt(a.ID, 10)
}
