package auth

import "errors"

// Credential and login errors
var (
	// ErrInvalidCredential covers a missing account, a wrong password,
	// and a recovery lookup miss. Intentionally ambiguous to prevent
	// account enumeration.
	ErrInvalidCredential = errors.New("invalid credentials")

	ErrLoginAttemptLimitExceeded = errors.New("login attempt limit exceeded")
	ErrPasswordChangeNotAllowed  = errors.New("password change not allowed for this account")

	// ErrPasswordRequired rejects internal registration without a
	// password: the password is the account's only authentication path
	// until a social identity is linked.
	ErrPasswordRequired = errors.New("password is required")
)

// Two-factor errors
var (
	// ErrOtpRequired signals that two-factor is enabled and no code was
	// supplied with the login attempt.
	ErrOtpRequired = errors.New("one-time password required")

	ErrInvalidOtp            = errors.New("invalid one-time password")
	ErrPhoneNumberRequired   = errors.New("phone number required for this two-factor method")
	ErrTwoFactorNotEnabled   = errors.New("two-factor authentication is not enabled")
	ErrTwoFactorMethodNotSet = errors.New("two-factor method is not configured")
	ErrUnsupportedMethod     = errors.New("unsupported two-factor method")
)

// Social registration errors
var (
	ErrEmailRequired    = errors.New("email is required")
	ErrUsernameRequired = errors.New("username is required")

	ErrDuplicateEmail    = errors.New("email already taken")
	ErrDuplicateUsername = errors.New("username already taken")
	// ErrDuplicateEmailAndUsername is used only when both fields collide
	// in the same upsert, so the caller can surface both conflicts at
	// once instead of two sequential single-field errors.
	ErrDuplicateEmailAndUsername = errors.New("email and username already taken")
)

// Account and storage errors
var (
	ErrAccountNotFound      = errors.New("account not found")
	ErrEmailAlreadyVerified = errors.New("email already verified")

	// ErrRecoveryCodesConflict is returned by storage when a
	// compare-and-swap update of the recovery code set lost a race.
	ErrRecoveryCodesConflict = errors.New("recovery codes changed concurrently")
)

// ErrTwoFactorRequired is the sentinel wrapped by TwoFactorRequiredError.
var ErrTwoFactorRequired = errors.New("two-factor authentication required")

// TwoFactorRequiredError is returned by Login in the challenge-token
// variant: instead of requiring an inline OTP, the login yields a
// resumable pair of single-use tokens. The challenge token triggers OTP
// dispatch; the verification token, paired with the OTP, completes the
// login.
type TwoFactorRequiredError struct {
	ChallengeToken             string
	ChallengeVerificationToken string
}

func (e *TwoFactorRequiredError) Error() string {
	return ErrTwoFactorRequired.Error()
}

func (e *TwoFactorRequiredError) Unwrap() error {
	return ErrTwoFactorRequired
}
