package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/dmitrymomot/authkit/pkg/otp"
	"github.com/dmitrymomot/authkit/pkg/qrcode"
	"github.com/dmitrymomot/authkit/pkg/secrets"
	"github.com/dmitrymomot/authkit/pkg/session"
	"github.com/dmitrymomot/authkit/pkg/sms"
	"github.com/dmitrymomot/authkit/pkg/totp"
	"github.com/dmitrymomot/authkit/pkg/vtoken"
)

// TwoFactorService drives the two-factor lifecycle: enable, disable,
// method changes, challenges, OTP and recovery-code verification, and
// the challenge-token login variant.
//
// TOTP secrets and recovery code sets are encrypted at rest with the
// injected encryptor and exist only while two-factor is enabled.
type TwoFactorService struct {
	storage   Storage
	encryptor secrets.Encryptor
	sessions  *session.Manager
	logger    *slog.Logger

	otp    *otp.Service
	sms    sms.Sender
	tokens *vtoken.Service

	issuer        string
	recoveryCount int
	qrSize        int
}

// TwoFactorOption configures a TwoFactorService.
type TwoFactorOption func(*TwoFactorService)

// WithOTPService wires the phone OTP issuer used by sms/call methods.
func WithOTPService(svc *otp.Service) TwoFactorOption {
	return func(s *TwoFactorService) {
		s.otp = svc
	}
}

// WithSMSSender wires the delivery channel for phone-based codes.
func WithSMSSender(sender sms.Sender) TwoFactorOption {
	return func(s *TwoFactorService) {
		s.sms = sender
	}
}

// WithChallengeTokenService wires the token service backing the
// challenge-token login variant.
func WithChallengeTokenService(svc *vtoken.Service) TwoFactorOption {
	return func(s *TwoFactorService) {
		s.tokens = svc
	}
}

// WithIssuer sets the issuer label shown in authenticator apps.
func WithIssuer(issuer string) TwoFactorOption {
	return func(s *TwoFactorService) {
		if issuer != "" {
			s.issuer = issuer
		}
	}
}

// WithRecoveryCodeCount sets how many recovery codes a set holds
// (default 10).
func WithRecoveryCodeCount(n int) TwoFactorOption {
	return func(s *TwoFactorService) {
		if n > 0 {
			s.recoveryCount = n
		}
	}
}

// WithTwoFactorLogger sets a custom logger for the service.
func WithTwoFactorLogger(log *slog.Logger) TwoFactorOption {
	return func(s *TwoFactorService) {
		if log != nil {
			s.logger = log
		}
	}
}

// NewTwoFactorService creates the two-factor service.
func NewTwoFactorService(storage Storage, encryptor secrets.Encryptor, sessions *session.Manager, opts ...TwoFactorOption) *TwoFactorService {
	s := &TwoFactorService{
		storage:       storage,
		encryptor:     encryptor,
		sessions:      sessions,
		logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
		issuer:        "authkit",
		recoveryCount: totp.DefaultRecoveryCodeCount,
		qrSize:        256,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Enable turns two-factor on for the account with the given method:
// a fresh TOTP secret is generated and stored encrypted, and an initial
// recovery code set is created. The raw recovery codes are returned
// exactly once and are never retrievable in plaintext again.
func (s *TwoFactorService) Enable(ctx context.Context, account *Account, method Method) ([]string, error) {
	if !method.Valid() {
		return nil, ErrUnsupportedMethod
	}
	if method.PhoneDelivered() && account.PhoneNumber == "" {
		return nil, ErrPhoneNumberRequired
	}

	secret, err := totp.SecretKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate two-factor secret: %w", err)
	}
	encSecret, err := s.encryptor.EncryptString(secret)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt two-factor secret: %w", err)
	}

	if err := s.storage.UpdateTwoFactor(ctx, account.ID, true, method, encSecret); err != nil {
		return nil, err
	}
	account.TwoFactorEnabled = true
	account.TwoFactorMethod = method
	account.TwoFactorSecret = encSecret

	return s.rotateRecoveryCodes(ctx, account, s.recoveryCount)
}

// Disable turns two-factor off, clearing the secret, method, and
// recovery codes.
func (s *TwoFactorService) Disable(ctx context.Context, account *Account) error {
	if !account.TwoFactorEnabled {
		return ErrTwoFactorNotEnabled
	}

	if err := s.storage.UpdateTwoFactor(ctx, account.ID, false, "", ""); err != nil {
		return err
	}

	// The caller's copy of the blob may be stale when a recovery code
	// was redeemed after the account was loaded; re-read and retry the
	// clear until it lands.
	expected := account.RecoveryCodes
	for {
		err := s.storage.UpdateRecoveryCodes(ctx, account.ID, expected, "")
		if err == nil {
			break
		}
		if !errors.Is(err, ErrRecoveryCodesConflict) {
			return err
		}
		fresh, err := s.storage.GetAccountByID(ctx, account.ID)
		if err != nil {
			return err
		}
		expected = fresh.RecoveryCodes
	}

	account.TwoFactorEnabled = false
	account.TwoFactorMethod = ""
	account.TwoFactorSecret = ""
	account.RecoveryCodes = ""
	return nil
}

// ChangeMethod switches the verification method for an account that
// already has two-factor enabled. The secret is always rotated on a
// method change; any previously enrolled authenticator app stops
// working.
func (s *TwoFactorService) ChangeMethod(ctx context.Context, account *Account, method Method) error {
	if !account.TwoFactorEnabled {
		return ErrTwoFactorNotEnabled
	}
	if !method.Valid() {
		return ErrUnsupportedMethod
	}
	if method.PhoneDelivered() && account.PhoneNumber == "" {
		return ErrPhoneNumberRequired
	}

	secret, err := totp.SecretKey()
	if err != nil {
		return fmt.Errorf("failed to generate two-factor secret: %w", err)
	}
	encSecret, err := s.encryptor.EncryptString(secret)
	if err != nil {
		return fmt.Errorf("failed to encrypt two-factor secret: %w", err)
	}

	if err := s.storage.UpdateTwoFactor(ctx, account.ID, true, method, encSecret); err != nil {
		return err
	}
	account.TwoFactorMethod = method
	account.TwoFactorSecret = encSecret
	return nil
}

// Challenge prepares the account's second factor. For phone-delivered
// methods a time-boxed numeric code is issued and dispatched as a text
// or voice call; for the app method nothing happens, the authenticator
// app is the source of truth.
func (s *TwoFactorService) Challenge(ctx context.Context, account *Account) error {
	if !account.TwoFactorEnabled {
		return ErrTwoFactorNotEnabled
	}

	switch account.TwoFactorMethod {
	case MethodApp:
		return nil
	case MethodSMS, MethodCall:
		if account.PhoneNumber == "" {
			return ErrPhoneNumberRequired
		}
		if s.otp == nil || s.sms == nil {
			panic("auth: phone OTP delivery is not configured")
		}
		code, err := s.otp.Issue(ctx, account.PhoneNumber)
		if err != nil {
			return fmt.Errorf("failed to issue phone code: %w", err)
		}
		if account.TwoFactorMethod == MethodCall {
			return s.sms.Call(ctx, account.PhoneNumber, sms.OTPMessage(code))
		}
		return s.sms.SendSMS(ctx, account.PhoneNumber, sms.OTPMessage(code))
	case "":
		return ErrTwoFactorMethodNotSet
	default:
		return ErrUnsupportedMethod
	}
}

// SendOtp dispatches a phone code for the account's configured method.
// Fails with ErrTwoFactorMethodNotSet when no method is configured.
func (s *TwoFactorService) SendOtp(ctx context.Context, account *Account) error {
	if account.TwoFactorMethod == "" {
		return ErrTwoFactorMethodNotSet
	}
	return s.Challenge(ctx, account)
}

// VerifyOtp checks a one-time password against the given method. Phone
// codes are checked (and consumed) in the ephemeral store; app codes
// are recomputed from the stored TOTP secret with adjacent-window
// tolerance for clock skew.
func (s *TwoFactorService) VerifyOtp(ctx context.Context, account *Account, method Method, code string) error {
	switch method {
	case MethodApp:
		secret, err := s.encryptor.DecryptString(account.TwoFactorSecret)
		if err != nil {
			return fmt.Errorf("failed to decrypt two-factor secret: %w", err)
		}
		ok, err := totp.Validate(secret, code)
		if err != nil || !ok {
			return ErrInvalidOtp
		}
		return nil
	case MethodSMS, MethodCall:
		if s.otp == nil {
			panic("auth: phone OTP service is not configured")
		}
		if err := s.otp.Verify(ctx, account.PhoneNumber, code); err != nil {
			if errors.Is(err, otp.ErrInvalidCode) {
				return ErrInvalidOtp
			}
			return err
		}
		return nil
	case "":
		return ErrTwoFactorMethodNotSet
	default:
		return ErrUnsupportedMethod
	}
}

// GenerateRecoveryCodes replaces the account's recovery code set with
// count fresh codes (default 10) and returns the raw codes once.
func (s *TwoFactorService) GenerateRecoveryCodes(ctx context.Context, account *Account, count int) ([]string, error) {
	if !account.TwoFactorEnabled {
		return nil, ErrTwoFactorNotEnabled
	}
	if count <= 0 {
		count = s.recoveryCount
	}
	return s.rotateRecoveryCodes(ctx, account, count)
}

func (s *TwoFactorService) rotateRecoveryCodes(ctx context.Context, account *Account, count int) ([]string, error) {
	codes, err := totp.GenerateRecoveryCodes(count)
	if err != nil {
		return nil, fmt.Errorf("failed to generate recovery codes: %w", err)
	}
	blob, err := totp.EncodeCodes(codes)
	if err != nil {
		return nil, fmt.Errorf("failed to encode recovery codes: %w", err)
	}
	encBlob, err := s.encryptor.EncryptString(blob)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt recovery codes: %w", err)
	}

	if err := s.storage.UpdateRecoveryCodes(ctx, account.ID, account.RecoveryCodes, encBlob); err != nil {
		return nil, err
	}
	account.RecoveryCodes = encBlob
	return codes, nil
}

// Recover redeems a recovery code for a fresh access credential. The
// matched code is removed from the set under a compare-and-swap, so two
// concurrent redemptions of the same code cannot both succeed. Lookup
// misses and code mismatches are indistinguishable to the caller.
func (s *TwoFactorService) Recover(ctx context.Context, email, code string) (string, error) {
	account, err := s.storage.GetAccountByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return "", ErrInvalidCredential
	}
	if !account.TwoFactorEnabled || account.RecoveryCodes == "" {
		return "", ErrInvalidOtp
	}

	blob, err := s.encryptor.DecryptString(account.RecoveryCodes)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt recovery codes: %w", err)
	}
	codes, err := totp.DecodeCodes(blob)
	if err != nil {
		return "", fmt.Errorf("failed to decode recovery codes: %w", err)
	}

	remaining, ok := totp.ConsumeCode(codes, code)
	if !ok {
		return "", ErrInvalidOtp
	}

	newBlob, err := totp.EncodeCodes(remaining)
	if err != nil {
		return "", fmt.Errorf("failed to encode recovery codes: %w", err)
	}
	encBlob, err := s.encryptor.EncryptString(newBlob)
	if err != nil {
		return "", fmt.Errorf("failed to encrypt recovery codes: %w", err)
	}

	if err := s.storage.UpdateRecoveryCodes(ctx, account.ID, account.RecoveryCodes, encBlob); err != nil {
		if errors.Is(err, ErrRecoveryCodesConflict) {
			// Lost the race; the code may already be spent.
			return "", ErrInvalidOtp
		}
		return "", err
	}

	return s.sessions.Issue(account.ID)
}

// RequestChallenge redeems a single-use challenge token (issued by the
// challenge-token login variant) and triggers OTP dispatch.
func (s *TwoFactorService) RequestChallenge(ctx context.Context, email, challengeToken string) error {
	if s.tokens == nil {
		panic("auth: challenge token service is not configured")
	}
	account, err := s.storage.GetAccountByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return ErrInvalidCredential
	}
	if _, err := s.tokens.Verify(ctx, account.TokenKey(), vtoken.TypeTwoFactorChallenge, challengeToken); err != nil {
		return err
	}
	return s.Challenge(ctx, account)
}

// VerifyChallenge redeems the challenge-verification token together
// with the OTP and completes the login with a fresh access credential.
func (s *TwoFactorService) VerifyChallenge(ctx context.Context, email, verificationToken, code string) (string, error) {
	if s.tokens == nil {
		panic("auth: challenge token service is not configured")
	}
	account, err := s.storage.GetAccountByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return "", ErrInvalidCredential
	}
	if _, err := s.tokens.Verify(ctx, account.TokenKey(), vtoken.TypeTwoFactorChallengeVerification, verificationToken); err != nil {
		return "", err
	}
	if err := s.VerifyOtp(ctx, account, account.TwoFactorMethod, code); err != nil {
		return "", err
	}
	return s.sessions.Issue(account.ID)
}

// EnrollmentURI returns the otpauth:// URI for the account's TOTP
// secret, for manual entry or QR rendering in authenticator apps.
func (s *TwoFactorService) EnrollmentURI(account *Account) (string, error) {
	if !account.TwoFactorEnabled || account.TwoFactorSecret == "" {
		return "", ErrTwoFactorNotEnabled
	}
	secret, err := s.encryptor.DecryptString(account.TwoFactorSecret)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt two-factor secret: %w", err)
	}

	accountName := account.Email
	if accountName == "" {
		accountName = account.Username
	}
	return totp.KeyURI(totp.KeyParams{
		Secret:      secret,
		AccountName: accountName,
		Issuer:      s.issuer,
	})
}

// EnrollmentQRCode renders the enrollment URI as a PNG QR code.
func (s *TwoFactorService) EnrollmentQRCode(account *Account) ([]byte, error) {
	uri, err := s.EnrollmentURI(account)
	if err != nil {
		return nil, err
	}
	return qrcode.Generate(uri, s.qrSize)
}
