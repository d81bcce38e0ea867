package auth

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrymomot/authkit/pkg/mail"
	"github.com/dmitrymomot/authkit/pkg/password"
	"github.com/dmitrymomot/authkit/pkg/session"
	"github.com/dmitrymomot/authkit/pkg/throttle"
	"github.com/dmitrymomot/authkit/pkg/vtoken"
)

const (
	defaultResetTokenTTL        = 1 * time.Hour
	defaultVerificationTokenTTL = 24 * time.Hour
	defaultChallengeTokenTTL    = 10 * time.Minute
)

// BasicAuthService handles password login, registration, email
// verification, and password recovery.
type BasicAuthService struct {
	storage  Storage
	tokens   *vtoken.Service
	sessions *session.Manager
	hasher   password.Hasher
	logger   *slog.Logger

	throttle  *throttle.Throttle
	twoFactor *TwoFactorService
	mailer    mail.Sender
	baseURL   string

	resetTokenTTL        time.Duration
	verificationTokenTTL time.Duration
	challengeTokenTTL    time.Duration
	challengeTokens      bool

	onRegistration RegistrationListener
}

// BasicOption configures a BasicAuthService.
type BasicOption func(*BasicAuthService)

// WithHasher replaces the default bcrypt hasher.
func WithHasher(h password.Hasher) BasicOption {
	return func(s *BasicAuthService) {
		s.hasher = h
	}
}

// WithThrottle enables login throttling. A nil throttle leaves it off.
func WithThrottle(t *throttle.Throttle) BasicOption {
	return func(s *BasicAuthService) {
		s.throttle = t
	}
}

// WithTwoFactor wires the two-factor service used during login for
// accounts that have two-factor enabled.
func WithTwoFactor(tf *TwoFactorService) BasicOption {
	return func(s *BasicAuthService) {
		s.twoFactor = tf
	}
}

// WithMailer wires outbound mail for verification and reset links.
// baseURL is the public application URL the links are built against.
func WithMailer(sender mail.Sender, baseURL string) BasicOption {
	return func(s *BasicAuthService) {
		s.mailer = sender
		s.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithChallengeTokens switches login to the challenge-token variant:
// instead of failing with ErrOtpRequired when no OTP is supplied, login
// returns a TwoFactorRequiredError carrying a resumable token pair.
func WithChallengeTokens() BasicOption {
	return func(s *BasicAuthService) {
		s.challengeTokens = true
	}
}

// WithResetTokenTTL sets the password reset token lifetime (default 1h).
func WithResetTokenTTL(ttl time.Duration) BasicOption {
	return func(s *BasicAuthService) {
		if ttl > 0 {
			s.resetTokenTTL = ttl
		}
	}
}

// WithVerificationTokenTTL sets the email verification token lifetime
// (default 24h).
func WithVerificationTokenTTL(ttl time.Duration) BasicOption {
	return func(s *BasicAuthService) {
		if ttl > 0 {
			s.verificationTokenTTL = ttl
		}
	}
}

// WithRegistrationListener sets the fire-and-forget listener invoked
// after each successful registration.
func WithRegistrationListener(fn RegistrationListener) BasicOption {
	return func(s *BasicAuthService) {
		s.onRegistration = fn
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(log *slog.Logger) BasicOption {
	return func(s *BasicAuthService) {
		if log != nil {
			s.logger = log
		}
	}
}

// NewBasicAuthService creates the password authentication service.
func NewBasicAuthService(storage Storage, tokens *vtoken.Service, sessions *session.Manager, opts ...BasicOption) *BasicAuthService {
	s := &BasicAuthService{
		storage:              storage,
		tokens:               tokens,
		sessions:             sessions,
		hasher:               password.NewBcryptHasher(0),
		logger:               slog.New(slog.NewTextHandler(io.Discard, nil)),
		resetTokenTTL:        defaultResetTokenTTL,
		verificationTokenTTL: defaultVerificationTokenTTL,
		challengeTokenTTL:    defaultChallengeTokenTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Login authenticates by identifier (email or username) and password,
// returning an access credential on full success.
//
// The otp argument is consulted only for accounts with two-factor
// enabled: when empty, login fails with ErrOtpRequired, or, in the
// challenge-token variant, with a TwoFactorRequiredError carrying a
// resumable token pair. origin identifies the request source for
// throttling; passing an empty origin while throttling is enabled is a
// caller bug and panics.
func (s *BasicAuthService) Login(ctx context.Context, identifier, passwd, otp, origin string) (string, error) {
	throttled := s.throttle != nil && s.throttle.Enabled()
	if throttled && origin == "" {
		panic("auth: origin is required while login throttling is enabled")
	}

	var throttleKey string
	if throttled {
		throttleKey = s.throttle.Key(identifier, origin)
		blocked, err := s.throttle.IsBlocked(ctx, throttleKey)
		if err != nil {
			return "", fmt.Errorf("failed to check login throttle: %w", err)
		}
		if blocked {
			return "", ErrLoginAttemptLimitExceeded
		}
	}

	account, err := s.lookup(ctx, identifier)
	if err != nil {
		return "", ErrInvalidCredential
	}
	if !account.HasPassword() {
		return "", ErrInvalidCredential
	}

	if err := s.hasher.Verify(account.PasswordHash, passwd); err != nil {
		if throttled {
			if err := s.throttle.Increment(ctx, throttleKey); err != nil {
				s.logger.Error("failed to increment login throttle",
					slog.String("error", err.Error()))
			}
		}
		return "", ErrInvalidCredential
	}

	if account.TwoFactorEnabled {
		if otp == "" {
			if s.challengeTokens {
				return "", s.issueChallengePair(ctx, account)
			}
			return "", ErrOtpRequired
		}
		if s.twoFactor == nil {
			panic("auth: two-factor service is not configured")
		}
		if err := s.twoFactor.VerifyOtp(ctx, account, account.TwoFactorMethod, otp); err != nil {
			return "", err
		}
	}

	if throttled {
		if err := s.throttle.Reset(ctx, throttleKey); err != nil {
			s.logger.Error("failed to reset login throttle",
				slog.String("error", err.Error()))
		}
	}

	return s.sessions.Issue(account.ID)
}

// issueChallengePair creates the single-use challenge and
// challenge-verification tokens bound to the account.
func (s *BasicAuthService) issueChallengePair(ctx context.Context, account *Account) error {
	challenge, err := s.tokens.Issue(ctx, account.TokenKey(), vtoken.TypeTwoFactorChallenge,
		vtoken.WithTTL(s.challengeTokenTTL), vtoken.OneTimeOnly())
	if err != nil {
		return fmt.Errorf("failed to issue challenge token: %w", err)
	}
	verification, err := s.tokens.Issue(ctx, account.TokenKey(), vtoken.TypeTwoFactorChallengeVerification,
		vtoken.WithTTL(s.challengeTokenTTL), vtoken.OneTimeOnly())
	if err != nil {
		return fmt.Errorf("failed to issue challenge verification token: %w", err)
	}
	return &TwoFactorRequiredError{
		ChallengeToken:             challenge,
		ChallengeVerificationToken: verification,
	}
}

// RegisterParams is the validated input for internal registration.
// Input validation (formats, password strength) belongs to the caller;
// the password itself is mandatory, passwordless accounts are created
// only through the social resolver.
type RegisterParams struct {
	Name        string
	Email       string
	Username    string
	PhoneNumber string
	Password    string
}

// Register creates an account with a hashed password, emits a
// registration event, and dispatches a verification mail when a mailer
// is configured.
func (s *BasicAuthService) Register(ctx context.Context, params RegisterParams) (*Account, error) {
	if params.Password == "" {
		return nil, ErrPasswordRequired
	}
	email := normalizeEmail(params.Email)

	if taken, err := s.storage.ExistsEmail(ctx, email); err != nil {
		return nil, fmt.Errorf("failed to check email uniqueness: %w", err)
	} else if taken {
		return nil, ErrDuplicateEmail
	}
	if params.Username != "" {
		if taken, err := s.storage.ExistsUsername(ctx, params.Username); err != nil {
			return nil, fmt.Errorf("failed to check username uniqueness: %w", err)
		} else if taken {
			return nil, ErrDuplicateUsername
		}
	}

	hash, err := s.hasher.Hash(params.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	account := &Account{
		Name:         params.Name,
		Username:     params.Username,
		Email:        email,
		PhoneNumber:  params.PhoneNumber,
		PasswordHash: hash,
	}

	if err := s.storage.CreateAccount(ctx, account); err != nil {
		return nil, err
	}

	emitRegistration(s.logger, s.onRegistration, RegistrationEvent{
		Method:  RegistrationInternal,
		Account: account,
	})

	if s.mailer != nil && account.Email != "" {
		if err := s.dispatchVerificationMail(ctx, account); err != nil {
			s.logger.Error("failed to send verification mail",
				slog.Int64("account_id", account.ID),
				slog.String("error", err.Error()),
			)
		}
	}

	return account, nil
}

// VerifyEmail redeems an email verification token and marks the account
// verified. The token is consumed whether or not it matches.
func (s *BasicAuthService) VerifyEmail(ctx context.Context, accountID int64, secret string) error {
	account, err := s.storage.GetAccountByID(ctx, accountID)
	if err != nil {
		return err
	}
	if _, err := s.tokens.Verify(ctx, account.TokenKey(), vtoken.TypeEmailVerification, secret); err != nil {
		return err
	}
	return s.storage.SetVerified(ctx, account.ID, true)
}

// SendVerificationMail issues a fresh verification token for an
// unverified account and mails the link.
func (s *BasicAuthService) SendVerificationMail(ctx context.Context, email string) error {
	account, err := s.storage.GetAccountByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return err
	}
	if account.Verified {
		return ErrEmailAlreadyVerified
	}
	return s.dispatchVerificationMail(ctx, account)
}

func (s *BasicAuthService) dispatchVerificationMail(ctx context.Context, account *Account) error {
	secret, err := s.tokens.Issue(ctx, account.TokenKey(), vtoken.TypeEmailVerification,
		vtoken.WithTTL(s.verificationTokenTTL), vtoken.OneTimeOnly())
	if err != nil {
		return fmt.Errorf("failed to issue verification token: %w", err)
	}
	if s.mailer == nil {
		return nil
	}
	msg, err := mail.VerificationEmail(account.Email, s.link("/auth/verify-email", account, secret))
	if err != nil {
		return err
	}
	return s.mailer.Send(ctx, msg)
}

// ForgotPassword issues a password reset token for a verified account
// and mails the reset link. Returns false without error when the
// identifier matches no verified account, so the caller can respond
// identically either way and leak nothing.
func (s *BasicAuthService) ForgotPassword(ctx context.Context, identifier string) (bool, error) {
	account, err := s.lookup(ctx, identifier)
	if err != nil {
		return false, nil
	}
	if !account.Verified {
		return false, nil
	}

	secret, err := s.tokens.Issue(ctx, account.TokenKey(), vtoken.TypePasswordReset,
		vtoken.WithTTL(s.resetTokenTTL), vtoken.OneTimeOnly())
	if err != nil {
		return false, fmt.Errorf("failed to issue reset token: %w", err)
	}

	if s.mailer != nil && account.Email != "" {
		msg, err := mail.PasswordResetEmail(account.Email, s.link("/auth/reset-password", account, secret))
		if err != nil {
			return false, err
		}
		if err := s.mailer.Send(ctx, msg); err != nil {
			return false, err
		}
	}

	return true, nil
}

// ResetPassword redeems a password reset token and sets the new
// password. A failed redemption consumes the token; replays always fail.
func (s *BasicAuthService) ResetPassword(ctx context.Context, account *Account, secret, newPassword string) error {
	if _, err := s.tokens.Verify(ctx, account.TokenKey(), vtoken.TypePasswordReset, secret); err != nil {
		return err
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.storage.UpdatePasswordHash(ctx, account.ID, hash); err != nil {
		return err
	}
	account.PasswordHash = hash

	s.notifyPasswordChanged(ctx, account)
	return nil
}

// ChangePassword verifies the current password and sets a new one.
// Accounts without a password (pure social logins) cannot use this path.
func (s *BasicAuthService) ChangePassword(ctx context.Context, account *Account, oldPassword, newPassword string) error {
	if !account.HasPassword() {
		return ErrPasswordChangeNotAllowed
	}
	if err := s.hasher.Verify(account.PasswordHash, oldPassword); err != nil {
		return ErrInvalidCredential
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.storage.UpdatePasswordHash(ctx, account.ID, hash); err != nil {
		return err
	}
	account.PasswordHash = hash

	s.notifyPasswordChanged(ctx, account)
	return nil
}

// Logout revokes the account's outstanding single-use login tokens, so
// a pending two-factor challenge cannot be completed afterwards. Issued
// access credentials are stateless and lapse on their own expiry.
func (s *BasicAuthService) Logout(ctx context.Context, accountID int64) error {
	key := strconv.FormatInt(accountID, 10)
	if err := s.tokens.Revoke(ctx, key, vtoken.TypeTwoFactorChallenge); err != nil {
		return err
	}
	return s.tokens.Revoke(ctx, key, vtoken.TypeTwoFactorChallengeVerification)
}

func (s *BasicAuthService) notifyPasswordChanged(ctx context.Context, account *Account) {
	if s.mailer == nil || account.Email == "" {
		return
	}
	msg, err := mail.PasswordChangedEmail(account.Email)
	if err == nil {
		err = s.mailer.Send(ctx, msg)
	}
	if err != nil {
		s.logger.Error("failed to send password changed notification",
			slog.Int64("account_id", account.ID),
			slog.String("error", err.Error()),
		)
	}
}

// lookup resolves an identifier to an account: identifiers containing
// "@" are treated as emails, everything else as usernames.
func (s *BasicAuthService) lookup(ctx context.Context, identifier string) (*Account, error) {
	if strings.ContainsRune(identifier, '@') {
		return s.storage.GetAccountByEmail(ctx, normalizeEmail(identifier))
	}
	return s.storage.GetAccountByUsername(ctx, identifier)
}

func (s *BasicAuthService) link(path string, account *Account, secret string) string {
	q := url.Values{}
	q.Set("id", account.TokenKey())
	q.Set("token", secret)
	return s.baseURL + path + "?" + q.Encode()
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ErrInvalidToken re-exports vtoken's sentinel so callers that only
// import auth can classify token failures.
var ErrInvalidToken = vtoken.ErrInvalidToken
