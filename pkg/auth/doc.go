// Package auth implements the authentication and identity-linking core:
// password login with brute-force throttling, registration with email
// verification, password reset, a full two-factor state machine
// (enable/disable/change method, OTP delivery, TOTP verification,
// recovery codes), and a social-identity resolver that merges
// third-party login data into local accounts.
//
// The package is a library boundary, not a service boundary: HTTP
// routing, request validation, and delivery transport live outside.
// Behavior is grouped into three stateless services operating on the
// Account entity:
//
//   - BasicAuthService: login, registration, email verification,
//     forgot/reset/change password.
//   - TwoFactorService: 2FA lifecycle, challenges, OTP and recovery
//     code verification, enrollment QR codes.
//   - SocialAuthService: upsert of accounts from external identities
//     with atomic uniqueness conflict resolution and username
//     generation.
//
// All collaborators (storage, token service, throttle, hasher,
// encryptor, mail and SMS delivery, session issuance) are explicit
// constructor dependencies, substitutable in tests.
//
// # Usage
//
//	basic := auth.NewBasicAuthService(storage, tokens, sessions,
//		auth.WithThrottle(loginThrottle),
//		auth.WithTwoFactor(twoFactor),
//		auth.WithMailer(sender, "https://app.example.com"),
//	)
//
//	credential, err := basic.Login(ctx, email, password, "", clientIP)
//	switch {
//	case errors.Is(err, auth.ErrOtpRequired):
//		// prompt for the one-time password and retry
//	case errors.Is(err, auth.ErrInvalidCredential):
//		// bad identifier or password, indistinguishable on purpose
//	}
//
// Domain failures are sentinel errors; see errors.go for the full
// taxonomy. Contract violations by the caller (for example a missing
// origin while throttling is enabled) panic instead of returning an
// error.
package auth
