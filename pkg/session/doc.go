// Package session issues and validates signed access credentials for
// authenticated accounts.
//
// A credential is an HS256-signed JWT carrying the account ID as the
// subject claim plus a unique token ID. The package does not track
// server-side session state; revocation, where needed, belongs to the
// caller.
//
// # Usage
//
//	mgr, err := session.NewManager(session.Config{
//		SigningKey: os.Getenv("SESSION_SIGNING_KEY"),
//		TTL:        24 * time.Hour,
//		Issuer:     "authkit",
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	token, err := mgr.Issue(account.ID)
//	// ... later ...
//	accountID, err := mgr.Parse(token)
//
// Parse returns ErrInvalidSession for malformed, tampered, or expired
// credentials.
package session
