// Package mail provides a provider-agnostic interface for sending
// transactional email with built-in support for Postmark.
//
// The package is built around the Sender interface, so providers can be
// swapped without changing application code:
//   - PostmarkSender for production delivery with tracking
//   - DevSender for local development (saves messages to disk)
//
// # Usage
//
//	cfg := mail.Config{
//		PostmarkServerToken:  "server-token",
//		PostmarkAccountToken: "account-token",
//		SenderEmail:          "noreply@example.com",
//		SupportEmail:         "support@example.com",
//	}
//
//	sender, err := mail.NewPostmarkSender(cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	err = sender.Send(ctx, mail.Message{
//		To:       "user@example.com",
//		Subject:  "Verify your email address",
//		BodyHTML: html,
//		Tag:      "email-verification",
//	})
//
// Ready-made bodies for the authentication flows are produced by
// VerificationEmail, PasswordResetEmail, and PasswordChangedEmail.
package mail
