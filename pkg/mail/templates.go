package mail

import (
	"fmt"
	"html/template"
	"strings"
)

// Tags attached to the authentication flow messages, useful for
// provider-side analytics and for filtering in tests.
const (
	TagEmailVerification = "email-verification"
	TagPasswordReset     = "password-reset"
	TagPasswordChanged   = "password-changed"
)

var baseTmpl = template.Must(template.New("base").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: sans-serif; max-width: 560px; margin: 0 auto; padding: 24px;">
	<h2>{{.Title}}</h2>
	<p>{{.Intro}}</p>
	{{if .ActionURL}}<p style="margin: 32px 0;">
		<a href="{{.ActionURL}}" style="background: #111; color: #fff; padding: 12px 24px; text-decoration: none; border-radius: 6px;">{{.ActionLabel}}</a>
	</p>
	<p style="color: #666; font-size: 13px;">Or copy this link into your browser: {{.ActionURL}}</p>{{end}}
	<p style="color: #666; font-size: 13px;">{{.Outro}}</p>
</body>
</html>`))

type templateData struct {
	Title       string
	Intro       string
	ActionURL   string
	ActionLabel string
	Outro       string
}

func render(data templateData) (string, error) {
	var sb strings.Builder
	if err := baseTmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("failed to render mail template: %w", err)
	}
	return sb.String(), nil
}

// VerificationEmail builds the message sent to confirm ownership of an
// email address. verifyURL must embed the verification secret.
func VerificationEmail(to, verifyURL string) (Message, error) {
	body, err := render(templateData{
		Title:       "Verify your email address",
		Intro:       "Confirm this email address to finish setting up your account.",
		ActionURL:   verifyURL,
		ActionLabel: "Verify email",
		Outro:       "If you did not create an account, you can safely ignore this message.",
	})
	if err != nil {
		return Message{}, err
	}
	return Message{
		To:       to,
		Subject:  "Verify your email address",
		BodyHTML: body,
		Tag:      TagEmailVerification,
	}, nil
}

// PasswordResetEmail builds the message sent in response to a forgotten
// password request. resetURL must embed the reset secret.
func PasswordResetEmail(to, resetURL string) (Message, error) {
	body, err := render(templateData{
		Title:       "Reset your password",
		Intro:       "A password reset was requested for your account. The link below is valid for a limited time and can be used once.",
		ActionURL:   resetURL,
		ActionLabel: "Reset password",
		Outro:       "If you did not request a reset, no action is needed; your password is unchanged.",
	})
	if err != nil {
		return Message{}, err
	}
	return Message{
		To:       to,
		Subject:  "Reset your password",
		BodyHTML: body,
		Tag:      TagPasswordReset,
	}, nil
}

// PasswordChangedEmail builds the notification sent after a successful
// password change or reset.
func PasswordChangedEmail(to string) (Message, error) {
	body, err := render(templateData{
		Title: "Your password was changed",
		Intro: "The password for your account was just changed.",
		Outro: "If this wasn't you, contact support immediately.",
	})
	if err != nil {
		return Message{}, err
	}
	return Message{
		To:       to,
		Subject:  "Your password was changed",
		BodyHTML: body,
		Tag:      TagPasswordChanged,
	}, nil
}
