package mail

// Config holds mail service configuration.
// The Postmark tokens are optional to support development environments
// where outbound mail is written to disk instead. SenderEmail and
// SupportEmail establish the sender identity and reply-to behavior for
// all outbound messages.
type Config struct {
	PostmarkServerToken  string `env:"POSTMARK_SERVER_TOKEN"`
	PostmarkAccountToken string `env:"POSTMARK_ACCOUNT_TOKEN"`
	SenderEmail          string `env:"SENDER_EMAIL,required"`
	SupportEmail         string `env:"SUPPORT_EMAIL,required"`
}
