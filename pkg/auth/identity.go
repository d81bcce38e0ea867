package auth

import "context"

// Social provider identifiers.
const (
	ProviderGoogle = "google"
	ProviderGitHub = "github"
)

// ExternalIdentity is the normalized profile a social provider reports
// for a user. The data is untrusted input: the resolver enforces local
// uniqueness invariants before any of it reaches an account.
type ExternalIdentity struct {
	ID            string
	Name          string
	Email         string
	EmailVerified bool
	AvatarURL     string
}

// ProviderAdapter turns a provider's OAuth flow into an
// ExternalIdentity. Implementations own the endpoint and scope details;
// the resolver never sees provider specifics.
type ProviderAdapter interface {
	// Provider returns the stable provider identifier, e.g. "google".
	Provider() string

	// AuthURL builds the provider authorization URL for the given CSRF
	// state token.
	AuthURL(state string) string

	// Identity exchanges the authorization code and fetches the user's
	// profile.
	Identity(ctx context.Context, code string) (ExternalIdentity, error)
}
