package identity

import "context"

// Identity is the external identity asserted by an OAuth provider after a
// successful code exchange.
type Identity struct {
	Subject string
	Email   string
	Name    string
}

// Provider abstracts the OAuth authorization code flow. The only concrete
// implementation talks to Google; tests substitute a fake.
type Provider interface {
	// AuthCodeURL returns the provider consent page URL carrying state.
	AuthCodeURL(state string) string
	// Exchange redeems the authorization code and returns the verified identity.
	Exchange(ctx context.Context, code string) (*Identity, error)
}
