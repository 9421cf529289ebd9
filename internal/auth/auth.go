// Package auth abstracts the sign-in flow. The application only needs a
// stable user identifier; everything else about the session is the
// provider's business.
package auth

import "context"

// Provider yields the current user's identity.
type Provider interface {
	// SignInSilently restores a session without user interaction and
	// returns the stable user id, or fails.
	SignInSilently(ctx context.Context) (string, error)
	// SignOut terminates the session.
	SignOut(ctx context.Context) error
}

// Static is a fixed-identity provider for tests and local runs against the
// in-memory store.
type Static struct {
	UserID string
}

var _ Provider = Static{}

func (s Static) SignInSilently(context.Context) (string, error) {
	return s.UserID, nil
}

func (s Static) SignOut(context.Context) error {
	return nil
}
