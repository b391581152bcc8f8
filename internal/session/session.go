// Package session owns the authenticated/unauthenticated state of a
// client process: login, logout, registration against the identity
// service, and the durable mirror of the current session.
package session

import (
	"context"
	"time"

	"github.com/xyz-asif/mangrovewatch/internal/features/auth"
)

// Session is the runtime record of an authenticated identity and its token.
type Session struct {
	Identity auth.Identity `json:"user"`
	Token    string        `json:"token"`
	IssuedAt time.Time     `json:"issuedAt"`
}

// WellFormed reports whether s can be used as a live session.
func (s *Session) WellFormed() bool {
	return s != nil && s.Token != "" && s.Identity.WellFormed()
}

func (s *Session) clone() *Session {
	if s == nil {
		return nil
	}
	copied := *s
	return &copied
}

// Credentials are the login inputs.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResult is what the identity service returns for valid credentials.
type LoginResult struct {
	Token    string        `json:"token"`
	Identity auth.Identity `json:"user"`
}

// RegistrationResult is what the identity service returns after creating
// an account.
type RegistrationResult struct {
	Identity auth.Identity `json:"user"`
}

// IdentityService is the remote authority for accounts and tokens.
// Rejected credentials are reported as an error matching
// errors.ErrAuthentication; any other failure should be an
// *errors.IdentityServiceError.
type IdentityService interface {
	Register(ctx context.Context, req auth.RegisterRequest) (*RegistrationResult, error)
	Login(ctx context.Context, creds Credentials) (*LoginResult, error)
}

// CredentialStore is the durable mirror of the current session. Get
// reports false for absent or unreadable data; it never fails.
type CredentialStore interface {
	Get() (*Session, bool)
	Set(s Session) error
	Clear() error
}
