package session

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/bulgareesoft/bulgaree/internal/repository/supabase"
)

// Principal is the authenticated identity gating remote operations.
type Principal struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Authenticator defines the identity-provider operations the session needs.
type Authenticator interface {
	SignIn(ctx context.Context, creds supabase.Credentials) (*supabase.AuthSession, error)
	SignUp(ctx context.Context, creds supabase.Credentials) (*supabase.AuthSession, error)
}

// Session holds the current principal for the process lifetime. It owns no
// business data; reconciler calls receive it explicitly so that nothing in the
// sync path depends on ambient authentication state. Credentials are never
// persisted.
type Session struct {
	auth   Authenticator
	logger *zap.Logger

	mu        sync.RWMutex
	principal *Principal
	token     string
}

// New constructs an unauthenticated session.
func New(auth Authenticator, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{auth: auth, logger: logger}
}

// Authenticate signs in with email and password and installs the resulting
// principal. A failure leaves any previous principal untouched.
func (s *Session) Authenticate(ctx context.Context, email, password string) (*Principal, error) {
	authSession, err := s.auth.SignIn(ctx, supabase.Credentials{Email: email, Password: password})
	if err != nil {
		return nil, err
	}

	return s.install(authSession), nil
}

// Register creates a new account. When the identity provider returns a live
// session (no email confirmation required) the principal is installed right
// away; otherwise the caller must sign in after confirming.
func (s *Session) Register(ctx context.Context, email, password string) (*Principal, error) {
	authSession, err := s.auth.SignUp(ctx, supabase.Credentials{Email: email, Password: password})
	if err != nil {
		return nil, err
	}

	if authSession.AccessToken == "" || authSession.User.ID == "" {
		s.logger.Info("account registered, confirmation pending", zap.String("email", email))
		return nil, nil
	}

	return s.install(authSession), nil
}

func (s *Session) install(authSession *supabase.AuthSession) *Principal {
	principal := &Principal{ID: authSession.User.ID, Email: authSession.User.Email}

	s.mu.Lock()
	s.principal = principal
	s.token = authSession.AccessToken
	s.mu.Unlock()

	s.logger.Info("principal authenticated", zap.String("user_id", principal.ID))
	return principal
}

// Principal returns the current principal, or nil when unauthenticated.
func (s *Session) Principal() *Principal {
	if s == nil {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.principal
}

// Token returns the current access token, empty when unauthenticated.
func (s *Session) Token() string {
	if s == nil {
		return ""
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Authenticated reports whether a principal is present. A nil session counts
// as unauthenticated so callers can pass one through without guarding.
func (s *Session) Authenticated() bool {
	return s.Principal() != nil
}
