package supabase

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/bulgareesoft/bulgaree/internal/config"
)

// Client speaks to a Supabase project: GoTrue for authentication and PostgREST
// for the record collections. The anon key authorizes requests until a user
// session supplies its own access token.
type Client struct {
	httpClient *resty.Client
	key        string
	logger     *zap.Logger
}

// NewClient builds a Supabase API client using the provided configuration values.
func NewClient(cfg config.RemoteConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}

	restyClient := resty.New()
	restyClient.
		SetBaseURL(strings.TrimSuffix(cfg.URL, "/")).
		SetHeader("apikey", cfg.Key).
		SetHeader("Content-Type", "application/json").
		SetTimeout(15 * time.Second)

	return &Client{
		httpClient: restyClient,
		key:        cfg.Key,
		logger:     logger,
	}
}

// Credentials is the email/password pair for sign-in and sign-up.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// User is the authenticated identity returned by GoTrue.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// AuthSession is a successful authentication result.
type AuthSession struct {
	AccessToken string `json:"access_token"`
	User        User   `json:"user"`
}

// AuthError is a credential or account failure reported by GoTrue. It is the
// only remote failure surfaced to the user; connectivity problems degrade
// silently instead.
type AuthError struct {
	Status  int
	Message string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication failed (status %d): %s", e.Status, e.Message)
}

// gotrueError covers the error payload shapes GoTrue responds with.
type gotrueError struct {
	Msg              string `json:"msg"`
	ErrorField       string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

func (e *gotrueError) message() string {
	switch {
	case e.ErrorDescription != "":
		return e.ErrorDescription
	case e.Msg != "":
		return e.Msg
	case e.ErrorField != "":
		return e.ErrorField
	default:
		return "unknown error"
	}
}

// SignIn authenticates an existing account with the password grant.
func (c *Client) SignIn(ctx context.Context, creds Credentials) (*AuthSession, error) {
	return c.authRequest(ctx, "/auth/v1/token?grant_type=password", creds)
}

// SignUp registers a new account. Depending on project settings GoTrue may
// return a session immediately or require email confirmation first; in the
// latter case the session carries no access token.
func (c *Client) SignUp(ctx context.Context, creds Credentials) (*AuthSession, error) {
	return c.authRequest(ctx, "/auth/v1/signup", creds)
}

func (c *Client) authRequest(ctx context.Context, path string, creds Credentials) (*AuthSession, error) {
	result := new(AuthSession)
	apiErr := new(gotrueError)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(creds).
		SetResult(result).
		SetError(apiErr).
		Post(path)
	if err != nil {
		return nil, fmt.Errorf("auth request: %w", err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		return nil, &AuthError{Status: resp.StatusCode(), Message: apiErr.message()}
	}

	return result, nil
}
