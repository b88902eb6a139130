package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/eazerepy/eazerepy/client/sdk"
	"go.uber.org/zap"
)

// Status is the authentication state of a Session.
type Status int

const (
	StatusLoading Status = iota
	StatusAuthenticated
	StatusUnauthenticated
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusAuthenticated:
		return "authenticated"
	default:
		return "unauthenticated"
	}
}

var (
	ErrMissingCredentials = errors.New("username and password are required")
	ErrLoginFailed        = errors.New("login failed")
	ErrRegisterFailed     = errors.New("registration failed")
)

const (
	msgMissingCredentials = "Please enter both username and password."
	msgLoginFailed        = "Login failed. Please check your credentials."
	msgRegisterFailed     = "Registration failed. Please try again."
	msgSessionExpired     = "Your session has expired. Please log in again."
	msgLoggedOut          = "You have been logged out."
)

// Authenticator is the backend surface a Session needs; *sdk.Client implements it.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (*sdk.TokenResponse, error)
	Register(ctx context.Context, username, password string) (*sdk.TokenResponse, error)
	Me(ctx context.Context) (*sdk.User, error)
}

// Navigator performs the forced navigation to the login entry point.
type Navigator interface {
	ToLogin(reason string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(reason string)

func (f NavigatorFunc) ToLogin(reason string) { f(reason) }

// Session holds the authentication state of the process. One instance is shared by every
// component; the token lives in its TokenStore.
type Session struct {
	mu             sync.RWMutex
	status         Status
	err            string
	user           *sdk.User
	authenticating bool

	store  TokenStore
	authn  Authenticator
	nav    Navigator
	logger *zap.Logger
}

// Option customizes a Session.
type Option func(s *Session)

// WithNavigator sets the login navigator.
func WithNavigator(nav Navigator) Option {
	return func(s *Session) { s.nav = nav }
}

// WithLogger sets the session logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewSession creates a loading session backed by store.
func NewSession(store TokenStore, opts ...Option) *Session {
	s := &Session{
		status: StatusLoading,
		store:  store,
		nav:    NavigatorFunc(func(string) {}),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Attach sets the backend used for login, register and the restore probe.
// The client usually depends on the session (token provider, 401 hook), hence the late binding.
func (s *Session) Attach(authn Authenticator) {
	s.mu.Lock()
	s.authn = authn
	s.mu.Unlock()
}

// Token returns the stored bearer token; it is the SDK token provider.
func (s *Session) Token(ctx context.Context) (string, error) {
	return s.store.Token(ctx)
}

// Restore resolves the loading state from the stored token: a token accepted by the probe
// endpoint authenticates the session, anything else leaves it unauthenticated. A JWT whose
// exp claim has passed is cleared without calling the backend.
func (s *Session) Restore(ctx context.Context) error {
	token, err := s.store.Token(ctx)
	if err != nil {
		s.logger.Warn("failed to read stored token", zap.Error(err))
		s.resolve(StatusUnauthenticated, nil, "")
		return nil
	}
	if strings.TrimSpace(token) == "" {
		s.resolve(StatusUnauthenticated, nil, "")
		return nil
	}
	if claims, err := DecodeClaims(token); err == nil && claims.Expired(time.Now()) {
		s.logger.Info("stored token expired", zap.Time("expiresAt", claims.ExpiresAt))
		if err := s.store.ClearToken(ctx); err != nil {
			s.logger.Warn("failed to clear token", zap.Error(err))
		}
		s.resolve(StatusUnauthenticated, nil, msgSessionExpired)
		return nil
	}
	authn := s.authenticator()
	if authn == nil {
		return fmt.Errorf("session: authenticator not attached")
	}
	user, err := authn.Me(ctx)
	if err != nil {
		if sdk.IsUnauthorized(err) {
			if err := s.store.ClearToken(ctx); err != nil {
				s.logger.Warn("failed to clear token", zap.Error(err))
			}
			s.resolve(StatusUnauthenticated, nil, msgSessionExpired)
			return nil
		}
		s.logger.Warn("session probe failed", zap.Error(err))
		s.resolve(StatusUnauthenticated, nil, "Unable to verify your session. Please try again later.")
		return fmt.Errorf("session probe: %w", err)
	}
	s.resolve(StatusAuthenticated, user, "")
	return nil
}

// Login exchanges credentials for a token.
func (s *Session) Login(ctx context.Context, username, password string) error {
	return s.authenticate(ctx, username, password, false)
}

// Register creates an account and signs in with it.
func (s *Session) Register(ctx context.Context, username, password string) error {
	return s.authenticate(ctx, username, password, true)
}

func (s *Session) authenticate(ctx context.Context, username, password string, register bool) error {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		s.resolve(StatusUnauthenticated, nil, msgMissingCredentials)
		return ErrMissingCredentials
	}
	authn := s.authenticator()
	if authn == nil {
		return fmt.Errorf("session: authenticator not attached")
	}
	failure, fallback := ErrLoginFailed, msgLoginFailed
	call := authn.Login
	if register {
		failure, fallback = ErrRegisterFailed, msgRegisterFailed
		call = authn.Register
	}

	s.mu.Lock()
	s.authenticating = true
	s.mu.Unlock()
	resp, err := call(ctx, username, password)
	s.mu.Lock()
	s.authenticating = false
	s.mu.Unlock()

	if err == nil && (resp == nil || strings.TrimSpace(resp.AccessToken) == "") {
		err = fmt.Errorf("empty access token")
	}
	if err != nil {
		s.logger.Info("authentication failed", zap.String("username", username), zap.Bool("register", register), zap.Error(err))
		s.resolve(StatusUnauthenticated, nil, detailOr(err, fallback))
		return fmt.Errorf("%w: %v", failure, err)
	}
	if err := s.store.SetToken(ctx, resp.AccessToken); err != nil {
		s.resolve(StatusUnauthenticated, nil, fallback)
		return fmt.Errorf("%w: failed to store token: %v", failure, err)
	}
	s.resolve(StatusAuthenticated, &sdk.User{Username: username}, "")
	return nil
}

// Logout clears the token and navigates to login.
func (s *Session) Logout(ctx context.Context) error {
	err := s.store.ClearToken(ctx)
	s.resolve(StatusUnauthenticated, nil, "")
	s.nav.ToLogin(msgLoggedOut)
	return err
}

// HandleUnauthorized is the SDK 401 hook: it clears the token and forces login, except while a
// login or register call is in progress.
func (s *Session) HandleUnauthorized() {
	if err := s.store.ClearToken(context.Background()); err != nil {
		s.logger.Warn("failed to clear token", zap.Error(err))
	}
	s.mu.Lock()
	inLogin := s.authenticating
	s.status = StatusUnauthenticated
	s.user = nil
	if !inLogin {
		s.err = msgSessionExpired
	}
	s.mu.Unlock()
	if inLogin {
		return
	}
	s.logger.Info("session expired")
	s.nav.ToLogin(msgSessionExpired)
}

// Status returns the current state.
func (s *Session) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// Authenticated reports whether the session resolved to authenticated.
func (s *Session) Authenticated() bool { return s.Status() == StatusAuthenticated }

// Err returns the last human-readable error, or "".
func (s *Session) Err() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// User returns the signed-in user, if known.
func (s *Session) User() *sdk.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

func (s *Session) authenticator() Authenticator {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.authn
}

func (s *Session) resolve(status Status, user *sdk.User, msg string) {
	s.mu.Lock()
	s.status = status
	s.user = user
	s.err = msg
	s.mu.Unlock()
}

// detailOr extracts the backend "detail" message from an HTTP error body.
func detailOr(err error, fallback string) string {
	var herr *sdk.HTTPError
	if !errors.As(err, &herr) || herr.Body == "" {
		return fallback
	}
	var body struct {
		Detail interface{} `json:"detail"`
	}
	if json.Unmarshal([]byte(herr.Body), &body) != nil {
		return fallback
	}
	if text, ok := body.Detail.(string); ok && strings.TrimSpace(text) != "" {
		return text
	}
	return fallback
}
