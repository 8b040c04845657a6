// Package auth keeps the signed-in user's tokens and wraps the Kakao login
// endpoints of the blog API.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/mchmarny/blogadmin/pkg/api"
	"github.com/mchmarny/blogadmin/pkg/nav"
	"github.com/mchmarny/blogadmin/pkg/store"
)

// DefaultExpiry is assumed when a token response carries no expiresIn.
const DefaultExpiry = 30 * time.Minute

// ErrNotBound is returned by the login operations before Bind was called.
var ErrNotBound = errors.New("session is not bound to an api client")

// User is the profile returned by /auth/me.
type User struct {
	ID            nav.ID `json:"id"`
	KakaoID       nav.ID `json:"kakaoId,omitempty"`
	Email         string `json:"email,omitempty"`
	Nickname      string `json:"nickname"`
	ProfileImage  string `json:"profileImage,omitempty"`
	Role          string `json:"role,omitempty"`
	Active        *bool  `json:"isActive,omitempty"`
	LastLoginDate string `json:"lastLoginDate,omitempty"`
	CreatedDate   string `json:"createdDate,omitempty"`
}

// IsAdmin reports whether the user has the admin role.
func (u User) IsAdmin() bool {
	return u.Role == "ADMIN"
}

// LoginResponse is returned by the Kakao login endpoint.
type LoginResponse struct {
	api.TokenPair
	User *User `json:"user,omitempty"`
}

// Session persists the token pair in a store.Store and implements
// api.Credentials. The login operations need an api.Doer, attached with
// Bind once the client using this session exists.
type Session struct {
	store store.Store
	now   func() time.Time

	mu  sync.RWMutex
	api api.Doer
}

// Option configures a Session.
type Option func(*Session)

// WithClock replaces time.Now, used for expiry math.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// NewSession returns a session backed by st.
func NewSession(st store.Store, opts ...Option) *Session {
	s := &Session{
		store: st,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Bind attaches the client used by LoginURL, Login, Me and Logout.
func (s *Session) Bind(d api.Doer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.api = d
}

func (s *Session) doer() (api.Doer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.api == nil {
		return nil, ErrNotBound
	}
	return s.api, nil
}

// Tokens returns the stored access and refresh tokens.
func (s *Session) Tokens(ctx context.Context) (string, string, error) {
	access, _, err := s.store.Get(ctx, store.KeyAccessToken)
	if err != nil {
		return "", "", err
	}
	refresh, _, err := s.store.Get(ctx, store.KeyRefreshToken)
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

// Update stores a new token pair and its expiry. An empty refresh token
// keeps the stored one.
func (s *Session) Update(ctx context.Context, pair api.TokenPair) error {
	if pair.AccessToken == "" {
		return errors.New("token pair without access token")
	}

	if err := s.store.Set(ctx, store.KeyAccessToken, pair.AccessToken); err != nil {
		return err
	}

	if pair.RefreshToken != "" {
		if err := s.store.Set(ctx, store.KeyRefreshToken, pair.RefreshToken); err != nil {
			return err
		}
	}

	ttl := DefaultExpiry
	if pair.ExpiresIn > 0 {
		ttl = time.Duration(pair.ExpiresIn) * time.Second
	}
	expiry := s.now().Add(ttl).UnixMilli()

	return s.store.Set(ctx, store.KeyTokenExpiry, strconv.FormatInt(expiry, 10))
}

// Clear removes every stored token.
func (s *Session) Clear(ctx context.Context) error {
	for _, k := range []string{store.KeyAccessToken, store.KeyRefreshToken, store.KeyTokenExpiry} {
		if err := s.store.Remove(ctx, k); err != nil {
			return fmt.Errorf("remove %s: %w", k, err)
		}
	}
	return nil
}

// Expiry returns when the access token expires. The zero time means unknown.
func (s *Session) Expiry(ctx context.Context) (time.Time, error) {
	v, ok, err := s.store.Get(ctx, store.KeyTokenExpiry)
	if err != nil || !ok {
		return time.Time{}, err
	}
	ms, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse token expiry %q: %w", v, err)
	}
	return time.UnixMilli(ms), nil
}

// Authenticated reports whether an access token is stored and not expired.
// A token with an unknown expiry counts as valid; the server decides.
func (s *Session) Authenticated(ctx context.Context) bool {
	access, _, err := s.Tokens(ctx)
	if err != nil || access == "" {
		return false
	}
	exp, err := s.Expiry(ctx)
	if err != nil {
		return false
	}
	return exp.IsZero() || s.now().Before(exp)
}

// LoginURL returns the Kakao authorization URL to open in a browser.
func (s *Session) LoginURL(ctx context.Context) (string, error) {
	d, err := s.doer()
	if err != nil {
		return "", err
	}

	var u string
	if err := d.Do(ctx, api.Request{Path: "/auth/kakao/path", Public: true}, &u); err != nil {
		return "", fmt.Errorf("get login url: %w", err)
	}
	return u, nil
}

// Login exchanges a Kakao authorization code for a token pair and stores it.
func (s *Session) Login(ctx context.Context, code string) (*LoginResponse, error) {
	if code == "" {
		return nil, errors.New("authorization code is required")
	}

	d, err := s.doer()
	if err != nil {
		return nil, err
	}

	var resp LoginResponse
	err = d.Do(ctx, api.Request{
		Method: http.MethodPost,
		Path:   "/auth/kakao/login",
		Query:  url.Values{"code": {code}},
		Public: true,
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	if err := s.Update(ctx, resp.TokenPair); err != nil {
		return nil, fmt.Errorf("store tokens: %w", err)
	}

	return &resp, nil
}

// Me returns the signed-in user.
func (s *Session) Me(ctx context.Context) (*User, error) {
	d, err := s.doer()
	if err != nil {
		return nil, err
	}

	var u User
	if err := d.Do(ctx, api.Request{Path: "/auth/me"}, &u); err != nil {
		return nil, fmt.Errorf("get current user: %w", err)
	}
	return &u, nil
}

// ProfileUpdate is the body of a profile change.
type ProfileUpdate struct {
	Nickname     string `json:"nickname"`
	Email        string `json:"email"`
	ProfileImage string `json:"profileImage,omitempty"`
}

// Validate checks the limits the backend enforces.
func (p ProfileUpdate) Validate() error {
	if n := len([]rune(p.Nickname)); n < 2 || n > 20 {
		return errors.New("nickname must be 2 to 20 characters")
	}
	if p.Email == "" || !strings.Contains(p.Email, "@") || len(p.Email) > 255 {
		return errors.New("a valid email is required")
	}
	if len(p.ProfileImage) > 500 {
		return errors.New("profile image url must be at most 500 characters")
	}
	return nil
}

// ProfileResponse is returned by a profile change. The access token is
// reissued because it carries the nickname.
type ProfileResponse struct {
	api.TokenPair
	User    *User  `json:"user"`
	Message string `json:"message,omitempty"`
}

// UpdateProfile changes the signed-in user's profile and stores the
// reissued access token, keeping the refresh token.
func (s *Session) UpdateProfile(ctx context.Context, p ProfileUpdate) (*ProfileResponse, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	d, err := s.doer()
	if err != nil {
		return nil, err
	}

	var resp ProfileResponse
	if err := d.Do(ctx, api.Request{Method: http.MethodPut, Path: "/auth/me", Body: p}, &resp); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	if resp.AccessToken == "" || resp.User == nil {
		return nil, errors.New("update profile: response without token or user")
	}

	resp.RefreshToken = ""
	if err := s.Update(ctx, resp.TokenPair); err != nil {
		return nil, fmt.Errorf("store tokens: %w", err)
	}

	return &resp, nil
}

// Withdraw deletes the signed-in account, unlinking it from Kakao with
// kakaoToken, and clears the local tokens once the server confirmed.
func (s *Session) Withdraw(ctx context.Context, kakaoToken string) error {
	if kakaoToken == "" {
		return errors.New("kakao access token is required")
	}

	d, err := s.doer()
	if err != nil {
		return err
	}

	req := api.Request{Path: "/auth/withdrawal", Query: url.Values{"kakaoAccessToken": {kakaoToken}}}
	if err := d.Do(ctx, req, nil); err != nil {
		return fmt.Errorf("withdraw: %w", err)
	}

	return s.Clear(ctx)
}

// Logout tells the server to drop the session and always clears the local
// tokens. The server error, if any, is returned after the tokens are gone.
func (s *Session) Logout(ctx context.Context) error {
	var serverErr error
	if d, err := s.doer(); err == nil {
		access, _, _ := s.Tokens(ctx)
		if access != "" {
			serverErr = d.Do(ctx, api.Request{Method: http.MethodPost, Path: "/auth/logout"}, nil)
		}
	}

	if err := s.Clear(ctx); err != nil {
		return err
	}

	if serverErr != nil {
		return fmt.Errorf("logout: %w", serverErr)
	}
	return nil
}
