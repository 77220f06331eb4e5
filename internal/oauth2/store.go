package oauth2

import (
	"context"
	"time"
)

// ExpiryBuffer is subtracted from the lifetime reported by HubSpot
const ExpiryBuffer = 300 * time.Second

// TokenStore answers token queries against a Repository
type TokenStore struct {
	repo   Repository
	now    func() time.Time
	buffer time.Duration
}

// StoreOption configures a TokenStore
type StoreOption func(*TokenStore)

// WithClock replaces time.Now
func WithClock(now func() time.Time) StoreOption {
	return func(s *TokenStore) {
		s.now = now
	}
}

// NewTokenStore creates a store over repo
func NewTokenStore(repo Repository, opts ...StoreOption) *TokenStore {
	s := &TokenStore{
		repo:   repo,
		now:    time.Now,
		buffer: ExpiryBuffer,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetTokens stores a session. The access token expires expiresIn seconds
// from now, less the buffer.
func (s *TokenStore) SetTokens(ctx context.Context, accessToken, refreshToken string, expiresIn int) error {
	expiresAt := s.now().Add(time.Duration(expiresIn)*time.Second - s.buffer)
	return s.repo.Save(ctx, &TokenState{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    expiresAt,
	})
}

// AccessToken returns the access token while it is still valid
func (s *TokenStore) AccessToken(ctx context.Context) (string, bool, error) {
	state, err := s.repo.Load(ctx)
	if err != nil {
		return "", false, err
	}
	if state == nil || state.AccessToken == "" {
		return "", false, nil
	}
	if !s.now().Before(state.ExpiresAt) {
		return "", false, nil
	}
	return state.AccessToken, true, nil
}

// RefreshToken returns the stored refresh token, regardless of expiry
func (s *TokenStore) RefreshToken(ctx context.Context) (string, bool, error) {
	state, err := s.repo.Load(ctx)
	if err != nil {
		return "", false, err
	}
	if state == nil || state.RefreshToken == "" {
		return "", false, nil
	}
	return state.RefreshToken, true, nil
}

// IsAuthenticated reports whether a refresh token is stored. An expired
// access token does not matter since it can be refreshed.
func (s *TokenStore) IsAuthenticated(ctx context.Context) (bool, error) {
	_, ok, err := s.RefreshToken(ctx)
	return ok, err
}

// Clear forgets the session
func (s *TokenStore) Clear(ctx context.Context) error {
	return s.repo.Clear(ctx)
}
