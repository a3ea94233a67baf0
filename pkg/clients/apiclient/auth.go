package apiclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// TokenStore persists the access/refresh token pair between runs
type TokenStore interface {
	LoadToken() (*oauth2.Token, error)
	SaveToken(token *oauth2.Token) error
}

type tokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh,omitempty"`
}

// Login exchanges credentials for a token pair, persists it and uses it for subsequent calls
func (c *Client) Login(ctx context.Context, username, password string) (*oauth2.Token, error) {
	var pair tokenPair
	body := map[string]string{"username": username, "password": password}
	if err := c.do(ctx, c.anon, http.MethodPost, "token/", body, &pair); err != nil {
		return nil, fmt.Errorf("failed to obtain token: %w", err)
	}
	if pair.Access == "" {
		return nil, fmt.Errorf("failed to obtain token: response has no access token")
	}

	token := tokenFromPair(pair.Access, pair.Refresh)
	if err := c.tokens.set(token); err != nil {
		c.logger.Warn("Failed to persist token", zap.Error(err))
	}

	return token, nil
}

// Logout forgets the in-memory token. Callers clear persisted state themselves.
func (c *Client) Logout() {
	c.tokens.reset()
}

// HasToken reports whether an access token is available, loading it from the store if needed
func (c *Client) HasToken() bool {
	return c.tokens.has()
}

// Register creates a new member account
func (c *Client) Register(ctx context.Context, username, password string) error {
	body := map[string]string{"username": username, "password": password}
	if err := c.do(ctx, c.anon, http.MethodPost, "user/register/", body, nil); err != nil {
		return fmt.Errorf("failed to register user: %w", err)
	}
	return nil
}

func (c *Client) refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	var pair tokenPair
	body := map[string]string{"refresh": refreshToken}
	if err := c.do(ctx, c.anon, http.MethodPost, "token/refresh/", body, &pair); err != nil {
		return nil, err
	}
	if pair.Access == "" {
		return nil, fmt.Errorf("refresh response has no access token")
	}
	if pair.Refresh == "" {
		pair.Refresh = refreshToken
	}
	return tokenFromPair(pair.Access, pair.Refresh), nil
}

// tokenFromPair builds an oauth2 token whose Expiry comes from the access token's exp claim
func tokenFromPair(access, refresh string) *oauth2.Token {
	token := &oauth2.Token{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
	}
	if exp, err := accessTokenExpiry(access); err == nil {
		token.Expiry = exp
	}
	return token
}

// accessTokenExpiry reads the exp claim without verifying the signature.
// The server verifies; the client only needs to know when to refresh.
func accessTokenExpiry(access string) (time.Time, error) {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(access, claims); err != nil {
		return time.Time{}, fmt.Errorf("failed to decode access token: %w", err)
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, nil
	}
	return claims.ExpiresAt.Time, nil
}

// tokenSource is the oauth2.TokenSource behind authenticated requests.
// It loads the persisted token lazily and refreshes it once the access token expires.
type tokenSource struct {
	client *Client
	store  TokenStore
	logger *zap.Logger

	mu     sync.Mutex
	token  *oauth2.Token
	loaded bool
}

func newTokenSource(c *Client, store TokenStore, logger *zap.Logger) *tokenSource {
	return &tokenSource{client: c, store: store, logger: logger}
}

func (s *tokenSource) Token() (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.loadLocked()

	if s.token == nil || s.token.AccessToken == "" {
		return nil, ErrUnauthorized
	}
	if s.token.Valid() {
		return s.token, nil
	}
	if s.token.RefreshToken == "" {
		return nil, ErrUnauthorized
	}

	s.logger.Debug("Access token expired, refreshing", zap.Time("expiry", s.token.Expiry))

	refreshed, err := s.client.refresh(context.Background(), s.token.RefreshToken)
	if err != nil {
		if errors.Is(err, ErrUnauthorized) {
			s.token = nil
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to refresh access token: %w", err)
	}

	s.token = refreshed
	if s.store != nil {
		if err := s.store.SaveToken(refreshed); err != nil {
			s.logger.Warn("Failed to persist refreshed token", zap.Error(err))
		}
	}

	return refreshed, nil
}

func (s *tokenSource) loadLocked() {
	if s.loaded || s.store == nil {
		return
	}
	s.loaded = true

	token, err := s.store.LoadToken()
	if err != nil {
		s.logger.Warn("Failed to load token", zap.Error(err))
		return
	}
	s.token = token
}

func (s *tokenSource) set(token *oauth2.Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = token
	s.loaded = true
	if s.store == nil {
		return nil
	}
	return s.store.SaveToken(token)
}

func (s *tokenSource) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = nil
	s.loaded = true
}

func (s *tokenSource) has() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.loadLocked()
	return s.token != nil && s.token.AccessToken != ""
}
