package utils

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	AuthPort       = 3000
	authTimeout    = 5 * time.Minute
	callbackPath   = "/oauth/callback"
	tokenFileName  = "google_token.json"
	tokenFilePerms = 0600 // Read/write for owner only
)

// ScopeSheets is the only Google scope the attendance export needs
const ScopeSheets = "https://www.googleapis.com/auth/spreadsheets"

// GoogleOAuthConfig builds an installed-app OAuth config from a client file
// downloaded from the Google Cloud console
func GoogleOAuthConfig(clientFile string) (*oauth2.Config, error) {
	data, err := os.ReadFile(clientFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read oauth client file: %w", err)
	}

	googleConfig, err := google.ConfigFromJSON(data, ScopeSheets)
	if err != nil {
		return nil, fmt.Errorf("failed to create google config: %w", err)
	}

	// Override redirect URI to use our local server
	googleConfig.RedirectURL = fmt.Sprintf("http://localhost:%d%s", AuthPort, callbackPath)

	return googleConfig, nil
}

// TokenFile caches a Google token next to the rest of the local state
type TokenFile struct {
	path string
}

// NewTokenFile returns the token cache inside dir
func NewTokenFile(dir string) *TokenFile {
	return &TokenFile{path: filepath.Join(dir, tokenFileName)}
}

// Path returns the cache file location
func (f *TokenFile) Path() string {
	return f.path
}

// Load returns the cached token, or nil when none has been saved yet
func (f *TokenFile) Load() (*oauth2.Token, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read token file: %w", err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("failed to parse token file: %w", err)
	}
	return &token, nil
}

// Save writes the token with owner-only permissions
func (f *TokenFile) Save(token *oauth2.Token) error {
	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("failed to marshal token: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}
	if err := os.WriteFile(f.path, data, tokenFilePerms); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}

// Delete removes the cached token; a missing file is not an error
func (f *TokenFile) Delete() error {
	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete token file: %w", err)
	}
	return nil
}

// GoogleToken returns a usable token for oauthConfig.
// A cached token is reused or refreshed; otherwise the browser consent flow runs
// and the user is told which URL to visit on out.
func GoogleToken(ctx context.Context, oauthConfig *oauth2.Config, tokens *TokenFile, logger *zap.Logger, out io.Writer) (*oauth2.Token, error) {
	cached, err := tokens.Load()
	if err != nil {
		logger.Warn("Ignoring unreadable google token", zap.Error(err))
	}

	if cached != nil {
		if cached.Valid() {
			return cached, nil
		}
		if cached.RefreshToken != "" {
			refreshed, err := oauthConfig.TokenSource(ctx, cached).Token()
			if err == nil {
				logger.Debug("Google token refreshed")
				if err := tokens.Save(refreshed); err != nil {
					logger.Warn("Failed to save refreshed google token", zap.Error(err))
				}
				return refreshed, nil
			}
			logger.Warn("Google token refresh failed, starting consent flow", zap.Error(err))
			_ = tokens.Delete()
		}
	}

	listener, err := net.Listen("tcp", fmt.Sprintf("localhost:%d", AuthPort))
	if err != nil {
		return nil, fmt.Errorf("failed to listen for oauth callback: %w", err)
	}

	state := uuid.NewString()
	authURL := oauthConfig.AuthCodeURL(state, oauth2.AccessTypeOffline)
	fmt.Fprintf(out, "\nVisit this URL to authorize access to the attendance spreadsheet:\n%s\n\n", authURL)

	code, err := listenForAuthCallback(ctx, listener, state)
	if err != nil {
		return nil, fmt.Errorf("failed to get authorization code: %w", err)
	}

	token, err := oauthConfig.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code for token: %w", err)
	}

	if err := tokens.Save(token); err != nil {
		logger.Warn("Failed to save google token", zap.Error(err))
	}
	return token, nil
}

// callbackHandler accepts one redirect carrying the expected state
func callbackHandler(state string, codeCh chan<- string, errCh chan<- error) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET "+callbackPath, func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		if query.Get("state") != state {
			http.Error(w, "Authorization failed", http.StatusBadRequest)
			sendErr(errCh, fmt.Errorf("oauth state mismatch"))
			return
		}
		if reason := query.Get("error"); reason != "" {
			http.Error(w, "Authorization failed", http.StatusBadRequest)
			sendErr(errCh, fmt.Errorf("authorization denied: %s", reason))
			return
		}
		code := query.Get("code")
		if code == "" {
			http.Error(w, "Authorization failed", http.StatusBadRequest)
			sendErr(errCh, fmt.Errorf("no authorization code received"))
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, `<html><head><title>Authorization Successful</title></head>
<body><h1>Authorization successful!</h1><p>You can close this window and return to the terminal.</p></body></html>`)

		select {
		case codeCh <- code:
		default:
		}
	})
	return mux
}

func sendErr(errCh chan<- error, err error) {
	select {
	case errCh <- err:
	default:
	}
}

// listenForAuthCallback serves the redirect on listener until a code arrives
func listenForAuthCallback(ctx context.Context, listener net.Listener, state string) (string, error) {
	codeCh := make(chan string, 1)
	errCh := make(chan error, 1)

	server := &http.Server{
		Handler:           callbackHandler(state, codeCh, errCh),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			sendErr(errCh, fmt.Errorf("server error: %w", err))
		}
	}()

	timeoutCtx, cancel := context.WithTimeout(ctx, authTimeout)
	defer cancel()

	var (
		code    string
		authErr error
	)
	select {
	case code = <-codeCh:
	case authErr = <-errCh:
	case <-timeoutCtx.Done():
		authErr = fmt.Errorf("authorization timeout after %v", authTimeout)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = server.Shutdown(shutdownCtx)

	if authErr != nil {
		return "", authErr
	}
	return code, nil
}
