package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/gymflex/gymflex-cli/pkg/clients/apiclient"
	"github.com/gymflex/gymflex-cli/pkg/core/model"
)

// AuthClient defines the API calls for authentication
type AuthClient interface {
	Login(ctx context.Context, username, password string) (*oauth2.Token, error)
	Register(ctx context.Context, username, password string) error
	CurrentUser(ctx context.Context) (*model.CurrentUser, error)
	Logout()
}

// UserCache persists the current user between runs
type UserCache interface {
	LoadUser() (*model.CurrentUser, error)
	SaveUser(user *model.CurrentUser) error
	Clear() error
}

func validateCredentials(username, password string) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return "", fmt.Errorf("username is required")
	}
	if password == "" {
		return "", fmt.Errorf("password is required")
	}
	return username, nil
}

// Login obtains a token pair, then fetches and caches the current user
func Login(
	ctx context.Context,
	api AuthClient,
	cache UserCache,
	logger *zap.Logger,
	username string,
	password string,
) (*model.CurrentUser, error) {
	username, err := validateCredentials(username, password)
	if err != nil {
		return nil, err
	}

	logger.Debug("Logging in", zap.String("username", username))

	if _, err := api.Login(ctx, username, password); err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}

	user, err := api.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}

	if err := cache.SaveUser(user); err != nil {
		logger.Warn("Failed to cache current user", zap.Error(err))
	}

	logger.Info("Logged in", zap.String("username", user.Username), zap.Bool("is_staff", user.IsStaff))
	return user, nil
}

// Register creates a member account. The server lower-cases the username.
func Register(
	ctx context.Context,
	api AuthClient,
	logger *zap.Logger,
	username string,
	password string,
) error {
	username, err := validateCredentials(username, password)
	if err != nil {
		return err
	}

	if err := api.Register(ctx, username, password); err != nil {
		return err
	}

	logger.Info("Registered user", zap.String("username", username))
	return nil
}

// Logout forgets the token and removes all persisted client state
func Logout(api AuthClient, cache UserCache, logger *zap.Logger) error {
	api.Logout()
	if err := cache.Clear(); err != nil {
		return fmt.Errorf("failed to clear local state: %w", err)
	}
	logger.Info("Logged out")
	return nil
}

// WhoAmI returns the cached current user, fetching it when missing or when refresh is set.
// An authentication failure clears the cached state.
func WhoAmI(
	ctx context.Context,
	api AuthClient,
	cache UserCache,
	logger *zap.Logger,
	refresh bool,
) (*model.CurrentUser, error) {
	if !refresh {
		user, err := cache.LoadUser()
		if err != nil {
			logger.Warn("Failed to load cached user", zap.Error(err))
		}
		if user != nil {
			return user, nil
		}
	}

	user, err := api.CurrentUser(ctx)
	if err != nil {
		if errors.Is(err, apiclient.ErrUnauthorized) {
			if clearErr := cache.Clear(); clearErr != nil {
				logger.Warn("Failed to clear local state", zap.Error(clearErr))
			}
		}
		return nil, err
	}

	if err := cache.SaveUser(user); err != nil {
		logger.Warn("Failed to cache current user", zap.Error(err))
	}
	return user, nil
}
