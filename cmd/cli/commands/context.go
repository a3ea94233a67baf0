package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/gymflex/gymflex-cli/internal/config"
	"github.com/gymflex/gymflex-cli/pkg/clients/apiclient"
	"github.com/gymflex/gymflex-cli/pkg/clients/sheetsclient"
	"github.com/gymflex/gymflex-cli/pkg/core/calendar"
	"github.com/gymflex/gymflex-cli/pkg/core/model"
	"github.com/gymflex/gymflex-cli/pkg/core/services"
	"github.com/gymflex/gymflex-cli/pkg/core/store"
	"github.com/gymflex/gymflex-cli/pkg/localstate"
	"github.com/gymflex/gymflex-cli/pkg/utils"
)

// errSessionExpired is shown when the API rejects the stored token
var errSessionExpired = errors.New("your session has expired - please run login")

// AppContext holds the application dependencies shared across all commands
type AppContext struct {
	Cfg      *config.Config
	API      *apiclient.Client
	State    *localstate.Store
	Sessions *store.Store
	Logger   *zap.Logger
	Ctx      context.Context
	Env      string
	// Interactive is set while the REPL is running, so in-memory settings outlive one command
	Interactive bool

	sheets *sheetsclient.Client
}

// Now is the current time in the gym's timezone
func (app *AppContext) Now() time.Time {
	return time.Now().In(app.Cfg.Location())
}

// CurrentUser returns the cached user, failing with a login hint when there is none
func (app *AppContext) CurrentUser() (*model.CurrentUser, error) {
	user, err := services.WhoAmI(app.Ctx, app.API, app.State, app.Logger, false)
	if err != nil {
		if errors.Is(err, apiclient.ErrUnauthorized) {
			return nil, services.ErrNotLoggedIn
		}
		return nil, err
	}
	return user, nil
}

// LoadSessions runs the full refetch for the user's role.
// A rejected token clears local state so the next command asks for a login.
func (app *AppContext) LoadSessions(user *model.CurrentUser) error {
	app.Sessions.Refresh(app.Ctx, user.IsStaff)
	if app.Sessions.Unauthorized() {
		if err := services.Logout(app.API, app.State, app.Logger); err != nil {
			app.Logger.Warn("Failed to clear local state", zap.Error(err))
		}
		return errSessionExpired
	}
	return nil
}

// Selection returns the persisted per-role selection
func (app *AppContext) Selection() calendar.Selection {
	sel, err := app.State.LoadSelection()
	if err != nil {
		app.Logger.Warn("Failed to load selection", zap.Error(err))
	}
	return sel
}

// SaveSelection persists the per-role selection
func (app *AppContext) SaveSelection(sel calendar.Selection) error {
	if err := app.State.SaveSelection(sel); err != nil {
		return fmt.Errorf("failed to save selection: %w", err)
	}
	return nil
}

// Sheets returns the Google Sheets client, creating it on first use
func (app *AppContext) Sheets() (*sheetsclient.Client, error) {
	if app.sheets != nil {
		return app.sheets, nil
	}

	var (
		client *sheetsclient.Client
		err    error
	)
	if app.Cfg.GoogleOAuthClientFile != "" {
		// Staff sign in with their own Google account; the token is cached per environment
		app.Logger.Debug("Initializing sheets client with user consent", zap.String("client", app.Cfg.GoogleOAuthClientFile))
		oauthConfig, cfgErr := utils.GoogleOAuthConfig(app.Cfg.GoogleOAuthClientFile)
		if cfgErr != nil {
			return nil, cfgErr
		}
		token, tokenErr := utils.GoogleToken(app.Ctx, oauthConfig, utils.NewTokenFile(app.State.Dir()), app.Logger, os.Stdout)
		if tokenErr != nil {
			return nil, fmt.Errorf("failed to authorize google account: %w", tokenErr)
		}
		client, err = sheetsclient.NewClient(app.Ctx, "", option.WithTokenSource(oauthConfig.TokenSource(app.Ctx, token)))
	} else {
		app.Logger.Debug("Initializing sheets client", zap.String("credentials", app.Cfg.GoogleCredentialsFile))
		client, err = sheetsclient.NewClient(app.Ctx, app.Cfg.GoogleCredentialsFile)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets client: %w", err)
	}
	app.sheets = client
	return client, nil
}

// mutationError turns an authentication failure into the login hint
func (app *AppContext) mutationError(err error) error {
	if errors.Is(err, apiclient.ErrUnauthorized) {
		if clearErr := services.Logout(app.API, app.State, app.Logger); clearErr != nil {
			app.Logger.Warn("Failed to clear local state", zap.Error(clearErr))
		}
		return errSessionExpired
	}
	return err
}
