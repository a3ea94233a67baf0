package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gymflex/gymflex-cli/cmd/cli/commands"
	"github.com/gymflex/gymflex-cli/internal/config"
	"github.com/gymflex/gymflex-cli/pkg/clients/apiclient"
	"github.com/gymflex/gymflex-cli/pkg/core/store"
	"github.com/gymflex/gymflex-cli/pkg/localstate"
	"github.com/gymflex/gymflex-cli/pkg/utils/logging"
)

var (
	env   string
	quiet bool
	app   = &commands.AppContext{}
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "gymflex",
		Short: "GymFlex CLI - Book gym sessions and manage attendance",
		Long: `A CLI for the GymFlex booking API: browse the session calendar, book and cancel
sessions, and (for staff) manage bookings and attendance.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initApp()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app.Logger != nil {
				_ = app.Logger.Sync()
			}
		},
	}

	// Add persistent flags
	rootCmd.PersistentFlags().StringVarP(&env, "env", "e", "", "Environment (required: dev, prod, etc.)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Only log warnings and errors to the console")
	_ = rootCmd.MarkPersistentFlagRequired("env")

	// Account
	rootCmd.AddCommand(commands.LoginCmd(app))
	rootCmd.AddCommand(commands.RegisterCmd(app))
	rootCmd.AddCommand(commands.LogoutCmd(app))
	rootCmd.AddCommand(commands.WhoAmICmd(app))

	// Calendar and booking
	rootCmd.AddCommand(commands.CalendarCmd(app))
	rootCmd.AddCommand(commands.DayCmd(app))
	rootCmd.AddCommand(commands.BookCmd(app))
	rootCmd.AddCommand(commands.SelectCmd(app))
	rootCmd.AddCommand(commands.FilterCmd(app))

	// Staff
	rootCmd.AddCommand(commands.AdminCmd(app))
	rootCmd.AddCommand(commands.RemoveAttendeeCmd(app))
	rootCmd.AddCommand(commands.MarkAttendanceCmd(app))
	rootCmd.AddCommand(commands.ExportAttendanceCmd(app))

	rootCmd.AddCommand(commands.ServeCmd(app))
	rootCmd.AddCommand(commands.InteractiveCmd(app))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// initApp sets up logger, config, local state, API client and session store
func initApp() error {
	var err error
	app.Ctx = context.Background()
	app.Env = env

	// Initialize logger
	app.Logger, err = logging.InitLogger(env, logging.Options{Quiet: quiet})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	app.Logger.Debug("Starting application", zap.String("environment", env))

	// Load configuration
	app.Cfg, err = config.LoadWithEnv(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	app.Logger.Debug("Configuration loaded successfully", zap.String("api", app.Cfg.APIBaseURL))

	// Local state lives outside the working directory so it survives between runs
	app.State, err = localstate.New(env)
	if err != nil {
		return fmt.Errorf("failed to open local state: %w", err)
	}
	app.Logger.Debug("Local state directory", zap.String("dir", app.State.Dir()))

	// Initialize API client
	app.API, err = apiclient.NewClient(apiclient.Options{
		BaseURL:           app.Cfg.APIBaseURL,
		Timeout:           app.Cfg.RequestTimeout(),
		RequestsPerSecond: app.Cfg.RequestsPerSecond,
		Tokens:            app.State,
		Logger:            app.Logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create api client: %w", err)
	}

	app.Sessions = store.New(app.API, app.Logger)
	app.Logger.Debug("Application initialized")

	return nil
}
