package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/yungbote/leontief-backend/internal/app"
	"github.com/yungbote/leontief-backend/internal/platform/logger"
)

var cfgFile string

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "leontief",
		Short:         "Leontief input-output modelling backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "YAML config file")
	root.PersistentFlags().String("log-mode", "development", "log mode (development|production)")
	root.PersistentFlags().String("db-driver", "", "database driver (postgres|sqlite)")
	root.PersistentFlags().String("db-dsn", "", "database DSN")
	root.PersistentFlags().String("db-path", "", "sqlite database file")

	root.AddCommand(newServeCmd())
	root.AddCommand(newMigrateCmd())
	root.AddCommand(newBootstrapAdminCmd())
	return root
}

// setup loads the config and the logger every subcommand needs.
func setup(cmd *cobra.Command) (app.Config, *logger.Logger, error) {
	flags := cmd.Flags()
	cfg, err := app.LoadConfig(cfgFile, flags)
	if err != nil {
		return app.Config{}, nil, err
	}
	log, err := logger.NewWithOptions(cfg.LoggerOptions())
	if err != nil {
		return app.Config{}, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, log, nil
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := setup(cmd)
			if err != nil {
				return err
			}
			defer log.Sync()

			a, err := app.New(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer a.Close()
			return a.Run(cmd.Context())
		},
	}
	cmd.Flags().String("addr", ":8080", "listen address")
	return cmd
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the schema and seed builtin roles",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := setup(cmd)
			if err != nil {
				return err
			}
			defer log.Sync()

			svc, roles, err := app.Migrate(cfg, log)
			if err != nil {
				return err
			}
			defer svc.Close()
			for name, r := range roles {
				log.Info("builtin role ready", "role", name, "id", r.ID)
			}
			return nil
		},
	}
}

func newBootstrapAdminCmd() *cobra.Command {
	var username, password string
	cmd := &cobra.Command{
		Use:   "bootstrap-admin",
		Short: "Create an admin account, or grant admin to an existing user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if username == "" || password == "" {
				return fmt.Errorf("--username and --password are required")
			}
			cfg, log, err := setup(cmd)
			if err != nil {
				return err
			}
			defer log.Sync()

			a, err := app.New(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer a.Close()
			u, err := a.Services.User.BootstrapAdmin(cmd.Context(), username, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "admin %q ready (id %d)\n", u.Username, u.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "admin username")
	cmd.Flags().StringVar(&password, "password", "", "admin password")
	return cmd
}
