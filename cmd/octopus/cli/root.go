// Package cli implements the octopus command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Diampra/octopus-server/internal/application/startup"
	"github.com/Diampra/octopus-server/internal/domain/entities/session"
	"github.com/Diampra/octopus-server/pkg/config"
)

type VersionInfo struct {
	Version string
	Commit  string
}

// versionInfo is set once by NewRootCommand.
var versionInfo VersionInfo

func NewRootCommand(info VersionInfo) *cobra.Command {
	versionInfo = info

	var logLevel string

	cmd := &cobra.Command{
		Use:           "octopus",
		Short:         "Octopus content and media server",
		Long:          "Serves the Octopus site content API and keeps object storage consistent with the media the content references.",
		SilenceErrors: true,
		SilenceUsage:  true,

		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if logLevel != "" {
				config.LogLevel = logLevel
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	cmd.Version = fmt.Sprintf("%s.%s", info.Version, info.Commit)

	return cmd
}

// credentials are shared by commands that act as an admin.
type credentials struct {
	email    string
	password string
}

func (c *credentials) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&c.email, "email", os.Getenv("OCTOPUS_EMAIL"), "admin email (env OCTOPUS_EMAIL)")
	cmd.Flags().StringVar(&c.password, "password", os.Getenv("OCTOPUS_PASSWORD"), "admin password (env OCTOPUS_PASSWORD)")
}

func (c *credentials) validate() error {
	if c.email == "" || c.password == "" {
		return errors.New("--email and --password are required")
	}
	return nil
}

// withAdminSession bootstraps the application quietly, logs in and runs fn
// with the resulting session. The session is revoked afterwards.
func withAdminSession(ctx context.Context, creds credentials, fn func(app *startup.App, sess *session.Session) error) error {
	if err := creds.validate(); err != nil {
		return err
	}

	app, err := startup.Bootstrap(ctx, startup.Options{Version: versionInfo.Version, Quiet: true})
	if err != nil {
		return err
	}
	defer app.Close()

	auth := app.Container.AuthService
	login, err := auth.Login(ctx, creds.email, creds.password)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}
	defer auth.Logout(context.WithoutCancel(ctx), login.Token)

	return fn(app, login.Session)
}
