package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Diampra/octopus-server/internal/application/startup"
)

func NewAdminCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "User administration",
	}
	cmd.AddCommand(newAdminCreateCommand())
	return cmd
}

// newAdminCreateCommand writes a user straight to the database. It is an
// operator action and needs no session.
func newAdminCreateCommand() *cobra.Command {
	var creds credentials
	var isAdmin bool

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := creds.validate(); err != nil {
				return err
			}
			app, err := startup.Bootstrap(cmd.Context(), startup.Options{Version: versionInfo.Version, Quiet: true})
			if err != nil {
				return err
			}
			defer app.Close()

			u, err := app.Container.AuthService.CreateUser(cmd.Context(), creds.email, creds.password, isAdmin)
			if err != nil {
				return err
			}
			role := "editor"
			if u.IsAdmin {
				role = "admin"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s user %s (%s)\n", role, u.Email, u.ID)
			return nil
		},
	}

	creds.bind(cmd)
	cmd.Flags().BoolVar(&isAdmin, "admin", false, "grant the admin role")
	return cmd
}
