package cli

import (
	"github.com/spf13/cobra"

	"github.com/Diampra/octopus-server/internal/application/startup"
	"github.com/Diampra/octopus-server/pkg/config"
)

func NewServeCommand() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if port != "" {
				config.Port = port
			}
			return startup.Initialize(versionInfo.Version)
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "listen port (default from PORT)")
	return cmd
}
