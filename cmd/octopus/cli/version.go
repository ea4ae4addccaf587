package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "octopus %s (%s) %s/%s %s\n",
				versionInfo.Version, versionInfo.Commit, runtime.GOOS, runtime.GOARCH, runtime.Version())
		},
	}
}
