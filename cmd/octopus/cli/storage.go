package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Diampra/octopus-server/internal/application/startup"
	"github.com/Diampra/octopus-server/internal/domain/entities/session"
)

func NewStorageCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "storage",
		Short: "Object storage maintenance",
	}
	cmd.AddCommand(newStorageDeleteCommand())
	return cmd
}

func newStorageDeleteCommand() *cobra.Command {
	var creds credentials
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "delete <path>...",
		Short: "Delete orphan files",
		Long: `Deletes the given paths from the bucket. Each path is re-checked against
current content first; paths that became referenced are skipped.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withAdminSession(cmd.Context(), creds, func(app *startup.App, sess *session.Session) error {
				result, err := app.Container.CleanupService.DeleteOrphans(cmd.Context(), sess, args)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if asJSON {
					enc := json.NewEncoder(out)
					enc.SetIndent("", "  ")
					return enc.Encode(result)
				}

				w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "FILE\tSTATUS\tERROR")
				for _, r := range result.Results {
					fmt.Fprintf(w, "%s\t%s\t%s\n", r.File, r.Status, r.Error)
				}
				fmt.Fprintf(w, "\nrequested %d, deleted %d, skipped %d, failed %d\n",
					result.Summary.Requested, result.Summary.Deleted, result.Summary.Skipped, result.Summary.Failed)
				if err := w.Flush(); err != nil {
					return err
				}
				if result.Summary.Failed > 0 {
					return fmt.Errorf("%d file(s) could not be deleted", result.Summary.Failed)
				}
				return nil
			})
		},
	}

	creds.bind(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print results as JSON")
	return cmd
}
