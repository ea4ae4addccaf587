package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Diampra/octopus-server/internal/application/startup"
	"github.com/Diampra/octopus-server/internal/domain/entities/admin"
	"github.com/Diampra/octopus-server/internal/domain/entities/session"
)

func NewAuditCommand() *cobra.Command {
	var creds credentials
	var asJSON bool
	var showLinked bool

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Compare stored objects with the media referenced by content",
		Long: `Lists the bucket and every content collection, then prints linked,
orphan and missing files. Nothing is deleted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withAdminSession(cmd.Context(), creds, func(app *startup.App, sess *session.Session) error {
				report, err := app.Container.StorageAuditService.Audit(cmd.Context(), sess)
				if err != nil {
					var incomplete *admin.IncompleteAuditError
					if errors.As(err, &incomplete) {
						return fmt.Errorf("audit incomplete, failed sources %v: %w", incomplete.FailedSources(), err)
					}
					return err
				}
				if asJSON {
					enc := json.NewEncoder(cmd.OutOrStdout())
					enc.SetIndent("", "  ")
					return enc.Encode(report)
				}
				return printReport(cmd.OutOrStdout(), report, showLinked)
			})
		},
	}

	creds.bind(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	cmd.Flags().BoolVar(&showLinked, "linked", false, "also list linked files")
	return cmd
}

func printReport(out io.Writer, report *admin.AuditReport, showLinked bool) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)

	fmt.Fprintf(w, "Generated\t%s\n", report.GeneratedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(w, "Linked\t%d\n", report.Summary.Linked)
	fmt.Fprintf(w, "Orphan\t%d\t(%s)\n", report.Summary.Orphan, humanBytes(report.Summary.OrphanBytes))
	fmt.Fprintf(w, "Missing\t%d\n", report.Summary.Missing)

	if len(report.Orphan) > 0 {
		fmt.Fprintln(w, "\nORPHAN\tSIZE\tFOLDER")
		for _, e := range report.Orphan {
			var size int64
			folder := ""
			if e.SizeBytes != nil {
				size = *e.SizeBytes
			}
			if e.Folder != nil {
				folder = *e.Folder
			}
			// Print the stored key so it can be passed to "storage delete" as is.
			fmt.Fprintf(w, "%s\t%s\t%s\n", e.Key, humanBytes(size), folder)
		}
	}
	if len(report.Missing) > 0 {
		fmt.Fprintln(w, "\nMISSING\tREFERENCED BY")
		for _, e := range report.Missing {
			fmt.Fprintf(w, "%s\t%s\n", e.File, ownersString(e.Owners))
		}
	}
	if showLinked && len(report.Linked) > 0 {
		fmt.Fprintln(w, "\nLINKED\tREFERENCED BY")
		for _, e := range report.Linked {
			fmt.Fprintf(w, "%s\t%s\n", e.File, ownersString(e.Owners))
		}
	}
	return w.Flush()
}

func ownersString(owners []admin.Owner) string {
	s := ""
	for i, o := range owners {
		if i > 0 {
			s += ", "
		}
		s += o.Type + ":" + o.ID
	}
	return s
}

func humanBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
