package commands

import (
	"github.com/spf13/cobra"

	"estadistica/internal/files"
	"estadistica/internal/terminal/export"
)

// NewReportsCmd creates the reports command.
func NewReportsCmd(load AppLoader, reporter *export.Reporter) *cobra.Command {
	return &cobra.Command{
		Use:   "reports",
		Short: "List the generated reports, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := load(ctx)
			if err != nil {
				return err
			}
			defer a.Close(ctx)

			reports, err := files.NewCatalog(a.Paths.ReportsDir).List()
			if err != nil {
				return err
			}
			return reporter.Files(reports)
		},
	}
}
