package commands

import (
	"github.com/spf13/cobra"

	"estadistica/internal/terminal/export"
)

// NewColumnsCmd creates the columns command.
func NewColumnsCmd(load AppLoader, reporter *export.Reporter) *cobra.Command {
	return &cobra.Command{
		Use:   "columns",
		Short: "List the columns of the statistics table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := load(ctx)
			if err != nil {
				return err
			}
			defer a.Close(ctx)

			cols, err := a.Reports.ListColumns(ctx)
			if err != nil {
				return err
			}
			return reporter.List("Columns", cols)
		},
	}
}

// NewValuesCmd creates the values command.
func NewValuesCmd(load AppLoader, reporter *export.Reporter) *cobra.Command {
	return &cobra.Command{
		Use:   "values <column>",
		Short: "List the distinct values of a column, for building filters",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := load(ctx)
			if err != nil {
				return err
			}
			defer a.Close(ctx)

			values, err := a.Reports.DistinctValues(ctx, args[0])
			if err != nil {
				return err
			}
			return reporter.List(args[0], values)
		},
	}
}
