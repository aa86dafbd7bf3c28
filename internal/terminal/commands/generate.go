package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	apperrors "estadistica/internal/errors"
	"estadistica/internal/filter"
	"estadistica/internal/terminal/export"
	"estadistica/pkg/contracts/domain"
)

// GenerateCmd runs one report generation.
type GenerateCmd struct {
	load     AppLoader
	reporter *export.Reporter

	groupBy     []string
	mode        string
	subtotals   bool
	extra       bool
	filters     []string
	format      string
	labelColumn string

	retainGroupKey      bool
	retainUnitArea      bool
	includeCurrentMonth bool
	averageOverWindow   bool
}

// NewGenerateCmd creates the generate command.
func NewGenerateCmd(load AppLoader, reporter *export.Reporter) *cobra.Command {
	gc := &GenerateCmd{load: load, reporter: reporter}
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a statistics report",
		Example: `  estadistica generate --group-by MEDID --mode combined --filter LINEA=PISOS
  estadistica generate --group-by LINEA,MEDID --subtotals --format csv`,
		Args: cobra.NoArgs,
		RunE: gc.run,
	}

	f := cmd.Flags()
	f.StringSliceVarP(&gc.groupBy, "group-by", "g", nil, "Grouping columns, in order")
	f.StringVarP(&gc.mode, "mode", "m", "", "Report mode: plain, subtotal, extra or combined")
	f.BoolVar(&gc.subtotals, "subtotals", false, "Add subtotal rows (same as --mode subtotal)")
	f.BoolVar(&gc.extra, "extra", false, "Add area-weighted extra rows (same as --mode extra)")
	f.StringArrayVarP(&gc.filters, "filter", "f", nil, `Keep records where ATTR is one of the values, as "ATTR=a|b"`)
	f.StringVar(&gc.format, "format", "", "Output format: xlsx or csv")
	f.StringVar(&gc.labelColumn, "label-column", "", "Column naming the rows inside a group")
	f.BoolVar(&gc.retainGroupKey, "retain-group-key", false, "Keep the group key column in the output")
	f.BoolVar(&gc.retainUnitArea, "retain-unit-area", false, "Keep the unit area column in the output")
	f.BoolVar(&gc.includeCurrentMonth, "include-current-month", false, "Count the current month in the trailing window")
	f.BoolVar(&gc.averageOverWindow, "average-over-window", false, "Divide Prom by 12 instead of the elapsed months")

	cmd.MarkFlagsMutuallyExclusive("mode", "subtotals")
	cmd.MarkFlagsMutuallyExclusive("mode", "extra")
	return cmd
}

func (gc *GenerateCmd) run(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	filters, err := filter.Parse(gc.filters)
	if err != nil {
		return apperrors.NewAppValidationError(err.Error())
	}

	a, err := gc.load(ctx)
	if err != nil {
		return err
	}
	defer a.Close(ctx)

	req := a.Defaults
	req.Filters = filters
	if len(gc.groupBy) > 0 {
		req.GroupBy = gc.groupBy
	}
	if len(req.GroupBy) == 0 {
		return apperrors.NewAppValidationError("at least one --group-by column is required")
	}

	flags := cmd.Flags()
	switch {
	case flags.Changed("mode"):
		mode, err := domain.ParseReportMode(gc.mode)
		if err != nil {
			return apperrors.NewAppValidationError(err.Error())
		}
		req.Mode = mode
	case flags.Changed("subtotals") || flags.Changed("extra"):
		req.Mode = domain.ModeFromFlags(gc.subtotals, gc.extra)
	}
	if flags.Changed("format") {
		req.Format = domain.ReportFormat(gc.format)
	}
	if flags.Changed("label-column") {
		req.LabelColumn = gc.labelColumn
	}
	if flags.Changed("retain-group-key") {
		req.RetainGroupKey = gc.retainGroupKey
	}
	if flags.Changed("retain-unit-area") {
		req.RetainUnitArea = gc.retainUnitArea
	}
	if flags.Changed("include-current-month") {
		req.IncludeCurrentMonth = gc.includeCurrentMonth
	}
	if flags.Changed("average-over-window") {
		req.AverageOverWindow = gc.averageOverWindow
	}

	res, err := a.Reports.Generate(ctx, req)
	if res != nil {
		if rerr := gc.reporter.Result(res); rerr != nil {
			return fmt.Errorf("failed to print result: %w", rerr)
		}
	}
	return err
}
