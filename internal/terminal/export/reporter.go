// Package export renders command results for the terminal.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"text/template"
	"time"

	"estadistica/internal/files"
	"estadistica/internal/services"
)

// Reporter writes generation summaries and listings.
type Reporter struct {
	writer io.Writer
	json   bool
}

// NewReporter creates a reporter writing to writer, as JSON when asJSON is
// set.
func NewReporter(writer io.Writer, asJSON bool) *Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	return &Reporter{writer: writer, json: asJSON}
}

// SetJSON switches between JSON and text output.
func (r *Reporter) SetJSON(asJSON bool) {
	r.json = asJSON
}

var resultTemplate = template.Must(template.New("result").Funcs(template.FuncMap{
	"separator": func() string { return strings.Repeat("-", 48) },
}).Parse(`
Report {{.Mode}} ({{.Status}})  run {{.RunID}}
{{separator}}
{{- if .Message}}
{{.Message}}
{{- end}}
{{- with .Artifact}}
File:              {{.Path}}
Rows written:      {{.Rows}}
{{- end}}
Records read:      {{.Records}}
After filters:     {{.FilteredRecords}}
Groups:            {{.Groups}}
Dropped rows:      {{.DroppedRows}}
Stock records:     {{.StockRecords}} ({{.StockDuplicates}} duplicates, {{.StockMatched}} matched)
Trailing window:   {{.ElapsedMonths}} months of {{.CurrentYear}}
Coercion warnings: {{.CoercionWarnings}}
{{- range .Warnings}}
  row {{.Row}} {{.Column}}: {{printf "%q" .Value}}
{{- end}}
Duration:          {{.Duration}}
`))

// Result prints the summary of a generation.
func (r *Reporter) Result(res *services.GenerateResult) error {
	if r.json {
		return r.encode(res)
	}
	return resultTemplate.Execute(r.writer, res)
}

// List prints one value per line under a title.
func (r *Reporter) List(title string, values []string) error {
	if r.json {
		if values == nil {
			values = []string{}
		}
		return r.encode(map[string]any{"title": title, "values": values})
	}
	if len(values) == 0 {
		_, err := fmt.Fprintf(r.writer, "%s: none\n", title)
		return err
	}
	_, err := fmt.Fprintf(r.writer, "%s:\n%s\n", title, strings.Join(values, "\n"))
	return err
}

// Files prints the generated reports as a table.
func (r *Reporter) Files(reports []files.ReportFile) error {
	if r.json {
		if reports == nil {
			reports = []files.ReportFile{}
		}
		return r.encode(reports)
	}
	if len(reports) == 0 {
		_, err := fmt.Fprintln(r.writer, "No reports generated yet")
		return err
	}
	tw := tabwriter.NewWriter(r.writer, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tMODE\tSIZE\tMODIFIED")
	for _, rf := range reports {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", rf.Name, rf.Mode, rf.Size, rf.ModTime.Format(time.DateTime))
	}
	return tw.Flush()
}

func (r *Reporter) encode(v any) error {
	enc := json.NewEncoder(r.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
