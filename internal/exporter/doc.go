// Package exporter writes annotated reports as xlsx workbooks or CSV files.
//
// Both writers share the column layout of Header and Cells and publish
// files atomically: a report is written to a temporary file next to its
// destination and renamed into place, so a failed export leaves no partial
// artifact.
//
// Example usage:
//
//	exp := exporter.New(paths, logger)
//	artifact, err := exp.Export(ctx, report, domain.ReportFormatExcel, exporter.Options{})
package exporter
