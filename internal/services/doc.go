// Package services implements the business logic layer of the report
// generator. It keeps HTTP handlers and the CLI free of pipeline details.
//
// # Available Services
//
//   - ReportService: runs a generation (fetch, filter, stock, process,
//     annotate, export) and lists the columns and values of the statistics
//     table for building filters
//   - HealthService: liveness and readiness checks
//
// # Concurrency
//
// ReportService admits one generation at a time. A concurrent call fails
// fast with a CONFLICT error instead of queueing:
//
//	res, err := svc.Generate(ctx, services.GenerateRequest{
//	    GroupBy: []string{"MEDID"},
//	    Mode:    domain.ModeCombined,
//	})
//
// # Error Handling
//
// Services return typed errors from internal/errors. An EMPTY_RESULT error
// comes with a non-nil result whose Status is "empty".
package services
