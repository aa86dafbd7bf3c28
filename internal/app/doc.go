// Package app wires the report generator together: configuration, logging,
// telemetry, the record source, the report service and the HTTP router.
//
// The CLI builds one Application per command. One-shot commands call the
// services directly and then Close; the serve command calls Run, which
// blocks until SIGINT or SIGTERM and then shuts the server down gracefully.
//
// Initialization errors are returned to the caller. The package never calls
// os.Exit, leaving exit codes to the command layer.
package app
