// Package http implements the HTTP handlers of the report server. Handlers
// stay thin: they decode and validate the request, call a service and
// render the response.
//
// # Routes
//
//	GET  /api/health                     liveness and runtime stats
//	GET  /api/health/ready               source and reports directory probe
//	GET  /api/version                    build information
//	GET  /api/columns                    columns of the statistics table
//	GET  /api/columns/{column}/values    distinct values for building filters
//	POST /api/reports                    run one generation
//	GET  /api/reports/files              list generated reports
//	GET  /api/reports/files/{name}       download a generated report
//	GET  /metrics                        Prometheus scrape endpoint
//
// # Error Handling
//
// Errors are rendered as RFC 7807 problem details by the shared
// errors.ErrorHandler:
//
//	{
//	    "type": "/errors/conflict",
//	    "title": "Conflict",
//	    "status": 409,
//	    "detail": "a report generation is already running",
//	    "instance": "/api/reports"
//	}
//
// A generation whose filters leave no records is not an error over HTTP: it
// answers 200 with "status": "empty".
package http
