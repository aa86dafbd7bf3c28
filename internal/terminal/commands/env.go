// Package commands implements the subcommands of the estadistica CLI.
package commands

import (
	"context"

	"estadistica/internal/app"
)

// AppLoader builds the application for one command run. The caller closes
// it.
type AppLoader func(ctx context.Context) (*app.Application, error)
