// Command estadistica generates purchase and sales statistics reports.
package main

import (
	"context"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"

	"estadistica/internal/infrastructure"
	"estadistica/internal/terminal"
)

func main() {
	code := terminal.NewCLI(terminal.Options{}).Execute(context.Background(), os.Args[1:])
	_ = infrastructure.CloseLogFile()
	os.Exit(code)
}
