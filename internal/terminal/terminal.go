// Package terminal implements the estadistica command line.
package terminal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"estadistica/internal/app"
	"estadistica/internal/config"
	apperrors "estadistica/internal/errors"
	"estadistica/internal/terminal/commands"
	"estadistica/internal/terminal/export"
	"estadistica/pkg/contracts"
)

// Exit codes of the CLI.
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitUsage   = 2
)

// CLI represents the command-line interface
type CLI struct {
	opts       Options
	configPath string
	logLevel   string
	jsonOutput bool
	rootCmd    *cobra.Command
}

// Options contain configuration for the CLI
type Options struct {
	Output    io.Writer
	ErrOutput io.Writer
	// App overrides parts of the application wiring.
	App app.Options
}

// NewCLI creates a new CLI instance
func NewCLI(opts Options) *CLI {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.ErrOutput == nil {
		opts.ErrOutput = os.Stderr
	}
	cli := &CLI{opts: opts}
	cli.rootCmd = cli.newRootCmd()
	return cli
}

// Execute runs the command line in args and returns the process exit code.
func (cli *CLI) Execute(ctx context.Context, args []string) int {
	cli.rootCmd.SetArgs(args)
	err := cli.rootCmd.ExecuteContext(ctx)
	code := ExitCode(err)
	if code != ExitOK {
		fmt.Fprintf(cli.opts.ErrOutput, "Error: %v\n", err)
	}
	return code
}

// ExitCode maps an error to the exit code of the CLI.
func ExitCode(err error) int {
	var appErr *apperrors.AppError
	switch {
	case err == nil:
		return ExitOK
	case errors.As(err, &appErr):
		switch appErr.Type {
		case apperrors.ErrTypeEmptyResult:
			return ExitOK
		case apperrors.ErrTypeValidation, apperrors.ErrTypeConfig:
			return ExitUsage
		}
	}
	return ExitFailure
}

func (cli *CLI) newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "estadistica",
		Short:         "Purchase and sales statistics reports",
		Long:          "Builds subtotaled statistics reports with trailing 12 month and stock coverage figures from the statistics table.",
		Version:       contracts.GetFullVersionString(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetOut(cli.opts.Output)
	cmd.SetErr(cli.opts.ErrOutput)

	pf := cmd.PersistentFlags()
	pf.StringVarP(&cli.configPath, "config", "c", "", "Path to a YAML config file (default: search config.yaml)")
	pf.StringVar(&cli.logLevel, "log-level", "", "Override the configured log level")
	pf.BoolVar(&cli.jsonOutput, "json", false, "Print results as JSON")

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return apperrors.NewAppValidationError(err.Error())
	})

	reporter := export.NewReporter(cli.opts.Output, false)
	cmd.PersistentPreRun = func(*cobra.Command, []string) {
		reporter.SetJSON(cli.jsonOutput)
	}

	cmd.AddCommand(commands.NewGenerateCmd(cli.loadApp, reporter))
	cmd.AddCommand(commands.NewColumnsCmd(cli.loadApp, reporter))
	cmd.AddCommand(commands.NewValuesCmd(cli.loadApp, reporter))
	cmd.AddCommand(commands.NewReportsCmd(cli.loadApp, reporter))
	cmd.AddCommand(commands.NewServeCmd(cli.loadApp))
	return cmd
}

// loadApp reads the configuration and wires the application.
func (cli *CLI) loadApp(context.Context) (*app.Application, error) {
	var (
		cfg *config.Config
		err error
	)
	if cli.configPath != "" {
		cfg, err = config.LoadFile(cli.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, apperrors.NewConfigError("failed to load configuration", err)
	}
	if cli.logLevel != "" {
		cfg.Logging.Level = cli.logLevel
	}
	a, err := app.New(cfg, cli.opts.App)
	if err != nil {
		return nil, err
	}
	a.Logger.Debug("configuration loaded", slog.String("config", cli.configPath))
	return a, nil
}
