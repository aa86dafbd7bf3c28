package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewServeCmd creates the serve command.
func NewServeCmd(load AppLoader) *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := load(ctx)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				a.Config.Server.Port = port
				a.Server.Addr = fmt.Sprintf(":%d", port)
			}
			return a.Run(ctx)
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 0, "Listen port, overriding the configuration")
	return cmd
}
