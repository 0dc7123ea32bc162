package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/canopy-tools/canopy/internal/server"
)

// serveCommand creates the serve command for running the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr      string
		noCache   bool
		redisAddr string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the layout HTTP API",
		Long: `Run the layout HTTP API.

The server is stateless: clients send the full document with every
request and receive the positioned document back. Layout results are
cached on disk, or in redis when --redis is given. The server runs
until interrupted and shuts down gracefully.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = c.Config.Serve.Addr
			}
			if addr == "" {
				addr = ":8787"
			}

			runner, err := c.newRunner(cmd.Context(), noCache, redisAddr)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			srv := server.New(runner, loggerFromContext(cmd.Context()))
			return srv.ListenAndServe(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default :8787)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the layout cache")
	cmd.Flags().StringVar(&redisAddr, "redis", "", "redis address for the layout cache (host:port)")

	return cmd
}
