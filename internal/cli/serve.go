package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/critpath/internal/server"
	"github.com/matzehuels/critpath/pkg/session"
)

// serveCommand creates the serve command, which runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string
	var noCache bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve editing sessions over HTTP",
		Long: `Serve starts the JSON HTTP API. Sessions live in memory and expire after
server.session_ttl of inactivity (default 2h).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.Config.Server
			if addr == "" {
				addr = cfg.Addr
			}

			runner, err := c.newRunner(cmd.Context(), noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			srv := server.New(server.Config{
				Addr:            addr,
				SessionTTL:      cfg.SessionTTL,
				CleanupInterval: cfg.CleanupInterval,
				ReadTimeout:     cfg.ReadTimeout,
				WriteTimeout:    cfg.WriteTimeout,
			}, session.NewMemoryStore(), runner, loggerFromContext(cmd.Context()))
			return srv.Run(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default: server.addr from config)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the diagram cache")

	return cmd
}
