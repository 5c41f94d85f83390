package cli

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/matzehuels/scopegraph/pkg/observability/prom"
	"github.com/matzehuels/scopegraph/pkg/server"
)

// serveCommand creates the serve command, which exposes a materialized
// graph over HTTP until interrupted.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve <definition.toml>",
		Short: "Serve unit and resource lookups over HTTP",
		Long: `Serve unit and resource lookups over HTTP.

The definition is materialized once at startup and released on shutdown.
Prometheus metrics for materialization, lookups and the artifact cache are
served at /metrics.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
			prom.New(reg).Install()

			l, err := c.materialize(ctx, args[0])
			if err != nil {
				return err
			}
			defer func() {
				if err := l.Close(); err != nil {
					logger.Error("release graph", "error", err)
				}
			}()

			if addr == "" {
				addr = c.settings.ListenAddr
			}
			srv := server.New(l.graph, server.Options{
				Addr:       addr,
				Definition: l.def,
				Metrics:    promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
				Logger:     logger,
			})
			printInfo(c.Out, "Listening on %s", StyleLink.Render(srv.Addr()))
			return srv.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from settings)")

	return cmd
}
