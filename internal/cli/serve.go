package cli

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/matzehuels/edgebundle/internal/server"
	"github.com/matzehuels/edgebundle/pkg/config"
	"github.com/matzehuels/edgebundle/pkg/observability/prom"
)

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	configPath string
	addr       string
	timeout    string
	maxBody    int64
	maxPoints  int
	cache      cacheFlags
}

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the bundling API over HTTP",
		Long: `Serve runs an HTTP server exposing POST /v1/bundle, GET /healthz and
GET /metrics. Results are cached like the bundle command's; point --redis at a
shared server when running several instances.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := loadConfig(opts.configPath)
			if err != nil {
				return err
			}
			settings := file.Server
			changed := cmd.Flags().Changed
			if changed("addr") || settings.Addr == "" {
				settings.Addr = opts.addr
			}
			if changed("timeout") {
				settings.Timeout = opts.timeout
			}
			if changed("max-body") {
				settings.MaxBody = opts.maxBody
			}
			if changed("max-control-points") {
				settings.MaxControlPoints = opts.maxPoints
			}
			timeout, err := settings.TimeoutDuration()
			if err != nil {
				return err
			}

			runner, err := c.newRunner(cmd.Context(), file.Cache, opts.cache)
			if err != nil {
				return err
			}
			defer runner.Close()

			reg := prometheus.NewRegistry()
			reg.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)
			prom.New(reg).Register()

			srv := server.New(runner,
				server.WithLogger(c.Logger),
				server.WithTimeout(timeout),
				server.WithMaxBody(settings.MaxBody),
				server.WithMaxControlPoints(settings.MaxControlPoints),
				server.WithDefaultConfig(file.Bundle),
				server.WithMetricsHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})),
			)

			printInfo("Serving on %s", StyleHighlight.Render(settings.Addr))
			printKeyValue("timeout", timeout.String())
			return srv.ListenAndServe(cmd.Context(), settings.Addr)
		},
	}

	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "configuration file (.toml, .yaml)")
	cmd.Flags().StringVar(&opts.addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVar(&opts.timeout, "timeout", "30s", "per-request bundling timeout")
	cmd.Flags().Int64Var(&opts.maxBody, "max-body", 8<<20, "maximum request body in bytes")
	cmd.Flags().IntVar(&opts.maxPoints, "max-control-points", config.DefaultMaxControlPoints, "maximum control points one request may allocate")
	opts.cache.register(cmd)

	return cmd
}
