package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/medfactors/internal/logging"
	"github.com/ppiankov/medfactors/internal/metrics"
	"github.com/ppiankov/medfactors/internal/server"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the engine as a JSON HTTP API",
	Long: `Serve starts an HTTP API over the same engine the CLI uses.

Endpoints:
  POST /v1/resolve       {"text": "...", "explain": false}
  POST /v1/personalize   {"research": "...", "employee": {...}}
  POST /v1/classify      employee
  POST /v1/evaluate      employee
  POST /v1/roster        {"employees": [...]}
  GET  /v1/rules/{id}
  GET  /healthz
  GET  /metrics          Prometheus

Example:
  medfactors serve --addr :8080
  MEDFACTORS_SERVER_REQUESTS_PER_SECOND=50 medfactors serve`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", ":8080", "listen address")
	serveCmd.Flags().Float64("rps", 20, "requests per second allowed per client (0 disables limiting)")
	_ = viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
	_ = viper.BindPFlag("server.requests_per_second", serveCmd.Flags().Lookup("rps"))
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(server.Options{
		Engine:  a.engine,
		Metrics: metrics.New(true),
		Logger:  a.logger,
		Config:  a.cfg.Server,
		Workers: a.cfg.Concurrency.Workers,
		Catalog: a.catalogInfo(),
	})

	a.logger.Info("serving catalog",
		logging.String("source", a.loaded.Source),
		logging.Int("rules", a.loaded.Catalog.Len()),
		logging.String("addr", a.cfg.Server.Addr),
	)
	return srv.Run(ctx)
}

