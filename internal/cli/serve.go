package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rshade/idbatch/internal/config"
	"github.com/rshade/idbatch/internal/logging"
	"github.com/rshade/idbatch/internal/server"
)

// bytesPerMB converts server.max_upload_mb to bytes.
const bytesPerMB = 1 << 20

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the formatter over HTTP",
		Long: `Starts an HTTP server that renders uploaded identifier tables without writing
any files.

  POST /v1/render/{idtype}   CSV body, or multipart field "file" (.csv/.xlsx)
  GET  /v1/kinds             supported identifier kinds
  GET  /healthz              liveness
  GET  /metrics              Prometheus metrics`,
		Example: `  idbatch serve --addr :9090
  curl --data-binary @ids.csv 'localhost:9090/v1/render/pidm?header=true'`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.FromContext(cmd.Context())
			if !cmd.Flags().Changed("addr") {
				addr = cfg.Server.Addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := server.New(server.Options{
				MaxUploadBytes: int64(cfg.Server.MaxUploadMB) * bytesPerMB,
				Header:         cfg.Format.Header,
				Style:          cfg.Format.Style,
				Qualifier:      cfg.Format.Qualifier,
				BatchSize:      cfg.Format.BatchSize,
			}, *logging.FromContext(ctx))

			cmd.Printf("Listening on %s\n", addr)
			return srv.ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")

	return cmd
}
