package authorship

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kamilpajak/authorship/internal/app"
	"github.com/kamilpajak/authorship/internal/server"
)

var (
	servePort int
	serveHost string
	serveWarm bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start the detection API:

  GET  /health
  POST /api/detect            {"text": "...", "extra_heuristics": true}
  POST /api/detect/file       multipart upload, field "file"
  POST /api/detect/batch      {"texts": ["...", "..."]}, streamed as server-sent events
  GET  /api/detections?limit=N
  GET  /api/detections/{id}`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to listen on (default $PORT or 8080)")
	serveCmd.Flags().StringVar(&serveHost, "host", "127.0.0.1", "Interface to bind")
	serveCmd.Flags().BoolVar(&serveWarm, "warm", false, "Load the classifier before accepting requests")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, log, app.Options{OpenStore: true, Auth: true})
	if err != nil {
		return err
	}
	defer a.Close()

	if serveWarm {
		log.Info("loading classifier")
		if err := a.Adapter.Warm(ctx); err != nil {
			return err
		}
	}

	port := cfg.Server.Port
	if servePort != 0 {
		port = fmt.Sprint(servePort)
	}
	return server.Run(ctx, fmt.Sprintf("%s:%s", serveHost, port), a.Handler(), log)
}
