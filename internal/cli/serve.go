package cli

import (
	"github.com/spf13/cobra"

	"github.com/estrattori/eventi/internal/pipeline"
	"github.com/estrattori/eventi/internal/server"
	"github.com/estrattori/eventi/internal/worker"
)

var serveAddr string

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the extraction HTTP service",
	Long: `Serve exposes the pipeline over HTTP:
  POST /events        extract events from one text
  POST /events/batch  extract events from many independent items
  POST /normalize     normalize an Italian postal address
  GET  /health        annotator readiness (degraded, never crashed)

The annotation backend is initialized lazily on first use and shared across
requests.

Example:
  eventi serve --addr :8080
  EVENTI_ANNOTATE_BACKEND=ner eventi serve`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config, :8080)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}

	annotator := buildAnnotator(cfg)
	p, err := pipeline.New(cfg, annotator)
	if err != nil {
		return err
	}

	batch := worker.NewBatchProcessor(p, cfg.Concurrency.BatchWorkers)
	srv := server.New(p, batch, annotator, cfg.Annotate.Backend, cfg.Output.Verbose)
	return srv.ListenAndServe(cfg.Server.Addr)
}
