package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rezonia/efaktura-ingest/internal/server"
	"github.com/rezonia/efaktura-ingest/internal/store"
)

var (
	serverAddr   string
	serverDebug  bool
	readTimeout  time.Duration
	writeTimeout time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start an HTTP API server for ingesting and reviewing documents.

The API provides endpoints for:
  - POST   /api/v1/ingest/xml             - Ingest a UBL XML document
  - POST   /api/v1/ingest/csv             - Ingest a CSV export
  - POST   /api/v1/parse                  - Parse XML without persisting
  - GET    /api/v1/documents              - List a tenant's documents
  - GET    /api/v1/documents/:id          - Fetch one document
  - POST   /api/v1/documents/:id/approve  - Approve a pending document
  - POST   /api/v1/documents/:id/reject   - Reject a pending document
  - POST   /api/v1/documents/:id/link     - Link to a local invoice
  - DELETE /api/v1/documents/:id          - Delete a document
  - GET    /health                        - Health check

All /api/v1 document endpoints require the X-Tenant-ID header.

Examples:
  efaktura-ingest serve
  efaktura-ingest serve --address :8080 --db ./efaktura.db
  efaktura-ingest serve --debug`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serverAddr, "address", ":8080", "Server listen address")
	serveCmd.Flags().BoolVar(&serverDebug, "debug", false, "Enable debug mode")
	serveCmd.Flags().DurationVar(&readTimeout, "read-timeout", 30*time.Second, "HTTP read timeout")
	serveCmd.Flags().DurationVar(&writeTimeout, "write-timeout", 5*time.Minute, "HTTP write timeout")
}

func runServe(cmd *cobra.Command, args []string) error {
	docStore, err := store.OpenSQLite(dbPath)
	if err != nil {
		return fmt.Errorf("cannot open document store: %w", err)
	}

	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()
	if serverDebug {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	}

	config := &server.Config{
		Address:         serverAddr,
		DefaultCurrency: currency,
		ReadTimeout:     readTimeout,
		WriteTimeout:    writeTimeout,
		Debug:           serverDebug,
	}

	srv := server.NewServer(config, docStore, logger)

	// Handle graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info().Msg("shutting down server")
		os.Exit(0)
	}()

	logger.Info().Str("address", serverAddr).Str("db", dbPath).Msg("starting server")
	return srv.Run()
}
