package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "1.0.0"

	// Global flags
	verbose      bool
	outputFormat string
	dbPath       string
	tenantFlag   string
	currency     string
)

var rootCmd = &cobra.Command{
	Use:   "efaktura-ingest",
	Short: "Ingest e-invoice documents from the national exchange",
	Long: `efaktura-ingest imports external invoice documents into canonical,
tenant-scoped records.

Supports:
  - UBL Invoice and CreditNote XML (arbitrary namespace prefixes)
  - Semicolon-delimited CSV exports (heuristic column detection)

Examples:
  # Parse an XML document and print the result
  efaktura-ingest parse invoice.xml

  # Import a batch of documents for a tenant
  efaktura-ingest import *.xml export.csv --tenant <uuid>

  # Start the HTTP API
  efaktura-ingest serve --address :8080`,
	Version: version,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "format", "f", "json", "Output format (json, table)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "SQLite database path (env: EFAKTURA_DB)")
	rootCmd.PersistentFlags().StringVar(&tenantFlag, "tenant", "", "Tenant id (env: EFAKTURA_TENANT)")
	rootCmd.PersistentFlags().StringVar(&currency, "currency", "", "Default currency code (env: EFAKTURA_CURRENCY)")

	// Load from environment variables if not set via flags
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	if dbPath == "" {
		dbPath = os.Getenv("EFAKTURA_DB")
	}
	if dbPath == "" {
		dbPath = "efaktura.db"
	}
	if tenantFlag == "" {
		tenantFlag = os.Getenv("EFAKTURA_TENANT")
	}
	if currency == "" {
		currency = os.Getenv("EFAKTURA_CURRENCY")
	}
	if currency == "" {
		currency = "RSD"
	}
}

func printVerbose(format string, args ...interface{}) {
	if verbose {
		fmt.Fprintf(os.Stderr, format, args...)
	}
}
