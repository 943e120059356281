package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rezonia/efaktura-ingest/internal/store"
	"github.com/rezonia/efaktura-ingest/pkg/ingestlib"
)

var (
	importDirection string
	importTimeout   time.Duration
)

var importCmd = &cobra.Command{
	Use:   "import [files...]",
	Short: "Import documents into the document store",
	Long: `Import one or more document files for a tenant. XML and CSV files
may be mixed; the format is auto-detected per file.

Already-imported documents (same source id for the tenant) are skipped.
A malformed row or a failed record never aborts the batch; problems are
reported per item at the end.

Examples:
  efaktura-ingest import invoice.xml --tenant 5f8d7a3e-...
  efaktura-ingest import export.csv --tenant 5f8d7a3e-... --direction sales
  efaktura-ingest import inbox/*.xml --tenant 5f8d7a3e-... --db ./efaktura.db`,
	Args: cobra.MinimumNArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().StringVar(&importDirection, "direction", "purchase", "Document direction (purchase, sales)")
	importCmd.Flags().DurationVar(&importTimeout, "timeout", 5*time.Minute, "Import timeout for the whole batch")
}

func runImport(cmd *cobra.Command, args []string) error {
	if tenantFlag == "" {
		return fmt.Errorf("tenant id is required (--tenant or EFAKTURA_TENANT)")
	}
	tenantID, err := uuid.Parse(tenantFlag)
	if err != nil {
		return fmt.Errorf("invalid tenant id: %w", err)
	}

	direction := ingestlib.DirectionPurchase
	if importDirection == string(ingestlib.DirectionSales) {
		direction = ingestlib.DirectionSales
	}

	files, err := collectFiles(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no files found to import")
	}

	docStore, err := store.OpenSQLite(dbPath)
	if err != nil {
		return fmt.Errorf("cannot open document store: %w", err)
	}

	logger := zerolog.Nop()
	if verbose {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	}

	importer := ingestlib.NewImporterWithOptions(docStore, ingestlib.Options{
		DefaultCurrency: currency,
		Logger:          logger,
	})

	ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
	defer cancel()
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var imported, skipped int
	var allErrors []string
	for _, file := range files {
		printVerbose("Importing: %s\n", file)

		data, err := os.ReadFile(file)
		if err != nil {
			allErrors = append(allErrors, fmt.Sprintf("%s: %v", file, err))
			continue
		}

		result, err := importer.ImportFile(ctx, tenantID, direction, data)
		if err != nil {
			allErrors = append(allErrors, fmt.Sprintf("%s: %v", file, err))
			continue
		}

		imported += result.ImportedCount
		skipped += result.SkippedCount
		for _, e := range result.Errors {
			allErrors = append(allErrors, fmt.Sprintf("%s: %s", file, e))
		}
	}

	fmt.Printf("Imported %d document(s), skipped %d already-imported\n", imported, skipped)
	if len(allErrors) > 0 {
		fmt.Printf("%d problem(s):\n", len(allErrors))
		for _, e := range allErrors {
			fmt.Printf("  - %s\n", e)
		}
	}
	return nil
}
