package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/rezonia/efaktura-ingest/internal/model"
	"github.com/rezonia/efaktura-ingest/internal/parser/ubl"
)

var parseOutputFile string

var parseCmd = &cobra.Command{
	Use:   "parse [files...]",
	Short: "Parse UBL XML documents without importing",
	Long: `Parse one or more UBL e-invoice XML files and print the extracted
data. Nothing is persisted.

Examples:
  efaktura-ingest parse invoice.xml
  efaktura-ingest parse *.xml -f table
  efaktura-ingest parse invoice.xml -o parsed.json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)

	parseCmd.Flags().StringVarP(&parseOutputFile, "output", "o", "", "Output file (default: stdout)")
}

// ParseResult is one file's parse outcome
type ParseResult struct {
	File    string               `json:"file"`
	Invoice *model.ParsedInvoice `json:"invoice,omitempty"`
	Error   string               `json:"error,omitempty"`
}

func runParse(cmd *cobra.Command, args []string) error {
	files, err := collectFiles(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no files found to parse")
	}

	parser := ubl.NewParser(ubl.WithDefaultCurrency(currency))

	results := make([]*ParseResult, 0, len(files))
	for _, file := range files {
		printVerbose("Parsing: %s\n", file)
		result := &ParseResult{File: file}

		data, err := os.ReadFile(file)
		if err != nil {
			result.Error = err.Error()
		} else if inv := parser.Parse(data); inv == nil {
			result.Error = "malformed XML"
		} else {
			result.Invoice = inv
		}
		results = append(results, result)
	}

	return outputParseResults(results)
}

func outputParseResults(results []*ParseResult) error {
	out := os.Stdout
	if parseOutputFile != "" {
		f, err := os.Create(parseOutputFile)
		if err != nil {
			return fmt.Errorf("cannot create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	if outputFormat == "table" {
		w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "FILE\tNUMBER\tISSUE DATE\tSUPPLIER\tTOTAL\tCURRENCY\tERROR")
		for _, r := range results {
			if r.Invoice != nil {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t\n",
					r.File,
					r.Invoice.Number,
					formatDate(r.Invoice.IssueDate),
					r.Invoice.Supplier.Name,
					r.Invoice.TotalAmount.StringFixed(2),
					r.Invoice.Currency,
				)
			} else {
				fmt.Fprintf(w, "%s\t\t\t\t\t\t%s\n", r.File, r.Error)
			}
		}
		return w.Flush()
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

func collectFiles(args []string) ([]string, error) {
	var files []string

	for _, arg := range args {
		matches, err := filepath.Glob(arg)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %s: %w", arg, err)
		}
		if len(matches) == 0 {
			if _, err := os.Stat(arg); err != nil {
				return nil, fmt.Errorf("file not found: %s", arg)
			}
			matches = []string{arg}
		}
		files = append(files, matches...)
	}

	return files, nil
}
