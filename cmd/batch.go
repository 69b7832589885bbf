package main

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/outreach-cli/internal/waterfall"
)

var (
	batchCSV         string
	batchLimit       int
	batchOutput      string
	batchConcurrency int
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Resolve emails for a CSV of people",
	Long: `Reads a CSV with columns name,company,domain (header optional) and runs
the resolution waterfall over every row.`,
	Example: `  outreach-cli batch --csv prospects.csv --limit 50 --output results.json`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("resolve"); err != nil {
			return err
		}

		reqs, err := parseBatchCSV(batchCSV)
		if err != nil {
			return err
		}
		if batchLimit > 0 && len(reqs) > batchLimit {
			reqs = reqs[:batchLimit]
		}

		exec, err := buildExecutor(cfg)
		if err != nil {
			return err
		}

		opts := batchOptions(cfg)
		if batchConcurrency > 0 {
			opts.Concurrency = batchConcurrency
		}

		outcomes, err := waterfall.ResolveBatch(ctx, exec, reqs, opts)
		if err != nil {
			return eris.Wrap(err, "batch")
		}

		out := os.Stdout
		if batchOutput != "" {
			f, err := os.Create(batchOutput)
			if err != nil {
				return eris.Wrapf(err, "batch: create output %s", batchOutput)
			}
			defer f.Close()
			out = f
		}

		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(outcomes)
	},
}

func init() {
	batchCmd.Flags().StringVar(&batchCSV, "csv", "", "input CSV path (required)")
	batchCmd.Flags().IntVar(&batchLimit, "limit", 0, "max rows to process (0 = all)")
	batchCmd.Flags().StringVar(&batchOutput, "output", "", "write results to this file instead of stdout")
	batchCmd.Flags().IntVar(&batchConcurrency, "concurrency", 0, "requests in flight at once (overrides config)")
	_ = batchCmd.MarkFlagRequired("csv")
	rootCmd.AddCommand(batchCmd)
}

// parseBatchCSV reads resolution requests from a name,company,domain CSV.
// Rows that fail validation are logged and skipped.
func parseBatchCSV(path string) ([]waterfall.Request, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "batch: open csv %s", path)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	var reqs []waterfall.Request
	for line := 1; ; line++ {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrapf(err, "batch: read csv line %d", line)
		}
		if len(row) < 1 {
			continue
		}
		// Skip a header row.
		if line == 1 && row[0] == "name" {
			continue
		}

		var company, domain string
		if len(row) > 1 {
			company = row[1]
		}
		if len(row) > 2 {
			domain = row[2]
		}

		req, err := waterfall.NewRequest(row[0], company, domain)
		if err != nil {
			zap.L().Warn("skipping invalid row",
				zap.Int("line", line),
				zap.Error(err),
			)
			continue
		}
		reqs = append(reqs, req)
	}

	if len(reqs) == 0 {
		return nil, eris.Errorf("batch: no valid rows in %s", path)
	}
	return reqs, nil
}
