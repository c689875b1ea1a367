package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/clarity-labs/claim-auditor/internal/pipeline"
)

var (
	runTickers  []string
	runQuarters []string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run ingest, extract, verify, and analyze in sequence",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		tickers := runTickers
		if len(tickers) == 0 {
			tickers = cfg.Pipeline.TargetTickers
		}
		quarterLabels := runQuarters
		if len(quarterLabels) == 0 {
			quarterLabels = cfg.Pipeline.TargetQuarters
		}
		quarters, err := parseQuarters(quarterLabels)
		if err != nil {
			return err
		}

		st, err := openMigratedStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		o := initOrchestrator(st)
		var summaries []pipeline.StageSummary

		ingestSummary, err := o.Ingest(ctx, tickers, quarters)
		if err != nil {
			return eris.Wrap(err, "ingest")
		}
		summaries = append(summaries, ingestSummary)

		extractSummary, err := o.Extract(ctx)
		if err != nil {
			return eris.Wrap(err, "extract")
		}
		summaries = append(summaries, extractSummary)

		verifySummary, err := o.Verify(ctx)
		if err != nil {
			return eris.Wrap(err, "verify")
		}
		summaries = append(summaries, verifySummary)

		analyzeSummary, err := o.Analyze(ctx)
		if err != nil {
			return eris.Wrap(err, "analyze")
		}
		summaries = append(summaries, analyzeSummary)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(summaries)
	},
}

func init() {
	runCmd.Flags().StringSliceVar(&runTickers, "tickers", nil, "ticker symbols to run the pipeline for (defaults to pipeline.target_tickers)")
	runCmd.Flags().StringSliceVar(&runQuarters, "quarters", nil, "quarters to run the pipeline for, e.g. 2024Q1 (defaults to pipeline.target_quarters)")
	rootCmd.AddCommand(runCmd)
}
