package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var (
	ingestTickers  []string
	ingestQuarters []string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Fetch companies, financial statements, and transcripts for the target tickers and quarters",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		tickers := ingestTickers
		if len(tickers) == 0 {
			tickers = cfg.Pipeline.TargetTickers
		}
		quarterLabels := ingestQuarters
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

		summary, err := initOrchestrator(st).Ingest(ctx, tickers, quarters)
		if err != nil {
			return eris.Wrap(err, "ingest")
		}
		return printSummary(summary)
	},
}

func init() {
	ingestCmd.Flags().StringSliceVar(&ingestTickers, "tickers", nil, "ticker symbols to ingest (defaults to pipeline.target_tickers)")
	ingestCmd.Flags().StringSliceVar(&ingestQuarters, "quarters", nil, "quarters to ingest, e.g. 2024Q1 (defaults to pipeline.target_quarters)")
	rootCmd.AddCommand(ingestCmd)
}
