package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Mine cross-quarter patterns of misleading communication per company",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openMigratedStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		summary, err := initOrchestrator(st).Analyze(ctx)
		if err != nil {
			return eris.Wrap(err, "analyze")
		}
		return printSummary(summary)
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
}
