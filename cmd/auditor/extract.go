package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract quantitative claims from every transcript without any",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openMigratedStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		summary, err := initOrchestrator(st).Extract(ctx)
		if err != nil {
			return eris.Wrap(err, "extract")
		}
		return printSummary(summary)
	},
}

func init() {
	rootCmd.AddCommand(extractCmd)
}
