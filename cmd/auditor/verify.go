package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify every unverified claim against reported financial data",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openMigratedStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		summary, err := initOrchestrator(st).Verify(ctx)
		if err != nil {
			return eris.Wrap(err, "verify")
		}
		return printSummary(summary)
	},
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}
