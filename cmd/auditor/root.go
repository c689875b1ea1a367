// Command auditor runs the Claim Auditor pipeline: ingesting earnings-call
// transcripts and financial statements, extracting quantitative claims,
// verifying them against reported data, and mining cross-quarter patterns
// of misleading communication.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/clarity-labs/claim-auditor/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "auditor",
	Short: "Claim Auditor pipeline",
	Long:  "Ingests earnings-call transcripts and financial statements, extracts executive claims, verifies them against reported data, and mines cross-quarter patterns of misleading communication.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		if redacted, err := cfg.Redacted(); err == nil {
			zap.L().Debug("config loaded", zap.String("config", redacted))
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
