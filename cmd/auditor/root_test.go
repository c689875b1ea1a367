package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	cmds := rootCmd.Commands()

	names := make(map[string]bool)
	for _, c := range cmds {
		names[c.Name()] = true
	}

	expected := []string{"ingest", "extract", "verify", "analyze", "run"}
	for _, name := range expected {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "auditor", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
}

func TestIngestCommand_Flags(t *testing.T) {
	flag := ingestCmd.Flags().Lookup("tickers")
	require.NotNil(t, flag, "ingest command should have --tickers flag")

	quartersFlag := ingestCmd.Flags().Lookup("quarters")
	require.NotNil(t, quartersFlag, "ingest command should have --quarters flag")
}

func TestRunCommand_Flags(t *testing.T) {
	flag := runCmd.Flags().Lookup("tickers")
	require.NotNil(t, flag, "run command should have --tickers flag")

	quartersFlag := runCmd.Flags().Lookup("quarters")
	require.NotNil(t, quartersFlag, "run command should have --quarters flag")
}
