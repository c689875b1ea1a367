package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/clarity-labs/claim-auditor/internal/pipeline"
)

func TestParseQuarters_ParsesValidLabels(t *testing.T) {
	refs, err := parseQuarters([]string{"2024Q1", "2023Q4"})
	assert.NoError(t, err)
	assert.Equal(t, []pipeline.QuarterRef{{Year: 2024, Quarter: 1}, {Year: 2023, Quarter: 4}}, refs)
}

func TestParseQuarters_RejectsMalformedLabel(t *testing.T) {
	_, err := parseQuarters([]string{"not-a-quarter"})
	assert.Error(t, err)
}

func TestParseQuarters_RejectsOutOfRangeQuarter(t *testing.T) {
	_, err := parseQuarters([]string{"2024Q5"})
	assert.Error(t, err)
}

func TestParseQuarters_EmptyInputYieldsEmptySlice(t *testing.T) {
	refs, err := parseQuarters(nil)
	assert.NoError(t, err)
	assert.Empty(t, refs)
}
