package verdict_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/clarity-labs/claim-auditor/internal/model"
	"github.com/clarity-labs/claim-auditor/internal/verdict"
)

func TestAssignBaseThresholds(t *testing.T) {
	assert.Equal(t, model.VerdictVerified, verdict.Assign(0.99, nil))
	assert.Equal(t, model.VerdictApproximatelyCorrect, verdict.Assign(0.92, nil))
	assert.Equal(t, model.VerdictMisleading, verdict.Assign(0.80, nil))
	assert.Equal(t, model.VerdictIncorrect, verdict.Assign(0.50, nil))
}

func TestAssignUpgradeRule(t *testing.T) {
	// Would be verified, but rounding_bias is substantive and upgrades it.
	v := verdict.Assign(0.99, []model.MisleadingFlag{model.FlagRoundingBias})
	assert.Equal(t, model.VerdictMisleading, v)

	// cherry_picked_period is not substantive; no upgrade.
	v = verdict.Assign(0.99, []model.MisleadingFlag{model.FlagCherryPickedPeriod})
	assert.Equal(t, model.VerdictVerified, v)

	// Already incorrect; flags never downgrade further or change it.
	v = verdict.Assign(0.50, []model.MisleadingFlag{model.FlagSegmentVsTotal})
	assert.Equal(t, model.VerdictIncorrect, v)
}

func TestTrustScoreNoVerifiableClaims(t *testing.T) {
	assert.Equal(t, 50.0, verdict.TrustScore(map[model.Verdict]int{
		model.VerdictUnverifiable: 5,
	}))
}

func TestTrustScoreAllVerified(t *testing.T) {
	assert.Equal(t, 100.0, verdict.TrustScore(map[model.Verdict]int{
		model.VerdictVerified: 10,
	}))
}

func TestTrustScoreMixed(t *testing.T) {
	score := verdict.TrustScore(map[model.Verdict]int{
		model.VerdictVerified:             5,
		model.VerdictApproximatelyCorrect: 3,
		model.VerdictMisleading:           1,
		model.VerdictIncorrect:            1,
	})
	assert.InDelta(t, 79.0, score, 0.5)
}
