package finmath_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/clarity-labs/claim-auditor/internal/finmath"
)

func TestGrowthRate(t *testing.T) {
	v := finmath.GrowthRate(110, 100)
	require := assert.New(t)
	require.NotNil(v)
	require.InDelta(10.0, *v, 0.0001)

	require.Nil(finmath.GrowthRate(50, 0))

	v2 := finmath.GrowthRate(-90, -100)
	require.NotNil(v2)
	require.InDelta(10.0, *v2, 0.0001)
}

func TestMargin(t *testing.T) {
	v := finmath.Margin(25, 100)
	assert.NotNil(t, v)
	assert.InDelta(t, 25.0, *v, 0.0001)

	assert.Nil(t, finmath.Margin(25, 0))
}

func TestBasisPointConversions(t *testing.T) {
	assert.InDelta(t, 1.5, finmath.BasisPointsToPercentage(150), 0.0001)
	assert.InDelta(t, 150.0, finmath.PercentageToBasisPoints(1.5), 0.0001)
}

func TestNormalizeToUnit(t *testing.T) {
	assert.InDelta(t, 2.5, finmath.NormalizeToUnit(2_500_000_000.0, "usd_billions"), 0.0001)
	assert.InDelta(t, 2.5, finmath.NormalizeToUnit(2_500_000.0, "usd_millions"), 0.0001)
	assert.InDelta(t, 2.5, finmath.NormalizeToUnit(2.5, "usd"), 0.0001)
}

func TestAccuracyScore(t *testing.T) {
	assert.InDelta(t, 1.0, finmath.AccuracyScore(100, 100), 0.0001)
	assert.InDelta(t, 0.9, finmath.AccuracyScore(90, 100), 0.0001)
	assert.Equal(t, 0.0, finmath.AccuracyScore(200, 100))
	assert.Equal(t, 1.0, finmath.AccuracyScore(0, 0))
	assert.Equal(t, 0.0, finmath.AccuracyScore(5, 0))
}

func TestPercentageDifference(t *testing.T) {
	v := finmath.PercentageDifference(110, 100)
	assert.NotNil(t, v)
	assert.InDelta(t, 10.0, *v, 0.0001)
	assert.Nil(t, finmath.PercentageDifference(10, 0))
}
