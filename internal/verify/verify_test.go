package verify_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clarity-labs/claim-auditor/internal/model"
	"github.com/clarity-labs/claim-auditor/internal/verdict"
	"github.com/clarity-labs/claim-auditor/internal/verify"
)

// fakePeriods is an in-memory PeriodLookup keyed by "company/year/quarter".
type fakePeriods struct {
	periods map[string]model.FinancialPeriod
}

func newFakePeriods() *fakePeriods {
	return &fakePeriods{periods: map[string]model.FinancialPeriod{}}
}

func (f *fakePeriods) set(companyID string, year, quarter int, metrics map[string]float64) {
	f.periods[key(companyID, year, quarter)] = model.FinancialPeriod{
		CompanyID: companyID, Year: year, Quarter: quarter, Metrics: metrics,
	}
}

func (f *fakePeriods) GetFinancialPeriod(_ context.Context, companyID string, year, quarter int) (*model.FinancialPeriod, error) {
	p, ok := f.periods[key(companyID, year, quarter)]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func key(companyID string, year, quarter int) string {
	return fmt.Sprintf("%s#%d#%d", companyID, year, quarter)
}

func TestVerifyYoYGrowthVerified(t *testing.T) {
	periods := newFakePeriods()
	periods.set("C", 2025, 3, map[string]float64{"revenue": 94.93e9})
	periods.set("C", 2024, 3, map[string]float64{"revenue": 85.777e9})

	eng := verify.New(periods, verdict.DefaultTolerances())
	claim := model.Claim{
		ID: "claim-1", Metric: "revenue", MetricKind: model.MetricKindGrowthRate,
		StatedValue: 10.7, Unit: model.UnitPercent, ComparisonPeriod: model.ComparisonYearOverYear,
		IsGAAP: true,
	}

	v, err := eng.Verify(context.Background(), claim, "C", 2025, 3)
	require.NoError(t, err)
	require.NotNil(t, v.ActualValue)
	assert.InDelta(t, 10.67, *v.ActualValue, 0.05)
	require.NotNil(t, v.AccuracyScore)
	assert.GreaterOrEqual(t, *v.AccuracyScore, 0.98)
	assert.Equal(t, model.VerdictVerified, v.Verdict)
}

func TestVerifyAbsoluteWithUnitConversion(t *testing.T) {
	periods := newFakePeriods()
	periods.set("C", 2025, 3, map[string]float64{"revenue": 94.93e9})

	eng := verify.New(periods, verdict.DefaultTolerances())
	claim := model.Claim{
		ID: "claim-2", Metric: "revenue", MetricKind: model.MetricKindAbsolute,
		StatedValue: 94.9, Unit: model.UnitUSDBillions, IsGAAP: true,
	}

	v, err := eng.Verify(context.Background(), claim, "C", 2025, 3)
	require.NoError(t, err)
	require.NotNil(t, v.ActualValue)
	assert.InDelta(t, 94.93, *v.ActualValue, 0.01)
	assert.Equal(t, model.VerdictVerified, v.Verdict)
}

func TestVerifyDerivedMarginApproximatelyCorrectOrVerified(t *testing.T) {
	periods := newFakePeriods()
	periods.set("C", 2025, 3, map[string]float64{"gross_profit": 43.879e9, "revenue": 94.93e9})

	eng := verify.New(periods, verdict.DefaultTolerances())
	claim := model.Claim{
		ID: "claim-3", Metric: "gross_margin", MetricKind: model.MetricKindMargin,
		StatedValue: 46.0, Unit: model.UnitPercent, IsGAAP: true,
	}

	v, err := eng.Verify(context.Background(), claim, "C", 2025, 3)
	require.NoError(t, err)
	require.NotNil(t, v.ActualValue)
	assert.InDelta(t, 46.22, *v.ActualValue, 0.1)
	assert.Contains(t, []model.Verdict{model.VerdictVerified, model.VerdictApproximatelyCorrect}, v.Verdict)
}

func TestVerifyMisleadingGrowthOverstatement(t *testing.T) {
	periods := newFakePeriods()
	periods.set("C", 2025, 3, map[string]float64{"revenue": 94.93e9})
	periods.set("C", 2024, 3, map[string]float64{"revenue": 85.777e9})

	eng := verify.New(periods, verdict.DefaultTolerances())
	claim := model.Claim{
		ID: "claim-4", Metric: "revenue", MetricKind: model.MetricKindGrowthRate,
		StatedValue: 15.0, Unit: model.UnitPercent, ComparisonPeriod: model.ComparisonYearOverYear,
		IsGAAP: true,
	}

	v, err := eng.Verify(context.Background(), claim, "C", 2025, 3)
	require.NoError(t, err)
	require.NotNil(t, v.AccuracyScore)
	assert.InDelta(t, 0.595, *v.AccuracyScore, 0.01)
	assert.Equal(t, model.VerdictIncorrect, v.Verdict)
}

func TestVerifyNonGAAPUpgrade(t *testing.T) {
	periods := newFakePeriods()
	periods.set("C", 2025, 3, map[string]float64{"eps_diluted": 1.46})

	eng := verify.New(periods, verdict.DefaultTolerances())
	claim := model.Claim{
		ID: "claim-5", Metric: "eps_diluted", MetricKind: model.MetricKindPerShare,
		StatedValue: 1.47, Unit: model.UnitUSD, IsGAAP: false,
	}

	v, err := eng.Verify(context.Background(), claim, "C", 2025, 3)
	require.NoError(t, err)
	assert.Equal(t, model.VerdictMisleading, v.Verdict)
	assert.True(t, v.HasFlag(model.FlagGAAPNonGAAPMismatch))
}

func TestVerifyUnresolvableMetric(t *testing.T) {
	eng := verify.New(newFakePeriods(), verdict.DefaultTolerances())
	claim := model.Claim{ID: "claim-6", Metric: "bogus_metric", MetricKind: model.MetricKindAbsolute}

	v, err := eng.Verify(context.Background(), claim, "C", 2025, 3)
	require.NoError(t, err)
	assert.Equal(t, model.VerdictUnverifiable, v.Verdict)
	assert.Nil(t, v.ActualValue)
}

func TestVerifyMissingComparisonPeriodUnverifiable(t *testing.T) {
	periods := newFakePeriods()
	periods.set("C", 2025, 1, map[string]float64{"revenue": 100})

	eng := verify.New(periods, verdict.DefaultTolerances())
	claim := model.Claim{
		ID: "claim-7", Metric: "revenue", MetricKind: model.MetricKindGrowthRate,
		StatedValue: 10, Unit: model.UnitPercent, ComparisonPeriod: model.ComparisonSequential,
	}

	// Q1 sequential wraps to prior year Q4, which has no period here.
	v, err := eng.Verify(context.Background(), claim, "C", 2025, 1)
	require.NoError(t, err)
	assert.Equal(t, model.VerdictUnverifiable, v.Verdict)
}
