package metricregistry_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/clarity-labs/claim-auditor/internal/metricregistry"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, "revenue", metricregistry.Normalize("Total Revenue"))
	assert.Equal(t, "free_cash_flow", metricregistry.Normalize("FCF"))
	assert.Equal(t, "unknown_metric", metricregistry.Normalize("unknown_metric"))
	assert.Equal(t, "operating_margin", metricregistry.Normalize("  Op Margin "))
}

func TestIsDerived(t *testing.T) {
	assert.True(t, metricregistry.IsDerived("gross_margin"))
	assert.False(t, metricregistry.IsDerived("revenue"))
}

func TestCanResolve(t *testing.T) {
	assert.True(t, metricregistry.CanResolve("revenue"))
	assert.True(t, metricregistry.CanResolve("net_margin"))
	assert.False(t, metricregistry.CanResolve("bogus"))
}

func TestResolveDirect(t *testing.T) {
	metrics := map[string]float64{"revenue": 100, "capital_expenditure": -5}
	v, ok := metricregistry.Resolve("revenue", metrics)
	assert.True(t, ok)
	assert.Equal(t, 100.0, v)

	v, ok = metricregistry.Resolve("capital_expenditure", metrics)
	assert.True(t, ok)
	assert.Equal(t, 5.0, v)
}

func TestResolveDerived(t *testing.T) {
	metrics := map[string]float64{"gross_profit": 40, "revenue": 100}
	v, ok := metricregistry.Resolve("gross_margin", metrics)
	assert.True(t, ok)
	assert.InDelta(t, 40.0, v, 0.0001)

	_, ok = metricregistry.Resolve("gross_margin", map[string]float64{"gross_profit": 40, "revenue": 0})
	assert.False(t, ok)
}

func TestResolveUnknown(t *testing.T) {
	_, ok := metricregistry.Resolve("bogus", map[string]float64{})
	assert.False(t, ok)
}
