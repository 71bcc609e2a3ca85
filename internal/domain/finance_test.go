package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTrendFor(t *testing.T) {
	cases := []struct {
		change float64
		trend  Trend
		tone   Tone
	}{
		{25, TrendStrongUp, TonePositive},
		{20, TrendUp, TonePositive},
		{5, TrendNeutral, ToneNeutral},
		{-5, TrendNeutral, ToneNeutral},
		{-20, TrendDown, ToneNegative},
		{-20.1, TrendStrongDown, ToneNegative},
	}
	for _, tc := range cases {
		trend, tone := TrendFor(tc.change)
		assert.Equal(t, tc.trend, trend, "change %v", tc.change)
		assert.Equal(t, tc.tone, tone, "change %v", tc.change)
	}
}

func TestBuildInsights(t *testing.T) {
	month := time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC)
	now := time.Date(2026, time.October, 18, 0, 0, 0, 0, time.UTC)

	got := BuildInsights(month, now, "Sales", 1200, 300, 1000, 400)
	assert.Equal(t, "2026-09", got.Month)
	assert.Equal(t, 900.0, got.NetProfit)
	assert.Equal(t, 600.0, got.PreviousProfit)
	if assert.NotNil(t, got.RevenueChange) {
		assert.InDelta(t, 20.0, *got.RevenueChange, 1e-9)
	}
	if assert.NotNil(t, got.ProfitChange) {
		assert.InDelta(t, 50.0, *got.ProfitChange, 1e-9)
	}
	assert.Equal(t, TrendUp, got.Insights[0].Trend)
	assert.Equal(t, TrendStrongUp, got.Insights[1].Trend)
	// past month: projection equals actual profit
	assert.InDelta(t, 900.0, got.PredictedProfit, 1e-9)

	empty := BuildInsights(month, now, "Sales", 0, 0, 500, 0)
	assert.Len(t, empty.Insights, 1)
	assert.Equal(t, "No data for September", empty.Insights[0].Text)
}

func TestProjectProfitCurrentMonth(t *testing.T) {
	month := time.Date(2026, time.October, 1, 0, 0, 0, 0, time.UTC)
	now := time.Date(2026, time.October, 10, 12, 0, 0, 0, time.UTC)
	// 10 days elapsed of 31: daily averages extrapolated
	assert.InDelta(t, (1000.0/10-500.0/10)*31, ProjectProfit(month, now, 1000, 500), 1e-9)
}
