package display

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aristath/alphatrack/internal/modules/analytics"
	"github.com/aristath/alphatrack/internal/modules/backtest"
)

func TestFormatDailyChange(t *testing.T) {
	assert.Equal(t, "+0.50% (+$50.00)", FormatDailyChange(50.0, 0.005))
	assert.Equal(t, "-0.50% (-$50.00)", FormatDailyChange(-50.0, -0.005))
	assert.Equal(t, "+0.00% (+$0.00)", FormatDailyChange(0, 0))
}

func TestFormatAlpha(t *testing.T) {
	assert.Equal(t, "+0.05%", FormatAlpha(0.0005))
	assert.Equal(t, "-1.20%", FormatAlpha(-0.012))
	assert.Equal(t, "+0.00%", FormatAlpha(0))
}

func TestFormatBacktestValue(t *testing.T) {
	assert.Equal(t, "+12.35%", FormatBacktestValue(0.123456))
	assert.Equal(t, "-3.1%", FormatBacktestValue(-0.031))
	assert.Equal(t, "+50%", FormatBacktestValue(0.5))
}

func TestReport(t *testing.T) {
	daily := analytics.DailyResult{
		DollarChange:  50.0,
		PercentChange: 0.005,
		Alpha:         0.0005,
	}
	bt := &backtest.Result{
		PortfolioReturn: 0.5,
		BenchmarkReturn: 0.4,
		Alpha:           0.031,
	}

	report := Report("4:30PM on 06/12/26", daily, bt, 5)

	assert.Equal(t, "===============\n"+
		"Last updated: 4:30PM on 06/12/26\n\n"+
		"[Daily] Portfolio Return: +0.50% (+$50.00)\n"+
		"[Daily] Alpha: +0.05%\n\n"+
		"[Backtest 5y] Portfolio Return: +50%\n"+
		"[Backtest 5y] Benchmark Return: +40%\n"+
		"[Backtest 5y] Alpha: +3.1%\n"+
		"===============", report)
}

func TestReportDegraded(t *testing.T) {
	daily := analytics.DailyResult{
		Degraded:      true,
		FailedTickers: []string{"AAA", "BBB"},
	}

	report := Report("11:05AM on 06/15/26", daily, nil, 5)

	assert.Contains(t, report, "unresolved tickers AAA, BBB")
	assert.NotContains(t, report, "[Backtest")
}
