// Package display renders engine results for the console. All formatting
// lives here; the engine itself only produces numbers.
package display

import (
	"fmt"
	"strings"

	"github.com/aristath/alphatrack/internal/modules/analytics"
	"github.com/aristath/alphatrack/internal/modules/backtest"
	"github.com/aristath/alphatrack/pkg/formulas"
)

// FormatDailyChange renders a daily result as "+0.50% (+$50.00)" or
// "-0.50% (-$50.00)".
func FormatDailyChange(dollarChange, percentChange float64) string {
	if dollarChange < 0 {
		return fmt.Sprintf("-%.2f%% (-$%.2f)", -percentChange*100, -dollarChange)
	}
	return fmt.Sprintf("+%.2f%% (+$%.2f)", percentChange*100, dollarChange)
}

// FormatAlpha renders a daily alpha fraction as a signed percentage,
// e.g. "+0.05%".
func FormatAlpha(alpha float64) string {
	return fmt.Sprintf("%+.2f%%", alpha*100)
}

// FormatBacktestValue renders a cumulative-return fraction as a signed
// percentage: the fraction is rounded to 4 decimal places before scaling,
// so trailing zeros are dropped ("+12.35%", "-3.1%").
func FormatBacktestValue(v float64) string {
	return fmt.Sprintf("%+g%%", 100*formulas.Round(v, 4))
}

// Report assembles the full console report block.
func Report(lastUpdated string, daily analytics.DailyResult, bt *backtest.Result, backtestYears int) string {
	var b strings.Builder

	b.WriteString("===============\n")
	fmt.Fprintf(&b, "Last updated: %s\n\n", lastUpdated)

	fmt.Fprintf(&b, "[Daily] Portfolio Return: %s\n", FormatDailyChange(daily.DollarChange, daily.PercentChange))
	fmt.Fprintf(&b, "[Daily] Alpha: %s\n", FormatAlpha(daily.Alpha))
	if daily.Degraded {
		fmt.Fprintf(&b, "[Daily] Warning: unresolved tickers %s, change reported as zero\n",
			strings.Join(daily.FailedTickers, ", "))
	}

	if bt != nil {
		b.WriteString("\n")
		fmt.Fprintf(&b, "[Backtest %dy] Portfolio Return: %s\n", backtestYears, FormatBacktestValue(bt.PortfolioReturn))
		fmt.Fprintf(&b, "[Backtest %dy] Benchmark Return: %s\n", backtestYears, FormatBacktestValue(bt.BenchmarkReturn))
		fmt.Fprintf(&b, "[Backtest %dy] Alpha: %s\n", backtestYears, FormatBacktestValue(bt.Alpha))
	}
	b.WriteString("===============")

	return b.String()
}
