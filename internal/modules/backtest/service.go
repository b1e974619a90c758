// Package backtest replays the risk-model computation over a multi-year
// historical window: cumulative portfolio and benchmark returns plus the
// period's Jensen's alpha.
package backtest

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/aristath/alphatrack/internal/domain"
	"github.com/aristath/alphatrack/pkg/formulas"
	"github.com/rs/zerolog"
)

// HistorySource is the slice of the market data source backtesting needs.
type HistorySource interface {
	DailyCloses(ctx context.Context, tickers []string, start, end time.Time) (map[string][]domain.ClosePrice, error)
}

// Result is the outcome of one backtest run. Returns are decimal fractions
// over the whole window, not annualized.
type Result struct {
	PortfolioReturn float64   `json:"portfolio_return"`
	BenchmarkReturn float64   `json:"benchmark_return"`
	Alpha           float64   `json:"alpha"`
	Beta            float64   `json:"beta"`
	PeriodRiskFree  float64   `json:"period_risk_free"`
	Start           time.Time `json:"start"`
	End             time.Time `json:"end"`
	Observations    int       `json:"observations"`
}

// Backtester recomputes cumulative return and alpha over a historical
// window. Each run is a pure function of the portfolio definition and
// freshly fetched market data; nothing is persisted between runs.
type Backtester struct {
	source    HistorySource
	rfrTicker string
	now       func() time.Time
	log       zerolog.Logger
}

// NewBacktester creates a new backtester. rfrTicker is the yield-quoted
// instrument whose closes provide the window's average risk-free rate.
func NewBacktester(source HistorySource, rfrTicker string, log zerolog.Logger) *Backtester {
	return &Backtester{
		source:    source,
		rfrTicker: rfrTicker,
		now:       time.Now,
		log:       log.With().Str("service", "backtest").Logger(),
	}
}

// Run backtests the portfolio against a benchmark over the trailing
// periodYears*365 days. All series are inner-joined on trading date: any
// date missing from any required series is dropped. It returns an error,
// never panics, when the aligned panel is unusable.
func (b *Backtester) Run(ctx context.Context, portfolio domain.Portfolio, benchmarkTicker string, periodYears int) (Result, error) {
	if portfolio.IsEmpty() {
		return Result{}, fmt.Errorf("portfolio has no holdings")
	}
	if periodYears <= 0 {
		return Result{}, fmt.Errorf("period must be at least one year, got %d", periodYears)
	}

	end := b.now()
	start := end.AddDate(0, 0, -periodYears*365)

	tickers := append(portfolio.Tickers(), benchmarkTicker, b.rfrTicker)
	closes, err := b.source.DailyCloses(ctx, tickers, start, end)
	if err != nil {
		return Result{}, fmt.Errorf("historical fetch failed: %w", err)
	}

	panel := alignPanel(closes, tickers)
	if len(panel.dates) < 2 {
		return Result{}, fmt.Errorf("no overlapping trading days for these tickers in the given period")
	}

	// Daily portfolio value series, duplicates double-counting naturally.
	portfolioValues := make([]float64, len(panel.dates))
	for i, date := range panel.dates {
		var value float64
		for _, holding := range portfolio.Holdings {
			value += holding.Shares * panel.closes[holding.Ticker][date]
		}
		portfolioValues[i] = value
	}

	benchmarkValues := panel.series(benchmarkTicker)
	yields := panel.series(b.rfrTicker)

	portfolioReturn, err := cumulativeReturn(portfolioValues)
	if err != nil {
		return Result{}, fmt.Errorf("portfolio series: %w", err)
	}
	benchmarkReturn, err := cumulativeReturn(benchmarkValues)
	if err != nil {
		return Result{}, fmt.Errorf("benchmark series: %w", err)
	}

	// The yield instrument quotes the annualized rate in percentage units.
	// De-annualizing by multiplying with the period length is a linear
	// approximation, not compounding.
	avgAnnualRate := formulas.Mean(yields) / 100
	periodRiskFree := avgAnnualRate * float64(periodYears)

	beta := windowBeta(portfolioValues, benchmarkValues, b.log)

	alpha := formulas.JensenAlpha(portfolioReturn, periodRiskFree, beta, benchmarkReturn)

	startDate, _ := time.Parse(dateKeyLayout, panel.dates[0])
	endDate, _ := time.Parse(dateKeyLayout, panel.dates[len(panel.dates)-1])

	result := Result{
		PortfolioReturn: portfolioReturn,
		BenchmarkReturn: benchmarkReturn,
		Alpha:           alpha,
		Beta:            beta,
		PeriodRiskFree:  periodRiskFree,
		Start:           startDate,
		End:             endDate,
		Observations:    len(panel.dates),
	}

	b.log.Info().
		Int("observations", result.Observations).
		Float64("portfolio_return", portfolioReturn).
		Float64("benchmark_return", benchmarkReturn).
		Float64("beta", beta).
		Float64("alpha", alpha).
		Msg("Backtest complete")

	return result, nil
}

// windowBeta estimates beta over the backtest window from daily returns as
// Cov(portfolio, benchmark) / Var(benchmark). This is a distinct estimator
// from the OLS fit used for daily alpha, though numerically equivalent for
// a single regressor.
func windowBeta(portfolioValues, benchmarkValues []float64, log zerolog.Logger) float64 {
	portfolioReturns := formulas.CalculateReturns(portfolioValues)
	benchmarkReturns := formulas.CalculateReturns(benchmarkValues)

	variance := formulas.Variance(benchmarkReturns)
	if variance == 0 {
		log.Warn().Msg("Benchmark variance is zero over the window, using neutral beta")
		return 1.0
	}
	return formulas.Covariance(benchmarkReturns, portfolioReturns) / variance
}

// cumulativeReturn computes (last - first) / first over a value series.
func cumulativeReturn(values []float64) (float64, error) {
	if len(values) == 0 {
		return 0, fmt.Errorf("empty series")
	}
	first := values[0]
	if first == 0 {
		return 0, fmt.Errorf("series starts at zero value")
	}
	return (values[len(values)-1] - first) / first, nil
}

const dateKeyLayout = "2006-01-02"

// alignedPanel is a set of close series restricted to the trading dates
// shared by every ticker, sorted ascending.
type alignedPanel struct {
	dates  []string
	closes map[string]map[string]float64 // ticker -> date -> close
}

func (p alignedPanel) series(ticker string) []float64 {
	values := make([]float64, len(p.dates))
	for i, date := range p.dates {
		values[i] = p.closes[ticker][date]
	}
	return values
}

// alignPanel inner-joins all series on trading date, the common-trading-days
// policy: a date survives only if every ticker has a close for it.
func alignPanel(closes map[string][]domain.ClosePrice, tickers []string) alignedPanel {
	byTicker := make(map[string]map[string]float64, len(tickers))
	for _, ticker := range tickers {
		dated := make(map[string]float64, len(closes[ticker]))
		for _, cp := range closes[ticker] {
			if cp.Close != 0 {
				dated[cp.Date.Format(dateKeyLayout)] = cp.Close
			}
		}
		byTicker[ticker] = dated
	}

	var dates []string
	for date := range byTicker[tickers[0]] {
		shared := true
		for _, ticker := range tickers[1:] {
			if _, ok := byTicker[ticker][date]; !ok {
				shared = false
				break
			}
		}
		if shared {
			dates = append(dates, date)
		}
	}
	sort.Strings(dates)

	return alignedPanel{dates: dates, closes: byTicker}
}
