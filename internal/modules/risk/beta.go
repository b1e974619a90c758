// Package risk estimates the portfolio's market-model beta and computes
// Jensen's alpha for a single trading session.
package risk

import (
	"context"
	"sort"
	"time"

	"github.com/aristath/alphatrack/internal/domain"
	"github.com/aristath/alphatrack/pkg/formulas"
	"github.com/rs/zerolog"
)

// NeutralBeta is returned whenever beta cannot be estimated: too little
// aligned history, an empty portfolio, or any retrieval failure.
const NeutralBeta = 1.0

// HistorySource is the slice of the market data source beta estimation needs.
type HistorySource interface {
	DailyCloses(ctx context.Context, tickers []string, start, end time.Time) (map[string][]domain.ClosePrice, error)
}

// BetaEstimator fits portfolio daily returns against benchmark daily
// returns by ordinary least squares; the fitted slope is beta.
type BetaEstimator struct {
	source          HistorySource
	minObservations int
	now             func() time.Time
	log             zerolog.Logger
}

// NewBetaEstimator creates a new beta estimator. minObservations is the
// smallest aligned return-series length accepted before falling back to the
// neutral beta.
func NewBetaEstimator(source HistorySource, minObservations int, log zerolog.Logger) *BetaEstimator {
	return &BetaEstimator{
		source:          source,
		minObservations: minObservations,
		now:             time.Now,
		log:             log.With().Str("service", "beta").Logger(),
	}
}

// Estimate regresses the portfolio's average daily return on the
// benchmark's daily return over [now - lookbackYears, now] and returns the
// slope. Portfolio returns are an equal-weighted cross-sectional average
// per ticker per day, not weighted by share count; that is a simplification
// of true portfolio beta and is kept deliberately.
//
// The neutral beta (1.0) is returned when the portfolio has no tickers,
// when fewer than minObservations aligned dates survive, or on any fetch
// error.
func (e *BetaEstimator) Estimate(ctx context.Context, portfolioTickers []string, benchmarkTicker string, lookbackYears int) float64 {
	if len(portfolioTickers) == 0 {
		return NeutralBeta
	}

	end := e.now()
	start := end.AddDate(-lookbackYears, 0, 0)

	all := append([]string{benchmarkTicker}, portfolioTickers...)
	closes, err := e.source.DailyCloses(ctx, all, start, end)
	if err != nil {
		e.log.Warn().Err(err).Msg("Historical fetch failed, defaulting to neutral beta")
		return NeutralBeta
	}

	benchmarkReturns := dailyReturnsByDate(closes[benchmarkTicker])
	if len(benchmarkReturns) == 0 {
		e.log.Warn().Str("ticker", benchmarkTicker).Msg("No benchmark history, defaulting to neutral beta")
		return NeutralBeta
	}

	portfolioReturns := averageReturnsByDate(closes, portfolioTickers)

	// Inner join on trading date: only dates with both a benchmark return
	// and at least one portfolio ticker return are retained.
	dates := make([]string, 0, len(benchmarkReturns))
	for date := range benchmarkReturns {
		if _, ok := portfolioReturns[date]; ok {
			dates = append(dates, date)
		}
	}
	sort.Strings(dates)

	if len(dates) < e.minObservations {
		e.log.Warn().
			Int("observations", len(dates)).
			Int("required", e.minObservations).
			Msg("Insufficient aligned history, defaulting to neutral beta")
		return NeutralBeta
	}

	x := make([]float64, len(dates))
	y := make([]float64, len(dates))
	for i, date := range dates {
		x[i] = benchmarkReturns[date]
		y[i] = portfolioReturns[date]
	}

	beta := formulas.LinearRegressionSlope(x, y)
	e.log.Debug().
		Float64("beta", beta).
		Int("observations", len(dates)).
		Msg("Estimated beta")
	return beta
}

const dateKeyLayout = "2006-01-02"

// dailyReturnsByDate converts a close series into simple daily returns
// keyed by the trading date of the later close.
func dailyReturnsByDate(series []domain.ClosePrice) map[string]float64 {
	returns := make(map[string]float64)
	for i := 1; i < len(series); i++ {
		prev := series[i-1].Close
		if prev == 0 {
			continue
		}
		date := series[i].Date.Format(dateKeyLayout)
		returns[date] = (series[i].Close - prev) / prev
	}
	return returns
}

// averageReturnsByDate computes the equal-weighted cross-sectional average
// daily return across tickers. A date's average covers whichever tickers
// have a return that day.
func averageReturnsByDate(closes map[string][]domain.ClosePrice, tickers []string) map[string]float64 {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, ticker := range tickers {
		for date, ret := range dailyReturnsByDate(closes[ticker]) {
			sums[date] += ret
			counts[date]++
		}
	}

	averages := make(map[string]float64, len(sums))
	for date, sum := range sums {
		averages[date] = sum / float64(counts[date])
	}
	return averages
}
