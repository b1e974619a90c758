// Package analytics is the engine facade consumed by the CLI and the HTTP
// API: daily change plus alpha, historical backtests, and the market-clock
// "last updated" label.
package analytics

import (
	"context"

	"github.com/aristath/alphatrack/internal/domain"
	"github.com/aristath/alphatrack/internal/modules/backtest"
	"github.com/aristath/alphatrack/internal/modules/valuation"
	"github.com/rs/zerolog"
)

// Valuator computes the portfolio's daily change.
type Valuator interface {
	Value(ctx context.Context, portfolio domain.Portfolio) valuation.Change
}

// AlphaSource computes daily Jensen's alpha for a portfolio return.
type AlphaSource interface {
	DailyAlpha(ctx context.Context, portfolioDailyReturn float64, benchmarkTicker string, portfolioTickers []string) float64
}

// BacktestRunner replays the risk model over a historical window.
type BacktestRunner interface {
	Run(ctx context.Context, portfolio domain.Portfolio, benchmarkTicker string, periodYears int) (backtest.Result, error)
}

// ClockLabeler renders the "as of" label for a reference instrument.
type ClockLabeler interface {
	Label(ctx context.Context, referenceTicker string) string
}

// DailyResult is the combined single-session result.
type DailyResult struct {
	DollarChange  float64  `json:"dollar_change"`
	PercentChange float64  `json:"percent_change"`
	Alpha         float64  `json:"alpha"`
	Degraded      bool     `json:"degraded"`
	FailedTickers []string `json:"failed_tickers,omitempty"`
}

// Service orchestrates the engine modules. Every invocation recomputes
// from freshly fetched market data; no state survives between calls.
type Service struct {
	valuator        Valuator
	alphas          AlphaSource
	backtester      BacktestRunner
	clock           ClockLabeler
	benchmarkTicker string
	referenceTicker string
	log             zerolog.Logger
}

// NewService creates the analytics facade.
func NewService(
	valuator Valuator,
	alphas AlphaSource,
	backtester BacktestRunner,
	clock ClockLabeler,
	benchmarkTicker string,
	referenceTicker string,
	log zerolog.Logger,
) *Service {
	return &Service{
		valuator:        valuator,
		alphas:          alphas,
		backtester:      backtester,
		clock:           clock,
		benchmarkTicker: benchmarkTicker,
		referenceTicker: referenceTicker,
		log:             log.With().Str("service", "analytics").Logger(),
	}
}

// ComputeDaily values the portfolio against the prior session and computes
// the session's Jensen's alpha against the configured benchmark.
func (s *Service) ComputeDaily(ctx context.Context, portfolio domain.Portfolio) DailyResult {
	change := s.valuator.Value(ctx, portfolio)
	alpha := s.alphas.DailyAlpha(ctx, change.PercentChange, s.benchmarkTicker, portfolio.Tickers())

	return DailyResult{
		DollarChange:  change.DollarChange,
		PercentChange: change.PercentChange,
		Alpha:         alpha,
		Degraded:      change.Degraded,
		FailedTickers: change.FailedTickers,
	}
}

// ComputeBacktest replays the portfolio over the trailing window of
// periodYears years against the configured benchmark.
func (s *Service) ComputeBacktest(ctx context.Context, portfolio domain.Portfolio, periodYears int) (backtest.Result, error) {
	return s.backtester.Run(ctx, portfolio, s.benchmarkTicker, periodYears)
}

// LastUpdatedLabel returns the "as of" label. An empty ticker uses the
// configured reference instrument.
func (s *Service) LastUpdatedLabel(ctx context.Context, referenceTicker string) string {
	if referenceTicker == "" {
		referenceTicker = s.referenceTicker
	}
	return s.clock.Label(ctx, referenceTicker)
}
