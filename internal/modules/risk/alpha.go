package risk

import (
	"context"

	"github.com/aristath/alphatrack/internal/domain"
	"github.com/aristath/alphatrack/internal/modules/quotes"
	"github.com/aristath/alphatrack/internal/modules/valuation"
	"github.com/aristath/alphatrack/pkg/formulas"
	"github.com/rs/zerolog"
)

// RiskFreeRateProvider supplies the annualized risk-free rate.
type RiskFreeRateProvider interface {
	AnnualRate(ctx context.Context) (float64, quotes.RateSource)
}

// BenchmarkValuator values a one-instrument portfolio to obtain the
// benchmark's daily percent change.
type BenchmarkValuator interface {
	Value(ctx context.Context, portfolio domain.Portfolio) valuation.Change
}

// BetaSource estimates the portfolio's beta against a benchmark.
type BetaSource interface {
	Estimate(ctx context.Context, portfolioTickers []string, benchmarkTicker string, lookbackYears int) float64
}

// AlphaCalculator computes daily Jensen's alpha: the portfolio's excess
// return over the CAPM-predicted return given beta and the risk-free rate.
type AlphaCalculator struct {
	rates              RiskFreeRateProvider
	valuator           BenchmarkValuator
	betas              BetaSource
	tradingDaysPerYear int
	lookbackYears      int
	log                zerolog.Logger
}

// NewAlphaCalculator creates a new alpha calculator.
func NewAlphaCalculator(
	rates RiskFreeRateProvider,
	valuator BenchmarkValuator,
	betas BetaSource,
	tradingDaysPerYear int,
	lookbackYears int,
	log zerolog.Logger,
) *AlphaCalculator {
	return &AlphaCalculator{
		rates:              rates,
		valuator:           valuator,
		betas:              betas,
		tradingDaysPerYear: tradingDaysPerYear,
		lookbackYears:      lookbackYears,
		log:                log.With().Str("service", "alpha").Logger(),
	}
}

// DailyAlpha evaluates the CAPM decomposition for a single trading session:
// alpha = R_p - (rfr_d + beta*(R_m - rfr_d)), where R_m is the benchmark's
// daily percent change valued as a one-share portfolio.
func (c *AlphaCalculator) DailyAlpha(ctx context.Context, portfolioDailyReturn float64, benchmarkTicker string, portfolioTickers []string) float64 {
	annualRate, rateSource := c.rates.AnnualRate(ctx)
	dailyRate := annualRate / float64(c.tradingDaysPerYear)

	benchmark := c.valuator.Value(ctx, domain.Portfolio{
		Holdings: []domain.Holding{{Ticker: benchmarkTicker, Shares: 1}},
	})

	beta := c.betas.Estimate(ctx, portfolioTickers, benchmarkTicker, c.lookbackYears)

	alpha := formulas.JensenAlpha(portfolioDailyReturn, dailyRate, beta, benchmark.PercentChange)

	c.log.Debug().
		Float64("portfolio_return", portfolioDailyReturn).
		Float64("benchmark_return", benchmark.PercentChange).
		Float64("daily_rfr", dailyRate).
		Str("rfr_source", string(rateSource)).
		Float64("beta", beta).
		Float64("alpha", alpha).
		Msg("Computed daily alpha")

	return alpha
}
