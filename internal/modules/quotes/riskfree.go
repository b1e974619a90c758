package quotes

import (
	"context"

	"github.com/rs/zerolog"
)

// RateSource tells callers whether the risk-free rate came from the market
// or from the hardcoded default, without re-parsing log output.
type RateSource string

const (
	RateSourceMarket  RateSource = "market"
	RateSourceDefault RateSource = "default"
)

// RiskFreeProvider produces an annualized risk-free rate from a
// yield-quoted reference instrument. The instrument's current price is the
// annualized yield in percentage units.
type RiskFreeProvider struct {
	resolver           *Resolver
	ticker             string
	defaultAnnualRate  float64
	tradingDaysPerYear int
	log                zerolog.Logger
}

// NewRiskFreeProvider creates a new risk-free rate provider.
func NewRiskFreeProvider(resolver *Resolver, ticker string, defaultAnnualRate float64, tradingDaysPerYear int, log zerolog.Logger) *RiskFreeProvider {
	return &RiskFreeProvider{
		resolver:           resolver,
		ticker:             ticker,
		defaultAnnualRate:  defaultAnnualRate,
		tradingDaysPerYear: tradingDaysPerYear,
		log:                log.With().Str("service", "riskfree").Logger(),
	}
}

// AnnualRate returns the annualized risk-free rate as a decimal fraction
// (0.045 for a 4.5% yield). When the yield instrument cannot be resolved it
// returns the configured default and says so in the RateSource.
func (p *RiskFreeProvider) AnnualRate(ctx context.Context) (float64, RateSource) {
	res, ok := p.resolver.Resolve(ctx, p.ticker)
	if !ok {
		p.log.Warn().
			Str("ticker", p.ticker).
			Float64("default", p.defaultAnnualRate).
			Msg("Yield instrument unresolvable, using default risk-free rate")
		return p.defaultAnnualRate, RateSourceDefault
	}
	return res.Quote.CurrentPrice / 100, RateSourceMarket
}

// DailyRate returns the per-trading-day risk-free rate.
func (p *RiskFreeProvider) DailyRate(ctx context.Context) (float64, RateSource) {
	annual, source := p.AnnualRate(ctx)
	return annual / float64(p.tradingDaysPerYear), source
}
