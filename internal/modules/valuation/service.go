// Package valuation aggregates per-instrument quotes into portfolio-level
// dollar and percent change versus the prior session close.
package valuation

import (
	"context"

	"github.com/aristath/alphatrack/internal/domain"
	"github.com/aristath/alphatrack/internal/modules/quotes"
	"github.com/aristath/alphatrack/pkg/formulas"
	"github.com/rs/zerolog"
)

// QuoteResolver resolves a single instrument's quote or reports it absent.
type QuoteResolver interface {
	Resolve(ctx context.Context, ticker string) (quotes.Resolution, bool)
}

// Change is the portfolio-level valuation result. When any holding's quote
// is absent the whole result collapses to zero change, Degraded is set, and
// FailedTickers names the holdings that could not be resolved.
type Change struct {
	DollarChange  float64  `json:"dollar_change"`
	PercentChange float64  `json:"percent_change"`
	Degraded      bool     `json:"degraded"`
	FailedTickers []string `json:"failed_tickers,omitempty"`
}

// Valuator computes portfolio valuation changes.
type Valuator struct {
	resolver QuoteResolver
	log      zerolog.Logger
}

// NewValuator creates a new portfolio valuator.
func NewValuator(resolver QuoteResolver, log zerolog.Logger) *Valuator {
	return &Valuator{
		resolver: resolver,
		log:      log.With().Str("service", "valuation").Logger(),
	}
}

// Value resolves a quote per holding and aggregates the weighted change.
//
// The failure policy is all-or-nothing: one absent quote zeroes the entire
// result rather than aggregating the successful subset. This discards valid
// data for unrelated holdings and is kept deliberately; see Change.Degraded
// for how callers distinguish a collapse from a genuinely flat day.
func (v *Valuator) Value(ctx context.Context, portfolio domain.Portfolio) Change {
	resolved := make([]quotes.Resolution, 0, len(portfolio.Holdings))
	var failed []string

	for _, holding := range portfolio.Holdings {
		res, ok := v.resolver.Resolve(ctx, holding.Ticker)
		if !ok {
			failed = append(failed, holding.Ticker)
			continue
		}
		resolved = append(resolved, res)
	}

	if len(failed) > 0 {
		v.log.Warn().
			Strs("tickers", failed).
			Msg("One or more quotes absent, returning zero change for the whole portfolio")
		return Change{Degraded: true, FailedTickers: failed}
	}

	var baseline, current float64
	for i, holding := range portfolio.Holdings {
		baseline += holding.Shares * resolved[i].Quote.PreviousClose
		current += holding.Shares * resolved[i].Quote.CurrentPrice
	}

	dollarChange := formulas.Round(current-baseline, 2)

	percentChange := 0.0
	if baseline != 0 {
		percentChange = formulas.Round(dollarChange/baseline, 4)
	}

	return Change{
		DollarChange:  dollarChange,
		PercentChange: percentChange,
	}
}
