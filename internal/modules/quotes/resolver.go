// Package quotes resolves previous-close/current-price pairs from the
// market data source, degrading through fallback tiers when snapshot
// fields are missing or unusable.
package quotes

import (
	"context"
	"math"

	"github.com/aristath/alphatrack/internal/domain"
	"github.com/aristath/alphatrack/pkg/formulas"
	"github.com/rs/zerolog"
)

// DataSource is the slice of the market data source the resolver needs.
type DataSource interface {
	Snapshot(ctx context.Context, ticker string) (domain.QuoteSnapshot, error)
	DailyHistory(ctx context.Context, ticker string, days int) ([]domain.Bar, error)
	IntradayHistory(ctx context.Context, ticker string) ([]domain.Bar, error)
}

// Source identifies the fallback tier a resolved value came from, so
// callers can tell a fresh snapshot price from a history-derived one
// without re-parsing logs.
type Source string

const (
	SourceSnapshotPreviousClose Source = "snapshot.previous_close"
	SourceSnapshotRegularMarket Source = "snapshot.regular_market_price"
	SourceSnapshotCurrentPrice  Source = "snapshot.current_price"
	SourceDailyHistory          Source = "daily_history"
	SourceIntradayHistory       Source = "intraday_history"
)

// Resolution is a successfully resolved quote plus the tier each of its
// fields came from.
type Resolution struct {
	Quote               domain.Quote
	PreviousCloseSource Source
	CurrentPriceSource  Source
}

// Resolver resolves quotes with tiered fallback. Any data-source error is
// caught locally and treated as "unusable for that tier"; the resolver only
// reports an absent quote once every tier is exhausted.
type Resolver struct {
	source      DataSource
	yieldTicker string
	log         zerolog.Logger
}

// NewResolver creates a new quote resolver. yieldTicker designates the
// yield-quoted instrument that is rounded to 4 decimal places instead of 2.
func NewResolver(source DataSource, yieldTicker string, log zerolog.Logger) *Resolver {
	return &Resolver{
		source:      source,
		yieldTicker: yieldTicker,
		log:         log.With().Str("service", "quotes").Logger(),
	}
}

// tier is one fallback strategy for a single quote field. It reports the
// value and whether it was usable; fetch errors inside a tier surface as
// "not usable".
type tier struct {
	source Source
	value  func(ctx context.Context, f *fetch) (float64, bool)
}

var previousCloseTiers = []tier{
	{SourceSnapshotPreviousClose, func(ctx context.Context, f *fetch) (float64, bool) {
		snap, ok := f.snapshot(ctx)
		return snap.PreviousClose, ok && usable(snap.PreviousClose)
	}},
	{SourceDailyHistory, func(ctx context.Context, f *fetch) (float64, bool) {
		v, ok := f.previousDailyClose(ctx)
		return v, ok && usable(v)
	}},
}

var currentPriceTiers = []tier{
	{SourceSnapshotRegularMarket, func(ctx context.Context, f *fetch) (float64, bool) {
		snap, ok := f.snapshot(ctx)
		return snap.RegularMarketPrice, ok && usable(snap.RegularMarketPrice)
	}},
	{SourceSnapshotCurrentPrice, func(ctx context.Context, f *fetch) (float64, bool) {
		snap, ok := f.snapshot(ctx)
		return snap.CurrentPrice, ok && usable(snap.CurrentPrice)
	}},
	{SourceDailyHistory, func(ctx context.Context, f *fetch) (float64, bool) {
		v, ok := f.latestDailyClose(ctx)
		return v, ok && usable(v)
	}},
	{SourceIntradayHistory, func(ctx context.Context, f *fetch) (float64, bool) {
		v, ok := f.latestIntradayClose(ctx)
		return v, ok && usable(v)
	}},
}

// Resolve resolves the quote for one ticker. The second return value is
// false when the quote is absent: no usable previous close, or no usable
// current price after every fallback tier. A previous close alone is never
// reported without a current price.
func (r *Resolver) Resolve(ctx context.Context, ticker string) (Resolution, bool) {
	f := &fetch{resolver: r, ticker: ticker}

	previousClose, prevSource, ok := runTiers(ctx, f, previousCloseTiers)
	if !ok {
		r.log.Warn().Str("ticker", ticker).Msg("No usable previous close, quote absent")
		return Resolution{}, false
	}

	currentPrice, currentSource, ok := runTiers(ctx, f, currentPriceTiers)
	if !ok {
		r.log.Warn().Str("ticker", ticker).Msg("No usable current price, quote absent")
		return Resolution{}, false
	}

	precision := r.precisionFor(ticker)
	return Resolution{
		Quote: domain.Quote{
			PreviousClose: formulas.Round(previousClose, precision),
			CurrentPrice:  formulas.Round(currentPrice, precision),
		},
		PreviousCloseSource: prevSource,
		CurrentPriceSource:  currentSource,
	}, true
}

// runTiers evaluates tiers in order and returns the first usable value.
func runTiers(ctx context.Context, f *fetch, tiers []tier) (float64, Source, bool) {
	for _, t := range tiers {
		if v, ok := t.value(ctx, f); ok {
			return v, t.source, true
		}
	}
	return 0, "", false
}

// precisionFor returns the rounding precision for a ticker: 4 decimal
// places for the yield-quoted reference instrument, 2 otherwise.
func (r *Resolver) precisionFor(ticker string) int {
	if ticker == r.yieldTicker {
		return 4
	}
	return 2
}

func usable(v float64) bool {
	return v != 0 && !math.IsNaN(v) && !math.IsInf(v, 0)
}

// historyDays is the daily-history window used by the fallback tiers: two
// sessions, so the second-most-recent bar is the prior session's close.
const historyDays = 2

// fetch caches data-source responses across tiers within a single Resolve
// call, so the 2-day history fetched for the previous close is reused for
// the current-price fallback instead of issuing a duplicate request.
type fetch struct {
	resolver *Resolver
	ticker   string

	snap        domain.QuoteSnapshot
	snapLoaded  bool
	snapOK      bool
	bars        []domain.Bar
	barsLoaded  bool
	barsOK      bool
	intra       []domain.Bar
	intraLoaded bool
	intraOK     bool
}

func (f *fetch) snapshot(ctx context.Context) (domain.QuoteSnapshot, bool) {
	if !f.snapLoaded {
		f.snapLoaded = true
		snap, err := f.resolver.source.Snapshot(ctx, f.ticker)
		if err != nil {
			f.resolver.log.Warn().Err(err).Str("ticker", f.ticker).Msg("Snapshot fetch failed")
		} else {
			f.snap = snap
			f.snapOK = true
		}
	}
	return f.snap, f.snapOK
}

func (f *fetch) dailyBars(ctx context.Context) ([]domain.Bar, bool) {
	if !f.barsLoaded {
		f.barsLoaded = true
		bars, err := f.resolver.source.DailyHistory(ctx, f.ticker, historyDays)
		if err != nil {
			f.resolver.log.Warn().Err(err).Str("ticker", f.ticker).Msg("Daily history fetch failed")
		} else {
			f.bars = bars
			f.barsOK = true
		}
	}
	return f.bars, f.barsOK
}

// previousDailyClose returns the close of the second-most-recent daily bar,
// or the only bar's close when the history has a single session.
func (f *fetch) previousDailyClose(ctx context.Context) (float64, bool) {
	bars, ok := f.dailyBars(ctx)
	if !ok || len(bars) == 0 {
		return 0, false
	}
	if len(bars) >= 2 {
		return bars[len(bars)-2].Close, true
	}
	return bars[0].Close, true
}

func (f *fetch) latestDailyClose(ctx context.Context) (float64, bool) {
	bars, ok := f.dailyBars(ctx)
	if !ok || len(bars) == 0 {
		return 0, false
	}
	return bars[len(bars)-1].Close, true
}

func (f *fetch) latestIntradayClose(ctx context.Context) (float64, bool) {
	if !f.intraLoaded {
		f.intraLoaded = true
		bars, err := f.resolver.source.IntradayHistory(ctx, f.ticker)
		if err != nil {
			f.resolver.log.Warn().Err(err).Str("ticker", f.ticker).Msg("Intraday history fetch failed")
		} else {
			f.intra = bars
			f.intraOK = true
		}
	}
	if !f.intraOK || len(f.intra) == 0 {
		return 0, false
	}
	return f.intra[len(f.intra)-1].Close, true
}
