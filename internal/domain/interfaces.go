package domain

import (
	"context"
	"time"
)

// MarketDataSource is the external market-data collaborator. Implementations
// are expected to be slow and fallible: callers treat every error as "this
// tier of data is unavailable" and fall back, never retry.
//
// Consumers that need only a slice of this contract define their own narrow
// interfaces; this is the full surface an implementation must provide.
type MarketDataSource interface {
	// Snapshot returns the current quote fields for one ticker.
	Snapshot(ctx context.Context, ticker string) (QuoteSnapshot, error)

	// DailyHistory returns up to `days` recent daily bars, oldest first.
	DailyHistory(ctx context.Context, ticker string, days int) ([]Bar, error)

	// IntradayHistory returns the current session's intraday bars, oldest
	// first. Sources without intraday data may return an empty slice.
	IntradayHistory(ctx context.Context, ticker string) ([]Bar, error)

	// DailyCloses returns daily closing prices per ticker over [start, end],
	// oldest first. Series lengths may differ between tickers; alignment is
	// the caller's concern.
	DailyCloses(ctx context.Context, tickers []string, start, end time.Time) (map[string][]ClosePrice, error)
}
