// Package domain contains the core types shared across modules.
// The domain layer is pure: no infrastructure dependencies.
package domain

import "time"

// Holding is one line of a user-defined portfolio: a ticker and a share
// count. Shares may be fractional or negative (short positions are not
// treated specially).
type Holding struct {
	Ticker string  `json:"ticker"`
	Shares float64 `json:"shares"`
}

// Portfolio is an ordered sequence of holdings. Ticker uniqueness is not
// enforced: duplicates simply double-count. A portfolio is immutable for
// the duration of a calculation pass.
type Portfolio struct {
	Holdings []Holding `json:"holdings"`
}

// Tickers returns the tickers in holding order, duplicates included.
func (p Portfolio) Tickers() []string {
	tickers := make([]string, len(p.Holdings))
	for i, h := range p.Holdings {
		tickers[i] = h.Ticker
	}
	return tickers
}

// IsEmpty reports whether the portfolio has no holdings.
func (p Portfolio) IsEmpty() bool {
	return len(p.Holdings) == 0
}

// Quote is a resolved previous-close/current-price pair for one
// instrument, rounded to the instrument's precision. A Quote is either
// fully present or absent; there are no partial quotes.
type Quote struct {
	PreviousClose float64 `json:"previous_close"`
	CurrentPrice  float64 `json:"current_price"`
}

// QuoteSnapshot holds the raw per-instrument fields exposed by the market
// data source. Any field may be missing: a zero price means "not
// provided or not usable" (zero is never a valid traded price), and a nil
// LastTradeTime means the source did not report one.
type QuoteSnapshot struct {
	PreviousClose      float64
	RegularMarketPrice float64
	CurrentPrice       float64
	LastTradeTime      *time.Time
}

// Bar is one daily or intraday bar of a price history.
type Bar struct {
	Date  time.Time
	Open  float64
	Close float64
}

// ClosePrice is one observation of a bulk historical close series.
type ClosePrice struct {
	Date  time.Time
	Close float64
}
