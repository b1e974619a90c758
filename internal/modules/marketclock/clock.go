// Package marketclock decides whether the "as of" timestamp shown to the
// user is live wall-clock time or the prior session's fixed close time.
package marketclock

import (
	"context"
	"fmt"
	"time"

	"github.com/aristath/alphatrack/internal/domain"
	"github.com/rs/zerolog"
)

// State is the observable market-clock state.
type State int

const (
	// StateLive: the data source traded today and the market has not yet
	// closed; report the current time.
	StateLive State = iota
	// StateAfterClose: report the fixed close time on the data's date.
	StateAfterClose
	// StateLiveFallback: the source reported no last-trade timestamp;
	// report the current time, labeled as a fallback.
	StateLiveFallback
	// StateErrorFallback: the source errored; report the current time,
	// labeled as an error fallback.
	StateErrorFallback
)

func (s State) String() string {
	switch s {
	case StateLive:
		return "live"
	case StateAfterClose:
		return "after_close"
	case StateLiveFallback:
		return "live_fallback"
	case StateErrorFallback:
		return "error_fallback"
	}
	return "unknown"
}

// Status is the clock's decision: the state and the moment to report.
type Status struct {
	State State
	At    time.Time
}

// SnapshotSource is the slice of the market data source the clock needs.
type SnapshotSource interface {
	Snapshot(ctx context.Context, ticker string) (domain.QuoteSnapshot, error)
}

// Clock derives the "as of" status from the reference instrument's
// last-trade timestamp and the configured market close time of day.
type Clock struct {
	source      SnapshotSource
	closeHour   int
	closeMinute int
	now         func() time.Time
	log         zerolog.Logger
}

// New creates a new market clock with the given close time of day.
func New(source SnapshotSource, closeHour, closeMinute int, log zerolog.Logger) *Clock {
	return &Clock{
		source:      source,
		closeHour:   closeHour,
		closeMinute: closeMinute,
		now:         time.Now,
		log:         log.With().Str("service", "marketclock").Logger(),
	}
}

// Status evaluates the state machine for the reference ticker.
//
// LIVE requires both conditions: the last-trade timestamp is today's date
// and the current time is strictly before market close. Exactly at the
// close boundary the state is AFTER-CLOSE.
func (c *Clock) Status(ctx context.Context, referenceTicker string) Status {
	now := c.now()

	snap, err := c.source.Snapshot(ctx, referenceTicker)
	if err != nil {
		c.log.Warn().Err(err).Str("ticker", referenceTicker).Msg("Snapshot failed, using error fallback time")
		return Status{State: StateErrorFallback, At: now}
	}

	if snap.LastTradeTime == nil {
		return Status{State: StateLiveFallback, At: now}
	}

	lastTrade := *snap.LastTradeTime
	if sameDate(lastTrade, now) && c.beforeClose(now) {
		return Status{State: StateLive, At: now}
	}

	closeAt := time.Date(
		lastTrade.Year(), lastTrade.Month(), lastTrade.Day(),
		c.closeHour, c.closeMinute, 0, 0, lastTrade.Location(),
	)
	return Status{State: StateAfterClose, At: closeAt}
}

// Label renders a Status as the user-facing "last updated" string.
func (c *Clock) Label(ctx context.Context, referenceTicker string) string {
	status := c.Status(ctx, referenceTicker)

	switch status.State {
	case StateLive:
		return fmt.Sprintf("%s on %s", status.At.Format("3:04PM"), status.At.Format("01/02/06"))
	case StateAfterClose:
		return fmt.Sprintf("%s on %s", status.At.Format("3:04PM"), status.At.Format("01/02/06"))
	case StateLiveFallback:
		return fmt.Sprintf("%s on %s (Live Run Fallback)", status.At.Format("3:04PM"), status.At.Format("01/02/06"))
	default:
		return fmt.Sprintf("%s (Error Fallback)", status.At.Format("3:04PM"))
	}
}

func (c *Clock) beforeClose(t time.Time) bool {
	return t.Hour()*60+t.Minute() < c.closeHour*60+c.closeMinute
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
