package quotes

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/alphatrack/internal/domain"
)

// fakeSource is a scriptable DataSource that counts calls, so tests can
// verify both tier ordering and that cached fetches are not repeated.
type fakeSource struct {
	snapshot     domain.QuoteSnapshot
	snapshotErr  error
	daily        []domain.Bar
	dailyErr     error
	intraday     []domain.Bar
	intradayErr  error
	snapshotCall int
	dailyCalls   int
	intraCalls   int
}

func (f *fakeSource) Snapshot(_ context.Context, _ string) (domain.QuoteSnapshot, error) {
	f.snapshotCall++
	return f.snapshot, f.snapshotErr
}

func (f *fakeSource) DailyHistory(_ context.Context, _ string, _ int) ([]domain.Bar, error) {
	f.dailyCalls++
	return f.daily, f.dailyErr
}

func (f *fakeSource) IntradayHistory(_ context.Context, _ string) ([]domain.Bar, error) {
	f.intraCalls++
	return f.intraday, f.intradayErr
}

func newTestResolver(src DataSource) *Resolver {
	return NewResolver(src, "^TNX", zerolog.Nop())
}

func TestResolveFromSnapshot(t *testing.T) {
	src := &fakeSource{
		snapshot: domain.QuoteSnapshot{
			PreviousClose:      101.237,
			RegularMarketPrice: 103.451,
		},
	}

	res, ok := newTestResolver(src).Resolve(context.Background(), "AAPL")
	require.True(t, ok)

	assert.Equal(t, 101.24, res.Quote.PreviousClose)
	assert.Equal(t, 103.45, res.Quote.CurrentPrice)
	assert.Equal(t, SourceSnapshotPreviousClose, res.PreviousCloseSource)
	assert.Equal(t, SourceSnapshotRegularMarket, res.CurrentPriceSource)

	assert.Equal(t, 1, src.snapshotCall)
	assert.Equal(t, 0, src.dailyCalls)
	assert.Equal(t, 0, src.intraCalls)
}

func TestResolveYieldTickerPrecision(t *testing.T) {
	src := &fakeSource{
		snapshot: domain.QuoteSnapshot{
			PreviousClose:      4.12343,
			RegularMarketPrice: 4.23456,
		},
	}

	res, ok := newTestResolver(src).Resolve(context.Background(), "^TNX")
	require.True(t, ok)

	assert.Equal(t, 4.1234, res.Quote.PreviousClose)
	assert.Equal(t, 4.2346, res.Quote.CurrentPrice)
}

func TestResolveCurrentPriceFallsBackToCurrentPriceField(t *testing.T) {
	src := &fakeSource{
		snapshot: domain.QuoteSnapshot{
			PreviousClose: 50,
			CurrentPrice:  51.5,
		},
	}

	res, ok := newTestResolver(src).Resolve(context.Background(), "MRK")
	require.True(t, ok)

	assert.Equal(t, 51.5, res.Quote.CurrentPrice)
	assert.Equal(t, SourceSnapshotCurrentPrice, res.CurrentPriceSource)
}

func TestResolveZeroFieldsFallBackToHistory(t *testing.T) {
	src := &fakeSource{
		snapshot: domain.QuoteSnapshot{}, // all fields zero, nothing usable
		daily: []domain.Bar{
			{Close: 98.7},
			{Close: 99.9},
		},
	}

	res, ok := newTestResolver(src).Resolve(context.Background(), "BKR")
	require.True(t, ok)

	// Second-most-recent bar for the previous close, latest for the price.
	assert.Equal(t, 98.7, res.Quote.PreviousClose)
	assert.Equal(t, 99.9, res.Quote.CurrentPrice)
	assert.Equal(t, SourceDailyHistory, res.PreviousCloseSource)
	assert.Equal(t, SourceDailyHistory, res.CurrentPriceSource)

	// The 2-day history is fetched once and shared across both fields.
	assert.Equal(t, 1, src.dailyCalls)
}

func TestResolveSingleBarHistory(t *testing.T) {
	src := &fakeSource{
		daily: []domain.Bar{{Close: 42.0}},
	}

	res, ok := newTestResolver(src).Resolve(context.Background(), "PINS")
	require.True(t, ok)

	assert.Equal(t, 42.0, res.Quote.PreviousClose)
	assert.Equal(t, 42.0, res.Quote.CurrentPrice)
}

func TestResolveIntradayIsLastResortForPrice(t *testing.T) {
	src := &fakeSource{
		snapshot: domain.QuoteSnapshot{PreviousClose: 10},
		dailyErr: errors.New("chart unavailable"),
		intraday: []domain.Bar{{Close: 10.2}, {Close: 10.4}},
	}

	res, ok := newTestResolver(src).Resolve(context.Background(), "CF")
	require.True(t, ok)

	assert.Equal(t, 10.4, res.Quote.CurrentPrice)
	assert.Equal(t, SourceIntradayHistory, res.CurrentPriceSource)
}

func TestResolveAbsentWhenNoPreviousClose(t *testing.T) {
	src := &fakeSource{
		snapshot: domain.QuoteSnapshot{RegularMarketPrice: 55},
		dailyErr: errors.New("no data"),
	}

	_, ok := newTestResolver(src).Resolve(context.Background(), "GONE")
	assert.False(t, ok)
}

func TestResolveAbsentWhenNoCurrentPrice(t *testing.T) {
	src := &fakeSource{
		snapshot:    domain.QuoteSnapshot{PreviousClose: 12},
		dailyErr:    errors.New("no data"),
		intradayErr: errors.New("no data"),
	}

	_, ok := newTestResolver(src).Resolve(context.Background(), "HALF")
	assert.False(t, ok)
}

func TestResolveSwallowsSourceErrors(t *testing.T) {
	src := &fakeSource{
		snapshotErr: errors.New("quote endpoint down"),
		daily:       []domain.Bar{{Close: 20.0}, {Close: 21.0}},
	}

	res, ok := newTestResolver(src).Resolve(context.Background(), "AAPL")
	require.True(t, ok)

	assert.Equal(t, 20.0, res.Quote.PreviousClose)
	assert.Equal(t, 21.0, res.Quote.CurrentPrice)
	// Failed snapshot is attempted once and then remembered as failed.
	assert.Equal(t, 1, src.snapshotCall)
}
