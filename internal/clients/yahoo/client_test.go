package yahoo

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshot(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v7/finance/quote", r.URL.Path)
		assert.Equal(t, "AAPL", r.URL.Query().Get("symbols"))
		assert.Contains(t, r.Header.Get("User-Agent"), "Mozilla")

		fmt.Fprint(w, `{"quoteResponse":{"result":[{
			"symbol":"AAPL",
			"previousClose":182.31,
			"regularMarketPrice":184.02,
			"regularMarketTime":1718451000
		}],"error":null}}`)
	}))
	defer server.Close()

	client := NewClient(zerolog.Nop(), WithBaseURL(server.URL))
	snap, err := client.Snapshot(context.Background(), "AAPL")
	require.NoError(t, err)

	assert.Equal(t, 182.31, snap.PreviousClose)
	assert.Equal(t, 184.02, snap.RegularMarketPrice)
	assert.Equal(t, 0.0, snap.CurrentPrice)
	require.NotNil(t, snap.LastTradeTime)
	assert.Equal(t, int64(1718451000), snap.LastTradeTime.Unix())
}

func TestSnapshotMissingTimestamp(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"quoteResponse":{"result":[{"symbol":"AAPL","previousClose":100.0}],"error":null}}`)
	}))
	defer server.Close()

	client := NewClient(zerolog.Nop(), WithBaseURL(server.URL))
	snap, err := client.Snapshot(context.Background(), "AAPL")
	require.NoError(t, err)

	assert.Nil(t, snap.LastTradeTime)
}

func TestSnapshotEmptyResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"quoteResponse":{"result":[],"error":null}}`)
	}))
	defer server.Close()

	client := NewClient(zerolog.Nop(), WithBaseURL(server.URL))
	_, err := client.Snapshot(context.Background(), "NOPE")
	assert.Error(t, err)
}

func TestSnapshotHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "too many requests", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient(zerolog.Nop(), WithBaseURL(server.URL))
	_, err := client.Snapshot(context.Background(), "AAPL")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func chartBody(timestamps []int64, closes []float64) string {
	ts := make([]string, len(timestamps))
	for i, v := range timestamps {
		ts[i] = fmt.Sprintf("%d", v)
	}
	cl := make([]string, len(closes))
	for i, v := range closes {
		cl[i] = fmt.Sprintf("%g", v)
	}
	return fmt.Sprintf(
		`{"chart":{"result":[{"timestamp":[%s],"indicators":{"quote":[{"close":[%s]}]}}],"error":null}}`,
		strings.Join(ts, ","), strings.Join(cl, ","),
	)
}

func TestDailyHistory(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v8/finance/chart/AAPL", r.URL.Path)
		assert.Equal(t, "1d", r.URL.Query().Get("interval"))
		assert.Equal(t, "2d", r.URL.Query().Get("range"))

		fmt.Fprint(w, chartBody([]int64{1718300000, 1718386400}, []float64{181.5, 182.3}))
	}))
	defer server.Close()

	client := NewClient(zerolog.Nop(), WithBaseURL(server.URL))
	bars, err := client.DailyHistory(context.Background(), "AAPL", 2)
	require.NoError(t, err)

	require.Len(t, bars, 2)
	assert.Equal(t, 181.5, bars[0].Close)
	assert.Equal(t, 182.3, bars[1].Close)
}

func TestDailyHistorySkipsZeroedBars(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, chartBody([]int64{1718300000, 1718386400, 1718472800}, []float64{181.5, 0, 183.0}))
	}))
	defer server.Close()

	client := NewClient(zerolog.Nop(), WithBaseURL(server.URL))
	bars, err := client.DailyHistory(context.Background(), "AAPL", 3)
	require.NoError(t, err)

	require.Len(t, bars, 2)
	assert.Equal(t, 181.5, bars[0].Close)
	assert.Equal(t, 183.0, bars[1].Close)
}

func TestIntradayHistoryParams(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "5m", r.URL.Query().Get("interval"))
		assert.Equal(t, "1d", r.URL.Query().Get("range"))

		fmt.Fprint(w, chartBody([]int64{1718451000}, []float64{184.1}))
	}))
	defer server.Close()

	client := NewClient(zerolog.Nop(), WithBaseURL(server.URL))
	bars, err := client.IntradayHistory(context.Background(), "AAPL")
	require.NoError(t, err)

	require.Len(t, bars, 1)
	assert.Equal(t, 184.1, bars[0].Close)
}

func TestDailyCloses(t *testing.T) {
	var requests []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests = append(requests, r.URL.Path)
		assert.NotEmpty(t, r.URL.Query().Get("period1"))
		assert.NotEmpty(t, r.URL.Query().Get("period2"))

		fmt.Fprint(w, chartBody([]int64{1718300000, 1718386400}, []float64{10.0, 10.5}))
	}))
	defer server.Close()

	client := NewClient(zerolog.Nop(), WithBaseURL(server.URL))
	start := time.Date(2021, 6, 14, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 6, 14, 0, 0, 0, 0, time.UTC)

	closes, err := client.DailyCloses(context.Background(), []string{"AAA", "BBB", "AAA"}, start, end)
	require.NoError(t, err)

	// The duplicate ticker is fetched once.
	assert.Len(t, requests, 2)
	require.Len(t, closes, 2)
	require.Len(t, closes["AAA"], 2)
	assert.Equal(t, 10.5, closes["AAA"][1].Close)
}

func TestDailyClosesFailsWhole(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "BAD") {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		fmt.Fprint(w, chartBody([]int64{1718300000}, []float64{10.0}))
	}))
	defer server.Close()

	client := NewClient(zerolog.Nop(), WithBaseURL(server.URL))
	_, err := client.DailyCloses(context.Background(), []string{"AAA", "BAD"}, time.Now().AddDate(-1, 0, 0), time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BAD")
}

func TestChartAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found"}}}`)
	}))
	defer server.Close()

	client := NewClient(zerolog.Nop(), WithBaseURL(server.URL))
	_, err := client.DailyHistory(context.Background(), "NOPE", 2)
	assert.Error(t, err)
}

func TestChartEmptyResultIsNotAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"chart":{"result":[],"error":null}}`)
	}))
	defer server.Close()

	client := NewClient(zerolog.Nop(), WithBaseURL(server.URL))
	bars, err := client.DailyHistory(context.Background(), "THIN", 2)
	require.NoError(t, err)
	assert.Empty(t, bars)
}
