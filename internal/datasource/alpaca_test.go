package datasource

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const newsPayload = `{
  "news": [
    {
      "id": 24803233,
      "author": "Benzinga Newsdesk",
      "headline": "Bitcoin rallies past resistance",
      "summary": "<p>Spot ETF inflows &amp; strong demand.</p>",
      "content": "",
      "created_at": "2026-10-13T14:00:00Z",
      "updated_at": "2026-10-13T14:05:00Z",
      "url": "https://example.com/btc-rally",
      "symbols": ["BTCUSD"],
      "source": "benzinga",
      "images": []
    },
    {
      "id": 24803100,
      "author": "",
      "headline": "Miners extend losses",
      "summary": "",
      "content": "",
      "created_at": "2026-10-12T09:30:00Z",
      "updated_at": "2026-10-12T09:30:00Z",
      "url": "https://example.com/miners",
      "symbols": ["BTCUSD", "MARA"],
      "source": "benzinga",
      "images": []
    }
  ],
  "next_page_token": null
}`

func TestAlpacaQueryNews(t *testing.T) {
	start := time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 10, 14, 0, 0, 0, 0, time.UTC)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1beta1/news", r.URL.Path)
		assert.Equal(t, "key-id", r.Header.Get("APCA-API-KEY-ID"))
		assert.Equal(t, "secret", r.Header.Get("APCA-API-SECRET-KEY"))

		q := r.URL.Query()
		assert.Equal(t, "BTC", q.Get("symbols"))
		assert.Equal(t, "2026-09-14T00:00:00Z", q.Get("start"))
		assert.Equal(t, "2026-10-14T00:00:00Z", q.Get("end"))
		assert.Equal(t, "20", q.Get("limit"))
		assert.Equal(t, "desc", q.Get("sort"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(newsPayload))
	}))
	defer srv.Close()

	client := NewAlpacaClient("key-id", "secret", WithBaseURL(srv.URL), WithHTTPClient(srv.Client()))
	articles, err := client.QueryNews(context.Background(), NewsQuery{Symbol: "BTC", Start: start, End: end, Limit: 20})
	require.NoError(t, err)
	require.Len(t, articles, 2)

	a := articles[0]
	assert.Equal(t, "24803233", a.ID)
	assert.Equal(t, "Bitcoin rallies past resistance", a.Headline)
	assert.Equal(t, "Spot ETF inflows & strong demand.", a.Summary)
	assert.Equal(t, "https://example.com/btc-rally", a.URL)
	assert.Equal(t, "benzinga", a.Source)
	assert.Equal(t, []string{"BTCUSD"}, a.Tickers)
	assert.Equal(t, time.Date(2026, 10, 13, 14, 0, 0, 0, time.UTC), a.PublishedAt)

	assert.Equal(t, "", articles[1].Summary)
}

func TestAlpacaQueryNewsCapsLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "50", r.URL.Query().Get("limit"))
		_, _ = w.Write([]byte(`{"news":[],"next_page_token":null}`))
	}))
	defer srv.Close()

	client := NewAlpacaClient("k", "s", WithBaseURL(srv.URL+"/"))
	articles, err := client.QueryNews(context.Background(), NewsQuery{Symbol: "ETH", Limit: 500})
	require.NoError(t, err)
	assert.Empty(t, articles)
}

func TestAlpacaQueryNewsRateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-RateLimit-Reset", "1760436005")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"message":"too many requests."}`))
	}))
	defer srv.Close()

	client := NewAlpacaClient("k", "s", WithBaseURL(srv.URL))
	_, err := client.QueryNews(context.Background(), NewsQuery{Symbol: "ETH"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRateLimited))

	var rl *RateLimitError
	require.True(t, errors.As(err, &rl))
	assert.Equal(t, "ETH", rl.Symbol)
	assert.Equal(t, time.Unix(1760436005, 0).UTC(), rl.Reset)
}

func TestAlpacaQueryNewsHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer srv.Close()

	client := NewAlpacaClient("k", "s", WithBaseURL(srv.URL))
	_, err := client.QueryNews(context.Background(), NewsQuery{Symbol: "AAPL"})

	var httpErr *ErrHTTP
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusForbidden, httpErr.StatusCode)
	assert.Equal(t, "forbidden", httpErr.Body)
	assert.False(t, errors.Is(err, ErrRateLimited))
}

func TestAlpacaQueryNewsBadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"news": [`))
	}))
	defer srv.Close()

	client := NewAlpacaClient("k", "s", WithBaseURL(srv.URL))
	_, err := client.QueryNews(context.Background(), NewsQuery{Symbol: "AAPL"})
	assert.ErrorContains(t, err, "decode news for AAPL")
}

func TestParseReset(t *testing.T) {
	assert.Equal(t, time.Unix(1700000000, 0).UTC(), parseReset("1700000000"))
	assert.True(t, parseReset("").IsZero())
	assert.True(t, parseReset("soon").IsZero())
	assert.True(t, parseReset("-5").IsZero())
}

func TestCleanHTML(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"  plain text ", "plain text"},
		{"<p>Hello <b>world</b></p>", "Hello world"},
		{"Fish &amp; chips", "Fish & chips"},
		{"<div>line one</div>\n<div>line two</div>", "line one line two"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, cleanHTML(tt.in))
	}
}

func TestRateLimitErrorMessage(t *testing.T) {
	err := &RateLimitError{Symbol: "BTC", Reset: time.Date(2026, 1, 1, 0, 0, 5, 0, time.UTC)}
	assert.Contains(t, err.Error(), "resets 2026-01-01T00:00:05Z")
	assert.Contains(t, (&RateLimitError{Symbol: "BTC"}).Error(), "rate limited")
}
