package datasource

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seenimoa/tickerpulse/pkg/models"
)

var fixedNow = time.Unix(1_760_436_000, 0).UTC()

// fakeAPI replays one scripted response per call.
type fakeAPI struct {
	responses []fakeResponse
	queries   []NewsQuery
}

type fakeResponse struct {
	articles []models.NewsArticle
	err      error
}

func (f *fakeAPI) QueryNews(_ context.Context, q NewsQuery) ([]models.NewsArticle, error) {
	f.queries = append(f.queries, q)
	i := len(f.queries) - 1
	if i >= len(f.responses) {
		return nil, errors.New("unexpected call")
	}
	return f.responses[i].articles, f.responses[i].err
}

// recordingSleeper records requested waits without blocking.
type recordingSleeper struct {
	waits []time.Duration
}

func (r *recordingSleeper) Sleep(_ context.Context, d time.Duration) error {
	r.waits = append(r.waits, d)
	return nil
}

func articles(n int) []models.NewsArticle {
	out := make([]models.NewsArticle, n)
	for i := range out {
		out[i] = models.NewsArticle{ID: strconv.Itoa(i), Headline: fmt.Sprintf("headline %d", i)}
	}
	return out
}

func newTestFetcher(api NewsAPI, sleeper *recordingSleeper, cfg FetcherConfig) *NewsFetcher {
	return NewNewsFetcher(api, cfg,
		WithClock(func() time.Time { return fixedNow }),
		WithSleeper(sleeper.Sleep),
	)
}

func TestFetchUsesLookbackWindow(t *testing.T) {
	api := &fakeAPI{responses: []fakeResponse{{articles: articles(3)}}}
	f := newTestFetcher(api, &recordingSleeper{}, FetcherConfig{})

	got, err := f.Fetch(context.Background(), "BTC")
	require.NoError(t, err)
	assert.Len(t, got, 3)

	require.Len(t, api.queries, 1)
	q := api.queries[0]
	assert.Equal(t, "BTC", q.Symbol)
	assert.Equal(t, fixedNow, q.End)
	assert.Equal(t, fixedNow.AddDate(0, 0, -30), q.Start)
	assert.Equal(t, DefaultMaxArticles, q.Limit)
}

func TestFetchTruncatesToMaxArticles(t *testing.T) {
	api := &fakeAPI{responses: []fakeResponse{{articles: articles(8)}}}
	f := newTestFetcher(api, &recordingSleeper{}, FetcherConfig{MaxArticles: 5})

	got, err := f.Fetch(context.Background(), "AAPL")
	require.NoError(t, err)
	require.Len(t, got, 5)
	for i, a := range got {
		assert.Equal(t, strconv.Itoa(i), a.ID, "truncation must keep API order")
	}
}

func TestFetchRateLimitedThenSucceeds(t *testing.T) {
	api := &fakeAPI{responses: []fakeResponse{
		{err: &RateLimitError{Symbol: "ETH", Reset: fixedNow.Add(5 * time.Second)}},
		{articles: articles(2)},
	}}
	sleeper := &recordingSleeper{}
	f := newTestFetcher(api, sleeper, FetcherConfig{})

	got, err := f.Fetch(context.Background(), "ETH")
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Len(t, api.queries, 2)
	assert.Equal(t, []time.Duration{5 * time.Second}, sleeper.waits)
	assert.Equal(t, api.queries[0], api.queries[1], "retry must repeat the same request")
}

func TestFetchRateLimitedTwiceFails(t *testing.T) {
	rl := &RateLimitError{Symbol: "ETH", Reset: fixedNow.Add(2 * time.Second)}
	api := &fakeAPI{responses: []fakeResponse{{err: rl}, {err: rl}, {articles: articles(1)}}}
	sleeper := &recordingSleeper{}
	f := newTestFetcher(api, sleeper, FetcherConfig{})

	got, err := f.Fetch(context.Background(), "ETH")
	assert.Nil(t, got)
	assert.ErrorIs(t, err, ErrRateLimited)
	assert.Len(t, api.queries, 2, "no more than one retry")
	assert.Len(t, sleeper.waits, 1)
}

func TestFetchRetryWaitClamping(t *testing.T) {
	tests := []struct {
		name  string
		reset time.Time
		want  time.Duration
	}{
		{"far future capped", fixedNow.Add(10 * time.Minute), 45 * time.Second},
		{"already passed", fixedNow.Add(-time.Minute), 0},
		{"missing header", time.Time{}, 3 * time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &fakeAPI{responses: []fakeResponse{
				{err: &RateLimitError{Symbol: "SOL", Reset: tt.reset}},
				{articles: articles(1)},
			}}
			sleeper := &recordingSleeper{}
			f := newTestFetcher(api, sleeper, FetcherConfig{MaxRateLimitWait: 45 * time.Second, FallbackWait: 3 * time.Second})

			_, err := f.Fetch(context.Background(), "SOL")
			require.NoError(t, err)
			assert.Equal(t, []time.Duration{tt.want}, sleeper.waits)
		})
	}
}

func TestFetchTransientErrorNotRetried(t *testing.T) {
	api := &fakeAPI{responses: []fakeResponse{
		{err: &ErrHTTP{StatusCode: 503, Status: "503 Service Unavailable"}},
		{articles: articles(1)},
	}}
	sleeper := &recordingSleeper{}
	f := newTestFetcher(api, sleeper, FetcherConfig{})

	_, err := f.Fetch(context.Background(), "DOGE")
	var httpErr *ErrHTTP
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, 503, httpErr.StatusCode)
	assert.Len(t, api.queries, 1)
	assert.Empty(t, sleeper.waits)
}

func TestFetchSleepCancelled(t *testing.T) {
	api := &fakeAPI{responses: []fakeResponse{
		{err: &RateLimitError{Symbol: "ETH", Reset: fixedNow.Add(time.Second)}},
		{articles: articles(1)},
	}}
	f := NewNewsFetcher(api, FetcherConfig{},
		WithClock(func() time.Time { return fixedNow }),
		WithSleeper(func(context.Context, time.Duration) error { return context.Canceled }),
	)

	_, err := f.Fetch(context.Background(), "ETH")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, api.queries, 1)
}

func TestFetcherDefaults(t *testing.T) {
	f := NewNewsFetcher(&fakeAPI{}, FetcherConfig{})
	assert.Equal(t, DefaultFetcherConfig(), f.cfg)
}

// End to end against the HTTP transport: one 429 with a reset header, then success.
func TestFetchOverHTTPRetriesOnce(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(fixedNow.Add(5*time.Second).Unix(), 10))
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(newsPayload))
	}))
	defer srv.Close()

	sleeper := &recordingSleeper{}
	f := newTestFetcher(NewAlpacaClient("k", "s", WithBaseURL(srv.URL)), sleeper, FetcherConfig{})

	got, err := f.Fetch(context.Background(), "ETH")
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.EqualValues(t, 2, calls.Load())
	assert.Equal(t, []time.Duration{5 * time.Second}, sleeper.waits)
}

func TestSleep(t *testing.T) {
	assert.NoError(t, Sleep(context.Background(), 0))
	assert.NoError(t, Sleep(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, Sleep(ctx, time.Hour), context.Canceled)
}
