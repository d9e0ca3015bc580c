// Package datasource retrieves news for a ticker symbol. It contains the news
// API transport (Alpaca News REST) and the NewsFetcher that applies the lookback
// window, the per-ticker article cap and the single rate-limit retry.
package datasource

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/seenimoa/tickerpulse/pkg/models"
)

// NewsQuery is a single request to the news API.
type NewsQuery struct {
	Symbol string
	Start  time.Time
	End    time.Time
	Limit  int
}

// NewsAPI is the news transport. Implementations return the articles in API
// order, a *RateLimitError when the API throttles the request, or any other
// error for transport and HTTP failures.
type NewsAPI interface {
	QueryNews(ctx context.Context, q NewsQuery) ([]models.NewsArticle, error)
}

// --- Sentinel errors ---

// ErrRateLimited matches any *RateLimitError via errors.Is.
var ErrRateLimited = errors.New("rate limited by news API")

// RateLimitError is returned when the API answers 429. Reset is the instant
// the API reported the quota resets; it is zero when the header was absent.
type RateLimitError struct {
	Symbol string
	Reset  time.Time
}

func (e *RateLimitError) Error() string {
	if e.Reset.IsZero() {
		return fmt.Sprintf("news for %s: %v", e.Symbol, ErrRateLimited)
	}
	return fmt.Sprintf("news for %s: %v (resets %s)", e.Symbol, ErrRateLimited, e.Reset.UTC().Format(time.RFC3339))
}

// Is reports ErrRateLimited as a match.
func (e *RateLimitError) Is(target error) bool { return target == ErrRateLimited }

// ErrHTTP wraps an HTTP error with status code.
type ErrHTTP struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *ErrHTTP) Error() string {
	return fmt.Sprintf("HTTP %d %s: %s", e.StatusCode, e.Status, e.Body)
}

// Sleeper blocks for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Sleep is the default Sleeper backed by a timer.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
