package datasource

import (
	"context"
	"errors"
	"time"

	"github.com/phuslu/log"

	"github.com/seenimoa/tickerpulse/internal/logging"
	"github.com/seenimoa/tickerpulse/pkg/models"
	"github.com/seenimoa/tickerpulse/pkg/utils"
)

// Fetch policy defaults.
const (
	DefaultMaxArticles           = 20
	DefaultLookbackDays          = 30
	DefaultMaxRateLimitWait      = 60 * time.Second
	DefaultRateLimitFallbackWait = 10 * time.Second
)

// maxAttempts bounds a fetch to the first request plus one retry after a
// rate-limit response.
const maxAttempts = 2

// FetcherConfig holds the per-ticker fetch policy.
type FetcherConfig struct {
	MaxArticles  int
	LookbackDays int
	// MaxRateLimitWait caps the sleep before the retry.
	MaxRateLimitWait time.Duration
	// FallbackWait is used when the API gave no usable reset instant.
	FallbackWait time.Duration
}

// DefaultFetcherConfig returns the default fetch policy.
func DefaultFetcherConfig() FetcherConfig {
	return FetcherConfig{
		MaxArticles:      DefaultMaxArticles,
		LookbackDays:     DefaultLookbackDays,
		MaxRateLimitWait: DefaultMaxRateLimitWait,
		FallbackWait:     DefaultRateLimitFallbackWait,
	}
}

// NewsFetcher retrieves a bounded list of recent articles for one symbol.
type NewsFetcher struct {
	api    NewsAPI
	cfg    FetcherConfig
	now    func() time.Time
	sleep  Sleeper
	logger *log.Logger
}

// FetcherOption configures a NewsFetcher.
type FetcherOption func(*NewsFetcher)

// WithClock sets the time source.
func WithClock(now func() time.Time) FetcherOption {
	return func(f *NewsFetcher) {
		f.now = now
	}
}

// WithSleeper sets how the fetcher waits out a rate limit.
func WithSleeper(s Sleeper) FetcherOption {
	return func(f *NewsFetcher) {
		f.sleep = s
	}
}

// WithFetcherLogger sets a logger.
func WithFetcherLogger(logger *log.Logger) FetcherOption {
	return func(f *NewsFetcher) {
		f.logger = logger
	}
}

// NewNewsFetcher wraps a NewsAPI with the given policy. Zero config fields
// take their defaults.
func NewNewsFetcher(api NewsAPI, cfg FetcherConfig, opts ...FetcherOption) *NewsFetcher {
	def := DefaultFetcherConfig()
	if cfg.MaxArticles <= 0 {
		cfg.MaxArticles = def.MaxArticles
	}
	if cfg.LookbackDays <= 0 {
		cfg.LookbackDays = def.LookbackDays
	}
	if cfg.MaxRateLimitWait <= 0 {
		cfg.MaxRateLimitWait = def.MaxRateLimitWait
	}
	if cfg.FallbackWait <= 0 {
		cfg.FallbackWait = def.FallbackWait
	}

	f := &NewsFetcher{
		api:   api,
		cfg:   cfg,
		now:   time.Now,
		sleep: Sleep,
	}
	for _, opt := range opts {
		opt(f)
	}
	f.logger = logging.OrNop(f.logger)
	return f
}

// Fetch returns up to MaxArticles articles for symbol published within the
// lookback window ending now.
func (f *NewsFetcher) Fetch(ctx context.Context, symbol string) ([]models.NewsArticle, error) {
	from, to := utils.LookbackWindow(f.now(), f.cfg.LookbackDays)
	return f.FetchRange(ctx, symbol, from, to, f.cfg.MaxArticles)
}

// FetchRange requests articles in [from, to] and truncates the response to
// the first maxArticles items in API order.
//
// On a rate-limit response it sleeps until the reported reset (capped at
// MaxRateLimitWait) and retries exactly once; a second rate-limit response is
// returned as the error.
func (f *NewsFetcher) FetchRange(ctx context.Context, symbol string, from, to time.Time, maxArticles int) ([]models.NewsArticle, error) {
	q := NewsQuery{
		Symbol: symbol,
		Start:  from,
		End:    to,
		Limit:  maxArticles,
	}

	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		var articles []models.NewsArticle
		articles, err = f.api.QueryNews(ctx, q)
		if err == nil {
			return truncate(articles, maxArticles), nil
		}

		var rl *RateLimitError
		if !errors.As(err, &rl) || attempt == maxAttempts {
			break
		}

		wait := f.retryWait(rl)
		f.logger.Info().
			Str("symbol", symbol).
			Dur("wait", wait).
			Int("attempt", attempt).
			Msg("news API rate limited, waiting before retry")

		if serr := f.sleep(ctx, wait); serr != nil {
			return nil, serr
		}
	}
	return nil, err
}

// retryWait is the time until the reset instant, clamped to [0, MaxRateLimitWait].
func (f *NewsFetcher) retryWait(rl *RateLimitError) time.Duration {
	if rl.Reset.IsZero() {
		return min(f.cfg.FallbackWait, f.cfg.MaxRateLimitWait)
	}
	wait := rl.Reset.Sub(f.now())
	if wait < 0 {
		return 0
	}
	return min(wait, f.cfg.MaxRateLimitWait)
}

func truncate(articles []models.NewsArticle, n int) []models.NewsArticle {
	if n > 0 && len(articles) > n {
		return articles[:n]
	}
	return articles
}
