package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/seenimoa/tickerpulse/internal/analysis/sentiment"
	"github.com/seenimoa/tickerpulse/pkg/models"
)

var runTime = time.Date(2026, 10, 14, 6, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return runTime }

// newsFetcher returns canned articles or errors per symbol and records lookups.
type newsFetcher struct {
	articles map[string][]models.NewsArticle
	errs     map[string]error
	calls    []string
}

func (f *newsFetcher) Fetch(_ context.Context, symbol string) ([]models.NewsArticle, error) {
	f.calls = append(f.calls, symbol)
	if err := f.errs[symbol]; err != nil {
		return nil, err
	}
	return f.articles[symbol], nil
}

// headlineScorer scores an article by looking up its exact text.
type headlineScorer map[string]float64

func (s headlineScorer) Score(text string) (float64, error) {
	v, ok := s[text]
	if !ok {
		return 0, errors.New("unscorable")
	}
	return v, nil
}

var _ sentiment.Scorer = headlineScorer(nil)

func headlines(hs ...string) []models.NewsArticle {
	out := make([]models.NewsArticle, len(hs))
	for i, h := range hs {
		out[i] = models.NewsArticle{ID: h, Headline: h}
	}
	return out
}

// sleepCounter counts pacing waits.
type sleepCounter struct {
	waits []time.Duration
}

func (s *sleepCounter) Sleep(_ context.Context, d time.Duration) error {
	s.waits = append(s.waits, d)
	return nil
}
