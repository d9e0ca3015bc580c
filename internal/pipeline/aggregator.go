package pipeline

import (
	"context"
	"fmt"

	"github.com/seenimoa/tickerpulse/internal/analysis/sentiment"
	"github.com/seenimoa/tickerpulse/pkg/models"
	"github.com/seenimoa/tickerpulse/pkg/utils"
)

// Fetcher retrieves the bounded recent article list for a normalized symbol.
// *datasource.NewsFetcher implements it.
type Fetcher interface {
	Fetch(ctx context.Context, symbol string) ([]models.NewsArticle, error)
}

// Aggregator computes the sentiment result for one ticker.
type Aggregator struct {
	fetcher Fetcher
	scorer  sentiment.Scorer
	opts    options
}

// NewAggregator creates an Aggregator over an initialized fetcher and scorer.
func NewAggregator(fetcher Fetcher, scorer sentiment.Scorer, opts ...Option) *Aggregator {
	return &Aggregator{
		fetcher: fetcher,
		scorer:  scorer,
		opts:    buildOptions(opts),
	}
}

// Compute normalizes raw, fetches its articles and averages their compound
// scores. It never fails: any error or panic for this ticker yields a NoData
// result, so one ticker cannot stop the others.
func (a *Aggregator) Compute(ctx context.Context, raw string) (result models.SentimentResult) {
	symbol := utils.NormalizeTicker(raw)
	log := a.opts.logger

	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Str("ticker", raw).
				Str("symbol", symbol).
				Str("panic", fmt.Sprint(r)).
				Msg("ticker computation panicked")
			result = models.NoData(raw, symbol, a.opts.utcNow())
		}
	}()

	if symbol == "" {
		log.Debug().Str("ticker", raw).Msg("ticker normalizes to empty symbol")
		return models.NoData(raw, symbol, a.opts.utcNow())
	}

	articles, err := a.fetcher.Fetch(ctx, symbol)
	if err != nil {
		log.Warn().
			Str("ticker", raw).
			Str("symbol", symbol).
			Err(err).
			Msg("news fetch failed")
		return models.NoData(raw, symbol, a.opts.utcNow())
	}

	sum := 0.0
	scored := 0
	for _, article := range articles {
		score, err := a.score(article)
		if err != nil {
			log.Debug().
				Str("symbol", symbol).
				Str("article", article.ID).
				Err(err).
				Msg("article skipped")
			continue
		}
		sum += score
		scored++
	}

	now := a.opts.utcNow()
	if scored == 0 {
		log.Info().Str("ticker", raw).Str("symbol", symbol).Int("fetched", len(articles)).Msg("no scorable news")
		return models.NoData(raw, symbol, now)
	}

	avg := sum / float64(scored)
	log.Info().
		Str("ticker", raw).
		Str("symbol", symbol).
		Float64("average", avg).
		Int("articles", scored).
		Msg("ticker scored")
	return models.Scored(raw, symbol, avg, scored, now)
}

// score returns the validated compound score for one article.
func (a *Aggregator) score(article models.NewsArticle) (float64, error) {
	score, err := a.scorer.Score(article.Text())
	if err != nil {
		return 0, err
	}
	if err := sentiment.CheckCompound(score); err != nil {
		return 0, err
	}
	return score, nil
}
