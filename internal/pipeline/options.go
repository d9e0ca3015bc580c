// Package pipeline computes one news-sentiment result per spreadsheet ticker
// and assembles the results into a single output block.
//
// Data flows one way: Job → Orchestrator → Aggregator → {NormalizeTicker,
// Fetcher → sentiment.Scorer}. Nothing is kept between runs.
package pipeline

import (
	"time"

	"github.com/phuslu/log"

	"github.com/seenimoa/tickerpulse/internal/datasource"
	"github.com/seenimoa/tickerpulse/internal/logging"
)

type options struct {
	now    func() time.Time
	sleep  datasource.Sleeper
	logger *log.Logger
}

// Option configures an Aggregator, Orchestrator or Job.
type Option func(*options)

// WithClock sets the time source used for result timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// WithSleeper sets how the orchestrator waits between tickers.
func WithSleeper(s datasource.Sleeper) Option {
	return func(o *options) {
		o.sleep = s
	}
}

// WithLogger sets a logger.
func WithLogger(logger *log.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func buildOptions(opts []Option) options {
	o := options{
		now:   time.Now,
		sleep: datasource.Sleep,
	}
	for _, opt := range opts {
		opt(&o)
	}
	o.logger = logging.OrNop(o.logger)
	return o
}

// utcNow returns the option clock's current time in UTC.
func (o options) utcNow() time.Time { return o.now().UTC() }
