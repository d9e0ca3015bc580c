package main

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/phuslu/log"

	"github.com/seenimoa/tickerpulse/internal/analysis/sentiment"
	"github.com/seenimoa/tickerpulse/internal/config"
	"github.com/seenimoa/tickerpulse/internal/datasource"
	"github.com/seenimoa/tickerpulse/internal/logging"
	"github.com/seenimoa/tickerpulse/internal/pipeline"
	"github.com/seenimoa/tickerpulse/internal/sheets"
)

// app holds the wired run for one process.
type app struct {
	logger *log.Logger
	job    *pipeline.Job
}

// newApp validates cfg and wires news client, fetcher, scorer, aggregator,
// orchestrator and sheet client into one job.
func newApp(ctx context.Context, cfg *config.Config, dryRun bool, logOut io.Writer) (*app, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger := logging.New(cfg.Logging.Level, cfg.Logging.Format, logOut)

	client := datasource.NewAlpacaClient(cfg.News.KeyID, cfg.News.SecretKey,
		datasource.WithBaseURL(cfg.News.BaseURL),
		datasource.WithHTTPClient(&http.Client{Timeout: cfg.News.Timeout}),
		datasource.WithLogger(logger),
	)
	fetcher := datasource.NewNewsFetcher(client, cfg.FetcherConfig(),
		datasource.WithFetcherLogger(logger),
	)
	agg := pipeline.NewAggregator(fetcher, sentiment.NewLexicon(), pipeline.WithLogger(logger))
	orch := pipeline.NewOrchestrator(agg, cfg.Run.InterTickerDelay, pipeline.WithLogger(logger))

	creds, err := cfg.Credentials()
	if err != nil {
		return nil, err
	}
	sheet, err := sheets.New(ctx, cfg.SheetsConfig(), creds, logger)
	if err != nil {
		return nil, fmt.Errorf("connect to sheet: %w", err)
	}

	job := pipeline.NewJob(sheet, sheet, orch, pipeline.JobConfig{
		MaxDuration: cfg.Run.MaxDuration,
		DryRun:      dryRun,
	}, pipeline.WithLogger(logger))

	return &app{logger: logger, job: job}, nil
}
