package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/seenimoa/tickerpulse/pkg/models"
)

// TickerSource supplies the ticker rows below the header, top to bottom.
type TickerSource interface {
	ReadTickers(ctx context.Context) ([]models.TickerRow, error)
}

// SheetWriter stores results: EnsureHeaders writes the output column
// headers, WriteBlock writes the whole block in one batched call.
type SheetWriter interface {
	EnsureHeaders(ctx context.Context) error
	WriteBlock(ctx context.Context, block models.OutputBlock) error
}

// Summary describes a finished run.
type Summary struct {
	models.Tally
	Rows    int           `json:"rows"`
	Written bool          `json:"written"`
	Elapsed time.Duration `json:"elapsed"`
}

// JobConfig holds run-level settings.
type JobConfig struct {
	// MaxDuration bounds ticker processing; zero means no ceiling.
	MaxDuration time.Duration
	// DryRun computes the block but skips the write.
	DryRun bool
}

// Job is one end-to-end run: ensure headers, read tickers, compute, write.
type Job struct {
	source TickerSource
	writer SheetWriter
	orch   *Orchestrator
	cfg    JobConfig
	opts   options
}

// NewJob wires a run from its collaborators.
func NewJob(source TickerSource, writer SheetWriter, orch *Orchestrator, cfg JobConfig, opts ...Option) *Job {
	return &Job{
		source: source,
		writer: writer,
		orch:   orch,
		cfg:    cfg,
		opts:   buildOptions(opts),
	}
}

// Execute performs the run. Errors are returned only for setup-level and
// write failures; individual ticker failures show up as NoData rows.
func (j *Job) Execute(ctx context.Context) (Summary, error) {
	start := j.opts.now()
	log := j.opts.logger

	if !j.cfg.DryRun {
		if err := j.writer.EnsureHeaders(ctx); err != nil {
			return Summary{}, fmt.Errorf("ensure headers: %w", err)
		}
	}

	rows, err := j.source.ReadTickers(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("read tickers: %w", err)
	}
	if len(rows) == 0 {
		log.Info().Msg("no tickers found")
		return Summary{Elapsed: j.opts.now().Sub(start)}, nil
	}

	runCtx := ctx
	if j.cfg.MaxDuration > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, j.cfg.MaxDuration)
		defer cancel()
	}

	block := j.orch.Run(runCtx, rows)
	summary := Summary{Tally: block.Tally(), Rows: block.Len()}

	if j.cfg.DryRun {
		for _, r := range block.Rows {
			log.Info().
				Str("ticker", r.Ticker).
				Str("symbol", r.Symbol).
				Str("kind", r.Kind.String()).
				Float64("average", r.Average).
				Int("articles", r.Articles).
				Msg("dry run")
		}
	} else {
		// The deadline applies to ticker processing only; the block is always written.
		if err := j.writer.WriteBlock(context.WithoutCancel(ctx), block); err != nil {
			return summary, fmt.Errorf("write block: %w", err)
		}
		summary.Written = true
	}

	summary.Elapsed = j.opts.now().Sub(start)
	log.Info().
		Int("rows", summary.Rows).
		Int("scored", summary.Scored).
		Int("no_data", summary.NoData).
		Int("skipped", summary.Skipped).
		Bool("written", summary.Written).
		Dur("elapsed", summary.Elapsed).
		Msg("sentiment update complete")

	return summary, nil
}
