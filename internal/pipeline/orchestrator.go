package pipeline

import (
	"context"
	"time"

	"github.com/seenimoa/tickerpulse/pkg/models"
)

// DefaultInterTickerDelay keeps a run under the news API request budget.
const DefaultInterTickerDelay = 1200 * time.Millisecond

// Computer produces the result for one raw ticker. *Aggregator implements it.
type Computer interface {
	Compute(ctx context.Context, raw string) models.SentimentResult
}

// Orchestrator processes ticker rows sequentially with a fixed pause between
// computations and returns one block aligned with the input rows.
type Orchestrator struct {
	computer Computer
	delay    time.Duration
	opts     options
}

// NewOrchestrator creates an Orchestrator. A negative delay disables pacing.
func NewOrchestrator(computer Computer, delay time.Duration, opts ...Option) *Orchestrator {
	return &Orchestrator{
		computer: computer,
		delay:    delay,
		opts:     buildOptions(opts),
	}
}

// Run computes a result for every row, in order. Blank rows get a NoData
// placeholder without a lookup. The pause happens only between two
// computations, never after the last one. Once ctx is done the remaining rows
// are filled with NoData, so the block always has one entry per row.
func (o *Orchestrator) Run(ctx context.Context, rows []models.TickerRow) models.OutputBlock {
	block := models.OutputBlock{Rows: make([]models.SentimentResult, 0, len(rows))}
	if len(rows) > 0 {
		block.FirstRow = rows[0].Row
	}

	computed := 0
	for _, row := range rows {
		if row.Blank() {
			block.Rows = append(block.Rows, models.NoData("", "", o.opts.utcNow()))
			continue
		}

		if computed > 0 && o.delay > 0 && ctx.Err() == nil {
			if err := o.opts.sleep(ctx, o.delay); err != nil {
				o.opts.logger.Warn().Err(err).Msg("pacing interrupted")
			}
		}

		if err := ctx.Err(); err != nil {
			block.Rows = append(block.Rows, models.NoData(row.Ticker, "", o.opts.utcNow()))
			continue
		}

		block.Rows = append(block.Rows, o.computer.Compute(ctx, row.Ticker))
		computed++
	}

	return block
}
