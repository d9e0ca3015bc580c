package models

import (
	"time"

	"github.com/seenimoa/tickerpulse/pkg/utils"
)

// AverageDecimals is the precision of the average written to the sheet.
const AverageDecimals = 4

// ResultKind tags a SentimentResult as scored or carrying no data.
type ResultKind uint8

const (
	// KindNoData means no article contributed a score (or the ticker failed).
	KindNoData ResultKind = iota
	// KindScored means at least one article was scored.
	KindScored
)

func (k ResultKind) String() string {
	switch k {
	case KindScored:
		return "scored"
	default:
		return "no_data"
	}
}

// SentimentResult is the outcome for one ticker in one run.
// Average and Articles are meaningful only when Kind is KindScored;
// a KindNoData result always has Articles == 0.
type SentimentResult struct {
	Ticker     string     `json:"ticker"`           // raw sheet value
	Symbol     string     `json:"symbol,omitempty"` // normalized lookup symbol
	Kind       ResultKind `json:"kind"`
	Average    float64    `json:"average"`
	Articles   int        `json:"articles"`
	ComputedAt time.Time  `json:"computed_at"`
}

// Scored builds a scored result. A non-positive article count yields NoData.
func Scored(ticker, symbol string, average float64, articles int, at time.Time) SentimentResult {
	if articles <= 0 {
		return NoData(ticker, symbol, at)
	}
	return SentimentResult{
		Ticker:     ticker,
		Symbol:     symbol,
		Kind:       KindScored,
		Average:    average,
		Articles:   articles,
		ComputedAt: at.UTC(),
	}
}

// NoData builds a result for a ticker with no usable articles.
func NoData(ticker, symbol string, at time.Time) SentimentResult {
	return SentimentResult{
		Ticker:     ticker,
		Symbol:     symbol,
		Kind:       KindNoData,
		ComputedAt: at.UTC(),
	}
}

// IsScored reports whether the result carries an average.
func (r SentimentResult) IsScored() bool { return r.Kind == KindScored }

// Cells renders the result as the three output cells: the rounded average
// (blank for no data), the article count and the UTC timestamp.
func (r SentimentResult) Cells() []any {
	ts := utils.FormatUTC(r.ComputedAt)
	switch r.Kind {
	case KindScored:
		return []any{utils.RoundTo(r.Average, AverageDecimals), r.Articles, ts}
	default:
		return []any{"", 0, ts}
	}
}

// OutputBlock is the ordered set of results for one run, aligned 1:1 with the
// ticker rows starting at FirstRow.
type OutputBlock struct {
	FirstRow int               `json:"first_row"`
	Rows     []SentimentResult `json:"rows"`
}

// Len returns the number of rows in the block.
func (b OutputBlock) Len() int { return len(b.Rows) }

// LastRow returns the sheet row of the final result, or FirstRow-1 when empty.
func (b OutputBlock) LastRow() int { return b.FirstRow + len(b.Rows) - 1 }

// Values renders the block as a rectangular [rows][3] cell grid.
func (b OutputBlock) Values() [][]any {
	values := make([][]any, 0, len(b.Rows))
	for _, r := range b.Rows {
		values = append(values, r.Cells())
	}
	return values
}

// Tally counts block rows by outcome.
type Tally struct {
	Scored  int `json:"scored"`
	NoData  int `json:"no_data"`
	Skipped int `json:"skipped"` // blank ticker cells
}

// Tally summarises the block. Blank-ticker placeholders count as Skipped.
func (b OutputBlock) Tally() Tally {
	var t Tally
	for _, r := range b.Rows {
		switch {
		case r.Ticker == "":
			t.Skipped++
		case r.IsScored():
			t.Scored++
		default:
			t.NoData++
		}
	}
	return t
}
