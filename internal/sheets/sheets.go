// Package sheets reads tickers from and writes sentiment results to a Google
// Sheets worksheet. Columns outside the output range are never written.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/phuslu/log"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"

	"github.com/seenimoa/tickerpulse/internal/logging"
	"github.com/seenimoa/tickerpulse/pkg/models"
)

// HeaderColumns are the output headers, written left to right from the output column.
var HeaderColumns = []string{"VADER_Compound", "Articles_Analyzed", "Last_Updated_UTC"}

const valueInputOption = "USER_ENTERED"

// Config locates the worksheet and its columns.
type Config struct {
	SpreadsheetID string
	Worksheet     string
	TickerColumn  string // e.g. "A"
	OutputColumn  string // first of the three output columns, e.g. "P"
	HeaderRow     int    // 1-based; data starts on the next row
}

// ValuesAPI is the subset of the Sheets values API the client needs.
type ValuesAPI interface {
	GetColumn(ctx context.Context, spreadsheetID, rng string) ([]any, error)
	Update(ctx context.Context, spreadsheetID, rng string, values [][]any) error
}

// Client is the ticker source and sheet writer for one worksheet.
type Client struct {
	api       ValuesAPI
	cfg       Config
	tickerCol int
	outCol    int
	logger    *log.Logger
}

// New connects to Google Sheets with service-account credentials JSON.
func New(ctx context.Context, cfg Config, credentialsJSON []byte, logger *log.Logger) (*Client, error) {
	if len(credentialsJSON) == 0 {
		return nil, errors.New("sheets: missing service account credentials")
	}
	svc, err := gsheets.NewService(ctx,
		option.WithCredentialsJSON(credentialsJSON),
		option.WithScopes(gsheets.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("sheets: create service: %w", err)
	}
	return NewWithAPI(&serviceValues{svc: svc}, cfg, logger)
}

// NewWithAPI builds a Client over any ValuesAPI implementation.
func NewWithAPI(api ValuesAPI, cfg Config, logger *log.Logger) (*Client, error) {
	if cfg.SpreadsheetID == "" {
		return nil, errors.New("sheets: spreadsheet id is required")
	}
	if cfg.Worksheet == "" {
		return nil, errors.New("sheets: worksheet name is required")
	}
	if cfg.HeaderRow <= 0 {
		cfg.HeaderRow = 1
	}
	tickerCol, err := ColumnIndex(cfg.TickerColumn)
	if err != nil {
		return nil, fmt.Errorf("sheets: ticker column: %w", err)
	}
	outCol, err := ColumnIndex(cfg.OutputColumn)
	if err != nil {
		return nil, fmt.Errorf("sheets: output column: %w", err)
	}
	if tickerCol >= outCol && tickerCol < outCol+len(HeaderColumns) {
		return nil, fmt.Errorf("sheets: ticker column %s overlaps output columns", cfg.TickerColumn)
	}

	return &Client{
		api:       api,
		cfg:       cfg,
		tickerCol: tickerCol,
		outCol:    outCol,
		logger:    logging.OrNop(logger),
	}, nil
}

// FirstDataRow is the sheet row of the first ticker.
func (c *Client) FirstDataRow() int { return c.cfg.HeaderRow + 1 }

// ReadTickers returns every row of the ticker column below the header, in
// sheet order, trimmed and uppercased. Interior blank cells are kept as blank
// rows; the API omits trailing blanks.
func (c *Client) ReadTickers(ctx context.Context) ([]models.TickerRow, error) {
	rng := columnFrom(c.cfg.Worksheet, c.tickerCol, c.FirstDataRow())
	cells, err := c.api.GetColumn(ctx, c.cfg.SpreadsheetID, rng)
	if err != nil {
		return nil, fmt.Errorf("sheets: read %s: %w", rng, err)
	}

	rows := make([]models.TickerRow, 0, len(cells))
	for i, cell := range cells {
		rows = append(rows, models.TickerRow{
			Row:    c.FirstDataRow() + i,
			Ticker: strings.ToUpper(strings.TrimSpace(cellString(cell))),
		})
	}
	// Drop trailing blanks that some API responses still include.
	for len(rows) > 0 && rows[len(rows)-1].Blank() {
		rows = rows[:len(rows)-1]
	}

	c.logger.Debug().Str("range", rng).Int("rows", len(rows)).Msg("tickers read")
	return rows, nil
}

// EnsureHeaders writes the output headers into the header row.
func (c *Client) EnsureHeaders(ctx context.Context) error {
	rng := cellRange(c.cfg.Worksheet, c.outCol, c.cfg.HeaderRow, c.lastOutCol(), c.cfg.HeaderRow)
	header := make([]any, len(HeaderColumns))
	for i, h := range HeaderColumns {
		header[i] = h
	}
	if err := c.api.Update(ctx, c.cfg.SpreadsheetID, rng, [][]any{header}); err != nil {
		return fmt.Errorf("sheets: write headers %s: %w", rng, err)
	}
	return nil
}

// WriteBlock writes all results in a single update call. An empty block is a no-op.
func (c *Client) WriteBlock(ctx context.Context, block models.OutputBlock) error {
	if block.Len() == 0 {
		return nil
	}
	if block.FirstRow <= c.cfg.HeaderRow {
		return fmt.Errorf("sheets: block starts at row %d, inside the header", block.FirstRow)
	}

	rng := cellRange(c.cfg.Worksheet, c.outCol, block.FirstRow, c.lastOutCol(), block.LastRow())
	if err := c.api.Update(ctx, c.cfg.SpreadsheetID, rng, block.Values()); err != nil {
		return fmt.Errorf("sheets: write %s: %w", rng, err)
	}

	c.logger.Info().Str("range", rng).Int("rows", block.Len()).Msg("results written")
	return nil
}

func cellString(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

func (c *Client) lastOutCol() int { return c.outCol + len(HeaderColumns) - 1 }

// serviceValues adapts the generated Sheets service to ValuesAPI.
type serviceValues struct {
	svc *gsheets.Service
}

func (s *serviceValues) GetColumn(ctx context.Context, spreadsheetID, rng string) ([]any, error) {
	resp, err := s.svc.Spreadsheets.Values.Get(spreadsheetID, rng).
		MajorDimension("COLUMNS").
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}
	if len(resp.Values) == 0 {
		return nil, nil
	}
	return resp.Values[0], nil
}

func (s *serviceValues) Update(ctx context.Context, spreadsheetID, rng string, values [][]any) error {
	vr := &gsheets.ValueRange{
		MajorDimension: "ROWS",
		Range:          rng,
		Values:         values,
	}
	_, err := s.svc.Spreadsheets.Values.Update(spreadsheetID, rng, vr).
		ValueInputOption(valueInputOption).
		Context(ctx).
		Do()
	return err
}
