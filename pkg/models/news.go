// Package models defines the data types shared across tickerpulse: news
// articles, spreadsheet ticker rows and the per-ticker sentiment results that
// are written back as one output block.
package models

import "time"

// NewsArticle is a single news item returned by the news API for a symbol.
type NewsArticle struct {
	ID          string    `json:"id"`
	Headline    string    `json:"headline"`
	Summary     string    `json:"summary,omitempty"`
	URL         string    `json:"url,omitempty"`
	Source      string    `json:"source,omitempty"`
	PublishedAt time.Time `json:"published_at"`
	Tickers     []string  `json:"tickers,omitempty"` // symbols the article is tagged with
}

// Text returns the text that is scored for the article: the headline, a
// space, then the summary (empty when the API sent none).
func (a NewsArticle) Text() string {
	return a.Headline + " " + a.Summary
}

// TickerRow is one data row of the ticker column. Row is the 1-based sheet
// row number; Ticker is the raw cell text and may be empty for blank rows.
type TickerRow struct {
	Row    int    `json:"row"`
	Ticker string `json:"ticker"`
}

// Blank reports whether the row has no ticker to look up.
func (r TickerRow) Blank() bool {
	for _, c := range r.Ticker {
		if c != ' ' && c != '\t' && c != '\r' && c != '\n' {
			return false
		}
	}
	return true
}
