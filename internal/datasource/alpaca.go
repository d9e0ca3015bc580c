package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
	"github.com/phuslu/log"

	"github.com/seenimoa/tickerpulse/internal/logging"
	"github.com/seenimoa/tickerpulse/pkg/models"
)

const (
	// DefaultBaseURL is the Alpaca market data host.
	DefaultBaseURL = "https://data.alpaca.markets"

	// DefaultTimeout is the default HTTP timeout.
	DefaultTimeout = 30 * time.Second

	// MaxPageSize is the largest page the news endpoint returns.
	MaxPageSize = 50

	newsPath = "/v1beta1/news"

	// Alpaca reports the quota reset instant in epoch seconds.
	headerRateLimitReset = "X-RateLimit-Reset"
)

// AlpacaClient queries the Alpaca News REST API.
type AlpacaClient struct {
	baseURL    string
	keyID      string
	secretKey  string
	httpClient *http.Client
	logger     *log.Logger
}

// ClientOption configures the AlpacaClient.
type ClientOption func(*AlpacaClient)

// WithBaseURL sets a custom base URL.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *AlpacaClient) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *AlpacaClient) {
		c.httpClient = httpClient
	}
}

// WithLogger sets a logger.
func WithLogger(logger *log.Logger) ClientOption {
	return func(c *AlpacaClient) {
		c.logger = logger
	}
}

// NewAlpacaClient creates a news client authenticated with an API key pair.
func NewAlpacaClient(keyID, secretKey string, opts ...ClientOption) *AlpacaClient {
	c := &AlpacaClient{
		baseURL:   DefaultBaseURL,
		keyID:     keyID,
		secretKey: secretKey,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}

	for _, opt := range opts {
		opt(c)
	}
	c.logger = logging.OrNop(c.logger)

	return c
}

// newsResponse is one page of the news endpoint.
type newsResponse struct {
	News          []marketdata.News `json:"news"`
	NextPageToken *string           `json:"next_page_token"`
}

// QueryNews performs one news request. Only the first page is read; q.Limit
// is capped at MaxPageSize.
func (c *AlpacaClient) QueryNews(ctx context.Context, q NewsQuery) ([]models.NewsArticle, error) {
	params := url.Values{}
	params.Set("symbols", q.Symbol)
	if !q.Start.IsZero() {
		params.Set("start", q.Start.UTC().Format(time.RFC3339))
	}
	if !q.End.IsZero() {
		params.Set("end", q.End.UTC().Format(time.RFC3339))
	}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(min(q.Limit, MaxPageSize)))
	}
	params.Set("sort", "desc")

	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, newsPath, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("APCA-API-KEY-ID", c.keyID)
	req.Header.Set("APCA-API-SECRET-KEY", c.secretKey)

	c.logger.Debug().
		Str("symbol", q.Symbol).
		Str("url", c.baseURL+newsPath).
		Msg("news API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("news for %s: %w", q.Symbol, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &RateLimitError{
			Symbol: q.Symbol,
			Reset:  parseReset(resp.Header.Get(headerRateLimitReset)),
		}
	}

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, &ErrHTTP{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       strings.TrimSpace(string(body)),
		}
	}

	var page newsResponse
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("decode news for %s: %w", q.Symbol, err)
	}

	articles := make([]models.NewsArticle, 0, len(page.News))
	for _, n := range page.News {
		articles = append(articles, models.NewsArticle{
			ID:          strconv.Itoa(n.ID),
			Headline:    cleanHTML(n.Headline),
			Summary:     cleanHTML(n.Summary),
			URL:         n.URL,
			Source:      n.Source,
			PublishedAt: n.CreatedAt.UTC(),
			Tickers:     n.Symbols,
		})
	}

	return articles, nil
}

// parseReset converts an epoch-seconds header value into a time.
// Missing or malformed values yield the zero time.
func parseReset(v string) time.Time {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}
	}
	sec, err := strconv.ParseInt(v, 10, 64)
	if err != nil || sec <= 0 {
		return time.Time{}
	}
	return time.Unix(sec, 0).UTC()
}
