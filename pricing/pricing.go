// Package pricing provides the latest closing price per ticker.
package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
)

// Source looks up the most recent closing price for a ticker. The
// orchestrator degrades any error to a zero price, so implementations
// should return an error rather than guess.
type Source interface {
	LatestClose(ctx context.Context, ticker string) (float64, error)
}

// Candle is one bar of price history as served by the backend.
type Candle struct {
	Date   string  `json:"date"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume float64 `json:"volume"`
}

// Client fetches price history from the backend's price endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        zerolog.Logger
}

// NewClient returns a price client for the backend at baseURL.
func NewClient(baseURL string, log zerolog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		log: log.With().Str("component", "pricing").Logger(),
	}
}

// LatestClose returns the close of the most recent candle for ticker.
func (c *Client) LatestClose(ctx context.Context, ticker string) (float64, error) {
	u := fmt.Sprintf("%s/api/prices/%s?limit=1", c.baseURL, url.PathEscape(ticker))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(resp.Body)
		return 0, fmt.Errorf("price API error (status %d): %s", resp.StatusCode, string(b))
	}

	var envelope struct {
		Data struct {
			Candles []Candle `json:"candles"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return 0, fmt.Errorf("decode price response: %w", err)
	}

	candles := envelope.Data.Candles
	if len(candles) == 0 {
		return 0, fmt.Errorf("no price history for %s", ticker)
	}

	last := candles[len(candles)-1].Close
	c.log.Debug().Str("ticker", ticker).Float64("close", last).Msg("latest close")
	return last, nil
}
