// Package backend is the client for the analysis job service. It wraps
// the three remote operations of a job's lifecycle: start, status, and
// result. Every response arrives inside a {"data": ...} envelope.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/sethvargo/go-retry"
)

// requestTimeout bounds each individual HTTP call. The poll loop around
// Status has its own (by default unbounded) budget, see WaitForCompletion.
const requestTimeout = 10 * time.Second

// Client talks to the analysis backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        zerolog.Logger
}

// NewClient returns a client for the backend at baseURL.
func NewClient(baseURL string, log zerolog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
		log: log.With().Str("component", "backend").Logger(),
	}
}

// StartRequest is the payload for starting one analysis job.
type StartRequest struct {
	Ticker          string  `json:"ticker"`
	ShowReasoning   bool    `json:"show_reasoning"`
	NumOfNews       int     `json:"num_of_news"`
	InitialCapital  float64 `json:"initial_capital"`
	InitialPosition float64 `json:"initial_position"`
}

// Start submits an analysis job and returns its run id. A successful
// response without a run id returns ("", nil): the job could not be
// started and the caller should skip the ticker.
func (c *Client) Start(ctx context.Context, req StartRequest) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshal start request: %w", err)
	}

	var data struct {
		RunID string `json:"run_id"`
	}
	url := c.baseURL + "/api/analysis/start"
	if err := c.do(ctx, http.MethodPost, url, bytes.NewReader(body), &data); err != nil {
		return "", err
	}
	c.log.Debug().Str("ticker", req.Ticker).Str("run_id", data.RunID).Msg("analysis submitted")
	return data.RunID, nil
}

// Status reports whether the job identified by runID has finished.
func (c *Client) Status(ctx context.Context, runID string) (bool, error) {
	var data struct {
		IsComplete bool `json:"is_complete"`
	}
	url := fmt.Sprintf("%s/api/analysis/%s/status", c.baseURL, runID)
	if err := c.do(ctx, http.MethodGet, url, nil, &data); err != nil {
		return false, err
	}
	return data.IsComplete, nil
}

// Result fetches the output of a finished job.
func (c *Client) Result(ctx context.Context, runID string) (*Result, error) {
	var data Result
	url := fmt.Sprintf("%s/api/analysis/%s/result", c.baseURL, runID)
	if err := c.do(ctx, http.MethodGet, url, nil, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

var errNotComplete = errors.New("analysis not complete")

// WaitForCompletion polls Status every interval until the job finishes.
// maxWait bounds the whole wait; 0 means wait forever, which matches the
// backend's contract that every started job eventually completes. Status
// errors are not retried: a broken backend mid-poll fails the pass.
func (c *Client) WaitForCompletion(ctx context.Context, runID string, interval, maxWait time.Duration) error {
	var b retry.Backoff = retry.NewConstant(interval)
	if maxWait > 0 {
		b = retry.WithMaxDuration(maxWait, b)
	}

	err := retry.Do(ctx, b, func(ctx context.Context) error {
		done, err := c.Status(ctx, runID)
		if err != nil {
			return err
		}
		if !done {
			return retry.RetryableError(errNotComplete)
		}
		return nil
	})
	if errors.Is(err, errNotComplete) {
		return fmt.Errorf("analysis %s did not complete within %s", runID, maxWait)
	}
	return err
}

// do executes one request and decodes the data field of the envelope
// into out. Non-2xx responses become errors carrying the response body.
func (c *Client) do(ctx context.Context, method, url string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("backend error (status %d): %s", resp.StatusCode, string(b))
	}

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if len(envelope.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("decode response data: %w", err)
	}
	return nil
}
