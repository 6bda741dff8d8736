// Package api is the HTTP/JSON client for the appointment-check server.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	defaultTimeout  = 10 * time.Second
	maxErrorBody    = 64 * 1024
	requestIDHeader = "X-Request-ID"
)

type Client struct {
	baseURL string
	client  *http.Client
	timeout time.Duration
	logger  *slog.Logger
}

func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return NewWithClient(baseURL, &http.Client{}, timeout, logger)
}

func NewWithClient(baseURL string, client *http.Client, timeout time.Duration, logger *slog.Logger) *Client {
	if client == nil {
		client = &http.Client{}
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		timeout: timeout,
		logger:  logger,
	}
}

// TransportError means the request could not be completed: the server was
// unreachable, the deadline passed, or the body could not be decoded.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// APIError is a non-2xx answer from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("http %d", e.StatusCode)
}

// IsTransport reports whether err is a transport failure rather than an
// application error.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// Start asks the server to begin periodic checks every intervalSeconds.
func (c *Client) Start(ctx context.Context, intervalSeconds int) error {
	body := map[string]int{"interval": intervalSeconds}
	return c.do(ctx, http.MethodPost, "/api/start", body, nil)
}

func (c *Client) Stop(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/stop", nil, nil)
}

// CheckNow runs one check on the server and returns its result text.
func (c *Client) CheckNow(ctx context.Context) (string, error) {
	var out checkResult
	if err := c.do(ctx, http.MethodPost, "/api/check-now", nil, &out); err != nil {
		return "", err
	}
	return out.Result, nil
}

func (c *Client) Status(ctx context.Context) (SessionStatus, error) {
	var out SessionStatus
	err := c.do(ctx, http.MethodGet, "/api/status", nil, &out)
	return out, err
}

func (c *Client) History(ctx context.Context) ([]HistoryEntry, error) {
	var out []HistoryEntry
	if err := c.do(ctx, http.MethodGet, "/api/history", nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []HistoryEntry{}
	}
	return out, nil
}

func (c *Client) RecentLogs(ctx context.Context) ([]LogEntry, error) {
	var out recentLogs
	if err := c.do(ctx, http.MethodGet, "/api/logs/recent", nil, &out); err != nil {
		return nil, err
	}
	return out.Logs, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	op := method + " " + path

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reqBody io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s: %w", op, err)
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("build %s: %w", op, err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	reqID := uuid.NewString()
	req.Header.Set(requestIDHeader, reqID)

	started := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	c.logger.Debug("api request", "op", op, "request_id", reqID,
		"status", resp.StatusCode, "took", time.Since(started).Round(time.Millisecond))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &TransportError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func decodeError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var body errorBody
	if err := json.Unmarshal(data, &body); err == nil && strings.TrimSpace(body.Error) != "" {
		return &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(body.Error)}
	}
	return &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
}
