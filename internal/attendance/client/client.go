// Package client calls the attendance API. Every call is attempted once;
// a circuit breaker short-circuits calls after repeated transport failures.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"presence/internal/attendance/models"
	dErrors "presence/pkg/domain-errors"
	"presence/pkg/platform/circuit"
	"presence/pkg/platform/middleware/request"
)

const (
	defaultTimeout  = 15 * time.Second
	maxResponseSize = 4 << 20
)

// Client is an attendance API client for one signed-in person.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	breaker *circuit.Breaker
	logger  *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		if c != nil {
			cl.http = c
		}
	}
}

func WithToken(token string) Option {
	return func(cl *Client) { cl.token = token }
}

func WithBreaker(b *circuit.Breaker) Option {
	return func(cl *Client) {
		if b != nil {
			cl.breaker = b
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(cl *Client) { cl.logger = logger }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
		breaker: circuit.New("attendance-api",
			circuit.WithFailureThreshold(3),
			circuit.WithSuccessThreshold(1),
			circuit.WithCooldown(10*time.Second),
		),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Submit sends one save batch. Any non-2xx response fails the whole batch.
func (c *Client) Submit(ctx context.Context, payloads []models.SavePayload) ([]models.AttendanceRecord, error) {
	var out []models.AttendanceRecord
	if err := c.do(ctx, http.MethodPost, "/api/attendance", nil, payloads, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Snapshot fetches roster, leave and records for weekStarts. No weeks
// means the server's current and next week.
func (c *Client) Snapshot(ctx context.Context, weekStarts []string) (models.Snapshot, error) {
	q := url.Values{}
	if len(weekStarts) > 0 {
		q.Set("weeks", strings.Join(weekStarts, ","))
	}
	var out models.Snapshot
	err := c.do(ctx, http.MethodGet, "/api/attendance/snapshot", q, nil, &out)
	return out, err
}

// Board fetches the resolved board for "current", "next" or a date.
func (c *Client) Board(ctx context.Context, week string) (models.Board, error) {
	q := url.Values{}
	if week != "" {
		q.Set("week", week)
	}
	var out models.Board
	err := c.do(ctx, http.MethodGet, "/api/attendance/board", q, nil, &out)
	return out, err
}

// ExportBoard streams the board workbook into w.
func (c *Client) ExportBoard(ctx context.Context, week string, w io.Writer) error {
	q := url.Values{}
	if week != "" {
		q.Set("week", week)
	}
	return c.do(ctx, http.MethodGet, "/api/attendance/board.xlsx", q, nil, w)
}

func (c *Client) Today(ctx context.Context) (models.Today, error) {
	var out models.Today
	err := c.do(ctx, http.MethodGet, "/api/attendance/today", nil, nil, &out)
	return out, err
}

type errorBody struct {
	Error       string `json:"error"`
	Description string `json:"error_description"`
}

// do performs one request. out may be an io.Writer for raw bodies or a
// pointer to decode JSON into.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	if !c.breaker.Allow() {
		return dErrors.New(dErrors.CodeUnavailable, "attendance service unavailable")
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "encode request")
		}
		reader = bytes.NewReader(raw)
	}
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "build request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.recordFailure(ctx, path, err)
		if errors.Is(err, context.DeadlineExceeded) {
			return dErrors.Wrap(err, dErrors.CodeTimeout, "attendance service timed out")
		}
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "attendance service unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		c.recordFailure(ctx, path, fmt.Errorf("status %d", resp.StatusCode))
	} else {
		c.recordSuccess(ctx)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		err := decodeError(resp)
		c.logger.DebugContext(ctx, "attendance request failed",
			"request_id", resp.Header.Get(request.HeaderRequestID),
			"path", path,
			"status", resp.StatusCode,
			"error", err,
		)
		return err
	}
	if out == nil {
		return nil
	}
	if w, ok := out.(io.Writer); ok {
		if _, err := io.Copy(w, io.LimitReader(resp.Body, maxResponseSize)); err != nil {
			return dErrors.Wrap(err, dErrors.CodeUnavailable, "read response")
		}
		return nil
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseSize)).Decode(out); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "decode response")
	}
	return nil
}

func decodeError(resp *http.Response) error {
	var body errorBody
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err := json.Unmarshal(raw, &body); err != nil || body.Error == "" {
		return dErrors.New(codeForStatus(resp.StatusCode), fmt.Sprintf("attendance service returned %d", resp.StatusCode))
	}
	msg := body.Description
	if msg == "" {
		msg = fmt.Sprintf("attendance service returned %d", resp.StatusCode)
	}
	return dErrors.New(dErrors.Code(body.Error), msg)
}

func codeForStatus(status int) dErrors.Code {
	switch {
	case status == http.StatusUnauthorized:
		return dErrors.CodeUnauthorized
	case status == http.StatusForbidden:
		return dErrors.CodeForbidden
	case status == http.StatusNotFound:
		return dErrors.CodeNotFound
	case status == http.StatusServiceUnavailable:
		return dErrors.CodeUnavailable
	case status >= 400 && status < 500:
		return dErrors.CodeBadRequest
	default:
		return dErrors.CodeInternal
	}
}

func (c *Client) recordFailure(ctx context.Context, path string, cause error) {
	if _, change := c.breaker.RecordFailure(); change.Opened {
		c.logger.WarnContext(ctx, "circuit breaker opened",
			"breaker", c.breaker.Name(),
			"path", path,
			"error", cause,
		)
	}
}

func (c *Client) recordSuccess(ctx context.Context) {
	if _, change := c.breaker.RecordSuccess(); change.Closed {
		c.logger.InfoContext(ctx, "circuit breaker closed", "breaker", c.breaker.Name())
	}
}
