package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/trainweek/internal/constants"
	"github.com/julianstephens/trainweek/internal/logger"
	"github.com/julianstephens/trainweek/internal/models"
)

// maxErrorBody bounds how much of a failed response is kept for diagnostics.
const maxErrorBody = 4096

// Client talks to the training calendar backend on behalf of one user.
type Client struct {
	base   *url.URL
	userID int
	http   *http.Client
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// New builds a client for baseURL acting as userID.
func New(baseURL string, userID int, opts ...Option) (*Client, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("invalid base URL %q: scheme must be http or https", baseURL)
	}
	if base.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q: missing host", baseURL)
	}
	c := &Client{
		base:   base,
		userID: userID,
		http:   &http.Client{Timeout: constants.DefaultRequestTimeout * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) UserID() int {
	return c.userID
}

// BuildURL joins segments under the base path and appends the user query
// parameter.
func (c *Client) BuildURL(segments ...string) string {
	u := c.base.JoinPath(segments...)
	q := u.Query()
	q.Set(constants.UserQueryParam, strconv.Itoa(c.userID))
	u.RawQuery = q.Encode()
	return u.String()
}

// FormatPathTime renders a week boundary for the events path: UTC with
// millisecond precision.
func FormatPathTime(t time.Time) string {
	return models.FormatTimestamp(t)
}

// ListEvents returns the events intersecting [start, end). A response body
// that is not a JSON array yields an empty list.
func (c *Client) ListEvents(ctx context.Context, start, end time.Time) ([]models.CalendarEvent, error) {
	target := c.BuildURL(constants.EventsEndpoint, FormatPathTime(start), FormatPathTime(end))
	var raw json.RawMessage
	if err := c.do(ctx, "fetch events", http.MethodGet, target, nil, &raw); err != nil {
		return nil, err
	}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		logger.Warn("events response is not an array", "body", truncate(string(trimmed), 200))
		return []models.CalendarEvent{}, nil
	}
	events := []models.CalendarEvent{}
	if err := json.Unmarshal(trimmed, &events); err != nil {
		return nil, fmt.Errorf("failed to decode events: %w", err)
	}
	return events, nil
}

func (c *Client) CreateEvent(ctx context.Context, ev models.EventCreate) (models.CalendarEvent, error) {
	var created models.CalendarEvent
	err := c.do(ctx, "create event", http.MethodPost, c.BuildURL(constants.EventsEndpoint), ev, &created)
	return created, err
}

func (c *Client) UpdateEvent(ctx context.Context, id int, patch models.EventUpdate) (models.CalendarEvent, error) {
	if id == 0 {
		return models.CalendarEvent{}, fmt.Errorf("%w for update", ErrMissingEventID)
	}
	var updated models.CalendarEvent
	target := c.BuildURL(constants.EventsEndpoint, strconv.Itoa(id))
	err := c.do(ctx, "update event", http.MethodPut, target, patch, &updated)
	return updated, err
}

func (c *Client) DeleteEvent(ctx context.Context, id int) error {
	if id == 0 {
		return fmt.Errorf("%w for deletion", ErrMissingEventID)
	}
	target := c.BuildURL(constants.EventsEndpoint, strconv.Itoa(id))
	return c.do(ctx, "delete event", http.MethodDelete, target, nil, nil)
}

// GenerateTrainingPlan submits the preferences. The backend's reply is
// returned undecoded.
func (c *Client) GenerateTrainingPlan(ctx context.Context, prefs models.PlanPreferences) (json.RawMessage, error) {
	req := models.PlanRequest{UserID: c.userID, PlanPreferences: prefs}
	var out json.RawMessage
	err := c.do(ctx, "create training plan", http.MethodPost, c.BuildURL(constants.PlannerEndpoint), req, &out)
	return out, err
}

// Ping checks that the backend answers at all. Any HTTP status counts as
// reachable.
func (c *Client) Ping(ctx context.Context) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base.String(), nil)
	if err != nil {
		return 0, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode, nil
}

func (c *Client) do(ctx context.Context, op, method, target string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode %s request: %w", op, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return err
	}
	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	started := time.Now()
	logger.Debug("api request", "op", op, "method", method, "url", target, "request_id", requestID)

	resp, err := c.http.Do(req)
	if err != nil {
		logger.Error("api request failed", "op", op, "request_id", requestID, "error", err)
		return err
	}
	defer resp.Body.Close()

	logger.Debug("api response", "op", op, "status", resp.StatusCode, "request_id", requestID,
		"elapsed", time.Since(started))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		text, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		httpErr := &HTTPError{Op: op, StatusCode: resp.StatusCode, Body: string(text)}
		logger.Error("api request rejected", "op", op, "status", resp.StatusCode, "request_id", requestID)
		return httpErr
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read %s response: %w", op, err)
	}
	if raw, ok := out.(*json.RawMessage); ok {
		*raw = append((*raw)[:0], data...)
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", op, err)
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
