// Package client talks to the tracker HTTP API. It backs the board and
// finder controllers and the ingest CLI.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/careercardinal/jobtracker/internal/jsearch"
	"github.com/careercardinal/jobtracker/internal/tracker"
)

const (
	DefaultBaseURL = "http://localhost:3000"
	defaultTimeout = 15 * time.Second
)

// ErrJobNotFound is returned when an update matched no record.
var ErrJobNotFound = errors.New("job not found")

// APIError carries the status and {error} message of a failed call.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error (status %d)", e.StatusCode)
	}
	return fmt.Sprintf("api error (status %d): %s", e.StatusCode, e.Message)
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

type Option func(*Client)

func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

func New(baseURL string, opts ...Option) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) ListJobs(ctx context.Context) ([]tracker.Job, error) {
	var ret []tracker.Job
	if err := c.do(ctx, http.MethodGet, "/jobs", nil, &ret); err != nil {
		return nil, err
	}
	return ret, nil
}

func (c *Client) GetJob(ctx context.Context, id int64) (tracker.Job, error) {
	var ret tracker.Job
	if err := c.do(ctx, http.MethodGet, jobPath(id), nil, &ret); err != nil {
		return tracker.Job{}, err
	}
	return ret, nil
}

// CreateJob stores job and returns the server assigned id.
func (c *Client) CreateJob(ctx context.Context, job tracker.Job) (int64, error) {
	var resp struct {
		ID int64 `json:"id"`
	}
	if err := c.do(ctx, http.MethodPost, "/jobs", jobBody(job), &resp); err != nil {
		return 0, err
	}
	return resp.ID, nil
}

// UpdateJob overwrites every field of the record with job.ID.
func (c *Client) UpdateJob(ctx context.Context, job tracker.Job) error {
	var resp struct {
		Updated int64 `json:"updated"`
	}
	if err := c.do(ctx, http.MethodPut, jobPath(job.ID), jobBody(job), &resp); err != nil {
		return err
	}
	if resp.Updated == 0 {
		return ErrJobNotFound
	}
	return nil
}

// DeleteJob removes a record. Deleting an id that is already gone succeeds.
func (c *Client) DeleteJob(ctx context.Context, id int64) error {
	var resp struct {
		Deleted int64 `json:"deleted"`
	}
	return c.do(ctx, http.MethodDelete, jobPath(id), nil, &resp)
}

func (c *Client) ListListings(ctx context.Context, q tracker.ListingQuery) ([]tracker.Listing, error) {
	values := url.Values{}
	if q.Query != "" {
		values.Set("q", q.Query)
	}
	if q.Limit > 0 {
		values.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Offset > 0 {
		values.Set("offset", strconv.Itoa(q.Offset))
	}
	var resp struct {
		Count int               `json:"count"`
		Jobs  []tracker.Listing `json:"jobs"`
	}
	if err := c.do(ctx, http.MethodGet, withQuery("/api/jobs", values), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Jobs, nil
}

// Columns returns the board lanes the server is configured with.
func (c *Client) Columns(ctx context.Context) (tracker.Columns, error) {
	var ret tracker.Columns
	if err := c.do(ctx, http.MethodGet, "/api/columns", nil, &ret); err != nil {
		return nil, err
	}
	if len(ret) == 0 {
		return nil, fmt.Errorf("server returned no board columns")
	}
	return ret, nil
}

func (c *Client) CountListings(ctx context.Context, query string) (int, error) {
	values := url.Values{}
	if query != "" {
		values.Set("q", query)
	}
	var resp struct {
		Total int `json:"total"`
	}
	if err := c.do(ctx, http.MethodGet, withQuery("/api/jobs/count", values), nil, &resp); err != nil {
		return 0, err
	}
	return resp.Total, nil
}

// Search runs a provider search through the server, which also imports the
// results.
func (c *Client) Search(ctx context.Context, params jsearch.SearchParams) ([]tracker.Listing, error) {
	values := url.Values{}
	values.Set("query", params.Query)
	if params.Page > 0 {
		values.Set("page", strconv.Itoa(params.Page))
	}
	if params.Country != "" {
		values.Set("country", params.Country)
	}
	if params.DatePosted != "" {
		values.Set("date_posted", params.DatePosted)
	}
	var resp struct {
		Count int               `json:"count"`
		Jobs  []tracker.Listing `json:"jobs"`
	}
	if err := c.do(ctx, http.MethodGet, withQuery("/api/jobs/search", values), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Jobs, nil
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var payload struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(raw, &payload) == nil {
			apiErr.Message = payload.Error
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func jobPath(id int64) string {
	return "/jobs/" + strconv.FormatInt(id, 10)
}

func jobBody(job tracker.Job) map[string]string {
	return map[string]string{
		"title":   job.Title,
		"company": job.Company,
		"date":    job.Date,
		"link":    job.Link,
		"notes":   job.Notes,
		"status":  job.Status,
	}
}

func withQuery(path string, values url.Values) string {
	if len(values) == 0 {
		return path
	}
	return path + "?" + values.Encode()
}
