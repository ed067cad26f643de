package jsearch

import (
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
)

const (
	DefaultBaseURL = "https://jsearch.p.rapidapi.com"
	DefaultHost    = "jsearch.p.rapidapi.com"
	defaultTimeout = 30 * time.Second

	// error bodies are truncated to keep log lines readable
	maxErrorBody = 512
)

var ErrMissingAPIKey = errors.New("jsearch api key is not configured")

// StatusError is returned when the provider answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("jsearch error (status %d): %s", e.StatusCode, e.Body)
}

// SearchParams are the provider query parameters for one page.
type SearchParams struct {
	Query      string
	Page       int
	Country    string
	DatePosted string
}

// Client calls the JSearch search endpoint on RapidAPI.
type Client struct {
	apiKey     string
	baseURL    string
	host       string
	httpClient *http.Client
}

type Option func(*Client)

func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if strings.TrimSpace(baseURL) != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

func WithHost(host string) Option {
	return func(c *Client) {
		if strings.TrimSpace(host) != "" {
			c.host = host
		}
	}
}

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

func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:  strings.TrimSpace(apiKey),
		baseURL: DefaultBaseURL,
		host:    DefaultHost,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured reports whether an API key is set.
func (c *Client) Configured() bool {
	return c != nil && c.apiKey != ""
}

// Search fetches one page of raw provider results.
func (c *Client) Search(ctx context.Context, params SearchParams) ([]Job, error) {
	if !c.Configured() {
		return nil, ErrMissingAPIKey
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.searchURL(params), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("x-rapidapi-key", c.apiKey)
	req.Header.Set("x-rapidapi-host", c.host)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		text := string(body)
		if len(text) > maxErrorBody {
			text = text[:maxErrorBody]
		}
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: text}
	}

	var payload searchResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return payload.Data, nil
}

func (c *Client) searchURL(params SearchParams) string {
	page := params.Page
	if page <= 0 {
		page = 1
	}
	values := url.Values{}
	values.Set("query", params.Query)
	values.Set("page", strconv.Itoa(page))
	values.Set("num_pages", "1")
	values.Set("country", params.Country)
	values.Set("date_posted", params.DatePosted)
	return c.baseURL + "/search?" + values.Encode()
}

type searchResponse struct {
	Status string `json:"status"`
	Data   []Job  `json:"data"`
}
