package http

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
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 30 * time.Second

// DefaultMaxRetries is the default number of attempts per request.
const DefaultMaxRetries = 3

// DefaultRetryWait is the initial wait between retries.
const DefaultRetryWait = 1 * time.Second

// Client is a JSON REST client with transparent retries for transient
// failures. Collaborator clients own their retry policy; the workflow core
// never retries.
type Client struct {
	client     *http.Client
	baseURL    string
	service    string
	maxRetries int
	retryWait  time.Duration

	// auth is called before each request to attach credentials.
	auth func(req *http.Request)
}

// Config configures a Client.
type Config struct {
	Client     *http.Client
	BaseURL    string
	Service    string
	MaxRetries int
	RetryWait  time.Duration
	Auth       func(req *http.Request)
}

// NewClient creates a Client with the given configuration.
func NewClient(cfg Config) *Client {
	c := &Client{
		client:     cfg.Client,
		baseURL:    cfg.BaseURL,
		service:    cfg.Service,
		maxRetries: cfg.MaxRetries,
		retryWait:  cfg.RetryWait,
		auth:       cfg.Auth,
	}
	if c.client == nil {
		c.client = &http.Client{Timeout: DefaultTimeout}
	}
	if c.maxRetries <= 0 {
		c.maxRetries = DefaultMaxRetries
	}
	if c.retryWait <= 0 {
		c.retryWait = DefaultRetryWait
	}
	return c
}

// Get performs a GET request and decodes the JSON response into result.
func (c *Client) Get(ctx context.Context, path string, result any) error {
	return c.do(ctx, http.MethodGet, path, nil, result)
}

// Post performs a POST request and decodes the JSON response into result.
func (c *Client) Post(ctx context.Context, path string, body, result any) error {
	return c.do(ctx, http.MethodPost, path, body, result)
}

// Put performs a PUT request and decodes the JSON response into result.
func (c *Client) Put(ctx context.Context, path string, body, result any) error {
	return c.do(ctx, http.MethodPut, path, body, result)
}

// PostForm performs a POST with URL-encoded form values and decodes the
// JSON response into result. Some Bitbucket write endpoints only accept
// form payloads.
func (c *Client) PostForm(ctx context.Context, path string, form url.Values, result any) error {
	return c.send(ctx, http.MethodPost, path, "application/x-www-form-urlencoded", []byte(form.Encode()), result)
}

func (c *Client) do(ctx context.Context, method, path string, body, result any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
	}
	return c.send(ctx, method, path, "application/json", payload, result)
}

func (c *Client) send(ctx context.Context, method, path, contentType string, payload []byte, result any) error {
	target := c.baseURL + path
	var lastErr error
	for attempt := range c.maxRetries {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.retryWait * time.Duration(1<<(attempt-1))):
			}
		}

		var bodyReader io.Reader
		if payload != nil {
			bodyReader = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, target, bodyReader)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("Accept", "application/json")
		if c.auth != nil {
			c.auth(req)
		}

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%s request failed: %w", c.service, err)
			continue
		}

		if resp.StatusCode >= 400 {
			apiErr := c.parseError(resp, path)
			resp.Body.Close()
			if !IsRetryable(apiErr) {
				return apiErr
			}
			lastErr = apiErr
			continue
		}

		err = decode(resp.Body, result)
		resp.Body.Close()
		if err != nil {
			return fmt.Errorf("%s: decode %s response: %w", c.service, path, err)
		}
		return nil
	}
	return lastErr
}

func decode(r io.Reader, result any) error {
	if result == nil {
		_, err := io.Copy(io.Discard, r)
		return err
	}
	return json.NewDecoder(r).Decode(result)
}

// parseError builds an error from a non-2xx response, honoring Retry-After
// on 429s.
func (c *Client) parseError(resp *http.Response, path string) error {
	msg := readErrorMessage(resp.Body)

	if resp.StatusCode == http.StatusTooManyRequests {
		var wait time.Duration
		if s := resp.Header.Get("Retry-After"); s != "" {
			if secs, err := strconv.Atoi(s); err == nil {
				wait = time.Duration(secs) * time.Second
			}
		}
		return &RateLimitError{Service: c.service, RetryAfter: wait}
	}

	return &APIError{
		Service:    c.service,
		StatusCode: resp.StatusCode,
		Message:    msg,
		Endpoint:   path,
	}
}

// readErrorMessage extracts a human-readable message from an error body.
// Atlassian APIs use several shapes; fall back to the raw body.
func readErrorMessage(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil || len(data) == 0 {
		return "no error detail"
	}

	var envelope struct {
		Message       string   `json:"message"`
		ErrorMessages []string `json:"errorMessages"`
		Error         struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(data, &envelope) == nil {
		switch {
		case envelope.Message != "":
			return envelope.Message
		case len(envelope.ErrorMessages) > 0:
			return envelope.ErrorMessages[0]
		case envelope.Error.Message != "":
			return envelope.Error.Message
		}
	}
	return string(data)
}
