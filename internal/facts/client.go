package facts

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
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/Talos-git/cosmic-birthday/internal/config"
)

// Fetcher retrieves facts from a generator.
type Fetcher interface {
	Fetch(ctx context.Context, req Request) (Response, error)
}

// Recorder receives facts measurements. *metrics.Metrics implements it.
type Recorder interface {
	IncrementFactsAttempt()
	ObserveFacts(outcome string)
}

// StatusError reports a non-2xx answer from the generator.
type StatusError struct {
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: %s", config.ErrFactsStatus, e.Status)
}

// FetchError is returned once every attempt failed. Fallback holds the facts the
// generator attached to its last failure, if any.
type FetchError struct {
	Err      error
	Fallback *Facts
}

func (e *FetchError) Error() string { return e.Err.Error() }
func (e *FetchError) Unwrap() error { return e.Err }

// Client calls a remote generator over HTTP.
type Client struct {
	HTTP       *http.Client
	BaseURL    string
	APIKey     string
	MaxRetries int
	Recorder   Recorder

	// NewBackOff builds the retry schedule; nil means exponential backoff.
	NewBackOff func() backoff.BackOff
}

// NewClient creates a client with the default timeout and retry budget.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		HTTP:       &http.Client{Timeout: config.HTTPTimeout},
		BaseURL:    baseURL,
		APIKey:     apiKey,
		MaxRetries: config.DefaultFactsMaxRetries,
	}
}

// Fetch posts req to {BaseURL}/functions/v1/generate-facts.
// Transport errors, 5xx and 429 answers are retried up to MaxRetries times.
func (c *Client) Fetch(ctx context.Context, req Request) (Response, error) {
	endpoint, safeURL, err := c.endpoint()
	if err != nil {
		return Response{}, &FetchError{Err: err}
	}

	body, err := json.Marshal(req)
	if err != nil {
		return Response{}, &FetchError{Err: fmt.Errorf("%s: %w", config.ErrFactsRequest, err)}
	}

	log := slog.With(
		slog.String(config.LogKeyComponent, config.CompFacts),
		slog.String(config.LogKeyURL, safeURL),
	)

	var (
		resp     Response
		fallback *Facts
		attempt  int
	)
	operation := func() error {
		attempt++
		if c.Recorder != nil {
			c.Recorder.IncrementFactsAttempt()
		}
		log.Debug(config.MsgFactsAttempt, config.LogKeyAttempt, attempt)

		r, fb, err := c.do(ctx, endpoint, body)
		if fb != nil {
			fallback = fb
		}
		if err != nil {
			return err
		}
		resp = r
		return nil
	}
	notify := func(err error, wait time.Duration) {
		log.Warn(config.MsgFactsRetry,
			config.LogKeyAttempt, attempt,
			config.LogKeyError, err,
			config.LogKeyDuration, wait.Milliseconds())
	}

	schedule := backoff.WithContext(backoff.WithMaxRetries(c.backOff(), uint64(max(c.MaxRetries, 0))), ctx)
	if err := backoff.RetryNotify(operation, schedule, notify); err != nil {
		return Response{}, &FetchError{Err: err, Fallback: fallback}
	}
	return resp, nil
}

func (c *Client) backOff() backoff.BackOff {
	if c.NewBackOff != nil {
		return c.NewBackOff()
	}
	return backoff.NewExponentialBackOff()
}

// endpoint validates BaseURL and returns the request URL plus a log-safe form.
func (c *Client) endpoint() (string, string, error) {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return "", "", fmt.Errorf("%s: %w", config.ErrInvalidURL, err)
	}
	if u.Scheme != config.SchemeHTTP && u.Scheme != config.SchemeHTTPS {
		return "", "", fmt.Errorf("%s: %s", config.ErrProtocol, u.Scheme)
	}
	u = u.JoinPath(config.RouteFacts)

	// Query parameters may carry tokens.
	safeURL := u.Scheme + "://" + u.Host + u.Path
	return u.String(), safeURL, nil
}

// do performs one attempt. Errors wrapped in backoff.Permanent are not retried.
func (c *Client) do(ctx context.Context, endpoint string, body []byte) (Response, *Facts, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return Response{}, nil, backoff.Permanent(fmt.Errorf("%s: %w", config.ErrFactsRequest, err))
	}
	httpReq.Header.Set(config.HeaderContentType, config.MimeJSON)
	httpReq.Header.Set(config.HeaderUserAgent, config.UserAgent)
	if c.APIKey != "" {
		httpReq.Header.Set(config.HeaderAuthorization, config.BearerPrefix+c.APIKey)
	}

	httpResp, err := c.HTTP.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return Response{}, nil, backoff.Permanent(ctx.Err())
		}
		return Response{}, nil, fmt.Errorf("%s: %w", config.ErrFactsNetwork, err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(httpResp.Body, config.MaxHTTPResponseSize))
	if err != nil {
		return Response{}, nil, fmt.Errorf("%s: %w", config.ErrFactsNetwork, err)
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		var fb *Facts
		var errBody ErrorResponse
		if json.Unmarshal(data, &errBody) == nil && errBody.Facts != nil {
			normalized := errBody.Facts.Normalize()
			fb = &normalized
		}
		statusErr := &StatusError{StatusCode: httpResp.StatusCode, Status: httpResp.Status}
		if isPermanentStatus(httpResp.StatusCode) {
			return Response{}, fb, backoff.Permanent(statusErr)
		}
		return Response{}, fb, statusErr
	}

	var resp Response
	if err := json.Unmarshal(data, &resp); err != nil {
		return Response{}, nil, backoff.Permanent(fmt.Errorf("%s: %w", config.ErrFactsDecode, err))
	}
	if !resp.Success {
		return Response{}, nil, backoff.Permanent(errors.New(config.ErrFactsRejected))
	}
	resp.Facts = resp.Facts.Normalize()
	return resp, nil, nil
}

// isPermanentStatus reports client errors that a retry cannot fix.
func isPermanentStatus(code int) bool {
	return code >= 400 && code < 500 && code != http.StatusTooManyRequests
}
