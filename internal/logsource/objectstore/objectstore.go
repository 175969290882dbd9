// Package objectstore implements a logsource.Source over an HTTP object
// store bucket. Objects are named <config_type>/logs/<run_id>/<file> and
// <config_type>/data/sidecar/ticks/<partition>; listing uses prefix and
// delimiter queries against the bucket's REST API.
package objectstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"trading-dashboard/internal/domain"
	"trading-dashboard/internal/logsource"
)

// Default configuration values.
const (
	DefaultTimeout     = 30 * time.Second
	DefaultMaxRetries  = 3
	DefaultRetryDelay  = 500 * time.Millisecond
	DefaultMaxDelay    = 5 * time.Second
	DefaultBackoffMult = 2.0
)

// Client reads a bucket over HTTP with retries and exponential backoff.
type Client struct {
	endpoint    string
	client      *http.Client
	maxRetries  int
	retryDelay  time.Duration
	maxDelay    time.Duration
	backoffMult float64
}

var _ logsource.Source = (*Client)(nil)

// ClientOption configures Client.
type ClientOption func(*Client)

// WithTimeout sets HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.client.Timeout = d
	}
}

// WithMaxRetries sets maximum retry attempts.
func WithMaxRetries(n int) ClientOption {
	return func(c *Client) {
		c.maxRetries = n
	}
}

// WithRetryDelay sets initial retry delay.
func WithRetryDelay(d time.Duration) ClientOption {
	return func(c *Client) {
		c.retryDelay = d
	}
}

// WithHTTPClient sets custom http.Client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.client = client
	}
}

// NewClient creates an object store client for a bucket endpoint.
func NewClient(endpoint string, opts ...ClientOption) *Client {
	c := &Client{
		endpoint:    strings.TrimRight(endpoint, "/"),
		client:      &http.Client{Timeout: DefaultTimeout},
		maxRetries:  DefaultMaxRetries,
		retryDelay:  DefaultRetryDelay,
		maxDelay:    DefaultMaxDelay,
		backoffMult: DefaultBackoffMult,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// listResponse is the bucket listing payload.
type listResponse struct {
	Objects       []listObject `json:"objects"`
	Prefixes      []string     `json:"prefixes"`
	NextStartWith string       `json:"nextStartWith"`
}

type listObject struct {
	Name         string    `json:"name"`
	TimeModified time.Time `json:"timeModified"`
}

// get performs a GET with retries. A 404 maps to logsource.ErrNotFound;
// exhausted retries map to logsource.ErrUnavailable.
func (c *Client) get(ctx context.Context, rawURL string) ([]byte, error) {
	delay := c.retryDelay
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
			delay = time.Duration(float64(delay) * c.backoffMult)
			if delay > c.maxDelay {
				delay = c.maxDelay
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("http request: %w", err)
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("read response: %w", err)
			continue
		}

		switch {
		case resp.StatusCode == http.StatusNotFound:
			// Absence is an answer, not a transient fault.
			return nil, logsource.ErrNotFound
		case resp.StatusCode == http.StatusTooManyRequests:
			lastErr = fmt.Errorf("rate limited (429)")
			continue
		case resp.StatusCode >= 500:
			lastErr = fmt.Errorf("server error %d", resp.StatusCode)
			continue
		case resp.StatusCode != http.StatusOK:
			return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
		}

		return body, nil
	}

	return nil, fmt.Errorf("%w: %v", logsource.ErrUnavailable, lastErr)
}

// list queries the bucket listing API with a prefix and optional delimiter.
func (c *Client) list(ctx context.Context, prefix, delimiter string) (*listResponse, error) {
	q := url.Values{}
	q.Set("prefix", prefix)
	if delimiter != "" {
		q.Set("delimiter", delimiter)
	}
	q.Set("fields", "name,timeModified")

	body, err := c.get(ctx, c.endpoint+"/o?"+q.Encode())
	if err != nil {
		return nil, err
	}
	var out listResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("unmarshal listing: %w", err)
	}
	return &out, nil
}

func (c *Client) readObject(ctx context.Context, name string) ([]byte, error) {
	return c.get(ctx, c.endpoint+"/o/"+url.PathEscape(name))
}

func (c *Client) ListConfigTypes(ctx context.Context) ([]string, error) {
	resp, err := c.list(ctx, "", "/")
	if err != nil {
		return nil, err
	}
	types := make([]string, 0, len(resp.Prefixes))
	for _, p := range resp.Prefixes {
		types = append(types, strings.TrimSuffix(p, "/"))
	}
	sort.Strings(types)
	return types, nil
}

func (c *Client) ListRuns(ctx context.Context, configType string) ([]string, error) {
	resp, err := c.list(ctx, configType+"/logs/", "/")
	if err != nil {
		return nil, err
	}
	runs := make([]string, 0, len(resp.Prefixes))
	for _, p := range resp.Prefixes {
		name := strings.TrimSuffix(strings.TrimPrefix(p, configType+"/logs/"), "/")
		if domain.IsRunID(name) {
			runs = append(runs, name)
		}
	}
	if len(runs) == 0 {
		return nil, fmt.Errorf("config type %q: %w", configType, logsource.ErrNotFound)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(runs)))
	return runs, nil
}

func (c *Client) ListFiles(ctx context.Context, configType, runID string) ([]string, error) {
	prefix := configType + "/logs/" + runID + "/"
	resp, err := c.list(ctx, prefix, "/")
	if err != nil {
		return nil, err
	}
	if len(resp.Objects) == 0 {
		// The listing API answers an unknown prefix with an empty page,
		// not a 404. Treat it the same as a missing run directory.
		return nil, fmt.Errorf("run %q: %w", runID, logsource.ErrNotFound)
	}
	names := make([]string, 0, len(resp.Objects))
	for _, o := range resp.Objects {
		names = append(names, strings.TrimPrefix(o.Name, prefix))
	}
	sort.Strings(names)
	return names, nil
}

func (c *Client) ReadObject(ctx context.Context, configType, runID, name string) ([]byte, error) {
	return c.readObject(ctx, configType+"/logs/"+runID+"/"+name)
}

func (c *Client) ListTickPartitions(ctx context.Context, configType, date string) ([]string, error) {
	prefix := configType + "/data/sidecar/ticks/" + logsource.TickPartitionPrefix(date)
	resp, err := c.list(ctx, prefix, "")
	if err != nil {
		if errors.Is(err, logsource.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	objs := make([]listObject, 0, len(resp.Objects))
	objs = append(objs, resp.Objects...)
	sort.Slice(objs, func(i, j int) bool { return objs[i].TimeModified.After(objs[j].TimeModified) })
	names := make([]string, len(objs))
	for i, o := range objs {
		names[i] = strings.TrimPrefix(o.Name, configType+"/data/sidecar/ticks/")
	}
	return names, nil
}

func (c *Client) ReadTickPartition(ctx context.Context, configType, name string) ([]byte, error) {
	return c.readObject(ctx, configType+"/data/sidecar/ticks/"+name)
}
