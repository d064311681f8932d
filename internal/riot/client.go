package riot

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/http2"
	"golang.org/x/time/rate"
)

const (
	// Development keys allow 20 requests per second and 100 per two minutes.
	DefaultPerSecond     = 20
	DefaultPerTwoMinutes = 100

	maxRetryAfter = 10 * time.Second
)

// Client is a Riot Games API client with rate limiting
type Client struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string

	limiters []*rate.Limiter
}

type Option func(*Client)

// WithBaseURL sends every request to baseURL instead of the routing host.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithRateLimit replaces the default limits. Zero values disable a window.
func WithRateLimit(perSecond, perTwoMinutes int) Option {
	return func(c *Client) {
		c.limiters = buildLimiters(perSecond, perTwoMinutes)
	}
}

// NewClient creates a new Riot API client
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey: strings.TrimSpace(apiKey),
		httpClient: &http.Client{
			Timeout:   10 * time.Second,
			Transport: newTransport(),
		},
		limiters: buildLimiters(DefaultPerSecond, DefaultPerTwoMinutes),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func newTransport() *http.Transport {
	t := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ExpectContinueTimeout: time.Second,
	}
	// Riot's edge speaks h2; HTTP/1.1 still works if the upgrade cannot be configured.
	if err := http2.ConfigureTransport(t); err != nil {
		slog.Debug("http2 transport unavailable", "error", err)
	}
	return t
}

func buildLimiters(perSecond, perTwoMinutes int) []*rate.Limiter {
	limiters := []*rate.Limiter{}
	if perSecond > 0 {
		limiters = append(limiters, rate.NewLimiter(rate.Limit(perSecond), perSecond))
	}
	if perTwoMinutes > 0 {
		limiters = append(limiters, rate.NewLimiter(rate.Every(2*time.Minute/time.Duration(perTwoMinutes)), perTwoMinutes))
	}
	return limiters
}

func (c *Client) host(routing string) string {
	if c.baseURL != "" {
		return c.baseURL
	}
	return fmt.Sprintf("https://%s.api.riotgames.com", strings.ToLower(routing))
}

func (c *Client) wait(ctx context.Context) error {
	for _, l := range c.limiters {
		if err := l.Wait(ctx); err != nil {
			return fmt.Errorf("rate limit wait: %w", err)
		}
	}
	return nil
}

// doRequest performs an HTTP request with rate limiting and a single retry on 429
func (c *Client) doRequest(ctx context.Context, endpoint string) (*http.Response, error) {
	for attempt := 0; ; attempt++ {
		if err := c.wait(ctx); err != nil {
			return nil, err
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("X-Riot-Token", c.apiKey)
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != http.StatusTooManyRequests || attempt > 0 {
			return resp, nil
		}
		delay := retryAfter(resp.Header.Get("Retry-After"))
		resp.Body.Close()
		slog.Warn("riot rate limited, retrying", "endpoint", endpoint, "delay", delay)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}
}

func retryAfter(header string) time.Duration {
	wait := time.Second
	if v, err := strconv.Atoi(strings.TrimSpace(header)); err == nil && v >= 0 {
		wait = time.Duration(v) * time.Second
	}
	if wait > maxRetryAfter {
		wait = maxRetryAfter
	}
	return wait
}

// get performs a GET request and decodes the JSON response
func (c *Client) get(ctx context.Context, endpoint string, result any) error {
	slog.Debug("riot request", "endpoint", endpoint)
	resp, err := c.doRequest(ctx, endpoint)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{StatusCode: resp.StatusCode, Endpoint: endpoint, Body: strings.TrimSpace(string(body))}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
