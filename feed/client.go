// Package feed provides a Go client for cursor-paginated timeline feeds
// (a user's posts, search results) served as deeply nested JSON documents.
//
// The package is organised around a generic Paginator that walks a feed
// page by page. Feed-specific knowledge lives in two small strategies: a
// PageExtractor that finds the entries and raw items of a page, and a
// CursorExtractor that finds the next cursor. Adding a feed shape only
// requires a new Shape; the Paginator itself does not change.
package feed

import (
	"net"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
)

// Client contains shared configuration and HTTP plumbing for the SDK.
// It implements Requester and may be shared by many Paginators as long as
// they are driven sequentially.
type Client struct {
	// BaseURL is the API origin (for example: https://api.example.com).
	BaseURL string

	// BearerToken is sent as "Authorization: Bearer <token>".
	BearerToken string

	// GuestToken is sent in the x-guest-token header when set.
	GuestToken string

	// HTTPClient is the underlying HTTP client. A tuned default is provided
	// and can be replaced via WithHTTPClient.
	HTTPClient *http.Client

	// UserAgent is added to each request.
	UserAgent string

	// Retry configuration controls jittered exponential backoff for 429/5xx.
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration

	// Observability hooks.
	Logger      *logrus.Entry
	BeforeHooks []func(*http.Request)
	AfterHooks  []func(*http.Response, []byte, error)

	breakerSettings gobreaker.Settings
	breaker         *gobreaker.CircuitBreaker
}

// New constructs a Client with safe defaults. Options can override defaults.
func New(opts ...Option) *Client {
	c := &Client{
		BaseURL: "https://api.example.com",
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout:   10 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout:   10 * time.Second,
				ResponseHeaderTimeout: 30 * time.Second,
				ExpectContinueTimeout: 1 * time.Second,
				MaxIdleConns:          100,
				IdleConnTimeout:       90 * time.Second,
			},
		},
		UserAgent:       "feedpager-go/0.1",
		MaxRetries:      3,
		InitialBackoff:  300 * time.Millisecond,
		MaxBackoff:      3 * time.Second,
		breakerSettings: defaultBreakerSettings(),
	}
	for _, f := range opts {
		f(c)
	}
	c.breaker = gobreaker.NewCircuitBreaker(c.breakerSettings)
	return c
}

// defaultBreakerSettings opens the breaker after five consecutive failed
// attempts and probes again after thirty seconds.
func defaultBreakerSettings() gobreaker.Settings {
	return gobreaker.Settings{
		Name:        "feed-http",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	}
}

func (c *Client) log() *logrus.Entry {
	if c.Logger != nil {
		return c.Logger
	}
	return defaultLogger()
}

func defaultLogger() *logrus.Entry {
	return logrus.StandardLogger().WithField("component", "feed")
}
