package feed

import (
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
)

// Option customizes a Client at construction time.
type Option func(*Client)

func WithBaseURL(u string) Option          { return func(c *Client) { c.BaseURL = strings.TrimRight(u, "/") } }
func WithBearerToken(t string) Option      { return func(c *Client) { c.BearerToken = t } }
func WithGuestToken(t string) Option       { return func(c *Client) { c.GuestToken = t } }
func WithHTTPClient(h *http.Client) Option { return func(c *Client) { c.HTTPClient = h } }
func WithUserAgent(ua string) Option       { return func(c *Client) { c.UserAgent = ua } }
func WithRetries(max int) Option           { return func(c *Client) { c.MaxRetries = max } }
func WithBackoff(init, max time.Duration) Option {
	return func(c *Client) {
		c.InitialBackoff = init
		c.MaxBackoff = max
	}
}
func WithLogger(l *logrus.Entry) Option { return func(c *Client) { c.Logger = l } }

// WithBreaker replaces the circuit breaker settings used around each HTTP attempt.
func WithBreaker(s gobreaker.Settings) Option {
	return func(c *Client) { c.breakerSettings = s }
}
