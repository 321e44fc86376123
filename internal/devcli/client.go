package devcli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/steven3002/feedpager-go/feed"
)

// NewClient constructs a feed client from the global settings.
func NewClient(s Settings, log *logrus.Entry) *feed.Client {
	return feed.New(
		feed.WithBaseURL(s.BaseURL),
		feed.WithBearerToken(s.BearerToken),
		feed.WithGuestToken(s.GuestToken),
		feed.WithRetries(s.Retries),
		feed.WithBackoff(s.BackoffInit, s.BackoffMax),
		feed.WithHTTPClient(&http.Client{Timeout: s.Timeout}),
		feed.WithLogger(log),
	)
}

// Ctx returns a context cancelled on SIGINT or SIGTERM.
func Ctx(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
