package e2e

import (
	"context"
	"errors"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/steven3002/feedpager-go/feed"
)

func TestE2E_Live(t *testing.T) {
	if os.Getenv("FEEDPAGER_E2E") != "1" {
		t.Skip("set FEEDPAGER_E2E=1 to run live test")
	}

	token := mustEnv(t, "FEEDPAGER_BEARER_TOKEN")
	user := mustEnv(t, "FEEDPAGER_E2E_USER")
	query := mustEnv(t, "FEEDPAGER_E2E_QUERY")
	base := os.Getenv("FEEDPAGER_BASE_URL") // optional override

	logger := logrus.New()
	logger.SetLevel(logrus.DebugLevel)
	logger.SetOutput(testWriter{t})

	opts := []feed.Option{
		feed.WithBearerToken(token),
		feed.WithGuestToken(os.Getenv("FEEDPAGER_GUEST_TOKEN")),
		feed.WithRetries(4),
		feed.WithBackoff(2*time.Second, 16*time.Second),
		feed.WithHTTPClient(&http.Client{Timeout: 60 * time.Second}),
		feed.WithLogger(logrus.NewEntry(logger)),
	}
	if base != "" {
		opts = append(opts, feed.WithBaseURL(base))
	}
	cl := feed.New(opts...)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	// resolve
	u, err := cl.ResolveUser(ctx, user)
	if err != nil {
		t.Fatalf("ResolveUser failed: %v", err)
	}
	t.Logf("resolved %s -> %s", user, u.ID)

	// timeline, page by page
	cfg := feed.Config{Pages: 2, Delay: 2 * time.Second}
	p, err := cl.UserTweets(ctx, u.ID, cfg)
	if err != nil {
		t.Fatalf("UserTweets failed: %v", err)
	}
	for b, err := range p.Pages(ctx) {
		if err != nil {
			t.Fatalf("timeline page failed: %v", err)
		}
		t.Logf("timeline page: %d new, cursor %q", len(b.Items), b.Snapshot.Cursor.Token)
	}
	if p.Requests() == 0 {
		t.Fatalf("no timeline request issued")
	}

	// search, eager
	s, err := cl.Search(ctx, query, feed.SearchLatest, cfg)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	t.Logf("search %q: %d items over %d requests", query, s.Len(), s.Requests())

	// a user that cannot exist
	_, err = cl.ResolveUser(ctx, "feedpager_no_such_user_0000000000")
	if !errors.Is(err, feed.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

type testWriter struct{ t *testing.T }

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Log(string(p))
	return len(p), nil
}

func mustEnv(t *testing.T, k string) string {
	t.Helper()
	v := os.Getenv(k)
	if v == "" {
		t.Fatalf("missing env %s", k)
	}
	return v
}
