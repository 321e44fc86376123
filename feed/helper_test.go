package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/spyzhov/ajson"
	"github.com/stretchr/testify/require"
)

func newTestServer(handler http.HandlerFunc) (*httptest.Server, *Client) {
	srv := httptest.NewServer(handler)
	cl := New(
		WithBaseURL(srv.URL),
		WithRetries(2),
		WithBackoff(5*time.Millisecond, 20*time.Millisecond),
		WithLogger(quietLogger()),
	)
	return srv, cl
}

func quietLogger() *logrus.Entry {
	l, _ := test.NewNullLogger()
	return logrus.NewEntry(l)
}

// tw describes a tweet for the page builders.
type tw struct {
	id     string
	reply  bool
	repost bool
}

func graphTweet(t tw) map[string]any {
	legacy := map[string]any{
		"full_text":      "tweet " + t.id,
		"created_at":     "Wed Oct 10 20:19:24 +0000 2018",
		"favorite_count": 3,
		"retweet_count":  1,
	}
	if t.reply {
		legacy["in_reply_to_status_id_str"] = "900"
	}
	if t.repost {
		legacy["retweeted_status_result"] = map[string]any{"result": map[string]any{"rest_id": "800"}}
	}
	return map[string]any{
		"__typename": "Tweet",
		"rest_id":    t.id,
		"legacy":     legacy,
		"core": map[string]any{"user_result": map[string]any{"result": map[string]any{
			"rest_id": "42",
			"legacy":  map[string]any{"screen_name": "alice", "name": "Alice"},
		}}},
	}
}

func tweetEntry(t tw) map[string]any {
	return map[string]any{
		"entryId": "tweet-" + t.id,
		"content": map[string]any{"content": map[string]any{"tweetResult": map[string]any{"result": graphTweet(t)}}},
	}
}

func conversationEntry(id string, tweets ...tw) map[string]any {
	items := make([]any, 0, len(tweets))
	for _, t := range tweets {
		items = append(items, map[string]any{
			"item": map[string]any{"content": map[string]any{"tweetResult": map[string]any{"result": graphTweet(t)}}},
		})
	}
	return map[string]any{
		"entryId": "homeConversation-" + id,
		"content": map[string]any{"items": items},
	}
}

func bottomCursor(value string) map[string]any {
	return map[string]any{
		"entryId": "cursor-bottom-0",
		"content": map[string]any{"cursorType": "Bottom", "value": value},
	}
}

// timelinePage renders a timeline response. An empty cursor omits the
// bottom cursor entry.
func timelinePage(cursor string, entries ...map[string]any) string {
	list := make([]any, 0, len(entries)+2)
	list = append(list, map[string]any{
		"entryId": "cursor-top-0",
		"content": map[string]any{"cursorType": "Top", "value": "top"},
	})
	for _, e := range entries {
		list = append(list, e)
	}
	if cursor != "" {
		list = append(list, bottomCursor(cursor))
	}
	return mustJSON(map[string]any{"data": map[string]any{"user_result": map[string]any{"result": map[string]any{
		"timeline_response": map[string]any{"timeline": map[string]any{"instructions": []any{
			map[string]any{"__typename": "TimelineClearCache"},
			map[string]any{"__typename": "TimelineAddEntries", "entries": list},
		}}},
	}}}})
}

func tweets(ts ...tw) []map[string]any {
	out := make([]map[string]any, 0, len(ts))
	for _, t := range ts {
		out = append(out, tweetEntry(t))
	}
	return out
}

// searchPage renders a REST search response. An empty next omits
// next_results.
func searchPage(next string, ids ...string) string {
	statuses := make([]any, 0, len(ids))
	for _, id := range ids {
		statuses = append(statuses, map[string]any{
			"id_str":     id,
			"full_text":  "status " + id,
			"created_at": "Wed Oct 10 20:19:24 +0000 2018",
			"user":       map[string]any{"id_str": "7", "screen_name": "bob", "name": "Bob"},
		})
	}
	meta := map[string]any{"count": len(ids)}
	if next != "" {
		meta["next_results"] = next
	}
	return mustJSON(map[string]any{"statuses": statuses, "search_metadata": meta})
}

func mustJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(b)
}

func mustNode(t *testing.T, s string) *ajson.Node {
	t.Helper()
	n, err := ajson.Unmarshal([]byte(s))
	require.NoError(t, err)
	return n
}

// scriptedFeed serves canned pages in order and records the cursors it was
// asked for.
type scriptedFeed struct {
	subject string
	pages   []string
	errs    map[int]error

	mu      sync.Mutex
	cursors []string
}

func (f *scriptedFeed) FetchPage(_ context.Context, cursor string) (*ajson.Node, error) {
	f.mu.Lock()
	i := len(f.cursors)
	f.cursors = append(f.cursors, cursor)
	f.mu.Unlock()
	if err := f.errs[i]; err != nil {
		return nil, err
	}
	if i >= len(f.pages) {
		return nil, fmt.Errorf("unexpected request #%d", i+1)
	}
	return ajson.Unmarshal([]byte(f.pages[i]))
}

func (f *scriptedFeed) Subject() string { return f.subject }

func (f *scriptedFeed) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.cursors)
}

// recordingObserver keeps every event.
type recordingObserver struct {
	pages     []PageEvent
	parseErrs []error
	malformed []error
}

func (o *recordingObserver) OnPage(_ context.Context, ev PageEvent) { o.pages = append(o.pages, ev) }
func (o *recordingObserver) OnParseError(_ context.Context, _ string, err error) {
	o.parseErrs = append(o.parseErrs, err)
}
func (o *recordingObserver) OnMalformed(_ context.Context, _ string, err error) {
	o.malformed = append(o.malformed, err)
}

// recordingSleeper captures pauses instead of sleeping.
type recordingSleeper struct{ pauses []time.Duration }

func (s *recordingSleeper) sleep(ctx context.Context, d time.Duration) error {
	s.pauses = append(s.pauses, d)
	return ctx.Err()
}

func tweetIDs(items []*Tweet) []string {
	out := make([]string, 0, len(items))
	for _, t := range items {
		out = append(out, t.ID)
	}
	return out
}

func newTimelinePaginator(t *testing.T, f PageFetcher, cfg Config, opts ...PaginatorOption) *Paginator[*Tweet] {
	t.Helper()
	opts = append([]PaginatorOption{WithPaginatorLogger(quietLogger())}, opts...)
	p, err := NewPaginator[*Tweet](f, TimelineShape(), TweetParser{}, cfg, opts...)
	require.NoError(t, err)
	return p
}
