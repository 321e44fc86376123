package feed

import (
	"context"
	"net/url"
	"strings"

	"github.com/spyzhov/ajson"
)

// SearchFilter narrows a search feed on the server side.
type SearchFilter string

const (
	SearchTop    SearchFilter = ""
	SearchLatest SearchFilter = "live"
	SearchUsers  SearchFilter = "user"
	SearchPhotos SearchFilter = "image"
	SearchVideos SearchFilter = "video"
)

// ParseSearchFilter maps a user supplied name to a SearchFilter.
func ParseSearchFilter(s string) (SearchFilter, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "top":
		return SearchTop, true
	case "live", "latest":
		return SearchLatest, true
	case "user", "users":
		return SearchUsers, true
	case "image", "photos":
		return SearchPhotos, true
	case "video", "videos":
		return SearchVideos, true
	}
	return SearchTop, false
}

// SearchEntries extracts pages of the search shape. Every entry is one
// item, either wrapping a tweet result or being the status itself. Responses without the timeline instructions fall back to a flat
// "statuses" list.
type SearchEntries struct{}

func (SearchEntries) Entries(resp *ajson.Node) ([]*ajson.Node, error) {
	if instructions, ok := arrayAt(resp, "status", "search_by_raw_query", "search_timeline", "timeline", "instructions"); ok {
		entries, _ := addEntries(instructions, "type")
		return entries, nil
	}
	if statuses, ok := arrayAt(resp, "statuses"); ok {
		return statuses, nil
	}
	return nil, &MalformedError{Feed: "search", Reason: "neither timeline instructions nor statuses present"}
}

func (SearchEntries) Items(entry *ajson.Node) []*ajson.Node {
	if entry == nil || !entry.IsObject() {
		return nil
	}
	if entryKind(entry) == "cursor" {
		return nil
	}
	if raw, ok := lookup(entry, "content", "itemContent", "tweet_results", "result"); ok {
		return []*ajson.Node{raw}
	}
	return []*ajson.Node{entry}
}

// SearchCursor reads the cursor from search_metadata.next_results, an
// encoded query string such as "?max_id=123&q=golang".
type SearchCursor struct {
	Equal CursorEqualFunc
}

func (sc SearchCursor) Cursor(resp *ajson.Node, _ []*ajson.Node, previous string) (CursorState, error) {
	meta, ok := lookup(resp, "search_metadata")
	if !ok {
		return advanceCursor(previous, "", false, sc.Equal),
			&MalformedError{Feed: "search", Reason: "missing search_metadata"}
	}
	next, ok := stringAt(meta, "next_results")
	if !ok {
		// Absent next_results is how the last page is marked.
		return advanceCursor(previous, "", false, sc.Equal), nil
	}
	token, found := parseNextResults(next)
	return advanceCursor(previous, token, found, sc.Equal), nil
}

// parseNextResults isolates the token between the first "=" and the
// following "&q".
func parseNextResults(s string) (string, bool) {
	_, rest, ok := strings.Cut(s, "=")
	if !ok {
		return "", false
	}
	token, _, _ := strings.Cut(rest, "&q")
	return token, token != ""
}

// SearchShape returns the strategies of the search feed.
func SearchShape() Shape {
	return Shape{Name: "search", Pages: SearchEntries{}, Cursors: SearchCursor{}}
}

// SearchFeed issues search requests for one query.
type SearchFeed struct {
	Requester Requester
	Query     string
	Filter    SearchFilter
}

func (f *SearchFeed) FetchPage(ctx context.Context, cursor string) (*ajson.Node, error) {
	return f.Requester.FetchSearch(ctx, f.Query, f.Filter, cursor)
}

func (f *SearchFeed) Subject() string { return f.Query }

// ExportName names exports after the escaped query.
func (f *SearchFeed) ExportName() string { return url.QueryEscape(f.Query) }

// FetchSearch returns one raw page of search results.
func (c *Client) FetchSearch(ctx context.Context, query string, filter SearchFilter, cursor string) (*ajson.Node, error) {
	q := url.Values{}
	q.Set("q", query)
	q.Set("count", "20")
	if filter != SearchTop {
		q.Set("result_filter", string(filter))
	}
	if cursor != "" {
		q.Set("max_id", cursor)
	}
	return c.getJSON(ctx, "/search/tweets", q, c.authHeaders())
}

// SearchTweets builds a Paginator over the results of query. No page is
// fetched yet.
func (c *Client) SearchTweets(query string, filter SearchFilter, cfg Config, opts ...PaginatorOption) (*Paginator[*Tweet], error) {
	feed := &SearchFeed{Requester: c, Query: query, Filter: filter}
	opts = append([]PaginatorOption{WithPaginatorLogger(c.log())}, opts...)
	return NewPaginator[*Tweet](feed, SearchShape(), TweetParser{}, cfg, opts...)
}

// Search builds a search Paginator and eagerly runs cfg.Pages pages.
func (c *Client) Search(ctx context.Context, query string, filter SearchFilter, cfg Config, opts ...PaginatorOption) (*Paginator[*Tweet], error) {
	p, err := c.SearchTweets(query, filter, cfg, opts...)
	if err != nil {
		return nil, err
	}
	_, err = p.Run(ctx)
	return p, err
}
