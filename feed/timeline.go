package feed

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/spyzhov/ajson"
)

// TimelineFilters are the server-side options of a user timeline request.
type TimelineFilters struct {
	IncludeReplies bool
}

// TimelineEntries extracts pages of the user timeline shape: entries are
// tagged by an entryId prefix and "homeConversation" entries bundle several
// tweets.
type TimelineEntries struct{}

func (TimelineEntries) Entries(resp *ajson.Node) ([]*ajson.Node, error) {
	userResult, ok := lookup(resp, "data", "user_result")
	if !ok {
		return nil, &MalformedError{Feed: "timeline", Reason: "missing data.user_result"}
	}
	result, ok := lookup(userResult, "result")
	if !ok || (result.IsObject() && len(result.Keys()) == 0) {
		return nil, &NotFoundError{Reason: "empty user result"}
	}
	instructions, ok := arrayAt(result, "timeline_response", "timeline", "instructions")
	if !ok {
		return nil, &MalformedError{Feed: "timeline", Reason: "missing timeline instructions"}
	}
	entries, _ := addEntries(instructions, "__typename")
	return entries, nil
}

func (TimelineEntries) Items(entry *ajson.Node) []*ajson.Node {
	switch entryKind(entry) {
	case "tweet":
		if raw, ok := lookup(entry, "content", "content", "tweetResult", "result"); ok {
			return []*ajson.Node{raw}
		}
	case "homeConversation":
		items, _ := arrayAt(entry, "content", "items")
		out := make([]*ajson.Node, 0, len(items))
		for _, it := range items {
			if raw, ok := lookup(it, "item", "content", "tweetResult", "result"); ok {
				out = append(out, raw)
			}
		}
		return out
	}
	return nil
}

// TimelineCursor finds the cursor pseudo-entry whose cursorType is "Bottom".
type TimelineCursor struct {
	// Equal overrides plain string comparison of successive cursors.
	Equal CursorEqualFunc
}

func (tc TimelineCursor) Cursor(_ *ajson.Node, entries []*ajson.Node, previous string) (CursorState, error) {
	for _, entry := range entries {
		if entryKind(entry) != "cursor" {
			continue
		}
		if t, _ := stringAt(entry, "content", "cursorType"); t != "Bottom" {
			continue
		}
		value, ok := stringAt(entry, "content", "value")
		if !ok {
			continue
		}
		return advanceCursor(previous, value, true, tc.Equal), nil
	}
	return advanceCursor(previous, "", false, tc.Equal),
		&MalformedError{Feed: "timeline", Reason: "no bottom cursor entry"}
}

// TimelineShape returns the strategies of the user timeline feed.
func TimelineShape() Shape {
	return Shape{Name: "timeline", Pages: TimelineEntries{}, Cursors: TimelineCursor{}}
}

// TimelineFeed issues user timeline requests for one user.
type TimelineFeed struct {
	Requester Requester
	UserID    string
	Filters   TimelineFilters
}

func (f *TimelineFeed) FetchPage(ctx context.Context, cursor string) (*ajson.Node, error) {
	return f.Requester.FetchTimeline(ctx, f.UserID, cursor, f.Filters)
}

func (f *TimelineFeed) Subject() string { return f.UserID }

// FetchTimeline returns one raw page of a user's timeline.
func (c *Client) FetchTimeline(ctx context.Context, userID, cursor string, f TimelineFilters) (*ajson.Node, error) {
	q := url.Values{}
	q.Set("count", "40")
	q.Set("include_replies", strconv.FormatBool(f.IncludeReplies))
	if cursor != "" {
		q.Set("cursor", cursor)
	}
	path := fmt.Sprintf("/graphql/users/%s/tweets", url.PathEscape(userID))
	resp, err := c.getJSON(ctx, path, q, c.authHeaders())
	return resp, notFoundOn404(err, userID)
}

// UserTweets builds a Paginator over the timeline of subject, which may be a
// numeric user id or a username. No page is fetched yet.
func (c *Client) UserTweets(ctx context.Context, subject string, cfg Config, opts ...PaginatorOption) (*Paginator[*Tweet], error) {
	userID, err := c.userID(ctx, subject)
	if err != nil {
		return nil, err
	}
	feed := &TimelineFeed{Requester: c, UserID: userID, Filters: TimelineFilters{IncludeReplies: cfg.IncludeReplies}}
	opts = append([]PaginatorOption{WithPaginatorLogger(c.log())}, opts...)
	return NewPaginator[*Tweet](feed, TimelineShape(), TweetParser{}, cfg, opts...)
}

// GetTweets builds a timeline Paginator and eagerly runs cfg.Pages pages.
// The Paginator is returned together with any error so that partial
// results stay available.
func (c *Client) GetTweets(ctx context.Context, subject string, cfg Config, opts ...PaginatorOption) (*Paginator[*Tweet], error) {
	p, err := c.UserTweets(ctx, subject, cfg, opts...)
	if err != nil {
		return nil, err
	}
	_, err = p.Run(ctx)
	return p, err
}
