package feed

import (
	"errors"
	"time"

	"github.com/spyzhov/ajson"
)

// Item is what a Paginator accumulates. The predicates drive the reply and
// repost filters.
type Item interface {
	IsReply() bool
	IsRepost() bool
}

// Owned is implemented by items that can name the subject owning them.
// Exports fall back to the owner of the first item.
type Owned interface {
	Owner() string
}

// ItemParser converts one raw item into T. resp is the whole page the item
// came from. Failures are per-item and never abort a page.
type ItemParser[T Item] interface {
	Parse(raw, resp *ajson.Node) (T, error)
}

// ItemParserFunc adapts a function to ItemParser.
type ItemParserFunc[T Item] func(raw, resp *ajson.Node) (T, error)

func (f ItemParserFunc[T]) Parse(raw, resp *ajson.Node) (T, error) { return f(raw, resp) }

// Tweet is a post as delivered by either feed shape.
type Tweet struct {
	ID             string    `json:"id"`
	Text           string    `json:"text"`
	CreatedAt      time.Time `json:"created_at"`
	AuthorID       string    `json:"author_id"`
	AuthorUsername string    `json:"author_username"`
	AuthorName     string    `json:"author_name"`
	InReplyToID    string    `json:"in_reply_to_id,omitempty"`
	Repost         bool      `json:"repost"`
	Likes          int       `json:"likes"`
	Reposts        int       `json:"reposts"`
}

func (t *Tweet) IsReply() bool  { return t.InReplyToID != "" }
func (t *Tweet) IsRepost() bool { return t.Repost }
func (t *Tweet) Owner() string  { return t.AuthorUsername }

// TweetParser reads both the GraphQL tweet result (rest_id, legacy, core)
// and the flat REST status (id_str, user).
type TweetParser struct{}

var errNoTweetID = errors.New("tweet has no id")

func (TweetParser) Parse(raw, _ *ajson.Node) (*Tweet, error) {
	if inner, ok := lookup(raw, "tweet"); ok {
		// TweetWithVisibilityResults wraps the real result.
		raw = inner
	}
	if _, ok := lookup(raw, "legacy"); ok {
		return parseGraphTweet(raw)
	}
	return parseRESTTweet(raw)
}

func parseGraphTweet(raw *ajson.Node) (*Tweet, error) {
	legacy, _ := lookup(raw, "legacy")
	t := &Tweet{}
	t.ID, _ = stringAt(raw, "rest_id")
	if t.ID == "" {
		t.ID, _ = stringAt(legacy, "id_str")
	}
	if t.ID == "" {
		return nil, errNoTweetID
	}
	t.Text, _ = stringAt(legacy, "full_text")
	t.CreatedAt = parseCreatedAt(legacy)
	t.InReplyToID, _ = stringAt(legacy, "in_reply_to_status_id_str")
	_, t.Repost = lookup(legacy, "retweeted_status_result")
	t.Likes, _ = numberAt(legacy, "favorite_count")
	t.Reposts, _ = numberAt(legacy, "retweet_count")
	if user, ok := lookup(raw, "core", "user_result", "result"); ok {
		t.AuthorID, _ = stringAt(user, "rest_id")
		t.AuthorUsername, _ = stringAt(user, "legacy", "screen_name")
		t.AuthorName, _ = stringAt(user, "legacy", "name")
	}
	return t, nil
}

func parseRESTTweet(raw *ajson.Node) (*Tweet, error) {
	t := &Tweet{}
	t.ID, _ = stringAt(raw, "id_str")
	if t.ID == "" {
		return nil, errNoTweetID
	}
	t.Text, _ = stringAt(raw, "full_text")
	if t.Text == "" {
		t.Text, _ = stringAt(raw, "text")
	}
	t.CreatedAt = parseCreatedAt(raw)
	t.InReplyToID, _ = stringAt(raw, "in_reply_to_status_id_str")
	_, t.Repost = lookup(raw, "retweeted_status")
	t.Likes, _ = numberAt(raw, "favorite_count")
	t.Reposts, _ = numberAt(raw, "retweet_count")
	if user, ok := lookup(raw, "user"); ok {
		t.AuthorID, _ = stringAt(user, "id_str")
		t.AuthorUsername, _ = stringAt(user, "screen_name")
		t.AuthorName, _ = stringAt(user, "name")
	}
	return t, nil
}

// parseCreatedAt reads "Wed Oct 10 20:19:24 +0000 2018". Unknown layouts
// leave the zero time.
func parseCreatedAt(n *ajson.Node) time.Time {
	s, ok := stringAt(n, "created_at")
	if !ok {
		return time.Time{}
	}
	ts, err := time.Parse(time.RubyDate, s)
	if err != nil {
		return time.Time{}
	}
	return ts.UTC()
}
