package feed

import (
	"context"

	"github.com/spyzhov/ajson"
)

// Requester issues the raw feed requests. *Client implements it; tests and
// alternative transports may provide their own. Failures must be
// distinguishable from empty feeds (the Client returns *TransportError
// and *NotFoundError).
type Requester interface {
	FetchTimeline(ctx context.Context, userID, cursor string, filters TimelineFilters) (*ajson.Node, error)
	FetchSearch(ctx context.Context, query string, filter SearchFilter, cursor string) (*ajson.Node, error)
}

// PageFetcher binds a Requester to one logical query. A Paginator calls
// FetchPage once per page with the current cursor, empty on the first call.
type PageFetcher interface {
	FetchPage(ctx context.Context, cursor string) (*ajson.Node, error)
	Subject() string
}

// ExportNamer is implemented by fetchers that name exports themselves.
type ExportNamer interface {
	ExportName() string
}

var (
	_ Requester   = (*Client)(nil)
	_ PageFetcher = (*TimelineFeed)(nil)
	_ PageFetcher = (*SearchFeed)(nil)
	_ ExportNamer = (*SearchFeed)(nil)
)
