package feed

import "context"

// PageEvent describes one completed page fetch.
type PageEvent struct {
	Feed    string
	Subject string
	Items   int
	Skipped int
	Failed  int
	Cursor  CursorState
}

// Observer receives pagination events. Implementations must not block;
// they run on the fetching goroutine.
type Observer interface {
	OnPage(ctx context.Context, ev PageEvent)
	OnParseError(ctx context.Context, feed string, err error)
	OnMalformed(ctx context.Context, feed string, err error)
}

// NopObserver ignores every event.
type NopObserver struct{}

func (NopObserver) OnPage(context.Context, PageEvent)            {}
func (NopObserver) OnParseError(context.Context, string, error) {}
func (NopObserver) OnMalformed(context.Context, string, error)  {}

// Observers fans events out in order.
type Observers []Observer

func (os Observers) OnPage(ctx context.Context, ev PageEvent) {
	for _, o := range os {
		o.OnPage(ctx, ev)
	}
}

func (os Observers) OnParseError(ctx context.Context, feed string, err error) {
	for _, o := range os {
		o.OnParseError(ctx, feed, err)
	}
}

func (os Observers) OnMalformed(ctx context.Context, feed string, err error) {
	for _, o := range os {
		o.OnMalformed(ctx, feed, err)
	}
}
