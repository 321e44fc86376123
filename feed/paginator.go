package feed

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"slices"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spyzhov/ajson"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/steven3002/feedpager-go/feed"

// SleepFunc pauses between pages. It must return early with ctx.Err()
// when ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// PageResult is the outcome of one request cycle.
type PageResult[T Item] struct {
	// Items are the parsed items of the page that survived filtering.
	Items []T
	// Cursor is the Paginator's cursor once the page was processed.
	Cursor CursorState
	// Skipped counts items dropped by the reply and repost filters.
	Skipped int
	// Failed counts raw items the parser rejected.
	Failed int
}

// Snapshot is a point-in-time copy of a Paginator's state.
type Snapshot[T Item] struct {
	Subject       string
	Items         []T
	Cursor        CursorState
	Requests      int
	ParseFailures int
}

// Batch pairs a Snapshot with the items fetched by the call that produced
// it.
type Batch[T Item] struct {
	Snapshot Snapshot[T]
	Items    []T
}

type paginatorOptions struct {
	log      *logrus.Entry
	observer Observer
	sleep    SleepFunc
	tracer   trace.Tracer
}

// PaginatorOption configures a Paginator.
type PaginatorOption func(*paginatorOptions)

// WithPaginatorLogger sets the logger. Page level events are logged at
// Debug, malformed pages at Warn.
func WithPaginatorLogger(l *logrus.Entry) PaginatorOption {
	return func(o *paginatorOptions) {
		if l != nil {
			o.log = l
		}
	}
}

// WithObserver registers an Observer. Repeated use adds observers.
func WithObserver(obs Observer) PaginatorOption {
	return func(o *paginatorOptions) {
		if obs == nil {
			return
		}
		if o.observer == nil {
			o.observer = obs
			return
		}
		o.observer = Observers{o.observer, obs}
	}
}

// WithSleeper replaces the pause between pages.
func WithSleeper(f SleepFunc) PaginatorOption {
	return func(o *paginatorOptions) {
		if f != nil {
			o.sleep = f
		}
	}
}

// WithTracer replaces the global OpenTelemetry tracer.
func WithTracer(t trace.Tracer) PaginatorOption {
	return func(o *paginatorOptions) {
		if t != nil {
			o.tracer = t
		}
	}
}

// Paginator walks one feed. It is constructed once per logical query and
// only ever moves forward: repeated runs continue where the cursor left
// off. A Paginator must be driven by one goroutine at a time; overlapping
// FetchNextPage calls fail with ErrFetchInProgress.
type Paginator[T Item] struct {
	fetcher PageFetcher
	shape   Shape
	parser  ItemParser[T]
	cfg     Config

	log      *logrus.Entry
	observer Observer
	sleep    SleepFunc
	tracer   trace.Tracer

	inFlight      atomic.Bool
	state         CursorState
	items         []T
	err           error
	requests      int
	parseFailures int
}

// NewPaginator validates cfg and returns a Paginator ready for its first
// request. It performs no I/O.
func NewPaginator[T Item](fetcher PageFetcher, shape Shape, parser ItemParser[T], cfg Config, opts ...PaginatorOption) (*Paginator[T], error) {
	switch {
	case fetcher == nil:
		return nil, errors.New("paginator: nil page fetcher")
	case shape.Pages == nil || shape.Cursors == nil:
		return nil, fmt.Errorf("paginator: shape %q is incomplete", shape.Name)
	case parser == nil:
		return nil, errors.New("paginator: nil item parser")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o := paginatorOptions{}
	for _, f := range opts {
		f(&o)
	}
	if o.log == nil {
		o.log = defaultLogger()
	}
	if o.observer == nil {
		o.observer = NopObserver{}
	}
	if o.sleep == nil {
		o.sleep = sleepContext
	}
	if o.tracer == nil {
		o.tracer = otel.Tracer(tracerName)
	}
	return &Paginator[T]{
		fetcher:  fetcher,
		shape:    shape,
		parser:   parser,
		cfg:      cfg,
		log:      o.log.WithFields(logrus.Fields{"feed": shape.Name, "subject": fetcher.Subject()}),
		observer: o.observer,
		sleep:    o.sleep,
		tracer:   o.tracer,
		state:    CursorState{Token: cfg.StartCursor, HasMore: true},
	}, nil
}

// FetchNextPage performs one request cycle. On an exhausted Paginator it
// returns an empty page without contacting the service. A not-found error
// is permanent: this and every later call return it. Transport errors
// leave the cursor untouched so the call may be repeated.
func (p *Paginator[T]) FetchNextPage(ctx context.Context) (PageResult[T], error) {
	if !p.inFlight.CompareAndSwap(false, true) {
		return PageResult[T]{}, ErrFetchInProgress
	}
	defer p.inFlight.Store(false)

	if p.err != nil {
		return PageResult[T]{Cursor: p.state}, p.err
	}
	if p.state.Exhausted() {
		return PageResult[T]{Cursor: p.state}, nil
	}

	ctx, span := p.tracer.Start(ctx, "feed.FetchNextPage", trace.WithAttributes(
		attribute.String("feed.shape", p.shape.Name),
		attribute.String("feed.subject", p.fetcher.Subject()),
		attribute.Bool("feed.first_page", p.requests == 0),
	))
	defer span.End()

	page, err := p.fetchPage(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return page, err
	}
	span.SetAttributes(
		attribute.Int("feed.items", len(page.Items)),
		attribute.Int("feed.parse_failures", page.Failed),
		attribute.Bool("feed.has_more", page.Cursor.HasMore),
	)
	return page, nil
}

func (p *Paginator[T]) fetchPage(ctx context.Context) (PageResult[T], error) {
	p.requests++
	resp, err := p.fetcher.FetchPage(ctx, p.state.Token)
	if err != nil {
		return PageResult[T]{Cursor: p.state}, p.abort(err)
	}

	var page PageResult[T]
	entries, err := p.shape.Pages.Entries(resp)
	if err != nil {
		if !isMalformed(err) {
			return PageResult[T]{Cursor: p.state}, p.abort(err)
		}
		p.malformed(ctx, err)
		p.state = CursorState{Token: p.state.Token}
		page.Cursor = p.state
		p.pageDone(ctx, page)
		return page, nil
	}

	for _, entry := range entries {
		for _, raw := range p.shape.Pages.Items(entry) {
			item, err := p.parse(raw, resp)
			if err != nil {
				page.Failed++
				p.parseFailures++
				p.log.WithError(err).Debug("item skipped")
				p.observer.OnParseError(ctx, p.shape.Name, err)
				continue
			}
			if !p.keep(item) {
				page.Skipped++
				continue
			}
			page.Items = append(page.Items, item)
		}
	}

	state, err := p.shape.Cursors.Cursor(resp, entries, p.state.Token)
	if err != nil {
		p.malformed(ctx, err)
		state.HasMore = false
	}
	p.state = state
	p.items = append(p.items, page.Items...)
	page.Cursor = p.state
	p.pageDone(ctx, page)
	return page, nil
}

// abort records not-found errors as terminal. Anything else propagates
// without changing state.
func (p *Paginator[T]) abort(err error) error {
	if !errors.Is(err, ErrNotFound) {
		return err
	}
	var nf *NotFoundError
	if errors.As(err, &nf) && nf.Subject == "" {
		nf.Subject = p.fetcher.Subject()
	}
	p.err = err
	p.state = CursorState{Token: p.state.Token}
	p.log.WithError(err).Info("feed subject not found")
	return err
}

func (p *Paginator[T]) malformed(ctx context.Context, err error) {
	p.log.WithError(err).Warn("malformed page, stopping pagination")
	p.observer.OnMalformed(ctx, p.shape.Name, err)
}

func (p *Paginator[T]) pageDone(ctx context.Context, page PageResult[T]) {
	ev := PageEvent{
		Feed:    p.shape.Name,
		Subject: p.fetcher.Subject(),
		Items:   len(page.Items),
		Skipped: page.Skipped,
		Failed:  page.Failed,
		Cursor:  page.Cursor,
	}
	p.log.WithFields(logrus.Fields{
		"items": ev.Items, "skipped": ev.Skipped, "failed": ev.Failed,
		"cursor": ev.Cursor.Token, "has-more": ev.Cursor.HasMore,
	}).Debug("page fetched")
	p.observer.OnPage(ctx, ev)
}

// parse shields the page from panicking parsers.
func (p *Paginator[T]) parse(raw, resp *ajson.Node) (item T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &ParseError{Feed: p.shape.Name, Err: fmt.Errorf("panic: %v", r)}
		}
	}()
	item, err = p.parser.Parse(raw, resp)
	if err != nil {
		var pe *ParseError
		if !errors.As(err, &pe) {
			err = &ParseError{Feed: p.shape.Name, Err: err}
		}
	}
	return item, err
}

func (p *Paginator[T]) keep(item T) bool {
	if !p.cfg.IncludeReplies && item.IsReply() {
		return false
	}
	if !p.cfg.IncludeReposts && item.IsRepost() {
		return false
	}
	return true
}

// RunPages fetches up to n pages, stopping early once the feed is
// exhausted. The configured delay separates consecutive requests; no pause
// follows the last one.
func (p *Paginator[T]) RunPages(ctx context.Context, n int) (Batch[T], error) {
	var fresh []T
	for i := 0; i < n; i++ {
		if p.err == nil && p.state.Exhausted() {
			break
		}
		if i > 0 {
			if err := p.pause(ctx); err != nil {
				return p.batch(fresh), err
			}
		}
		page, err := p.FetchNextPage(ctx)
		fresh = append(fresh, page.Items...)
		if err != nil {
			return p.batch(fresh), err
		}
	}
	return p.batch(fresh), nil
}

// Run fetches the configured number of pages.
func (p *Paginator[T]) Run(ctx context.Context) (Batch[T], error) {
	return p.RunPages(ctx, p.cfg.Pages)
}

// Pages returns a lazy sequence yielding one Batch per fetched page, bounded
// like Run. Nothing is requested until the consumer asks for an element.
// Each call starts from the current state; stopping early keeps everything
// fetched so far.
func (p *Paginator[T]) Pages(ctx context.Context) iter.Seq2[Batch[T], error] {
	return func(yield func(Batch[T], error) bool) {
		for i := 0; i < p.cfg.Pages; i++ {
			if p.err == nil && p.state.Exhausted() {
				return
			}
			if i > 0 {
				if err := p.pause(ctx); err != nil {
					yield(p.batch(nil), err)
					return
				}
			}
			page, err := p.FetchNextPage(ctx)
			if !yield(p.batch(page.Items), err) || err != nil {
				return
			}
		}
	}
}

func (p *Paginator[T]) pause(ctx context.Context) error {
	if p.cfg.Delay <= 0 {
		return ctx.Err()
	}
	return p.sleep(ctx, p.cfg.Delay)
}

func (p *Paginator[T]) batch(fresh []T) Batch[T] {
	return Batch[T]{Snapshot: p.Snapshot(), Items: fresh}
}

// Snapshot copies the current state.
func (p *Paginator[T]) Snapshot() Snapshot[T] {
	return Snapshot[T]{
		Subject:       p.fetcher.Subject(),
		Items:         slices.Clone(p.items),
		Cursor:        p.state,
		Requests:      p.requests,
		ParseFailures: p.parseFailures,
	}
}

// Items returns a copy of every accumulated item in fetch order.
func (p *Paginator[T]) Items() []T { return slices.Clone(p.items) }

// Len returns the number of accumulated items.
func (p *Paginator[T]) Len() int { return len(p.items) }

// At returns the i-th accumulated item. It panics when i is out of range.
func (p *Paginator[T]) At(i int) T { return p.items[i] }

// All iterates over the accumulated items.
func (p *Paginator[T]) All() iter.Seq2[int, T] { return slices.All(p.items) }

// Cursor returns the current cursor state.
func (p *Paginator[T]) Cursor() CursorState { return p.state }

// HasMore reports whether another request would be issued.
func (p *Paginator[T]) HasMore() bool { return p.err == nil && p.state.HasMore }

// Err returns the terminal error, if any.
func (p *Paginator[T]) Err() error { return p.err }

// Subject returns the user id or query being walked.
func (p *Paginator[T]) Subject() string { return p.fetcher.Subject() }

// Requests returns the number of requests issued so far.
func (p *Paginator[T]) Requests() int { return p.requests }

// ParseFailures returns the number of raw items the parser rejected.
func (p *Paginator[T]) ParseFailures() int { return p.parseFailures }

func (p *Paginator[T]) String() string {
	return fmt.Sprintf("Paginator(feed=%s, subject=%q, items=%d, cursor=%q, has_more=%t)",
		p.shape.Name, p.fetcher.Subject(), len(p.items), p.state.Token, p.HasMore())
}

func isMalformed(err error) bool {
	var me *MalformedError
	return errors.As(err, &me)
}
