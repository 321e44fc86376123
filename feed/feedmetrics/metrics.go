// Package feedmetrics exports pagination events as Prometheus counters.
package feedmetrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/steven3002/feedpager-go/feed"
)

const (
	namespace = "feedpager"
	subsystem = "paginator"
)

// Observer counts pages, items and failures per feed shape.
type Observer struct {
	pages         *prometheus.CounterVec
	items         *prometheus.CounterVec
	skipped       *prometheus.CounterVec
	parseFailures *prometheus.CounterVec
	malformed     *prometheus.CounterVec
	exhausted     *prometheus.CounterVec
}

// New registers the counters on reg. A nil reg uses the default registerer.
func New(reg prometheus.Registerer) (*Observer, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	o := &Observer{
		pages:         counter("pages_total", "Pages fetched."),
		items:         counter("items_total", "Items kept after filtering."),
		skipped:       counter("items_skipped_total", "Items dropped by reply or repost filters."),
		parseFailures: counter("parse_failures_total", "Raw items the parser rejected."),
		malformed:     counter("malformed_pages_total", "Responses whose shape could not be read."),
		exhausted:     counter("exhausted_total", "Walks that reached the end of their feed."),
	}
	for _, c := range []prometheus.Collector{o.pages, o.items, o.skipped, o.parseFailures, o.malformed, o.exhausted} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return o, nil
}

func counter(name, help string) *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      name,
		Help:      help,
	}, []string{"feed"})
}

func (o *Observer) OnPage(_ context.Context, ev feed.PageEvent) {
	o.pages.WithLabelValues(ev.Feed).Inc()
	o.items.WithLabelValues(ev.Feed).Add(float64(ev.Items))
	o.skipped.WithLabelValues(ev.Feed).Add(float64(ev.Skipped))
	if ev.Cursor.Exhausted() {
		o.exhausted.WithLabelValues(ev.Feed).Inc()
	}
}

func (o *Observer) OnParseError(_ context.Context, name string, _ error) {
	o.parseFailures.WithLabelValues(name).Inc()
}

func (o *Observer) OnMalformed(_ context.Context, name string, _ error) {
	o.malformed.WithLabelValues(name).Inc()
}

var _ feed.Observer = (*Observer)(nil)
