package feedmetrics

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steven3002/feedpager-go/feed"
)

func TestObserver_Counts(t *testing.T) {
	reg := prometheus.NewRegistry()
	o, err := New(reg)
	require.NoError(t, err)
	ctx := context.Background()

	o.OnPage(ctx, feed.PageEvent{Feed: "timeline", Items: 3, Skipped: 1, Cursor: feed.CursorState{Token: "c", HasMore: true}})
	o.OnPage(ctx, feed.PageEvent{Feed: "timeline", Items: 2, Cursor: feed.CursorState{Token: "c"}})
	o.OnParseError(ctx, "timeline", errors.New("bad"))
	o.OnMalformed(ctx, "search", errors.New("shape"))

	assert.Equal(t, 2.0, testutil.ToFloat64(o.pages.WithLabelValues("timeline")))
	assert.Equal(t, 5.0, testutil.ToFloat64(o.items.WithLabelValues("timeline")))
	assert.Equal(t, 1.0, testutil.ToFloat64(o.skipped.WithLabelValues("timeline")))
	assert.Equal(t, 1.0, testutil.ToFloat64(o.exhausted.WithLabelValues("timeline")))
	assert.Equal(t, 1.0, testutil.ToFloat64(o.parseFailures.WithLabelValues("timeline")))
	assert.Equal(t, 1.0, testutil.ToFloat64(o.malformed.WithLabelValues("search")))
}

func TestNew_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := New(reg)
	require.NoError(t, err)
	_, err = New(reg)
	assert.Error(t, err)
}
