// Package checkpoint persists cursor states so a feed walk can resume in a
// later process.
package checkpoint

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/steven3002/feedpager-go/feed"
)

// Store loads and saves cursor states by key.
type Store interface {
	// Load reports false when nothing is stored under key.
	Load(ctx context.Context, key string) (feed.CursorState, bool, error)
	Save(ctx context.Context, key string, state feed.CursorState) error
}

// MemoryStore keeps states in process memory.
type MemoryStore struct {
	mu     sync.Mutex
	states map[string]feed.CursorState
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{states: map[string]feed.CursorState{}}
}

func (m *MemoryStore) Load(_ context.Context, key string) (feed.CursorState, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.states[key]
	return st, ok, nil
}

func (m *MemoryStore) Save(_ context.Context, key string, state feed.CursorState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[key] = state
	return nil
}

// Recorder is a feed.Observer that saves the cursor after every page.
// Save failures are logged and otherwise ignored: a missed checkpoint
// only costs a re-fetch.
type Recorder struct {
	feed.NopObserver

	Store Store
	Key   string
	Log   *logrus.Entry
}

func (r *Recorder) OnPage(ctx context.Context, ev feed.PageEvent) {
	if err := r.Store.Save(ctx, r.Key, ev.Cursor); err != nil && r.Log != nil {
		r.Log.WithError(err).WithField("key", r.Key).Warn("could not save checkpoint")
	}
}

// Resume sets cfg.StartCursor from the state stored under key. It reports
// false when there is nothing to resume or the stored walk is finished;
// cfg is unchanged in that case.
func Resume(ctx context.Context, s Store, key string, cfg *feed.Config) (bool, error) {
	st, ok, err := s.Load(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if st.Exhausted() || st.Token == "" {
		return false, nil
	}
	cfg.StartCursor = st.Token
	return true, nil
}

var (
	_ Store         = (*MemoryStore)(nil)
	_ feed.Observer = (*Recorder)(nil)
)
