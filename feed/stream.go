package feed

import (
	"context"
	"iter"
)

// Scanner pulls pages one at a time, for callers that prefer a
// Next/Err loop over range-over-func:
//
//	s := p.Scan(ctx)
//	defer s.Close()
//	for s.Next() {
//		use(s.Batch().Items)
//	}
//	if err := s.Err(); err != nil { ... }
type Scanner[T Item] struct {
	next func() (Batch[T], error, bool)
	stop func()
	cur  Batch[T]
	err  error
	done bool
}

// Scan returns a Scanner over Pages(ctx). The caller must Close it when
// stopping before the end.
func (p *Paginator[T]) Scan(ctx context.Context) *Scanner[T] {
	next, stop := iter.Pull2(p.Pages(ctx))
	return &Scanner[T]{next: next, stop: stop}
}

// Next fetches the next page. It returns false at the end of the sequence or
// on error; Err tells the two apart.
func (s *Scanner[T]) Next() bool {
	if s.done {
		return false
	}
	b, err, ok := s.next()
	if !ok {
		s.Close()
		return false
	}
	if err != nil {
		s.err = err
		s.Close()
		return false
	}
	s.cur = b
	return true
}

// Batch returns the page produced by the last successful Next.
func (s *Scanner[T]) Batch() Batch[T] { return s.cur }

// Err returns the error that ended the scan, if any.
func (s *Scanner[T]) Err() error { return s.err }

// Close releases the underlying iterator. It is safe to call repeatedly.
func (s *Scanner[T]) Close() error {
	if !s.done {
		s.done = true
		s.stop()
	}
	return nil
}
