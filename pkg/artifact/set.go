package artifact

import (
	"context"
	"iter"
	"net/url"
	"sync"

	"github.com/matzehuels/scopegraph/pkg/errors"
)

// Set is an ordered collection of sources searched first to last.
// It owns its sources and releases them on Close.
type Set struct {
	sources []Source

	mu     sync.Mutex
	closed bool
}

// NewSet creates a set over sources.
func NewSet(sources ...Source) *Set {
	return &Set{sources: sources}
}

// Len returns the number of sources.
func (s *Set) Len() int { return len(s.sources) }

// Locations returns the location of every source, in search order.
func (s *Set) Locations() []*url.URL {
	locs := make([]*url.URL, len(s.sources))
	for i, src := range s.sources {
		locs[i] = src.Location()
	}
	return locs
}

// Find returns the first URL of path across all sources.
func (s *Set) Find(ctx context.Context, path string) (*url.URL, bool, error) {
	for _, src := range s.sources {
		u, ok, err := src.Find(ctx, path)
		if err != nil {
			return nil, false, err
		}
		if ok {
			return u, true, nil
		}
	}
	return nil, false, nil
}

// FindAll yields the URL of path in every source that contains it.
// Iteration stops after the first error.
func (s *Set) FindAll(ctx context.Context, path string) iter.Seq2[*url.URL, error] {
	return func(yield func(*url.URL, error) bool) {
		for _, src := range s.sources {
			u, ok, err := src.Find(ctx, path)
			if err != nil {
				yield(nil, err)
				return
			}
			if ok && !yield(u, nil) {
				return
			}
		}
	}
}

// Open reads the first occurrence of path and reports where it came from.
func (s *Set) Open(ctx context.Context, path string) ([]byte, *url.URL, bool, error) {
	for _, src := range s.sources {
		data, ok, err := src.Open(ctx, path)
		if err != nil {
			return nil, nil, false, err
		}
		if ok {
			u, _, _ := src.Find(ctx, path)
			if u == nil {
				u = src.Location()
			}
			return data, u, true, nil
		}
	}
	return nil, nil, false, nil
}

// Close releases every source that holds resources. All sources are
// attempted; failures are aggregated into a [errors.CloseError].
// Closing an already closed set does nothing.
func (s *Set) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	var errs []error
	for _, src := range s.sources {
		if err := closeSource(src); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return &errors.CloseError{Errs: errs}
	}
	return nil
}
