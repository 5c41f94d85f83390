package artifact

import (
	"context"
	"errors"
	"net/url"

	"github.com/matzehuels/scopegraph/pkg/httputil"
)

// remoteSource serves paths below an http or https base URL.
type remoteSource struct {
	loc    *url.URL
	client *httputil.Client
}

func (s *remoteSource) Location() *url.URL { return s.loc }

func (s *remoteSource) Find(ctx context.Context, path string) (*url.URL, bool, error) {
	u, ok := s.resolve(path)
	if !ok {
		return nil, false, nil
	}
	found, err := s.client.Exists(ctx, u.String())
	if err != nil || !found {
		return nil, false, err
	}
	return u, true, nil
}

func (s *remoteSource) Open(ctx context.Context, path string) ([]byte, bool, error) {
	u, ok := s.resolve(path)
	if !ok {
		return nil, false, nil
	}
	data, err := s.client.Fetch(ctx, u.String())
	if errors.Is(err, httputil.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

func (s *remoteSource) resolve(path string) (*url.URL, bool) {
	p, ok := cleanPath(path)
	if !ok {
		return nil, false
	}
	return s.loc.ResolveReference(&url.URL{Path: p}), true
}
