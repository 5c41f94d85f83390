package artifact

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"

	"github.com/matzehuels/scopegraph/pkg/httputil"
)

// Opener turns artifact locations into sources.
//
// The zero value opens local directories and archives. Remote locations
// require Client; bundle locations require an entry in Bundles.
type Opener struct {
	Client  *httputil.Client // Used for http and https locations
	Bundles map[string]fs.FS // Bundled filesystems keyed by bundle name
}

// Open opens a single location.
func (o *Opener) Open(ctx context.Context, loc *url.URL) (Source, error) {
	switch loc.Scheme {
	case "file":
		return o.openFile(loc)
	case "http", "https":
		return o.openRemote(ctx, loc)
	case BundleScheme:
		fsys, ok := o.Bundles[loc.Host]
		if !ok {
			return nil, fmt.Errorf("%w: unknown bundle %q", ErrUnsupportedLocation, loc.Host)
		}
		return newBundleSource(loc, fsys), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedLocation, loc)
}

// OpenSet opens every location in order. If any location fails, the sources
// opened so far are closed and the error is returned together with any
// failure to close them.
func (o *Opener) OpenSet(ctx context.Context, locs []*url.URL) (*Set, error) {
	return openSet(ctx, locs, o.Open)
}

func openSet(ctx context.Context, locs []*url.URL, open func(context.Context, *url.URL) (Source, error)) (*Set, error) {
	sources := make([]Source, 0, len(locs))
	for _, loc := range locs {
		src, err := open(ctx, loc)
		if err != nil {
			err = fmt.Errorf("open %s: %w", loc, err)
			if cerr := NewSet(sources...).Close(); cerr != nil {
				err = errors.Join(err, cerr)
			}
			return nil, err
		}
		sources = append(sources, src)
	}
	return NewSet(sources...), nil
}

func (o *Opener) openFile(loc *url.URL) (Source, error) {
	path := loc.Path
	if path == "" {
		path = loc.Opaque
	}

	info, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if IsDirLocation(loc) {
			return NewDirSource(path), nil
		}
		return emptySource{loc: loc}, nil
	case err != nil:
		return nil, err
	case info.IsDir():
		return NewDirSource(path), nil
	case IsArchivePath(path):
		return OpenArchive(path)
	}
	return nil, fmt.Errorf("%w: %s is neither a directory nor an archive", ErrUnsupportedLocation, path)
}

func (o *Opener) openRemote(ctx context.Context, loc *url.URL) (Source, error) {
	if o.Client == nil {
		return nil, fmt.Errorf("%w: no http client for %s", ErrUnsupportedLocation, loc)
	}
	if IsDirLocation(loc) {
		return &remoteSource{loc: loc, client: o.Client}, nil
	}
	if !IsArchivePath(loc.Path) {
		return nil, fmt.Errorf("%w: remote location %s is neither a directory nor an archive", ErrUnsupportedLocation, loc)
	}
	data, err := o.Client.Fetch(ctx, loc.String())
	if err != nil {
		return nil, err
	}
	return newMemoryArchive(loc, data)
}

// closeSource releases src if it holds resources.
func closeSource(src Source) error {
	if c, ok := src.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
