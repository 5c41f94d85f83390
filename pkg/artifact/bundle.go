package artifact

import (
	"context"
	"io/fs"
	"net/url"
	"path"
	"strings"
)

// BundleScheme is the URL scheme of bundled locations.
const BundleScheme = "bundle"

// BundleURL returns the location of dir inside the named bundle.
func BundleURL(name, dir string) *url.URL {
	p := "/" + strings.Trim(dir, "/")
	if p != "/" {
		p += "/"
	}
	return &url.URL{Scheme: BundleScheme, Host: name, Path: p}
}

// bundleSource serves paths from a directory of a registered fs.FS.
type bundleSource struct {
	loc  *url.URL
	fsys fs.FS
	dir  string
}

// NewBundleSource serves the root of fsys as the bundle called name.
func NewBundleSource(name string, fsys fs.FS) Source {
	return newBundleSource(BundleURL(name, ""), fsys)
}

func newBundleSource(loc *url.URL, fsys fs.FS) *bundleSource {
	dir := strings.Trim(loc.Path, "/")
	if dir == "" {
		dir = "."
	}
	return &bundleSource{loc: loc, fsys: fsys, dir: dir}
}

func (s *bundleSource) Location() *url.URL { return s.loc }

func (s *bundleSource) Find(_ context.Context, name string) (*url.URL, bool, error) {
	p, ok := s.resolve(name)
	if !ok {
		return nil, false, nil
	}
	info, err := fs.Stat(s.fsys, p)
	if err != nil {
		return nil, false, nil
	}
	u := &url.URL{Scheme: BundleScheme, Host: s.loc.Host, Path: "/" + p}
	if info.IsDir() {
		u.Path += "/"
	}
	return u, true, nil
}

func (s *bundleSource) Open(_ context.Context, name string) ([]byte, bool, error) {
	p, ok := s.resolve(name)
	if !ok {
		return nil, false, nil
	}
	data, err := fs.ReadFile(s.fsys, p)
	if err != nil {
		return nil, false, nil
	}
	return data, true, nil
}

func (s *bundleSource) resolve(name string) (string, bool) {
	p, ok := cleanPath(name)
	if !ok {
		return "", false
	}
	full := path.Join(s.dir, strings.TrimSuffix(p, "/"))
	return full, fs.ValidPath(full)
}
