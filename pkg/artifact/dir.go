package artifact

import (
	"context"
	"errors"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
)

// dirSource serves paths from a local directory.
type dirSource struct {
	loc  *url.URL
	root string
}

// NewDirSource opens a directory location. The directory does not have to
// exist yet; lookups simply miss until it does.
func NewDirSource(root string) Source {
	return &dirSource{loc: DirURL(root), root: root}
}

// DirURL returns the directory-style file URL for dir, with a guaranteed
// trailing slash.
func DirURL(dir string) *url.URL {
	p := filepath.ToSlash(dir)
	if p == "" || p[len(p)-1] != '/' {
		p += "/"
	}
	return &url.URL{Scheme: "file", Path: p}
}

// FileURL returns the file URL for path.
func FileURL(path string) *url.URL {
	return &url.URL{Scheme: "file", Path: filepath.ToSlash(path)}
}

func (s *dirSource) Location() *url.URL { return s.loc }

func (s *dirSource) Find(_ context.Context, path string) (*url.URL, bool, error) {
	full, ok := s.resolve(path)
	if !ok {
		return nil, false, nil
	}
	info, err := os.Stat(full)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if info.IsDir() {
		return DirURL(full), true, nil
	}
	return FileURL(full), true, nil
}

func (s *dirSource) Open(_ context.Context, path string) ([]byte, bool, error) {
	full, ok := s.resolve(path)
	if !ok {
		return nil, false, nil
	}
	data, err := os.ReadFile(full)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

func (s *dirSource) resolve(path string) (string, bool) {
	p, ok := cleanPath(path)
	if !ok {
		return "", false
	}
	return filepath.Join(s.root, filepath.FromSlash(p)), true
}

// emptySource is a location that never contains anything.
type emptySource struct{ loc *url.URL }

func (s emptySource) Location() *url.URL { return s.loc }

func (emptySource) Find(context.Context, string) (*url.URL, bool, error) { return nil, false, nil }

func (emptySource) Open(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
