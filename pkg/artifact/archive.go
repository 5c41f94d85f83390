package artifact

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"io/fs"
	"net/url"
	"strings"
)

// archiveSeparator separates the archive location from the entry path in
// archive entry URLs, e.g. "zip:file:///lib/core.jar!/app/Main.unit".
const archiveSeparator = "!/"

// Archive serves entries of a zip (or jar) archive.
type Archive struct {
	loc    *url.URL
	reader *zip.Reader
	closer io.Closer
}

// OpenArchive opens the zip archive at path. The returned source holds the
// file open until Close is called.
func OpenArchive(path string) (*Archive, error) {
	rc, err := zip.OpenReader(path)
	if err != nil {
		return nil, err
	}
	return &Archive{loc: FileURL(path), reader: &rc.Reader, closer: rc}, nil
}

// newMemoryArchive reads an archive already held in memory.
func newMemoryArchive(loc *url.URL, data []byte) (*Archive, error) {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}
	return &Archive{loc: loc, reader: r}, nil
}

// IsArchivePath reports whether name has a zip or jar extension.
func IsArchivePath(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasSuffix(lower, ".zip") || strings.HasSuffix(lower, ".jar")
}

// EntryURL returns the URL of an entry inside the archive at loc.
func EntryURL(loc *url.URL, entry string) *url.URL {
	return &url.URL{Scheme: "zip", Opaque: loc.String() + archiveSeparator + entry}
}

func (s *Archive) Location() *url.URL { return s.loc }

func (s *Archive) Find(_ context.Context, path string) (*url.URL, bool, error) {
	p, ok := cleanPath(path)
	if !ok {
		return nil, false, nil
	}
	if _, err := fs.Stat(s.reader, strings.TrimSuffix(p, "/")); err != nil {
		return nil, false, nil
	}
	return EntryURL(s.loc, p), true, nil
}

func (s *Archive) Open(_ context.Context, path string) ([]byte, bool, error) {
	p, ok := cleanPath(path)
	if !ok {
		return nil, false, nil
	}
	f, err := s.reader.Open(p)
	if err != nil {
		return nil, false, nil
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// Close releases the archive file handle.
func (s *Archive) Close() error {
	if s.closer == nil {
		return nil
	}
	c := s.closer
	s.closer = nil
	return c.Close()
}
