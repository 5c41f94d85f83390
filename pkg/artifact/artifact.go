package artifact

import (
	"context"
	"errors"
	"net/url"
	"strings"
)

// UnitExt is the file extension of unit artifacts.
const UnitExt = ".unit"

// ErrUnsupportedLocation is returned when a location cannot be opened as any
// known source kind.
var ErrUnsupportedLocation = errors.New("unsupported artifact location")

// Unit is a loaded unit artifact.
type Unit struct {
	Name     string   // Dotted unit name
	Location *url.URL // Where the unit's bytes were read from
	Data     []byte   // Raw artifact content
	Scope    string   // Name of the scope that defined the unit
}

// Source is one opened artifact location.
//
// Find and Open report a missing path with ok == false and a nil error;
// errors are reserved for I/O failures.
type Source interface {
	// Location returns the URL this source was opened from.
	Location() *url.URL

	// Find returns the URL of path inside the source.
	Find(ctx context.Context, path string) (*url.URL, bool, error)

	// Open returns the content of path inside the source.
	Open(ctx context.Context, path string) ([]byte, bool, error)
}

// UnitPath converts a dotted unit name to its path inside a location.
func UnitPath(name string) string {
	return strings.ReplaceAll(name, ".", "/") + UnitExt
}

// IsDirLocation reports whether u names a directory-style location.
func IsDirLocation(u *url.URL) bool {
	if u.Opaque != "" {
		return strings.HasSuffix(u.Opaque, "/")
	}
	return strings.HasSuffix(u.Path, "/")
}

// cleanPath rejects paths that would escape a source root.
func cleanPath(path string) (string, bool) {
	path = strings.TrimPrefix(path, "/")
	if path == "" {
		return "", false
	}
	for _, seg := range strings.Split(path, "/") {
		if seg == ".." {
			return "", false
		}
	}
	return path, true
}
