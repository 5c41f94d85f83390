package source

import (
	"context"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/scopegraph/pkg/artifact"
)

const (
	classpathPrefix  = "classpath:"
	archiveSeparator = "!/"
)

var directSchemes = []string{"http:", "https:", "file:"}

// Default is the builtin resolver. It never returns an error: failures are
// logged and the specification is declined.
type Default struct {
	logger *log.Logger
	home   func() (string, error)
}

// NewDefault creates the builtin resolver. A nil logger uses log.Default().
func NewDefault(logger *log.Logger) *Default {
	if logger == nil {
		logger = log.Default()
	}
	return &Default{logger: logger, home: os.UserHomeDir}
}

// Name implements Named.
func (d *Default) Name() string { return "default" }

// Resolve implements Resolver.
func (d *Default) Resolve(ctx context.Context, spec string, fallback Finder) (Artifacts, bool, error) {
	if spec == "" {
		return nil, false, nil
	}
	if locs, ok := d.resolveFile(spec); ok {
		return locs, true, nil
	}
	if locs, ok := d.resolveURL(spec); ok {
		return locs, true, nil
	}
	if locs, ok := d.resolveClasspath(ctx, spec, fallback); ok {
		return locs, true, nil
	}
	return nil, false, nil
}

// isFileSpec reports whether spec uses the filesystem form.
func isFileSpec(spec string) bool {
	return spec[0] == '/' || !strings.Contains(spec, ":")
}

func (d *Default) resolveFile(spec string) (Locations, bool) {
	if !isFileSpec(spec) {
		return nil, false
	}

	dir, file := ".", spec
	if i := strings.LastIndexByte(spec, '/'); i >= 0 {
		dir, file = spec[:i+1], spec[i+1:]
	}
	dir, err := d.expandDir(dir)
	if err != nil {
		d.logger.Warn("Invalid filesystem path", "source", spec, "err", err)
		return nil, false
	}

	switch {
	case file == "":
		return Locations{artifact.DirURL(dir)}, true
	case !strings.Contains(file, "*"):
		return Locations{artifact.FileURL(filepath.Join(dir, file))}, true
	}

	pattern := filenamePattern(file)
	var locs Locations
	err = filepath.WalkDir(dir, func(path string, e fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if e.Type().IsRegular() && pattern.MatchString(e.Name()) {
			locs = append(locs, artifact.FileURL(path))
		}
		return nil
	})
	if err != nil {
		d.logger.Warn("I/O error while resolving source", "source", spec, "err", err)
		return nil, false
	}
	return locs, true
}

// expandDir expands "~/" and makes dir absolute.
func (d *Default) expandDir(dir string) (string, error) {
	if strings.HasPrefix(dir, "~/") {
		home, err := d.home()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(home, strings.TrimLeft(dir[1:], "/"))
	}
	return filepath.Abs(filepath.FromSlash(dir))
}

// filenamePattern compiles a file name with '*' wildcards into an anchored
// regular expression; every other character matches literally.
func filenamePattern(file string) *regexp.Regexp {
	parts := strings.Split(file, "*")
	for i, p := range parts {
		parts[i] = regexp.QuoteMeta(p)
	}
	return regexp.MustCompile("^" + strings.Join(parts, ".*") + "$")
}

func (d *Default) resolveURL(spec string) (Locations, bool) {
	direct := false
	for _, scheme := range directSchemes {
		if strings.HasPrefix(spec, scheme) {
			direct = true
			break
		}
	}
	if !direct {
		return nil, false
	}
	u, err := url.Parse(spec)
	if err != nil || (u.Host == "" && u.Path == "" && u.Opaque == "") {
		d.logger.Debug("Source can't be used as a URL", "source", spec, "err", err)
		return nil, false
	}
	return Locations{u}, true
}

func (d *Default) resolveClasspath(ctx context.Context, spec string, fallback Finder) (Locations, bool) {
	if fallback == nil ||
		!strings.HasPrefix(spec, classpathPrefix) ||
		!strings.HasSuffix(spec, "/") ||
		strings.Contains(spec, archiveSeparator) {
		return nil, false
	}
	u, ok, err := fallback.ResolveResource(ctx, strings.TrimPrefix(spec, classpathPrefix))
	if err != nil {
		d.logger.Warn("Bundled directory lookup failed", "source", spec, "err", err)
		return nil, false
	}
	if !ok {
		return nil, false
	}
	return Locations{u}, true
}
