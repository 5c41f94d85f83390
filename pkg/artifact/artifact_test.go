package artifact

import (
	"archive/zip"
	"context"
	"errors"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/matzehuels/scopegraph/pkg/httputil"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func writeArchive(t *testing.T, path string, entries map[string]string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	w := zip.NewWriter(f)
	for name, content := range entries {
		fw, err := w.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := fw.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestUnitPath(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Main", "Main.unit"},
		{"app.core.Main", "app/core/Main.unit"},
	}
	for _, tt := range tests {
		if got := UnitPath(tt.name); got != tt.want {
			t.Errorf("UnitPath(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestDirURL(t *testing.T) {
	if got := DirURL("/opt/app").String(); got != "file:///opt/app/" {
		t.Errorf("DirURL = %q", got)
	}
	if got := DirURL("/opt/app/").String(); got != "file:///opt/app/" {
		t.Errorf("DirURL with slash = %q", got)
	}
}

func TestDirSource(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "app", "Main.unit"), "main")

	src := NewDirSource(dir)
	if !IsDirLocation(src.Location()) {
		t.Errorf("Location %s should be a directory location", src.Location())
	}

	u, ok, err := src.Find(ctx, "app/Main.unit")
	if err != nil || !ok {
		t.Fatalf("Find = %v, %v", ok, err)
	}
	if !strings.HasSuffix(u.Path, "/app/Main.unit") {
		t.Errorf("Find URL = %s", u)
	}

	data, ok, err := src.Open(ctx, "app/Main.unit")
	if err != nil || !ok || string(data) != "main" {
		t.Errorf("Open = %q, %v, %v", data, ok, err)
	}

	for _, missing := range []string{"app/Other.unit", "../escape", ""} {
		if _, ok, err := src.Find(ctx, missing); ok || err != nil {
			t.Errorf("Find(%q) = %v, %v; want miss", missing, ok, err)
		}
	}
}

func TestArchive(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "core.jar")
	writeArchive(t, path, map[string]string{
		"app/Main.unit":    "main",
		"META-INF/res.txt": "res",
	})

	a, err := OpenArchive(path)
	if err != nil {
		t.Fatalf("OpenArchive: %v", err)
	}

	u, ok, err := a.Find(ctx, "app/Main.unit")
	if err != nil || !ok {
		t.Fatalf("Find = %v, %v", ok, err)
	}
	if u.Scheme != "zip" || !strings.HasSuffix(u.Opaque, "core.jar!/app/Main.unit") {
		t.Errorf("entry URL = %s", u)
	}

	if _, ok, _ := a.Find(ctx, "app/"); !ok {
		t.Error("directory entries should be found")
	}

	data, ok, err := a.Open(ctx, "META-INF/res.txt")
	if err != nil || !ok || string(data) != "res" {
		t.Errorf("Open = %q, %v, %v", data, ok, err)
	}

	if err := a.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
	if err := a.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}

func TestBundleSource(t *testing.T) {
	ctx := context.Background()
	fsys := fstest.MapFS{
		"plugins/base/app/Main.unit": {Data: []byte("bundled")},
	}
	o := &Opener{Bundles: map[string]fs.FS{"std": fsys}}

	src, err := o.Open(ctx, BundleURL("std", "plugins/base"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	u, ok, err := src.Find(ctx, "app/Main.unit")
	if err != nil || !ok {
		t.Fatalf("Find = %v, %v", ok, err)
	}
	if u.String() != "bundle://std/plugins/base/app/Main.unit" {
		t.Errorf("Find URL = %s", u)
	}
	data, ok, _ := src.Open(ctx, "app/Main.unit")
	if !ok || string(data) != "bundled" {
		t.Errorf("Open = %q, %v", data, ok)
	}

	if _, err := o.Open(ctx, BundleURL("missing", "x")); !errors.Is(err, ErrUnsupportedLocation) {
		t.Errorf("unknown bundle: err = %v, want ErrUnsupportedLocation", err)
	}
}

func TestRemoteSource(t *testing.T) {
	ctx := context.Background()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/repo/app/Main.unit" {
			w.Write([]byte("remote"))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	o := &Opener{Client: httputil.NewClient(nil, "", 0, nil).WithHTTPClient(server.Client())}
	loc, _ := url.Parse(server.URL + "/repo/")

	src, err := o.Open(ctx, loc)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	u, ok, err := src.Find(ctx, "app/Main.unit")
	if err != nil || !ok {
		t.Fatalf("Find = %v, %v", ok, err)
	}
	if u.String() != server.URL+"/repo/app/Main.unit" {
		t.Errorf("Find URL = %s", u)
	}
	if _, ok, err := src.Open(ctx, "app/Missing.unit"); ok || err != nil {
		t.Errorf("Open(missing) = %v, %v; want miss", ok, err)
	}

	if _, err := (&Opener{}).Open(ctx, loc); !errors.Is(err, ErrUnsupportedLocation) {
		t.Errorf("remote without client: err = %v", err)
	}
}

func TestOpenerFile(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "notes.txt"), "x")
	writeArchive(t, filepath.Join(dir, "lib.zip"), map[string]string{"a.unit": "a"})

	o := &Opener{}

	tests := []struct {
		name    string
		loc     *url.URL
		wantErr bool
	}{
		{"directory", DirURL(dir), false},
		{"archive", FileURL(filepath.Join(dir, "lib.zip")), false},
		{"missing directory", DirURL(filepath.Join(dir, "later")), false},
		{"missing file", FileURL(filepath.Join(dir, "absent.jar")), false},
		{"plain file", FileURL(filepath.Join(dir, "notes.txt")), true},
		{"unknown scheme", &url.URL{Scheme: "ftp", Host: "h", Path: "/"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, err := o.Open(ctx, tt.loc)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Open() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil {
				_ = closeSource(src)
			}
		})
	}
}

func TestSet(t *testing.T) {
	ctx := context.Background()
	first, second := t.TempDir(), t.TempDir()
	writeFile(t, filepath.Join(first, "res.txt"), "first")
	writeFile(t, filepath.Join(second, "res.txt"), "second")
	writeFile(t, filepath.Join(second, "only.txt"), "only")

	s := NewSet(NewDirSource(first), NewDirSource(second))
	if s.Len() != 2 || len(s.Locations()) != 2 {
		t.Fatalf("Len = %d", s.Len())
	}

	data, _, ok, err := s.Open(ctx, "res.txt")
	if err != nil || !ok || string(data) != "first" {
		t.Errorf("Open = %q, %v, %v; want first source", data, ok, err)
	}
	data, u, ok, _ := s.Open(ctx, "only.txt")
	if !ok || string(data) != "only" || !strings.HasPrefix(u.Path, filepath.ToSlash(second)) {
		t.Errorf("Open(only.txt) = %q from %v", data, u)
	}

	var all []*url.URL
	for u, err := range s.FindAll(ctx, "res.txt") {
		if err != nil {
			t.Fatal(err)
		}
		all = append(all, u)
	}
	if len(all) != 2 {
		t.Errorf("FindAll returned %d locations, want 2", len(all))
	}
}

type failingCloser struct {
	emptySource
	calls int
}

func (f *failingCloser) Close() error {
	f.calls++
	return errors.New("boom")
}

func TestSetClose(t *testing.T) {
	a, b := &failingCloser{}, &failingCloser{}
	s := NewSet(a, NewDirSource(t.TempDir()), b)

	err := s.Close()
	if err == nil {
		t.Fatal("Close should report failures")
	}
	var closeErr interface{ Unwrap() []error }
	if !errors.As(err, &closeErr) || len(closeErr.Unwrap()) != 2 {
		t.Errorf("Close error = %v, want both failures aggregated", err)
	}

	if err := s.Close(); err != nil {
		t.Errorf("second Close = %v, want nil", err)
	}
	if a.calls != 1 || b.calls != 1 {
		t.Errorf("close calls = %d, %d; want 1, 1", a.calls, b.calls)
	}
}

func TestOpenSetReleasesOnFailure(t *testing.T) {
	first := &failingCloser{}
	locs := []*url.URL{FileURL("/a.jar"), FileURL("/b.jar")}
	open := func(_ context.Context, loc *url.URL) (Source, error) {
		if loc == locs[0] {
			return first, nil
		}
		return nil, ErrUnsupportedLocation
	}

	_, err := openSet(context.Background(), locs, open)
	if !errors.Is(err, ErrUnsupportedLocation) {
		t.Fatalf("err = %v, want ErrUnsupportedLocation", err)
	}
	if first.calls != 1 {
		t.Errorf("opened source closed %d times, want 1", first.calls)
	}
	if !strings.Contains(err.Error(), "boom") {
		t.Errorf("err = %v, want the close failure reported", err)
	}
}
