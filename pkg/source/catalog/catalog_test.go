package catalog

import (
	"context"
	"path/filepath"
	"testing"

	sgerr "github.com/matzehuels/scopegraph/pkg/errors"
	"github.com/matzehuels/scopegraph/pkg/source"
)

func openMemory(t *testing.T) *Catalog {
	t.Helper()
	c, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestPutGet(t *testing.T) {
	ctx := context.Background()
	c := openMemory(t)

	if err := c.Put(ctx, "plugins", "file:///opt/a.jar", "https://repo.example/b/"); err != nil {
		t.Fatalf("Put: %v", err)
	}
	locs, ok, err := c.Get(ctx, "plugins")
	if err != nil || !ok {
		t.Fatalf("Get = %v, %v", ok, err)
	}
	if len(locs) != 2 || locs[0].String() != "file:///opt/a.jar" || locs[1].Host != "repo.example" {
		t.Errorf("Get = %v", locs)
	}

	// Put replaces the whole set.
	if err := c.Put(ctx, "plugins", "file:///opt/c/"); err != nil {
		t.Fatal(err)
	}
	locs, _, _ = c.Get(ctx, "plugins")
	if len(locs) != 1 || locs[0].Path != "/opt/c/" {
		t.Errorf("after replace Get = %v", locs)
	}

	if _, ok, err := c.Get(ctx, "missing"); ok || err != nil {
		t.Errorf("Get(missing) = %v, %v", ok, err)
	}
}

func TestPutValidation(t *testing.T) {
	ctx := context.Background()
	c := openMemory(t)

	if err := c.Put(ctx, "", "file:///x/"); !sgerr.Is(err, sgerr.ErrCodeInvalidName) {
		t.Errorf("empty name: err = %v", err)
	}
	if err := c.Put(ctx, "rel", "relative/path"); !sgerr.Is(err, sgerr.ErrCodeInvalidInput) {
		t.Errorf("relative location: err = %v", err)
	}
}

func TestList(t *testing.T) {
	ctx := context.Background()
	c := openMemory(t)
	c.Put(ctx, "b", "file:///b/")
	c.Put(ctx, "a", "file:///a1/", "file:///a2/")

	names, err := c.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 2 || names[0] != "a" || names[1] != "b" {
		t.Errorf("List = %v", names)
	}
}

func TestResolve(t *testing.T) {
	ctx := context.Background()
	c := openMemory(t)
	c.Put(ctx, "libs", "file:///opt/libs/")

	tests := []struct {
		spec   string
		wantOK bool
	}{
		{"catalog:libs", true},
		{"catalog:unknown", false},
		{"/opt/libs/", false},
		{"libs", false},
	}
	for _, tt := range tests {
		a, ok, err := c.Resolve(ctx, tt.spec, nil)
		if err != nil {
			t.Errorf("Resolve(%q) error: %v", tt.spec, err)
		}
		if ok != tt.wantOK {
			t.Errorf("Resolve(%q) ok = %v, want %v", tt.spec, ok, tt.wantOK)
		}
		if ok && a.URLs()[0].Path != "/opt/libs/" {
			t.Errorf("Resolve(%q) = %v", tt.spec, a.URLs())
		}
	}
}

func TestChainPrecedence(t *testing.T) {
	ctx := context.Background()
	c := openMemory(t)
	c.Put(ctx, "x", "file:///from/catalog/")

	chain := source.NewRegistry(c).Chain(nil)
	a, r, ok, err := chain.Resolve(ctx, "catalog:x", nil)
	if err != nil || !ok {
		t.Fatalf("Resolve = %v, %v", ok, err)
	}
	if source.NameOf(r) != "catalog" {
		t.Errorf("resolved by %s, want catalog", source.NameOf(r))
	}
	if a.URLs()[0].Path != "/from/catalog/" {
		t.Errorf("URLs = %v", a.URLs())
	}
}

func TestPersistence(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "catalog.db")

	c, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Put(ctx, "kept", "file:///kept/"); err != nil {
		t.Fatal(err)
	}
	c.Close()

	c, err = Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	if _, ok, _ := c.Get(ctx, "kept"); !ok {
		t.Error("set not persisted")
	}
}
