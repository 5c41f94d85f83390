package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/scopegraph/pkg/artifact"
	"github.com/matzehuels/scopegraph/pkg/definition"
	"github.com/matzehuels/scopegraph/pkg/errors"
	"github.com/matzehuels/scopegraph/pkg/materialize"
)

func writeUnits(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return filepath.ToSlash(dir) + "/"
}

type fixture struct {
	graph  *materialize.Graph
	server *httptest.Server
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	def := definition.New(nil)
	core, _ := def.Node("core")
	core.AddSource(writeUnits(t, map[string]string{
		artifact.UnitPath("app.Base"): "base",
		"conf/app.toml":               "core",
	}))
	app, _ := core.AddChild("app")
	app.AddSource(writeUnits(t, map[string]string{
		artifact.UnitPath("app.Main"): "main!",
		"conf/app.toml":               "app",
	}))
	app.ImportUnitsFrom("plugins", "plugin.*")
	plugins, _ := def.Lookup("plugins")
	plugins.AddSource(writeUnits(t, map[string]string{artifact.UnitPath("plugin.Hook"): "hook"}))

	g, err := materialize.Build(context.Background(), def, materialize.Options{Logger: log.New(io.Discard)})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { g.Close() })

	s := New(g, Options{
		Definition: def,
		Logger:     log.New(io.Discard),
		Metrics: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			io.WriteString(w, "# metrics\n")
		}),
	})
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return &fixture{graph: g, server: ts}
}

func (f *fixture) get(t *testing.T, path string, v any) *http.Response {
	t.Helper()
	resp, err := http.Get(f.server.URL + path)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if v != nil {
		if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
			t.Fatalf("decode %s: %v", path, err)
		}
	}
	return resp
}

func TestHealth(t *testing.T) {
	f := newFixture(t)
	var body healthResponse
	resp := f.get(t, "/healthz", &body)
	if resp.StatusCode != http.StatusOK || body.Status != "ok" || body.Graph != f.graph.ID() || body.Scopes != 3 {
		t.Errorf("healthz = %d %+v", resp.StatusCode, body)
	}
	if _, err := uuid.Parse(resp.Header.Get(RequestIDHeader)); err != nil {
		t.Errorf("request id %q: %v", resp.Header.Get(RequestIDHeader), err)
	}
}

func TestRequestIDPropagated(t *testing.T) {
	f := newFixture(t)
	id := uuid.NewString()
	req, _ := http.NewRequest(http.MethodGet, f.server.URL+"/healthz", nil)
	req.Header.Set(RequestIDHeader, id)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if got := resp.Header.Get(RequestIDHeader); got != id {
		t.Errorf("request id = %q, want %q", got, id)
	}
}

func TestScopes(t *testing.T) {
	f := newFixture(t)
	var scopes []ScopeInfo
	f.get(t, "/scopes", &scopes)

	var names []string
	for _, s := range scopes {
		names = append(names, s.Name)
	}
	if got := strings.Join(names, ","); got != "app,core,plugins" {
		t.Errorf("scopes = %s", got)
	}
	if scopes[0].Parent != "core" || scopes[0].Strategy != "SPI" || len(scopes[0].Locations) != 1 {
		t.Errorf("app = %+v", scopes[0])
	}
	if len(scopes[1].Children) != 1 || scopes[1].Children[0] != "app" {
		t.Errorf("core children = %v", scopes[1].Children)
	}
}

func TestScopeDetail(t *testing.T) {
	f := newFixture(t)
	var info ScopeInfo
	resp := f.get(t, "/scopes/app", &info)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if len(info.UnitImports) != 1 || info.UnitImports[0] != (ImportInfo{From: "plugins", Pattern: "plugin.*"}) {
		t.Errorf("unit imports = %+v", info.UnitImports)
	}

	var e errorBody
	resp = f.get(t, "/scopes/ghost", &e)
	if resp.StatusCode != http.StatusNotFound || e.Code != errors.ErrCodeNotFound {
		t.Errorf("missing scope = %d %+v", resp.StatusCode, e)
	}
}

func TestUnits(t *testing.T) {
	f := newFixture(t)
	tests := []struct {
		path   string
		status int
		scope  string
	}{
		{"/scopes/app/units/app.Main", http.StatusOK, "app"},
		{"/scopes/app/units/app.Base", http.StatusOK, "core"},
		{"/scopes/app/units/plugin.Hook", http.StatusOK, "plugins"},
		{"/scopes/core/units/app.Main", http.StatusNotFound, ""},
		{"/scopes/ghost/units/app.Main", http.StatusNotFound, ""},
	}
	for _, tt := range tests {
		var info UnitInfo
		resp := f.get(t, tt.path, &info)
		if resp.StatusCode != tt.status {
			t.Errorf("%s: status = %d, want %d", tt.path, resp.StatusCode, tt.status)
			continue
		}
		if tt.scope != "" && info.Scope != tt.scope {
			t.Errorf("%s: defined in %q, want %q", tt.path, info.Scope, tt.scope)
		}
	}
}

func TestResources(t *testing.T) {
	f := newFixture(t)

	var one ResourceInfo
	f.get(t, "/scopes/app/resources/conf/app.toml", &one)
	if len(one.Locations) != 1 || !strings.HasSuffix(one.Locations[0], "/conf/app.toml") {
		t.Errorf("single = %+v", one)
	}

	var all ResourceInfo
	f.get(t, "/scopes/app/resources/conf/app.toml?all=1", &all)
	if len(all.Locations) != 2 {
		t.Errorf("all = %+v, want own and parent location", all)
	}

	resp := f.get(t, "/scopes/app/resources/conf/missing.toml", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("missing resource status = %d", resp.StatusCode)
	}
}

func TestDOTAndMetrics(t *testing.T) {
	f := newFixture(t)

	resp, err := http.Get(f.server.URL + "/graph.dot")
	if err != nil {
		t.Fatal(err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if !strings.Contains(string(body), `"core" -> "app";`) {
		t.Errorf("graph.dot = %s", body)
	}

	resp, err = http.Get(f.server.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	if string(body) != "# metrics\n" {
		t.Errorf("metrics = %q", body)
	}
}

func TestClosedGraph(t *testing.T) {
	f := newFixture(t)
	f.graph.Close()

	var e errorBody
	resp := f.get(t, "/scopes/app/units/app.Main", &e)
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", resp.StatusCode)
	}
}

func TestRun(t *testing.T) {
	f := newFixture(t)
	s := New(f.graph, Options{Addr: "127.0.0.1:0", Logger: log.New(io.Discard)})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
	cancel()
	if err := <-done; err != nil {
		t.Errorf("Run = %v", err)
	}
}
