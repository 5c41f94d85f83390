package prom

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/matzehuels/scopegraph/pkg/observability"
)

func TestHooksFeedCollectors(t *testing.T) {
	ctx := context.Background()
	m := New(nil)

	m.OnMaterializeComplete(ctx, 4, time.Millisecond, nil)
	m.OnMaterializeComplete(ctx, 0, time.Millisecond, errors.New("boom"))
	m.OnSourceResolved(ctx, "app", "default", 2)
	m.OnUnitResolved(ctx, "app", true, time.Microsecond)
	m.OnUnitResolved(ctx, "app", false, time.Microsecond)
	m.OnUnitDefined(ctx, "app", "x.Y", 128)
	m.OnResourceResolved(ctx, "app", true)
	m.OnCacheHit(ctx, "remote")
	m.OnCacheMiss(ctx, "remote")
	m.OnCacheSet(ctx, "remote", 10)
	m.OnResponse(ctx, "GET", "repo.example", "/x", 200, time.Millisecond)
	m.OnError(ctx, "GET", "repo.example", "/x", errors.New("reset"))

	tests := []struct {
		name string
		c    prometheus.Collector
		want float64
	}{
		{"ok materializations", m.Materializations.WithLabelValues("ok"), 1},
		{"failed materializations", m.Materializations.WithLabelValues("error"), 1},
		{"scopes", m.Scopes, 4},
		{"sources", m.SourcesResolved.WithLabelValues("default"), 1},
		{"unit hits", m.UnitLookups.WithLabelValues("app", "true"), 1},
		{"unit misses", m.UnitLookups.WithLabelValues("app", "false"), 1},
		{"defined", m.UnitsDefined.WithLabelValues("app"), 1},
		{"unit bytes", m.UnitBytes, 128},
		{"resources", m.ResourceLookups.WithLabelValues("app", "true"), 1},
		{"cache hits", m.CacheOps.WithLabelValues("remote", "hit"), 1},
		{"cache sets", m.CacheOps.WithLabelValues("remote", "set"), 1},
		{"http", m.HTTPRequests.WithLabelValues("repo.example", "200"), 1},
		{"http errors", m.HTTPErrors.WithLabelValues("repo.example"), 1},
	}
	for _, tt := range tests {
		if got := testutil.ToFloat64(tt.c); got != tt.want {
			t.Errorf("%s = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestRegisterAndInstall(t *testing.T) {
	t.Cleanup(observability.Reset)
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.Install()

	observability.Resolve().OnUnitDefined(context.Background(), "core", "a.B", 3)

	expected := `
# HELP scopegraph_units_defined_total Units read from a scope's own artifacts
# TYPE scopegraph_units_defined_total counter
scopegraph_units_defined_total{scope="core"} 1
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(expected), "scopegraph_units_defined_total"); err != nil {
		t.Error(err)
	}
}
