package httputil

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/scopegraph/pkg/cache"
)

func TestNewClient(t *testing.T) {
	c, _ := cache.NewFileCache(t.TempDir())
	defer c.Close()

	headers := map[string]string{"Authorization": "Bearer token"}
	client := NewClient(c, "test:", time.Hour, headers)

	if client.http == nil {
		t.Error("NewClient() http client is nil")
	}
	if client.headers["Authorization"] != "Bearer token" {
		t.Error("NewClient() headers not set correctly")
	}
	if client.cache.(*cache.NamespacedCache).Prefix() != "test:" {
		t.Error("NewClient() cache not namespaced")
	}
}

func TestClientFetch(t *testing.T) {
	var hits atomic.Int32
	var receivedHeader string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		receivedHeader = r.Header.Get("X-Default")
		w.Write([]byte("unit body"))
	}))
	defer server.Close()

	c, _ := cache.NewFileCache(t.TempDir())
	defer c.Close()

	client := NewClient(c, "test:", time.Hour, map[string]string{"X-Default": "default"}).
		WithHTTPClient(server.Client())

	for range 2 {
		data, err := client.Fetch(context.Background(), server.URL+"/a.unit")
		if err != nil {
			t.Fatalf("Fetch() error: %v", err)
		}
		if string(data) != "unit body" {
			t.Errorf("Fetch() = %q, want %q", data, "unit body")
		}
	}
	if hits.Load() != 1 {
		t.Errorf("server hit %d times, want 1 (second fetch cached)", hits.Load())
	}
	if receivedHeader != "default" {
		t.Errorf("header = %q, want %q", receivedHeader, "default")
	}
}

func TestClientFetch404(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(nil, "", 0, nil).WithHTTPClient(server.Client())

	_, err := client.Fetch(context.Background(), server.URL)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Fetch() error = %v, want ErrNotFound", err)
	}

	ok, err := client.Exists(context.Background(), server.URL)
	if err != nil || ok {
		t.Errorf("Exists() = %v, %v; want false, nil", ok, err)
	}
}

func TestCheckStatus(t *testing.T) {
	tests := []struct {
		code      int
		wantErr   error
		retryable bool
	}{
		{http.StatusOK, nil, false},
		{http.StatusNotFound, ErrNotFound, false},
		{http.StatusForbidden, ErrNetwork, false},
		{http.StatusBadGateway, ErrNetwork, true},
	}

	for _, tt := range tests {
		err := checkStatus(tt.code)
		if tt.wantErr == nil {
			if err != nil {
				t.Errorf("checkStatus(%d) = %v, want nil", tt.code, err)
			}
			continue
		}
		if !errors.Is(err, tt.wantErr) {
			t.Errorf("checkStatus(%d) = %v, want %v", tt.code, err, tt.wantErr)
		}
		if cache.IsRetryable(err) != tt.retryable {
			t.Errorf("checkStatus(%d) retryable = %v, want %v", tt.code, cache.IsRetryable(err), tt.retryable)
		}
	}
}
