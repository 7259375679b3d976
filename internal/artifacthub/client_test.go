package artifacthub

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestPackageSuccess(t *testing.T) {
	var gotPath, gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"name": "test-chart",
			"version": "1.2.3",
			"repository": {"name": "test-repo", "url": "https://charts.example.com"}
		}`))
	}))
	defer srv.Close()

	c := &Client{BaseURL: srv.URL + "/"}
	pkg, err := c.Package(context.Background(), "test-repo", "test-chart")
	if err != nil {
		t.Fatalf("Package: %v", err)
	}
	if pkg.Name != "test-chart" || pkg.Version != "1.2.3" {
		t.Errorf("package = %+v", pkg)
	}
	if pkg.Repository.URL != "https://charts.example.com" {
		t.Errorf("repository url = %q", pkg.Repository.URL)
	}
	if gotPath != "/packages/helm/test-repo/test-chart" {
		t.Errorf("path = %q", gotPath)
	}
	if gotUA != "vesshelm" {
		t.Errorf("user agent = %q", gotUA)
	}
}

func TestPackageNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := (&Client{BaseURL: srv.URL}).Package(context.Background(), "repo", "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if !strings.Contains(err.Error(), "repo/missing") {
		t.Errorf("error should name the package: %v", err)
	}
}

func TestPackageServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := (&Client{BaseURL: srv.URL}).Package(context.Background(), "repo", "chart")
	if err == nil || !strings.Contains(err.Error(), "502") {
		t.Fatalf("err = %v, want HTTP 502", err)
	}
}

func TestPackageIncomplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"name": "chart"}`))
	}))
	defer srv.Close()

	_, err := (&Client{BaseURL: srv.URL}).Package(context.Background(), "repo", "chart")
	if err == nil || !strings.Contains(err.Error(), "incomplete") {
		t.Fatalf("err = %v, want incomplete", err)
	}
}

func TestPackageTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	_, err := (&Client{BaseURL: srv.URL, Timeout: 50 * time.Millisecond}).Package(context.Background(), "repo", "chart")
	if err == nil {
		t.Fatal("expected timeout error")
	}
}

func TestParseRef(t *testing.T) {
	tests := []struct {
		in         string
		repo, name string
		wantErr    bool
	}{
		{in: "https://artifacthub.io/packages/helm/bitnami/redis", repo: "bitnami", name: "redis"},
		{in: "https://artifacthub.io/packages/helm/gissilabs/vaultwarden?modal=install", repo: "gissilabs", name: "vaultwarden"},
		{in: "bitnami/redis", repo: "bitnami", name: "redis"},
		{in: "redis", wantErr: true},
		{in: "https://example.com/a/b", wantErr: true},
		{in: "a/b/c", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			repo, name, err := ParseRef(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %s/%s", repo, name)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseRef: %v", err)
			}
			if repo != tt.repo || name != tt.name {
				t.Errorf("got %s/%s, want %s/%s", repo, name, tt.repo, tt.name)
			}
		})
	}
}
