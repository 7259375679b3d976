package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, DefaultFilename)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadValidConfig(t *testing.T) {
	path := writeConfig(t, t.TempDir(), exampleConfig)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.Charts) != 3 {
		t.Errorf("charts = %d, want 3", len(cfg.Charts))
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/vesshelm.yaml")
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "charts: [unterminated")
	_, err := Load(path)
	if err == nil {
		t.Fatal("expected parse error")
	}
	if !strings.Contains(err.Error(), "parsing config") {
		t.Errorf("error = %v, want parsing context", err)
	}
}

func TestLoadValuesFileRelativeToConfig(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "redis.yaml"), []byte("a: 1\n"), 0644); err != nil {
		t.Fatal(err)
	}
	path := writeConfig(t, dir, `
repositories:
  - name: bitnami
    url: https://charts.bitnami.com/bitnami
destinations:
  - name: default
    path: ./charts
charts:
  - name: redis
    repo_name: bitnami
    version: 1.0.0
    namespace: cache
    values_files: [redis.yaml]
  - name: other
    repo_name: bitnami
    version: 1.0.0
    namespace: cache
    values_files: [missing.yaml]
`)

	_, err := Load(path)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(verr.Errors) != 1 {
		t.Fatalf("errors = %v, want exactly one", verr.Errors)
	}
	if !strings.Contains(verr.Errors[0], "missing.yaml") {
		t.Errorf("error = %q, want missing.yaml", verr.Errors[0])
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Repositories: []Repository{{Name: "bitnami", URL: "https://charts.bitnami.com/bitnami"}},
			Destinations: []Destination{{Name: "default", Path: "./charts"}},
			Charts: []Chart{
				{Name: "redis", RepoName: "bitnami", Version: "1.0.0", Namespace: "cache"},
			},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{
			"duplicate repository",
			func(c *Config) { c.Repositories = append(c.Repositories, c.Repositories[0]) },
			"duplicate repository name",
		},
		{
			"duplicate destination",
			func(c *Config) { c.Destinations = append(c.Destinations, c.Destinations[0]) },
			"duplicate destination name",
		},
		{
			"duplicate chart in namespace",
			func(c *Config) { c.Charts = append(c.Charts, c.Charts[0]) },
			"duplicate chart 'redis' in namespace 'cache'",
		},
		{
			"same name different namespace",
			func(c *Config) {
				dup := c.Charts[0]
				dup.Namespace = "other"
				c.Charts = append(c.Charts, dup)
			},
			"",
		},
		{
			"undefined repository",
			func(c *Config) { c.Charts[0].RepoName = "nope" },
			"undefined repository 'nope'",
		},
		{
			"local chart without path",
			func(c *Config) { c.Charts[0].RepoName = "" },
			"requires 'chart_path'",
		},
		{
			"git chart without path",
			func(c *Config) { c.Repositories[0].Type = RepoGit },
			"git repository 'bitnami' requires 'chart_path'",
		},
		{
			"unknown repository type",
			func(c *Config) { c.Repositories[0].Type = "svn" },
			"unknown repository type 'svn'",
		},
		{
			"unknown destination alias",
			func(c *Config) { c.Charts[0].Dest = "elsewhere" },
			"neither a destination name nor a path",
		},
		{
			"destination override as path",
			func(c *Config) { c.Charts[0].Dest = "./vendor" },
			"",
		},
		{
			"missing namespace",
			func(c *Config) { c.Charts[0].Namespace = "" },
			"'namespace' is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			errs := Validate(cfg)
			if tt.wantErr == "" {
				if len(errs) != 0 {
					t.Errorf("unexpected errors: %v", errs)
				}
				return
			}
			joined := strings.Join(errs, "\n")
			if !strings.Contains(joined, tt.wantErr) {
				t.Errorf("errors = %v, want one containing %q", errs, tt.wantErr)
			}
		})
	}
}

func TestValidationErrorMessage(t *testing.T) {
	err := &ValidationError{Errors: []string{"first", "second"}}
	msg := err.Error()
	if !strings.Contains(msg, "first") || !strings.Contains(msg, "second") {
		t.Errorf("message = %q", msg)
	}
}
