package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// mockHelm records calls and unpacks a fake chart on Pull.
type mockHelm struct {
	added      []string
	refreshes  int
	pulls      []string
	refreshErr error
	failPull   map[string]error
	latest     map[string]string
	latestErr  map[string]error
}

func (m *mockHelm) AddRepository(_ context.Context, name, url string) error {
	m.added = append(m.added, name+"="+url)
	return nil
}

func (m *mockHelm) RefreshIndex(context.Context) error {
	m.refreshes++
	return m.refreshErr
}

func (m *mockHelm) Pull(_ context.Context, ref, chart, version, destDir string) error {
	m.pulls = append(m.pulls, fmt.Sprintf("%s/%s@%s", ref, chart, version))
	if err := m.failPull[chart]; err != nil {
		return err
	}
	dir := filepath.Join(destDir, chart)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "Chart.yaml"), []byte("name: "+chart+"\nversion: "+version+"\n"), 0644)
}

func (m *mockHelm) LatestVersion(_ context.Context, chartRef string) (string, error) {
	if err := m.latestErr[chartRef]; err != nil {
		return "", err
	}
	v, ok := m.latest[chartRef]
	if !ok {
		return "", fmt.Errorf("chart %s not found", chartRef)
	}
	return v, nil
}

// mockGit "clones" by writing the files map into dir.
type mockGit struct {
	files     map[string]string
	cloned    []string
	checkouts []string
	cloneErr  error
}

func (m *mockGit) Clone(_ context.Context, url, dir string) error {
	m.cloned = append(m.cloned, url)
	if m.cloneErr != nil {
		return m.cloneErr
	}
	for rel, content := range m.files {
		p := filepath.Join(dir, rel)
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			return err
		}
		if err := os.WriteFile(p, []byte(content), 0644); err != nil {
			return err
		}
	}
	return nil
}

func (m *mockGit) Checkout(_ context.Context, dir, rev string) error {
	m.checkouts = append(m.checkouts, rev)
	if strings.HasPrefix(rev, "bad") {
		return fmt.Errorf("unknown revision %s", rev)
	}
	return nil
}
