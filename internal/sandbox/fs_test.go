package sandbox

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vesshelm.yaml")

	if err := os.WriteFile(path, []byte("old"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := WriteFileAtomic(path, []byte("new"), 0600); err != nil {
		t.Fatalf("WriteFileAtomic: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "new" {
		t.Errorf("content = %q, want new", data)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("perm = %v, want 0600", info.Mode().Perm())
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("dir has %d entries, temp file left behind", len(entries))
	}
}

func TestWriteFileAtomicMissingDir(t *testing.T) {
	err := WriteFileAtomic(filepath.Join(t.TempDir(), "nope", "file"), []byte("x"), 0644)
	if err == nil {
		t.Fatal("expected error for missing directory")
	}
}

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		p := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestReplaceDirSwapsContent(t *testing.T) {
	base := t.TempDir()
	src := filepath.Join(base, "stage", "redis")
	dst := filepath.Join(base, "charts", "redis")

	writeTree(t, src, map[string]string{"Chart.yaml": "version: 2", "templates/a.yaml": "a"})
	writeTree(t, dst, map[string]string{"Chart.yaml": "version: 1", "stale.yaml": "old"})

	if err := ReplaceDir(src, dst); err != nil {
		t.Fatalf("ReplaceDir: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dst, "Chart.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "version: 2" {
		t.Errorf("Chart.yaml = %q", data)
	}
	if _, err := os.Stat(filepath.Join(dst, "stale.yaml")); !os.IsNotExist(err) {
		t.Error("stale file should be gone")
	}
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Error("staged dir should be consumed")
	}
}

func TestCopyTree(t *testing.T) {
	src := t.TempDir()
	dst := filepath.Join(t.TempDir(), "copy")
	writeTree(t, src, map[string]string{
		"Chart.yaml":            "name: x",
		"templates/deploy.yaml": "kind: Deployment",
		"charts/sub/Chart.yaml": "name: sub",
	})

	if err := CopyTree(src, dst); err != nil {
		t.Fatalf("CopyTree: %v", err)
	}

	for _, rel := range []string{"Chart.yaml", "templates/deploy.yaml", "charts/sub/Chart.yaml"} {
		if _, err := os.Stat(filepath.Join(dst, rel)); err != nil {
			t.Errorf("missing %s: %v", rel, err)
		}
	}
}
