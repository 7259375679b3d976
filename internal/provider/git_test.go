package provider

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

func TestGitCLICloneAndCheckout(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}

	workDir := t.TempDir()
	run := func(args ...string) {
		t.Helper()
		cmd := exec.Command("git", args...)
		cmd.Dir = workDir
		cmd.Env = append(os.Environ(), "GIT_AUTHOR_NAME=test", "GIT_AUTHOR_EMAIL=test@test.com", "GIT_COMMITTER_NAME=test", "GIT_COMMITTER_EMAIL=test@test.com")
		if out, err := cmd.CombinedOutput(); err != nil {
			t.Fatalf("git %v: %s: %v", args, out, err)
		}
	}

	chartFile := filepath.Join(workDir, "charts", "platform", "Chart.yaml")
	if err := os.MkdirAll(filepath.Dir(chartFile), 0755); err != nil {
		t.Fatal(err)
	}

	run("init", "-b", "main")
	if err := os.WriteFile(chartFile, []byte("version: 1.0.0\n"), 0644); err != nil {
		t.Fatal(err)
	}
	run("add", ".")
	run("commit", "-m", "v1")
	run("tag", "v1.0.0")
	if err := os.WriteFile(chartFile, []byte("version: 2.0.0\n"), 0644); err != nil {
		t.Fatal(err)
	}
	run("commit", "-am", "v2")

	g := &GitCLI{}
	ctx := context.Background()
	clone := filepath.Join(t.TempDir(), "clone")

	if err := g.Clone(ctx, workDir, clone); err != nil {
		t.Fatalf("Clone: %v", err)
	}
	if err := g.Checkout(ctx, clone, "v1.0.0"); err != nil {
		t.Fatalf("Checkout: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(clone, "charts", "platform", "Chart.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "version: 1.0.0\n" {
		t.Errorf("content = %q, want tagged version", data)
	}

	err = g.Checkout(ctx, clone, "no-such-rev")
	var cmdErr *CommandError
	if !errors.As(err, &cmdErr) {
		t.Fatalf("expected CommandError, got %v", err)
	}
	if cmdErr.Tool != "git" {
		t.Errorf("tool = %q", cmdErr.Tool)
	}
}

func TestGitCLICloneBadURL(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}

	err := (&GitCLI{}).Clone(context.Background(), filepath.Join(t.TempDir(), "missing"), filepath.Join(t.TempDir(), "dst"))
	if err == nil {
		t.Fatal("expected error cloning a missing repository")
	}
}
