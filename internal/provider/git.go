package provider

import (
	"context"
	"os"

	"github.com/vesshelm/vesshelm/internal/runner"
)

// GitCLI implements Cloner using the git binary.
type GitCLI struct{}

func (g *GitCLI) run(ctx context.Context, args ...string) error {
	cmd := runner.Command(ctx, "git", args...)
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0")
	out, err := cmd.CombinedOutput()
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &CommandError{Tool: "git", Args: args, Output: string(out), Err: err, Hint: "check repository URL, revision and authentication"}
	}
	return nil
}

// Clone clones url into dir, which must not exist or be empty.
func (g *GitCLI) Clone(ctx context.Context, url, dir string) error {
	return g.run(ctx, "clone", "--quiet", url, dir)
}

// Checkout moves the working tree in dir to rev (tag, branch or commit).
func (g *GitCLI) Checkout(ctx context.Context, dir, rev string) error {
	return g.run(ctx, "-C", dir, "checkout", "--quiet", rev)
}
