package lock

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vesshelm/vesshelm/internal/sandbox"
)

// Load reads and validates a vesshelm.lock file.
// A missing file yields an empty lockfile.
func Load(path string) (*Lockfile, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &Lockfile{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading lockfile %s: %w", path, err)
	}

	var lf Lockfile
	if err := yaml.Unmarshal(data, &lf); err != nil {
		return nil, fmt.Errorf("parsing lockfile %s: %w", path, err)
	}

	if errs := Validate(&lf); len(errs) > 0 {
		return nil, &ValidationError{Errors: errs}
	}

	return &lf, nil
}

// Save writes a lockfile atomically using a temp file and rename.
func Save(path string, lf *Lockfile) error {
	if lf.Charts == nil {
		lf.Charts = []Entry{}
	}
	data, err := yaml.Marshal(lf)
	if err != nil {
		return fmt.Errorf("marshaling lockfile: %w", err)
	}

	if err := sandbox.WriteFileAtomic(path, data, 0644); err != nil {
		return fmt.Errorf("writing lockfile %s: %w", path, err)
	}
	return nil
}

// ValidationError holds multiple validation failures.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("lockfile validation failed:\n  - %s", strings.Join(e.Errors, "\n  - "))
}

// Validate checks a Lockfile for semantic correctness.
// Returns a list of validation error messages (empty if valid).
func Validate(lf *Lockfile) []string {
	var errs []string

	type key struct{ name, repo string }
	seen := make(map[key]bool)
	for i, e := range lf.Charts {
		prefix := fmt.Sprintf("locked_chart[%d]", i)
		if e.Name != "" {
			prefix = fmt.Sprintf("locked chart '%s'", e.Name)
		}

		if e.Name == "" {
			errs = append(errs, fmt.Sprintf("%s: 'name' is required", prefix))
		}
		if e.RepoName == "" {
			errs = append(errs, fmt.Sprintf("%s: 'repo_name' is required", prefix))
		}
		if e.Version == "" {
			errs = append(errs, fmt.Sprintf("%s: 'version' is required", prefix))
		}

		k := key{e.Name, e.RepoName}
		if seen[k] {
			errs = append(errs, fmt.Sprintf("%s: duplicate entry for repository '%s'", prefix, e.RepoName))
		}
		seen[k] = true
	}

	return errs
}
