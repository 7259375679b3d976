package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load reads and validates a vesshelm.yaml configuration file.
// Relative values files are checked against the directory holding the file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	errs := Validate(cfg)
	errs = append(errs, validateFiles(cfg, filepath.Dir(path))...)
	if len(errs) > 0 {
		return nil, &ValidationError{Errors: errs}
	}

	return cfg, nil
}

// Parse decodes configuration YAML without validating it.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ValidationError holds multiple validation failures.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed:\n  - %s", strings.Join(e.Errors, "\n  - "))
}

// Validate checks a Config for semantic correctness.
// Returns a list of validation error messages (empty if valid).
// Dependency integrity is checked separately by the dag package.
func Validate(cfg *Config) []string {
	var errs []string

	repos := make(map[string]Repository)
	for i, r := range cfg.Repositories {
		prefix := fmt.Sprintf("repository[%d]", i)
		if r.Name != "" {
			prefix = fmt.Sprintf("repository '%s'", r.Name)
		}

		if r.Name == "" {
			errs = append(errs, fmt.Sprintf("%s: 'name' is required", prefix))
		} else if _, dup := repos[r.Name]; dup {
			errs = append(errs, fmt.Sprintf("%s: duplicate repository name '%s'", prefix, r.Name))
		} else {
			repos[r.Name] = r
		}

		if r.URL == "" {
			errs = append(errs, fmt.Sprintf("%s: 'url' is required", prefix))
		}

		switch r.Kind() {
		case RepoHelm, RepoGit, RepoOCI:
		default:
			errs = append(errs, fmt.Sprintf("%s: unknown repository type '%s' (must be one of: helm, git, oci)", prefix, r.Type))
		}
	}

	dests := make(map[string]bool)
	for i, d := range cfg.Destinations {
		prefix := fmt.Sprintf("destination[%d]", i)
		if d.Name != "" {
			prefix = fmt.Sprintf("destination '%s'", d.Name)
		}

		if d.Name == "" {
			errs = append(errs, fmt.Sprintf("%s: 'name' is required", prefix))
		} else if dests[d.Name] {
			errs = append(errs, fmt.Sprintf("%s: duplicate destination name '%s'", prefix, d.Name))
		} else {
			dests[d.Name] = true
		}
		if d.Path == "" {
			errs = append(errs, fmt.Sprintf("%s: 'path' is required", prefix))
		}
	}

	type chartKey struct{ name, namespace string }
	seen := make(map[chartKey]bool)
	for i, ch := range cfg.Charts {
		prefix := fmt.Sprintf("chart[%d]", i)
		if ch.Name != "" {
			prefix = fmt.Sprintf("chart '%s'", ch.Name)
		}

		if ch.Name == "" {
			errs = append(errs, fmt.Sprintf("%s: 'name' is required", prefix))
		}
		if ch.Namespace == "" {
			errs = append(errs, fmt.Sprintf("%s: 'namespace' is required", prefix))
		}

		key := chartKey{ch.Name, ch.Namespace}
		if ch.Name != "" && seen[key] {
			errs = append(errs, fmt.Sprintf("%s: duplicate chart '%s' in namespace '%s'", prefix, ch.Name, ch.Namespace))
		}
		seen[key] = true

		if ch.IsLocal() {
			if ch.ChartPath == "" {
				errs = append(errs, fmt.Sprintf("%s: local chart requires 'chart_path' (or set 'repo_name')", prefix))
			}
		} else if repo, ok := repos[ch.RepoName]; !ok {
			errs = append(errs, fmt.Sprintf("%s: references undefined repository '%s'", prefix, ch.RepoName))
		} else if repo.Kind() == RepoGit && ch.ChartPath == "" {
			errs = append(errs, fmt.Sprintf("%s: git repository '%s' requires 'chart_path'", prefix, ch.RepoName))
		}

		if ch.Dest != "" && !dests[ch.Dest] && !looksLikePath(ch.Dest) {
			errs = append(errs, fmt.Sprintf("%s: destination_override '%s' is neither a destination name nor a path", prefix, ch.Dest))
		}
	}

	return errs
}

func validateFiles(cfg *Config, baseDir string) []string {
	var errs []string
	for _, ch := range cfg.Charts {
		for _, f := range ch.ValuesFiles {
			if _, err := os.Stat(ResolvePath(baseDir, f)); err != nil {
				errs = append(errs, fmt.Sprintf("chart '%s': values file '%s' not found", ch.Name, f))
			}
		}
	}
	return errs
}

// looksLikePath accepts overrides such as "./charts" or "vendor/charts".
func looksLikePath(s string) bool {
	return strings.ContainsRune(s, '/') || strings.HasPrefix(s, ".") || filepath.IsAbs(s)
}
