package config

// DefaultFilename is the configuration file read when no path is given.
const DefaultFilename = "vesshelm.yaml"

// DefaultDestination is the destination used by charts without an override.
const DefaultDestination = "default"

// Config represents the vesshelm.yaml configuration file.
type Config struct {
	Repositories []Repository  `yaml:"repositories"`
	Charts       []Chart       `yaml:"charts"`
	Destinations []Destination `yaml:"destinations"`
	Helm         *HelmConfig   `yaml:"helm,omitempty"`
}

// RepoType identifies how charts are fetched from a repository.
type RepoType string

const (
	RepoHelm RepoType = "helm"
	RepoGit  RepoType = "git"
	RepoOCI  RepoType = "oci"
)

// Label returns the display name used in sync events.
func (t RepoType) Label() string {
	switch t {
	case RepoGit:
		return "Git"
	case RepoOCI:
		return "OCI"
	default:
		return "Helm"
	}
}

// Repository is a named chart origin.
type Repository struct {
	Name string   `yaml:"name"`
	URL  string   `yaml:"url"`
	Type RepoType `yaml:"type,omitempty"`
}

// Kind returns the repository type, defaulting to helm.
func (r Repository) Kind() RepoType {
	if r.Type == "" {
		return RepoHelm
	}
	return r.Type
}

// Chart is a single deployable unit. Name and Namespace together identify it.
type Chart struct {
	Name             string           `yaml:"name"`
	RepoName         string           `yaml:"repo_name,omitempty"`
	Version          string           `yaml:"version,omitempty"`
	Namespace        string           `yaml:"namespace"`
	Dest             string           `yaml:"destination_override,omitempty"`
	ChartPath        string           `yaml:"chart_path,omitempty"`
	NoSync           bool             `yaml:"no_sync,omitempty"`
	NoDeploy         bool             `yaml:"no_deploy,omitempty"`
	Comment          string           `yaml:"comment,omitempty"`
	ValuesFiles      []string         `yaml:"values_files,omitempty"`
	HelmArgsAppend   string           `yaml:"helm_args_append,omitempty"`
	HelmArgsOverride string           `yaml:"helm_args_override,omitempty"`
	Values           []map[string]any `yaml:"values,omitempty"`
	Depends          []string         `yaml:"depends,omitempty"`
}

// IsLocal reports whether the chart lives in the project and is never fetched.
func (c Chart) IsLocal() bool {
	return c.RepoName == ""
}

// Destination maps an alias to a base directory for materialized charts.
type Destination struct {
	Name string `yaml:"name"`
	Path string `yaml:"path"`
}

// HelmConfig holds the command templates used by deploy.
type HelmConfig struct {
	Args        string `yaml:"args"`
	DiffEnabled *bool  `yaml:"diff_enabled,omitempty"`
	DiffArgs    string `yaml:"diff_args,omitempty"`
}

// DiffOn reports whether a diff should run before each deployment.
// An unset diff_enabled means true.
func (h *HelmConfig) DiffOn() bool {
	if h == nil || h.DiffEnabled == nil {
		return true
	}
	return *h.DiffEnabled
}

// Repository returns the repository with the given name.
func (c *Config) Repository(name string) (Repository, bool) {
	for _, r := range c.Repositories {
		if r.Name == name {
			return r, true
		}
	}
	return Repository{}, false
}

// Destination returns the destination with the given alias.
func (c *Config) Destination(name string) (Destination, bool) {
	for _, d := range c.Destinations {
		if d.Name == name {
			return d, true
		}
	}
	return Destination{}, false
}

// ChartsNamed returns every chart with the given name, across namespaces.
func (c *Config) ChartsNamed(name string) []Chart {
	var out []Chart
	for _, ch := range c.Charts {
		if ch.Name == name {
			out = append(out, ch)
		}
	}
	return out
}

// RepositoryInUse reports whether any chart other than skip references repo.
func (c *Config) RepositoryInUse(repo string, skip Chart) bool {
	for _, ch := range c.Charts {
		if ch.Name == skip.Name && ch.Namespace == skip.Namespace {
			continue
		}
		if ch.RepoName == repo {
			return true
		}
	}
	return false
}
