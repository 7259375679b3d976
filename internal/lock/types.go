package lock

// DefaultFilename is the lockfile written next to the configuration.
const DefaultFilename = "vesshelm.lock"

// Lockfile represents the vesshelm.lock file: the version last synchronized
// for each fetched chart.
type Lockfile struct {
	Charts []Entry `yaml:"charts"`
}

// Entry records the synchronized version of a chart from a repository.
// Name and RepoName together are the key.
type Entry struct {
	Name     string `yaml:"name"`
	RepoName string `yaml:"repo_name"`
	Version  string `yaml:"version"`
}

// Get returns the entry for (name, repo).
func (lf *Lockfile) Get(name, repo string) (*Entry, bool) {
	for i := range lf.Charts {
		if lf.Charts[i].Name == name && lf.Charts[i].RepoName == repo {
			return &lf.Charts[i], true
		}
	}
	return nil, false
}

// Update sets the version for (name, repo), overwriting an existing entry
// in place or appending a new one.
func (lf *Lockfile) Update(name, repo, version string) {
	if e, ok := lf.Get(name, repo); ok {
		e.Version = version
		return
	}
	lf.Charts = append(lf.Charts, Entry{Name: name, RepoName: repo, Version: version})
}

// Remove deletes the entry for (name, repo). It reports whether one existed.
func (lf *Lockfile) Remove(name, repo string) bool {
	for i := range lf.Charts {
		if lf.Charts[i].Name == name && lf.Charts[i].RepoName == repo {
			lf.Charts = append(lf.Charts[:i], lf.Charts[i+1:]...)
			return true
		}
	}
	return false
}
