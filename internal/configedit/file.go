package configedit

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/vesshelm/vesshelm/internal/config"
	"github.com/vesshelm/vesshelm/internal/sandbox"
)

// ErrInvalidResult is returned when an edit would leave the file unparseable.
// The file is not written.
var ErrInvalidResult = errors.New("edit produces invalid YAML")

// Editor applies text edits to a configuration file on disk. The file is
// rewritten atomically, only when an edit changed it and only when the
// result still parses.
type Editor struct {
	Path string
}

func (e *Editor) apply(edit func(doc string) (string, error)) (bool, error) {
	data, err := os.ReadFile(e.Path)
	if err != nil {
		return false, fmt.Errorf("reading config %s: %w", e.Path, err)
	}
	info, err := os.Stat(e.Path)
	if err != nil {
		return false, err
	}

	before := string(data)
	after, err := edit(before)
	if err != nil {
		return false, err
	}
	if after == before {
		return false, nil
	}
	var root yaml.Node
	if err := yaml.Unmarshal([]byte(after), &root); err != nil {
		return false, fmt.Errorf("%w: %v", ErrInvalidResult, err)
	}
	if err := sandbox.WriteFileAtomic(e.Path, []byte(after), info.Mode().Perm()); err != nil {
		return false, fmt.Errorf("writing config %s: %w", e.Path, err)
	}
	return true, nil
}

// AddChart appends chart to the charts section. When repo is not nil it is
// added to the repositories section in the same write.
func (e *Editor) AddChart(chart config.Chart, repo *config.Repository) error {
	_, err := e.apply(func(doc string) (string, error) {
		if repo != nil {
			var err error
			if doc, err = InsertItem(doc, "repositories", RepositoryBlock(*repo)); err != nil {
				return "", err
			}
		}
		return InsertItem(doc, "charts", ChartBlock(chart))
	})
	return err
}

// VersionUpdate is a new version for the chart identified by Name and
// Namespace.
type VersionUpdate struct {
	Name      string
	Namespace string
	Version   string
}

// SetChartVersion rewrites the version of one chart.
func (e *Editor) SetChartVersion(name, namespace, version string) error {
	_, err := e.apply(func(doc string) (string, error) {
		return ReplaceChartVersion(doc, name, namespace, version)
	})
	return err
}

// SetChartVersions rewrites several chart versions in one write. Updates
// that could not be applied are returned with their error and leave their
// chart as it was; the others are still written.
func (e *Editor) SetChartVersions(updates []VersionUpdate) (map[VersionUpdate]error, error) {
	failed := make(map[VersionUpdate]error)
	_, err := e.apply(func(doc string) (string, error) {
		for _, u := range updates {
			out, err := ReplaceChartVersion(doc, u.Name, u.Namespace, u.Version)
			if err != nil {
				failed[u] = err
				continue
			}
			doc = out
		}
		return doc, nil
	})
	return failed, err
}

// RemoveChart deletes the chart identified by name and namespace.
func (e *Editor) RemoveChart(name, namespace string) (bool, error) {
	return e.apply(func(doc string) (string, error) {
		out, _ := RemoveItem(doc, "charts", Field{"name", name}, Field{"namespace", namespace})
		return out, nil
	})
}

// RemoveRepository deletes the repository called name.
func (e *Editor) RemoveRepository(name string) (bool, error) {
	return e.apply(func(doc string) (string, error) {
		out, _ := RemoveItem(doc, "repositories", Field{"name", name})
		return out, nil
	})
}
