package configedit

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/k14s/difflib"
	"github.com/stretchr/testify/require"

	"github.com/vesshelm/vesshelm/internal/config"
)

const sampleDoc = `# Project charts
repositories:
  - name: bitnami
    url: https://charts.bitnami.com/bitnami # stable
  - name: grafana
    url: https://grafana.github.io/helm-charts

charts:
  # databases
  - name: redis
    repo_name: bitnami
    version: "18.1.0" # pinned
    namespace: cache

  - name: grafana
    repo_name: grafana
    version: 7.0.0
    namespace: monitoring
    values:
      - name: nested
        version: 9.9.9

  # tooling
  - name: tool
    chart_path: ./charts/tool
    namespace: tools

destinations:
  - name: default
    path: ./charts
`

func requireText(t *testing.T, expected, actual string) {
	t.Helper()
	if expected != actual {
		t.Fatalf("not equal; diff expected...actual:\n%v\n",
			difflib.PPDiff(strings.Split(expected, "\n"), strings.Split(actual, "\n")))
	}
}

func TestReplaceVersion_KeepsQuotesAndComment(t *testing.T) {
	out, err := ReplaceVersion(sampleDoc, "redis", "18.2.0")
	require.NoError(t, err)
	requireText(t, strings.Replace(sampleDoc, `"18.1.0"`, `"18.2.0"`, 1), out)
}

func TestReplaceVersion_IgnoresOtherSectionsAndNestedKeys(t *testing.T) {
	out, err := ReplaceVersion(sampleDoc, "grafana", "7.1.0")
	require.NoError(t, err)
	requireText(t, strings.Replace(sampleDoc, "version: 7.0.0", "version: 7.1.0", 1), out)
	require.Contains(t, out, "version: 9.9.9")
}

func TestReplaceVersion_CrossedBoundary(t *testing.T) {
	doc := `charts:
  - name: chart1
    namespace: a
  - name: chart2
    version: 2.0.0
    namespace: b
`
	out, err := ReplaceVersion(doc, "chart1", "9.9.9")
	require.ErrorIs(t, err, ErrCrossedBoundary)
	require.Empty(t, out)

	out, err = ReplaceVersion(doc, "chart2", "2.1.0")
	require.NoError(t, err)
	requireText(t, strings.Replace(doc, "2.0.0", "2.1.0", 1), out)
}

func TestReplaceVersion_Errors(t *testing.T) {
	_, err := ReplaceVersion("charts:\n  - name: chart1\n    namespace: a\n", "chart1", "1.0.0")
	require.ErrorIs(t, err, ErrFieldNotFound)

	_, err = ReplaceVersion(sampleDoc, "ghost", "1.0.0")
	require.ErrorIs(t, err, ErrItemNotFound)

	_, err = ReplaceVersion("repositories: []\n", "redis", "1.0.0")
	require.ErrorIs(t, err, ErrSectionNotFound)
}

func TestReplaceVersion_EmptyValue(t *testing.T) {
	doc := "charts:\n  - name: app\n    version: # set me\n    namespace: a\n"
	out, err := ReplaceVersion(doc, "app", "1.2.3")
	require.NoError(t, err)
	requireText(t, "charts:\n  - name: app\n    version: 1.2.3 # set me\n    namespace: a\n", out)
}

func TestRemoveItem_KeepsHeaderComment(t *testing.T) {
	out, ok := RemoveItem(sampleDoc, "charts", Field{"name", "redis"}, Field{"namespace", "cache"})
	require.True(t, ok)
	requireText(t, strings.Replace(sampleDoc,
		"  - name: redis\n    repo_name: bitnami\n    version: \"18.1.0\" # pinned\n    namespace: cache\n\n", "", 1), out)
}

func TestRemoveItem_StopsAtBlankBeforeComment(t *testing.T) {
	out, ok := RemoveItem(sampleDoc, "charts", Field{"name", "grafana"}, Field{"namespace", "monitoring"})
	require.True(t, ok)
	requireText(t, strings.Replace(sampleDoc,
		"  - name: grafana\n    repo_name: grafana\n    version: 7.0.0\n    namespace: monitoring\n    values:\n      - name: nested\n        version: 9.9.9\n", "", 1), out)
	require.Contains(t, out, "  - name: grafana\n    url: https://grafana.github.io/helm-charts\n")
}

func TestRemoveItem_LastItemKeepsSpacing(t *testing.T) {
	out, ok := RemoveItem(sampleDoc, "charts", Field{"name", "tool"}, Field{"namespace", "tools"})
	require.True(t, ok)
	requireText(t, strings.Replace(sampleDoc,
		"  - name: tool\n    chart_path: ./charts/tool\n    namespace: tools\n", "", 1), out)
}

func TestRemoveItem_Repository(t *testing.T) {
	out, ok := RemoveItem(sampleDoc, "repositories", Field{"name", "grafana"})
	require.True(t, ok)
	requireText(t, strings.Replace(sampleDoc,
		"  - name: grafana\n    url: https://grafana.github.io/helm-charts\n", "", 1), out)
}

func TestRemoveItem_NoMatch(t *testing.T) {
	out, ok := RemoveItem(sampleDoc, "charts", Field{"name", "redis"}, Field{"namespace", "other"})
	require.False(t, ok)
	require.Equal(t, sampleDoc, out)

	out, ok = RemoveItem(sampleDoc, "charts", Field{"name", "nested"})
	require.False(t, ok)
	require.Equal(t, sampleDoc, out)

	out, ok = RemoveItem(sampleDoc, "missing", Field{"name", "redis"})
	require.False(t, ok)
	require.Equal(t, sampleDoc, out)
}

func TestInsertThenRemove_RestoresDocument(t *testing.T) {
	chart := config.Chart{Name: "nginx", RepoName: "bitnami", Namespace: "web", Version: "15.0.0"}

	inserted, err := InsertItem(sampleDoc, "charts", ChartBlock(chart))
	require.NoError(t, err)
	require.Contains(t, inserted, "charts:\n  - name: nginx\n    repo_name: bitnami\n    namespace: web\n    version: 15.0.0\n  # databases\n")

	restored, ok := RemoveItem(inserted, "charts", Field{"name", "nginx"}, Field{"namespace", "web"})
	require.True(t, ok)
	requireText(t, sampleDoc, restored)
}

func TestInsertItem_EmptyFlowSection(t *testing.T) {
	doc := "repositories: []\ncharts: [] # none\n"
	out, err := InsertItem(doc, "charts", ChartBlock(config.Chart{Name: "x", Namespace: "y"}))
	require.NoError(t, err)
	requireText(t, "repositories: []\ncharts: # none\n  - name: x\n    namespace: y\n", out)
}

func TestInsertItem_MissingSection(t *testing.T) {
	doc := "repositories:\n  - name: a\n    url: u"
	out, err := InsertItem(doc, "charts", ChartBlock(config.Chart{Name: "x", Namespace: "y"}))
	require.NoError(t, err)
	requireText(t, "repositories:\n  - name: a\n    url: u\ncharts:\n  - name: x\n    namespace: y\n", out)
}

func TestInsertItem_FlowSectionWithContent(t *testing.T) {
	_, err := InsertItem("charts: [a]\n", "charts", ChartBlock(config.Chart{Name: "x", Namespace: "y"}))
	require.ErrorIs(t, err, ErrFlowSection)
}

func TestInsertItem_NestedKeyIsNotASection(t *testing.T) {
	doc := "helm:\n  charts: x\n"
	out, err := InsertItem(doc, "charts", ChartBlock(config.Chart{Name: "x", Namespace: "y"}))
	require.NoError(t, err)
	requireText(t, "helm:\n  charts: x\ncharts:\n  - name: x\n    namespace: y\n", out)
}

func TestBlocks_QuoteWhenNeeded(t *testing.T) {
	repo := config.Repository{Name: "charts", URL: "https://example.com/charts", Type: config.RepoOCI}
	chart := config.Chart{
		Name:      "app",
		RepoName:  "charts",
		Namespace: "apps",
		Version:   "1.0",
		Comment:   "owner: platform # team",
	}

	doc, err := InsertItem("repositories:\ncharts:\n", "repositories", RepositoryBlock(repo))
	require.NoError(t, err)
	doc, err = InsertItem(doc, "charts", ChartBlock(chart))
	require.NoError(t, err)

	cfg, err := config.Parse([]byte(doc))
	require.NoError(t, err)
	require.Len(t, cfg.Repositories, 1)
	require.Equal(t, repo, cfg.Repositories[0])
	require.Len(t, cfg.Charts, 1)
	require.Equal(t, "1.0", cfg.Charts[0].Version)
	require.Equal(t, "owner: platform # team", cfg.Charts[0].Comment)
}

func TestRepositoryBlock_OmitsHelmType(t *testing.T) {
	require.Equal(t, "\n  - name: bitnami\n    url: https://charts.bitnami.com/bitnami",
		RepositoryBlock(config.Repository{Name: "bitnami", URL: "https://charts.bitnami.com/bitnami"}))
}

func TestCRLFDocument(t *testing.T) {
	doc := "charts:\r\n  - name: a\r\n    version: 1.0.0\r\n    namespace: x\r\n"
	out, err := ReplaceVersion(doc, "a", "1.1.0")
	require.NoError(t, err)
	require.Equal(t, strings.Replace(doc, "1.0.0", "1.1.0", 1), out)

	inserted, err := InsertItem(doc, "charts", ChartBlock(config.Chart{Name: "b", Namespace: "y"}))
	require.NoError(t, err)
	require.Equal(t, "charts:\r\n  - name: b\r\n    namespace: y\r\n  - name: a\r\n    version: 1.0.0\r\n    namespace: x\r\n", inserted)
}

func TestEditor(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vesshelm.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleDoc), 0640))
	ed := &Editor{Path: path}

	repo := &config.Repository{Name: "jetstack", URL: "https://charts.jetstack.io"}
	require.NoError(t, ed.AddChart(config.Chart{Name: "cert-manager", RepoName: "jetstack", Namespace: "cert-manager", Version: "v1.14.0"}, repo))

	ghost := VersionUpdate{Name: "ghost", Version: "1.0.0"}
	failed, err := ed.SetChartVersions([]VersionUpdate{{Name: "redis", Namespace: "cache", Version: "18.3.0"}, ghost})
	require.NoError(t, err)
	require.Len(t, failed, 1)
	require.ErrorIs(t, failed[ghost], ErrItemNotFound)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	cfg, err := config.Parse(data)
	require.NoError(t, err)
	require.Len(t, cfg.Repositories, 3)
	require.Equal(t, "jetstack", cfg.Repositories[0].Name)
	require.Equal(t, "cert-manager", cfg.Charts[0].Name)
	require.Equal(t, "18.3.0", cfg.Charts[1].Version)
	require.Contains(t, string(data), "# tooling")

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0640), info.Mode().Perm())

	removed, err := ed.RemoveChart("cert-manager", "cert-manager")
	require.NoError(t, err)
	require.True(t, removed)
	removed, err = ed.RemoveRepository("jetstack")
	require.NoError(t, err)
	require.True(t, removed)

	data, err = os.ReadFile(path)
	require.NoError(t, err)
	requireText(t, strings.Replace(sampleDoc, `"18.1.0"`, `"18.3.0"`, 1), string(data))

	removed, err = ed.RemoveChart("cert-manager", "cert-manager")
	require.NoError(t, err)
	require.False(t, removed)
}

func TestEditor_MissingFile(t *testing.T) {
	ed := &Editor{Path: filepath.Join(t.TempDir(), "nope.yaml")}
	require.Error(t, ed.SetChartVersion("redis", "", "1.0.0"))
}

func TestReplaceVersion_IgnoresNestedNameMatchingAnotherChart(t *testing.T) {
	doc := `charts:
  - name: app
    namespace: apps
    values:
      - name: db
        version: 5.5.5
  - name: db
    version: 2.0.0
    namespace: data
`
	out, err := ReplaceVersion(doc, "db", "2.1.0")
	require.NoError(t, err)
	requireText(t, strings.Replace(doc, "version: 2.0.0", "version: 2.1.0", 1), out)

	_, err = ReplaceVersion(doc, "nested-only", "1.0.0")
	require.ErrorIs(t, err, ErrItemNotFound)
}

func TestReplaceVersion_NestedChartsKeyIsNotTheSection(t *testing.T) {
	doc := `repositories:
  - name: r
    url: u
    charts:
      - name: db
        version: 1.0.0
charts:
  - name: db
    version: 2.0.0
    namespace: data
`
	out, err := ReplaceVersion(doc, "db", "2.1.0")
	require.NoError(t, err)
	requireText(t, strings.Replace(doc, "version: 2.0.0", "version: 2.1.0", 1), out)

	removed, ok := RemoveItem(doc, "charts", Field{"name", "db"})
	require.True(t, ok)
	requireText(t, strings.Replace(doc, "  - name: db\n    version: 2.0.0\n    namespace: data\n", "", 1), removed)
}

func TestReplaceChartVersion_SameNameInTwoNamespaces(t *testing.T) {
	doc := `charts:
  - name: db
    version: 1.0.0
    namespace: data
  - name: db
    version: 1.0.0
    namespace: staging
`
	_, err := ReplaceVersion(doc, "db", "1.1.0")
	require.ErrorIs(t, err, ErrAmbiguousItem)

	out, err := ReplaceChartVersion(doc, "db", "staging", "1.1.0")
	require.NoError(t, err)
	requireText(t, strings.Replace(doc, "version: 1.0.0\n    namespace: staging", "version: 1.1.0\n    namespace: staging", 1), out)
}

func TestInsertItem_IndentlessSequence(t *testing.T) {
	doc := `repositories:
- name: bitnami
  url: https://charts.bitnami.com/bitnami
charts:
- name: a
  repo_name: bitnami
  version: 1.0.0
  namespace: x
`
	out, err := InsertItem(doc, "charts", ChartBlock(config.Chart{Name: "nginx", RepoName: "bitnami", Namespace: "y", Version: "2.0.0"}))
	require.NoError(t, err)
	out, err = InsertItem(out, "repositories", RepositoryBlock(config.Repository{Name: "jetstack", URL: "https://charts.jetstack.io"}))
	require.NoError(t, err)
	require.Contains(t, out, "charts:\n- name: nginx\n  repo_name: bitnami\n")

	cfg, err := config.Parse([]byte(out))
	require.NoError(t, err)
	require.Len(t, cfg.Charts, 2)
	require.Equal(t, "nginx", cfg.Charts[0].Name)
	require.Equal(t, "2.0.0", cfg.Charts[0].Version)
	require.Len(t, cfg.Repositories, 2)

	restored, ok := RemoveItem(out, "charts", Field{"name", "nginx"}, Field{"namespace", "y"})
	require.True(t, ok)
	restored, ok = RemoveItem(restored, "repositories", Field{"name", "jetstack"})
	require.True(t, ok)
	requireText(t, doc, restored)
}

func TestEditor_RefusesInvalidResult(t *testing.T) {
	doc := "charts:\n  - name: a\n    namespace: x\n"
	path := filepath.Join(t.TempDir(), "vesshelm.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0644))
	ed := &Editor{Path: path}

	_, err := ed.apply(func(string) (string, error) {
		return "charts:\n  - name: a\n- name: b\n", nil
	})
	require.ErrorIs(t, err, ErrInvalidResult)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	requireText(t, doc, string(data))
}
