package configedit

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vesshelm/vesshelm/internal/config"
)

// ErrFlowSection is returned when a section holds an inline flow value
// other than "[]", which a block item cannot be appended to.
var ErrFlowSection = errors.New("section uses inline flow style")

// blockIndent is the list indentation ChartBlock and RepositoryBlock use.
const blockIndent = 2

// InsertItem inserts block directly after the top-level line whose key is
// section. block must start with "\n" and be indented like ChartBlock's
// output; it is shifted to the indentation of the section's existing
// items. A trailing comment on the section line is kept and an empty "[]"
// value is dropped. When the section is missing it is appended to the end
// of the document.
func InsertItem(doc, section, block string) (string, error) {
	d := parse(doc)
	if i, end, ok := d.section(section); ok {
		l := d.lines[i]
		block = reindent(block, d.itemIndent(i, end, blockIndent)-blockIndent)

		text := l.text
		cr := strings.HasSuffix(text, "\r")
		if cr {
			text = strings.TrimSuffix(text, "\r")
			block = strings.ReplaceAll(block, "\n", "\r\n")
		}
		if l.valStart >= 0 {
			if l.value() != "[]" {
				return "", fmt.Errorf("%w: '%s'", ErrFlowSection, section)
			}
			text = strings.TrimRight(text[:l.valStart], " \t") + text[l.valEnd:]
		}
		text += block
		if cr {
			text += "\r"
		}
		d.lines[i].text = text
		return d.String(), nil
	}

	var b strings.Builder
	b.WriteString(doc)
	if doc != "" && !strings.HasSuffix(doc, "\n") {
		b.WriteByte('\n')
	}
	b.WriteString(section)
	b.WriteByte(':')
	b.WriteString(block)
	b.WriteByte('\n')
	return b.String(), nil
}

// reindent shifts every line of block by shift columns. Negative shifts
// remove leading spaces.
func reindent(block string, shift int) string {
	if shift == 0 {
		return block
	}
	lines := strings.Split(block, "\n")
	for i, l := range lines {
		if l == "" {
			continue
		}
		if shift > 0 {
			lines[i] = strings.Repeat(" ", shift) + l
			continue
		}
		n := len(l) - len(strings.TrimLeft(l, " "))
		lines[i] = l[min(n, -shift):]
	}
	return strings.Join(lines, "\n")
}

// ChartBlock renders a chart as a list item for the charts section.
func ChartBlock(ch config.Chart) string {
	var b strings.Builder
	b.WriteString("\n  - name: " + scalar(ch.Name))
	if ch.RepoName != "" {
		b.WriteString("\n    repo_name: " + scalar(ch.RepoName))
	}
	b.WriteString("\n    namespace: " + scalar(ch.Namespace))
	if ch.Version != "" {
		b.WriteString("\n    version: " + scalar(ch.Version))
	}
	if ch.ChartPath != "" {
		b.WriteString("\n    chart_path: " + scalar(ch.ChartPath))
	}
	if ch.Dest != "" {
		b.WriteString("\n    destination_override: " + scalar(ch.Dest))
	}
	if ch.Comment != "" {
		b.WriteString("\n    comment: " + scalar(ch.Comment))
	}
	return b.String()
}

// RepositoryBlock renders a repository as a list item for the
// repositories section. The type is omitted for helm repositories.
func RepositoryBlock(repo config.Repository) string {
	var b strings.Builder
	b.WriteString("\n  - name: " + scalar(repo.Name))
	b.WriteString("\n    url: " + scalar(repo.URL))
	if k := repo.Kind(); k != config.RepoHelm {
		b.WriteString("\n    type: " + string(k))
	}
	return b.String()
}

// scalar renders s as a YAML string scalar, quoting only when needed.
func scalar(s string) string {
	if strings.ContainsAny(s, "\r\n") {
		return strconv.Quote(s)
	}
	out, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Sprintf("%q", s)
	}
	return strings.TrimSuffix(string(out), "\n")
}
