package deploy

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"mvdan.cc/sh/v3/shell"
)

// Vars are the placeholders available in helm argument templates.
type Vars struct {
	Name        string
	Namespace   string
	Version     string
	Destination string
	ChartPath   string
}

// chartPathPairs are spellings of "{{ destination }}/{{ name }}". They are
// rewritten to the chart path first so a local chart does not end up as
// "./my-chart/my-chart".
var chartPathPairs = []string{
	"{{ destination }}/{{ name }}",
	"{{destination}}/{{name}}",
}

// Interpolate expands {{ name }}, {{ namespace }}, {{ version }},
// {{ destination }} and {{ chart_path }} in s.
func Interpolate(s string, v Vars) (string, error) {
	for _, p := range chartPathPairs {
		s = strings.ReplaceAll(s, p, "{{ chart_path }}")
	}

	funcs := template.FuncMap{
		"name":        func() string { return v.Name },
		"namespace":   func() string { return v.Namespace },
		"version":     func() string { return v.Version },
		"destination": func() string { return v.Destination },
		"chart_path":  func() string { return v.ChartPath },
	}
	tmpl, err := template.New("args").Funcs(funcs).Parse(s)
	if err != nil {
		return "", fmt.Errorf("parsing template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, nil); err != nil {
		return "", fmt.Errorf("executing template: %w", err)
	}
	return buf.String(), nil
}

// Args interpolates s and splits it into arguments with shell quoting
// rules, so values containing spaces can be quoted.
func Args(s string, v Vars) ([]string, error) {
	expanded, err := Interpolate(s, v)
	if err != nil {
		return nil, err
	}
	args, err := shell.Fields(expanded, nil)
	if err != nil {
		return nil, fmt.Errorf("splitting arguments %q: %w", expanded, err)
	}
	return args, nil
}
