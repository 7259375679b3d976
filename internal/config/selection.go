package config

import (
	"fmt"
	"strings"
)

// CheckSelection verifies that every requested chart name exists.
func CheckSelection(charts []Chart, names []string) error {
	known := make(map[string]bool, len(charts))
	for _, ch := range charts {
		known[ch.Name] = true
	}

	var missing []string
	for _, n := range names {
		if !known[n] {
			missing = append(missing, n)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("the following charts do not exist: %s", strings.Join(missing, ", "))
	}
	return nil
}

// Select keeps the charts whose name is in names, preserving order.
// An empty names list selects everything.
func Select(charts []Chart, names []string) []Chart {
	if len(names) == 0 {
		return charts
	}
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
	}
	var out []Chart
	for _, ch := range charts {
		if want[ch.Name] {
			out = append(out, ch)
		}
	}
	return out
}
