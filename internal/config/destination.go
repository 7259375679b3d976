package config

import (
	"fmt"
	"path/filepath"
)

// ResolveDestination returns the base directory under which chart is materialized.
//
// A destination_override naming a destination uses that destination's path;
// any other override is used as a path. Without an override the "default"
// destination applies.
func (c *Config) ResolveDestination(chart Chart) (string, error) {
	if chart.Dest != "" {
		if d, ok := c.Destination(chart.Dest); ok {
			return d.Path, nil
		}
		return chart.Dest, nil
	}
	if d, ok := c.Destination(DefaultDestination); ok {
		return d.Path, nil
	}
	return "", fmt.Errorf("chart '%s': no destination_override and no '%s' destination configured", chart.Name, DefaultDestination)
}

// ChartDir returns the directory holding the chart's files. Local charts
// live at their chart_path; fetched charts at <destination>/<name>.
func (c *Config) ChartDir(chart Chart) (string, error) {
	if chart.IsLocal() {
		return chart.ChartPath, nil
	}
	base, err := c.ResolveDestination(chart)
	if err != nil {
		return "", err
	}
	return filepath.Join(base, chart.Name), nil
}

// ResolvePath joins a relative path onto baseDir. Absolute paths and an
// empty baseDir leave p unchanged.
func ResolvePath(baseDir, p string) string {
	if baseDir == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(baseDir, p)
}
