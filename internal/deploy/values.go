package deploy

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// MergeValues deep-merges inline values documents in order. Later
// documents win; nested mappings are merged key by key and anything else
// is replaced.
func MergeValues(docs []map[string]any) map[string]any {
	merged := map[string]any{}
	for _, d := range docs {
		mergeInto(merged, d)
	}
	return merged
}

func mergeInto(dst, src map[string]any) {
	for k, sv := range src {
		if sm, ok := asMap(sv); ok {
			if dm, ok := asMap(dst[k]); ok {
				mergeInto(dm, sm)
				dst[k] = dm
				continue
			}
			fresh := map[string]any{}
			mergeInto(fresh, sm)
			dst[k] = fresh
			continue
		}
		dst[k] = sv
	}
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			out[fmt.Sprint(k)] = val
		}
		return out, true
	}
	return nil, false
}

// writeValuesFile writes merged inline values to a temporary file. The
// caller removes it.
func writeValuesFile(docs []map[string]any) (string, error) {
	data, err := yaml.Marshal(MergeValues(docs))
	if err != nil {
		return "", fmt.Errorf("encoding inline values: %w", err)
	}
	f, err := os.CreateTemp("", "vesshelm-values-*.yaml")
	if err != nil {
		return "", fmt.Errorf("creating values file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("writing values file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("writing values file: %w", err)
	}
	return f.Name(), nil
}
