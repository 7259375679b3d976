package configedit

import (
	"errors"
	"fmt"
)

// Errors returned by ReplaceField. The document is never modified when one
// of them is returned.
var (
	ErrItemNotFound    = errors.New("item not found")
	ErrFieldNotFound   = errors.New("field not found")
	ErrCrossedBoundary = errors.New("field belongs to a different item")
	ErrSectionNotFound = errors.New("section not found")
	ErrAmbiguousItem   = errors.New("several items match")
)

// ReplaceVersion sets the version of the chart called name. The name must
// be unique among the charts.
func ReplaceVersion(doc, name, version string) (string, error) {
	return ReplaceChartVersion(doc, name, "", version)
}

// ReplaceChartVersion sets the version of the chart identified by name and
// namespace. An empty namespace matches any.
func ReplaceChartVersion(doc, name, namespace, version string) (string, error) {
	match := []Field{{"name", name}}
	if namespace != "" {
		match = append(match, Field{"namespace", namespace})
	}
	return replaceField(doc, "charts", "version", version, match)
}

// ReplaceField rewrites the scalar value of field on the list item of
// section whose name is itemName. Only the value's bytes change; quotes
// and trailing comments stay.
//
// The item's name must be one of its own keys; name keys nested in its
// values do not count. The field is the first one after the name line at
// the same column. If a name key at that column or shallower appears
// before it, the field belongs to another item and ErrCrossedBoundary is
// returned.
func ReplaceField(doc, section, itemName, field, value string) (string, error) {
	return replaceField(doc, section, field, value, []Field{{"name", itemName}})
}

func replaceField(doc, section, field, value string, match []Field) (string, error) {
	d := parse(doc)
	start, end, ok := d.section(section)
	if !ok {
		return "", fmt.Errorf("%w: '%s'", ErrSectionNotFound, section)
	}

	itemName := match[0].Value
	at, col := -1, 0
	for _, it := range d.items(start, end) {
		if !d.itemMatches(it, match) {
			continue
		}
		if at >= 0 {
			return "", fmt.Errorf("%w: %s '%s'; give a namespace", ErrAmbiguousItem, section, itemName)
		}
		at, col = d.fieldLine(it, match[0]), it.keyCol
	}
	if at < 0 {
		return "", fmt.Errorf("%w: %s '%s'", ErrItemNotFound, section, itemName)
	}

	crossed := false
	for i := at + 1; i < end; i++ {
		l := d.lines[i]
		if !l.content() || l.key == "" || l.keyCol > col {
			continue
		}
		if l.key == "name" {
			crossed = true
			continue
		}
		if l.key != field || l.keyCol != col {
			continue
		}
		if crossed {
			return "", fmt.Errorf("%w: first '%s' after '%s' is past another item", ErrCrossedBoundary, field, itemName)
		}
		d.lines[i].text = setValue(l, value)
		return d.String(), nil
	}
	return "", fmt.Errorf("%w: '%s' for '%s'", ErrFieldNotFound, field, itemName)
}

func setValue(l line, value string) string {
	if l.valStart < 0 {
		return l.text[:l.colon] + " " + value + l.text[l.colon:]
	}
	return l.text[:l.valStart] + value + l.text[l.valEnd:]
}
