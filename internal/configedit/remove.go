package configedit

// Field is a key/value pair an item must carry to be matched.
type Field struct {
	Key   string
	Value string
}

// RemoveItem deletes the first list item of section that carries every
// field in match. It reports whether an item was removed; when none
// matches, doc is returned unchanged.
//
// The item's trailing comments go with it. Blank lines go with it only
// when another sibling follows, so the spacing before the next section or
// a comment header stays.
func RemoveItem(doc, section string, match ...Field) (string, bool) {
	if len(match) == 0 {
		return doc, false
	}
	d := parse(doc)
	start, end, ok := d.section(section)
	if !ok {
		return doc, false
	}
	for _, it := range d.items(start, end) {
		if d.itemMatches(it, match) {
			d.lines = append(d.lines[:it.start], d.lines[it.end:]...)
			return d.String(), true
		}
	}
	return doc, false
}

// itemMatches checks the item's own fields, ignoring keys nested deeper.
func (d *document) itemMatches(it item, match []Field) bool {
	for _, f := range match {
		if d.fieldLine(it, f) < 0 {
			return false
		}
	}
	return true
}

// fieldLine returns the index of the item's own line carrying f, or -1.
func (d *document) fieldLine(it item, f Field) int {
	for i := it.start; i < it.end; i++ {
		l := d.lines[i]
		if l.content() && l.keyCol == it.keyCol && l.key == f.Key && l.value() == f.Value {
			return i
		}
	}
	return -1
}
