// Package configedit edits vesshelm.yaml as text. Every edit touches only
// the lines it has to, so comments, blank-line grouping and key order
// written by hand survive.
//
// The document is tokenized into lines that record indentation, list
// markers, the mapping key and the byte span of a scalar value. Item and
// section boundaries are derived from indentation alone.
package configedit

import "strings"

// line is one physical line of the document.
type line struct {
	text string // without the trailing "\n"

	indent  int  // columns of leading whitespace
	blank   bool // empty or whitespace only
	comment bool // first non-blank character is '#'
	dash    bool // starts with a "- " list marker

	// key is the mapping key on this line, after any list marker.
	// keyCol is the column where it starts.
	key    string
	keyCol int

	// colon is the index just past the key's ':'.
	colon int

	// valStart:valEnd is the scalar value, excluding surrounding quotes.
	// Both are -1 when the key has no inline value.
	valStart int
	valEnd   int
}

func (l line) value() string {
	if l.valStart < 0 {
		return ""
	}
	return l.text[l.valStart:l.valEnd]
}

// content reports whether the line carries YAML content.
func (l line) content() bool {
	return !l.blank && !l.comment
}

// document is a tokenized text. Joining it back yields the original bytes.
type document struct {
	lines []line

	// trailingNewline is set when the text ended with "\n"; the empty
	// string after it is not kept as a line.
	trailingNewline bool
}

func parse(text string) *document {
	doc := &document{}
	if text == "" {
		return doc
	}
	raw := strings.Split(text, "\n")
	if raw[len(raw)-1] == "" {
		doc.trailingNewline = true
		raw = raw[:len(raw)-1]
	}
	doc.lines = make([]line, len(raw))
	for i, r := range raw {
		doc.lines[i] = scanLine(r)
	}
	return doc
}

func (d *document) String() string {
	var b strings.Builder
	for i, l := range d.lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(l.text)
	}
	if d.trailingNewline {
		b.WriteByte('\n')
	}
	return b.String()
}

func scanLine(text string) line {
	l := line{text: text, valStart: -1, valEnd: -1}

	body := strings.TrimSuffix(text, "\r")
	trimmed := strings.TrimLeft(body, " \t")
	l.indent = len(body) - len(trimmed)

	switch {
	case trimmed == "":
		l.blank = true
		return l
	case trimmed[0] == '#':
		l.comment = true
		return l
	}

	pos := l.indent
	if trimmed == "-" || strings.HasPrefix(trimmed, "- ") {
		l.dash = true
		pos++
		for pos < len(body) && body[pos] == ' ' {
			pos++
		}
	}

	rest := body[pos:]
	idx := strings.IndexByte(rest, ':')
	if idx <= 0 {
		return l
	}
	key := rest[:idx]
	if strings.ContainsAny(key, " \t'\"#{}[],&*!|>%@`") {
		return l
	}
	after := rest[idx+1:]
	if after != "" && after[0] != ' ' && after[0] != '\t' {
		return l
	}

	l.key = key
	l.keyCol = pos
	l.colon = pos + idx + 1

	vpos := l.colon
	for vpos < len(body) && (body[vpos] == ' ' || body[vpos] == '\t') {
		vpos++
	}
	if vpos == len(body) || body[vpos] == '#' {
		return l
	}

	switch q := body[vpos]; q {
	case '"', '\'':
		end := strings.IndexByte(body[vpos+1:], q)
		if end < 0 {
			return l
		}
		l.valStart = vpos + 1
		l.valEnd = vpos + 1 + end
	default:
		end := len(body)
		if c := strings.Index(body[vpos:], " #"); c >= 0 {
			end = vpos + c
		}
		l.valStart = vpos
		l.valEnd = len(strings.TrimRight(body[:end], " \t"))
	}
	return l
}

// section finds the top-level mapping line with the given key and returns
// its index and the index one past its last line. The range ends at the
// first content line indented no deeper than the key, except list items at
// the key's own indentation.
func (d *document) section(key string) (start, end int, ok bool) {
	start = -1
	for i, l := range d.lines {
		if l.content() && !l.dash && l.indent == 0 && l.key == key {
			start = i
			break
		}
	}
	if start < 0 {
		return 0, 0, false
	}

	base := d.lines[start].indent
	end = len(d.lines)
	for i := start + 1; i < len(d.lines); i++ {
		l := d.lines[i]
		if !l.content() {
			continue
		}
		if l.indent < base || (l.indent == base && !l.dash) {
			end = i
			break
		}
	}
	return start, end, true
}

// itemEnd returns the index one past the last line of the list item that
// starts at start, never going beyond limit.
//
// Comment lines directly after the item belong to it, except a run of
// comments that sits right on top of the next sibling. Blank lines belong
// to it only when more of the item or another sibling follows; a blank
// line ahead of a comment keeps that comment as a header for what comes
// next.
func (d *document) itemEnd(start, limit, sectionIndent int) int {
	itemIndent := d.lines[start].indent
	i := start + 1
	for i < limit {
		l := d.lines[i]
		switch {
		case l.blank:
			if d.blankEndsItem(i, limit, sectionIndent) {
				return i
			}
		case l.comment:
			if l.indent <= itemIndent && d.headsSibling(i, limit, itemIndent) {
				return i
			}
		case l.indent <= sectionIndent:
			return i
		case l.indent == itemIndent && l.dash:
			return i
		}
		i++
	}
	return i
}

// blankEndsItem reports whether the blank line at i separates the item
// from a comment, from the end of the section, or from the next section.
func (d *document) blankEndsItem(i, limit, sectionIndent int) bool {
	for j := i + 1; j < limit; j++ {
		next := d.lines[j]
		if next.blank {
			continue
		}
		return next.comment || next.indent <= sectionIndent
	}
	return true
}

// headsSibling reports whether the comment run starting at i is directly
// followed by a list item at itemIndent.
func (d *document) headsSibling(i, limit, itemIndent int) bool {
	for j := i; j < limit; j++ {
		next := d.lines[j]
		switch {
		case next.comment:
			continue
		case next.blank:
			return false
		default:
			return next.dash && next.indent == itemIndent
		}
	}
	return false
}

// item is a list entry of a section: lines [start, end), with its own keys
// at column keyCol.
type item struct {
	start, end int
	keyCol     int
}

// items splits the section at [start, end) into its list entries. Entries
// are the dash lines at the indentation of the first one; dashes nested
// deeper belong to the entry around them.
func (d *document) items(start, end int) []item {
	indent := -1
	for i := start + 1; i < end; i++ {
		if l := d.lines[i]; l.content() {
			if l.dash {
				indent = l.indent
			}
			break
		}
	}
	if indent < 0 {
		return nil
	}

	sectionIndent := d.lines[start].indent
	var out []item
	for i := start + 1; i < end; {
		l := d.lines[i]
		if !l.content() || !l.dash || l.indent != indent {
			i++
			continue
		}
		stop := d.itemEnd(i, end, sectionIndent)
		if col := d.ownCol(i, stop); col >= 0 {
			out = append(out, item{start: i, end: stop, keyCol: col})
		}
		i = stop
	}
	return out
}

// ownCol returns the column of the first key in [start, end), or -1.
func (d *document) ownCol(start, end int) int {
	for i := start; i < end; i++ {
		if l := d.lines[i]; l.content() && l.key != "" {
			return l.keyCol
		}
	}
	return -1
}

// itemIndent returns the indentation of the section's list entries, or
// fallback when the section has none.
func (d *document) itemIndent(start, end, fallback int) int {
	if its := d.items(start, end); len(its) > 0 {
		return d.lines[its[0].start].indent
	}
	return fallback
}
