package rewrite

import (
	"sort"
	"strings"
)

// Field is one top-level entry of an object body.
type Field struct {
	Name       string // property name, "..." for spreads
	Start      int    // first significant byte of the entry
	End        int    // end of the value, trailing trivia excluded
	ValueStart int    // first significant byte of the value, == Start for shorthands
	Comma      int    // offset of the comma ending the entry, -1 if none
	Indent     string // leading whitespace of the entry's line, "" if it shares a line
}

// Array reports whether the field's value is an array literal.
func (f Field) Array(text string) bool {
	return f.ValueStart < len(text) && text[f.ValueStart] == '['
}

// Fields splits the body of pair p into its top-level entries.
func (ix *Index) Fields(p int) []Field {
	pair := ix.Pairs[p]
	if pair.Close < 0 {
		return nil
	}

	// separators owned by p, in order
	lo := sort.Search(len(ix.seps), func(n int) bool { return ix.seps[n].at > pair.Open })
	var commas, colons []int
	for _, s := range ix.seps[lo:] {
		if s.at >= pair.Close {
			break
		}
		if s.owner != p {
			continue
		}
		if s.colon {
			colons = append(colons, s.at)
		} else {
			commas = append(commas, s.at)
		}
	}

	var fields []Field
	start := pair.Open + 1
	emit := func(end, comma int) {
		s := ix.skipTrivia(start, end)
		e := ix.trimTrivia(s, end)
		if s >= e {
			return
		}
		f := Field{Start: s, End: e, ValueStart: s, Comma: comma, Indent: ix.indentOf(s)}
		if strings.HasPrefix(ix.text[s:e], "...") {
			f.Name = "..."
		} else if c := firstIn(colons, s, e); c >= 0 {
			f.Name = unquote(strings.TrimSpace(ix.text[s:c]))
			f.ValueStart = ix.skipTrivia(c+1, e)
		} else {
			f.Name = strings.TrimSpace(ix.text[s:e])
		}
		fields = append(fields, f)
	}
	for _, c := range commas {
		emit(c, c)
		start = c + 1
	}
	emit(pair.Close, -1)
	return fields
}

// Has reports whether body p holds a top-level field named name.
func (ix *Index) Has(p int, name string) bool {
	for _, f := range ix.Fields(p) {
		if f.Name == name {
			return true
		}
	}
	return false
}

func firstIn(offsets []int, start, end int) int {
	for _, o := range offsets {
		if o >= end {
			break
		}
		if o >= start {
			return o
		}
	}
	return -1
}

func unquote(s string) string {
	if len(s) >= 2 && (s[0] == '\'' || s[0] == '"') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}

// indentOf returns the whitespace between the start of the line holding
// offset i and i itself, or "" if anything else precedes i on that line.
func (ix *Index) indentOf(i int) string {
	ls := strings.LastIndexByte(ix.text[:i], '\n') + 1
	prefix := ix.text[ls:i]
	if strings.TrimLeft(prefix, " \t") != "" {
		return ""
	}
	return prefix
}

// sameLine reports whether offsets a <= b sit on one line.
func (ix *Index) sameLine(a, b int) bool {
	return !strings.Contains(ix.text[a:b], "\n")
}

// lineEnding returns the line terminator of the line holding offset i,
// "\r\n" or "\n" (also for a last line without one).
func (ix *Index) lineEnding(i int) string {
	k := strings.IndexByte(ix.text[i:], '\n')
	if k >= 0 && i+k > 0 && ix.text[i+k-1] == '\r' {
		return "\r\n"
	}
	return "\n"
}
