package rewrite

import (
	"sort"
	"strings"
)

// Pair is one matched delimiter pair found by the scanner.
type Pair struct {
	Open   int  // offset of the opening delimiter
	Close  int  // offset of the closing delimiter, -1 if never closed
	Delim  byte // '{', '[' or '('
	Parent int  // index of the enclosing pair, -1 at top level

	// Key is the property key written right before an object literal
	// ("create" for `create: {`). Empty otherwise.
	Key string
	// Call is the identifier written right before a call paren
	// ("upsert" for `.upsert(`). Empty otherwise.
	Call string
}

type span struct{ start, end int }

type sep struct {
	at    int
	owner int
	colon bool
}

// Index is a shallow structural index over source text: the ordered list of
// delimiter pairs plus the separators and comments needed to split object
// bodies into fields. Strings and comments are skipped while scanning, so
// delimiters inside them are ignored.
type Index struct {
	Pairs []Pair

	text     string
	byOpen   map[int]int
	seps     []sep
	comments []span
	mismatch int // offset of the first mismatched delimiter, -1 when none
}

var closerFor = map[byte]byte{'{': '}', '[': ']', '(': ')'}

// Scan builds the index for text.
func Scan(text string) *Index {
	ix := &Index{text: text, byOpen: make(map[int]int), mismatch: -1}
	var stack []int

	owner := func() int {
		if len(stack) == 0 {
			return -1
		}
		return stack[len(stack)-1]
	}

	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case c == '/' && i+1 < len(text) && text[i+1] == '/':
			end := strings.IndexByte(text[i:], '\n')
			if end < 0 {
				end = len(text)
			} else {
				end += i
			}
			ix.comments = append(ix.comments, span{i, end})
			i = end - 1
		case c == '/' && i+1 < len(text) && text[i+1] == '*':
			end := strings.Index(text[i+2:], "*/")
			if end < 0 {
				end = len(text)
			} else {
				end += i + 4
			}
			ix.comments = append(ix.comments, span{i, end})
			i = end - 1
		case c == '\'' || c == '"' || c == '`':
			i = skipString(text, i)
		case c == '{' || c == '[' || c == '(':
			p := Pair{Open: i, Close: -1, Delim: c, Parent: owner()}
			switch c {
			case '{':
				p.Key = keyBefore(text, i)
			case '(':
				p.Call = identBefore(text, i)
			}
			ix.Pairs = append(ix.Pairs, p)
			ix.byOpen[i] = len(ix.Pairs) - 1
			stack = append(stack, len(ix.Pairs)-1)
		case c == '}' || c == ']' || c == ')':
			top := owner()
			if top < 0 || closerFor[ix.Pairs[top].Delim] != c {
				if ix.mismatch < 0 {
					ix.mismatch = i
				}
				continue
			}
			ix.Pairs[top].Close = i
			stack = stack[:len(stack)-1]
		case c == ',' || c == ':':
			ix.seps = append(ix.seps, sep{at: i, owner: owner(), colon: c == ':'})
		}
	}
	if len(stack) > 0 && ix.mismatch < 0 {
		ix.mismatch = ix.Pairs[stack[0]].Open
	}
	return ix
}

// skipString returns the offset of the quote closing the literal opened at i.
// Unterminated literals run to the end of the text.
func skipString(text string, i int) int {
	q := text[i]
	for j := i + 1; j < len(text); j++ {
		switch text[j] {
		case '\\':
			j++
		case q:
			return j
		case '\n':
			if q != '`' {
				return j
			}
		}
	}
	return len(text) - 1
}

func isIdentByte(c byte) bool {
	return c == '_' || c == '$' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func skipSpaceBack(text string, i int) int {
	for i > 0 && isSpace(text[i-1]) {
		i--
	}
	return i
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

// identBefore reads the identifier ending right before offset i.
func identBefore(text string, i int) string {
	j := i
	for j > 0 && isIdentByte(text[j-1]) {
		j--
	}
	return text[j:i]
}

// keyBefore reads `key:` preceding the brace at i.
func keyBefore(text string, i int) string {
	j := skipSpaceBack(text, i)
	if j == 0 || text[j-1] != ':' {
		return ""
	}
	j = skipSpaceBack(text, j-1)
	if j > 0 && (text[j-1] == '\'' || text[j-1] == '"') {
		q := text[j-1]
		k := strings.LastIndexByte(text[:j-1], q)
		if k < 0 {
			return ""
		}
		return text[k+1 : j-1]
	}
	return identBefore(text, j)
}

// Balanced reports whether every delimiter outside strings and comments is matched.
func (ix *Index) Balanced() bool { return ix.mismatch < 0 }

// At returns the index of the pair opening at offset, or -1.
func (ix *Index) At(offset int) int {
	if p, ok := ix.byOpen[offset]; ok {
		return p
	}
	return -1
}

func (ix *Index) inComment(i int) (span, bool) {
	k := sort.Search(len(ix.comments), func(n int) bool { return ix.comments[n].end > i })
	if k < len(ix.comments) && ix.comments[k].start <= i {
		return ix.comments[k], true
	}
	return span{}, false
}

// skipTrivia advances over whitespace and comments, stopping at end.
func (ix *Index) skipTrivia(i, end int) int {
	for i < end {
		if isSpace(ix.text[i]) {
			i++
			continue
		}
		if c, ok := ix.inComment(i); ok {
			i = c.end
			continue
		}
		break
	}
	return i
}

// trimTrivia moves end back over whitespace and comments, stopping at start.
func (ix *Index) trimTrivia(start, end int) int {
	for end > start {
		if isSpace(ix.text[end-1]) {
			end--
			continue
		}
		if c, ok := ix.inComment(end - 1); ok {
			end = c.start
			continue
		}
		break
	}
	return end
}
