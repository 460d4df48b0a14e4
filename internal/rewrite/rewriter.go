package rewrite

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/RoaringBitmap/roaring"
	"github.com/agentic-research/seedstamp/api"
	"github.com/agentic-research/seedstamp/internal/writeback"
	"go.uber.org/zap"
)

// RuleStats counts what one recognizer did during a pass.
type RuleStats struct {
	Rule     string
	Matched  int // record bodies the rule matched
	Injected int // bodies that received the field
	Skipped  int // bodies that already held the field
	Rejected int // context matches that did not land on a record body opening
}

// Stats summarises one injection pass.
type Stats struct {
	Field    string
	Rules    []RuleStats
	Injected int
	// Lines holds the 1-based output line numbers of injected fields.
	Lines *roaring.Bitmap
}

// Result is the outcome of a full rewrite.
type Result struct {
	Text        string
	Imported    bool
	Identifiers Stats
	Timestamps  Stats
}

// Changed reports whether the rewrite modified anything.
func (r *Result) Changed() bool {
	return r.Imported || r.Identifiers.Injected > 0 || r.Timestamps.Injected > 0
}

// Rewriter injects identifier and timestamp fields into record bodies.
// It holds compiled rules only; every call is a pure function of its input.
type Rewriter struct {
	rules    *api.RuleSet
	blocks   []blockRule
	closings map[string][]closingRule
	ident    ValueFunc
	stamp    ValueFunc
	clock    func() time.Time
	log      *zap.Logger
}

// Option configures a Rewriter.
type Option func(*Rewriter)

// WithLogger sets the logger used for per-rule reporting.
func WithLogger(l *zap.Logger) Option {
	return func(r *Rewriter) { r.log = l }
}

// WithClock sets the clock used by the "now" value provider.
func WithClock(clock func() time.Time) Option {
	return func(r *Rewriter) { r.clock = clock }
}

// New compiles rs. Invalid patterns, unknown kinds and bad templates are
// reported here, before any text is touched.
func New(rs *api.RuleSet, opts ...Option) (*Rewriter, error) {
	r := &Rewriter{
		rules:    rs,
		closings: make(map[string][]closingRule),
		clock:    time.Now,
		log:      zap.NewNop(),
	}
	for _, o := range opts {
		o(r)
	}

	for _, k := range rs.Kinds {
		if k.Name == "" || k.Call == "" {
			return nil, &RuleError{Rule: k.Name, Err: fmt.Errorf("kind needs a name and a call")}
		}
	}
	for _, b := range rs.Blocks {
		br, err := compileBlock(b, rs)
		if err != nil {
			return nil, err
		}
		r.blocks = append(r.blocks, br)
	}
	for _, c := range rs.Closings {
		cr, err := compileClosing(c, rs)
		if err != nil {
			return nil, err
		}
		r.closings[c.Kind] = append(r.closings[c.Kind], cr)
	}

	if rs.Identifier.Field == "" || rs.Timestamp.Field == "" {
		return nil, fmt.Errorf("identifier and timestamp fields must be named")
	}
	var err error
	if r.ident, err = NewValueFunc(rs.Identifier, r.clock); err != nil {
		return nil, err
	}
	if r.stamp, err = NewValueFunc(rs.Timestamp, r.clock); err != nil {
		return nil, err
	}
	return r, nil
}

// Rewrite runs the import, identifier and timestamp passes in order.
// The output is refused if it breaks delimiter balance the input had.
func (r *Rewriter) Rewrite(text string) (*Result, error) {
	res := &Result{}
	out, imported := EnsureImport(text, r.rules.Import)
	res.Imported = imported
	if r.rules.Import != nil && !imported && !strings.Contains(text, r.rules.Import.Line) {
		r.log.Info("import anchor not found", zap.String("after", r.rules.Import.After))
	}

	var err error
	if out, res.Identifiers, err = r.InjectIdentifiers(out); err != nil {
		return nil, err
	}
	if out, res.Timestamps, err = r.InjectTimestamps(out); err != nil {
		return nil, err
	}

	if CheckBalance(text) == nil {
		if err := CheckBalance(out); err != nil {
			return nil, fmt.Errorf("rewrite produced unbalanced output: %w", err)
		}
	}
	res.Text = out
	return res, nil
}

// InjectIdentifiers inserts the identifier field right after the opening
// brace of every body matched by a block recognizer. A match counts only if
// it ends on a brace the index knows as the opening of a body of the rule's
// kind. Bodies that already hold the field are left alone.
func (r *Rewriter) InjectIdentifiers(text string) (string, Stats, error) {
	ix := Scan(text)
	field := r.rules.Identifier.Field
	stats := Stats{Field: field}
	claimed := roaring.New()

	var edits []writeback.Edit
	for _, b := range r.blocks {
		rs := RuleStats{Rule: b.Name}
		for _, m := range b.re.FindAllStringIndex(text, -1) {
			open := m[1] - 1
			if m[1] == m[0] || text[open] != '{' {
				rs.Rejected++
				continue
			}
			p := ix.At(open)
			if p < 0 || ix.Pairs[p].Close < 0 {
				rs.Rejected++
				continue
			}
			if k, ok := ix.kindOf(p, r.rules.Kinds); !ok || k.Name != b.Kind {
				rs.Rejected++
				continue
			}
			if !claimed.CheckedAdd(uint32(open)) {
				continue // an earlier rule owns this body
			}
			rs.Matched++
			if ix.Has(p, field) {
				rs.Skipped++
				continue
			}
			edits = append(edits, writeback.Edit{
				Start: open + 1,
				End:   open + 1,
				Text:  r.identifierText(ix, p, b.Indent),
			})
			rs.Injected++
		}
		r.report(field, rs)
		stats.Rules = append(stats.Rules, rs)
		stats.Injected += rs.Injected
	}

	out, err := r.apply(text, edits, field, &stats)
	return out, stats, err
}

// InjectTimestamps inserts the timestamp field after the last field of every
// body whose ending matches a closing recognizer of the body's kind. The
// first matching recognizer wins.
func (r *Rewriter) InjectTimestamps(text string) (string, Stats, error) {
	ix := Scan(text)
	field := r.rules.Timestamp.Field
	stats := Stats{Field: field}

	byRule := make(map[string]*RuleStats)
	var order []*RuleStats
	for _, c := range r.rules.Closings {
		rs := &RuleStats{Rule: c.Name}
		byRule[c.Kind+"/"+c.Name] = rs
		order = append(order, rs)
	}

	var edits []writeback.Edit
	for p, pair := range ix.Pairs {
		if pair.Delim != '{' || pair.Close < 0 {
			continue
		}
		k, ok := ix.kindOf(p, r.rules.Kinds)
		if !ok || len(r.closings[k.Name]) == 0 {
			continue
		}
		fields := ix.Fields(p)
		if len(fields) == 0 {
			continue
		}
		last := fields[len(fields)-1]
		for _, c := range r.closings[k.Name] {
			if !c.accepts(text, pair.Close, last) {
				continue
			}
			rs := byRule[c.Kind+"/"+c.Name]
			rs.Matched++
			if ix.Has(p, field) {
				rs.Skipped++
			} else {
				edits = append(edits, r.timestampEdits(ix, p, last)...)
				rs.Injected++
			}
			break
		}
	}

	for _, rs := range order {
		r.report(field, *rs)
		stats.Rules = append(stats.Rules, *rs)
		stats.Injected += rs.Injected
	}

	out, err := r.apply(text, edits, field, &stats)
	return out, stats, err
}

func (r *Rewriter) report(field string, rs RuleStats) {
	if rs.Matched == 0 {
		r.log.Info("rule matched no record body", zap.String("field", field), zap.String("rule", rs.Rule),
			zap.Int("rejected", rs.Rejected))
		return
	}
	r.log.Debug("rule applied", zap.String("field", field), zap.String("rule", rs.Rule),
		zap.Int("matched", rs.Matched), zap.Int("injected", rs.Injected),
		zap.Int("skipped", rs.Skipped), zap.Int("rejected", rs.Rejected))
}

// identifierText renders the identifier assignment inserted after the brace of body p.
func (r *Rewriter) identifierText(ix *Index, p int, indent string) string {
	pair := ix.Pairs[p]
	fields := ix.Fields(p)
	assign := r.rules.Identifier.Field + ": " + r.ident() + ","

	switch {
	case len(fields) > 0 && ix.sameLine(pair.Open, fields[0].Start):
		return " " + assign
	case len(fields) == 0 && ix.sameLine(pair.Open, pair.Close):
		return " " + assign + " "
	}
	if indent == "" {
		if len(fields) > 0 && fields[0].Indent != "" {
			indent = fields[0].Indent
		} else {
			indent = ix.indentOf(pair.Close) + "  "
		}
	}
	return ix.lineEnding(pair.Open) + indent + assign
}

// timestampEdits render the timestamp assignment placed after last. A last
// field without a trailing comma gets one.
func (r *Rewriter) timestampEdits(ix *Index, p int, last Field) []writeback.Edit {
	pair := ix.Pairs[p]
	assign := r.rules.Timestamp.Field + ": " + r.stamp() + ","

	var edits []writeback.Edit
	pos := last.Comma + 1
	if last.Comma < 0 {
		pos = last.End
		edits = append(edits, writeback.Edit{Start: pos, End: pos, Text: ","})
	}

	if ix.sameLine(last.End, pair.Close) {
		return append(edits, writeback.Edit{Start: pos, End: pos, Text: " " + assign})
	}
	pos = ix.lineTail(pos)
	indent := last.Indent
	if indent == "" {
		indent = ix.indentOf(pair.Close) + "  "
	}
	return append(edits, writeback.Edit{Start: pos, End: pos, Text: ix.lineEnding(pos) + indent + assign})
}

// lineTail moves pos past a trailing comment that ends its line, so an
// inserted line does not steal the comment of the field before it.
func (ix *Index) lineTail(pos int) int {
	i := pos
	for i < len(ix.text) && (ix.text[i] == ' ' || ix.text[i] == '\t') {
		i++
	}
	c, ok := ix.inComment(i)
	if !ok || c.start != i || strings.Contains(ix.text[c.start:c.end], "\n") {
		return pos
	}
	j := c.end
	for j < len(ix.text) && (ix.text[j] == ' ' || ix.text[j] == '\t') {
		j++
	}
	if j < len(ix.text) && ix.text[j] != '\n' && ix.text[j] != '\r' {
		return pos
	}
	if j > c.start && j < len(ix.text) && ix.text[j] == '\n' && ix.text[j-1] == '\r' {
		j-- // line comments run up to the \n, so keep a CRLF pair together
	}
	return j
}

// apply splices edits into text and records the lines that received field.
func (r *Rewriter) apply(text string, edits []writeback.Edit, field string, stats *Stats) (string, error) {
	stats.Lines = roaring.New()
	if len(edits) == 0 {
		return text, nil
	}
	out, err := writeback.Splice([]byte(text), edits)
	if err != nil {
		return "", fmt.Errorf("inject %s: %w", field, err)
	}

	sort.SliceStable(edits, func(i, j int) bool { return edits[i].Start < edits[j].Start })
	shift, line, scanned := 0, 1, 0
	for _, e := range edits {
		if k := strings.Index(e.Text, field+":"); k >= 0 {
			at := e.Start + shift + k
			line += strings.Count(string(out[scanned:at]), "\n")
			scanned = at
			stats.Lines.Add(uint32(line))
		}
		shift += len(e.Text) - (e.End - e.Start)
	}
	return string(out), nil
}
