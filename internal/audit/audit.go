package audit

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/agentic-research/seedstamp/api"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// Body is one record body found in the syntax tree.
type Body struct {
	Kind          string
	Line          uint32 // 0-indexed line of the body's "{"
	HasIdentifier bool
	HasTimestamp  bool
}

func (b Body) String() string {
	return fmt.Sprintf("line %d: %s body", b.Line+1, b.Kind)
}

// Report lists every record body of a file.
type Report struct {
	Path   string
	Bodies []Body
}

// Missing returns the bodies lacking either injected field.
func (r *Report) Missing() []Body {
	var out []Body
	for _, b := range r.Bodies {
		if !b.HasIdentifier || !b.HasTimestamp {
			out = append(out, b)
		}
	}
	return out
}

// `<x>.<call>({ <key>: { ... } })`
const bodyQuery = `
	(call_expression
		function: (member_expression
			property: (property_identifier) @call)
		arguments: (arguments
			(object
				(pair
					key: (property_identifier) @key
					value: (object) @body))))
`

// Scan parses content with tree-sitter and reports the record bodies of every
// keyed operation kind in rs. Only JavaScript and TypeScript sources are
// supported; kinds without a body key are ignored.
func Scan(content []byte, filePath string, rs *api.RuleSet) (*Report, error) {
	var lang *sitter.Language
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".ts", ".mts", ".cts", ".tsx":
		lang = typescript.GetLanguage()
	case ".js", ".mjs", ".cjs":
		lang = javascript.GetLanguage()
	default:
		return nil, fmt.Errorf("audit: unsupported file type %s", filePath)
	}

	parser := sitter.NewParser()
	parser.SetLanguage(lang)
	tree, err := parser.ParseCtx(context.Background(), nil, content)
	if err != nil {
		return nil, fmt.Errorf("audit: parse %s: %w", filePath, err)
	}

	q, err := sitter.NewQuery([]byte(bodyQuery), lang)
	if err != nil {
		return nil, fmt.Errorf("audit: compile query: %w", err)
	}
	defer q.Close()
	qc := sitter.NewQueryCursor()
	defer qc.Close()
	qc.Exec(q, tree.RootNode())

	report := &Report{Path: filePath}
	seen := make(map[uint32]bool)
	for {
		m, ok := qc.NextMatch()
		if !ok {
			break
		}
		var call, key string
		var body *sitter.Node
		for _, c := range m.Captures {
			switch q.CaptureNameForId(c.Index) {
			case "call":
				call = c.Node.Content(content)
			case "key":
				key = c.Node.Content(content)
			case "body":
				body = c.Node
			}
		}
		if body == nil || seen[body.StartByte()] {
			continue
		}
		kind, ok := kindFor(rs, call, key)
		if !ok {
			continue
		}
		seen[body.StartByte()] = true
		report.Bodies = append(report.Bodies, Body{
			Kind:          kind,
			Line:          body.StartPoint().Row,
			HasIdentifier: hasKey(body, content, rs.Identifier.Field),
			HasTimestamp:  hasKey(body, content, rs.Timestamp.Field),
		})
	}

	sort.Slice(report.Bodies, func(i, j int) bool { return report.Bodies[i].Line < report.Bodies[j].Line })
	return report, nil
}

func kindFor(rs *api.RuleSet, call, key string) (string, bool) {
	for _, k := range rs.Kinds {
		if k.BodyKey != "" && k.Call == call && k.BodyKey == key {
			return k.Name, true
		}
	}
	return "", false
}

// hasKey reports whether object has a direct property named name, either a
// pair or a shorthand `{ id }`.
func hasKey(object *sitter.Node, content []byte, name string) bool {
	for i := 0; i < int(object.NamedChildCount()); i++ {
		child := object.NamedChild(i)
		if child.Type() == "shorthand_property_identifier" {
			if child.Content(content) == name {
				return true
			}
			continue
		}
		if child.Type() != "pair" {
			continue
		}
		key := child.ChildByFieldName("key")
		if key == nil {
			continue
		}
		text := key.Content(content)
		if key.Type() == "string" && len(text) >= 2 {
			text = text[1 : len(text)-1]
		}
		if text == name {
			return true
		}
	}
	return false
}
