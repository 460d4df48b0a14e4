package rewrite

import (
	"fmt"
	"regexp"
	"slices"

	"github.com/agentic-research/seedstamp/api"
)

// DefaultTrailer matches a body's closing brace followed by the closing
// delimiters of the call that wraps it: `},\n    })`.
const DefaultTrailer = `\}\s*,?\s*\}\s*\)`

// RuleError reports a rule that cannot be compiled.
type RuleError struct {
	Rule string
	Err  error
}

func (e *RuleError) Error() string {
	return fmt.Sprintf("rule %q: %v", e.Rule, e.Err)
}

func (e *RuleError) Unwrap() error { return e.Err }

type blockRule struct {
	api.BlockRecognizer
	re *regexp.Regexp
}

type closingRule struct {
	api.ClosingRecognizer
	trailer *regexp.Regexp
}

func compileBlock(b api.BlockRecognizer, rs *api.RuleSet) (blockRule, error) {
	if _, ok := rs.Kind(b.Kind); !ok {
		return blockRule{}, &RuleError{Rule: b.Name, Err: fmt.Errorf("unknown kind %q", b.Kind)}
	}
	if b.Context == "" {
		return blockRule{}, &RuleError{Rule: b.Name, Err: fmt.Errorf("empty context")}
	}
	re, err := regexp.Compile(b.Context)
	if err != nil {
		return blockRule{}, &RuleError{Rule: b.Name, Err: err}
	}
	return blockRule{BlockRecognizer: b, re: re}, nil
}

func compileClosing(c api.ClosingRecognizer, rs *api.RuleSet) (closingRule, error) {
	if _, ok := rs.Kind(c.Kind); !ok {
		return closingRule{}, &RuleError{Rule: c.Name, Err: fmt.Errorf("unknown kind %q", c.Kind)}
	}
	switch c.Shape {
	case "":
		c.Shape = api.ShapeAny
	case api.ShapeAny, api.ShapeScalar, api.ShapeArray:
	default:
		return closingRule{}, &RuleError{Rule: c.Name, Err: fmt.Errorf("unknown shape %q", c.Shape)}
	}
	trailer := c.Trailer
	if trailer == "" {
		trailer = DefaultTrailer
	}
	re, err := regexp.Compile(`^(?:` + trailer + `)`)
	if err != nil {
		return closingRule{}, &RuleError{Rule: c.Name, Err: err}
	}
	return closingRule{ClosingRecognizer: c, trailer: re}, nil
}

// accepts reports whether a body ending in last, closed at offset end, has this shape.
func (c closingRule) accepts(text string, end int, last Field) bool {
	if !c.trailer.MatchString(text[end:]) {
		return false
	}
	switch c.Shape {
	case api.ShapeScalar:
		if last.Array(text) {
			return false
		}
	case api.ShapeArray:
		if !last.Array(text) {
			return false
		}
	}
	return len(c.TerminalFields) == 0 || slices.Contains(c.TerminalFields, last.Name)
}

// kindOf returns the operation kind body p structurally belongs to.
//
// With a body key the shape is `<call>({ <key>: { ... } })`; without one the
// body is the call's direct argument, as in `Create(&Plot{ ... })`.
func (ix *Index) kindOf(p int, kinds []api.OperationKind) (api.OperationKind, bool) {
	body := ix.Pairs[p]
	if body.Delim != '{' || body.Parent < 0 {
		return api.OperationKind{}, false
	}
	for _, k := range kinds {
		if k.BodyKey == "" {
			parent := ix.Pairs[body.Parent]
			if parent.Delim == '(' && parent.Call == k.Call {
				return k, true
			}
			continue
		}
		if body.Key != k.BodyKey {
			continue
		}
		arg := ix.Pairs[body.Parent]
		if arg.Delim != '{' || arg.Key != "" || arg.Parent < 0 {
			continue
		}
		call := ix.Pairs[arg.Parent]
		if call.Delim == '(' && call.Call == k.Call {
			return k, true
		}
	}
	return api.OperationKind{}, false
}
