package api

// RuleSet is the root configuration of a rewrite run.
// It describes which record bodies to augment and what to inject into them.
type RuleSet struct {
	// Version of the rule format.
	Version string `json:"version" yaml:"version"`
	// Identifier is the field injected right after a body's opening brace.
	Identifier FieldTemplate `json:"identifier" yaml:"identifier"`
	// Timestamp is the field injected after a body's last field.
	Timestamp FieldTemplate `json:"timestamp" yaml:"timestamp"`
	// Kinds lists the operation kinds record bodies can belong to.
	Kinds []OperationKind `json:"kinds,omitempty" yaml:"kinds,omitempty"`
	// Blocks identify where record bodies begin.
	Blocks []BlockRecognizer `json:"blocks,omitempty" yaml:"blocks,omitempty"`
	// Closings identify where record bodies end, per operation kind.
	Closings []ClosingRecognizer `json:"closings,omitempty" yaml:"closings,omitempty"`
	// Import is inserted once so the injected values resolve.
	Import *ImportRule `json:"import,omitempty" yaml:"import,omitempty"`
}

// OperationKind names a data-write call and the key holding its record body,
// e.g. upsert -> create, create -> data.
type OperationKind struct {
	Name    string `json:"name" yaml:"name"`
	Call    string `json:"call" yaml:"call"`
	BodyKey string `json:"body_key" yaml:"body_key"`
}

// BlockRecognizer matches the text that opens a record body.
type BlockRecognizer struct {
	Name string `json:"name" yaml:"name"`
	Kind string `json:"kind" yaml:"kind"`
	// Context is a regular expression whose match must end on the body's "{".
	Context string `json:"context" yaml:"context"`
	// Indent overrides the indentation of the injected line (optional).
	Indent string `json:"indent,omitempty" yaml:"indent,omitempty"`
}

// Closing shapes.
const (
	ShapeAny    = "any"
	ShapeScalar = "scalar"
	ShapeArray  = "array"
)

// ClosingRecognizer matches the way a record body of one kind ends.
type ClosingRecognizer struct {
	Name  string `json:"name" yaml:"name"`
	Kind  string `json:"kind" yaml:"kind"`
	Shape string `json:"shape,omitempty" yaml:"shape,omitempty"`
	// TerminalFields restricts which field may end the body. Empty means any.
	TerminalFields []string `json:"terminal_fields,omitempty" yaml:"terminal_fields,omitempty"`
	// Trailer is matched at the body's closing "}" (anchored).
	Trailer string `json:"trailer,omitempty" yaml:"trailer,omitempty"`
}

// Value providers.
const (
	ProviderExpr = "expr"
	ProviderUUID = "uuid"
	ProviderNow  = "now"
)

// FieldTemplate is a field assignment to inject.
type FieldTemplate struct {
	Field string `json:"field" yaml:"field"`
	// Value is the literal expression used by the expr provider.
	Value    string `json:"value,omitempty" yaml:"value,omitempty"`
	Provider string `json:"provider,omitempty" yaml:"provider,omitempty"` // expr | uuid | now
}

// ImportRule inserts Line after the first occurrence of After.
type ImportRule struct {
	Line  string `json:"line" yaml:"line"`
	After string `json:"after,omitempty" yaml:"after,omitempty"`
}

// Kind returns the operation kind with the given name.
func (rs *RuleSet) Kind(name string) (OperationKind, bool) {
	for _, k := range rs.Kinds {
		if k.Name == name {
			return k, true
		}
	}
	return OperationKind{}, false
}
