package config

import (
	"fmt"

	"github.com/agentic-research/seedstamp/api"
	"github.com/hashicorp/hcl/v2/hclsimple"
)

// HCL rule files spell every list entry as a labelled block:
//
//	timestamp {
//	  field = "updatedAt"
//	  value = "new Date()"
//	}
//
//	kind "create" {
//	  call     = "create"
//	  body_key = "data"
//	}
//
//	opening "create-data" {
//	  kind    = "create"
//	  context = "\\.create\\(\\{\\s*data:\\s*\\{"
//	}
//
//	closing "create-scalar" {
//	  kind  = "create"
//	  shape = "scalar"
//	}
type hclRules struct {
	Version    string       `hcl:"version,optional"`
	Identifier *hclField    `hcl:"identifier,block"`
	Timestamp  *hclField    `hcl:"timestamp,block"`
	Kinds      []hclKind    `hcl:"kind,block"`
	Openings   []hclOpening `hcl:"opening,block"`
	Closings   []hclClosing `hcl:"closing,block"`
	Import     *hclImport   `hcl:"import,block"`
}

type hclField struct {
	Field    string `hcl:"field"`
	Value    string `hcl:"value,optional"`
	Provider string `hcl:"provider,optional"`
}

type hclKind struct {
	Name    string `hcl:"name,label"`
	Call    string `hcl:"call"`
	BodyKey string `hcl:"body_key,optional"`
}

type hclOpening struct {
	Name    string `hcl:"name,label"`
	Kind    string `hcl:"kind"`
	Context string `hcl:"context"`
	Indent  string `hcl:"indent,optional"`
}

type hclClosing struct {
	Name           string   `hcl:"name,label"`
	Kind           string   `hcl:"kind"`
	Shape          string   `hcl:"shape,optional"`
	TerminalFields []string `hcl:"terminal_fields,optional"`
	Trailer        string   `hcl:"trailer,optional"`
}

type hclImport struct {
	Line  string `hcl:"line"`
	After string `hcl:"after,optional"`
}

// ParseHCL is Load without the file read, for HCL rules. filename is used in
// diagnostics and must end in .hcl.
func ParseHCL(filename string, data []byte) (*api.RuleSet, error) {
	var f hclRules
	if err := hclsimple.Decode(filename, data, nil, &f); err != nil {
		return nil, fmt.Errorf("parse rules: %w", err)
	}
	return overlay(f.ruleSet())
}

// ruleSet converts f to the sparse RuleSet overlay expects: absent sections
// stay zero.
func (f *hclRules) ruleSet() *api.RuleSet {
	rs := &api.RuleSet{Version: f.Version}
	if f.Identifier != nil {
		rs.Identifier = api.FieldTemplate(*f.Identifier)
	}
	if f.Timestamp != nil {
		rs.Timestamp = api.FieldTemplate(*f.Timestamp)
	}
	for _, k := range f.Kinds {
		rs.Kinds = append(rs.Kinds, api.OperationKind(k))
	}
	for _, o := range f.Openings {
		rs.Blocks = append(rs.Blocks, api.BlockRecognizer(o))
	}
	for _, c := range f.Closings {
		rs.Closings = append(rs.Closings, api.ClosingRecognizer(c))
	}
	if f.Import != nil {
		imp := api.ImportRule(*f.Import)
		rs.Import = &imp
	}
	return rs
}
