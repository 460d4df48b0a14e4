package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/agentic-research/seedstamp/api"
	"gopkg.in/yaml.v3"
)

// Load reads a rule file and overlays it on Default. Sections present in
// the file replace the default sections wholesale. Files ending in .hcl are
// read as HCL, anything else as YAML.
func Load(path string) (*api.RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules %s: %w", path, err)
	}
	if strings.EqualFold(filepath.Ext(path), ".hcl") {
		return ParseHCL(filepath.Base(path), data)
	}
	return Parse(data)
}

// Parse is Load without the file read, for YAML rules.
func Parse(data []byte) (*api.RuleSet, error) {
	var file api.RuleSet
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse rules: %w", err)
	}
	return overlay(&file)
}

func overlay(file *api.RuleSet) (*api.RuleSet, error) {
	rs := Default()
	if file.Version != "" {
		rs.Version = file.Version
	}
	if file.Identifier != (api.FieldTemplate{}) {
		rs.Identifier = file.Identifier
	}
	if file.Timestamp != (api.FieldTemplate{}) {
		rs.Timestamp = file.Timestamp
	}
	if file.Kinds != nil {
		rs.Kinds = file.Kinds
	}
	if file.Blocks != nil {
		rs.Blocks = file.Blocks
	}
	if file.Closings != nil {
		rs.Closings = file.Closings
	}
	if file.Import != nil {
		rs.Import = file.Import
	}

	if err := Validate(rs); err != nil {
		return nil, err
	}
	return rs, nil
}

// Dump renders rs as YAML.
func Dump(rs *api.RuleSet) ([]byte, error) {
	return yaml.Marshal(rs)
}

// Validate checks references between sections. Patterns are compiled later,
// when the rewriter is built.
func Validate(rs *api.RuleSet) error {
	var errs []error
	if rs.Identifier.Field == "" {
		errs = append(errs, errors.New("identifier.field is required"))
	}
	if rs.Timestamp.Field == "" {
		errs = append(errs, errors.New("timestamp.field is required"))
	}

	kinds := make(map[string]bool)
	for _, k := range rs.Kinds {
		if kinds[k.Name] {
			errs = append(errs, fmt.Errorf("kind %q declared twice", k.Name))
		}
		kinds[k.Name] = true
	}

	names := make(map[string]bool)
	for _, b := range rs.Blocks {
		if b.Name == "" || names["block/"+b.Name] {
			errs = append(errs, fmt.Errorf("block %q: name missing or duplicated", b.Name))
		}
		names["block/"+b.Name] = true
		if !kinds[b.Kind] {
			errs = append(errs, fmt.Errorf("block %q: unknown kind %q", b.Name, b.Kind))
		}
	}
	for _, c := range rs.Closings {
		if c.Name == "" || names["closing/"+c.Name] {
			errs = append(errs, fmt.Errorf("closing %q: name missing or duplicated", c.Name))
		}
		names["closing/"+c.Name] = true
		if !kinds[c.Kind] {
			errs = append(errs, fmt.Errorf("closing %q: unknown kind %q", c.Name, c.Kind))
		}
	}
	return errors.Join(errs...)
}
