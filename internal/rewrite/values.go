package rewrite

import (
	"fmt"
	"strings"
	"time"

	"github.com/agentic-research/seedstamp/api"
	"github.com/google/uuid"
)

// ValueFunc yields the textual value of an injected field.
type ValueFunc func() string

// NewValueFunc builds the value provider for a template.
//
// expr returns Value verbatim. uuid and now generate a fresh literal and, when
// Value is set, format it through Value (which must hold one %s).
func NewValueFunc(t api.FieldTemplate, clock func() time.Time) (ValueFunc, error) {
	format := t.Value
	if t.Provider != "" && t.Provider != api.ProviderExpr {
		if format == "" {
			format = "'%s'"
		} else if strings.Count(format, "%s") != 1 {
			return nil, fmt.Errorf("field %s: value %q must contain exactly one %%s", t.Field, format)
		}
	}

	switch t.Provider {
	case "", api.ProviderExpr:
		if t.Value == "" {
			return nil, fmt.Errorf("field %s: empty value", t.Field)
		}
		v := t.Value
		return func() string { return v }, nil
	case api.ProviderUUID:
		return func() string { return fmt.Sprintf(format, uuid.NewString()) }, nil
	case api.ProviderNow:
		if clock == nil {
			clock = time.Now
		}
		stamp := clock().UTC().Format(time.RFC3339)
		return func() string { return fmt.Sprintf(format, stamp) }, nil
	default:
		return nil, fmt.Errorf("field %s: unknown provider %q", t.Field, t.Provider)
	}
}
