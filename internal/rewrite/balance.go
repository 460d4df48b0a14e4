package rewrite

import (
	"fmt"
	"strings"
)

// BalanceError points at the first delimiter that breaks nesting.
type BalanceError struct {
	Offset int
	Line   int
	Column int
}

func (e *BalanceError) Error() string {
	return fmt.Sprintf("unbalanced delimiter at %d:%d", e.Line, e.Column)
}

// CheckBalance verifies that braces, brackets and parens outside strings and
// comments nest properly.
func CheckBalance(text string) error {
	ix := Scan(text)
	if ix.Balanced() {
		return nil
	}
	ls := strings.LastIndexByte(text[:ix.mismatch], '\n') + 1
	return &BalanceError{
		Offset: ix.mismatch,
		Line:   strings.Count(text[:ix.mismatch], "\n") + 1,
		Column: ix.mismatch - ls + 1,
	}
}
