package writeback

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Edit replaces src[Start:End] with Text. Start == End is a pure insertion.
type Edit struct {
	Start int
	End   int
	Text  string
}

// Splice applies edits to src and returns the new buffer. src is not modified.
// Edits may be given in any order; insertions at the same offset keep their
// relative order. Overlapping ranges are rejected.
func Splice(src []byte, edits []Edit) ([]byte, error) {
	sorted := make([]Edit, len(edits))
	copy(sorted, edits)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	grow := 0
	prevEnd := 0
	for _, e := range sorted {
		if e.Start < 0 || e.End > len(src) || e.Start > e.End {
			return nil, fmt.Errorf("invalid byte range [%d:%d] for buffer of length %d", e.Start, e.End, len(src))
		}
		if e.Start < prevEnd {
			return nil, fmt.Errorf("edit [%d:%d] overlaps previous edit ending at %d", e.Start, e.End, prevEnd)
		}
		prevEnd = e.End
		grow += len(e.Text) - (e.End - e.Start)
	}

	// result = src with each range swapped for its text
	result := make([]byte, 0, len(src)+grow)
	pos := 0
	for _, e := range sorted {
		result = append(result, src[pos:e.Start]...)
		result = append(result, e.Text...)
		pos = e.End
	}
	result = append(result, src[pos:]...)
	return result, nil
}

// WriteFile replaces path with content.
// The write is atomic: content is written to a temp file first, then renamed.
func WriteFile(path string, content []byte) error {
	// Atomic write: temp file in same dir, then rename
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".seedstamp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(content); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName) // best-effort cleanup
		return fmt.Errorf("write temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName) // best-effort cleanup
		return fmt.Errorf("close temp: %w", err)
	}

	// Preserve original file permissions
	if info, err := os.Stat(path); err == nil {
		_ = os.Chmod(tmpName, info.Mode()) // best-effort permission sync
	} else {
		_ = os.Chmod(tmpName, 0o644)
	}

	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName) // best-effort cleanup
		return fmt.Errorf("rename temp to %s: %w", path, err)
	}
	return nil
}
