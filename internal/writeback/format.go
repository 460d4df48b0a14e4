package writeback

import (
	"path/filepath"
	"strings"

	"mvdan.cc/gofumpt/format"
)

// Format is the last step before a stamped seed file is written. Go seeders
// (gorm `Create(&Model{...})` literals and the like) go through gofumpt, so
// the injected ID and UpdatedAt lines take the column alignment of the keyed
// fields around them. JS/TS seeds already carry the indentation the rewriter
// copied from their neighbours and are returned as is, as is Go that gofumpt
// rejects: the syntax guard has the final word on those.
func Format(content []byte, filePath string) []byte {
	if strings.ToLower(filepath.Ext(filePath)) != ".go" {
		return content
	}
	formatted, err := format.Source(content, format.Options{})
	if err != nil {
		return content
	}
	return formatted
}
