package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"
)

var seedCommand = jp.MustParseString("$.prisma.seed")

var scriptExts = []string{".ts", ".mts", ".cts", ".js", ".mjs", ".cjs"}

// DiscoverTarget resolves the seed script of the project in dir. It reads the
// `prisma.seed` command from package.json and picks its first script
// argument, falling back to DefaultTarget. The returned origin names where
// the path came from.
func DiscoverTarget(dir string) (path, origin string, err error) {
	data, err := os.ReadFile(filepath.Join(dir, "package.json"))
	if errors.Is(err, fs.ErrNotExist) {
		return filepath.Join(dir, DefaultTarget), "default", nil
	}
	if err != nil {
		return "", "", fmt.Errorf("read package.json: %w", err)
	}

	doc, err := oj.Parse(data)
	if err != nil {
		return "", "", fmt.Errorf("parse package.json: %w", err)
	}
	for _, v := range seedCommand.Get(doc) {
		cmd, ok := v.(string)
		if !ok {
			continue
		}
		if script := scriptArg(cmd); script != "" {
			return filepath.Join(dir, filepath.FromSlash(script)), "package.json", nil
		}
	}
	return filepath.Join(dir, DefaultTarget), "default", nil
}

// scriptArg returns the first argument of cmd that looks like a script path.
func scriptArg(cmd string) string {
	for _, arg := range strings.Fields(cmd) {
		arg = strings.Trim(arg, `'"`)
		for _, ext := range scriptExts {
			if strings.HasSuffix(arg, ext) {
				return arg
			}
		}
	}
	return ""
}
