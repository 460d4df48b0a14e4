package writeback

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tempFile(t *testing.T, content string) string {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "splice-test-*")
	require.NoError(t, err)
	_, err = f.WriteString(content)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	return f.Name()
}

func TestSplice_Insertions(t *testing.T) {
	src := []byte("create: {\n  name: 'a',\n}")
	got, err := Splice(src, []Edit{
		{Start: 22, End: 22, Text: "\n  updated_at: now,"},
		{Start: 9, End: 9, Text: "\n  id: uid,"},
	})
	require.NoError(t, err)
	assert.Equal(t, "create: {\n  id: uid,\n  name: 'a',\n  updated_at: now,\n}", string(got))
	assert.Equal(t, "create: {\n  name: 'a',\n}", string(src), "source buffer must not change")
}

func TestSplice_SameOffsetKeepsOrder(t *testing.T) {
	got, err := Splice([]byte("a}"), []Edit{
		{Start: 1, End: 1, Text: ","},
		{Start: 1, End: 1, Text: " b,"},
	})
	require.NoError(t, err)
	assert.Equal(t, "a, b,}", string(got))
}

func TestSplice_ReplaceMiddle(t *testing.T) {
	got, err := Splice([]byte("func A() {}\nfunc B() {}\nfunc C() {}\n"), []Edit{
		{Start: 12, End: 24, Text: "func B() { return 1 }\n"},
	})
	require.NoError(t, err)
	assert.Equal(t, "func A() {}\nfunc B() { return 1 }\nfunc C() {}\n", string(got))
}

func TestSplice_NoEdits(t *testing.T) {
	got, err := Splice([]byte("AAA"), nil)
	require.NoError(t, err)
	assert.Equal(t, "AAA", string(got))
}

func TestSplice_InvalidRange(t *testing.T) {
	// End beyond buffer length
	_, err := Splice([]byte("short"), []Edit{{Start: 0, End: 100}})
	assert.Error(t, err)

	// Start > End
	_, err = Splice([]byte("short"), []Edit{{Start: 3, End: 1}})
	assert.Error(t, err)

	// Overlap
	_, err = Splice([]byte("short"), []Edit{{Start: 0, End: 3}, {Start: 2, End: 4}})
	assert.Error(t, err)
}

func TestWriteFile_Replaces(t *testing.T) {
	path := tempFile(t, "old content")
	require.NoError(t, WriteFile(path, []byte("new")))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "new", string(got))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file must not be left behind")
}

func TestWriteFile_PreservesPermissions(t *testing.T) {
	path := tempFile(t, "content")
	require.NoError(t, os.Chmod(path, 0o755))

	require.NoError(t, WriteFile(path, []byte("new")))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())
}

func TestWriteFile_MissingDir(t *testing.T) {
	err := WriteFile(filepath.Join(t.TempDir(), "nope", "seed.ts"), []byte("x"))
	assert.Error(t, err)
}
