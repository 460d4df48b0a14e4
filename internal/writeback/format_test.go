package writeback

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormat_GoKeyedFields(t *testing.T) {
	input := []byte("package seed\n\nfunc seed() {\n\tdb.Create(&Plot{\n\t\tID: uuid.NewString(),\n\t\tTitle: \"A\",\n\t\tUpdatedAt: time.Now(),\n\t})\n}\n")
	got := Format(input, "seed.go")
	assert.NotEqual(t, string(input), string(got), "keyed values should be aligned")
	assert.Contains(t, string(got), "UpdatedAt: time.Now(),")
}

func TestFormat_NonGoPassthrough(t *testing.T) {
	input := []byte("create: {\n      id: randomUUID(),\n}\n")
	got := Format(input, "seed.ts")
	assert.Equal(t, input, got, "non-Go files should pass through unchanged")
}

func TestFormat_InvalidGoPassthrough(t *testing.T) {
	input := []byte("func broken {{{")
	got := Format(input, "main.go")
	assert.Equal(t, input, got, "unparseable Go should return original buffer")
}

func TestFormat_ExtensionIgnoresCase(t *testing.T) {
	input := []byte("package seed\nvar x = map[string]int{\"a\": 1,\n\"bb\": 2}\n")
	assert.Equal(t, Format(input, "seed.go"), Format(input, "SEED.GO"))
}
