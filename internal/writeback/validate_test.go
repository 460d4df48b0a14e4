package writeback

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_ValidTS(t *testing.T) {
	src := []byte(`await prisma.user.create({
  data: {
    id: randomUUID(),
    name: 'a',
    updated_at: new Date(),
  },
})
`)
	assert.NoError(t, Validate(src, "seed.ts"))
}

func TestValidate_BrokenTS(t *testing.T) {
	src := []byte(`await prisma.user.create({
  data: {
    name: 'a'
    updated_at: new Date(),
  },
})
`)
	err := Validate(src, "seed.ts")
	require.Error(t, err)

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "seed.ts", ve.FilePath)
	assert.Contains(t, ve.Message, "syntax error")
}

func TestValidate_BrokenGo(t *testing.T) {
	src := []byte(`package main

func hello() string {
	return "world"
// missing closing brace
`)
	assert.Error(t, Validate(src, "test.go"))
}

func TestValidate_UnknownExtension_PassThrough(t *testing.T) {
	// Unknown extensions should pass through without error
	src := []byte(`this is not valid code in any language {{{`)
	assert.NoError(t, Validate(src, "test.txt"))
}

func TestValidate_EmptyContent(t *testing.T) {
	assert.NoError(t, Validate([]byte{}, "seed.ts"))
}

func TestCheckRewrite(t *testing.T) {
	clean := []byte("const a = { b: 1 }\n")
	broken := []byte("const a = { b: 1 c: 2 }\n")

	assert.NoError(t, CheckRewrite(clean, clean, "seed.ts"))
	assert.Error(t, CheckRewrite(clean, broken, "seed.ts"))
	assert.NoError(t, CheckRewrite(broken, broken, "seed.ts"), "pre-existing errors are not blamed on the rewrite")
}

func TestCheckRewrite_BrokenInputGainsErrors(t *testing.T) {
	broken := []byte("const a = { b: 1 c: 2 }\n")
	worse := []byte("const a = { b: 1 c: 2 }\n\nconst d = { e: 1 f: 2 }\n")
	had := len(ASTErrors(broken, "seed.ts"))
	require.NotZero(t, had)
	require.Greater(t, len(ASTErrors(worse, "seed.ts")), had)

	err := CheckRewrite(broken, worse, "seed.ts")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "syntax error(s) on top of")

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, uint32(2), ve.Line)
}

func TestASTErrors_BrokenTS(t *testing.T) {
	errs := ASTErrors([]byte("const a = { b: 1 c: 2 }\n"), "seed.ts")
	require.NotEmpty(t, errs)
	assert.Equal(t, "seed.ts", errs[0].FilePath)
}

func TestASTErrors_Valid_ReturnsNil(t *testing.T) {
	assert.Nil(t, ASTErrors([]byte("const a = { b: 1 }\n"), "seed.ts"))
}

func TestASTErrors_UnknownExtension_ReturnsNil(t *testing.T) {
	assert.Nil(t, ASTErrors([]byte(`broken {{{`), "test.txt"))
}
