package rewrite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScan_KeysAndCalls(t *testing.T) {
	src := "prisma.user.upsert({ where: { id: 1 }, 'create': { name: 'a' } })"
	ix := Scan(src)
	require.True(t, ix.Balanced())
	require.Len(t, ix.Pairs, 4)

	assert.Equal(t, byte('('), ix.Pairs[0].Delim)
	assert.Equal(t, "upsert", ix.Pairs[0].Call)
	assert.Equal(t, "", ix.Pairs[1].Key)
	assert.Equal(t, 0, ix.Pairs[1].Parent)
	assert.Equal(t, "where", ix.Pairs[2].Key)
	assert.Equal(t, "create", ix.Pairs[3].Key)
	assert.Equal(t, 1, ix.Pairs[3].Parent)
	assert.Equal(t, len(src)-1, ix.Pairs[0].Close)
}

func TestScan_SkipsStringsAndComments(t *testing.T) {
	src := "x = { a: '}', b: \"{\", c: `${'{'}`, // }\n d: 1 /* ] */ }"
	ix := Scan(src)
	require.True(t, ix.Balanced())
	require.Len(t, ix.Pairs, 1)
	assert.Equal(t, len(src)-1, ix.Pairs[0].Close)
}

func TestScan_Unbalanced(t *testing.T) {
	assert.False(t, Scan("{ a: [1, 2 }").Balanced())
	assert.False(t, Scan("{ a: 1").Balanced())
	assert.False(t, Scan("a)").Balanced())
	assert.True(t, Scan("").Balanced())
}

func TestIndex_Fields(t *testing.T) {
	src := `{
    // leading comment
    title: 'A, B',
    'quoted-key': 1,
    images: [
      'a.jpg',
      'b.jpg',
    ],
    nested: { x: 1, y: 2 },
    ...rest,
    shorthand,
    status: done ? 'A' : 'B' // trailing
  }`
	ix := Scan(src)
	p := ix.At(0)
	require.Equal(t, 0, p)

	fields := ix.Fields(p)
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}
	assert.Equal(t, []string{"title", "quoted-key", "images", "nested", "...", "shorthand", "status"}, names)

	assert.True(t, fields[2].Array(src))
	assert.False(t, fields[3].Array(src))
	assert.Equal(t, "    ", fields[0].Indent)

	last := fields[len(fields)-1]
	assert.Equal(t, -1, last.Comma)
	assert.Equal(t, "status: done ? 'A' : 'B'", src[last.Start:last.End])
	assert.Equal(t, "'A, B'", src[fields[0].ValueStart:fields[0].End])

	assert.True(t, ix.Has(p, "shorthand"))
	assert.False(t, ix.Has(p, "x"), "nested keys are not top-level fields")
}

func TestIndex_FieldsOfUnclosedPair(t *testing.T) {
	ix := Scan("{ a: 1,")
	assert.Nil(t, ix.Fields(0))
}

func TestCheckBalance(t *testing.T) {
	assert.NoError(t, CheckBalance("f({ a: [1] })"))

	err := CheckBalance("f({\n  a: [1 }\n)")
	var be *BalanceError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, 2, be.Line)
	assert.Equal(t, 9, be.Column)
}
