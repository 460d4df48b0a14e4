package tests

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/agentic-research/seedstamp/internal/audit"
	"github.com/agentic-research/seedstamp/internal/config"
	"github.com/agentic-research/seedstamp/internal/rewrite"
	"github.com/agentic-research/seedstamp/internal/writeback"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const packageJSON = `{
  "name": "plots",
  "prisma": { "seed": "tsx prisma/seed.ts" }
}
`

const seedSource = `import { PrismaClient } from '@prisma/client'

const prisma = new PrismaClient()

async function main() {
  const plots = [
    await prisma.plots.upsert({
      where: { slug: 'green-acres' },
      update: {},
      create: {
        title: 'Green Acres',
        legal_docs: ['/docs/title.pdf'],
      },
    }),
    await prisma.plots.upsert({
      where: { slug: 'blue-hills' },
      update: {},
      create: {
        title: 'Blue Hills',
        rera_number: 'RERA-42',
      },
    }),
  ]

  await prisma.site_visits.create({
    data: {
      plot_id: plots[0].id,
      notes: 'Morning slot',
    },
  })
}
`

// project creates a temp project dir with package.json and prisma/seed.ts.
func project(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "prisma"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "package.json"), []byte(packageJSON), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "prisma", "seed.ts"), []byte(seedSource), 0o644))
	return dir
}

// stamp runs the read, rewrite, validate, write pipeline once.
func stamp(t *testing.T, path string, rw *rewrite.Rewriter) *rewrite.Result {
	t.Helper()
	src, err := os.ReadFile(path)
	require.NoError(t, err)
	res, err := rw.Rewrite(string(src))
	require.NoError(t, err)
	require.NoError(t, writeback.CheckRewrite(src, []byte(res.Text), path))
	require.NoError(t, writeback.WriteFile(path, writeback.Format([]byte(res.Text), path)))
	return res
}

func TestPipeline_StampsDiscoveredSeed(t *testing.T) {
	dir := project(t)
	path, origin, err := config.DiscoverTarget(dir)
	require.NoError(t, err)
	assert.Equal(t, "package.json", origin)

	rs := config.Default()
	rw, err := rewrite.New(rs)
	require.NoError(t, err)

	before, err := audit.Scan([]byte(seedSource), path, rs)
	require.NoError(t, err)
	assert.Len(t, before.Missing(), 3)

	res := stamp(t, path, rw)
	assert.True(t, res.Imported)
	assert.Equal(t, 3, res.Identifiers.Injected)
	assert.Equal(t, 3, res.Timestamps.Injected)

	stamped, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NoError(t, writeback.Validate(stamped, path))

	after, err := audit.Scan(stamped, path, rs)
	require.NoError(t, err)
	assert.Len(t, after.Bodies, 3)
	assert.Empty(t, after.Missing())

	// The array-valued ending keeps the timestamp after the array.
	assert.Contains(t, string(stamped), "legal_docs: ['/docs/title.pdf'],\n        updated_at: new Date(),\n      },\n    }),")
	assert.Contains(t, string(stamped), "create: {\n        id: randomUUID(),\n        title: 'Blue Hills',")
}

func TestPipeline_RerunIsNoop(t *testing.T) {
	dir := project(t)
	path := filepath.Join(dir, "prisma", "seed.ts")
	rw, err := rewrite.New(config.Default())
	require.NoError(t, err)

	stamp(t, path, rw)
	first, err := os.ReadFile(path)
	require.NoError(t, err)

	res := stamp(t, path, rw)
	assert.False(t, res.Changed())
	second, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
}
