package config

import "github.com/agentic-research/seedstamp/api"

// Version of the rule file format written by Dump.
const Version = "v1"

// DefaultTarget is used when no target is given and package.json names none.
const DefaultTarget = "prisma/seed.ts"

// Default returns the built-in rule set for Prisma seed scripts:
// `prisma.<model>.upsert({ where, update, create: {...} })` and
// `prisma.<model>.create({ data: {...} })`.
func Default() *api.RuleSet {
	return &api.RuleSet{
		Version:    Version,
		Identifier: api.FieldTemplate{Field: "id", Value: "randomUUID()", Provider: api.ProviderExpr},
		Timestamp:  api.FieldTemplate{Field: "updated_at", Value: "new Date()", Provider: api.ProviderExpr},
		Kinds: []api.OperationKind{
			{Name: "upsert", Call: "upsert", BodyKey: "create"},
			{Name: "create", Call: "create", BodyKey: "data"},
		},
		Blocks: []api.BlockRecognizer{
			{
				Name:    "upsert-create",
				Kind:    "upsert",
				Context: `\.upsert\(\{\s*where:\s*\{(?:[^{}]|\{[^{}]*\})*\},\s*update:\s*\{(?:[^{}]|\{[^{}]*\})*\},\s*create:\s*\{`,
			},
			{
				Name:    "create-data",
				Kind:    "create",
				Context: `\.create\(\{\s*data:\s*\{`,
			},
		},
		Closings: []api.ClosingRecognizer{
			{Name: "upsert-array", Kind: "upsert", Shape: api.ShapeArray},
			{Name: "upsert-scalar", Kind: "upsert", Shape: api.ShapeScalar},
			{Name: "create-array", Kind: "create", Shape: api.ShapeArray},
			{Name: "create-scalar", Kind: "create", Shape: api.ShapeScalar},
		},
		Import: &api.ImportRule{
			Line:  "import { randomUUID } from 'crypto'",
			After: "import { PrismaClient } from '@prisma/client'",
		},
	}
}
