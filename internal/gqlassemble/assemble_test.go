package gqlassemble

import (
	"context"
	"testing"

	"github.com/graphql-go/graphql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrhoseah/gqlrt/internal/gqlfederation"
	"github.com/mrhoseah/gqlrt/internal/gqlschema"
)

func strNode() gqlschema.Node { return gqlschema.StringNode{} }

func effect(v any) gqlschema.Effect {
	return func(ctx context.Context) (any, error) { return v, nil }
}

// TestAssembleOrderIndependence covers property 1: two registries built
// from the same registrations in different order produce the same SDL.
func TestAssembleOrderIndependence(t *testing.T) {
	build := func(order []string) gqlschema.Registry {
		reg := gqlschema.Registry{
			Objects: map[string]gqlschema.ObjectTypeReg{},
			Queries: map[string]gqlschema.FieldReg{},
		}
		fields := map[string]gqlschema.Field{
			"id":   {Name: "id", Node: strNode()},
			"name": {Name: "name", Node: strNode()},
		}
		var userFields []gqlschema.Field
		for _, k := range order {
			userFields = append(userFields, fields[k])
		}
		reg.Objects["User"] = gqlschema.ObjectTypeReg{
			Name:   "User",
			Schema: gqlschema.StructNode{Fields: userFields},
		}
		reg.Queries["user"] = gqlschema.FieldReg{
			Name:       "user",
			ReturnType: gqlschema.WithIdentifier(gqlschema.StructNode{Fields: userFields}, "User"),
			Resolve: func(args map[string]any) gqlschema.Effect {
				return effect(map[string]any{"id": "1", "name": "Ada"})
			},
		}
		return reg
	}

	regA := build([]string{"id", "name"})
	regB := build([]string{"name", "id"})

	asmA, err := Assemble(regA)
	require.NoError(t, err)
	asmB, err := Assemble(regB)
	require.NoError(t, err)

	schemaA, err := asmA.Build()
	require.NoError(t, err)
	schemaB, err := asmB.Build()
	require.NoError(t, err)

	assert.Equal(t, gqlfederation.PrintSchema(schemaA), gqlfederation.PrintSchema(schemaB))
}

// TestAssembleSimpleQuery exercises S1: a single scalar query field end
// to end through the assembled schema.
func TestAssembleSimpleQuery(t *testing.T) {
	reg := gqlschema.Registry{
		Queries: map[string]gqlschema.FieldReg{
			"hello": {
				Name:       "hello",
				ReturnType: strNode(),
				Resolve: func(args map[string]any) gqlschema.Effect {
					return effect("world")
				},
			},
		},
	}

	asm, err := Assemble(reg)
	require.NoError(t, err)
	schema, err := asm.Build()
	require.NoError(t, err)

	result := graphql.Do(graphql.Params{Schema: schema, RequestString: "{ hello }"})
	require.Empty(t, result.Errors)
	data := result.Data.(map[string]any)
	assert.Equal(t, "world", data["hello"])
}

// TestAssembleNestedComputedField exercises S3: a query root field whose
// result type has a colocated computed field (ExtraFields) alongside the
// base struct's plain field.
func TestAssembleNestedComputedField(t *testing.T) {
	userStruct := gqlschema.StructNode{
		Fields: []gqlschema.Field{
			{Name: "id", Node: strNode()},
		},
	}

	reg := gqlschema.Registry{
		Objects: map[string]gqlschema.ObjectTypeReg{
			"User": {Name: "User", Schema: userStruct},
		},
		ExtraFields: map[string][]gqlschema.ObjectFieldReg{
			"User": {
				{
					TypeName:   "User",
					FieldName:  "postCount",
					ReturnType: gqlschema.IntNode{},
					Resolve: func(parent any, args map[string]any) gqlschema.Effect {
						return effect(3)
					},
				},
			},
		},
		Queries: map[string]gqlschema.FieldReg{
			"user": {
				Name:       "user",
				ReturnType: gqlschema.WithIdentifier(userStruct, "User"),
				Resolve: func(args map[string]any) gqlschema.Effect {
					return effect(map[string]any{"id": "u1"})
				},
			},
		},
	}

	asm, err := Assemble(reg)
	require.NoError(t, err)
	schema, err := asm.Build()
	require.NoError(t, err)

	result := graphql.Do(graphql.Params{Schema: schema, RequestString: "{ user { id postCount } }"})
	require.Empty(t, result.Errors)
	data := result.Data.(map[string]any)
	user := data["user"].(map[string]any)
	assert.Equal(t, "u1", user["id"])
	assert.Equal(t, 3, user["postCount"])
}

// TestAssembleInterfaceCoverageFailsWhenFieldMissing covers the
// validateInterfaceCoverage error path.
func TestAssembleInterfaceCoverageFailsWhenFieldMissing(t *testing.T) {
	node := gqlschema.StructNode{
		Fields: []gqlschema.Field{{Name: "id", Node: strNode()}},
	}
	reg := gqlschema.Registry{
		Interfaces: map[string]gqlschema.InterfaceReg{
			"Node": {
				Name: "Node",
				Schema: gqlschema.StructNode{
					Fields: []gqlschema.Field{
						{Name: "id", Node: strNode()},
						{Name: "createdAt", Node: strNode()},
					},
				},
			},
		},
		Objects: map[string]gqlschema.ObjectTypeReg{
			"User": {
				Name:       "User",
				Schema:     node,
				Implements: []string{"Node"},
			},
		},
		Queries: map[string]gqlschema.FieldReg{
			"user": {
				Name:       "user",
				ReturnType: gqlschema.WithIdentifier(node, "User"),
				Resolve: func(args map[string]any) gqlschema.Effect {
					return effect(map[string]any{"id": "u1"})
				},
			},
		},
	}

	_, err := Assemble(reg)
	require.Error(t, err)
	var buildErr *gqlschema.BuildError
	assert.ErrorAs(t, err, &buildErr)
}

// TestAssembleOptionWrappedNullability covers property 3 / S7: a field
// wrapped as optional is nullable in the assembled SDL.
func TestAssembleOptionWrappedNullability(t *testing.T) {
	reg := gqlschema.Registry{
		Queries: map[string]gqlschema.FieldReg{
			"maybeName": {
				Name:       "maybeName",
				ReturnType: gqlschema.OptionWrappedNode{Decoded: strNode()},
				Resolve: func(args map[string]any) gqlschema.Effect {
					return effect(nil)
				},
			},
		},
	}

	asm, err := Assemble(reg)
	require.NoError(t, err)
	schema, err := asm.Build()
	require.NoError(t, err)

	sdl := gqlfederation.PrintSchema(schema)
	assert.Contains(t, sdl, "maybeName: String")
	assert.NotContains(t, sdl, "maybeName: String!")
}
