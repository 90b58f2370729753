package gqlfederation

import (
	"context"
	"errors"
	"testing"

	"github.com/graphql-go/graphql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrhoseah/gqlrt/internal/gqlschema"
	"github.com/mrhoseah/gqlrt/internal/gqltype"
)

func buildProductEntity(t *testing.T) (gqlschema.Registry, *gqltype.Mapper) {
	t.Helper()
	mapper := gqltype.NewMapper()
	product := graphql.NewObject(graphql.ObjectConfig{
		Name: "Product",
		Fields: graphql.Fields{
			"id":    &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
			"price": &graphql.Field{Type: graphql.Int},
		},
	})
	mapper.RegisterObject("Product", product)

	reg := gqlschema.Registry{
		Entities: map[string]gqlschema.EntityReg{
			"Product": {
				Name: "Product",
				Keys: []string{"id"},
				ResolveReference: func(ctx context.Context, representation map[string]any) (any, error) {
					id, _ := representation["id"].(string)
					if id == "missing" {
						return nil, errors.New("not found")
					}
					return map[string]any{"id": id, "price": 42}, nil
				},
			},
		},
	}
	return reg, mapper
}

// TestResolveEntitiesIsolatesFailures exercises S6: one failing
// representation becomes a nil at its index without affecting the
// others, and no total failure is ever returned.
func TestResolveEntitiesIsolatesFailures(t *testing.T) {
	reg, mapper := buildProductEntity(t)
	layer := New(reg, mapper, nil)
	require.True(t, layer.HasEntities())

	results := layer.ResolveEntities(context.Background(), []any{
		map[string]any{"__typename": "Product", "id": "1"},
		map[string]any{"__typename": "Product", "id": "missing"},
		map[string]any{"__typename": "Unknown", "id": "2"},
	})

	require.Len(t, results, 3)
	ok, valid := results[0].(map[string]any)
	require.True(t, valid)
	assert.Equal(t, "1", ok["id"])
	assert.Nil(t, results[1])
	assert.Nil(t, results[2])
}

func TestEntityUnionResolvesByTypename(t *testing.T) {
	reg, mapper := buildProductEntity(t)
	layer := New(reg, mapper, nil)
	union := layer.Union()
	require.NotNil(t, union)

	resolved := union.ResolveType(graphql.ResolveTypeParams{
		Value: map[string]any{"__typename": "Product", "id": "1"},
	})
	require.NotNil(t, resolved)
	assert.Equal(t, "Product", resolved.Name())
}

func TestLayerWithoutEntitiesHasNoUnion(t *testing.T) {
	mapper := gqltype.NewMapper()
	layer := New(gqlschema.Registry{}, mapper, nil)
	assert.False(t, layer.HasEntities())
	assert.Nil(t, layer.Union())
	assert.Equal(t, []any{nil}, layer.ResolveEntities(context.Background(), []any{"x"}))
}

func buildEntitySchema(t *testing.T, layer *Layer, mapper *gqltype.Mapper) graphql.Schema {
	t.Helper()
	obj, ok := mapper.Object("Product")
	require.True(t, ok)
	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"product": &graphql.Field{Type: obj, Resolve: func(p graphql.ResolveParams) (any, error) {
				return map[string]any{"id": "1", "price": 9}, nil
			}},
		},
	})
	schema, err := graphql.NewSchema(graphql.SchemaConfig{Query: query})
	require.NoError(t, err)
	return schema
}

func TestExtendAddsServiceAndEntitiesFields(t *testing.T) {
	reg, mapper := buildProductEntity(t)
	layer := New(reg, mapper, nil)
	schema := buildEntitySchema(t, layer, mapper)

	require.NoError(t, Extend(schema, layer, "type Product @key(fields: \"id\") { id: ID! }"))

	result := graphql.Do(graphql.Params{
		Schema:        schema,
		RequestString: `{ _service { sdl } }`,
	})
	require.Empty(t, result.Errors)
	data := result.Data.(map[string]any)
	service := data["_service"].(map[string]any)
	assert.Contains(t, service["sdl"], "@key")

	_, ok := schema.QueryType().Fields()["_entities"]
	assert.True(t, ok)
}

func TestGenerateSDLAnnotatesEntityKeys(t *testing.T) {
	reg, mapper := buildProductEntity(t)
	layer := New(reg, mapper, nil)
	schema := buildEntitySchema(t, layer, mapper)

	sdl := GenerateSDL(schema, reg)
	assert.Contains(t, sdl, `extend schema @link`)
	assert.Contains(t, sdl, `type Product @key(fields: "id")`)
}

// TestGenerateSDLAnnotatesFieldDirectives covers §4.7 step 5's
// field-level overlay: a directive attached to EntityReg.FieldDirectives
// lands on that field's own SDL line, and its name joins the @link
// import list alongside @key.
func TestGenerateSDLAnnotatesFieldDirectives(t *testing.T) {
	reg, mapper := buildProductEntity(t)
	entity := reg.Entities["Product"]
	entity.FieldDirectives = map[string][]string{
		"price": {"@external"},
	}
	reg.Entities["Product"] = entity

	layer := New(reg, mapper, nil)
	schema := buildEntitySchema(t, layer, mapper)

	sdl := GenerateSDL(schema, reg)
	assert.Contains(t, sdl, `extend schema @link(url: "https://specs.apollo.dev/federation/v2.5", import: ["@external", "@key"])`)
	assert.Contains(t, sdl, "price: Int @external")
	assert.Contains(t, sdl, `type Product @key(fields: "id")`)
}
