package gqlfield

import (
	"context"
	"strings"
	"testing"

	"github.com/graphql-go/graphql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrhoseah/gqlrt/internal/gqlschema"
	"github.com/mrhoseah/gqlrt/internal/gqltype"
)

func TestDecodeStructAppliesDefaults(t *testing.T) {
	node := gqlschema.StructNode{
		Fields: []gqlschema.Field{
			{Name: "pageSize", Node: gqlschema.IntNode{}, Default: 10},
			{Name: "name", Node: gqlschema.StringNode{}},
		},
	}
	decoded, err := Decode(node, map[string]any{"name": "a"})
	require.NoError(t, err)
	m := decoded.(map[string]any)
	assert.Equal(t, 10, m["pageSize"])
	assert.Equal(t, "a", m["name"])
}

func TestDecodeTransformationRunsCustomFunc(t *testing.T) {
	node := gqlschema.TransformationNode{
		From: gqlschema.StringNode{},
		To:   gqlschema.IntNode{},
		Decode: func(encoded any) (any, error) {
			return len(encoded.(string)), nil
		},
	}
	decoded, err := Decode(node, "hello")
	require.NoError(t, err)
	assert.Equal(t, 5, decoded)
}

func TestEncodeTransformationRunsCustomFunc(t *testing.T) {
	node := gqlschema.TransformationNode{
		From: gqlschema.StringNode{},
		To:   gqlschema.IntNode{},
		Encode: func(decoded any) (any, error) {
			return "n", nil
		},
	}
	encoded, err := Encode(node, 5)
	require.NoError(t, err)
	assert.Equal(t, "n", encoded)
}

func TestDecodeNullOrPassesThroughNil(t *testing.T) {
	node := gqlschema.NullOrNode{Inner: gqlschema.StringNode{}}
	decoded, err := Decode(node, nil)
	require.NoError(t, err)
	assert.Nil(t, decoded)
}

func TestMiddlewareChainOrdersOutermostFirst(t *testing.T) {
	var order []string
	mw := func(name string) gqlschema.MiddlewareApply {
		return func(next gqlschema.Effect, mctx gqlschema.MiddlewareContext) gqlschema.Effect {
			return func(ctx context.Context) (any, error) {
				order = append(order, name+":enter")
				v, err := next(ctx)
				order = append(order, name+":exit")
				return v, err
			}
		}
	}
	chain := MiddlewareChain{
		Global: []gqlschema.MiddlewareReg{
			{Name: "A", Apply: mw("A")},
			{Name: "B", Apply: mw("B")},
		},
		Directives: map[string]gqlschema.DirectiveReg{
			"upper": {Name: "upper", Apply: func(args map[string]any) gqlschema.MiddlewareApply { return mw("upper") }},
		},
	}

	base := func(ctx context.Context) (any, error) { return "done", nil }
	effect := chain.Wrap("Query", "f", []string{"upper"}, nil, base, gqlschema.MiddlewareContext{})
	v, err := effect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "done", v)
	assert.Equal(t, []string{"A:enter", "B:enter", "upper:enter", "upper:exit", "B:exit", "A:exit"}, order)
}

// buildSimpleSchema wires a single-query-field schema the way
// internal/gqlassemble does, for field-builder-level tests
// that exercise real graphql-go execution (scenarios S1/S2/S5).
func buildSimpleSchema(t *testing.T, reg gqlschema.FieldReg, directives map[string]gqlschema.DirectiveReg) *graphql.Schema {
	t.Helper()
	mapper := gqltype.NewMapper()
	chain := MiddlewareChain{Directives: directives}
	field := BuildQueryField(reg, "Query", mapper, chain)

	query := graphql.NewObject(graphql.ObjectConfig{
		Name:   "Query",
		Fields: graphql.Fields{reg.Name: field},
	})
	schema, err := graphql.NewSchema(graphql.SchemaConfig{Query: query})
	require.NoError(t, err)
	return &schema
}

func TestBuildQueryField_SimpleQuery(t *testing.T) {
	reg := gqlschema.FieldReg{
		Name:       "hello",
		ReturnType: gqlschema.StringNode{},
		Resolve: func(args map[string]any) gqlschema.Effect {
			return func(ctx context.Context) (any, error) { return "world", nil }
		},
	}
	schema := buildSimpleSchema(t, reg, nil)

	result := graphql.Do(graphql.Params{Schema: *schema, RequestString: `{ hello }`})
	require.Empty(t, result.Errors)
	assert.Equal(t, "world", result.Data.(map[string]any)["hello"])
}

func TestBuildQueryField_ArgsDecode(t *testing.T) {
	reg := gqlschema.FieldReg{
		Name: "echo",
		ArgsSchema: gqlschema.StructNode{Fields: []gqlschema.Field{
			{Name: "message", Node: gqlschema.StringNode{}},
		}},
		ReturnType: gqlschema.StringNode{},
		Resolve: func(args map[string]any) gqlschema.Effect {
			return func(ctx context.Context) (any, error) { return args["message"], nil }
		},
	}
	schema := buildSimpleSchema(t, reg, nil)

	result := graphql.Do(graphql.Params{Schema: *schema, RequestString: `{ echo(message:"test") }`})
	require.Empty(t, result.Errors)
	assert.Equal(t, "test", result.Data.(map[string]any)["echo"])
}

func TestBuildQueryField_DirectiveTransformerUppercases(t *testing.T) {
	upperMiddleware := func(args map[string]any) gqlschema.MiddlewareApply {
		return func(next gqlschema.Effect, mctx gqlschema.MiddlewareContext) gqlschema.Effect {
			return func(ctx context.Context) (any, error) {
				v, err := next(ctx)
				if err != nil {
					return nil, err
				}
				s, _ := v.(string)
				return strings.ToUpper(s), nil
			}
		}
	}
	directives := map[string]gqlschema.DirectiveReg{
		"upper": {Name: "upper", Apply: upperMiddleware},
	}
	reg := gqlschema.FieldReg{
		Name:       "greeting",
		ReturnType: gqlschema.StringNode{},
		Directives: []string{"upper"},
		Resolve: func(args map[string]any) gqlschema.Effect {
			return func(ctx context.Context) (any, error) { return "hello", nil }
		},
	}
	schema := buildSimpleSchema(t, reg, directives)

	result := graphql.Do(graphql.Params{Schema: *schema, RequestString: `{ greeting }`})
	require.Empty(t, result.Errors)
	assert.Equal(t, "HELLO", result.Data.(map[string]any)["greeting"])
}
