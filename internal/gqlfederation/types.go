// Package gqlfederation extends an assembled schema with Apollo
// Federation's subgraph contract: the _Any and _FieldSet scalars, the
// _Entity union, the _entities and _service root fields, and an SDL
// generator that overlays federation directives onto the printed
// schema (§4.7).
package gqlfederation

import (
	"encoding/json"
	"fmt"

	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/language/ast"
)

// AnyScalar represents one entity representation handed to _entities:
// an arbitrary JSON object carrying at least __typename and the
// entity's @key fields.
var AnyScalar = graphql.NewScalar(graphql.ScalarConfig{
	Name:        "_Any",
	Description: "A JSON-like representation of an entity, keyed by its __typename and @key fields.",
	Serialize:   func(value any) any { return value },
	ParseValue:  func(value any) any { return value },
	ParseLiteral: func(valueAST ast.Value) any {
		return parseLiteralValue(valueAST)
	},
})

// FieldSetScalar serializes like String; it exists as a distinct name
// so @key/@requires/@provides argument types read correctly in SDL.
var FieldSetScalar = graphql.NewScalar(graphql.ScalarConfig{
	Name:        "_FieldSet",
	Description: "A string-serialized selection set, as used by @key, @requires, and @provides.",
	Serialize:   func(value any) any { return fmt.Sprintf("%v", value) },
	ParseValue:  func(value any) any { return fmt.Sprintf("%v", value) },
	ParseLiteral: func(valueAST ast.Value) any {
		if s, ok := valueAST.(*ast.StringValue); ok {
			return s.Value
		}
		return nil
	},
})

// ServiceType is the _Service object, whose sole field carries the
// subgraph's federated SDL.
var ServiceType = graphql.NewObject(graphql.ObjectConfig{
	Name: "_Service",
	Fields: graphql.Fields{
		"sdl": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
	},
})

func parseLiteralValue(valueAST ast.Value) any {
	switch v := valueAST.(type) {
	case *ast.StringValue:
		return v.Value
	case *ast.IntValue:
		return v.Value
	case *ast.FloatValue:
		return v.Value
	case *ast.BooleanValue:
		return v.Value
	case *ast.EnumValue:
		return v.Value
	case *ast.ListValue:
		list := make([]any, len(v.Values))
		for i, item := range v.Values {
			list[i] = parseLiteralValue(item)
		}
		return list
	case *ast.ObjectValue:
		obj := make(map[string]any, len(v.Fields))
		for _, f := range v.Fields {
			obj[f.Name.Value] = parseLiteralValue(f.Value)
		}
		return obj
	default:
		return nil
	}
}

// ParseRepresentation normalizes one _entities representation into its
// __typename and the full field map, accepting either a decoded map or
// a raw JSON string (some clients send representations pre-serialized).
func ParseRepresentation(repr any) (typename string, fields map[string]any, err error) {
	if s, isString := repr.(string); isString {
		var decoded map[string]any
		if jsonErr := json.Unmarshal([]byte(s), &decoded); jsonErr != nil {
			return "", nil, fmt.Errorf("gqlfederation: representation string is not a JSON object: %w", jsonErr)
		}
		repr = decoded
	}
	m, ok := repr.(map[string]any)
	if !ok {
		return "", nil, fmt.Errorf("gqlfederation: representation must be an object, got %T", repr)
	}
	typename, ok = m["__typename"].(string)
	if !ok || typename == "" {
		return "", nil, fmt.Errorf("gqlfederation: representation missing __typename")
	}
	return typename, m, nil
}
