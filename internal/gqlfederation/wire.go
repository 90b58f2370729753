package gqlfederation

import (
	"fmt"

	"github.com/graphql-go/graphql"
)

// Extend adds the Apollo Federation root fields to an already-built
// schema's Query type: _service (always) and _entities (only when the
// layer has at least one entity, matching spec.md §4.7's "subgraphs
// with no entities still expose _service but may omit _entities").
// Assembly.Build already guarantees Query is non-nil, satisfying the
// "at least one query must exist" precondition.
func Extend(schema graphql.Schema, layer *Layer, sdl string) error {
	query := schema.QueryType()
	if query == nil {
		return fmt.Errorf("gqlfederation: schema has no Query type to extend")
	}

	query.AddFieldConfig("_service", &graphql.Field{
		Type: graphql.NewNonNull(ServiceType),
		Resolve: func(p graphql.ResolveParams) (any, error) {
			return map[string]any{"sdl": sdl}, nil
		},
	})

	if !layer.HasEntities() {
		return nil
	}

	query.AddFieldConfig("_entities", &graphql.Field{
		Type: graphql.NewNonNull(graphql.NewList(layer.Union())),
		Args: graphql.FieldConfigArgument{
			"representations": &graphql.ArgumentConfig{
				Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(AnyScalar))),
			},
		},
		Resolve: func(p graphql.ResolveParams) (any, error) {
			reprs, _ := p.Args["representations"].([]any)
			return layer.ResolveEntities(p.Context, reprs), nil
		},
	})
	return nil
}
