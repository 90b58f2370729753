package gqlassemble

import (
	"github.com/graphql-go/graphql"

	"github.com/mrhoseah/gqlrt/internal/gqlschema"
)

func buildEnum(e gqlschema.EnumReg) *graphql.Enum {
	values := graphql.EnumValueConfigMap{}
	for _, v := range e.Values {
		values[v.Name] = &graphql.EnumValueConfig{Value: v.Value, Description: v.Description}
	}
	return graphql.NewEnum(graphql.EnumConfig{
		Name:        e.Name,
		Values:      values,
		Description: e.Description,
	})
}
