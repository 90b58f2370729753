package gqlassemble

import (
	"fmt"

	"github.com/graphql-go/graphql"

	"github.com/mrhoseah/gqlrt/internal/gqlschema"
	"github.com/mrhoseah/gqlrt/internal/gqltype"
)

// buildUnions materializes each UnionReg's member object list by
// lookup (§4.4 "Unions materialize their member object list by
// lookup"); it must run after preRegisterObjects since it needs every
// member's *graphql.Object to already be in mapper's cache.
func buildUnions(reg gqlschema.Registry, mapper *gqltype.Mapper) error {
	for _, name := range sortedKeys(reg.Unions) {
		u := reg.Unions[name]
		var types []*graphql.Object
		for _, member := range u.Members {
			obj, ok := mapper.Object(member)
			if !ok {
				return &gqlschema.BuildError{Reason: fmt.Sprintf("union %q references unknown member %q", name, member)}
			}
			types = append(types, obj)
		}
		resolveType := u.ResolveType
		gu := graphql.NewUnion(graphql.UnionConfig{
			Name:  name,
			Types: types,
			ResolveType: func(p graphql.ResolveTypeParams) *graphql.Object {
				obj, _ := mapper.Object(resolveDiscriminator(resolveType, p.Value))
				return obj
			},
		})
		mapper.RegisterUnion(name, gu)
	}
	return nil
}
