package gqlassemble

import (
	"fmt"

	"github.com/graphql-go/graphql"

	"github.com/mrhoseah/gqlrt/internal/gqlfield"
	"github.com/mrhoseah/gqlrt/internal/gqlschema"
	"github.com/mrhoseah/gqlrt/internal/gqltype"
)

// preRegisterEntities builds a graphql.Object for each EntityReg the
// same way preRegisterObjects builds one for an ObjectTypeReg (§4.7
// "entity(...) registers an object type"). Entities are a separate
// registration from Objects, so this runs alongside preRegisterObjects
// in Pass B rather than depending on it.
func preRegisterEntities(reg gqlschema.Registry, mapper *gqltype.Mapper, chain gqlfield.MiddlewareChain) error {
	for _, name := range sortedKeys(reg.Entities) {
		e := reg.Entities[name]
		s, ok := e.Schema.(gqlschema.StructNode)
		if !ok {
			return &gqlschema.BuildError{Reason: fmt.Sprintf("entity %q schema must be a struct", name)}
		}
		if _, exists := mapper.Object(name); exists {
			continue // also registered as a plain object; that one wins
		}
		typeName, structNode := name, s
		gobj := graphql.NewObject(graphql.ObjectConfig{
			Name: typeName,
			Fields: graphql.FieldsThunk(func() graphql.Fields {
				return objectFieldsFor(typeName, structNode, reg, mapper, chain)
			}),
		})
		mapper.RegisterObject(name, gobj)
	}
	return nil
}
