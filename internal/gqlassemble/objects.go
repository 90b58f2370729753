package gqlassemble

import (
	"fmt"

	"github.com/graphql-go/graphql"

	"github.com/mrhoseah/gqlrt/internal/gqlfield"
	"github.com/mrhoseah/gqlrt/internal/gqlschema"
	"github.com/mrhoseah/gqlrt/internal/gqltype"
)

// preRegisterObjects builds every ObjectTypeReg as a graphql.Object
// with a lazy Fields thunk and a lazy Interfaces thunk, so objects that
// reference each other (directly or through Suspend) resolve once every
// name is in mapper's cache (§4.4 Pass B).
func preRegisterObjects(reg gqlschema.Registry, mapper *gqltype.Mapper, chain gqlfield.MiddlewareChain) error {
	for _, name := range sortedKeys(reg.Objects) {
		objReg := reg.Objects[name]
		s, ok := objReg.Schema.(gqlschema.StructNode)
		if !ok {
			return &gqlschema.BuildError{Reason: fmt.Sprintf("object %q schema must be a struct", name)}
		}
		typeName := name
		structNode := s
		implements := objReg.Implements
		gobj := graphql.NewObject(graphql.ObjectConfig{
			Name:        typeName,
			Description: objReg.Description,
			Fields: graphql.FieldsThunk(func() graphql.Fields {
				return objectFieldsFor(typeName, structNode, reg, mapper, chain)
			}),
			Interfaces: graphql.InterfacesThunk(func() []*graphql.Interface {
				var out []*graphql.Interface
				for _, ifaceName := range implements {
					if gi, ok := mapper.Interface(ifaceName); ok {
						out = append(out, gi)
					}
				}
				return out
			}),
		})
		mapper.RegisterObject(name, gobj)
	}
	return nil
}

// objectFieldsFor merges an object's base struct fields (plain,
// resolver-less — graphql-go's default resolver reads them off the
// parent map/struct by name) with its colocated ObjectFieldReg entries,
// which get the full middleware-wrapped resolver from the Field Builder
// (§4.4 Pass B, step ii "overlay additional colocated fields").
func objectFieldsFor(typeName string, s gqlschema.StructNode, reg gqlschema.Registry, mapper *gqltype.Mapper, chain gqlfield.MiddlewareChain) graphql.Fields {
	out := graphql.Fields{}
	for _, f := range s.Fields {
		out[f.Name] = &graphql.Field{
			Type:              mapper.FieldOutputType(f),
			Description:       f.Description,
			DeprecationReason: f.Deprecated,
		}
	}
	typeDirectives := reg.Objects[typeName].Directives
	for _, extra := range reg.ExtraFields[typeName] {
		out[extra.FieldName] = gqlfield.BuildObjectField(extra, typeDirectives, mapper, chain)
	}
	return out
}
