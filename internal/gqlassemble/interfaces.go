package gqlassemble

import (
	"fmt"

	"github.com/graphql-go/graphql"

	"github.com/mrhoseah/gqlrt/internal/gqlschema"
	"github.com/mrhoseah/gqlrt/internal/gqltype"
)

// preRegisterInterfaces builds every InterfaceReg as a graphql.Interface
// with a lazy Fields thunk and a ResolveType closing over mapper, so it
// can resolve to a concrete object type built later in Pass B (§4.4
// "interface registry (field thunks closing over the eventual
// object/union registries)").
func preRegisterInterfaces(reg gqlschema.Registry, mapper *gqltype.Mapper) error {
	for _, name := range sortedKeys(reg.Interfaces) {
		iface := reg.Interfaces[name]
		s, ok := iface.Schema.(gqlschema.StructNode)
		if !ok {
			return &gqlschema.BuildError{Reason: fmt.Sprintf("interface %q schema must be a struct", name)}
		}
		structNode := s
		resolveType := iface.ResolveType
		gi := graphql.NewInterface(graphql.InterfaceConfig{
			Name:        name,
			Description: iface.Description,
			Fields: graphql.FieldsThunk(func() graphql.Fields {
				return outputFieldsFor(structNode, mapper)
			}),
			ResolveType: func(p graphql.ResolveTypeParams) *graphql.Object {
				obj, _ := mapper.Object(resolveDiscriminator(resolveType, p.Value))
				return obj
			},
		})
		mapper.RegisterInterface(name, gi)
	}
	return nil
}

func outputFieldsFor(s gqlschema.StructNode, mapper *gqltype.Mapper) graphql.Fields {
	out := graphql.Fields{}
	for _, f := range s.Fields {
		out[f.Name] = &graphql.Field{
			Type:              mapper.FieldOutputType(f),
			Description:       f.Description,
			DeprecationReason: f.Deprecated,
		}
	}
	return out
}

// resolveDiscriminator applies custom if set, otherwise falls back to
// reading a "__typename" key off a map-shaped value (§3 InterfaceReg
// "default resolveType reads a discriminator tag on the value").
func resolveDiscriminator(custom func(value any) string, value any) string {
	if custom != nil {
		return custom(value)
	}
	if m, ok := value.(map[string]any); ok {
		if tn, ok := m["__typename"].(string); ok {
			return tn
		}
	}
	return ""
}
