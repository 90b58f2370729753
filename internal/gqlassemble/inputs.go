package gqlassemble

import (
	"fmt"

	"github.com/graphql-go/graphql"

	"github.com/mrhoseah/gqlrt/internal/gqlschema"
	"github.com/mrhoseah/gqlrt/internal/gqltype"
)

// preRegisterInputs builds every InputReg as a graphql.InputObject whose
// Fields are a lazy thunk, so an input referencing another not-yet-built
// input (or itself) resolves once every name is in mapper's cache (§4.2
// "Caching", §4.4 Pass A).
func preRegisterInputs(reg gqlschema.Registry, mapper *gqltype.Mapper) error {
	for _, name := range sortedKeys(reg.Inputs) {
		input := reg.Inputs[name]
		s, ok := input.Schema.(gqlschema.StructNode)
		if !ok {
			return &gqlschema.BuildError{Reason: fmt.Sprintf("input %q schema must be a struct", name)}
		}
		structNode := s
		inputObj := graphql.NewInputObject(graphql.InputObjectConfig{
			Name:        name,
			Description: input.Description,
			Fields: graphql.InputObjectConfigFieldMapThunk(func() graphql.InputObjectConfigFieldMap {
				return inputFieldsFor(structNode, mapper)
			}),
		})
		mapper.RegisterInput(name, inputObj)
	}
	return nil
}

func inputFieldsFor(s gqlschema.StructNode, mapper *gqltype.Mapper) graphql.InputObjectConfigFieldMap {
	out := graphql.InputObjectConfigFieldMap{}
	for _, f := range s.Fields {
		out[f.Name] = &graphql.InputObjectFieldConfig{
			Type:         mapper.FieldInputType(f),
			DefaultValue: f.Default,
			Description:  f.Description,
		}
	}
	return out
}
