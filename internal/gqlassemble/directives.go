package gqlassemble

import (
	"github.com/graphql-go/graphql"

	"github.com/mrhoseah/gqlrt/internal/gqlschema"
	"github.com/mrhoseah/gqlrt/internal/gqltype"
)

func buildDirectives(regs map[string]gqlschema.DirectiveReg, mapper *gqltype.Mapper) []*graphql.Directive {
	var out []*graphql.Directive
	for _, name := range sortedKeys(regs) {
		d := regs[name]
		args := graphql.FieldConfigArgument{}
		if d.ArgsSchema != nil {
			args = mapper.ArgumentConfigMap(d.ArgsSchema)
		}
		out = append(out, &graphql.Directive{
			Name:        d.Name,
			Description: d.Description,
			Locations:   append([]string(nil), d.Locations...),
			Args:        args,
		})
	}
	return out
}
