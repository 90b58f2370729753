package gqlfield

import "github.com/mrhoseah/gqlrt/internal/gqlschema"

// MiddlewareChain composes the global middleware list with per-field
// directive-derived middleware into a single Effect wrapper (§4.3.b,
// §4.5 "Middleware chain ordering"): the global list in registration
// order, then directive-derived middleware (field directives first,
// then type directives), applied outermost first.
type MiddlewareChain struct {
	Global     []gqlschema.MiddlewareReg
	Directives map[string]gqlschema.DirectiveReg
}

// Wrap builds the final Effect for one field invocation around base.
func (c MiddlewareChain) Wrap(typeName, fieldName string, fieldDirectives, typeDirectives []string, base gqlschema.Effect, mctx gqlschema.MiddlewareContext) gqlschema.Effect {
	var appliers []gqlschema.MiddlewareApply
	for _, g := range c.Global {
		if g.Match == nil || g.Match(typeName, fieldName) {
			appliers = append(appliers, g.Apply)
		}
	}
	for _, name := range fieldDirectives {
		if d, ok := c.Directives[name]; ok && d.Apply != nil {
			appliers = append(appliers, d.Apply(map[string]any{}))
		}
	}
	for _, name := range typeDirectives {
		if d, ok := c.Directives[name]; ok && d.Apply != nil {
			appliers = append(appliers, d.Apply(map[string]any{}))
		}
	}

	effect := base
	for i := len(appliers) - 1; i >= 0; i-- {
		effect = appliers[i](effect, mctx)
	}
	return effect
}
