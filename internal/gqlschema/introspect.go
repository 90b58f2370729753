package gqlschema

import "fmt"

// Introspector answers structural questions about a Node without the
// caller needing to type-switch directly (§4.1 of the runtime design).
// It is stateless; every method is a pure function of its argument.
type Introspector struct{}

// NewIntrospector returns the (stateless) introspector.
func NewIntrospector() Introspector { return Introspector{} }

// Kind classifies node.
func (Introspector) Kind(n Node) NodeKind { return n.Kind() }

// Fields enumerates a StructNode's fields. Returns an error if n is not a
// struct.
func (Introspector) Fields(n Node) ([]Field, error) {
	s, ok := n.(StructNode)
	if !ok {
		return nil, fmt.Errorf("gqlschema: Fields called on non-struct node (kind %d)", n.Kind())
	}
	return s.Fields, nil
}

// IsOptional reports the optional flag of a PropertySignatureNode, or
// false for any other node (a bare field is required by default).
func (Introspector) IsOptional(n Node) bool {
	if p, ok := n.(PropertySignatureNode); ok {
		return p.Optional
	}
	return false
}

// LiteralSet returns the literal values of a LiteralNode.
func (Introspector) LiteralSet(n Node) ([]any, error) {
	l, ok := n.(LiteralNode)
	if !ok {
		return nil, fmt.Errorf("gqlschema: LiteralSet called on non-literal node (kind %d)", n.Kind())
	}
	return l.Values, nil
}

// RefinementBase returns the base node of a RefinementNode or BrandNode,
// unwrapping exactly one level (non-recursive per §4.1).
func (Introspector) RefinementBase(n Node) (Node, error) {
	switch v := n.(type) {
	case RefinementNode:
		return v.Base, nil
	case BrandNode:
		return v.Base, nil
	default:
		return nil, fmt.Errorf("gqlschema: RefinementBase called on node without a base (kind %d)", n.Kind())
	}
}

// DeclarationTypeParameters returns a DeclarationNode's type parameters.
func (Introspector) DeclarationTypeParameters(n Node) ([]Node, error) {
	d, ok := n.(DeclarationNode)
	if !ok {
		return nil, fmt.Errorf("gqlschema: DeclarationTypeParameters called on non-declaration node (kind %d)", n.Kind())
	}
	return d.TypeParameters, nil
}

// TransformationEnds returns (from, to) of a TransformationNode.
func (Introspector) TransformationEnds(n Node) (from, to Node, err error) {
	t, ok := n.(TransformationNode)
	if !ok {
		return nil, nil, fmt.Errorf("gqlschema: TransformationEnds called on non-transformation node (kind %d)", n.Kind())
	}
	return t.From, t.To, nil
}

// Identifier returns the explicit name annotation, or for a StructNode
// with no explicit annotation but exactly one field named "__typename"
// with a single-literal-value LiteralNode, the synthesized discriminator
// tag (mirrors "the struct's synthesized tag" referenced in §4.1).
func (Introspector) Identifier(n Node) string {
	if id := n.Identifier(); id != "" {
		return id
	}
	s, ok := n.(StructNode)
	if !ok {
		return ""
	}
	if f, ok := s.Field("__typename"); ok {
		if lit, ok := f.Node.(LiteralNode); ok && len(lit.Values) == 1 {
			if str, ok := lit.Values[0].(string); ok {
				return str
			}
		}
	}
	return ""
}

// IsIntBase reports whether, following Refinement/Brand base chains
// non-recursively one hop at a time from the caller, the ultimate base is
// IntNode. The mapper drives the recursion itself (this just tests one
// node); gqltype.Mapper gets the recursive "sticky Int" behaviour that
// spec.md §9(c) calls out by recursing into Refinement/Brand bases.
func (Introspector) IsIntBase(n Node) bool {
	_, ok := n.(IntNode)
	return ok
}
