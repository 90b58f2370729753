package gqltype

import (
	"fmt"

	"github.com/graphql-go/graphql"

	"github.com/mrhoseah/gqlrt/internal/gqlschema"
)

// ToInputType implements toInputType(node) from spec's §4.2: mirrors
// ToOutputType's resolution order, but rule 9 (Transformation) recurses
// into From instead of To, and named structs resolve against the
// disjoint input-object cache.
func (m *Mapper) ToInputType(n gqlschema.Node) graphql.Input {
	t, nullable := m.mapInput(n)
	if nullable {
		return t
	}
	return graphql.NewNonNull(t)
}

// FieldInputType applies the same field-boundary nullability rule as
// FieldOutputType, for an argument or input-object field.
func (m *Mapper) FieldInputType(field gqlschema.Field) graphql.Input {
	t := m.ToInputType(field.Node)
	if field.Optional {
		return unwrapNonNullInput(t)
	}
	return t
}

func (m *Mapper) mapInput(n gqlschema.Node) (graphql.Input, bool) {
	switch v := n.(type) {
	case gqlschema.StringNode:
		return graphql.String, false
	case gqlschema.IntNode:
		return graphql.Int, false
	case gqlschema.FloatNode:
		return graphql.Float, false
	case gqlschema.BoolNode:
		return graphql.Boolean, false

	case gqlschema.LiteralNode: // rule 1
		return m.literalEnum(v).(graphql.Input), false

	case gqlschema.RefinementNode: // rule 2
		return m.mapInput(v.Base)
	case gqlschema.BrandNode: // rule 2
		return m.mapInput(v.Base)

	case gqlschema.NullOrNode: // rule 3
		inner := m.ToInputType(v.Inner)
		return unwrapNonNullInput(inner), true
	case gqlschema.UndefinedOrNode:
		inner := m.ToInputType(v.Inner)
		return unwrapNonNullInput(inner), true

	case gqlschema.OptionWrappedNode: // rule 4 — input side uses Decoded's shape
		inner := m.ToInputType(v.Decoded)
		return unwrapNonNullInput(inner), true

	case gqlschema.UnionNode: // rule 5
		if inner, ok := v.HasNullMember(); ok {
			t := m.ToInputType(inner)
			return unwrapNonNullInput(t), true
		}
		if allLiteralStringMembers(v) {
			return m.unionOfLiteralsEnum(v).(graphql.Input), false
		}
		panic(fmt.Sprintf("gqltype: union %q of tagged structs has no GraphQL input representation", v.Identifier()))

	case gqlschema.ArrayNode: // rule 6
		elem := m.ToInputType(v.Elem)
		return graphql.NewList(elem), false

	case gqlschema.StructNode: // rule 7
		return m.namedInputObject(v), false

	case gqlschema.DeclarationNode: // rule 8
		return m.mapInput(v.Unwrap())

	case gqlschema.TransformationNode: // rule 9 (input recurses into From)
		return m.mapInput(v.From)

	case gqlschema.SuspendNode: // rule 10
		return m.mapInput(v.Resolve())

	case gqlschema.PropertySignatureNode:
		t, nullable := m.mapInput(v.Inner)
		return t, nullable || v.Optional

	default:
		panic(fmt.Sprintf("gqltype: unhandled input node kind %d", n.Kind()))
	}
}

func (m *Mapper) namedInputObject(s gqlschema.StructNode) graphql.Input {
	name := m.introspect.Identifier(s)
	if name == "" {
		panic("gqltype: input struct used as a named type without an identifier")
	}
	if in, ok := m.inputs[name]; ok {
		return in
	}
	// Same cycle-safety contract as output objects/unions: the Assembler
	// pre-seeds every named input with a lazy FieldsThunk in Pass A
	// before mapping any field that could reference it.
	panic(fmt.Sprintf("gqltype: input %q referenced before registration", name))
}

// ArgumentConfigMap builds a graphql.FieldConfigArgument for a
// FieldReg-style ArgsSchema, expanding its struct fields to individual
// arguments the way the Field Builder needs (§4.3 "args: a GraphQL
// argument map derived from toInputType(argsSchema) expanded to the
// struct's fields").
func (m *Mapper) ArgumentConfigMap(argsSchema gqlschema.Node) graphql.FieldConfigArgument {
	args := graphql.FieldConfigArgument{}
	if argsSchema == nil {
		return args
	}
	s, ok := argsSchema.(gqlschema.StructNode)
	if !ok {
		panic("gqltype: ArgsSchema must be a struct node")
	}
	for _, f := range s.Fields {
		args[f.Name] = &graphql.ArgumentConfig{
			Type:         m.FieldInputType(f),
			DefaultValue: f.Default,
			Description:  f.Description,
		}
	}
	return args
}
