// Package gqltype translates the algebraic schema AST (internal/gqlschema)
// into graphql-go output and input types, implementing the Type Mapper
// (§4.2 of the runtime design).
package gqltype

import (
	"fmt"
	"sort"

	"github.com/graphql-go/graphql"

	"github.com/mrhoseah/gqlrt/internal/gqlschema"
)

// Mapper holds the name-keyed caches that let cyclic type references
// resolve to a single graphql-go type value (spec.md §4.2 "Caching").
// Output and input caches are disjoint, as the spec requires, because an
// object named "User" and an input named "User" are different GraphQL
// types.
//
// Mapper does not own the Registry; the Assembler (internal/gqlassemble)
// populates Mapper's caches during its two build passes and only then
// drives field construction, which is what makes cyclic references safe
// — by the time a field's type is resolved, every named type this schema
// could reference already has a (possibly field-thunked) entry in cache.
type Mapper struct {
	objects     map[string]*graphql.Object
	inputs      map[string]*graphql.InputObject
	enums       map[string]*graphql.Enum
	unions      map[string]*graphql.Union
	interfaces  map[string]*graphql.Interface
	synthEnums  map[string]*graphql.Enum // literal-string unions without a registered enum match
	introspect  gqlschema.Introspector
}

// NewMapper returns an empty Mapper.
func NewMapper() *Mapper {
	return &Mapper{
		objects:    map[string]*graphql.Object{},
		inputs:     map[string]*graphql.InputObject{},
		enums:      map[string]*graphql.Enum{},
		unions:     map[string]*graphql.Union{},
		interfaces: map[string]*graphql.Interface{},
		synthEnums: map[string]*graphql.Enum{},
		introspect: gqlschema.NewIntrospector(),
	}
}

func (m *Mapper) RegisterObject(name string, obj *graphql.Object)        { m.objects[name] = obj }
func (m *Mapper) RegisterInput(name string, in *graphql.InputObject)     { m.inputs[name] = in }
func (m *Mapper) RegisterEnum(name string, e *graphql.Enum)              { m.enums[name] = e }
func (m *Mapper) RegisterUnion(name string, u *graphql.Union)            { m.unions[name] = u }
func (m *Mapper) RegisterInterface(name string, i *graphql.Interface)    { m.interfaces[name] = i }

func (m *Mapper) Object(name string) (*graphql.Object, bool)     { o, ok := m.objects[name]; return o, ok }
func (m *Mapper) Input(name string) (*graphql.InputObject, bool) { i, ok := m.inputs[name]; return i, ok }
func (m *Mapper) Enum(name string) (*graphql.Enum, bool)         { e, ok := m.enums[name]; return e, ok }
func (m *Mapper) Union(name string) (*graphql.Union, bool)       { u, ok := m.unions[name]; return u, ok }
func (m *Mapper) Interface(name string) (*graphql.Interface, bool) {
	i, ok := m.interfaces[name]
	return i, ok
}

// ToOutputType implements toOutputType(node) from spec.md §4.2: the
// result is non-null at top level unless node is nullable.
func (m *Mapper) ToOutputType(n gqlschema.Node) graphql.Output {
	t, nullable := m.mapOutput(n)
	if nullable {
		return t
	}
	return graphql.NewNonNull(t)
}

// FieldOutputType applies the field-boundary nullability rule (§4.2
// "Nullability wrapping"): a property signature marked optional forces a
// nullable result even if the node itself would map non-null.
func (m *Mapper) FieldOutputType(field gqlschema.Field) graphql.Output {
	t := m.ToOutputType(field.Node)
	if field.Optional {
		return unwrapNonNullOutput(t)
	}
	return t
}

func unwrapNonNullOutput(t graphql.Output) graphql.Output {
	if nn, ok := t.(*graphql.NonNull); ok {
		return nn.OfType
	}
	return t
}

func unwrapNonNullInput(t graphql.Input) graphql.Input {
	if nn, ok := t.(*graphql.NonNull); ok {
		if in, ok := nn.OfType.(graphql.Input); ok {
			return in
		}
	}
	return t
}

// mapOutput resolves node to its base (unwrapped) GraphQL type and
// whether the result should be treated as nullable at this level. The
// numbered comments follow spec.md §4.2's resolution order.
func (m *Mapper) mapOutput(n gqlschema.Node) (graphql.Output, bool) {
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
		return m.literalEnum(v), false

	case gqlschema.RefinementNode: // rule 2 (sticky Int via plain recursion into Base)
		return m.mapOutput(v.Base)
	case gqlschema.BrandNode: // rule 2
		return m.mapOutput(v.Base)

	case gqlschema.NullOrNode: // rule 3
		inner := m.ToOutputType(v.Inner)
		return unwrapNonNullOutput(inner), true
	case gqlschema.UndefinedOrNode:
		inner := m.ToOutputType(v.Inner)
		return unwrapNonNullOutput(inner), true

	case gqlschema.OptionWrappedNode: // rule 4
		inner := m.ToOutputType(v.Decoded)
		return unwrapNonNullOutput(inner), true

	case gqlschema.UnionNode: // rule 5
		if inner, ok := v.HasNullMember(); ok {
			t := m.ToOutputType(inner)
			return unwrapNonNullOutput(t), true
		}
		if allLiteralStringMembers(v) {
			return m.unionOfLiteralsEnum(v), false
		}
		return m.taggedUnion(v), false

	case gqlschema.ArrayNode: // rule 6
		elem := m.ToOutputType(v.Elem)
		return graphql.NewList(elem), false

	case gqlschema.StructNode: // rule 7
		return m.namedOrAnonymousObject(v), false

	case gqlschema.DeclarationNode: // rule 8
		return m.mapOutput(v.Unwrap())

	case gqlschema.TransformationNode: // rule 9 (output recurses into To)
		return m.mapOutput(v.To)

	case gqlschema.SuspendNode: // rule 10
		return m.mapOutput(v.Resolve())

	case gqlschema.PropertySignatureNode:
		t, nullable := m.mapOutput(v.Inner)
		return t, nullable || v.Optional

	default:
		panic(fmt.Sprintf("gqltype: unhandled output node kind %d", n.Kind()))
	}
}

func allLiteralStringMembers(u gqlschema.UnionNode) bool {
	for _, mem := range u.Members {
		lit, ok := mem.(gqlschema.LiteralNode)
		if !ok || !lit.AllStrings() {
			return false
		}
	}
	return len(u.Members) > 0
}

func (m *Mapper) literalEnum(l gqlschema.LiteralNode) graphql.Output {
	if !l.AllStrings() {
		// Non-string literal sets have no direct GraphQL representation;
		// fall back to String, matching the scalar rule 1 gives to
		// already-named enums (this path is only reached for
		// numeric/bool literal unions, which the original schema
		// language uses rarely and always alongside a brand/refinement
		// that already resolved the concrete scalar).
		return graphql.String
	}
	if reg, ok := m.enums[l.EnumName]; ok && l.EnumName != "" {
		return reg
	}
	return m.synthesizeEnum(l.EnumName, l.StringValues())
}

func (m *Mapper) unionOfLiteralsEnum(u gqlschema.UnionNode) graphql.Output {
	var values []string
	for _, mem := range u.Members {
		values = append(values, mem.(gqlschema.LiteralNode).StringValues()...)
	}
	name := u.Identifier()
	if reg, ok := m.enums[name]; ok && name != "" {
		return reg
	}
	return m.synthesizeEnum(name, values)
}

func (m *Mapper) synthesizeEnum(name string, values []string) *graphql.Enum {
	if name == "" {
		name = synthesizedEnumName(values)
	}
	if e, ok := m.synthEnums[name]; ok {
		return e
	}
	sorted := append([]string(nil), values...)
	sort.Strings(sorted)
	cfg := graphql.EnumValueConfigMap{}
	for _, v := range sorted {
		cfg[v] = &graphql.EnumValueConfig{Value: v}
	}
	e := graphql.NewEnum(graphql.EnumConfig{Name: name, Values: cfg})
	m.synthEnums[name] = e
	return e
}

func synthesizedEnumName(values []string) string {
	name := "Enum"
	sorted := append([]string(nil), values...)
	sort.Strings(sorted)
	for _, v := range sorted {
		name += "_" + v
	}
	return name
}

func (m *Mapper) taggedUnion(u gqlschema.UnionNode) graphql.Output {
	name := u.Identifier()
	if reg, ok := m.unions[name]; ok {
		return reg
	}
	// The Assembler is responsible for pre-registering every declared
	// UnionReg before fields referencing it are built (§4.4 Pass B); a
	// miss here means the schema refers to a union nobody registered.
	panic(fmt.Sprintf("gqltype: union %q referenced before registration", name))
}

func (m *Mapper) namedOrAnonymousObject(s gqlschema.StructNode) graphql.Output {
	name := m.introspect.Identifier(s)
	if name != "" {
		if obj, ok := m.objects[name]; ok {
			return obj
		}
		// Same cycle-safety contract as unions: the Assembler pre-seeds
		// every named object with a lazy FieldsThunk before mapping any
		// field that could reference it.
		panic(fmt.Sprintf("gqltype: object %q referenced before registration", name))
	}
	// Anonymous struct used inline (e.g. a field's return shape that was
	// never registered as a standalone type): build it directly. Per
	// spec.md §3, an anonymous struct used as a *named* type (something
	// another type references by name) is a build-time error; this path
	// is only reachable for genuinely inline, unshared shapes.
	fields := graphql.Fields{}
	for _, f := range s.Fields {
		fields[f.Name] = &graphql.Field{
			Type:        m.FieldOutputType(f),
			Description: f.Description,
		}
	}
	return graphql.NewObject(graphql.ObjectConfig{
		Name:        anonymousObjectName(s),
		Fields:      fields,
		Description: s.Description,
	})
}

func anonymousObjectName(s gqlschema.StructNode) string {
	name := "Anonymous"
	names := make([]string, 0, len(s.Fields))
	for _, f := range s.Fields {
		names = append(names, f.Name)
	}
	sort.Strings(names)
	for _, n := range names {
		name += "_" + n
	}
	return name
}
