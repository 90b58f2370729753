// Package gqlschema defines the algebraic schema AST that the builder and
// type mapper operate on, and the immutable registry that backs the
// fluent Builder.
package gqlschema

// NodeKind classifies a SchemaNode for quick dispatch without a type
// switch at every call site.
type NodeKind int

const (
	KindString NodeKind = iota
	KindInt
	KindFloat
	KindBool
	KindLiteral
	KindStruct
	KindArray
	KindUnion
	KindNullOr
	KindUndefinedOr
	KindOptionWrapped
	KindRefinement
	KindBrand
	KindTransformation
	KindDeclaration
	KindSuspend
	KindPropertySignature
)

// Node is the common interface implemented by every schema AST variant.
// Unwrapping is non-recursive: callers recurse through Inner()/Base() as
// needed rather than Node doing it for them (see §4.1 of the runtime
// design: "all unwrapping is non-recursive on demand").
type Node interface {
	Kind() NodeKind
	// Identifier returns the explicit name annotation for this node, or
	// "" if none was set. A Struct node used as a named input type without
	// an Identifier makes gqltype's input mapper panic at build time; an
	// unnamed output struct is built inline as an anonymous object.
	Identifier() string
}

// annotated is embedded by every node to carry the optional identifier.
type annotated struct {
	id string
}

func (a annotated) Identifier() string { return a.id }

// WithIdentifier returns a copy of the node annotated with name. Nodes are
// small value types, so "copy with field changed" is cheap and keeps the
// AST immutable.
func WithIdentifier(n Node, name string) Node {
	switch v := n.(type) {
	case StringNode:
		v.id = name
		return v
	case IntNode:
		v.id = name
		return v
	case FloatNode:
		v.id = name
		return v
	case BoolNode:
		v.id = name
		return v
	case LiteralNode:
		v.id = name
		return v
	case StructNode:
		v.id = name
		return v
	case ArrayNode:
		v.id = name
		return v
	case UnionNode:
		v.id = name
		return v
	case NullOrNode:
		v.id = name
		return v
	case UndefinedOrNode:
		v.id = name
		return v
	case OptionWrappedNode:
		v.id = name
		return v
	case RefinementNode:
		v.id = name
		return v
	case BrandNode:
		v.id = name
		return v
	case TransformationNode:
		v.id = name
		return v
	case DeclarationNode:
		v.id = name
		return v
	default:
		return n
	}
}

type StringNode struct{ annotated }
type IntNode struct{ annotated }
type FloatNode struct{ annotated }
type BoolNode struct{ annotated }

func (StringNode) Kind() NodeKind { return KindString }
func (IntNode) Kind() NodeKind    { return KindInt }
func (FloatNode) Kind() NodeKind  { return KindFloat }
func (BoolNode) Kind() NodeKind   { return KindBool }

// LiteralNode is a finite set of literal values (spec.md's Literal(values)).
// For an all-string set, rule 1 of the output mapper uses the registered
// enum named EnumName if there is one; otherwise it synthesizes an enum
// named EnumName (or named after the sorted values when EnumName is
// empty). Registered enums are not searched by their value sets.
type LiteralNode struct {
	annotated
	Values   []any
	EnumName string
}

func (LiteralNode) Kind() NodeKind { return KindLiteral }

// AllStrings reports whether every literal value is a string, the
// precondition for enum-or-union-of-literals mapping rules.
func (l LiteralNode) AllStrings() bool {
	for _, v := range l.Values {
		if _, ok := v.(string); !ok {
			return false
		}
	}
	return len(l.Values) > 0
}

func (l LiteralNode) StringValues() []string {
	out := make([]string, 0, len(l.Values))
	for _, v := range l.Values {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// Field is one entry of a StructNode's field list.
type Field struct {
	Name string
	Node Node
	// Optional mirrors a TS-style PropertySignature's optional flag: the
	// field may be entirely absent rather than present-with-null.
	Optional bool
	// Default, if non-nil, is used both as the GraphQL input default and
	// as the decoded value when the field is absent.
	Default      any
	Description  string
	Deprecated   string
}

// StructNode describes a data shape with named fields (spec.md's
// Struct(fields)). A StructNode used as a named output/input type MUST
// carry an Identifier; anonymous structs are only valid inline (e.g. as
// an array element or union member in places that don't require a name).
type StructNode struct {
	annotated
	Fields      []Field
	Description string
}

func (StructNode) Kind() NodeKind { return KindStruct }

func (s StructNode) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// ArrayNode is a homogeneous list (spec.md's Array(elem)).
type ArrayNode struct {
	annotated
	Elem Node
}

func (ArrayNode) Kind() NodeKind { return KindArray }

// UnionNode is either a union of tagged structs (discriminated union) or a
// union that happens to include a null/undefined member, which the
// mapper unwraps to a nullable single type (rule 5).
type UnionNode struct {
	annotated
	Members []Node
	// Discriminator is carried on the node but not read by the mapper or
	// the assembler: a tagged-struct union picks its member through its
	// UnionReg's ResolveType, or through a "__typename" key on a map value
	// when no ResolveType is set.
	Discriminator string
}

func (UnionNode) Kind() NodeKind { return KindUnion }

// HasNullMember reports whether one member is a null/undefined marker,
// the case that collapses Union(T, null) to a nullable T (rule 5).
func (u UnionNode) HasNullMember() (Node, bool) {
	var nonNull []Node
	sawNull := false
	for _, m := range u.Members {
		if isNullLike(m) {
			sawNull = true
			continue
		}
		nonNull = append(nonNull, m)
	}
	if sawNull && len(nonNull) == 1 {
		return nonNull[0], true
	}
	return nil, false
}

func isNullLike(n Node) bool {
	switch n.(type) {
	case nullMarker:
		return true
	}
	return false
}

// nullMarker is the explicit "null" literal member used inside UnionNode
// to represent TypeScript's `| null`. It is not exported as a standalone
// constructor target; use Null() below.
type nullMarker struct{ annotated }

func (nullMarker) Kind() NodeKind { return KindUndefinedOr }

// Null constructs the null-literal union member.
func Null() Node { return nullMarker{} }

// NullOrNode wraps inner as nullable (spec.md's NullOr(inner)).
type NullOrNode struct {
	annotated
	Inner Node
}

func (NullOrNode) Kind() NodeKind { return KindNullOr }

// UndefinedOrNode wraps inner as optional-at-property-level (spec.md's
// UndefinedOr(inner)); distinct from NullOr because it only affects
// whether the field may be absent, not whether present-null is legal.
type UndefinedOrNode struct {
	annotated
	Inner Node
}

func (UndefinedOrNode) Kind() NodeKind { return KindUndefinedOr }

// OptionWrappedNode models an Option<T> encoded as Union(T, null) with a
// decoded representation of an optional T (spec.md's OptionWrapped).
type OptionWrappedNode struct {
	annotated
	Encoded Node
	Decoded Node
}

func (OptionWrappedNode) Kind() NodeKind { return KindOptionWrapped }

// RefinementNode narrows Base with a predicate the mapper does not need
// to evaluate structurally, only to know it preserves Base's mapped type
// (spec.md's Refinement(base, predicate); e.g. NonNegativeInt).
type RefinementNode struct {
	annotated
	Base      Node
	Predicate string
}

func (RefinementNode) Kind() NodeKind { return KindRefinement }

// BrandNode tags Base with an opaque brand name without changing its
// mapped GraphQL type (spec.md's Brand(base, tag)).
type BrandNode struct {
	annotated
	Base Node
	Tag  string
}

func (BrandNode) Kind() NodeKind { return KindBrand }

// TransformationNode carries distinct encoded (From) and decoded (To)
// shapes; output mapping recurses into To, input mapping into From
// (spec.md's Transformation(from, to), rule 9). Decode/Encode perform
// the actual conversion between the two shapes at request time; a nil
// func defaults to identity (From and To have the same runtime
// representation, only the GraphQL-facing type differs).
type TransformationNode struct {
	annotated
	From   Node
	To     Node
	Decode func(encoded any) (any, error)
	Encode func(decoded any) (any, error)
}

func (TransformationNode) Kind() NodeKind { return KindTransformation }

// DeclarationNode models a class-like declaration whose first type
// parameter is the underlying structural type to unwrap (spec.md's
// Declaration(typeParameters), rule 8).
type DeclarationNode struct {
	annotated
	TypeParameters []Node
}

func (DeclarationNode) Kind() NodeKind { return KindDeclaration }

func (d DeclarationNode) Unwrap() Node {
	if len(d.TypeParameters) == 0 {
		return StructNode{}
	}
	return d.TypeParameters[0]
}

// SuspendNode defers resolution of Inner until Thunk is invoked, breaking
// reference cycles between mutually-recursive types (spec.md's
// Suspend(thunk)). Callers MUST wrap any field depending on a SuspendNode
// in a lazy field thunk at the enclosing object (rule 10).
type SuspendNode struct {
	annotated
	Thunk func() Node
}

func (SuspendNode) Kind() NodeKind { return KindSuspend }

func (s SuspendNode) Resolve() Node { return s.Thunk() }

// PropertySignatureNode wraps a struct field's node together with its
// optional flag, letting the mapper decide output/input nullability at
// the field boundary independent of the inner node's own nullability
// (spec.md's PropertySignature(inner, optionalFlag)).
type PropertySignatureNode struct {
	annotated
	Inner    Node
	Optional bool
}

func (PropertySignatureNode) Kind() NodeKind { return KindPropertySignature }
