package gqlschema

import (
	"context"
	"fmt"
)

// Effect is the minimal resolver-effect abstraction the runtime threads
// through every resolver, directive, and middleware hook. It mirrors the
// "Effect<A,E,R>" shape spec.md's DESIGN NOTES ask for: a thunk that, run
// against a context carrying the per-request dependency container,
// produces either a decoded value or a typed failure. There is no
// separate "requirements" type parameter in Go: required services are
// obtained from the container reached via ctx (see internal/gqlctx).
type Effect func(ctx context.Context) (any, error)

// Resolver is a query/mutation field's effectful resolve function.
type Resolver func(args map[string]any) Effect

// ObjectResolver is a colocated object field's effectful resolve
// function; parent is the already-resolved value of the owning type.
type ObjectResolver func(parent any, args map[string]any) Effect

// SubscribeFunc opens a subscription's source stream.
type SubscribeFunc func(args map[string]any) (Stream, error)

// SubscriptionResolver re-shapes each item a subscription's stream
// produces before it is encoded and sent to the client.
type SubscriptionResolver func(payload any, args map[string]any) Effect

// Stream is a push-based sequence of effectful values, used by
// subscription fields and the transports in internal/gqltransport.
type Stream interface {
	// Next blocks until the next item is available, the stream ends
	// (ok=false), or ctx is cancelled.
	Next(ctx context.Context) (any, bool, error)
	Close()
}

// MiddlewareApply wraps the remaining chain for one field invocation. It
// receives the Effect for "everything further in" and the field's
// MiddlewareContext, and returns a (possibly different) Effect.
type MiddlewareApply func(next Effect, mctx MiddlewareContext) Effect

// MiddlewareContext is handed to every middleware and directive apply
// function (spec.md §4.3.b).
type MiddlewareContext struct {
	TypeName  string
	FieldName string
	Parent    any
	Args      map[string]any
	Directives []string
}

// DirectiveApply transforms a resolver effect given the directive's own
// arguments on this field (spec.md's DirectiveReg.apply).
type DirectiveApply func(directiveArgs map[string]any) MiddlewareApply

// ---- Registration entities (§3) ----

type ObjectTypeReg struct {
	Name        string
	Schema      Node
	Implements  []string
	Directives  []string
	Description string
}

type InterfaceReg struct {
	Name        string
	Schema      Node
	ResolveType func(value any) string // returns the concrete object type name
	Description string
}

type EnumValue struct {
	Name        string
	Value       any
	Description string
}

type EnumReg struct {
	Name        string
	Values      []EnumValue
	Description string
}

type UnionReg struct {
	Name        string
	Members     []string
	ResolveType func(value any) string
	Description string
}

type InputReg struct {
	Name        string
	Schema      Node
	Description string
}

type DirectiveReg struct {
	Name        string
	Locations   []string
	ArgsSchema  Node
	Apply       DirectiveApply
	Description string
}

type FieldReg struct {
	Name        string
	ReturnType  Node
	ArgsSchema  Node
	Directives  []string
	Resolve     Resolver
	Description string
	Deprecated  string
}

type SubscriptionFieldReg struct {
	Name        string
	ReturnType  Node
	ArgsSchema  Node
	Directives  []string
	Subscribe   SubscribeFunc
	Resolve     SubscriptionResolver // optional; defaults to identity
	Description string
}

type ObjectFieldReg struct {
	TypeName    string
	FieldName   string
	ReturnType  Node
	ArgsSchema  Node
	Directives  []string
	Resolve     ObjectResolver
	Description string
	Deprecated  string
}

type ExtensionReg struct {
	Name           string
	OnParse        func(ctx context.Context, source string) (context.Context, error)
	OnValidate     func(ctx context.Context) (context.Context, error)
	OnExecuteStart func(ctx context.Context) context.Context
	OnExecuteEnd   func(ctx context.Context, errs []error)
}

type MiddlewareReg struct {
	Name  string
	Match func(typeName, fieldName string) bool
	Apply MiddlewareApply
}

// BuildError is reported by Builder.Err, Registry.Validate and the
// assembler (internal/gqlassemble) when the registry is internally
// inconsistent (spec.md §7 "Schema build errors"). It is fatal: the
// caller must fix the registration, there is no recovery path.
type BuildError struct {
	Reason string
}

func (e *BuildError) Error() string { return "gqlschema: build error: " + e.Reason }

// Registry is the immutable state a Builder accumulates. Every Builder
// mutator returns a *new* Builder wrapping a new Registry; the old one
// (and anyone still holding it) is unaffected — spec.md §3's copy-on-write
// invariant. Registry itself holds plain maps copied on every write
// rather than a persistent tree, which is simple and is fine at the
// scale (tens to low hundreds of registrations) a single schema build
// involves.
type Registry struct {
	Objects           map[string]ObjectTypeReg
	Interfaces        map[string]InterfaceReg
	Enums             map[string]EnumReg
	Unions            map[string]UnionReg
	Inputs            map[string]InputReg
	Directives        map[string]DirectiveReg
	Queries           map[string]FieldReg
	Mutations         map[string]FieldReg
	Subscriptions     map[string]SubscriptionFieldReg
	ExtraFields       map[string][]ObjectFieldReg // typeName -> colocated fields added after registration
	Extensions        []ExtensionReg
	Middleware        []MiddlewareReg
	Entities          map[string]EntityReg
}

// EntityReg is the federation registration described in spec.md §4.7; it
// lives in this package (not internal/gqlfederation) because it augments
// the same Registry every other registration lives in.
type EntityReg struct {
	Name             string
	Schema           Node
	Keys             []string
	ResolveReference func(ctx context.Context, representation map[string]any) (any, error)
	Directives       []string

	// FieldDirectives holds the per-field federation directives §4.7
	// step 5 requires (@external, @requires, @provides, @override,
	// @shareable, @inaccessible, @interfaceObject, @tag), keyed by
	// field name. Directives is type-level only; this is where a
	// resolved reference's dependent/overridden fields get annotated.
	FieldDirectives map[string][]string
}

func emptyRegistry() Registry {
	return Registry{
		Objects:       map[string]ObjectTypeReg{},
		Interfaces:    map[string]InterfaceReg{},
		Enums:         map[string]EnumReg{},
		Unions:        map[string]UnionReg{},
		Inputs:        map[string]InputReg{},
		Directives:    map[string]DirectiveReg{},
		Queries:       map[string]FieldReg{},
		Mutations:     map[string]FieldReg{},
		Subscriptions: map[string]SubscriptionFieldReg{},
		ExtraFields:   map[string][]ObjectFieldReg{},
		Entities:      map[string]EntityReg{},
	}
}

func (r Registry) clone() Registry {
	n := emptyRegistry()
	for k, v := range r.Objects {
		n.Objects[k] = v
	}
	for k, v := range r.Interfaces {
		n.Interfaces[k] = v
	}
	for k, v := range r.Enums {
		n.Enums[k] = v
	}
	for k, v := range r.Unions {
		n.Unions[k] = v
	}
	for k, v := range r.Inputs {
		n.Inputs[k] = v
	}
	for k, v := range r.Directives {
		n.Directives[k] = v
	}
	for k, v := range r.Queries {
		n.Queries[k] = v
	}
	for k, v := range r.Mutations {
		n.Mutations[k] = v
	}
	for k, v := range r.Subscriptions {
		n.Subscriptions[k] = v
	}
	for k, v := range r.ExtraFields {
		cp := make([]ObjectFieldReg, len(v))
		copy(cp, v)
		n.ExtraFields[k] = cp
	}
	for k, v := range r.Entities {
		n.Entities[k] = v
	}
	n.Extensions = append([]ExtensionReg(nil), r.Extensions...)
	n.Middleware = append([]MiddlewareReg(nil), r.Middleware...)
	return n
}

// Builder is the fluent, immutable schema builder (spec.md §3 "Builder
// instance is immutable; all mutators return a new instance with a new
// registry"). The zero value is not valid; use NewBuilder.
type Builder struct {
	reg Registry
	err error // first registration error encountered; reported by Err
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{reg: emptyRegistry()}
}

// Registry exposes the accumulated, read-only registry. Returned maps
// must not be mutated by callers; every Builder method that needs to
// change state goes through clone().
func (b *Builder) Registry() Registry { return b.reg }

// Err returns the first registration-time error, if any. It is the only
// place that error is reported: Registry() still returns the registry as
// it stood before the failed call, and assembling that registry does not
// see the error.
func (b *Builder) Err() error { return b.err }

func (b *Builder) fail(err error) *Builder {
	if b.err != nil {
		return b
	}
	nb := &Builder{reg: b.reg, err: err}
	return nb
}

func (b *Builder) with(mutate func(r *Registry)) *Builder {
	if b.err != nil {
		return b
	}
	nr := b.reg.clone()
	mutate(&nr)
	return &Builder{reg: nr}
}

// Object registers an object type.
func (b *Builder) Object(reg ObjectTypeReg) *Builder {
	if reg.Name == "" {
		return b.fail(&BuildError{Reason: "object registration missing Name"})
	}
	if _, exists := b.reg.Objects[reg.Name]; exists {
		return b.fail(&BuildError{Reason: fmt.Sprintf("object type %q registered twice", reg.Name)})
	}
	return b.with(func(r *Registry) { r.Objects[reg.Name] = reg })
}

// Field attaches a colocated field to an already-registered (or
// not-yet-registered — order is irrelevant, see spec.md §8 property 1)
// object type after its initial registration.
func (b *Builder) Field(reg ObjectFieldReg) *Builder {
	if reg.TypeName == "" || reg.FieldName == "" {
		return b.fail(&BuildError{Reason: "object field registration missing TypeName or FieldName"})
	}
	return b.with(func(r *Registry) {
		r.ExtraFields[reg.TypeName] = append(append([]ObjectFieldReg(nil), r.ExtraFields[reg.TypeName]...), reg)
	})
}

// Interface registers an interface type.
func (b *Builder) Interface(reg InterfaceReg) *Builder {
	if reg.Name == "" {
		return b.fail(&BuildError{Reason: "interface registration missing Name"})
	}
	if _, exists := b.reg.Interfaces[reg.Name]; exists {
		return b.fail(&BuildError{Reason: fmt.Sprintf("interface %q registered twice", reg.Name)})
	}
	return b.with(func(r *Registry) { r.Interfaces[reg.Name] = reg })
}

// Enum registers an enum type.
func (b *Builder) Enum(reg EnumReg) *Builder {
	if reg.Name == "" {
		return b.fail(&BuildError{Reason: "enum registration missing Name"})
	}
	if _, exists := b.reg.Enums[reg.Name]; exists {
		return b.fail(&BuildError{Reason: fmt.Sprintf("enum %q registered twice", reg.Name)})
	}
	return b.with(func(r *Registry) { r.Enums[reg.Name] = reg })
}

// Union registers a union type.
func (b *Builder) Union(reg UnionReg) *Builder {
	if reg.Name == "" {
		return b.fail(&BuildError{Reason: "union registration missing Name"})
	}
	if _, exists := b.reg.Unions[reg.Name]; exists {
		return b.fail(&BuildError{Reason: fmt.Sprintf("union %q registered twice", reg.Name)})
	}
	return b.with(func(r *Registry) { r.Unions[reg.Name] = reg })
}

// Input registers an input type.
func (b *Builder) Input(reg InputReg) *Builder {
	if reg.Name == "" {
		return b.fail(&BuildError{Reason: "input registration missing Name"})
	}
	if _, exists := b.reg.Inputs[reg.Name]; exists {
		return b.fail(&BuildError{Reason: fmt.Sprintf("input %q registered twice", reg.Name)})
	}
	return b.with(func(r *Registry) { r.Inputs[reg.Name] = reg })
}

// Directive registers a custom directive.
func (b *Builder) Directive(reg DirectiveReg) *Builder {
	if reg.Name == "" {
		return b.fail(&BuildError{Reason: "directive registration missing Name"})
	}
	if _, exists := b.reg.Directives[reg.Name]; exists {
		return b.fail(&BuildError{Reason: fmt.Sprintf("directive %q registered twice", reg.Name)})
	}
	return b.with(func(r *Registry) { r.Directives[reg.Name] = reg })
}

// Query registers a root query field.
func (b *Builder) Query(reg FieldReg) *Builder {
	if reg.Name == "" {
		return b.fail(&BuildError{Reason: "query registration missing Name"})
	}
	if _, exists := b.reg.Queries[reg.Name]; exists {
		return b.fail(&BuildError{Reason: fmt.Sprintf("query %q registered twice", reg.Name)})
	}
	return b.with(func(r *Registry) { r.Queries[reg.Name] = reg })
}

// Mutation registers a root mutation field.
func (b *Builder) Mutation(reg FieldReg) *Builder {
	if reg.Name == "" {
		return b.fail(&BuildError{Reason: "mutation registration missing Name"})
	}
	if _, exists := b.reg.Mutations[reg.Name]; exists {
		return b.fail(&BuildError{Reason: fmt.Sprintf("mutation %q registered twice", reg.Name)})
	}
	return b.with(func(r *Registry) { r.Mutations[reg.Name] = reg })
}

// Subscription registers a root subscription field (spec.md §3:
// "Subscription fields may only appear under the Subscription root" —
// enforced structurally since SubscriptionFieldReg only attaches here).
func (b *Builder) Subscription(reg SubscriptionFieldReg) *Builder {
	if reg.Name == "" {
		return b.fail(&BuildError{Reason: "subscription registration missing Name"})
	}
	if _, exists := b.reg.Subscriptions[reg.Name]; exists {
		return b.fail(&BuildError{Reason: fmt.Sprintf("subscription %q registered twice", reg.Name)})
	}
	return b.with(func(r *Registry) { r.Subscriptions[reg.Name] = reg })
}

// Extension registers an execution-lifecycle observer.
func (b *Builder) Extension(reg ExtensionReg) *Builder {
	return b.with(func(r *Registry) { r.Extensions = append(r.Extensions, reg) })
}

// Use registers a global middleware entry, applied to every field in
// registration order (outermost first), ahead of directive-derived
// middleware (spec.md §4.5 "Middleware chain ordering").
func (b *Builder) Use(reg MiddlewareReg) *Builder {
	return b.with(func(r *Registry) { r.Middleware = append(r.Middleware, reg) })
}

// Entity registers a federation entity (spec.md §4.7).
func (b *Builder) Entity(reg EntityReg) *Builder {
	if reg.Name == "" {
		return b.fail(&BuildError{Reason: "entity registration missing Name"})
	}
	if len(reg.Keys) == 0 {
		return b.fail(&BuildError{Reason: fmt.Sprintf("entity %q must declare at least one @key field", reg.Name)})
	}
	if _, exists := b.reg.Entities[reg.Name]; exists {
		return b.fail(&BuildError{Reason: fmt.Sprintf("entity %q registered twice", reg.Name)})
	}
	return b.with(func(r *Registry) { r.Entities[reg.Name] = reg })
}

// Validate checks the registry-level invariants from spec.md §3 that
// don't require the full type mapper: unique names (enforced eagerly
// above), @key fields existing on their entity's struct, and interface
// names referenced by objects actually being registered. Field-coverage
// of interface implementers is validated by the assembler (internal
// /gqlassemble), which compares each object's base and extra field names
// against the interface's fields.
func (r Registry) Validate() error {
	for _, obj := range r.Objects {
		for _, ifaceName := range obj.Implements {
			if _, ok := r.Interfaces[ifaceName]; !ok {
				return &BuildError{Reason: fmt.Sprintf("object %q implements unknown interface %q", obj.Name, ifaceName)}
			}
		}
	}
	for _, u := range r.Unions {
		for _, m := range u.Members {
			if _, ok := r.Objects[m]; !ok {
				return &BuildError{Reason: fmt.Sprintf("union %q references unknown member %q", u.Name, m)}
			}
		}
	}
	for _, e := range r.Entities {
		s, ok := e.Schema.(StructNode)
		if !ok {
			return &BuildError{Reason: fmt.Sprintf("entity %q schema must be a struct", e.Name)}
		}
		for _, key := range e.Keys {
			if _, ok := s.Field(key); !ok {
				return &BuildError{Reason: fmt.Sprintf("entity %q @key field %q does not exist on its struct", e.Name, key)}
			}
		}
	}
	return nil
}
