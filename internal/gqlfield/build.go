package gqlfield

import (
	"context"

	"github.com/graphql-go/graphql"

	"github.com/mrhoseah/gqlrt/internal/gqlschema"
	"github.com/mrhoseah/gqlrt/internal/gqltype"
)

// BuildQueryField assembles a graphql.Field for a root query or
// mutation registration.
func BuildQueryField(reg gqlschema.FieldReg, typeName string, mapper *gqltype.Mapper, chain MiddlewareChain) *graphql.Field {
	resolve := func(p graphql.ResolveParams) (any, error) {
		decodedArgs, err := decodeArgs(reg.ArgsSchema, p.Args)
		if err != nil {
			return nil, err
		}
		mctx := gqlschema.MiddlewareContext{
			TypeName:   typeName,
			FieldName:  reg.Name,
			Parent:     p.Source,
			Args:       decodedArgs,
			Directives: reg.Directives,
		}
		effect := chain.Wrap(typeName, reg.Name, reg.Directives, nil, reg.Resolve(decodedArgs), mctx)
		value, err := effect(p.Context)
		if err != nil {
			return nil, err
		}
		return Encode(reg.ReturnType, value)
	}

	return &graphql.Field{
		Name:        reg.Name,
		Type:        mapper.ToOutputType(reg.ReturnType),
		Args:        mapper.ArgumentConfigMap(reg.ArgsSchema),
		Resolve:     resolve,
		Description: reg.Description,
	}
}

// BuildObjectField assembles a graphql.Field for a colocated field
// attached to an already-registered object type. typeDirectives carries
// the owning ObjectTypeReg's directives, consulted after the field's own
// (§4.5 "directive-middleware(from field directives then type
// directives)").
func BuildObjectField(reg gqlschema.ObjectFieldReg, typeDirectives []string, mapper *gqltype.Mapper, chain MiddlewareChain) *graphql.Field {
	resolve := func(p graphql.ResolveParams) (any, error) {
		decodedArgs, err := decodeArgs(reg.ArgsSchema, p.Args)
		if err != nil {
			return nil, err
		}
		mctx := gqlschema.MiddlewareContext{
			TypeName:   reg.TypeName,
			FieldName:  reg.FieldName,
			Parent:     p.Source,
			Args:       decodedArgs,
			Directives: reg.Directives,
		}
		base := reg.Resolve(p.Source, decodedArgs)
		effect := chain.Wrap(reg.TypeName, reg.FieldName, reg.Directives, typeDirectives, base, mctx)
		value, err := effect(p.Context)
		if err != nil {
			return nil, err
		}
		return Encode(reg.ReturnType, value)
	}

	return &graphql.Field{
		Name:              reg.FieldName,
		Type:              mapper.ToOutputType(reg.ReturnType),
		Args:              mapper.ArgumentConfigMap(reg.ArgsSchema),
		Resolve:           resolve,
		Description:       reg.Description,
		DeprecationReason: reg.Deprecated,
	}
}

// BuildSubscriptionField assembles the graphql.Field used when the
// engine re-executes a subscription's selection set against one stream
// payload (§4.5: "for each published value, re-execute the selection
// set on the yielded payload"). Opening the stream itself is the
// engine/transport's job via OpenStream; this Resolve only applies the
// subscription's optional per-item transformer.
func BuildSubscriptionField(reg gqlschema.SubscriptionFieldReg, mapper *gqltype.Mapper, chain MiddlewareChain) *graphql.Field {
	transform := reg.Resolve
	if transform == nil {
		transform = identityTransform
	}

	resolve := func(p graphql.ResolveParams) (any, error) {
		decodedArgs, err := decodeArgs(reg.ArgsSchema, p.Args)
		if err != nil {
			return nil, err
		}
		mctx := gqlschema.MiddlewareContext{
			TypeName:   "Subscription",
			FieldName:  reg.Name,
			Parent:     p.Source,
			Args:       decodedArgs,
			Directives: reg.Directives,
		}
		base := transform(p.Source, decodedArgs)
		effect := chain.Wrap("Subscription", reg.Name, reg.Directives, nil, base, mctx)
		value, err := effect(p.Context)
		if err != nil {
			return nil, err
		}
		return Encode(reg.ReturnType, value)
	}

	return &graphql.Field{
		Name:        reg.Name,
		Type:        mapper.ToOutputType(reg.ReturnType),
		Args:        mapper.ArgumentConfigMap(reg.ArgsSchema),
		Resolve:     resolve,
		Description: reg.Description,
	}
}

func identityTransform(payload any, args map[string]any) gqlschema.Effect {
	return func(ctx context.Context) (any, error) { return payload, nil }
}

// OpenStream opens a subscription's source stream by invoking
// reg.Subscribe(args). The caller (internal/gqlexec, internal/gqltransport)
// owns running the stream and re-executing the selection set per item.
func OpenStream(reg gqlschema.SubscriptionFieldReg, args map[string]any) (gqlschema.Stream, error) {
	return reg.Subscribe(args)
}
