// Package gqlassemble turns a fully populated gqlschema.Registry into a
// runnable graphql.Schema. It runs the two-pass build described by the
// registry's own Validate contract: Pass A registers the types that
// never reference an object (enums, directives, inputs, interfaces),
// Pass B registers objects and unions, which may reference Pass A types
// and each other through lazy thunks.
package gqlassemble

import (
	"github.com/graphql-go/graphql"

	"github.com/mrhoseah/gqlrt/internal/gqlfield"
	"github.com/mrhoseah/gqlrt/internal/gqlschema"
	"github.com/mrhoseah/gqlrt/internal/gqltype"
)

// Assembly holds every piece graphql.NewSchema needs, plus the Mapper
// and Registry a federation or introspection layer built on top might
// still need to consult.
type Assembly struct {
	Mapper             *gqltype.Mapper
	Registry           gqlschema.Registry
	QueryFields        graphql.Fields
	MutationFields     graphql.Fields
	SubscriptionFields graphql.Fields
	ExtraTypes         []graphql.Type
	Directives         []*graphql.Directive
}

// Assemble runs the full build pipeline: validate, Pass A, Pass B,
// interface coverage, then the three root operation types.
func Assemble(reg gqlschema.Registry) (*Assembly, error) {
	if err := reg.Validate(); err != nil {
		return nil, err
	}

	mapper := gqltype.NewMapper()

	for _, name := range sortedKeys(reg.Enums) {
		mapper.RegisterEnum(name, buildEnum(reg.Enums[name]))
	}

	directives := buildDirectives(reg.Directives, mapper)

	if err := preRegisterInputs(reg, mapper); err != nil {
		return nil, err
	}
	if err := preRegisterInterfaces(reg, mapper); err != nil {
		return nil, err
	}

	chain := gqlfield.MiddlewareChain{
		Global:     reg.Middleware,
		Directives: reg.Directives,
	}

	if err := preRegisterObjects(reg, mapper, chain); err != nil {
		return nil, err
	}
	if err := preRegisterEntities(reg, mapper, chain); err != nil {
		return nil, err
	}
	if err := buildUnions(reg, mapper); err != nil {
		return nil, err
	}
	if err := validateInterfaceCoverage(reg); err != nil {
		return nil, err
	}

	queryFields := graphql.Fields{}
	for _, name := range sortedKeys(reg.Queries) {
		f := reg.Queries[name]
		queryFields[name] = gqlfield.BuildQueryField(f, "Query", mapper, chain)
	}

	mutationFields := graphql.Fields{}
	for _, name := range sortedKeys(reg.Mutations) {
		f := reg.Mutations[name]
		mutationFields[name] = gqlfield.BuildQueryField(f, "Mutation", mapper, chain)
	}

	subscriptionFields := graphql.Fields{}
	for _, name := range sortedKeys(reg.Subscriptions) {
		s := reg.Subscriptions[name]
		subscriptionFields[name] = gqlfield.BuildSubscriptionField(s, mapper, chain)
	}

	var extraTypes []graphql.Type
	for _, name := range sortedKeys(reg.Objects) {
		if obj, ok := mapper.Object(name); ok {
			extraTypes = append(extraTypes, obj)
		}
	}
	for _, name := range sortedKeys(reg.Entities) {
		if obj, ok := mapper.Object(name); ok {
			extraTypes = append(extraTypes, obj)
		}
	}
	for _, name := range sortedKeys(reg.Unions) {
		if u, ok := mapper.Union(name); ok {
			extraTypes = append(extraTypes, u)
		}
	}

	return &Assembly{
		Mapper:             mapper,
		Registry:           reg,
		QueryFields:        queryFields,
		MutationFields:     mutationFields,
		SubscriptionFields: subscriptionFields,
		ExtraTypes:         extraTypes,
		Directives:         directives,
	}, nil
}

// Build materializes the graphql.Schema. Mutation and Subscription root
// types are only set when at least one field was registered for them,
// matching graphql-go's expectation that unused root types be nil
// rather than empty objects.
func (a *Assembly) Build() (graphql.Schema, error) {
	cfg := graphql.SchemaConfig{
		Query: graphql.NewObject(graphql.ObjectConfig{
			Name:   "Query",
			Fields: a.QueryFields,
		}),
		Types:      a.ExtraTypes,
		Directives: append(graphql.SpecifiedDirectives, a.Directives...),
	}
	if len(a.MutationFields) > 0 {
		cfg.Mutation = graphql.NewObject(graphql.ObjectConfig{
			Name:   "Mutation",
			Fields: a.MutationFields,
		})
	}
	if len(a.SubscriptionFields) > 0 {
		cfg.Subscription = graphql.NewObject(graphql.ObjectConfig{
			Name:   "Subscription",
			Fields: a.SubscriptionFields,
		})
	}
	return graphql.NewSchema(cfg)
}
