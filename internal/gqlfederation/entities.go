package gqlfederation

import (
	"context"
	"sync"

	"github.com/graphql-go/graphql"
	"go.uber.org/zap"

	"github.com/mrhoseah/gqlrt/internal/gqlschema"
	"github.com/mrhoseah/gqlrt/internal/gqltype"
)

// Layer is the built federation support: the _Entity union (if any
// entities were registered) and the resolver the _entities root field
// calls into. It is nil-safe to construct with zero entities, in which
// case Union returns nil, HasEntities reports false, and
// ResolveEntities returns one nil per representation.
type Layer struct {
	entities map[string]gqlschema.EntityReg
	union    *graphql.Union
	logger   *zap.Logger
}

// New builds a Layer from the same registry an assembled schema was
// built from, plus the mapper that schema's object types were cached
// in (entities need the *graphql.Object gqlassemble already built for
// them, not a new one).
func New(reg gqlschema.Registry, mapper *gqltype.Mapper, logger *zap.Logger) *Layer {
	if logger == nil {
		logger = zap.NewNop()
	}
	l := &Layer{entities: reg.Entities, logger: logger}
	if len(reg.Entities) == 0 {
		return l
	}

	var possibleTypes []*graphql.Object
	for name := range reg.Entities {
		if obj, ok := mapper.Object(name); ok {
			possibleTypes = append(possibleTypes, obj)
		}
	}
	if len(possibleTypes) == 0 {
		return l
	}

	l.union = graphql.NewUnion(graphql.UnionConfig{
		Name:  "_Entity",
		Types: possibleTypes,
		ResolveType: func(p graphql.ResolveTypeParams) *graphql.Object {
			m, ok := p.Value.(map[string]any)
			if !ok {
				return nil
			}
			typename, _ := m["__typename"].(string)
			for _, t := range possibleTypes {
				if t.Name() == typename {
					return t
				}
			}
			return nil
		},
	})
	return l
}

// HasEntities reports whether any entity was registered, i.e. whether
// federation root fields should be wired at all.
func (l *Layer) HasEntities() bool { return l != nil && l.union != nil }

// Union returns the _Entity union, or nil if there were no entities.
func (l *Layer) Union() *graphql.Union {
	if l == nil {
		return nil
	}
	return l.union
}

// ResolveEntities implements the _entities(representations) resolver
// (spec.md §4.7 step 4): every representation is resolved concurrently
// with unbounded parallelism, and a failing or unknown-typename
// representation becomes a nil at its index rather than failing the
// whole field.
func (l *Layer) ResolveEntities(ctx context.Context, representations []any) []any {
	results := make([]any, len(representations))
	if l == nil {
		return results
	}

	var wg sync.WaitGroup
	for i, repr := range representations {
		wg.Add(1)
		go func(i int, repr any) {
			defer wg.Done()
			results[i] = l.resolveOne(ctx, repr)
		}(i, repr)
	}
	wg.Wait()
	return results
}

func (l *Layer) resolveOne(ctx context.Context, repr any) any {
	typename, fields, err := ParseRepresentation(repr)
	if err != nil {
		l.logger.Warn("federation: invalid entity representation", zap.Error(err))
		return nil
	}
	entity, ok := l.entities[typename]
	if !ok || entity.ResolveReference == nil {
		l.logger.Warn("federation: no entity registered for __typename", zap.String("typename", typename))
		return nil
	}
	value, err := entity.ResolveReference(ctx, fields)
	if err != nil {
		l.logger.Warn("federation: entity reference resolution failed",
			zap.String("typename", typename), zap.Error(err))
		return nil
	}
	if value == nil {
		return nil
	}
	if m, ok := value.(map[string]any); ok {
		if _, has := m["__typename"]; !has {
			m["__typename"] = typename
		}
		return m
	}
	return value
}
