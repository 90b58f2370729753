// Package gqlnode implements Relay's Global Object Identification: a
// base64 "type:id" opaque global ID, the shared Node interface type,
// and a registry resolving a global ID back to the concrete object a
// host application registered a resolver for.
package gqlnode

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"sync"

	"github.com/graphql-go/graphql"
)

// Resolver fetches the concrete value behind one type's local id.
type Resolver func(ctx context.Context, id string) (any, error)

// Registry maps a type name to the Resolver that knows how to load
// it, and to the already-built *graphql.Object Node resolution returns
// (so ResolveType in the Node interface can pick the right one).
type Registry struct {
	mu        sync.RWMutex
	resolvers map[string]Resolver
	types     map[string]*graphql.Object
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{resolvers: map[string]Resolver{}, types: map[string]*graphql.Object{}}
}

// Register associates a type name with the object type it resolves to
// and the function that loads one instance by its local id.
func (r *Registry) Register(typeName string, obj *graphql.Object, resolve Resolver) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.types[typeName] = obj
	r.resolvers[typeName] = resolve
}

// Resolve decodes a global ID and loads the concrete value it names.
func (r *Registry) Resolve(ctx context.Context, globalID string) (any, string, error) {
	typeName, localID, err := DecodeID(globalID)
	if err != nil {
		return nil, "", err
	}
	r.mu.RLock()
	resolve, ok := r.resolvers[typeName]
	r.mu.RUnlock()
	if !ok {
		return nil, "", fmt.Errorf("gqlnode: no resolver registered for type %q", typeName)
	}
	value, err := resolve(ctx, localID)
	return value, typeName, err
}

// EncodeID builds the opaque global ID Relay clients pass back as
// `node(id: ...)`'s argument.
func EncodeID(typeName, localID string) string {
	return base64.StdEncoding.EncodeToString([]byte(typeName + ":" + localID))
}

// DecodeID reverses EncodeID.
func DecodeID(globalID string) (typeName, localID string, err error) {
	raw, err := base64.StdEncoding.DecodeString(globalID)
	if err != nil {
		return "", "", fmt.Errorf("gqlnode: invalid global id: %w", err)
	}
	parts := strings.SplitN(string(raw), ":", 2)
	if len(parts) != 2 {
		return "", "", fmt.Errorf("gqlnode: malformed global id")
	}
	return parts[0], parts[1], nil
}

// Interface is the shared `Node` GraphQL interface every registered
// object type should implement.
func (r *Registry) Interface() *graphql.Interface {
	return graphql.NewInterface(graphql.InterfaceConfig{
		Name: "Node",
		Fields: graphql.Fields{
			"id": &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		},
		ResolveType: func(p graphql.ResolveTypeParams) *graphql.Object {
			m, ok := p.Value.(map[string]any)
			if !ok {
				return nil
			}
			typeName, ok := m["__typename"].(string)
			if !ok {
				return nil
			}
			r.mu.RLock()
			defer r.mu.RUnlock()
			return r.types[typeName]
		},
	})
}

// Field builds the root `node(id: ID!): Node` query field.
func (r *Registry) Field() *graphql.Field {
	return &graphql.Field{
		Type: r.Interface(),
		Args: graphql.FieldConfigArgument{
			"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
		},
		Resolve: func(p graphql.ResolveParams) (any, error) {
			id, _ := p.Args["id"].(string)
			value, typeName, err := r.Resolve(p.Context, id)
			if err != nil {
				return nil, err
			}
			if m, ok := value.(map[string]any); ok {
				m["__typename"] = typeName
			}
			return value, nil
		},
	}
}
