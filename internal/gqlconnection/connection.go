// Package gqlconnection implements Relay-style cursor pagination: the
// PageInfo/Edge/Connection shapes, the standard first/last/after/before
// arguments, and a generic in-memory paginator a resolver can call
// after it has already loaded (or streamed) the full candidate slice.
package gqlconnection

import (
	"encoding/base64"
	"fmt"
	"math"

	"github.com/graphql-go/graphql"
)

// PageInfo reports whether more pages exist in either direction.
type PageInfo struct {
	HasNextPage     bool
	HasPreviousPage bool
	StartCursor     *string
	EndCursor       *string
}

// Edge pairs one item with its opaque cursor.
type Edge[T any] struct {
	Node   T
	Cursor string
}

// Connection is the paginated result a connection field resolves to.
type Connection[T any] struct {
	Edges    []Edge[T]
	PageInfo PageInfo
}

// Args are the four standard Relay connection arguments.
type Args struct {
	First  *int
	Last   *int
	After  *string
	Before *string
}

// Validate enforces the mutual-exclusion and non-negativity rules
// every Relay connection field must reject bad input against.
func (a Args) Validate() error {
	if a.First != nil && a.Last != nil {
		return fmt.Errorf("gqlconnection: cannot specify both first and last")
	}
	if a.After != nil && a.Before != nil {
		return fmt.Errorf("gqlconnection: cannot specify both after and before")
	}
	if a.First != nil && *a.First < 0 {
		return fmt.Errorf("gqlconnection: first must be non-negative")
	}
	if a.Last != nil && *a.Last < 0 {
		return fmt.Errorf("gqlconnection: last must be non-negative")
	}
	return nil
}

// EncodeCursor opaquely encodes a zero-based offset. Callers outside
// this package must treat the result as opaque; only DecodeCursor may
// interpret it.
func EncodeCursor(offset int) string {
	return base64.StdEncoding.EncodeToString([]byte(fmt.Sprintf("offset:%d", offset)))
}

// DecodeCursor reverses EncodeCursor, returning the zero-based offset
// it was built from.
func DecodeCursor(cursor string) (int, error) {
	decoded, err := base64.StdEncoding.DecodeString(cursor)
	if err != nil {
		return 0, fmt.Errorf("gqlconnection: invalid cursor: %w", err)
	}
	var offset int
	if _, err := fmt.Sscanf(string(decoded), "offset:%d", &offset); err != nil {
		return 0, fmt.Errorf("gqlconnection: invalid cursor payload: %w", err)
	}
	return offset, nil
}

// Paginate slices items per args' first/last/after/before window and
// builds the resulting edges and PageInfo. It assumes items already
// represents the full, stably ordered candidate set (spec.md's
// Non-goals exclude cursor-based database pushdown; this operates
// purely in memory, same as the teacher's own PaginationHelper did).
func Paginate[T any](items []T, args Args) (Connection[T], error) {
	if err := args.Validate(); err != nil {
		return Connection[T]{}, err
	}

	total := len(items)
	start, end := 0, total

	if args.After != nil {
		if offset, err := DecodeCursor(*args.After); err == nil {
			start = offset + 1
		}
	}
	if args.Before != nil {
		if offset, err := DecodeCursor(*args.Before); err == nil {
			end = offset
		}
	}
	if start < 0 {
		start = 0
	}
	if end > total {
		end = total
	}
	if start > end {
		start = end
	}

	if args.First != nil && end-start > *args.First {
		end = start + *args.First
	}
	if args.Last != nil && end-start > *args.Last {
		start = end - *args.Last
	}

	window := items[start:end]
	edges := make([]Edge[T], len(window))
	for i, item := range window {
		edges[i] = Edge[T]{Node: item, Cursor: EncodeCursor(start + i)}
	}

	var startCursor, endCursor *string
	if len(edges) > 0 {
		s, e := edges[0].Cursor, edges[len(edges)-1].Cursor
		startCursor, endCursor = &s, &e
	}

	return Connection[T]{
		Edges: edges,
		PageInfo: PageInfo{
			HasNextPage:     end < total,
			HasPreviousPage: start > 0,
			StartCursor:     startCursor,
			EndCursor:       endCursor,
		},
	}, nil
}

// TotalPages reports how many pages of the given size items spans.
func TotalPages(total, pageSize int) int {
	if pageSize <= 0 {
		return 1
	}
	return int(math.Ceil(float64(total) / float64(pageSize)))
}

// PageInfoType is the shared GraphQL PageInfo object every connection
// type references.
var PageInfoType = graphql.NewObject(graphql.ObjectConfig{
	Name: "PageInfo",
	Fields: graphql.Fields{
		"hasNextPage":     &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean)},
		"hasPreviousPage": &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean)},
		"startCursor":     &graphql.Field{Type: graphql.String},
		"endCursor":       &graphql.Field{Type: graphql.String},
	},
})

// Args is reused below; ConnectionArgsConfig is the FieldConfigArgument
// every connection field shares.
var ConnectionArgsConfig = graphql.FieldConfigArgument{
	"first":  &graphql.ArgumentConfig{Type: graphql.Int},
	"last":   &graphql.ArgumentConfig{Type: graphql.Int},
	"after":  &graphql.ArgumentConfig{Type: graphql.String},
	"before": &graphql.ArgumentConfig{Type: graphql.String},
}

// NewEdgeType builds the `<Name>Edge` object wrapping nodeType.
func NewEdgeType(nodeType graphql.Output) *graphql.Object {
	named, _ := nodeType.(interface{ Name() string })
	name := "Node"
	if named != nil {
		name = named.Name()
	}
	return graphql.NewObject(graphql.ObjectConfig{
		Name: name + "Edge",
		Fields: graphql.Fields{
			"node":   &graphql.Field{Type: nodeType},
			"cursor": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		},
	})
}

// NewConnectionType builds the `<Name>Connection` object wrapping an
// edge type already built by NewEdgeType.
func NewConnectionType(edgeType *graphql.Object) *graphql.Object {
	return graphql.NewObject(graphql.ObjectConfig{
		Name: edgeType.Name() + "Connection",
		Fields: graphql.Fields{
			"edges":    &graphql.Field{Type: graphql.NewList(edgeType)},
			"pageInfo": &graphql.Field{Type: graphql.NewNonNull(PageInfoType)},
		},
	})
}

// ArgsFromResolveParams decodes the standard connection arguments out
// of a graphql.ResolveParams.Args map.
func ArgsFromResolveParams(raw map[string]any) Args {
	var args Args
	if v, ok := raw["first"].(int); ok {
		args.First = &v
	}
	if v, ok := raw["last"].(int); ok {
		args.Last = &v
	}
	if v, ok := raw["after"].(string); ok {
		args.After = &v
	}
	if v, ok := raw["before"].(string); ok {
		args.Before = &v
	}
	return args
}
