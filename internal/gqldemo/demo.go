// Package gqldemo builds a small but representative registry — a
// Query, a Subscription, and one federated entity — that cmd/gqlserver
// and cmd/gqlgen both assemble. A real deployment replaces this with
// its own domain registry; this package only exists so the two binaries
// have something concrete to run and generate against.
package gqldemo

import (
	"context"
	"fmt"
	"time"

	"github.com/mrhoseah/gqlrt/internal/gqlconnection"
	"github.com/mrhoseah/gqlrt/internal/gqlnode"
	"github.com/mrhoseah/gqlrt/internal/gqlschema"
)

// Widget is the one struct this demo exposes as both a plain object
// and a federation entity.
type Widget struct {
	ID    string `graphql:"id"`
	Name  string `graphql:"name"`
	Price int    `graphql:"price"`
}

// catalog backs the "widgets" connection and the "node" lookup with a
// small, stable, in-memory list — a real registry replaces this with
// whatever storage layer loads its domain objects.
var catalog = []Widget{
	{ID: "1", Name: "Alpha Widget", Price: 10},
	{ID: "2", Name: "Beta Widget", Price: 20},
	{ID: "3", Name: "Gamma Widget", Price: 30},
	{ID: "4", Name: "Delta Widget", Price: 40},
}

func findWidget(id string) (Widget, bool) {
	for _, w := range catalog {
		if w.ID == id {
			return w, true
		}
	}
	return Widget{}, false
}

// widgetNode is the Widget struct expressed as a gqlschema.StructNode.
// Introspector works the other way around — it inspects an already-built
// Node, it does not build one from a Go value by reflection — so a real
// registry hand-writes its StructNode literal the way this one does.
func widgetNode() gqlschema.Node {
	return gqlschema.WithIdentifier(gqlschema.StructNode{
		Fields: []gqlschema.Field{
			{Name: "id", Node: gqlschema.StringNode{}},
			{Name: "name", Node: gqlschema.StringNode{}},
			{Name: "price", Node: gqlschema.IntNode{}},
		},
		Description: "A demo product exposed as a federation entity.",
	}, "Widget")
}

// connectionNode describes a Relay connection over a Node-shaped
// element, following the standard edges/pageInfo envelope that
// gqlconnection.Paginate fills in.
func connectionNode(elem gqlschema.Node) gqlschema.Node {
	edge := gqlschema.StructNode{Fields: []gqlschema.Field{
		{Name: "node", Node: elem},
		{Name: "cursor", Node: gqlschema.StringNode{}},
	}}
	pageInfo := gqlschema.StructNode{Fields: []gqlschema.Field{
		{Name: "hasNextPage", Node: gqlschema.BoolNode{}},
		{Name: "hasPreviousPage", Node: gqlschema.BoolNode{}},
		{Name: "startCursor", Node: gqlschema.StringNode{}, Optional: true},
		{Name: "endCursor", Node: gqlschema.StringNode{}, Optional: true},
	}}
	return gqlschema.StructNode{Fields: []gqlschema.Field{
		{Name: "edges", Node: gqlschema.ArrayNode{Elem: edge}},
		{Name: "pageInfo", Node: pageInfo},
	}}
}

// nodeRegistry wires Relay Global Object Identification for this
// registry's one entity type; a real registry calls Register once per
// Node-implementing type instead of the single Widget registration here.
var nodeRegistry = func() *gqlnode.Registry {
	reg := gqlnode.NewRegistry()
	reg.Register("Widget", nil, func(ctx context.Context, id string) (any, error) {
		w, ok := findWidget(id)
		if !ok {
			return nil, fmt.Errorf("gqldemo: no widget with id %q", id)
		}
		return w, nil
	})
	return reg
}()

// Registry builds the demo gqlschema.Registry.
func Registry() gqlschema.Registry {
	widget := widgetNode()

	b := gqlschema.NewBuilder().
		Object(gqlschema.ObjectTypeReg{Name: "Widget", Schema: widget}).
		Query(gqlschema.FieldReg{
			Name: "widget",
			ArgsSchema: gqlschema.StructNode{Fields: []gqlschema.Field{
				{Name: "id", Node: gqlschema.StringNode{}},
			}},
			ReturnType:  widget,
			Description: "Fetch a single demo widget by id.",
			Resolve: func(args map[string]any) gqlschema.Effect {
				return func(ctx context.Context) (any, error) {
					id, _ := args["id"].(string)
					return Widget{ID: id, Name: "Demo Widget", Price: 42}, nil
				}
			},
		}).
		Query(gqlschema.FieldReg{
			Name: "node",
			ArgsSchema: gqlschema.StructNode{Fields: []gqlschema.Field{
				{Name: "id", Node: gqlschema.StringNode{}},
			}},
			ReturnType:  widget,
			Description: "Fetch any registered Node by its opaque global id.",
			Resolve: func(args map[string]any) gqlschema.Effect {
				return func(ctx context.Context) (any, error) {
					globalID, _ := args["id"].(string)
					value, _, err := nodeRegistry.Resolve(ctx, globalID)
					return value, err
				}
			},
		}).
		Query(gqlschema.FieldReg{
			Name: "widgets",
			ArgsSchema: gqlschema.StructNode{Fields: []gqlschema.Field{
				{Name: "first", Node: gqlschema.IntNode{}, Optional: true},
				{Name: "last", Node: gqlschema.IntNode{}, Optional: true},
				{Name: "after", Node: gqlschema.StringNode{}, Optional: true},
				{Name: "before", Node: gqlschema.StringNode{}, Optional: true},
			}},
			ReturnType:  connectionNode(widget),
			Description: "Page through the demo widget catalog Relay-style.",
			Resolve: func(args map[string]any) gqlschema.Effect {
				return func(ctx context.Context) (any, error) {
					page, err := gqlconnection.Paginate(catalog, connectionArgs(args))
					if err != nil {
						return nil, err
					}
					return connectionResult(page), nil
				}
			},
		}).
		Subscription(gqlschema.SubscriptionFieldReg{
			Name:        "ticker",
			ReturnType:  widget,
			Description: "Streams an incrementing demo widget price once a second.",
			Subscribe: func(args map[string]any) (gqlschema.Stream, error) {
				return newTickerStream(), nil
			},
		}).
		Entity(gqlschema.EntityReg{
			Name:   "Widget",
			Schema: widget,
			Keys:   []string{"id"},
			ResolveReference: func(ctx context.Context, representation map[string]any) (any, error) {
				id, _ := representation["id"].(string)
				return map[string]any{"id": id, "name": fmt.Sprintf("Widget %s", id), "price": 10}, nil
			},
		})

	if err := b.Err(); err != nil {
		panic(fmt.Sprintf("gqldemo: invalid demo registry: %v", err))
	}
	return b.Registry()
}

// connectionArgs pulls the four standard Relay pagination arguments
// out of a resolver's raw args map.
func connectionArgs(args map[string]any) gqlconnection.Args {
	var a gqlconnection.Args
	if v, ok := args["first"].(int); ok {
		a.First = &v
	}
	if v, ok := args["last"].(int); ok {
		a.Last = &v
	}
	if v, ok := args["after"].(string); ok {
		a.After = &v
	}
	if v, ok := args["before"].(string); ok {
		a.Before = &v
	}
	return a
}

// connectionResult turns a gqlconnection.Connection into the plain
// map shape connectionNode's StructNode describes.
func connectionResult(page gqlconnection.Connection[Widget]) map[string]any {
	edges := make([]map[string]any, len(page.Edges))
	for i, e := range page.Edges {
		edges[i] = map[string]any{"node": e.Node, "cursor": e.Cursor}
	}
	return map[string]any{
		"edges": edges,
		"pageInfo": map[string]any{
			"hasNextPage":     page.PageInfo.HasNextPage,
			"hasPreviousPage": page.PageInfo.HasPreviousPage,
			"startCursor":     page.PageInfo.StartCursor,
			"endCursor":       page.PageInfo.EndCursor,
		},
	}
}

type tickerStream struct {
	price int
}

func newTickerStream() *tickerStream { return &tickerStream{price: 0} }

func (s *tickerStream) Next(ctx context.Context) (any, bool, error) {
	select {
	case <-ctx.Done():
		return nil, false, ctx.Err()
	case <-time.After(time.Second):
		s.price++
		return Widget{ID: "ticker", Name: "Ticking Widget", Price: s.price}, true, nil
	}
}

func (s *tickerStream) Close() {}
