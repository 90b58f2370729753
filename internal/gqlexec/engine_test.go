package gqlexec

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/graphql-go/graphql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrhoseah/gqlrt/internal/gqlschema"
)

func buildHelloSchema(t *testing.T) graphql.Schema {
	t.Helper()
	schema, err := graphql.NewSchema(graphql.SchemaConfig{
		Query: graphql.NewObject(graphql.ObjectConfig{
			Name: "Query",
			Fields: graphql.Fields{
				"hello": &graphql.Field{
					Type: graphql.String,
					Resolve: func(p graphql.ResolveParams) (any, error) {
						return "world", nil
					},
				},
			},
		}),
	})
	require.NoError(t, err)
	return schema
}

func TestEngineExecuteSuccess(t *testing.T) {
	e := New(buildHelloSchema(t))
	result := e.Execute(context.Background(), Request{Query: "{ hello }"})
	require.Empty(t, result.Errors)
	data := result.Data.(map[string]any)
	assert.Equal(t, "world", data["hello"])
}

func TestEngineExecuteParseFailure(t *testing.T) {
	e := New(buildHelloSchema(t))
	result := e.Execute(context.Background(), Request{Query: "{ hello"})
	assert.NotEmpty(t, result.Errors)
}

func TestEngineExecuteValidateFailure(t *testing.T) {
	e := New(buildHelloSchema(t))
	result := e.Execute(context.Background(), Request{Query: "{ nope }"})
	assert.NotEmpty(t, result.Errors)
}

func TestEngineExtensionHooksRunInOrder(t *testing.T) {
	var mu sync.Mutex
	var calls []string
	record := func(name string) { mu.Lock(); calls = append(calls, name); mu.Unlock() }

	ext := gqlschema.ExtensionReg{
		Name: "tracker",
		OnParse: func(ctx context.Context, source string) (context.Context, error) {
			record("parse")
			return ctx, nil
		},
		OnValidate: func(ctx context.Context) (context.Context, error) {
			record("validate")
			return ctx, nil
		},
		OnExecuteStart: func(ctx context.Context) context.Context {
			record("executeStart")
			return ctx
		},
		OnExecuteEnd: func(ctx context.Context, errs []error) {
			record("executeEnd")
		},
	}

	e := New(buildHelloSchema(t), WithExtensions(ext))
	result := e.Execute(context.Background(), Request{Query: "{ hello }"})
	require.Empty(t, result.Errors)
	assert.Equal(t, []string{"parse", "validate", "executeStart", "executeEnd"}, calls)
}

type countdownStream struct {
	remaining int
	mu        sync.Mutex
	closed    bool
}

func (s *countdownStream) Next(ctx context.Context) (any, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.remaining <= 0 {
		return nil, false, nil
	}
	v := s.remaining
	s.remaining--
	return v, true, nil
}

func (s *countdownStream) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

// TestEngineExecuteSubscriptionCountdown exercises S4: a subscription
// that streams a countdown, re-executing the selection set per value.
func TestEngineExecuteSubscriptionCountdown(t *testing.T) {
	subField := &graphql.Field{
		Type: graphql.Int,
		Resolve: func(p graphql.ResolveParams) (any, error) {
			return p.Source, nil
		},
	}
	schema, err := graphql.NewSchema(graphql.SchemaConfig{
		Query: graphql.NewObject(graphql.ObjectConfig{
			Name:   "Query",
			Fields: graphql.Fields{"hello": &graphql.Field{Type: graphql.String, Resolve: func(p graphql.ResolveParams) (any, error) { return "world", nil }}},
		}),
		Subscription: graphql.NewObject(graphql.ObjectConfig{
			Name:   "Subscription",
			Fields: graphql.Fields{"countdown": subField},
		}),
	})
	require.NoError(t, err)

	stream := &countdownStream{remaining: 3}
	subs := map[string]gqlschema.SubscriptionFieldReg{
		"countdown": {
			Name: "countdown",
			Subscribe: func(args map[string]any) (gqlschema.Stream, error) {
				return stream, nil
			},
		},
	}

	e := New(schema)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	out, err := e.ExecuteSubscription(ctx, subs, Request{Query: "subscription { countdown }"})
	require.NoError(t, err)

	var values []int
	for result := range out {
		require.Empty(t, result.Errors)
		data := result.Data.(map[string]any)
		values = append(values, data["countdown"].(int))
	}
	assert.Equal(t, []int{3, 2, 1}, values)
	assert.True(t, stream.closed)
}
