package gqltransport

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/graphql-go/graphql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrhoseah/gqlrt/internal/gqlexec"
	"github.com/mrhoseah/gqlrt/internal/gqlschema"
)

func buildSubscriptionSchema(t *testing.T) graphql.Schema {
	t.Helper()
	schema, err := graphql.NewSchema(graphql.SchemaConfig{
		Query: graphql.NewObject(graphql.ObjectConfig{
			Name:   "Query",
			Fields: graphql.Fields{"hello": &graphql.Field{Type: graphql.String, Resolve: func(p graphql.ResolveParams) (any, error) { return "world", nil }}},
		}),
		Subscription: graphql.NewObject(graphql.ObjectConfig{
			Name: "Subscription",
			Fields: graphql.Fields{"countdown": &graphql.Field{
				Type:    graphql.Int,
				Resolve: func(p graphql.ResolveParams) (any, error) { return p.Source, nil },
			}},
		}),
	})
	require.NoError(t, err)
	return schema
}

type countdownStream struct {
	mu        sync.Mutex
	remaining int
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

func (s *countdownStream) Close() {}

// TestSSEHandlerStreamsNextThenComplete exercises S4 over SSE: a
// countdown subscription streams values then a complete event.
func TestSSEHandlerStreamsNextThenComplete(t *testing.T) {
	engine, subs := buildCountdownEngine(t)
	handler := &SSEHandler{Engine: engine, Subscriptions: subs, KeepAlive: time.Hour}

	body := strings.NewReader(`{"query":"subscription { countdown }"}`)
	req := httptest.NewRequest(http.MethodPost, "/graphql/stream", body)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	scanner := bufio.NewScanner(strings.NewReader(rec.Body.String()))
	var events []string
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "event: ") {
			events = append(events, strings.TrimPrefix(line, "event: "))
		}
	}
	require.NotEmpty(t, events)
	assert.Equal(t, "complete", events[len(events)-1])
	for _, e := range events[:len(events)-1] {
		assert.Equal(t, "next", e)
	}
}

func buildCountdownEngine(t *testing.T) (*gqlexec.Engine, map[string]gqlschema.SubscriptionFieldReg) {
	t.Helper()
	schema := buildSubscriptionSchema(t)
	stream := &countdownStream{remaining: 2}
	subs := map[string]gqlschema.SubscriptionFieldReg{
		"countdown": {
			Name: "countdown",
			Subscribe: func(args map[string]any) (gqlschema.Stream, error) {
				return stream, nil
			},
		},
	}
	return gqlexec.New(schema), subs
}
