package gqlhttp

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/graphql-go/graphql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrhoseah/gqlrt/internal/gqlexec"
	"github.com/mrhoseah/gqlrt/internal/gqlpersisted"
)

func buildHelloSchema(t *testing.T) graphql.Schema {
	t.Helper()
	schema, err := graphql.NewSchema(graphql.SchemaConfig{
		Query: graphql.NewObject(graphql.ObjectConfig{
			Name: "Query",
			Fields: graphql.Fields{
				"hello": &graphql.Field{
					Type:    graphql.String,
					Resolve: func(p graphql.ResolveParams) (any, error) { return "world", nil },
				},
			},
		}),
	})
	require.NoError(t, err)
	return schema
}

func TestHandlerServesQuery(t *testing.T) {
	handler := NewHandler(gqlexec.New(buildHelloSchema(t)), nil, false)

	req := httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(`{"query":"{ hello }"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "world")
}

func TestHandlerRejectsEmptyQuery(t *testing.T) {
	handler := NewHandler(gqlexec.New(buildHelloSchema(t)), nil, false)

	req := httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(`{"query":""}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlerGraphiQLDisabledByDefault(t *testing.T) {
	handler := NewHandler(gqlexec.New(buildHelloSchema(t)), nil, false)

	req := httptest.NewRequest(http.MethodGet, "/graphql", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

type recordingObserver struct {
	operationName string
	hasErrors     bool
	calls         int
}

func (r *recordingObserver) ObserveRequest(operationName string, hasErrors bool, _ time.Duration) {
	r.operationName = operationName
	r.hasErrors = hasErrors
	r.calls++
}

func TestHandlerReportsMetricsForCompletedRequest(t *testing.T) {
	observer := &recordingObserver{}
	handler := NewHandler(gqlexec.New(buildHelloSchema(t)), nil, false).WithMetrics(observer)

	req := httptest.NewRequest(http.MethodPost, "/graphql",
		strings.NewReader(`{"query":"{ hello }","operationName":"Greeting"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, observer.calls)
	assert.Equal(t, "Greeting", observer.operationName)
	assert.False(t, observer.hasErrors)
}

func TestHandlerResolvesPersistedQueryOnSecondRequest(t *testing.T) {
	manager := gqlpersisted.NewManager(nil)
	handler := NewHandler(gqlexec.New(buildHelloSchema(t)), nil, false).WithPersistedQueries(manager)

	query := `{ hello }`
	hash := gqlpersisted.Hash(query)

	// First request registers the query text alongside its hash.
	first := httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(
		`{"query":"`+query+`","extensions":{"persistedQuery":{"version":1,"sha256Hash":"`+hash+`"}}}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, first)
	require.Equal(t, http.StatusOK, rec.Code)

	// Second request sends only the hash and expects the same result.
	second := httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(
		`{"extensions":{"persistedQuery":{"version":1,"sha256Hash":"`+hash+`"}}}`))
	rec2 := httptest.NewRecorder()
	handler.ServeHTTP(rec2, second)

	assert.Equal(t, http.StatusOK, rec2.Code)
	assert.Contains(t, rec2.Body.String(), "world")
}

func TestHandlerRejectsUnknownPersistedQueryHash(t *testing.T) {
	manager := gqlpersisted.NewManager(nil)
	handler := NewHandler(gqlexec.New(buildHelloSchema(t)), nil, false).WithPersistedQueries(manager)

	req := httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(
		`{"extensions":{"persistedQuery":{"version":1,"sha256Hash":"deadbeef"}}}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
