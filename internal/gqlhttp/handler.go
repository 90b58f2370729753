// Package gqlhttp exposes a gqlexec.Engine over HTTP: a POST /graphql
// endpoint, an optional GraphiQL page, and health/status endpoints,
// generalized from the teacher's own GraphQL HTTP surface.
package gqlhttp

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/render"
	"github.com/graphql-go/graphql/gqlerrors"
	"go.uber.org/zap"

	"github.com/mrhoseah/gqlrt/internal/gqlexec"
	"github.com/mrhoseah/gqlrt/internal/gqlpersisted"
)

// RequestObserver receives one completed request's timing, the narrow
// seam gqlmetrics.Collector satisfies so this package never has to
// import Prometheus directly.
type RequestObserver interface {
	ObserveRequest(operationName string, hasErrors bool, duration time.Duration)
}

type noopObserver struct{}

func (noopObserver) ObserveRequest(string, bool, time.Duration) {}

// Handler serves one engine's queries and mutations over HTTP.
type Handler struct {
	Engine         *gqlexec.Engine
	Logger         *zap.Logger
	EnableGraphiQL bool
	Metrics        RequestObserver
	Persisted      *gqlpersisted.Manager
}

// NewHandler builds a Handler. A nil logger defaults to a no-op one.
func NewHandler(engine *gqlexec.Engine, logger *zap.Logger, enableGraphiQL bool) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{Engine: engine, Logger: logger, EnableGraphiQL: enableGraphiQL, Metrics: noopObserver{}}
}

// WithMetrics attaches a RequestObserver the handler reports every
// completed request's operation name, error status, and duration to.
func (h *Handler) WithMetrics(m RequestObserver) *Handler {
	h.Metrics = m
	return h
}

// WithPersistedQueries enables Automatic Persisted Queries: a request
// carrying extensions.persistedQuery but no query text is resolved
// against m instead of being rejected for a missing query.
func (h *Handler) WithPersistedQueries(m *gqlpersisted.Manager) *Handler {
	h.Persisted = m
	return h
}

// requestBody is the standard GraphQL-over-HTTP POST body.
type requestBody struct {
	Query         string            `json:"query"`
	Variables     map[string]any    `json:"variables"`
	OperationName string            `json:"operationName"`
	Extensions    requestExtensions `json:"extensions"`
}

type requestExtensions struct {
	PersistedQuery *persistedQueryExtension `json:"persistedQuery"`
}

type persistedQueryExtension struct {
	Version    int    `json:"version"`
	Sha256Hash string `json:"sha256Hash"`
}

// responseBody mirrors graphql.Result's public shape for JSON encoding.
type responseBody struct {
	Data   any                        `json:"data,omitempty"`
	Errors []gqlerrors.FormattedError `json:"errors,omitempty"`
}

// ServeHTTP executes one request. Only POST is accepted for query
// execution; GET serves GraphiQL when enabled.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodOptions:
		w.WriteHeader(http.StatusOK)
		return
	case http.MethodGet:
		if h.EnableGraphiQL {
			h.serveGraphiQL(w, r)
			return
		}
		h.writeError(w, r, http.StatusMethodNotAllowed, "GET is not supported on this endpoint")
		return
	case http.MethodPost:
		h.serveQuery(w, r)
		return
	default:
		h.writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *Handler) serveQuery(w http.ResponseWriter, r *http.Request) {
	var req requestBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	if h.Persisted != nil && req.Extensions.PersistedQuery != nil {
		resolved, err := h.Persisted.Resolve(req.Extensions.PersistedQuery.Sha256Hash, req.Query)
		if err != nil {
			h.writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		req.Query = resolved
	}
	if strings.TrimSpace(req.Query) == "" {
		h.writeError(w, r, http.StatusBadRequest, "query is required")
		return
	}

	start := time.Now()
	result := h.Engine.Execute(r.Context(), gqlexec.Request{
		Query:         req.Query,
		OperationName: req.OperationName,
		Variables:     req.Variables,
	})

	render.JSON(w, r, responseBody{Data: result.Data, Errors: result.Errors})

	duration := time.Since(start)
	hasErrors := len(result.Errors) > 0
	h.Logger.Info("graphql request",
		zap.String("operation_name", req.OperationName),
		zap.Duration("duration", duration),
		zap.Bool("has_errors", hasErrors),
	)
	h.Metrics.ObserveRequest(req.OperationName, hasErrors, duration)
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	render.Status(r, status)
	render.JSON(w, r, map[string]any{"error": message, "status": status})
}

// HealthHandler reports liveness, independent of schema/engine state.
func HealthHandler(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]any{"status": "ok", "timestamp": time.Now().Unix()})
}

func (h *Handler) serveGraphiQL(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	w.Write([]byte(graphiQLPage))
}

const graphiQLPage = `<!DOCTYPE html>
<html>
<head>
  <title>GraphiQL</title>
  <link href="https://unpkg.com/graphiql/graphiql.min.css" rel="stylesheet" />
</head>
<body style="margin:0;">
  <div id="graphiql" style="height:100vh;"></div>
  <script src="https://unpkg.com/react/umd/react.production.min.js"></script>
  <script src="https://unpkg.com/react-dom/umd/react-dom.production.min.js"></script>
  <script src="https://unpkg.com/graphiql/graphiql.min.js"></script>
  <script>
    const fetcher = GraphiQL.createFetcher({ url: '/graphql' });
    ReactDOM.render(React.createElement(GraphiQL, { fetcher }), document.getElementById('graphiql'));
  </script>
</body>
</html>`
