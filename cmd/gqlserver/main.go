// Command gqlserver boots the GraphQL runtime as a standalone HTTP
// service: it loads gqlconfig, assembles gqldemo's registry, and
// mounts the query/mutation endpoint, the graphql-transport-ws and SSE
// subscription transports, Prometheus metrics, and (when enabled) the
// Apollo Federation subgraph contract on a chi router — the same
// bootstrap shape as the teacher's own cmd/dolphin serve command:
// load config, build a logger, build the router, listen, drain on
// SIGINT/SIGTERM.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/mrhoseah/gqlrt/internal/gqlassemble"
	"github.com/mrhoseah/gqlrt/internal/gqlconfig"
	"github.com/mrhoseah/gqlrt/internal/gqldemo"
	"github.com/mrhoseah/gqlrt/internal/gqlexec"
	"github.com/mrhoseah/gqlrt/internal/gqlfederation"
	"github.com/mrhoseah/gqlrt/internal/gqlhttp"
	"github.com/mrhoseah/gqlrt/internal/gqllog"
	"github.com/mrhoseah/gqlrt/internal/gqlmetrics"
	appmiddleware "github.com/mrhoseah/gqlrt/internal/middleware"
	loggingmiddleware "github.com/mrhoseah/gqlrt/internal/middleware/logging"
	recoverymiddleware "github.com/mrhoseah/gqlrt/internal/middleware/recovery"
	"github.com/mrhoseah/gqlrt/internal/gqlpersisted"
	"github.com/mrhoseah/gqlrt/internal/gqlschema"
	"github.com/mrhoseah/gqlrt/internal/gqltrace"
	"github.com/mrhoseah/gqlrt/internal/gqltransport"
)

func main() {
	cfg, err := gqlconfig.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "loading config:", err)
		os.Exit(1)
	}

	logger := gqllog.New(cfg.Log.Level, cfg.Log.Format)
	defer logger.Sync()

	tracer, err := gqltrace.New(&gqltrace.Config{
		Enabled:        cfg.Tracing.Enabled,
		ServiceName:    cfg.App.Name,
		Environment:    cfg.App.Environment,
		Sampler:        cfg.Tracing.Sampler,
		Ratio:          cfg.Tracing.Ratio,
		JaegerEndpoint: cfg.Tracing.JaegerEndpoint,
		ZipkinEndpoint: cfg.Tracing.ZipkinEndpoint,
		OTLPEndpoint:   cfg.Tracing.OTLPEndpoint,
	}, logger)
	if err != nil {
		logger.Fatal("starting tracer", zap.Error(err))
	}
	defer tracer.Shutdown(context.Background())

	reg := gqldemo.Registry()
	assembly, err := gqlassemble.Assemble(reg)
	if err != nil {
		logger.Fatal("assembling registry", zap.Error(err))
	}
	schema, err := assembly.Build()
	if err != nil {
		logger.Fatal("building schema", zap.Error(err))
	}

	if cfg.Federation.Enabled {
		layer := gqlfederation.New(reg, assembly.Mapper, logger)
		sdl := gqlfederation.GenerateSDL(schema, reg)
		if err := gqlfederation.Extend(schema, layer, sdl); err != nil {
			logger.Fatal("extending schema for federation", zap.Error(err))
		}
	}

	engine := gqlexec.New(schema,
		gqlexec.WithTracer(tracer),
		gqlexec.WithLogger(logger),
		gqlexec.WithExtensions(reg.Extensions...),
		gqlexec.WithAnalyzer(&gqlexec.Analyzer{
			MaxDepth:      cfg.Execution.MaxDepth,
			MaxComplexity: cfg.Execution.MaxComplexity,
		}),
	)

	metrics := gqlmetrics.New(gqlmetrics.DefaultConfig())
	persisted := gqlpersisted.NewManager(persistedStorage(cfg.Cache, logger))

	router := buildRouter(cfg, logger, metrics, persisted, engine, reg.Subscriptions)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	go func() {
		logger.Info("gqlserver listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("graceful shutdown failed", zap.Error(err))
	}
	logger.Info("shut down cleanly")
}

// wsUpgrader is permissive about origin the way a demo server can
// afford to be; a production host narrows CheckOrigin to its own
// front-end's domains.
var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// persistedStorage picks the Automatic Persisted Queries backend per
// cfg.Cache.Driver: "redis" for multi-instance deployments that need a
// shared hash→query store, anything else (including the zero value)
// falls back to gqlpersisted's in-process map.
func persistedStorage(cfg gqlconfig.CacheConfig, logger *zap.Logger) gqlpersisted.Storage {
	if cfg.Driver != "redis" {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr: fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		DB:   cfg.DB,
	})
	logger.Info("persisted queries backed by redis", zap.String("addr", client.Options().Addr))
	return gqlpersisted.NewRedisStorage(client)
}

func buildRouter(
	cfg *gqlconfig.Config,
	logger *zap.Logger,
	metrics *gqlmetrics.Collector,
	persisted *gqlpersisted.Manager,
	engine *gqlexec.Engine,
	subs map[string]gqlschema.SubscriptionFieldReg,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(appmiddleware.SecurityHeadersMiddleware())
	r.Use(cors.New(cors.Options{
		AllowedOrigins:   corsOrigins(cfg.Server.CORSOrigins),
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler)
	r.Use(requestIDMiddleware)
	r.Use(recoverymiddleware.New(logger))
	r.Use(loggingmiddleware.New(logger))
	r.Use(middleware.Timeout(cfg.RequestTimeout()))

	r.Get("/healthz", gqlhttp.HealthHandler)
	r.Handle("/metrics", gqlmetrics.Handler())

	graphQLHandler := gqlhttp.NewHandler(engine, logger, cfg.Server.GraphiQL).
		WithMetrics(metrics).
		WithPersistedQueries(persisted)
	r.Handle("/graphql", graphQLHandler)

	r.Get("/graphql/ws", func(w http.ResponseWriter, req *http.Request) {
		conn, err := wsUpgrader.Upgrade(w, req, nil)
		if err != nil {
			logger.Warn("websocket upgrade failed", zap.Error(err))
			return
		}
		socket := gqltransport.NewWebSocketSocket(conn)
		connection := gqltransport.NewConnection(socket, engine, subs, 15*time.Second, logger)
		if err := connection.Serve(req.Context()); err != nil {
			logger.Warn("subscription connection ended with error", zap.Error(err))
		}
	})

	sse := &gqltransport.SSEHandler{Engine: engine, Subscriptions: subs, Logger: logger}
	r.Handle("/graphql/stream", sse)

	return r
}

func corsOrigins(configured []string) []string {
	if len(configured) == 0 {
		return []string{"*"}
	}
	return configured
}

// requestIDMiddleware stamps a uuid onto every request missing a
// correlation id, so every log line and trace span can be tied back to
// one client request even across the WS/SSE transports that don't
// otherwise share chi's own request-scoped middleware stack.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if req.Header.Get("X-Request-Id") == "" {
			req.Header.Set("X-Request-Id", uuid.NewString())
		}
		w.Header().Set("X-Request-Id", req.Header.Get("X-Request-Id"))
		next.ServeHTTP(w, req)
	})
}
