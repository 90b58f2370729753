// Package gqlexec runs the per-request pipeline against an assembled
// schema: prepare a dependency container, parse, validate, execute —
// each phase wrapped by the registered extensions and (via Tracer) an
// OpenTelemetry span.
package gqlexec

import (
	"context"
	"fmt"

	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/gqlerrors"
	"github.com/graphql-go/graphql/language/ast"
	"github.com/graphql-go/graphql/language/parser"
	"github.com/graphql-go/graphql/language/source"
	"go.uber.org/zap"

	"github.com/mrhoseah/gqlrt/internal/gqlctx"
	"github.com/mrhoseah/gqlrt/internal/gqlschema"
)

// Tracer is the seam internal/gqltrace implements; the engine only
// needs to open and close named spans around each phase, so it depends
// on this narrow interface rather than on OpenTelemetry types directly.
type Tracer interface {
	StartSpan(ctx context.Context, name string) (context.Context, func())
}

type noopTracer struct{}

func (noopTracer) StartSpan(ctx context.Context, name string) (context.Context, func()) {
	return ctx, func() {}
}

// Request is one query/mutation/subscription invocation.
type Request struct {
	Query         string
	OperationName string
	Variables     map[string]any
	RootValue     map[string]any
}

// Engine owns an assembled schema plus the cross-cutting request
// machinery: the dependency specification handed to every request's
// container, registered extensions, the depth/complexity analyzer, and
// a tracer.
type Engine struct {
	Schema     graphql.Schema
	Extensions []gqlschema.ExtensionReg
	DepSpec    gqlctx.DependencySpec
	Analyzer   *Analyzer
	Tracer     Tracer
	Logger     *zap.Logger
}

// New builds an Engine. A nil Tracer or Logger is replaced with a noop
// implementation so the engine never has to nil-check them at call
// sites.
func New(schema graphql.Schema, opts ...Option) *Engine {
	e := &Engine{
		Schema: schema,
		Tracer: noopTracer{},
		Logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Option configures an Engine at construction.
type Option func(*Engine)

func WithExtensions(ext ...gqlschema.ExtensionReg) Option {
	return func(e *Engine) { e.Extensions = append(e.Extensions, ext...) }
}

func WithDependencySpec(spec gqlctx.DependencySpec) Option {
	return func(e *Engine) { e.DepSpec = spec }
}

func WithAnalyzer(a *Analyzer) Option {
	return func(e *Engine) { e.Analyzer = a }
}

func WithTracer(t Tracer) Option {
	return func(e *Engine) { e.Tracer = t }
}

func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.Logger = l }
}

// Execute runs the full prepare/parse/validate/execute pipeline for a
// query or mutation request (§4.5). Subscriptions are driven by
// ExecuteSubscription instead, since their execute phase yields a
// stream rather than a single result.
func (e *Engine) Execute(ctx context.Context, req Request) *graphql.Result {
	ctx = e.prepare(ctx)

	doc, formattedErrs := e.parse(ctx, req.Query)
	if formattedErrs != nil {
		return &graphql.Result{Errors: formattedErrs}
	}

	if errs := e.validate(ctx, doc); errs != nil {
		return &graphql.Result{Errors: errs}
	}

	if e.Analyzer != nil {
		if analysis := e.Analyzer.Analyze(req.Query); !analysis.Valid {
			errs := make([]error, len(analysis.Errors))
			for i, msg := range analysis.Errors {
				errs[i] = fmt.Errorf("%s", msg)
			}
			return &graphql.Result{Errors: gqlerrors.FormatErrors(errs...)}
		}
	}

	ctx, errs := e.runOnExecuteStart(ctx)
	if errs != nil {
		return &graphql.Result{Errors: gqlerrors.FormatErrors(errs...)}
	}
	spanCtx, end := e.Tracer.StartSpan(ctx, "graphql.execute")
	result := graphql.Execute(graphql.ExecuteParams{
		Schema:        e.Schema,
		Root:          req.RootValue,
		AST:           doc,
		OperationName: req.OperationName,
		Args:          req.Variables,
		Context:       spanCtx,
	})
	end()
	e.runOnExecuteEnd(ctx, toErrors(result.Errors))
	return result
}

// prepare composes the engine's dependency specification with a fresh
// per-request Container and ResolverContext Store (§4.5 step 1, §3
// "request container lifetime equals request lifetime").
func (e *Engine) prepare(ctx context.Context) context.Context {
	container := gqlctx.NewContainer(e.DepSpec)
	ctx = gqlctx.WithContainer(ctx, container)
	ctx = gqlctx.WithStore(ctx, gqlctx.NewStore())
	return ctx
}

func (e *Engine) parse(ctx context.Context, requestString string) (*ast.Document, []gqlerrors.FormattedError) {
	for _, ext := range e.Extensions {
		if ext.OnParse == nil {
			continue
		}
		var err error
		ctx, err = ext.OnParse(ctx, requestString)
		if err != nil {
			return nil, gqlerrors.FormatErrors(err)
		}
	}

	_, end := e.Tracer.StartSpan(ctx, "graphql.parse")
	defer end()

	doc, err := parser.Parse(parser.ParseParams{
		Source: source.NewSource(&source.Source{Body: []byte(requestString), Name: "GraphQL request"}),
	})
	if err != nil {
		return nil, gqlerrors.FormatErrors(err)
	}
	return doc, nil
}

func (e *Engine) validate(ctx context.Context, doc *ast.Document) []gqlerrors.FormattedError {
	for _, ext := range e.Extensions {
		if ext.OnValidate == nil {
			continue
		}
		var err error
		ctx, err = ext.OnValidate(ctx)
		if err != nil {
			return gqlerrors.FormatErrors(err)
		}
	}

	_, end := e.Tracer.StartSpan(ctx, "graphql.validate")
	defer end()

	result := graphql.ValidateDocument(&e.Schema, doc, nil)
	if !result.IsValid {
		return result.Errors
	}
	return nil
}

func (e *Engine) runOnExecuteStart(ctx context.Context) (context.Context, []error) {
	for _, ext := range e.Extensions {
		if ext.OnExecuteStart == nil {
			continue
		}
		ctx = ext.OnExecuteStart(ctx)
	}
	return ctx, nil
}

func (e *Engine) runOnExecuteEnd(ctx context.Context, errs []error) {
	for _, ext := range e.Extensions {
		if ext.OnExecuteEnd != nil {
			ext.OnExecuteEnd(ctx, errs)
		}
	}
}

func toErrors(formatted []gqlerrors.FormattedError) []error {
	out := make([]error, len(formatted))
	for i, f := range formatted {
		out[i] = fmt.Errorf("%s", f.Message)
	}
	return out
}
