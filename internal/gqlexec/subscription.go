package gqlexec

import (
	"context"
	"fmt"

	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/gqlerrors"
	"github.com/graphql-go/graphql/language/ast"
	"github.com/graphql-go/graphql/language/parser"
	"github.com/graphql-go/graphql/language/source"

	"github.com/mrhoseah/gqlrt/internal/gqlfield"
	"github.com/mrhoseah/gqlrt/internal/gqlschema"
)

// ExecuteSubscription runs a subscription request through parse,
// validate, subscribe, then hands the caller a channel of one
// *graphql.Result per published value (§4.5 "for subscriptions: invoke
// subscribe, obtain stream, then for each published value, re-execute
// the selection set on the yielded payload"). Subscription setup
// failure (parse, validate, or Subscribe itself) returns an error and
// no channel; once the stream is open, per-event resolve failures are
// delivered as an error Result but do not close the channel — only the
// stream ending or ctx cancellation does that.
func (e *Engine) ExecuteSubscription(ctx context.Context, subs map[string]gqlschema.SubscriptionFieldReg, req Request) (<-chan *graphql.Result, error) {
	ctx = e.prepare(ctx)

	doc, formattedErrs := e.parse(ctx, req.Query)
	if formattedErrs != nil {
		return nil, formattedToError(formattedErrs)
	}
	if errs := e.validate(ctx, doc); errs != nil {
		return nil, formattedToError(errs)
	}

	fieldName, err := subscriptionRootField(doc, req.OperationName)
	if err != nil {
		return nil, err
	}
	reg, ok := subs[fieldName]
	if !ok {
		return nil, fmt.Errorf("gqlexec: no subscription registered for field %q", fieldName)
	}

	args, err := e.decodeSubscriptionArgs(doc, req.OperationName, fieldName, req.Variables)
	if err != nil {
		return nil, err
	}

	stream, err := gqlfield.OpenStream(reg, args)
	if err != nil {
		return nil, fmt.Errorf("gqlexec: subscribe failed: %w", err)
	}

	out := make(chan *graphql.Result)
	go e.pumpSubscription(ctx, stream, doc, req.OperationName, out)
	return out, nil
}

func (e *Engine) pumpSubscription(ctx context.Context, stream gqlschema.Stream, doc *ast.Document, operationName string, out chan<- *graphql.Result) {
	defer close(out)
	defer stream.Close()

	for {
		payload, ok, err := stream.Next(ctx)
		if err != nil {
			out <- &graphql.Result{Errors: gqlerrors.FormatErrors(err)}
			return
		}
		if !ok {
			return
		}

		spanCtx, end := e.Tracer.StartSpan(ctx, "graphql.execute")
		result := graphql.Execute(graphql.ExecuteParams{
			Schema:        e.Schema,
			Root:          payload,
			AST:           doc,
			OperationName: operationName,
			Context:       spanCtx,
		})
		end()

		select {
		case out <- result:
		case <-ctx.Done():
			return
		}
	}
}

// OperationType parses requestString just far enough to report the
// chosen operation's kind ("query", "mutation", or "subscription"), so
// a transport that accepts mixed operation types (§4.6 "operation
// types other than subscription received on this transport are still
// valid") can decide whether to open a stream or run a single-shot
// execution, without needing to understand GraphQL syntax itself.
func OperationType(requestString, operationName string) (string, error) {
	doc, err := parser.Parse(parser.ParseParams{
		Source: source.NewSource(&source.Source{Body: []byte(requestString), Name: "GraphQL request"}),
	})
	if err != nil {
		return "", fmt.Errorf("gqlexec: %w", err)
	}
	op := selectOperation(doc, operationName)
	if op == nil {
		return "", fmt.Errorf("gqlexec: no operation found")
	}
	if op.Operation == "" {
		return "query", nil
	}
	return op.Operation, nil
}

// subscriptionRootField returns the name of the single field selected
// under the chosen operation's subscription selection set (spec.md §3
// "subscription fields may only appear under the Subscription root" —
// by construction there is exactly one per request).
func subscriptionRootField(doc *ast.Document, operationName string) (string, error) {
	op := selectOperation(doc, operationName)
	if op == nil || op.SelectionSet == nil || len(op.SelectionSet.Selections) == 0 {
		return "", fmt.Errorf("gqlexec: subscription operation has no field selection")
	}
	field, ok := op.SelectionSet.Selections[0].(*ast.Field)
	if !ok {
		return "", fmt.Errorf("gqlexec: subscription root selection must be a field")
	}
	return field.Name.Value, nil
}

// decodeSubscriptionArgs resolves the chosen operation's root field
// arguments against the assembled schema's own arg type definitions,
// so variables and literals coerce the same way they would during a
// normal query execution.
func (e *Engine) decodeSubscriptionArgs(doc *ast.Document, operationName, fieldName string, variables map[string]any) (map[string]any, error) {
	op := selectOperation(doc, operationName)
	if op == nil || op.SelectionSet == nil {
		return map[string]any{}, nil
	}
	subType := e.Schema.SubscriptionType()
	if subType == nil {
		return map[string]any{}, nil
	}
	fieldDef, ok := subType.Fields()[fieldName]
	if !ok {
		return map[string]any{}, nil
	}
	argDefs := map[string]*graphql.Argument{}
	for _, a := range fieldDef.Args {
		argDefs[a.Name()] = a
	}

	for _, sel := range op.SelectionSet.Selections {
		field, ok := sel.(*ast.Field)
		if !ok || field.Name.Value != fieldName {
			continue
		}
		args := map[string]any{}
		for _, a := range field.Arguments {
			argDef, ok := argDefs[a.Name.Value]
			if !ok {
				continue
			}
			v, err := decodeArgumentValue(a.Value, argDef.Type, variables)
			if err != nil {
				return nil, fmt.Errorf("gqlexec: decoding argument %q: %w", a.Name.Value, err)
			}
			args[a.Name.Value] = v
		}
		return args, nil
	}
	return map[string]any{}, nil
}

// decodeArgumentValue coerces a parsed argument literal against ty,
// walking the same shape graphql-go's own (unexported) valueFromAST
// does: unwrap NonNull, resolve a variable reference against
// variables, recurse through List/InputObject, and otherwise defer to
// the leaf type's own exported ParseLiteral — the only public entry
// point graphql-go gives a caller for turning an AST literal into a Go
// value outside of a full Execute.
func decodeArgumentValue(valueAST ast.Value, ty graphql.Type, variables map[string]any) (any, error) {
	if nn, ok := ty.(*graphql.NonNull); ok {
		return decodeArgumentValue(valueAST, nn.OfType, variables)
	}
	if valueAST == nil {
		return nil, nil
	}
	if v, ok := valueAST.(*ast.Variable); ok {
		return variables[v.Name.Value], nil
	}
	if _, ok := valueAST.(*ast.NullValue); ok {
		return nil, nil
	}

	switch t := ty.(type) {
	case *graphql.List:
		if lv, ok := valueAST.(*ast.ListValue); ok {
			items := make([]any, 0, len(lv.Values))
			for _, item := range lv.Values {
				v, err := decodeArgumentValue(item, t.OfType, variables)
				if err != nil {
					return nil, err
				}
				items = append(items, v)
			}
			return items, nil
		}
		v, err := decodeArgumentValue(valueAST, t.OfType, variables)
		if err != nil {
			return nil, err
		}
		return []any{v}, nil

	case *graphql.InputObject:
		ov, ok := valueAST.(*ast.ObjectValue)
		if !ok {
			return nil, fmt.Errorf("expected object literal for input type %q", t.Name())
		}
		fields := t.Fields()
		result := map[string]any{}
		for _, f := range ov.Fields {
			fieldDef, ok := fields[f.Name.Value]
			if !ok {
				continue
			}
			v, err := decodeArgumentValue(f.Value, fieldDef.Type, variables)
			if err != nil {
				return nil, err
			}
			result[f.Name.Value] = v
		}
		return result, nil

	case *graphql.Scalar:
		return t.ParseLiteral(valueAST), nil

	case *graphql.Enum:
		return t.ParseLiteral(valueAST), nil

	default:
		return nil, fmt.Errorf("unsupported argument type %q", ty.Name())
	}
}

func selectOperation(doc *ast.Document, operationName string) *ast.OperationDefinition {
	var first *ast.OperationDefinition
	for _, def := range doc.Definitions {
		op, ok := def.(*ast.OperationDefinition)
		if !ok {
			continue
		}
		if first == nil {
			first = op
		}
		if operationName != "" && op.Name != nil && op.Name.Value == operationName {
			return op
		}
	}
	return first
}

func formattedToError(errs []gqlerrors.FormattedError) error {
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("gqlexec: %s", errs[0].Message)
}
