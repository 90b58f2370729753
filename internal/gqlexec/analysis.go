package gqlexec

import (
	"fmt"

	"github.com/graphql-go/graphql/language/ast"
	"github.com/graphql-go/graphql/language/parser"
	"github.com/graphql-go/graphql/language/source"
)

// AnalysisResult reports the shape of a parsed request, used to reject
// a query before execution when it exceeds the engine's configured
// depth or complexity ceiling.
type AnalysisResult struct {
	Depth      int
	Complexity int
	FieldCount int
	Valid      bool
	Errors     []string
}

// Analyzer walks a parsed document and scores it against maxDepth and
// maxComplexity. A zero value for either limit disables that check.
type Analyzer struct {
	MaxDepth      int
	MaxComplexity int
}

// Analyze parses source and scores the resulting document. Parse
// failures are reported as analysis errors rather than returned as a
// Go error, since the engine's own Parse phase is the authority on
// whether a request is syntactically valid.
func (a *Analyzer) Analyze(requestString string) *AnalysisResult {
	doc, err := parser.Parse(parser.ParseParams{
		Source: source.NewSource(&source.Source{Body: []byte(requestString)}),
	})
	if err != nil {
		return &AnalysisResult{Valid: false, Errors: []string{fmt.Sprintf("parse error: %v", err)}}
	}

	result := &AnalysisResult{Valid: true}
	for _, def := range doc.Definitions {
		if op, ok := def.(*ast.OperationDefinition); ok {
			a.walkOperation(op, result, 0)
		}
	}

	if a.MaxDepth > 0 && result.Depth > a.MaxDepth {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("query depth %d exceeds maximum %d", result.Depth, a.MaxDepth))
	}
	if a.MaxComplexity > 0 && result.Complexity > a.MaxComplexity {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("query complexity %d exceeds maximum %d", result.Complexity, a.MaxComplexity))
	}
	return result
}

func (a *Analyzer) walkOperation(op *ast.OperationDefinition, result *AnalysisResult, depth int) {
	if op.SelectionSet == nil {
		return
	}
	if depth > result.Depth {
		result.Depth = depth
	}
	a.walkSelectionSet(op.SelectionSet, result, depth)
}

func (a *Analyzer) walkSelectionSet(set *ast.SelectionSet, result *AnalysisResult, depth int) {
	for _, sel := range set.Selections {
		a.walkSelection(sel, result, depth)
	}
}

func (a *Analyzer) walkSelection(sel ast.Selection, result *AnalysisResult, depth int) {
	switch s := sel.(type) {
	case *ast.Field:
		a.walkField(s, result, depth)
	case *ast.InlineFragment:
		if s.SelectionSet != nil {
			a.walkSelectionSet(s.SelectionSet, result, depth)
		}
	case *ast.FragmentSpread:
		result.FieldCount++
		result.Complexity++
	}
}

func (a *Analyzer) walkField(field *ast.Field, result *AnalysisResult, depth int) {
	result.FieldCount++
	result.Complexity += 1 + len(field.Arguments)
	if field.SelectionSet != nil {
		if depth+1 > result.Depth {
			result.Depth = depth + 1
		}
		a.walkSelectionSet(field.SelectionSet, result, depth+1)
	}
}
