// Package filter compiles CEL expressions against card attributes.
//
// An expression sees one card at a time through a fixed set of variables:
//
//	uid, deck, statement, proof  string
//	tags                         list of string
//	has_hints, due               bool
//	review_count                 int
//
// Expressions must evaluate to a boolean. Examples:
//
//	deck == "real-analysis" && due
//	"induction" in tags
//	statement.contains("continuous") || review_count >= 5
package filter

import (
	"fmt"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
)

// Card is the view of a card an expression evaluates against.
type Card struct {
	UID         string
	Deck        string
	Statement   string
	Proof       string
	Tags        []string
	HasHints    bool
	ReviewCount int
	Due         bool
}

// Engine holds the CEL environment shared by all compiled filters.
type Engine struct {
	env *cel.Env
}

// NewEngine creates an engine with the card variables declared.
func NewEngine() (*Engine, error) {
	env, err := cel.NewEnv(
		cel.Variable("uid", cel.StringType),
		cel.Variable("deck", cel.StringType),
		cel.Variable("statement", cel.StringType),
		cel.Variable("proof", cel.StringType),
		cel.Variable("tags", cel.ListType(cel.StringType)),
		cel.Variable("has_hints", cel.BoolType),
		cel.Variable("review_count", cel.IntType),
		cel.Variable("due", cel.BoolType),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create filter environment: %w", err)
	}
	return &Engine{env: env}, nil
}

// Compile validates the expression and returns a reusable filter.
func (e *Engine) Compile(expression string) (*Filter, error) {
	ast, issues := e.env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("failed to compile filter: %w", issues.Err())
	}
	if !ast.OutputType().IsExactType(types.BoolType) {
		return nil, fmt.Errorf("filter must evaluate to a boolean, got %s", ast.OutputType())
	}

	program, err := e.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("failed to build filter program: %w", err)
	}
	return &Filter{expression: expression, program: program}, nil
}

// Filter is a compiled expression, safe for concurrent use.
type Filter struct {
	expression string
	program    cel.Program
}

// Expression returns the source text the filter was compiled from.
func (f *Filter) Expression() string {
	return f.expression
}

// Match evaluates the filter against one card.
func (f *Filter) Match(card Card) (bool, error) {
	tags := card.Tags
	if tags == nil {
		tags = []string{}
	}

	out, _, err := f.program.Eval(map[string]any{
		"uid":          card.UID,
		"deck":         card.Deck,
		"statement":    card.Statement,
		"proof":        card.Proof,
		"tags":         tags,
		"has_hints":    card.HasHints,
		"review_count": card.ReviewCount,
		"due":          card.Due,
	})
	if err != nil {
		return false, fmt.Errorf("failed to evaluate filter: %w", err)
	}

	matched, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("filter produced %T, want bool", out.Value())
	}
	return matched, nil
}
