package catalog

import (
	"errors"
	"fmt"

	"github.com/google/cel-go/cel"
)

// ErrInvalidFilter is returned when a filter expression fails to compile
// or does not produce a boolean.
var ErrInvalidFilter = errors.New("invalid item filter")

// Filter keeps only the items for which expr evaluates to true. The
// expression is CEL and sees the variables id, value, weight and capacity,
// e.g. "weight <= capacity / 2 && value > 0". Item ids are preserved.
func (c *Catalog) Filter(expr string) (*Catalog, error) {
	env, err := cel.NewEnv(
		cel.Variable("id", cel.IntType),
		cel.Variable("value", cel.IntType),
		cel.Variable("weight", cel.IntType),
		cel.Variable("capacity", cel.IntType),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL env: %w", err)
	}

	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFilter, issues.Err())
	}
	if !ast.OutputType().IsExactType(cel.BoolType) {
		return nil, fmt.Errorf("%w: %q must evaluate to bool, got %s", ErrInvalidFilter, expr, ast.OutputType())
	}

	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFilter, err)
	}

	var kept []Item
	for _, it := range c.items {
		out, _, err := prg.Eval(map[string]interface{}{
			"id":       int64(it.ID),
			"value":    int64(it.Value),
			"weight":   int64(it.Weight),
			"capacity": int64(c.capacity),
		})
		if err != nil {
			return nil, fmt.Errorf("filter failed on item %d: %w", it.ID, err)
		}
		if match, ok := out.Value().(bool); ok && match {
			kept = append(kept, it)
		}
	}

	return New(c.capacity, kept)
}
