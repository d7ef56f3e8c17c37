// Package cel evaluates CEL predicates over registry fields. Field editor
// rules and the `ls --where` filter use it.
package cel

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
	celext "github.com/google/cel-go/ext"
)

// Facts are the variables a predicate sees.
type Facts struct {
	Key       string // key path
	Name      string // field name
	Type      uint32 // registry type number
	TypeName  string // e.g. REG_SZ
	Data      string // display text of the data; empty when not loaded
	Supported bool   // whether an editor supports the type
}

func (f Facts) activation() map[string]any {
	return map[string]any{
		"key": f.Key,
		"field": map[string]any{
			"name":      f.Name,
			"type":      int64(f.Type),
			"type_name": f.TypeName,
			"data":      f.Data,
			"supported": f.Supported,
		},
	}
}

// Evaluator compiles and caches predicates.
type Evaluator struct {
	env *cel.Env

	mu    sync.Mutex
	cache map[string]cel.Program
}

// NewEvaluator creates an evaluator with the string, list, math and encoder extensions.
func NewEvaluator() (*Evaluator, error) {
	env, err := newFieldEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}
	return &Evaluator{env: env, cache: map[string]cel.Program{}}, nil
}

// GetEnvironment returns the CEL environment for introspection.
func (e *Evaluator) GetEnvironment() *cel.Env {
	return e.env
}

func newFieldEnv(opts ...cel.EnvOption) (*cel.Env, error) {
	allOpts := make([]cel.EnvOption, 0, 6+len(opts))
	allOpts = append(allOpts,
		cel.Variable("key", cel.StringType),
		cel.Variable("field", cel.MapType(cel.StringType, cel.DynType)),
		celext.Strings(),
		celext.Encoders(),
		celext.Lists(),
		celext.Math(),
	)
	allOpts = append(allOpts, opts...)
	return cel.NewEnv(allOpts...)
}

func (e *Evaluator) program(expr string) (cel.Program, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if prg, ok := e.cache[expr]; ok {
		return prg, nil
	}
	ast, issues := e.env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compilation error: %w", issues.Err())
	}
	prg, err := e.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program error: %w", err)
	}
	e.cache[expr] = prg
	return prg, nil
}

// Check compiles expr without evaluating it, so configs fail early.
func (e *Evaluator) Check(expr string) error {
	_, err := e.program(expr)
	return err
}

// Evaluate runs expr against facts and converts the result to Go.
func (e *Evaluator) Evaluate(expr string, facts Facts) (any, error) {
	prg, err := e.program(expr)
	if err != nil {
		return nil, err
	}
	result, _, err := prg.Eval(facts.activation())
	if err != nil {
		return nil, fmt.Errorf("eval error: %w", err)
	}
	return ToGo(result), nil
}

// Match runs a boolean predicate. An empty expression matches everything.
func (e *Evaluator) Match(expr string, facts Facts) (bool, error) {
	if strings.TrimSpace(expr) == "" {
		return true, nil
	}
	v, err := e.Evaluate(expr, facts)
	if err != nil {
		return false, err
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("predicate %q returned %T, want bool", expr, v)
	}
	return b, nil
}

// ToGo converts CEL values to Go values, recursing into lists and maps.
func ToGo(val ref.Val) any {
	if val == nil {
		return nil
	}
	switch v := val.(type) {
	case types.Bool:
		return bool(v)
	case types.Int:
		return int64(v)
	case types.Uint:
		return uint64(v)
	case types.Double:
		return float64(v)
	case types.String:
		return string(v)
	case types.Bytes:
		return []byte(v)
	}
	if valuer, ok := val.(interface{ Value() any }); ok {
		switch inner := valuer.Value().(type) {
		case []ref.Val:
			out := make([]any, len(inner))
			for i, elem := range inner {
				out[i] = ToGo(elem)
			}
			return out
		case []any:
			out := make([]any, len(inner))
			for i, elem := range inner {
				if rv, ok := elem.(ref.Val); ok {
					out[i] = ToGo(rv)
				} else {
					out[i] = elem
				}
			}
			return out
		case map[string]any:
			out := make(map[string]any, len(inner))
			for k, elem := range inner {
				if rv, ok := elem.(ref.Val); ok {
					out[k] = ToGo(rv)
				} else {
					out[k] = elem
				}
			}
			return out
		default:
			return inner
		}
	}
	return val
}
