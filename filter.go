package appmap

import (
	"fmt"
	"sync"
)

// Evaluator decides whether a mapping satisfies a predicate expression.
// Expressions see app, module, original and has_original.
type Evaluator interface {
	Match(m Mapping, expr string) (bool, error)
}

// ProgramCache stores compiled programs keyed by expression.
type ProgramCache interface {
	Get(key string) (any, bool)
	Set(key string, value any)
}

type programCache struct {
	mu       sync.RWMutex
	programs map[string]any
}

// NewProgramCache returns an unbounded, concurrency-safe ProgramCache.
func NewProgramCache() ProgramCache {
	return &programCache{programs: map[string]any{}}
}

func (c *programCache) Get(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	value, ok := c.programs[key]
	return value, ok
}

func (c *programCache) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.programs[key] = value
}

// Select returns the mappings of table for which expr holds, ordered by
// application. An empty expression selects everything.
func Select(table Table, evaluator Evaluator, expr string) ([]Mapping, error) {
	if expr == "" {
		return table.Mappings(), nil
	}
	if evaluator == nil {
		evaluator = NewExprEvaluator()
	}
	var out []Mapping
	for _, m := range table.Mappings() {
		ok, err := evaluator.Match(m, expr)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, m)
		}
	}
	return out, nil
}

// NewEvaluator returns the evaluator registered for engine: "expr" (the
// default when engine is empty), "cel" or "js".
func NewEvaluator(engine string, cache ProgramCache) (Evaluator, error) {
	switch engine {
	case "", "expr":
		return NewExprEvaluator(ExprWithProgramCache(cache)), nil
	case "cel":
		return NewCELEvaluator(CELWithProgramCache(cache)), nil
	case "js":
		e := NewJSEvaluator(JSWithProgramCache(cache))
		if e == nil {
			return nil, fmt.Errorf("appmap: js filter engine requires the js_eval build tag")
		}
		return e, nil
	default:
		return nil, fmt.Errorf("appmap: unknown filter engine %q", engine)
	}
}

func mappingBindings(m Mapping) map[string]any {
	return map[string]any{
		"app":          m.Application,
		"module":       m.Module,
		"original":     m.OriginalModule,
		"has_original": m.HasOriginal(),
	}
}

func asBool(engine, expr string, m Mapping, value any) (bool, error) {
	matched, ok := value.(bool)
	if !ok {
		return false, wrapFilterError(engine, expr, m.Application, fmt.Errorf("expression returned %T, want bool", value))
	}
	return matched, nil
}
