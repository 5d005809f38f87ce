package appmap

import (
	"fmt"

	celgo "github.com/google/cel-go/cel"
)

// CELEvaluatorOption configures the CEL evaluator.
type CELEvaluatorOption func(*celEvaluator)

// CELWithProgramCache wires a ProgramCache into the CEL evaluator.
func CELWithProgramCache(cache ProgramCache) CELEvaluatorOption {
	return func(e *celEvaluator) {
		e.cache = cache
	}
}

type celEvaluator struct {
	cache ProgramCache
}

// NewCELEvaluator constructs an Evaluator backed by cel-go.
func NewCELEvaluator(opts ...CELEvaluatorOption) Evaluator {
	e := &celEvaluator{}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

func (e *celEvaluator) Match(m Mapping, expression string) (bool, error) {
	if expression == "" {
		return false, wrapFilterError("cel", expression, m.Application, fmt.Errorf("expression must not be empty"))
	}
	program, err := e.loadOrCompile(expression)
	if err != nil {
		return false, err
	}
	out, _, err := program.Eval(mappingBindings(m))
	if err != nil {
		return false, wrapFilterError("cel", expression, m.Application, err)
	}
	return asBool("cel", expression, m, out.Value())
}

func (e *celEvaluator) loadOrCompile(expression string) (celgo.Program, error) {
	if e.cache != nil {
		if cached, ok := e.cache.Get("cel:" + expression); ok {
			if program, ok := cached.(celgo.Program); ok {
				return program, nil
			}
		}
	}

	env, err := celgo.NewEnv(
		celgo.Variable("app", celgo.StringType),
		celgo.Variable("module", celgo.StringType),
		celgo.Variable("original", celgo.StringType),
		celgo.Variable("has_original", celgo.BoolType),
	)
	if err != nil {
		return nil, wrapFilterError("cel", expression, "", err)
	}
	ast, issues := env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, wrapFilterError("cel", expression, "", issues.Err())
	}
	if !ast.OutputType().IsExactType(celgo.BoolType) {
		return nil, wrapFilterError("cel", expression, "", fmt.Errorf("expression has type %s, want bool", ast.OutputType()))
	}
	program, err := env.Program(ast)
	if err != nil {
		return nil, wrapFilterError("cel", expression, "", err)
	}
	if e.cache != nil {
		e.cache.Set("cel:"+expression, program)
	}
	return program, nil
}
