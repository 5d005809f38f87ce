//go:build js_eval

package appmap

import (
	"fmt"

	"github.com/dop251/goja"
)

type jsEvaluator struct {
	cache ProgramCache
}

// NewJSEvaluator constructs an Evaluator backed by goja.
func NewJSEvaluator(opts ...JSEvaluatorOption) Evaluator {
	cfg := applyJSEvaluatorOptions(opts)
	return &jsEvaluator{cache: cfg.cache}
}

func (e *jsEvaluator) Match(m Mapping, expression string) (bool, error) {
	if expression == "" {
		return false, wrapFilterError("js", expression, m.Application, fmt.Errorf("expression must not be empty"))
	}
	program, err := e.loadOrCompile(expression)
	if err != nil {
		return false, err
	}
	vm := goja.New()
	for key, value := range mappingBindings(m) {
		if err := vm.Set(key, value); err != nil {
			return false, wrapFilterError("js", expression, m.Application, err)
		}
	}
	value, err := vm.RunProgram(program)
	if err != nil {
		return false, wrapFilterError("js", expression, m.Application, err)
	}
	return asBool("js", expression, m, value.Export())
}

func (e *jsEvaluator) loadOrCompile(expression string) (*goja.Program, error) {
	if e.cache != nil {
		if cached, ok := e.cache.Get("js:" + expression); ok {
			if program, ok := cached.(*goja.Program); ok {
				return program, nil
			}
		}
	}
	program, err := goja.Compile("", fmt.Sprintf("(function(){ return (%s); })()", expression), false)
	if err != nil {
		return nil, wrapFilterError("js", expression, "", err)
	}
	if e.cache != nil {
		e.cache.Set("js:"+expression, program)
	}
	return program, nil
}
