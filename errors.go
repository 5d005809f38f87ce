package appmap

import (
	"errors"
	"fmt"
)

var (
	ErrHostRequired       = errors.New("appmap: host is required")
	ErrUnknownApplication = errors.New("appmap: application not staged")
	ErrSessionClosed      = errors.New("appmap: session already committed")
)

// HostOp names the host registry call that failed.
type HostOp string

const (
	HostOpRegister   HostOp = "register"
	HostOpUnregister HostOp = "unregister"
	HostOpRestart    HostOp = "restart"
	HostOpConfigured HostOp = "configured"
)

// HostError captures the failing host call alongside the originating error.
type HostError struct {
	Op          HostOp
	Application string
	Err         error
}

func (e *HostError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("appmap: host %s: %v", describeHostOp(e.Op, e.Application), e.Err)
}

func (e *HostError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// FilterError captures evaluator metadata alongside the originating error.
type FilterError struct {
	Engine      string
	Expr        string
	Application string
	Err         error
}

func (e *FilterError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Application == "" {
		return fmt.Sprintf("appmap: %s filter %s: %v", e.Engine, describeExpression(e.Expr), e.Err)
	}
	return fmt.Sprintf("appmap: %s filter %s app=%q: %v", e.Engine, describeExpression(e.Expr), e.Application, e.Err)
}

func (e *FilterError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func describeExpression(expr string) string {
	if expr == "" {
		return "expr=<empty>"
	}
	return fmt.Sprintf("expr=%q", expr)
}

func wrapFilterError(engine, expr, app string, err error) error {
	if err == nil {
		return nil
	}

	var filterErr *FilterError
	if errors.As(err, &filterErr) {
		if filterErr.Engine == "" {
			filterErr.Engine = engine
		}
		if filterErr.Expr == "" {
			filterErr.Expr = expr
		}
		if filterErr.Application == "" {
			filterErr.Application = app
		}
		return filterErr
	}

	return &FilterError{
		Engine:      engine,
		Expr:        expr,
		Application: app,
		Err:         err,
	}
}
