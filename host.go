package appmap

import (
	"context"
	"fmt"
	"sort"
)

// Host is the registry that maps application identifiers to handler modules.
// Implementations wrap the assistive-technology host; calls are synchronous
// and Restart must not return until module dispatch has been reinitialized.
type Host interface {
	Register(ctx context.Context, app, module string) error
	Unregister(ctx context.Context, app string) error
	Restart(ctx context.Context) error
	// Configured returns the current application to module associations,
	// built-in and add-on contributed, with add-on entries taking precedence.
	Configured(ctx context.Context) (map[string]string, error)
}

// Resolve returns the module the host currently associates with app.
func Resolve(ctx context.Context, host Host, app string) (string, bool, error) {
	if host == nil {
		return "", false, ErrHostRequired
	}
	configured, err := host.Configured(ctx)
	if err != nil {
		return "", false, &HostError{Op: HostOpConfigured, Application: app, Err: err}
	}
	module, ok := configured[app]
	if !ok || module == "" {
		return "", false, nil
	}
	return module, true, nil
}

// AvailableModules lists the distinct module names the host knows about,
// sorted alphabetically.
func AvailableModules(ctx context.Context, host Host) ([]string, error) {
	if host == nil {
		return nil, ErrHostRequired
	}
	configured, err := host.Configured(ctx)
	if err != nil {
		return nil, &HostError{Op: HostOpConfigured, Err: err}
	}
	seen := make(map[string]struct{}, len(configured))
	modules := make([]string, 0, len(configured))
	for _, module := range configured {
		if module == "" {
			continue
		}
		if _, ok := seen[module]; ok {
			continue
		}
		seen[module] = struct{}{}
		modules = append(modules, module)
	}
	sort.Strings(modules)
	return modules, nil
}

// Reapply registers every mapping in table with host and restarts the host
// once when anything was registered. It returns the number of mappings
// applied.
func Reapply(ctx context.Context, host Host, table Table, opts ...Option) (int, error) {
	if host == nil {
		return 0, ErrHostRequired
	}
	cfg := applyOptions(opts)
	logger := cfg.loggerOrNoop()

	applied := 0
	for _, m := range table.Mappings() {
		logger.Log(LogEvent{Level: LevelInfo, Op: OpAssociate, Application: m.Application, Module: m.Module})
		if err := host.Register(ctx, m.Application, m.Module); err != nil {
			return applied, &HostError{Op: HostOpRegister, Application: m.Application, Err: err}
		}
		applied++
	}
	if applied == 0 {
		return 0, nil
	}
	if err := host.Restart(ctx); err != nil {
		return applied, &HostError{Op: HostOpRestart, Err: err}
	}
	logger.Log(LogEvent{Level: LevelInfo, Op: OpApplied, Count: applied})
	return applied, nil
}

func describeHostOp(op HostOp, app string) string {
	if app == "" {
		return string(op)
	}
	return fmt.Sprintf("%s app=%q", op, app)
}
