package appmap

import (
	"context"
	"sync"

	"github.com/goliatone/go-appmap/layering"
)

// MemoryHost is an in-process Host intended for tests and examples. Register
// and Unregister edit the add-on layer; Active only reflects those edits after
// Restart, mirroring a host that reloads module dispatch on restart.
type MemoryHost struct {
	mu       sync.Mutex
	builtin  map[string]string
	addon    map[string]string
	active   map[string]string
	restarts int
	calls    []HostCall
	failures map[HostOp]error
}

// HostCall records one registry call made against a MemoryHost.
type HostCall struct {
	Op          HostOp
	Application string
	Module      string
}

// NewMemoryHost builds a host whose built-in associations are builtin.
func NewMemoryHost(builtin map[string]string) *MemoryHost {
	h := &MemoryHost{
		builtin:  copyModules(builtin),
		addon:    map[string]string{},
		failures: map[HostOp]error{},
	}
	h.active = h.stack().Merge()
	return h
}

// FailOn makes every later call of op return err. A nil err clears it.
func (h *MemoryHost) FailOn(op HostOp, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err == nil {
		delete(h.failures, op)
		return
	}
	h.failures[op] = err
}

func (h *MemoryHost) Register(_ context.Context, app, module string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls = append(h.calls, HostCall{Op: HostOpRegister, Application: app, Module: module})
	if err := h.failures[HostOpRegister]; err != nil {
		return err
	}
	h.addon[app] = module
	return nil
}

func (h *MemoryHost) Unregister(_ context.Context, app string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls = append(h.calls, HostCall{Op: HostOpUnregister, Application: app})
	if err := h.failures[HostOpUnregister]; err != nil {
		return err
	}
	delete(h.addon, app)
	return nil
}

func (h *MemoryHost) Restart(context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls = append(h.calls, HostCall{Op: HostOpRestart})
	if err := h.failures[HostOpRestart]; err != nil {
		return err
	}
	h.restarts++
	h.active = h.stack().Merge()
	return nil
}

func (h *MemoryHost) Configured(context.Context) (map[string]string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.failures[HostOpConfigured]; err != nil {
		return nil, err
	}
	return h.stack().Merge(), nil
}

// Explain reports which layer currently supplies app's module.
func (h *MemoryHost) Explain(app string) (layering.Resolution, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.stack().Trace(app)
}

// Active returns the associations loaded by the last restart.
func (h *MemoryHost) Active() map[string]string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return copyModules(h.active)
}

// Addon returns the add-on layer as currently registered.
func (h *MemoryHost) Addon() map[string]string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return copyModules(h.addon)
}

// Restarts returns how many restarts completed.
func (h *MemoryHost) Restarts() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.restarts
}

// Calls returns the recorded registry calls in order.
func (h *MemoryHost) Calls() []HostCall {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]HostCall(nil), h.calls...)
}

func (h *MemoryHost) stack() layering.Stack {
	return layering.NewStack(
		layering.Layer{Name: "builtin", Level: layering.LevelBuiltin, Modules: h.builtin},
		layering.Layer{Name: "addon", Level: layering.LevelAddon, Modules: h.addon},
	)
}

func copyModules(src map[string]string) map[string]string {
	dst := make(map[string]string, len(src))
	for key, value := range src {
		dst[key] = value
	}
	return dst
}
