// Package layering resolves an application's handler module across the
// host's association layers. Stronger layers override weaker ones per
// application; nothing is merged below the application key.
package layering

import (
	"slices"
	"sort"
)

// Level is the precedence of a layer. Higher levels win.
type Level int

const (
	// LevelUnknown marks a misconfigured layer; such layers are ignored.
	LevelUnknown Level = iota
	// LevelBuiltin holds the associations shipped with the host.
	LevelBuiltin
	// LevelAddon holds associations contributed at runtime, overrides included.
	LevelAddon
)

func (l Level) String() string {
	switch l {
	case LevelBuiltin:
		return "builtin"
	case LevelAddon:
		return "addon"
	default:
		return "unknown"
	}
}

// Layer is one named set of application to module associations.
type Layer struct {
	Name    string
	Level   Level
	Modules map[string]string
}

// Stack orders layers from strongest to weakest.
type Stack struct {
	ordered []Layer
}

// NewStack drops unknown and duplicate-named layers and sorts the rest by
// level, keeping the given order between peers.
func NewStack(layers ...Layer) Stack {
	filtered := make([]Layer, 0, len(layers))
	seen := map[string]struct{}{}
	for _, layer := range layers {
		if layer.Level == LevelUnknown {
			continue
		}
		if _, exists := seen[layer.Name]; exists {
			continue
		}
		seen[layer.Name] = struct{}{}
		filtered = append(filtered, layer)
	}

	slices.SortStableFunc(filtered, func(a, b Layer) int {
		switch {
		case a.Level == b.Level:
			return 0
		case a.Level > b.Level:
			return -1
		default:
			return 1
		}
	})
	return Stack{ordered: filtered}
}

// Layers returns the stack from strongest (index 0) to weakest.
func (s Stack) Layers() []Layer {
	out := make([]Layer, len(s.ordered))
	copy(out, s.ordered)
	return out
}

// Merge returns the effective association for every application.
func (s Stack) Merge() map[string]string {
	merged := map[string]string{}
	for i := len(s.ordered) - 1; i >= 0; i-- {
		for app, module := range s.ordered[i].Modules {
			if module == "" {
				continue
			}
			merged[app] = module
		}
	}
	return merged
}

// Resolution explains where an application's module came from.
type Resolution struct {
	Application string
	Module      string
	Layer       string
	Level       Level
	// Shadowed lists weaker layers that also define the application, strongest
	// first.
	Shadowed []string
}

// Trace reports which layer supplies app's module.
func (s Stack) Trace(app string) (Resolution, bool) {
	res := Resolution{Application: app}
	found := false
	for _, layer := range s.ordered {
		module, ok := layer.Modules[app]
		if !ok || module == "" {
			continue
		}
		if found {
			res.Shadowed = append(res.Shadowed, layer.Name)
			continue
		}
		res.Module = module
		res.Layer = layer.Name
		res.Level = layer.Level
		found = true
	}
	return res, found
}

// Applications lists every application defined by any layer, sorted.
func (s Stack) Applications() []string {
	merged := s.Merge()
	apps := make([]string, 0, len(merged))
	for app := range merged {
		apps = append(apps, app)
	}
	sort.Strings(apps)
	return apps
}
