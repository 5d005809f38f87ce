package layering

import (
	"reflect"
	"testing"
)

func TestNewStackOrdersByLevel(t *testing.T) {
	stack := NewStack(
		Layer{Name: "builtin", Level: LevelBuiltin},
		Layer{Name: "bogus", Level: LevelUnknown},
		Layer{Name: "addon", Level: LevelAddon},
		Layer{Name: "addon", Level: LevelBuiltin},
	)

	var names []string
	for _, layer := range stack.Layers() {
		names = append(names, layer.Name)
	}
	if want := []string{"addon", "builtin"}; !reflect.DeepEqual(want, names) {
		t.Fatalf("unexpected layer order\nwant: %v\n got: %v", want, names)
	}
}

func TestStackMerge(t *testing.T) {
	cases := []struct {
		name   string
		layers []Layer
		expect map[string]string
	}{
		{
			name:   "empty",
			expect: map[string]string{},
		},
		{
			name: "addon overrides builtin",
			layers: []Layer{
				{Name: "builtin", Level: LevelBuiltin, Modules: map[string]string{"notepad": "notepad", "code": "code"}},
				{Name: "addon", Level: LevelAddon, Modules: map[string]string{"notepad": "code"}},
			},
			expect: map[string]string{"notepad": "code", "code": "code"},
		},
		{
			name: "empty module does not shadow",
			layers: []Layer{
				{Name: "addon", Level: LevelAddon, Modules: map[string]string{"notepad": ""}},
				{Name: "builtin", Level: LevelBuiltin, Modules: map[string]string{"notepad": "notepad"}},
			},
			expect: map[string]string{"notepad": "notepad"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := NewStack(tc.layers...).Merge()
			if !reflect.DeepEqual(tc.expect, got) {
				t.Fatalf("merged mismatch\nwant: %v\n got: %v", tc.expect, got)
			}
		})
	}
}

func TestStackTrace(t *testing.T) {
	stack := NewStack(
		Layer{Name: "builtin", Level: LevelBuiltin, Modules: map[string]string{"notepad": "notepad"}},
		Layer{Name: "addon", Level: LevelAddon, Modules: map[string]string{"notepad": "code", "kate": "code"}},
	)

	res, ok := stack.Trace("notepad")
	if !ok {
		t.Fatalf("expected notepad to resolve")
	}
	if res.Module != "code" || res.Layer != "addon" || res.Level != LevelAddon {
		t.Fatalf("unexpected resolution: %+v", res)
	}
	if !reflect.DeepEqual([]string{"builtin"}, res.Shadowed) {
		t.Fatalf("expected builtin shadowed, got %v", res.Shadowed)
	}

	if _, ok := stack.Trace("missing"); ok {
		t.Fatalf("expected missing app to be unresolved")
	}

	if apps := stack.Applications(); !reflect.DeepEqual([]string{"kate", "notepad"}, apps) {
		t.Fatalf("unexpected applications: %v", apps)
	}
}

func TestLevelString(t *testing.T) {
	if LevelAddon.String() != "addon" || LevelBuiltin.String() != "builtin" || Level(42).String() != "unknown" {
		t.Fatalf("unexpected level names")
	}
}
