package glsllib

import (
	"strings"
	"testing"
)

func TestSceneFunctionsParse(t *testing.T) {
	want := []string{
		"rmSphere",
		"rmBox",
		"rmTorus",
		"rmShapeDistance",
		"rmCombine",
		"rmSceneField",
		"rmNormal",
		"rmShadow",
	}
	funcs := SceneFunctions()
	if len(funcs) != len(want) {
		t.Fatalf("want %d functions, got %d", len(want), len(funcs))
	}
	seen := make(map[string]bool)
	for i, fn := range funcs {
		if err := fn.Validate(); err != nil {
			t.Fatalf("function %d: %s", i, err)
		}
		name := string(fn.NamePtr)
		if name != want[i] {
			t.Errorf("function %d: want %s, got %s", i, want[i], name)
		}
		if seen[name] {
			t.Errorf("function %s repeated", name)
		}
		seen[name] = true
	}
}

func TestNormalZeroGradient(t *testing.T) {
	src := string(Normal().Source())
	if strings.Contains(src, "normalize(") {
		t.Error("normal must not normalize a possibly zero gradient")
	}
	if !strings.Contains(src, "l > 0.0") {
		t.Error("normal should guard zero length gradients")
	}
}
