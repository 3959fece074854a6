package mines

import "testing"

func TestBuildConstraintsCountWithinBounds(t *testing.T) {
	k := parseBoard(t, [][]string{
		{"1", "?", "?"},
		{"?", "?", "?"},
		{"?", "?", "1"},
	})
	constraints, unknowns, err := BuildConstraints(k, nil)
	if err != nil {
		t.Fatalf("BuildConstraints: %v", err)
	}
	if len(unknowns) == 0 {
		t.Fatalf("expected a non-empty frontier")
	}
	for _, c := range constraints {
		if c.Count < 0 || c.Count > len(c.Vars) {
			t.Errorf("constraint %+v violates 0 <= count <= |vars|", c)
		}
	}
}

func TestBuildConstraintsExcludesKnownMinesFromFrontier(t *testing.T) {
	k := parseBoard(t, [][]string{
		{"1", "?"},
		{"?", "?"},
	})
	known := map[Position]struct{}{pos(0, 1): {}}
	_, unknowns, err := BuildConstraints(k, known)
	if err != nil {
		t.Fatalf("BuildConstraints: %v", err)
	}
	if _, ok := unknowns[pos(0, 1)]; ok {
		t.Errorf("known-mine position %v should not appear in the frontier variable set", pos(0, 1))
	}
}

func TestBuildConstraintsRejectsInvalidGrid(t *testing.T) {
	k := Knowledge{Rows: 2, Cols: 2, Cells: make([]Cell, 3)} // mismatched length
	_, _, err := BuildConstraints(k, nil)
	if err == nil {
		t.Fatalf("expected an error for a malformed grid")
	}
}

func TestDecomposeSeparatesIndependentComponents(t *testing.T) {
	k := parseBoard(t, [][]string{
		{"1", "?", "0", "1", "?"},
	})
	constraints, _, err := BuildConstraints(k, nil)
	if err != nil {
		t.Fatalf("BuildConstraints: %v", err)
	}
	components := Decompose(constraints)
	if len(components) < 2 {
		t.Fatalf("expected at least 2 independent components, got %d", len(components))
	}
	seen := make(map[Position]int)
	for i, comp := range components {
		for _, v := range comp.Vars {
			if prev, ok := seen[v]; ok {
				t.Errorf("variable %v appears in both component %d and %d", v, prev, i)
			}
			seen[v] = i
		}
	}
}
