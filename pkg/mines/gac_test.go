package mines

import (
	"context"
	"testing"
)

func TestInferForcedMineByGAC(t *testing.T) {
	// A revealed 1 with exactly one unknown neighbor forces that neighbor
	// to be a mine (spec scenario 3).
	k := parseBoard(t, [][]string{
		{"0", "1", "1"},
		{"0", "1", "?"},
		{"0", "1", "1"},
	})
	ded, err := Infer(context.Background(), k, nil)
	if err != nil {
		t.Fatalf("Infer: %v", err)
	}
	if len(ded.Mines) != 1 || ded.Mines[0] != pos(1, 2) {
		t.Fatalf("expected mines=[%v], got %v", pos(1, 2), ded.Mines)
	}
	if len(ded.Safe) != 0 {
		t.Fatalf("expected no safe deductions, got %v", ded.Safe)
	}
}

func TestInferForcedSafesByGAC(t *testing.T) {
	// A revealed 0 forces every unknown neighbor safe (spec scenario 4).
	k := parseBoard(t, [][]string{
		{"0", "?", "?"},
		{"?", "?", "?"},
	})
	ded, err := Infer(context.Background(), k, nil)
	if err != nil {
		t.Fatalf("Infer: %v", err)
	}
	want := map[Position]bool{pos(0, 1): true, pos(1, 0): true, pos(1, 1): true}
	if len(ded.Safe) != len(want) {
		t.Fatalf("expected %d safe cells, got %v", len(want), ded.Safe)
	}
	for _, s := range ded.Safe {
		if !want[s] {
			t.Errorf("unexpected safe cell %v", s)
		}
	}
}

func TestInferSafeAndMinesAreDisjoint(t *testing.T) {
	boards := [][][]string{
		{{"0", "?", "?"}, {"?", "?", "?"}, {"?", "?", "0"}},
		{{"1", "?", "?"}, {"?", "?", "?"}, {"?", "?", "1"}},
		{{"2", "1", "0"}, {"?", "?", "0"}, {"?", "?", "0"}},
	}
	for i, rows := range boards {
		k := parseBoard(t, rows)
		ded, err := Infer(context.Background(), k, nil)
		if err != nil {
			t.Fatalf("board %d: Infer: %v", i, err)
		}
		seen := make(map[Position]bool, len(ded.Safe))
		for _, s := range ded.Safe {
			seen[s] = true
		}
		for _, m := range ded.Mines {
			if seen[m] {
				t.Errorf("board %d: %v is both safe and mined", i, m)
			}
		}
	}
}

func TestInferIsIdempotent(t *testing.T) {
	k := parseBoard(t, [][]string{
		{"0", "0", "0"},
		{"0", "1", "?"},
		{"0", "0", "0"},
	})
	first, err := Infer(context.Background(), k, nil)
	if err != nil {
		t.Fatalf("Infer (first): %v", err)
	}
	second, err := Infer(context.Background(), k, nil)
	if err != nil {
		t.Fatalf("Infer (second): %v", err)
	}
	if len(first.Safe) != len(second.Safe) || len(first.Mines) != len(second.Mines) {
		t.Fatalf("Infer is not idempotent: %+v vs %+v", first, second)
	}
}
