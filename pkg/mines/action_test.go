package mines

import (
	"context"
	"testing"
)

func TestChooseActionFlagsForcedMine(t *testing.T) {
	k := parseBoard(t, [][]string{
		{"0", "1", "1"},
		{"0", "1", "?"},
		{"0", "1", "1"},
	})
	act, err := ChooseAction(context.Background(), k, nil, nil, nil, DefaultRiskConfig())
	if err != nil {
		t.Fatalf("ChooseAction: %v", err)
	}
	if act.Kind != ActionFlagAll {
		t.Fatalf("expected ActionFlagAll, got %v", act.Kind)
	}
	if len(act.Positions) != 1 || act.Positions[0] != pos(1, 2) {
		t.Fatalf("expected FlagAll([%v]), got %v", pos(1, 2), act.Positions)
	}
}

func TestChooseActionRevealsAllForcedSafes(t *testing.T) {
	k := parseBoard(t, [][]string{
		{"0", "?", "?"},
		{"?", "?", "?"},
	})
	act, err := ChooseAction(context.Background(), k, nil, nil, nil, DefaultRiskConfig())
	if err != nil {
		t.Fatalf("ChooseAction: %v", err)
	}
	if act.Kind != ActionRevealAllSafe {
		t.Fatalf("expected ActionRevealAllSafe, got %v", act.Kind)
	}
	if len(act.Positions) != 3 {
		t.Fatalf("expected 3 safe cells, got %v", act.Positions)
	}
}

func TestChooseActionSymmetricCornersPicksCenter(t *testing.T) {
	// Spec scenario 1: the center cell has strictly minimal exact
	// probability, so ChooseAction must reveal it.
	k := parseBoard(t, [][]string{
		{"1", "?", "?"},
		{"?", "?", "?"},
		{"?", "?", "1"},
	})
	act, err := ChooseAction(context.Background(), k, nil, nil, intPtr(2), DefaultRiskConfig())
	if err != nil {
		t.Fatalf("ChooseAction: %v", err)
	}
	if act.Kind != ActionReveal || act.Position != pos(1, 1) {
		t.Fatalf("expected Reveal(%v), got %v %v", pos(1, 1), act.Kind, act.Position)
	}
}

func TestChooseActionTwoByTwoTieBreaksByRowMajor(t *testing.T) {
	// Spec scenario 5: both unknowns tie at marginal 0.5; the lower
	// row-major position wins.
	k := parseBoard(t, [][]string{
		{"?", "1"},
		{"1", "?"},
	})
	act, err := ChooseAction(context.Background(), k, nil, nil, intPtr(1), DefaultRiskConfig())
	if err != nil {
		t.Fatalf("ChooseAction: %v", err)
	}
	if act.Kind != ActionReveal {
		t.Fatalf("expected ActionReveal, got %v", act.Kind)
	}
	if act.Position != pos(0, 0) {
		t.Fatalf("expected the row-major tie-break to pick %v, got %v", pos(0, 0), act.Position)
	}
}

func TestChooseActionDeterministic(t *testing.T) {
	k := NewKnowledge(3, 3)
	cfg := DefaultRiskConfig()
	first, err := ChooseAction(context.Background(), k, nil, nil, intPtr(3), cfg)
	if err != nil {
		t.Fatalf("ChooseAction (first): %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := ChooseAction(context.Background(), k, nil, nil, intPtr(3), cfg)
		if err != nil {
			t.Fatalf("ChooseAction (rerun %d): %v", i, err)
		}
		if again.Kind != first.Kind || again.Position != first.Position {
			t.Fatalf("ChooseAction is not deterministic: %+v vs %+v", first, again)
		}
	}
}

func TestChooseActionNoneWhenFullyResolved(t *testing.T) {
	k := parseBoard(t, [][]string{
		{"0", "0"},
		{"0", "0"},
	})
	act, err := ChooseAction(context.Background(), k, nil, nil, nil, DefaultRiskConfig())
	if err != nil {
		t.Fatalf("ChooseAction: %v", err)
	}
	if act.Kind != ActionNone {
		t.Fatalf("expected ActionNone on a fully revealed board, got %v", act.Kind)
	}
}

func TestChooseActionAvoidsAlreadyMadeMoves(t *testing.T) {
	k := NewKnowledge(1, 2)
	movesMade := map[Position]struct{}{pos(0, 0): {}}
	act, err := ChooseAction(context.Background(), k, movesMade, nil, intPtr(1), DefaultRiskConfig())
	if err != nil {
		t.Fatalf("ChooseAction: %v", err)
	}
	if act.Kind != ActionReveal || act.Position != pos(0, 1) {
		t.Fatalf("expected Reveal(%v) to skip the already-made move, got %v %v", pos(0, 1), act.Kind, act.Position)
	}
}
