package mines

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestInferRoundTripGrowsDeductions exercises spec §8's round-trip
// property: revealing every safe cell infer() already found and
// re-running infer on the resulting board must never shrink the total
// safe+mine coverage. Coverage counts the cells the grid already settles
// (revealed or flagged) plus the cells infer() deduces, since infer()
// itself only reports cells that are still Unknown.
func TestInferRoundTripGrowsDeductions(t *testing.T) {
	k := parseBoard(t, [][]string{
		{"0", "?", "?"},
		{"?", "?", "?"},
		{"?", "?", "0"},
	})
	coverage := func(k Knowledge, d Deductions) int {
		n := len(d.Safe) + len(d.Mines)
		for _, c := range k.Cells {
			if c.Kind != Unknown {
				n++
			}
		}
		return n
	}
	before := k

	first, err := Infer(context.Background(), k, nil)
	require.NoError(t, err)

	for _, s := range first.Safe {
		// In a real driver the revealed value would come from the
		// underlying board; here every forced safe is revealed as 0,
		// which is consistent with the remaining unknowns (0,2) and
		// (2,0) also being mine-free.
		k = k.Set(s, Cell{Kind: Revealed, Value: 0})
	}

	second, err := Infer(context.Background(), k, nil)
	require.NoError(t, err)

	firstTotal := coverage(before, first)
	secondTotal := coverage(k, second)
	require.GreaterOrEqual(t, secondTotal, firstTotal,
		"re-running infer after applying its own safes shrank total coverage")
}

func TestComputeRiskMarginalsSumToBudgetWithinTolerance(t *testing.T) {
	k := parseBoard(t, [][]string{
		{"1", "?", "?"},
		{"1", "?", "?"},
		{"1", "1", "1"},
	})
	probs, err := ComputeRisk(context.Background(), k, nil, intPtr(2), DefaultRiskConfig())
	require.NoError(t, err)

	var sum float64
	for _, p := range probs {
		require.GreaterOrEqual(t, p, 0.0)
		require.LessOrEqual(t, p, 1.0)
		sum += p
	}
	require.InDelta(t, 2.0, sum, 0.2)
}
