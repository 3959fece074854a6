package main

import (
	"fmt"
	"math/rand"

	"github.com/tanobar/minesweeper-prj/pkg/mines"
)

// simBoard is the driver's private ground truth: where the mines
// actually are. pkg/mines never sees this directly; it only ever sees
// the Knowledge produced by revealing cells against it. Generating and
// holding this ground truth is exactly the kind of driver-side
// "surrounding game/UI" concern the engine's Non-goals carve out.
type simBoard struct {
	rows, cols int
	mines      map[mines.Position]struct{}
}

func newSimBoard(rows, cols, mineCount int, seed int64) (*simBoard, error) {
	total := rows * cols
	if mineCount < 0 || mineCount >= total {
		return nil, fmt.Errorf("mine count %d is not valid for a %dx%d board", mineCount, rows, cols)
	}
	rng := rand.New(rand.NewSource(seed))
	all := make([]mines.Position, 0, total)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			all = append(all, mines.Position{Row: r, Col: c})
		}
	}
	rng.Shuffle(len(all), func(i, j int) { all[i], all[j] = all[j], all[i] })

	placed := make(map[mines.Position]struct{}, mineCount)
	for _, p := range all[:mineCount] {
		placed[p] = struct{}{}
	}
	return &simBoard{rows: rows, cols: cols, mines: placed}, nil
}

func (b *simBoard) isMine(p mines.Position) bool {
	_, ok := b.mines[p]
	return ok
}

// adjacentCount returns the number of mines among p's 8-neighbors, using
// k's Neighbors only for its bounds (the cells' states are not read).
func (b *simBoard) adjacentCount(k mines.Knowledge, p mines.Position) uint8 {
	var n uint8
	for _, q := range k.Neighbors(p) {
		if b.isMine(q) {
			n++
		}
	}
	return n
}

// reveal applies a single reveal to k, returning the updated Knowledge
// and whether the revealed cell was a mine.
func (b *simBoard) reveal(k mines.Knowledge, p mines.Position) (mines.Knowledge, bool) {
	if b.isMine(p) {
		return k, true
	}
	cell := mines.Cell{Kind: mines.Revealed, Value: b.adjacentCount(k, p)}
	return k.Set(p, cell), false
}

func (b *simBoard) flag(k mines.Knowledge, p mines.Position) mines.Knowledge {
	return k.Set(p, mines.Cell{Kind: mines.Flagged})
}
