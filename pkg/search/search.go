// Package search contains search functionality and utilities.
package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/herohde/eloi/pkg/board"
	"github.com/herohde/eloi/pkg/eval"
)

// ErrHalted is an error indicating that the search was halted.
var ErrHalted = errors.New("search halted")

// PV represents the principal variation for some search depth.
type PV struct {
	Depth int
	Moves []board.Move
	Score eval.Score
	Nodes uint64
	Time  time.Duration
	Hash  float64 // transposition table utilization, if any
}

func (p PV) String() string {
	return fmt.Sprintf("depth=%v score=%v nodes=%v time=%v pv=%v", p.Depth, p.Score, p.Nodes, p.Time, board.PrintMoves(p.Moves))
}

// Context carries the state shared across one search: the transposition table,
// the killer/history tables and the evaluation noise. It is owned by the search
// worker for the duration of a search.
type Context struct {
	TT       TranspositionTable
	Killers  *Killers
	History  *History
	Noise    eval.Random
	NodeLimit uint64 // 0 == no limit

	// Ponder, if set, forces the search down the given line. Used by the console
	// driver for score breakdowns.
	Ponder []board.Move
}

// Search implements a full-width search of the game tree to a given depth.
type Search interface {
	Search(ctx context.Context, sctx *Context, b *board.Board, depth int) (uint64, eval.Score, []board.Move, error)
}
