package search

import (
	"context"

	"github.com/herohde/eloi/pkg/board"
	"github.com/herohde/eloi/pkg/eval"
	"github.com/seekerror/stdlib/pkg/util/contextx"
)

// PVS implements principal variation search: negamax alpha-beta where the first
// move is searched with a full window and the rest with a null window, re-searched
// on failure. Pseudo-code:
//
// function pvs(node, depth, α, β, color) is
//    if depth = 0 or node is a terminal node then
//        return color × the heuristic value of node
//    for each child of node do
//        if child is first child then
//            score := −pvs(child, depth − 1, −β, −α, −color)
//        else
//            score := −pvs(child, depth − 1, −α − 1, −α, −color) (* search with a null window *)
//            if α < score < β then
//                score := −pvs(child, depth − 1, −β, −score, −color) (* if it failed high, do a full re-search *)
//        α := max(α, score)
//        if α ≥ β then
//            break (* beta cut-off *)
//    return α
//
// See: https://en.wikipedia.org/wiki/Principal_variation_search.
//
// On top of the skeleton: transposition caching, null-move pruning, late-move
// reductions, futility pruning and a quiescence search with SEE filtering and
// delta pruning.
type PVS struct {
	Eval *eval.Evaluator
}

const (
	// haltCheckInterval bounds how many nodes may pass between cancellation
	// checks.
	haltCheckInterval = 4096

	// drawRepeats is the number of earlier occurrences of a key that scores the
	// position as a repetition draw.
	drawRepeats = 2

	nullMoveMinDepth  = 3
	nullMoveReduction = 2

	lmrMinDepth  = 3
	lmrFullMoves = 4

	futilityMaxDepth = 2
)

var futilityMargin = [futilityMaxDepth + 1]eval.Score{0, 150, 300}

func (s PVS) Search(ctx context.Context, sctx *Context, b *board.Board, depth int) (uint64, eval.Score, []board.Move, error) {
	run := &runPVS{
		ctx:     ctx,
		eval:    s.Eval,
		tt:      sctx.TT,
		killers: sctx.Killers,
		history: sctx.History,
		noise:   sctx.Noise,
		limit:   sctx.NodeLimit,
		ponder:  sctx.Ponder,
		b:       b,
	}
	if run.tt == nil {
		run.tt = NoTranspositionTable{}
	}
	if run.killers == nil {
		run.killers = &Killers{}
	}
	if run.history == nil {
		run.history = NewHistory()
	}

	score, moves := run.search(depth, 0, -eval.Inf, eval.Inf, true)
	if run.halted || contextx.IsCancelled(ctx) {
		return 0, eval.Invalid, nil, ErrHalted
	}
	return run.nodes, score, moves, nil
}

type runPVS struct {
	ctx     context.Context
	eval    *eval.Evaluator
	tt      TranspositionTable
	killers *Killers
	history *History
	noise   eval.Random
	b       *board.Board

	ponder []board.Move
	limit  uint64
	nodes  uint64
	halted bool
}

// checkHalt observes cancellation and the node limit at a bounded interval.
func (r *runPVS) checkHalt() bool {
	if r.halted {
		return true
	}
	if r.nodes%haltCheckInterval == 0 && contextx.IsCancelled(r.ctx) {
		r.halted = true
	}
	if r.limit > 0 && r.nodes >= r.limit {
		r.halted = true
	}
	return r.halted
}

// search returns the score for the side to move. On halt, the result is Invalid
// and must be discarded; every play on the way up is undone.
func (r *runPVS) search(depth, ply int, alpha, beta eval.Score, pvNode bool) (eval.Score, []board.Move) {
	if r.checkHalt() {
		return eval.Invalid, nil
	}

	pos := r.b.Position()

	// (1) Probe the cache. A deep-enough entry with a usable bound answers the
	// node outright; otherwise its move leads the ordering.

	var hashMove board.Move
	if e, ok := r.tt.Read(pos.Key()); ok {
		hashMove = e.Move
		if e.Depth >= depth && !pvNode && ply > 0 {
			score := scoreFromTT(e.Score, ply)
			switch e.Bound {
			case ExactBound:
				return score, nil
			case LowerBound:
				if score >= beta {
					return score, nil
				}
			case UpperBound:
				if score <= alpha {
					return score, nil
				}
			}
		}
	}

	// (2) Horizon: descend into quiescence.

	if depth <= 0 {
		return r.quiescence(ply, 0, alpha, beta), nil
	}

	// (3) Terminal draws, except at the root.

	if ply > 0 {
		if draw, _ := r.b.IsTerminalDraw(drawRepeats); draw {
			return eval.DrawScore, nil
		}
	}

	r.nodes++
	inCheck := pos.InCheck()

	// (4) Null-move pruning: if passing still fails high on a reduced null-window
	// search, the node is good enough to cut. Skipped in check, on PV nodes, near
	// mate windows, and without non-pawn material (zugzwang).

	if !pvNode && !inCheck && depth >= nullMoveMinDepth &&
		!eval.IsMate(beta) && r.hasNonPawnMaterial(pos.Turn()) {
		r.b.PlayNull()
		score, _ := r.search(depth-1-nullMoveReduction, ply+1, -beta, -beta+1, false)
		r.b.Undo()
		if r.halted {
			return eval.Invalid, nil
		}
		if -score >= beta {
			return beta, nil
		}
	}

	// (5) Generate and order moves.

	moves := r.b.GenerateAll()
	r.scoreMoves(moves, hashMove, pos.Played(), ply)

	futile := false
	if depth <= futilityMaxDepth && !inCheck && !pvNode && !eval.IsMate(alpha) {
		futile = r.evaluate(pos)+futilityMargin[depth] <= alpha
	}

	// (6) Search the moves: first with a full window, the rest with a null
	// window, reduced when late and quiet.

	alphaOrig := alpha
	hasLegal := false
	legalCount := 0
	bestScore := -eval.Inf
	var best board.Move
	var pv []board.Move
	var quietsTried []board.Move

	for i := range moves {
		pickBest(moves, i)
		m := moves[i]

		if len(r.ponder) > ply && !m.Equals(r.ponder[ply]) {
			continue
		}
		if !r.b.IsMoveLegal(&m) {
			continue
		}
		hasLegal = true

		if futile && legalCount > 0 && m.IsQuiet() && !m.IsCheck() {
			continue
		}
		legalCount++

		reduction := 0
		if legalCount > lmrFullMoves && depth >= lmrMinDepth && m.IsQuiet() && !inCheck && !m.IsCheck() {
			reduction = 1
			if legalCount > 3*lmrFullMoves {
				reduction = 2
			}
		}

		r.b.Play(m)

		var score eval.Score
		var rem []board.Move
		if legalCount == 1 {
			s, sub := r.search(depth-1, ply+1, -beta, -alpha, pvNode)
			score, rem = -s, sub
		} else {
			s, sub := r.search(depth-1-reduction, ply+1, -alpha-1, -alpha, false)
			score, rem = -s, sub
			if score > alpha && reduction > 0 {
				s, sub = r.search(depth-1, ply+1, -alpha-1, -alpha, false)
				score, rem = -s, sub
			}
			if score > alpha && score < beta {
				s, sub = r.search(depth-1, ply+1, -beta, -alpha, pvNode)
				score, rem = -s, sub
			}
		}

		r.b.Undo()
		if r.halted {
			return eval.Invalid, nil
		}

		if score > bestScore {
			bestScore = score
			best = m
			pv = append([]board.Move{m}, rem...)
		}
		if score > alpha {
			alpha = score
		}
		if alpha >= beta {
			// Beta cutoff: reward the move, debit the quiet moves tried first.
			if m.IsQuiet() {
				r.killers.Add(ply, m)
				r.history.UpdateQuiet(pos.Played(), m, int32(depth))
				for _, q := range quietsTried {
					r.history.UpdateQuiet(pos.Played(), q, -int32(depth))
				}
			} else if m.IsCapture() {
				r.history.UpdateCapture(m, int32(depth))
			}
			break
		}
		if m.IsQuiet() {
			quietsTried = append(quietsTried, m)
		}
	}

	// (7) No legal move: checkmate or stalemate.

	if !hasLegal {
		if inCheck {
			return eval.MatedIn(ply), nil
		}
		return eval.DrawScore, nil
	}

	// (8) Store the result with its precision.

	bound := ExactBound
	switch {
	case bestScore >= beta:
		bound = LowerBound
	case bestScore <= alphaOrig:
		bound = UpperBound
	}
	r.tt.Write(pos.Key(), bound, depth, scoreToTT(bestScore, ply), best)

	return bestScore, pv
}

// evaluate returns the static score of the position with noise applied, using
// the per-position cache slot. Recognized drawn endgames score zero.
func (r *runPVS) evaluate(pos *board.Position) eval.Score {
	if s, ok := pos.CachedScore(); ok {
		return eval.Score(s)
	}
	score, drawn := r.eval.Evaluate(pos)
	if drawn {
		score = eval.DrawScore
	} else {
		score += r.noise.Noise()
	}
	pos.SetCachedScore(int32(score))
	return score
}

func (r *runPVS) hasNonPawnMaterial(c board.Color) bool {
	pos := r.b.Position()
	return pos.Piece(c, board.Knight)|pos.Piece(c, board.Bishop)|
		pos.Piece(c, board.Rook)|pos.Piece(c, board.Queen) != 0
}

// Mate scores are stored relative to the cached node and adjusted back to
// root-relative on probe, so cached mates remain correct at any ply.
func scoreToTT(s eval.Score, ply int) eval.Score {
	if d, ok := eval.MateDistance(s); ok {
		if d > 0 {
			return s + eval.Score(ply)
		}
		return s - eval.Score(ply)
	}
	return s
}

func scoreFromTT(s eval.Score, ply int) eval.Score {
	if d, ok := eval.MateDistance(s); ok {
		if d > 0 {
			return s - eval.Score(ply)
		}
		return s + eval.Score(ply)
	}
	return s
}
