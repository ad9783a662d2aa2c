package search

import (
	"github.com/herohde/eloi/pkg/board"
	"github.com/herohde/eloi/pkg/eval"
)

// deltaMargin is the quiescence safety margin: a capture whose victim cannot
// lift the stand-pat score within this margin of alpha is not worth trying.
const deltaMargin = 200

// checkDepth is how deep into quiescence checking moves are still generated.
const checkDepth = 1

// quiescence resolves tactical noise at the horizon: stand pat on the static
// score, then only captures (plus checks early on, and evasions while in check),
// skipping losing exchanges and futile captures.
func (r *runPVS) quiescence(ply, qdepth int, alpha, beta eval.Score) eval.Score {
	if r.checkHalt() {
		return eval.Invalid
	}
	r.nodes++

	pos := r.b.Position()
	inCheck := pos.InCheck()

	var static eval.Score
	if !inCheck {
		static = r.evaluate(pos)
		if static >= beta {
			return beta
		}
		if static > alpha {
			alpha = static
		}
	}

	// In check every evasion matters; otherwise captures, and checking moves
	// while shallow.

	var moves []board.Move
	switch {
	case inCheck, qdepth < checkDepth:
		moves = r.b.GenerateAll()
	default:
		moves = r.b.Generate(board.OnlyCaptures, ^board.EmptyBitboard, ^board.EmptyBitboard)
	}
	r.scoreMoves(moves, board.NullMove, pos.Played(), ply)

	hasLegal := false
	for i := range moves {
		pickBest(moves, i)
		m := moves[i]

		if !r.b.IsMoveLegal(&m) {
			continue
		}
		hasLegal = true

		if !inCheck {
			if m.IsQuiet() && !m.IsCheck() {
				continue
			}
			if m.IsCapture() {
				// Skip losing exchanges and captures that cannot raise alpha.
				if See(pos, m) < 0 {
					continue
				}
				if static+seeValues[m.Victim().Colorless()]+deltaMargin <= alpha {
					continue
				}
			}
		}

		r.b.Play(m)
		score := -r.quiescence(ply+1, qdepth+1, -beta, -alpha)
		r.b.Undo()
		if r.halted {
			return eval.Invalid
		}

		if score > alpha {
			alpha = score
		}
		if alpha >= beta {
			return beta
		}
	}

	if inCheck && !hasLegal {
		return eval.MatedIn(ply)
	}
	return alpha
}
