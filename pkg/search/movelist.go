package search

import "github.com/herohde/eloi/pkg/board"

// Move ordering score bands: the cache move above everything, then captures and
// promotions by MVV-LVA and capture history, then killers, then quiet moves by
// blended move history and counter-move history.
const (
	scoreHash    int32 = 1 << 30
	scoreCapture int32 = 1 << 28
	scoreKiller  int32 = 1 << 27
)

// scoreMoves assigns ordering scores in place.
func (r *runPVS) scoreMoves(moves []board.Move, hashMove, prev board.Move, ply int) {
	for i := range moves {
		m := &moves[i]
		switch {
		case !hashMove.IsNull() && m.Equals(hashMove):
			m.SetBest(true)
			m.SetScore(scoreHash)

		case m.IsCapture() || m.Promotion() != board.NoColoredPiece:
			mvvlva := int32(seeValues[m.Victim().Colorless()])*64 -
				int32(seeValues[m.Piece().Colorless()]) +
				int32(seeValues[m.Promotion().Colorless()])
			m.SetScore(scoreCapture + mvvlva + r.history.Capture(*m)/64)

		default:
			if k := r.killers.Rank(ply, *m); k > 0 {
				m.SetScore(scoreKiller + k)
			} else {
				m.SetScore(r.history.Quiet(prev, *m))
			}
		}
	}
}

// pickBest swaps the highest-scored remaining move to index i. Incremental
// selection keeps the common early-cutoff case cheap.
func pickBest(moves []board.Move, i int) {
	best := i
	for j := i + 1; j < len(moves); j++ {
		if moves[j].Score() > moves[best].Score() {
			best = j
		}
	}
	moves[i], moves[best] = moves[best], moves[i]
}
