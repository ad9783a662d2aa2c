package search

import "github.com/herohde/eloi/pkg/board"

// Killers holds, per ply, the two most recent quiet moves that caused a beta
// cutoff in a sibling subtree.
type Killers struct {
	moves [board.MaxPlies][2]board.Move
}

// Add records a killer at the given ply, keeping the previous one as backup.
func (k *Killers) Add(ply int, m board.Move) {
	if !k.moves[ply][0].Equals(m) {
		k.moves[ply][1] = k.moves[ply][0]
		k.moves[ply][0] = m
	}
}

// Rank returns 2 for the primary killer at the ply, 1 for the secondary, else 0.
func (k *Killers) Rank(ply int, m board.Move) int32 {
	switch {
	case k.moves[ply][0].Equals(m):
		return 2
	case k.moves[ply][1].Equals(m):
		return 1
	default:
		return 0
	}
}

func (k *Killers) Clear() {
	k.moves = [board.MaxPlies][2]board.Move{}
}

// History update constants. Counters decay asymptotically toward ±HistoryMax
// under v += Δ*M − v*|Δ|/D, so stale information fades as new cutoffs arrive.
const (
	HistoryMax        = 16384
	historyMultiplier = 32
	historyDivisor    = 512
)

// History tracks how often moves cause or fail to cause beta cutoffs: a
// piece-to-square table for quiet moves, a counter-move table keyed by the
// previous move, and a capture table keyed by attacker, target square and
// victim kind.
type History struct {
	quiet   [board.NumColoredPieces][board.NumSquares]int32
	counter [board.NumColoredPieces][board.NumSquares][board.NumColoredPieces][board.NumSquares]int16
	capture [board.NumColoredPieces][board.NumSquares][board.NumPieces]int32
}

// NewHistory returns empty history tables.
func NewHistory() *History {
	return &History{}
}

// Quiet returns the blended ordering value of a quiet move: move history plus
// counter-move history for the previous move.
func (h *History) Quiet(prev, m board.Move) int32 {
	v := h.quiet[m.Piece()][m.To()]
	if !prev.IsNull() {
		v += int32(h.counter[prev.Piece()][prev.To()][m.Piece()][m.To()])
	}
	return v
}

// UpdateQuiet applies a positive delta to a cutoff move or a negative delta to a
// quiet move that was tried before the move that caused the cutoff.
func (h *History) UpdateQuiet(prev, m board.Move, delta int32) {
	v := &h.quiet[m.Piece()][m.To()]
	*v += delta*historyMultiplier - *v*abs32(delta)/historyDivisor

	if !prev.IsNull() {
		c := &h.counter[prev.Piece()][prev.To()][m.Piece()][m.To()]
		*c += int16(delta*historyMultiplier - int32(*c)*abs32(delta)/historyDivisor)
	}
}

// Capture returns the ordering value of a capture.
func (h *History) Capture(m board.Move) int32 {
	return h.capture[m.Piece()][m.To()][m.Victim().Colorless()]
}

// UpdateCapture applies a delta to a capture move.
func (h *History) UpdateCapture(m board.Move, delta int32) {
	v := &h.capture[m.Piece()][m.To()][m.Victim().Colorless()]
	*v += delta*historyMultiplier - *v*abs32(delta)/historyDivisor
}

func (h *History) Clear() {
	*h = History{}
}

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}
