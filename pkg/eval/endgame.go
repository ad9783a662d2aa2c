package eval

import "github.com/herohde/eloi/pkg/board"

// sideMaterial is the non-king material census for one side.
type sideMaterial struct {
	pawns, knights, bishops, rooks, queens int
}

func materialOf(p *board.Position, c board.Color) sideMaterial {
	return sideMaterial{
		pawns:   p.Piece(c, board.Pawn).PopCount(),
		knights: p.Piece(c, board.Knight).PopCount(),
		bishops: p.Piece(c, board.Bishop).PopCount(),
		rooks:   p.Piece(c, board.Rook).PopCount(),
		queens:  p.Piece(c, board.Queen).PopCount(),
	}
}

func (m sideMaterial) minors() int {
	return m.knights + m.bishops
}

func (m sideMaterial) majors() int {
	return m.rooks + m.queens
}

func (m sideMaterial) total() int {
	return m.pawns + m.minors() + m.majors()
}

// simpleEndgame recognizes endgames where a known technique or result overrides
// normal evaluation: a lone defending king against mating material, and king and
// pawn versus king. The score is from the side to move's perspective; the second
// result marks a recognized draw.
func (e *Evaluator) simpleEndgame(p *board.Position) (Score, bool, bool) {
	white := materialOf(p, board.White)
	black := materialOf(p, board.Black)

	var winner board.Color
	var win sideMaterial
	switch {
	case white.total() > 0 && black.total() == 0:
		winner, win = board.White, white
	case black.total() > 0 && white.total() == 0:
		winner, win = board.Black, black
	default:
		return 0, false, false
	}

	loser := winner.Opponent()
	winnerKing, loserKing := p.KingSquare(winner), p.KingSquare(loser)

	var score Score
	switch {
	case win.pawns == 1 && win.minors() == 0 && win.majors() == 0:
		// King and pawn versus king: key-square rules per pawn rank.
		s, drawn, ok := kpkScore(p, winner)
		if !ok {
			return 0, false, false
		}
		score = s
		if drawn {
			return DrawScore, true, true
		}

	case win.pawns == 0 && win.knights == 2 && win.bishops == 0 && win.majors() == 0:
		// Two knights cannot force mate.
		return DrawScore, true, true

	case win.pawns == 0 && win.knights == 1 && win.bishops == 1 && win.majors() == 0:
		// Bishop and knight mate: drive the defending king to a corner of the
		// bishop's color.
		light := p.Piece(winner, board.Bishop)&board.LightSquares != 0
		score = SimpleEndgame -
			Score(board.DistanceToNearestCornerOfColor(light, loserKing)) -
			Score(board.Distance(winnerKing, loserKing))

	default:
		if win.pawns > 0 {
			return 0, false, false // pawns promote; normal evaluation handles it
		}
		// Mating material against a lone king: drive it to any corner.
		score = SimpleEndgame -
			Score(8*board.DistanceToNearestCorner(loserKing)) -
			Score(2*board.Distance(winnerKing, loserKing))
	}

	if p.Turn() != winner {
		score = -score
	}
	return score, false, true
}

// kpkScore applies the king-and-pawn-versus-king key-square rules. A win is only
// claimed with the attacking king on a key square; a rook pawn with the defending
// king ahead of it on the same file is a draw; anything else falls through to
// normal evaluation.
func kpkScore(p *board.Position, winner board.Color) (Score, bool, bool) {
	pawn := p.Piece(winner, board.Pawn).FirstSquare()
	winnerKing := p.KingSquare(winner)
	loserKing := p.KingSquare(winner.Opponent())

	r := pawn.RelativeRank(winner).V()

	if f := pawn.File(); f == board.FileA || f == board.FileH {
		if loserKing.File() == f && loserKing.RelativeRank(winner).V() > r {
			return DrawScore, true, true
		}
	}

	kr := winnerKing.RelativeRank(winner).V()
	fileDiff := winnerKing.File().V() - pawn.File().V()
	if fileDiff < 0 {
		fileDiff = -fileDiff
	}

	key := false
	switch {
	case 1 <= r && r <= 3:
		key = kr == r+2 && fileDiff <= 1
	case r == 4 || r == 5:
		key = 0 < kr-r && kr-r <= 2 && fileDiff <= 1
	case r == 6:
		key = 0 <= kr-r && kr-r <= 1 && fileDiff <= 1
	}

	if key {
		return SimpleEndgame + Score(8*r), false, true
	}
	return 0, false, false
}

// isDrawnPattern recognizes pawnless material combinations that cannot be won
// with normal play. The endgame scale drops to zero for them.
func (e *Evaluator) isDrawnPattern(p *board.Position) bool {
	if p.Piece(board.White, board.Pawn)|p.Piece(board.Black, board.Pawn) != 0 {
		return false
	}

	w := materialOf(p, board.White)
	b := materialOf(p, board.Black)
	if w.total() == 0 || b.total() == 0 {
		return false
	}

	// Minor-piece only combinations.
	if w.majors() == 0 && b.majors() == 0 {
		if w.minors() == 1 && b.minors() == 1 {
			return true
		}
		if (w.knights == 2 && w.bishops == 0 && b.minors() <= 1) ||
			(b.knights == 2 && b.bishops == 0 && w.minors() <= 1) {
			return true
		}
		return false
	}

	// Equal majors with no minors.
	if w.minors() == 0 && b.minors() == 0 && w.rooks == b.rooks && w.queens == b.queens && w.majors() <= 2 {
		return true
	}

	// Rook versus rook plus a minor.
	if w.rooks == 1 && w.queens == 0 && b.rooks == 1 && b.queens == 0 &&
		(w.minors() == 0 && b.minors() == 1 || w.minors() == 1 && b.minors() == 0) {
		return true
	}

	// Queen versus two minors of the same kind.
	queenSide := func(q, m sideMaterial) bool {
		return q.queens == 1 && q.rooks == 0 && q.minors() == 0 &&
			m.majors() == 0 && (m.knights == 2 && m.bishops == 0 || m.bishops == 2 && m.knights == 0)
	}
	if queenSide(w, b) || queenSide(b, w) {
		return true
	}

	return false
}
