package search

import (
	"github.com/herohde/eloi/pkg/board"
	"github.com/herohde/eloi/pkg/eval"
)

// seeValues are coarse piece values used only for exchange evaluation.
var seeValues = [board.NumPieces]eval.Score{0, 100, 300, 300, 500, 900, 10000}

// See returns the static exchange evaluation of a capture: the best material
// outcome for the moving side if both sides keep recapturing on the target
// square with their least valuable attacker. Sliding attacks are recomputed as
// the square empties, so batteries and x-rays participate.
func See(p *board.Position, m board.Move) eval.Score {
	to := m.To()
	occ := p.All()

	var gain [32]eval.Score
	d := 0

	victim := m.Victim().Colorless()
	if m.IsEnPassant() {
		victim = board.Pawn
		occ &^= board.BitMask(board.EnPassantVictim(m.Piece().Color(), to))
	}
	gain[0] = seeValues[victim]

	attacker := m.Piece().Colorless()
	occ &^= board.BitMask(m.From())
	side := m.Piece().Color().Opponent()

	for {
		sq, piece, ok := leastValuableAttacker(p, to, side, occ)
		if !ok {
			break
		}

		d++
		gain[d] = seeValues[attacker] - gain[d-1]
		if eval.Max2(-gain[d-1], gain[d]) < 0 {
			break // neither continuation helps
		}

		occ &^= board.BitMask(sq)
		attacker = piece
		side = side.Opponent()
	}

	for ; d > 0; d-- {
		gain[d-1] = -eval.Max2(-gain[d-1], gain[d])
	}
	return gain[0]
}

// leastValuableAttacker returns the cheapest piece of the given color attacking
// the square under the given occupancy.
func leastValuableAttacker(p *board.Position, to board.Square, side board.Color, occ board.Bitboard) (board.Square, board.Piece, bool) {
	if bb := board.PawnAttackboard(side.Opponent(), to) & p.Piece(side, board.Pawn) & occ; bb != 0 {
		return bb.FirstSquare(), board.Pawn, true
	}
	if bb := board.KnightAttackboard(to) & p.Piece(side, board.Knight) & occ; bb != 0 {
		return bb.FirstSquare(), board.Knight, true
	}
	if bb := board.BishopAttackboard(occ, to) & p.Piece(side, board.Bishop) & occ; bb != 0 {
		return bb.FirstSquare(), board.Bishop, true
	}
	if bb := board.RookAttackboard(occ, to) & p.Piece(side, board.Rook) & occ; bb != 0 {
		return bb.FirstSquare(), board.Rook, true
	}
	if bb := board.QueenAttackboard(occ, to) & p.Piece(side, board.Queen) & occ; bb != 0 {
		return bb.FirstSquare(), board.Queen, true
	}
	if bb := board.KingAttackboard(to) & p.Piece(side, board.King) & occ; bb != 0 {
		return bb.FirstSquare(), board.King, true
	}
	return board.IllegalSquare, board.NoPiece, false
}
