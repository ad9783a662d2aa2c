package board_test

import (
	"testing"

	"github.com/herohde/eloi/pkg/board"
	"github.com/herohde/eloi/pkg/board/fen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateInitialPosition(t *testing.T) {
	b := decode(t, fen.Initial)

	legal := b.LegalMoves()
	assert.Equal(t, 20, len(legal))

	pawns, doubles, knights := 0, 0, 0
	for _, m := range legal {
		switch {
		case m.IsDoublePawnMove():
			doubles++
			pawns++
		case m.IsPawnMove():
			pawns++
		default:
			knights++
			assert.Equal(t, board.WhiteKnight, m.Piece())
		}
	}
	assert.Equal(t, 16, pawns)
	assert.Equal(t, 8, doubles)
	assert.Equal(t, 4, knights)
}

func TestGenerateStages(t *testing.T) {
	b := decode(t, "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1")

	all := append([]board.Move{}, b.GenerateAll()...)
	captures := append([]board.Move{}, b.Generate(board.OnlyCaptures, ^board.EmptyBitboard, ^board.EmptyBitboard)...)
	quiets := append([]board.Move{}, b.Generate(board.OnlyNonCaptures, ^board.EmptyBitboard, ^board.EmptyBitboard)...)

	for _, m := range captures {
		assert.True(t, m.IsCapture() || m.Promotion() != board.NoColoredPiece, "capture stage: %v", m)
	}
	for _, m := range quiets {
		assert.True(t, m.IsQuiet(), "quiet stage: %v", m)
	}
	assert.Equal(t, len(all), len(captures)+len(quiets))
}

func TestGenerateMasks(t *testing.T) {
	b := decode(t, fen.Initial)

	// Only moves of the g1 knight.
	moves := b.Generate(board.AllMoves, board.BitMask(board.G1), ^board.EmptyBitboard)
	assert.Equal(t, 2, len(moves))
	for _, m := range moves {
		assert.Equal(t, board.G1, m.From())
	}
}

func TestCastlingThroughAttack(t *testing.T) {
	// The h3 bishop attacks f1: kingside castling is rejected, queenside is fine.
	b := decode(t, "r3k2r/8/8/8/8/7b/8/R3K2R w KQkq - 0 1")

	var kingside, queenside board.Move
	foundK, foundQ := false, false
	for _, m := range b.GenerateAll() {
		if !m.IsCastle() {
			continue
		}
		switch m.To() {
		case board.G1:
			kingside, foundK = m, true
		case board.C1:
			queenside, foundQ = m, true
		}
	}
	require.True(t, foundK)
	require.True(t, foundQ)

	assert.False(t, b.IsMoveLegal(&kingside))
	assert.True(t, b.IsMoveLegal(&queenside))
}

func TestCastlingSuppressedInCheck(t *testing.T) {
	// The e3 rook checks the king: no castle moves are generated at all.
	b := decode(t, "r3k2r/8/8/8/8/4r3/8/R3K2R w KQkq - 0 1")
	require.True(t, b.Position().InCheck())

	for _, m := range b.GenerateAll() {
		assert.False(t, m.IsCastle(), "castle generated in check: %v", m)
	}
}

func TestCastlingBlocked(t *testing.T) {
	// Queenside blocked by the b1 knight; kingside open.
	b := decode(t, "4k3/8/8/8/8/8/8/RN2K2R w KQ - 0 1")

	var castles []board.Move
	for _, m := range b.GenerateAll() {
		if m.IsCastle() {
			castles = append(castles, m)
		}
	}
	require.Equal(t, 1, len(castles))
	assert.Equal(t, board.G1, castles[0].To())
}

func TestPinnedPieceMoves(t *testing.T) {
	// The d2 rook is pinned by the d8 rook: it may move along the file only.
	b := decode(t, "3r3k/8/8/8/8/8/3R4/3K4 w - - 0 1")

	for _, m := range b.GenerateAll() {
		if m.From() != board.D2 {
			continue
		}
		legal := b.IsMoveLegal(&m)
		onFile := m.To().File() == board.FileD
		assert.Equal(t, onFile, legal, "pinned rook move %v", m)
	}
}

func TestEnPassantPinned(t *testing.T) {
	// Capturing en passant would expose the king on the fifth rank.
	b := decode(t, "8/8/8/KPpr4/8/8/8/4k3 w - c6 0 2")

	for _, m := range b.GenerateAll() {
		if m.IsEnPassant() {
			assert.False(t, b.IsMoveLegal(&m), "illegal en passant allowed: %v", m)
		}
	}
}

func TestIsCheckFlag(t *testing.T) {
	// The rook checks from d8; a step to d2 does not.
	b := decode(t, "4k3/8/8/8/8/8/8/3RK3 w - - 0 1")

	for _, m := range b.GenerateAll() {
		if !b.IsMoveLegal(&m) {
			continue
		}
		if m.From() == board.D1 && m.To() == board.D8 {
			assert.True(t, m.IsCheck(), "d1d8 must give check")
		}
		if m.From() == board.D1 && m.To() == board.D2 {
			assert.False(t, m.IsCheck(), "d1d2 gives no check")
		}
	}
}

func TestCheckEvasions(t *testing.T) {
	// Double check: only king moves are legal.
	b := decode(t, "4k3/8/8/8/1b6/8/4r3/4K3 w - - 0 1")
	require.True(t, b.Position().InCheck())

	for _, m := range b.LegalMoves() {
		assert.True(t, m.IsKingMove(), "non-king move in double check: %v", m)
	}
}

func TestPromotionGeneration(t *testing.T) {
	b := decode(t, "8/4P3/8/8/8/7k/8/K7 w - - 0 1")

	promos := map[board.ColoredPiece]bool{}
	for _, m := range b.GenerateAll() {
		if m.From() == board.E7 {
			assert.Equal(t, board.E8, m.To())
			promos[m.Promotion()] = true
		}
	}
	assert.Equal(t, 4, len(promos))
	assert.True(t, promos[board.WhiteQueen])
	assert.True(t, promos[board.WhiteKnight])
}
