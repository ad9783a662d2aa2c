package board_test

import (
	"testing"

	"github.com/herohde/eloi/pkg/board"
	"github.com/herohde/eloi/pkg/board/fen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, position string) *board.Board {
	t.Helper()

	pos, err := fen.Decode(position)
	require.NoError(t, err)
	return board.NewBoard(pos)
}

func playMove(t *testing.T, b *board.Board, move string) {
	t.Helper()

	from, to, promo, err := board.ParseMoveStr(move)
	require.NoError(t, err)

	candidate := board.NewMove(board.NoColoredPiece, from, to)
	if promo != board.NoPiece {
		candidate = candidate.WithPromotion(board.PieceOfColor(promo, b.Turn()))
	}
	for _, m := range b.GenerateAll() {
		if candidate.Equals(m) {
			require.True(t, b.IsMoveLegal(&m), "illegal move: %v", move)
			b.Play(m)
			return
		}
	}
	t.Fatalf("move not found: %v", move)
}

// recomputePieceKey recomputes the piece-squares key from scratch.
func recomputePieceKey(p *board.Position) board.Key {
	var key board.Key
	for sq := board.ZeroSquare; sq < board.NumSquares; sq++ {
		if piece := p.PieceAt(sq); piece != board.NoColoredPiece {
			key ^= board.PieceSquareKey(piece, sq)
		}
	}
	return key
}

func TestPositionInvariants(t *testing.T) {
	tests := []string{
		fen.Initial,
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
		"rnbq1k1r/pp1Pbppp/2p5/8/2B5/8/PPP1NnPP/RNBQK2R w KQ - 1 8",
	}

	for _, position := range tests {
		b := decode(t, position)
		p := b.Position()

		// Occupancies are exact unions and exactly one king per side.
		var white, black board.Bitboard
		for piece := board.Pawn; piece <= board.King; piece++ {
			white |= p.Piece(board.White, piece)
			black |= p.Piece(board.Black, piece)
		}
		assert.Equal(t, white, p.Color(board.White))
		assert.Equal(t, black, p.Color(board.Black))
		assert.Equal(t, white|black, p.All())
		assert.Equal(t, 1, p.Piece(board.White, board.King).PopCount())
		assert.Equal(t, 1, p.Piece(board.Black, board.King).PopCount())

		assert.Equal(t, recomputePieceKey(p), p.PieceSquaresKey())
	}
}

func TestPlayUndoRoundTrip(t *testing.T) {
	tests := []string{
		fen.Initial,
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"rnbqkbnr/ppp1pppp/8/3pP3/8/8/PPPP1PPP/RNBQKBNR w KQkq d6 0 2",
		"rnbq1k1r/pp1Pbppp/2p5/8/2B5/8/PPP1NnPP/RNBQK2R w KQ - 1 8",
	}

	for _, position := range tests {
		b := decode(t, position)

		moves := b.GenerateAll()
		saved := *b.Position()

		for _, m := range moves {
			if !b.IsMoveLegal(&m) {
				continue
			}

			b.Play(m)

			// The side just moved must not be left in check, and the
			// incremental key must match a full recomputation.
			assert.False(t, b.Position().IsChecked(saved.Turn()), "%v leaves king attacked", m)
			assert.Equal(t, recomputePieceKey(b.Position()), b.Position().PieceSquaresKey(), "%v: key mismatch", m)

			b.Undo()

			// Every field restored bit-for-bit.
			assert.Equal(t, saved, *b.Position(), "%v: position not restored", m)
		}
	}
}

func TestPlayCastling(t *testing.T) {
	b := decode(t, "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1")

	playMove(t, b, "e1g1")
	p := b.Position()
	assert.Equal(t, board.PieceOfColor(board.King, board.White), p.PieceAt(board.G1))
	assert.Equal(t, board.PieceOfColor(board.Rook, board.White), p.PieceAt(board.F1))
	assert.Equal(t, board.NoColoredPiece, p.PieceAt(board.E1))
	assert.Equal(t, board.NoColoredPiece, p.PieceAt(board.H1))
	assert.False(t, p.Castling().IsAllowed(board.WhiteKingSideCastle))
	assert.False(t, p.Castling().IsAllowed(board.WhiteQueenSideCastle))
	assert.True(t, p.Castling().IsAllowed(board.BlackKingSideCastle))

	playMove(t, b, "e8c8")
	p = b.Position()
	assert.Equal(t, board.PieceOfColor(board.King, board.Black), p.PieceAt(board.C8))
	assert.Equal(t, board.PieceOfColor(board.Rook, board.Black), p.PieceAt(board.D8))
	assert.Equal(t, board.NoCastlingRights, p.Castling())
}

func TestPlayEnPassant(t *testing.T) {
	// Black's d-pawn has just jumped to d5, beside the white pawn on e5.
	b := decode(t, "rnbqkbnr/ppp1pppp/8/3pP3/8/8/PPPP1PPP/RNBQKBNR w KQkq d6 0 2")

	var ep board.Move
	found := false
	for _, m := range b.GenerateAll() {
		if m.From() == board.E5 && m.To() == board.D6 {
			ep, found = m, true
		}
	}
	require.True(t, found, "e5d6 not generated")
	assert.True(t, ep.IsEnPassant())
	assert.Equal(t, board.PieceOfColor(board.Pawn, board.Black), ep.Victim())
	require.True(t, b.IsMoveLegal(&ep))

	b.Play(ep)
	p := b.Position()
	assert.Equal(t, board.NoColoredPiece, p.PieceAt(board.D5))
	assert.Equal(t, board.PieceOfColor(board.Pawn, board.White), p.PieceAt(board.D6))
	assert.Equal(t, board.NoColoredPiece, p.PieceAt(board.E5))
}

func TestPlayDoublePawnMove(t *testing.T) {
	b := decode(t, fen.Initial)

	playMove(t, b, "e2e4")
	sq, ok := b.Position().EnPassant()
	assert.True(t, ok)
	assert.Equal(t, board.E3, sq)

	playMove(t, b, "g8f6")
	_, ok = b.Position().EnPassant()
	assert.False(t, ok)
}

func TestHashRoundTrip(t *testing.T) {
	b := decode(t, fen.Initial)
	initial := b.Hash()

	moves := []string{"e2e4", "e7e5", "g1f3", "b8c6", "f1b5", "g8f6"}
	for _, m := range moves {
		playMove(t, b, m)
	}
	for range moves {
		b.Undo()
	}
	assert.Equal(t, initial, b.Hash())
}

func TestRepetitionDraw(t *testing.T) {
	b := decode(t, fen.Initial)

	// Knights out and back, twice over.
	moves := []string{"g1f3", "g8f6", "f3g1", "f6g8", "g1f3", "g8f6", "f3g1", "f6g8"}
	for i, m := range moves {
		draw, _ := b.IsTerminalDraw(2)
		assert.False(t, draw, "premature draw before move %v", i)
		playMove(t, b, m)
	}

	draw, repetition := b.IsTerminalDraw(2)
	assert.True(t, draw)
	assert.True(t, repetition)
}

func TestFiftyMoveDraw(t *testing.T) {
	b := decode(t, "8/8/8/3k4/8/3K4/4R3/8 w - - 99 80")

	draw, _ := b.IsTerminalDraw(2)
	assert.False(t, draw)

	playMove(t, b, "e2e1")
	draw, repetition := b.IsTerminalDraw(2)
	assert.True(t, draw)
	assert.False(t, repetition)
}

func TestInsufficientMaterial(t *testing.T) {
	tests := []struct {
		position string
		expected bool
	}{
		{"8/8/4k3/8/8/3K4/8/8 w - - 0 1", true},                // K vs K
		{"8/8/4k3/8/8/3KB3/8/8 w - - 0 1", true},               // KB vs K
		{"8/8/4k3/8/8/3KN3/8/8 w - - 0 1", true},               // KN vs K
		{"8/2b5/4k3/8/8/3KB3/8/8 w - - 0 1", true},             // single bishops on the same color
		{"8/1b6/4k3/8/8/3KB3/8/8 w - - 0 1", false},            // single bishops on opposite colors
		{"8/8/4k3/8/8/3K4/4P3/8 w - - 0 1", false},             // pawn
		{"8/8/4k3/8/8/3KR3/8/8 w - - 0 1", false},              // rook
		{"8/8/2n1k3/8/8/3KN3/8/8 w - - 0 1", false},            // two knights
	}

	for _, tt := range tests {
		b := decode(t, tt.position)
		assert.Equal(t, tt.expected, b.Position().HasInsufficientMaterial(), "%v", tt.position)
	}
}

func TestPlayNull(t *testing.T) {
	b := decode(t, "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1")
	saved := *b.Position()

	b.PlayNull()
	assert.Equal(t, board.Black, b.Turn())
	assert.NotEqual(t, saved.Key(), b.Hash())
	_, ok := b.Position().EnPassant()
	assert.False(t, ok)

	b.Undo()
	assert.Equal(t, saved, *b.Position())
}
