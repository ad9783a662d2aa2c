package board

import (
	"fmt"
	"strings"
)

// Move represents a not-necessarily legal move packed into a single word, so move
// lists are flat arrays and ordering is an integer compare. 64 bits:
//
//	bits  0-5   from square
//	bits  6-11  to square
//	bits 12-15  moving piece (colored)
//	bits 16-19  captured victim (colored), if any
//	bits 20-23  promotion piece (colored), if any
//	bit  24     castling
//	bit  25     king move
//	bit  26     pawn move
//	bit  27     double pawn move
//	bit  28     en passant capture
//	bit  29     gives check (filled during the legality test)
//	bit  30     cache best move
//	bits 32-63  ordering score (signed)
//
// The ordering score may be mutated in place without changing the (from, to,
// promotion) identity of the move.
type Move uint64

// NullMove is the absent move. It has no moving piece.
const NullMove Move = 0

const (
	moveCastleBit Move = 1 << (24 + iota)
	moveKingBit
	movePawnBit
	moveDoublePawnBit
	moveEnPassantBit
	moveCheckBit
	moveBestBit
)

// NewMove returns a bare move of the given piece. Victim, promotion and flags are
// attached with the With* builders.
func NewMove(piece ColoredPiece, from, to Square) Move {
	return Move(from) | Move(to)<<6 | Move(piece)<<12
}

func (m Move) WithVictim(victim ColoredPiece) Move {
	return m | Move(victim)<<16
}

func (m Move) WithPromotion(promotion ColoredPiece) Move {
	return m | Move(promotion)<<20
}

func (m Move) WithCastle() Move {
	return m | moveCastleBit | moveKingBit
}

func (m Move) WithKingMove() Move {
	return m | moveKingBit
}

func (m Move) WithPawnMove() Move {
	return m | movePawnBit
}

func (m Move) WithDoublePawnMove() Move {
	return m | movePawnBit | moveDoublePawnBit
}

func (m Move) WithEnPassant() Move {
	return m | movePawnBit | moveEnPassantBit
}

func (m Move) From() Square {
	return Square(m & 0x3f)
}

func (m Move) To() Square {
	return Square((m >> 6) & 0x3f)
}

func (m Move) Piece() ColoredPiece {
	return ColoredPiece((m >> 12) & 0xf)
}

func (m Move) Victim() ColoredPiece {
	return ColoredPiece((m >> 16) & 0xf)
}

func (m Move) Promotion() ColoredPiece {
	return ColoredPiece((m >> 20) & 0xf)
}

func (m Move) IsCastle() bool {
	return m&moveCastleBit != 0
}

func (m Move) IsKingMove() bool {
	return m&moveKingBit != 0
}

func (m Move) IsPawnMove() bool {
	return m&movePawnBit != 0
}

func (m Move) IsDoublePawnMove() bool {
	return m&moveDoublePawnBit != 0
}

func (m Move) IsEnPassant() bool {
	return m&moveEnPassantBit != 0
}

func (m Move) IsCheck() bool {
	return m&moveCheckBit != 0
}

func (m *Move) SetCheck(v bool) {
	if v {
		*m |= moveCheckBit
	} else {
		*m &^= moveCheckBit
	}
}

func (m Move) IsBest() bool {
	return m&moveBestBit != 0
}

func (m *Move) SetBest(v bool) {
	if v {
		*m |= moveBestBit
	} else {
		*m &^= moveBestBit
	}
}

// IsCapture returns true iff the move takes a piece, en passant included.
func (m Move) IsCapture() bool {
	return m.Victim() != NoColoredPiece || m.IsEnPassant()
}

// IsQuiet returns true iff the move is neither a capture nor a promotion.
func (m Move) IsQuiet() bool {
	return !m.IsCapture() && m.Promotion() == NoColoredPiece
}

func (m Move) IsNull() bool {
	return m.Piece() == NoColoredPiece
}

// Score returns the ordering score.
func (m Move) Score() int32 {
	return int32(m >> 32)
}

// SetScore replaces the ordering score in place.
func (m *Move) SetScore(score int32) {
	*m = Move(uint64(*m)&0xffffffff) | Move(uint64(uint32(score)))<<32
}

// Equals returns true iff the moves share the (from, to, promotion) identity.
func (m Move) Equals(o Move) bool {
	return m.From() == o.From() && m.To() == o.To() && m.Promotion() == o.Promotion()
}

func (m Move) String() string {
	if m.IsNull() {
		return "0000"
	}
	if p := m.Promotion(); p != NoColoredPiece {
		return fmt.Sprintf("%v%v%v", m.From(), m.To(), p.Colorless())
	}
	return fmt.Sprintf("%v%v", m.From(), m.To())
}

// ParseMoveStr parses a move in pure algebraic coordinate notation, such as "a2a4"
// or "a7a8q". The parsed move carries no contextual information; the board resolves
// it against the generated moves of the position.
func ParseMoveStr(str string) (Square, Square, Piece, error) {
	runes := []rune(str)

	if len(runes) < 4 || len(runes) > 5 {
		return IllegalSquare, IllegalSquare, NoPiece, fmt.Errorf("invalid move: '%v'", str)
	}

	from, err := ParseSquare(runes[0], runes[1])
	if err != nil {
		return IllegalSquare, IllegalSquare, NoPiece, fmt.Errorf("invalid from: '%v': %v", str, err)
	}
	to, err := ParseSquare(runes[2], runes[3])
	if err != nil {
		return IllegalSquare, IllegalSquare, NoPiece, fmt.Errorf("invalid to: '%v': %v", str, err)
	}

	if len(runes) == 5 {
		promo, ok := ParsePiece(runes[4])
		if !ok || promo == Pawn || promo == King {
			return IllegalSquare, IllegalSquare, NoPiece, fmt.Errorf("invalid promotion: '%v'", str)
		}
		return from, to, promo, nil
	}
	return from, to, NoPiece, nil
}

// PrintMoves formats a move list as a space-separated string.
func PrintMoves(moves []Move) string {
	var sb strings.Builder
	for i, m := range moves {
		if i > 0 {
			sb.WriteRune(' ')
		}
		sb.WriteString(m.String())
	}
	return sb.String()
}
