package board

// Piece represents a chess piece (King, Pawn, etc) with no color. 3 bits.
type Piece uint8

const (
	NoPiece Piece = iota
	Pawn
	Knight
	Bishop
	Rook
	Queen
	King
)

const (
	ZeroPiece Piece = 0
	NumPieces Piece = 7
)

func ParsePiece(r rune) (Piece, bool) {
	switch r {
	case 'p', 'P':
		return Pawn, true
	case 'n', 'N':
		return Knight, true
	case 'b', 'B':
		return Bishop, true
	case 'r', 'R':
		return Rook, true
	case 'q', 'Q':
		return Queen, true
	case 'k', 'K':
		return King, true
	default:
		return NoPiece, false
	}
}

func (p Piece) IsValid() bool {
	return Pawn <= p && p <= King
}

func (p Piece) String() string {
	switch p {
	case NoPiece:
		return " "
	case Pawn:
		return "p"
	case Knight:
		return "n"
	case Bishop:
		return "b"
	case Rook:
		return "r"
	case Queen:
		return "q"
	case King:
		return "k"
	default:
		return "?"
	}
}

// ColoredPiece folds color into the piece numbering: NoColoredPiece=0, then white
// Pawn..King as 1..6 and black Pawn..King as 7..12, so that the colored piece for
// (p, c) is c*6 + p. 4 bits.
type ColoredPiece uint8

const (
	NoColoredPiece ColoredPiece = iota
	WhitePawn
	WhiteKnight
	WhiteBishop
	WhiteRook
	WhiteQueen
	WhiteKing
	BlackPawn
	BlackKnight
	BlackBishop
	BlackRook
	BlackQueen
	BlackKing
)

const (
	ZeroColoredPiece ColoredPiece = 0
	NumColoredPieces ColoredPiece = 13
)

// PieceOfColor returns the colored piece for the given piece and color.
func PieceOfColor(p Piece, c Color) ColoredPiece {
	return ColoredPiece(uint8(c)*6 + uint8(p))
}

func (p ColoredPiece) IsValid() bool {
	return WhitePawn <= p && p <= BlackKing
}

// Colorless strips the color from the piece.
func (p ColoredPiece) Colorless() Piece {
	if p <= WhiteKing {
		return Piece(p)
	}
	return Piece(p - WhiteKing)
}

func (p ColoredPiece) Color() Color {
	if p <= WhiteKing {
		return White
	}
	return Black
}

func (p ColoredPiece) String() string {
	if !p.IsValid() {
		return " "
	}
	const symbols = " PNBRQKpnbrqk"
	return string(symbols[p])
}
