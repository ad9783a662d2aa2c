// Package fen contains utilities for reading and writing positions in FEN notation.
package fen

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/herohde/eloi/pkg/board"
)

const (
	Initial = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"
)

// Decode returns a new position from a FEN description.
//
// Example:
//
//	"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"
func Decode(fen string) (board.Position, error) {
	// A FEN record contains six fields. The separator between fields is a
	// space. The fields are:

	parts := strings.Split(strings.TrimSpace(fen), " ")
	if len(parts) != 6 {
		return board.Position{}, fmt.Errorf("invalid number of sections in FEN: '%v'", fen)
	}

	// (1) Piece placement (from white's perspective). Each rank is described,
	// starting with rank 8 and ending with rank 1; within each rank, the
	// contents of each square are described from file a through file h. Blank
	// squares are noted using digits 1 through 8.

	var pieces []board.Placement

	sq := board.A8
	for _, r := range []rune(parts[0]) {
		switch {
		case r == '/':
			// "/" separate ranks. Cosmetic.

		case unicode.IsDigit(r):
			sq += board.Square(r - '0')

		case unicode.IsLetter(r):
			piece, ok := parsePiece(r)
			if !ok {
				return board.Position{}, fmt.Errorf("invalid piece '%v' in FEN: '%v'", string(r), fen)
			}
			pieces = append(pieces, board.Placement{Square: sq, Piece: piece})
			sq++

		default:
			return board.Position{}, fmt.Errorf("invalid character in FEN: '%v'", fen)
		}
	}
	if sq != board.NumSquares {
		return board.Position{}, fmt.Errorf("invalid number of squares in FEN: '%v'", fen)
	}

	// (2) Active color. "w" means white moves next, "b" means black.

	active, ok := parseColor(parts[1])
	if !ok {
		return board.Position{}, fmt.Errorf("invalid active color in FEN: '%v'", fen)
	}

	// (3) Castling availability. "-" if neither side can castle.

	castling, ok := parseCastling(parts[2])
	if !ok {
		return board.Position{}, fmt.Errorf("invalid castling in FEN: '%v'", fen)
	}

	// (4) En passant target square, or "-". If a pawn has just made a 2-square
	// move, this is the position "behind" the pawn.

	ep := board.IllegalSquare
	if parts[3] != "-" {
		sq, err := board.ParseSquareStr(parts[3])
		if err != nil {
			return board.Position{}, fmt.Errorf("invalid en passant in FEN: '%v'", fen)
		}
		ep = sq
	}

	// (5) Halfmove clock: the number of halfmoves since the last pawn advance or
	// capture, for the fifty move rule.

	np, err := strconv.Atoi(parts[4])
	if err != nil || np < 0 {
		return board.Position{}, fmt.Errorf("invalid halfmove in FEN: '%v'", fen)
	}

	// (6) Fullmove number: starts at 1, incremented after Black's move.

	fm, err := strconv.Atoi(parts[5])
	if err != nil || fm < 1 {
		return board.Position{}, fmt.Errorf("invalid full moves in FEN: '%v'", fen)
	}

	pos, err := board.NewPosition(pieces, active, castling, ep, np, fm)
	if err != nil {
		return board.Position{}, fmt.Errorf("invalid position in FEN: '%v': %v", fen, err)
	}
	return pos, nil
}

// Encode encodes the position in FEN notation.
func Encode(pos *board.Position) string {
	var sb strings.Builder

	blanks := 0
	for sq := board.ZeroSquare; sq < board.NumSquares; sq++ {
		if sq != 0 && sq%8 == 0 {
			if blanks > 0 {
				sb.WriteString(strconv.Itoa(blanks))
				blanks = 0
			}
			sb.WriteString("/")
		}

		if piece := pos.PieceAt(sq); piece != board.NoColoredPiece {
			if blanks > 0 {
				sb.WriteString(strconv.Itoa(blanks))
				blanks = 0
			}
			sb.WriteString(piece.String())
		} else {
			blanks++
		}
	}
	if blanks > 0 {
		sb.WriteString(strconv.Itoa(blanks))
	}

	ep := "-"
	if sq, ok := pos.EnPassant(); ok {
		ep = sq.String()
	}

	return fmt.Sprintf("%v %v %v %v %v %v", sb.String(), pos.Turn(), pos.Castling(), ep, pos.NoProgress(), pos.FullMoves())
}

func parseCastling(str string) (board.Castling, bool) {
	var ret board.Castling

	if str == "-" {
		return ret, true
	}
	for _, r := range []rune(str) {
		switch r {
		case 'K':
			ret |= board.WhiteKingSideCastle
		case 'Q':
			ret |= board.WhiteQueenSideCastle
		case 'k':
			ret |= board.BlackKingSideCastle
		case 'q':
			ret |= board.BlackQueenSideCastle
		default:
			return 0, false
		}
	}
	return ret, true
}

func parseColor(str string) (board.Color, bool) {
	switch str {
	case "w", "W":
		return board.White, true
	case "b", "B":
		return board.Black, true
	default:
		return 0, false
	}
}

func parsePiece(r rune) (board.ColoredPiece, bool) {
	piece, ok := board.ParsePiece(unicode.ToLower(r))
	if !ok {
		return board.NoColoredPiece, false
	}
	if unicode.IsUpper(r) {
		return board.PieceOfColor(piece, board.White), true
	}
	return board.PieceOfColor(piece, board.Black), true
}
