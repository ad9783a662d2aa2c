// Package eval contains position evaluation logic and utilities.
package eval

import (
	"fmt"

	"github.com/herohde/eloi/pkg/board"
)

// Score is a signed position or move score in centi-pawns, from the perspective
// of the side to move unless stated otherwise. Mate scores live near the Max
// bound, offset by the distance in plies; recognized simple endgames near the
// SimpleEndgame bound.
type Score int32

const (
	DrawScore Score = 0

	// SimpleEndgame anchors recognized won endgames well above any positional
	// score and well below mate scores.
	SimpleEndgame Score = 20000

	Max Score = 30000
	Inf Score = 31000

	// Invalid marks a score that must not be used, such as the result of an
	// interrupted search.
	Invalid Score = -32000
)

// MateIn returns the score for delivering mate at the given ply from the root.
// Closer mates score higher.
func MateIn(ply int) Score {
	return Max - Score(ply)
}

// MatedIn returns the score for being mated at the given ply from the root.
func MatedIn(ply int) Score {
	return -Max + Score(ply)
}

// IsMate returns true iff the score encodes a forced mate.
func IsMate(s Score) bool {
	return s > Max-Score(board.MaxPlies) || s < -Max+Score(board.MaxPlies)
}

// MateDistance returns the signed mate distance in plies, if the score encodes a
// forced mate.
func MateDistance(s Score) (int, bool) {
	switch {
	case s > Max-Score(board.MaxPlies):
		return int(Max - s), true
	case s < -Max+Score(board.MaxPlies):
		return -int(Max + s), true
	default:
		return 0, false
	}
}

func (s Score) IsInvalid() bool {
	return s == Invalid
}

func (s Score) String() string {
	if d, ok := MateDistance(s); ok {
		return fmt.Sprintf("#%v", d)
	}
	return fmt.Sprintf("%.2f", float64(s)/100)
}

// Crop crops a score into the heuristic range, away from mate encodings.
func Crop(s Score) Score {
	limit := Max - Score(board.MaxPlies) - 1
	switch {
	case s > limit:
		return limit
	case s < -limit:
		return -limit
	default:
		return s
	}
}

// Max2 returns the larger of two scores.
func Max2(a, b Score) Score {
	if a < b {
		return b
	}
	return a
}

// Min2 returns the smaller of two scores.
func Min2(a, b Score) Score {
	if a < b {
		return a
	}
	return b
}
