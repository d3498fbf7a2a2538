// Package motif classifies the tactical content of a single chess move using
// static analysis of the resulting position. No engine, no search: just the
// attack and ray geometry of the board before and after the move.
//
// Callers are expected to pass a legal (position, move) pair; behavior for
// illegal moves is undefined.
package motif

import "github.com/corentings/chess/v2"

// Motif is a tactical pattern label.
type Motif string

const (
	Fork             Motif = "fork"
	Pin              Motif = "pin"
	Skewer           Motif = "skewer"
	BackRankMate     Motif = "back_rank_mate"
	Checkmate        Motif = "checkmate"
	DiscoveredAttack Motif = "discovered_attack"
	DoubleCheck      Motif = "double_check"
	Promotion        Motif = "promotion"
)

// Piece values for tactical significance. A piece is "valuable" as a fork or
// discovered-attack target when its value is at least minor-piece value (3).
func pieceValue(t chess.PieceType) int {
	switch t {
	case chess.Pawn:
		return 1
	case chess.Knight, chess.Bishop:
		return 3
	case chess.Rook:
		return 5
	case chess.Queen:
		return 9
	case chess.King:
		return 100
	default:
		return 0
	}
}
