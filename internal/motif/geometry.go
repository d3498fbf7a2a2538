package motif

import "github.com/corentings/chess/v2"

// The rules library keeps its attack bitboards private, so the detector
// carries its own board geometry: attack sets, ray scans and king lookup,
// all driven by Board.Piece queries.

type direction struct {
	df, dr int
}

var (
	rookDirs   = []direction{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	bishopDirs = []direction{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}

	knightJumps = []direction{
		{1, 2}, {2, 1}, {2, -1}, {1, -2},
		{-1, -2}, {-2, -1}, {-2, 1}, {-1, 2},
	}
)

func squareAt(file, rank int) chess.Square {
	return chess.Square(rank*8 + file)
}

func fileOf(sq chess.Square) int { return int(sq.File()) }
func rankOf(sq chess.Square) int { return int(sq.Rank()) }

func onBoard(file, rank int) bool {
	return file >= 0 && file <= 7 && rank >= 0 && rank <= 7
}

func isSlider(t chess.PieceType) bool {
	return t == chess.Bishop || t == chess.Rook || t == chess.Queen
}

func sliderDirs(t chess.PieceType) []direction {
	switch t {
	case chess.Rook:
		return rookDirs
	case chess.Bishop:
		return bishopDirs
	case chess.Queen:
		return append(append([]direction{}, rookDirs...), bishopDirs...)
	default:
		return nil
	}
}

// attackSquares returns every square attacked by the piece on sq, including
// occupied squares (a slider's ray ends on, and includes, the first occupied
// square). Empty squares attack nothing.
func attackSquares(b *chess.Board, sq chess.Square) []chess.Square {
	p := b.Piece(sq)
	if p == chess.NoPiece {
		return nil
	}

	f, r := fileOf(sq), rankOf(sq)
	var out []chess.Square

	switch p.Type() {
	case chess.Pawn:
		dr := 1
		if p.Color() == chess.Black {
			dr = -1
		}
		for _, df := range []int{-1, 1} {
			if onBoard(f+df, r+dr) {
				out = append(out, squareAt(f+df, r+dr))
			}
		}
	case chess.Knight:
		for _, d := range knightJumps {
			if onBoard(f+d.df, r+d.dr) {
				out = append(out, squareAt(f+d.df, r+d.dr))
			}
		}
	case chess.King:
		for _, d := range append(append([]direction{}, rookDirs...), bishopDirs...) {
			if onBoard(f+d.df, r+d.dr) {
				out = append(out, squareAt(f+d.df, r+d.dr))
			}
		}
	default:
		for _, d := range sliderDirs(p.Type()) {
			nf, nr := f+d.df, r+d.dr
			for onBoard(nf, nr) {
				target := squareAt(nf, nr)
				out = append(out, target)
				if b.Piece(target) != chess.NoPiece {
					break
				}
				nf += d.df
				nr += d.dr
			}
		}
	}
	return out
}

// attackers returns the squares of all pieces of the given color that attack
// the target square.
func attackers(b *chess.Board, target chess.Square, by chess.Color) []chess.Square {
	var out []chess.Square
	for s := 0; s < 64; s++ {
		sq := chess.Square(s)
		p := b.Piece(sq)
		if p == chess.NoPiece || p.Color() != by {
			continue
		}
		for _, a := range attackSquares(b, sq) {
			if a == target {
				out = append(out, sq)
				break
			}
		}
	}
	return out
}

// firstPieceAlong scans outward from sq in the given direction and returns
// the square of the first piece found.
func firstPieceAlong(b *chess.Board, sq chess.Square, d direction) (chess.Square, bool) {
	f, r := fileOf(sq)+d.df, rankOf(sq)+d.dr
	for onBoard(f, r) {
		target := squareAt(f, r)
		if b.Piece(target) != chess.NoPiece {
			return target, true
		}
		f += d.df
		r += d.dr
	}
	return 0, false
}

func kingSquare(b *chess.Board, color chess.Color) (chess.Square, bool) {
	for s := 0; s < 64; s++ {
		sq := chess.Square(s)
		p := b.Piece(sq)
		if p != chess.NoPiece && p.Color() == color && p.Type() == chess.King {
			return sq, true
		}
	}
	return 0, false
}
