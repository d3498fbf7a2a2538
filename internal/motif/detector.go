package motif

import "github.com/corentings/chess/v2"

// DetectAll returns every tactical motif the move exhibits, in a fixed order
// that doubles as the primary-motif tie-break: checkmate (or its back-rank
// refinement) first, then double check, discovered attack, fork, pin, skewer,
// promotion. The same (position, move) pair always yields the same sequence.
func DetectAll(pos *chess.Position, move *chess.Move) []Motif {
	after := pos.Update(move)

	var motifs []Motif

	if after.Status() == chess.Checkmate {
		if isBackRankMate(after) {
			motifs = append(motifs, BackRankMate)
		} else {
			motifs = append(motifs, Checkmate)
		}
	}
	if isDoubleCheck(after) {
		motifs = append(motifs, DoubleCheck)
	}
	if isDiscoveredAttack(pos, after, move) {
		motifs = append(motifs, DiscoveredAttack)
	}
	if isFork(after, move) {
		motifs = append(motifs, Fork)
	}
	if isPin(after, move) {
		motifs = append(motifs, Pin)
	}
	if isSkewer(after, move) {
		motifs = append(motifs, Skewer)
	}
	if move.Promo() != chess.NoPieceType {
		motifs = append(motifs, Promotion)
	}

	return motifs
}

// Detect returns the primary motif for the move: the first element of
// DetectAll, with ok=false for quiet moves.
func Detect(pos *chess.Position, move *chess.Move) (Motif, bool) {
	motifs := DetectAll(pos, move)
	if len(motifs) == 0 {
		return "", false
	}
	return motifs[0], true
}

// isBackRankMate refines a checkmate: the mated king sits on its own back
// rank, at least one checker attacks along that rank, and at least one of the
// mated side's pawns blocks the escape rank within a file of the king.
// The caller has already established checkmate.
func isBackRankMate(after *chess.Position) bool {
	mated := after.Turn()
	b := after.Board()

	king, ok := kingSquare(b, mated)
	if !ok {
		return false
	}

	backRank, escapeRank := 0, 1
	if mated == chess.Black {
		backRank, escapeRank = 7, 6
	}
	if rankOf(king) != backRank {
		return false
	}

	checkerOnRank := false
	for _, sq := range attackers(b, king, mated.Other()) {
		if rankOf(sq) == backRank {
			checkerOnRank = true
			break
		}
	}
	if !checkerOnRank {
		return false
	}

	kf := fileOf(king)
	for f := max(0, kf-1); f <= min(7, kf+1); f++ {
		p := b.Piece(squareAt(f, escapeRank))
		if p != chess.NoPiece && p.Color() == mated && p.Type() == chess.Pawn {
			return true
		}
	}
	return false
}

func isDoubleCheck(after *chess.Position) bool {
	b := after.Board()
	king, ok := kingSquare(b, after.Turn())
	if !ok {
		return false
	}
	return len(attackers(b, king, after.Turn().Other())) >= 2
}

// isFork checks whether the moved piece itself now attacks two or more enemy
// pieces worth at least minor-piece value. Attacks revealed from other pieces
// are the discovered-attack predicate's domain.
func isFork(after *chess.Position, move *chess.Move) bool {
	b := after.Board()
	to := move.S2()
	p := b.Piece(to)
	if p == chess.NoPiece {
		return false
	}
	enemy := p.Color().Other()

	valuable := 0
	for _, sq := range attackSquares(b, to) {
		victim := b.Piece(sq)
		if victim != chess.NoPiece && victim.Color() == enemy && pieceValue(victim.Type()) >= 3 {
			valuable++
		}
	}
	return valuable >= 2
}

// isPin checks whether the moved piece is a slider that now pins an enemy
// piece (not its king or queen) against the enemy king: the first piece along
// one of the slider's rays is such a piece, and the next one behind it on the
// same ray is the enemy king.
func isPin(after *chess.Position, move *chess.Move) bool {
	b := after.Board()
	to := move.S2()
	p := b.Piece(to)
	if p == chess.NoPiece || !isSlider(p.Type()) {
		return false
	}
	enemy := p.Color().Other()

	for _, d := range sliderDirs(p.Type()) {
		frontSq, ok := firstPieceAlong(b, to, d)
		if !ok {
			continue
		}
		front := b.Piece(frontSq)
		if front.Color() != enemy || front.Type() == chess.King || front.Type() == chess.Queen {
			continue
		}
		behindSq, ok := firstPieceAlong(b, frontSq, d)
		if !ok {
			continue
		}
		behind := b.Piece(behindSq)
		if behind.Color() == enemy && behind.Type() == chess.King {
			return true
		}
	}
	return false
}

// isSkewer scans each of the slider's rays from its destination square for
// the first two enemy pieces (friendly pieces block the scan, enemy pieces do
// not) and fires when the nearer piece outvalues the farther one. Unlike a
// pin there is no king-behind requirement.
func isSkewer(after *chess.Position, move *chess.Move) bool {
	b := after.Board()
	to := move.S2()
	p := b.Piece(to)
	if p == chess.NoPiece || !isSlider(p.Type()) {
		return false
	}
	enemy := p.Color().Other()

	for _, d := range sliderDirs(p.Type()) {
		var found []chess.PieceType
		f, r := fileOf(to)+d.df, rankOf(to)+d.dr
		for onBoard(f, r) && len(found) < 2 {
			sq := squareAt(f, r)
			piece := b.Piece(sq)
			if piece != chess.NoPiece {
				if piece.Color() != enemy {
					break
				}
				found = append(found, piece.Type())
			}
			f += d.df
			r += d.dr
		}
		if len(found) == 2 && pieceValue(found[0]) > pieceValue(found[1]) {
			return true
		}
	}
	return false
}

// isDiscoveredAttack checks whether vacating the origin square opened a ray
// for some other friendly slider, and a newly attacked square holds a
// valuable enemy piece. The moved piece's own attacks are excluded.
func isDiscoveredAttack(before, after *chess.Position, move *chess.Move) bool {
	bb, ab := before.Board(), after.Board()
	mover := bb.Piece(move.S1())
	if mover == chess.NoPiece {
		return false
	}
	us := mover.Color()
	enemy := us.Other()

	for s := 0; s < 64; s++ {
		sq := chess.Square(s)
		if sq == move.S2() {
			continue
		}
		p := ab.Piece(sq)
		if p == chess.NoPiece || p.Color() != us || !isSlider(p.Type()) {
			continue
		}

		var attackedBefore [64]bool
		for _, a := range attackSquares(bb, sq) {
			attackedBefore[int(a)] = true
		}

		for _, a := range attackSquares(ab, sq) {
			if attackedBefore[int(a)] {
				continue
			}
			victim := ab.Piece(a)
			if victim != chess.NoPiece && victim.Color() == enemy && pieceValue(victim.Type()) >= 3 {
				return true
			}
		}
	}
	return false
}
