package motif_test

import (
	"testing"

	"github.com/corentings/chess/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndavis/chesstutor/internal/motif"
)

const startingFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

func position(t *testing.T, fen string) *chess.Position {
	t.Helper()
	opt, err := chess.FEN(fen)
	require.NoError(t, err, "bad FEN %s", fen)
	return chess.NewGame(opt).Position()
}

func uciMove(t *testing.T, pos *chess.Position, uci string) *chess.Move {
	t.Helper()
	mv, err := chess.UCINotation{}.Decode(pos, uci)
	require.NoError(t, err, "bad move %s", uci)
	return mv
}

func detect(t *testing.T, fen, uci string) []motif.Motif {
	t.Helper()
	pos := position(t, fen)
	return motif.DetectAll(pos, uciMove(t, pos, uci))
}

func TestFork(t *testing.T) {
	t.Run("knight forks king and rook", func(t *testing.T) {
		motifs := detect(t, "r3k3/8/8/3N4/8/8/8/4K3 w q - 0 1", "d5c7")
		assert.Contains(t, motifs, motif.Fork)
	})

	t.Run("knight forks queen and rook", func(t *testing.T) {
		motifs := detect(t, "4k3/8/3q1r2/8/8/2N5/8/4K3 w - - 0 1", "c3e4")
		assert.Contains(t, motifs, motif.Fork)
	})

	t.Run("queen forks king and rook", func(t *testing.T) {
		motifs := detect(t, "r3k3/8/8/8/8/8/8/Q3K3 w q - 0 1", "a1a4")
		assert.Contains(t, motifs, motif.Fork)
	})

	t.Run("no fork on quiet move", func(t *testing.T) {
		assert.NotContains(t, detect(t, startingFEN, "e2e4"), motif.Fork)
	})
}

func TestPin(t *testing.T) {
	t.Run("bishop pins knight to king", func(t *testing.T) {
		motifs := detect(t, "r1bqk2r/ppp2ppp/2n2n2/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R w KQkq - 0 4", "f1b5")
		assert.Contains(t, motifs, motif.Pin)
	})

	t.Run("rook pins bishop to king along file", func(t *testing.T) {
		motifs := detect(t, "4k3/8/8/4b3/8/8/8/R5K1 w - - 0 1", "a1e1")
		assert.Contains(t, motifs, motif.Pin)
	})
}

func TestSkewer(t *testing.T) {
	t.Run("rook skewers king with queen behind", func(t *testing.T) {
		motifs := detect(t, "4q3/8/8/4k3/8/8/8/R6K w - - 0 1", "a1e1")
		assert.Contains(t, motifs, motif.Skewer)
	})

	t.Run("bishop skewers queen with rook behind", func(t *testing.T) {
		motifs := detect(t, "6r1/5q2/8/8/8/1B6/8/K6k w - - 0 1", "b3e6")
		assert.Contains(t, motifs, motif.Skewer)
	})
}

func TestBackRankMate(t *testing.T) {
	t.Run("rook mate behind pawn shield", func(t *testing.T) {
		pos := position(t, "6k1/5ppp/8/8/8/8/8/4R1K1 w - - 0 1")
		mv := uciMove(t, pos, "e1e8")

		motifs := motif.DetectAll(pos, mv)
		assert.Contains(t, motifs, motif.BackRankMate)
		assert.NotContains(t, motifs, motif.Checkmate, "back-rank mate and plain checkmate are mutually exclusive")

		primary, ok := motif.Detect(pos, mv)
		require.True(t, ok)
		assert.Equal(t, motif.BackRankMate, primary)
	})

	t.Run("mate on back rank without pawn shield is plain checkmate", func(t *testing.T) {
		motifs := detect(t, "6k1/1R6/8/8/8/8/8/R5K1 w - - 0 1", "a1a8")
		assert.Contains(t, motifs, motif.Checkmate)
		assert.NotContains(t, motifs, motif.BackRankMate)
	})

	t.Run("mate delivered off the back rank is plain checkmate", func(t *testing.T) {
		// Scholar's mate: king is on its back rank but the queen checks from f7.
		motifs := detect(t, "r1bqkbnr/pppp1ppp/2n5/4p2Q/2B1P3/8/PPPP1PPP/RNB1K1NR w KQkq - 4 3", "h5f7")
		assert.Contains(t, motifs, motif.Checkmate)
		assert.NotContains(t, motifs, motif.BackRankMate)
		// The mating queen also attacks the f8 bishop and g8 knight.
		assert.Contains(t, motifs, motif.Fork)
	})
}

func TestDiscoveredAttack(t *testing.T) {
	t.Run("knight move reveals bishop attack on queen", func(t *testing.T) {
		motifs := detect(t, "4k3/6q1/8/8/3N4/8/1B6/4K3 w - - 0 1", "d4e6")
		assert.Contains(t, motifs, motif.DiscoveredAttack)
	})

	t.Run("quiet pawn push reveals nothing", func(t *testing.T) {
		assert.NotContains(t, detect(t, startingFEN, "e2e4"), motif.DiscoveredAttack)
	})
}

func TestDoubleCheck(t *testing.T) {
	// Nf6+ checks by itself and unmasks the e1 rook.
	pos := position(t, "4k3/8/8/8/4N3/8/8/4RK2 w - - 0 1")
	mv := uciMove(t, pos, "e4f6")

	motifs := motif.DetectAll(pos, mv)
	assert.Contains(t, motifs, motif.DoubleCheck)
	assert.Contains(t, motifs, motif.DiscoveredAttack)

	primary, ok := motif.Detect(pos, mv)
	require.True(t, ok)
	assert.Equal(t, motif.DoubleCheck, primary, "double check outranks discovered attack")
}

func TestPromotion(t *testing.T) {
	t.Run("queen promotion", func(t *testing.T) {
		motifs := detect(t, "4k3/P7/8/8/8/8/8/4K3 w - - 0 1", "a7a8q")
		assert.Contains(t, motifs, motif.Promotion)
	})

	t.Run("underpromotion", func(t *testing.T) {
		motifs := detect(t, "4k3/P7/8/8/8/8/8/4K3 w - - 0 1", "a7a8n")
		assert.Contains(t, motifs, motif.Promotion)
	})

	t.Run("mating promotion lists mate before promotion", func(t *testing.T) {
		motifs := detect(t, "6k1/4Pppp/8/8/8/8/8/4K3 w - - 0 1", "e7e8q")
		require.Contains(t, motifs, motif.Promotion)
		require.Contains(t, motifs, motif.BackRankMate)
		assert.Less(t,
			indexOf(motifs, motif.BackRankMate), indexOf(motifs, motif.Promotion),
			"mate precedes promotion in the ordered list")
	})
}

func TestCheckmate(t *testing.T) {
	t.Run("plain check is not checkmate", func(t *testing.T) {
		motifs := detect(t, "4k3/8/8/8/8/8/8/R3K3 w - - 0 1", "a1a8")
		assert.NotContains(t, motifs, motif.Checkmate)
		assert.NotContains(t, motifs, motif.BackRankMate)
	})
}

func TestQuietMoves(t *testing.T) {
	tests := []struct {
		name string
		fen  string
		uci  string
	}{
		{name: "starting pawn push", fen: startingFEN, uci: "e2e4"},
		{name: "knight development", fen: startingFEN, uci: "g1f3"},
		{name: "castling", fen: "r1bqk2r/pppp1ppp/2n2n2/2b1p3/2B1P3/5N2/PPPP1PPP/RNBQK2R w KQkq - 4 4", uci: "e1g1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pos := position(t, tt.fen)
			mv := uciMove(t, pos, tt.uci)

			assert.Empty(t, motif.DetectAll(pos, mv))
			_, ok := motif.Detect(pos, mv)
			assert.False(t, ok)
		})
	}
}

func TestDeterminism(t *testing.T) {
	pos := position(t, "r3k3/8/8/3N4/8/8/8/4K3 w q - 0 1")
	mv := uciMove(t, pos, "d5c7")

	first := motif.DetectAll(pos, mv)
	second := motif.DetectAll(pos, mv)
	assert.Equal(t, first, second)

	primary, ok := motif.Detect(pos, mv)
	require.True(t, ok)
	assert.Equal(t, first[0], primary)
}

func indexOf(motifs []motif.Motif, m motif.Motif) int {
	for i, v := range motifs {
		if v == m {
			return i
		}
	}
	return -1
}
