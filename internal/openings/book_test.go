package openings_test

import (
	"testing"

	"github.com/corentings/chess/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndavis/chesstutor/internal/openings"
)

func movesFromUCI(t *testing.T, ucis ...string) []*chess.Move {
	t.Helper()
	pos := chess.NewGame().Position()
	moves := make([]*chess.Move, 0, len(ucis))
	for _, uci := range ucis {
		mv, err := chess.UCINotation{}.Decode(pos, uci)
		require.NoError(t, err, "bad move %s", uci)
		moves = append(moves, mv)
		pos = pos.Update(mv)
	}
	return moves
}

func TestIdentify(t *testing.T) {
	book := openings.NewBook()

	t.Run("sicilian", func(t *testing.T) {
		id := book.Identify(movesFromUCI(t, "e2e4", "c7c5"))
		require.NotNil(t, id)
		assert.Equal(t, "B", id.ECOVolume)
		assert.Contains(t, id.Name, "Sicilian")
		assert.Equal(t, "Sicilian Defense", id.Family)
		assert.NotEmpty(t, id.ECO)
	})

	t.Run("variation resolves to its family", func(t *testing.T) {
		id := book.Identify(movesFromUCI(t, "e2e4", "e7e5", "g1f3", "b8c6", "f1b5"))
		require.NotNil(t, id)
		assert.Contains(t, id.Name, "Ruy Lopez")
		assert.Equal(t, "Ruy Lopez", id.Family)
	})

	t.Run("no moves", func(t *testing.T) {
		assert.Nil(t, book.Identify(nil))
	})

	t.Run("out-of-book moves keep the last named opening", func(t *testing.T) {
		// 1. e4 c5 then shuffling rooks is still a Sicilian.
		id := book.Identify(movesFromUCI(t, "e2e4", "c7c5", "h2h4", "h7h5", "h1h3"))
		require.NotNil(t, id)
		assert.Contains(t, id.Name, "Sicilian")
	})
}
