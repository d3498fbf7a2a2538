package openings_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndavis/chesstutor/internal/openings"
)

func newTestStore(t *testing.T) *openings.Store {
	t.Helper()
	s, err := openings.OpenStore(filepath.Join(t.TempDir(), "openings.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	seed := []openings.Opening{
		{ECO: "B20", ECOVolume: "B", Name: "Sicilian Defense", Family: "Sicilian Defense", PGN: "1. e4 c5", UCIMoves: "e2e4 c7c5", NumMoves: 2},
		{ECO: "B90", ECOVolume: "B", Name: "Sicilian Defense: Najdorf Variation", Family: "Sicilian Defense", PGN: "1. e4 c5 2. Nf3 d6 3. d4 cxd4 4. Nxd4 Nf6 5. Nc3 a6", UCIMoves: "e2e4 c7c5 g1f3 d7d6 d2d4 c5d4 f3d4 g8f6 b1c3 a7a6", NumMoves: 10},
		{ECO: "C50", ECOVolume: "C", Name: "Italian Game", Family: "Italian Game", PGN: "1. e4 e5 2. Nf3 Nc6 3. Bc4", UCIMoves: "e2e4 e7e5 g1f3 b8c6 f1c4", NumMoves: 5},
		{ECO: "D06", ECOVolume: "D", Name: "Queen's Gambit", Family: "Queen's Gambit", PGN: "1. d4 d5 2. c4", UCIMoves: "d2d4 d7d5 c2c4", NumMoves: 3},
		{ECO: "A45", ECOVolume: "A", Name: "Indian Defense", Family: "Indian Defense", PGN: "1. d4 Nf6", UCIMoves: "d2d4 g8f6", NumMoves: 2},
	}
	for _, o := range seed {
		_, err := s.Insert(context.Background(), o)
		require.NoError(t, err)
	}
	return s
}

func TestSearch(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	t.Run("by name substring", func(t *testing.T) {
		got, err := s.Search(ctx, openings.SearchFilter{Query: "Sicilian"})
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "B20", got[0].ECO, "ordered by eco")
		assert.Equal(t, "B90", got[1].ECO)
	})

	t.Run("by eco substring", func(t *testing.T) {
		got, err := s.Search(ctx, openings.SearchFilter{Query: "C5"})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "Italian Game", got[0].Name)
	})

	t.Run("volume filter", func(t *testing.T) {
		got, err := s.Search(ctx, openings.SearchFilter{ECOVolume: "B"})
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})

	t.Run("exact eco filter", func(t *testing.T) {
		got, err := s.Search(ctx, openings.SearchFilter{Query: "Defense", ECO: "A45"})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "Indian Defense", got[0].Name)
	})

	t.Run("limit", func(t *testing.T) {
		got, err := s.Search(ctx, openings.SearchFilter{Limit: 2})
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})

	t.Run("no match", func(t *testing.T) {
		got, err := s.Search(ctx, openings.SearchFilter{Query: "Grob"})
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestByECO(t *testing.T) {
	s := newTestStore(t)

	got, err := s.ByECO(context.Background(), "B90")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Sicilian Defense: Najdorf Variation", got[0].Name)

	got, err = s.ByECO(context.Background(), "Z99")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestByFamily(t *testing.T) {
	s := newTestStore(t)

	got, err := s.ByFamily(context.Background(), "Sicilian Defense")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 2, got[0].NumMoves, "shortest line first")
	assert.Equal(t, 10, got[1].NumMoves)
}

func TestForLevel(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	t.Run("beginner gets short common lines", func(t *testing.T) {
		got, err := s.ForLevel(ctx, 400)
		require.NoError(t, err)
		for _, o := range got {
			assert.LessOrEqual(t, o.NumMoves, 4)
		}
		names := make([]string, 0, len(got))
		for _, o := range got {
			names = append(names, o.Name)
		}
		assert.Contains(t, names, "Sicilian Defense")
		assert.NotContains(t, names, "Italian Game", "five half-moves is too long for phase one")
	})

	t.Run("intermediate gets medium lines", func(t *testing.T) {
		got, err := s.ForLevel(ctx, 800)
		require.NoError(t, err)
		for _, o := range got {
			assert.GreaterOrEqual(t, o.NumMoves, 4)
			assert.LessOrEqual(t, o.NumMoves, 10)
		}
		require.NotEmpty(t, got)
	})

	t.Run("advanced gets everything", func(t *testing.T) {
		got, err := s.ForLevel(ctx, 1500)
		require.NoError(t, err)
		assert.Len(t, got, 5)
	})
}

func TestRandom(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	t.Run("volume filter", func(t *testing.T) {
		got, err := s.Random(ctx, "D", 0)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "Queen's Gambit", got.Name)
	})

	t.Run("max moves filter", func(t *testing.T) {
		got, err := s.Random(ctx, "", 2)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.LessOrEqual(t, got.NumMoves, 2)
	})

	t.Run("no match returns nil", func(t *testing.T) {
		got, err := s.Random(ctx, "E", 0)
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestCount(t *testing.T) {
	s := newTestStore(t)

	n, err := s.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, n)
}
