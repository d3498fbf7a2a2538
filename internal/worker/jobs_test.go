package worker_test

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndavis/chesstutor/internal/apperr"
	"github.com/ndavis/chesstutor/internal/engine"
	"github.com/ndavis/chesstutor/internal/game"
	"github.com/ndavis/chesstutor/internal/logger"
	"github.com/ndavis/chesstutor/internal/srs"
	"github.com/ndavis/chesstutor/internal/worker"
)

// replayEvaluator serves canned verdicts keyed by the UCI move.
type replayEvaluator struct {
	verdicts map[string]engine.MoveEvaluation
	asked    []string
}

func (r *replayEvaluator) EvaluateMove(_ context.Context, _ string, uci string, _ int) (engine.MoveEvaluation, error) {
	r.asked = append(r.asked, uci)
	ev, ok := r.verdicts[uci]
	if !ok {
		return engine.MoveEvaluation{MoveSAN: uci, BestMoveSAN: uci, Classification: "best", IsBest: true}, nil
	}
	return ev, nil
}

func newTestScheduler(t *testing.T) *srs.Scheduler {
	t.Helper()
	s, err := srs.NewScheduler(filepath.Join(t.TempDir(), "cards.json"),
		srs.WithLogger(logger.New(logger.WithOutput(io.Discard))))
	require.NoError(t, err)
	return s
}

func TestMineCardsJob(t *testing.T) {
	// Fool's mate, from white's side: f3 and g4 are the moves to mine.
	rec := game.Record{
		GameID:      "g1",
		StartingFEN: "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",
		MovesUCI:    []string{"f2f3", "e7e5", "g2g4", "d8h4"},
		PlayerColor: "white",
		IsOver:      true,
	}
	eval := &replayEvaluator{verdicts: map[string]engine.MoveEvaluation{
		"f2f3": {MoveSAN: "f3", BestMoveSAN: "e4", CPLoss: 90, Classification: "inaccuracy"},
		"g2g4": {MoveSAN: "g4", BestMoveSAN: "d4", CPLoss: 350, Classification: "blunder"},
	}}
	sched := newTestScheduler(t)

	job := &worker.MineCardsJob{
		Record:      rec,
		Evaluator:   eval,
		Scheduler:   sched,
		Depth:       12,
		CPThreshold: 80,
	}
	res, err := job.Mine(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"f2f3", "g2g4"}, eval.asked, "only player moves are evaluated")
	assert.Equal(t, 2, res.TotalPlayerMoves)
	assert.Equal(t, 2, res.MistakesFound)
	assert.Equal(t, 2, res.CardsCreated)
	require.Len(t, res.Mistakes, 2)
	assert.Equal(t, 1, res.Mistakes[0].MoveNumber)
	assert.Equal(t, 3, res.Mistakes[1].MoveNumber)
	assert.Equal(t, "g4", res.Mistakes[1].PlayerMove)

	cards := sched.Cards()
	require.Len(t, cards, 2)
	assert.Equal(t, "Move 1: played f3 (best: e4, cp_loss: 90)", cards[0].Explanation)
	assert.Equal(t, "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1", cards[0].FEN,
		"card holds the position before the mistake")
	assert.Equal(t, "blunder", cards[1].Classification)
}

func TestMineCardsJobThreshold(t *testing.T) {
	rec := game.Record{
		GameID:      "g2",
		StartingFEN: "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",
		MovesUCI:    []string{"f2f3", "e7e5", "g2g4", "d8h4"},
		PlayerColor: "white",
		IsOver:      true,
	}
	eval := &replayEvaluator{verdicts: map[string]engine.MoveEvaluation{
		"f2f3": {MoveSAN: "f3", BestMoveSAN: "e4", CPLoss: 60, Classification: "good"},
		"g2g4": {MoveSAN: "g4", BestMoveSAN: "d4", CPLoss: 350, Classification: "blunder"},
	}}
	sched := newTestScheduler(t)

	job := &worker.MineCardsJob{Record: rec, Evaluator: eval, Scheduler: sched, Depth: 12, CPThreshold: 100}
	res, err := job.Mine(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, res.TotalPlayerMoves)
	assert.Equal(t, 1, res.CardsCreated)
	assert.Len(t, sched.Cards(), 1)
}

func TestMineCardsJobBlackPlayer(t *testing.T) {
	rec := game.Record{
		GameID:      "g3",
		StartingFEN: "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",
		MovesUCI:    []string{"e2e4", "f7f6", "d2d4", "g7g5", "d1h5"},
		PlayerColor: "black",
		IsOver:      true,
	}
	eval := &replayEvaluator{verdicts: map[string]engine.MoveEvaluation{
		"f7f6": {MoveSAN: "f6", BestMoveSAN: "e5", CPLoss: 120, Classification: "inaccuracy"},
		"g7g5": {MoveSAN: "g5", BestMoveSAN: "d5", CPLoss: 900, Classification: "blunder"},
	}}
	sched := newTestScheduler(t)

	job := &worker.MineCardsJob{Record: rec, Evaluator: eval, Scheduler: sched, Depth: 12, CPThreshold: 80}
	res, err := job.Mine(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"f7f6", "g7g5"}, eval.asked)
	assert.Equal(t, 2, res.CardsCreated)
	assert.Equal(t, []int{2, 4}, []int{res.Mistakes[0].MoveNumber, res.Mistakes[1].MoveNumber})
}

func TestMineCardsJobRequiresFinishedGame(t *testing.T) {
	job := &worker.MineCardsJob{
		Record:    game.Record{GameID: "g4", StartingFEN: "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"},
		Evaluator: &replayEvaluator{},
		Scheduler: newTestScheduler(t),
	}
	_, err := job.Mine(context.Background())
	assert.True(t, apperr.IsCode(err, apperr.CodeBadRequest))
}

func TestMineCardsJobRunCallsOnDone(t *testing.T) {
	rec := game.Record{
		GameID:      "g5",
		StartingFEN: "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",
		MovesUCI:    []string{"f2f3", "e7e5", "g2g4", "d8h4"},
		PlayerColor: "white",
		IsOver:      true,
	}
	eval := &replayEvaluator{verdicts: map[string]engine.MoveEvaluation{
		"g2g4": {MoveSAN: "g4", BestMoveSAN: "d4", CPLoss: 350, Classification: "blunder"},
	}}

	var got worker.MineResult
	job := &worker.MineCardsJob{
		Record:    rec,
		Evaluator: eval,
		Scheduler: newTestScheduler(t),
		OnDone:    func(r worker.MineResult) { got = r },
	}
	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, "g5", got.GameID)
	assert.Equal(t, 1, got.CardsCreated)
}
