package worker

import (
	"context"
	"fmt"

	"github.com/corentings/chess/v2"

	"github.com/ndavis/chesstutor/internal/apperr"
	"github.com/ndavis/chesstutor/internal/engine"
	"github.com/ndavis/chesstutor/internal/game"
	"github.com/ndavis/chesstutor/internal/logger"
	"github.com/ndavis/chesstutor/internal/motif"
	"github.com/ndavis/chesstutor/internal/srs"
)

// MoveEvaluator is the engine surface mining needs. *engine.Pool satisfies
// it.
type MoveEvaluator interface {
	EvaluateMove(ctx context.Context, fen, moveUCI string, depth int) (engine.MoveEvaluation, error)
}

// CardAdder receives the mined mistake cards. *srs.Scheduler satisfies it.
type CardAdder interface {
	AddCard(nc srs.NewCard) (srs.Card, error)
}

// Mistake is one move that met the mining threshold.
type Mistake struct {
	FEN            string `json:"fen"`
	MoveNumber     int    `json:"move_number"`
	PlayerMove     string `json:"player_move"`
	BestMove       string `json:"best_move"`
	CPLoss         int    `json:"cp_loss"`
	Classification string `json:"classification"`
}

// MineResult summarizes one mining run.
type MineResult struct {
	GameID           string    `json:"game_id"`
	TotalPlayerMoves int       `json:"total_player_moves"`
	MistakesFound    int       `json:"mistakes_found"`
	CardsCreated     int       `json:"cards_created"`
	Mistakes         []Mistake `json:"mistakes"`
	CardIDs          []string  `json:"card_ids"`
}

// MineCardsJob replays a finished game, evaluates every player move at full
// strength, and files a review card for each move losing at least
// CPThreshold centipawns.
type MineCardsJob struct {
	Record      game.Record
	Evaluator   MoveEvaluator
	Scheduler   CardAdder
	Depth       int
	CPThreshold int
	OnDone      func(MineResult)
}

func (j *MineCardsJob) Name() string { return "mine_cards" }

func (j *MineCardsJob) Run(ctx context.Context) error {
	res, err := j.Mine(ctx)
	if err != nil {
		return err
	}
	if j.OnDone != nil {
		j.OnDone(res)
	}
	return nil
}

// Mine runs the replay synchronously and returns the summary.
func (j *MineCardsJob) Mine(ctx context.Context) (MineResult, error) {
	log := logger.FromContext(ctx).WithField("game_id", j.Record.GameID)

	res := MineResult{
		GameID:   j.Record.GameID,
		Mistakes: []Mistake{},
		CardIDs:  []string{},
	}

	if !j.Record.IsOver {
		return MineResult{}, apperr.BadRequest("game is not over yet")
	}
	if len(j.Record.MovesUCI) == 0 {
		return res, nil
	}

	opt, err := chess.FEN(j.Record.StartingFEN)
	if err != nil {
		return MineResult{}, apperr.Internal(fmt.Errorf("replay fen: %w", err))
	}
	pos := chess.NewGame(opt).Position()

	playerTurn := chess.White
	if j.Record.PlayerColor == "black" {
		playerTurn = chess.Black
	}

	threshold := j.CPThreshold
	if threshold <= 0 {
		threshold = 80
	}

	log.Info("mining %d moves for mistakes (threshold %d)", len(j.Record.MovesUCI), threshold)

	for i, uci := range j.Record.MovesUCI {
		if err := ctx.Err(); err != nil {
			return MineResult{}, err
		}

		mv, err := chess.UCINotation{}.Decode(pos, uci)
		if err != nil {
			return MineResult{}, apperr.Internal(fmt.Errorf("replay move %d (%s): %w", i+1, uci, err))
		}

		if pos.Turn() == playerTurn {
			res.TotalPlayerMoves++

			ev, err := j.Evaluator.EvaluateMove(ctx, pos.String(), uci, j.Depth)
			if err != nil {
				return MineResult{}, err
			}

			if ev.CPLoss >= threshold {
				fen := pos.String()
				explanation := fmt.Sprintf("Move %d: played %s (best: %s, cp_loss: %d)",
					i+1, ev.MoveSAN, ev.BestMoveSAN, ev.CPLoss)

				var tag *string
				if m, ok := motif.Detect(pos, mv); ok {
					name := string(m)
					tag = &name
				}

				card, err := j.Scheduler.AddCard(srs.NewCard{
					FEN:            fen,
					PlayerMove:     ev.MoveSAN,
					BestMove:       ev.BestMoveSAN,
					CPLoss:         ev.CPLoss,
					Classification: ev.Classification,
					Motif:          tag,
					Explanation:    explanation,
				})
				if err != nil {
					return MineResult{}, err
				}

				res.Mistakes = append(res.Mistakes, Mistake{
					FEN:            fen,
					MoveNumber:     i + 1,
					PlayerMove:     ev.MoveSAN,
					BestMove:       ev.BestMoveSAN,
					CPLoss:         ev.CPLoss,
					Classification: ev.Classification,
				})
				res.CardIDs = append(res.CardIDs, card.ID)
			}
		}

		pos = pos.Update(mv)
	}

	res.MistakesFound = len(res.Mistakes)
	res.CardsCreated = len(res.CardIDs)
	log.Info("mining done: %d player moves, %d cards created", res.TotalPlayerMoves, res.CardsCreated)
	return res, nil
}
