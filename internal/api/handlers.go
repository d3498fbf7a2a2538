// Package api exposes the tutoring toolkit over HTTP as a JSON API.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/ndavis/chesstutor/internal/apperr"
	"github.com/ndavis/chesstutor/internal/engine"
	"github.com/ndavis/chesstutor/internal/game"
	"github.com/ndavis/chesstutor/internal/logger"
	"github.com/ndavis/chesstutor/internal/openings"
	"github.com/ndavis/chesstutor/internal/srs"
	"github.com/ndavis/chesstutor/internal/worker"
)

// EngineService is the engine surface the API needs. *engine.Pool satisfies
// it.
type EngineService interface {
	AnalyzePosition(ctx context.Context, fen string, depth, multipv int) ([]engine.Line, error)
	EvaluateMove(ctx context.Context, fen, moveUCI string, depth int) (engine.MoveEvaluation, error)
}

type Server struct {
	Games           *game.Manager
	Cards           *srs.Scheduler
	Openings        *openings.Store
	Engines         EngineService
	MinePool        *worker.Pool
	StockfishDepth  int
	MineCPThreshold int
}

func respondJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.FromContext(r.Context()).Error("failed to encode response: %v", err)
	}
}

// decodeJSON reads the request body into dst. An empty body is fine; the
// handler's zero values apply.
func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return apperr.BadRequest("malformed JSON body: " + err.Error())
}
