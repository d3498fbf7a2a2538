package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ndavis/chesstutor/internal/apperr"
	"github.com/ndavis/chesstutor/internal/logger"
	"github.com/ndavis/chesstutor/internal/worker"
)

func (s *Server) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PlayerColor string `json:"player_color"`
		FEN         string `json:"fen"`
	}
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	st, err := s.Games.NewSession(req.PlayerColor, req.FEN)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusCreated, st)
}

func (s *Server) handleGameState(w http.ResponseWriter, r *http.Request) {
	st, err := s.Games.State(chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, st)
}

func (s *Server) handleMakeMove(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Move string `json:"move"`
	}
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	if req.Move == "" {
		handleError(w, r, apperr.InvalidArgument("move", "must not be empty"))
		return
	}

	st, err := s.Games.MakeMove(chi.URLParam(r, "id"), req.Move)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, st)
}

func (s *Server) handleEngineMove(w http.ResponseWriter, r *http.Request) {
	st, err := s.Games.EngineMove(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, st)
}

func (s *Server) handleEvaluateMove(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Move string `json:"move"`
	}
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	if req.Move == "" {
		handleError(w, r, apperr.InvalidArgument("move", "must not be empty"))
		return
	}

	ev, err := s.Games.EvaluateMove(r.Context(), chi.URLParam(r, "id"), req.Move)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, ev)
}

func (s *Server) handleLegalMoves(w http.ResponseWriter, r *http.Request) {
	moves, err := s.Games.LegalMoves(chi.URLParam(r, "id"), r.URL.Query().Get("square"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, map[string]any{
		"moves": moves,
		"count": len(moves),
	})
}

func (s *Server) handleUndo(w http.ResponseWriter, r *http.Request) {
	st, err := s.Games.Undo(chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, st)
}

func (s *Server) handlePGN(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	pgn, err := s.Games.PGN(id)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, map[string]string{
		"game_id": id,
		"pgn":     pgn,
	})
}

// handleMineCards replays a finished game for review cards. By default the
// run is synchronous and the summary comes back in the response; async=true
// queues the job on the worker pool instead.
func (s *Server) handleMineCards(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	var req struct {
		CPThreshold int  `json:"cp_threshold"`
		Async       bool `json:"async"`
	}
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	rec, err := s.Games.Snapshot(chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, err)
		return
	}

	threshold := req.CPThreshold
	if threshold <= 0 {
		threshold = s.MineCPThreshold
	}

	job := &worker.MineCardsJob{
		Record:      rec,
		Evaluator:   s.Engines,
		Scheduler:   s.Cards,
		Depth:       s.StockfishDepth,
		CPThreshold: threshold,
	}

	if req.Async {
		if !rec.IsOver {
			handleError(w, r, apperr.BadRequest("game is not over yet"))
			return
		}
		s.MinePool.Submit(job)
		log.Info("mine job queued for game %s", rec.GameID)
		respondJSON(w, r, http.StatusAccepted, map[string]string{
			"status":  "queued",
			"game_id": rec.GameID,
		})
		return
	}

	res, err := job.Mine(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, res)
}
