package api

import (
	"net/http"

	"github.com/ndavis/chesstutor/internal/apperr"
	"github.com/ndavis/chesstutor/internal/logger"
)

func (s *Server) handleAnalyzePosition(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FEN     string `json:"fen"`
		Depth   int    `json:"depth"`
		MultiPV int    `json:"multipv"`
	}
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	if req.FEN == "" {
		handleError(w, r, apperr.InvalidArgument("fen", "must not be empty"))
		return
	}

	depth := req.Depth
	if depth <= 0 {
		depth = s.StockfishDepth
	}
	multipv := req.MultiPV
	if multipv <= 0 {
		multipv = 1
	}

	log := logger.FromContext(r.Context()).WithFields(map[string]any{
		"fen":     req.FEN,
		"depth":   depth,
		"multipv": multipv,
	})
	log.Debug("analyzing position")

	lines, err := s.Engines.AnalyzePosition(r.Context(), req.FEN, depth, multipv)
	if err != nil {
		handleError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, map[string]any{
		"fen":   req.FEN,
		"depth": depth,
		"lines": lines,
	})
}
