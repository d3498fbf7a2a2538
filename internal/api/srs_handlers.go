package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ndavis/chesstutor/internal/apperr"
	"github.com/ndavis/chesstutor/internal/srs"
)

func (s *Server) handleListCards(w http.ResponseWriter, r *http.Request) {
	cards := s.Cards.Cards()
	respondJSON(w, r, http.StatusOK, map[string]any{
		"cards": cards,
		"count": len(cards),
	})
}

func (s *Server) handleAddCard(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FEN            string  `json:"fen"`
		PlayerMove     string  `json:"player_move"`
		BestMove       string  `json:"best_move"`
		CPLoss         int     `json:"cp_loss"`
		Classification string  `json:"classification"`
		Motif          *string `json:"motif"`
		Explanation    string  `json:"explanation"`
	}
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	card, err := s.Cards.AddCard(srs.NewCard{
		FEN:            req.FEN,
		PlayerMove:     req.PlayerMove,
		BestMove:       req.BestMove,
		CPLoss:         req.CPLoss,
		Classification: req.Classification,
		Motif:          req.Motif,
		Explanation:    req.Explanation,
	})
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusCreated, card)
}

func (s *Server) handleDueCards(w http.ResponseWriter, r *http.Request) {
	due := s.Cards.DueCards()
	if due == nil {
		due = []srs.Card{}
	}
	respondJSON(w, r, http.StatusOK, map[string]any{
		"cards": due,
		"count": len(due),
	})
}

func (s *Server) handleReviewCard(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Quality *int `json:"quality"`
	}
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	if req.Quality == nil {
		handleError(w, r, apperr.InvalidArgument("quality", "is required"))
		return
	}

	card, err := s.Cards.ReviewCard(chi.URLParam(r, "id"), *req.Quality)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, card)
}

func (s *Server) handleSRSStats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, http.StatusOK, s.Cards.Stats())
}
