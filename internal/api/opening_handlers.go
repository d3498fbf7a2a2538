package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ndavis/chesstutor/internal/apperr"
	"github.com/ndavis/chesstutor/internal/openings"
)

func (s *Server) handleSearchOpenings(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))

	found, err := s.Openings.Search(r.Context(), openings.SearchFilter{
		Query:     q.Get("q"),
		ECO:       q.Get("eco"),
		ECOVolume: q.Get("volume"),
		Limit:     limit,
	})
	if err != nil {
		handleError(w, r, apperr.Internal(err))
		return
	}
	respondOpenings(w, r, found)
}

func (s *Server) handleOpeningsByECO(w http.ResponseWriter, r *http.Request) {
	eco := chi.URLParam(r, "eco")
	found, err := s.Openings.ByECO(r.Context(), eco)
	if err != nil {
		handleError(w, r, apperr.Internal(err))
		return
	}
	if len(found) == 0 {
		handleError(w, r, apperr.NotFound("opening", eco))
		return
	}
	respondOpenings(w, r, found)
}

func (s *Server) handleOpeningsByFamily(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	found, err := s.Openings.ByFamily(r.Context(), name)
	if err != nil {
		handleError(w, r, apperr.Internal(err))
		return
	}
	if len(found) == 0 {
		handleError(w, r, apperr.NotFound("opening family", name))
		return
	}
	respondOpenings(w, r, found)
}

func (s *Server) handleOpeningsForLevel(w http.ResponseWriter, r *http.Request) {
	elo, err := strconv.Atoi(r.URL.Query().Get("elo"))
	if err != nil {
		handleError(w, r, apperr.InvalidArgument("elo", "must be an integer"))
		return
	}

	found, err := s.Openings.ForLevel(r.Context(), elo)
	if err != nil {
		handleError(w, r, apperr.Internal(err))
		return
	}
	respondOpenings(w, r, found)
}

func (s *Server) handleRandomOpening(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	maxMoves, _ := strconv.Atoi(q.Get("max_moves"))

	op, err := s.Openings.Random(r.Context(), q.Get("volume"), maxMoves)
	if err != nil {
		handleError(w, r, apperr.Internal(err))
		return
	}
	if op == nil {
		handleError(w, r, apperr.NotFound("opening", "random"))
		return
	}
	respondJSON(w, r, http.StatusOK, op)
}

func respondOpenings(w http.ResponseWriter, r *http.Request, found []openings.Opening) {
	if found == nil {
		found = []openings.Opening{}
	}
	respondJSON(w, r, http.StatusOK, map[string]any{
		"openings": found,
		"count":    len(found),
	})
}
