package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)

	r.Get("/health", s.handleHealth)

	r.Post("/games", s.handleCreateGame)
	r.Get("/games/{id}", s.handleGameState)
	r.Post("/games/{id}/moves", s.handleMakeMove)
	r.Post("/games/{id}/engine-move", s.handleEngineMove)
	r.Post("/games/{id}/evaluate", s.handleEvaluateMove)
	r.Get("/games/{id}/legal-moves", s.handleLegalMoves)
	r.Post("/games/{id}/undo", s.handleUndo)
	r.Get("/games/{id}/pgn", s.handlePGN)
	r.Post("/games/{id}/mine-cards", s.handleMineCards)

	r.Post("/analysis", s.handleAnalyzePosition)

	r.Get("/srs/cards", s.handleListCards)
	r.Post("/srs/cards", s.handleAddCard)
	r.Get("/srs/due", s.handleDueCards)
	r.Post("/srs/cards/{id}/review", s.handleReviewCard)
	r.Get("/srs/stats", s.handleSRSStats)

	r.Get("/openings/search", s.handleSearchOpenings)
	r.Get("/openings/random", s.handleRandomOpening)
	r.Get("/openings/for-level", s.handleOpeningsForLevel)
	r.Get("/openings/family/{name}", s.handleOpeningsByFamily)
	r.Get("/openings/{eco}", s.handleOpeningsByECO)

	return r
}
