package api

import (
	"encoding/json"
	"net/http"

	"github.com/ndavis/chesstutor/internal/apperr"
	"github.com/ndavis/chesstutor/internal/logger"
)

// handleError centralizes error responses: every error maps to a status and
// a stable code via the apperr taxonomy.
func handleError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context())

	appErr, ok := err.(*apperr.Error)
	if !ok {
		appErr = apperr.Internal(err)
	}

	if appErr.Status >= 500 {
		log.Error("server error: %v", appErr)
	} else {
		log.Warn("client error: %v", appErr)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.Status)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"code":    appErr.Code,
			"message": appErr.Message,
		},
	})
}
