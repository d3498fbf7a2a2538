package api

import "net/http"

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{"status": "ok"}
	if s.MinePool != nil {
		resp["mine_queue"] = s.MinePool.QueueSize()
	}
	respondJSON(w, r, http.StatusOK, resp)
}
