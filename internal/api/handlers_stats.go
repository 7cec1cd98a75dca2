package api

import (
	"net/http"
)

func (s *Server) handleRenderStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"stats":       s.renderer.Stats().Snapshot(),
		"queue_depth": s.orchestrator.QueueDepth(),
		"views":       s.views.Len(),
	})
}
