package web

import (
	"net/http"

	"go.uber.org/zap"

	"consequence/internal/game"
	"consequence/internal/mapgen"
)

// GET /map downloads the route map of the caller's run.
func (s *Server) handleMap(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	ctx := r.Context()
	id := s.sessionID(r)
	if id == "" {
		http.Redirect(w, r, "/play", http.StatusFound)
		return
	}
	raw, ok, err := s.Sessions.Get(ctx, id)
	if err != nil || !ok {
		http.Redirect(w, r, "/play", http.StatusFound)
		return
	}
	st, err := game.Restore(raw, s.Engine.Story.Start)
	if err != nil {
		http.Redirect(w, r, "/play", http.StatusFound)
		return
	}

	pdf, err := mapgen.Generate(s.Engine.Story, st, nil)
	if err != nil {
		s.logger().Error("Failed to render route map", zap.String("session", id), zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="consequence-route.pdf"`)
	if _, err := w.Write(pdf); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}
