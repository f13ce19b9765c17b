package api

import (
	"encoding/json"
	"net/http"
)

func (s *Server) handleListStyles(w http.ResponseWriter, r *http.Request) {
	conv := s.orchestrator.Converter()
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"styles":  conv.Styles.Names(),
		"default": conv.DefaultStyle,
	})
}
