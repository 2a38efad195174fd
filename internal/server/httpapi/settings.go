package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/fintrack/internal/server/models"
)

func (s *Server) getSettings(w http.ResponseWriter, r *http.Request) {
	st, err := s.svc.Settings.Get(r.Context(), userID(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) updateSettings(w http.ResponseWriter, r *http.Request) {
	var p models.SettingsPatch
	if !decodeJSON(w, r, &p) {
		return
	}
	st, err := s.svc.Settings.Update(r.Context(), userID(r.Context()), p)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}
