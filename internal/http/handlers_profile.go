package http

import (
	"encoding/json"
	"net/http"
	"strings"
)

type profileInput struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	p, err := s.profiles.Get(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProfileJSON(*p))
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var in profileInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	p, err := s.profiles.Update(r.Context(), strings.TrimSpace(in.FirstName), strings.TrimSpace(in.LastName))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProfileJSON(*p))
}
