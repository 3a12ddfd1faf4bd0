package http

import (
	"net/http"
	"time"

	"brokemate/internal/core"
)

// profileView hides the PIN hash.
type profileView struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	HasPIN    bool      `json:"hasPin"`
	CreatedAt time.Time `json:"createdAt"`
}

func viewProfile(p core.Profile) profileView {
	return profileView{ID: p.ID, Username: p.Username, HasPIN: p.HasPIN(), CreatedAt: p.CreatedAt}
}

func (s *Server) handleListProfiles(w http.ResponseWriter, r *http.Request) {
	profiles, err := s.profiles.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]profileView, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, viewProfile(p))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleRegisterProfile(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username   string `json:"username"`
		PIN        string `json:"pin"`
		ConfirmPIN string `json:"confirmPin"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	p, err := s.profiles.Register(r.Context(), sanitizeInput(req.Username), req.PIN, req.ConfirmPIN)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, viewProfile(p))
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	p, err := s.profiles.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, viewProfile(p))
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PIN string `json:"pin"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	p, err := s.profiles.Login(r.Context(), r.PathValue("id"), req.PIN)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, viewProfile(p))
}
