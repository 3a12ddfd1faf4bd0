package http

import (
	"net/http"

	"brokemate/internal/core"
)

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	st, err := s.finance.State(r.Context(), userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st.Goals)
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title        string      `json:"title"`
		TargetAmount core.Amount `json:"targetAmount"`
		Deadline     core.Date   `json:"deadline"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	g, err := s.finance.CreateGoal(r.Context(), userID(r), sanitizeInput(req.Title), req.TargetAmount, req.Deadline)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, g)
}

// handleContribute adds to a goal and returns the savings transaction it
// recorded.
func (s *Server) handleContribute(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Amount core.Amount `json:"amount"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	tx, err := s.finance.Contribute(r.Context(), userID(r), r.PathValue("id"), req.Amount)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, tx)
}

func (s *Server) handleGoalAdvice(w http.ResponseWriter, r *http.Request) {
	advice, err := s.assistant.GoalAdvice(r.Context(), userID(r), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"advice": advice})
}
