package http

import (
	"net/http"

	"brokemate/internal/core"
	applog "brokemate/internal/log"
	"brokemate/internal/services"
)

type subscriptionRequest struct {
	Name            string                  `json:"name"`
	Amount          core.Amount             `json:"amount"`
	Category        string                  `json:"category"`
	Type            core.TransactionType    `json:"type"`
	Frequency       core.Frequency          `json:"frequency"`
	StartDate       core.Date               `json:"startDate"`
	NextPaymentDate core.Date               `json:"nextPaymentDate"`
	Status          core.SubscriptionStatus `json:"status"`
}

func (s *Server) handleListSubscriptions(w http.ResponseWriter, r *http.Request) {
	st, err := s.finance.State(r.Context(), userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st.Subscriptions)
}

// handleAddSubscription stores the subscription and evaluates it at once,
// so a past start date fires before the response is sent.
func (s *Server) handleAddSubscription(w http.ResponseWriter, r *http.Request) {
	var req subscriptionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	sub, err := s.finance.AddSubscription(r.Context(), userID(r), core.Subscription{
		Name:            sanitizeInput(req.Name),
		Amount:          req.Amount,
		Category:        sanitizeInput(req.Category),
		Type:            req.Type,
		Frequency:       req.Frequency,
		StartDate:       req.StartDate,
		NextPaymentDate: req.NextPaymentDate,
		Status:          req.Status,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sub)
}

func (s *Server) handleToggleSubscription(w http.ResponseWriter, r *http.Request) {
	sub, err := s.finance.ToggleSubscription(r.Context(), userID(r), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

func (s *Server) handleRemoveSubscription(w http.ResponseWriter, r *http.Request) {
	removed, err := s.finance.RemoveSubscription(r.Context(), userID(r), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, removedResponse{Removed: removed})
}

// handleRunRecurring catches up the user's subscriptions immediately
// instead of waiting for the scheduler.
func (s *Server) handleRunRecurring(w http.ResponseWriter, r *http.Request) {
	if s.recurring == nil {
		ErrorResponse(http.StatusServiceUnavailable, applog.ErrorTypeConfiguration, "recurring processor not configured").Write(w)
		return
	}
	user := userID(r)
	if user == "" {
		writeError(w, r, services.ErrMissingUser)
		return
	}
	added, err := s.recurring.ProcessUser(r.Context(), user, s.finance.Today())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"added": added})
}
