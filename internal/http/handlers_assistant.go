package http

import (
	"net/http"

	"brokemate/internal/assistant"
	"brokemate/internal/services"
)

func (s *Server) handleScanReceipt(w http.ResponseWriter, r *http.Request) {
	image, mimeType, err := readReceipt(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	user := userID(r)
	tx, err := s.assistant.ScanReceipt(r.Context(), user, image, mimeType)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.events.LogTransactionRecorded(r.Context(), user, tx.ID, tx.Merchant, tx.Amount.String(), tx.Category)
	writeJSON(w, http.StatusCreated, tx)
}

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	res, err := s.assistant.Insights(r.Context(), userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		History []assistant.ChatMessage `json:"history"`
		Message string                  `json:"message"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	reply, err := s.assistant.Chat(r.Context(), userID(r), req.History, req.Message)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, assistant.ChatMessage{Role: assistant.RoleModel, Text: reply})
}

// handleCancelAssistant aborts the in-flight request of a view. Its result
// is discarded when it arrives.
func (s *Server) handleCancelAssistant(w http.ResponseWriter, r *http.Request) {
	s.assistant.Cancel(userID(r), services.View(r.PathValue("view")))
	w.WriteHeader(http.StatusNoContent)
}
