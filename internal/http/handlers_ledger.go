package http

import (
	"net/http"

	"brokemate/internal/core"
)

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	st, err := s.finance.State(r.Context(), userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleDarkMode(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Enabled bool `json:"enabled"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.finance.SetDarkMode(r.Context(), userID(r), req.Enabled); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"isDarkMode": req.Enabled})
}

// Categories

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	st, err := s.finance.State(r.Context(), userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st.Categories)
}

func (s *Server) handleAddCategory(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Label string `json:"label"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	label := sanitizeInput(req.Label)
	added, err := s.finance.AddCategory(r.Context(), userID(r), label)
	if err != nil {
		writeError(w, r, err)
		return
	}
	status := http.StatusOK
	if added {
		status = http.StatusCreated
	}
	writeJSON(w, status, map[string]any{"label": label, "added": added})
}

func (s *Server) handleRemoveCategory(w http.ResponseWriter, r *http.Request) {
	removed, err := s.finance.RemoveCategory(r.Context(), userID(r), r.PathValue("label"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, removedResponse{Removed: removed})
}

// Transactions

type transactionRequest struct {
	Merchant   string               `json:"merchant"`
	Amount     core.Amount          `json:"amount"`
	Date       core.Date            `json:"date"`
	Category   string               `json:"category"`
	Type       core.TransactionType `json:"type"`
	Recurrence core.Frequency       `json:"recurrence"`
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	f, err := ParseFilter(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}
	txs, err := s.finance.Transactions(r.Context(), userID(r), f)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, txs)
}

// handleAddTransaction records a manual entry. A missing date means today.
func (s *Server) handleAddTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.Date.IsZero() {
		req.Date = s.finance.Today()
	}
	user := userID(r)
	tx, err := s.finance.AddTransaction(r.Context(), user, core.Transaction{
		Merchant:   sanitizeInput(req.Merchant),
		Amount:     req.Amount,
		Date:       req.Date,
		Category:   sanitizeInput(req.Category),
		Type:       req.Type,
		Recurrence: req.Recurrence,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.events.LogTransactionRecorded(r.Context(), user, tx.ID, tx.Merchant, tx.Amount.String(), tx.Category)
	writeJSON(w, http.StatusCreated, tx)
}

func (s *Server) handleRemoveTransaction(w http.ResponseWriter, r *http.Request) {
	removed, err := s.finance.RemoveTransaction(r.Context(), userID(r), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, removedResponse{Removed: removed})
}

// handleOverview serves the month aggregate, memoized per user and month.
func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	month, err := ParseMonth(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if month == "" {
		month = s.finance.Today().MonthKey()
	}
	user := userID(r)
	var gen uint64
	if s.overviewCache != nil {
		if ov, ok := s.overviewCache.Get(user, month); ok {
			NewJSONResponse().Header("X-Cache", "HIT").Data(ov).Write(w)
			return
		}
		gen = s.overviewCache.Generation(user)
	}
	ov, err := s.finance.Overview(r.Context(), user, month)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if s.overviewCache != nil {
		s.overviewCache.Store(user, month, gen, ov)
	}
	NewJSONResponse().Header("X-Cache", "MISS").Data(ov).Write(w)
}

// Budgets

func (s *Server) handleBudgets(w http.ResponseWriter, r *http.Request) {
	month, err := ParseMonth(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}
	reports, err := s.finance.Budgets(r.Context(), userID(r), month)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reports)
}

// handleSetBudget upserts the budget of a category.
func (s *Server) handleSetBudget(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Category string      `json:"category"`
		Amount   core.Amount `json:"amount"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	b, err := s.finance.SetBudget(r.Context(), userID(r), sanitizeInput(req.Category), req.Amount)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (s *Server) handleRemoveBudget(w http.ResponseWriter, r *http.Request) {
	removed, err := s.finance.RemoveBudget(r.Context(), userID(r), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, removedResponse{Removed: removed})
}
