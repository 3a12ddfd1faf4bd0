package http

import (
	"net/http"

	"brokemate/internal/assistant"
	"brokemate/internal/core"
)

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	st, err := s.finance.State(r.Context(), userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st.Tasks)
}

func (s *Server) handleAddTask(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title         string        `json:"title"`
		Priority      core.Priority `json:"priority"`
		EstimatedTime string        `json:"estimatedTime"`
		DueDate       *core.Date    `json:"dueDate"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.DueDate != nil && req.DueDate.IsZero() {
		req.DueDate = nil
	}
	t, err := s.finance.AddTask(r.Context(), userID(r), core.Task{
		Title:         sanitizeInput(req.Title),
		Priority:      req.Priority,
		EstimatedTime: sanitizeInput(req.EstimatedTime),
		DueDate:       req.DueDate,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (s *Server) handleToggleTask(w http.ResponseWriter, r *http.Request) {
	t, ok, err := s.finance.ToggleTask(r.Context(), userID(r), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !ok {
		writeJSON(w, http.StatusOK, updatedResponse{Updated: false})
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleRemoveTask(w http.ResponseWriter, r *http.Request) {
	removed, err := s.finance.RemoveTask(r.Context(), userID(r), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, removedResponse{Removed: removed})
}

func (s *Server) handlePrioritize(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.assistant.Prioritize(r.Context(), userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (s *Server) handleWorkflow(w http.ResponseWriter, r *http.Request) {
	tip, err := s.assistant.SuggestWorkflow(r.Context(), userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"suggestion": tip})
}

// Schedule

func (s *Server) handleSchedule(w http.ResponseWriter, r *http.Request) {
	st, err := s.finance.State(r.Context(), userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st.Schedule)
}

func (s *Server) handleReplaceSchedule(w http.ResponseWriter, r *http.Request) {
	var blocks []core.TimeBlock
	if err := decodeJSON(w, r, &blocks); err != nil {
		writeError(w, r, err)
		return
	}
	saved, err := s.finance.SetSchedule(r.Context(), userID(r), blocks)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

// handleUpdateTimeBlock edits one block; the path id wins over the body.
func (s *Server) handleUpdateTimeBlock(w http.ResponseWriter, r *http.Request) {
	var b core.TimeBlock
	if err := decodeJSON(w, r, &b); err != nil {
		writeError(w, r, err)
		return
	}
	b.ID = r.PathValue("id")
	updated, err := s.finance.UpdateTimeBlock(r.Context(), userID(r), b)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !updated {
		writeJSON(w, http.StatusOK, updatedResponse{Updated: false})
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (s *Server) handleRemoveTimeBlock(w http.ResponseWriter, r *http.Request) {
	removed, err := s.finance.RemoveTimeBlock(r.Context(), userID(r), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, removedResponse{Removed: removed})
}

func (s *Server) handleGenerateSchedule(w http.ResponseWriter, r *http.Request) {
	var opts assistant.ScheduleOptions
	if err := decodeJSON(w, r, &opts); err != nil {
		writeError(w, r, err)
		return
	}
	blocks, err := s.assistant.GenerateSchedule(r.Context(), userID(r), opts)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, blocks)
}
