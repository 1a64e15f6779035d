package stubapi

import (
	"encoding/json"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/carmarket/carmarket/internal/api"
)

type ticketRequest struct {
	CategoryID  string `json:"category_id"`
	Priority    string `json:"priority"`
	Subject     string `json:"subject"`
	Description string `json:"description"`
}

var priorities = map[string]bool{"low": true, "medium": true, "high": true, "critical": true}

func (s *Server) handleCreateTicket(w http.ResponseWriter, r *http.Request) {
	var req ticketRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Некорректный запрос")
		return
	}
	if strings.TrimSpace(req.Subject) == "" || strings.TrimSpace(req.Description) == "" {
		writeError(w, http.StatusBadRequest, "Заполните все обязательные поля")
		return
	}
	if utf8.RuneCountInString(req.Subject) > 255 {
		writeError(w, http.StatusBadRequest, "Тема не должна превышать 255 символов")
		return
	}
	if req.Priority == "" {
		req.Priority = "medium"
	}
	if !priorities[req.Priority] {
		writeError(w, http.StatusBadRequest, "Неизвестный приоритет")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t := &api.Ticket{
		ID:          uuid.New().String(),
		Subject:     req.Subject,
		Status:      "open",
		CategoryID:  req.CategoryID,
		Priority:    req.Priority,
		Description: req.Description,
		CreatedDate: s.now().UTC(),
	}
	s.tickets[t.ID] = t
	s.record("Новое обращение в поддержку", req.Subject)
	writeJSON(w, http.StatusCreated, t)
}

func (s *Server) handleGetTicket(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	s.mu.Lock()
	t, ok := s.tickets[id]
	s.mu.Unlock()

	if !ok {
		writeError(w, http.StatusNotFound, "Обращение не найдено")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleCarAttributes(w http.ResponseWriter, r *http.Request) {
	var attrs map[string]json.RawMessage
	if err := decode(r, &attrs); err != nil {
		writeError(w, http.StatusBadRequest, "Некорректный запрос")
		return
	}
	if raw, ok := attrs["year"]; ok {
		var year float64
		if err := json.Unmarshal(raw, &year); err != nil {
			writeError(w, http.StatusBadRequest, "Год выпуска должен быть числом")
			return
		}
		if latest := float64(s.now().Year() + 1); year < 1980 || year > latest {
			writeError(w, http.StatusBadRequest, "Недопустимый год выпуска")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"saved": len(attrs)})
}
