package stubapi

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/carmarket/carmarket/internal/api"
)

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d := api.Dashboard{
		TotalUsers:       len(s.users),
		TotalListings:    len(s.moderation),
		RecentActivities: append([]api.Activity(nil), s.activities...),
	}
	today := s.now().UTC().Truncate(24 * time.Hour)
	for _, a := range s.activities {
		if a.Action == "Регистрация пользователя" && !a.CreatedDate.Before(today) {
			d.UsersToday++
		}
	}
	for _, m := range s.moderation {
		switch m.Status {
		case api.ModerationPending:
			d.PendingModeration++
		case api.ModerationApproved:
			d.ActiveListings++
		}
	}
	for _, rep := range s.reports {
		if rep.Status == api.ReportOpen {
			d.OpenReports++
		}
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) handleListModeration(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if status == "" {
		status = api.ModerationPending
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]api.ModerationItem, 0)
	for _, m := range s.moderation {
		if status == "all" || m.Status == status {
			out = append(out, *m)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleModerate(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	var req struct {
		Action string `json:"action"`
		Reason string `json:"reason"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Некорректный запрос")
		return
	}
	if req.Action != "approve" && req.Action != "reject" {
		writeError(w, http.StatusBadRequest, "Неизвестное действие")
		return
	}
	if req.Action == "reject" && strings.TrimSpace(req.Reason) == "" {
		writeError(w, http.StatusBadRequest, "Укажите причину отклонения")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, m := range s.moderation {
		if m.ID != id {
			continue
		}
		if m.Status != api.ModerationPending {
			writeError(w, http.StatusConflict, "Объявление уже проверено")
			return
		}
		if req.Action == "approve" {
			m.Status = api.ModerationApproved
			s.record("Объявление одобрено", m.Title)
		} else {
			m.Status = api.ModerationRejected
			m.RejectionReason = req.Reason
			s.record("Объявление отклонено", m.Title)
		}
		writeJSON(w, http.StatusOK, m)
		return
	}
	writeError(w, http.StatusNotFound, "Объявление не найдено")
}

func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if status == "" {
		status = api.ReportOpen
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]api.Report, 0)
	for _, rep := range s.reports {
		if status == "all" || rep.Status == status {
			out = append(out, *rep)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleResolveReport(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	var req struct {
		Resolution string `json:"resolution"`
		Notes      string `json:"notes"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Некорректный запрос")
		return
	}
	var status string
	switch req.Resolution {
	case "action_taken":
		status = api.ReportResolved
	case "dismissed":
		status = api.ReportDismissed
	default:
		writeError(w, http.StatusBadRequest, "Неизвестное решение")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, rep := range s.reports {
		if rep.ID != id {
			continue
		}
		if rep.Status != api.ReportOpen {
			writeError(w, http.StatusConflict, "Жалоба уже обработана")
			return
		}
		now := s.now().UTC()
		rep.Status = status
		rep.ResolutionNotes = req.Notes
		rep.ResolvedDate = &now
		rep.ResolvedByName = "Администратор"
		s.record("Жалоба обработана", rep.ContentTitle)
		writeJSON(w, http.StatusOK, rep)
		return
	}
	writeError(w, http.StatusNotFound, "Жалоба не найдена")
}
