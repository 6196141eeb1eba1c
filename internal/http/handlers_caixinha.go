package http

import (
	"net/http"
	"time"

	"github.com/kevenbotelho/controle-pessoal/internal/core"
	"github.com/kevenbotelho/controle-pessoal/internal/services"
)

func (s *Server) handleListCaixinhas(w http.ResponseWriter, r *http.Request) {
	if status := r.URL.Query().Get("status"); status != "" {
		respondJSON(w, http.StatusOK, s.caixinhas.ByStatus(core.GoalStatus(status)))
		return
	}
	respondJSON(w, http.StatusOK, s.caixinhas.List())
}

func (s *Server) handleGetCaixinha(w http.ResponseWriter, r *http.Request) {
	goal, err := s.caixinhas.Get(r.PathValue("id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, goal)
}

func (s *Server) handleCreateCaixinha(w http.ResponseWriter, r *http.Request) {
	var goal core.Caixinha
	if err := decodeBody(r, &goal); err != nil {
		respondError(w, r, err)
		return
	}
	goal.Name = sanitizeInput(goal.Name)
	goal.Note = sanitizeInput(goal.Note)

	created, err := s.caixinhas.Create(r.Context(), goal)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

type caixinhaPatchDTO struct {
	Name         *string            `json:"nome"`
	Target       *core.Money        `json:"valorAlvo"`
	DeadlineMode *core.DeadlineMode `json:"prazoTipo"`
	Months       *int               `json:"prazoMeses"`
	EndDate      *core.Date         `json:"dataFim"`
	Frequency    *core.Frequency    `json:"frequencia"`
	CategoryID   *int64             `json:"categoria"`
	Note         *string            `json:"nota"`
}

func (s *Server) handleUpdateCaixinha(w http.ResponseWriter, r *http.Request) {
	var dto caixinhaPatchDTO
	if err := decodeBody(r, &dto); err != nil {
		respondError(w, r, err)
		return
	}
	if dto.Name != nil {
		clean := sanitizeInput(*dto.Name)
		dto.Name = &clean
	}
	if dto.Note != nil {
		clean := sanitizeInput(*dto.Note)
		dto.Note = &clean
	}

	updated, err := s.caixinhas.Update(r.Context(), r.PathValue("id"), services.CaixinhaPatch{
		Name:         dto.Name,
		Target:       dto.Target,
		DeadlineMode: dto.DeadlineMode,
		Months:       dto.Months,
		EndDate:      dto.EndDate,
		Frequency:    dto.Frequency,
		CategoryID:   dto.CategoryID,
		Note:         dto.Note,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteCaixinha(w http.ResponseWriter, r *http.Request) {
	if err := s.caixinhas.Delete(r.Context(), r.PathValue("id")); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleContribute(w http.ResponseWriter, r *http.Request) {
	var dto struct {
		Amount core.Money              `json:"valor"`
		Source core.ContributionSource `json:"tipo"`
	}
	if err := decodeBody(r, &dto); err != nil {
		respondError(w, r, err)
		return
	}

	goal, err := s.caixinhas.Contribute(r.Context(), r.PathValue("id"), dto.Amount, dto.Source)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, goal)
}

func (s *Server) handleToggleCaixinha(w http.ResponseWriter, r *http.Request) {
	goal, err := s.caixinhas.ToggleStatus(r.Context(), r.PathValue("id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, goal)
}

// handleCaixinhaSuggestion runs the calculator for a goal definition
// that may not be persisted yet.
func (s *Server) handleCaixinhaSuggestion(w http.ResponseWriter, r *http.Request) {
	var goal core.Caixinha
	if err := decodeBody(r, &goal); err != nil {
		respondError(w, r, err)
		return
	}
	if goal.StartDate.IsZero() {
		goal.StartDate = core.DateOf(time.Now())
	}
	respondJSON(w, http.StatusOK, s.caixinhas.Suggest(goal))
}

func (s *Server) handleCaixinhaProjection(w http.ResponseWriter, r *http.Request) {
	goal, err := s.caixinhas.Get(r.PathValue("id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"caixinhaId":    goal.ID,
		"progresso":     core.Progress(goal),
		"dataProjetada": core.ProjectedCompletion(goal, time.Now()),
	})
}

func (s *Server) handleCaixinhaNotifications(w http.ResponseWriter, r *http.Request) {
	notifications := s.caixinhas.Notifications()
	if notifications == nil {
		notifications = []core.Notification{}
	}
	respondJSON(w, http.StatusOK, notifications)
}
