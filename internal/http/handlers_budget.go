package http

import (
	"net/http"
	"time"

	"github.com/kevenbotelho/controle-pessoal/internal/core"
)

func (s *Server) handleGetBudget(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.ledger.Budget())
}

func (s *Server) handleSetBudget(w http.ResponseWriter, r *http.Request) {
	var budget core.Budget
	if err := decodeBody(r, &budget); err != nil {
		respondError(w, r, err)
		return
	}
	if err := s.ledger.SetBudget(r.Context(), budget); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, budget)
}

func (s *Server) handleBudgetAlerts(w http.ResponseWriter, r *http.Request) {
	alerts := s.ledger.BudgetAlerts(time.Now())
	if alerts == nil {
		alerts = []core.Alert{}
	}
	respondJSON(w, http.StatusOK, alerts)
}
