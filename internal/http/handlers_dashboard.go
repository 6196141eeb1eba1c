package http

import (
	"net/http"
	"time"
)

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.ledger.BuildDashboard(time.Now()))
}

func (s *Server) handleMonthlyReport(w http.ResponseWriter, r *http.Request) {
	year, month := parseYearMonth(r)
	respondJSON(w, http.StatusOK, s.ledger.MonthlyReport(year, month))
}
