package http

import (
	"io"
	"net/http"

	"github.com/kevenbotelho/controle-pessoal/internal/core"
	"github.com/kevenbotelho/controle-pessoal/internal/services"
)

// Import payloads are capped to keep a stray upload from exhausting
// memory; real bundles are far below this.
const maxImportBytes = 10 << 20

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.ledger.Profile())
}

func (s *Server) handleSetProfile(w http.ResponseWriter, r *http.Request) {
	var profile services.Profile
	if err := decodeBody(r, &profile); err != nil {
		respondError(w, r, err)
		return
	}
	profile.Name = sanitizeInput(profile.Name)

	if err := s.ledger.SetProfile(r.Context(), profile); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, profile)
}

func (s *Server) handleExportLedger(w http.ResponseWriter, r *http.Request) {
	bundle, err := s.backup.ExportLedger()
	if err != nil {
		respondError(w, r, err)
		return
	}
	w.Header().Set("Content-Disposition", `attachment; filename="controle-financeiro-backup.json"`)
	respondJSON(w, http.StatusOK, bundle)
}

func (s *Server) handleImportLedger(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxImportBytes))
	if err != nil {
		respondError(w, r, core.NewValidationError([]string{"Falha ao ler o arquivo"}))
		return
	}
	if err := s.backup.ImportLedger(r.Context(), raw); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"importado": true})
}

func (s *Server) handleExportCaixinhas(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Disposition", `attachment; filename="caixinhas-backup.json"`)
	respondJSON(w, http.StatusOK, s.backup.ExportCaixinhas())
}

func (s *Server) handleImportCaixinhas(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxImportBytes))
	if err != nil {
		respondError(w, r, core.NewValidationError([]string{"Falha ao ler o arquivo"}))
		return
	}
	count, err := s.backup.ImportCaixinhas(r.Context(), raw)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"importado": true, "caixinhas": count})
}
