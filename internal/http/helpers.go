package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/kevenbotelho/controle-pessoal/internal/core"
)

// respondJSON writes v as a JSON body with the given status.
func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Response encoding failed", "error", err)
	}
}

// respondError maps domain errors onto HTTP statuses: validation
// problems become 422 with the full problem list, missing ids become
// 404, everything else is a 500 with a generic body.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *core.ValidationError
	if errors.As(err, &ve) {
		respondJSON(w, http.StatusUnprocessableEntity, map[string]any{"erros": ve.Problems})
		return
	}
	if core.IsNotFound(err) {
		respondJSON(w, http.StatusNotFound, map[string]any{"erro": err.Error()})
		return
	}
	slog.ErrorContext(r.Context(), "Request failed",
		"error", err, "method", r.Method, "url", r.URL.Path)
	respondJSON(w, http.StatusInternalServerError, map[string]any{"erro": "erro interno"})
}

// decodeBody parses the request body into v, rejecting unknown noise
// only at the JSON syntax level.
func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return core.NewValidationError([]string{"Corpo da requisição inválido"})
	}
	return nil
}

// pathID parses the {id} path segment as an int64.
func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		return 0, core.NewValidationError([]string{"ID inválido"})
	}
	return id, nil
}

// parseYearMonth extracts ano/mes query parameters, defaulting to the
// current month.
func parseYearMonth(r *http.Request) (int, time.Month) {
	now := time.Now()
	year := now.Year()
	month := int(now.Month())

	if v := strings.TrimSpace(r.URL.Query().Get("ano")); v != "" {
		if y, err := strconv.Atoi(v); err == nil {
			year = y
		}
	}
	if v := strings.TrimSpace(r.URL.Query().Get("mes")); v != "" {
		if m, err := strconv.Atoi(v); err == nil && m >= 1 && m <= 12 {
			month = m
		}
	}
	return year, time.Month(month)
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
