package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/kevenbotelho/controle-pessoal/internal/core"
	"github.com/kevenbotelho/controle-pessoal/internal/services"
)

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := services.TransactionFilter{
		Search: q.Get("busca"),
		Kind:   core.Kind(q.Get("tipo")),
		Month:  strings.TrimSpace(q.Get("mes")),
	}
	if v := q.Get("categoria"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			respondError(w, r, core.NewValidationError([]string{"Categoria inválida"}))
			return
		}
		filter.CategoryID = id
	}

	txs, err := s.ledger.Filter(filter)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, txs)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var tx core.Transaction
	if err := decodeBody(r, &tx); err != nil {
		respondError(w, r, err)
		return
	}
	tx.Description = sanitizeInput(tx.Description)

	created, err := s.ledger.AddTransaction(r.Context(), tx)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

type transactionPatchDTO struct {
	Date        *core.Date  `json:"data"`
	Description *string     `json:"descricao"`
	CategoryID  *int64      `json:"categoria"`
	Kind        *core.Kind  `json:"tipo"`
	Amount      *core.Money `json:"valor"`
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	var dto transactionPatchDTO
	if err := decodeBody(r, &dto); err != nil {
		respondError(w, r, err)
		return
	}
	if dto.Description != nil {
		clean := sanitizeInput(*dto.Description)
		dto.Description = &clean
	}

	updated, err := s.ledger.UpdateTransaction(r.Context(), id, services.TransactionPatch{
		Date:        dto.Date,
		Description: dto.Description,
		CategoryID:  dto.CategoryID,
		Kind:        dto.Kind,
		Amount:      dto.Amount,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	item, err := s.ledger.RemoveTransaction(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, item)
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.ledger.Categories())
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var dto struct {
		Name string `json:"nome"`
	}
	if err := decodeBody(r, &dto); err != nil {
		respondError(w, r, err)
		return
	}

	cat, err := s.ledger.AddCategory(r.Context(), sanitizeInput(dto.Name))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, cat)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if err := s.ledger.DeleteCategory(r.Context(), id); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleListTrash(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.ledger.Trash())
}

func (s *Server) handleRestoreTrash(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	restored, err := s.ledger.RestoreFromTrash(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, restored)
}

func (s *Server) handlePurgeTrash(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if err := s.ledger.PurgeFromTrash(r.Context(), id); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleEmptyTrash(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.EmptyTrash(r.Context()); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}
