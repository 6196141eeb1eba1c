package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/kevenbotelho/controle-pessoal/internal/core"
	applog "github.com/kevenbotelho/controle-pessoal/internal/log"
)

// Bundle format versions. The ledger bundle keeps the budget block as
// a JSON string inside the JSON document, a quirk of the original
// export format that imports must keep accepting.
const (
	ledgerBundleVersion   = "1.2"
	caixinhaBundleVersion = "1.0"
)

// LedgerBundle is the full-data export document.
type LedgerBundle struct {
	Transactions []core.Transaction `json:"transacoes"`
	Categories   []core.Category    `json:"categorias"`
	Profile      Profile            `json:"perfil"`
	Budget       string             `json:"orcamentos"`
	ExportedAt   time.Time          `json:"dataExportacao"`
	Version      string             `json:"versao"`
}

// CaixinhaBundle is the savings-goal export document.
type CaixinhaBundle struct {
	Caixinhas  []core.Caixinha `json:"caixinhas"`
	ExportedAt time.Time       `json:"dataExportacao"`
	Version    string          `json:"versao"`
}

// BackupService builds and applies export bundles over the two data
// services.
type BackupService struct {
	ledger    *LedgerService
	caixinhas *CaixinhaService
	logger    *applog.Logger
}

func NewBackupService(ledger *LedgerService, caixinhas *CaixinhaService, logger *applog.Logger) *BackupService {
	if logger == nil {
		logger = applog.New(0)
	}
	return &BackupService{
		ledger:    ledger,
		caixinhas: caixinhas,
		logger:    logger.WithComponent("backup"),
	}
}

// ExportLedger snapshots transactions, categories, profile and budget
// into one bundle. Trash is deliberately not exported.
func (s *BackupService) ExportLedger() (LedgerBundle, error) {
	budgetRaw, err := json.Marshal(s.ledger.Budget())
	if err != nil {
		return LedgerBundle{}, err
	}
	return LedgerBundle{
		Transactions: s.ledger.Transactions(),
		Categories:   s.ledger.Categories(),
		Profile:      s.ledger.Profile(),
		Budget:       string(budgetRaw),
		ExportedAt:   time.Now(),
		Version:      ledgerBundleVersion,
	}, nil
}

// ImportLedger replaces the ledger with the bundle's contents. The
// transaction and category blocks are mandatory; profile and budget
// are restored when present and silently skipped when absent or
// malformed, so partial bundles from older exports still import.
func (s *BackupService) ImportLedger(ctx context.Context, raw []byte) error {
	var probe struct {
		Transactions json.RawMessage `json:"transacoes"`
		Categories   json.RawMessage `json:"categorias"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return core.NewValidationError([]string{"Arquivo de backup inválido"})
	}
	if len(probe.Transactions) == 0 || len(probe.Categories) == 0 {
		return core.NewValidationError([]string{"Arquivo inválido: transações e categorias são obrigatórias"})
	}

	var bundle LedgerBundle
	if err := json.Unmarshal(raw, &bundle); err != nil {
		return core.NewValidationError([]string{"Arquivo de backup inválido"})
	}

	if err := s.ledger.ReplaceAll(ctx, bundle.Transactions, bundle.Categories); err != nil {
		return err
	}

	if bundle.Profile != (Profile{}) {
		if err := s.ledger.SetProfile(ctx, bundle.Profile); err != nil {
			s.logger.WarnContext(ctx, "Profile restore failed", "error", err)
		}
	}

	if bundle.Budget != "" {
		var budget core.Budget
		if err := json.Unmarshal([]byte(bundle.Budget), &budget); err != nil {
			s.logger.WarnContext(ctx, "Budget block unreadable, skipping", "error", err)
		} else if err := s.ledger.SetBudget(ctx, budget); err != nil {
			s.logger.WarnContext(ctx, "Budget restore failed", "error", err)
		}
	}

	s.logger.InfoContext(ctx, "Ledger imported",
		"transactions", len(bundle.Transactions),
		"categories", len(bundle.Categories),
		"versao", bundle.Version)
	return nil
}

// ExportCaixinhas snapshots all savings goals into one bundle.
func (s *BackupService) ExportCaixinhas() CaixinhaBundle {
	return CaixinhaBundle{
		Caixinhas:  s.caixinhas.List(),
		ExportedAt: time.Now(),
		Version:    caixinhaBundleVersion,
	}
}

// ImportCaixinhas replaces the goal list with the bundle's valid
// entries. Invalid entries are dropped with a log line; a bundle with
// nothing valid is rejected whole.
func (s *BackupService) ImportCaixinhas(ctx context.Context, raw []byte) (int, error) {
	var bundle CaixinhaBundle
	if err := json.Unmarshal(raw, &bundle); err != nil {
		return 0, core.NewValidationError([]string{"Arquivo de backup inválido"})
	}
	if bundle.Caixinhas == nil {
		return 0, core.NewValidationError([]string{"Arquivo inválido: lista de caixinhas ausente"})
	}

	valid := make([]core.Caixinha, 0, len(bundle.Caixinhas))
	for _, goal := range bundle.Caixinhas {
		if goal.ID == "" || goal.Validate() != nil {
			s.logger.WarnContext(ctx, "Dropping invalid caixinha from import",
				"id", goal.ID, "nome", goal.Name)
			continue
		}
		valid = append(valid, goal)
	}
	if len(valid) == 0 {
		return 0, core.NewValidationError([]string{"Nenhuma caixinha válida no arquivo"})
	}

	if err := s.caixinhas.ReplaceAll(ctx, valid); err != nil {
		return 0, err
	}

	s.logger.InfoContext(ctx, "Caixinhas imported",
		"valid", len(valid), "dropped", len(bundle.Caixinhas)-len(valid))
	return len(valid), nil
}
