// Package services orchestrates the domain engines over the document
// store: it owns the in-memory snapshots, serializes mutations, and
// applies the stage→persist→revert discipline so memory and storage
// never diverge after a failed write.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/kevenbotelho/controle-pessoal/internal/backend"
	"github.com/kevenbotelho/controle-pessoal/internal/core"
	applog "github.com/kevenbotelho/controle-pessoal/internal/log"
)

// Storage keys, kept byte-identical to the original application so a
// migrated data directory keeps working.
const (
	keyTransactions = "controle_financeiro_transactions"
	keyCategories   = "controle_financeiro_categories"
	keyTrash        = "controle_financeiro_trash"
	keyBudget       = "orcamentos"
	keyCaixinhas    = "cfp_caixinhas"
	keyProfile      = "cfp_perfil"
)

// Profile is the user identity block carried in export bundles.
type Profile struct {
	Name      string `json:"nome"`
	Photo     string `json:"foto"`
	CreatedAt string `json:"dataCriacao"`
}

// LedgerService owns transactions, categories, the trash and the
// budget singleton. Engines receive snapshots, never live slices.
type LedgerService struct {
	mu     sync.Mutex
	store  backend.Store
	logger *applog.Logger

	txs     []core.Transaction
	cats    []core.Category
	trash   []core.TrashItem
	budget  core.Budget
	profile Profile
}

func NewLedgerService(store backend.Store, logger *applog.Logger) *LedgerService {
	if logger == nil {
		logger = applog.New(0)
	}
	return &LedgerService{
		store:  store,
		logger: logger.WithComponent("ledger"),
		budget: core.Budget{Categories: map[int64]core.Money{}},
	}
}

// Reload replaces the in-memory state with what the store holds. An
// empty category list is seeded with the six defaults and persisted.
func (s *LedgerService) Reload(ctx context.Context) error {
	txs, err := loadJSON[[]core.Transaction](ctx, s.store, keyTransactions)
	if err != nil {
		return err
	}
	cats, err := loadJSON[[]core.Category](ctx, s.store, keyCategories)
	if err != nil {
		return err
	}
	trash, err := loadJSON[[]core.TrashItem](ctx, s.store, keyTrash)
	if err != nil {
		return err
	}
	budget, err := loadJSON[core.Budget](ctx, s.store, keyBudget)
	if err != nil {
		return err
	}
	profile, err := loadJSON[Profile](ctx, s.store, keyProfile)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.txs, s.trash, s.budget, s.profile = txs, trash, budget, profile
	if s.budget.Categories == nil {
		s.budget.Categories = map[int64]core.Money{}
	}

	if len(cats) == 0 {
		cats = core.DefaultCategories()
		if err := saveJSON(ctx, s.store, keyCategories, cats); err != nil {
			return err
		}
		s.logger.InfoContext(ctx, "Seeded default categories", "count", len(cats))
	}
	s.cats = cats

	s.logger.InfoContext(ctx, "Ledger loaded",
		"transactions", len(s.txs), "categories", len(s.cats), "trash", len(s.trash))
	return nil
}

// Transactions returns a copy of the current transaction list.
func (s *LedgerService) Transactions() []core.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Transaction(nil), s.txs...)
}

// Categories returns a copy of the current category list.
func (s *LedgerService) Categories() []core.Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Category(nil), s.cats...)
}

// Trash returns a copy of the trash list.
func (s *LedgerService) Trash() []core.TrashItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.TrashItem(nil), s.trash...)
}

// AllTimeIncome is the total income over the whole ledger, the figure
// the caixinha suggestion math reads.
func (s *LedgerService) AllTimeIncome() core.Money {
	s.mu.Lock()
	defer s.mu.Unlock()
	return core.CalculateTotals(s.txs).Income
}

// AddTransaction validates, assigns the next id and persists.
func (s *LedgerService) AddTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	tx.Description = strings.TrimSpace(tx.Description)
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.categoryExistsLocked(tx.CategoryID) {
		return core.Transaction{}, &core.NotFoundError{Entity: "categoria", ID: tx.CategoryID}
	}

	tx.ID = core.NextID(transactionIDs(s.txs))
	prev := s.txs
	s.txs = append(append([]core.Transaction(nil), s.txs...), tx)

	if err := saveJSON(ctx, s.store, keyTransactions, s.txs); err != nil {
		s.txs = prev
		return core.Transaction{}, err
	}

	s.logger.InfoContext(ctx, "Transaction added",
		"id", tx.ID, "tipo", tx.Kind, "valor", tx.Amount.Float64())
	return tx, nil
}

// TransactionPatch carries the editable fields; nil means unchanged.
type TransactionPatch struct {
	Date        *core.Date
	Description *string
	CategoryID  *int64
	Kind        *core.Kind
	Amount      *core.Money
}

// UpdateTransaction merges the patch into the stored transaction
// (same id) and revalidates the result before persisting.
func (s *LedgerService) UpdateTransaction(ctx context.Context, id int64, patch TransactionPatch) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, tx := range s.txs {
		if tx.ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return core.Transaction{}, &core.NotFoundError{Entity: "transação", ID: id}
	}

	merged := s.txs[idx]
	if patch.Date != nil {
		merged.Date = *patch.Date
	}
	if patch.Description != nil {
		merged.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.CategoryID != nil {
		merged.CategoryID = *patch.CategoryID
	}
	if patch.Kind != nil {
		merged.Kind = *patch.Kind
	}
	if patch.Amount != nil {
		merged.Amount = *patch.Amount
	}
	if err := merged.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if !s.categoryExistsLocked(merged.CategoryID) {
		return core.Transaction{}, &core.NotFoundError{Entity: "categoria", ID: merged.CategoryID}
	}

	prev := s.txs
	next := append([]core.Transaction(nil), s.txs...)
	next[idx] = merged
	s.txs = next

	if err := saveJSON(ctx, s.store, keyTransactions, s.txs); err != nil {
		s.txs = prev
		return core.Transaction{}, err
	}

	s.logger.InfoContext(ctx, "Transaction updated", "id", id)
	return merged, nil
}

// RemoveTransaction soft-deletes: the transaction moves to the trash
// with a deletion timestamp and its original id preserved.
func (s *LedgerService) RemoveTransaction(ctx context.Context, id int64) (core.TrashItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, tx := range s.txs {
		if tx.ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return core.TrashItem{}, &core.NotFoundError{Entity: "transação", ID: id}
	}

	removed := s.txs[idx]
	item := core.TrashItem{
		Transaction: removed,
		DeletedAt:   time.Now(),
		OriginalID:  removed.ID,
	}

	prevTxs, prevTrash := s.txs, s.trash
	s.txs = append(append([]core.Transaction(nil), s.txs[:idx]...), s.txs[idx+1:]...)
	s.trash = append(append([]core.TrashItem(nil), s.trash...), item)

	if err := s.persistTxAndTrash(ctx); err != nil {
		s.txs, s.trash = prevTxs, prevTrash
		return core.TrashItem{}, err
	}

	s.logger.InfoContext(ctx, "Transaction moved to trash", "id", id)
	return item, nil
}

// AddGoalResidueToTrash records the synthetic expense left behind by a
// deleted caixinha: the forfeited saved amount, tagged with the goal's
// id so the deletion stays auditable alongside regular soft-deletes.
func (s *LedgerService) AddGoalResidueToTrash(ctx context.Context, goal core.Caixinha) (core.TrashItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	categoryID := int64(6) // "Outros"
	if goal.CategoryID != nil && *goal.CategoryID != 0 {
		categoryID = *goal.CategoryID
	}

	item := core.TrashItem{
		Transaction: core.Transaction{
			ID:          core.NextID(trashIDs(s.trash)),
			Date:        core.DateOf(time.Now()),
			Description: fmt.Sprintf("[CAIXINHA] %s - Excluída", goal.Name),
			CategoryID:  categoryID,
			Kind:        core.KindExpense,
			Amount:      goal.Saved,
		},
		DeletedAt:      time.Now(),
		OriginalType:   "caixinha",
		OriginalGoalID: goal.ID,
	}

	prev := s.trash
	s.trash = append(append([]core.TrashItem(nil), s.trash...), item)
	if err := saveJSON(ctx, s.store, keyTrash, s.trash); err != nil {
		s.trash = prev
		return core.TrashItem{}, err
	}

	s.logger.InfoContext(ctx, "Goal residue added to trash",
		"caixinha", goal.ID, "valor", goal.Saved.Float64())
	return item, nil
}

// RestoreFromTrash moves a trash item back into the ledger under a
// fresh id; the deletion metadata is dropped.
func (s *LedgerService) RestoreFromTrash(ctx context.Context, id int64) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, item := range s.trash {
		if item.ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return core.Transaction{}, &core.NotFoundError{Entity: "item da lixeira", ID: id}
	}

	restored := s.trash[idx].Transaction
	restored.ID = core.NextID(transactionIDs(s.txs))

	prevTxs, prevTrash := s.txs, s.trash
	s.trash = append(append([]core.TrashItem(nil), s.trash[:idx]...), s.trash[idx+1:]...)
	s.txs = append(append([]core.Transaction(nil), s.txs...), restored)

	if err := s.persistTxAndTrash(ctx); err != nil {
		s.txs, s.trash = prevTxs, prevTrash
		return core.Transaction{}, err
	}

	s.logger.InfoContext(ctx, "Transaction restored from trash",
		"old_id", id, "new_id", restored.ID)
	return restored, nil
}

// PurgeFromTrash removes one item permanently.
func (s *LedgerService) PurgeFromTrash(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, item := range s.trash {
		if item.ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return &core.NotFoundError{Entity: "item da lixeira", ID: id}
	}

	prev := s.trash
	s.trash = append(append([]core.TrashItem(nil), s.trash[:idx]...), s.trash[idx+1:]...)
	if err := saveJSON(ctx, s.store, keyTrash, s.trash); err != nil {
		s.trash = prev
		return err
	}
	return nil
}

// EmptyTrash discards every trash item.
func (s *LedgerService) EmptyTrash(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.trash
	s.trash = nil
	if err := saveJSON(ctx, s.store, keyTrash, []core.TrashItem{}); err != nil {
		s.trash = prev
		return err
	}
	s.logger.InfoContext(ctx, "Trash emptied", "discarded", len(prev))
	return nil
}

// AddCategory creates a category with the next id. Names are unique.
func (s *LedgerService) AddCategory(ctx context.Context, name string) (core.Category, error) {
	cat := core.Category{Name: strings.TrimSpace(name)}
	if err := cat.Validate(); err != nil {
		return core.Category{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.cats {
		if strings.EqualFold(existing.Name, cat.Name) {
			return core.Category{}, core.NewValidationError([]string{"Categoria já existe"})
		}
	}

	cat.ID = core.NextID(categoryIDs(s.cats))
	prev := s.cats
	s.cats = append(append([]core.Category(nil), s.cats...), cat)
	if err := saveJSON(ctx, s.store, keyCategories, s.cats); err != nil {
		s.cats = prev
		return core.Category{}, err
	}

	s.logger.InfoContext(ctx, "Category added", "id", cat.ID, "nome", cat.Name)
	return cat, nil
}

// DeleteCategory removes an unused category. A category referenced by
// any transaction is protected.
func (s *LedgerService) DeleteCategory(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, cat := range s.cats {
		if cat.ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return &core.NotFoundError{Entity: "categoria", ID: id}
	}

	for _, tx := range s.txs {
		if tx.CategoryID == id {
			return core.NewValidationError([]string{"Categoria em uso por transações existentes"})
		}
	}

	prev := s.cats
	s.cats = append(append([]core.Category(nil), s.cats[:idx]...), s.cats[idx+1:]...)
	if err := saveJSON(ctx, s.store, keyCategories, s.cats); err != nil {
		s.cats = prev
		return err
	}

	s.logger.InfoContext(ctx, "Category deleted", "id", id)
	return nil
}

// Budget returns the current budget configuration.
func (s *LedgerService) Budget() core.Budget {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := core.Budget{Total: s.budget.Total, Categories: map[int64]core.Money{}}
	for k, v := range s.budget.Categories {
		out.Categories[k] = v
	}
	return out
}

// SetBudget replaces the budget wholesale.
func (s *LedgerService) SetBudget(ctx context.Context, b core.Budget) error {
	if err := b.Validate(); err != nil {
		return err
	}
	if b.Categories == nil {
		b.Categories = map[int64]core.Money{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.budget
	s.budget = b
	if err := saveJSON(ctx, s.store, keyBudget, b); err != nil {
		s.budget = prev
		return err
	}

	s.logger.InfoContext(ctx, "Budget saved",
		"total", b.Total.Float64(), "categorias", len(b.Categories))
	return nil
}

// BudgetAlerts evaluates the budget thresholds against the current
// snapshot for today's month.
func (s *LedgerService) BudgetAlerts(today time.Time) []core.Alert {
	s.mu.Lock()
	budget, txs, cats := s.budget, s.txs, s.cats
	s.mu.Unlock()
	return core.EvaluateBudget(budget, txs, cats, today)
}

// Profile returns the stored user profile.
func (s *LedgerService) Profile() Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile
}

// SetProfile persists the user profile.
func (s *LedgerService) SetProfile(ctx context.Context, p Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.profile
	s.profile = p
	if err := saveJSON(ctx, s.store, keyProfile, p); err != nil {
		s.profile = prev
		return err
	}
	return nil
}

// ReplaceAll swaps the transaction and category lists in one step,
// used by the import path. Both lists persist or neither does.
func (s *LedgerService) ReplaceAll(ctx context.Context, txs []core.Transaction, cats []core.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prevTxs, prevCats := s.txs, s.cats
	s.txs = append([]core.Transaction(nil), txs...)
	s.cats = append([]core.Category(nil), cats...)

	if err := saveJSON(ctx, s.store, keyTransactions, s.txs); err != nil {
		s.txs, s.cats = prevTxs, prevCats
		return err
	}
	if err := saveJSON(ctx, s.store, keyCategories, s.cats); err != nil {
		s.txs, s.cats = prevTxs, prevCats
		// Best effort to put the transactions document back too.
		_ = saveJSON(ctx, s.store, keyTransactions, prevTxs)
		return err
	}

	s.logger.InfoContext(ctx, "Ledger replaced",
		"transactions", len(s.txs), "categories", len(s.cats))
	return nil
}

// TransactionFilter selects a ledger subset. Zero values mean "all".
type TransactionFilter struct {
	Search     string
	CategoryID int64
	Kind       core.Kind
	// Month accepts "2026-01" or "01/2026".
	Month string
}

// Filter returns matching transactions sorted most-recent-first.
func (s *LedgerService) Filter(f TransactionFilter) ([]core.Transaction, error) {
	var year int
	var month time.Month
	if f.Month != "" {
		y, m, err := parseMonthFilter(f.Month)
		if err != nil {
			return nil, err
		}
		year, month = y, m
	}

	out := s.Transactions()
	filtered := out[:0]
	search := strings.ToLower(strings.TrimSpace(f.Search))
	for _, tx := range out {
		if search != "" && !strings.Contains(strings.ToLower(tx.Description), search) {
			continue
		}
		if f.CategoryID != 0 && tx.CategoryID != f.CategoryID {
			continue
		}
		if f.Kind != "" && tx.Kind != f.Kind {
			continue
		}
		if f.Month != "" && !tx.Date.InMonth(year, month) {
			continue
		}
		filtered = append(filtered, tx)
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[j].Date.Before(filtered[i].Date.Time)
	})
	return filtered, nil
}

// CategorySpend pairs a category name with its all-time expense sum,
// the shape the spending chart consumes.
type CategorySpend struct {
	Category string     `json:"categoria"`
	Amount   core.Money `json:"valor"`
}

// Dashboard is the front-page aggregate bundle.
type Dashboard struct {
	Totals       core.Totals     `json:"totais"`
	Investment   core.Money      `json:"investimentos"`
	MonthSummary core.Totals     `json:"resumoMes"`
	PercentSpent float64         `json:"percentualGastos"`
	Chart        []CategorySpend `json:"gastosPorCategoria"`
}

// BuildDashboard computes all dashboard figures from one snapshot.
func (s *LedgerService) BuildDashboard(today time.Time) Dashboard {
	s.mu.Lock()
	txs := append([]core.Transaction(nil), s.txs...)
	cats := append([]core.Category(nil), s.cats...)
	s.mu.Unlock()

	totals := core.CalculateTotals(txs)

	chart := make([]CategorySpend, 0, len(cats))
	for _, cat := range cats {
		var sum core.Money
		for _, tx := range txs {
			if tx.Kind == core.KindExpense && tx.CategoryID == cat.ID {
				sum = sum.Add(tx.Amount)
			}
		}
		chart = append(chart, CategorySpend{Category: cat.Name, Amount: sum})
	}

	return Dashboard{
		Totals:       totals,
		Investment:   core.CalculateReportTotals(txs).Investment,
		MonthSummary: core.MonthSummary(txs, today),
		PercentSpent: core.PercentSpent(totals),
		Chart:        chart,
	}
}

// MonthlyReport builds the report for an arbitrary month.
func (s *LedgerService) MonthlyReport(year int, month time.Month) core.MonthlyReport {
	return core.BuildMonthlyReport(s.Transactions(), year, month)
}

func (s *LedgerService) categoryExistsLocked(id int64) bool {
	for _, cat := range s.cats {
		if cat.ID == id {
			return true
		}
	}
	return false
}

func (s *LedgerService) persistTxAndTrash(ctx context.Context) error {
	if err := saveJSON(ctx, s.store, keyTransactions, s.txs); err != nil {
		return err
	}
	return saveJSON(ctx, s.store, keyTrash, s.trash)
}

func parseMonthFilter(v string) (int, time.Month, error) {
	var yearStr, monthStr string
	switch {
	case strings.Contains(v, "/"):
		parts := strings.SplitN(v, "/", 2)
		monthStr, yearStr = parts[0], parts[1]
	case strings.Contains(v, "-"):
		parts := strings.SplitN(v, "-", 2)
		yearStr, monthStr = parts[0], parts[1]
	default:
		return 0, 0, core.NewValidationError([]string{"Período inválido: use AAAA-MM ou MM/AAAA"})
	}
	year, err1 := strconv.Atoi(yearStr)
	month, err2 := strconv.Atoi(monthStr)
	if err1 != nil || err2 != nil || month < 1 || month > 12 {
		return 0, 0, core.NewValidationError([]string{"Período inválido: use AAAA-MM ou MM/AAAA"})
	}
	return year, time.Month(month), nil
}

func transactionIDs(txs []core.Transaction) []int64 {
	ids := make([]int64, len(txs))
	for i, tx := range txs {
		ids[i] = tx.ID
	}
	return ids
}

func categoryIDs(cats []core.Category) []int64 {
	ids := make([]int64, len(cats))
	for i, cat := range cats {
		ids[i] = cat.ID
	}
	return ids
}

func trashIDs(items []core.TrashItem) []int64 {
	ids := make([]int64, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}
	return ids
}

func loadJSON[T any](ctx context.Context, store backend.Store, key string) (T, error) {
	var out T
	raw, ok, err := store.Load(ctx, key)
	if err != nil {
		return out, fmt.Errorf("carregar %s: %w", key, err)
	}
	if !ok || len(raw) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("decodificar %s: %w", key, err)
	}
	return out, nil
}

func saveJSON(ctx context.Context, store backend.Store, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("codificar %s: %w", key, err)
	}
	if err := store.Save(ctx, key, raw); err != nil {
		return fmt.Errorf("persistir %s: %w", key, err)
	}
	return nil
}
