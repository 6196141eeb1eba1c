package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kevenbotelho/controle-pessoal/internal/backend"
	"github.com/kevenbotelho/controle-pessoal/internal/core"
	applog "github.com/kevenbotelho/controle-pessoal/internal/log"
)

// CaixinhaService manages savings goals. It leans on the ledger for
// the income figure the suggestion math reads and for the trash
// residue a deletion leaves behind.
type CaixinhaService struct {
	store  backend.Store
	logger *applog.Logger
	ledger *LedgerService

	mu    sync.Mutex
	goals []core.Caixinha
}

func NewCaixinhaService(store backend.Store, ledger *LedgerService, logger *applog.Logger) *CaixinhaService {
	if logger == nil {
		logger = applog.New(0)
	}
	return &CaixinhaService{
		store:  store,
		logger: logger.WithComponent("caixinhas"),
		ledger: ledger,
	}
}

// Reload replaces the in-memory goal list with the stored one.
func (s *CaixinhaService) Reload(ctx context.Context) error {
	goals, err := loadJSON[[]core.Caixinha](ctx, s.store, keyCaixinhas)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.goals = goals
	s.mu.Unlock()
	s.logger.InfoContext(ctx, "Caixinhas loaded", "count", len(goals))
	return nil
}

// List returns a copy of all goals.
func (s *CaixinhaService) List() []core.Caixinha {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Caixinha(nil), s.goals...)
}

// ByStatus returns goals in the given state.
func (s *CaixinhaService) ByStatus(status core.GoalStatus) []core.Caixinha {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Caixinha
	for _, g := range s.goals {
		if g.Status == status {
			out = append(out, g)
		}
	}
	return out
}

// Get returns one goal by id.
func (s *CaixinhaService) Get(id string) (core.Caixinha, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, g := range s.goals {
		if g.ID == id {
			return g, nil
		}
	}
	return core.Caixinha{}, &core.NotFoundError{Entity: "caixinha", ID: id}
}

// Create validates the definition, computes the derived plan fields
// and persists the new goal. A plan demanding more than the whole
// monthly income is rejected outright.
func (s *CaixinhaService) Create(ctx context.Context, goal core.Caixinha) (core.Caixinha, error) {
	if err := goal.Validate(); err != nil {
		return core.Caixinha{}, err
	}

	if goal.StartDate.IsZero() {
		goal.StartDate = core.DateOf(time.Now())
	}
	income := s.ledger.AllTimeIncome()
	periods := core.PeriodCount(goal.DeadlineMode, goal.Months, goal.StartDate, goal.EndDate)
	goal.PerPeriod = core.AmountPerPeriod(goal.Target, periods)
	goal.SuggestedPercent = core.PercentOfIncome(goal.PerPeriod, income)
	if goal.SuggestedPercent > 100 {
		return core.Caixinha{}, core.NewValidationError([]string{
			"O valor por período excede 100% da sua renda mensal. Ajuste o valor alvo ou prazo.",
		})
	}
	if goal.DeadlineMode == core.DeadlineByMonths {
		goal.Months = periods
	}

	now := time.Now()
	goal.ID = uuid.NewString()
	goal.Status = core.StatusActive
	goal.Saved = core.Money{}
	goal.History = nil
	goal.CreatedAt = now
	goal.UpdatedAt = now
	goal.CompletedAt = nil

	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.goals
	s.goals = append(append([]core.Caixinha(nil), s.goals...), goal)
	if err := saveJSON(ctx, s.store, keyCaixinhas, s.goals); err != nil {
		s.goals = prev
		return core.Caixinha{}, err
	}

	s.logger.InfoContext(ctx, "Caixinha created",
		"id", goal.ID, "nome", goal.Name, "alvo", goal.Target.Float64())
	return goal, nil
}

// CaixinhaPatch carries the editable plan fields; nil means unchanged.
// Saved amount and history only change through Contribute.
type CaixinhaPatch struct {
	Name         *string
	Target       *core.Money
	DeadlineMode *core.DeadlineMode
	Months       *int
	EndDate      *core.Date
	Frequency    *core.Frequency
	CategoryID   *int64
	Note         *string
}

// Update merges the patch, revalidates and recomputes the derived
// plan figures.
func (s *CaixinhaService) Update(ctx context.Context, id string, patch CaixinhaPatch) (core.Caixinha, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexLocked(id)
	if idx == -1 {
		return core.Caixinha{}, &core.NotFoundError{Entity: "caixinha", ID: id}
	}

	merged := s.goals[idx]
	if patch.Name != nil {
		merged.Name = *patch.Name
	}
	if patch.Target != nil {
		merged.Target = *patch.Target
	}
	if patch.DeadlineMode != nil {
		merged.DeadlineMode = *patch.DeadlineMode
	}
	if patch.Months != nil {
		merged.Months = *patch.Months
	}
	if patch.EndDate != nil {
		end := *patch.EndDate
		merged.EndDate = &end
	}
	if patch.Frequency != nil {
		merged.Frequency = *patch.Frequency
	}
	if patch.CategoryID != nil {
		cid := *patch.CategoryID
		merged.CategoryID = &cid
	}
	if patch.Note != nil {
		merged.Note = *patch.Note
	}
	if err := merged.Validate(); err != nil {
		return core.Caixinha{}, err
	}

	periods := core.PeriodCount(merged.DeadlineMode, merged.Months, merged.StartDate, merged.EndDate)
	merged.PerPeriod = core.AmountPerPeriod(merged.Target, periods)
	merged.SuggestedPercent = core.PercentOfIncome(merged.PerPeriod, s.ledger.AllTimeIncome())
	merged.UpdatedAt = time.Now()

	prev := s.goals
	next := append([]core.Caixinha(nil), s.goals...)
	next[idx] = merged
	s.goals = next
	if err := saveJSON(ctx, s.store, keyCaixinhas, s.goals); err != nil {
		s.goals = prev
		return core.Caixinha{}, err
	}

	s.logger.InfoContext(ctx, "Caixinha updated", "id", id)
	return merged, nil
}

// Contribute records a deposit. Paused and concluded goals reject
// contributions; reaching the target flips the goal to concluded
// exactly once.
func (s *CaixinhaService) Contribute(ctx context.Context, id string, amount core.Money, source core.ContributionSource) (core.Caixinha, error) {
	if amount.Cents <= 0 {
		return core.Caixinha{}, core.NewValidationError([]string{"Valor da contribuição deve ser positivo"})
	}
	if source == "" {
		source = core.SourceManual
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexLocked(id)
	if idx == -1 {
		return core.Caixinha{}, &core.NotFoundError{Entity: "caixinha", ID: id}
	}

	goal := s.goals[idx]
	switch goal.Status {
	case core.StatusPaused:
		return core.Caixinha{}, core.NewValidationError([]string{"Caixinha pausada não aceita contribuições"})
	case core.StatusCompleted:
		return core.Caixinha{}, core.NewValidationError([]string{"Caixinha concluída não aceita contribuições"})
	}

	now := time.Now()
	goal.Saved = goal.Saved.Add(amount)
	goal.History = append(append([]core.Contribution(nil), goal.History...), core.Contribution{
		Date:       core.DateOf(now),
		Amount:     amount,
		Source:     source,
		RecordedAt: now,
	})
	goal.UpdatedAt = now
	if goal.Saved.Cents >= goal.Target.Cents && goal.Status != core.StatusCompleted {
		goal.Status = core.StatusCompleted
		completed := now
		goal.CompletedAt = &completed
	}

	prev := s.goals
	next := append([]core.Caixinha(nil), s.goals...)
	next[idx] = goal
	s.goals = next
	if err := saveJSON(ctx, s.store, keyCaixinhas, s.goals); err != nil {
		s.goals = prev
		return core.Caixinha{}, err
	}

	s.logger.InfoContext(ctx, "Contribution recorded",
		"id", id, "valor", amount.Float64(), "status", goal.Status)
	return goal, nil
}

// ToggleStatus flips ativa↔pausada. Concluded goals are terminal.
func (s *CaixinhaService) ToggleStatus(ctx context.Context, id string) (core.Caixinha, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexLocked(id)
	if idx == -1 {
		return core.Caixinha{}, &core.NotFoundError{Entity: "caixinha", ID: id}
	}

	goal := s.goals[idx]
	switch goal.Status {
	case core.StatusCompleted:
		return core.Caixinha{}, core.NewValidationError([]string{"Não é possível pausar uma caixinha concluída"})
	case core.StatusActive:
		goal.Status = core.StatusPaused
	default:
		goal.Status = core.StatusActive
	}
	goal.UpdatedAt = time.Now()

	prev := s.goals
	next := append([]core.Caixinha(nil), s.goals...)
	next[idx] = goal
	s.goals = next
	if err := saveJSON(ctx, s.store, keyCaixinhas, s.goals); err != nil {
		s.goals = prev
		return core.Caixinha{}, err
	}

	s.logger.InfoContext(ctx, "Caixinha status toggled", "id", id, "status", goal.Status)
	return goal, nil
}

// Delete removes the goal. Any saved amount is written to the ledger
// trash as a synthetic expense so the money doesn't silently vanish
// from the history.
func (s *CaixinhaService) Delete(ctx context.Context, id string) error {
	s.mu.Lock()

	idx := s.indexLocked(id)
	if idx == -1 {
		s.mu.Unlock()
		return &core.NotFoundError{Entity: "caixinha", ID: id}
	}

	goal := s.goals[idx]
	prev := s.goals
	s.goals = append(append([]core.Caixinha(nil), s.goals[:idx]...), s.goals[idx+1:]...)
	if err := saveJSON(ctx, s.store, keyCaixinhas, s.goals); err != nil {
		s.goals = prev
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()

	if goal.Saved.Cents > 0 {
		if _, err := s.ledger.AddGoalResidueToTrash(ctx, goal); err != nil {
			s.logger.WarnContext(ctx, "Goal deleted but trash residue failed",
				"id", id, "error", err)
		}
	}

	s.logger.InfoContext(ctx, "Caixinha deleted", "id", id, "nome", goal.Name)
	return nil
}

// Suggest runs the contribution calculator for a goal definition that
// may not be persisted yet.
func (s *CaixinhaService) Suggest(goal core.Caixinha) core.Suggestion {
	return core.SuggestContribution(goal, s.ledger.AllTimeIncome())
}

// Notifications scans the current goal list for advisories.
func (s *CaixinhaService) Notifications() []core.Notification {
	return core.ScanNotifications(s.List())
}

// ReplaceAll swaps the goal list wholesale, used by the import path.
func (s *CaixinhaService) ReplaceAll(ctx context.Context, goals []core.Caixinha) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.goals
	s.goals = append([]core.Caixinha(nil), goals...)
	if err := saveJSON(ctx, s.store, keyCaixinhas, s.goals); err != nil {
		s.goals = prev
		return err
	}
	s.logger.InfoContext(ctx, "Caixinhas replaced", "count", len(goals))
	return nil
}

func (s *CaixinhaService) indexLocked(id string) int {
	for i, g := range s.goals {
		if g.ID == id {
			return i
		}
	}
	return -1
}
