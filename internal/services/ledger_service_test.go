package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kevenbotelho/controle-pessoal/internal/core"
	"github.com/kevenbotelho/controle-pessoal/internal/storage/memory"
)

// failStore wraps the memory store and fails saves on demand, to
// exercise the persist-or-revert paths.
type failStore struct {
	*memory.Store
	failSaves bool
}

func (f *failStore) Save(ctx context.Context, key string, value []byte) error {
	if f.failSaves {
		return errors.New("disk full")
	}
	return f.Store.Save(ctx, key, value)
}

func newTestLedger(t *testing.T) (*LedgerService, *failStore) {
	t.Helper()
	store := &failStore{Store: memory.New()}
	svc := NewLedgerService(store, nil)
	if err := svc.Reload(context.Background()); err != nil {
		t.Fatalf("Reload error = %v", err)
	}
	return svc, store
}

func validTx() core.Transaction {
	return core.Transaction{
		Date:        core.NewDate(2026, time.March, 10),
		Description: "Mercado",
		CategoryID:  1,
		Kind:        core.KindExpense,
		Amount:      core.Money{Cents: 15000},
	}
}

func TestReload_SeedsDefaultCategories(t *testing.T) {
	svc, _ := newTestLedger(t)
	cats := svc.Categories()
	if len(cats) != 6 {
		t.Fatalf("categories = %d, want 6 defaults", len(cats))
	}

	// A second reload must not duplicate the seeds.
	if err := svc.Reload(context.Background()); err != nil {
		t.Fatalf("second Reload error = %v", err)
	}
	if got := len(svc.Categories()); got != 6 {
		t.Errorf("categories after second reload = %d, want 6", got)
	}
}

func TestAddTransaction(t *testing.T) {
	svc, _ := newTestLedger(t)
	ctx := context.Background()

	first, err := svc.AddTransaction(ctx, validTx())
	if err != nil {
		t.Fatalf("AddTransaction error = %v", err)
	}
	if first.ID != 1 {
		t.Errorf("first id = %d, want 1", first.ID)
	}

	second, err := svc.AddTransaction(ctx, validTx())
	if err != nil {
		t.Fatalf("AddTransaction error = %v", err)
	}
	if second.ID != 2 {
		t.Errorf("second id = %d, want 2", second.ID)
	}

	bad := validTx()
	bad.Description = "  "
	if _, err := svc.AddTransaction(ctx, bad); !core.IsValidation(err) {
		t.Errorf("blank description error = %v, want validation error", err)
	}

	orphan := validTx()
	orphan.CategoryID = 99
	if _, err := svc.AddTransaction(ctx, orphan); !core.IsNotFound(err) {
		t.Errorf("unknown category error = %v, want not found", err)
	}
}

func TestAddTransaction_RevertsOnStoreFailure(t *testing.T) {
	svc, store := newTestLedger(t)
	ctx := context.Background()

	store.failSaves = true
	if _, err := svc.AddTransaction(ctx, validTx()); err == nil {
		t.Fatal("expected store failure to surface")
	}
	if got := len(svc.Transactions()); got != 0 {
		t.Errorf("transactions after failed save = %d, want 0", got)
	}

	store.failSaves = false
	if _, err := svc.AddTransaction(ctx, validTx()); err != nil {
		t.Fatalf("AddTransaction after recovery error = %v", err)
	}
}

func TestUpdateTransaction(t *testing.T) {
	svc, _ := newTestLedger(t)
	ctx := context.Background()

	created, _ := svc.AddTransaction(ctx, validTx())

	desc := "Feira"
	amount := core.Money{Cents: 9900}
	updated, err := svc.UpdateTransaction(ctx, created.ID, TransactionPatch{
		Description: &desc,
		Amount:      &amount,
	})
	if err != nil {
		t.Fatalf("UpdateTransaction error = %v", err)
	}
	if updated.Description != "Feira" || updated.Amount.Cents != 9900 {
		t.Errorf("updated = %+v", updated)
	}
	// Untouched fields survive the patch.
	if updated.CategoryID != created.CategoryID || updated.Kind != created.Kind {
		t.Errorf("patch clobbered unrelated fields: %+v", updated)
	}

	if _, err := svc.UpdateTransaction(ctx, 999, TransactionPatch{}); !core.IsNotFound(err) {
		t.Errorf("missing id error = %v, want not found", err)
	}

	badKind := core.KindInvestment
	if _, err := svc.UpdateTransaction(ctx, created.ID, TransactionPatch{Kind: &badKind}); !core.IsValidation(err) {
		t.Errorf("invalid kind error = %v, want validation error", err)
	}
}

func TestRemoveAndRestoreTransaction(t *testing.T) {
	svc, _ := newTestLedger(t)
	ctx := context.Background()

	created, _ := svc.AddTransaction(ctx, validTx())
	svc.AddTransaction(ctx, validTx())

	item, err := svc.RemoveTransaction(ctx, created.ID)
	if err != nil {
		t.Fatalf("RemoveTransaction error = %v", err)
	}
	if item.OriginalID != created.ID {
		t.Errorf("OriginalID = %d, want %d", item.OriginalID, created.ID)
	}
	if item.DeletedAt.IsZero() {
		t.Error("DeletedAt should be set")
	}
	if got := len(svc.Transactions()); got != 1 {
		t.Errorf("transactions after removal = %d, want 1", got)
	}

	restored, err := svc.RestoreFromTrash(ctx, item.ID)
	if err != nil {
		t.Fatalf("RestoreFromTrash error = %v", err)
	}
	// Restoration assigns a fresh id, never reuses the original.
	if restored.ID == created.ID {
		t.Errorf("restored id %d should differ from original", restored.ID)
	}
	if restored.Description != created.Description || restored.Amount != created.Amount {
		t.Errorf("restored = %+v, want fields of %+v", restored, created)
	}
	if got := len(svc.Trash()); got != 0 {
		t.Errorf("trash after restore = %d, want 0", got)
	}
}

func TestPurgeAndEmptyTrash(t *testing.T) {
	svc, _ := newTestLedger(t)
	ctx := context.Background()

	a, _ := svc.AddTransaction(ctx, validTx())
	b, _ := svc.AddTransaction(ctx, validTx())
	itemA, _ := svc.RemoveTransaction(ctx, a.ID)
	svc.RemoveTransaction(ctx, b.ID)

	if err := svc.PurgeFromTrash(ctx, itemA.ID); err != nil {
		t.Fatalf("PurgeFromTrash error = %v", err)
	}
	if got := len(svc.Trash()); got != 1 {
		t.Errorf("trash after purge = %d, want 1", got)
	}
	if err := svc.PurgeFromTrash(ctx, itemA.ID); !core.IsNotFound(err) {
		t.Errorf("second purge error = %v, want not found", err)
	}

	if err := svc.EmptyTrash(ctx); err != nil {
		t.Fatalf("EmptyTrash error = %v", err)
	}
	if got := len(svc.Trash()); got != 0 {
		t.Errorf("trash after empty = %d, want 0", got)
	}
}

func TestCategories(t *testing.T) {
	svc, _ := newTestLedger(t)
	ctx := context.Background()

	cat, err := svc.AddCategory(ctx, "Educação")
	if err != nil {
		t.Fatalf("AddCategory error = %v", err)
	}
	if cat.ID != 7 {
		t.Errorf("new category id = %d, want 7", cat.ID)
	}

	if _, err := svc.AddCategory(ctx, "educação"); !core.IsValidation(err) {
		t.Errorf("duplicate name error = %v, want validation error", err)
	}

	// A category referenced by a transaction cannot be deleted.
	tx := validTx()
	tx.CategoryID = cat.ID
	svc.AddTransaction(ctx, tx)
	if err := svc.DeleteCategory(ctx, cat.ID); !core.IsValidation(err) {
		t.Errorf("in-use delete error = %v, want validation error", err)
	}

	unused, _ := svc.AddCategory(ctx, "Viagens")
	if err := svc.DeleteCategory(ctx, unused.ID); err != nil {
		t.Fatalf("DeleteCategory error = %v", err)
	}
	if err := svc.DeleteCategory(ctx, 999); !core.IsNotFound(err) {
		t.Errorf("missing category error = %v, want not found", err)
	}
}

func TestBudgetRoundTrip(t *testing.T) {
	svc, _ := newTestLedger(t)
	ctx := context.Background()

	budget := core.Budget{
		Total:      core.Money{Cents: 500000},
		Categories: map[int64]core.Money{1: {Cents: 100000}},
	}
	if err := svc.SetBudget(ctx, budget); err != nil {
		t.Fatalf("SetBudget error = %v", err)
	}

	got := svc.Budget()
	if got.Total.Cents != 500000 || got.Categories[1].Cents != 100000 {
		t.Errorf("Budget = %+v", got)
	}

	negative := core.Budget{Total: core.Money{Cents: -1}}
	if err := svc.SetBudget(ctx, negative); !core.IsValidation(err) {
		t.Errorf("negative budget error = %v, want validation error", err)
	}
}

func TestFilter(t *testing.T) {
	svc, _ := newTestLedger(t)
	ctx := context.Background()

	mk := func(day int, month time.Month, desc string, kind core.Kind, cat int64) {
		tx := core.Transaction{
			Date:        core.NewDate(2026, month, day),
			Description: desc,
			CategoryID:  cat,
			Kind:        kind,
			Amount:      core.Money{Cents: 1000},
		}
		if _, err := svc.AddTransaction(ctx, tx); err != nil {
			t.Fatalf("AddTransaction(%s) error = %v", desc, err)
		}
	}
	mk(5, time.March, "Mercado do bairro", core.KindExpense, 1)
	mk(10, time.March, "Salário", core.KindIncome, 6)
	mk(2, time.April, "Mercado central", core.KindExpense, 1)

	t.Run("search is case-insensitive", func(t *testing.T) {
		got, err := svc.Filter(TransactionFilter{Search: "mercado"})
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 2 {
			t.Errorf("matched %d, want 2", len(got))
		}
	})

	t.Run("month accepts dashed format", func(t *testing.T) {
		got, err := svc.Filter(TransactionFilter{Month: "2026-03"})
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 2 {
			t.Errorf("matched %d, want 2", len(got))
		}
	})

	t.Run("month accepts slashed format", func(t *testing.T) {
		got, err := svc.Filter(TransactionFilter{Month: "03/2026"})
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 2 {
			t.Errorf("matched %d, want 2", len(got))
		}
	})

	t.Run("invalid month rejected", func(t *testing.T) {
		if _, err := svc.Filter(TransactionFilter{Month: "marco"}); !core.IsValidation(err) {
			t.Errorf("error = %v, want validation error", err)
		}
	})

	t.Run("kind and category combine", func(t *testing.T) {
		got, err := svc.Filter(TransactionFilter{Kind: core.KindExpense, CategoryID: 1})
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 2 {
			t.Errorf("matched %d, want 2", len(got))
		}
	})

	t.Run("sorted most recent first", func(t *testing.T) {
		got, err := svc.Filter(TransactionFilter{})
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 3 {
			t.Fatalf("matched %d, want 3", len(got))
		}
		if got[0].Date.Month() != time.April {
			t.Errorf("first result month = %v, want April", got[0].Date.Month())
		}
	})
}

func TestBuildDashboard(t *testing.T) {
	svc, _ := newTestLedger(t)
	ctx := context.Background()
	today := time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC)

	add := func(day int, month time.Month, kind core.Kind, cents int64, cat int64) {
		svc.AddTransaction(ctx, core.Transaction{
			Date:        core.NewDate(2026, month, day),
			Description: "t",
			CategoryID:  cat,
			Kind:        kind,
			Amount:      core.Money{Cents: cents},
		})
	}
	add(1, time.March, core.KindIncome, 100000, 6)
	add(2, time.March, core.KindExpense, 25000, 1)
	add(3, time.February, core.KindExpense, 10000, 2)

	dash := svc.BuildDashboard(today)
	if dash.Totals.Income.Cents != 100000 {
		t.Errorf("Income = %d, want 100000", dash.Totals.Income.Cents)
	}
	if dash.Totals.Expense.Cents != 35000 {
		t.Errorf("Expense = %d, want 35000", dash.Totals.Expense.Cents)
	}
	if dash.MonthSummary.Expense.Cents != 25000 {
		t.Errorf("MonthSummary.Expense = %d, want 25000", dash.MonthSummary.Expense.Cents)
	}
	if dash.PercentSpent != 35 {
		t.Errorf("PercentSpent = %v, want 35", dash.PercentSpent)
	}
	// Every category appears in the chart, spent or not.
	if len(dash.Chart) != 6 {
		t.Fatalf("chart rows = %d, want 6", len(dash.Chart))
	}
	if dash.Chart[0].Amount.Cents != 25000 {
		t.Errorf("Alimentação chart = %d, want 25000", dash.Chart[0].Amount.Cents)
	}
	if dash.Chart[3].Amount.Cents != 0 {
		t.Errorf("Lazer chart = %d, want 0", dash.Chart[3].Amount.Cents)
	}
}

func TestBudgetAlertsFromService(t *testing.T) {
	svc, _ := newTestLedger(t)
	ctx := context.Background()
	today := time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC)

	svc.SetBudget(ctx, core.Budget{Total: core.Money{Cents: 100000}})
	tx := validTx()
	tx.Amount = core.Money{Cents: 85000}
	svc.AddTransaction(ctx, tx)

	alerts := svc.BudgetAlerts(today)
	if len(alerts) != 1 || alerts[0].Severity != core.SeverityWarning {
		t.Errorf("alerts = %v, want one warning", alerts)
	}
}
