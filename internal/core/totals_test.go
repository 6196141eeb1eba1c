package core

import (
	"testing"
	"time"
)

func tx(id int64, date Date, kind Kind, cents int64) Transaction {
	return Transaction{
		ID:          id,
		Date:        date,
		Description: "t",
		CategoryID:  1,
		Kind:        kind,
		Amount:      Money{Cents: cents},
	}
}

func TestCalculateTotals(t *testing.T) {
	d := NewDate(2026, time.March, 10)
	txs := []Transaction{
		tx(1, d, KindIncome, 50000),
		tx(2, d, KindExpense, 10000),
		tx(3, d, KindInvestment, 5000), // ignored here
	}

	got := CalculateTotals(txs)
	if got.Income.Cents != 50000 {
		t.Errorf("Income = %d, want 50000", got.Income.Cents)
	}
	if got.Expense.Cents != 10000 {
		t.Errorf("Expense = %d, want 10000", got.Expense.Cents)
	}
	if got.Balance.Cents != 40000 {
		t.Errorf("Balance = %d, want 40000", got.Balance.Cents)
	}

	// Balance identity must hold for the empty slice too.
	empty := CalculateTotals(nil)
	if empty.Income.Cents != 0 || empty.Expense.Cents != 0 || empty.Balance.Cents != 0 {
		t.Errorf("empty totals = %+v, want zeros", empty)
	}
}

func TestMonthSummary(t *testing.T) {
	today := time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC)
	txs := []Transaction{
		tx(1, NewDate(2026, time.March, 1), KindIncome, 30000),
		tx(2, NewDate(2026, time.March, 31), KindExpense, 5000),
		tx(3, NewDate(2026, time.February, 28), KindExpense, 99999), // other month
		tx(4, NewDate(2025, time.March, 10), KindIncome, 99999),     // other year
	}

	got := MonthSummary(txs, today)
	if got.Income.Cents != 30000 {
		t.Errorf("Income = %d, want 30000", got.Income.Cents)
	}
	if got.Expense.Cents != 5000 {
		t.Errorf("Expense = %d, want 5000", got.Expense.Cents)
	}
}

func TestCategoryMonthExpense(t *testing.T) {
	today := time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC)
	txs := []Transaction{
		tx(1, NewDate(2026, time.March, 2), KindExpense, 1000),
		tx(2, NewDate(2026, time.March, 3), KindExpense, 2000),
		tx(3, NewDate(2026, time.March, 4), KindIncome, 7000),
	}
	txs[1].CategoryID = 2

	if got := CategoryMonthExpense(txs, 1, today); got.Cents != 1000 {
		t.Errorf("category 1 = %d, want 1000", got.Cents)
	}
	if got := CategoryMonthExpense(txs, 2, today); got.Cents != 2000 {
		t.Errorf("category 2 = %d, want 2000", got.Cents)
	}
}

func TestPercentSpent(t *testing.T) {
	if got := PercentSpent(Totals{Income: Money{Cents: 0}, Expense: Money{Cents: 5000}}); got != 0 {
		t.Errorf("zero income percent = %v, want 0", got)
	}
	got := PercentSpent(Totals{Income: Money{Cents: 100000}, Expense: Money{Cents: 25000}})
	if got != 25 {
		t.Errorf("percent = %v, want 25", got)
	}
}
