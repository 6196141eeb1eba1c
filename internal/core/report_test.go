package core

import (
	"testing"
	"time"
)

func TestCalculateReportTotals(t *testing.T) {
	d := NewDate(2026, time.March, 10)
	txs := []Transaction{
		tx(1, d, KindIncome, 50000),
		tx(2, d, KindExpense, 10000),
		tx(3, d, KindInvestment, 5000),
	}

	got := CalculateReportTotals(txs)
	if got.Income.Cents != 50000 {
		t.Errorf("Income = %d, want 50000", got.Income.Cents)
	}
	// Investments count as their own bucket AND as outflow.
	if got.Expense.Cents != 15000 {
		t.Errorf("Expense = %d, want 15000", got.Expense.Cents)
	}
	if got.Investment.Cents != 5000 {
		t.Errorf("Investment = %d, want 5000", got.Investment.Cents)
	}
	if got.Balance.Cents != 35000 {
		t.Errorf("Balance = %d, want 35000", got.Balance.Cents)
	}
	if got.Count != 3 {
		t.Errorf("Count = %d, want 3", got.Count)
	}
}

func TestSelectMonth(t *testing.T) {
	txs := []Transaction{
		tx(1, NewDate(2026, time.March, 20), KindExpense, 100),
		tx(2, NewDate(2026, time.March, 5), KindIncome, 200),
		tx(3, NewDate(2026, time.February, 10), KindExpense, 300),
		tx(4, NewDate(2026, time.March, 5), KindExpense, 400),
	}

	got := SelectMonth(txs, 2026, time.March)
	if len(got) != 3 {
		t.Fatalf("selected %d transactions, want 3", len(got))
	}
	// Ascending by date, stable for equal dates.
	if got[0].ID != 2 || got[1].ID != 4 || got[2].ID != 1 {
		t.Errorf("order = %d, %d, %d, want 2, 4, 1", got[0].ID, got[1].ID, got[2].ID)
	}
}

func TestBuildMonthlyReport(t *testing.T) {
	txs := []Transaction{
		tx(1, NewDate(2026, time.March, 1), KindIncome, 50000),
		tx(2, NewDate(2026, time.March, 2), KindExpense, 10000),
		tx(3, NewDate(2026, time.March, 3), KindInvestment, 5000),
		tx(4, NewDate(2026, time.April, 1), KindExpense, 77777),
	}

	report := BuildMonthlyReport(txs, 2026, time.March)
	if report.Year != 2026 || report.Month != time.March {
		t.Errorf("period = %d-%d, want 2026-3", report.Year, report.Month)
	}
	if len(report.Transactions) != 3 {
		t.Errorf("transactions = %d, want 3", len(report.Transactions))
	}
	if report.Totals.Balance.Cents != 35000 {
		t.Errorf("Balance = %d, want 35000", report.Totals.Balance.Cents)
	}

	empty := BuildMonthlyReport(txs, 2026, time.December)
	if empty.Totals.Count != 0 || len(empty.Transactions) != 0 {
		t.Errorf("empty month report = %+v, want no transactions", empty)
	}
}
