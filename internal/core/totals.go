package core

import (
	"math"
	"time"
)

// Totals is the entries/exits/net aggregate over a transaction slice.
// Investment-kind entries are deliberately not counted here; they only
// participate in the report aggregation (see report.go).
type Totals struct {
	Income  Money `json:"entradas"`
	Expense Money `json:"saidas"`
	Balance Money `json:"saldo"`
}

// CalculateTotals sums amounts by kind. Defined for the empty slice.
func CalculateTotals(txs []Transaction) Totals {
	var t Totals
	for _, tx := range txs {
		switch tx.Kind {
		case KindIncome:
			t.Income = t.Income.Add(tx.Amount)
		case KindExpense:
			t.Expense = t.Expense.Add(tx.Amount)
		}
	}
	t.Balance = t.Income.Sub(t.Expense)
	return t
}

// MonthSummary restricts the totals to transactions whose date falls
// in today's calendar month and year.
func MonthSummary(txs []Transaction, today time.Time) Totals {
	year, month := today.Year(), today.Month()
	var slice []Transaction
	for _, tx := range txs {
		if tx.Date.InMonth(year, month) {
			slice = append(slice, tx)
		}
	}
	return CalculateTotals(slice)
}

// CategoryMonthExpense sums expense-kind amounts for one category in
// today's calendar month.
func CategoryMonthExpense(txs []Transaction, categoryID int64, today time.Time) Money {
	year, month := today.Year(), today.Month()
	var sum Money
	for _, tx := range txs {
		if tx.Kind != KindExpense || tx.CategoryID != categoryID {
			continue
		}
		if tx.Date.InMonth(year, month) {
			sum = sum.Add(tx.Amount)
		}
	}
	return sum
}

// PercentSpent returns expense/income as a percentage, 0 when there is
// no income (never a division-by-zero panic).
func PercentSpent(t Totals) float64 {
	if t.Income.Cents <= 0 {
		return 0
	}
	return float64(t.Expense.Cents) / float64(t.Income.Cents) * 100
}

// round2 rounds to two decimal places, the precision every derived
// percentage and per-period figure is stored at.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
