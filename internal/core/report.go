package core

import (
	"sort"
	"time"
)

// ReportTotals is the monthly-report aggregate. Unlike Totals,
// investment-kind amounts are summed separately AND added to the
// expense total: an investment is an outflow that is simultaneously
// tracked as its own allocation.
type ReportTotals struct {
	Income     Money `json:"entradas"`
	Expense    Money `json:"saidas"`
	Investment Money `json:"investimentos"`
	Balance    Money `json:"saldo"`
	Count      int   `json:"totalTransacoes"`
}

// MonthlyReport is the structured output handed to the formatting and
// printing collaborators.
type MonthlyReport struct {
	Year         int           `json:"ano"`
	Month        time.Month    `json:"mes"`
	Totals       ReportTotals  `json:"totais"`
	Transactions []Transaction `json:"transacoes"`
}

// SelectMonth returns the transactions dated in the given month,
// sorted ascending by date.
func SelectMonth(txs []Transaction, year int, month time.Month) []Transaction {
	var out []Transaction
	for _, tx := range txs {
		if tx.Date.InMonth(year, month) {
			out = append(out, tx)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date.Time)
	})
	return out
}

// CalculateReportTotals aggregates one month's slice.
func CalculateReportTotals(txs []Transaction) ReportTotals {
	var t ReportTotals
	for _, tx := range txs {
		switch tx.Kind {
		case KindIncome:
			t.Income = t.Income.Add(tx.Amount)
		case KindExpense:
			t.Expense = t.Expense.Add(tx.Amount)
		case KindInvestment:
			t.Investment = t.Investment.Add(tx.Amount)
			t.Expense = t.Expense.Add(tx.Amount)
		}
	}
	t.Balance = t.Income.Sub(t.Expense)
	t.Count = len(txs)
	return t
}

// BuildMonthlyReport filters, aggregates and packages one month.
func BuildMonthlyReport(txs []Transaction, year int, month time.Month) MonthlyReport {
	subset := SelectMonth(txs, year, month)
	return MonthlyReport{
		Year:         year,
		Month:        month,
		Totals:       CalculateReportTotals(subset),
		Transactions: subset,
	}
}
