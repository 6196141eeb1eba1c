package core

import (
	"fmt"
	"time"
)

type AlertScope string

const (
	ScopeOverall  AlertScope = "overall"
	ScopeCategory AlertScope = "category"
)

type AlertSeverity string

const (
	SeverityNotice  AlertSeverity = "notice"
	SeverityWarning AlertSeverity = "warning"
	SeverityDanger  AlertSeverity = "danger"
)

// Alert is one budget-threshold event. Alerts are recomputed from
// scratch on every evaluation; there is no seen/suppressed state.
type Alert struct {
	Scope      AlertScope    `json:"escopo"`
	CategoryID int64         `json:"categoria,omitempty"`
	Percent    float64       `json:"percentual"`
	Severity   AlertSeverity `json:"severidade"`
	Message    string        `json:"mensagem"`
}

// EvaluateBudget compares current-month spending against the budget
// configuration and returns the ordered alert list: the overall alert
// first, then one per category in the given category order.
//
// Overall tiers: danger at >=100%, warning at >=80%, notice at >=50%.
// Category tiers skip the notice level. A category is only considered
// when it has a nonzero configured budget.
func EvaluateBudget(b Budget, txs []Transaction, cats []Category, today time.Time) []Alert {
	var alerts []Alert

	monthSpent := MonthSummary(txs, today).Expense
	if b.Total.Cents > 0 {
		percent := float64(monthSpent.Cents) / float64(b.Total.Cents) * 100
		switch {
		case percent >= 100:
			alerts = append(alerts, Alert{
				Scope:    ScopeOverall,
				Percent:  percent,
				Severity: SeverityDanger,
				Message: fmt.Sprintf("🚨 ALERTA: Você ultrapassou seu orçamento mensal! Gastou %s de %s",
					FormatBRL(monthSpent), FormatBRL(b.Total)),
			})
		case percent >= 80:
			alerts = append(alerts, Alert{
				Scope:    ScopeOverall,
				Percent:  percent,
				Severity: SeverityWarning,
				Message:  fmt.Sprintf("⚠️ ATENÇÃO: Você já gastou %.1f%% do seu orçamento mensal!", percent),
			})
		case percent >= 50:
			alerts = append(alerts, Alert{
				Scope:    ScopeOverall,
				Percent:  percent,
				Severity: SeverityNotice,
				Message:  fmt.Sprintf("Você já usou %.1f%% do seu orçamento mensal.", percent),
			})
		}
	}

	for _, cat := range cats {
		limit, ok := b.Categories[cat.ID]
		if !ok || limit.Cents <= 0 {
			continue
		}
		spent := CategoryMonthExpense(txs, cat.ID, today)
		percent := float64(spent.Cents) / float64(limit.Cents) * 100
		switch {
		case percent >= 100:
			alerts = append(alerts, Alert{
				Scope:      ScopeCategory,
				CategoryID: cat.ID,
				Percent:    percent,
				Severity:   SeverityDanger,
				Message:    fmt.Sprintf("🚨 ALERTA: Você ultrapassou o orçamento de %q!", cat.Name),
			})
		case percent >= 80:
			alerts = append(alerts, Alert{
				Scope:      ScopeCategory,
				CategoryID: cat.ID,
				Percent:    percent,
				Severity:   SeverityWarning,
				Message:    fmt.Sprintf("⚠️ ATENÇÃO: Você já gastou %.1f%% do orçamento de %q!", percent, cat.Name),
			})
		}
	}

	return alerts
}
