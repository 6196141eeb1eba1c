package core

import (
	"fmt"
	"strings"
	"time"
)

// DeadlineMode selects how a caixinha's horizon is expressed: a month
// count or an explicit end date.
type DeadlineMode string

const (
	DeadlineByMonths DeadlineMode = "meses"
	DeadlineByDate   DeadlineMode = "dataFinal"
)

func (m DeadlineMode) Valid() bool {
	return m == DeadlineByMonths || m == DeadlineByDate
}

// Frequency is the contribution cadence.
type Frequency string

const (
	FrequencyDaily   Frequency = "diaria"
	FrequencyWeekly  Frequency = "semanal"
	FrequencyMonthly Frequency = "mensal"
)

func (f Frequency) Valid() bool {
	return f == FrequencyDaily || f == FrequencyWeekly || f == FrequencyMonthly
}

// GoalStatus is the caixinha lifecycle state. Completion is terminal:
// a concluded goal never toggles back and accepts no contributions.
type GoalStatus string

const (
	StatusActive    GoalStatus = "ativa"
	StatusPaused    GoalStatus = "pausada"
	StatusCompleted GoalStatus = "concluida"
)

// ContributionSource records how a history entry was made.
type ContributionSource string

const (
	SourceManual    ContributionSource = "manual"
	SourceAutomatic ContributionSource = "automatica"
)

// Contribution is one history entry of a caixinha.
type Contribution struct {
	Date       Date               `json:"data"`
	Amount     Money              `json:"valor"`
	Source     ContributionSource `json:"tipo"`
	RecordedAt time.Time          `json:"dataRegistro"`
}

// Caixinha is a savings goal: a named target with a deadline, a
// contribution cadence and a running progress. Field tags follow the
// persisted record format.
type Caixinha struct {
	ID               string         `json:"id"`
	Name             string         `json:"nome"`
	Target           Money          `json:"valorAlvo"`
	Saved            Money          `json:"valorGuardado"`
	StartDate        Date           `json:"dataInicio"`
	EndDate          *Date          `json:"dataFim"`
	DeadlineMode     DeadlineMode   `json:"prazoTipo"`
	Months           int            `json:"prazoMeses"`
	Frequency        Frequency      `json:"frequencia"`
	PerPeriod        Money          `json:"valorPorPeriodo"`
	SuggestedPercent float64        `json:"percentualSugerido"`
	Status           GoalStatus     `json:"status"`
	History          []Contribution `json:"historico"`
	CategoryID       *int64         `json:"categoria"`
	Note             string         `json:"nota"`
	CreatedAt        time.Time      `json:"dataCriacao"`
	UpdatedAt        time.Time      `json:"dataAtualizacao"`
	CompletedAt      *time.Time     `json:"dataConclusao,omitempty"`
}

// Validate collects every invariant violation as one message list.
func (c Caixinha) Validate() error {
	var problems []string
	if strings.TrimSpace(c.Name) == "" {
		problems = append(problems, "Nome da caixinha é obrigatório")
	}
	if c.Target.Cents <= 0 {
		problems = append(problems, "Valor alvo deve ser maior que zero")
	}
	if !c.DeadlineMode.Valid() {
		problems = append(problems, "Tipo de prazo inválido")
	}
	if c.DeadlineMode == DeadlineByMonths && c.Months < 1 {
		problems = append(problems, "Prazo mínimo de 1 mês")
	}
	if c.DeadlineMode == DeadlineByDate {
		if c.EndDate == nil || c.EndDate.IsZero() || !c.EndDate.After(c.StartDate.Time) {
			problems = append(problems, "Data final deve ser posterior à data de início")
		}
	}
	if !c.Frequency.Valid() {
		problems = append(problems, "Frequência inválida")
	}
	return NewValidationError(problems)
}

// MonthsBetween counts whole months from start to end. A trailing
// partial month (end day-of-month past start day-of-month) rounds up.
// Never less than 1.
func MonthsBetween(start, end Date) int {
	months := (end.Year()-start.Year())*12 + int(end.Month()) - int(start.Month())
	if end.Day() > start.Day() {
		months++
	}
	if months < 1 {
		return 1
	}
	return months
}

// PeriodCount derives how many contribution periods the deadline
// spans. byMonths uses the month count directly; byDate measures the
// start→end distance. Floored at 1 either way.
func PeriodCount(mode DeadlineMode, months int, start Date, end *Date) int {
	if mode == DeadlineByDate && end != nil && !end.IsZero() {
		return MonthsBetween(start, *end)
	}
	if months < 1 {
		return 1
	}
	return months
}

// AmountPerPeriod splits the target over the periods, to the cent.
func AmountPerPeriod(target Money, periods int) Money {
	if periods < 1 {
		periods = 1
	}
	return target.DivRound(int64(periods))
}

// PercentOfIncome is perPeriod as a share of monthly income, rounded
// to two decimals; 0 when there is no income to compare against.
func PercentOfIncome(perPeriod, monthlyIncome Money) float64 {
	if monthlyIncome.Cents <= 0 {
		return 0
	}
	return round2(float64(perPeriod.Cents) / float64(monthlyIncome.Cents) * 100)
}

// Progress is saved/target as a percentage, clamped to 100.
func Progress(c Caixinha) float64 {
	if c.Target.Cents <= 0 {
		return 0
	}
	p := round2(float64(c.Saved.Cents) / float64(c.Target.Cents) * 100)
	if p > 100 {
		return 100
	}
	return p
}

// ProjectedCompletion estimates when the goal will be funded: the
// start date advanced by ceil(remaining / perPeriod) cadence units.
// An already-funded goal projects to today.
func ProjectedCompletion(c Caixinha, today time.Time) Date {
	remaining := c.Target.Sub(c.Saved)
	if remaining.Cents <= 0 {
		return DateOf(today)
	}

	perPeriod := c.PerPeriod
	if perPeriod.Cents <= 0 {
		months := c.Months
		if months < 1 {
			months = 1
		}
		perPeriod = AmountPerPeriod(c.Target, months)
	}
	if perPeriod.Cents <= 0 {
		return DateOf(today)
	}

	periodsLeft := (remaining.Cents + perPeriod.Cents - 1) / perPeriod.Cents
	n := int(periodsLeft)

	start := c.StartDate.Time
	switch c.Frequency {
	case FrequencyDaily:
		return DateOf(start.AddDate(0, 0, n))
	case FrequencyWeekly:
		return DateOf(start.AddDate(0, 0, n*7))
	default:
		return DateOf(start.AddDate(0, n, 0))
	}
}

// highCommitmentPercent is the share of income above which a goal is
// flagged as hard to sustain.
const highCommitmentPercent = 30

// Suggestion is the contribution-suggestion calculator output: the
// required per-period amount, its weight on the monthly income, and
// the equivalent figures per cadence for display.
type Suggestion struct {
	PerPeriod       Money     `json:"valorPorPeriodo"`
	PercentOfIncome float64   `json:"percentualRenda"`
	Monthly         Money     `json:"valorMensal"`
	Weekly          Money     `json:"valorSemanal"`
	Daily           Money     `json:"valorDiario"`
	MonthlyIncome   Money     `json:"rendaMensal"`
	Periods         int       `json:"numeroPeriodos"`
	Target          Money     `json:"valorTotal"`
	Frequency       Frequency `json:"frequencia"`
	HighCommitment  bool      `json:"acimaDoRecomendado"`
}

// SuggestContribution computes the suggestion for a goal definition
// against the given monthly income. The weekly and daily equivalents
// divide the monthly figure by 4 and 30 respectively; this is a
// display approximation, not calendar arithmetic.
func SuggestContribution(c Caixinha, monthlyIncome Money) Suggestion {
	periods := PeriodCount(c.DeadlineMode, c.Months, c.StartDate, c.EndDate)
	perPeriod := AmountPerPeriod(c.Target, periods)
	percent := PercentOfIncome(perPeriod, monthlyIncome)

	freq := c.Frequency
	if freq == "" {
		freq = FrequencyMonthly
	}

	return Suggestion{
		PerPeriod:       perPeriod,
		PercentOfIncome: percent,
		Monthly:         perPeriod,
		Weekly:          perPeriod.DivRound(4),
		Daily:           perPeriod.DivRound(30),
		MonthlyIncome:   monthlyIncome,
		Periods:         periods,
		Target:          c.Target,
		Frequency:       freq,
		HighCommitment:  percent > highCommitmentPercent,
	}
}

// Notification is an advisory produced by scanning the goal list.
type Notification struct {
	Type       string `json:"tipo"`
	Message    string `json:"mensagem"`
	CaixinhaID string `json:"caixinhaId"`
}

const (
	NotificationSuccess = "sucesso"
	NotificationWarning = "aviso"
)

// ScanNotifications walks all goals and reports: a success notice when
// progress reached 100% but the status has not flipped yet (stale
// state), and a warning for active goals whose suggested percent of
// income exceeds the recommended ceiling.
func ScanNotifications(goals []Caixinha) []Notification {
	var out []Notification
	for _, c := range goals {
		if Progress(c) >= 100 && c.Status != StatusCompleted {
			out = append(out, Notification{
				Type:       NotificationSuccess,
				Message:    fmt.Sprintf("🎉 Parabéns! Você atingiu a meta da caixinha %q!", c.Name),
				CaixinhaID: c.ID,
			})
		}
		if c.SuggestedPercent > highCommitmentPercent && c.Status == StatusActive {
			out = append(out, Notification{
				Type:       NotificationWarning,
				Message:    fmt.Sprintf("⚠️ A caixinha %q requer %.2f%% da sua renda. Considere estender o prazo.", c.Name, c.SuggestedPercent),
				CaixinhaID: c.ID,
			})
		}
	}
	return out
}
