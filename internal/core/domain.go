package core

import (
	"strconv"
	"strings"
	"time"
)

// Kind is the transaction direction. "investimento" only appears in
// imported data and the report aggregation path; validated input is
// restricted to entrada/saida.
type Kind string

const (
	KindIncome     Kind = "entrada"
	KindExpense    Kind = "saida"
	KindInvestment Kind = "investimento"
)

// ValidForInput reports whether the kind is accepted at creation time.
func (k Kind) ValidForInput() bool {
	return k == KindIncome || k == KindExpense
}

// Date is a calendar date serialized as "YYYY-MM-DD".
type Date struct {
	time.Time
}

// NewDate creates a Date at midnight UTC.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates a timestamp to its calendar date.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// InMonth reports calendar month+year equality, the comparison every
// monthly aggregate uses (never an elapsed-day window).
func (d Date) InMonth(year int, month time.Month) bool {
	return d.Year() == year && d.Month() == month
}

func (d Date) String() string {
	return d.Format("2006-01-02")
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte(`""`), nil
	}
	return []byte(strconv.Quote(d.String())), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		d.Time = time.Time{}
		return nil
	}
	// Tolerate full timestamps from older exports.
	if t, err := time.Parse("2006-01-02", s); err == nil {
		d.Time = t
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return ErrInvalidDate
	}
	d.Time = t
	return nil
}

// Transaction is one ledger entry. Field tags are the persisted record
// names and must stay stable for backup compatibility.
type Transaction struct {
	ID          int64  `json:"id"`
	Date        Date   `json:"data"`
	Description string `json:"descricao"`
	CategoryID  int64  `json:"categoria"`
	Kind        Kind   `json:"tipo"`
	Amount      Money  `json:"valor"`
}

// Validate collects every input problem, mirroring the original's
// error-list behavior (all problems reported at once).
func (t Transaction) Validate() error {
	var problems []string
	if strings.TrimSpace(t.Description) == "" {
		problems = append(problems, "Descrição é obrigatória")
	}
	if t.CategoryID == 0 {
		problems = append(problems, "Categoria é obrigatória")
	}
	if !t.Kind.ValidForInput() {
		problems = append(problems, "Tipo deve ser entrada ou saída")
	}
	if t.Amount.IsNegative() {
		problems = append(problems, "Valor deve ser um número positivo")
	}
	if t.Date.IsZero() {
		problems = append(problems, "Data é obrigatória")
	}
	return NewValidationError(problems)
}

// Category groups transactions. Six defaults are seeded on first load.
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"nome"`
}

const maxCategoryNameLen = 50

func (c Category) Validate() error {
	var problems []string
	name := strings.TrimSpace(c.Name)
	if name == "" {
		problems = append(problems, "Nome da categoria é obrigatório")
	}
	if len([]rune(name)) > maxCategoryNameLen {
		problems = append(problems, "Nome deve ter no máximo 50 caracteres")
	}
	return NewValidationError(problems)
}

// DefaultCategories returns the seed set applied to an empty store.
func DefaultCategories() []Category {
	return []Category{
		{ID: 1, Name: "Alimentação"},
		{ID: 2, Name: "Transporte"},
		{ID: 3, Name: "Moradia"},
		{ID: 4, Name: "Lazer"},
		{ID: 5, Name: "Saúde"},
		{ID: 6, Name: "Outros"},
	}
}

// TrashItem is a soft-deleted transaction: the original fields plus
// deletion metadata. OriginalType is "caixinha" for the synthetic
// expense left behind by a deleted savings goal, in which case
// OriginalGoalID carries the goal's UUID.
type TrashItem struct {
	Transaction
	DeletedAt      time.Time `json:"dataExclusao"`
	OriginalID     int64     `json:"idOriginal,omitempty"`
	OriginalType   string    `json:"tipoOriginal,omitempty"`
	OriginalGoalID string    `json:"idOriginalCaixinha,omitempty"`
}

// Budget is the process-wide spending limit configuration, replaced
// wholesale on save. Category keys serialize as the original's
// {"categorias": {"<id>": n}} object.
type Budget struct {
	Total      Money           `json:"total"`
	Categories map[int64]Money `json:"categorias"`
}

func (b Budget) Validate() error {
	var problems []string
	if b.Total.IsNegative() {
		problems = append(problems, "Orçamento total não pode ser negativo")
	}
	for id, v := range b.Categories {
		if v.IsNegative() {
			problems = append(problems, "Orçamento da categoria "+strconv.FormatInt(id, 10)+" não pode ser negativo")
		}
	}
	return NewValidationError(problems)
}

// NextID returns max(id)+1 over the given ids, starting at 1.
func NextID(ids []int64) int64 {
	var max int64
	for _, id := range ids {
		if id > max {
			max = id
		}
	}
	return max + 1
}
