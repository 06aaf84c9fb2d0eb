package domain

import (
	"fmt"
	"strings"
	"time"
)

// Kind is the transaction direction. It is a closed two-value tag.
type Kind string

const (
	KindExpense Kind = "expense"
	KindIncome  Kind = "income"
)

// Valid reports whether k is one of the two known values.
func (k Kind) Valid() bool {
	return k == KindExpense || k == KindIncome
}

// Transaction is one confirmed ledger entry. ID and CreatedAt are assigned by
// the store when a draft is committed and never change afterwards; edits
// replace the remaining fields wholesale.
type Transaction struct {
	ID          string    `json:"id"`
	Amount      float64   `json:"amount"`
	Kind        Kind      `json:"type"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`       // when the transaction happened
	CreatedAt   time.Time `json:"created_at"` // when the record was entered
}

// Draft is a parsed-but-unconfirmed transaction. It has the same fields as
// Transaction minus identity, and stays mutable until the user commits it.
type Draft struct {
	Amount      float64   `json:"amount"`
	Kind        Kind      `json:"type"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
}

// Validate checks the invariants the store requires before a draft may become
// a Transaction. The parser does not enforce these; the storage boundary does.
func (d Draft) Validate() error {
	if d.Amount <= 0 {
		return fmt.Errorf("draft: amount must be positive, got %v", d.Amount)
	}
	if !d.Kind.Valid() {
		return fmt.Errorf("draft: unknown kind %q", d.Kind)
	}
	if d.Date.IsZero() {
		return fmt.Errorf("draft: date is not set")
	}
	if strings.TrimSpace(d.Description) == "" {
		return fmt.Errorf("draft: description is empty")
	}
	return nil
}

// Categories is the fixed taxonomy. Order defines display priority only.
// 工资 is the sole income-oriented label; the rest are expense-oriented.
var Categories = []string{
	"餐饮",
	"交通",
	"购物",
	"娱乐",
	"医疗",
	"生活",
	"工资",
	"其他",
}

// ValidCategory reports whether name is a member of the taxonomy. Drafts with
// free-form categories are still accepted at the boundary; this only answers
// the membership question.
func ValidCategory(name string) bool {
	for _, c := range Categories {
		if c == name {
			return true
		}
	}
	return false
}
