package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	TransactionIncome  = "income"
	TransactionExpense = "expense"
)

// FinanceAccount is one entry of the per-user account list stored on the
// aggregate. Balance is a pointer because legacy documents predate the field;
// readers fall back to InitialBalance when it is absent.
type FinanceAccount struct {
	ID             string           `json:"id"`
	Name           string           `json:"name"`
	InitialBalance decimal.Decimal  `json:"initialBalance"`
	Balance        *decimal.Decimal `json:"balance,omitempty"`
}

func (account FinanceAccount) CurrentBalance() decimal.Decimal {
	if account.Balance != nil {
		return *account.Balance
	}
	return account.InitialBalance
}

func (account *FinanceAccount) SetBalance(value decimal.Decimal) {
	account.Balance = &value
}

// DefaultAccounts is the fixed zero-balance seed used when a user has no
// aggregate yet and as the reset baseline for reconciliation.
func DefaultAccounts() []FinanceAccount {
	seeds := []struct{ id, name string }{
		{"nequi", "Nequi"},
		{"efectivo", "Efectivo"},
		{"daviplata", "Daviplata"},
		{"davivienda", "Davivienda"},
		{"bancolombia", "Bancolombia"},
	}

	accounts := make([]FinanceAccount, 0, len(seeds))
	for _, seed := range seeds {
		account := FinanceAccount{ID: seed.id, Name: seed.name, InitialBalance: decimal.Zero}
		account.SetBalance(decimal.Zero)
		accounts = append(accounts, account)
	}
	return accounts
}

type CategoryStat struct {
	Total decimal.Decimal `json:"total"`
	Emoji string          `json:"emoji"`
}

// MonthStats is one YYYY-MM bucket of running sums. Category totals only
// track expenses.
type MonthStats struct {
	Income     decimal.Decimal         `json:"income"`
	Expense    decimal.Decimal         `json:"expense"`
	Categories map[string]CategoryStat `json:"categories"`
}

func NewMonthStats() MonthStats {
	return MonthStats{
		Income:     decimal.Zero,
		Expense:    decimal.Zero,
		Categories: map[string]CategoryStat{},
	}
}

// Transaction is an immutable posted record. The id is a millisecond
// timestamp assigned at posting time, so descending id order is history order.
type Transaction struct {
	ID          int64           `json:"id" gorm:"primaryKey;autoIncrement:false"`
	UserID      uint            `json:"-" gorm:"primaryKey;autoIncrement:false"`
	Type        string          `json:"type" gorm:"not null"`
	AccountID   string          `json:"accountId" gorm:"not null"`
	Amount      decimal.Decimal `json:"amount" gorm:"type:numeric;not null"`
	Category    string          `json:"category" gorm:"not null;default:''"`
	Emoji       string          `json:"emoji" gorm:"not null;default:''"`
	Description string          `json:"description" gorm:"not null;default:''"`
	DateISO     string          `json:"dateISO" gorm:"not null"`
	Date        string          `json:"date" gorm:"not null;default:''"`
	CreatedAt   time.Time       `json:"-"`
}

// FinanceAggregate is the single per-user row that serializes all balance and
// month-stat mutation. Version backs the optimistic guard: every save bumps
// it, and a save against a stale version is a conflict.
// LegacyTransactions carries the old inline-array document shape until the
// one-time migration clears it.
type FinanceAggregate struct {
	UserID             uint                  `gorm:"primaryKey;autoIncrement:false"`
	Accounts           []FinanceAccount      `gorm:"serializer:json"`
	MonthStats         map[string]MonthStats `gorm:"serializer:json"`
	LegacyTransactions []Transaction         `gorm:"serializer:json"`
	Version            int64                 `gorm:"not null;default:0"`
	UpdatedAt          time.Time
}

// NewFinanceAggregate returns the zero-balance aggregate created on first post.
func NewFinanceAggregate(userID uint) FinanceAggregate {
	return FinanceAggregate{
		UserID:     userID,
		Accounts:   DefaultAccounts(),
		MonthStats: map[string]MonthStats{},
	}
}

// MigrationRun tracks one resumable legacy import. OffsetIndex is the number
// of legacy array entries whose rows are already written.
type MigrationRun struct {
	ID          string `gorm:"primaryKey"`
	UserID      uint   `gorm:"not null;index"`
	OffsetIndex int    `gorm:"not null;default:0"`
	Completed   bool   `gorm:"not null;default:false"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
