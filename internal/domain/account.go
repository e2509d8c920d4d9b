package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type AccountType string

const (
	AccountTypeAsset     AccountType = "asset"
	AccountTypeLiability AccountType = "liability"
	AccountTypeEquity    AccountType = "equity"
	AccountTypeIncome    AccountType = "income"
	AccountTypeExpense   AccountType = "expense"
)

func (t AccountType) IsValid() bool {
	switch t {
	case AccountTypeAsset, AccountTypeLiability, AccountTypeEquity, AccountTypeIncome, AccountTypeExpense:
		return true
	}
	return false
}

// DebitNormal reports whether debits increase the balance of this account type.
func (t AccountType) DebitNormal() bool {
	return t == AccountTypeAsset || t == AccountTypeExpense
}

// Account is a chart-of-accounts node. Aggregator accounts (IsParent) never
// receive direct postings; their RunningBalance is the rolled-up total of
// every delta propagated from their descendants.
type Account struct {
	ID             uuid.UUID
	Code           string
	Name           string
	Type           AccountType
	ParentID       *uuid.UUID
	IsParent       bool
	OpeningBalance decimal.Decimal
	RunningBalance decimal.NullDecimal
	Description    *string
	IsActive       bool
	CreatedBy      string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Balance returns the running balance, treating a missing value as zero.
func (a *Account) Balance() decimal.Decimal {
	if !a.RunningBalance.Valid {
		return decimal.Zero
	}
	return a.RunningBalance.Decimal
}

func (a *Account) SetBalance(d decimal.Decimal) {
	a.RunningBalance = decimal.NullDecimal{Decimal: d, Valid: true}
}

type AccountFilter struct {
	Type     *AccountType
	ParentID *uuid.UUID
	IsParent *bool
	IsActive *bool
	Search   string
	Page     Page
}
