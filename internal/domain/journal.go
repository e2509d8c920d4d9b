package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const JournalSequence = "journal_entry"

type JournalStatus string

const (
	JournalStatusDraft  JournalStatus = "draft"
	JournalStatusPosted JournalStatus = "posted"
	JournalStatusVoid   JournalStatus = "void"
)

type JournalEntry struct {
	ID        uuid.UUID
	Number    string
	EntryDate time.Time
	Memo      *string
	Status    JournalStatus
	CreatedBy string
	PostedAt  *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
	Lines     []JournalLine
}

type JournalLine struct {
	ID          uuid.UUID
	EntryID     uuid.UUID
	LineNo      int
	AccountID   uuid.UUID
	Debit       decimal.Decimal
	Credit      decimal.Decimal
	Description string
}

// Totals returns the summed debits and credits.
func (e *JournalEntry) Totals() (debit, credit decimal.Decimal) {
	debit, credit = decimal.Zero, decimal.Zero
	for _, l := range e.Lines {
		debit = debit.Add(l.Debit)
		credit = credit.Add(l.Credit)
	}
	return debit, credit
}

// SignedAmount is the change this line makes to an account's running balance.
func (l JournalLine) SignedAmount(t AccountType) decimal.Decimal {
	if t.DebitNormal() {
		return l.Debit.Sub(l.Credit)
	}
	return l.Credit.Sub(l.Debit)
}

type JournalFilter struct {
	Status    *JournalStatus
	AccountID *uuid.UUID
	DateFrom  *time.Time
	DateTo    *time.Time
	Page      Page
}
