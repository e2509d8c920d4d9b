package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/backoffice/internal/domain"
	"github.com/josh-kwaku/backoffice/internal/logging"
)

const journalPrefix = "JE"

type JournalService struct {
	journals journalRepository
	accounts *AccountService
	numbers  numberGenerator
	db       txRunner
	metrics  postingRecorder
}

func NewJournalService(journals journalRepository, accounts *AccountService, numbers numberGenerator, db txRunner, metrics postingRecorder) *JournalService {
	return &JournalService{
		journals: journals,
		accounts: accounts,
		numbers:  numbers,
		db:       db,
		metrics:  metrics,
	}
}

type JournalLineInput struct {
	AccountID   uuid.UUID
	Debit       decimal.Decimal
	Credit      decimal.Decimal
	Description string
}

type CreateJournalInput struct {
	EntryDate time.Time
	Memo      *string
	Lines     []JournalLineInput
	Post      bool
	CreatedBy string
}

// ValidateLines checks the shape of a journal entry: at least two lines, one
// positive side per line, and equal debit and credit totals.
func ValidateLines(lines []JournalLineInput) error {
	if len(lines) < 2 {
		return fmt.Errorf("entry needs at least two lines: %w", domain.ErrInvalidRequest)
	}

	debit, credit := decimal.Zero, decimal.Zero
	for i, l := range lines {
		if l.Debit.IsNegative() || l.Credit.IsNegative() {
			return fmt.Errorf("line %d: negative amount: %w", i+1, domain.ErrInvalidAmount)
		}
		if l.Debit.IsPositive() == l.Credit.IsPositive() {
			return fmt.Errorf("line %d: exactly one of debit or credit must be set: %w", i+1, domain.ErrInvalidAmount)
		}
		debit = debit.Add(l.Debit)
		credit = credit.Add(l.Credit)
	}
	if !debit.Equal(credit) {
		return fmt.Errorf("debits %s, credits %s: %w", debit, credit, domain.ErrUnbalancedEntry)
	}
	return nil
}

func (s *JournalService) CreateEntry(ctx context.Context, in CreateJournalInput) (*domain.JournalEntry, error) {
	if err := ValidateLines(in.Lines); err != nil {
		return nil, fmt.Errorf("CreateEntry: %w", err)
	}

	now := time.Now().UTC()
	entry := &domain.JournalEntry{
		ID:        uuid.New(),
		EntryDate: in.EntryDate,
		Memo:      in.Memo,
		Status:    domain.JournalStatusDraft,
		CreatedBy: in.CreatedBy,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if entry.EntryDate.IsZero() {
		entry.EntryDate = now.Truncate(24 * time.Hour)
	}
	for i, l := range in.Lines {
		entry.Lines = append(entry.Lines, domain.JournalLine{
			ID:          uuid.New(),
			EntryID:     entry.ID,
			LineNo:      i + 1,
			AccountID:   l.AccountID,
			Debit:       l.Debit,
			Credit:      l.Credit,
			Description: l.Description,
		})
	}

	err := s.db.InTx(ctx, func(tx *sql.Tx) error {
		if err := s.checkAccounts(ctx, tx, entry.Lines); err != nil {
			return err
		}

		number, err := s.numbers.Next(ctx, tx, domain.JournalSequence, journalPrefix)
		if err != nil {
			return err
		}
		entry.Number = number

		if err := s.journals.Create(ctx, tx, entry); err != nil {
			return err
		}
		if !in.Post {
			return nil
		}
		return s.apply(ctx, tx, entry, false)
	})
	if err != nil {
		return nil, fmt.Errorf("CreateEntry: %w", err)
	}

	logging.FromContext(ctx).Info("journal entry created",
		"entry_id", entry.ID,
		"number", entry.Number,
		"status", entry.Status,
	)
	if in.Post {
		s.metrics.RecordPosting("post", len(entry.Lines))
	}
	return entry, nil
}

func (s *JournalService) GetEntry(ctx context.Context, id uuid.UUID) (*domain.JournalEntry, error) {
	e, err := s.journals.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("GetEntry: %w", err)
	}
	return e, nil
}

func (s *JournalService) ListEntries(ctx context.Context, f domain.JournalFilter) ([]domain.JournalEntry, int, error) {
	entries, total, err := s.journals.List(ctx, f)
	if err != nil {
		return nil, 0, fmt.Errorf("ListEntries: %w", err)
	}
	return entries, total, nil
}

// PostEntry applies a draft entry to its accounts and their ancestors.
func (s *JournalService) PostEntry(ctx context.Context, id uuid.UUID) (*domain.JournalEntry, error) {
	entry, err := s.transition(ctx, id, domain.JournalStatusDraft, false)
	if err != nil {
		return nil, fmt.Errorf("PostEntry: %w", err)
	}
	s.metrics.RecordPosting("post", len(entry.Lines))
	logging.FromContext(ctx).Info("journal entry posted", "entry_id", id, "number", entry.Number)
	return entry, nil
}

// VoidEntry reverses a posted entry.
func (s *JournalService) VoidEntry(ctx context.Context, id uuid.UUID) (*domain.JournalEntry, error) {
	entry, err := s.transition(ctx, id, domain.JournalStatusPosted, true)
	if err != nil {
		return nil, fmt.Errorf("VoidEntry: %w", err)
	}
	s.metrics.RecordPosting("void", len(entry.Lines))
	logging.FromContext(ctx).Info("journal entry voided", "entry_id", id, "number", entry.Number)
	return entry, nil
}

func (s *JournalService) transition(ctx context.Context, id uuid.UUID, from domain.JournalStatus, reverse bool) (*domain.JournalEntry, error) {
	var entry *domain.JournalEntry
	err := s.db.InTx(ctx, func(tx *sql.Tx) error {
		e, err := s.journals.GetForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if e.Status != from {
			return fmt.Errorf("entry is %s: %w", e.Status, domain.ErrInvalidTransition)
		}
		entry = e
		return s.apply(ctx, tx, e, reverse)
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// apply posts every line of the entry, or its reversal, and updates the
// entry's status.
func (s *JournalService) apply(ctx context.Context, tx *sql.Tx, e *domain.JournalEntry, reverse bool) error {
	batch := s.accounts.NewPostingBatch(tx)
	for _, l := range e.Lines {
		debit, credit := l.Debit, l.Credit
		if reverse {
			debit, credit = credit, debit
		}
		if _, err := batch.PostToAccount(ctx, l.AccountID, debit, credit); err != nil {
			return fmt.Errorf("line %d: %w", l.LineNo, err)
		}
	}
	if err := batch.Flush(ctx); err != nil {
		return err
	}

	now := time.Now().UTC()
	if reverse {
		e.Status = domain.JournalStatusVoid
	} else {
		e.Status = domain.JournalStatusPosted
		e.PostedAt = &now
	}
	e.UpdatedAt = now
	return s.journals.UpdateStatus(ctx, tx, e)
}

func (s *JournalService) checkAccounts(ctx context.Context, tx *sql.Tx, lines []domain.JournalLine) error {
	for _, l := range lines {
		a, err := s.accounts.accounts.GetByIDTx(ctx, tx, l.AccountID)
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("line %d: account %s does not exist: %w", l.LineNo, l.AccountID, domain.ErrInvalidOperation)
		}
		if err != nil {
			return err
		}
		if a.IsParent {
			return fmt.Errorf("line %d: account %s is an aggregator: %w", l.LineNo, a.Code, domain.ErrInvalidOperation)
		}
	}
	return nil
}
