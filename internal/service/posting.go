package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/backoffice/internal/balance"
	"github.com/josh-kwaku/backoffice/internal/domain"
)

// PostingBatch applies debits and credits to leaf accounts inside one
// transaction. Every posted leaf and every ancestor reached by propagation is
// held in memory until Flush writes them in a single save.
type PostingBatch struct {
	accounts   accountRepository
	tx         *sql.Tx
	propagator *balance.Propagator
	posted     map[uuid.UUID]*domain.Account
	order      []*domain.Account
}

func (s *AccountService) NewPostingBatch(tx *sql.Tx) *PostingBatch {
	return &PostingBatch{
		accounts:   s.accounts,
		tx:         tx,
		propagator: s.newPropagator(tx),
		posted:     make(map[uuid.UUID]*domain.Account),
	}
}

// PostToAccount applies a debit and a credit to a leaf account according to
// its normal side, then carries the change up the hierarchy.
func (b *PostingBatch) PostToAccount(ctx context.Context, accountID uuid.UUID, debit, credit decimal.Decimal) (*domain.Account, error) {
	a, err := b.account(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("PostToAccount: %w", err)
	}

	line := domain.JournalLine{Debit: debit, Credit: credit}
	previous := a.Balance()
	a.SetBalance(previous.Add(line.SignedAmount(a.Type)))

	b.propagator.PropagateToParents(ctx, a, previous)
	return a, nil
}

func (b *PostingBatch) account(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	if a, ok := b.posted[id]; ok {
		return a, nil
	}
	a, err := b.accounts.GetForUpdate(ctx, b.tx, id)
	if err != nil {
		return nil, err
	}
	if a.IsParent {
		return nil, fmt.Errorf("account %s is an aggregator: %w", a.Code, domain.ErrInvalidOperation)
	}
	b.posted[id] = a
	b.order = append(b.order, a)
	b.propagator.Track(a)
	return a, nil
}

// Flush persists the posted leaves and the ancestors they touched.
func (b *PostingBatch) Flush(ctx context.Context) error {
	all := append(append([]*domain.Account{}, b.order...), b.propagator.Touched()...)
	if err := b.accounts.SaveBalances(ctx, b.tx, all); err != nil {
		return fmt.Errorf("Flush: %w", err)
	}
	return nil
}
