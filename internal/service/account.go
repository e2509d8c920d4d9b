package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/backoffice/internal/balance"
	"github.com/josh-kwaku/backoffice/internal/domain"
	"github.com/josh-kwaku/backoffice/internal/logging"
)

type AccountService struct {
	accounts accountRepository
	db       txRunner
	metrics  propagationRecorder
}

func NewAccountService(accounts accountRepository, db txRunner, metrics propagationRecorder) *AccountService {
	return &AccountService{accounts: accounts, db: db, metrics: metrics}
}

type CreateAccountInput struct {
	Code           string
	Name           string
	Type           domain.AccountType
	ParentID       *uuid.UUID
	IsParent       bool
	OpeningBalance decimal.Decimal
	RunningBalance *decimal.Decimal
	Description    *string
	CreatedBy      string
}

type UpdateAccountInput struct {
	Name           *string
	Description    *string
	IsActive       *bool
	RunningBalance *decimal.Decimal
}

// newPropagator returns a propagator whose ancestor lookups read through tx.
func (s *AccountService) newPropagator(tx *sql.Tx) *balance.Propagator {
	lookup := balance.LookupFunc(func(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
		return s.accounts.GetByIDTx(ctx, tx, id)
	})
	return balance.NewPropagator(lookup, s.metrics)
}

func (s *AccountService) CreateAccount(ctx context.Context, in CreateAccountInput) (*domain.Account, error) {
	log := logging.FromContext(ctx)

	if strings.TrimSpace(in.Code) == "" || strings.TrimSpace(in.Name) == "" {
		return nil, fmt.Errorf("CreateAccount: code and name are required: %w", domain.ErrInvalidRequest)
	}
	if !in.Type.IsValid() {
		return nil, fmt.Errorf("CreateAccount: account type %q: %w", in.Type, domain.ErrInvalidRequest)
	}

	now := time.Now().UTC()
	account := &domain.Account{
		ID:             uuid.New(),
		Code:           strings.TrimSpace(in.Code),
		Name:           strings.TrimSpace(in.Name),
		Type:           in.Type,
		ParentID:       in.ParentID,
		IsParent:       in.IsParent,
		OpeningBalance: in.OpeningBalance,
		Description:    in.Description,
		IsActive:       true,
		CreatedBy:      in.CreatedBy,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if in.RunningBalance != nil {
		account.SetBalance(*in.RunningBalance)
	}

	err := s.db.InTx(ctx, func(tx *sql.Tx) error {
		if in.ParentID != nil {
			parent, err := s.accounts.GetByIDTx(ctx, tx, *in.ParentID)
			if errors.Is(err, domain.ErrNotFound) {
				return fmt.Errorf("parent account %s does not exist: %w", *in.ParentID, domain.ErrInvalidOperation)
			}
			if err != nil {
				return err
			}
			if !parent.IsParent {
				return fmt.Errorf("parent account %s is not an aggregator: %w", parent.Code, domain.ErrInvalidOperation)
			}
		}

		if err := s.accounts.Create(ctx, tx, account); err != nil {
			return err
		}

		if !account.RunningBalance.Valid {
			return nil
		}
		p := s.newPropagator(tx)
		p.PropagateToParents(ctx, account, decimal.Zero)
		return s.accounts.SaveBalances(ctx, tx, p.Touched())
	})
	if err != nil {
		return nil, fmt.Errorf("CreateAccount: %w", err)
	}

	log.Info("account created",
		"account_id", account.ID,
		"code", account.Code,
		"is_parent", account.IsParent,
	)
	return account, nil
}

func (s *AccountService) GetAccount(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	a, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("GetAccount: %w", err)
	}
	return a, nil
}

func (s *AccountService) ListAccounts(ctx context.Context, f domain.AccountFilter) ([]domain.Account, int, error) {
	accounts, total, err := s.accounts.List(ctx, f)
	if err != nil {
		return nil, 0, fmt.Errorf("ListAccounts: %w", err)
	}
	return accounts, total, nil
}

// UpdateAccount patches an account. A running balance change on a leaf is
// carried up to its ancestors in the same transaction.
func (s *AccountService) UpdateAccount(ctx context.Context, id uuid.UUID, in UpdateAccountInput) (*domain.Account, error) {
	var account *domain.Account

	err := s.db.InTx(ctx, func(tx *sql.Tx) error {
		a, err := s.accounts.GetForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		previous := a.Balance()

		if in.Name != nil {
			name := strings.TrimSpace(*in.Name)
			if name == "" {
				return fmt.Errorf("name must not be empty: %w", domain.ErrInvalidRequest)
			}
			a.Name = name
		}
		if in.Description != nil {
			a.Description = in.Description
		}
		if in.IsActive != nil {
			a.IsActive = *in.IsActive
		}
		if in.RunningBalance != nil {
			a.SetBalance(*in.RunningBalance)
		}
		a.UpdatedAt = time.Now().UTC()

		if err := s.accounts.Update(ctx, tx, a); err != nil {
			return err
		}
		account = a

		if in.RunningBalance == nil {
			return nil
		}
		p := s.newPropagator(tx)
		p.Track(a)
		p.PropagateToParents(ctx, a, previous)
		return s.accounts.SaveBalances(ctx, tx, p.Touched())
	})
	if err != nil {
		return nil, fmt.Errorf("UpdateAccount: %w", err)
	}

	logging.FromContext(ctx).Info("account updated", "account_id", id)
	return account, nil
}

// DeleteAccount removes an account that has no children and no references.
// A leaf's running balance is withdrawn from its ancestors first.
func (s *AccountService) DeleteAccount(ctx context.Context, id uuid.UUID) error {
	err := s.db.InTx(ctx, func(tx *sql.Tx) error {
		a, err := s.accounts.GetForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}

		children, err := s.accounts.CountChildren(ctx, tx, id)
		if err != nil {
			return err
		}
		if children > 0 {
			return fmt.Errorf("%s has %d children: %w", a.Code, children, domain.ErrHasChildren)
		}

		referenced, err := s.accounts.IsReferenced(ctx, tx, id)
		if err != nil {
			return err
		}
		if referenced {
			return fmt.Errorf("%s is referenced by postings, lines or items: %w", a.Code, domain.ErrInvalidOperation)
		}

		previous := a.Balance()
		a.SetBalance(decimal.Zero)
		p := s.newPropagator(tx)
		p.PropagateToParents(ctx, a, previous)
		if err := s.accounts.SaveBalances(ctx, tx, p.Touched()); err != nil {
			return err
		}

		return s.accounts.Delete(ctx, tx, id)
	})
	if err != nil {
		return fmt.Errorf("DeleteAccount: %w", err)
	}

	logging.FromContext(ctx).Info("account deleted", "account_id", id)
	return nil
}

// RollupDrift is the difference between an aggregator's stored running
// balance and the sum of its direct children.
type RollupDrift struct {
	Account  domain.Account
	Expected decimal.Decimal
	Drift    decimal.Decimal
}

// CheckRollups compares every aggregator against its direct children and
// returns the ones that disagree. It reads outside a transaction and is only
// meaningful while no postings are in flight.
func (s *AccountService) CheckRollups(ctx context.Context) ([]RollupDrift, error) {
	accounts, err := s.accounts.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("CheckRollups: %w", err)
	}

	sums := make(map[uuid.UUID]decimal.Decimal)
	for _, a := range accounts {
		if a.ParentID == nil {
			continue
		}
		sums[*a.ParentID] = sums[*a.ParentID].Add(a.Balance())
	}

	var drifts []RollupDrift
	for _, a := range accounts {
		if !a.IsParent {
			continue
		}
		expected := sums[a.ID]
		if drift := a.Balance().Sub(expected); !drift.IsZero() {
			drifts = append(drifts, RollupDrift{Account: a, Expected: expected, Drift: drift})
		}
	}
	return drifts, nil
}
