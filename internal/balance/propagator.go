// Package balance keeps aggregator running balances in the chart of accounts
// consistent with the postings made to their descendants.
//
// A Propagator is a unit of work: it is created for a single operation (one
// database transaction), walks parent links as leaf balances change, mutates
// the ancestors it finds in memory, and hands the touched set back to the
// caller to persist in one save. It is not safe for concurrent use.
package balance

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/backoffice/internal/domain"
	"github.com/josh-kwaku/backoffice/internal/logging"
)

// Lookup resolves an account by id. Implementations return an error wrapping
// domain.ErrNotFound for unknown ids.
type Lookup interface {
	Account(ctx context.Context, id uuid.UUID) (*domain.Account, error)
}

// LookupFunc adapts a function to Lookup.
type LookupFunc func(ctx context.Context, id uuid.UUID) (*domain.Account, error)

func (f LookupFunc) Account(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	return f(ctx, id)
}

type recorder interface {
	RecordPropagation(steps int, stopReason string)
}

// StopReason describes why a walk ended. None of them are errors.
type StopReason string

const (
	StopRoot          StopReason = "root"
	StopAggregator    StopReason = "aggregator"
	StopNoParent      StopReason = "no_parent"
	StopZeroDelta     StopReason = "zero_delta"
	StopMissingParent StopReason = "missing_parent"
	StopCycle         StopReason = "cycle"
	StopLookupError   StopReason = "lookup_error"
)

type Propagator struct {
	lookup  Lookup
	metrics recorder

	loaded  map[uuid.UUID]*domain.Account
	touched []*domain.Account
	dirty   map[uuid.UUID]bool
}

func NewPropagator(lookup Lookup, metrics recorder) *Propagator {
	return &Propagator{
		lookup:  lookup,
		metrics: metrics,
		loaded:  make(map[uuid.UUID]*domain.Account),
		dirty:   make(map[uuid.UUID]bool),
	}
}

// Track registers accounts the caller already holds so that later walks in
// the same unit of work mutate those instances instead of reloading them.
func (p *Propagator) Track(accounts ...*domain.Account) {
	for _, a := range accounts {
		if _, ok := p.loaded[a.ID]; !ok {
			p.loaded[a.ID] = a
		}
	}
}

// PropagateToParents applies the change in account's running balance since
// previous to every ancestor of account, once each. Walks that cannot start
// or cannot continue end silently; a broken hierarchy never fails the
// operation that triggered the walk.
func (p *Propagator) PropagateToParents(ctx context.Context, account *domain.Account, previous decimal.Decimal) {
	steps, reason := p.walk(ctx, account, previous)
	p.metrics.RecordPropagation(steps, string(reason))
}

func (p *Propagator) walk(ctx context.Context, account *domain.Account, previous decimal.Decimal) (int, StopReason) {
	log := logging.FromContext(ctx)

	if account.IsParent {
		return 0, StopAggregator
	}
	if account.ParentID == nil {
		return 0, StopNoParent
	}

	delta := account.Balance().Sub(previous)
	if delta.IsZero() {
		return 0, StopZeroDelta
	}

	p.Track(account)
	visited := map[uuid.UUID]bool{account.ID: true}
	steps := 0

	for parentID := account.ParentID; parentID != nil; {
		if visited[*parentID] {
			log.Warn("account hierarchy cycle detected, stopping propagation",
				"account_id", account.ID,
				"repeated_account_id", *parentID,
			)
			return steps, StopCycle
		}
		visited[*parentID] = true

		parent, err := p.account(ctx, *parentID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				log.Debug("parent account not found, stopping propagation",
					"account_id", account.ID,
					"parent_id", *parentID,
				)
				return steps, StopMissingParent
			}
			log.Warn("parent lookup failed, stopping propagation",
				"account_id", account.ID,
				"parent_id", *parentID,
				"error", err,
			)
			return steps, StopLookupError
		}

		parent.SetBalance(parent.Balance().Add(delta))
		p.markDirty(parent)
		steps++

		parentID = parent.ParentID
	}

	log.Debug("balance propagated",
		"account_id", account.ID,
		"delta", delta.String(),
		"ancestors", steps,
	)
	return steps, StopRoot
}

func (p *Propagator) account(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	if a, ok := p.loaded[id]; ok {
		return a, nil
	}
	a, err := p.lookup.Account(ctx, id)
	if err != nil {
		return nil, err
	}
	p.loaded[id] = a
	return a, nil
}

func (p *Propagator) markDirty(a *domain.Account) {
	if p.dirty[a.ID] {
		return
	}
	p.dirty[a.ID] = true
	p.touched = append(p.touched, a)
}

// Touched returns every ancestor mutated so far, in the order each was first
// reached. The caller persists them.
func (p *Propagator) Touched() []*domain.Account {
	out := make([]*domain.Account, len(p.touched))
	copy(out, p.touched)
	return out
}
