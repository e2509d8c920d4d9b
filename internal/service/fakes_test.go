package service

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/backoffice/internal/domain"
)

// fakeDB runs the callback without a real transaction. Fakes ignore the tx.
type fakeDB struct {
	calls int
}

func (f *fakeDB) InTx(_ context.Context, fn func(tx *sql.Tx) error) error {
	f.calls++
	return fn(nil)
}

type fakeAccounts struct {
	rows       map[uuid.UUID]domain.Account
	referenced map[uuid.UUID]bool
	saves      int
}

func newFakeAccounts(accounts ...*domain.Account) *fakeAccounts {
	f := &fakeAccounts{rows: make(map[uuid.UUID]domain.Account), referenced: make(map[uuid.UUID]bool)}
	for _, a := range accounts {
		f.rows[a.ID] = *a
	}
	return f
}

func (f *fakeAccounts) get(id uuid.UUID) (*domain.Account, error) {
	a, ok := f.rows[id]
	if !ok {
		return nil, fmt.Errorf("get: %w", domain.ErrNotFound)
	}
	return &a, nil
}

func (f *fakeAccounts) balance(id uuid.UUID) decimal.NullDecimal {
	return f.rows[id].RunningBalance
}

func (f *fakeAccounts) GetByID(_ context.Context, id uuid.UUID) (*domain.Account, error) {
	return f.get(id)
}

func (f *fakeAccounts) GetByIDTx(_ context.Context, _ *sql.Tx, id uuid.UUID) (*domain.Account, error) {
	return f.get(id)
}

func (f *fakeAccounts) GetForUpdate(_ context.Context, _ *sql.Tx, id uuid.UUID) (*domain.Account, error) {
	return f.get(id)
}

func (f *fakeAccounts) List(_ context.Context, _ domain.AccountFilter) ([]domain.Account, int, error) {
	all, _ := f.All(context.Background())
	return all, len(all), nil
}

func (f *fakeAccounts) All(_ context.Context) ([]domain.Account, error) {
	var out []domain.Account
	for _, a := range f.rows {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (f *fakeAccounts) Create(_ context.Context, _ *sql.Tx, a *domain.Account) error {
	for _, existing := range f.rows {
		if existing.Code == a.Code {
			return fmt.Errorf("Create: %w", domain.ErrDuplicate)
		}
	}
	f.rows[a.ID] = *a
	return nil
}

func (f *fakeAccounts) Update(_ context.Context, _ *sql.Tx, a *domain.Account) error {
	if _, ok := f.rows[a.ID]; !ok {
		return fmt.Errorf("Update: %w", domain.ErrNotFound)
	}
	f.rows[a.ID] = *a
	return nil
}

func (f *fakeAccounts) SaveBalances(_ context.Context, _ *sql.Tx, accounts []*domain.Account) error {
	f.saves++
	for _, a := range accounts {
		row := f.rows[a.ID]
		row.RunningBalance = a.RunningBalance
		f.rows[a.ID] = row
	}
	return nil
}

func (f *fakeAccounts) CountChildren(_ context.Context, _ *sql.Tx, id uuid.UUID) (int, error) {
	n := 0
	for _, a := range f.rows {
		if a.ParentID != nil && *a.ParentID == id {
			n++
		}
	}
	return n, nil
}

func (f *fakeAccounts) IsReferenced(_ context.Context, _ *sql.Tx, id uuid.UUID) (bool, error) {
	return f.referenced[id], nil
}

func (f *fakeAccounts) Delete(_ context.Context, _ *sql.Tx, id uuid.UUID) error {
	if _, ok := f.rows[id]; !ok {
		return fmt.Errorf("Delete: %w", domain.ErrNotFound)
	}
	delete(f.rows, id)
	return nil
}

type fakeParties struct {
	rows map[uuid.UUID]domain.Party
}

func newFakeParties(parties ...*domain.Party) *fakeParties {
	f := &fakeParties{rows: make(map[uuid.UUID]domain.Party)}
	for _, p := range parties {
		f.rows[p.ID] = *p
	}
	return f
}

func (f *fakeParties) GetByID(_ context.Context, id uuid.UUID) (*domain.Party, error) {
	p, ok := f.rows[id]
	if !ok {
		return nil, fmt.Errorf("GetByID: %w", domain.ErrNotFound)
	}
	return &p, nil
}

func (f *fakeParties) List(_ context.Context, flt domain.PartyFilter) ([]domain.Party, int, error) {
	var out []domain.Party
	for _, p := range f.rows {
		if p.Kind == flt.Kind {
			out = append(out, p)
		}
	}
	return out, len(out), nil
}

func (f *fakeParties) Create(_ context.Context, p *domain.Party) error {
	f.rows[p.ID] = *p
	return nil
}

func (f *fakeParties) Update(_ context.Context, p *domain.Party) error {
	f.rows[p.ID] = *p
	return nil
}

type fakeItems struct {
	rows map[uuid.UUID]domain.Item
}

func newFakeItems(items ...*domain.Item) *fakeItems {
	f := &fakeItems{rows: make(map[uuid.UUID]domain.Item)}
	for _, i := range items {
		f.rows[i.ID] = *i
	}
	return f
}

func (f *fakeItems) GetByID(_ context.Context, id uuid.UUID) (*domain.Item, error) {
	i, ok := f.rows[id]
	if !ok {
		return nil, fmt.Errorf("GetByID: %w", domain.ErrNotFound)
	}
	return &i, nil
}

func (f *fakeItems) GetForUpdate(ctx context.Context, _ *sql.Tx, id uuid.UUID) (*domain.Item, error) {
	return f.GetByID(ctx, id)
}

func (f *fakeItems) List(_ context.Context, _ domain.ItemFilter) ([]domain.Item, int, error) {
	var out []domain.Item
	for _, i := range f.rows {
		out = append(out, i)
	}
	return out, len(out), nil
}

func (f *fakeItems) Create(_ context.Context, i *domain.Item) error {
	f.rows[i.ID] = *i
	return nil
}

func (f *fakeItems) Update(_ context.Context, i *domain.Item) error {
	f.rows[i.ID] = *i
	return nil
}

func (f *fakeItems) UpdateQuantity(_ context.Context, _ *sql.Tx, id uuid.UUID, qty decimal.Decimal) error {
	i, ok := f.rows[id]
	if !ok {
		return fmt.Errorf("UpdateQuantity: %w", domain.ErrNotFound)
	}
	i.QuantityOnHand = qty
	f.rows[id] = i
	return nil
}

type fakeDocuments struct {
	rows map[uuid.UUID]domain.Document
}

func newFakeDocuments() *fakeDocuments {
	return &fakeDocuments{rows: make(map[uuid.UUID]domain.Document)}
}

func (f *fakeDocuments) GetByID(_ context.Context, docType domain.DocumentType, id uuid.UUID) (*domain.Document, error) {
	d, ok := f.rows[id]
	if !ok || d.Type != docType {
		return nil, fmt.Errorf("GetByID: %w", domain.ErrNotFound)
	}
	d.Lines = append([]domain.DocumentLine(nil), d.Lines...)
	return &d, nil
}

func (f *fakeDocuments) GetForUpdate(ctx context.Context, _ *sql.Tx, docType domain.DocumentType, id uuid.UUID) (*domain.Document, error) {
	return f.GetByID(ctx, docType, id)
}

func (f *fakeDocuments) List(_ context.Context, flt domain.DocumentFilter) ([]domain.Document, int, error) {
	var out []domain.Document
	for _, d := range f.rows {
		if d.Type == flt.Type {
			out = append(out, d)
		}
	}
	return out, len(out), nil
}

func (f *fakeDocuments) Create(_ context.Context, _ *sql.Tx, d *domain.Document) error {
	f.rows[d.ID] = *d
	return nil
}

func (f *fakeDocuments) Update(_ context.Context, _ *sql.Tx, d *domain.Document) error {
	row, ok := f.rows[d.ID]
	if !ok {
		return fmt.Errorf("Update: %w", domain.ErrNotFound)
	}
	lines := row.Lines
	row = *d
	row.Lines = lines
	f.rows[d.ID] = row
	return nil
}

func (f *fakeDocuments) NextLineNo(_ context.Context, _ *sql.Tx, documentID uuid.UUID) (int, error) {
	n := 0
	for _, l := range f.rows[documentID].Lines {
		if l.LineNo > n {
			n = l.LineNo
		}
	}
	return n + 1, nil
}

func (f *fakeDocuments) CreateLine(_ context.Context, _ *sql.Tx, l *domain.DocumentLine) error {
	row := f.rows[l.DocumentID]
	row.Lines = append(row.Lines, *l)
	f.rows[l.DocumentID] = row
	return nil
}

func (f *fakeDocuments) DeleteLine(_ context.Context, _ *sql.Tx, documentID, lineID uuid.UUID) error {
	row := f.rows[documentID]
	for i, l := range row.Lines {
		if l.ID == lineID {
			row.Lines = append(row.Lines[:i:i], row.Lines[i+1:]...)
			f.rows[documentID] = row
			return nil
		}
	}
	return fmt.Errorf("DeleteLine: %w", domain.ErrNotFound)
}

type fakeMovements struct {
	created []domain.InventoryMovement
}

func (f *fakeMovements) Create(_ context.Context, _ *sql.Tx, m *domain.InventoryMovement) error {
	f.created = append(f.created, *m)
	return nil
}

func (f *fakeMovements) List(_ context.Context, _ domain.InventoryFilter) ([]domain.InventoryMovement, int, error) {
	return f.created, len(f.created), nil
}

type fakeJournals struct {
	rows map[uuid.UUID]domain.JournalEntry
}

func newFakeJournals() *fakeJournals {
	return &fakeJournals{rows: make(map[uuid.UUID]domain.JournalEntry)}
}

func (f *fakeJournals) GetByID(_ context.Context, id uuid.UUID) (*domain.JournalEntry, error) {
	e, ok := f.rows[id]
	if !ok {
		return nil, fmt.Errorf("GetByID: %w", domain.ErrNotFound)
	}
	return &e, nil
}

func (f *fakeJournals) GetForUpdate(ctx context.Context, _ *sql.Tx, id uuid.UUID) (*domain.JournalEntry, error) {
	return f.GetByID(ctx, id)
}

func (f *fakeJournals) List(_ context.Context, _ domain.JournalFilter) ([]domain.JournalEntry, int, error) {
	var out []domain.JournalEntry
	for _, e := range f.rows {
		out = append(out, e)
	}
	return out, len(out), nil
}

func (f *fakeJournals) Create(_ context.Context, _ *sql.Tx, e *domain.JournalEntry) error {
	f.rows[e.ID] = *e
	return nil
}

func (f *fakeJournals) UpdateStatus(_ context.Context, _ *sql.Tx, e *domain.JournalEntry) error {
	row, ok := f.rows[e.ID]
	if !ok {
		return fmt.Errorf("UpdateStatus: %w", domain.ErrNotFound)
	}
	row.Status, row.PostedAt, row.UpdatedAt = e.Status, e.PostedAt, e.UpdatedAt
	f.rows[e.ID] = row
	return nil
}

// fakeNumbers counts per sequence name.
type fakeNumbers struct {
	next map[string]int
}

func newFakeNumbers() *fakeNumbers {
	return &fakeNumbers{next: make(map[string]int)}
}

func (f *fakeNumbers) Next(_ context.Context, _ *sql.Tx, name, prefix string) (string, error) {
	f.next[name]++
	return fmt.Sprintf("%s-%06d", prefix, f.next[name]), nil
}

type fakeRecorder struct {
	propagations []string
	postings     []string
}

func (r *fakeRecorder) RecordPropagation(_ int, stopReason string) {
	r.propagations = append(r.propagations, stopReason)
}

func (r *fakeRecorder) RecordPosting(action string, _ int) {
	r.postings = append(r.postings, action)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func ptr[T any](v T) *T {
	return &v
}

func newAccount(code string, t domain.AccountType, parent *domain.Account, isParent bool, balance string) *domain.Account {
	a := &domain.Account{ID: uuid.New(), Code: code, Name: code, Type: t, IsParent: isParent, IsActive: true}
	if parent != nil {
		a.ParentID = &parent.ID
	}
	if balance != "" {
		a.SetBalance(dec(balance))
	}
	return a
}
