package service

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/backoffice/internal/domain"
)

type txRunner interface {
	InTx(ctx context.Context, fn func(tx *sql.Tx) error) error
}

type accountRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error)
	GetByIDTx(ctx context.Context, tx *sql.Tx, id uuid.UUID) (*domain.Account, error)
	GetForUpdate(ctx context.Context, tx *sql.Tx, id uuid.UUID) (*domain.Account, error)
	List(ctx context.Context, f domain.AccountFilter) ([]domain.Account, int, error)
	All(ctx context.Context) ([]domain.Account, error)
	Create(ctx context.Context, tx *sql.Tx, a *domain.Account) error
	Update(ctx context.Context, tx *sql.Tx, a *domain.Account) error
	SaveBalances(ctx context.Context, tx *sql.Tx, accounts []*domain.Account) error
	CountChildren(ctx context.Context, tx *sql.Tx, id uuid.UUID) (int, error)
	IsReferenced(ctx context.Context, tx *sql.Tx, id uuid.UUID) (bool, error)
	Delete(ctx context.Context, tx *sql.Tx, id uuid.UUID) error
}

type partyRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Party, error)
	List(ctx context.Context, f domain.PartyFilter) ([]domain.Party, int, error)
	Create(ctx context.Context, p *domain.Party) error
	Update(ctx context.Context, p *domain.Party) error
}

type itemRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Item, error)
	GetForUpdate(ctx context.Context, tx *sql.Tx, id uuid.UUID) (*domain.Item, error)
	List(ctx context.Context, f domain.ItemFilter) ([]domain.Item, int, error)
	Create(ctx context.Context, i *domain.Item) error
	Update(ctx context.Context, i *domain.Item) error
	UpdateQuantity(ctx context.Context, tx *sql.Tx, id uuid.UUID, qty decimal.Decimal) error
}

type documentRepository interface {
	GetByID(ctx context.Context, docType domain.DocumentType, id uuid.UUID) (*domain.Document, error)
	GetForUpdate(ctx context.Context, tx *sql.Tx, docType domain.DocumentType, id uuid.UUID) (*domain.Document, error)
	List(ctx context.Context, f domain.DocumentFilter) ([]domain.Document, int, error)
	Create(ctx context.Context, tx *sql.Tx, d *domain.Document) error
	Update(ctx context.Context, tx *sql.Tx, d *domain.Document) error
	NextLineNo(ctx context.Context, tx *sql.Tx, documentID uuid.UUID) (int, error)
	CreateLine(ctx context.Context, tx *sql.Tx, l *domain.DocumentLine) error
	DeleteLine(ctx context.Context, tx *sql.Tx, documentID, lineID uuid.UUID) error
}

type inventoryRepository interface {
	Create(ctx context.Context, tx *sql.Tx, m *domain.InventoryMovement) error
	List(ctx context.Context, f domain.InventoryFilter) ([]domain.InventoryMovement, int, error)
}

type journalRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.JournalEntry, error)
	GetForUpdate(ctx context.Context, tx *sql.Tx, id uuid.UUID) (*domain.JournalEntry, error)
	List(ctx context.Context, f domain.JournalFilter) ([]domain.JournalEntry, int, error)
	Create(ctx context.Context, tx *sql.Tx, e *domain.JournalEntry) error
	UpdateStatus(ctx context.Context, tx *sql.Tx, e *domain.JournalEntry) error
}

type numberGenerator interface {
	Next(ctx context.Context, tx *sql.Tx, name, defaultPrefix string) (string, error)
}

type propagationRecorder interface {
	RecordPropagation(steps int, stopReason string)
}

type postingRecorder interface {
	RecordPosting(action string, lines int)
}
