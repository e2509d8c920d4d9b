package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/josh-kwaku/backoffice/internal/domain"
)

const accountColumns = `id, code, name, account_type, parent_id, is_parent,
	opening_balance, running_balance, description, is_active, created_by,
	created_at, updated_at`

var accountSortable = map[string]string{
	"code":       "code",
	"name":       "name",
	"type":       "account_type",
	"created_at": "created_at",
}

type AccountRepository struct {
	db *sql.DB
}

func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	a, err := r.getByID(ctx, r.db, id)
	if err != nil {
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	return a, nil
}

func (r *AccountRepository) GetByIDTx(ctx context.Context, tx *sql.Tx, id uuid.UUID) (*domain.Account, error) {
	a, err := r.getByID(ctx, tx, id)
	if err != nil {
		return nil, fmt.Errorf("GetByIDTx: %w", err)
	}
	return a, nil
}

// GetForUpdate locks the account row for the rest of tx. Postings lock the
// leaf they touch; ancestors reached by propagation are not locked.
func (r *AccountRepository) GetForUpdate(ctx context.Context, tx *sql.Tx, id uuid.UUID) (*domain.Account, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = $1 FOR UPDATE`, id,
	)
	a, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetForUpdate: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetForUpdate: %w", err)
	}
	return a, nil
}

type rowQuerier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (r *AccountRepository) getByID(ctx context.Context, q rowQuerier, id uuid.UUID) (*domain.Account, error) {
	row := q.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id,
	)
	a, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return a, nil
}

func (r *AccountRepository) GetByCode(ctx context.Context, code string) (*domain.Account, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE code = $1`, code,
	)
	a, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByCode: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetByCode: %w", err)
	}
	return a, nil
}

func (r *AccountRepository) List(ctx context.Context, f domain.AccountFilter) ([]domain.Account, int, error) {
	var w where
	if f.Type != nil {
		w.add("account_type = ?", *f.Type)
	}
	if f.ParentID != nil {
		w.add("parent_id = ?", *f.ParentID)
	}
	if f.IsParent != nil {
		w.add("is_parent = ?", *f.IsParent)
	}
	if f.IsActive != nil {
		w.add("is_active = ?", *f.IsActive)
	}
	w.search(f.Search, "code", "name")

	var total int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM accounts`+w.sql(), w.args...,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("List: count: %w", err)
	}

	query := `SELECT ` + accountColumns + ` FROM accounts` + w.sql()
	query += w.page(f.Page, accountSortable, "code")

	accounts, err := r.query(ctx, query, w.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("List: %w", err)
	}
	return accounts, total, nil
}

// All returns the whole chart ordered by code.
func (r *AccountRepository) All(ctx context.Context) ([]domain.Account, error) {
	accounts, err := r.query(ctx, `SELECT `+accountColumns+` FROM accounts ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("All: %w", err)
	}
	return accounts, nil
}

func (r *AccountRepository) query(ctx context.Context, query string, args ...any) ([]domain.Account, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []domain.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		accounts = append(accounts, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return accounts, nil
}

func (r *AccountRepository) Create(ctx context.Context, tx *sql.Tx, a *domain.Account) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO accounts (
			id, code, name, account_type, parent_id, is_parent,
			opening_balance, running_balance, description, is_active, created_by,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		a.ID, a.Code, a.Name, a.Type, a.ParentID, a.IsParent,
		a.OpeningBalance, a.RunningBalance, a.Description, a.IsActive, a.CreatedBy,
		a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("Create: %w", mapPQError(err))
	}
	return nil
}

// Update writes the mutable fields of an account.
func (r *AccountRepository) Update(ctx context.Context, tx *sql.Tx, a *domain.Account) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE accounts SET name = $1, description = $2, is_active = $3,
			running_balance = $4, updated_at = $5
		WHERE id = $6`,
		a.Name, a.Description, a.IsActive, a.RunningBalance, a.UpdatedAt, a.ID,
	)
	if err != nil {
		return fmt.Errorf("Update: %w", mapPQError(err))
	}
	return expectOneRow(res, "Update")
}

// SaveBalances persists the running balance of every account given. It is the
// single save that follows a propagation walk.
func (r *AccountRepository) SaveBalances(ctx context.Context, tx *sql.Tx, accounts []*domain.Account) error {
	if len(accounts) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx,
		`UPDATE accounts SET running_balance = $1, updated_at = now() WHERE id = $2`,
	)
	if err != nil {
		return fmt.Errorf("SaveBalances: prepare: %w", err)
	}
	defer stmt.Close()

	for _, a := range accounts {
		if _, err := stmt.ExecContext(ctx, a.RunningBalance, a.ID); err != nil {
			return fmt.Errorf("SaveBalances: %s: %w", a.ID, err)
		}
	}
	return nil
}

func (r *AccountRepository) CountChildren(ctx context.Context, tx *sql.Tx, id uuid.UUID) (int, error) {
	var n int
	err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM accounts WHERE parent_id = $1`, id,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("CountChildren: %w", err)
	}
	return n, nil
}

// IsReferenced reports whether journal lines, document lines or items point
// at the account.
func (r *AccountRepository) IsReferenced(ctx context.Context, tx *sql.Tx, id uuid.UUID) (bool, error) {
	var referenced bool
	err := tx.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM journal_lines WHERE account_id = $1)
			OR EXISTS (SELECT 1 FROM document_lines WHERE account_id = $1)
			OR EXISTS (SELECT 1 FROM items
				WHERE income_account_id = $1 OR expense_account_id = $1 OR inventory_account_id = $1)`,
		id,
	).Scan(&referenced)
	if err != nil {
		return false, fmt.Errorf("IsReferenced: %w", err)
	}
	return referenced, nil
}

func (r *AccountRepository) Delete(ctx context.Context, tx *sql.Tx, id uuid.UUID) error {
	res, err := tx.ExecContext(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("Delete: %w", mapPQError(err))
	}
	return expectOneRow(res, "Delete")
}

func scanAccount(s scanner) (*domain.Account, error) {
	var a domain.Account
	err := s.Scan(
		&a.ID, &a.Code, &a.Name, &a.Type, &a.ParentID, &a.IsParent,
		&a.OpeningBalance, &a.RunningBalance, &a.Description, &a.IsActive, &a.CreatedBy,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func expectOneRow(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: rows affected: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	}
	return nil
}
