package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/backoffice/internal/domain"
)

const itemColumns = `id, sku, name, kind, unit_price, unit_cost, quantity_on_hand,
	income_account_id, expense_account_id, inventory_account_id, is_active,
	created_at, updated_at`

var itemSortable = map[string]string{
	"sku":        "sku",
	"name":       "name",
	"created_at": "created_at",
}

type ItemRepository struct {
	db *sql.DB
}

func NewItemRepository(db *sql.DB) *ItemRepository {
	return &ItemRepository{db: db}
}

func (r *ItemRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Item, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE id = $1`, id,
	)
	i, err := scanItem(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByID: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	return i, nil
}

// GetForUpdate locks the item row for a stock change.
func (r *ItemRepository) GetForUpdate(ctx context.Context, tx *sql.Tx, id uuid.UUID) (*domain.Item, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE id = $1 FOR UPDATE`, id,
	)
	i, err := scanItem(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetForUpdate: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetForUpdate: %w", err)
	}
	return i, nil
}

func (r *ItemRepository) List(ctx context.Context, f domain.ItemFilter) ([]domain.Item, int, error) {
	var w where
	if f.Kind != nil {
		w.add("kind = ?", *f.Kind)
	}
	if f.IsActive != nil {
		w.add("is_active = ?", *f.IsActive)
	}
	w.search(f.Search, "sku", "name")

	var total int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM items`+w.sql(), w.args...,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("List: count: %w", err)
	}

	query := `SELECT ` + itemColumns + ` FROM items` + w.sql()
	query += w.page(f.Page, itemSortable, "sku")

	rows, err := r.db.QueryContext(ctx, query, w.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("List: %w", err)
	}
	defer rows.Close()

	var items []domain.Item
	for rows.Next() {
		i, err := scanItem(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("List: scan: %w", err)
		}
		items = append(items, *i)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("List: rows: %w", err)
	}
	return items, total, nil
}

func (r *ItemRepository) Create(ctx context.Context, i *domain.Item) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO items (`+itemColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		i.ID, i.SKU, i.Name, i.Kind, i.UnitPrice, i.UnitCost, i.QuantityOnHand,
		i.IncomeAccountID, i.ExpenseAccountID, i.InventoryAccountID, i.IsActive,
		i.CreatedAt, i.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("Create: %w", mapPQError(err))
	}
	return nil
}

func (r *ItemRepository) Update(ctx context.Context, i *domain.Item) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE items SET name = $1, unit_price = $2, unit_cost = $3,
			income_account_id = $4, expense_account_id = $5, inventory_account_id = $6,
			is_active = $7, updated_at = $8
		WHERE id = $9`,
		i.Name, i.UnitPrice, i.UnitCost,
		i.IncomeAccountID, i.ExpenseAccountID, i.InventoryAccountID,
		i.IsActive, i.UpdatedAt, i.ID,
	)
	if err != nil {
		return fmt.Errorf("Update: %w", mapPQError(err))
	}
	return expectOneRow(res, "Update")
}

func (r *ItemRepository) UpdateQuantity(ctx context.Context, tx *sql.Tx, id uuid.UUID, qty decimal.Decimal) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE items SET quantity_on_hand = $1, updated_at = now() WHERE id = $2`,
		qty, id,
	)
	if err != nil {
		return fmt.Errorf("UpdateQuantity: %w", err)
	}
	return expectOneRow(res, "UpdateQuantity")
}

func scanItem(s scanner) (*domain.Item, error) {
	var i domain.Item
	err := s.Scan(
		&i.ID, &i.SKU, &i.Name, &i.Kind, &i.UnitPrice, &i.UnitCost, &i.QuantityOnHand,
		&i.IncomeAccountID, &i.ExpenseAccountID, &i.InventoryAccountID, &i.IsActive,
		&i.CreatedAt, &i.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &i, nil
}
