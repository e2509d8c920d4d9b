package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/josh-kwaku/backoffice/internal/domain"
)

const inventoryColumns = `id, item_id, document_id, direction, quantity, occurred_at,
	memo, created_by, created_at`

var inventorySortable = map[string]string{
	"occurred_at": "occurred_at",
	"quantity":    "quantity",
}

type InventoryRepository struct {
	db *sql.DB
}

func NewInventoryRepository(db *sql.DB) *InventoryRepository {
	return &InventoryRepository{db: db}
}

func (r *InventoryRepository) Create(ctx context.Context, tx *sql.Tx, m *domain.InventoryMovement) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO inventory_movements (`+inventoryColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		m.ID, m.ItemID, m.DocumentID, m.Direction, m.Quantity, m.OccurredAt,
		m.Memo, m.CreatedBy, m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("Create: %w", mapPQError(err))
	}
	return nil
}

func (r *InventoryRepository) List(ctx context.Context, f domain.InventoryFilter) ([]domain.InventoryMovement, int, error) {
	var w where
	if f.ItemID != nil {
		w.add("item_id = ?", *f.ItemID)
	}
	if f.DocumentID != nil {
		w.add("document_id = ?", *f.DocumentID)
	}

	var total int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM inventory_movements`+w.sql(), w.args...,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("List: count: %w", err)
	}

	query := `SELECT ` + inventoryColumns + ` FROM inventory_movements` + w.sql()
	query += w.page(f.Page, inventorySortable, "occurred_at")

	rows, err := r.db.QueryContext(ctx, query, w.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("List: %w", err)
	}
	defer rows.Close()

	var movements []domain.InventoryMovement
	for rows.Next() {
		var m domain.InventoryMovement
		if err := rows.Scan(
			&m.ID, &m.ItemID, &m.DocumentID, &m.Direction, &m.Quantity, &m.OccurredAt,
			&m.Memo, &m.CreatedBy, &m.CreatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("List: scan: %w", err)
		}
		movements = append(movements, m)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("List: rows: %w", err)
	}
	return movements, total, nil
}
