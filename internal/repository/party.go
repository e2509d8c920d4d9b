package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/josh-kwaku/backoffice/internal/domain"
)

const partyColumns = `id, kind, name, email, phone, is_active, created_at, updated_at`

var partySortable = map[string]string{
	"name":       "name",
	"created_at": "created_at",
}

type PartyRepository struct {
	db *sql.DB
}

func NewPartyRepository(db *sql.DB) *PartyRepository {
	return &PartyRepository{db: db}
}

func (r *PartyRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Party, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+partyColumns+` FROM parties WHERE id = $1`, id,
	)
	p, err := scanParty(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByID: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	return p, nil
}

func (r *PartyRepository) List(ctx context.Context, f domain.PartyFilter) ([]domain.Party, int, error) {
	var w where
	w.add("kind = ?", f.Kind)
	if f.IsActive != nil {
		w.add("is_active = ?", *f.IsActive)
	}
	w.search(f.Search, "name", "email")

	var total int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM parties`+w.sql(), w.args...,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("List: count: %w", err)
	}

	query := `SELECT ` + partyColumns + ` FROM parties` + w.sql()
	query += w.page(f.Page, partySortable, "name")

	rows, err := r.db.QueryContext(ctx, query, w.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("List: %w", err)
	}
	defer rows.Close()

	var parties []domain.Party
	for rows.Next() {
		p, err := scanParty(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("List: scan: %w", err)
		}
		parties = append(parties, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("List: rows: %w", err)
	}
	return parties, total, nil
}

func (r *PartyRepository) Create(ctx context.Context, p *domain.Party) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO parties (`+partyColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		p.ID, p.Kind, p.Name, p.Email, p.Phone, p.IsActive, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("Create: %w", mapPQError(err))
	}
	return nil
}

func (r *PartyRepository) Update(ctx context.Context, p *domain.Party) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE parties SET name = $1, email = $2, phone = $3, is_active = $4, updated_at = $5
		WHERE id = $6`,
		p.Name, p.Email, p.Phone, p.IsActive, p.UpdatedAt, p.ID,
	)
	if err != nil {
		return fmt.Errorf("Update: %w", mapPQError(err))
	}
	return expectOneRow(res, "Update")
}

func scanParty(s scanner) (*domain.Party, error) {
	var p domain.Party
	err := s.Scan(&p.ID, &p.Kind, &p.Name, &p.Email, &p.Phone, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
