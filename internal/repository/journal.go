package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/josh-kwaku/backoffice/internal/domain"
)

const journalColumns = `id, number, entry_date, memo, status, created_by, posted_at,
	created_at, updated_at`

var journalSortable = map[string]string{
	"number":     "number",
	"entry_date": "entry_date",
	"created_at": "created_at",
}

type JournalRepository struct {
	db *sql.DB
}

func NewJournalRepository(db *sql.DB) *JournalRepository {
	return &JournalRepository{db: db}
}

func (r *JournalRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.JournalEntry, error) {
	e, err := r.get(ctx, r.db, id, false)
	if err != nil {
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	return e, nil
}

func (r *JournalRepository) GetForUpdate(ctx context.Context, tx *sql.Tx, id uuid.UUID) (*domain.JournalEntry, error) {
	e, err := r.get(ctx, tx, id, true)
	if err != nil {
		return nil, fmt.Errorf("GetForUpdate: %w", err)
	}
	return e, nil
}

func (r *JournalRepository) get(ctx context.Context, q querier, id uuid.UUID, lock bool) (*domain.JournalEntry, error) {
	query := `SELECT ` + journalColumns + ` FROM journal_entries WHERE id = $1`
	if lock {
		query += ` FOR UPDATE`
	}
	e, err := scanJournalEntry(q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	rows, err := q.QueryContext(ctx,
		`SELECT id, entry_id, line_no, account_id, debit, credit, description
		FROM journal_lines WHERE entry_id = $1 ORDER BY line_no`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("lines: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var l domain.JournalLine
		if err := rows.Scan(&l.ID, &l.EntryID, &l.LineNo, &l.AccountID, &l.Debit, &l.Credit, &l.Description); err != nil {
			return nil, fmt.Errorf("lines: scan: %w", err)
		}
		e.Lines = append(e.Lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("lines: rows: %w", err)
	}
	return e, nil
}

// List returns entry headers. An account filter matches entries with at least
// one line on that account.
func (r *JournalRepository) List(ctx context.Context, f domain.JournalFilter) ([]domain.JournalEntry, int, error) {
	var w where
	if f.Status != nil {
		w.add("status = ?", *f.Status)
	}
	if f.AccountID != nil {
		w.add("EXISTS (SELECT 1 FROM journal_lines jl WHERE jl.entry_id = journal_entries.id AND jl.account_id = ?)", *f.AccountID)
	}
	if f.DateFrom != nil {
		w.add("entry_date >= ?", *f.DateFrom)
	}
	if f.DateTo != nil {
		w.add("entry_date <= ?", *f.DateTo)
	}

	var total int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM journal_entries`+w.sql(), w.args...,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("List: count: %w", err)
	}

	query := `SELECT ` + journalColumns + ` FROM journal_entries` + w.sql()
	query += w.page(f.Page, journalSortable, "entry_date")

	rows, err := r.db.QueryContext(ctx, query, w.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("List: %w", err)
	}
	defer rows.Close()

	var entries []domain.JournalEntry
	for rows.Next() {
		e, err := scanJournalEntry(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("List: scan: %w", err)
		}
		entries = append(entries, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("List: rows: %w", err)
	}
	return entries, total, nil
}

// Create inserts the entry and all of its lines.
func (r *JournalRepository) Create(ctx context.Context, tx *sql.Tx, e *domain.JournalEntry) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO journal_entries (`+journalColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		e.ID, e.Number, e.EntryDate, e.Memo, e.Status, e.CreatedBy, e.PostedAt,
		e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("Create: %w", mapPQError(err))
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO journal_lines (id, entry_id, line_no, account_id, debit, credit, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
	)
	if err != nil {
		return fmt.Errorf("Create: prepare lines: %w", err)
	}
	defer stmt.Close()

	for _, l := range e.Lines {
		if _, err := stmt.ExecContext(ctx, l.ID, e.ID, l.LineNo, l.AccountID, l.Debit, l.Credit, l.Description); err != nil {
			return fmt.Errorf("Create: line %d: %w", l.LineNo, mapPQError(err))
		}
	}
	return nil
}

func (r *JournalRepository) UpdateStatus(ctx context.Context, tx *sql.Tx, e *domain.JournalEntry) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE journal_entries SET status = $1, posted_at = $2, updated_at = $3 WHERE id = $4`,
		e.Status, e.PostedAt, e.UpdatedAt, e.ID,
	)
	if err != nil {
		return fmt.Errorf("UpdateStatus: %w", err)
	}
	return expectOneRow(res, "UpdateStatus")
}

func scanJournalEntry(s scanner) (*domain.JournalEntry, error) {
	var e domain.JournalEntry
	err := s.Scan(
		&e.ID, &e.Number, &e.EntryDate, &e.Memo, &e.Status, &e.CreatedBy, &e.PostedAt,
		&e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}
