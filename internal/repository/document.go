package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/josh-kwaku/backoffice/internal/domain"
)

const documentColumns = `id, document_type, number, party_id, status, document_date,
	due_date, memo, total, created_by, created_at, updated_at`

const documentLineColumns = `id, document_id, line_no, item_id, account_id, description,
	quantity, unit_price, amount, created_at`

var documentSortable = map[string]string{
	"number":        "number",
	"document_date": "document_date",
	"total":         "total",
	"created_at":    "created_at",
}

type DocumentRepository struct {
	db *sql.DB
}

func NewDocumentRepository(db *sql.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

type querier interface {
	rowQuerier
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// GetByID returns the document of the given type together with its lines.
func (r *DocumentRepository) GetByID(ctx context.Context, docType domain.DocumentType, id uuid.UUID) (*domain.Document, error) {
	d, err := r.get(ctx, r.db, docType, id, false)
	if err != nil {
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	return d, nil
}

// GetForUpdate locks the document header for the rest of tx.
func (r *DocumentRepository) GetForUpdate(ctx context.Context, tx *sql.Tx, docType domain.DocumentType, id uuid.UUID) (*domain.Document, error) {
	d, err := r.get(ctx, tx, docType, id, true)
	if err != nil {
		return nil, fmt.Errorf("GetForUpdate: %w", err)
	}
	return d, nil
}

func (r *DocumentRepository) get(ctx context.Context, q querier, docType domain.DocumentType, id uuid.UUID, lock bool) (*domain.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE id = $1 AND document_type = $2`
	if lock {
		query += ` FOR UPDATE`
	}
	d, err := scanDocument(q.QueryRowContext(ctx, query, id, docType))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	lines, err := r.lines(ctx, q, d.ID)
	if err != nil {
		return nil, err
	}
	d.Lines = lines
	return d, nil
}

func (r *DocumentRepository) lines(ctx context.Context, q querier, documentID uuid.UUID) ([]domain.DocumentLine, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT `+documentLineColumns+` FROM document_lines WHERE document_id = $1 ORDER BY line_no`,
		documentID,
	)
	if err != nil {
		return nil, fmt.Errorf("lines: %w", err)
	}
	defer rows.Close()

	lines := []domain.DocumentLine{}
	for rows.Next() {
		var l domain.DocumentLine
		if err := rows.Scan(
			&l.ID, &l.DocumentID, &l.LineNo, &l.ItemID, &l.AccountID, &l.Description,
			&l.Quantity, &l.UnitPrice, &l.Amount, &l.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("lines: scan: %w", err)
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("lines: rows: %w", err)
	}
	return lines, nil
}

// List returns document headers without lines.
func (r *DocumentRepository) List(ctx context.Context, f domain.DocumentFilter) ([]domain.Document, int, error) {
	var w where
	w.add("document_type = ?", f.Type)
	if f.PartyID != nil {
		w.add("party_id = ?", *f.PartyID)
	}
	if f.Status != nil {
		w.add("status = ?", *f.Status)
	}
	if f.DateFrom != nil {
		w.add("document_date >= ?", *f.DateFrom)
	}
	if f.DateTo != nil {
		w.add("document_date <= ?", *f.DateTo)
	}

	var total int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM documents`+w.sql(), w.args...,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("List: count: %w", err)
	}

	query := `SELECT ` + documentColumns + ` FROM documents` + w.sql()
	query += w.page(f.Page, documentSortable, "document_date")

	rows, err := r.db.QueryContext(ctx, query, w.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("List: %w", err)
	}
	defer rows.Close()

	var docs []domain.Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("List: scan: %w", err)
		}
		docs = append(docs, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("List: rows: %w", err)
	}
	return docs, total, nil
}

func (r *DocumentRepository) Create(ctx context.Context, tx *sql.Tx, d *domain.Document) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO documents (`+documentColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		d.ID, d.Type, d.Number, d.PartyID, d.Status, d.DocumentDate,
		d.DueDate, d.Memo, d.Total, d.CreatedBy, d.CreatedAt, d.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("Create: %w", mapPQError(err))
	}
	return nil
}

// Update writes the mutable header fields, status and total.
func (r *DocumentRepository) Update(ctx context.Context, tx *sql.Tx, d *domain.Document) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE documents SET document_date = $1, due_date = $2, memo = $3,
			status = $4, total = $5, updated_at = $6
		WHERE id = $7`,
		d.DocumentDate, d.DueDate, d.Memo, d.Status, d.Total, d.UpdatedAt, d.ID,
	)
	if err != nil {
		return fmt.Errorf("Update: %w", err)
	}
	return expectOneRow(res, "Update")
}

func (r *DocumentRepository) NextLineNo(ctx context.Context, tx *sql.Tx, documentID uuid.UUID) (int, error) {
	var n int
	err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(line_no), 0) + 1 FROM document_lines WHERE document_id = $1`,
		documentID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("NextLineNo: %w", err)
	}
	return n, nil
}

func (r *DocumentRepository) CreateLine(ctx context.Context, tx *sql.Tx, l *domain.DocumentLine) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO document_lines (`+documentLineColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		l.ID, l.DocumentID, l.LineNo, l.ItemID, l.AccountID, l.Description,
		l.Quantity, l.UnitPrice, l.Amount, l.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("CreateLine: %w", mapPQError(err))
	}
	return nil
}

func (r *DocumentRepository) DeleteLine(ctx context.Context, tx *sql.Tx, documentID, lineID uuid.UUID) error {
	res, err := tx.ExecContext(ctx,
		`DELETE FROM document_lines WHERE id = $1 AND document_id = $2`,
		lineID, documentID,
	)
	if err != nil {
		return fmt.Errorf("DeleteLine: %w", err)
	}
	return expectOneRow(res, "DeleteLine")
}

func scanDocument(s scanner) (*domain.Document, error) {
	var d domain.Document
	err := s.Scan(
		&d.ID, &d.Type, &d.Number, &d.PartyID, &d.Status, &d.DocumentDate,
		&d.DueDate, &d.Memo, &d.Total, &d.CreatedBy, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
