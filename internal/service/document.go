package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/backoffice/internal/domain"
	"github.com/josh-kwaku/backoffice/internal/logging"
)

type stockRecorder interface {
	Record(ctx context.Context, tx *sql.Tx, m *domain.InventoryMovement) error
}

type DocumentService struct {
	documents documentRepository
	parties   partyRepository
	items     itemRepository
	accounts  accountRepository
	stock     stockRecorder
	numbers   numberGenerator
	db        txRunner
}

func NewDocumentService(
	documents documentRepository,
	parties partyRepository,
	items itemRepository,
	accounts accountRepository,
	stock stockRecorder,
	numbers numberGenerator,
	db txRunner,
) *DocumentService {
	return &DocumentService{
		documents: documents,
		parties:   parties,
		items:     items,
		accounts:  accounts,
		stock:     stock,
		numbers:   numbers,
		db:        db,
	}
}

type LineInput struct {
	ItemID      *uuid.UUID
	AccountID   *uuid.UUID
	Description string
	Quantity    decimal.Decimal
	UnitPrice   *decimal.Decimal
}

type CreateDocumentInput struct {
	PartyID      uuid.UUID
	DocumentDate time.Time
	DueDate      *time.Time
	Memo         *string
	Lines        []LineInput
	CreatedBy    string
}

type UpdateDocumentInput struct {
	DocumentDate *time.Time
	DueDate      *time.Time
	Memo         *string
}

func (s *DocumentService) CreateDocument(ctx context.Context, docType domain.DocumentType, in CreateDocumentInput) (*domain.Document, error) {
	if !docType.IsValid() {
		return nil, fmt.Errorf("CreateDocument: %q: %w", docType, domain.ErrInvalidDocumentType)
	}
	if _, err := resolveParty(ctx, s.parties, in.PartyID, docType.PartyKind()); err != nil {
		return nil, fmt.Errorf("CreateDocument: %w", err)
	}

	now := time.Now().UTC()
	doc := &domain.Document{
		ID:           uuid.New(),
		Type:         docType,
		PartyID:      in.PartyID,
		Status:       domain.DocumentStatusDraft,
		DocumentDate: in.DocumentDate,
		DueDate:      in.DueDate,
		Memo:         in.Memo,
		Total:        decimal.Zero,
		CreatedBy:    in.CreatedBy,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if doc.DocumentDate.IsZero() {
		doc.DocumentDate = now.Truncate(24 * time.Hour)
	}

	err := s.db.InTx(ctx, func(tx *sql.Tx) error {
		number, err := s.numbers.Next(ctx, tx, string(docType), docType.NumberPrefix())
		if err != nil {
			return err
		}
		doc.Number = number

		if err := s.documents.Create(ctx, tx, doc); err != nil {
			return err
		}
		for i, li := range in.Lines {
			line, err := s.buildLine(ctx, tx, doc, li, i+1)
			if err != nil {
				return fmt.Errorf("line %d: %w", i+1, err)
			}
			if err := s.documents.CreateLine(ctx, tx, line); err != nil {
				return err
			}
			doc.Lines = append(doc.Lines, *line)
		}

		doc.Total = domain.SumLines(doc.Lines)
		return s.documents.Update(ctx, tx, doc)
	})
	if err != nil {
		return nil, fmt.Errorf("CreateDocument: %w", err)
	}

	logging.FromContext(ctx).Info("document created",
		"document_id", doc.ID,
		"type", doc.Type,
		"number", doc.Number,
		"lines", len(doc.Lines),
	)
	return doc, nil
}

func (s *DocumentService) GetDocument(ctx context.Context, docType domain.DocumentType, id uuid.UUID) (*domain.Document, error) {
	doc, err := s.documents.GetByID(ctx, docType, id)
	if err != nil {
		return nil, fmt.Errorf("GetDocument: %w", err)
	}
	return doc, nil
}

func (s *DocumentService) ListDocuments(ctx context.Context, f domain.DocumentFilter) ([]domain.Document, int, error) {
	if !f.Type.IsValid() {
		return nil, 0, fmt.Errorf("ListDocuments: %w", domain.ErrInvalidDocumentType)
	}
	docs, total, err := s.documents.List(ctx, f)
	if err != nil {
		return nil, 0, fmt.Errorf("ListDocuments: %w", err)
	}
	return docs, total, nil
}

func (s *DocumentService) UpdateDocument(ctx context.Context, docType domain.DocumentType, id uuid.UUID, in UpdateDocumentInput) (*domain.Document, error) {
	var doc *domain.Document
	err := s.db.InTx(ctx, func(tx *sql.Tx) error {
		d, err := s.documents.GetForUpdate(ctx, tx, docType, id)
		if err != nil {
			return err
		}
		if !d.Status.Editable() {
			return fmt.Errorf("document is %s: %w", d.Status, domain.ErrInvalidOperation)
		}
		if in.DocumentDate != nil {
			d.DocumentDate = *in.DocumentDate
		}
		if in.DueDate != nil {
			d.DueDate = in.DueDate
		}
		if in.Memo != nil {
			d.Memo = in.Memo
		}
		d.UpdatedAt = time.Now().UTC()
		doc = d
		return s.documents.Update(ctx, tx, d)
	})
	if err != nil {
		return nil, fmt.Errorf("UpdateDocument: %w", err)
	}
	return doc, nil
}

// TransitionStatus moves a document along its lifecycle. Opening a stock
// document moves stock for its inventory lines; voiding an open one moves it
// back.
func (s *DocumentService) TransitionStatus(ctx context.Context, docType domain.DocumentType, id uuid.UUID, target domain.DocumentStatus, operator string) (*domain.Document, error) {
	if !target.IsValid() {
		return nil, fmt.Errorf("TransitionStatus: status %q: %w", target, domain.ErrInvalidRequest)
	}

	var doc *domain.Document
	var from domain.DocumentStatus
	err := s.db.InTx(ctx, func(tx *sql.Tx) error {
		d, err := s.documents.GetForUpdate(ctx, tx, docType, id)
		if err != nil {
			return err
		}
		from = d.Status
		if !from.CanTransitionTo(target) {
			return fmt.Errorf("%s to %s: %w", from, target, domain.ErrInvalidTransition)
		}

		dir := docType.StockDirection()
		switch {
		case from == domain.DocumentStatusDraft && target == domain.DocumentStatusOpen:
		case from == domain.DocumentStatusOpen && target == domain.DocumentStatusVoid:
			dir = opposite(dir)
		default:
			dir = ""
		}
		if dir != "" {
			for i := range d.Lines {
				if err := s.moveStock(ctx, tx, d, &d.Lines[i], dir, operator); err != nil {
					return err
				}
			}
		}

		d.Status = target
		d.UpdatedAt = time.Now().UTC()
		doc = d
		return s.documents.Update(ctx, tx, d)
	})
	if err != nil {
		return nil, fmt.Errorf("TransitionStatus: %w", err)
	}

	logging.FromContext(ctx).Info("document status changed",
		"document_id", id,
		"from", from,
		"to", target,
	)
	return doc, nil
}

func (s *DocumentService) AddLine(ctx context.Context, docType domain.DocumentType, id uuid.UUID, in LineInput, operator string) (*domain.Document, error) {
	var doc *domain.Document
	err := s.db.InTx(ctx, func(tx *sql.Tx) error {
		d, err := s.documents.GetForUpdate(ctx, tx, docType, id)
		if err != nil {
			return err
		}
		if !d.Status.Editable() {
			return fmt.Errorf("document is %s: %w", d.Status, domain.ErrInvalidOperation)
		}

		lineNo, err := s.documents.NextLineNo(ctx, tx, d.ID)
		if err != nil {
			return err
		}
		line, err := s.buildLine(ctx, tx, d, in, lineNo)
		if err != nil {
			return err
		}
		if err := s.documents.CreateLine(ctx, tx, line); err != nil {
			return err
		}
		d.Lines = append(d.Lines, *line)

		if d.Status == domain.DocumentStatusOpen {
			if err := s.moveStock(ctx, tx, d, line, docType.StockDirection(), operator); err != nil {
				return err
			}
		}

		d.Total = domain.SumLines(d.Lines)
		d.UpdatedAt = time.Now().UTC()
		doc = d
		return s.documents.Update(ctx, tx, d)
	})
	if err != nil {
		return nil, fmt.Errorf("AddLine: %w", err)
	}
	return doc, nil
}

// DeleteLine removes a line from a draft document.
func (s *DocumentService) DeleteLine(ctx context.Context, docType domain.DocumentType, id, lineID uuid.UUID) (*domain.Document, error) {
	var doc *domain.Document
	err := s.db.InTx(ctx, func(tx *sql.Tx) error {
		d, err := s.documents.GetForUpdate(ctx, tx, docType, id)
		if err != nil {
			return err
		}
		if d.Status != domain.DocumentStatusDraft {
			return fmt.Errorf("document is %s: %w", d.Status, domain.ErrInvalidOperation)
		}
		if err := s.documents.DeleteLine(ctx, tx, d.ID, lineID); err != nil {
			return err
		}

		kept := d.Lines[:0]
		for _, l := range d.Lines {
			if l.ID != lineID {
				kept = append(kept, l)
			}
		}
		d.Lines = kept
		d.Total = domain.SumLines(d.Lines)
		d.UpdatedAt = time.Now().UTC()
		doc = d
		return s.documents.Update(ctx, tx, d)
	})
	if err != nil {
		return nil, fmt.Errorf("DeleteLine: %w", err)
	}
	return doc, nil
}

// buildLine validates a line and resolves its references. References to
// items or accounts that do not exist are invalid operations.
func (s *DocumentService) buildLine(ctx context.Context, tx *sql.Tx, doc *domain.Document, in LineInput, lineNo int) (*domain.DocumentLine, error) {
	if in.ItemID == nil && in.AccountID == nil {
		return nil, fmt.Errorf("line needs an item or an account: %w", domain.ErrInvalidRequest)
	}
	if !in.Quantity.IsPositive() {
		return nil, fmt.Errorf("quantity: %w", domain.ErrInvalidAmount)
	}
	if in.UnitPrice != nil && in.UnitPrice.IsNegative() {
		return nil, fmt.Errorf("unit price: %w", domain.ErrInvalidAmount)
	}

	price := decimal.Zero
	if in.UnitPrice != nil {
		price = *in.UnitPrice
	}

	if in.ItemID != nil {
		item, err := s.items.GetByID(ctx, *in.ItemID)
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("item %s does not exist: %w", *in.ItemID, domain.ErrInvalidOperation)
		}
		if err != nil {
			return nil, err
		}
		if in.UnitPrice == nil {
			price = item.UnitCost
			if doc.Type.PartyKind() == domain.PartyKindCustomer {
				price = item.UnitPrice
			}
		}
	}
	if in.AccountID != nil {
		_, err := s.accounts.GetByIDTx(ctx, tx, *in.AccountID)
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("account %s does not exist: %w", *in.AccountID, domain.ErrInvalidOperation)
		}
		if err != nil {
			return nil, err
		}
	}

	return &domain.DocumentLine{
		ID:          uuid.New(),
		DocumentID:  doc.ID,
		LineNo:      lineNo,
		ItemID:      in.ItemID,
		AccountID:   in.AccountID,
		Description: in.Description,
		Quantity:    in.Quantity,
		UnitPrice:   price,
		Amount:      domain.LineAmount(in.Quantity, price),
		CreatedAt:   time.Now().UTC(),
	}, nil
}

// moveStock records a movement for an inventory item line. Lines without an
// item, lines for unstocked items and documents that do not move stock are
// skipped.
func (s *DocumentService) moveStock(ctx context.Context, tx *sql.Tx, doc *domain.Document, line *domain.DocumentLine, dir domain.InventoryDirection, operator string) error {
	if dir == "" || line.ItemID == nil {
		return nil
	}
	item, err := s.items.GetByID(ctx, *line.ItemID)
	if err != nil {
		return err
	}
	if item.Kind != domain.ItemKindInventory {
		return nil
	}

	now := time.Now().UTC()
	return s.stock.Record(ctx, tx, &domain.InventoryMovement{
		ID:         uuid.New(),
		ItemID:     item.ID,
		DocumentID: &doc.ID,
		Direction:  dir,
		Quantity:   line.Quantity,
		OccurredAt: now,
		Memo:       &doc.Number,
		CreatedBy:  operator,
		CreatedAt:  now,
	})
}

func opposite(d domain.InventoryDirection) domain.InventoryDirection {
	switch d {
	case domain.InventoryIn:
		return domain.InventoryOut
	case domain.InventoryOut:
		return domain.InventoryIn
	}
	return ""
}
