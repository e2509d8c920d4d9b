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

type InventoryService struct {
	movements inventoryRepository
	items     itemRepository
	db        txRunner
}

func NewInventoryService(movements inventoryRepository, items itemRepository, db txRunner) *InventoryService {
	return &InventoryService{movements: movements, items: items, db: db}
}

type AdjustmentInput struct {
	ItemID     uuid.UUID
	Direction  domain.InventoryDirection
	Quantity   decimal.Decimal
	OccurredAt *time.Time
	Memo       *string
	CreatedBy  string
}

// CreateAdjustment records a manual stock movement.
func (s *InventoryService) CreateAdjustment(ctx context.Context, in AdjustmentInput) (*domain.InventoryMovement, error) {
	if !in.Direction.IsValid() {
		return nil, fmt.Errorf("CreateAdjustment: direction %q: %w", in.Direction, domain.ErrInvalidRequest)
	}
	if !in.Quantity.IsPositive() {
		return nil, fmt.Errorf("CreateAdjustment: %w", domain.ErrInvalidAmount)
	}

	now := time.Now().UTC()
	m := &domain.InventoryMovement{
		ID:         uuid.New(),
		ItemID:     in.ItemID,
		Direction:  in.Direction,
		Quantity:   in.Quantity,
		OccurredAt: now,
		Memo:       in.Memo,
		CreatedBy:  in.CreatedBy,
		CreatedAt:  now,
	}
	if in.OccurredAt != nil {
		m.OccurredAt = in.OccurredAt.UTC()
	}

	err := s.db.InTx(ctx, func(tx *sql.Tx) error {
		return s.Record(ctx, tx, m)
	})
	if err != nil {
		return nil, fmt.Errorf("CreateAdjustment: %w", err)
	}
	return m, nil
}

// Record writes a movement and applies it to the item's quantity on hand.
// Only inventory items carry stock.
func (s *InventoryService) Record(ctx context.Context, tx *sql.Tx, m *domain.InventoryMovement) error {
	item, err := s.items.GetForUpdate(ctx, tx, m.ItemID)
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("Record: item %s does not exist: %w", m.ItemID, domain.ErrInvalidOperation)
	}
	if err != nil {
		return fmt.Errorf("Record: %w", err)
	}
	if item.Kind != domain.ItemKindInventory {
		return fmt.Errorf("Record: item %s is not stocked: %w", item.SKU, domain.ErrInvalidOperation)
	}

	if err := s.movements.Create(ctx, tx, m); err != nil {
		return fmt.Errorf("Record: %w", err)
	}

	onHand := item.QuantityOnHand.Add(m.SignedQuantity())
	if err := s.items.UpdateQuantity(ctx, tx, item.ID, onHand); err != nil {
		return fmt.Errorf("Record: %w", err)
	}

	log := logging.FromContext(ctx)
	if onHand.IsNegative() {
		log.Warn("item stock below zero", "item_id", item.ID, "sku", item.SKU, "on_hand", onHand.String())
	}
	log.Info("inventory movement recorded",
		"movement_id", m.ID,
		"item_id", item.ID,
		"direction", m.Direction,
		"quantity", m.Quantity.String(),
	)
	return nil
}

func (s *InventoryService) ListMovements(ctx context.Context, f domain.InventoryFilter) ([]domain.InventoryMovement, int, error) {
	movements, total, err := s.movements.List(ctx, f)
	if err != nil {
		return nil, 0, fmt.Errorf("ListMovements: %w", err)
	}
	return movements, total, nil
}
