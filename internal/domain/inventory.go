package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type InventoryDirection string

const (
	InventoryIn  InventoryDirection = "in"
	InventoryOut InventoryDirection = "out"
)

func (d InventoryDirection) IsValid() bool {
	return d == InventoryIn || d == InventoryOut
}

type InventoryMovement struct {
	ID         uuid.UUID
	ItemID     uuid.UUID
	DocumentID *uuid.UUID
	Direction  InventoryDirection
	Quantity   decimal.Decimal
	OccurredAt time.Time
	Memo       *string
	CreatedBy  string
	CreatedAt  time.Time
}

// SignedQuantity is positive for inbound movements and negative for outbound ones.
func (m *InventoryMovement) SignedQuantity() decimal.Decimal {
	if m.Direction == InventoryOut {
		return m.Quantity.Neg()
	}
	return m.Quantity
}

type InventoryFilter struct {
	ItemID     *uuid.UUID
	DocumentID *uuid.UUID
	Page       Page
}
