package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ItemKind string

const (
	ItemKindInventory    ItemKind = "inventory"
	ItemKindNonInventory ItemKind = "non_inventory"
	ItemKindService      ItemKind = "service"
)

func (k ItemKind) IsValid() bool {
	switch k {
	case ItemKindInventory, ItemKindNonInventory, ItemKindService:
		return true
	}
	return false
}

type Item struct {
	ID                 uuid.UUID
	SKU                string
	Name               string
	Kind               ItemKind
	UnitPrice          decimal.Decimal
	UnitCost           decimal.Decimal
	QuantityOnHand     decimal.Decimal
	IncomeAccountID    *uuid.UUID
	ExpenseAccountID   *uuid.UUID
	InventoryAccountID *uuid.UUID
	IsActive           bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// AccountRefs lists the account ids the item points at.
func (i *Item) AccountRefs() []uuid.UUID {
	var ids []uuid.UUID
	for _, id := range []*uuid.UUID{i.IncomeAccountID, i.ExpenseAccountID, i.InventoryAccountID} {
		if id != nil {
			ids = append(ids, *id)
		}
	}
	return ids
}

type ItemFilter struct {
	Kind     *ItemKind
	IsActive *bool
	Search   string
	Page     Page
}
