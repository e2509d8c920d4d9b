package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/backoffice/internal/domain"
	"github.com/josh-kwaku/backoffice/internal/logging"
)

type ItemService struct {
	items    itemRepository
	accounts accountRepository
}

func NewItemService(items itemRepository, accounts accountRepository) *ItemService {
	return &ItemService{items: items, accounts: accounts}
}

type CreateItemInput struct {
	SKU                string
	Name               string
	Kind               domain.ItemKind
	UnitPrice          decimal.Decimal
	UnitCost           decimal.Decimal
	IncomeAccountID    *uuid.UUID
	ExpenseAccountID   *uuid.UUID
	InventoryAccountID *uuid.UUID
}

type UpdateItemInput struct {
	Name               *string
	UnitPrice          *decimal.Decimal
	UnitCost           *decimal.Decimal
	IncomeAccountID    *uuid.UUID
	ExpenseAccountID   *uuid.UUID
	InventoryAccountID *uuid.UUID
	IsActive           *bool
}

func (s *ItemService) CreateItem(ctx context.Context, in CreateItemInput) (*domain.Item, error) {
	sku, name := strings.TrimSpace(in.SKU), strings.TrimSpace(in.Name)
	if sku == "" || name == "" {
		return nil, fmt.Errorf("CreateItem: sku and name are required: %w", domain.ErrInvalidRequest)
	}
	if !in.Kind.IsValid() {
		return nil, fmt.Errorf("CreateItem: kind %q: %w", in.Kind, domain.ErrInvalidRequest)
	}
	if in.UnitPrice.IsNegative() || in.UnitCost.IsNegative() {
		return nil, fmt.Errorf("CreateItem: negative price: %w", domain.ErrInvalidAmount)
	}

	now := time.Now().UTC()
	item := &domain.Item{
		ID:                 uuid.New(),
		SKU:                sku,
		Name:               name,
		Kind:               in.Kind,
		UnitPrice:          in.UnitPrice,
		UnitCost:           in.UnitCost,
		QuantityOnHand:     decimal.Zero,
		IncomeAccountID:    in.IncomeAccountID,
		ExpenseAccountID:   in.ExpenseAccountID,
		InventoryAccountID: in.InventoryAccountID,
		IsActive:           true,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := s.checkAccounts(ctx, item); err != nil {
		return nil, fmt.Errorf("CreateItem: %w", err)
	}
	if err := s.items.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("CreateItem: %w", err)
	}

	logging.FromContext(ctx).Info("item created", "item_id", item.ID, "sku", item.SKU)
	return item, nil
}

func (s *ItemService) GetItem(ctx context.Context, id uuid.UUID) (*domain.Item, error) {
	item, err := s.items.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("GetItem: %w", err)
	}
	return item, nil
}

func (s *ItemService) ListItems(ctx context.Context, f domain.ItemFilter) ([]domain.Item, int, error) {
	items, total, err := s.items.List(ctx, f)
	if err != nil {
		return nil, 0, fmt.Errorf("ListItems: %w", err)
	}
	return items, total, nil
}

func (s *ItemService) UpdateItem(ctx context.Context, id uuid.UUID, in UpdateItemInput) (*domain.Item, error) {
	item, err := s.items.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("UpdateItem: %w", err)
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, fmt.Errorf("UpdateItem: name must not be empty: %w", domain.ErrInvalidRequest)
		}
		item.Name = name
	}
	if in.UnitPrice != nil {
		item.UnitPrice = *in.UnitPrice
	}
	if in.UnitCost != nil {
		item.UnitCost = *in.UnitCost
	}
	if item.UnitPrice.IsNegative() || item.UnitCost.IsNegative() {
		return nil, fmt.Errorf("UpdateItem: negative price: %w", domain.ErrInvalidAmount)
	}
	if in.IncomeAccountID != nil {
		item.IncomeAccountID = in.IncomeAccountID
	}
	if in.ExpenseAccountID != nil {
		item.ExpenseAccountID = in.ExpenseAccountID
	}
	if in.InventoryAccountID != nil {
		item.InventoryAccountID = in.InventoryAccountID
	}
	if in.IsActive != nil {
		item.IsActive = *in.IsActive
	}
	item.UpdatedAt = time.Now().UTC()

	if err := s.checkAccounts(ctx, item); err != nil {
		return nil, fmt.Errorf("UpdateItem: %w", err)
	}
	if err := s.items.Update(ctx, item); err != nil {
		return nil, fmt.Errorf("UpdateItem: %w", err)
	}
	return item, nil
}

func (s *ItemService) checkAccounts(ctx context.Context, item *domain.Item) error {
	for _, id := range item.AccountRefs() {
		_, err := s.accounts.GetByID(ctx, id)
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("account %s does not exist: %w", id, domain.ErrInvalidOperation)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
