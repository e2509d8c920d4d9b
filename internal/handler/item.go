package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/backoffice/internal/domain"
	"github.com/josh-kwaku/backoffice/internal/logging"
	"github.com/josh-kwaku/backoffice/internal/service"
)

type itemService interface {
	CreateItem(ctx context.Context, in service.CreateItemInput) (*domain.Item, error)
	GetItem(ctx context.Context, id uuid.UUID) (*domain.Item, error)
	ListItems(ctx context.Context, f domain.ItemFilter) ([]domain.Item, int, error)
	UpdateItem(ctx context.Context, id uuid.UUID, in service.UpdateItemInput) (*domain.Item, error)
}

type ItemHandler struct {
	items  itemService
	paging Paging
}

func NewItemHandler(items itemService, paging Paging) *ItemHandler {
	return &ItemHandler{items: items, paging: paging}
}

type createItemRequest struct {
	SKU                string           `json:"sku"`
	Name               string           `json:"name"`
	Kind               string           `json:"kind"`
	UnitPrice          *decimal.Decimal `json:"unit_price"`
	UnitCost           *decimal.Decimal `json:"unit_cost"`
	IncomeAccountID    *uuid.UUID       `json:"income_account_id"`
	ExpenseAccountID   *uuid.UUID       `json:"expense_account_id"`
	InventoryAccountID *uuid.UUID       `json:"inventory_account_id"`
}

func (r createItemRequest) Validate() []FieldError {
	var errs []FieldError
	if strings.TrimSpace(r.SKU) == "" {
		errs = append(errs, FieldError{Field: "sku", Message: "required"})
	}
	if strings.TrimSpace(r.Name) == "" {
		errs = append(errs, FieldError{Field: "name", Message: "required"})
	}
	if !domain.ItemKind(r.Kind).IsValid() {
		errs = append(errs, FieldError{Field: "kind", Message: "must be inventory, non_inventory, or service"})
	}
	errs = nonNegative(errs, "unit_price", r.UnitPrice)
	errs = nonNegative(errs, "unit_cost", r.UnitCost)
	return errs
}

type updateItemRequest struct {
	Name               *string          `json:"name"`
	UnitPrice          *decimal.Decimal `json:"unit_price"`
	UnitCost           *decimal.Decimal `json:"unit_cost"`
	IncomeAccountID    *uuid.UUID       `json:"income_account_id"`
	ExpenseAccountID   *uuid.UUID       `json:"expense_account_id"`
	InventoryAccountID *uuid.UUID       `json:"inventory_account_id"`
	IsActive           *bool            `json:"is_active"`
}

func (r updateItemRequest) Validate() []FieldError {
	var errs []FieldError
	if r.Name != nil && strings.TrimSpace(*r.Name) == "" {
		errs = append(errs, FieldError{Field: "name", Message: "must not be empty"})
	}
	errs = nonNegative(errs, "unit_price", r.UnitPrice)
	errs = nonNegative(errs, "unit_cost", r.UnitCost)
	return errs
}

type itemDTO struct {
	ID                 uuid.UUID       `json:"id"`
	SKU                string          `json:"sku"`
	Name               string          `json:"name"`
	Kind               string          `json:"kind"`
	UnitPrice          decimal.Decimal `json:"unit_price"`
	UnitCost           decimal.Decimal `json:"unit_cost"`
	QuantityOnHand     decimal.Decimal `json:"quantity_on_hand"`
	IncomeAccountID    *uuid.UUID      `json:"income_account_id"`
	ExpenseAccountID   *uuid.UUID      `json:"expense_account_id"`
	InventoryAccountID *uuid.UUID      `json:"inventory_account_id"`
	IsActive           bool            `json:"is_active"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

func toItemDTO(i *domain.Item) itemDTO {
	return itemDTO{
		ID:                 i.ID,
		SKU:                i.SKU,
		Name:               i.Name,
		Kind:               string(i.Kind),
		UnitPrice:          i.UnitPrice,
		UnitCost:           i.UnitCost,
		QuantityOnHand:     i.QuantityOnHand,
		IncomeAccountID:    i.IncomeAccountID,
		ExpenseAccountID:   i.ExpenseAccountID,
		InventoryAccountID: i.InventoryAccountID,
		IsActive:           i.IsActive,
		CreatedAt:          i.CreatedAt,
		UpdatedAt:          i.UpdatedAt,
	}
}

func (h *ItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}
	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	in := service.CreateItemInput{
		SKU:                req.SKU,
		Name:               req.Name,
		Kind:               domain.ItemKind(req.Kind),
		IncomeAccountID:    req.IncomeAccountID,
		ExpenseAccountID:   req.ExpenseAccountID,
		InventoryAccountID: req.InventoryAccountID,
	}
	if req.UnitPrice != nil {
		in.UnitPrice = *req.UnitPrice
	}
	if req.UnitCost != nil {
		in.UnitCost = *req.UnitCost
	}

	item, err := h.items.CreateItem(r.Context(), in)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to create item", "error", err)
		RespondDomainError(w, err)
		return
	}

	w.Header().Set("Location", "/api/v1/items/"+item.ID.String())
	RespondSuccess(w, http.StatusCreated, toItemDTO(item))
}

func (h *ItemHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		RespondAppError(w, ErrInvalidID, nil)
		return
	}

	item, err := h.items.GetItem(r.Context(), id)
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toItemDTO(item))
}

func (h *ItemHandler) List(w http.ResponseWriter, r *http.Request) {
	q := newQueryParams(r)
	f := domain.ItemFilter{
		IsActive: q.bool("is_active"),
		Search:   q.string("q"),
		Page:     h.paging.parse(r),
	}
	if k := q.string("kind"); k != "" {
		kind := domain.ItemKind(k)
		if !kind.IsValid() {
			q.errs = append(q.errs, FieldError{Field: "kind", Message: "unknown item kind"})
		}
		f.Kind = &kind
	}
	if len(q.errs) > 0 {
		RespondValidationError(w, q.errs)
		return
	}

	items, total, err := h.items.ListItems(r.Context(), f)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to list items", "error", err)
		RespondDomainError(w, err)
		return
	}

	dtos := make([]itemDTO, len(items))
	for i := range items {
		dtos[i] = toItemDTO(&items[i])
	}
	RespondSuccess(w, http.StatusOK, newListPage(dtos, total, f.Page))
}

func (h *ItemHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		RespondAppError(w, ErrInvalidID, nil)
		return
	}

	var req updateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}
	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	item, err := h.items.UpdateItem(r.Context(), id, service.UpdateItemInput{
		Name:               req.Name,
		UnitPrice:          req.UnitPrice,
		UnitCost:           req.UnitCost,
		IncomeAccountID:    req.IncomeAccountID,
		ExpenseAccountID:   req.ExpenseAccountID,
		InventoryAccountID: req.InventoryAccountID,
		IsActive:           req.IsActive,
	})
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to update item", "error", err, "item_id", id)
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toItemDTO(item))
}
