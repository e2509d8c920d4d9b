package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/backoffice/internal/domain"
	"github.com/josh-kwaku/backoffice/internal/logging"
	"github.com/josh-kwaku/backoffice/internal/service"
)

type inventoryService interface {
	CreateAdjustment(ctx context.Context, in service.AdjustmentInput) (*domain.InventoryMovement, error)
	ListMovements(ctx context.Context, f domain.InventoryFilter) ([]domain.InventoryMovement, int, error)
}

type InventoryHandler struct {
	inventory inventoryService
	paging    Paging
}

func NewInventoryHandler(inventory inventoryService, paging Paging) *InventoryHandler {
	return &InventoryHandler{inventory: inventory, paging: paging}
}

type adjustmentRequest struct {
	ItemID     uuid.UUID       `json:"item_id"`
	Direction  string          `json:"direction"`
	Quantity   decimal.Decimal `json:"quantity"`
	OccurredAt *time.Time      `json:"occurred_at"`
	Memo       *string         `json:"memo"`
}

func (r adjustmentRequest) Validate() []FieldError {
	var errs []FieldError
	if r.ItemID == uuid.Nil {
		errs = append(errs, FieldError{Field: "item_id", Message: "required"})
	}
	if !domain.InventoryDirection(r.Direction).IsValid() {
		errs = append(errs, FieldError{Field: "direction", Message: "must be in or out"})
	}
	if !r.Quantity.IsPositive() {
		errs = append(errs, FieldError{Field: "quantity", Message: "must be greater than zero"})
	}
	return errs
}

type movementDTO struct {
	ID         uuid.UUID       `json:"id"`
	ItemID     uuid.UUID       `json:"item_id"`
	DocumentID *uuid.UUID      `json:"document_id"`
	Direction  string          `json:"direction"`
	Quantity   decimal.Decimal `json:"quantity"`
	OccurredAt time.Time       `json:"occurred_at"`
	Memo       *string         `json:"memo"`
	CreatedBy  string          `json:"created_by"`
	CreatedAt  time.Time       `json:"created_at"`
}

func toMovementDTO(m *domain.InventoryMovement) movementDTO {
	return movementDTO{
		ID:         m.ID,
		ItemID:     m.ItemID,
		DocumentID: m.DocumentID,
		Direction:  string(m.Direction),
		Quantity:   m.Quantity,
		OccurredAt: m.OccurredAt,
		Memo:       m.Memo,
		CreatedBy:  m.CreatedBy,
		CreatedAt:  m.CreatedAt,
	}
}

func (h *InventoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req adjustmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}
	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	m, err := h.inventory.CreateAdjustment(r.Context(), service.AdjustmentInput{
		ItemID:     req.ItemID,
		Direction:  domain.InventoryDirection(req.Direction),
		Quantity:   req.Quantity,
		OccurredAt: req.OccurredAt,
		Memo:       req.Memo,
		CreatedBy:  operator(r),
	})
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to record inventory adjustment", "error", err, "item_id", req.ItemID)
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusCreated, toMovementDTO(m))
}

func (h *InventoryHandler) List(w http.ResponseWriter, r *http.Request) {
	q := newQueryParams(r)
	f := domain.InventoryFilter{
		ItemID:     q.uuid("item_id"),
		DocumentID: q.uuid("document_id"),
		Page:       h.paging.parse(r),
	}
	if len(q.errs) > 0 {
		RespondValidationError(w, q.errs)
		return
	}

	movements, total, err := h.inventory.ListMovements(r.Context(), f)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to list inventory movements", "error", err)
		RespondDomainError(w, err)
		return
	}

	dtos := make([]movementDTO, len(movements))
	for i := range movements {
		dtos[i] = toMovementDTO(&movements[i])
	}
	RespondSuccess(w, http.StatusOK, newListPage(dtos, total, f.Page))
}
