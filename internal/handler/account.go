package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/backoffice/internal/auth"
	"github.com/josh-kwaku/backoffice/internal/domain"
	"github.com/josh-kwaku/backoffice/internal/logging"
	"github.com/josh-kwaku/backoffice/internal/service"
)

type accountService interface {
	CreateAccount(ctx context.Context, in service.CreateAccountInput) (*domain.Account, error)
	GetAccount(ctx context.Context, id uuid.UUID) (*domain.Account, error)
	ListAccounts(ctx context.Context, f domain.AccountFilter) ([]domain.Account, int, error)
	UpdateAccount(ctx context.Context, id uuid.UUID, in service.UpdateAccountInput) (*domain.Account, error)
	DeleteAccount(ctx context.Context, id uuid.UUID) error
}

type AccountHandler struct {
	accounts accountService
	paging   Paging
}

func NewAccountHandler(accounts accountService, paging Paging) *AccountHandler {
	return &AccountHandler{accounts: accounts, paging: paging}
}

type createAccountRequest struct {
	Code           string           `json:"code"`
	Name           string           `json:"name"`
	Type           string           `json:"type"`
	ParentID       *uuid.UUID       `json:"parent_id"`
	IsParent       bool             `json:"is_parent"`
	OpeningBalance *decimal.Decimal `json:"opening_balance"`
	RunningBalance *decimal.Decimal `json:"running_balance"`
	Description    *string          `json:"description"`
}

func (r createAccountRequest) Validate() []FieldError {
	var errs []FieldError
	if strings.TrimSpace(r.Code) == "" {
		errs = append(errs, FieldError{Field: "code", Message: "required"})
	}
	if strings.TrimSpace(r.Name) == "" {
		errs = append(errs, FieldError{Field: "name", Message: "required"})
	}
	if r.Type == "" {
		errs = append(errs, FieldError{Field: "type", Message: "required"})
	} else if !domain.AccountType(r.Type).IsValid() {
		errs = append(errs, FieldError{Field: "type", Message: "must be asset, liability, equity, income, or expense"})
	}
	return errs
}

type updateAccountRequest struct {
	Name           *string          `json:"name"`
	Description    *string          `json:"description"`
	IsActive       *bool            `json:"is_active"`
	RunningBalance *decimal.Decimal `json:"running_balance"`
}

func (r updateAccountRequest) Validate() []FieldError {
	var errs []FieldError
	if r.Name != nil && strings.TrimSpace(*r.Name) == "" {
		errs = append(errs, FieldError{Field: "name", Message: "must not be empty"})
	}
	if r.Name == nil && r.Description == nil && r.IsActive == nil && r.RunningBalance == nil {
		errs = append(errs, FieldError{Field: "body", Message: "at least one field is required"})
	}
	return errs
}

type accountDTO struct {
	ID             uuid.UUID        `json:"id"`
	Code           string           `json:"code"`
	Name           string           `json:"name"`
	Type           string           `json:"type"`
	ParentID       *uuid.UUID       `json:"parent_id"`
	IsParent       bool             `json:"is_parent"`
	OpeningBalance decimal.Decimal  `json:"opening_balance"`
	RunningBalance *decimal.Decimal `json:"running_balance"`
	Description    *string          `json:"description"`
	IsActive       bool             `json:"is_active"`
	CreatedBy      string           `json:"created_by"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

func toAccountDTO(a *domain.Account) accountDTO {
	dto := accountDTO{
		ID:             a.ID,
		Code:           a.Code,
		Name:           a.Name,
		Type:           string(a.Type),
		ParentID:       a.ParentID,
		IsParent:       a.IsParent,
		OpeningBalance: a.OpeningBalance,
		Description:    a.Description,
		IsActive:       a.IsActive,
		CreatedBy:      a.CreatedBy,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}
	if a.RunningBalance.Valid {
		b := a.RunningBalance.Decimal
		dto.RunningBalance = &b
	}
	return dto
}

func (h *AccountHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}
	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	in := service.CreateAccountInput{
		Code:           strings.TrimSpace(req.Code),
		Name:           strings.TrimSpace(req.Name),
		Type:           domain.AccountType(req.Type),
		ParentID:       req.ParentID,
		IsParent:       req.IsParent,
		RunningBalance: req.RunningBalance,
		Description:    req.Description,
		CreatedBy:      operator(r),
	}
	if req.OpeningBalance != nil {
		in.OpeningBalance = *req.OpeningBalance
	}

	account, err := h.accounts.CreateAccount(r.Context(), in)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to create account", "error", err)
		RespondDomainError(w, err)
		return
	}

	w.Header().Set("Location", "/api/v1/accounts/"+account.ID.String())
	RespondSuccess(w, http.StatusCreated, toAccountDTO(account))
}

func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		RespondAppError(w, ErrInvalidID, nil)
		return
	}

	account, err := h.accounts.GetAccount(r.Context(), id)
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toAccountDTO(account))
}

func (h *AccountHandler) List(w http.ResponseWriter, r *http.Request) {
	q := newQueryParams(r)
	f := domain.AccountFilter{
		ParentID: q.uuid("parent_id"),
		IsParent: q.bool("is_parent"),
		IsActive: q.bool("is_active"),
		Search:   q.string("q"),
		Page:     h.paging.parse(r),
	}
	if t := q.string("type"); t != "" {
		at := domain.AccountType(t)
		if !at.IsValid() {
			q.errs = append(q.errs, FieldError{Field: "type", Message: "unknown account type"})
		}
		f.Type = &at
	}
	if len(q.errs) > 0 {
		RespondValidationError(w, q.errs)
		return
	}

	accounts, total, err := h.accounts.ListAccounts(r.Context(), f)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to list accounts", "error", err)
		RespondDomainError(w, err)
		return
	}

	dtos := make([]accountDTO, len(accounts))
	for i := range accounts {
		dtos[i] = toAccountDTO(&accounts[i])
	}
	RespondSuccess(w, http.StatusOK, newListPage(dtos, total, f.Page))
}

func (h *AccountHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		RespondAppError(w, ErrInvalidID, nil)
		return
	}

	var req updateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}
	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	account, err := h.accounts.UpdateAccount(r.Context(), id, service.UpdateAccountInput{
		Name:           req.Name,
		Description:    req.Description,
		IsActive:       req.IsActive,
		RunningBalance: req.RunningBalance,
	})
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to update account", "error", err, "account_id", id)
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toAccountDTO(account))
}

func (h *AccountHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		RespondAppError(w, ErrInvalidID, nil)
		return
	}

	if err := h.accounts.DeleteAccount(r.Context(), id); err != nil {
		logging.FromContext(r.Context()).Warn("failed to delete account", "error", err, "account_id", id)
		RespondDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func operator(r *http.Request) string {
	op, _ := auth.OperatorFromContext(r.Context())
	return op
}
