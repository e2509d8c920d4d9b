package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/josh-kwaku/backoffice/internal/domain"
	"github.com/josh-kwaku/backoffice/internal/logging"
	"github.com/josh-kwaku/backoffice/internal/service"
)

type partyService interface {
	CreateParty(ctx context.Context, kind domain.PartyKind, in service.CreatePartyInput) (*domain.Party, error)
	GetParty(ctx context.Context, kind domain.PartyKind, id uuid.UUID) (*domain.Party, error)
	ListParties(ctx context.Context, f domain.PartyFilter) ([]domain.Party, int, error)
	UpdateParty(ctx context.Context, kind domain.PartyKind, id uuid.UUID, in service.UpdatePartyInput) (*domain.Party, error)
}

// PartyHandler serves one party kind; customers and vendors each get their
// own instance mounted on their own route.
type PartyHandler struct {
	parties partyService
	kind    domain.PartyKind
	base    string
	paging  Paging
}

func NewPartyHandler(parties partyService, kind domain.PartyKind, paging Paging) *PartyHandler {
	return &PartyHandler{parties: parties, kind: kind, base: "/api/v1/" + string(kind) + "s", paging: paging}
}

type partyRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Phone    *string `json:"phone"`
	IsActive *bool   `json:"is_active"`
}

func (r partyRequest) validate(create bool) []FieldError {
	var errs []FieldError
	switch {
	case create && (r.Name == nil || strings.TrimSpace(*r.Name) == ""):
		errs = append(errs, FieldError{Field: "name", Message: "required"})
	case r.Name != nil && strings.TrimSpace(*r.Name) == "":
		errs = append(errs, FieldError{Field: "name", Message: "must not be empty"})
	}
	if r.Email != nil && *r.Email != "" {
		if _, err := mail.ParseAddress(*r.Email); err != nil {
			errs = append(errs, FieldError{Field: "email", Message: "must be a valid email address"})
		}
	}
	if create && r.IsActive != nil {
		errs = append(errs, FieldError{Field: "is_active", Message: "cannot be set on create"})
	}
	return errs
}

type partyDTO struct {
	ID        uuid.UUID `json:"id"`
	Kind      string    `json:"kind"`
	Name      string    `json:"name"`
	Email     *string   `json:"email"`
	Phone     *string   `json:"phone"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toPartyDTO(p *domain.Party) partyDTO {
	return partyDTO{
		ID:        p.ID,
		Kind:      string(p.Kind),
		Name:      p.Name,
		Email:     p.Email,
		Phone:     p.Phone,
		IsActive:  p.IsActive,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func (h *PartyHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req partyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}
	if fields := req.validate(true); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	party, err := h.parties.CreateParty(r.Context(), h.kind, service.CreatePartyInput{
		Name:  strings.TrimSpace(*req.Name),
		Email: req.Email,
		Phone: req.Phone,
	})
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to create party", "error", err, "kind", h.kind)
		RespondDomainError(w, err)
		return
	}

	w.Header().Set("Location", h.base+"/"+party.ID.String())
	RespondSuccess(w, http.StatusCreated, toPartyDTO(party))
}

func (h *PartyHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		RespondAppError(w, ErrInvalidID, nil)
		return
	}

	party, err := h.parties.GetParty(r.Context(), h.kind, id)
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toPartyDTO(party))
}

func (h *PartyHandler) List(w http.ResponseWriter, r *http.Request) {
	q := newQueryParams(r)
	f := domain.PartyFilter{
		Kind:     h.kind,
		IsActive: q.bool("is_active"),
		Search:   q.string("q"),
		Page:     h.paging.parse(r),
	}
	if len(q.errs) > 0 {
		RespondValidationError(w, q.errs)
		return
	}

	parties, total, err := h.parties.ListParties(r.Context(), f)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to list parties", "error", err, "kind", h.kind)
		RespondDomainError(w, err)
		return
	}

	dtos := make([]partyDTO, len(parties))
	for i := range parties {
		dtos[i] = toPartyDTO(&parties[i])
	}
	RespondSuccess(w, http.StatusOK, newListPage(dtos, total, f.Page))
}

func (h *PartyHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		RespondAppError(w, ErrInvalidID, nil)
		return
	}

	var req partyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}
	if fields := req.validate(false); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	party, err := h.parties.UpdateParty(r.Context(), h.kind, id, service.UpdatePartyInput{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		IsActive: req.IsActive,
	})
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to update party", "error", err, "party_id", id)
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toPartyDTO(party))
}
