package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/backoffice/internal/domain"
	"github.com/josh-kwaku/backoffice/internal/logging"
	"github.com/josh-kwaku/backoffice/internal/service"
)

// DocumentRoutes maps each URL collection to the document type it serves.
var DocumentRoutes = map[string]domain.DocumentType{
	"sales-orders":    domain.DocumentTypeSalesOrder,
	"invoices":        domain.DocumentTypeInvoice,
	"credit-memos":    domain.DocumentTypeCreditMemo,
	"debit-memos":     domain.DocumentTypeDebitMemo,
	"purchase-orders": domain.DocumentTypePurchaseOrder,
	"item-receipts":   domain.DocumentTypeItemReceipt,
	"vendor-bills":    domain.DocumentTypeVendorBill,
	"vendor-credits":  domain.DocumentTypeVendorCredit,
}

type documentService interface {
	CreateDocument(ctx context.Context, docType domain.DocumentType, in service.CreateDocumentInput) (*domain.Document, error)
	GetDocument(ctx context.Context, docType domain.DocumentType, id uuid.UUID) (*domain.Document, error)
	ListDocuments(ctx context.Context, f domain.DocumentFilter) ([]domain.Document, int, error)
	UpdateDocument(ctx context.Context, docType domain.DocumentType, id uuid.UUID, in service.UpdateDocumentInput) (*domain.Document, error)
	TransitionStatus(ctx context.Context, docType domain.DocumentType, id uuid.UUID, target domain.DocumentStatus, operator string) (*domain.Document, error)
	AddLine(ctx context.Context, docType domain.DocumentType, id uuid.UUID, in service.LineInput, operator string) (*domain.Document, error)
	DeleteLine(ctx context.Context, docType domain.DocumentType, id, lineID uuid.UUID) (*domain.Document, error)
}

// DocumentHandler serves one document type. Every type shares the same
// request and response shapes.
type DocumentHandler struct {
	documents documentService
	docType   domain.DocumentType
	base      string
	paging    Paging
}

func NewDocumentHandler(documents documentService, collection string, docType domain.DocumentType, paging Paging) *DocumentHandler {
	return &DocumentHandler{documents: documents, docType: docType, base: "/api/v1/" + collection, paging: paging}
}

type lineRequest struct {
	ItemID      *uuid.UUID       `json:"item_id"`
	AccountID   *uuid.UUID       `json:"account_id"`
	Description string           `json:"description"`
	Quantity    decimal.Decimal  `json:"quantity"`
	UnitPrice   *decimal.Decimal `json:"unit_price"`
}

func (l lineRequest) validate(prefix string) []FieldError {
	var errs []FieldError
	if l.ItemID == nil && l.AccountID == nil {
		errs = append(errs, FieldError{Field: prefix + "item_id", Message: "item_id or account_id is required"})
	}
	if !l.Quantity.IsPositive() {
		errs = append(errs, FieldError{Field: prefix + "quantity", Message: "must be greater than zero"})
	}
	return nonNegative(errs, prefix+"unit_price", l.UnitPrice)
}

func (l lineRequest) input() service.LineInput {
	return service.LineInput{
		ItemID:      l.ItemID,
		AccountID:   l.AccountID,
		Description: strings.TrimSpace(l.Description),
		Quantity:    l.Quantity,
		UnitPrice:   l.UnitPrice,
	}
}

type createDocumentRequest struct {
	PartyID      uuid.UUID     `json:"party_id"`
	DocumentDate *Date         `json:"document_date"`
	DueDate      *Date         `json:"due_date"`
	Memo         *string       `json:"memo"`
	Lines        []lineRequest `json:"lines"`
}

func (r createDocumentRequest) Validate() []FieldError {
	var errs []FieldError
	if r.PartyID == uuid.Nil {
		errs = append(errs, FieldError{Field: "party_id", Message: "required"})
	}
	if r.DueDate != nil && r.DocumentDate != nil && r.DueDate.Before(r.DocumentDate.Time) {
		errs = append(errs, FieldError{Field: "due_date", Message: "must not be before document_date"})
	}
	for i, l := range r.Lines {
		errs = append(errs, l.validate("lines["+strconv.Itoa(i)+"].")...)
	}
	return errs
}

type updateDocumentRequest struct {
	DocumentDate *Date   `json:"document_date"`
	DueDate      *Date   `json:"due_date"`
	Memo         *string `json:"memo"`
}

func (r updateDocumentRequest) Validate() []FieldError {
	if r.DocumentDate == nil && r.DueDate == nil && r.Memo == nil {
		return []FieldError{{Field: "body", Message: "at least one field is required"}}
	}
	return nil
}

type statusRequest struct {
	Status string `json:"status"`
}

type documentLineDTO struct {
	ID          uuid.UUID       `json:"id"`
	LineNo      int             `json:"line_no"`
	ItemID      *uuid.UUID      `json:"item_id"`
	AccountID   *uuid.UUID      `json:"account_id"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Amount      decimal.Decimal `json:"amount"`
}

type documentDTO struct {
	ID           uuid.UUID         `json:"id"`
	Type         string            `json:"type"`
	Number       string            `json:"number"`
	PartyID      uuid.UUID         `json:"party_id"`
	Status       string            `json:"status"`
	DocumentDate Date              `json:"document_date"`
	DueDate      *Date             `json:"due_date"`
	Memo         *string           `json:"memo"`
	Total        decimal.Decimal   `json:"total"`
	CreatedBy    string            `json:"created_by"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
	Lines        []documentLineDTO `json:"lines,omitempty"`
}

func toDocumentDTO(d *domain.Document) documentDTO {
	dto := documentDTO{
		ID:           d.ID,
		Type:         string(d.Type),
		Number:       d.Number,
		PartyID:      d.PartyID,
		Status:       string(d.Status),
		DocumentDate: Date{Time: d.DocumentDate},
		DueDate:      datePtr(d.DueDate),
		Memo:         d.Memo,
		Total:        d.Total,
		CreatedBy:    d.CreatedBy,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
	for _, l := range d.Lines {
		dto.Lines = append(dto.Lines, documentLineDTO{
			ID:          l.ID,
			LineNo:      l.LineNo,
			ItemID:      l.ItemID,
			AccountID:   l.AccountID,
			Description: l.Description,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			Amount:      l.Amount,
		})
	}
	return dto
}

func (h *DocumentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}
	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	in := service.CreateDocumentInput{
		PartyID:   req.PartyID,
		DueDate:   timePtr(req.DueDate),
		Memo:      req.Memo,
		CreatedBy: operator(r),
	}
	if req.DocumentDate != nil {
		in.DocumentDate = req.DocumentDate.Time
	}
	for _, l := range req.Lines {
		in.Lines = append(in.Lines, l.input())
	}

	doc, err := h.documents.CreateDocument(r.Context(), h.docType, in)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to create document", "error", err, "type", h.docType)
		RespondDomainError(w, err)
		return
	}

	w.Header().Set("Location", h.base+"/"+doc.ID.String())
	RespondSuccess(w, http.StatusCreated, toDocumentDTO(doc))
}

func (h *DocumentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		RespondAppError(w, ErrInvalidID, nil)
		return
	}

	doc, err := h.documents.GetDocument(r.Context(), h.docType, id)
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toDocumentDTO(doc))
}

func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	q := newQueryParams(r)
	f := domain.DocumentFilter{
		Type:     h.docType,
		PartyID:  q.uuid("party_id"),
		DateFrom: q.date("from"),
		DateTo:   q.date("to"),
		Page:     h.paging.parse(r),
	}
	if s := q.string("status"); s != "" {
		status := domain.DocumentStatus(s)
		if !status.IsValid() {
			q.errs = append(q.errs, FieldError{Field: "status", Message: "unknown status"})
		}
		f.Status = &status
	}
	if len(q.errs) > 0 {
		RespondValidationError(w, q.errs)
		return
	}

	docs, total, err := h.documents.ListDocuments(r.Context(), f)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to list documents", "error", err, "type", h.docType)
		RespondDomainError(w, err)
		return
	}

	dtos := make([]documentDTO, len(docs))
	for i := range docs {
		dtos[i] = toDocumentDTO(&docs[i])
	}
	RespondSuccess(w, http.StatusOK, newListPage(dtos, total, f.Page))
}

func (h *DocumentHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		RespondAppError(w, ErrInvalidID, nil)
		return
	}

	var req updateDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}
	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	doc, err := h.documents.UpdateDocument(r.Context(), h.docType, id, service.UpdateDocumentInput{
		DocumentDate: timePtr(req.DocumentDate),
		DueDate:      timePtr(req.DueDate),
		Memo:         req.Memo,
	})
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to update document", "error", err, "document_id", id)
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toDocumentDTO(doc))
}

func (h *DocumentHandler) Transition(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		RespondAppError(w, ErrInvalidID, nil)
		return
	}

	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}
	target := domain.DocumentStatus(req.Status)
	if !target.IsValid() {
		RespondValidationError(w, []FieldError{{Field: "status", Message: "must be draft, open, closed, or void"}})
		return
	}

	doc, err := h.documents.TransitionStatus(r.Context(), h.docType, id, target, operator(r))
	if err != nil {
		logging.FromContext(r.Context()).Warn("failed to change document status", "error", err, "document_id", id, "target", target)
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toDocumentDTO(doc))
}

func (h *DocumentHandler) AddLine(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		RespondAppError(w, ErrInvalidID, nil)
		return
	}

	var req lineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}
	if fields := req.validate(""); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	doc, err := h.documents.AddLine(r.Context(), h.docType, id, req.input(), operator(r))
	if err != nil {
		logging.FromContext(r.Context()).Warn("failed to add document line", "error", err, "document_id", id)
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusCreated, toDocumentDTO(doc))
}

func (h *DocumentHandler) DeleteLine(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		RespondAppError(w, ErrInvalidID, nil)
		return
	}
	lineID, ok := pathID(r, "lineID")
	if !ok {
		RespondAppError(w, ErrInvalidID, nil)
		return
	}

	doc, err := h.documents.DeleteLine(r.Context(), h.docType, id, lineID)
	if err != nil {
		logging.FromContext(r.Context()).Warn("failed to delete document line", "error", err, "document_id", id, "line_id", lineID)
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toDocumentDTO(doc))
}
