package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/backoffice/internal/domain"
	"github.com/josh-kwaku/backoffice/internal/logging"
	"github.com/josh-kwaku/backoffice/internal/service"
)

type journalService interface {
	CreateEntry(ctx context.Context, in service.CreateJournalInput) (*domain.JournalEntry, error)
	GetEntry(ctx context.Context, id uuid.UUID) (*domain.JournalEntry, error)
	ListEntries(ctx context.Context, f domain.JournalFilter) ([]domain.JournalEntry, int, error)
	PostEntry(ctx context.Context, id uuid.UUID) (*domain.JournalEntry, error)
	VoidEntry(ctx context.Context, id uuid.UUID) (*domain.JournalEntry, error)
}

type JournalHandler struct {
	journals journalService
	paging   Paging
}

func NewJournalHandler(journals journalService, paging Paging) *JournalHandler {
	return &JournalHandler{journals: journals, paging: paging}
}

type journalLineRequest struct {
	AccountID   uuid.UUID        `json:"account_id"`
	Debit       *decimal.Decimal `json:"debit"`
	Credit      *decimal.Decimal `json:"credit"`
	Description string           `json:"description"`
}

type createJournalRequest struct {
	EntryDate *Date                `json:"entry_date"`
	Memo      *string              `json:"memo"`
	Post      bool                 `json:"post"`
	Lines     []journalLineRequest `json:"lines"`
}

// Validate checks field presence only. Balancing rules are enforced by the
// journal service so that every caller gets them.
func (r createJournalRequest) Validate() []FieldError {
	var errs []FieldError
	if len(r.Lines) == 0 {
		errs = append(errs, FieldError{Field: "lines", Message: "required"})
	}
	for i, l := range r.Lines {
		if l.AccountID == uuid.Nil {
			errs = append(errs, FieldError{Field: "lines[" + strconv.Itoa(i) + "].account_id", Message: "required"})
		}
	}
	return errs
}

type journalLineDTO struct {
	ID          uuid.UUID       `json:"id"`
	LineNo      int             `json:"line_no"`
	AccountID   uuid.UUID       `json:"account_id"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Description string          `json:"description"`
}

type journalEntryDTO struct {
	ID        uuid.UUID        `json:"id"`
	Number    string           `json:"number"`
	EntryDate Date             `json:"entry_date"`
	Memo      *string          `json:"memo"`
	Status    string           `json:"status"`
	CreatedBy string           `json:"created_by"`
	PostedAt  *time.Time       `json:"posted_at"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
	Lines     []journalLineDTO `json:"lines,omitempty"`
}

func toJournalEntryDTO(e *domain.JournalEntry) journalEntryDTO {
	dto := journalEntryDTO{
		ID:        e.ID,
		Number:    e.Number,
		EntryDate: Date{Time: e.EntryDate},
		Memo:      e.Memo,
		Status:    string(e.Status),
		CreatedBy: e.CreatedBy,
		PostedAt:  e.PostedAt,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
	for _, l := range e.Lines {
		dto.Lines = append(dto.Lines, journalLineDTO{
			ID:          l.ID,
			LineNo:      l.LineNo,
			AccountID:   l.AccountID,
			Debit:       l.Debit,
			Credit:      l.Credit,
			Description: l.Description,
		})
	}
	return dto
}

func (h *JournalHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createJournalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}
	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	in := service.CreateJournalInput{
		Memo:      req.Memo,
		Post:      req.Post,
		CreatedBy: operator(r),
	}
	if req.EntryDate != nil {
		in.EntryDate = req.EntryDate.Time
	}
	for _, l := range req.Lines {
		line := service.JournalLineInput{AccountID: l.AccountID, Description: l.Description}
		if l.Debit != nil {
			line.Debit = *l.Debit
		}
		if l.Credit != nil {
			line.Credit = *l.Credit
		}
		in.Lines = append(in.Lines, line)
	}

	entry, err := h.journals.CreateEntry(r.Context(), in)
	if err != nil {
		logging.FromContext(r.Context()).Warn("failed to create journal entry", "error", err)
		RespondDomainError(w, err)
		return
	}

	w.Header().Set("Location", "/api/v1/journal-entries/"+entry.ID.String())
	RespondSuccess(w, http.StatusCreated, toJournalEntryDTO(entry))
}

func (h *JournalHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		RespondAppError(w, ErrInvalidID, nil)
		return
	}

	entry, err := h.journals.GetEntry(r.Context(), id)
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toJournalEntryDTO(entry))
}

func (h *JournalHandler) List(w http.ResponseWriter, r *http.Request) {
	q := newQueryParams(r)
	f := domain.JournalFilter{
		AccountID: q.uuid("account_id"),
		DateFrom:  q.date("from"),
		DateTo:    q.date("to"),
		Page:      h.paging.parse(r),
	}
	if s := q.string("status"); s != "" {
		status := domain.JournalStatus(s)
		switch status {
		case domain.JournalStatusDraft, domain.JournalStatusPosted, domain.JournalStatusVoid:
		default:
			q.errs = append(q.errs, FieldError{Field: "status", Message: "must be draft, posted, or void"})
		}
		f.Status = &status
	}
	if len(q.errs) > 0 {
		RespondValidationError(w, q.errs)
		return
	}

	entries, total, err := h.journals.ListEntries(r.Context(), f)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to list journal entries", "error", err)
		RespondDomainError(w, err)
		return
	}

	dtos := make([]journalEntryDTO, len(entries))
	for i := range entries {
		dtos[i] = toJournalEntryDTO(&entries[i])
	}
	RespondSuccess(w, http.StatusOK, newListPage(dtos, total, f.Page))
}

func (h *JournalHandler) Post(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "post", h.journals.PostEntry)
}

func (h *JournalHandler) Void(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "void", h.journals.VoidEntry)
}

func (h *JournalHandler) transition(w http.ResponseWriter, r *http.Request, action string, fn func(context.Context, uuid.UUID) (*domain.JournalEntry, error)) {
	id, ok := pathID(r, "id")
	if !ok {
		RespondAppError(w, ErrInvalidID, nil)
		return
	}

	entry, err := fn(r.Context(), id)
	if err != nil {
		logging.FromContext(r.Context()).Warn("journal entry "+action+" failed", "error", err, "entry_id", id)
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toJournalEntryDTO(entry))
}
