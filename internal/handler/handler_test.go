package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josh-kwaku/backoffice/internal/auth"
	"github.com/josh-kwaku/backoffice/internal/domain"
	"github.com/josh-kwaku/backoffice/internal/service"
)

var testPaging = Paging{Default: 20, Max: 100}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *APIError       `json:"error"`
}

func serve(t *testing.T, r http.Handler, method, target, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	req = req.WithContext(auth.ContextWithOperator(req.Context(), "alice"))
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	var env envelope
	if rr.Code != http.StatusNoContent {
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env), rr.Body.String())
	}
	return rr, env
}

func TestRespondDomainError(t *testing.T) {
	tests := []struct {
		err        error
		wantStatus int
		wantCode   string
	}{
		{domain.ErrNotFound, http.StatusNotFound, "RESOURCE_NOT_FOUND"},
		{domain.ErrInvalidOperation, http.StatusUnprocessableEntity, "INVALID_OPERATION"},
		{domain.ErrInvalidRequest, http.StatusBadRequest, "INVALID_REQUEST"},
		{domain.ErrInvalidAmount, http.StatusBadRequest, "INVALID_AMOUNT"},
		{domain.ErrInvalidDocumentType, http.StatusBadRequest, "INVALID_DOCUMENT_TYPE"},
		{domain.ErrUnbalancedEntry, http.StatusUnprocessableEntity, "UNBALANCED_ENTRY"},
		{domain.ErrInvalidTransition, http.StatusConflict, "INVALID_TRANSITION"},
		{domain.ErrDuplicate, http.StatusConflict, "DUPLICATE"},
		{domain.ErrHasChildren, http.StatusConflict, "HAS_CHILDREN"},
		{errors.New("connection reset"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tc := range tests {
		t.Run(tc.wantCode, func(t *testing.T) {
			rr := httptest.NewRecorder()
			RespondDomainError(rr, fmt.Errorf("Op: %w", tc.err))

			assert.Equal(t, tc.wantStatus, rr.Code)
			var resp APIResponse
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tc.wantCode, resp.Error.Code)
			if tc.wantStatus == http.StatusInternalServerError {
				assert.Nil(t, resp.Error.Details)
			}
		})
	}
}

func TestPaging_Parse(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  domain.Page
	}{
		{name: "defaults", query: "", want: domain.Page{Limit: 20}},
		{name: "explicit", query: "page_size=5&offset=10&sort=code&order=desc", want: domain.Page{Limit: 5, Offset: 10, Sort: "code", Desc: true}},
		{name: "clamped to max", query: "page_size=1000", want: domain.Page{Limit: 100}},
		{name: "garbage ignored", query: "page_size=abc&offset=-3", want: domain.Page{Limit: 20}},
		{name: "order is case insensitive", query: "order=DESC", want: domain.Page{Limit: 20, Desc: true}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/x?"+tc.query, nil)
			assert.Equal(t, tc.want, testPaging.parse(r))
		})
	}
}

func TestDate_JSON(t *testing.T) {
	var d Date
	require.NoError(t, json.Unmarshal([]byte(`"2024-03-31"`), &d))
	assert.Equal(t, 2024, d.Year())
	out, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2024-03-31"`, string(out))

	assert.Error(t, json.Unmarshal([]byte(`"31/03/2024"`), &d))
}

type fakeAccountService struct {
	created   *service.CreateAccountInput
	updated   *service.UpdateAccountInput
	listed    *domain.AccountFilter
	accounts  map[uuid.UUID]*domain.Account
	err       error
	deletedID uuid.UUID
}

func newFakeAccountService() *fakeAccountService {
	return &fakeAccountService{accounts: make(map[uuid.UUID]*domain.Account)}
}

func (f *fakeAccountService) CreateAccount(_ context.Context, in service.CreateAccountInput) (*domain.Account, error) {
	f.created = &in
	if f.err != nil {
		return nil, f.err
	}
	a := &domain.Account{ID: uuid.New(), Code: in.Code, Name: in.Name, Type: in.Type, ParentID: in.ParentID, IsActive: true, CreatedBy: in.CreatedBy}
	if in.RunningBalance != nil {
		a.SetBalance(*in.RunningBalance)
	}
	f.accounts[a.ID] = a
	return a, nil
}

func (f *fakeAccountService) GetAccount(_ context.Context, id uuid.UUID) (*domain.Account, error) {
	a, ok := f.accounts[id]
	if !ok {
		return nil, fmt.Errorf("GetAccount: %w", domain.ErrNotFound)
	}
	return a, nil
}

func (f *fakeAccountService) ListAccounts(_ context.Context, filter domain.AccountFilter) ([]domain.Account, int, error) {
	f.listed = &filter
	var out []domain.Account
	for _, a := range f.accounts {
		out = append(out, *a)
	}
	return out, len(out), f.err
}

func (f *fakeAccountService) UpdateAccount(_ context.Context, id uuid.UUID, in service.UpdateAccountInput) (*domain.Account, error) {
	f.updated = &in
	a, ok := f.accounts[id]
	if !ok {
		return nil, fmt.Errorf("UpdateAccount: %w", domain.ErrNotFound)
	}
	if in.RunningBalance != nil {
		a.SetBalance(*in.RunningBalance)
	}
	return a, nil
}

func (f *fakeAccountService) DeleteAccount(_ context.Context, id uuid.UUID) error {
	if f.err != nil {
		return f.err
	}
	f.deletedID = id
	return nil
}

func accountRouter(svc accountService) http.Handler {
	h := NewAccountHandler(svc, testPaging)
	r := chi.NewRouter()
	r.Post("/accounts", h.Create)
	r.Get("/accounts", h.List)
	r.Get("/accounts/{id}", h.Get)
	r.Patch("/accounts/{id}", h.Update)
	r.Delete("/accounts/{id}", h.Delete)
	return r
}

func TestAccountHandler_Create(t *testing.T) {
	svc := newFakeAccountService()
	parent := uuid.New()
	body := fmt.Sprintf(`{"code":" 1010 ","name":"Cash","type":"asset","parent_id":%q,"running_balance":"1000.00"}`, parent)

	rr, env := serve(t, accountRouter(svc), http.MethodPost, "/accounts", body)

	require.Equal(t, http.StatusCreated, rr.Code)
	assert.True(t, env.Success)
	require.NotNil(t, svc.created)
	assert.Equal(t, "1010", svc.created.Code)
	assert.Equal(t, &parent, svc.created.ParentID)
	assert.Equal(t, "alice", svc.created.CreatedBy)
	require.NotNil(t, svc.created.RunningBalance)
	assert.True(t, decimal.NewFromInt(1000).Equal(*svc.created.RunningBalance))
	assert.True(t, decimal.Zero.Equal(svc.created.OpeningBalance))

	var dto accountDTO
	require.NoError(t, json.Unmarshal(env.Data, &dto))
	assert.Equal(t, "/api/v1/accounts/"+dto.ID.String(), rr.Header().Get("Location"))
	require.NotNil(t, dto.RunningBalance)
	assert.Equal(t, "1000", dto.RunningBalance.String())
}

func TestAccountHandler_CreateRejections(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		svcErr     error
		wantStatus int
		wantCode   string
	}{
		{name: "malformed json", body: `{`, wantStatus: http.StatusBadRequest, wantCode: "INVALID_REQUEST"},
		{name: "missing fields", body: `{}`, wantStatus: http.StatusBadRequest, wantCode: "VALIDATION_FAILED"},
		{name: "bad type", body: `{"code":"1","name":"x","type":"revenue"}`, wantStatus: http.StatusBadRequest, wantCode: "VALIDATION_FAILED"},
		{
			name:       "missing parent",
			body:       `{"code":"1","name":"x","type":"asset"}`,
			svcErr:     fmt.Errorf("CreateAccount: %w", domain.ErrInvalidOperation),
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "INVALID_OPERATION",
		},
		{
			name:       "duplicate code",
			body:       `{"code":"1","name":"x","type":"asset"}`,
			svcErr:     fmt.Errorf("Create: %w", domain.ErrDuplicate),
			wantStatus: http.StatusConflict,
			wantCode:   "DUPLICATE",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := newFakeAccountService()
			svc.err = tc.svcErr

			rr, env := serve(t, accountRouter(svc), http.MethodPost, "/accounts", tc.body)

			assert.Equal(t, tc.wantStatus, rr.Code)
			assert.False(t, env.Success)
			require.NotNil(t, env.Error)
			assert.Equal(t, tc.wantCode, env.Error.Code)
		})
	}
}

func TestAccountHandler_GetAndUpdate(t *testing.T) {
	svc := newFakeAccountService()
	a := &domain.Account{ID: uuid.New(), Code: "1010", Name: "Cash", Type: domain.AccountTypeAsset}
	svc.accounts[a.ID] = a
	r := accountRouter(svc)

	rr, _ := serve(t, r, http.MethodGet, "/accounts/"+a.ID.String(), "")
	assert.Equal(t, http.StatusOK, rr.Code)

	rr, env := serve(t, r, http.MethodGet, "/accounts/not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "INVALID_ID", env.Error.Code)

	rr, _ = serve(t, r, http.MethodGet, "/accounts/"+uuid.NewString(), "")
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr, env = serve(t, r, http.MethodPatch, "/accounts/"+a.ID.String(), `{}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "VALIDATION_FAILED", env.Error.Code)

	rr, env = serve(t, r, http.MethodPatch, "/accounts/"+a.ID.String(), `{"running_balance":"42.5"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	var dto accountDTO
	require.NoError(t, json.Unmarshal(env.Data, &dto))
	assert.Equal(t, "42.5", dto.RunningBalance.String())
}

func TestAccountHandler_ListPassesFilters(t *testing.T) {
	svc := newFakeAccountService()
	parent := uuid.New()

	rr, env := serve(t, accountRouter(svc), http.MethodGet,
		"/accounts?type=asset&parent_id="+parent.String()+"&is_parent=false&q=cash&page_size=5&offset=5&sort=code", "")

	require.Equal(t, http.StatusOK, rr.Code)
	require.NotNil(t, svc.listed)
	assert.Equal(t, domain.AccountTypeAsset, *svc.listed.Type)
	assert.Equal(t, parent, *svc.listed.ParentID)
	assert.False(t, *svc.listed.IsParent)
	assert.Equal(t, "cash", svc.listed.Search)
	assert.Equal(t, domain.Page{Limit: 5, Offset: 5, Sort: "code"}, svc.listed.Page)

	var page ListPage[accountDTO]
	require.NoError(t, json.Unmarshal(env.Data, &page))
	assert.NotNil(t, page.Items)
	assert.Equal(t, 5, page.Limit)
}

func TestAccountHandler_ListRejectsBadFilters(t *testing.T) {
	rr, env := serve(t, accountRouter(newFakeAccountService()), http.MethodGet, "/accounts?parent_id=x&is_active=maybe", "")

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "VALIDATION_FAILED", env.Error.Code)
}

func TestAccountHandler_Delete(t *testing.T) {
	svc := newFakeAccountService()
	id := uuid.New()

	rr, _ := serve(t, accountRouter(svc), http.MethodDelete, "/accounts/"+id.String(), "")
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, id, svc.deletedID)

	svc.err = fmt.Errorf("DeleteAccount: %w", domain.ErrHasChildren)
	rr, env := serve(t, accountRouter(svc), http.MethodDelete, "/accounts/"+id.String(), "")
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, "HAS_CHILDREN", env.Error.Code)
}
