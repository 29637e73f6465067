package handler_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	leadsapi "github.com/phbpx/leads-api"
	"github.com/phbpx/leads-api/handler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memStore struct {
	leads       map[string]*leadsapi.Lead // keyed by lower-cased email
	findAllOpts leadsapi.GetLeadsOptions
}

func newMemStore() *memStore {
	return &memStore{leads: make(map[string]*leadsapi.Lead)}
}

func (m *memStore) Create(ctx context.Context, input leadsapi.CreateLeadInput) (*leadsapi.Lead, error) {
	now := time.Now().UTC()
	lead := &leadsapi.Lead{
		ID:        "f3b9c6f0-1111-4222-8333-444455556666",
		Name:      input.Name,
		Email:     input.Email,
		Mobile:    input.Mobile,
		Postcode:  input.Postcode,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, serviceType := range input.Services {
		lead.Services = append(lead.Services, leadsapi.ServiceSelection{
			ID:          "a0a0a0a0-0000-4000-8000-" + strings.ToLower(string(serviceType))[:4] + "00000000",
			ServiceType: serviceType,
			CreatedAt:   now,
		})
	}
	m.leads[input.Email] = lead
	return lead, nil
}

func (m *memStore) FindByID(ctx context.Context, id string) (*leadsapi.Lead, error) {
	for _, lead := range m.leads {
		if lead.ID == id {
			return lead, nil
		}
	}
	return nil, nil
}

func (m *memStore) FindByEmail(ctx context.Context, email string) (*leadsapi.Lead, error) {
	return m.leads[email], nil
}

func (m *memStore) FindAll(ctx context.Context, opts leadsapi.GetLeadsOptions) ([]leadsapi.Lead, error) {
	m.findAllOpts = opts
	all := make([]leadsapi.Lead, 0, len(m.leads))
	for _, lead := range m.leads {
		all = append(all, *lead)
	}
	return all, nil
}

func (m *memStore) Count(ctx context.Context) (int64, error) {
	return int64(len(m.leads)), nil
}

func newTestRouter(store leadsapi.LeadStorer) *chi.Mux {
	log := zap.NewNop().Sugar()
	service := leadsapi.NewService(store, log)
	lh := handler.NewLeadHandler(service, log)

	r := chi.NewRouter()
	r.Post("/leads", lh.Register)
	r.Get("/leads", lh.List)
	r.Get("/leads/count", lh.Count)
	r.Get("/leads/{id}", lh.GetByID)
	return r
}

const registerBody = `{
	"name": "John Doe",
	"email": "John@Example.com",
	"mobile": "(04) 1234 5678",
	"postcode": "2000",
	"services": ["DELIVERY", "PICKUP"]
}`

func TestRegister(t *testing.T) {
	r := newTestRouter(newMemStore())

	req := httptest.NewRequest(http.MethodPost, "/leads", strings.NewReader(registerBody))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `"email":"john@example.com"`)
	assert.Contains(t, body, `"DELIVERY"`)
	assert.Contains(t, body, `"PICKUP"`)
	// Timestamps serialize as RFC 3339.
	assert.Contains(t, body, `"createdAt":"20`)
}

func TestRegister_InvalidServiceType(t *testing.T) {
	r := newTestRouter(newMemStore())

	body := strings.Replace(registerBody, "PICKUP", "DINE_IN", 1)
	req := httptest.NewRequest(http.MethodPost, "/leads", strings.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid service type: DINE_IN")
}

func TestRegister_ValidationFailure(t *testing.T) {
	r := newTestRouter(newMemStore())

	body := strings.Replace(registerBody, "John@Example.com", "not-an-email", 1)
	req := httptest.NewRequest(http.MethodPost, "/leads", strings.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid email format")
}

func TestRegister_MissingField(t *testing.T) {
	r := newTestRouter(newMemStore())

	req := httptest.NewRequest(http.MethodPost, "/leads", strings.NewReader(`{"name":"John Doe"}`))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	r := newTestRouter(newMemStore())

	req := httptest.NewRequest(http.MethodPost, "/leads", strings.NewReader(registerBody))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/leads", strings.NewReader(registerBody))
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "already exists")
}

func TestGetByID(t *testing.T) {
	store := newMemStore()
	lead, err := store.Create(context.Background(), leadsapi.CreateLeadInput{
		Name:     "John Doe",
		Email:    "john@example.com",
		Mobile:   "0412345678",
		Postcode: "2000",
		Services: []leadsapi.ServiceType{leadsapi.ServicePayment},
	})
	require.NoError(t, err)

	r := newTestRouter(store)

	req := httptest.NewRequest(http.MethodGet, "/leads/"+lead.ID, nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), lead.ID)
}

func TestGetByID_BadID(t *testing.T) {
	r := newTestRouter(newMemStore())

	req := httptest.NewRequest(http.MethodGet, "/leads/not-a-uuid", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "ID is not in its proper form")
}

func TestGetByID_NotFound(t *testing.T) {
	r := newTestRouter(newMemStore())

	req := httptest.NewRequest(http.MethodGet, "/leads/f3b9c6f0-1111-4222-8333-444455556666", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "not found")
}

func TestList_QueryOptions(t *testing.T) {
	store := newMemStore()
	r := newTestRouter(store)

	req := httptest.NewRequest(http.MethodGet, "/leads?limit=10&offset=5&orderBy=name&orderDirection=asc", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, leadsapi.GetLeadsOptions{
		Limit:          10,
		Offset:         5,
		OrderBy:        leadsapi.OrderByName,
		OrderDirection: leadsapi.OrderAsc,
	}, store.findAllOpts)
}

func TestList_BadQueryOptions(t *testing.T) {
	r := newTestRouter(newMemStore())

	for _, target := range []string{
		"/leads?limit=zero",
		"/leads?limit=-1",
		"/leads?offset=-2",
		"/leads?orderBy=postcode",
		"/leads?orderDirection=sideways",
	} {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "target: %s", target)
	}
}

func TestCount(t *testing.T) {
	store := newMemStore()
	_, err := store.Create(context.Background(), leadsapi.CreateLeadInput{
		Name:     "John Doe",
		Email:    "john@example.com",
		Mobile:   "0412345678",
		Postcode: "2000",
		Services: []leadsapi.ServiceType{leadsapi.ServiceDelivery},
	})
	require.NoError(t, err)

	r := newTestRouter(store)

	req := httptest.NewRequest(http.MethodGet, "/leads/count", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"count":1}`, rec.Body.String())
}
