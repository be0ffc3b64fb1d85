package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calleja/devgear/internal/domain"
	"github.com/calleja/devgear/internal/usecase"
)

type fakeCatalog struct {
	sale []domain.SaleProduct
	shop []domain.Product
	err  error
}

func (f *fakeCatalog) ListSaleProducts(ctx context.Context) ([]domain.SaleProduct, error) {
	return f.sale, f.err
}

func (f *fakeCatalog) ListShopProducts(ctx context.Context) ([]domain.Product, error) {
	return f.shop, f.err
}

type fakePurchases struct {
	saved []*domain.Purchase
	err   error
}

func (f *fakePurchases) Save(ctx context.Context, p *domain.Purchase) error {
	if f.err != nil {
		return f.err
	}
	p.ID = uint(len(f.saved) + 1)
	f.saved = append(f.saved, p)
	return nil
}

func (f *fakePurchases) ListByUser(ctx context.Context, userID uint) ([]domain.Purchase, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []domain.Purchase
	for _, p := range f.saved {
		if p.UserID == userID {
			out = append(out, *p)
		}
	}
	return out, nil
}

type fakeUsers struct {
	users map[string]*domain.User
}

func (f *fakeUsers) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	if u, ok := f.users[username]; ok {
		return u, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeUsers) Save(ctx context.Context, u *domain.User) error {
	if f.users == nil {
		f.users = map[string]*domain.User{}
	}
	if u.ID == 0 {
		u.ID = uint(len(f.users) + 1)
	}
	f.users[u.Username] = u
	return nil
}

func newTestServer(t *testing.T, catalog *fakeCatalog, purchases *fakePurchases) *httptest.Server {
	t.Helper()
	t.Setenv("ADMIN_USERS", "admin")
	auth := &usecase.AuthUC{Users: &fakeUsers{}, Secret: []byte("test-secret"), TTL: time.Hour}
	handler := New(
		&usecase.CatalogUC{Catalog: catalog},
		&usecase.PurchaseUC{Purchases: purchases},
		auth,
	)
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func decodeBody(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func registerAndLogin(t *testing.T, srv *httptest.Server, username string) string {
	t.Helper()
	creds, _ := json.Marshal(map[string]string{"username": username, "password": "hunter22"})
	resp, err := http.Post(srv.URL+"/api/auth/register", "application/json", bytes.NewReader(creds))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, err = http.Post(srv.URL+"/api/auth/login", "application/json", bytes.NewReader(creds))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body struct {
		Token string `json:"token"`
	}
	decodeBody(t, resp, &body)
	require.NotEmpty(t, body.Token)
	return body.Token
}

func TestSaleEndpointReturnsOrderedListing(t *testing.T) {
	catalog := &fakeCatalog{sale: []domain.SaleProduct{
		{ID: 4, Name: "High", Priority: 10, Category: "Sale"},
		{ID: 2, Name: "Mid", Priority: 5, Category: "Sale"},
		{ID: 1, Name: "Low", Priority: 0, Category: "Sale"},
	}}
	srv := newTestServer(t, catalog, &fakePurchases{})

	resp, err := http.Get(srv.URL + "/api/sale")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var list []domain.SaleProduct
	decodeBody(t, resp, &list)
	require.Len(t, list, 3)
	assert.Equal(t, uint(4), list[0].ID)
	assert.Equal(t, uint(1), list[2].ID)
}

func TestSaleEndpointHidesStoreFault(t *testing.T) {
	catalog := &fakeCatalog{err: errors.New("pq: connection refused")}
	srv := newTestServer(t, catalog, &fakePurchases{})

	resp, err := http.Get(srv.URL + "/api/sale")
	require.NoError(t, err)
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	var body map[string]string
	decodeBody(t, resp, &body)
	assert.Equal(t, "Failed to fetch sale products", body["error"])
	assert.NotContains(t, body["error"], "pq:")
}

func TestSaleEndpointEmptyListingIsNotAnError(t *testing.T) {
	srv := newTestServer(t, &fakeCatalog{}, &fakePurchases{})

	resp, err := http.Get(srv.URL + "/api/sale")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var list []domain.SaleProduct
	decodeBody(t, resp, &list)
	assert.Empty(t, list)
	assert.NotNil(t, list)
}

func TestShopEndpoint(t *testing.T) {
	catalog := &fakeCatalog{shop: []domain.Product{{ID: 1, Name: "Keyboard", Price: "129.00"}}}
	srv := newTestServer(t, catalog, &fakePurchases{})

	resp, err := http.Get(srv.URL + "/api/shop")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var list []domain.Product
	decodeBody(t, resp, &list)
	require.Len(t, list, 1)
	assert.Equal(t, "Keyboard", list[0].Name)
}

func TestPurchaseRequiresBearerToken(t *testing.T) {
	srv := newTestServer(t, &fakeCatalog{}, &fakePurchases{})

	body := bytes.NewReader([]byte(`{"items":[{"productId":1,"name":"x","price":"10.00","quantity":1}],"total":"11.00"}`))
	resp, err := http.Post(srv.URL+"/api/purchase", "application/json", body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestPurchaseFlowEndToEnd(t *testing.T) {
	purchases := &fakePurchases{}
	srv := newTestServer(t, &fakeCatalog{}, purchases)
	token := registerAndLogin(t, srv, "shopper")

	payload := `{"items":[{"productId":1,"name":"Keyboard","price":"10.00","quantity":2}],"total":"22.00"}`
	req, _ := http.NewRequest(http.MethodPost, srv.URL+"/api/purchase", bytes.NewReader([]byte(payload)))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var body struct {
		Purchase domain.Purchase `json:"purchase"`
	}
	decodeBody(t, resp, &body)
	assert.Equal(t, uint(1), body.Purchase.ID)
	assert.Equal(t, "22.00", body.Purchase.Total)
	require.Len(t, purchases.saved, 1)

	// history returns what was just bought
	req, _ = http.NewRequest(http.MethodGet, srv.URL+"/api/purchase", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var history struct {
		Purchases []domain.Purchase `json:"purchases"`
	}
	decodeBody(t, resp, &history)
	require.Len(t, history.Purchases, 1)
}

func TestPurchaseRejectsEmptyItems(t *testing.T) {
	srv := newTestServer(t, &fakeCatalog{}, &fakePurchases{})
	token := registerAndLogin(t, srv, "shopper")

	req, _ := http.NewRequest(http.MethodPost, srv.URL+"/api/purchase", bytes.NewReader([]byte(`{"items":[],"total":"0.00"}`)))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestRegisterDuplicateUsername(t *testing.T) {
	srv := newTestServer(t, &fakeCatalog{}, &fakePurchases{})
	registerAndLogin(t, srv, "taken")

	creds, _ := json.Marshal(map[string]string{"username": "taken", "password": "other"})
	resp, err := http.Post(srv.URL+"/api/auth/register", "application/json", bytes.NewReader(creds))
	require.NoError(t, err)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()
}

func TestLoginBadPassword(t *testing.T) {
	srv := newTestServer(t, &fakeCatalog{}, &fakePurchases{})
	registerAndLogin(t, srv, "shopper")

	creds, _ := json.Marshal(map[string]string{"username": "shopper", "password": "wrong"})
	resp, err := http.Post(srv.URL+"/api/auth/login", "application/json", bytes.NewReader(creds))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestCORSPreflight(t *testing.T) {
	t.Setenv("FRONTEND_URL", "http://localhost:4173")
	srv := newTestServer(t, &fakeCatalog{}, &fakePurchases{})

	req, _ := http.NewRequest(http.MethodOptions, srv.URL+"/api/sale", nil)
	req.Header.Set("Origin", "http://localhost:4173")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "http://localhost:4173", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Contains(t, resp.Header.Get("Access-Control-Allow-Headers"), "sentry-trace")
}

func TestAdminExportRequiresAdmin(t *testing.T) {
	srv := newTestServer(t, &fakeCatalog{}, &fakePurchases{})
	token := registerAndLogin(t, srv, "shopper")

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/api/admin/export", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()
}

func TestAdminExportStreamsWorkbook(t *testing.T) {
	catalog := &fakeCatalog{shop: []domain.Product{{ID: 1, Name: "Keyboard", Price: "129.00"}}}
	srv := newTestServer(t, catalog, &fakePurchases{})
	token := registerAndLogin(t, srv, "admin")

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/api/admin/export", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "spreadsheetml")
}

func TestMethodNotAllowed(t *testing.T) {
	srv := newTestServer(t, &fakeCatalog{}, &fakePurchases{})

	resp, err := http.Post(srv.URL+"/api/sale", "application/json", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	resp.Body.Close()
}
