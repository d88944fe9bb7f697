package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"

	"catalogcrawler/config"
	"catalogcrawler/scraper"
	"catalogcrawler/storage"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeStore struct {
	lastQuery  storage.ProductQuery
	products   []scraper.Product
	total      int64
	categories []string
	err        error
}

func (f *fakeStore) Find(ctx context.Context, q storage.ProductQuery) ([]scraper.Product, int64, error) {
	f.lastQuery = q
	return f.products, f.total, f.err
}

func (f *fakeStore) FindByID(ctx context.Context, id string) (*scraper.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.products {
		if f.products[i].ID == id {
			return &f.products[i], nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (f *fakeStore) DistinctCategories(ctx context.Context) ([]string, error) {
	return f.categories, f.err
}

func testRouter(store *fakeStore) *gin.Engine {
	cfg := &config.Config{
		Environment:    "test",
		AllowedOrigins: []string{"http://localhost:5173"},
	}
	return NewRouter(cfg, NewHandler(store))
}

func doRequest(router *gin.Engine, method, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, target, nil)
	router.ServeHTTP(w, req)
	return w
}

func TestGetProductsDefaults(t *testing.T) {
	store := &fakeStore{
		products: []scraper.Product{{ID: "1", Name: "p"}},
		total:    101,
	}
	w := doRequest(testRouter(store), http.MethodGet, "/api/products")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(1), store.lastQuery.Page)
	assert.Equal(t, int64(50), store.lastQuery.Limit)

	var body struct {
		Success    bool              `json:"success"`
		Data       []scraper.Product `json:"data"`
		Pagination pagination        `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Len(t, body.Data, 1)
	assert.Equal(t, int64(101), body.Pagination.Total)
	assert.Equal(t, int64(3), body.Pagination.Pages, "101 items at limit 50 span 3 pages")
}

func TestGetProductsQueryPassthrough(t *testing.T) {
	store := &fakeStore{total: 0}
	w := doRequest(testRouter(store), http.MethodGet,
		"/api/products?category=machines&search=250bar&page=2&limit=10")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, storage.ProductQuery{
		Category: "machines",
		Search:   "250bar",
		Page:     2,
		Limit:    10,
	}, store.lastQuery)
}

func TestGetProductsRejectsBadPagination(t *testing.T) {
	store := &fakeStore{}
	doRequest(testRouter(store), http.MethodGet, "/api/products?page=-3&limit=abc")

	assert.Equal(t, int64(1), store.lastQuery.Page)
	assert.Equal(t, int64(50), store.lastQuery.Limit)
}

func TestGetProductsStoreError(t *testing.T) {
	store := &fakeStore{err: errors.New("connection reset")}
	w := doRequest(testRouter(store), http.MethodGet, "/api/products")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Failed to fetch products")
}

func TestGetProductByID(t *testing.T) {
	store := &fakeStore{products: []scraper.Product{{ID: "42", Name: "washer"}}}
	router := testRouter(store)

	w := doRequest(router, http.MethodGet, "/api/products/42")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "washer")

	w = doRequest(router, http.MethodGet, "/api/products/99")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Product not found")
}

func TestGetAllCategories(t *testing.T) {
	store := &fakeStore{categories: []string{"אביזרים", "מכונות שטיפה"}}
	w := doRequest(testRouter(store), http.MethodGet, "/api/products/categories/all")

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Success bool     `json:"success"`
		Data    []string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, []string{"אביזרים", "מכונות שטיפה"}, body.Data)
}

func TestHealthCheck(t *testing.T) {
	w := doRequest(testRouter(&fakeStore{}), http.MethodGet, "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestCORSMiddleware(t *testing.T) {
	router := testRouter(&fakeStore{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	router.ServeHTTP(w, req)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	router.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodOptions, "/api/products", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestIsAllowedOriginWildcard(t *testing.T) {
	allowed := []string{"https://*.example.com", "http://localhost:3000"}

	assert.True(t, isAllowedOrigin("http://localhost:3000", allowed))
	assert.False(t, isAllowedOrigin("http://localhost:9999", allowed))

	wildcardPrefix := []string{"http://localhost:*"}
	assert.True(t, isAllowedOrigin("http://localhost:5173", wildcardPrefix))
	assert.False(t, isAllowedOrigin("http://example.com", wildcardPrefix))
}
