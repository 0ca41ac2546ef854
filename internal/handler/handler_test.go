package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noahjmorrison/onnaflips/internal/cache"
	"github.com/noahjmorrison/onnaflips/internal/config"
	"github.com/noahjmorrison/onnaflips/internal/models"
	"github.com/noahjmorrison/onnaflips/internal/repository"
	"github.com/noahjmorrison/onnaflips/internal/service"
)

func fp(v float64) *float64 { return &v }
func sp(s string) *string   { return &s }

func newTestRouter(t *testing.T, cfg *config.Config) (*mux.Router, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	log := logrus.New()
	log.SetOutput(io.Discard)
	svc, err := service.NewService(repository.NewRepository(db, "sqlite"), cache.NewMemoryCache(), log, cfg)
	require.NoError(t, err)
	h := NewHandler(svc)

	r := mux.NewRouter()
	r.HandleFunc("/api/items", h.ListItems).Methods("GET")
	r.HandleFunc("/api/items", h.CreateItem).Methods("POST")
	r.HandleFunc("/api/items/{id:[0-9]+}", h.GetItem).Methods("GET")
	r.HandleFunc("/api/items/{id:[0-9]+}", h.UpdateItem).Methods("PUT")
	r.HandleFunc("/api/items/{id:[0-9]+}", h.DeleteItem).Methods("DELETE")
	r.HandleFunc("/api/stats", h.GetStats).Methods("GET")
	r.HandleFunc("/api/login", h.Login).Methods("POST")
	return r, mock
}

// nv unwraps nullable fixture fields into plain driver values.
func nv[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

func itemRows(items ...*models.Item) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{
		"id", "date_bought", "date_sold", "description", "cost",
		"listing_price", "sold_for", "status", "notes", "created_at", "updated_at",
	})
	for _, it := range items {
		rows.AddRow(it.ID, nv(it.DateBought), nv(it.DateSold), it.Description, it.Cost,
			nv(it.ListingPrice), nv(it.SoldFor), it.Status, nv(it.Notes), it.CreatedAt, it.UpdatedAt)
	}
	return rows
}

func TestListItems(t *testing.T) {
	r, mock := newTestRouter(t, &config.Config{})

	mock.ExpectQuery("SELECT (.+) FROM items").WillReturnRows(itemRows(&models.Item{
		ID: 1, Description: "oak dresser", Cost: 50, SoldFor: fp(250),
		DateBought: sp("2024-01-05"), DateSold: sp("2024-01-15"),
		Status:    models.StatusSold,
		CreatedAt: "2024-01-05T12:00:00Z", UpdatedAt: "2024-01-15T12:00:00Z",
	}))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/items", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var got []models.ItemResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "oak dresser", got[0].Description)
	require.NotNil(t, got[0].ActualProfit)
	assert.Equal(t, 200.0, *got[0].ActualProfit)
	require.NotNil(t, got[0].DaysToSell)
	assert.Equal(t, 10, *got[0].DaysToSell)
}

func TestCreateItem(t *testing.T) {
	r, mock := newTestRouter(t, &config.Config{})

	mock.ExpectQuery("INSERT INTO items").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(4)))

	body := []byte(`{
		"date_bought": "2024-03-01",
		"description": "vintage mirror",
		"cost": 20,
		"listing_price": 75
	}`)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/items", bytes.NewBuffer(body)))

	require.Equal(t, http.StatusCreated, w.Code)
	var got models.ItemResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, int64(4), got.ID)
	assert.Equal(t, models.StatusListed, got.Status)
	require.NotNil(t, got.PredictedProfit)
	assert.Equal(t, 55.0, *got.PredictedProfit)
}

func TestCreateItemRejectsMissingDescription(t *testing.T) {
	r, _ := newTestRouter(t, &config.Config{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/items", bytes.NewBufferString(`{"cost": 5}`)))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateItemRejectsBadJSON(t *testing.T) {
	r, _ := newTestRouter(t, &config.Config{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/items", bytes.NewBufferString(`{not-json`)))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetItemNotFound(t *testing.T) {
	r, mock := newTestRouter(t, &config.Config{})

	mock.ExpectQuery("SELECT (.+) FROM items WHERE id").
		WithArgs(int64(99)).
		WillReturnRows(itemRows())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/items/99", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteItem(t *testing.T) {
	r, mock := newTestRouter(t, &config.Config{})

	mock.ExpectExec("DELETE FROM items WHERE id").
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/items/7", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message": "Item deleted"}`, w.Body.String())
}

func TestGetStats(t *testing.T) {
	r, mock := newTestRouter(t, &config.Config{})

	mock.ExpectQuery("SELECT (.+) FROM items").WillReturnRows(itemRows(
		&models.Item{ID: 1, Description: "dresser", Cost: 50, SoldFor: fp(250),
			DateBought: sp("2024-01-05"), DateSold: sp("2024-01-15"), Status: models.StatusSold},
		&models.Item{ID: 2, Description: "table", Cost: 35, ListingPrice: fp(95),
			DateBought: sp("2024-02-15"), Status: models.StatusListed},
	))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/stats", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var stats models.Stats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, 2, stats.TotalItems)
	assert.Equal(t, 1, stats.SoldCount)
	assert.Equal(t, 200.0, stats.TotalProfit)
	assert.Equal(t, 60.0, stats.PredictedProfit)
}

func TestLogin(t *testing.T) {
	cfg := &config.Config{AuthPassword: "flip-it", JWTSecret: "test-secret"}
	r, _ := newTestRouter(t, cfg)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/login",
		bytes.NewBufferString(`{"password": "flip-it"}`)))

	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp["token"])

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/login",
		bytes.NewBufferString(`{"password": "wrong"}`)))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
