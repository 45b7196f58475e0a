package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
)

func setupTest(t *testing.T) sqlmock.Sqlmock {
	mockDB, sqlMock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() { mockDB.Close() })
	db = mockDB

	srv := miniredis.RunT(t)
	rdb = redis.NewClient(&redis.Options{Addr: srv.Addr()})

	return sqlMock
}

func testRouter() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/api/menu", getMenu).Methods("GET")
	r.HandleFunc("/api/menu/items/{itemId}", getMenuItem).Methods("GET")
	return r
}

func TestGetMenu_QueriesAndCaches(t *testing.T) {
	sqlMock := setupTest(t)
	router := testRouter()

	rows := sqlmock.NewRows([]string{"id", "name", "description", "price", "category", "dietary_flags", "popular", "created_at"}).
		AddRow("latte", "Latte", "Espresso with steamed milk", 4.50, "coffee", []byte(`["vegetarian"]`), true, time.Now()).
		AddRow("croissant", "Croissant", "Butter croissant", 3.25, "pastry", []byte(`[]`), false, time.Now())
	sqlMock.ExpectQuery("SELECT id, name, description, price").WillReturnRows(rows)

	req := httptest.NewRequest("GET", "/api/menu", nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}
	body := recorder.Body.String()
	if !strings.Contains(body, `"latte"`) || !strings.Contains(body, `"croissant"`) {
		t.Fatalf("menu body missing items: %s", body)
	}

	// second request is served from the cache, no second query expected
	req = httptest.NewRequest("GET", "/api/menu", nil)
	recorder = httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200 from cache, got %d", recorder.Code)
	}
	if err := sqlMock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet sql expectations: %v", err)
	}
}

func TestGetMenuItem_NotFound(t *testing.T) {
	sqlMock := setupTest(t)
	router := testRouter()

	sqlMock.ExpectQuery("SELECT id, name, description, price").
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows(nil))

	req := httptest.NewRequest("GET", "/api/menu/items/ghost", nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", recorder.Code)
	}
}
