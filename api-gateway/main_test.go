package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"neocafe-assistant/api-gateway/internal/gateway"
)

// TestHealthRoute verifies the assembled router serves the health payload.
func TestHealthRoute(t *testing.T) {
	gw := gateway.NewGateway(gateway.Config{}, &http.Client{})
	router := gw.SetupRoutes()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	var body map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if body["status"] != "healthy" || body["service"] != "api-gateway" {
		t.Fatalf("unexpected body: %#v", body)
	}
}

// TestUnmatchedAPIRoute ensures unknown /api routes return 404 without a backend.
func TestUnmatchedAPIRoute(t *testing.T) {
	gw := gateway.NewGateway(gateway.Config{}, &http.Client{})
	router := gw.SetupRoutes()

	req := httptest.NewRequest(http.MethodGet, "/api/unknown", nil)
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}
