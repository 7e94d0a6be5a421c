package router

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

type okPinger struct{}

func (okPinger) Ping(context.Context) error { return nil }

type downPinger struct{}

func (downPinger) Ping(context.Context) error { return errors.New("connection refused") }

func healthResponse(t *testing.T, r *gin.Engine) (int, map[string]bool) {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var body map[string]bool
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding health response: %v", err)
	}
	return w.Code, body
}

func TestHealthCheckAllUp(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := NewRouter(stubHandlers(), okPinger{}, okPinger{})

	code, body := healthResponse(t, r)

	if code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", code)
	}
	if !body["healthy"] || !body["db_connection"] || !body["file_system_connection"] {
		t.Fatalf("expected every probe healthy, got %v", body)
	}
}

func TestHealthCheckDatabaseDown(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := NewRouter(stubHandlers(), downPinger{}, okPinger{})

	code, body := healthResponse(t, r)

	if code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d", code)
	}
	if body["healthy"] {
		t.Fatal("expected healthy=false when the database is down")
	}
	if body["db_connection"] {
		t.Fatal("expected db_connection=false")
	}
	if !body["file_system_connection"] {
		t.Fatal("expected file_system_connection=true")
	}
}

func TestHealthCheckFileStoreDown(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := NewRouter(stubHandlers(), okPinger{}, downPinger{})

	code, body := healthResponse(t, r)

	if code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d", code)
	}
	if body["healthy"] || body["file_system_connection"] {
		t.Fatalf("expected file store reported down, got %v", body)
	}
}
