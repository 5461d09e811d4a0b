package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/lazypower/habits/internal/clock"
	"github.com/lazypower/habits/internal/commands"
	"github.com/lazypower/habits/internal/habits"
	"github.com/lazypower/habits/internal/records"
	"github.com/lazypower/habits/internal/scoring"
	"github.com/lazypower/habits/internal/store"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	return testServerWith(t, Options{AllowedOrigins: []string{"tauri://localhost"}})
}

func testServerWith(t *testing.T, opts Options) *Server {
	t.Helper()
	db, err := store.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	clk := clock.NewFixed(time.Date(2025, time.March, 7, 9, 0, 0, 0, time.Local))
	recs := records.New(db, nil)
	cmds := commands.New(habits.New(db, nil), recs, scoring.New(db, clk, recs, nil), nil)
	return New(db, cmds, "test-version", opts)
}

func TestHealthEndpoint(t *testing.T) {
	srv := testServer(t)

	req := httptest.NewRequest("GET", "/api/health", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}

	if body["status"] != "ok" {
		t.Errorf("status = %v, want ok", body["status"])
	}
	if body["version"] != "test-version" {
		t.Errorf("version = %v, want test-version", body["version"])
	}
	if body["db"] != true {
		t.Errorf("db = %v, want true", body["db"])
	}
	if body["schema_version"] != float64(store.LatestVersion()) {
		t.Errorf("schema_version = %v, want %d", body["schema_version"], store.LatestVersion())
	}
}

func TestHealthDegradedWithoutSchemaHistory(t *testing.T) {
	srv := testServer(t)
	if _, err := srv.db.Exec("DROP TABLE schema_versions"); err != nil {
		t.Fatalf("drop: %v", err)
	}

	req := httptest.NewRequest("GET", "/api/health", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusServiceUnavailable)
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["status"] != "degraded" {
		t.Errorf("status = %v, want degraded", body["status"])
	}
	if body["schema_error"] == nil {
		t.Errorf("schema_error missing: %v", body)
	}
}

func TestListCommands(t *testing.T) {
	srv := testServer(t)

	req := httptest.NewRequest("GET", "/api/commands", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	var body struct {
		Commands []string `json:"commands"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(body.Commands) != 12 {
		t.Errorf("commands = %v, want 12 entries", body.Commands)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv := testServer(t)

	// Generate at least one command sample.
	post(t, srv, "get_habits", "")

	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), "habits_commands_total") {
		t.Error("metrics output missing habits_commands_total")
	}
}

func TestCORSPreflight(t *testing.T) {
	srv := testServer(t)

	req := httptest.NewRequest("OPTIONS", "/api/invoke/get_habits", nil)
	req.Header.Set("Origin", "tauri://localhost")
	req.Header.Set("Access-Control-Request-Method", "POST")
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "tauri://localhost" {
		t.Errorf("Allow-Origin = %q, want tauri://localhost", got)
	}
}
