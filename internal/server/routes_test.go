package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	apperr "github.com/lazypower/habits/internal/errors"
)

func post(t *testing.T, srv *Server, command, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("POST", "/api/invoke/"+command, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	return w
}

func errorKind(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body %q: %v", w.Body.String(), err)
	}
	if body["error"] == "" {
		t.Errorf("error body missing message: %v", body)
	}
	return body["kind"]
}

func TestInvokeEnsureUser(t *testing.T) {
	srv := testServer(t)

	w := post(t, srv, "ensure_user", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", w.Code, w.Body.String())
	}

	var users []map[string]any
	json.Unmarshal(w.Body.Bytes(), &users)
	if len(users) != 1 || users[0]["id"] != float64(1) || users[0]["points"] != float64(0) {
		t.Errorf("users = %v", users)
	}
}

func TestInvokeHabitFlow(t *testing.T) {
	srv := testServer(t)
	post(t, srv, "ensure_user", "")

	w := post(t, srv, "create_habit", `{"habit":"{\"id\":0,\"habit_name\":\"walk\",\"points\":4}"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("create_habit status = %d; body: %s", w.Code, w.Body.String())
	}
	var habits []map[string]any
	json.Unmarshal(w.Body.Bytes(), &habits)
	if len(habits) != 1 || habits[0]["habit_name"] != "walk" {
		t.Fatalf("habits = %v", habits)
	}

	w = post(t, srv, "complete_habit", `{"id":1}`)
	if w.Code != http.StatusOK || strings.TrimSpace(w.Body.String()) != "4" {
		t.Errorf("complete_habit = %d %s, want 200 4", w.Code, w.Body.String())
	}

	w = post(t, srv, "get_records", "")
	var recs []map[string]any
	json.Unmarshal(w.Body.Bytes(), &recs)
	if len(recs) != 1 || recs[0]["created_at"] != "07 Mar 2025" || recs[0]["points"] != float64(4) {
		t.Errorf("records = %v", recs)
	}

	w = post(t, srv, "reset_records", "")
	if w.Code != http.StatusOK || strings.TrimSpace(w.Body.String()) != "null" {
		t.Errorf("reset_records = %d %s, want 200 null", w.Code, w.Body.String())
	}
}

func TestInvokeErrorMapping(t *testing.T) {
	srv := testServer(t)

	cases := []struct {
		command string
		body    string
		code    int
		kind    string
	}{
		{"no_such_command", "", http.StatusNotFound, "UnknownCommand"},
		{"update_user_points", `{"points":1}`, http.StatusConflict, "UserMissing"},
		{"check_user_update", `{"leagueEntryPoints":20}`, http.StatusConflict, "UserMissing"},
		{"create_habit", `{"habit":{"habit_name":"","points":1}}`, http.StatusBadRequest, "BadRequest"},
		{"delete_habit", `{bad json`, http.StatusBadRequest, "BadRequest"},
	}
	for _, c := range cases {
		w := post(t, srv, c.command, c.body)
		if w.Code != c.code {
			t.Errorf("%s: status = %d, want %d; body: %s", c.command, w.Code, c.code, w.Body.String())
			continue
		}
		if kind := errorKind(t, w); kind != c.kind {
			t.Errorf("%s: kind = %q, want %q", c.command, kind, c.kind)
		}
	}
}

func TestInvokeRequiresPost(t *testing.T) {
	srv := testServer(t)

	req := httptest.NewRequest("GET", "/api/invoke/get_habits", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", w.Code)
	}
}

func TestGetLeagueOverHTTP(t *testing.T) {
	srv := testServer(t)
	post(t, srv, "ensure_user", "")
	post(t, srv, "update_user_points", `{"points":1200}`)

	w := post(t, srv, "get_league", "")
	var status struct {
		League struct {
			Title string `json:"title"`
			Cost  int    `json:"league_cost"`
		} `json:"league"`
		UpperBound int `json:"upper_bound"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &status); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if status.League.Title != "steel" || status.League.Cost != 40 || status.UpperBound != 1499 {
		t.Errorf("league = %+v", status)
	}
}

func TestCorruptStoreReachesOnFatal(t *testing.T) {
	var fatal []error
	srv := testServerWith(t, Options{OnFatal: func(err error) { fatal = append(fatal, err) }})
	srv.commands.Register("corrupt_read", func(context.Context, json.RawMessage) (any, error) {
		return nil, fmt.Errorf("read: %w", apperr.ErrStoreCorrupt)
	})
	srv.commands.Register("busy_read", func(context.Context, json.RawMessage) (any, error) {
		return nil, fmt.Errorf("read: %w", apperr.ErrStoreBusy)
	})

	w := post(t, srv, "busy_read", "")
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("busy status = %d, want 503", w.Code)
	}
	if len(fatal) != 0 {
		t.Fatalf("busy error reached OnFatal: %v", fatal)
	}

	w = post(t, srv, "corrupt_read", "")
	if w.Code != http.StatusInternalServerError {
		t.Errorf("corrupt status = %d, want 500", w.Code)
	}
	if kind := errorKind(t, w); kind != "StoreCorrupt" {
		t.Errorf("kind = %q, want StoreCorrupt", kind)
	}
	if len(fatal) != 1 || !errors.Is(fatal[0], apperr.ErrStoreCorrupt) {
		t.Errorf("OnFatal got %v, want one ErrStoreCorrupt", fatal)
	}
}

func TestStatusFor(t *testing.T) {
	if code, _ := statusFor(errStub("boom")); code != http.StatusInternalServerError {
		t.Errorf("plain error code = %d, want 500", code)
	}
}

type errStub string

func (e errStub) Error() string { return string(e) }
