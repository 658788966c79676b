package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/sessions"
)

// These cover the request-validation paths, which reject before any storage
// call. Full register/login round-trips live in the repository integration
// tests plus manual testing against a real database.

func postJSON(path, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestHandleRegister_RejectsBadInput(t *testing.T) {
	s := &Server{}
	cases := []struct {
		name string
		body string
	}{
		{"empty body", ``},
		{"not json", `hello`},
		{"missing fields", `{"name": "Shotaro"}`},
		{"blank password", `{"name":"S","username":"s","email":"s@example.com","password":""}`},
		{"bad email", `{"name":"S","username":"s","email":"not-an-email","password":"hunter2"}`},
		{"email with spaces", `{"name":"S","username":"s","email":"a b@example.com","password":"hunter2"}`},
	}

	for _, tc := range cases {
		rr := httptest.NewRecorder()
		s.handleRegister(rr, postJSON("/auth/register", tc.body))
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d (body %q)", tc.name, rr.Code, rr.Body.String())
		}
	}
}

func TestHandleLogin_RejectsBadInput(t *testing.T) {
	s := &Server{}
	cases := []string{
		``,
		`{}`,
		`{"email":"s@example.com"}`,
		`{"password":"hunter2"}`,
	}

	for _, body := range cases {
		rr := httptest.NewRecorder()
		s.handleLogin(rr, postJSON("/auth/login", body))
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("body %q: expected 400, got %d", body, rr.Code)
		}
	}
}

func TestHandleMe_NoSession(t *testing.T) {
	s := &Server{sessions: sessions.NewCookieStore([]byte("test-secret"))}

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	rr := httptest.NewRecorder()
	s.handleMe(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without session, got %d", rr.Code)
	}
}

func TestHandleLogout_ClearsSession(t *testing.T) {
	s := &Server{sessions: sessions.NewCookieStore([]byte("test-secret"))}
	cookie := mintSessionCookie(t, s, 42)

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.AddCookie(cookie)
	rr := httptest.NewRecorder()
	s.handleLogout(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rr.Code)
	}

	// The replacement cookie must be expired.
	expired := false
	for _, c := range rr.Result().Cookies() {
		if c.Name == sessionName && c.MaxAge < 0 {
			expired = true
		}
	}
	if !expired {
		t.Fatal("expected an expired session cookie")
	}
}

func TestValidEmail(t *testing.T) {
	valid := []string{"a@b.com", "shotaro.dev@example.co.jp", "x+tag@example.org"}
	for _, e := range valid {
		if !validEmail(e) {
			t.Fatalf("expected %q to be valid", e)
		}
	}

	invalid := []string{"", "plain", "@example.com", "a b@example.com", "Name <a@b.com>"}
	for _, e := range invalid {
		if validEmail(e) {
			t.Fatalf("expected %q to be invalid", e)
		}
	}
}
