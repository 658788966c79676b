package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shotaro-dev/gold-digger/internal/repository"
)

// Validation failures are rejected before the ledger touches the database,
// so these run against a repo with no pool behind it.
func investServer() *Server {
	return &Server{ledger: repository.NewInvestmentRepo(nil)}
}

func investRequestWithUser(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/invest", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req.WithContext(context.WithValue(req.Context(), userIDKey, int64(7)))
}

func TestHandleInvest_RejectsBadInput(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"empty body", ``},
		{"not json", `gold please`},
		{"missing fields", `{}`},
		{"zero amount", `{"investmentAmount": 0, "pricePerOz": 2400}`},
		{"negative amount", `{"investmentAmount": -100, "pricePerOz": 2400}`},
		{"zero price", `{"investmentAmount": 100, "pricePerOz": 0}`},
		{"negative price", `{"investmentAmount": 100, "pricePerOz": -2400}`},
		{"non-numeric amount", `{"investmentAmount": "lots", "pricePerOz": 2400}`},
		{"non-numeric price", `{"investmentAmount": 100, "pricePerOz": "cheap"}`},
	}

	s := investServer()
	for _, tc := range cases {
		rr := httptest.NewRecorder()
		s.handleInvest(rr, investRequestWithUser(tc.body))
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d (body %q)", tc.name, rr.Code, rr.Body.String())
		}
		if !strings.Contains(rr.Body.String(), "error") {
			t.Fatalf("%s: expected an error payload, got %q", tc.name, rr.Body.String())
		}
	}
}
