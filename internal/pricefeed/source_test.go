package pricefeed_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shotaro-dev/gold-digger/internal/pricefeed"
)

func newFeedServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetch_ValidPrice(t *testing.T) {
	srv := newFeedServer(t, http.StatusOK, `{"price": 2412.55, "symbol": "XAU"}`)

	client := pricefeed.NewGoldAPIClient(srv.URL)
	price, err := client.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if price != 2412.55 {
		t.Fatalf("price mismatch: got %f", price)
	}
}

func TestFetch_QuotedPrice(t *testing.T) {
	srv := newFeedServer(t, http.StatusOK, `{"price": "2412.55"}`)

	client := pricefeed.NewGoldAPIClient(srv.URL)
	price, err := client.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if price != 2412.55 {
		t.Fatalf("price mismatch: got %f", price)
	}
}

func TestFetch_NonOKStatus(t *testing.T) {
	srv := newFeedServer(t, http.StatusBadGateway, `upstream down`)

	client := pricefeed.NewGoldAPIClient(srv.URL)
	if _, err := client.Fetch(context.Background()); err == nil {
		t.Fatal("expected error for 502 response")
	} else if !strings.Contains(err.Error(), "502") {
		t.Fatalf("error should embed the status, got: %v", err)
	}
}

func TestFetch_MissingPrice(t *testing.T) {
	srv := newFeedServer(t, http.StatusOK, `{"symbol": "XAU"}`)

	client := pricefeed.NewGoldAPIClient(srv.URL)
	if _, err := client.Fetch(context.Background()); err == nil {
		t.Fatal("expected error for missing price field")
	}
}

func TestFetch_NonNumericPrice(t *testing.T) {
	srv := newFeedServer(t, http.StatusOK, `{"price": "not-a-number"}`)

	client := pricefeed.NewGoldAPIClient(srv.URL)
	if _, err := client.Fetch(context.Background()); err == nil {
		t.Fatal("expected error for non-numeric price")
	}
}

func TestFetch_NonPositivePrice(t *testing.T) {
	for _, body := range []string{`{"price": 0}`, `{"price": -15.2}`} {
		srv := newFeedServer(t, http.StatusOK, body)
		client := pricefeed.NewGoldAPIClient(srv.URL)
		if _, err := client.Fetch(context.Background()); err == nil {
			t.Fatalf("expected error for body %s", body)
		}
	}
}

func TestFetch_MalformedJSON(t *testing.T) {
	srv := newFeedServer(t, http.StatusOK, `<html>maintenance</html>`)

	client := pricefeed.NewGoldAPIClient(srv.URL)
	if _, err := client.Fetch(context.Background()); err == nil {
		t.Fatal("expected error for non-JSON body")
	}
}

func TestFetch_Unreachable(t *testing.T) {
	client := pricefeed.NewGoldAPIClient("http://localhost:1/price")
	if _, err := client.Fetch(context.Background()); err == nil {
		t.Fatal("expected error for unreachable endpoint")
	}
}
