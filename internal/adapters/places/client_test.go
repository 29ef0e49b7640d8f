package places_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bizreview/internal/adapters/places"
	"bizreview/internal/domain"
)

func TestClient_TextSearch_PageAndToken(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("query"); got != "pharmacy in Lahore,+Pakistan" {
			t.Errorf("unexpected query param: %q", got)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"results": []any{
				map[string]any{"place_id": "a1", "name": "One"},
				map[string]any{"place_id": "a2", "name": "Two"},
			},
			"next_page_token": "tok-2",
		})
	}))
	defer ts.Close()

	cl, err := places.New(ts.URL, "test-key", 100) // high RPS for tests
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	page, err := cl.TextSearch(ctx, "pharmacy in Lahore,+Pakistan", "")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !page.HasResults || len(page.Results) != 2 {
		t.Fatalf("unexpected page: %+v", page)
	}
	if page.NextPageToken != "tok-2" {
		t.Fatalf("expected next token, got %q", page.NextPageToken)
	}
}

func TestClient_TextSearch_MissingResultsIsExhaustion(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"status": "INVALID_REQUEST"})
	}))
	defer ts.Close()

	cl, _ := places.New(ts.URL, "test-key", 100)
	page, err := cl.TextSearch(context.Background(), "anything", "")
	if err != nil {
		t.Fatalf("missing results must not be an error, got %v", err)
	}
	if page.HasResults {
		t.Fatalf("expected HasResults=false, got %+v", page)
	}
}

func TestClient_Details_MissingResultIsError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"status": "NOT_FOUND"})
	}))
	defer ts.Close()

	cl, _ := places.New(ts.URL, "test-key", 100)
	if _, err := cl.Details(context.Background(), "missing"); err == nil {
		t.Fatalf("expected error for payload without result object")
	}
}

func TestClient_Details_404(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	defer ts.Close()

	cl, _ := places.New(ts.URL, "test-key", 100)
	_, err := cl.Details(context.Background(), "x")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestClient_PhotoURL(t *testing.T) {
	cl, _ := places.New("https://example.test/place", "k e y", 100)
	u := cl.PhotoURL("ref/1")
	want := "https://example.test/place/photo?maxwidth=100&photoreference=ref%2F1&key=k+e+y"
	if u != want {
		t.Fatalf("got %q want %q", u, want)
	}
	if cl.PhotoURL("") != "" {
		t.Fatalf("empty reference must produce empty URL")
	}
}
