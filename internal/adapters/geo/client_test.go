package geo_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"bizreview/internal/adapters/geo"
	"bizreview/internal/domain"
)

func TestClient_Locate(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// lat/lon come back as strings from nominatim-style providers
		_, _ = w.Write([]byte(`[{"lat":"31.5204","lon":"74.3587","display_name":"Lahore"}]`))
	}))
	defer ts.Close()

	cl := geo.New(ts.URL, ts.URL, 100)
	got, err := cl.Locate(context.Background(), "Lahore")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got.Lat != 31.5204 || got.Lon != 74.3587 {
		t.Fatalf("unexpected coords: %+v", got)
	}
}

func TestClient_Locate_NotFound(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer ts.Close()

	cl := geo.New(ts.URL, ts.URL, 100)
	_, err := cl.Locate(context.Background(), "Nowhere-at-all")
	if !errors.Is(err, domain.ErrLocationNotFound) {
		t.Fatalf("expected ErrLocationNotFound, got %v", err)
	}
}

func TestClient_StatesAndCities(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/countries/states":
			_, _ = w.Write([]byte(`{"error":false,"data":{"name":"Pakistan","states":[{"name":"Punjab"},{"name":"Sindh"}]}}`))
		case "/countries/state/cities":
			_, _ = w.Write([]byte(`{"error":false,"data":["Lahore","Multan",""]}`))
		default:
			w.WriteHeader(404)
		}
	}))
	defer ts.Close()

	cl := geo.New(ts.URL, ts.URL, 100)

	states, err := cl.States(context.Background(), "Pakistan")
	if err != nil {
		t.Fatalf("states err: %v", err)
	}
	if len(states) != 2 || states[0] != "Punjab" || states[1] != "Sindh" {
		t.Fatalf("unexpected states: %v", states)
	}

	cities, err := cl.Cities(context.Background(), "Pakistan", "Punjab")
	if err != nil {
		t.Fatalf("cities err: %v", err)
	}
	if len(cities) != 2 || cities[0] != "Lahore" || cities[1] != "Multan" {
		t.Fatalf("unexpected cities: %v", cities)
	}
}
