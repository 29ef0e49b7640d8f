package memory_test

import (
	"testing"

	"bizreview/internal/domain"
	"bizreview/internal/storage/memory"
)

var key = domain.MarketKey{Location: domain.MarketLocation("Lahore", "Pakistan"), Category: "pharmacy"}

func TestStore_PlacesRoundTripAndIsolation(t *testing.T) {
	st := memory.New()

	if _, ok := st.Places(key); ok {
		t.Fatalf("expected miss for unknown market")
	}

	st.PutPlaces(key, []domain.Place{{PlaceID: "p1", Name: "One"}})
	got, ok := st.Places(key)
	if !ok || len(got) != 1 || got[0].PlaceID != "p1" {
		t.Fatalf("unexpected rows: %+v", got)
	}

	// mutating the returned slice must not touch the stored table
	got[0].Name = "mutated"
	again, _ := st.Places(key)
	if again[0].Name != "One" {
		t.Fatalf("store aliased its backing array")
	}
}

func TestMarketLocationFormat(t *testing.T) {
	if got := domain.MarketLocation("Lahore", "Pakistan"); got != "Lahore,+Pakistan" {
		t.Fatalf("location format: got %q", got)
	}
}

// The markets index is keyed by (city, country) rows while the tables are
// keyed by MarketKey; MarkReviewsLoaded must bridge the two through the same
// location builder or the index silently stops syncing.
func TestStore_ReviewsLoadedFlag(t *testing.T) {
	st := memory.New()
	st.AddMarket(domain.Market{City: "Lahore", Country: "Pakistan", Category: "pharmacy"})

	if st.ReviewsLoaded(key) {
		t.Fatalf("flag must start false")
	}
	st.PutReviews(key, []domain.Review{{PlaceID: "p1", Reviewer: "Ana"}})
	st.MarkReviewsLoaded(key)

	if !st.ReviewsLoaded(key) {
		t.Fatalf("flag not set")
	}
	ms := st.Markets()
	if len(ms) != 1 || !ms[0].ReviewsLoaded {
		t.Fatalf("market index not updated: %+v", ms)
	}
}

func TestStore_AddMarketDedupes(t *testing.T) {
	st := memory.New()
	m := domain.Market{City: "Lahore", Country: "Pakistan", Category: "pharmacy"}
	st.AddMarket(m)
	st.AddMarket(m)
	st.AddMarket(domain.Market{City: "Multan", Country: "Pakistan", Category: "pharmacy"})

	if got := len(st.Markets()); got != 2 {
		t.Fatalf("expected 2 markets, got %d", got)
	}
}
