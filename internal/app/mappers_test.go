package app_test

import (
	"testing"
	"time"

	"bizreview/internal/app"
)

func photoURL(ref string) string { return "https://photo.test/" + ref }

func TestMapPlace_FullRecord(t *testing.T) {
	res := map[string]any{
		"place_id":          "abc123",
		"name":              "City Pharmacy",
		"formatted_address": "1 Mall Road, Lahore",
		"geometry":          map[string]any{"location": map[string]any{"lat": 31.52, "lng": 74.35}},
		"photos":            []any{map[string]any{"photo_reference": "ref-1"}},
	}
	det := map[string]any{
		"rating":                     4.5,
		"user_ratings_total":         float64(130),
		"international_phone_number": "+92 42-111 222",
	}

	p, warns := app.MapPlace(res, det, "Lahore,+Pakistan", time.Now(), photoURL)
	if len(warns) != 0 {
		t.Fatalf("unexpected warnings: %+v", warns)
	}
	if p.PlaceID != "abc123" || p.Name != "City Pharmacy" || p.Address != "1 Mall Road, Lahore" {
		t.Fatalf("unexpected place: %+v", p)
	}
	if p.Lat != 31.52 || p.Lon != 74.35 || p.AvgRating != 4.5 || p.TotalReviews != 130 {
		t.Fatalf("unexpected numerics: %+v", p)
	}
	if p.Contact != "9242111222" {
		t.Fatalf("contact: got %q", p.Contact)
	}
	if p.PhotoURL != "https://photo.test/ref-1" {
		t.Fatalf("photo url: got %q", p.PhotoURL)
	}
}

func TestMapPlace_NonNumericRatingDefaultsWithWarning(t *testing.T) {
	res := map[string]any{"place_id": "x", "name": "X"}
	det := map[string]any{"rating": "n/a"}

	p, warns := app.MapPlace(res, det, "L", time.Now(), nil)
	if p.AvgRating != 0 {
		t.Fatalf("non-numeric rating must default to 0, got %v", p.AvgRating)
	}
	found := false
	for _, w := range warns {
		if w.Field == "rating" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a rating warning, got %+v", warns)
	}
}

func TestMapPlace_StringNumbersCoerce(t *testing.T) {
	res := map[string]any{
		"place_id": "y",
		"geometry": map[string]any{"location": map[string]any{"lat": "31,5", "lng": "74.3"}},
	}
	det := map[string]any{"rating": "4.0", "user_ratings_total": "25"}

	p, _ := app.MapPlace(res, det, "L", time.Now(), nil)
	if p.Lat != 31.5 || p.Lon != 74.3 || p.AvgRating != 4.0 || p.TotalReviews != 25 {
		t.Fatalf("flexible coercion failed: %+v", p)
	}
}

func TestMapReviews_EpochAndDefaults(t *testing.T) {
	det := map[string]any{
		"reviews": []any{
			map[string]any{
				"time":              float64(1700000000),
				"rating":            float64(5),
				"author_name":       "Ana",
				"text":              "great",
				"language":          "en",
				"profile_photo_url": "https://img.test/a.png",
			},
			map[string]any{"author_name": "NoFields"},
		},
	}

	rs := app.MapReviews("p1", "City Pharmacy", det)
	if len(rs) != 2 {
		t.Fatalf("expected 2 reviews, got %d", len(rs))
	}
	want := time.Unix(1700000000, 0).UTC()
	if !rs[0].Time.Equal(want) || rs[0].Rating == nil || *rs[0].Rating != 5 {
		t.Fatalf("unexpected first review: %+v", rs[0])
	}
	if rs[0].PlaceID != "p1" || rs[0].PlaceName != "City Pharmacy" {
		t.Fatalf("owner fields missing: %+v", rs[0])
	}
	if rs[1].Rating != nil || rs[1].Text != "" || !rs[1].Time.Equal(time.Unix(0, 0).UTC()) {
		t.Fatalf("missing fields must default: %+v", rs[1])
	}

	if out := app.MapReviews("p", "n", map[string]any{}); out != nil {
		t.Fatalf("no reviews field must map to nil, got %+v", out)
	}
}
