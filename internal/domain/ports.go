package domain

import "context"

// SearchPage is one page of a text-search walk. HasResults is false when the
// payload carried no results field at all, which callers treat as exhaustion.
type SearchPage struct {
	Results       []map[string]any
	NextPageToken string
	HasResults    bool
}

type PlacesClient interface {
	TextSearch(ctx context.Context, query, pageToken string) (SearchPage, error)
	Details(ctx context.Context, placeID string) (map[string]any, error)
	PhotoURL(ref string) string
}

type Coords struct{ Lat, Lon float64 }

type Geocoder interface {
	// Locate resolves a free-text place name. Returns ErrLocationNotFound
	// when the provider has no match.
	Locate(ctx context.Context, name string) (Coords, error)
	States(ctx context.Context, country string) ([]string, error)
	Cities(ctx context.Context, country, state string) ([]string, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

// MarketKey addresses one fetch session: a business category searched in a
// location ("City,+Country" form, as interpolated into the search query).
type MarketKey struct {
	Location string
	Category string
}

// MarketLocation builds the canonical location half of a MarketKey. Every
// producer of a key must go through here so the format has one owner.
func MarketLocation(city, country string) string {
	return city + ",+" + country
}

// Market is one row of the searched-markets index.
type Market struct {
	City          string
	Country       string
	Category      string
	ReviewsLoaded bool
}

// SessionStore owns the per-market tables once acquisition completes.
// Lifetime is the hosting process; there is no teardown.
type SessionStore interface {
	PutPlaces(key MarketKey, rows []Place)
	Places(key MarketKey) ([]Place, bool)

	PutReviews(key MarketKey, rows []Review)
	Reviews(key MarketKey) ([]Review, bool)
	MarkReviewsLoaded(key MarketKey)
	ReviewsLoaded(key MarketKey) bool

	AddMarket(m Market)
	Markets() []Market
}
