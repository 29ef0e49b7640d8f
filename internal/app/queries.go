package app

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"bizreview/internal/domain"
)

// ReviewAnalytics is the pure-data payload behind the reviews-analytics view.
type ReviewAnalytics struct {
	Quarterly []QuarterRating  `json:"quarterly"`
	Monthly   []MonthRating    `json:"monthly"`
	Breakdown []RatingCount    `json:"breakdown"`
	Sentiment []SentimentPoint `json:"sentiment"`
	Words     []WordCount      `json:"words"`
}

// MarketAnalysis is the pure-data payload behind the market-analysis view.
type MarketAnalysis struct {
	Center    domain.Coords      `json:"center"`
	TopPlaces []PlacePerformance `json:"top_places"`
}

type QueryService struct {
	store    domain.SessionStore
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewQueryService(store domain.SessionStore, cache domain.Cache, ttl time.Duration) *QueryService {
	return &QueryService{store: store, cache: cache, cacheTTL: ttl}
}

func (s *QueryService) Markets() []domain.Market { return s.store.Markets() }

func (s *QueryService) Places(ctx context.Context, key domain.MarketKey) ([]domain.Place, error) {
	ck := fmt.Sprintf("places:%s:%s", key.Location, key.Category)
	var cached []domain.Place
	if ok, _ := s.cache.Get(ctx, ck, &cached); ok {
		return cached, nil
	}
	rows, ok := s.store.Places(key)
	if !ok {
		return nil, domain.ErrNotFound
	}
	s.cacheSet(ctx, ck, rows)
	return rows, nil
}

func (s *QueryService) Reviews(ctx context.Context, key domain.MarketKey) ([]domain.Review, error) {
	ck := fmt.Sprintf("reviews:%s:%s", key.Location, key.Category)
	var cached []domain.Review
	if ok, _ := s.cache.Get(ctx, ck, &cached); ok {
		return cached, nil
	}
	if !s.store.ReviewsLoaded(key) {
		return nil, domain.ErrNotFound
	}
	rows, ok := s.store.Reviews(key)
	if !ok {
		return nil, domain.ErrNotFound
	}
	s.cacheSet(ctx, ck, rows)
	return rows, nil
}

// PlaceReviews filters the market's review table down to one place.
func (s *QueryService) PlaceReviews(ctx context.Context, key domain.MarketKey, placeID string) ([]domain.Review, error) {
	all, err := s.Reviews(ctx, key)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Review, 0, len(all))
	for _, r := range all {
		if r.PlaceID == placeID {
			out = append(out, r)
		}
	}
	return out, nil
}

// PlaceKPIs derives the KPI tuple for one place of a market.
func (s *QueryService) PlaceKPIs(ctx context.Context, key domain.MarketKey, placeID string) (KPI, error) {
	places, err := s.Places(ctx, key)
	if err != nil {
		return KPI{}, err
	}
	var place *domain.Place
	for i := range places {
		if places[i].PlaceID == placeID {
			place = &places[i]
			break
		}
	}
	if place == nil {
		return KPI{}, domain.ErrNotFound
	}
	reviews, err := s.PlaceReviews(ctx, key, placeID)
	if err != nil {
		return KPI{}, err
	}
	return KPIs(*place, reviews), nil
}

func (s *QueryService) ReviewAnalytics(ctx context.Context, key domain.MarketKey) (ReviewAnalytics, error) {
	ck := fmt.Sprintf("analytics:reviews:%s:%s", key.Location, key.Category)
	var cached ReviewAnalytics
	if ok, _ := s.cache.Get(ctx, ck, &cached); ok {
		return cached, nil
	}
	reviews, err := s.Reviews(ctx, key)
	if err != nil {
		return ReviewAnalytics{}, err
	}
	out := ReviewAnalytics{
		Quarterly: QuarterlyRatingSeries(reviews),
		Monthly:   MonthlyRatingSeries(reviews),
		Breakdown: RatingBreakdown(reviews),
		Sentiment: SentimentSeries(reviews),
		Words:     WordFrequencies(reviews, 100),
	}
	s.cacheSet(ctx, ck, out)
	return out, nil
}

func (s *QueryService) MarketAnalysis(ctx context.Context, key domain.MarketKey) (MarketAnalysis, error) {
	ck := fmt.Sprintf("analytics:market:%s:%s", key.Location, key.Category)
	var cached MarketAnalysis
	if ok, _ := s.cache.Get(ctx, ck, &cached); ok {
		return cached, nil
	}
	places, err := s.Places(ctx, key)
	if err != nil {
		return MarketAnalysis{}, err
	}
	out := MarketAnalysis{
		Center:    MarketCenter(places),
		TopPlaces: TopPerformingPlaces(places, 30),
	}
	s.cacheSet(ctx, ck, out)
	return out, nil
}

// cacheSet stores a value best-effort with a size guard, so one oversized
// table cannot crowd out the whole cache.
func (s *QueryService) cacheSet(ctx context.Context, key string, v any) {
	if b, _ := json.Marshal(v); len(b) < 1_000_000 {
		_ = s.cache.Set(ctx, key, v, int(s.cacheTTL.Seconds()))
	}
}
