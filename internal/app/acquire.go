package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"bizreview/internal/domain"
)

// AcquisitionService drives a fetch session end to end: walk the stream,
// merge snapshots into session state, annotate and persist reviews, and
// evict stale cache entries for the touched market.
type AcquisitionService struct {
	fetcher *Fetcher
	places  domain.PlacesClient
	store   domain.SessionStore
	cache   domain.Cache
}

func NewAcquisitionService(f *Fetcher, pc domain.PlacesClient, store domain.SessionStore, cache domain.Cache) *AcquisitionService {
	return &AcquisitionService{fetcher: f, places: pc, store: store, cache: cache}
}

// Run performs one acquisition for (city, country, category). Each snapshot
// is merged into the session store as it arrives, so partial data stays
// visible even when a later page fails; onSnapshot (optional) sees every
// merged state for progressive rendering. A detail-lookup failure surfaces
// as the returned error after the stream drains.
func (s *AcquisitionService) Run(ctx context.Context, city, country, category string, target int, withReviews bool, onSnapshot func(Snapshot)) error {
	location := domain.MarketLocation(city, country)
	key := domain.MarketKey{Location: location, Category: category}

	stream := s.fetcher.Fetch(ctx, FetchOptions{
		Category:    category,
		Location:    location,
		Target:      target,
		WithReviews: withReviews,
	})

	var places []domain.Place
	var reviews []domain.Review
	for {
		snap, ok := stream.Next(ctx)
		if !ok {
			break
		}
		places = MergePlaces(places, snap.Places)
		s.store.PutPlaces(key, places)
		if withReviews {
			reviews = MergeReviews(reviews, snap.Reviews)
		}
		if onSnapshot != nil {
			onSnapshot(Snapshot{Places: places, Reviews: reviews})
		}
	}

	reviewsLoaded := false
	if withReviews && stream.Err() == nil {
		s.store.PutReviews(key, Annotate(reviews))
		s.store.MarkReviewsLoaded(key)
		reviewsLoaded = true
	}
	s.store.AddMarket(domain.Market{
		City:          city,
		Country:       country,
		Category:      category,
		ReviewsLoaded: reviewsLoaded,
	})
	s.invalidate(ctx, key)

	if err := stream.Err(); err != nil {
		return fmt.Errorf("acquisition %s/%s: %w", location, category, err)
	}
	log.Info().Str("location", location).Str("category", category).
		Int("places", len(places)).Int("reviews", len(reviews)).Msg("acquisition completed")
	return nil
}

// LoadReviews fetches the review table for an already-acquired market, one
// detail lookup per stored place (list-view flow). A failed lookup aborts
// the load and surfaces to the caller; nothing partial is stored.
func (s *AcquisitionService) LoadReviews(ctx context.Context, city, country, category string) ([]domain.Review, error) {
	key := domain.MarketKey{Location: domain.MarketLocation(city, country), Category: category}
	places, ok := s.store.Places(key)
	if !ok {
		return nil, domain.ErrNotFound
	}

	var running []domain.Review
	for _, p := range places {
		det, err := s.places.Details(ctx, p.PlaceID)
		if err != nil {
			return nil, fmt.Errorf("load reviews for %s: %w", p.PlaceID, err)
		}
		running = MergeReviews(running, MapReviews(p.PlaceID, p.Name, det))
	}

	running = Annotate(running)
	s.store.PutReviews(key, running)
	s.store.MarkReviewsLoaded(key)
	s.store.AddMarket(domain.Market{City: city, Country: country, Category: category, ReviewsLoaded: true})
	s.invalidate(ctx, key)
	return running, nil
}

// invalidate drops every cached read for a market after its tables changed.
func (s *AcquisitionService) invalidate(ctx context.Context, key domain.MarketKey) {
	if s.cache == nil {
		return
	}
	for _, k := range cacheKeys(key) {
		_ = s.cache.Del(ctx, k)
	}
}

func cacheKeys(key domain.MarketKey) []string {
	return []string{
		fmt.Sprintf("places:%s:%s", key.Location, key.Category),
		fmt.Sprintf("reviews:%s:%s", key.Location, key.Category),
		fmt.Sprintf("analytics:reviews:%s:%s", key.Location, key.Category),
		fmt.Sprintf("analytics:market:%s:%s", key.Location, key.Category),
	}
}
