package memory

import (
	"sync"

	"bizreview/internal/domain"
)

// Store is the session-scoped table store: one Place table and one Review
// table per (location, category) market, plus the searched-markets index.
// State lives for the process lifetime; there is no teardown.
type Store struct {
	mu      sync.RWMutex
	places  map[domain.MarketKey][]domain.Place
	reviews map[domain.MarketKey][]domain.Review
	loaded  map[domain.MarketKey]bool
	markets []domain.Market
}

func New() *Store {
	return &Store{
		places:  make(map[domain.MarketKey][]domain.Place),
		reviews: make(map[domain.MarketKey][]domain.Review),
		loaded:  make(map[domain.MarketKey]bool),
	}
}

func (s *Store) PutPlaces(key domain.MarketKey, rows []domain.Place) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.places[key] = clonePlaces(rows)
}

func (s *Store) Places(key domain.MarketKey) ([]domain.Place, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows, ok := s.places[key]
	if !ok {
		return nil, false
	}
	return clonePlaces(rows), true
}

func (s *Store) PutReviews(key domain.MarketKey, rows []domain.Review) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reviews[key] = cloneReviews(rows)
}

func (s *Store) Reviews(key domain.MarketKey) ([]domain.Review, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows, ok := s.reviews[key]
	if !ok {
		return nil, false
	}
	return cloneReviews(rows), true
}

func (s *Store) MarkReviewsLoaded(key domain.MarketKey) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loaded[key] = true
	for i := range s.markets {
		if s.marketKeyOf(s.markets[i]) == key {
			s.markets[i].ReviewsLoaded = true
		}
	}
}

func (s *Store) ReviewsLoaded(key domain.MarketKey) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded[key]
}

// AddMarket appends to the searched-markets index, deduplicating on
// (city, country, category) the way the original data store dropped
// duplicate rows. ReviewsLoaded only ever flips up.
func (s *Store) AddMarket(m domain.Market) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.markets {
		if s.markets[i].City == m.City && s.markets[i].Country == m.Country && s.markets[i].Category == m.Category {
			if m.ReviewsLoaded {
				s.markets[i].ReviewsLoaded = true
			}
			return
		}
	}
	s.markets = append(s.markets, m)
}

func (s *Store) Markets() []domain.Market {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Market, len(s.markets))
	copy(out, s.markets)
	return out
}

func (s *Store) marketKeyOf(m domain.Market) domain.MarketKey {
	return domain.MarketKey{Location: domain.MarketLocation(m.City, m.Country), Category: m.Category}
}

// clones prevent callers from mutating the store's backing arrays.
func clonePlaces(in []domain.Place) []domain.Place {
	out := make([]domain.Place, len(in))
	copy(out, in)
	return out
}

func cloneReviews(in []domain.Review) []domain.Review {
	out := make([]domain.Review, len(in))
	copy(out, in)
	return out
}
