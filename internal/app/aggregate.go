package app

import "bizreview/internal/domain"

// Progressive merge of incremental batches into a running table. No
// aggregation math happens here — the point is a monotonically improving,
// deduplicated snapshot for the consumer.

// MergePlaces concatenates a batch onto the running table, dedupes by
// PlaceID (first occurrence wins) and restores the normalizer's sort order.
func MergePlaces(running, batch []domain.Place) []domain.Place {
	seen := make(map[string]struct{}, len(running)+len(batch))
	merged := make([]domain.Place, 0, len(running)+len(batch))
	for _, rows := range [][]domain.Place{running, batch} {
		for _, p := range rows {
			if _, ok := seen[p.PlaceID]; ok {
				continue
			}
			seen[p.PlaceID] = struct{}{}
			merged = append(merged, p)
		}
	}
	return NormalizePlaces(merged)
}

// MergeReviews concatenates and dedupes by full-row equality (derived
// columns excluded), keeping the normalizer's timestamp order.
func MergeReviews(running, batch []domain.Review) []domain.Review {
	seen := make(map[string]struct{}, len(running)+len(batch))
	merged := make([]domain.Review, 0, len(running)+len(batch))
	for _, rows := range [][]domain.Review{running, batch} {
		for _, r := range rows {
			k := r.Key()
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			merged = append(merged, r)
		}
	}
	return NormalizeReviews(merged)
}
