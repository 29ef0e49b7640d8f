package app

import (
	"math"
	"sort"

	"bizreview/internal/domain"
)

// NormalizePlaces produces the typed Place table: numeric guards, digit-only
// contact, recomputed derived columns, rows sorted ascending by review count.
// Pure and total — empty input yields an empty table, and re-normalizing an
// already-normalized table is a no-op.
func NormalizePlaces(rows []domain.Place) []domain.Place {
	out := make([]domain.Place, len(rows))
	copy(out, rows)

	for i := range out {
		if math.IsNaN(out[i].AvgRating) || math.IsInf(out[i].AvgRating, 0) || out[i].AvgRating < 0 {
			out[i].AvgRating = 0
		}
		if out[i].TotalReviews < 0 {
			out[i].TotalReviews = 0
		}
		if math.IsNaN(out[i].Lat) {
			out[i].Lat = 0
		}
		if math.IsNaN(out[i].Lon) {
			out[i].Lon = 0
		}
		out[i].Contact = digitsOnly(out[i].Contact)
		out[i].MarkerColor = domain.MarkerColorFor(out[i].TotalReviews)
		out[i].ReviewVolume = domain.ReviewVolumeFor(out[i].TotalReviews)
		out[i].RatingFloor = int(math.Floor(out[i].AvgRating))
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TotalReviews < out[j].TotalReviews
	})
	return out
}

// NormalizeReviews produces the typed Review table: UTC timestamps, derived
// display date, rows sorted ascending by timestamp. Same purity contract as
// NormalizePlaces.
func NormalizeReviews(rows []domain.Review) []domain.Review {
	out := make([]domain.Review, len(rows))
	copy(out, rows)

	for i := range out {
		out[i].Time = out[i].Time.UTC()
		out[i].Date = out[i].Time.Format(domain.ReviewDateLayout)
		if out[i].Rating != nil && (math.IsNaN(*out[i].Rating) || math.IsInf(*out[i].Rating, 0)) {
			out[i].Rating = nil
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Time.Before(out[j].Time)
	})
	return out
}
