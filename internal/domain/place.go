package domain

import "time"

// Marker color thresholds on total review count.
const (
	GreenThreshold  = 100
	OrangeThreshold = 50
	GrayThreshold   = 25
)

type Place struct {
	PlaceID      string
	Name         string
	Address      string
	City         string
	Lat, Lon     float64
	AvgRating    float64 // 0 when the API field is absent or non-numeric
	TotalReviews int
	Contact      string // digits only
	PhotoURL     string // constructed photo URL, never fetched
	CreatedAt    time.Time
	MarkerColor  string // green|orange|lightgray|red
	ReviewVolume string // "Up-to 50" | "50 to 100" | "100-200" | "More than 200"
	RatingFloor  int
}

// MarkerColorFor buckets a review count into a map-marker tier.
func MarkerColorFor(totalReviews int) string {
	switch {
	case totalReviews >= GreenThreshold:
		return "green"
	case totalReviews >= OrangeThreshold:
		return "orange"
	case totalReviews >= GrayThreshold:
		return "lightgray"
	default:
		return "red"
	}
}

// ReviewVolumeFor buckets a review count into the list-view category.
// The 50 boundary is inclusive on the low bucket.
func ReviewVolumeFor(totalReviews int) string {
	switch {
	case totalReviews > 200:
		return "More than 200"
	case totalReviews > 100:
		return "100-200"
	case totalReviews > 50:
		return "50 to 100"
	default:
		return "Up-to 50"
	}
}
