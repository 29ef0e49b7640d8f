package app

import (
	"math"
	"sort"
	"strings"
	"time"

	"bizreview/internal/domain"
)

// KPI is the summary tuple for one place. MonthlyRate is nil when every
// review falls in the same calendar month (zero span) or no reviews exist.
type KPI struct {
	TotalReviews    int      `json:"total_reviews"`
	AvgRating       float64  `json:"avg_rating"`
	UniqueReviewers int      `json:"unique_reviewers"`
	MonthlyRate     *float64 `json:"monthly_rate"`
}

// KPIs derives the summary metrics for one place from its review table.
func KPIs(place domain.Place, reviews []domain.Review) KPI {
	k := KPI{
		TotalReviews: place.TotalReviews,
		AvgRating:    place.AvgRating,
	}

	seen := make(map[string]struct{}, len(reviews))
	for _, r := range reviews {
		seen[r.Reviewer] = struct{}{}
	}
	k.UniqueReviewers = len(seen)

	if len(reviews) == 0 {
		return k
	}
	earliest, latest := reviews[0].Time, reviews[0].Time
	for _, r := range reviews[1:] {
		if r.Time.Before(earliest) {
			earliest = r.Time
		}
		if r.Time.After(latest) {
			latest = r.Time
		}
	}
	months := (latest.Year()-earliest.Year())*12 + int(latest.Month()) - int(earliest.Month())
	if months > 0 {
		rate := float64(k.TotalReviews) / float64(months)
		k.MonthlyRate = &rate
	}
	return k
}

type MonthRating struct {
	Year      int     `json:"year"`
	Month     int     `json:"month"`
	Label     string  `json:"label"` // "Jan 2006"
	AvgRating float64 `json:"avg_rating"`
}

// MonthlyRatingSeries averages ratings per calendar month, chronological.
func MonthlyRatingSeries(reviews []domain.Review) []MonthRating {
	type acc struct {
		sum float64
		n   int
	}
	buckets := map[[2]int]*acc{}
	for _, r := range reviews {
		if r.Rating == nil {
			continue
		}
		k := [2]int{r.Time.Year(), int(r.Time.Month())}
		if buckets[k] == nil {
			buckets[k] = &acc{}
		}
		buckets[k].sum += *r.Rating
		buckets[k].n++
	}

	out := make([]MonthRating, 0, len(buckets))
	for k, a := range buckets {
		label := time.Date(k[0], time.Month(k[1]), 1, 0, 0, 0, 0, time.UTC).Format("Jan 2006")
		out = append(out, MonthRating{Year: k[0], Month: k[1], Label: label, AvgRating: a.sum / float64(a.n)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].Month < out[j].Month
	})
	return out
}

type QuarterRating struct {
	Year      int     `json:"year"`
	Quarter   int     `json:"quarter"`
	AvgRating float64 `json:"avg_rating"`
}

// QuarterlyRatingSeries averages ratings per year-quarter, chronological.
func QuarterlyRatingSeries(reviews []domain.Review) []QuarterRating {
	type acc struct {
		sum float64
		n   int
	}
	buckets := map[[2]int]*acc{}
	for _, r := range reviews {
		if r.Rating == nil {
			continue
		}
		q := (int(r.Time.Month())-1)/3 + 1
		k := [2]int{r.Time.Year(), q}
		if buckets[k] == nil {
			buckets[k] = &acc{}
		}
		buckets[k].sum += *r.Rating
		buckets[k].n++
	}

	out := make([]QuarterRating, 0, len(buckets))
	for k, a := range buckets {
		out = append(out, QuarterRating{Year: k[0], Quarter: k[1], AvgRating: a.sum / float64(a.n)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].Quarter < out[j].Quarter
	})
	return out
}

type RatingCount struct {
	Rating int `json:"rating"`
	Count  int `json:"count"`
}

// RatingBreakdown counts reviews per integer star rating, ascending.
func RatingBreakdown(reviews []domain.Review) []RatingCount {
	counts := map[int]int{}
	for _, r := range reviews {
		if r.Rating == nil {
			continue
		}
		counts[int(*r.Rating)]++
	}
	out := make([]RatingCount, 0, len(counts))
	for rating, n := range counts {
		out = append(out, RatingCount{Rating: rating, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Rating < out[j].Rating })
	return out
}

type SentimentPoint struct {
	Time  time.Time `json:"time"`
	Score float64   `json:"score"`
}

// SentimentSeries lists scored reviews over time; unscored rows are skipped.
func SentimentSeries(reviews []domain.Review) []SentimentPoint {
	out := make([]SentimentPoint, 0, len(reviews))
	for _, r := range Annotate(reviews) {
		if r.Sentiment == nil {
			continue
		}
		out = append(out, SentimentPoint{Time: r.Time, Score: *r.Sentiment})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Time.Before(out[j].Time) })
	return out
}

type WordCount struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// WordFrequencies tallies review-text words for the word-cloud view. Short
// tokens are dropped; ties break alphabetically for a stable order.
func WordFrequencies(reviews []domain.Review, topN int) []WordCount {
	counts := map[string]int{}
	for _, r := range reviews {
		for _, w := range strings.FieldsFunc(strings.ToLower(r.Text), func(c rune) bool {
			return !((c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') || c == '\'')
		}) {
			w = strings.Trim(w, "'")
			if len(w) < 3 {
				continue
			}
			counts[w]++
		}
	}
	out := make([]WordCount, 0, len(counts))
	for w, n := range counts {
		out = append(out, WordCount{Word: w, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Word < out[j].Word
	})
	if topN > 0 && len(out) > topN {
		out = out[:topN]
	}
	return out
}

// PlacePerformance scores one place for the market comparison view.
type PlacePerformance struct {
	Name                 string  `json:"name"`
	AvgRating            float64 `json:"avg_rating"`
	TotalReviews         int     `json:"total_reviews"`
	SatisfactionScore    float64 `json:"satisfaction_score"`
	RelativeSatisfaction float64 `json:"relative_satisfaction"` // percent of best
	ReliabilityScore     float64 `json:"reliability_score"`
}

// TopPerformingPlaces aggregates per name, keeps places at or above the 50th
// percentile of total reviews (the canonical threshold, see DESIGN.md),
// scores satisfaction and reliability and returns the best `limit` rows.
func TopPerformingPlaces(places []domain.Place, limit int) []PlacePerformance {
	type acc struct {
		ratingSum float64
		n         int
		reviews   int
	}
	byName := map[string]*acc{}
	for _, p := range places {
		a := byName[p.Name]
		if a == nil {
			a = &acc{}
			byName[p.Name] = a
		}
		a.ratingSum += p.AvgRating
		a.n++
		a.reviews += p.TotalReviews
	}
	if len(byName) == 0 {
		return nil
	}

	rows := make([]PlacePerformance, 0, len(byName))
	counts := make([]float64, 0, len(byName))
	for name, a := range byName {
		rows = append(rows, PlacePerformance{
			Name:         name,
			AvgRating:    a.ratingSum / float64(a.n),
			TotalReviews: a.reviews,
		})
		counts = append(counts, float64(a.reviews))
	}

	thresh := percentile(counts, 0.50)
	kept := rows[:0]
	var reviewSum float64
	for _, r := range rows {
		if float64(r.TotalReviews) >= thresh {
			kept = append(kept, r)
			reviewSum += float64(r.TotalReviews)
		}
	}
	if len(kept) == 0 || reviewSum == 0 {
		return nil
	}

	var maxScore float64
	for i := range kept {
		kept[i].SatisfactionScore = kept[i].AvgRating * float64(kept[i].TotalReviews) / reviewSum
		if kept[i].SatisfactionScore > maxScore {
			maxScore = kept[i].SatisfactionScore
		}
		kept[i].ReliabilityScore = kept[i].AvgRating * math.Log1p(float64(kept[i].TotalReviews))
	}
	for i := range kept {
		kept[i].RelativeSatisfaction = kept[i].SatisfactionScore / maxScore * 100
	}

	sort.Slice(kept, func(i, j int) bool {
		if kept[i].RelativeSatisfaction != kept[j].RelativeSatisfaction {
			return kept[i].RelativeSatisfaction > kept[j].RelativeSatisfaction
		}
		return kept[i].Name < kept[j].Name
	})
	if limit > 0 && len(kept) > limit {
		kept = kept[:limit]
	}
	return kept
}

// percentile computes the q-quantile with linear interpolation between
// closest ranks, matching the dataframe convention analytics were tuned on.
func percentile(vals []float64, q float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sorted := make([]float64, len(vals))
	copy(sorted, vals)
	sort.Float64s(sorted)

	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// MarketCenter is the mean coordinate of a market's places, used to center
// spatial views.
func MarketCenter(places []domain.Place) domain.Coords {
	if len(places) == 0 {
		return domain.Coords{}
	}
	var lat, lon float64
	for _, p := range places {
		lat += p.Lat
		lon += p.Lon
	}
	n := float64(len(places))
	return domain.Coords{Lat: lat / n, Lon: lon / n}
}
