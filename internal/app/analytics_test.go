package app_test

import (
	"math"
	"testing"
	"time"

	"bizreview/internal/app"
	"bizreview/internal/domain"
)

func rev(ts time.Time, reviewer string, rating float64) domain.Review {
	return domain.Review{PlaceID: "p", Reviewer: reviewer, Time: ts, Rating: pf(rating)}
}

func TestKPIs_MonthSpanRate(t *testing.T) {
	place := domain.Place{PlaceID: "p", TotalReviews: 40, AvgRating: 4.2}
	reviews := []domain.Review{
		rev(time.Date(2022, 11, 5, 0, 0, 0, 0, time.UTC), "ana", 5),
		rev(time.Date(2023, 1, 20, 0, 0, 0, 0, time.UTC), "ben", 4),
		rev(time.Date(2023, 1, 25, 0, 0, 0, 0, time.UTC), "ana", 3),
	}

	k := app.KPIs(place, reviews)
	if k.TotalReviews != 40 || k.AvgRating != 4.2 {
		t.Fatalf("place columns must pass through: %+v", k)
	}
	if k.UniqueReviewers != 2 {
		t.Fatalf("unique reviewers: got %d want 2", k.UniqueReviewers)
	}
	// Nov 2022 -> Jan 2023 spans 2 calendar months
	if k.MonthlyRate == nil || *k.MonthlyRate != 20 {
		t.Fatalf("monthly rate: got %v want 20", k.MonthlyRate)
	}
}

func TestKPIs_RateNilOnZeroSpan(t *testing.T) {
	place := domain.Place{PlaceID: "p", TotalReviews: 3}
	sameMonth := []domain.Review{
		rev(time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC), "ana", 5),
		rev(time.Date(2023, 6, 28, 0, 0, 0, 0, time.UTC), "ben", 2),
	}
	if k := app.KPIs(place, sameMonth); k.MonthlyRate != nil {
		t.Fatalf("same-month reviews must yield nil rate, got %v", *k.MonthlyRate)
	}
	if k := app.KPIs(place, nil); k.MonthlyRate != nil || k.UniqueReviewers != 0 {
		t.Fatalf("no reviews must yield zero KPIs, got %+v", k)
	}
}

func TestMonthlyRatingSeries(t *testing.T) {
	reviews := []domain.Review{
		rev(time.Date(2023, 2, 10, 0, 0, 0, 0, time.UTC), "a", 5),
		rev(time.Date(2023, 2, 20, 0, 0, 0, 0, time.UTC), "b", 3),
		rev(time.Date(2022, 12, 1, 0, 0, 0, 0, time.UTC), "c", 4),
		{PlaceID: "p", Time: time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC)}, // no rating
	}

	got := app.MonthlyRatingSeries(reviews)
	if len(got) != 2 {
		t.Fatalf("expected 2 month buckets, got %+v", got)
	}
	if got[0].Label != "Dec 2022" || got[0].AvgRating != 4 {
		t.Fatalf("first bucket: %+v", got[0])
	}
	if got[1].Label != "Feb 2023" || got[1].AvgRating != 4 {
		t.Fatalf("second bucket: %+v", got[1])
	}
}

func TestQuarterlyRatingSeries(t *testing.T) {
	reviews := []domain.Review{
		rev(time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), "a", 5),
		rev(time.Date(2023, 3, 31, 0, 0, 0, 0, time.UTC), "b", 3),
		rev(time.Date(2023, 4, 1, 0, 0, 0, 0, time.UTC), "c", 2),
	}
	got := app.QuarterlyRatingSeries(reviews)
	if len(got) != 2 || got[0].Quarter != 1 || got[0].AvgRating != 4 || got[1].Quarter != 2 {
		t.Fatalf("unexpected quarters: %+v", got)
	}
}

func TestRatingBreakdown(t *testing.T) {
	reviews := []domain.Review{
		rev(time.Now(), "a", 5), rev(time.Now(), "b", 5),
		rev(time.Now(), "c", 1),
		{PlaceID: "p"},
	}
	got := app.RatingBreakdown(reviews)
	if len(got) != 2 || got[0].Rating != 1 || got[0].Count != 1 || got[1].Rating != 5 || got[1].Count != 2 {
		t.Fatalf("unexpected breakdown: %+v", got)
	}
}

func TestSentimentSeries_SkipsUnscoredAndSorts(t *testing.T) {
	later := time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC)
	earlier := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	reviews := []domain.Review{
		{PlaceID: "p", Time: later, Rating: pf(5), Lang: "ur"},
		{PlaceID: "p", Time: earlier, Rating: pf(1), Lang: "ur"},
		{PlaceID: "p", Time: earlier, Lang: "en"}, // no rating, no text: nil score
	}
	got := app.SentimentSeries(reviews)
	if len(got) != 2 {
		t.Fatalf("unscored rows must be skipped, got %+v", got)
	}
	if !got[0].Time.Equal(earlier) || got[0].Score != -1.0 || got[1].Score != 1.0 {
		t.Fatalf("series must be chronological: %+v", got)
	}
}

func TestWordFrequencies(t *testing.T) {
	reviews := []domain.Review{
		{Text: "Great coffee, great staff!"},
		{Text: "the coffee is ok"},
	}
	got := app.WordFrequencies(reviews, 2)
	if len(got) != 2 {
		t.Fatalf("topN must cap output, got %+v", got)
	}
	if got[0].Word != "coffee" && got[0].Word != "great" {
		t.Fatalf("unexpected top word: %+v", got)
	}
	// both occur twice, ties break alphabetically
	if got[0].Word != "coffee" || got[0].Count != 2 || got[1].Word != "great" || got[1].Count != 2 {
		t.Fatalf("unexpected tally: %+v", got)
	}
	for _, w := range got {
		if len(w.Word) < 3 {
			t.Fatalf("short tokens must be dropped: %+v", w)
		}
	}
}

func TestTopPerformingPlaces_PercentileFilterAndScores(t *testing.T) {
	places := []domain.Place{
		{PlaceID: "1", Name: "Alpha", AvgRating: 4.5, TotalReviews: 200},
		{PlaceID: "2", Name: "Beta", AvgRating: 4.8, TotalReviews: 100},
		{PlaceID: "3", Name: "Gamma", AvgRating: 5.0, TotalReviews: 10},
	}

	got := app.TopPerformingPlaces(places, 30)
	// median of {10,100,200} is 100: Gamma falls below it
	if len(got) != 2 {
		t.Fatalf("expected the percentile filter to keep 2 rows, got %+v", got)
	}
	if got[0].Name != "Alpha" {
		t.Fatalf("highest satisfaction share must rank first: %+v", got)
	}
	if got[0].RelativeSatisfaction != 100 {
		t.Fatalf("best row must be 100%%: %+v", got[0])
	}
	wantSat := 4.5 * 200 / 300
	if math.Abs(got[0].SatisfactionScore-wantSat) > 1e-9 {
		t.Fatalf("satisfaction: got %v want %v", got[0].SatisfactionScore, wantSat)
	}
	wantRel := 4.5 * math.Log1p(200)
	if math.Abs(got[0].ReliabilityScore-wantRel) > 1e-9 {
		t.Fatalf("reliability: got %v want %v", got[0].ReliabilityScore, wantRel)
	}
}

func TestTopPerformingPlaces_GroupsByNameAndLimits(t *testing.T) {
	places := []domain.Place{
		{PlaceID: "1", Name: "Chain", AvgRating: 4.0, TotalReviews: 50},
		{PlaceID: "2", Name: "Chain", AvgRating: 5.0, TotalReviews: 50},
		{PlaceID: "3", Name: "Solo", AvgRating: 3.0, TotalReviews: 100},
	}
	got := app.TopPerformingPlaces(places, 1)
	if len(got) != 1 {
		t.Fatalf("limit must cap output, got %+v", got)
	}
	if got[0].Name != "Chain" || got[0].AvgRating != 4.5 || got[0].TotalReviews != 100 {
		t.Fatalf("same-name rows must aggregate: %+v", got[0])
	}

	if out := app.TopPerformingPlaces(nil, 30); out != nil {
		t.Fatalf("empty input must return nil, got %+v", out)
	}
}

func TestMarketCenter(t *testing.T) {
	places := []domain.Place{
		{Lat: 31.0, Lon: 74.0},
		{Lat: 33.0, Lon: 72.0},
	}
	c := app.MarketCenter(places)
	if c.Lat != 32.0 || c.Lon != 73.0 {
		t.Fatalf("unexpected center: %+v", c)
	}
	if z := app.MarketCenter(nil); z.Lat != 0 || z.Lon != 0 {
		t.Fatalf("empty market must center at origin, got %+v", z)
	}
}
