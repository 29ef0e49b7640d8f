package main

import (
	"context"
	"flag"

	_ "github.com/joho/godotenv/autoload"
	"github.com/rs/zerolog/log"

	"bizreview/internal/adapters/observability"
	"bizreview/internal/adapters/places"
	redisad "bizreview/internal/adapters/redis"
	"bizreview/internal/app"
	"bizreview/internal/domain"
	"bizreview/internal/shared"
	"bizreview/internal/storage/memory"
)

func main() {
	var (
		category    = flag.String("category", "pharmacy", "business category to search")
		city        = flag.String("city", "Lahore", "city name")
		country     = flag.String("country", "Pakistan", "country name")
		target      = flag.Int("target", 0, "soft minimum result count (0 = mode default)")
		withReviews = flag.Bool("reviews", false, "carry embedded reviews during acquisition")
	)
	flag.Parse()

	ctx := context.Background()
	cfg := shared.Load()

	log.Logger = observability.NewLogger(cfg.AppEnv)

	log.Info().
		Str("category", *category).
		Str("city", *city).
		Str("country", *country).
		Int("workers", cfg.Workers).
		Msg("fetcher starting")

	client, err := places.New(cfg.PlacesBase, cfg.PlacesKey, 5)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize places client")
	}

	store := memory.New()
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	fetcher := app.NewFetcher(client, cfg.Workers, cfg.PageDelay)
	acq := app.NewAcquisitionService(fetcher, client, store, cache)

	if *target <= 0 {
		if *withReviews {
			*target = cfg.CombinedTarget
		} else {
			*target = cfg.ListingTarget
		}
	}

	err = acq.Run(ctx, *city, *country, *category, *target, *withReviews, func(snap app.Snapshot) {
		log.Info().Int("places", len(snap.Places)).Int("reviews", len(snap.Reviews)).Msg("snapshot")
	})
	if err != nil {
		log.Fatal().Err(err).Msg("acquisition failed")
	}

	if !*withReviews {
		if _, err := acq.LoadReviews(ctx, *city, *country, *category); err != nil {
			log.Fatal().Err(err).Msg("review load failed")
		}
	}

	key := domain.MarketKey{Location: domain.MarketLocation(*city, *country), Category: *category}
	placeRows, _ := store.Places(key)
	reviewRows, _ := store.Reviews(key)
	for _, p := range placeRows {
		var own []domain.Review
		for _, r := range reviewRows {
			if r.PlaceID == p.PlaceID {
				own = append(own, r)
			}
		}
		k := app.KPIs(p, own)
		ev := log.Info().
			Str("place", p.Name).
			Int("total_reviews", k.TotalReviews).
			Float64("avg_rating", k.AvgRating).
			Int("unique_reviewers", k.UniqueReviewers)
		if k.MonthlyRate != nil {
			ev = ev.Float64("monthly_rate", *k.MonthlyRate)
		}
		ev.Msg("kpi")
	}

	log.Info().Msg("fetch session completed")
}
