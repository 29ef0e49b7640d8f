package main

import (
	"net/http"

	_ "github.com/joho/godotenv/autoload"
	"github.com/rs/zerolog/log"

	"bizreview/internal/adapters/geo"
	server "bizreview/internal/adapters/http_server"
	"bizreview/internal/adapters/observability"
	"bizreview/internal/adapters/places"
	redisad "bizreview/internal/adapters/redis"
	"bizreview/internal/app"
	"bizreview/internal/shared"
	"bizreview/internal/storage/memory"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	observability.Serve(cfg.MetricsAddr)

	placesClient, err := places.New(cfg.PlacesBase, cfg.PlacesKey, 5)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize places client")
	}
	geoClient := geo.New(cfg.GeoBase, cfg.AdminBase, 1)

	// deps: session store, cache, services
	store := memory.New()
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	fetcher := app.NewFetcher(placesClient, cfg.Workers, cfg.PageDelay)
	acq := app.NewAcquisitionService(fetcher, placesClient, store, cache)
	q := app.NewQueryService(store, cache, cfg.CacheTTL)

	// http
	srv := server.New()
	reg := observability.InitRegistry()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{Q: q, Acq: acq, Geo: geoClient})

	log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux()}

	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server failed")
	}
}
