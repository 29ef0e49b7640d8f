package shared

import (
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv      string
	HTTPAddr    string
	MetricsAddr string

	RedisAddr string
	RedisDB   int
	RedisPass string

	PlacesBase string
	PlacesKey  string
	GeoBase    string
	AdminBase  string

	Workers        int           // detail-lookup pool size per page
	ListingTarget  int           // soft minimum results, listing mode
	CombinedTarget int           // soft minimum results, listing+reviews mode
	PageDelay      time.Duration // next_page_token activation latency
	CacheTTL       time.Duration
}

func Load() Config {
	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	c := Config{
		AppEnv:         env("APP_ENV", "prod"),
		HTTPAddr:       env("HTTP_ADDR", ":8080"),
		MetricsAddr:    env("METRICS_ADDR", ":9100"),
		RedisAddr:      env("REDIS_ADDR", "localhost:6379"),
		RedisPass:      env("REDIS_PASSWORD", ""),
		RedisDB:        atoi("REDIS_DB", 0),
		PlacesBase:     env("PLACES_BASE_URL", "https://maps.googleapis.com/maps/api/place"),
		PlacesKey:      env("PLACES_API_KEY", ""),
		GeoBase:        env("GEO_BASE_URL", "https://nominatim.openstreetmap.org"),
		AdminBase:      env("ADMIN_BASE_URL", "https://countriesnow.space/api/v0.1"),
		Workers:        atoi("FETCH_WORKERS", 10),
		ListingTarget:  atoi("LISTING_TARGET", 20),
		CombinedTarget: atoi("COMBINED_TARGET", 60),
		PageDelay:      time.Duration(atoi("PAGE_DELAY_SECONDS", 2)) * time.Second,
		CacheTTL:       time.Duration(atoi("CACHE_TTL_SECONDS", 900)) * time.Second,
	}
	if c.PlacesKey == "" {
		log.Warn().Msg("PLACES_API_KEY is empty")
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
