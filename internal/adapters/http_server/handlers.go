package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"bizreview/internal/app"
	"bizreview/internal/domain"
)

type Handlers struct {
	Q   *app.QueryService
	Acq *app.AcquisitionService
	Geo domain.Geocoder
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })

	// Streaming acquisition: progressive NDJSON, no timeout wrapper.
	s.mux.Post("/v1/search", h.search)

	s.mux.Group(func(r chi.Router) {
		r.Use(Timeout(15 * time.Second))
		r.Get("/v1/markets", h.listMarkets)
		r.Get("/v1/places", h.listPlaces)
		r.Get("/v1/places/{id}/reviews", h.listPlaceReviews)
		r.Get("/v1/places/{id}/kpis", h.placeKPIs)
		r.Get("/v1/analytics/reviews", h.reviewAnalytics)
		r.Get("/v1/analytics/market", h.marketAnalysis)
		r.Get("/v1/geo/locate", h.locate)
		r.Get("/v1/geo/states", h.states)
		r.Get("/v1/geo/cities", h.cities)
	})
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

// writeCacheable sends v as JSON with a weak ETag, honoring If-None-Match.
func writeCacheable(w http.ResponseWriter, r *http.Request, v any) {
	etag, body := calcETagAndBody(v)
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write response body")
	}
}

// marketKeyFrom reads the (city, country, category) triple every market
// read needs. Empty values are a 400 at the call site.
func marketKeyFrom(r *http.Request) (domain.MarketKey, string, string, string, bool) {
	q := r.URL.Query()
	city, country, category := q.Get("city"), q.Get("country"), q.Get("category")
	if city == "" || country == "" || category == "" {
		return domain.MarketKey{}, "", "", "", false
	}
	key := domain.MarketKey{Location: domain.MarketLocation(city, country), Category: category}
	return key, city, country, category, true
}

type searchRequest struct {
	Category    string `json:"category"`
	City        string `json:"city"`
	Country     string `json:"country"`
	Target      int    `json:"target"`
	WithReviews bool   `json:"with_reviews"`
}

// snapshotLine is one NDJSON line of the progressive search response.
type snapshotLine struct {
	Places  []domain.Place  `json:"places"`
	Reviews []domain.Review `json:"reviews,omitempty"`
	Count   int             `json:"count"`
}

// search runs an acquisition and streams every merged snapshot as one JSON
// line, flushed immediately so the consumer can render progressively. Rows
// already streamed stay valid even if the fetch is truncated; a fatal
// detail-lookup failure is reported as a trailing error line.
func (h *Handlers) search(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Body", "expected JSON search request")
		return
	}
	if req.Category == "" || req.City == "" || req.Country == "" {
		writeProblem(w, http.StatusBadRequest, "Missing Fields", "category, city and country are required")
		return
	}

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.WriteHeader(http.StatusOK)
	flusher, _ := w.(http.Flusher)

	enc := json.NewEncoder(w)
	err := h.Acq.Run(r.Context(), req.City, req.Country, req.Category, req.Target, req.WithReviews,
		func(snap app.Snapshot) {
			line := snapshotLine{Places: snap.Places, Reviews: snap.Reviews, Count: len(snap.Places)}
			if err := enc.Encode(line); err != nil {
				log.Error().Err(err).Msg("failed to write snapshot line")
				return
			}
			if flusher != nil {
				flusher.Flush()
			}
		})
	if err != nil {
		_ = enc.Encode(map[string]string{"error": err.Error()})
	}
}

func (h *Handlers) listMarkets(w http.ResponseWriter, r *http.Request) {
	writeCacheable(w, r, h.Q.Markets())
}

func (h *Handlers) listPlaces(w http.ResponseWriter, r *http.Request) {
	key, _, _, _, ok := marketKeyFrom(r)
	if !ok {
		writeProblem(w, http.StatusBadRequest, "Missing Params", "city, country and category are required")
		return
	}
	rows, err := h.Q.Places(r.Context(), key)
	if err != nil {
		writeProblem(w, http.StatusNotFound, "Not Found", "no data for this market; run a search first")
		return
	}
	writeCacheable(w, r, rows)
}

func (h *Handlers) listPlaceReviews(w http.ResponseWriter, r *http.Request) {
	key, _, _, _, ok := marketKeyFrom(r)
	if !ok {
		writeProblem(w, http.StatusBadRequest, "Missing Params", "city, country and category are required")
		return
	}
	rows, err := h.Q.PlaceReviews(r.Context(), key, chi.URLParam(r, "id"))
	if err != nil {
		writeProblem(w, http.StatusNotFound, "Not Found", "reviews not loaded for this market")
		return
	}
	writeCacheable(w, r, rows)
}

func (h *Handlers) placeKPIs(w http.ResponseWriter, r *http.Request) {
	key, _, _, _, ok := marketKeyFrom(r)
	if !ok {
		writeProblem(w, http.StatusBadRequest, "Missing Params", "city, country and category are required")
		return
	}
	kpi, err := h.Q.PlaceKPIs(r.Context(), key, chi.URLParam(r, "id"))
	if err != nil {
		writeProblem(w, http.StatusNotFound, "Not Found", "place or its reviews not found")
		return
	}
	writeCacheable(w, r, kpi)
}

func (h *Handlers) reviewAnalytics(w http.ResponseWriter, r *http.Request) {
	key, _, _, _, ok := marketKeyFrom(r)
	if !ok {
		writeProblem(w, http.StatusBadRequest, "Missing Params", "city, country and category are required")
		return
	}
	out, err := h.Q.ReviewAnalytics(r.Context(), key)
	if err != nil {
		writeProblem(w, http.StatusNotFound, "Not Found", "reviews not loaded for this market")
		return
	}
	writeCacheable(w, r, out)
}

func (h *Handlers) marketAnalysis(w http.ResponseWriter, r *http.Request) {
	key, _, _, _, ok := marketKeyFrom(r)
	if !ok {
		writeProblem(w, http.StatusBadRequest, "Missing Params", "city, country and category are required")
		return
	}
	out, err := h.Q.MarketAnalysis(r.Context(), key)
	if err != nil {
		writeProblem(w, http.StatusNotFound, "Not Found", "no data for this market; run a search first")
		return
	}
	writeCacheable(w, r, out)
}

func (h *Handlers) locate(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		writeProblem(w, http.StatusBadRequest, "Missing Params", "name is required")
		return
	}
	coords, err := h.Geo.Locate(r.Context(), name)
	if errors.Is(err, domain.ErrLocationNotFound) {
		writeProblem(w, http.StatusNotFound, "Location Not Found", name)
		return
	}
	if err != nil {
		writeProblem(w, http.StatusBadGateway, "Geocoding Failed", err.Error())
		return
	}
	writeCacheable(w, r, coords)
}

func (h *Handlers) states(w http.ResponseWriter, r *http.Request) {
	country := r.URL.Query().Get("country")
	if country == "" {
		writeProblem(w, http.StatusBadRequest, "Missing Params", "country is required")
		return
	}
	states, err := h.Geo.States(r.Context(), country)
	if err != nil {
		writeProblem(w, http.StatusBadGateway, "Lookup Failed", err.Error())
		return
	}
	writeCacheable(w, r, states)
}

func (h *Handlers) cities(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	country, state := q.Get("country"), q.Get("state")
	if country == "" || state == "" {
		writeProblem(w, http.StatusBadRequest, "Missing Params", "country and state are required")
		return
	}
	cities, err := h.Geo.Cities(r.Context(), country, state)
	if err != nil {
		writeProblem(w, http.StatusBadGateway, "Lookup Failed", err.Error())
		return
	}
	writeCacheable(w, r, cities)
}
