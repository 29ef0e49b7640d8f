package geo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"

	"bizreview/internal/adapters/observability"
	"bizreview/internal/domain"
)

// Client resolves free-text place names to coordinates and walks the
// country -> states -> cities administrative hierarchy. Provider payload
// shapes vary, so extraction is best-effort via gjson paths.
type Client struct {
	geoBase   string // nominatim-style search endpoint
	adminBase string // countriesnow-style boundaries endpoint
	hc        *http.Client
	rl        *rate.Limiter
}

func New(geoBase, adminBase string, rps int) *Client {
	if rps <= 0 {
		rps = 1 // public geocoders throttle hard
	}
	return &Client{
		geoBase:   strings.TrimRight(geoBase, "/"),
		adminBase: strings.TrimRight(adminBase, "/"),
		hc:        &http.Client{Timeout: 20 * time.Second},
		rl:        rate.NewLimiter(rate.Limit(rps), rps),
	}
}

// Locate resolves a place name to coordinates. An empty match list is
// domain.ErrLocationNotFound, never a nil dereference downstream.
func (c *Client) Locate(ctx context.Context, name string) (domain.Coords, error) {
	q := url.Values{}
	q.Set("q", name)
	q.Set("format", "json")
	q.Set("limit", "1")

	body, err := c.do(ctx, "geocode", http.MethodGet, c.geoBase+"/search?"+q.Encode(), nil)
	if err != nil {
		return domain.Coords{}, err
	}

	first := gjson.GetBytes(body, "0")
	if !first.Exists() {
		return domain.Coords{}, fmt.Errorf("locate %q: %w", name, domain.ErrLocationNotFound)
	}
	return domain.Coords{
		Lat: first.Get("lat").Float(),
		Lon: first.Get("lon").Float(),
	}, nil
}

func (c *Client) States(ctx context.Context, country string) ([]string, error) {
	body, err := c.do(ctx, "states", http.MethodPost, c.adminBase+"/countries/states",
		map[string]string{"country": country})
	if err != nil {
		return nil, err
	}
	var out []string
	for _, s := range gjson.GetBytes(body, "data.states.#.name").Array() {
		if v := strings.TrimSpace(s.String()); v != "" {
			out = append(out, v)
		}
	}
	return out, nil
}

func (c *Client) Cities(ctx context.Context, country, state string) ([]string, error) {
	body, err := c.do(ctx, "cities", http.MethodPost, c.adminBase+"/countries/state/cities",
		map[string]string{"country": country, "state": state})
	if err != nil {
		return nil, err
	}
	var out []string
	for _, s := range gjson.GetBytes(body, "data").Array() {
		if v := strings.TrimSpace(s.String()); v != "" {
			out = append(out, v)
		}
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, endpoint, method, u string, payload any) ([]byte, error) {
	if err := c.rl.Wait(ctx); err != nil {
		return nil, err
	}

	var rdr io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		rdr = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, rdr)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "bizreview/1.0")

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		observability.ObserveExternal("geo", endpoint, 0, time.Since(start))
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}
	defer resp.Body.Close()
	observability.ObserveExternal("geo", endpoint, resp.StatusCode, time.Since(start))

	if resp.StatusCode == http.StatusNotFound {
		return nil, domain.ErrLocationNotFound
	}
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("geo %s: bad status %d: %s", endpoint, resp.StatusCode, strings.TrimSpace(string(b)))
	}
	return io.ReadAll(io.LimitReader(resp.Body, 8<<20))
}
