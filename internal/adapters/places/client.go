package places

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"bizreview/internal/adapters/observability"
	"bizreview/internal/domain"
)

// detailFields is the field mask sent on every detail lookup. It covers the
// normalized Place columns plus up to 5 embedded reviews.
const detailFields = "name,formatted_address,geometry,international_phone_number,rating,user_ratings_total,reviews"

type Client struct {
	base string
	hc   *http.Client
	key  string
	rl   *rate.Limiter
}

func New(base, key string, rps int) (*Client, error) {
	if key == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if rps <= 0 {
		rps = 5
	}
	return &Client{
		base: strings.TrimRight(base, "/"),
		hc:   &http.Client{Timeout: 20 * time.Second},
		key:  key,
		rl:   rate.NewLimiter(rate.Limit(rps), rps),
	}, nil
}

// TextSearch walks one page of the text-search endpoint. A payload without a
// results field comes back with HasResults=false; callers treat that as page
// exhaustion, not an error.
func (c *Client) TextSearch(ctx context.Context, query, pageToken string) (domain.SearchPage, error) {
	q := url.Values{}
	q.Set("query", query)
	q.Set("key", c.key)
	if pageToken != "" {
		q.Set("pagetoken", pageToken)
	}

	var payload map[string]any
	if err := c.get(ctx, "textsearch", c.base+"/textsearch/json?"+q.Encode(), &payload); err != nil {
		return domain.SearchPage{}, err
	}

	page := domain.SearchPage{}
	raw, ok := payload["results"]
	if !ok {
		return page, nil
	}
	page.HasResults = true
	if items, ok := raw.([]any); ok {
		page.Results = make([]map[string]any, 0, len(items))
		for _, it := range items {
			if m, ok := it.(map[string]any); ok {
				page.Results = append(page.Results, m)
			}
		}
	}
	if tok, ok := payload["next_page_token"].(string); ok {
		page.NextPageToken = tok
	}
	return page, nil
}

// Details fetches the full record for one place. A payload without a result
// object is an error: the caller treats a failed detail lookup as fatal for
// the fetch, there is nothing to default here.
func (c *Client) Details(ctx context.Context, placeID string) (map[string]any, error) {
	q := url.Values{}
	q.Set("place_id", placeID)
	q.Set("fields", detailFields)
	q.Set("key", c.key)

	var payload map[string]any
	if err := c.get(ctx, "details", c.base+"/details/json?"+q.Encode(), &payload); err != nil {
		return nil, err
	}
	result, ok := payload["result"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("details %s: missing result object", placeID)
	}
	return result, nil
}

// PhotoURL builds the photo endpoint URL for a reference. The URL is handed
// to the presentation layer as-is and never fetched here.
func (c *Client) PhotoURL(ref string) string {
	if ref == "" {
		return ""
	}
	return fmt.Sprintf("%s/photo?maxwidth=100&photoreference=%s&key=%s",
		c.base, url.QueryEscape(ref), url.QueryEscape(c.key))
}

var (
	ErrUnauthorized = errors.New("places: unauthorized")
	ErrForbidden    = errors.New("places: forbidden")
)

// get performs a single GET with client-side rate limiting and JSON decode
// into out. There is no retry: pagination already carries a fixed inter-page
// delay and per-request failures surface to the caller.
func (c *Client) get(ctx context.Context, endpoint, u string, out any) error {
	if err := c.rl.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "bizreview/1.0")

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		observability.ObserveExternal("places", endpoint, 0, time.Since(start))
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	defer resp.Body.Close()
	observability.ObserveExternal("places", endpoint, resp.StatusCode, time.Since(start))

	switch resp.StatusCode {
	case http.StatusOK:
		return json.NewDecoder(resp.Body).Decode(out)
	case http.StatusNotFound:
		return domain.ErrNotFound
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	default:
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("bad status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
}
