package app

import (
	"strconv"
	"strings"
	"time"

	"bizreview/internal/domain"
)

// FieldWarning records one silently-defaulted field during mapping. The
// coercion boundary collects these instead of scattering fallbacks through
// the pipeline.
type FieldWarning struct {
	PlaceID string
	Field   string
	Reason  string
}

/********** tiny helpers **********/

// lookupAny: safe nested lookup with dot paths on maps.
func lookupAny(m map[string]any, path string) any {
	cur := any(m)
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		v, ok := obj[part]
		if !ok {
			return nil
		}
		cur = v
	}
	return cur
}

// lookupStr returns string at path or "".
func lookupStr(m map[string]any, path string) string {
	if v := lookupAny(m, path); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// getFloatFlexible: number from several paths (float64/int/string like "4,5").
func getFloatFlexible(m map[string]any, paths ...string) *float64 {
	for _, k := range paths {
		switch v := lookupAny(m, k).(type) {
		case float64:
			f := v
			return &f
		case int:
			f := float64(v)
			return &f
		case string:
			s := strings.TrimSpace(strings.ReplaceAll(v, ",", "."))
			if s == "" {
				continue
			}
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				return &f
			}
		}
	}
	return nil
}

// hasAny reports whether any of the paths carries a value at all, so a bad
// value can be told apart from an absent one when warning.
func hasAny(m map[string]any, paths ...string) bool {
	for _, k := range paths {
		if lookupAny(m, k) != nil {
			return true
		}
	}
	return false
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// firstPhotoRef pulls photos[0].photo_reference from a search result.
func firstPhotoRef(m map[string]any) string {
	photos, ok := m["photos"].([]any)
	if !ok || len(photos) == 0 {
		return ""
	}
	first, ok := photos[0].(map[string]any)
	if !ok {
		return ""
	}
	ref, _ := first["photo_reference"].(string)
	return ref
}

/********** place mapper **********/

// MapPlace combines one text-search result with its detail payload into a
// Place row. Every numeric field defaults to 0 on parse failure, with a
// FieldWarning instead of an error; derived columns are filled by
// NormalizePlaces.
func MapPlace(res, det map[string]any, city string, now time.Time, photoURL func(string) string) (domain.Place, []FieldWarning) {
	id := lookupStr(res, "place_id")

	var warns []FieldWarning
	warn := func(field, reason string) {
		warns = append(warns, FieldWarning{PlaceID: id, Field: field, Reason: reason})
	}

	p := domain.Place{
		PlaceID:   id,
		Name:      lookupStr(res, "name"),
		Address:   lookupStr(res, "formatted_address"),
		City:      city,
		CreatedAt: now.UTC(),
	}

	if f := getFloatFlexible(det, "rating"); f != nil {
		p.AvgRating = *f
	} else if hasAny(det, "rating") {
		warn("rating", "non-numeric, defaulted to 0")
	}

	if f := getFloatFlexible(res, "geometry.location.lat"); f != nil {
		p.Lat = *f
	} else {
		warn("latitude", "missing or non-numeric, defaulted to 0")
	}
	if f := getFloatFlexible(res, "geometry.location.lng"); f != nil {
		p.Lon = *f
	} else {
		warn("longitude", "missing or non-numeric, defaulted to 0")
	}

	if f := getFloatFlexible(det, "user_ratings_total"); f != nil && *f >= 0 {
		p.TotalReviews = int(*f)
	} else if hasAny(det, "user_ratings_total") {
		warn("user_ratings_total", "non-numeric, defaulted to 0")
	}

	p.Contact = digitsOnly(lookupStr(det, "international_phone_number"))

	if ref := firstPhotoRef(res); ref != "" && photoURL != nil {
		p.PhotoURL = photoURL(ref)
	}

	return p, warns
}

/********** review mapper **********/

// MapReviews extracts the embedded reviews of a detail payload. Timestamps
// are epoch seconds; absent fields default to their zero value.
func MapReviews(placeID, placeName string, det map[string]any) []domain.Review {
	raw, ok := det["reviews"].([]any)
	if !ok {
		return nil
	}
	out := make([]domain.Review, 0, len(raw))
	for _, it := range raw {
		m, ok := it.(map[string]any)
		if !ok {
			continue
		}
		rv := domain.Review{
			PlaceID:   placeID,
			PlaceName: placeName,
			Reviewer:  lookupStr(m, "author_name"),
			Text:      lookupStr(m, "text"),
			Lang:      lookupStr(m, "language"),
			PhotoURL:  lookupStr(m, "profile_photo_url"),
		}
		var epoch int64
		if f := getFloatFlexible(m, "time"); f != nil {
			epoch = int64(*f)
		}
		rv.Time = time.Unix(epoch, 0).UTC()
		rv.Rating = getFloatFlexible(m, "rating")
		out = append(out, rv)
	}
	return out
}
